package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/orion/internal/core/domain"
)

const apiKeySetting = "embedding.api_key"

var configPing bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application settings",
	Long: `View and change Orion settings.

Settings are stored in the config file as dot-separated keys. API keys
may instead come from ORION_OPENAI_API_KEY, ORION_COHERE_API_KEY or
ORION_GEMINI_API_KEY, which take precedence over the file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Long: `Change one setting.

When setting embedding.api_key without a value the key is read from the
terminal without echo.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSet,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the effective settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	Args:  cobra.NoArgs,
	RunE:  runConfigKeys,
}

func init() {
	configValidateCmd.Flags().BoolVar(&configPing, "ping", false, "also contact the embedding provider")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configKeysCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	values := settingValues(settings)
	section := ""
	for _, key := range settingKeys() {
		group, name, _ := strings.Cut(key, ".")
		if group != section {
			if section != "" {
				cmd.Println()
			}
			cmd.Printf("[%s]\n", group)
			section = group
		}
		cmd.Printf("  %-28s %s\n", name, displayValue(key, values[key]))
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'orion config set <key> <value>' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	value, ok := settingValues(settings)[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, args[0])
	}
	cmd.Println(displayValue(args[0], value))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}

	key := args[0]
	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case key == apiKeySetting:
		cmd.Print("API key: ")
		value = readPassword()
		cmd.Println()
	default:
		return fmt.Errorf("a value is required for %s", key)
	}

	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("Set %s = %s\n", key, displayValue(key, value))
	return nil
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}

	if err := settingsService.Validate(); err != nil {
		return err
	}

	if configPing {
		if pingEmbedding == nil {
			return errors.New("embedding check not available")
		}
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		if err := pingEmbedding(cmd.Context(), &settings.Embedding); err != nil {
			return fmt.Errorf("embedding provider check failed: %w", err)
		}
		cmd.Printf("Embedding provider %s is reachable.\n", settings.Embedding.Provider)
	}

	cmd.Println("Configuration is valid.")
	return nil
}

func runConfigKeys(cmd *cobra.Command, _ []string) error {
	for _, key := range settingKeys() {
		cmd.Println(key)
	}
	return nil
}

// settingValues renders every settable key of s as text.
func settingValues(s *domain.AppSettings) map[string]string {
	ftoa := func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
	return map[string]string{
		"embedding.provider":                s.Embedding.Provider.String(),
		"embedding.model":                   s.Embedding.Model,
		"embedding.base_url":                s.Embedding.BaseURL,
		apiKeySetting:                       s.Embedding.APIKey,
		"embedding.batch_size":              strconv.Itoa(s.Embedding.BatchSize),
		"storage.backend":                   s.Storage.Backend.String(),
		"storage.data_dir":                  s.Storage.DataDir,
		"search.default_algorithm":          s.Search.DefaultAlgorithm.String(),
		"search.default_limit":              strconv.Itoa(s.Search.DefaultLimit),
		"search.cosine_weight":              ftoa(s.Search.CosineWeight),
		"search.keyword_weight":             ftoa(s.Search.KeywordWeight),
		"search.small_collection_threshold": strconv.Itoa(s.Search.SmallCollectionThreshold),
		"ingest.chunker":                    s.Ingest.Chunker,
		"ingest.chunk_size":                 strconv.Itoa(s.Ingest.ChunkSize),
		"ingest.overlap_percent":            strconv.Itoa(s.Ingest.OverlapPercent),
		"resilience.requests_per_second":    ftoa(s.Resilience.RequestsPerSecond),
		"resilience.burst":                  strconv.Itoa(s.Resilience.Burst),
		"resilience.failure_threshold":      strconv.Itoa(s.Resilience.FailureThreshold),
		"resilience.open_timeout":           s.Resilience.OpenTimeout.String(),
		"telemetry.otlp_endpoint":           s.Telemetry.OTLPEndpoint,
		"telemetry.sample_ratio":            ftoa(s.Telemetry.SampleRatio),
	}
}

func settingKeys() []string {
	values := settingValues(&domain.AppSettings{})
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func displayValue(key, value string) string {
	if value == "" {
		return "(not set)"
	}
	if key == apiKeySetting {
		return maskAPIKey(value)
	}
	return value
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
