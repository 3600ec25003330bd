// Package cli implements the orion command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driving"
	"github.com/custodia-labs/orion/internal/logger"
)

// EnvUser names the environment variable used when --user is not given.
const EnvUser = "ORION_USER"

// Services holds the driving ports the commands run against.
// Query and Ingest are nil when no embedding provider could be set up;
// SetupErr then says why.
type Services struct {
	Query    driving.QueryService
	Ingest   driving.IngestService
	Settings driving.SettingsService

	// SetupErr is the reason Query or Ingest are missing.
	SetupErr error

	// PingEmbedding checks that an embedding provider is reachable. May be nil.
	PingEmbedding func(ctx context.Context, settings *domain.EmbeddingSettings) error

	// Close releases storage and telemetry. May be nil.
	Close func() error
}

// ServiceFactory builds services from an optional config file path.
type ServiceFactory func(ctx context.Context, configPath string) (*Services, error)

var (
	version = "dev"

	queryService    driving.QueryService
	ingestService   driving.IngestService
	settingsService driving.SettingsService
	setupErr        error
	pingEmbedding   func(ctx context.Context, settings *domain.EmbeddingSettings) error
	closeServices   func() error

	serviceFactory ServiceFactory

	verbose    bool
	configPath string
	userEmail  string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "orion",
	Short: "Search your document library",
	Long: `Orion keeps a private document library per user and answers
natural-language queries against it.

Documents are split into chunks, embedded with the configured provider
and searched by cosine similarity or a hybrid of cosine and BM25 keywords.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.orion/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&userEmail, "user", "u", "", "library owner email (default $"+EnvUser+")")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading settings")
}

// SetVersion sets the version reported by the version command and telemetry.
func SetVersion(v string) {
	version = v
}

// Version returns the configured version.
func Version() string {
	return version
}

// SetServiceFactory installs the function that builds services before each command.
func SetServiceFactory(f ServiceFactory) {
	serviceFactory = f
}

// SetServices installs services directly, bypassing the factory.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	queryService = s.Query
	ingestService = s.Ingest
	settingsService = s.Settings
	setupErr = s.SetupErr
	pingEmbedding = s.PingEmbedding
	closeServices = s.Close
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("could not load %s: %v", envFile, err)
		}
	}

	if serviceFactory == nil {
		return nil
	}

	services, err := serviceFactory(cmd.Context(), configPath)
	if err != nil {
		return fmt.Errorf("failed to initialise: %w", err)
	}
	SetServices(services)
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if closeServices == nil {
		return nil
	}
	closeFn := closeServices
	closeServices = nil
	return closeFn()
}

// notConfigured reports a missing service, with the setup failure if known.
func notConfigured(name string) error {
	if setupErr != nil {
		return fmt.Errorf("%s service not configured: %w", name, setupErr)
	}
	return fmt.Errorf("%s service not configured", name)
}

// resolveUser returns the --user flag or the EnvUser fallback.
func resolveUser() (string, error) {
	email := strings.TrimSpace(userEmail)
	if email == "" {
		email = strings.TrimSpace(os.Getenv(EnvUser))
	}
	if email == "" {
		return "", fmt.Errorf("user email required: pass --user or set %s", EnvUser)
	}
	return email, nil
}

// searchDefaults returns the configured search defaults, or the built-in
// ones when settings cannot be read.
func searchDefaults() domain.SearchSettings {
	if settingsService != nil {
		if s, err := settingsService.Get(); err == nil {
			return s.Search
		}
	}
	return domain.DefaultAppSettings().Search
}

// algorithmOrDefault returns name, or the configured default when name is blank.
func algorithmOrDefault(name string) string {
	if strings.TrimSpace(name) == "" {
		return searchDefaults().DefaultAlgorithm.String()
	}
	return name
}
