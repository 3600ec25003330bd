package services

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driven"
	"github.com/custodia-labs/orion/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedBatchSize  = "embedding.batch_size"
	keyStorageBackend  = "storage.backend"
	keyStorageDataDir  = "storage.data_dir"
	keyDefaultAlg      = "search.default_algorithm"
	keyDefaultLimit    = "search.default_limit"
	keyCosineWeight    = "search.cosine_weight"
	keyKeywordWeight   = "search.keyword_weight"
	keySmallCollection = "search.small_collection_threshold"
	keyChunker         = "ingest.chunker"
	keyChunkSize       = "ingest.chunk_size"
	keyOverlapPercent  = "ingest.overlap_percent"
	keyRateLimit       = "resilience.requests_per_second"
	keyRateBurst       = "resilience.burst"
	keyFailThreshold   = "resilience.failure_threshold"
	keyOpenTimeout     = "resilience.open_timeout"
	keyOTLPEndpoint    = "telemetry.otlp_endpoint"
	keySampleRatio     = "telemetry.sample_ratio"
)

// Environment variables that override file settings.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvOpenAIKey    = "ORION_OPENAI_API_KEY"
	EnvCohereKey    = "ORION_COHERE_API_KEY"
	EnvGeminiKey    = "ORION_GEMINI_API_KEY"
	EnvOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindDuration
)

// settingKinds lists every key accepted by Set and how its value is parsed.
var settingKinds = map[string]valueKind{
	keyEmbedProvider:   kindString,
	keyEmbedModel:      kindString,
	keyEmbedBaseURL:    kindString,
	keyEmbedAPIKey:     kindString,
	keyEmbedBatchSize:  kindInt,
	keyStorageBackend:  kindString,
	keyStorageDataDir:  kindString,
	keyDefaultAlg:      kindString,
	keyDefaultLimit:    kindInt,
	keyCosineWeight:    kindFloat,
	keyKeywordWeight:   kindFloat,
	keySmallCollection: kindInt,
	keyChunker:         kindString,
	keyChunkSize:       kindInt,
	keyOverlapPercent:  kindInt,
	keyRateLimit:       kindFloat,
	keyRateBurst:       kindInt,
	keyFailThreshold:   kindInt,
	keyOpenTimeout:     kindDuration,
	keyOTLPEndpoint:    kindString,
	keySampleRatio:     kindFloat,
}

var providerKeyEnv = map[domain.EmbeddingProvider]string{
	domain.ProviderOpenAI: EnvOpenAIKey,
	domain.ProviderCohere: EnvCohereKey,
	domain.ProviderGemini: EnvGeminiKey,
}

// SettingsService manages application settings.
// Effective values are file values over defaults, with environment over file.
type SettingsService struct {
	configStore driven.ConfigStore
	dataDir     string
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
// dataDir is used when the config names no storage directory.
func NewSettingsService(configStore driven.ConfigStore, dataDir string) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		dataDir:     dataDir,
		lookupEnv:   os.LookupEnv,
	}
}

// Keys returns every settable key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	provider := s.getProvider(keyEmbedProvider, defaults.Embedding.Provider)
	model := s.getString(keyEmbedModel, "")
	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:  provider,
			Model:     model,
			BaseURL:   s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:    s.configStore.GetString(keyEmbedAPIKey),
			BatchSize: s.getInt(keyEmbedBatchSize, defaults.Embedding.BatchSize),
		},
		Storage: domain.StorageSettings{
			Backend: s.getBackend(defaults.Storage.Backend),
			DataDir: s.getString(keyStorageDataDir, s.dataDir),
		},
		Search: domain.SearchSettings{
			DefaultAlgorithm:         s.getAlgorithm(defaults.Search.DefaultAlgorithm),
			DefaultLimit:             s.getInt(keyDefaultLimit, defaults.Search.DefaultLimit),
			CosineWeight:             s.getFloat(keyCosineWeight, defaults.Search.CosineWeight),
			KeywordWeight:            s.getFloat(keyKeywordWeight, defaults.Search.KeywordWeight),
			SmallCollectionThreshold: s.getInt(keySmallCollection, defaults.Search.SmallCollectionThreshold),
		},
		Ingest: domain.IngestSettings{
			Chunker:        s.getString(keyChunker, defaults.Ingest.Chunker),
			ChunkSize:      s.getInt(keyChunkSize, defaults.Ingest.ChunkSize),
			OverlapPercent: s.getInt(keyOverlapPercent, defaults.Ingest.OverlapPercent),
		},
		Resilience: domain.ResilienceSettings{
			RequestsPerSecond: s.getFloat(keyRateLimit, defaults.Resilience.RequestsPerSecond),
			Burst:             s.getInt(keyRateBurst, defaults.Resilience.Burst),
			FailureThreshold:  s.getInt(keyFailThreshold, defaults.Resilience.FailureThreshold),
			OpenTimeout:       s.getDuration(keyOpenTimeout, defaults.Resilience.OpenTimeout),
		},
		Telemetry: domain.TelemetrySettings{
			OTLPEndpoint: s.configStore.GetString(keyOTLPEndpoint),
			SampleRatio:  s.getFloat(keySampleRatio, defaults.Telemetry.SampleRatio),
		},
	}

	s.applyEnv(settings)

	return settings, nil
}

// applyEnv overrides secrets and the collector endpoint from the environment.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	if name, ok := providerKeyEnv[settings.Embedding.Provider]; ok {
		if key, ok := s.lookupEnv(name); ok && key != "" {
			settings.Embedding.APIKey = key
		}
	}
	if endpoint, ok := s.lookupEnv(EnvOTLPEndpoint); ok && endpoint != "" {
		settings.Telemetry.OTLPEndpoint = endpoint
	}
}

// Set parses value for key's type and persists it.
// String values are accepted for every key so CLI input can be stored as typed.
func (s *SettingsService) Set(key string, value any) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseSetting(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	if err := validateEnum(key, parsed); err != nil {
		return err
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Validate checks if current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	if err := settings.Search.Validate(); err != nil {
		errs = append(errs, err)
	}
	if !settings.Storage.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("%w: storage backend %q", domain.ErrInvalidInput, settings.Storage.Backend))
	}
	if !settings.Embedding.IsConfigured() {
		errs = append(errs, fmt.Errorf("%w: embedding provider %q is not configured",
			domain.ErrInvalidInput, settings.Embedding.Provider))
	}
	if !domain.IsValidChunker(settings.Ingest.Chunker) {
		errs = append(errs, fmt.Errorf("%w: chunker %q", domain.ErrUnsupportedType, settings.Ingest.Chunker))
	}
	if settings.Ingest.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: chunk size must be positive", domain.ErrInvalidInput))
	}
	if settings.Ingest.OverlapPercent < 0 || settings.Ingest.OverlapPercent > 99 {
		errs = append(errs, fmt.Errorf("%w: overlap percent must be between 0 and 99", domain.ErrInvalidInput))
	}
	return errors.Join(errs...)
}

// Helper methods for reading config with defaults.
// Numeric keys use presence rather than zero, since zero is a valid weight.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.EmbeddingProvider) domain.EmbeddingProvider {
	provider := domain.EmbeddingProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	backend := domain.StorageBackend(s.configStore.GetString(keyStorageBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getAlgorithm(defaultVal domain.Algorithm) domain.Algorithm {
	val := s.configStore.GetString(keyDefaultAlg)
	if val == "" {
		return defaultVal
	}
	alg, err := domain.ParseAlgorithm(val)
	if err != nil {
		return defaultVal
	}
	return alg
}

func parseSetting(kind valueKind, value any) (any, error) {
	str, isString := value.(string)
	switch kind {
	case kindString:
		if !isString {
			return nil, fmt.Errorf("expected a string, got %T", value)
		}
		return str, nil
	case kindInt:
		switch v := value.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case string:
			return strconv.Atoi(strings.TrimSpace(v))
		}
	case kindFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case string:
			return strconv.ParseFloat(strings.TrimSpace(v), 64)
		}
	case kindDuration:
		switch v := value.(type) {
		case time.Duration:
			return v.String(), nil
		case string:
			if _, err := time.ParseDuration(v); err != nil {
				return nil, err
			}
			return v, nil
		}
	}
	return nil, fmt.Errorf("unexpected value type %T", value)
}

func validateEnum(key string, value any) error {
	str, _ := value.(string)
	switch key {
	case keyEmbedProvider:
		if !domain.EmbeddingProvider(str).IsValid() {
			return fmt.Errorf("%w: embedding provider %q", domain.ErrUnsupportedType, str)
		}
	case keyStorageBackend:
		if !domain.StorageBackend(str).IsValid() {
			return fmt.Errorf("%w: storage backend %q", domain.ErrUnsupportedType, str)
		}
	case keyDefaultAlg:
		if _, err := domain.ParseAlgorithm(str); err != nil {
			return err
		}
	case keyChunker:
		if !domain.IsValidChunker(str) {
			return fmt.Errorf("%w: chunker %q", domain.ErrUnsupportedType, str)
		}
	}
	return nil
}
