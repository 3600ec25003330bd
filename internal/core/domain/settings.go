package domain

import (
	"fmt"
	"math"
	"time"
)

const unknownDescription = "Unknown"

// EmbeddingProvider identifies an embedding service backend.
type EmbeddingProvider string

// Available embedding providers.
const (
	// ProviderOllama is a local Ollama server.
	ProviderOllama EmbeddingProvider = "ollama"

	// ProviderOpenAI is the OpenAI embeddings API or a compatible server.
	ProviderOpenAI EmbeddingProvider = "openai"

	// ProviderCohere is the Cohere embed API.
	ProviderCohere EmbeddingProvider = "cohere"

	// ProviderGemini is the Google Gemini embedding API.
	ProviderGemini EmbeddingProvider = "gemini"
)

// IsValid returns true if the provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	switch p {
	case ProviderOllama, ProviderOpenAI, ProviderCohere, ProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if the provider needs an API key.
func (p EmbeddingProvider) RequiresAPIKey() bool {
	return p == ProviderOpenAI || p == ProviderCohere || p == ProviderGemini
}

// String returns the string representation.
func (p EmbeddingProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p EmbeddingProvider) Description() string {
	switch p {
	case ProviderOllama:
		return "Ollama (local)"
	case ProviderOpenAI:
		return "OpenAI"
	case ProviderCohere:
		return "Cohere"
	case ProviderGemini:
		return "Google Gemini"
	default:
		return unknownDescription
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []EmbeddingProvider {
	return []EmbeddingProvider{ProviderOllama, ProviderOpenAI, ProviderCohere, ProviderGemini}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[EmbeddingProvider]string {
	return map[EmbeddingProvider]string{
		ProviderOllama: "nomic-embed-text",
		ProviderOpenAI: "text-embedding-3-small",
		ProviderCohere: "embed-english-v3.0",
		ProviderGemini: "text-embedding-004",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Cohere models
		"embed-english-v3.0":            1024,
		"embed-english-light-v3.0":      384,
		"embed-multilingual-v3.0":       1024,
		"embed-multilingual-light-v3.0": 384,
		// Gemini models
		"text-embedding-004": 768,
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider EmbeddingProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (Ollama, OpenAI-compatible, Cohere).
	BaseURL string

	// APIKey is the provider API key.
	APIKey string

	// BatchSize caps texts per batch request during ingestion.
	BatchSize int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// StorageBackend selects how embedding files are persisted.
type StorageBackend string

// Available storage backends.
const (
	// StorageJSON writes one {file_id}_embeddings.json file per document.
	StorageJSON StorageBackend = "json"

	// StorageSQLite keeps embeddings in a single SQLite database.
	StorageSQLite StorageBackend = "sqlite"

	// StorageMemory keeps everything in process memory.
	StorageMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (s StorageBackend) IsValid() bool {
	switch s {
	case StorageJSON, StorageSQLite, StorageMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s StorageBackend) String() string {
	return string(s)
}

// StorageSettings holds persistence configuration.
type StorageSettings struct {
	// Backend is the storage implementation.
	Backend StorageBackend

	// DataDir is the root directory for libraries and databases.
	DataDir string
}

// SearchSettings holds search behaviour settings.
type SearchSettings struct {
	// DefaultAlgorithm is used when a request names none.
	DefaultAlgorithm Algorithm

	// DefaultLimit is used when a request names none.
	DefaultLimit int

	// CosineWeight is the hybrid weight of the semantic signal.
	CosineWeight float64

	// KeywordWeight is the hybrid weight of the keyword signal.
	KeywordWeight float64

	// SmallCollectionThreshold is the largest candidate count for which
	// non-positive IDF values are raised to a small floor.
	SmallCollectionThreshold int
}

// Validate checks hybrid weights and defaults.
func (s SearchSettings) Validate() error {
	if s.CosineWeight < 0 || s.CosineWeight > 1 || s.KeywordWeight < 0 || s.KeywordWeight > 1 {
		return fmt.Errorf("%w: weights must be between 0.0 and 1.0", ErrInvalidWeights)
	}
	if math.Abs(s.CosineWeight+s.KeywordWeight-1) > 1e-6 {
		return fmt.Errorf("%w: cosine and keyword weights must sum to 1.0", ErrInvalidWeights)
	}
	if !s.DefaultAlgorithm.IsValid() {
		return fmt.Errorf("%w: default algorithm %q", ErrInvalidAlgorithm, s.DefaultAlgorithm)
	}
	if s.DefaultLimit <= 0 || s.DefaultLimit > MaxSearchLimit {
		return fmt.Errorf("%w: default limit %d", ErrInvalidLimit, s.DefaultLimit)
	}
	return nil
}

// Chunker names accepted by ingest.chunker.
const (
	ChunkerTokens     = "tokens"
	ChunkerParagraphs = "paragraphs"
)

// IsValidChunker reports whether name is a known chunker.
func IsValidChunker(name string) bool {
	return name == ChunkerTokens || name == ChunkerParagraphs
}

// IngestSettings holds chunking configuration.
type IngestSettings struct {
	// Chunker selects the chunking strategy.
	Chunker string

	// ChunkSize is the number of tokens per chunk.
	ChunkSize int

	// OverlapPercent is the share of each chunk repeated in the next, 0-99.
	OverlapPercent int
}

// ResilienceSettings configures the embedding client guard.
type ResilienceSettings struct {
	// RequestsPerSecond limits embedding calls. Zero disables limiting.
	RequestsPerSecond float64

	// Burst is the limiter burst size.
	Burst int

	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold int

	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
}

// TelemetrySettings configures OpenTelemetry export.
type TelemetrySettings struct {
	// OTLPEndpoint is the gRPC collector address. Empty disables export.
	OTLPEndpoint string

	// SampleRatio is the trace sampling ratio in [0,1].
	SampleRatio float64
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding  EmbeddingSettings
	Storage    StorageSettings
	Search     SearchSettings
	Ingest     IngestSettings
	Resilience ResilienceSettings
	Telemetry  TelemetrySettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The embedding provider is left unconfigured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			BatchSize: 96,
		},
		Storage: StorageSettings{
			Backend: StorageJSON,
		},
		Search: SearchSettings{
			DefaultAlgorithm:         AlgorithmCosine,
			DefaultLimit:             10,
			CosineWeight:             0.7,
			KeywordWeight:            0.3,
			SmallCollectionThreshold: 10,
		},
		Ingest: IngestSettings{
			Chunker:        ChunkerTokens,
			ChunkSize:      512,
			OverlapPercent: 10,
		},
		Resilience: ResilienceSettings{
			RequestsPerSecond: 10,
			Burst:             5,
			FailureThreshold:  5,
			OpenTimeout:       30 * time.Second,
		},
		Telemetry: TelemetrySettings{
			SampleRatio: 1,
		},
	}
}
