// Package gemini provides an embedding service adapter for Google's Gemini
// embedding models via the generative-ai-go SDK.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "text-embedding-004"
	DefaultDimensions = 768

	// MaxBatchSize is the most contents BatchEmbedContents accepts per call.
	MaxBatchSize = 100
)

// Config holds configuration for the Gemini embedding service.
type Config struct {
	// APIKey is the Google AI Studio API key (required).
	APIKey string

	// Model is the embedding model to use (default: text-embedding-004).
	Model string
}

// backend is the part of the SDK the service uses.
type backend interface {
	embed(ctx context.Context, task genai.TaskType, texts []string) ([][]float32, error)
	ping(ctx context.Context) error
	close() error
}

// EmbeddingService generates embeddings with Gemini.
// Embed uses the retrieval-query task type and EmbedBatch the retrieval-document type.
type EmbeddingService struct {
	backend    backend
	model      string
	dimensions int
}

// NewEmbeddingService creates a client for the Gemini API.
func NewEmbeddingService(ctx context.Context, cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w: API key is required", domain.ErrInvalidInput)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: %w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	return newWithBackend(&sdkBackend{client: client, model: cfg.Model}, cfg.Model), nil
}

func newWithBackend(b backend, model string) *EmbeddingService {
	dimensions, ok := domain.EmbeddingDimensions()[model]
	if !ok {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{backend: b, model: model, dimensions: dimensions}
}

// Embed generates a query embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("gemini: %w: text cannot be empty", domain.ErrEmptyInput)
	}
	embeddings, err := s.call(ctx, genai.TaskTypeRetrievalQuery, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates document embeddings, splitting into calls of at most MaxBatchSize.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("gemini: %w: no texts to embed", domain.ErrEmptyInput)
	}
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, fmt.Errorf("gemini: %w: text %d is blank", domain.ErrEmptyInput, i)
		}
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += MaxBatchSize {
		end := min(start+MaxBatchSize, len(texts))
		embeddings, err := s.call(ctx, genai.TaskTypeRetrievalDocument, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, embeddings...)
	}
	return out, nil
}

func (s *EmbeddingService) call(ctx context.Context, task genai.TaskType, texts []string) ([][]float32, error) {
	embeddings, err := s.backend.embed(ctx, task, texts)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w: %w", domain.ErrEmbeddingFailed, err)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini: %w: expected %d embeddings, got %d",
			domain.ErrEmbeddingFailed, len(texts), len(embeddings))
	}
	for i, e := range embeddings {
		if len(e) == 0 {
			return nil, fmt.Errorf("gemini: %w: no embedding returned for text %d", domain.ErrEmbeddingFailed, i)
		}
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping fetches the model's metadata, validating the key without running inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if err := s.backend.ping(ctx); err != nil {
		return fmt.Errorf("gemini: %w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	return nil
}

// Close releases the SDK client.
func (s *EmbeddingService) Close() error {
	return s.backend.close()
}

// sdkBackend adapts *genai.Client.
type sdkBackend struct {
	client *genai.Client
	model  string
}

func (b *sdkBackend) embed(ctx context.Context, task genai.TaskType, texts []string) ([][]float32, error) {
	// A fresh model handle per call keeps TaskType free of shared mutation.
	em := b.client.EmbeddingModel(b.model)
	em.TaskType = task

	if len(texts) == 1 {
		resp, err := em.EmbedContent(ctx, genai.Text(texts[0]))
		if err != nil {
			return nil, err
		}
		if resp.Embedding == nil {
			return [][]float32{nil}, nil
		}
		return [][]float32{resp.Embedding.Values}, nil
	}

	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}
	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, err
	}
	out := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if e != nil {
			out[i] = e.Values
		}
	}
	return out, nil
}

func (b *sdkBackend) ping(ctx context.Context) error {
	_, err := b.client.EmbeddingModel(b.model).Info(ctx)
	return err
}

func (b *sdkBackend) close() error {
	return b.client.Close()
}
