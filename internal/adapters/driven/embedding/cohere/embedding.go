// Package cohere provides an embedding service adapter for the Cohere embed API.
package cohere

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.cohere.ai"
	DefaultModel      = "embed-english-v3.0"
	DefaultTimeout    = 60 * time.Second
	DefaultDimensions = 1024

	// MaxBatchSize is the most texts the embed endpoint accepts per call.
	MaxBatchSize = 96
)

// Cohere embeds queries and documents into slightly different spaces.
const (
	inputTypeQuery    = "search_query"
	inputTypeDocument = "search_document"
)

// Config holds configuration for the Cohere embedding service.
type Config struct {
	// APIKey is the Cohere API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.cohere.ai).
	BaseURL string

	// Model is the embedding model to use (default: embed-english-v3.0).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// EmbeddingService generates embeddings using Cohere.
// Embed is tuned for search queries and EmbedBatch for document chunks.
type EmbeddingService struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	model      string
	dimensions int
}

type embedRequest struct {
	Texts     []string `json:"texts"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type"`
	Truncate  string   `json:"truncate,omitempty"`
}

type embedResponse struct {
	ID         string      `json:"id"`
	Embeddings [][]float32 `json:"embeddings"`
	Message    string      `json:"message,omitempty"`
}

// NewEmbeddingService creates a new Cohere embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("cohere: %w: API key is required", domain.ErrInvalidInput)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	dimensions, ok := domain.EmbeddingDimensions()[cfg.Model]
	if !ok {
		dimensions = DefaultDimensions
	}

	return &EmbeddingService{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: dimensions,
	}, nil
}

// Embed generates a query embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("cohere: %w: text cannot be empty", domain.ErrEmptyInput)
	}
	embeddings, err := s.embed(ctx, []string{text}, inputTypeQuery)
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates document embeddings, splitting into calls of at most MaxBatchSize.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("cohere: %w: no texts to embed", domain.ErrEmptyInput)
	}
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, fmt.Errorf("cohere: %w: text %d is blank", domain.ErrEmptyInput, i)
		}
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += MaxBatchSize {
		end := min(start+MaxBatchSize, len(texts))
		embeddings, err := s.embed(ctx, texts[start:end], inputTypeDocument)
		if err != nil {
			return nil, err
		}
		out = append(out, embeddings...)
	}
	return out, nil
}

func (s *EmbeddingService) embed(ctx context.Context, texts []string, inputType string) ([][]float32, error) {
	jsonBody, err := json.Marshal(embedRequest{
		Texts:     texts,
		Model:     s.model,
		InputType: inputType,
		Truncate:  "END",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/embed", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cohere: %w: %w", domain.ErrEmbeddingFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cohere: %w: read response: %w", domain.ErrEmbeddingFailed, err)
	}

	var embedResp embedResponse
	if err := json.Unmarshal(body, &embedResp); err != nil {
		return nil, fmt.Errorf("cohere: %w: status %d: decode response: %w", domain.ErrEmbeddingFailed, resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := embedResp.Message
		if msg == "" {
			msg = string(body)
		}
		return nil, fmt.Errorf("cohere: %w: status %d: %s", domain.ErrEmbeddingFailed, resp.StatusCode, msg)
	}
	if len(embedResp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("cohere: %w: expected %d embeddings, got %d",
			domain.ErrEmbeddingFailed, len(texts), len(embedResp.Embeddings))
	}
	return embedResp.Embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the API key with the check-api-key endpoint.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/check-api-key", http.NoBody)
	if err != nil {
		return fmt.Errorf("cohere: failed to create ping request: %w", err)
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("cohere: %w: ping failed: %w", domain.ErrEmbeddingUnavailable, err)
	}
	defer resp.Body.Close()

	var check struct {
		Valid bool `json:"valid"`
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cohere: %w: API returned status %d", domain.ErrEmbeddingUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&check); err != nil || !check.Valid {
		return fmt.Errorf("cohere: %w: API key rejected", domain.ErrEmbeddingUnavailable)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *EmbeddingService) authorize(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
}
