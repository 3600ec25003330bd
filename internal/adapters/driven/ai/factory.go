// Package ai provides factory functions for creating embedding service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	cohereembed "github.com/custodia-labs/orion/internal/adapters/driven/embedding/cohere"
	geminiembed "github.com/custodia-labs/orion/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/custodia-labs/orion/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/orion/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/orion/internal/adapters/driven/embedding/resilient"
	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driven"
	"github.com/custodia-labs/orion/internal/telemetry"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

const fixHint = "Run 'orion config set embedding.provider <provider>' to fix"

// CreateAndValidateEmbeddingService creates the configured embedding service,
// checks connectivity, and wraps it with rate limiting and a circuit breaker.
func CreateAndValidateEmbeddingService(
	ctx context.Context, settings *domain.AppSettings, metrics *telemetry.Metrics,
) (driven.EmbeddingService, error) {
	if settings == nil || !settings.Embedding.IsConfigured() {
		return nil, fmt.Errorf("%w: no embedding provider configured. %s", domain.ErrEmbeddingUnavailable, fixHint)
	}

	svc, err := CreateEmbeddingService(ctx, &settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}

	return resilient.New(svc, settings.Resilience, metrics), nil
}

// ValidateEmbeddingConfig creates a service for settings and pings it.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return fmt.Errorf("%w: no embedding provider configured", domain.ErrEmbeddingUnavailable)
	}

	svc, err := CreateEmbeddingService(ctx, settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(pingCtx)
}

// CreateEmbeddingService creates the embedding service for settings.Provider.
func CreateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: embedding provider not configured", domain.ErrInvalidInput)
	}

	switch settings.Provider {
	case domain.ProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.ProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.ProviderCohere:
		return cohereembed.NewEmbeddingService(cohereembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.ProviderGemini:
		return geminiembed.NewEmbeddingService(ctx, geminiembed.Config{
			APIKey: settings.APIKey,
			Model:  settings.Model,
		})

	default:
		return nil, fmt.Errorf("%w: embedding provider %q", domain.ErrUnsupportedType, settings.Provider)
	}
}
