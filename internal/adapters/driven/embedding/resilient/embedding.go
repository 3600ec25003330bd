// Package resilient wraps an embedding service with a rate limiter and a
// circuit breaker so provider outages fail fast instead of piling up requests.
package resilient

import (
	"context"
	"errors"
	"fmt"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driven"
	"github.com/custodia-labs/orion/internal/logger"
	"github.com/custodia-labs/orion/internal/telemetry"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService decorates another driven.EmbeddingService.
type EmbeddingService struct {
	next    driven.EmbeddingService
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	metrics *telemetry.Metrics
}

// New wraps next. A zero RequestsPerSecond disables rate limiting and a
// zero FailureThreshold disables the breaker's trip condition.
func New(next driven.EmbeddingService, cfg domain.ResilienceSettings, metrics *telemetry.Metrics) *EmbeddingService {
	s := &EmbeddingService{next: next, metrics: metrics}

	if cfg.RequestsPerSecond > 0 {
		burst := max(cfg.Burst, 1)
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	threshold := uint32(max(cfg.FailureThreshold, 0))
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "embedding:" + next.ModelName(),
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return threshold > 0 && counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// Caller mistakes say nothing about provider health.
			return err == nil || domain.IsClientError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker %s: %s -> %s", name, from, to)
			metrics.RecordBreakerState(context.Background(), name, to.String())
		},
	})
	return s
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	result, err := s.execute(ctx, func() (any, error) {
		return s.next.Embed(ctx, text)
	})
	if err != nil {
		return nil, err
	}
	return result.([]float32), nil
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result, err := s.execute(ctx, func() (any, error) {
		return s.next.EmbedBatch(ctx, texts)
	})
	if err != nil {
		return nil, err
	}
	return result.([][]float32), nil
}

func (s *EmbeddingService) execute(ctx context.Context, call func() (any, error)) (any, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %w", domain.ErrEmbeddingUnavailable, err)
		}
	}

	result, err := s.breaker.Execute(call)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		s.metrics.RecordEmbedding(ctx, s.next.ModelName(), false)
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	s.metrics.RecordEmbedding(ctx, s.next.ModelName(), err == nil)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// State reports the breaker state, e.g. "closed" or "open".
func (s *EmbeddingService) State() string {
	return s.breaker.State().String()
}

// Dimensions returns the wrapped service's vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.next.Dimensions()
}

// ModelName returns the wrapped service's model.
func (s *EmbeddingService) ModelName() string {
	return s.next.ModelName()
}

// Ping bypasses the breaker so a recovered provider is visible immediately.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// Close closes the wrapped service.
func (s *EmbeddingService) Close() error {
	return s.next.Close()
}
