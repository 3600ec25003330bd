package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds Orion's instruments. A nil *Metrics is valid and records nothing.
type Metrics struct {
	SearchQueries     metric.Int64Counter
	SearchDuration    metric.Float64Histogram
	ChunksSearched    metric.Int64Histogram
	EmbeddingRequests metric.Int64Counter
	IngestedChunks    metric.Int64Counter
	BreakerChanges    metric.Int64Counter
}

// NewMetrics creates the instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(ServiceName)

	searchQueries, err := meter.Int64Counter(
		"orion.search.queries",
		metric.WithDescription("Search queries executed"),
	)
	if err != nil {
		return nil, err
	}

	searchDuration, err := meter.Float64Histogram(
		"orion.search.duration",
		metric.WithDescription("Search execution time in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	chunksSearched, err := meter.Int64Histogram(
		"orion.search.chunks",
		metric.WithDescription("Chunks considered per search"),
	)
	if err != nil {
		return nil, err
	}

	embeddingRequests, err := meter.Int64Counter(
		"orion.embedding.requests",
		metric.WithDescription("Embedding provider calls"),
	)
	if err != nil {
		return nil, err
	}

	ingestedChunks, err := meter.Int64Counter(
		"orion.ingest.chunks",
		metric.WithDescription("Chunks written by ingestion"),
	)
	if err != nil {
		return nil, err
	}

	breakerChanges, err := meter.Int64Counter(
		"orion.embedding.breaker_state_changes",
		metric.WithDescription("Embedding circuit breaker state transitions"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		SearchQueries:     searchQueries,
		SearchDuration:    searchDuration,
		ChunksSearched:    chunksSearched,
		EmbeddingRequests: embeddingRequests,
		IngestedChunks:    ingestedChunks,
		BreakerChanges:    breakerChanges,
	}, nil
}

// RecordSearch records one search. outcome is "ok" or an error class.
func (m *Metrics) RecordSearch(ctx context.Context, algorithm, outcome string, elapsed time.Duration, chunks int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("search.algorithm", algorithm),
		attribute.String("search.outcome", outcome),
	)
	m.SearchQueries.Add(ctx, 1, attrs)
	m.SearchDuration.Record(ctx, elapsed.Seconds(), attrs)
	m.ChunksSearched.Record(ctx, int64(chunks), attrs)
}

// RecordEmbedding records one call to the embedding provider.
func (m *Metrics) RecordEmbedding(ctx context.Context, model string, success bool) {
	if m == nil {
		return
	}
	m.EmbeddingRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("embedding.model", model),
		attribute.Bool("embedding.success", success),
	))
}

// RecordIngest records chunks produced for one uploaded document.
func (m *Metrics) RecordIngest(ctx context.Context, contentType string, chunks int) {
	if m == nil {
		return
	}
	m.IngestedChunks.Add(ctx, int64(chunks), metric.WithAttributes(
		attribute.String("ingest.content_type", contentType),
	))
}

// RecordBreakerState records a circuit breaker transition.
func (m *Metrics) RecordBreakerState(ctx context.Context, name, state string) {
	if m == nil {
		return
	}
	m.BreakerChanges.Add(ctx, 1, metric.WithAttributes(
		attribute.String("breaker.name", name),
		attribute.String("breaker.state", state),
	))
}
