package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driven"
	"github.com/custodia-labs/orion/internal/core/ports/driving"
	"github.com/custodia-labs/orion/internal/logger"
	"github.com/custodia-labs/orion/internal/telemetry"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

const tracerName = "github.com/custodia-labs/orion/internal/core/services"

// QueryService validates search requests and delegates them to the engine.
type QueryService struct {
	repo    driven.LibraryRepository
	engine  driving.SearchEngine
	metrics *telemetry.Metrics
	tracer  trace.Tracer
}

// NewQueryService creates a query service. metrics may be nil.
func NewQueryService(
	repo driven.LibraryRepository,
	engine driving.SearchEngine,
	metrics *telemetry.Metrics,
) *QueryService {
	return &QueryService{
		repo:    repo,
		engine:  engine,
		metrics: metrics,
		tracer:  otel.Tracer(tracerName),
	}
}

// ExecuteQuery runs a search over the user's library.
// All validation happens before any storage access; the existence probe
// happens before loading.
func (s *QueryService) ExecuteQuery(
	ctx context.Context, userEmail, queryText, algorithm string, limit int,
) (results *domain.SearchResults, err error) {
	ctx, span := s.tracer.Start(ctx, "QueryService.ExecuteQuery")
	start := time.Now()
	defer func() {
		s.finish(ctx, span, results, err, time.Since(start))
	}()

	if strings.TrimSpace(userEmail) == "" {
		return nil, fmt.Errorf("%w: user email is required", domain.ErrEmptyInput)
	}
	if strings.TrimSpace(queryText) == "" {
		return nil, fmt.Errorf("%w: query text is required", domain.ErrEmptyInput)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: must be positive, got %d", domain.ErrInvalidLimit, limit)
	}

	libID, err := domain.NewLibraryID(strings.TrimSpace(userEmail))
	if err != nil {
		return nil, err
	}

	alg, err := s.resolveAlgorithm(algorithm)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("search.algorithm", alg.String()),
		attribute.Int("search.limit", limit),
	)

	query, err := domain.NewSearchQuery(queryText, alg, limit)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.LibraryExists(ctx, libID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrLibraryNotFound, libID)
	}

	library, err := s.repo.LoadLibrary(ctx, libID)
	if err != nil {
		return nil, err
	}

	return s.engine.SearchLibrary(ctx, library, query)
}

// SupportedAlgorithms returns the engine's registered algorithm names.
func (s *QueryService) SupportedAlgorithms() []string {
	algs := s.engine.SupportedAlgorithms()
	names := make([]string, len(algs))
	for i, a := range algs {
		names[i] = a.String()
	}
	return names
}

// LibraryStats reports counts for the user's library.
// A library that does not exist yields the all-zero record.
func (s *QueryService) LibraryStats(ctx context.Context, userEmail string) (domain.LibraryStats, error) {
	ctx, span := s.tracer.Start(ctx, "QueryService.LibraryStats")
	defer span.End()

	libID, err := parseLibrary(userEmail)
	if err != nil {
		return domain.LibraryStats{}, err
	}

	exists, err := s.repo.LibraryExists(ctx, libID)
	if err != nil {
		span.RecordError(err)
		return domain.LibraryStats{}, err
	}
	if !exists {
		return domain.MissingLibraryStats(libID.Email()), nil
	}

	library, err := s.repo.LoadLibrary(ctx, libID)
	if err != nil {
		span.RecordError(err)
		return domain.LibraryStats{}, err
	}
	return library.Stats(), nil
}

// resolveAlgorithm parses name and checks the engine has it registered.
func (s *QueryService) resolveAlgorithm(name string) (domain.Algorithm, error) {
	alg, err := domain.ParseAlgorithm(name)
	if err != nil {
		return "", err
	}
	if !slices.Contains(s.engine.SupportedAlgorithms(), alg) {
		return "", fmt.Errorf("%w: %q, valid options: %s",
			domain.ErrInvalidAlgorithm, name, strings.Join(s.SupportedAlgorithms(), ", "))
	}
	return alg, nil
}

func (s *QueryService) finish(
	ctx context.Context, span trace.Span, results *domain.SearchResults, err error, elapsed time.Duration,
) {
	defer span.End()

	algorithm, outcome, searched := "", "ok", 0
	if results != nil {
		algorithm = results.Algorithm.String()
		searched = results.TotalChunksSearched
		span.SetAttributes(
			attribute.Int("search.results", results.Count()),
			attribute.Int("search.chunks_searched", searched),
		)
	}
	if err != nil {
		outcome = errorClass(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		if outcome == "upstream" {
			logger.Error("query failed: %v", err)
		} else {
			logger.Debug("query rejected: %v", err)
		}
	}
	s.metrics.RecordSearch(ctx, algorithm, outcome, elapsed, searched)
}

// errorClass buckets an error for metrics and span status.
func errorClass(err error) string {
	switch {
	case domain.IsClientError(err):
		return "client"
	case domain.IsNotFound(err):
		return "not_found"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "upstream"
	}
}
