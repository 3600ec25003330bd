package services

import (
	"context"
	"time"

	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driven"
	"github.com/custodia-labs/orion/internal/core/ports/driving"
	"github.com/custodia-labs/orion/internal/core/search"
	"github.com/custodia-labs/orion/internal/logger"
)

// Ensure LibrarySearchEngine implements the interface.
var _ driving.SearchEngine = (*LibrarySearchEngine)(nil)

// LibrarySearchEngine runs one query over one materialised library.
// It holds no per-query state and is safe for concurrent use.
type LibrarySearchEngine struct {
	embedder   driven.EmbeddingService
	algorithms *search.Registry
	now        func() time.Time
}

// NewLibrarySearchEngine creates an engine dispatching to the given registry.
func NewLibrarySearchEngine(embedder driven.EmbeddingService, algorithms *search.Registry) *LibrarySearchEngine {
	return &LibrarySearchEngine{
		embedder:   embedder,
		algorithms: algorithms,
		now:        time.Now,
	}
}

// SearchLibrary ranks the library's embedded chunks against query.
// Libraries with nothing embedded return an empty envelope without calling
// the embedding service. Embedding, algorithm and dispatch errors are
// returned unchanged.
func (e *LibrarySearchEngine) SearchLibrary(
	ctx context.Context, library *domain.Library, query domain.SearchQuery,
) (*domain.SearchResults, error) {
	start := e.now()

	logger.Section("Library Search")
	logger.Debug("Library: %s, algorithm: %s, limit: %d", library.ID(), query.Algorithm(), query.Limit())

	if !library.HasDocumentsWithEmbeddings() {
		logger.Debug("No embedded documents, returning empty results")
		return e.empty(library, query, start)
	}

	if !query.HasEmbedding() {
		values, err := e.embedder.Embed(ctx, query.Text())
		if err != nil {
			return nil, err
		}
		vec, err := domain.NewVector(values, e.embedder.ModelName())
		if err != nil {
			return nil, err
		}
		query = query.WithEmbedding(vec)
		logger.Debug("Query embedding: %d dimensions", vec.Dimension())
	}

	chunks := library.ChunksWithEmbeddings()
	if len(chunks) == 0 {
		logger.Debug("No embedded chunks in materialised library, returning empty results")
		return e.empty(library, query, start)
	}

	alg, err := e.algorithms.Get(query.Algorithm())
	if err != nil {
		return nil, err
	}
	if w, ok := alg.(weighted); ok {
		cw, kw := w.Weights()
		logger.Debug("Weights: cosine %.2f, keyword %.2f", cw, kw)
	}

	results, err := alg.Search(query.Embedding(), chunks, query.Limit(), query.Text())
	if err != nil {
		return nil, err
	}

	elapsed := e.now().Sub(start)
	logger.Info("Search over %d chunks returned %d results in %s", len(chunks), len(results), elapsed)

	return domain.NewSearchResults(results, query.Algorithm(), elapsed, len(chunks), library.ID(), query.Text())
}

// weighted is implemented by algorithms that blend several signals.
type weighted interface {
	Weights() (cosine, keyword float64)
}

// SupportedAlgorithms returns the registered algorithm names.
func (e *LibrarySearchEngine) SupportedAlgorithms() []domain.Algorithm {
	return e.algorithms.Names()
}

func (e *LibrarySearchEngine) empty(
	library *domain.Library, query domain.SearchQuery, start time.Time,
) (*domain.SearchResults, error) {
	return domain.NewSearchResults(nil, query.Algorithm(), e.now().Sub(start), 0, library.ID(), query.Text())
}
