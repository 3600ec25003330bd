package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/search"
	"github.com/custodia-labs/orion/internal/logger"
)

func newTestEngine(t *testing.T, embedder *mockEmbeddingService) *LibrarySearchEngine {
	t.Helper()
	registry, err := search.NewDefaultRegistry(domain.DefaultAppSettings().Search)
	require.NoError(t, err)
	return NewLibrarySearchEngine(embedder, registry)
}

func newQuery(t *testing.T, text string, alg domain.Algorithm, limit int) domain.SearchQuery {
	t.Helper()
	q, err := domain.NewSearchQuery(text, alg, limit)
	require.NoError(t, err)
	return q
}

func TestLibrarySearchEngine_EndToEnd(t *testing.T) {
	embedder := &mockEmbeddingService{embedding: []float32{1, 0, 0}}
	engine := newTestEngine(t, embedder)
	library := buildLibrary(t,
		chunkSpec{text: "east", embedding: []float32{1, 0, 0}},
		chunkSpec{text: "north", embedding: []float32{0, 1, 0}},
		chunkSpec{text: "north east", embedding: []float32{0.5, 0.5, 0}},
	)

	results, err := engine.SearchLibrary(context.Background(), library,
		newQuery(t, "which way", domain.AlgorithmCosine, 2))

	require.NoError(t, err)
	require.Len(t, results.Results, 2)
	assert.Equal(t, 1, results.Results[0].Rank)
	assert.Equal(t, 0, results.Results[0].Chunk.SequenceIndex())
	assert.InDelta(t, 1.0, results.Results[0].Score, 1e-6)
	assert.Equal(t, 2, results.Results[1].Rank)
	assert.Equal(t, 2, results.Results[1].Chunk.SequenceIndex())
	assert.InDelta(t, 0.7071, results.Results[1].Score, 1e-3)

	assert.Equal(t, 3, results.TotalChunksSearched)
	assert.Equal(t, domain.AlgorithmCosine, results.Algorithm)
	assert.Equal(t, "which way", results.QueryText)
	assert.Equal(t, testEmail, results.LibraryID.Email())
	assert.GreaterOrEqual(t, results.ExecutionTime.Nanoseconds(), int64(0))
	assert.Equal(t, 1, embedder.callCount())
}

func TestLibrarySearchEngine_EmptyLibrary(t *testing.T) {
	embedder := &mockEmbeddingService{embedding: []float32{1, 0, 0}}
	engine := newTestEngine(t, embedder)

	results, err := engine.SearchLibrary(context.Background(), buildLibrary(t),
		newQuery(t, "anything", domain.AlgorithmHybrid, 5))

	require.NoError(t, err)
	assert.NotNil(t, results.Results)
	assert.Empty(t, results.Results)
	assert.Equal(t, 0, results.TotalChunksSearched)
	assert.Equal(t, 0, embedder.callCount(), "embedding service must not be called")
}

func TestLibrarySearchEngine_NoEmbeddedChunks(t *testing.T) {
	embedder := &mockEmbeddingService{embedding: []float32{1, 0}}
	engine := newTestEngine(t, embedder)
	library := buildLibrary(t, chunkSpec{text: "pending"}, chunkSpec{text: "also pending"})

	results, err := engine.SearchLibrary(context.Background(), library,
		newQuery(t, "pending", domain.AlgorithmCosine, 5))

	require.NoError(t, err)
	assert.Empty(t, results.Results)
	assert.Equal(t, 0, embedder.callCount())
}

func TestLibrarySearchEngine_SkipsUnembeddedChunks(t *testing.T) {
	embedder := &mockEmbeddingService{embedding: []float32{1, 0}}
	engine := newTestEngine(t, embedder)
	library := buildLibrary(t,
		chunkSpec{text: "ready", embedding: []float32{1, 0}},
		chunkSpec{text: "in flight"},
	)

	results, err := engine.SearchLibrary(context.Background(), library,
		newQuery(t, "ready", domain.AlgorithmCosine, 5))

	require.NoError(t, err)
	assert.Equal(t, 1, results.TotalChunksSearched)
	require.Len(t, results.Results, 1)
	assert.Equal(t, "ready", results.Results[0].Chunk.Text())
}

func TestLibrarySearchEngine_PrecomputedEmbedding(t *testing.T) {
	embedder := &mockEmbeddingService{embedding: []float32{0, 1}}
	engine := newTestEngine(t, embedder)
	library := buildLibrary(t,
		chunkSpec{text: "a", embedding: []float32{1, 0}},
		chunkSpec{text: "b", embedding: []float32{0, 1}},
	)
	query := newQuery(t, "a", domain.AlgorithmCosine, 1).
		WithEmbedding(domain.MustVector([]float32{1, 0}, "m"))

	results, err := engine.SearchLibrary(context.Background(), library, query)

	require.NoError(t, err)
	require.Len(t, results.Results, 1)
	assert.Equal(t, "a", results.Results[0].Chunk.Text())
	assert.Equal(t, 0, embedder.callCount())
}

func TestLibrarySearchEngine_HybridBoostsKeywordMatch(t *testing.T) {
	embedder := &mockEmbeddingService{embedding: []float32{1, 0}}
	engine := newTestEngine(t, embedder)
	library := buildLibrary(t,
		chunkSpec{text: "general notes about weather", embedding: []float32{1, 0.1}},
		chunkSpec{text: "photosynthesis converts light", embedding: []float32{1, 0.12}},
		chunkSpec{text: "more general notes", embedding: []float32{1, 0.11}},
	)

	cosine, err := engine.SearchLibrary(context.Background(), library,
		newQuery(t, "photosynthesis", domain.AlgorithmCosine, 3))
	require.NoError(t, err)
	hybrid, err := engine.SearchLibrary(context.Background(), library,
		newQuery(t, "photosynthesis", domain.AlgorithmHybrid, 3))
	require.NoError(t, err)

	assert.Equal(t, "photosynthesis converts light", hybrid.Results[0].Chunk.Text())
	assert.NotEqual(t, "photosynthesis converts light", cosine.Results[0].Chunk.Text())
}

func TestLibrarySearchEngine_LogsHybridWeights(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetVerbose(true)
	t.Cleanup(func() {
		logger.SetOutput(os.Stderr)
		logger.SetVerbose(false)
	})

	engine := newTestEngine(t, &mockEmbeddingService{embedding: []float32{1, 0}})
	library := buildLibrary(t, chunkSpec{text: "alpha", embedding: []float32{1, 0}})

	_, err := engine.SearchLibrary(context.Background(), library, newQuery(t, "alpha", domain.AlgorithmCosine, 1))
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "Weights:")

	_, err = engine.SearchLibrary(context.Background(), library, newQuery(t, "alpha", domain.AlgorithmHybrid, 1))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Weights: cosine 0.70, keyword 0.30")
}

func TestLibrarySearchEngine_PropagatesErrors(t *testing.T) {
	library := buildLibrary(t, chunkSpec{text: "x", embedding: []float32{1, 0}})

	t.Run("embedding failure unchanged", func(t *testing.T) {
		upstream := errors.New("provider down")
		engine := newTestEngine(t, &mockEmbeddingService{embedErr: upstream})

		_, err := engine.SearchLibrary(context.Background(), library,
			newQuery(t, "x", domain.AlgorithmCosine, 1))

		assert.Same(t, upstream, err)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		engine := newTestEngine(t, &mockEmbeddingService{embedding: []float32{1, 0, 0}})

		_, err := engine.SearchLibrary(context.Background(), library,
			newQuery(t, "x", domain.AlgorithmCosine, 1))

		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	})

	t.Run("unregistered algorithm", func(t *testing.T) {
		engine := NewLibrarySearchEngine(&mockEmbeddingService{embedding: []float32{1, 0}},
			search.NewRegistry(search.NewCosine()))

		_, err := engine.SearchLibrary(context.Background(), library,
			newQuery(t, "x", domain.AlgorithmHybrid, 1))

		assert.ErrorIs(t, err, domain.ErrUnsupportedAlgorithm)
	})
}

func TestLibrarySearchEngine_SupportedAlgorithms(t *testing.T) {
	engine := newTestEngine(t, &mockEmbeddingService{})
	assert.Equal(t, []domain.Algorithm{domain.AlgorithmCosine, domain.AlgorithmHybrid}, engine.SupportedAlgorithms())
}
