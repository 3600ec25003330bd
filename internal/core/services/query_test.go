package services

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/orion/internal/core/domain"
)

func newTestQueryService(t *testing.T, repo *mockRepository, embedder *mockEmbeddingService) *QueryService {
	t.Helper()
	return NewQueryService(repo, newTestEngine(t, embedder), nil)
}

func TestQueryService_ExecuteQuery(t *testing.T) {
	library := buildLibrary(t,
		chunkSpec{text: "east", embedding: []float32{1, 0, 0}},
		chunkSpec{text: "north", embedding: []float32{0, 1, 0}},
		chunkSpec{text: "north east", embedding: []float32{0.5, 0.5, 0}},
	)
	repo := &mockRepository{library: library, exists: true}
	svc := newTestQueryService(t, repo, &mockEmbeddingService{embedding: []float32{1, 0, 0}})

	results, err := svc.ExecuteQuery(context.Background(), testEmail, "east", "COSINE", 2)

	require.NoError(t, err)
	require.Len(t, results.Results, 2)
	assert.Equal(t, "east", results.Results[0].Chunk.Text())
	assert.Equal(t, "north east", results.Results[1].Chunk.Text())
	assert.Equal(t, domain.AlgorithmCosine, results.Algorithm)
	assert.Equal(t, 1, repo.loads)
}

func TestQueryService_ExecuteQuery_BlankAlgorithmRejected(t *testing.T) {
	for _, name := range []string{"", "   "} {
		t.Run("algorithm "+strconv.Quote(name), func(t *testing.T) {
			repo := &mockRepository{library: buildLibrary(t), exists: true}
			svc := newTestQueryService(t, repo, &mockEmbeddingService{})

			_, err := svc.ExecuteQuery(context.Background(), testEmail, "anything", name, 3)

			require.ErrorIs(t, err, domain.ErrInvalidAlgorithm)
			assert.Contains(t, err.Error(), "valid options: cosine, hybrid")
			assert.Equal(t, 0, repo.loads, "invalid request must not load the library")
		})
	}
}

func TestQueryService_ExecuteQuery_Validation(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		text      string
		algorithm string
		limit     int
		wantErr   error
	}{
		{"blank email", "  ", "q", "cosine", 5, domain.ErrEmptyInput},
		{"blank query", testEmail, "\t", "cosine", 5, domain.ErrEmptyInput},
		{"zero limit", testEmail, "q", "cosine", 0, domain.ErrInvalidLimit},
		{"negative limit", testEmail, "q", "cosine", -3, domain.ErrInvalidLimit},
		{"limit too large", testEmail, "q", "cosine", domain.MaxSearchLimit + 1, domain.ErrInvalidLimit},
		{"malformed email", "not-an-email", "q", "cosine", 5, domain.ErrInvalidEmail},
		{"unknown algorithm", testEmail, "q", "bm25", 5, domain.ErrInvalidAlgorithm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepository{exists: true, library: buildLibrary(t)}
			svc := newTestQueryService(t, repo, &mockEmbeddingService{})

			_, err := svc.ExecuteQuery(context.Background(), tt.email, tt.text, tt.algorithm, tt.limit)

			require.ErrorIs(t, err, tt.wantErr)
			assert.True(t, domain.IsClientError(err))
			assert.Equal(t, 0, repo.loads, "validation must happen before loading")
		})
	}
}

func TestQueryService_ExecuteQuery_LibraryNotFound(t *testing.T) {
	repo := &mockRepository{exists: false}
	embedder := &mockEmbeddingService{embedding: []float32{1}}
	svc := newTestQueryService(t, repo, embedder)

	_, err := svc.ExecuteQuery(context.Background(), testEmail, "q", "hybrid", 5)

	require.ErrorIs(t, err, domain.ErrLibraryNotFound)
	assert.True(t, domain.IsNotFound(err))
	assert.Equal(t, 0, repo.loads, "missing library must not be loaded")
	assert.Equal(t, 0, embedder.callCount())
}

func TestQueryService_ExecuteQuery_UpstreamErrors(t *testing.T) {
	t.Run("existence probe", func(t *testing.T) {
		probeErr := errors.New("disk unavailable")
		svc := newTestQueryService(t, &mockRepository{existsErr: probeErr}, &mockEmbeddingService{})

		_, err := svc.ExecuteQuery(context.Background(), testEmail, "q", "cosine", 5)
		assert.Same(t, probeErr, err)
	})

	t.Run("load", func(t *testing.T) {
		loadErr := errors.New("corrupt index")
		svc := newTestQueryService(t, &mockRepository{exists: true, loadErr: loadErr}, &mockEmbeddingService{})

		_, err := svc.ExecuteQuery(context.Background(), testEmail, "q", "cosine", 5)
		assert.Same(t, loadErr, err)
	})

	t.Run("embedding", func(t *testing.T) {
		embedErr := errors.New("rate limited")
		repo := &mockRepository{exists: true, library: buildLibrary(t, chunkSpec{text: "x", embedding: []float32{1}})}
		svc := newTestQueryService(t, repo, &mockEmbeddingService{embedErr: embedErr})

		_, err := svc.ExecuteQuery(context.Background(), testEmail, "q", "cosine", 5)
		assert.Same(t, embedErr, err)
		assert.False(t, domain.IsClientError(err))
	})
}

func TestQueryService_SupportedAlgorithms(t *testing.T) {
	svc := newTestQueryService(t, &mockRepository{}, &mockEmbeddingService{})
	assert.Equal(t, []string{"cosine", "hybrid"}, svc.SupportedAlgorithms())
}

func TestQueryService_LibraryStats(t *testing.T) {
	t.Run("existing library", func(t *testing.T) {
		library := buildLibrary(t,
			chunkSpec{text: "a", embedding: []float32{1, 0}},
			chunkSpec{text: "b"},
		)
		svc := newTestQueryService(t, &mockRepository{exists: true, library: library}, &mockEmbeddingService{})

		stats, err := svc.LibraryStats(context.Background(), testEmail)

		require.NoError(t, err)
		assert.Equal(t, domain.LibraryStats{
			UserEmail:            testEmail,
			Exists:               true,
			DocumentCount:        1,
			ChunkCount:           2,
			ChunksWithEmbeddings: 1,
			TotalFileSize:        128,
		}, stats)
	})

	t.Run("missing library", func(t *testing.T) {
		repo := &mockRepository{exists: false}
		svc := newTestQueryService(t, repo, &mockEmbeddingService{})

		stats, err := svc.LibraryStats(context.Background(), testEmail)

		require.NoError(t, err)
		assert.Equal(t, domain.MissingLibraryStats(testEmail), stats)
		assert.False(t, stats.Exists)
		assert.Equal(t, 0, repo.loads)
	})

	t.Run("blank email", func(t *testing.T) {
		svc := newTestQueryService(t, &mockRepository{}, &mockEmbeddingService{})
		_, err := svc.LibraryStats(context.Background(), "")
		assert.ErrorIs(t, err, domain.ErrEmptyInput)
	})
}

func TestErrorClass(t *testing.T) {
	assert.Equal(t, "client", errorClass(domain.ErrInvalidLimit))
	assert.Equal(t, "not_found", errorClass(domain.ErrLibraryNotFound))
	assert.Equal(t, "canceled", errorClass(context.Canceled))
	assert.Equal(t, "upstream", errorClass(domain.ErrEmbeddingFailed))
}
