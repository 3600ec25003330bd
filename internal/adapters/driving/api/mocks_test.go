package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/orion/internal/core/domain"
)

const testDocID = "0b6f3a52-6f1e-4a8e-9a57-2f7f2c1d9e10"

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	results *domain.SearchResults
	stats   domain.LibraryStats
	err     error

	gotEmail     string
	gotQuery     string
	gotAlgorithm string
	gotLimit     int
}

func (m *mockQueryService) ExecuteQuery(
	_ context.Context, userEmail, queryText, algorithm string, limit int,
) (*domain.SearchResults, error) {
	m.gotEmail, m.gotQuery, m.gotAlgorithm, m.gotLimit = userEmail, queryText, algorithm, limit
	return m.results, m.err
}

func (m *mockQueryService) SupportedAlgorithms() []string {
	return []string{"cosine", "hybrid"}
}

func (m *mockQueryService) LibraryStats(_ context.Context, userEmail string) (domain.LibraryStats, error) {
	m.gotEmail = userEmail
	return m.stats, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	result *domain.IngestResult
	docs   []domain.DocumentSummary
	err    error

	gotRequest domain.IngestRequest
	gotDeleted domain.DocumentID
}

func (m *mockIngestService) Ingest(_ context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	m.gotRequest = req
	return m.result, m.err
}

func (m *mockIngestService) Delete(_ context.Context, _ string, id domain.DocumentID) error {
	m.gotDeleted = id
	return m.err
}

func (m *mockIngestService) List(_ context.Context, _ string) ([]domain.DocumentSummary, error) {
	return m.docs, m.err
}

// newTestResults builds a one-result envelope for user@example.com.
func newTestResults(t *testing.T) *domain.SearchResults {
	t.Helper()

	chunkID, err := domain.NewChunkID(testDocID, 0)
	require.NoError(t, err)
	vec, err := domain.NewVector([]float32{1, 0, 0}, "m")
	require.NoError(t, err)
	chunk, err := domain.NewChunk(domain.ChunkParams{
		ID:             chunkID,
		DocumentID:     domain.DocumentID(testDocID),
		Filename:       chunkID.Filename(),
		Text:           "quarterly revenue grew",
		TokenCount:     3,
		SequenceIndex:  0,
		Embedding:      vec,
		EmbeddingModel: "m",
	})
	require.NoError(t, err)

	result, err := domain.NewChunkSearchResult(chunk, 0.9, 1)
	require.NoError(t, err)
	lib, err := domain.NewLibraryID("user@example.com")
	require.NoError(t, err)

	results, err := domain.NewSearchResults(
		[]domain.ChunkSearchResult{result}, domain.AlgorithmCosine, 2*time.Millisecond, 4, lib, "revenue")
	require.NoError(t, err)
	return results
}
