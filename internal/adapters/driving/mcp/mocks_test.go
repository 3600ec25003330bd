package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/orion/internal/core/domain"
)

const testDocID = "0b6f3a52-6f1e-4a8e-9a57-2f7f2c1d9e10"

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	results *domain.SearchResults
	stats   domain.LibraryStats
	err     error

	gotEmail     string
	gotAlgorithm string
	gotLimit     int
}

func (m *mockQueryService) ExecuteQuery(
	_ context.Context, userEmail, _, algorithm string, limit int,
) (*domain.SearchResults, error) {
	m.gotEmail, m.gotAlgorithm, m.gotLimit = userEmail, algorithm, limit
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
	docs []domain.DocumentSummary
	err  error
}

func (m *mockIngestService) Ingest(_ context.Context, _ domain.IngestRequest) (*domain.IngestResult, error) {
	return nil, m.err
}

func (m *mockIngestService) Delete(_ context.Context, _ string, _ domain.DocumentID) error {
	return m.err
}

func (m *mockIngestService) List(_ context.Context, _ string) ([]domain.DocumentSummary, error) {
	return m.docs, m.err
}

// newTestResults builds a one-result envelope, panicking on invalid fixtures.
func newTestResults() *domain.SearchResults {
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}

	chunkID, err := domain.NewChunkID(testDocID, 2)
	must(err)
	vec, err := domain.NewVector([]float32{0, 1}, "m")
	must(err)
	chunk, err := domain.NewChunk(domain.ChunkParams{
		ID:             chunkID,
		DocumentID:     domain.DocumentID(testDocID),
		Filename:       chunkID.Filename(),
		Text:           "This is the content",
		TokenCount:     4,
		SequenceIndex:  2,
		Embedding:      vec,
		EmbeddingModel: "m",
	})
	must(err)
	result, err := domain.NewChunkSearchResult(chunk, 0.95, 1)
	must(err)
	lib, err := domain.NewLibraryID("user@example.com")
	must(err)
	results, err := domain.NewSearchResults(
		[]domain.ChunkSearchResult{result}, domain.AlgorithmHybrid, 1500*time.Microsecond, 3, lib, "test")
	must(err)
	return results
}
