package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/orion/internal/core/domain"
)

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns search results", func(t *testing.T) {
		mockQuery := &mockQueryService{results: newTestResults()}

		server, err := NewServer(&Ports{Query: mockQuery})
		require.NoError(t, err)

		input := SearchInput{UserEmail: "user@example.com", Query: "test", Algorithm: "hybrid", Limit: 3}
		_, output, err := server.handleSearch(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, "user@example.com", mockQuery.gotEmail)
		assert.Equal(t, "hybrid", mockQuery.gotAlgorithm)
		assert.Equal(t, 3, mockQuery.gotLimit)

		assert.Equal(t, 1, output.Count)
		assert.Equal(t, "hybrid", output.Algorithm)
		assert.Equal(t, 3, output.TotalChunksSearched)
		assert.InDelta(t, 1.5, output.ExecutionTimeMS, 1e-9)
		require.Len(t, output.Results, 1)
		assert.Equal(t, 1, output.Results[0].Rank)
		assert.Equal(t, testDocID, output.Results[0].DocumentID)
		assert.Equal(t, testDocID+"_chunk_002", output.Results[0].ChunkID)
		assert.Equal(t, 0.95, output.Results[0].Score)
		assert.Equal(t, "This is the content", output.Results[0].Content)
	})

	t.Run("omitted algorithm and limit use defaults", func(t *testing.T) {
		mockQuery := &mockQueryService{results: newTestResults()}
		server, err := NewServer(&Ports{Query: mockQuery})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{UserEmail: "user@example.com", Query: "test"})

		require.NoError(t, err)
		assert.Equal(t, 10, mockQuery.gotLimit)
		assert.Equal(t, "cosine", mockQuery.gotAlgorithm)
	})

	t.Run("configured defaults", func(t *testing.T) {
		mockQuery := &mockQueryService{results: newTestResults()}
		server, err := NewServer(&Ports{Query: mockQuery}, WithSearchDefaults(domain.SearchSettings{
			DefaultAlgorithm: domain.AlgorithmHybrid,
			DefaultLimit:     4,
		}))
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{UserEmail: "user@example.com", Query: "test", Algorithm: " "})

		require.NoError(t, err)
		assert.Equal(t, 4, mockQuery.gotLimit)
		assert.Equal(t, "hybrid", mockQuery.gotAlgorithm)
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		mockQuery := &mockQueryService{err: errors.New("search failed")}
		server, err := NewServer(&Ports{Query: mockQuery})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "test"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "search failed")
	})

	t.Run("validation errors are preserved", func(t *testing.T) {
		server, err := NewServer(&Ports{Query: &mockQueryService{err: domain.ErrInvalidEmail}})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{UserEmail: "bad", Query: "test"})

		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
	})
}

func TestServer_handleListAlgorithms(t *testing.T) {
	server, err := NewServer(&Ports{Query: &mockQueryService{}})
	require.NoError(t, err)

	_, output, err := server.handleListAlgorithms(context.Background(), nil, ListAlgorithmsInput{})

	require.NoError(t, err)
	require.Len(t, output.Algorithms, 2)
	assert.Equal(t, "cosine", output.Algorithms[0].Name)
	assert.Equal(t, domain.AlgorithmCosine.Description(), output.Algorithms[0].Description)
	assert.Equal(t, "hybrid", output.Algorithms[1].Name)
}
