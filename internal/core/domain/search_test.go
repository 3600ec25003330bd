package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		in   string
		want Algorithm
	}{
		{"cosine", AlgorithmCosine},
		{"COSINE", AlgorithmCosine},
		{"Hybrid", AlgorithmHybrid},
		{" hybrid ", AlgorithmHybrid},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseAlgorithm("bm25")
	assert.ErrorIs(t, err, ErrInvalidAlgorithm)
	assert.Contains(t, err.Error(), "cosine, hybrid")
}

func TestNewSearchQuery(t *testing.T) {
	q, err := NewSearchQuery("what is orion", AlgorithmHybrid, 5)
	require.NoError(t, err)
	assert.Equal(t, "what is orion", q.Text())
	assert.Equal(t, AlgorithmHybrid, q.Algorithm())
	assert.Equal(t, 5, q.Limit())
	assert.False(t, q.HasEmbedding())

	withEmb := q.WithEmbedding(MustVector([]float32{1}, "m"))
	assert.True(t, withEmb.HasEmbedding())
	assert.False(t, q.HasEmbedding())

	long := make([]byte, MaxQueryLength+1)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name  string
		text  string
		limit int
		err   error
	}{
		{"blank", "   ", 5, ErrInvalidQuery},
		{"too long", string(long), 5, ErrInvalidQuery},
		{"zero limit", "q", 0, ErrInvalidLimit},
		{"limit too large", "q", MaxSearchLimit + 1, ErrInvalidLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSearchQuery(tt.text, AlgorithmCosine, tt.limit)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	_, err = NewSearchQuery("q", AlgorithmCosine, MaxSearchLimit)
	assert.NoError(t, err)
}

func TestNewChunkSearchResult(t *testing.T) {
	c := newTestChunk(t, testDocID, 0, []float32{1})

	r, err := NewChunkSearchResult(c, 0.5, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.5, r.Score)

	r, err = NewChunkSearchResult(c, 1+1e-12, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, r.Score)

	r, err = NewChunkSearchResult(c, -1e-12, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, r.Score)

	_, err = NewChunkSearchResult(c, 1.2, 1)
	assert.ErrorIs(t, err, ErrInvalidResult)
	_, err = NewChunkSearchResult(c, -0.3, 1)
	assert.ErrorIs(t, err, ErrInvalidResult)
	_, err = NewChunkSearchResult(c, 0.3, 0)
	assert.ErrorIs(t, err, ErrInvalidResult)
}

// TestNewSearchResults_RankContiguity tests that ranks must be dense and start at 1
func TestNewSearchResults_RankContiguity(t *testing.T) {
	c := newTestChunk(t, testDocID, 0, []float32{1})
	lib := testLibraryID(t)
	mk := func(ranks ...int) []ChunkSearchResult {
		out := make([]ChunkSearchResult, len(ranks))
		for i, r := range ranks {
			out[i] = ChunkSearchResult{Chunk: c, Score: 0.5, Rank: r}
		}
		return out
	}

	res, err := NewSearchResults(mk(1, 2, 3), AlgorithmCosine, time.Millisecond, 3, lib, "q")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Count())
	top, ok := res.Top()
	require.True(t, ok)
	assert.Equal(t, 1, top.Rank)

	for name, ranks := range map[string][]int{
		"gap":       {1, 3},
		"duplicate": {1, 1},
		"offset":    {2, 3},
		"reversed":  {2, 1},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewSearchResults(mk(ranks...), AlgorithmCosine, 0, 2, lib, "q")
			assert.ErrorIs(t, err, ErrInvalidResult)
		})
	}

	_, err = NewSearchResults(nil, AlgorithmCosine, -time.Second, 0, lib, "q")
	assert.ErrorIs(t, err, ErrInvalidResult)
	_, err = NewSearchResults(nil, AlgorithmCosine, 0, -1, lib, "q")
	assert.ErrorIs(t, err, ErrInvalidResult)
}

func TestSearchResults_Helpers(t *testing.T) {
	c := newTestChunk(t, testDocID, 0, []float32{1})
	res, err := NewSearchResults([]ChunkSearchResult{
		{Chunk: c, Score: 0.9, Rank: 1},
		{Chunk: c, Score: 0.3, Rank: 2},
	}, AlgorithmHybrid, 0, 2, testLibraryID(t), "q")
	require.NoError(t, err)

	assert.InDelta(t, 0.6, res.AverageScore(), 1e-9)
	assert.Len(t, res.AboveThreshold(0.5), 1)

	empty, err := NewSearchResults(nil, AlgorithmCosine, 0, 0, testLibraryID(t), "q")
	require.NoError(t, err)
	assert.NotNil(t, empty.Results)
	assert.Equal(t, 0.0, empty.AverageScore())
	_, ok := empty.Top()
	assert.False(t, ok)
}

func TestSearchSettings_Validate(t *testing.T) {
	s := DefaultAppSettings().Search
	require.NoError(t, s.Validate())

	s.KeywordWeight = 0.2
	assert.ErrorIs(t, s.Validate(), ErrInvalidWeights)

	s = DefaultAppSettings().Search
	s.CosineWeight, s.KeywordWeight = 1.5, -0.5
	assert.ErrorIs(t, s.Validate(), ErrInvalidWeights)
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	assert.False(t, EmbeddingSettings{}.IsConfigured())
	assert.True(t, EmbeddingSettings{Provider: ProviderOllama}.IsConfigured())
	assert.False(t, EmbeddingSettings{Provider: ProviderCohere}.IsConfigured())
	assert.True(t, EmbeddingSettings{Provider: ProviderCohere, APIKey: "k"}.IsConfigured())
	assert.Equal(t, 1024, EmbeddingDimensions()["embed-english-v3.0"])
}
