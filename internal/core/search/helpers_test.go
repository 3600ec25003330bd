package search

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/orion/internal/core/domain"
)

const testDocID = "0b6f3a52-6f1e-4a8e-9a57-2f7f2c1d9e10"

func vec(values ...float32) domain.Vector {
	return domain.MustVector(values, "m")
}

func chunk(t *testing.T, seq int, text string, embedding []float32) domain.Chunk {
	t.Helper()
	id, err := domain.NewChunkID(testDocID, seq)
	require.NoError(t, err)
	p := domain.ChunkParams{
		ID:            id,
		DocumentID:    testDocID,
		Filename:      id.Filename(),
		Text:          text,
		TokenCount:    len(text),
		SequenceIndex: seq,
	}
	if embedding != nil {
		p.Embedding = domain.MustVector(embedding, "m")
	}
	c, err := domain.NewChunk(p)
	require.NoError(t, err)
	return c
}

func sequences(results []domain.ChunkSearchResult) []int {
	out := make([]int, len(results))
	for i, r := range results {
		out[i] = r.Chunk.SequenceIndex()
	}
	return out
}
