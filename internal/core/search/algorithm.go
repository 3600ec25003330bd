package search

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/orion/internal/core/domain"
)

// Algorithm scores chunks against a query vector.
type Algorithm interface {
	// Name returns the algorithm identifier used for dispatch.
	Name() domain.Algorithm

	// Search returns at most limit results ordered by descending score.
	// Every chunk must be embedded with the query vector's dimension.
	// queryText may be empty; algorithms that ignore text do so silently.
	Search(query domain.Vector, chunks []domain.Chunk, limit int, queryText string) ([]domain.ChunkSearchResult, error)
}

// validateInputs applies the checks shared by every algorithm.
func validateInputs(query domain.Vector, chunks []domain.Chunk, limit int) error {
	if limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", domain.ErrInvalidSearchInput, limit)
	}
	if len(chunks) == 0 {
		return fmt.Errorf("%w: chunks list cannot be empty", domain.ErrInvalidSearchInput)
	}

	missing := 0
	for i := range chunks {
		if !chunks[i].HasEmbedding() {
			missing++
		}
	}
	if missing > 0 {
		return fmt.Errorf("%w: %w: found %d chunks without embeddings",
			domain.ErrInvalidSearchInput, domain.ErrEmbeddingMissing, missing)
	}

	if dim := chunks[0].EmbeddingDimension(); query.Dimension() != dim {
		return fmt.Errorf("%w: %w: query vector dimension (%d) does not match chunk embedding dimension (%d)",
			domain.ErrInvalidSearchInput, domain.ErrDimensionMismatch, query.Dimension(), dim)
	}
	return nil
}

// cosineScores returns the raw similarity of every chunk to query, in input order.
func cosineScores(query domain.Vector, chunks []domain.Chunk) ([]float64, error) {
	scores := make([]float64, len(chunks))
	for i := range chunks {
		s, err := chunks[i].SimilarityTo(query)
		if err != nil {
			return nil, err
		}
		scores[i] = s
	}
	return scores, nil
}

type scoredChunk struct {
	chunk domain.Chunk
	score float64
}

// rankResults pairs chunks with scores, sorts by descending score and
// assigns ranks 1..n to the first limit pairs. Ties keep input order.
// Ordering uses the raw scores; only the reported score of a negative
// similarity is raised to 0, the floor of the result score range.
func rankResults(chunks []domain.Chunk, scores []float64, limit int) ([]domain.ChunkSearchResult, error) {
	if len(chunks) != len(scores) {
		return nil, fmt.Errorf("%w: %d chunks but %d scores", domain.ErrInvalidSearchInput, len(chunks), len(scores))
	}

	pairs := make([]scoredChunk, len(chunks))
	for i := range chunks {
		pairs[i] = scoredChunk{chunk: chunks[i], score: scores[i]}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].score > pairs[j].score
	})

	if limit < len(pairs) {
		pairs = pairs[:limit]
	}

	results := make([]domain.ChunkSearchResult, 0, len(pairs))
	for i, p := range pairs {
		r, err := domain.NewChunkSearchResult(p.chunk, reportedScore(p.score), i+1)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// reportedScore maps a raw score onto the result range. Scores above 1 are
// left for NewChunkSearchResult to reject.
func reportedScore(raw float64) float64 {
	if raw < 0 {
		return 0
	}
	return raw
}
