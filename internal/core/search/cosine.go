package search

import "github.com/custodia-labs/orion/internal/core/domain"

// Ensure Cosine implements the interface.
var _ Algorithm = (*Cosine)(nil)

// Cosine ranks chunks by cosine similarity to the query vector.
// Query text is ignored.
type Cosine struct{}

// NewCosine returns the cosine algorithm.
func NewCosine() *Cosine {
	return &Cosine{}
}

// Name returns the algorithm name.
func (c *Cosine) Name() domain.Algorithm {
	return domain.AlgorithmCosine
}

// Search scores every chunk by cosine similarity.
func (c *Cosine) Search(query domain.Vector, chunks []domain.Chunk, limit int, _ string) ([]domain.ChunkSearchResult, error) {
	if err := validateInputs(query, chunks, limit); err != nil {
		return nil, err
	}
	scores, err := cosineScores(query, chunks)
	if err != nil {
		return nil, err
	}
	return rankResults(chunks, scores, limit)
}
