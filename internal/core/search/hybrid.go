package search

import (
	"fmt"
	"math"
	"strings"

	"github.com/custodia-labs/orion/internal/core/domain"
)

// Hybrid scoring defaults.
const (
	// DefaultCosineWeight is the default weight of the semantic signal.
	DefaultCosineWeight = 0.7

	// DefaultKeywordWeight is the default weight of the keyword signal.
	DefaultKeywordWeight = 0.3

	// DefaultSmallCollectionThreshold is the largest candidate count that
	// receives the IDF floor.
	DefaultSmallCollectionThreshold = 10

	// weightTolerance bounds how far the weights may drift from summing to 1.
	weightTolerance = 1e-6

	// idfFloor replaces non-positive IDF values in small collections.
	idfFloor = 0.1

	// k1 controls term-frequency saturation.
	k1 = 1.2
)

// Ensure Hybrid implements the interface.
var _ Algorithm = (*Hybrid)(nil)

// Hybrid blends cosine similarity with a BM25-style keyword score.
type Hybrid struct {
	cosineWeight  float64
	keywordWeight float64
	smallN        int
}

// HybridOption configures the hybrid algorithm.
type HybridOption func(*Hybrid)

// WithSmallCollectionThreshold sets the candidate count at or below which
// non-positive IDF values are raised to a small floor.
func WithSmallCollectionThreshold(n int) HybridOption {
	return func(h *Hybrid) {
		if n >= 0 {
			h.smallN = n
		}
	}
}

// NewHybrid validates the weights: each in [0,1], summing to 1.
func NewHybrid(cosineWeight, keywordWeight float64, opts ...HybridOption) (*Hybrid, error) {
	if cosineWeight < 0 || cosineWeight > 1 {
		return nil, fmt.Errorf("%w: cosine weight must be between 0.0 and 1.0, got %v", domain.ErrInvalidWeights, cosineWeight)
	}
	if keywordWeight < 0 || keywordWeight > 1 {
		return nil, fmt.Errorf("%w: keyword weight must be between 0.0 and 1.0, got %v", domain.ErrInvalidWeights, keywordWeight)
	}
	if math.Abs(cosineWeight+keywordWeight-1) > weightTolerance {
		return nil, fmt.Errorf("%w: cosine weight and keyword weight must sum to 1.0, got %v",
			domain.ErrInvalidWeights, cosineWeight+keywordWeight)
	}

	h := &Hybrid{
		cosineWeight:  cosineWeight,
		keywordWeight: keywordWeight,
		smallN:        DefaultSmallCollectionThreshold,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Name returns the algorithm name.
func (h *Hybrid) Name() domain.Algorithm {
	return domain.AlgorithmHybrid
}

// Weights returns the cosine and keyword weights.
func (h *Hybrid) Weights() (cosine, keyword float64) {
	return h.cosineWeight, h.keywordWeight
}

// Search scores every chunk as cosineWeight*cosine + keywordWeight*keyword.
func (h *Hybrid) Search(query domain.Vector, chunks []domain.Chunk, limit int, queryText string) ([]domain.ChunkSearchResult, error) {
	if err := validateInputs(query, chunks, limit); err != nil {
		return nil, err
	}

	cos, err := cosineScores(query, chunks)
	if err != nil {
		return nil, err
	}
	kw := h.keywordScores(queryText, chunks)

	scores := make([]float64, len(chunks))
	for i := range chunks {
		scores[i] = h.cosineWeight*cos[i] + h.keywordWeight*kw[i]
	}
	return rankResults(chunks, scores, limit)
}

// keywordScores returns BM25-style keyword scores normalised to [0,1].
// A blank query, or one without keywords, scores every chunk 0.
func (h *Hybrid) keywordScores(queryText string, chunks []domain.Chunk) []float64 {
	scores := make([]float64, len(chunks))
	if strings.TrimSpace(queryText) == "" {
		return scores
	}
	keywords := ExtractKeywords(queryText)
	if len(keywords) == 0 {
		return scores
	}

	counts := make([]map[string]int, len(chunks))
	for i := range chunks {
		counts[i] = termCounts(chunks[i].Text())
	}

	df := make(map[string]int, len(keywords))
	for _, k := range keywords {
		if _, seen := df[k]; seen {
			continue
		}
		n := 0
		for _, c := range counts {
			if c[k] > 0 {
				n++
			}
		}
		df[k] = n
	}

	total := len(chunks)
	for i, c := range counts {
		var score float64
		// Repeated query keywords contribute once per occurrence.
		for _, k := range keywords {
			tf := c[k]
			if tf == 0 {
				continue
			}
			idf := h.idf(total, df[k])
			score += idf * (float64(tf) * (k1 + 1)) / (float64(tf) + k1)
		}
		scores[i] = score
	}

	return normalize(scores)
}

// idf returns ln((N-df+0.5)/(df+0.5)), floored at 0.1 when non-positive in
// collections of at most smallN chunks.
func (h *Hybrid) idf(total, df int) float64 {
	if df == 0 {
		return 0
	}
	idf := math.Log((float64(total-df) + 0.5) / (float64(df) + 0.5))
	if idf <= 0 && total <= h.smallN {
		idf = idfFloor
	}
	return idf
}

// normalize shifts scores up by |min| when min is negative, then divides
// by the maximum. A non-positive maximum leaves the scores unscaled.
func normalize(scores []float64) []float64 {
	if len(scores) == 0 {
		return scores
	}
	lo, hi := scores[0], scores[0]
	for _, s := range scores[1:] {
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}
	if lo < 0 {
		for i := range scores {
			scores[i] -= lo
		}
		hi -= lo
	}
	if hi > 0 {
		for i := range scores {
			scores[i] /= hi
		}
	}
	return scores
}
