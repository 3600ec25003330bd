package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// Query bounds.
const (
	// MaxQueryLength is the longest accepted query text, in characters.
	MaxQueryLength = 1000

	// MaxSearchLimit is the largest accepted result limit.
	MaxSearchLimit = 1000

	// scoreTolerance absorbs floating-point noise at the edges of [0,1].
	scoreTolerance = 1e-9
)

// Algorithm names a ranking algorithm.
type Algorithm string

// Available algorithms.
const (
	// AlgorithmCosine ranks purely by cosine similarity.
	AlgorithmCosine Algorithm = "cosine"

	// AlgorithmHybrid blends cosine similarity with keyword relevance.
	AlgorithmHybrid Algorithm = "hybrid"
)

// AllAlgorithms returns every known algorithm.
func AllAlgorithms() []Algorithm {
	return []Algorithm{AlgorithmCosine, AlgorithmHybrid}
}

// ParseAlgorithm maps s to an Algorithm, ignoring case.
func ParseAlgorithm(s string) (Algorithm, error) {
	lower := strings.ToLower(strings.TrimSpace(s))
	for _, a := range AllAlgorithms() {
		if string(a) == lower {
			return a, nil
		}
	}
	valid := make([]string, 0, len(AllAlgorithms()))
	for _, a := range AllAlgorithms() {
		valid = append(valid, string(a))
	}
	return "", fmt.Errorf("%w: %q, valid options: %s", ErrInvalidAlgorithm, s, strings.Join(valid, ", "))
}

// IsValid returns true if the algorithm is recognised.
func (a Algorithm) IsValid() bool {
	switch a {
	case AlgorithmCosine, AlgorithmHybrid:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (a Algorithm) String() string {
	return string(a)
}

// Description returns a human-readable description of the algorithm.
func (a Algorithm) Description() string {
	switch a {
	case AlgorithmCosine:
		return "Cosine similarity between query and chunk embeddings"
	case AlgorithmHybrid:
		return "Weighted blend of cosine similarity and BM25-style keyword relevance"
	default:
		return unknownDescription
	}
}

// SearchQuery is a validated search request for one library.
type SearchQuery struct {
	text      string
	algorithm Algorithm
	limit     int
	embedding Vector
}

// NewSearchQuery validates text, algorithm and limit.
func NewSearchQuery(text string, algorithm Algorithm, limit int) (SearchQuery, error) {
	if strings.TrimSpace(text) == "" {
		return SearchQuery{}, fmt.Errorf("%w: query text cannot be empty", ErrInvalidQuery)
	}
	if utf8.RuneCountInString(text) > MaxQueryLength {
		return SearchQuery{}, fmt.Errorf("%w: query text exceeds %d characters", ErrInvalidQuery, MaxQueryLength)
	}
	if limit <= 0 || limit > MaxSearchLimit {
		return SearchQuery{}, fmt.Errorf("%w: must be between 1 and %d, got %d", ErrInvalidLimit, MaxSearchLimit, limit)
	}
	if !algorithm.IsValid() {
		return SearchQuery{}, fmt.Errorf("%w: %q", ErrInvalidAlgorithm, algorithm)
	}
	return SearchQuery{text: text, algorithm: algorithm, limit: limit}, nil
}

// WithEmbedding returns a copy of q carrying a precomputed query embedding.
func (q SearchQuery) WithEmbedding(v Vector) SearchQuery {
	q.embedding = v
	return q
}

// Text returns the raw query text.
func (q SearchQuery) Text() string { return q.text }

// Algorithm returns the requested algorithm.
func (q SearchQuery) Algorithm() Algorithm { return q.algorithm }

// Limit returns the maximum number of results.
func (q SearchQuery) Limit() int { return q.limit }

// Embedding returns the query embedding, unset if not yet computed.
func (q SearchQuery) Embedding() Vector { return q.embedding }

// HasEmbedding reports whether the query carries a precomputed embedding.
func (q SearchQuery) HasEmbedding() bool { return q.embedding.IsSet() }

// ChunkSearchResult is one ranked chunk.
type ChunkSearchResult struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the relevance score in [0,1].
	Score float64

	// Rank is the 1-based position in the result list.
	Rank int
}

// NewChunkSearchResult validates score and rank.
// Scores within floating-point noise of 0 or 1 are snapped to the bound.
func NewChunkSearchResult(chunk Chunk, score float64, rank int) (ChunkSearchResult, error) {
	switch {
	case score < 0 && score >= -scoreTolerance:
		score = 0
	case score > 1 && score <= 1+scoreTolerance:
		score = 1
	}
	if math.IsNaN(score) || score < 0 || score > 1 {
		return ChunkSearchResult{}, fmt.Errorf("%w: similarity score must be between 0.0 and 1.0, got %v",
			ErrInvalidResult, score)
	}
	if rank < 1 {
		return ChunkSearchResult{}, fmt.Errorf("%w: rank must be positive, got %d", ErrInvalidResult, rank)
	}
	return ChunkSearchResult{Chunk: chunk, Score: score, Rank: rank}, nil
}

// SearchResults is the envelope returned for one executed query.
type SearchResults struct {
	// Results are ordered by rank, starting at 1.
	Results []ChunkSearchResult

	// Algorithm is the algorithm that produced the ranking.
	Algorithm Algorithm

	// ExecutionTime is the wall-clock time spent searching.
	ExecutionTime time.Duration

	// TotalChunksSearched is the number of candidate chunks scored.
	TotalChunksSearched int

	// LibraryID is the searched library.
	LibraryID LibraryID

	// QueryText echoes the query.
	QueryText string
}

// NewSearchResults validates the envelope. Result i must carry rank i+1.
func NewSearchResults(
	results []ChunkSearchResult,
	algorithm Algorithm,
	elapsed time.Duration,
	totalSearched int,
	libraryID LibraryID,
	queryText string,
) (*SearchResults, error) {
	if elapsed < 0 {
		return nil, fmt.Errorf("%w: execution time cannot be negative", ErrInvalidResult)
	}
	if totalSearched < 0 {
		return nil, fmt.Errorf("%w: total chunks searched cannot be negative", ErrInvalidResult)
	}
	for i, r := range results {
		if r.Rank != i+1 {
			return nil, fmt.Errorf("%w: result at index %d has rank %d, expected %d",
				ErrInvalidResult, i, r.Rank, i+1)
		}
	}
	if results == nil {
		results = []ChunkSearchResult{}
	}
	return &SearchResults{
		Results:             results,
		Algorithm:           algorithm,
		ExecutionTime:       elapsed,
		TotalChunksSearched: totalSearched,
		LibraryID:           libraryID,
		QueryText:           queryText,
	}, nil
}

// Count returns the number of results.
func (r *SearchResults) Count() int {
	return len(r.Results)
}

// Top returns the highest-ranked result.
func (r *SearchResults) Top() (ChunkSearchResult, bool) {
	if len(r.Results) == 0 {
		return ChunkSearchResult{}, false
	}
	return r.Results[0], true
}

// AverageScore returns the mean score, or 0 with no results.
func (r *SearchResults) AverageScore() float64 {
	if len(r.Results) == 0 {
		return 0
	}
	var sum float64
	for _, res := range r.Results {
		sum += res.Score
	}
	return sum / float64(len(r.Results))
}

// AboveThreshold returns the results scoring at least threshold.
func (r *SearchResults) AboveThreshold(threshold float64) []ChunkSearchResult {
	var out []ChunkSearchResult
	for _, res := range r.Results {
		if res.Score >= threshold {
			out = append(out, res)
		}
	}
	return out
}

// LibraryStats summarises a library for display.
type LibraryStats struct {
	UserEmail            string
	Exists               bool
	DocumentCount        int
	ChunkCount           int
	ChunksWithEmbeddings int
	TotalFileSize        int64
}

// MissingLibraryStats is the fixed record reported for a library that does not exist.
func MissingLibraryStats(userEmail string) LibraryStats {
	return LibraryStats{UserEmail: userEmail}
}
