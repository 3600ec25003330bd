// Package chunker splits extracted text into overlapping token windows.
package chunker

import (
	"context"
	"strings"

	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driven"
)

// Ensure Chunker implements the interface.
var _ driven.Chunker = (*Chunker)(nil)

// DefaultChunkSize is the default number of tokens per chunk.
const DefaultChunkSize = 512

// DefaultOverlapPercent is the default share of a chunk repeated in the next.
const DefaultOverlapPercent = 10

// Chunker produces fixed-size windows of whitespace-delimited tokens.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in tokens.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlapPercent sets the overlap as a percentage of the chunk size.
// Values outside 0-99 are ignored.
func WithOverlapPercent(percent int) Option {
	return func(c *Chunker) {
		if percent >= 0 && percent < 100 {
			c.overlap = percent
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlapPercent,
	}
	for _, opt := range opts {
		opt(c)
	}

	// overlap holds the percentage until here.
	c.overlap = c.chunkSize * c.overlap / 100
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize - 1
	}
	return c
}

// FromSettings creates a chunker from ingest settings.
func FromSettings(s domain.IngestSettings) *Chunker {
	return New(WithChunkSize(s.ChunkSize), WithOverlapPercent(s.OverlapPercent))
}

// Name returns the chunker name.
func (c *Chunker) Name() string {
	return domain.ChunkerTokens
}

// ChunkSize returns the window size in tokens.
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// Overlap returns the number of tokens shared by consecutive windows.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Chunk splits text into windows of chunkSize tokens. Each window after
// the first starts overlap tokens before the end of the previous one.
// The final window may be shorter. Blank text produces no segments.
func (c *Chunker) Chunk(ctx context.Context, text string) ([]domain.TextSegment, error) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil, nil
	}

	step := c.chunkSize - c.overlap
	segments := make([]domain.TextSegment, 0, len(tokens)/step+1)

	for start := 0; ; start += step {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+c.chunkSize, len(tokens))
		window := tokens[start:end]
		segments = append(segments, domain.TextSegment{
			Sequence:   len(segments),
			Text:       strings.Join(window, " "),
			TokenCount: len(window),
		})

		if end >= len(tokens) {
			break
		}
	}

	return segments, nil
}
