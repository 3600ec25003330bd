package chunker

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driven"
)

var _ driven.Chunker = (*ParagraphChunker)(nil)

var blankLine = regexp.MustCompile(`\n[ \t]*\n`)

// ParagraphChunker packs whole paragraphs into windows of at most
// chunkSize tokens. A paragraph longer than a window is split by the
// token chunker. Paragraphs are not overlapped.
type ParagraphChunker struct {
	tokens *Chunker
}

// NewParagraphs creates a paragraph chunker. Overlap options only apply
// to paragraphs that must be split.
func NewParagraphs(opts ...Option) *ParagraphChunker {
	return &ParagraphChunker{tokens: New(opts...)}
}

// Name returns the chunker name.
func (p *ParagraphChunker) Name() string {
	return domain.ChunkerParagraphs
}

// Chunk splits text on blank lines and greedily packs paragraphs.
func (p *ParagraphChunker) Chunk(ctx context.Context, text string) ([]domain.TextSegment, error) {
	size := p.tokens.ChunkSize()
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var (
		segments []domain.TextSegment
		current  []string
		count    int
	)
	flush := func() {
		if count == 0 {
			return
		}
		segments = append(segments, domain.TextSegment{
			Sequence:   len(segments),
			Text:       strings.Join(current, "\n\n"),
			TokenCount: count,
		})
		current, count = nil, 0
	}

	for _, para := range blankLine.Split(text, -1) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fields := strings.Fields(para)
		if len(fields) == 0 {
			continue
		}

		if len(fields) > size {
			flush()
			parts, err := p.tokens.Chunk(ctx, para)
			if err != nil {
				return nil, err
			}
			for _, part := range parts {
				part.Sequence = len(segments)
				segments = append(segments, part)
			}
			continue
		}

		if count+len(fields) > size {
			flush()
		}
		current = append(current, strings.Join(fields, " "))
		count += len(fields)
	}
	flush()

	return segments, nil
}
