package driven

import (
	"context"

	"github.com/custodia-labs/orion/internal/core/domain"
)

// TextExtractor converts an uploaded file into plain text.
// Each extractor handles specific MIME types (e.g., PDF, Markdown).
type TextExtractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// SupportedExtensions returns lowercase file extensions, including the dot.
	SupportedExtensions() []string

	// Extract returns the text content of the file.
	Extract(ctx context.Context, filename string, content []byte) (*domain.ExtractedText, error)
}

// ExtractorRegistry selects an extractor for a file.
type ExtractorRegistry interface {
	// Select returns the extractor for contentType, falling back to the
	// filename extension. Returns domain.ErrUnsupportedType when none match.
	Select(filename, contentType string) (TextExtractor, error)
}

// Chunker splits extracted text into overlapping token windows.
type Chunker interface {
	// Name returns the chunker name for logging and configuration.
	Name() string

	// Chunk returns the segments in sequence order, numbered from 0.
	Chunk(ctx context.Context, text string) ([]domain.TextSegment, error)
}
