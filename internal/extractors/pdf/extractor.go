// Package pdf extracts text from PDF documents using a pure Go reader.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driven"
	"github.com/custodia-labs/orion/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// MaxSize is the largest PDF accepted for in-memory extraction.
const MaxSize = 200 << 20

// document is the part of a parsed PDF the extractor reads.
type document interface {
	NumPage() int
	PageText(i int) (string, error)
	Title() string
}

// Extractor handles PDF documents.
type Extractor struct {
	open func(content []byte) (document, error)
}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{open: openDocument}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// SupportedExtensions returns the file extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".pdf"}
}

// Extract returns the text of every page, pages separated by blank lines.
// Pages that fail to decode are skipped.
func (e *Extractor) Extract(ctx context.Context, filename string, content []byte) (*domain.ExtractedText, error) {
	if len(content) > MaxSize {
		return nil, fmt.Errorf("%w: pdf larger than %d bytes", domain.ErrInvalidInput, MaxSize)
	}

	doc, err := e.open(content)
	if err != nil {
		return nil, fmt.Errorf("%w: reading pdf: %w", domain.ErrInvalidInput, err)
	}

	var pages []string
	for i := 1; i <= doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := doc.PageText(i)
		if err != nil {
			logger.Warn("%s: skipping page %d: %v", filename, i, err)
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}

	title := strings.TrimSpace(doc.Title())
	if title == "" {
		title = domain.TitleFromFilename(filename)
	}

	return &domain.ExtractedText{
		Title:   title,
		Content: strings.Join(pages, "\n\n"),
	}, nil
}

// reader adapts *pdf.Reader to document.
type reader struct {
	r *pdf.Reader
}

func openDocument(content []byte) (document, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}
	return &reader{r: r}, nil
}

func (d *reader) NumPage() int {
	return d.r.NumPage()
}

func (d *reader) PageText(i int) (text string, err error) {
	// The reader panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decoding page: %v", r)
		}
	}()

	page := d.r.Page(i)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(make(map[string]*pdf.Font))
}

func (d *reader) Title() string {
	return d.r.Trailer().Key("Info").Key("Title").Text()
}
