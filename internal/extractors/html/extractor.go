// Package html extracts readable text from HTML documents. Scripts, styles
// and other non-content elements are dropped and block elements become line
// breaks.
package html

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

const (
	// removedElements never carry searchable text.
	removedElements = "script, style, noscript, svg, template, iframe, head"

	// blockElements are separated by line breaks in the output.
	blockElements = "p, div, br, hr, h1, h2, h3, h4, h5, h6, li, tr, blockquote, pre, table, section, article, header, footer, nav, aside"
)

var multiSpaces = regexp.MustCompile(`[ \t\p{Zs}]+`)

// Extractor handles HTML documents.
type Extractor struct{}

// New creates a new HTML extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// SupportedExtensions returns the file extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// Extract returns the visible text of the document. The <title> element,
// then the first <h1>, then the filename provide the title.
func (e *Extractor) Extract(_ context.Context, filename string, content []byte) (*domain.ExtractedText, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing html: %w", domain.ErrInvalidInput, err)
	}

	title := collapse(doc.Find("title").First().Text())
	if title == "" {
		title = collapse(doc.Find("h1").First().Text())
	}
	if title == "" {
		title = domain.TitleFromFilename(filename)
	}

	doc.Find(removedElements).Remove()
	doc.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.BeforeHtml("\n")
		s.AfterHtml("\n")
	})

	return &domain.ExtractedText{
		Title:   title,
		Content: cleanLines(doc.Text()),
	}, nil
}

// collapse joins whitespace runs into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cleanLines collapses spaces within lines and drops empty lines.
func cleanLines(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(multiSpaces.ReplaceAllString(line, " "))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
