// Package csv extracts text from comma and tab separated files.
package csv

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles delimited text files.
type Extractor struct{}

// New creates a new CSV extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"text/csv", "application/csv", "text/tab-separated-values"}
}

// SupportedExtensions returns the file extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".csv", ".tsv"}
}

// Extract renders each record as "header: value" pairs when the first
// row looks like a header, otherwise as tab-joined cells.
func (e *Extractor) Extract(ctx context.Context, filename string, content []byte) (*domain.ExtractedText, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, []byte("\ufeff"))))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	if strings.EqualFold(filepath.Ext(filename), ".tsv") {
		reader.Comma = '\t'
	}

	var rows [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: parsing %s: %w", domain.ErrInvalidInput, filename, err)
		}
		rows = append(rows, record)
	}

	return &domain.ExtractedText{
		Title:   domain.TitleFromFilename(filename),
		Content: render(rows),
	}, nil
}

func render(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	header := rows[0]
	lines := []string{strings.Join(trimAll(header), "\t")}
	for _, row := range rows[1:] {
		var parts []string
		for i, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if i < len(header) && strings.TrimSpace(header[i]) != "" {
				parts = append(parts, strings.TrimSpace(header[i])+": "+cell)
			} else {
				parts = append(parts, cell)
			}
		}
		if len(parts) > 0 {
			lines = append(lines, strings.Join(parts, "; "))
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}
