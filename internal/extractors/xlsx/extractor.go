// Package xlsx extracts text from Excel workbooks, one line per row.
package xlsx

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// MIMEType is the XLSX content type.
const MIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Extractor handles XLSX workbooks.
type Extractor struct{}

// New creates a new XLSX extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// SupportedExtensions returns the file extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".xlsx", ".xlsm"}
}

// Extract returns every sheet as a "Sheet: name" line followed by its
// non-empty rows, cells separated by tabs.
func (e *Extractor) Extract(ctx context.Context, filename string, content []byte) (*domain.ExtractedText, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: reading workbook: %w", domain.ErrInvalidInput, err)
	}
	defer f.Close()

	var sections []string
	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("%w: reading sheet %s: %w", domain.ErrInvalidInput, sheet, err)
		}

		lines := []string{"Sheet: " + sheet}
		for _, row := range rows {
			if line := joinRow(row); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 1 {
			sections = append(sections, strings.Join(lines, "\n"))
		}
	}

	title := ""
	if props, err := f.GetDocProps(); err == nil && props != nil {
		title = strings.TrimSpace(props.Title)
	}
	if title == "" {
		title = domain.TitleFromFilename(filename)
	}

	return &domain.ExtractedText{
		Title:   title,
		Content: strings.Join(sections, "\n\n"),
	}, nil
}

// joinRow joins trimmed cells with tabs, dropping trailing empty cells.
func joinRow(row []string) string {
	cells := make([]string, len(row))
	last := -1
	for i, c := range row {
		cells[i] = strings.TrimSpace(c)
		if cells[i] != "" {
			last = i
		}
	}
	return strings.Join(cells[:last+1], "\t")
}
