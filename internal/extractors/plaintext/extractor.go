// Package plaintext extracts text from plain text and source code files.
package plaintext

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles plain text documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/x-go",
		"text/x-python",
		"text/x-rust",
		"text/x-java",
		"text/x-c",
		"text/x-shellscript",
		"text/x-sql",
		"text/yaml",
		"text/toml",
		"text/javascript",
		"text/css",
		"application/json",
		"application/xml",
	}
}

// SupportedExtensions returns the file extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{
		".txt", ".text", ".log", ".go", ".py", ".rs", ".java", ".c", ".h",
		".sh", ".sql", ".yaml", ".yml", ".toml", ".js", ".ts", ".css",
		".json", ".xml", ".ini", ".cfg",
	}
}

// Extract returns the file content as text. Invalid UTF-8 sequences are dropped.
func (e *Extractor) Extract(_ context.Context, filename string, content []byte) (*domain.ExtractedText, error) {
	text := string(content)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")

	return &domain.ExtractedText{
		Title:   domain.TitleFromFilename(filename),
		Content: strings.TrimSpace(text),
	}, nil
}
