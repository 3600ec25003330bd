package extractors

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driven"
	"github.com/custodia-labs/orion/internal/extractors/csv"
	"github.com/custodia-labs/orion/internal/extractors/docx"
	"github.com/custodia-labs/orion/internal/extractors/eml"
	"github.com/custodia-labs/orion/internal/extractors/html"
	"github.com/custodia-labs/orion/internal/extractors/markdown"
	"github.com/custodia-labs/orion/internal/extractors/pdf"
	"github.com/custodia-labs/orion/internal/extractors/plaintext"
	"github.com/custodia-labs/orion/internal/extractors/xlsx"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// genericContentType is sent by clients that do not know the type.
const genericContentType = "application/octet-stream"

// Registry selects extractors by MIME type, then by file extension.
// The first extractor registered for a type or extension wins.
type Registry struct {
	byMIME      map[string]driven.TextExtractor
	byExtension map[string]driven.TextExtractor
	all         []driven.TextExtractor
}

// NewRegistry creates a registry holding the given extractors.
func NewRegistry(extractors ...driven.TextExtractor) *Registry {
	r := &Registry{
		byMIME:      make(map[string]driven.TextExtractor),
		byExtension: make(map[string]driven.TextExtractor),
	}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// NewDefaultRegistry returns a registry with every built-in extractor.
// Plain text is registered last so specific formats claim shared
// extensions first.
func NewDefaultRegistry() *Registry {
	return NewRegistry(
		pdf.New(),
		docx.New(),
		xlsx.New(),
		html.New(),
		eml.New(),
		markdown.New(),
		csv.New(),
		plaintext.New(),
	)
}

// Register adds an extractor for its MIME types and extensions.
func (r *Registry) Register(e driven.TextExtractor) {
	r.all = append(r.all, e)
	for _, m := range e.SupportedMIMETypes() {
		m = strings.ToLower(m)
		if _, ok := r.byMIME[m]; !ok {
			r.byMIME[m] = e
		}
	}
	for _, ext := range e.SupportedExtensions() {
		ext = strings.ToLower(ext)
		if _, ok := r.byExtension[ext]; !ok {
			r.byExtension[ext] = e
		}
	}
}

// Select returns the extractor for contentType. Parameters such as
// charset are ignored. An empty or generic content type falls back to
// the filename extension.
func (r *Registry) Select(filename, contentType string) (driven.TextExtractor, error) {
	if mediaType := normaliseContentType(contentType); mediaType != "" && mediaType != genericContentType {
		if e, ok := r.byMIME[mediaType]; ok {
			return e, nil
		}
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if e, ok := r.byExtension[ext]; ok {
		return e, nil
	}

	return nil, fmt.Errorf("%w: %q (content type %q)", domain.ErrUnsupportedType, filename, contentType)
}

// SupportedExtensions returns every extension with a registered extractor.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.byExtension))
	for _, e := range r.all {
		for _, ext := range e.SupportedExtensions() {
			if r.byExtension[strings.ToLower(ext)] == e {
				exts = append(exts, strings.ToLower(ext))
			}
		}
	}
	return exts
}

func normaliseContentType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		return mediaType
	}
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mediaType))
}
