package domain

import (
	"fmt"
	"maps"
	"sort"
	"strings"
	"time"
)

// DocumentParams holds the metadata used to start building a Document.
type DocumentParams struct {
	// ID is the document identifier.
	ID DocumentID

	// LibraryID is the owning library.
	LibraryID LibraryID

	// OriginalFilename is the name the user uploaded, e.g. report.pdf.
	OriginalFilename string

	// UploadedFilename is the stored name, e.g. {id}_report.pdf.
	UploadedFilename string

	// ContentType is the MIME type of the upload.
	ContentType string

	// FileSize is the upload size in bytes.
	FileSize int64

	// UploadedAt is when the file was uploaded.
	UploadedAt time.Time

	// Metadata contains free-form key-value pairs.
	Metadata map[string]any
}

// Document is an uploaded file's metadata plus its chunks ordered by sequence.
// It is read-only once built.
type Document struct {
	id               DocumentID
	libraryID        LibraryID
	originalFilename string
	uploadedFilename string
	contentType      string
	fileSize         int64
	uploadedAt       time.Time
	chunks           []Chunk
	metadata         map[string]any
}

// ID returns the document id.
func (d *Document) ID() DocumentID { return d.id }

// LibraryID returns the owning library id.
func (d *Document) LibraryID() LibraryID { return d.libraryID }

// OriginalFilename returns the user-facing filename.
func (d *Document) OriginalFilename() string { return d.originalFilename }

// UploadedFilename returns the stored filename.
func (d *Document) UploadedFilename() string { return d.uploadedFilename }

// ContentType returns the MIME type.
func (d *Document) ContentType() string { return d.contentType }

// FileSize returns the upload size in bytes.
func (d *Document) FileSize() int64 { return d.fileSize }

// UploadedAt returns the upload time.
func (d *Document) UploadedAt() time.Time { return d.uploadedAt }

// Metadata returns a copy of the document metadata.
func (d *Document) Metadata() map[string]any { return maps.Clone(d.metadata) }

// Chunks returns the chunks ordered by sequence index.
func (d *Document) Chunks() []Chunk {
	out := make([]Chunk, len(d.chunks))
	copy(out, d.chunks)
	return out
}

// ChunkCount returns the number of chunks.
func (d *Document) ChunkCount() int { return len(d.chunks) }

// ChunksWithEmbeddings returns only the embedded chunks, in sequence order.
func (d *Document) ChunksWithEmbeddings() []Chunk {
	var out []Chunk
	for _, c := range d.chunks {
		if c.HasEmbedding() {
			out = append(out, c)
		}
	}
	return out
}

// HasEmbeddings reports whether any chunk is embedded.
func (d *Document) HasEmbeddings() bool {
	for _, c := range d.chunks {
		if c.HasEmbedding() {
			return true
		}
	}
	return false
}

// BaseFilename returns the original filename without its extension.
func (d *Document) BaseFilename() string {
	if i := strings.LastIndex(d.originalFilename, "."); i > 0 {
		return d.originalFilename[:i]
	}
	return d.originalFilename
}

// ChunkFilePrefix is the prefix every chunk filename of this document carries.
func (d *Document) ChunkFilePrefix() string {
	return d.id.String() + "_chunk_"
}

// DocumentBuilder accumulates chunks for one document during a load.
type DocumentBuilder struct {
	doc       Document
	sequences map[int]struct{}
	dropped   int
}

// NewDocumentBuilder validates p and starts a document.
func NewDocumentBuilder(p DocumentParams) (*DocumentBuilder, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("%w: document id is empty", ErrInvalidDocument)
	}
	if p.LibraryID.IsZero() {
		return nil, fmt.Errorf("%w: library id is empty", ErrInvalidDocument)
	}
	if p.FileSize < 0 {
		return nil, fmt.Errorf("%w: file size must be non-negative, got %d", ErrInvalidDocument, p.FileSize)
	}
	if strings.TrimSpace(p.OriginalFilename) == "" {
		return nil, fmt.Errorf("%w: original filename cannot be empty", ErrInvalidDocument)
	}
	if strings.TrimSpace(p.UploadedFilename) == "" {
		return nil, fmt.Errorf("%w: uploaded filename cannot be empty", ErrInvalidDocument)
	}
	if strings.TrimSpace(p.ContentType) == "" {
		return nil, fmt.Errorf("%w: content type cannot be empty", ErrInvalidDocument)
	}

	return &DocumentBuilder{
		doc: Document{
			id:               p.ID,
			libraryID:        p.LibraryID,
			originalFilename: p.OriginalFilename,
			uploadedFilename: p.UploadedFilename,
			contentType:      p.ContentType,
			fileSize:         p.FileSize,
			uploadedAt:       p.UploadedAt,
			metadata:         maps.Clone(p.Metadata),
		},
		sequences: make(map[int]struct{}),
	}, nil
}

// AddChunk attaches c, keeping chunks sorted by sequence index.
// A chunk belonging to another document fails. A chunk whose filename does not
// carry this document's prefix, or whose sequence is already present, is dropped
// and counted; added is false in that case.
// The {document id}_chunk_ filename prefix is this repository's own chunk naming
// convention, produced by ChunkID.Filename.
func (b *DocumentBuilder) AddChunk(c Chunk) (added bool, err error) {
	if c.DocumentID() != b.doc.id {
		return false, fmt.Errorf("%w: chunk document id (%s) does not match document id (%s)",
			ErrDocumentMismatch, c.DocumentID(), b.doc.id)
	}
	if !strings.HasPrefix(c.Filename(), b.doc.ChunkFilePrefix()) {
		b.dropped++
		return false, nil
	}
	if _, dup := b.sequences[c.SequenceIndex()]; dup {
		b.dropped++
		return false, nil
	}

	b.sequences[c.SequenceIndex()] = struct{}{}
	b.doc.chunks = append(b.doc.chunks, c)
	sort.SliceStable(b.doc.chunks, func(i, j int) bool {
		return b.doc.chunks[i].SequenceIndex() < b.doc.chunks[j].SequenceIndex()
	})
	return true, nil
}

// Dropped returns how many chunks AddChunk discarded.
func (b *DocumentBuilder) Dropped() int {
	return b.dropped
}

// Build returns the finished document. The builder must not be reused.
func (b *DocumentBuilder) Build() *Document {
	doc := b.doc
	return &doc
}
