package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// StorageFormatJSON tags embedding files written as JSON.
const StorageFormatJSON = "json"

// Keys of EmbeddingFile.Metadata.
const (
	MetaEmail            = "email"
	MetaFileID           = "file_id"
	MetaOriginalFilename = "original_filename"
	MetaContentType      = "content_type"
	MetaTitle            = "title"
	MetaEmbeddingModel   = "embedding_model"
	MetaChunkSize        = "chunk_size"
	MetaOverlapPercent   = "chunk_overlap_percent"
	MetaStorageType      = "storage_type"
)

// EmbeddingRecord is one persisted chunk and its embedding.
type EmbeddingRecord struct {
	Filename         string    `json:"filename"`
	Text             string    `json:"text"`
	TokenCount       int       `json:"token_count"`
	Embedding        []float32 `json:"embedding"`
	EmbeddingModel   string    `json:"embedding_model"`
	OriginalFilename string    `json:"original_filename,omitempty"`
	ContentType      string    `json:"content_type,omitempty"`
}

// EmbeddingFile is the stored embedding set of one document.
type EmbeddingFile struct {
	FileID         string            `json:"file_id"`
	Records        []EmbeddingRecord `json:"embeddings"`
	Metadata       map[string]any    `json:"metadata"`
	StorageFormat  string            `json:"storage_format"`
	EmbeddingCount int               `json:"embedding_count"`
}

// UploadInfo describes a stored upload.
type UploadInfo struct {
	// Filename is the stored name {id}_{original}.
	Filename string

	// Size is the upload size in bytes.
	Size int64

	// ModTime is when the upload was stored.
	ModTime time.Time
}

// IngestRequest is a file to add to a library.
type IngestRequest struct {
	UserEmail   string
	Filename    string
	ContentType string
	Content     []byte
}

// IngestResult reports a completed ingestion.
type IngestResult struct {
	DocumentID       DocumentID
	UploadedFilename string
	ChunkCount       int
	EmbeddingModel   string
	Duration         time.Duration
}

// DocumentSummary is a stored document as listed for a library.
type DocumentSummary struct {
	ID               DocumentID
	OriginalFilename string
	ContentType      string
	ChunkCount       int
}

// ExtractedText is the text content recovered from an upload.
type ExtractedText struct {
	Title   string
	Content string
}

// TextSegment is one chunk of extracted text before embedding.
type TextSegment struct {
	Sequence   int
	Text       string
	TokenCount int
}

// TitleFromFilename derives a readable title from a filename by dropping the
// extension and replacing underscores and dashes with spaces.
func TitleFromFilename(name string) string {
	name = filepath.Base(name)
	if ext := filepath.Ext(name); ext != "" && ext != name {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return strings.TrimSpace(name)
}
