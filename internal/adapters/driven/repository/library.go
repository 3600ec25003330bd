// Package repository materialises library aggregates from a driven.Store.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driven"
	"github.com/custodia-labs/orion/internal/logger"
)

// Ensure LibraryRepository implements the interface.
var _ driven.LibraryRepository = (*LibraryRepository)(nil)

// defaultContentType is used when neither record nor file metadata names one.
const defaultContentType = "application/octet-stream"

// LibraryRepository builds libraries from stored embedding sets and uploads.
// Documents that fail to load are skipped and logged.
type LibraryRepository struct {
	store driven.Store
	now   func() time.Time
}

// NewLibraryRepository creates a repository over store.
func NewLibraryRepository(store driven.Store) *LibraryRepository {
	return &LibraryRepository{
		store: store,
		now:   time.Now,
	}
}

// LibraryExists reports whether any data is stored for id.
func (r *LibraryRepository) LibraryExists(ctx context.Context, id domain.LibraryID) (bool, error) {
	return r.store.LibraryExists(ctx, id)
}

// LoadLibrary builds the library for id.
func (r *LibraryRepository) LoadLibrary(ctx context.Context, id domain.LibraryID) (*domain.Library, error) {
	builder, err := domain.NewLibraryBuilder(id, id.Email(), r.now())
	if err != nil {
		return nil, err
	}

	fileIDs, err := r.store.List(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing documents for %s: %w", id, err)
	}

	for _, fileID := range fileIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := r.loadDocument(ctx, id, fileID)
		if err != nil {
			logger.Warn("skipping document %s in library %s: %v", fileID, id, err)
			continue
		}
		if err := builder.AddDocument(doc); err != nil {
			logger.Warn("skipping document %s in library %s: %v", fileID, id, err)
		}
	}

	lib := builder.Build()
	logger.Debug("loaded library %s: %d documents, %d chunks", id, lib.DocumentCount(), lib.TotalChunkCount())
	return lib, nil
}

// loadDocument builds one document from its embedding set and upload.
func (r *LibraryRepository) loadDocument(ctx context.Context, lib domain.LibraryID, fileID string) (*domain.Document, error) {
	docID, err := domain.ParseDocumentID(fileID)
	if err != nil {
		return nil, err
	}

	file, err := r.store.Load(ctx, lib, fileID)
	if err != nil {
		return nil, fmt.Errorf("loading embeddings: %w", err)
	}

	upload, err := r.store.FindUpload(ctx, lib, fileID)
	if err != nil {
		return nil, fmt.Errorf("finding upload: %w", err)
	}

	originalName, contentType := describe(file, upload)
	builder, err := domain.NewDocumentBuilder(domain.DocumentParams{
		ID:               docID,
		LibraryID:        lib,
		OriginalFilename: originalName,
		UploadedFilename: upload.Filename,
		ContentType:      contentType,
		FileSize:         upload.Size,
		UploadedAt:       upload.ModTime,
		Metadata: map[string]any{
			domain.MetaOriginalFilename: originalName,
			domain.MetaContentType:      contentType,
		},
	})
	if err != nil {
		return nil, err
	}

	invalid := 0
	for _, rec := range file.Records {
		chunk, err := chunkFromRecord(docID, rec)
		if err != nil {
			invalid++
			logger.Debug("skipping chunk %s: %v", rec.Filename, err)
			continue
		}
		if _, err := builder.AddChunk(chunk); err != nil {
			invalid++
			logger.Debug("skipping chunk %s: %v", rec.Filename, err)
		}
	}

	if dropped := builder.Dropped() + invalid; dropped > 0 {
		logger.Warn("document %s: dropped %d of %d chunks", fileID, dropped, len(file.Records))
	}
	return builder.Build(), nil
}

// describe returns the original filename and content type, preferring the
// first record, then the file metadata, then the upload.
func describe(file *domain.EmbeddingFile, upload domain.UploadInfo) (string, string) {
	name := metaString(file.Metadata, domain.MetaOriginalFilename)
	contentType := metaString(file.Metadata, domain.MetaContentType)

	if len(file.Records) > 0 {
		first := file.Records[0]
		if first.OriginalFilename != "" {
			name = first.OriginalFilename
		}
		if first.ContentType != "" {
			contentType = first.ContentType
		}
	}

	if name == "" {
		name = upload.Filename
	}
	if contentType == "" {
		contentType = defaultContentType
	}
	return name, contentType
}

func metaString(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// chunkFromRecord converts a stored record. Records without an embedding
// become unembedded chunks.
func chunkFromRecord(docID domain.DocumentID, rec domain.EmbeddingRecord) (domain.Chunk, error) {
	id, err := domain.ChunkIDFromFilename(rec.Filename)
	if err != nil {
		return domain.Chunk{}, err
	}

	var vec domain.Vector
	if len(rec.Embedding) > 0 {
		vec, err = domain.NewVector(rec.Embedding, rec.EmbeddingModel)
		if err != nil {
			return domain.Chunk{}, err
		}
	}

	return domain.NewChunk(domain.ChunkParams{
		ID:             id,
		DocumentID:     docID,
		Filename:       rec.Filename,
		Text:           rec.Text,
		TokenCount:     rec.TokenCount,
		SequenceIndex:  id.Sequence,
		Embedding:      vec,
		EmbeddingModel: rec.EmbeddingModel,
	})
}
