package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driven"
	"github.com/custodia-labs/orion/internal/core/ports/driving"
	"github.com/custodia-labs/orion/internal/logger"
	"github.com/custodia-labs/orion/internal/telemetry"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService turns uploaded files into stored, embedded chunks.
type IngestService struct {
	store      driven.Store
	extractors driven.ExtractorRegistry
	chunker    driven.Chunker
	embedder   driven.EmbeddingService
	settings   domain.AppSettings
	metrics    *telemetry.Metrics
	newID      func() string
	now        func() time.Time
}

// NewIngestService creates an ingest service. metrics may be nil.
func NewIngestService(
	store driven.Store,
	extractors driven.ExtractorRegistry,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	settings domain.AppSettings,
	metrics *telemetry.Metrics,
) *IngestService {
	return &IngestService{
		store:      store,
		extractors: extractors,
		chunker:    chunker,
		embedder:   embedder,
		settings:   settings,
		metrics:    metrics,
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

// Ingest stores the upload, extracts and chunks its text, embeds every
// chunk and writes the embedding file. A failure after the upload is
// stored removes the upload again.
func (s *IngestService) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	start := s.now()

	logger.Section("Ingest")
	logger.Debug("File: %s (%d bytes, %s)", req.Filename, len(req.Content), req.ContentType)

	libID, err := parseLibrary(req.UserEmail)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(strings.TrimSpace(req.Filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, fmt.Errorf("%w: filename is required", domain.ErrEmptyInput)
	}
	if len(req.Content) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrEmptyInput, name)
	}

	extractor, err := s.extractors.Select(name, req.ContentType)
	if err != nil {
		return nil, err
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = extractor.SupportedMIMETypes()[0]
	}

	id, err := domain.ParseDocumentID(s.newID())
	if err != nil {
		return nil, err
	}

	upload, err := s.store.SaveUpload(ctx, libID, id.UploadedFilename(name), req.Content)
	if err != nil {
		return nil, err
	}

	file, err := s.process(ctx, libID, id, name, contentType, extractor, req.Content)
	if err != nil {
		if delErr := s.store.DeleteUpload(ctx, libID, id.String()); delErr != nil {
			logger.Warn("failed to remove upload %s after error: %v", upload.Filename, delErr)
		}
		return nil, err
	}

	if err := s.store.Save(ctx, libID, file); err != nil {
		if delErr := s.store.DeleteUpload(ctx, libID, id.String()); delErr != nil {
			logger.Warn("failed to remove upload %s after error: %v", upload.Filename, delErr)
		}
		return nil, err
	}

	s.metrics.RecordIngest(ctx, contentType, file.EmbeddingCount)
	elapsed := s.now().Sub(start)
	logger.Info("Ingested %s as %s: %d chunks in %s", name, id, file.EmbeddingCount, elapsed)

	return &domain.IngestResult{
		DocumentID:       id,
		UploadedFilename: upload.Filename,
		ChunkCount:       file.EmbeddingCount,
		EmbeddingModel:   s.embedder.ModelName(),
		Duration:         elapsed,
	}, nil
}

// process builds the embedding file for one upload.
func (s *IngestService) process(
	ctx context.Context,
	libID domain.LibraryID,
	id domain.DocumentID,
	name, contentType string,
	extractor driven.TextExtractor,
	content []byte,
) (*domain.EmbeddingFile, error) {
	text, err := extractor.Extract(ctx, name, content)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", name, err)
	}

	segments, err := s.chunker.Chunk(ctx, text.Content)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", name, err)
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: no text extracted from %s", domain.ErrEmptyInput, name)
	}
	logger.Debug("Chunked into %d segments", len(segments))

	vectors, err := s.embedSegments(ctx, segments)
	if err != nil {
		return nil, err
	}

	model := s.embedder.ModelName()
	records := make([]domain.EmbeddingRecord, len(segments))
	for i, seg := range segments {
		chunkID, err := domain.NewChunkID(id.String(), seg.Sequence)
		if err != nil {
			return nil, err
		}
		records[i] = domain.EmbeddingRecord{
			Filename:         chunkID.Filename(),
			Text:             seg.Text,
			TokenCount:       seg.TokenCount,
			Embedding:        vectors[i],
			EmbeddingModel:   model,
			OriginalFilename: name,
			ContentType:      contentType,
		}
	}

	return &domain.EmbeddingFile{
		FileID:  id.String(),
		Records: records,
		Metadata: map[string]any{
			domain.MetaEmail:            libID.Email(),
			domain.MetaFileID:           id.String(),
			domain.MetaOriginalFilename: name,
			domain.MetaContentType:      contentType,
			domain.MetaTitle:            text.Title,
			domain.MetaEmbeddingModel:   model,
			domain.MetaChunkSize:        s.settings.Ingest.ChunkSize,
			domain.MetaOverlapPercent:   s.settings.Ingest.OverlapPercent,
			domain.MetaStorageType:      s.settings.Storage.Backend.String(),
		},
		StorageFormat:  domain.StorageFormatJSON,
		EmbeddingCount: len(records),
	}, nil
}

// embedSegments embeds segment texts in batches of the configured size.
func (s *IngestService) embedSegments(ctx context.Context, segments []domain.TextSegment) ([][]float32, error) {
	batchSize := s.settings.Embedding.BatchSize
	if batchSize <= 0 {
		batchSize = len(segments)
	}

	out := make([][]float32, 0, len(segments))
	for start := 0; start < len(segments); start += batchSize {
		end := min(start+batchSize, len(segments))
		texts := make([]string, 0, end-start)
		for _, seg := range segments[start:end] {
			texts = append(texts, seg.Text)
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		s.metrics.RecordEmbedding(ctx, s.embedder.ModelName(), err == nil)
		if err != nil {
			return nil, err
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("%w: expected %d embeddings, got %d",
				domain.ErrEmbeddingFailed, len(texts), len(vectors))
		}
		out = append(out, vectors...)
		logger.Debug("Embedded segments %d-%d", start, end-1)
	}
	return out, nil
}

// Delete removes a document's upload and embeddings.
// Deleting a document that has neither returns domain.ErrNotFound.
func (s *IngestService) Delete(ctx context.Context, userEmail string, id domain.DocumentID) error {
	libID, err := parseLibrary(userEmail)
	if err != nil {
		return err
	}
	if _, err := domain.ParseDocumentID(id.String()); err != nil {
		return err
	}

	_, uploadErr := s.store.FindUpload(ctx, libID, id.String())
	if uploadErr != nil && !errors.Is(uploadErr, domain.ErrNotFound) {
		return uploadErr
	}
	hasEmbeddings, err := s.store.Exists(ctx, libID, id.String())
	if err != nil {
		return err
	}
	if uploadErr != nil && !hasEmbeddings {
		return fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}

	if err := s.store.Delete(ctx, libID, id.String()); err != nil {
		return err
	}
	if err := s.store.DeleteUpload(ctx, libID, id.String()); err != nil {
		return err
	}
	logger.Info("Deleted document %s from %s", id, libID)
	return nil
}

// List returns the documents with stored embeddings for a user.
func (s *IngestService) List(ctx context.Context, userEmail string) ([]domain.DocumentSummary, error) {
	libID, err := parseLibrary(userEmail)
	if err != nil {
		return nil, err
	}

	ids, err := s.store.List(ctx, libID)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.DocumentSummary, 0, len(ids))
	for _, fileID := range ids {
		file, err := s.store.Load(ctx, libID, fileID)
		if err != nil {
			logger.Warn("skipping unreadable embedding file %s: %v", fileID, err)
			continue
		}
		summaries = append(summaries, summarize(file))
	}
	return summaries, nil
}

func summarize(file *domain.EmbeddingFile) domain.DocumentSummary {
	summary := domain.DocumentSummary{
		ID:         domain.DocumentID(file.FileID),
		ChunkCount: len(file.Records),
	}
	if name, ok := file.Metadata[domain.MetaOriginalFilename].(string); ok {
		summary.OriginalFilename = name
	}
	if ct, ok := file.Metadata[domain.MetaContentType].(string); ok {
		summary.ContentType = ct
	}
	if len(file.Records) > 0 {
		first := file.Records[0]
		if summary.OriginalFilename == "" {
			summary.OriginalFilename = first.OriginalFilename
		}
		if summary.ContentType == "" {
			summary.ContentType = first.ContentType
		}
	}
	return summary
}

func parseLibrary(userEmail string) (domain.LibraryID, error) {
	email := strings.TrimSpace(userEmail)
	if email == "" {
		return domain.LibraryID{}, fmt.Errorf("%w: user email is required", domain.ErrEmptyInput)
	}
	return domain.NewLibraryID(email)
}
