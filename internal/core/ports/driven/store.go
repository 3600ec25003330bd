package driven

import (
	"context"

	"github.com/custodia-labs/orion/internal/core/domain"
)

// EmbeddingStore persists chunk embeddings keyed by file id, partitioned by library.
type EmbeddingStore interface {
	// Save writes file, replacing any previous set with the same file id.
	Save(ctx context.Context, lib domain.LibraryID, file *domain.EmbeddingFile) error

	// Load returns the stored set for fileID. Missing sets return domain.ErrNotFound.
	Load(ctx context.Context, lib domain.LibraryID, fileID string) (*domain.EmbeddingFile, error)

	// Exists reports whether a set is stored for fileID.
	Exists(ctx context.Context, lib domain.LibraryID, fileID string) (bool, error)

	// Delete removes the set for fileID. Deleting a missing set is not an error.
	Delete(ctx context.Context, lib domain.LibraryID, fileID string) error

	// List returns the stored file ids, sorted.
	List(ctx context.Context, lib domain.LibraryID) ([]string, error)
}

// UploadStore persists uploaded source files.
type UploadStore interface {
	// SaveUpload stores content under the uploaded filename {id}_{original}.
	SaveUpload(ctx context.Context, lib domain.LibraryID, filename string, content []byte) (domain.UploadInfo, error)

	// FindUpload returns the upload whose name starts with fileID.
	// Missing uploads return domain.ErrNotFound.
	FindUpload(ctx context.Context, lib domain.LibraryID, fileID string) (domain.UploadInfo, error)

	// DeleteUpload removes the upload for fileID. Deleting a missing upload is not an error.
	DeleteUpload(ctx context.Context, lib domain.LibraryID, fileID string) error

	// LibraryExists reports whether any data is stored for lib.
	LibraryExists(ctx context.Context, lib domain.LibraryID) (bool, error)
}

// Store combines both persistence ports, as implemented by every backend.
type Store interface {
	EmbeddingStore
	UploadStore

	// Close releases resources.
	Close() error
}
