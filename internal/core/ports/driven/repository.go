package driven

import (
	"context"

	"github.com/custodia-labs/orion/internal/core/domain"
)

// LibraryRepository materialises libraries from storage.
// Each LoadLibrary call returns a freshly built, fully populated aggregate.
type LibraryRepository interface {
	// LoadLibrary builds the library for id with all documents and chunks.
	LoadLibrary(ctx context.Context, id domain.LibraryID) (*domain.Library, error)

	// LibraryExists reports whether any data is stored for id.
	LibraryExists(ctx context.Context, id domain.LibraryID) (bool, error)
}
