package driving

import (
	"context"

	"github.com/custodia-labs/orion/internal/core/domain"
)

// IngestService adds documents to and removes documents from libraries.
type IngestService interface {
	// Ingest extracts, chunks, embeds and stores a file.
	Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error)

	// Delete removes a document's upload and embeddings.
	Delete(ctx context.Context, userEmail string, id domain.DocumentID) error

	// List returns the documents stored for a user.
	List(ctx context.Context, userEmail string) ([]domain.DocumentSummary, error)
}
