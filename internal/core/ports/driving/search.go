package driving

import (
	"context"

	"github.com/custodia-labs/orion/internal/core/domain"
)

// QueryService is the entry point for search requests.
type QueryService interface {
	// ExecuteQuery validates the request, loads the user's library and runs the search.
	ExecuteQuery(ctx context.Context, userEmail, queryText, algorithm string, limit int) (*domain.SearchResults, error)

	// SupportedAlgorithms returns the registered algorithm names.
	SupportedAlgorithms() []string

	// LibraryStats summarises the user's library. A missing library
	// yields the all-zero record rather than an error.
	LibraryStats(ctx context.Context, userEmail string) (domain.LibraryStats, error)
}

// SearchEngine runs one query against one library.
type SearchEngine interface {
	// SearchLibrary embeds the query when needed and ranks the library's embedded chunks.
	SearchLibrary(ctx context.Context, library *domain.Library, query domain.SearchQuery) (*domain.SearchResults, error)

	// SupportedAlgorithms returns the registered algorithm names.
	SupportedAlgorithms() []domain.Algorithm
}
