// Package domain defines the core business entities for Orion.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Vector: An immutable embedding produced by a named model
//   - ChunkID, DocumentID, LibraryID: Validated identifiers
//   - Chunk: A span of document text, optionally embedded
//   - Document: An uploaded file and its ordered chunks
//   - Library: A user's document collection, the search scope
//   - SearchQuery, SearchResults: The search request and response envelope
//
// Libraries and documents are assembled through LibraryBuilder and
// DocumentBuilder during a single load phase. Once built they are read-only.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
