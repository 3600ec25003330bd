// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - EmbeddingService: Turns query and chunk text into vectors
//   - LibraryRepository: Materialises a user's Library for one query
//   - EmbeddingStore: Persists chunk embeddings per document, partitioned by library
//   - UploadStore: Persists the uploaded source files
//   - ConfigStore: Application configuration
//
// # Ingestion Interfaces
//
//   - TextExtractor: Converts an upload into plain text
//   - Chunker: Splits extracted text into token windows
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
