package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown content type or provider.
	ErrUnsupportedType = errors.New("unsupported type")

	// Validation Errors.

	// ErrEmptyInput indicates a required text field was empty or blank.
	ErrEmptyInput = errors.New("empty input")

	// ErrInvalidLimit indicates a result limit outside the accepted range.
	ErrInvalidLimit = errors.New("invalid limit")

	// ErrInvalidAlgorithm indicates an algorithm name that maps to no known algorithm.
	ErrInvalidAlgorithm = errors.New("invalid algorithm")

	// ErrInvalidEmail indicates a library identifier that is not email-shaped.
	ErrInvalidEmail = errors.New("invalid email")

	// ErrInvalidVector indicates an empty or inconsistent vector.
	ErrInvalidVector = errors.New("invalid vector")

	// ErrInvalidChunk indicates a chunk that violates its field invariants.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrInvalidDocument indicates a document that violates its field invariants.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidQuery indicates a search query that violates its field invariants.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrInvalidResult indicates a result score, rank or envelope out of range.
	ErrInvalidResult = errors.New("invalid search result")

	// ErrInvalidWeights indicates hybrid weights outside [0,1] or not summing to 1.
	ErrInvalidWeights = errors.New("invalid weights")

	// Not Found Errors.

	// ErrLibraryNotFound indicates no library exists for the given user.
	ErrLibraryNotFound = errors.New("library not found")

	// Algorithm Input Errors.
	// These signal an engine-level invariant violation when reached from the engine.

	// ErrInvalidSearchInput indicates an algorithm received unusable input.
	ErrInvalidSearchInput = errors.New("invalid search input")

	// ErrEmbeddingMissing indicates a chunk without an embedding was used for similarity.
	ErrEmbeddingMissing = errors.New("embedding missing")

	// ErrDimensionMismatch indicates two vectors of different dimension were compared.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrUnsupportedAlgorithm indicates the engine has no algorithm registered for a query.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// Aggregate Errors.

	// ErrDocumentMismatch indicates a document or chunk attached to the wrong owner.
	ErrDocumentMismatch = errors.New("owner mismatch")

	// ErrDuplicateDocument indicates a document id already present in a library.
	ErrDuplicateDocument = errors.New("duplicate document")

	// Upstream Errors.

	// ErrEmbeddingFailed indicates the embedding provider failed to produce a vector.
	ErrEmbeddingFailed = errors.New("embedding generation failed")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrStorage indicates the backing store failed.
	ErrStorage = errors.New("storage failure")
)

// clientErrors are the validation-class errors reported back as caller faults.
var clientErrors = []error{
	ErrInvalidInput,
	ErrEmptyInput,
	ErrInvalidLimit,
	ErrInvalidAlgorithm,
	ErrInvalidEmail,
	ErrInvalidQuery,
	ErrUnsupportedType,
}

// IsClientError reports whether err is a validation failure caused by the caller.
func IsClientError(err error) bool {
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err signals a missing library or entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLibraryNotFound) || errors.Is(err, ErrNotFound)
}
