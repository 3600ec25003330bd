package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	chunkFilenamePattern = regexp.MustCompile(`^(.+)_chunk_(\d+)$`)
	uuidPattern          = regexp.MustCompile(`^[0-9a-fA-F]{8}-?[0-9a-fA-F]{4}-?[0-9a-fA-F]{4}-?[0-9a-fA-F]{4}-?[0-9a-fA-F]{12}$`)
	emailPattern         = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// ChunkFileExt is the extension of stored chunk files.
const ChunkFileExt = ".txt"

// ChunkID identifies a chunk by its document component and position.
type ChunkID struct {
	// DocumentID is the document component of the chunk filename.
	DocumentID string

	// Sequence is the zero-based position within the document.
	Sequence int
}

// NewChunkID validates and returns a ChunkID.
func NewChunkID(documentID string, sequence int) (ChunkID, error) {
	if documentID == "" {
		return ChunkID{}, fmt.Errorf("%w: chunk document id is empty", ErrInvalidChunk)
	}
	if sequence < 0 {
		return ChunkID{}, fmt.Errorf("%w: chunk sequence must be non-negative, got %d", ErrInvalidChunk, sequence)
	}
	return ChunkID{DocumentID: documentID, Sequence: sequence}, nil
}

// ChunkIDFromFilename parses a stored chunk filename of the form
// {document_id}_chunk_{NNN}.txt.
func ChunkIDFromFilename(filename string) (ChunkID, error) {
	base := strings.TrimSuffix(filename, ChunkFileExt)
	m := chunkFilenamePattern.FindStringSubmatch(base)
	if m == nil {
		return ChunkID{}, fmt.Errorf("%w: invalid chunk filename format: %s", ErrInvalidChunk, filename)
	}
	seq, err := strconv.Atoi(m[2])
	if err != nil {
		return ChunkID{}, fmt.Errorf("%w: invalid chunk sequence in %s", ErrInvalidChunk, filename)
	}
	return NewChunkID(m[1], seq)
}

// String returns the canonical form {document_id}_chunk_{sequence:03d}.
func (c ChunkID) String() string {
	return fmt.Sprintf("%s_chunk_%03d", c.DocumentID, c.Sequence)
}

// Filename returns the stored chunk filename.
func (c ChunkID) Filename() string {
	return c.String() + ChunkFileExt
}

// DocumentID is a UUID-shaped document identifier.
type DocumentID string

// ParseDocumentID validates s as a UUID.
func ParseDocumentID(s string) (DocumentID, error) {
	if !uuidPattern.MatchString(s) {
		return "", fmt.Errorf("%w: document id must be a valid UUID: %q", ErrInvalidDocument, s)
	}
	return DocumentID(s), nil
}

// DocumentIDFromFilename extracts the id from an uploaded filename
// of the form {id}_{originalname}, splitting on the first underscore.
func DocumentIDFromFilename(filename string) (DocumentID, error) {
	id, _, ok := strings.Cut(filename, "_")
	if !ok {
		return "", fmt.Errorf("%w: invalid uploaded filename format: %s", ErrInvalidDocument, filename)
	}
	return ParseDocumentID(id)
}

// UploadedFilename returns the stored upload name {id}_{original}.
func (d DocumentID) UploadedFilename(original string) string {
	return string(d) + "_" + original
}

// String returns the id.
func (d DocumentID) String() string {
	return string(d)
}

// LibraryID identifies a user's library by email address.
type LibraryID struct {
	email string
}

// NewLibraryID validates email against a basic email shape.
func NewLibraryID(email string) (LibraryID, error) {
	if !emailPattern.MatchString(email) {
		return LibraryID{}, fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return LibraryID{email: email}, nil
}

// Email returns the email the id was built from.
func (l LibraryID) Email() string {
	return l.email
}

// String returns the email.
func (l LibraryID) String() string {
	return l.email
}

// IsZero reports whether the id is unset.
func (l LibraryID) IsZero() bool {
	return l.email == ""
}
