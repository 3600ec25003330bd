package domain

import (
	"fmt"
	"time"
)

// Library is a user's document collection and the scope of every search.
// It is read-only once built.
type Library struct {
	id           LibraryID
	userEmail    string
	documents    []*Document
	index        map[DocumentID]int
	createdAt    time.Time
	lastAccessed time.Time
}

// ID returns the library id.
func (l *Library) ID() LibraryID { return l.id }

// UserEmail returns the owner's email.
func (l *Library) UserEmail() string { return l.userEmail }

// CreatedAt returns the library creation time.
func (l *Library) CreatedAt() time.Time { return l.createdAt }

// LastAccessed returns the time of the last mutation during the load.
func (l *Library) LastAccessed() time.Time { return l.lastAccessed }

// Documents returns the documents in insertion order.
func (l *Library) Documents() []*Document {
	out := make([]*Document, len(l.documents))
	copy(out, l.documents)
	return out
}

// Document returns the document with id, if present.
func (l *Library) Document(id DocumentID) (*Document, bool) {
	i, ok := l.index[id]
	if !ok {
		return nil, false
	}
	return l.documents[i], true
}

// FindDocumentByFilename returns the first document with the given original filename.
func (l *Library) FindDocumentByFilename(name string) (*Document, bool) {
	for _, d := range l.documents {
		if d.originalFilename == name {
			return d, true
		}
	}
	return nil, false
}

// DocumentCount returns the number of documents.
func (l *Library) DocumentCount() int { return len(l.documents) }

// TotalChunkCount returns the number of chunks across all documents.
func (l *Library) TotalChunkCount() int {
	n := 0
	for _, d := range l.documents {
		n += d.ChunkCount()
	}
	return n
}

// AllChunks returns every chunk, grouped by document in insertion order.
func (l *Library) AllChunks() []Chunk {
	var out []Chunk
	for _, d := range l.documents {
		out = append(out, d.chunks...)
	}
	return out
}

// ChunksWithEmbeddings returns every embedded chunk in document insertion order.
func (l *Library) ChunksWithEmbeddings() []Chunk {
	var out []Chunk
	for _, d := range l.documents {
		out = append(out, d.ChunksWithEmbeddings()...)
	}
	return out
}

// TotalFileSize returns the summed upload size in bytes.
func (l *Library) TotalFileSize() int64 {
	var n int64
	for _, d := range l.documents {
		n += d.fileSize
	}
	return n
}

// HasDocumentsWithEmbeddings reports whether any document has an embedded chunk.
func (l *Library) HasDocumentsWithEmbeddings() bool {
	for _, d := range l.documents {
		if d.HasEmbeddings() {
			return true
		}
	}
	return false
}

// Stats summarises the library's aggregate queries.
func (l *Library) Stats() LibraryStats {
	return LibraryStats{
		UserEmail:            l.userEmail,
		Exists:               true,
		DocumentCount:        l.DocumentCount(),
		ChunkCount:           l.TotalChunkCount(),
		ChunksWithEmbeddings: len(l.ChunksWithEmbeddings()),
		TotalFileSize:        l.TotalFileSize(),
	}
}

// LibraryBuilder assembles a Library during a single load phase.
type LibraryBuilder struct {
	lib *Library
	now func() time.Time
}

// NewLibraryBuilder starts a library for id. userEmail must equal id's email.
func NewLibraryBuilder(id LibraryID, userEmail string, createdAt time.Time) (*LibraryBuilder, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("%w: library id is empty", ErrInvalidEmail)
	}
	if id.Email() != userEmail {
		return nil, fmt.Errorf("%w: library id email (%s) must match user email (%s)",
			ErrDocumentMismatch, id.Email(), userEmail)
	}
	return &LibraryBuilder{
		lib: &Library{
			id:           id,
			userEmail:    userEmail,
			index:        make(map[DocumentID]int),
			createdAt:    createdAt,
			lastAccessed: createdAt,
		},
		now: time.Now,
	}, nil
}

// AddDocument attaches doc. A document owned by another library or
// whose id is already present fails.
func (b *LibraryBuilder) AddDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: nil document", ErrInvalidDocument)
	}
	if doc.libraryID != b.lib.id {
		return fmt.Errorf("%w: document library id (%s) does not match library id (%s)",
			ErrDocumentMismatch, doc.libraryID, b.lib.id)
	}
	if _, exists := b.lib.index[doc.id]; exists {
		return fmt.Errorf("%w: document with id %s already exists", ErrDuplicateDocument, doc.id)
	}

	b.lib.index[doc.id] = len(b.lib.documents)
	b.lib.documents = append(b.lib.documents, doc)
	b.lib.lastAccessed = b.now()
	return nil
}

// Build returns the finished library. The builder must not be reused.
func (b *LibraryBuilder) Build() *Library {
	return b.lib
}
