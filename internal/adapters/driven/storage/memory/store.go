package memory

import (
	"context"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.Store = (*Store)(nil)

type upload struct {
	info    domain.UploadInfo
	content []byte
}

// library holds one library's partition.
type library struct {
	files   map[string]*domain.EmbeddingFile
	uploads map[string]upload
}

// Store is an in-memory implementation of driven.Store.
type Store struct {
	mu        sync.RWMutex
	libraries map[string]*library
	now       func() time.Time
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		libraries: make(map[string]*library),
		now:       time.Now,
	}
}

// partition returns the library partition, creating it when create is set.
// Callers must hold the appropriate lock.
func (s *Store) partition(lib domain.LibraryID, create bool) *library {
	p, ok := s.libraries[lib.Email()]
	if !ok && create {
		p = &library{
			files:   make(map[string]*domain.EmbeddingFile),
			uploads: make(map[string]upload),
		}
		s.libraries[lib.Email()] = p
	}
	return p
}

// ==================== Embeddings ====================

// Save stores a copy of file.
func (s *Store) Save(_ context.Context, lib domain.LibraryID, file *domain.EmbeddingFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partition(lib, true).files[file.FileID] = copyFile(file)
	return nil
}

// Load returns a copy of the stored file.
func (s *Store) Load(_ context.Context, lib domain.LibraryID, fileID string) (*domain.EmbeddingFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.partition(lib, false)
	if p == nil {
		return nil, domain.ErrNotFound
	}
	f, ok := p.files[fileID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyFile(f), nil
}

// Exists reports whether a file is stored.
func (s *Store) Exists(_ context.Context, lib domain.LibraryID, fileID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.partition(lib, false)
	if p == nil {
		return false, nil
	}
	_, ok := p.files[fileID]
	return ok, nil
}

// Delete removes a stored file.
func (s *Store) Delete(_ context.Context, lib domain.LibraryID, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.partition(lib, false); p != nil {
		delete(p.files, fileID)
	}
	return nil
}

// List returns stored file ids, sorted.
func (s *Store) List(_ context.Context, lib domain.LibraryID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.partition(lib, false)
	if p == nil {
		return []string{}, nil
	}
	ids := slices.Collect(maps.Keys(p.files))
	sort.Strings(ids)
	return ids, nil
}

// ==================== Uploads ====================

// SaveUpload stores a copy of content.
func (s *Store) SaveUpload(_ context.Context, lib domain.LibraryID, filename string, content []byte) (domain.UploadInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info := domain.UploadInfo{
		Filename: filename,
		Size:     int64(len(content)),
		ModTime:  s.now(),
	}
	s.partition(lib, true).uploads[filename] = upload{info: info, content: slices.Clone(content)}
	return info, nil
}

// FindUpload returns the upload whose name starts with {fileID}_.
func (s *Store) FindUpload(_ context.Context, lib domain.LibraryID, fileID string) (domain.UploadInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.partition(lib, false)
	if p == nil {
		return domain.UploadInfo{}, domain.ErrNotFound
	}
	if name, ok := findUpload(p, fileID); ok {
		return p.uploads[name].info, nil
	}
	return domain.UploadInfo{}, domain.ErrNotFound
}

// DeleteUpload removes the upload for fileID.
func (s *Store) DeleteUpload(_ context.Context, lib domain.LibraryID, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.partition(lib, false)
	if p == nil {
		return nil
	}
	if name, ok := findUpload(p, fileID); ok {
		delete(p.uploads, name)
	}
	return nil
}

// LibraryExists reports whether the library partition was ever created.
func (s *Store) LibraryExists(_ context.Context, lib domain.LibraryID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.partition(lib, false) != nil, nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

func findUpload(p *library, fileID string) (string, bool) {
	names := slices.Sorted(maps.Keys(p.uploads))
	for _, name := range names {
		if strings.HasPrefix(name, fileID+"_") {
			return name, true
		}
	}
	return "", false
}

func copyFile(f *domain.EmbeddingFile) *domain.EmbeddingFile {
	cp := *f
	cp.Metadata = maps.Clone(f.Metadata)
	cp.Records = make([]domain.EmbeddingRecord, len(f.Records))
	for i, r := range f.Records {
		r.Embedding = slices.Clone(r.Embedding)
		cp.Records[i] = r
	}
	return &cp
}
