// Package jsonfs stores embedding sets as JSON files and uploads as plain
// files under a per-library directory tree:
//
//	{root}/libraries/{email}/vectors/{file_id}_embeddings.json
//	{root}/libraries/{email}/uploads/{file_id}_{original}
package jsonfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.Store = (*Store)(nil)

const (
	librariesDir     = "libraries"
	vectorsDir       = "vectors"
	uploadsDir       = "uploads"
	embeddingsSuffix = "_embeddings.json"
)

// Store is a filesystem implementation of driven.Store.
type Store struct {
	root string
}

// NewStore creates a store rooted at dataDir.
// If dataDir is empty, defaults to ~/.orion/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".orion", "data")
	}
	if err := os.MkdirAll(filepath.Join(dataDir, librariesDir), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &Store{root: dataDir}, nil
}

// Root returns the data directory.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) libraryPath(lib domain.LibraryID) string {
	return filepath.Join(s.root, librariesDir, lib.Email())
}

func (s *Store) vectorsPath(lib domain.LibraryID) string {
	return filepath.Join(s.libraryPath(lib), vectorsDir)
}

func (s *Store) uploadsPath(lib domain.LibraryID) string {
	return filepath.Join(s.libraryPath(lib), uploadsDir)
}

func (s *Store) embeddingsPath(lib domain.LibraryID, fileID string) (string, error) {
	if fileID == "" || strings.ContainsAny(fileID, `/\`) || fileID == "." || fileID == ".." {
		return "", fmt.Errorf("%w: file id %q", domain.ErrInvalidInput, fileID)
	}
	return filepath.Join(s.vectorsPath(lib), fileID+embeddingsSuffix), nil
}

// ==================== Embeddings ====================

// Save writes file as indented JSON, replacing any previous set.
func (s *Store) Save(_ context.Context, lib domain.LibraryID, file *domain.EmbeddingFile) error {
	path, err := s.embeddingsPath(lib, file.FileID)
	if err != nil {
		return err
	}

	out := *file
	out.EmbeddingCount = len(file.Records)
	if out.StorageFormat == "" {
		out.StorageFormat = domain.StorageFormatJSON
	}

	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling embeddings: %w", err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("%w: writing %s: %w", domain.ErrStorage, filepath.Base(path), err)
	}
	return nil
}

// Load reads the embedding set for fileID.
func (s *Store) Load(_ context.Context, lib domain.LibraryID, fileID string) (*domain.EmbeddingFile, error) {
	path, err := s.embeddingsPath(lib, fileID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", domain.ErrStorage, filepath.Base(path), err)
	}

	var file domain.EmbeddingFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", domain.ErrStorage, filepath.Base(path), err)
	}
	if file.FileID == "" {
		file.FileID = fileID
	}
	return &file, nil
}

// Exists reports whether an embeddings file is stored for fileID.
func (s *Store) Exists(_ context.Context, lib domain.LibraryID, fileID string) (bool, error) {
	path, err := s.embeddingsPath(lib, fileID)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return true, nil
}

// Delete removes the embeddings file for fileID.
func (s *Store) Delete(_ context.Context, lib domain.LibraryID, fileID string) error {
	path, err := s.embeddingsPath(lib, fileID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return nil
}

// List returns the file ids of stored embedding files, sorted.
func (s *Store) List(_ context.Context, lib domain.LibraryID) ([]string, error) {
	entries, err := os.ReadDir(s.vectorsPath(lib))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: listing vectors: %w", domain.ErrStorage, err)
	}

	ids := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), embeddingsSuffix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), embeddingsSuffix))
	}
	sort.Strings(ids)
	return ids, nil
}

// ==================== Uploads ====================

// SaveUpload writes content to the uploads directory.
func (s *Store) SaveUpload(
	_ context.Context, lib domain.LibraryID, filename string, content []byte,
) (domain.UploadInfo, error) {
	if _, err := domain.DocumentIDFromFilename(filename); err != nil {
		return domain.UploadInfo{}, err
	}
	if filepath.Base(filename) != filename {
		return domain.UploadInfo{}, fmt.Errorf("%w: upload name %q", domain.ErrInvalidInput, filename)
	}

	path := filepath.Join(s.uploadsPath(lib), filename)
	if err := writeFileAtomic(path, content); err != nil {
		return domain.UploadInfo{}, fmt.Errorf("%w: writing upload: %w", domain.ErrStorage, err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		return domain.UploadInfo{}, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return uploadInfo(fi), nil
}

// FindUpload returns the first upload, by name, whose name starts with {fileID}_.
func (s *Store) FindUpload(_ context.Context, lib domain.LibraryID, fileID string) (domain.UploadInfo, error) {
	entries, err := os.ReadDir(s.uploadsPath(lib))
	if errors.Is(err, fs.ErrNotExist) {
		return domain.UploadInfo{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.UploadInfo{}, fmt.Errorf("%w: listing uploads: %w", domain.ErrStorage, err)
	}

	// ReadDir returns entries sorted by filename.
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), fileID+"_") {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			return domain.UploadInfo{}, fmt.Errorf("%w: %w", domain.ErrStorage, err)
		}
		return uploadInfo(fi), nil
	}
	return domain.UploadInfo{}, domain.ErrNotFound
}

// DeleteUpload removes the upload for fileID.
func (s *Store) DeleteUpload(ctx context.Context, lib domain.LibraryID, fileID string) error {
	info, err := s.FindUpload(ctx, lib, fileID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.uploadsPath(lib), info.Filename)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return nil
}

// LibraryExists reports whether the library directory exists.
func (s *Store) LibraryExists(_ context.Context, lib domain.LibraryID) (bool, error) {
	fi, err := os.Stat(s.libraryPath(lib))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return fi.IsDir(), nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

func uploadInfo(fi fs.FileInfo) domain.UploadInfo {
	return domain.UploadInfo{
		Filename: fi.Name(),
		Size:     fi.Size(),
		ModTime:  fi.ModTime(),
	}
}

// writeFileAtomic writes data to a temporary file in the target directory and
// renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
