package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/orion/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.Store = (*Store)(nil)

// DatabaseFile is the database filename inside the data directory.
const DatabaseFile = "orion.db"

// Store is a SQLite-based embedding and upload store.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.orion/data/orion.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".orion", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Embeddings ====================

// Save replaces the embedding set for file.FileID.
func (s *Store) Save(ctx context.Context, lib domain.LibraryID, file *domain.EmbeddingFile) error {
	metadataJSON, err := json.Marshal(file.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", domain.ErrStorage, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	// Records cascade with the parent row.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM embedding_files WHERE library = ? AND file_id = ?`,
		lib.Email(), file.FileID,
	); err != nil {
		return fmt.Errorf("%w: replacing embeddings: %w", domain.ErrStorage, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO embedding_files (library, file_id, metadata, storage_format, embedding_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, lib.Email(), file.FileID, string(metadataJSON), file.StorageFormat, len(file.Records), s.now().UTC(),
	); err != nil {
		return fmt.Errorf("%w: saving embedding file: %w", domain.ErrStorage, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO embedding_records
			(library, file_id, position, filename, text, token_count, embedding, embedding_model, original_filename, content_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("%w: preparing statement: %w", domain.ErrStorage, err)
	}
	defer stmt.Close()

	for i, r := range file.Records {
		if _, err := stmt.ExecContext(ctx,
			lib.Email(), file.FileID, i, r.Filename, r.Text, r.TokenCount,
			float32SliceToBytes(r.Embedding), r.EmbeddingModel, r.OriginalFilename, r.ContentType,
		); err != nil {
			return fmt.Errorf("%w: saving record %s: %w", domain.ErrStorage, r.Filename, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing: %w", domain.ErrStorage, err)
	}
	return nil
}

// Load returns the embedding set for fileID.
func (s *Store) Load(ctx context.Context, lib domain.LibraryID, fileID string) (*domain.EmbeddingFile, error) {
	file := &domain.EmbeddingFile{FileID: fileID}
	var metadataJSON string

	err := s.db.QueryRowContext(ctx, `
		SELECT metadata, storage_format, embedding_count
		FROM embedding_files WHERE library = ? AND file_id = ?
	`, lib.Email(), fileID).Scan(&metadataJSON, &file.StorageFormat, &file.EmbeddingCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: loading embedding file: %w", domain.ErrStorage, err)
	}

	if err := json.Unmarshal([]byte(metadataJSON), &file.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshalling metadata: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT filename, text, token_count, embedding, embedding_model, original_filename, content_type
		FROM embedding_records WHERE library = ? AND file_id = ?
		ORDER BY position
	`, lib.Email(), fileID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading records: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	file.Records = []domain.EmbeddingRecord{}
	for rows.Next() {
		var (
			r    domain.EmbeddingRecord
			blob []byte
		)
		if err := rows.Scan(&r.Filename, &r.Text, &r.TokenCount, &blob,
			&r.EmbeddingModel, &r.OriginalFilename, &r.ContentType); err != nil {
			return nil, fmt.Errorf("%w: scanning record: %w", domain.ErrStorage, err)
		}
		r.Embedding = bytesToFloat32Slice(blob)
		file.Records = append(file.Records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating records: %w", domain.ErrStorage, err)
	}

	return file, nil
}

// Exists reports whether an embedding set is stored for fileID.
func (s *Store) Exists(ctx context.Context, lib domain.LibraryID, fileID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM embedding_files WHERE library = ? AND file_id = ?`,
		lib.Email(), fileID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("%w: checking embedding file: %w", domain.ErrStorage, err)
	}
	return n > 0, nil
}

// Delete removes the embedding set for fileID.
func (s *Store) Delete(ctx context.Context, lib domain.LibraryID, fileID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM embedding_files WHERE library = ? AND file_id = ?`,
		lib.Email(), fileID,
	); err != nil {
		return fmt.Errorf("%w: deleting embedding file: %w", domain.ErrStorage, err)
	}
	return nil
}

// List returns the stored file ids, sorted.
func (s *Store) List(ctx context.Context, lib domain.LibraryID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file_id FROM embedding_files WHERE library = ? ORDER BY file_id`,
		lib.Email(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: listing embedding files: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scanning file id: %w", domain.ErrStorage, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ==================== Uploads ====================

// SaveUpload stores content under filename.
func (s *Store) SaveUpload(
	ctx context.Context, lib domain.LibraryID, filename string, content []byte,
) (domain.UploadInfo, error) {
	id, err := domain.DocumentIDFromFilename(filename)
	if err != nil {
		return domain.UploadInfo{}, err
	}

	info := domain.UploadInfo{
		Filename: filename,
		Size:     int64(len(content)),
		ModTime:  s.now().UTC().Truncate(time.Second),
	}
	if content == nil {
		content = []byte{}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO uploads (library, filename, file_id, content, size, mod_time)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(library, filename) DO UPDATE SET
			content = excluded.content,
			size = excluded.size,
			mod_time = excluded.mod_time
	`, lib.Email(), filename, id.String(), content, info.Size, info.ModTime)
	if err != nil {
		return domain.UploadInfo{}, fmt.Errorf("%w: saving upload: %w", domain.ErrStorage, err)
	}
	return info, nil
}

// FindUpload returns the upload stored for fileID.
func (s *Store) FindUpload(ctx context.Context, lib domain.LibraryID, fileID string) (domain.UploadInfo, error) {
	var info domain.UploadInfo
	err := s.db.QueryRowContext(ctx, `
		SELECT filename, size, mod_time FROM uploads
		WHERE library = ? AND file_id = ?
		ORDER BY filename LIMIT 1
	`, lib.Email(), fileID).Scan(&info.Filename, &info.Size, &info.ModTime)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UploadInfo{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.UploadInfo{}, fmt.Errorf("%w: finding upload: %w", domain.ErrStorage, err)
	}
	return info, nil
}

// DeleteUpload removes the upload for fileID.
func (s *Store) DeleteUpload(ctx context.Context, lib domain.LibraryID, fileID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM uploads WHERE library = ? AND file_id = ?`,
		lib.Email(), fileID,
	); err != nil {
		return fmt.Errorf("%w: deleting upload: %w", domain.ErrStorage, err)
	}
	return nil
}

// LibraryExists reports whether any embeddings or uploads are stored for lib.
func (s *Store) LibraryExists(ctx context.Context, lib domain.LibraryID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM embedding_files WHERE library = ?)
		    OR EXISTS (SELECT 1 FROM uploads WHERE library = ?)
	`, lib.Email(), lib.Email()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: checking library: %w", domain.ErrStorage, err)
	}
	return exists, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
