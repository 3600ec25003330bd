package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/orion/internal/core/domain"
)

const testFileID = "0b6f3a52-6f1e-4a8e-9a57-2f7f2c1d9e10"

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func testLibrary(t *testing.T, email string) domain.LibraryID {
	t.Helper()
	lib, err := domain.NewLibraryID(email)
	require.NoError(t, err)
	return lib
}

func testFile(id string) *domain.EmbeddingFile {
	return &domain.EmbeddingFile{
		FileID: id,
		Records: []domain.EmbeddingRecord{
			{Filename: id + "_chunk_000.txt", Text: "alpha", TokenCount: 1, Embedding: []float32{1, 0, 0.5}, EmbeddingModel: "m"},
			{Filename: id + "_chunk_001.txt", Text: "beta", TokenCount: 1, Embedding: []float32{0, 1, -0.25}, EmbeddingModel: "m"},
		},
		Metadata: map[string]any{
			domain.MetaOriginalFilename: "notes.txt",
			domain.MetaContentType:      "text/plain",
		},
		StorageFormat:  domain.StorageFormatJSON,
		EmbeddingCount: 2,
	}
}

// ==================== Store Creation and Initialization Tests ====================

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DatabaseFile), store.Path())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_MigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()
	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	var count int
	require.NoError(t, second.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

// ==================== Embedding Tests ====================

func TestStore_SaveAndLoad(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	lib := testLibrary(t, "user@example.com")

	require.NoError(t, store.Save(ctx, lib, testFile(testFileID)))

	got, err := store.Load(ctx, lib, testFileID)
	require.NoError(t, err)
	assert.Equal(t, testFileID, got.FileID)
	assert.Equal(t, 2, got.EmbeddingCount)
	assert.Equal(t, domain.StorageFormatJSON, got.StorageFormat)
	assert.Equal(t, "notes.txt", got.Metadata[domain.MetaOriginalFilename])
	require.Len(t, got.Records, 2)
	assert.Equal(t, "alpha", got.Records[0].Text)
	assert.Equal(t, []float32{1, 0, 0.5}, got.Records[0].Embedding)
	assert.Equal(t, []float32{0, 1, -0.25}, got.Records[1].Embedding)
}

func TestStore_SaveReplaces(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	lib := testLibrary(t, "user@example.com")

	require.NoError(t, store.Save(ctx, lib, testFile(testFileID)))

	replacement := testFile(testFileID)
	replacement.Records = replacement.Records[:1]
	require.NoError(t, store.Save(ctx, lib, replacement))

	got, err := store.Load(ctx, lib, testFileID)
	require.NoError(t, err)
	assert.Len(t, got.Records, 1)
	assert.Equal(t, 1, got.EmbeddingCount)
}

func TestStore_LoadMissing(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Load(context.Background(), testLibrary(t, "user@example.com"), testFileID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_RecordWithoutEmbedding(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	lib := testLibrary(t, "user@example.com")

	file := testFile(testFileID)
	file.Records[1].Embedding = nil
	require.NoError(t, store.Save(ctx, lib, file))

	got, err := store.Load(ctx, lib, testFileID)
	require.NoError(t, err)
	assert.Empty(t, got.Records[1].Embedding)
}

func TestStore_ExistsDeleteList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	lib := testLibrary(t, "user@example.com")
	other := testLibrary(t, "other@example.com")
	secondID := "1c7a4b63-7a2f-4b9f-8b68-3a8a3d2eaf21"

	require.NoError(t, store.Save(ctx, lib, testFile(secondID)))
	require.NoError(t, store.Save(ctx, lib, testFile(testFileID)))

	ids, err := store.List(ctx, lib)
	require.NoError(t, err)
	assert.Equal(t, []string{testFileID, secondID}, ids)

	ids, err = store.List(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, ids)

	exists, err := store.Exists(ctx, lib, testFileID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.Exists(ctx, other, testFileID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Delete(ctx, lib, testFileID))
	require.NoError(t, store.Delete(ctx, lib, testFileID))

	exists, err = store.Exists(ctx, lib, testFileID)
	require.NoError(t, err)
	assert.False(t, exists)

	var records int
	require.NoError(t, store.db.QueryRow(
		"SELECT COUNT(*) FROM embedding_records WHERE file_id = ?", testFileID).Scan(&records))
	assert.Zero(t, records)
}

// ==================== Upload Tests ====================

func TestStore_Uploads(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	lib := testLibrary(t, "user@example.com")
	name := testFileID + "_notes.txt"

	info, err := store.SaveUpload(ctx, lib, name, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, name, info.Filename)
	assert.Equal(t, int64(5), info.Size)

	found, err := store.FindUpload(ctx, lib, testFileID)
	require.NoError(t, err)
	assert.Equal(t, name, found.Filename)
	assert.Equal(t, int64(5), found.Size)

	require.NoError(t, store.DeleteUpload(ctx, lib, testFileID))
	_, err = store.FindUpload(ctx, lib, testFileID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_SaveUploadInvalidName(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.SaveUpload(context.Background(), testLibrary(t, "user@example.com"), "notes.txt", []byte("x"))
	assert.ErrorIs(t, err, domain.ErrInvalidDocument)
}

func TestStore_LibraryExists(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	lib := testLibrary(t, "user@example.com")

	exists, err := store.LibraryExists(ctx, lib)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.SaveUpload(ctx, lib, testFileID+"_notes.txt", []byte("x"))
	require.NoError(t, err)

	exists, err = store.LibraryExists(ctx, lib)
	require.NoError(t, err)
	assert.True(t, exists)
}

// ==================== Codec Tests ====================

func TestFloat32Codec(t *testing.T) {
	tests := []struct {
		name   string
		values []float32
	}{
		{"empty", nil},
		{"single", []float32{0.5}},
		{"mixed", []float32{1, -1, 0, 3.14159, -0.001}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := float32SliceToBytes(tt.values)
			assert.Len(t, encoded, len(tt.values)*4)
			assert.Equal(t, tt.values, bytesToFloat32Slice(encoded))
		})
	}
}
