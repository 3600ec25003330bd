package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driven"
)

const (
	testEmail = "user@example.com"
	testDocID = "0b6f3a52-6f1e-4a8e-9a57-2f7f2c1d9e10"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	mu        sync.Mutex
	embedding []float32
	byText    map[string][]float32
	embedErr  error
	model     string
	calls     int
	batches   [][]string
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if text == "" {
		return nil, domain.ErrEmptyInput
	}
	if v, ok := m.byText[text]; ok {
		return v, nil
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.batches = append(m.batches, texts)
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := m.byText[text]; ok {
			result[i] = v
			continue
		}
		result[i] = m.embedding
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return len(m.embedding)
}

func (m *mockEmbeddingService) ModelName() string {
	if m.model != "" {
		return m.model
	}
	return "m"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return m.embedErr
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

func (m *mockEmbeddingService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockRepository implements driven.LibraryRepository for testing.
type mockRepository struct {
	library   *domain.Library
	exists    bool
	existsErr error
	loadErr   error
	loads     int
}

func (m *mockRepository) LoadLibrary(_ context.Context, _ domain.LibraryID) (*domain.Library, error) {
	m.loads++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.library, nil
}

func (m *mockRepository) LibraryExists(_ context.Context, _ domain.LibraryID) (bool, error) {
	return m.exists, m.existsErr
}

// mockExtractor implements driven.TextExtractor for testing.
type mockExtractor struct {
	text string
	err  error
}

func (m *mockExtractor) SupportedMIMETypes() []string {
	return []string{"text/plain"}
}

func (m *mockExtractor) SupportedExtensions() []string {
	return []string{".txt"}
}

func (m *mockExtractor) Extract(_ context.Context, _ string, content []byte) (*domain.ExtractedText, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.text != "" {
		return &domain.ExtractedText{Content: m.text}, nil
	}
	return &domain.ExtractedText{Content: string(content)}, nil
}

// mockExtractorRegistry implements driven.ExtractorRegistry for testing.
type mockExtractorRegistry struct {
	extractor driven.TextExtractor
}

func (m *mockExtractorRegistry) Select(filename, _ string) (driven.TextExtractor, error) {
	if m.extractor == nil || !strings.HasSuffix(filename, ".txt") {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, filename)
	}
	return m.extractor, nil
}

// wordChunker implements driven.Chunker, one segment per n words.
type wordChunker struct {
	n int
}

func (c *wordChunker) Name() string {
	return "words"
}

func (c *wordChunker) Chunk(_ context.Context, text string) ([]domain.TextSegment, error) {
	words := strings.Fields(text)
	var out []domain.TextSegment
	for start := 0; start < len(words); start += c.n {
		end := min(start+c.n, len(words))
		out = append(out, domain.TextSegment{
			Sequence:   len(out),
			Text:       strings.Join(words[start:end], " "),
			TokenCount: end - start,
		})
	}
	return out, nil
}

// --- Test helpers ---

func testLibraryID(t *testing.T) domain.LibraryID {
	t.Helper()
	id, err := domain.NewLibraryID(testEmail)
	require.NoError(t, err)
	return id
}

// chunkSpec describes one chunk of a fixture document. A nil embedding
// leaves the chunk unembedded.
type chunkSpec struct {
	text      string
	embedding []float32
}

// buildLibrary returns a library holding one document with the given chunks.
func buildLibrary(t *testing.T, chunks ...chunkSpec) *domain.Library {
	t.Helper()
	lib := testLibraryID(t)

	lb, err := domain.NewLibraryBuilder(lib, testEmail, time.Now())
	require.NoError(t, err)
	if len(chunks) == 0 {
		return lb.Build()
	}

	db, err := domain.NewDocumentBuilder(domain.DocumentParams{
		ID:               testDocID,
		LibraryID:        lib,
		OriginalFilename: "notes.txt",
		UploadedFilename: testDocID + "_notes.txt",
		ContentType:      "text/plain",
		FileSize:         128,
		UploadedAt:       time.Now(),
	})
	require.NoError(t, err)

	for seq, spec := range chunks {
		id, err := domain.NewChunkID(testDocID, seq)
		require.NoError(t, err)
		p := domain.ChunkParams{
			ID:            id,
			DocumentID:    testDocID,
			Filename:      id.Filename(),
			Text:          spec.text,
			TokenCount:    len(strings.Fields(spec.text)),
			SequenceIndex: seq,
		}
		if spec.embedding != nil {
			p.Embedding = domain.MustVector(spec.embedding, "m")
		}
		c, err := domain.NewChunk(p)
		require.NoError(t, err)
		added, err := db.AddChunk(c)
		require.NoError(t, err)
		require.True(t, added)
	}

	require.NoError(t, lb.AddDocument(db.Build()))
	return lb.Build()
}
