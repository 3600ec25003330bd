package cli

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/orion/internal/core/domain"
)

const (
	testEmail = "reader@example.com"
	testDocID = domain.DocumentID("0b6f3a52-6f1e-4a8e-9a57-2f7f2c1d9e10")
)

var errServiceFailed = errors.New("service failed")

// mockQueryService implements driving.QueryService for CLI tests.
type mockQueryService struct {
	ExecuteQueryFunc func(ctx context.Context, email, text, algorithm string, limit int) (*domain.SearchResults, error)
	StatsFunc        func(ctx context.Context, email string) (domain.LibraryStats, error)

	lastEmail     string
	lastAlgorithm string
	lastLimit     int
}

func (m *mockQueryService) ExecuteQuery(
	ctx context.Context, email, text, algorithm string, limit int,
) (*domain.SearchResults, error) {
	m.lastEmail = email
	m.lastAlgorithm = algorithm
	m.lastLimit = limit
	if m.ExecuteQueryFunc != nil {
		return m.ExecuteQueryFunc(ctx, email, text, algorithm, limit)
	}
	return sampleResults(text), nil
}

func (m *mockQueryService) SupportedAlgorithms() []string {
	return []string{"cosine", "hybrid"}
}

func (m *mockQueryService) LibraryStats(ctx context.Context, email string) (domain.LibraryStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx, email)
	}
	return domain.LibraryStats{
		UserEmail:            email,
		Exists:               true,
		DocumentCount:        2,
		ChunkCount:           7,
		ChunksWithEmbeddings: 7,
		TotalFileSize:        2048,
	}, nil
}

// mockIngestService implements driving.IngestService for CLI tests.
type mockIngestService struct {
	IngestFunc func(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error)
	DeleteFunc func(ctx context.Context, email string, id domain.DocumentID) error
	ListFunc   func(ctx context.Context, email string) ([]domain.DocumentSummary, error)

	ingested []domain.IngestRequest
	deleted  []domain.DocumentID
}

func (m *mockIngestService) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	m.ingested = append(m.ingested, req)
	if m.IngestFunc != nil {
		return m.IngestFunc(ctx, req)
	}
	return &domain.IngestResult{
		DocumentID:       testDocID,
		UploadedFilename: testDocID.UploadedFilename(req.Filename),
		ChunkCount:       3,
		EmbeddingModel:   "test-model",
		Duration:         12 * time.Millisecond,
	}, nil
}

func (m *mockIngestService) Delete(ctx context.Context, email string, id domain.DocumentID) error {
	m.deleted = append(m.deleted, id)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, email, id)
	}
	return nil
}

func (m *mockIngestService) List(ctx context.Context, email string) ([]domain.DocumentSummary, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, email)
	}
	return []domain.DocumentSummary{
		{ID: testDocID, OriginalFilename: "handbook.pdf", ContentType: "application/pdf", ChunkCount: 4},
	}, nil
}

// mockSettingsService implements driving.SettingsService for CLI tests.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	setErr      error
	set         map[string]any
}

func newMockSettingsService() *mockSettingsService {
	s := domain.DefaultAppSettings()
	s.Embedding.Provider = domain.ProviderOllama
	s.Embedding.Model = "nomic-embed-text"
	s.Storage.DataDir = "/tmp/orion"
	return &mockSettingsService{settings: s, set: make(map[string]any)}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

// testServices are the mocks installed by setupTestServices.
type testServices struct {
	query    *mockQueryService
	ingest   *mockIngestService
	settings *mockSettingsService
}

// setupTestServices installs mock services and a test user.
// The returned cleanup restores the previous state and resets flags.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		query:    &mockQueryService{},
		ingest:   &mockIngestService{},
		settings: newMockSettingsService(),
	}

	oldQuery, oldIngest, oldSettings := queryService, ingestService, settingsService
	oldFactory, oldUser, oldEnvFile := serviceFactory, userEmail, envFile

	queryService = ts.query
	ingestService = ts.ingest
	settingsService = ts.settings
	serviceFactory = nil
	userEmail = testEmail
	envFile = ""

	return ts, func() {
		queryService, ingestService, settingsService = oldQuery, oldIngest, oldSettings
		serviceFactory, userEmail, envFile = oldFactory, oldUser, oldEnvFile
		setupErr = nil
		pingEmbedding = nil
		closeServices = nil

		searchAlgorithm, searchLimit, searchJSON = "", 10, false
		ingestWatch, ingestContentType = false, ""
		configPing = false
		rootCmd.SetArgs(nil)
	}
}

// sampleResults builds a one-result page. It panics on invalid fixtures.
func sampleResults(query string) *domain.SearchResults {
	lib, err := domain.NewLibraryID(testEmail)
	must(err)
	id, err := domain.NewChunkID(testDocID.String(), 0)
	must(err)
	chunk, err := domain.NewChunk(domain.ChunkParams{
		ID:             id,
		DocumentID:     testDocID,
		Filename:       id.Filename(),
		Text:           "Vacation requests   must be filed\ntwo weeks ahead.",
		TokenCount:     8,
		SequenceIndex:  0,
		Embedding:      domain.MustVector([]float32{0.1, 0.2}, "test-model"),
		EmbeddingModel: "test-model",
	})
	must(err)
	result, err := domain.NewChunkSearchResult(chunk, 0.8731, 1)
	must(err)
	results, err := domain.NewSearchResults(
		[]domain.ChunkSearchResult{result}, domain.AlgorithmCosine, 4*time.Millisecond, 7, lib, query)
	must(err)
	return results
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
