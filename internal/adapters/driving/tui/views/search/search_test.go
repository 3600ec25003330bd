package search

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/orion/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/orion/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/orion/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/orion/internal/core/domain"
)

const (
	testEmail = "user@example.com"
	testDocID = "0b6f3a52-6f1e-4a8e-9a57-2f7f2c1d9e10"
)

// mockQueryService implements driving.QueryService for testing.
type mockQueryService struct {
	executeFunc func(ctx context.Context, email, text, algorithm string, limit int) (*domain.SearchResults, error)
	algorithms  []string

	calls []queryCall
}

type queryCall struct {
	email, text, algorithm string
	limit                  int
}

func (m *mockQueryService) ExecuteQuery(
	ctx context.Context, email, text, algorithm string, limit int,
) (*domain.SearchResults, error) {
	m.calls = append(m.calls, queryCall{email, text, algorithm, limit})
	if m.executeFunc != nil {
		return m.executeFunc(ctx, email, text, algorithm, limit)
	}
	return domain.NewSearchResults(nil, domain.Algorithm(algorithm), 0, 0, domain.LibraryID{}, text)
}

func (m *mockQueryService) SupportedAlgorithms() []string {
	if m.algorithms != nil {
		return m.algorithms
	}
	return []string{"cosine", "hybrid"}
}

func (m *mockQueryService) LibraryStats(_ context.Context, email string) (domain.LibraryStats, error) {
	return domain.MissingLibraryStats(email), nil
}

func testResults(t *testing.T, query string) *domain.SearchResults {
	t.Helper()

	var results []domain.ChunkSearchResult
	for i, text := range []string{"quarterly revenue grew", "costs fell"} {
		id, err := domain.NewChunkID(testDocID, i)
		require.NoError(t, err)
		chunk, err := domain.NewChunk(domain.ChunkParams{
			ID:            id,
			DocumentID:    domain.DocumentID(testDocID),
			Filename:      id.Filename(),
			Text:          text,
			TokenCount:    3,
			SequenceIndex: i,
		})
		require.NoError(t, err)
		r, err := domain.NewChunkSearchResult(chunk, 0.9-float64(i)*0.1, i+1)
		require.NoError(t, err)
		results = append(results, r)
	}

	lib, err := domain.NewLibraryID(testEmail)
	require.NoError(t, err)
	out, err := domain.NewSearchResults(results, domain.AlgorithmCosine, 5*time.Millisecond, 4, lib, query)
	require.NoError(t, err)
	return out
}

func newTestView(svc *mockQueryService) *View {
	v := NewView(styles.DefaultStyles(), keymap.DefaultKeyMap(), svc, Config{
		UserEmail: testEmail,
		Algorithm: "cosine",
		Limit:     5,
	})
	v.SetDimensions(100, 30)
	return v
}

func typeQuery(v *View, query string) {
	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(query)})
}

func runCmd(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	return cmd()
}

func TestNewView(t *testing.T) {
	view := NewView(nil, nil, &mockQueryService{}, Config{UserEmail: testEmail})

	require.NotNil(t, view)
	assert.False(t, view.Ready())
	assert.Empty(t, view.Query())
	assert.True(t, view.InputFocused())
	assert.Equal(t, "cosine", view.Algorithm(), "defaults to first supported algorithm")
	assert.NotNil(t, view.Init())
}

func TestNewView_Algorithm(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		expected  string
	}{
		{"supported", "hybrid", "hybrid"},
		{"unsupported falls back", "bm25", "cosine"},
		{"empty falls back", "", "cosine"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := NewView(nil, nil, &mockQueryService{}, Config{Algorithm: tt.requested})
			assert.Equal(t, tt.expected, view.Algorithm())
		})
	}
}

func TestNewView_NilService(t *testing.T) {
	view := NewView(nil, nil, nil, Config{})

	require.NotNil(t, view)
	assert.Empty(t, view.Algorithm())

	view.SetQuery("anything")
	msg := runCmd(t, view.performSearch("anything"))
	errMsg, ok := msg.(messages.ErrorOccurred)
	require.True(t, ok)
	assert.ErrorIs(t, errMsg.Err, ErrNoQueryService)
}

func TestView_WithContext(t *testing.T) {
	view := NewView(nil, nil, nil, Config{})
	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	assert.Equal(t, view, view.WithContext(ctx))
	assert.Equal(t, ctx, view.ctx)
}

func TestView_SubmitSearch(t *testing.T) {
	svc := &mockQueryService{}
	view := newTestView(svc)

	typeQuery(view, "revenue")
	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, view.InputFocused())
	msg := runCmd(t, cmd)
	completed, ok := msg.(messages.SearchCompleted)
	require.True(t, ok)
	assert.NoError(t, completed.Err)

	require.Len(t, svc.calls, 1)
	assert.Equal(t, queryCall{testEmail, "revenue", "cosine", 5}, svc.calls[0])
}

func TestView_SubmitEmptyQuery(t *testing.T) {
	svc := &mockQueryService{}
	view := newTestView(svc)

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.True(t, view.InputFocused())
	assert.Empty(t, svc.calls)
}

func TestView_SearchCompleted(t *testing.T) {
	view := newTestView(&mockQueryService{})
	results := testResults(t, "revenue")

	view.Update(messages.SearchCompleted{Results: results})

	assert.NoError(t, view.Err())
	assert.Equal(t, results, view.LastResults())
	assert.Len(t, view.Results(), 2)
	assert.False(t, view.InputFocused())

	rendered := view.View()
	assert.Contains(t, rendered, "Results (2)")
	assert.Contains(t, rendered, "2 of 4 chunks in 5ms")
}

func TestView_SearchFailed(t *testing.T) {
	view := newTestView(&mockQueryService{})

	view.Update(messages.SearchCompleted{Err: domain.ErrLibraryNotFound})

	assert.ErrorIs(t, view.Err(), domain.ErrLibraryNotFound)
	assert.True(t, view.InputFocused(), "focus returns to the input so the query can be fixed")
	assert.Contains(t, view.View(), "Error:")
}

func TestView_ErrorOccurred(t *testing.T) {
	view := newTestView(&mockQueryService{})

	view.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, view.Err(), "boom")
}

func TestView_ResultNavigation(t *testing.T) {
	view := newTestView(&mockQueryService{})
	view.Update(messages.SearchCompleted{Results: testResults(t, "revenue")})

	view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 1, view.SelectedIndex())

	view.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, view.SelectedIndex())

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg := runCmd(t, cmd)
	selected, ok := msg.(messages.ResultSelected)
	require.True(t, ok)
	assert.Equal(t, 1, selected.Result.Rank)
}

func TestView_NewSearch(t *testing.T) {
	view := newTestView(&mockQueryService{})
	view.SetQuery("revenue")
	view.Update(messages.SearchCompleted{Results: testResults(t, "revenue")})

	view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})

	assert.True(t, view.InputFocused())
	assert.Empty(t, view.Query())
}

func TestView_CycleAlgorithm(t *testing.T) {
	t.Run("while typing only switches", func(t *testing.T) {
		svc := &mockQueryService{}
		view := newTestView(svc)

		_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyTab})

		assert.Nil(t, cmd)
		assert.Equal(t, "hybrid", view.Algorithm())
		assert.Empty(t, svc.calls)

		view.Update(tea.KeyMsg{Type: tea.KeyTab})
		assert.Equal(t, "cosine", view.Algorithm(), "wraps around")
	})

	t.Run("with results reruns the last query", func(t *testing.T) {
		svc := &mockQueryService{}
		view := newTestView(svc)
		view.Update(messages.SearchCompleted{Results: testResults(t, "revenue")})

		_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyTab})
		runCmd(t, cmd)

		require.Len(t, svc.calls, 1)
		assert.Equal(t, "hybrid", svc.calls[0].algorithm)
		assert.Equal(t, "revenue", svc.calls[0].text)
	})

	t.Run("single algorithm is a no-op", func(t *testing.T) {
		view := newTestView(&mockQueryService{algorithms: []string{"cosine"}})

		_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyTab})

		assert.Nil(t, cmd)
		assert.Equal(t, "cosine", view.Algorithm())
	})
}

func TestView_EscReturnsToMenu(t *testing.T) {
	view := newTestView(&mockQueryService{})

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEsc})

	msg := runCmd(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, msg)
}

func TestView_Reset(t *testing.T) {
	view := newTestView(&mockQueryService{})
	view.Update(tea.KeyMsg{Type: tea.KeyTab})
	view.Update(messages.SearchCompleted{Results: testResults(t, "revenue")})

	view.Reset()

	assert.True(t, view.InputFocused())
	assert.Empty(t, view.Results())
	assert.Nil(t, view.LastResults())
	assert.NoError(t, view.Err())
	assert.Equal(t, "hybrid", view.Algorithm())
}

func TestView_NotReady(t *testing.T) {
	view := NewView(nil, nil, nil, Config{})

	assert.Equal(t, "Initialising...", view.View())

	view.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.True(t, view.Ready())
	assert.Contains(t, view.View(), "Orion")
}
