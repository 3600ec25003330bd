package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	accents := []string{
		string(theme.Primary),
		string(theme.Secondary),
		string(theme.Success),
		string(theme.Warning),
		string(theme.Error),
	}
	seen := make(map[string]bool)
	for _, c := range accents {
		assert.NotEmpty(t, c)
		assert.False(t, seen[c], "duplicate accent: %s", c)
		seen[c] = true
	}
}

func TestNewStyles(t *testing.T) {
	t.Run("with theme", func(t *testing.T) {
		theme := DefaultTheme()
		s := NewStyles(theme)
		require.NotNil(t, s)
		assert.Equal(t, theme, s.Theme())
	})

	t.Run("nil theme falls back to default", func(t *testing.T) {
		s := NewStyles(nil)
		require.NotNil(t, s)
		assert.Equal(t, DefaultTheme(), s.Theme())
	})
}

func TestStyles_Render(t *testing.T) {
	s := DefaultStyles()

	assert.Contains(t, s.Title.Render("Orion"), "Orion")
	assert.Contains(t, s.Badge.Render("cosine"), "cosine")
	assert.Contains(t, s.InputField.Render("query"), "query")
}

func TestStyles_ScoreStyle(t *testing.T) {
	s := DefaultStyles()

	tests := []struct {
		name  string
		score float64
		want  lipgloss.TerminalColor
	}{
		{"strong", 0.9, s.Theme().Success},
		{"boundary strong", StrongMatch, s.Theme().Success},
		{"weak", 0.5, s.Theme().Warning},
		{"poor", 0.1, s.Theme().Muted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.ScoreStyle(tt.score).GetForeground())
		})
	}
}
