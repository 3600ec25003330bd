// Package input provides text input components for the TUI.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/orion/internal/adapters/driving/tui/styles"
)

// MaxQueryLength bounds the query text accepted by the input.
const MaxQueryLength = 1000

// SearchInput wraps a bubbles textinput and shows the active algorithm.
type SearchInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	algorithm string
	width     int
}

// NewSearchInput creates a focused search input.
func NewSearchInput(s *styles.Styles) *SearchInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Ask your library..."
	ti.Focus()
	ti.CharLimit = MaxQueryLength
	ti.Width = 50

	return &SearchInput{
		textinput: ti,
		styles:    s,
		width:     50,
	}
}

// Init starts the cursor blinking.
func (s *SearchInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (s *SearchInput) Update(msg tea.Msg) (*SearchInput, tea.Cmd) {
	var cmd tea.Cmd
	s.textinput, cmd = s.textinput.Update(msg)
	return s, cmd
}

// View renders the label, the input box and the algorithm badge.
func (s *SearchInput) View() string {
	parts := []string{
		s.styles.Title.Render("Query: "),
		s.styles.InputField.Render(s.textinput.View()),
	}
	if s.algorithm != "" {
		parts = append(parts, " ", s.styles.Badge.Render(s.algorithm))
	}
	//nolint:misspell // lipgloss.Center is the library's spelling
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

// Value returns the query with surrounding whitespace removed.
func (s *SearchInput) Value() string {
	return strings.TrimSpace(s.textinput.Value())
}

// SetValue sets the input value.
func (s *SearchInput) SetValue(value string) {
	s.textinput.SetValue(value)
}

// SetAlgorithm sets the badge text.
func (s *SearchInput) SetAlgorithm(name string) {
	s.algorithm = name
}

// Algorithm returns the badge text.
func (s *SearchInput) Algorithm() string {
	return s.algorithm
}

// Focus sets focus on the input.
func (s *SearchInput) Focus() tea.Cmd {
	return s.textinput.Focus()
}

// Blur removes focus from the input.
func (s *SearchInput) Blur() {
	s.textinput.Blur()
}

// Focused returns whether the input is focused.
func (s *SearchInput) Focused() bool {
	return s.textinput.Focused()
}

// SetWidth sizes the input box, leaving room for the label and badge.
func (s *SearchInput) SetWidth(width int) {
	s.width = width
	s.textinput.Width = max(width-24, 20)
}

// Width returns the current width.
func (s *SearchInput) Width() int {
	return s.width
}

// Reset clears the input.
func (s *SearchInput) Reset() {
	s.textinput.Reset()
}
