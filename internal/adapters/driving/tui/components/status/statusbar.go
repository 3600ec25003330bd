// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/orion/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/orion/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/orion/internal/core/domain"
)

// State represents the current application state for display.
type State string

const (
	StateReady     State = "ready"
	StateSearching State = "searching"
	StateError     State = "error"
	StateResults   State = "results"
)

// Bar displays search status and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	width   int

	resultCount   int
	totalSearched int
	elapsed       time.Duration
	topScore      float64
	hasTop        bool
	algorithm     string
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update is a no-op; the bar is driven through its setters.
func (s *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) {
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	switch s.state {
	case StateSearching:
		return s.styles.Muted.Render("Searching...")
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render("Error: " + s.message)
		}
		return s.styles.Error.Render("Error")
	case StateResults:
		summary := fmt.Sprintf("%d of %d chunks in %dms",
			s.resultCount, s.totalSearched, s.elapsed.Milliseconds())
		if s.hasTop {
			summary += fmt.Sprintf(" | top %.4f", s.topScore)
		}
		if s.message != "" {
			summary += " | " + s.message
		}
		return s.styles.Normal.Render(summary)
	case StateReady:
	}
	if s.message != "" {
		return s.styles.Normal.Render(s.message)
	}
	return s.styles.Muted.Render("Ready")
}

func (s *Bar) renderRight() string {
	var bindings []key.Binding
	if s.state == StateResults && s.resultCount > 0 {
		bindings = s.keymap.ResultsHelp()
	} else {
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings)+1)
	if s.algorithm != "" {
		hints = append(hints, s.algorithm)
	}
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetResults records the summary of a completed search and switches to
// the results state.
func (s *Bar) SetResults(results *domain.SearchResults) {
	s.state = StateResults
	s.message = ""
	if results == nil {
		s.resultCount, s.totalSearched, s.elapsed = 0, 0, 0
		s.topScore, s.hasTop = 0, false
		return
	}
	top, ok := results.Top()
	s.topScore, s.hasTop = top.Score, ok
	s.resultCount = results.Count()
	s.totalSearched = results.TotalChunksSearched
	s.elapsed = results.ExecutionTime
	s.algorithm = results.Algorithm.String()
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetAlgorithm sets the algorithm label shown on the right.
func (s *Bar) SetAlgorithm(name string) {
	s.algorithm = name
}

// Algorithm returns the displayed algorithm label.
func (s *Bar) Algorithm() string {
	return s.algorithm
}

// ResultCount returns the current result count.
func (s *Bar) ResultCount() int {
	return s.resultCount
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Clear resets the status bar to its ready state. The algorithm label is kept.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.resultCount = 0
	s.totalSearched = 0
	s.elapsed = 0
	s.topScore, s.hasTop = 0, false
}
