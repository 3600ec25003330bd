// Package search provides the main search view for the TUI.
package search

import (
	"context"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/orion/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/orion/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/orion/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/orion/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/orion/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/orion/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driving"
)

// Config selects the library and the initial search parameters.
type Config struct {
	UserEmail string
	Algorithm string
	Limit     int
}

// View represents the search view with input, results list, and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.SearchInput
	list      *list.ResultList
	statusbar *status.Bar

	queryService driving.QueryService
	ctx          context.Context

	userEmail  string
	algorithms []string
	algorithm  string
	limit      int
	last       *domain.SearchResults

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = typing a query, false = navigating results
}

// NewView creates a new search view.
func NewView(s *styles.Styles, km *keymap.KeyMap, queryService driving.QueryService, cfg Config) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:       s,
		keymap:       km,
		input:        input.NewSearchInput(s),
		list:         list.NewResultList(s),
		statusbar:    status.NewBar(s, km),
		queryService: queryService,
		ctx:          context.Background(),
		userEmail:    cfg.UserEmail,
		limit:        cfg.Limit,
		width:        80,
		height:       24,
		focusInput:   true,
	}

	if queryService != nil {
		v.algorithms = queryService.SupportedAlgorithms()
	}
	v.setAlgorithm(cfg.Algorithm)
	return v
}

// setAlgorithm activates name, falling back to the first supported algorithm.
func (v *View) setAlgorithm(name string) {
	if name == "" || (len(v.algorithms) > 0 && !slices.Contains(v.algorithms, name)) {
		name = ""
		if len(v.algorithms) > 0 {
			name = v.algorithms[0]
		}
	}
	v.algorithm = name
	v.input.SetAlgorithm(name)
	v.statusbar.SetAlgorithm(name)
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if key.Matches(msg, v.keymap.Back) {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if key.Matches(msg, v.keymap.Algorithm) {
		return v, v.cycleAlgorithm()
	}

	if v.focusInput {
		if key.Matches(msg, v.keymap.Search) {
			query := v.input.Value()
			if query == "" {
				return v, nil
			}
			v.statusbar.SetState(status.StateSearching)
			v.focusInput = false
			v.input.Blur()
			return v, v.performSearch(query)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keymap.Open):
		if result := v.list.SelectedResult(); result != nil {
			selected := *result
			return v, func() tea.Msg {
				return messages.ResultSelected{Result: selected}
			}
		}
	case key.Matches(msg, v.keymap.Up):
		v.list.MoveUp()
	case key.Matches(msg, v.keymap.Down):
		v.list.MoveDown()
	case key.Matches(msg, v.keymap.NewSearch):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	}

	return v, nil
}

// cycleAlgorithm advances to the next supported algorithm and reruns the
// last query under it when there is one.
func (v *View) cycleAlgorithm() tea.Cmd {
	if len(v.algorithms) < 2 {
		return nil
	}
	next := (slices.Index(v.algorithms, v.algorithm) + 1) % len(v.algorithms)
	v.setAlgorithm(v.algorithms[next])
	v.statusbar.SetMessage("Algorithm: " + v.algorithm)

	if v.last == nil || v.focusInput {
		return nil
	}
	v.statusbar.SetState(status.StateSearching)
	return v.performSearch(v.last.QueryText)
}

// performSearch executes a search against the user's library.
func (v *View) performSearch(query string) tea.Cmd {
	ctx, email, algorithm, limit := v.ctx, v.userEmail, v.algorithm, v.limit
	svc := v.queryService
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoQueryService}
		}
		results, err := svc.ExecuteQuery(ctx, email, query, algorithm, limit)
		return messages.SearchCompleted{Results: results, Err: err}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		v.focusInput = true
		v.input.Focus()
		return
	}

	v.err = nil
	v.last = msg.Results
	if msg.Results != nil {
		v.list.SetResults(msg.Results.Results)
	} else {
		v.list.SetResults(nil)
	}
	v.statusbar.SetResults(msg.Results)

	v.focusInput = false
	v.input.Blur()
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("Orion") + "  " + v.styles.Muted.Render(v.userEmail),
		"",
		v.input.View(),
		"",
	}

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.list.View(), "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10) // header, input and status
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the current search query.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the search query.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Algorithm returns the active algorithm.
func (v *View) Algorithm() string {
	return v.algorithm
}

// LastResults returns the envelope of the last successful search.
func (v *View) LastResults() *domain.SearchResults {
	return v.last
}

// Results returns the listed results.
func (v *View) Results() []domain.ChunkSearchResult {
	return v.list.Results()
}

// SelectedIndex returns the index of the selected result.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// SelectedResult returns the currently selected result.
func (v *View) SelectedResult() *domain.ChunkSearchResult {
	return v.list.SelectedResult()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset returns the view to input mode with no results. The active
// algorithm is kept.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetResults(nil)
	v.last = nil
	v.err = nil
	v.statusbar.Clear()
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
