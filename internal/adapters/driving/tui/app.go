package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/orion/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/orion/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/orion/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/orion/internal/adapters/driving/tui/views/chunk"
	"github.com/custodia-labs/orion/internal/adapters/driving/tui/views/documents"
	"github.com/custodia-labs/orion/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/orion/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/orion/internal/adapters/driving/tui/views/stats"
	"github.com/custodia-labs/orion/internal/core/domain"
)

// Option configures an App.
type Option func(*App)

// WithAlgorithm sets the algorithm the search view starts with.
func WithAlgorithm(name string) Option {
	return func(a *App) { a.algorithm = name }
}

// WithLimit sets the number of results requested per search.
func WithLimit(limit int) Option {
	return func(a *App) { a.limit = limit }
}

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	algorithm string
	limit     int

	menuView      *menu.View
	searchView    *search.View
	documentsView *documents.View
	chunkView     *chunk.View
	statsView     *stats.View

	currentView messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports, opts ...Option) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	if _, err := domain.NewLibraryID(ports.UserEmail); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	a := &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      styles.DefaultStyles(),
		keymap:      keymap.DefaultKeyMap(),
		limit:       domain.DefaultAppSettings().Search.DefaultLimit,
		currentView: messages.ViewMenu,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.menuView = menu.NewView(a.styles, ports.UserEmail)
	a.searchView = search.NewView(a.styles, a.keymap, ports.Query, search.Config{
		UserEmail: ports.UserEmail,
		Algorithm: a.algorithm,
		Limit:     a.limit,
	})
	a.documentsView = documents.NewView(a.styles, a.keymap, ports.Ingest, ports.UserEmail)
	a.chunkView = chunk.NewView(a.styles)
	a.statsView = stats.NewView(a.styles, ports.Query, ports.UserEmail)
	return a, nil
}

// WithContext sets the context used by every view for service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	a.documentsView.WithContext(ctx)
	a.statsView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("orion - "+a.ports.UserEmail),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message router
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, a.routeKey(msg)

	case messages.ViewChanged:
		return a, a.switchView(msg.View)

	case messages.SearchCompleted:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = msg.Err
		return a, cmd

	case messages.ResultSelected:
		a.chunkView.SetResult(msg.Result)
		a.currentView = messages.ViewChunk
		return a, nil

	case messages.DocumentsLoaded, messages.DocumentDeleted:
		a.documentsView, cmd = a.documentsView.Update(msg)
		return a, cmd

	case messages.StatsLoaded:
		a.statsView, cmd = a.statsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		switch a.currentView {
		case messages.ViewSearch:
			a.searchView, cmd = a.searchView.Update(msg)
		case messages.ViewDocuments:
			a.documentsView, cmd = a.documentsView.Update(msg)
		case messages.ViewMenu, messages.ViewHelp, messages.ViewChunk, messages.ViewStats:
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	if a.currentView == messages.ViewSearch {
		a.searchView, cmd = a.searchView.Update(msg)
	}
	return a, cmd
}

func (a *App) routeKey(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewDocuments:
		a.documentsView, cmd = a.documentsView.Update(msg)
	case messages.ViewChunk:
		a.chunkView, cmd = a.chunkView.Update(msg)
	case messages.ViewStats:
		a.statsView, cmd = a.statsView.Update(msg)
	case messages.ViewHelp:
		if key.Matches(msg, a.keymap.Back) {
			a.currentView = messages.ViewMenu
		}
	}
	return cmd
}

// switchView activates view and starts any loading it needs. Returning to
// search from a chunk keeps the results; arriving from elsewhere starts fresh.
func (a *App) switchView(view messages.ViewType) tea.Cmd {
	previous := a.currentView
	a.currentView = view

	switch view {
	case messages.ViewSearch:
		if previous == messages.ViewChunk {
			return nil
		}
		a.searchView.Reset()
		return a.searchView.Init()
	case messages.ViewDocuments:
		return a.documentsView.Load()
	case messages.ViewStats:
		return a.statsView.Load()
	case messages.ViewMenu, messages.ViewHelp, messages.ViewChunk:
	}
	return nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewDocuments:
		return a.documentsView.View()
	case messages.ViewChunk:
		return a.chunkView.View()
	case messages.ViewStats:
		return a.statsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewMenu:
	}
	return a.menuView.View()
}

// viewHelp renders the keybinding reference from the keymap.
func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")

	sections := []string{"Navigation", "Search", "Documents", "General"}
	for i, group := range a.keymap.FullHelp() {
		b.WriteString(a.styles.Subtitle.Render(sections[i]))
		b.WriteString("\n")
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-10s %s\n", h.Key, h.Desc))
		}
		b.WriteString("\n")
	}

	b.WriteString(a.styles.Help.Render("[esc] back to menu"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Query returns the search view's query text.
func (a *App) Query() string {
	return a.searchView.Query()
}

// Results returns the search view's listed results.
func (a *App) Results() []domain.ChunkSearchResult {
	return a.searchView.Results()
}

// Algorithm returns the active search algorithm.
func (a *App) Algorithm() string {
	return a.searchView.Algorithm()
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	a.menuView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
	a.documentsView.SetDimensions(width, height)
	a.chunkView.SetDimensions(width, height)
	a.statsView.SetDimensions(width, height)
}
