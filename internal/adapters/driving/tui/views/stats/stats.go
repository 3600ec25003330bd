// Package stats provides the library statistics view for the TUI.
package stats

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/orion/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/orion/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driving"
)

// View shows the statistics of the user's library.
type View struct {
	styles       *styles.Styles
	queryService driving.QueryService
	userEmail    string
	ctx          context.Context

	stats   *domain.LibraryStats
	loading bool
	err     error
	width   int
	height  int
}

// NewView creates a new stats view.
func NewView(s *styles.Styles, queryService driving.QueryService, userEmail string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:       s,
		queryService: queryService,
		userEmail:    userEmail,
		ctx:          context.Background(),
		width:        80,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Load returns a command that fetches fresh statistics.
func (v *View) Load() tea.Cmd {
	v.loading = true
	v.err = nil
	ctx, svc, email := v.ctx, v.queryService, v.userEmail
	return func() tea.Msg {
		st, err := svc.LibraryStats(ctx, email)
		return messages.StatsLoaded{Stats: st, Err: err}
	}
}

// Update handles messages for the stats view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case messages.StatsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			st := msg.Stats
			v.stats = &st
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return v, v.Load()
		case "esc":
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		}
	}
	return v, nil
}

// View renders the stats view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Library Statistics"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(v.width-4, 60)))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading statistics..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.stats == nil:
		b.WriteString(v.styles.Muted.Render("No statistics loaded"))
	case !v.stats.Exists:
		b.WriteString(v.field("User", v.stats.UserEmail))
		b.WriteString(v.styles.Warning.Render("No library exists for this user yet."))
	default:
		st := v.stats
		b.WriteString(v.field("User", st.UserEmail))
		b.WriteString(v.field("Documents", fmt.Sprintf("%d", st.DocumentCount)))
		b.WriteString(v.field("Chunks", fmt.Sprintf("%d", st.ChunkCount)))
		b.WriteString(v.field("Embedded", fmt.Sprintf("%d", st.ChunksWithEmbeddings)))
		b.WriteString(v.field("Storage", humanBytes(st.TotalFileSize)))
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[r] refresh  [esc] back"))
	return b.String()
}

func (v *View) field(label, value string) string {
	return v.styles.Subtitle.Render(fmt.Sprintf("%-12s", label+":")) + " " + v.styles.Normal.Render(value) + "\n"
}

// humanBytes formats n using binary units.
func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Stats returns the last loaded statistics.
func (v *View) Stats() *domain.LibraryStats {
	return v.stats
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
