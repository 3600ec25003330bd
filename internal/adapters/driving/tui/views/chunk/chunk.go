// Package chunk provides the full-text view of a matched chunk.
package chunk

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/orion/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/orion/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/orion/internal/core/domain"
)

// View shows one search result's chunk text with scrolling.
type View struct {
	styles *styles.Styles

	result       *domain.ChunkSearchResult
	lines        []string
	scrollOffset int
	width        int
	height       int
	ready        bool
}

// NewView creates a new chunk view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{styles: s, width: 80, height: 24}
}

// SetResult displays result from the top.
func (v *View) SetResult(result domain.ChunkSearchResult) {
	v.result = &result
	v.scrollOffset = 0
	v.wrap()
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the chunk view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		v.scrollOffset = max(v.scrollOffset-1, 0)
	case "down", "j":
		v.scrollOffset = min(v.scrollOffset+1, v.maxScrollOffset())
	case "pgup", "ctrl+u":
		v.scrollOffset = max(v.scrollOffset-v.visibleLines(), 0)
	case "pgdown", "ctrl+d":
		v.scrollOffset = min(v.scrollOffset+v.visibleLines(), v.maxScrollOffset())
	case "home", "g":
		v.scrollOffset = 0
	case "end", "G":
		v.scrollOffset = v.maxScrollOffset()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewSearch}
		}
	}
	return v, nil
}

// wrap splits the chunk text into display lines on word boundaries.
func (v *View) wrap() {
	v.lines = nil
	if v.result == nil {
		return
	}
	width := max(v.width-4, 20)

	for _, paragraph := range strings.Split(v.result.Chunk.Text(), "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			v.lines = append(v.lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if len(line)+1+len(w) > width {
				v.lines = append(v.lines, line)
				line = w
				continue
			}
			line += " " + w
		}
		v.lines = append(v.lines, line)
	}
}

func (v *View) visibleLines() int {
	return max(v.height-8, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.lines)-v.visibleLines(), 0)
}

// View renders the chunk view.
func (v *View) View() string {
	var b strings.Builder

	if v.result == nil {
		b.WriteString(v.styles.Title.Render("Chunk"))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Muted.Render("No result selected"))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	c := v.result.Chunk
	b.WriteString(v.styles.Title.Render(fmt.Sprintf("#%d  %s", v.result.Rank, c.Filename())))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("document %s  score %.4f  %d tokens",
		c.DocumentID(), v.result.Score, c.TokenCount())))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(v.width-4, 60)))
	b.WriteString("\n\n")

	visible := v.visibleLines()
	end := min(v.scrollOffset+visible, len(v.lines))
	for i := v.scrollOffset; i < end; i++ {
		b.WriteString(v.styles.Normal.Render(v.lines[i]))
		b.WriteString("\n")
	}

	if len(v.lines) > visible {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  Line %d-%d of %d", v.scrollOffset+1, end, len(v.lines))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [esc] back to results")
}

// SetDimensions sets the view dimensions and rewraps the text.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.wrap()
}

// Result returns the displayed result.
func (v *View) Result() *domain.ChunkSearchResult {
	return v.result
}

// Lines returns the wrapped display lines.
func (v *View) Lines() []string {
	return v.lines
}

// ScrollOffset returns the first visible line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}
