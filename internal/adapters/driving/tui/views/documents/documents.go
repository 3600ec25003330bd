// Package documents provides the library documents view for the TUI.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/orion/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/orion/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/orion/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driving"
)

// ErrNoIngestService is reported when the view was built without an ingest service.
var ErrNoIngestService = errors.New("document management is not available")

// View lists the documents in one user's library.
type View struct {
	styles        *styles.Styles
	keymap        *keymap.KeyMap
	ingestService driving.IngestService
	userEmail     string
	ctx           context.Context

	documents    []domain.DocumentSummary
	selected     int
	scrollOffset int
	confirming   bool
	loading      bool
	notice       string
	err          error

	width  int
	height int
	ready  bool
}

// NewView creates a new documents view.
func NewView(s *styles.Styles, km *keymap.KeyMap, ingestService driving.IngestService, userEmail string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:        s,
		keymap:        km,
		ingestService: ingestService,
		userEmail:     userEmail,
		ctx:           context.Background(),
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

// Load resets the view and returns a command that fetches the document list.
func (v *View) Load() tea.Cmd {
	v.selected = 0
	v.scrollOffset = 0
	v.confirming = false
	v.notice = ""
	v.err = nil
	v.loading = true
	return v.loadDocuments()
}

func (v *View) loadDocuments() tea.Cmd {
	ctx, svc, email := v.ctx, v.ingestService, v.userEmail
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentsLoaded{Err: ErrNoIngestService}
		}
		docs, err := svc.List(ctx, email)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

func (v *View) deleteDocument(id domain.DocumentID) tea.Cmd {
	ctx, svc, email := v.ctx, v.ingestService, v.userEmail
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentDeleted{DocumentID: id, Err: ErrNoIngestService}
		}
		return messages.DocumentDeleted{DocumentID: id, Err: svc.Delete(ctx, email, id)}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.confirming {
			return v.handleConfirmKey(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.DocumentsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.documents = msg.Documents
			if v.selected >= len(v.documents) {
				v.selected = max(len(v.documents)-1, 0)
			}
		}
		return v, nil

	case messages.DocumentDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.notice = "Deleted " + msg.DocumentID.String()
		v.loading = true
		return v, v.loadDocuments()

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case key.Matches(msg, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case key.Matches(msg, v.keymap.Down):
		if v.selected < len(v.documents)-1 {
			v.selected++
			v.adjustScroll()
		}
	case key.Matches(msg, v.keymap.Reload):
		v.loading = true
		v.notice = ""
		return v, v.loadDocuments()
	case key.Matches(msg, v.keymap.Delete):
		if len(v.documents) > 0 {
			v.confirming = true
		}
	}
	return v, nil
}

func (v *View) handleConfirmKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	v.confirming = false
	if msg.String() != "y" && msg.String() != "Y" {
		return v, nil
	}
	doc := v.SelectedDocument()
	if doc == nil {
		return v, nil
	}
	return v, v.deleteDocument(doc.ID)
}

func (v *View) adjustScroll() {
	visible := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visible {
		v.scrollOffset = v.selected - visible + 1
	}
}

func (v *View) visibleItemCount() int {
	return max(v.height-8, 1)
}

// View renders the documents view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Documents - %s (%d)", v.userEmail, len(v.documents))))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.documents) == 0:
		b.WriteString(v.styles.Muted.Render("No documents in this library."))
	default:
		v.renderList(&b)
	}

	b.WriteString("\n\n")
	switch {
	case v.confirming:
		if doc := v.SelectedDocument(); doc != nil {
			b.WriteString(v.styles.Warning.Render(
				fmt.Sprintf("Delete %s and its chunks? [y/N]", doc.OriginalFilename)))
		}
	case v.notice != "":
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n")
		b.WriteString(v.renderHelp())
	default:
		b.WriteString(v.renderHelp())
	}
	return b.String()
}

func (v *View) renderList(b *strings.Builder) {
	visible := v.visibleItemCount()
	end := min(v.scrollOffset+visible, len(v.documents))
	for i := v.scrollOffset; i < end; i++ {
		b.WriteString(v.renderDocument(i, &v.documents[i]))
		b.WriteString("\n")
	}
	if len(v.documents) > visible {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("\n  [%d-%d of %d]", v.scrollOffset+1, end, len(v.documents))))
	}
}

func (v *View) renderDocument(index int, doc *domain.DocumentSummary) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	name := doc.OriginalFilename
	if name == "" {
		name = doc.ID.String()
	}
	nameWidth := max(v.width/2-4, 10)
	if len(name) > nameWidth {
		name = name[:nameWidth-3] + "..."
	}
	detail := fmt.Sprintf("%d chunks  %s", doc.ChunkCount, doc.ContentType)

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, nameWidth, name, detail))
	}
	return v.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, nameWidth, name)) +
		v.styles.Muted.Render(detail)
}

func (v *View) renderHelp() string {
	hints := make([]string, 0, 4)
	for _, binding := range v.keymap.DocumentsHelp() {
		h := binding.Help()
		hints = append(hints, fmt.Sprintf("[%s] %s", h.Key, h.Desc))
	}
	return v.styles.Help.Render(strings.Join(hints, "  "))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Documents returns the listed documents.
func (v *View) Documents() []domain.DocumentSummary {
	return v.documents
}

// SelectedIndex returns the currently selected document index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedDocument returns the currently selected document.
func (v *View) SelectedDocument() *domain.DocumentSummary {
	if v.selected < len(v.documents) {
		return &v.documents[v.selected]
	}
	return nil
}

// IsConfirming reports whether a delete confirmation is pending.
func (v *View) IsConfirming() bool {
	return v.confirming
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
