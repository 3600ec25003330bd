// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/orion/internal/core/domain"
)

// QueryChanged is sent when the search query input changes.
type QueryChanged struct {
	Query string
}

// SearchRequested is a command to perform a search.
type SearchRequested struct {
	Query     string
	Algorithm string
	Limit     int
}

// SearchCompleted carries search results back to the model.
type SearchCompleted struct {
	Results *domain.SearchResults
	Err     error
}

// ResultSelected is sent when a search result is opened.
type ResultSelected struct {
	Result domain.ChunkSearchResult
}

// AlgorithmChanged is sent when the active ranking algorithm is switched.
type AlgorithmChanged struct {
	Algorithm string
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewSearch is the search input and results view.
	ViewSearch
	// ViewHelp is the help/keybindings view.
	ViewHelp
	// ViewDocuments lists the documents in the user's library.
	ViewDocuments
	// ViewChunk shows the full text of one matched chunk.
	ViewChunk
	// ViewStats shows library statistics.
	ViewStats
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewSearch:
		return "search"
	case ViewHelp:
		return "help"
	case ViewDocuments:
		return "documents"
	case ViewChunk:
		return "chunk"
	case ViewStats:
		return "stats"
	default:
		return "unknown"
	}
}

// ErrorOccurred is sent when an error occurs.
type ErrorOccurred struct {
	Err error
}

// Quit is sent to exit the application.
type Quit struct{}

// DocumentsLoaded carries the library's document list.
type DocumentsLoaded struct {
	Documents []domain.DocumentSummary
	Err       error
}

// DocumentDeleted is sent after a document removal attempt.
type DocumentDeleted struct {
	DocumentID domain.DocumentID
	Err        error
}

// StatsLoaded carries library statistics.
type StatsLoaded struct {
	Stats domain.LibraryStats
	Err   error
}
