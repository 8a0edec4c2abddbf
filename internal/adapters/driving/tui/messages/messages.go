// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/nearby-cli/internal/core/domain"
)

// SearchRequested is a command to run a search for Request.
type SearchRequested struct {
	Request domain.SearchRequest
}

// RadiusChanged is sent when the radius is stepped from the results list.
type RadiusChanged struct {
	RadiusMiles float64
}

// SearchCompleted carries the outcome of one search run back to the model.
// Generation is the session generation that produced Result; it is zero
// when the run failed.
type SearchCompleted struct {
	Result     *domain.SearchResult
	Generation uint64
	Err        error

	// Seq is the sender's request counter when the search was issued.
	// Zero means unknown.
	Seq uint64
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewExplorer is the origin, radius and results view.
	ViewExplorer ViewType = iota
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewExplorer:
		return "explorer"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
