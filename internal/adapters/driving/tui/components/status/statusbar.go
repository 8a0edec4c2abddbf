// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/nearby-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/nearby-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/nearby-cli/internal/core/domain"
)

// State represents the current application state for display.
type State string

const (
	StateReady     State = "ready"
	StateSearching State = "searching"
	StateError     State = "error"
	StateHelp      State = "help"
	StateResults   State = "results"
)

// Bar displays the search state, the active radius and keybinding hints.
type Bar struct {
	styles      *styles.Styles
	keymap      *keymap.KeyMap
	state       State
	message     string
	radiusMiles float64
	resultCount int
	partial     bool
	width       int
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

// Update handles status bar messages.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	radius := ""
	if s.radiusMiles > 0 {
		radius = s.styles.Muted.Render(fmt.Sprintf(" | radius %s mi", domain.FormatMiles(s.radiusMiles)))
	}

	switch s.state {
	case StateSearching:
		return s.styles.Muted.Render("Searching...") + radius
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render("Error: "+s.message) + radius
		}
		return s.styles.Error.Render("Error") + radius
	case StateHelp:
		return s.styles.Normal.Render("Help")
	case StateResults:
		text := s.styles.Normal.Render(fmt.Sprintf("%d location(s)", s.resultCount))
		if s.partial {
			text += s.styles.Warning.Render(" (partial)")
		}
		return text + radius
	case StateReady:
	}
	return s.styles.Muted.Render("Ready") + radius
}

func (s *Bar) renderRight() string {
	bindings := s.keymap.ShortHelp()
	if s.state == StateResults {
		bindings = s.keymap.ResultsHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
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

// SetRadius sets the radius shown next to the state.
func (s *Bar) SetRadius(miles float64) {
	s.radiusMiles = miles
}

// Radius returns the displayed radius.
func (s *Bar) Radius() float64 {
	return s.radiusMiles
}

// SetResult records the outcome of a completed run.
func (s *Bar) SetResult(result *domain.SearchResult) {
	s.state = StateResults
	s.message = ""
	s.resultCount = len(result.Locations)
	s.partial = result.Partial()
	s.radiusMiles = result.Request.RadiusMiles
}

// ResultCount returns the current result count.
func (s *Bar) ResultCount() int {
	return s.resultCount
}

// Partial reports whether the displayed result skipped keywords.
func (s *Bar) Partial() bool {
	return s.partial
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to default state. The radius is kept.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.resultCount = 0
	s.partial = false
}

// Bindings returns the hints currently shown, for tests and help.
func (s *Bar) Bindings() []key.Binding {
	if s.state == StateResults {
		return s.keymap.ResultsHelp()
	}
	return s.keymap.ShortHelp()
}
