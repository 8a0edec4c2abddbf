// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help toggles the help view.
	Help key.Binding

	// Back leaves an input field or the help view.
	Back key.Binding

	// Search runs a search with the current origin and radius.
	Search key.Binding

	// NextField cycles focus between origin, radius and results.
	NextField key.Binding

	// Up navigates up in a list.
	Up key.Binding

	// Down navigates down in a list.
	Down key.Binding

	// RadiusUp widens the radius by one step and reruns.
	RadiusUp key.Binding

	// RadiusDown narrows the radius by one step and reruns.
	RadiusDown key.Binding

	// EditOrigin focuses the origin field.
	EditOrigin key.Binding

	// EditRadius focuses the radius field.
	EditRadius key.Binding

	// Rerun repeats the last search.
	Rerun key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Search: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "search"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		RadiusUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "wider"),
		),
		RadiusDown: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "narrower"),
		),
		EditOrigin: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "origin"),
		),
		EditRadius: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "radius"),
		),
		Rerun: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "rerun"),
		),
	}
}

// ShortHelp returns a short list of keybindings for the status bar.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.NextField, k.Quit}
}

// ResultsHelp returns keybindings shown while browsing results.
func (k *KeyMap) ResultsHelp() []key.Binding {
	return []key.Binding{k.RadiusUp, k.RadiusDown, k.EditOrigin, k.Help}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.RadiusUp, k.RadiusDown},
		{k.Search, k.NextField, k.EditOrigin, k.EditRadius, k.Rerun},
		{k.Back, k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
