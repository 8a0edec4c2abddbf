// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/nearby-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/nearby-cli/internal/core/domain"
)

// linesPerLocation is the rendered height of one unselected entry.
const linesPerLocation = 2

// LocationList displays enriched locations nearest first. The selected
// entry expands to show rating, phone and website.
type LocationList struct {
	locations []domain.EnrichedLocation
	selected  int
	styles    *styles.Styles
	width     int
	height    int
}

// NewLocationList creates a new location list component.
func NewLocationList(s *styles.Styles) *LocationList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &LocationList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (l *LocationList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *LocationList) Update(msg tea.Msg) (*LocationList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the visible window of the list.
func (l *LocationList) View() string {
	if len(l.locations) == 0 {
		return l.styles.Muted.Render("No locations")
	}

	// The selected entry takes one extra line for its details.
	visible := (l.height - 1) / linesPerLocation
	if visible < 1 {
		visible = 1
	}

	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := start + visible
	if end > len(l.locations) {
		end = len(l.locations)
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, l.renderLocation(i, &l.locations[i]))
	}
	return strings.Join(lines, "\n")
}

func (l *LocationList) renderLocation(index int, loc *domain.EnrichedLocation) string {
	name := loc.Name
	if name == "" {
		name = "(Unnamed)"
	}
	distance := fmt.Sprintf("(%.2f mi)", loc.DisplayDistance())

	maxNameLen := l.width - len(distance) - 8
	if maxNameLen < 10 {
		maxNameLen = 10
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen-3] + "..."
	}

	var title string
	if index == l.selected {
		title = l.styles.Selected.Render(fmt.Sprintf("> %d. %s ", index+1, name)) + " " +
			l.styles.Distance.Render(distance)
	} else {
		title = l.styles.Normal.Render(fmt.Sprintf("  %d. %s ", index+1, name)) + " " +
			l.styles.Muted.Render(distance)
	}

	lines := []string{title, l.styles.Muted.Render("     " + loc.FormattedAddress)}
	if index == l.selected {
		if extras := Extras(*loc); extras != "" {
			lines = append(lines, l.styles.Normal.Render("     "+extras))
		}
	}
	return strings.Join(lines, "\n")
}

// Extras joins the optional rating, phone and website of a location.
func Extras(loc domain.EnrichedLocation) string {
	parts := make([]string, 0, 3)
	if loc.Rating != nil {
		rating := fmt.Sprintf("Rating %.1f", *loc.Rating)
		if loc.RatingCount != nil {
			rating += fmt.Sprintf(" (%d reviews)", *loc.RatingCount)
		}
		parts = append(parts, rating)
	}
	if phone := loc.PhoneValue(); phone != "" {
		parts = append(parts, phone)
	}
	if site := loc.WebsiteValue(); site != "" {
		parts = append(parts, site)
	}
	return strings.Join(parts, " | ")
}

// SetLocations replaces the list contents and keeps the cursor on the
// same place when it is still present.
func (l *LocationList) SetLocations(locations []domain.EnrichedLocation) {
	current := ""
	if sel := l.SelectedLocation(); sel != nil {
		current = sel.PlaceID
	}

	l.locations = locations
	l.selected = 0
	for i := range locations {
		if current != "" && locations[i].PlaceID == current {
			l.selected = i
			break
		}
	}
}

// Locations returns the current locations.
func (l *LocationList) Locations() []domain.EnrichedLocation {
	return l.locations
}

// Selected returns the index of the selected location.
func (l *LocationList) Selected() int {
	return l.selected
}

// SetSelected sets the selected index.
func (l *LocationList) SetSelected(index int) {
	if index >= 0 && index < len(l.locations) {
		l.selected = index
	}
}

// SelectedLocation returns the selected location, or nil if the list is empty.
func (l *LocationList) SelectedLocation() *domain.EnrichedLocation {
	if l.selected < 0 || l.selected >= len(l.locations) {
		return nil
	}
	return &l.locations[l.selected]
}

// MoveUp moves selection up.
func (l *LocationList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *LocationList) MoveDown() {
	if l.selected < len(l.locations)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *LocationList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of locations.
func (l *LocationList) Count() int {
	return len(l.locations)
}

// IsEmpty returns whether the list is empty.
func (l *LocationList) IsEmpty() bool {
	return len(l.locations) == 0
}
