// Package explorer provides the radius explorer view: an origin and radius
// form above the locations found within that radius.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/nearby-cli/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/nearby-cli/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/nearby-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/nearby-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/nearby-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/nearby-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/nearby-cli/internal/core/domain"
	"github.com/custodia-labs/nearby-cli/internal/core/ports/driving"
	"github.com/custodia-labs/nearby-cli/internal/logger"
)

// Radius stepping from the results list.
const (
	RadiusStep     = 1.0
	MinRadiusMiles = 0.5
)

// headerLines is the height taken by everything above the location list.
const headerLines = 12

// Focus identifies which part of the view receives key presses.
type Focus int

const (
	FocusOrigin Focus = iota
	FocusRadius
	FocusResults
)

// View is the radius explorer.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	origin    *input.Field
	radius    *input.Field
	list      *list.LocationList
	statusbar *status.Bar

	search   driving.ProximitySearch
	keywords []string
	ctx      context.Context

	result    *domain.SearchResult
	shown     uint64
	issued    uint64
	started   bool
	searching bool

	width  int
	height int
	ready  bool
	err    error
	focus  Focus
}

// NewView creates an explorer prefilled from defaults.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	search driving.ProximitySearch,
	defaults domain.SearchSettings,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	origin := input.NewOriginField(s)
	origin.SetValue(defaults.Origin)
	radius := input.NewRadiusField(s)
	if defaults.RadiusMiles > 0 {
		radius.SetValue(domain.FormatMiles(defaults.RadiusMiles))
	}

	keywords := defaults.Keywords
	if len(keywords) == 0 {
		keywords = domain.DefaultKeywords()
	}

	bar := status.NewBar(s, km)
	bar.SetRadius(defaults.RadiusMiles)

	return &View{
		styles:    s,
		keymap:    km,
		origin:    origin,
		radius:    radius,
		list:      list.NewLocationList(s),
		statusbar: bar,
		search:    search,
		keywords:  append([]string(nil), keywords...),
		ctx:       context.Background(),
		width:     80,
		height:    24,
		focus:     FocusResults,
	}
}

// WithContext sets the context searches run under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init runs the first search with the prefilled origin and radius.
func (v *View) Init() tea.Cmd {
	if v.origin.Value() == "" {
		v.setFocus(FocusOrigin)
		return v.origin.Init()
	}
	return v.submit()
}

// Update handles messages for the explorer.
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
		v.setError(msg.Err)
		return v, nil
	}

	// Cursor blink and similar messages go to the focused field.
	return v.updateFocusedField(msg)
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	if v.Typing() {
		switch {
		case keymap.Matches(keyStr, v.keymap.Search):
			return v, v.submit()
		case keymap.Matches(keyStr, v.keymap.Back):
			v.setFocus(FocusResults)
			return v, nil
		case keymap.Matches(keyStr, v.keymap.NextField):
			return v, v.setFocus((v.focus + 1) % 3)
		}
		return v.updateFocusedField(msg)
	}

	switch {
	case keymap.Matches(keyStr, v.keymap.NextField), keymap.Matches(keyStr, v.keymap.EditOrigin):
		return v, v.setFocus(FocusOrigin)
	case keymap.Matches(keyStr, v.keymap.EditRadius):
		return v, v.setFocus(FocusRadius)
	case keymap.Matches(keyStr, v.keymap.RadiusUp):
		return v, v.stepRadius(RadiusStep)
	case keymap.Matches(keyStr, v.keymap.RadiusDown):
		return v, v.stepRadius(-RadiusStep)
	case keymap.Matches(keyStr, v.keymap.Rerun), keymap.Matches(keyStr, v.keymap.Search):
		return v, v.submit()
	}

	v.list, _ = v.list.Update(msg)
	return v, nil
}

func (v *View) updateFocusedField(msg tea.Msg) (*View, tea.Cmd) {
	var cmd tea.Cmd
	switch v.focus {
	case FocusOrigin:
		v.origin, cmd = v.origin.Update(msg)
	case FocusRadius:
		v.radius, cmd = v.radius.Update(msg)
	case FocusResults:
	}
	return v, cmd
}

func (v *View) setFocus(f Focus) tea.Cmd {
	v.focus = f
	v.origin.Blur()
	v.radius.Blur()
	switch f {
	case FocusOrigin:
		return v.origin.Focus()
	case FocusRadius:
		return v.radius.Focus()
	case FocusResults:
	}
	return nil
}

// submit validates the form and runs a full search.
func (v *View) submit() tea.Cmd {
	if v.search == nil {
		v.setError(ErrNoSearchService)
		return nil
	}

	origin := v.origin.Value()
	if origin == "" {
		v.setError(fmt.Errorf("%w: origin address is required", domain.ErrInvalidInput))
		return v.setFocus(FocusOrigin)
	}
	radius, err := v.RadiusMiles()
	if err != nil {
		v.setError(err)
		return v.setFocus(FocusRadius)
	}

	req := domain.SearchRequest{
		OriginAddress: origin,
		RadiusMiles:   radius,
		Keywords:      append([]string(nil), v.keywords...),
	}
	v.setFocus(FocusResults)
	v.beginSearch(radius)

	search, ctx, seq := v.search, v.ctx, v.issued
	return func() tea.Msg {
		result, err := search.Run(ctx, req)
		return completed(seq, result, err)
	}
}

// stepRadius widens or narrows the radius and reruns the last request.
func (v *View) stepRadius(delta float64) tea.Cmd {
	if v.search == nil {
		v.setError(ErrNoSearchService)
		return nil
	}

	current, err := v.RadiusMiles()
	if err != nil {
		current = v.statusbar.Radius()
	}
	next := current + delta
	if next < MinRadiusMiles {
		next = MinRadiusMiles
	}
	if next == current && err == nil {
		return nil
	}
	v.radius.SetValue(domain.FormatMiles(next))

	if !v.started {
		return v.submit()
	}

	v.beginSearch(next)
	search, ctx, seq := v.search, v.ctx, v.issued
	return func() tea.Msg {
		result, err := search.SetRadius(ctx, next)
		return completed(seq, result, err)
	}
}

func (v *View) beginSearch(radius float64) {
	v.issued++
	v.started = true
	v.searching = true
	v.err = nil
	v.statusbar.SetRadius(radius)
	v.statusbar.SetState(status.StateSearching)
}

func completed(seq uint64, result *domain.SearchResult, err error) messages.SearchCompleted {
	if err != nil {
		return messages.SearchCompleted{Err: err, Seq: seq}
	}
	return messages.SearchCompleted{Result: result, Generation: result.Generation, Seq: seq}
}

// handleSearchCompleted commits msg unless a newer run has started since.
func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if errors.Is(msg.Err, domain.ErrSuperseded) || errors.Is(msg.Err, context.Canceled) {
		logger.Debug("Ignoring superseded search: %v", msg.Err)
		return
	}
	latest := msg.Seq == 0 || msg.Seq >= v.issued
	if msg.Err != nil {
		if !latest {
			logger.Debug("Ignoring error from earlier search %d: %v", msg.Seq, msg.Err)
			return
		}
		v.searching = false
		v.setError(msg.Err)
		return
	}
	if msg.Result == nil {
		return
	}
	if msg.Generation < v.shown || (v.search != nil && msg.Generation < v.search.Generation()) {
		logger.Debug("Discarding stale result from generation %d", msg.Generation)
		return
	}

	v.shown = msg.Generation
	v.result = msg.Result
	v.searching = !latest
	v.err = nil
	v.list.SetLocations(msg.Result.Locations)
	pending := v.statusbar.Radius()
	v.statusbar.SetResult(msg.Result)
	if !latest {
		v.statusbar.SetRadius(pending)
		v.statusbar.SetState(status.StateSearching)
		return
	}
	v.radius.SetValue(domain.FormatMiles(msg.Result.Request.RadiusMiles))
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the explorer.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections,
		v.styles.Title.Render("Nearby"),
		"",
		v.origin.View(),
		v.radius.View(),
		v.styles.Muted.Render("Keywords: "+strings.Join(v.keywords, ", ")),
		"",
	)

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.result != nil {
		sections = append(sections, v.renderSummary()...)
		sections = append(sections, "", v.list.View())
	} else if v.searching {
		sections = append(sections, v.styles.Muted.Render("Searching..."))
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderSummary() []string {
	r := v.result
	lines := []string{
		v.styles.Subtitle.Render(r.Summary()) +
			v.styles.Muted.Render(fmt.Sprintf("  origin %s", r.Origin)),
	}
	if r.Partial() {
		skipped := make([]string, 0, len(r.KeywordErrors))
		for _, ke := range r.KeywordErrors {
			skipped = append(skipped, ke.Keyword)
		}
		lines = append(lines, v.styles.Warning.Render("Skipped keyword(s): "+strings.Join(skipped, ", ")))
	}
	if len(r.Failures) > 0 {
		lines = append(lines, v.styles.Warning.Render(
			fmt.Sprintf("Details unavailable for %d place(s)", len(r.Failures))))
	}
	return lines
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.origin.SetWidth(width)
	listHeight := height - headerLines
	if listHeight < 3 {
		listHeight = 3
	}
	v.list.SetDimensions(width, listHeight)
	v.statusbar.SetWidth(width)
}

// RadiusMiles parses the radius field.
func (v *View) RadiusMiles() (float64, error) {
	miles, err := strconv.ParseFloat(v.radius.Value(), 64)
	if err != nil || !domain.ValidRadius(miles) {
		return 0, ErrInvalidRadius
	}
	return miles, nil
}

// Origin returns the origin field value.
func (v *View) Origin() string {
	return v.origin.Value()
}

// Result returns the displayed result, or nil.
func (v *View) Result() *domain.SearchResult {
	return v.result
}

// Locations returns the displayed locations.
func (v *View) Locations() []domain.EnrichedLocation {
	return v.list.Locations()
}

// SelectedIndex returns the cursor position in the location list.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Focus returns which part of the view has focus.
func (v *View) Focus() Focus {
	return v.focus
}

// Typing reports whether key presses go to a text field.
func (v *View) Typing() bool {
	return v.focus != FocusResults
}

// Searching reports whether a run is in flight.
func (v *View) Searching() bool {
	return v.searching
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// StatusState returns the status bar state.
func (v *View) StatusState() status.State {
	return v.statusbar.State()
}
