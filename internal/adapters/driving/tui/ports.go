// Package tui provides an interactive radius explorer for nearby.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/nearby-cli/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the TUI.
type Ports struct {
	// Search runs proximity searches and supersedes stale ones.
	Search driving.ProximitySearch

	// Settings supplies the default origin, radius and keywords.
	// Optional: built-in defaults are used when nil.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(search driving.ProximitySearch, settings driving.SettingsService) *Ports {
	return &Ports{
		Search:   search,
		Settings: settings,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
