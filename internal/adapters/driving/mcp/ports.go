package mcp

import (
	"github.com/custodia-labs/nearby-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Search runs the proximity-search pipeline.
	Search driving.SearchRunner

	// Settings supplies the default origin, radius and keywords.
	Settings driving.SettingsService

	// History exposes recorded runs as resources.
	History driving.HistoryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	// Settings and History are optional
	return nil
}
