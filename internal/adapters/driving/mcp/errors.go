// Package mcp provides an MCP (Model Context Protocol) server adapter for nearby.
// It lets AI assistants run proximity searches and read recorded run history.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search runner is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
