package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/nearby-cli/internal/core/domain"
)

const (
	uriScheme = "nearby://"

	// historyLimit caps the runs listed by the history resource.
	historyLimit = 50
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "history",
		Name:        "history",
		Description: "Recently recorded search runs, newest first",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "history/{runId}",
		Name:        "run",
		Description: "Metadata of a single recorded search run",
		MIMEType:    "application/json",
	}, s.handleRunResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "settings",
		Name:        "settings",
		Description: "Default origin, radius and keywords used when a search omits them",
		MIMEType:    "application/json",
	}, s.handleSettingsResource)
}

// runInfo is the JSON form of a recorded run.
type runInfo struct {
	ID             string   `json:"id"`
	Origin         string   `json:"origin"`
	RadiusMiles    float64  `json:"radius_miles"`
	Keywords       []string `json:"keywords"`
	Candidates     int      `json:"candidates"`
	Matches        int      `json:"matches"`
	DetailFailures int      `json:"detail_failures"`
	Status         string   `json:"status"`
	Error          string   `json:"error,omitempty"`
	StartedAt      string   `json:"started_at"`
	DurationMS     int64    `json:"duration_ms"`
}

func toRunInfo(r *domain.RunRecord) runInfo {
	return runInfo{
		ID:             r.ID,
		Origin:         r.Origin,
		RadiusMiles:    r.RadiusMiles,
		Keywords:       r.Keywords,
		Candidates:     r.Candidates,
		Matches:        r.Matches,
		DetailFailures: r.DetailFailures,
		Status:         string(r.Status),
		Error:          r.Error,
		StartedAt:      r.StartedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		DurationMS:     r.Duration.Milliseconds(),
	}
}

// handleHistoryResource returns recent runs.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return jsonResource(req.Params.URI, []runInfo{})
	}

	runs, err := s.ports.History.Recent(ctx, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	infos := make([]runInfo, len(runs))
	for i := range runs {
		infos[i] = toRunInfo(&runs[i])
	}
	return jsonResource(req.Params.URI, infos)
}

// handleRunResource returns a single run.
func (s *Server) handleRunResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// nearby://history/{runId}
	runID := extractRunID(req.Params.URI)
	if runID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	run, err := s.ports.History.Get(ctx, runID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting run: %w", err)
	}

	return jsonResource(req.Params.URI, toRunInfo(run))
}

// handleSettingsResource returns the search defaults. The API key is
// never exposed.
func (s *Server) handleSettingsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	search := domain.DefaultAppSettings().Search
	configured := false
	if s.ports.Settings != nil {
		settings, err := s.ports.Settings.Get()
		if err != nil {
			return nil, fmt.Errorf("loading settings: %w", err)
		}
		search = settings.Search
		configured = settings.Google.IsConfigured()
	}

	return jsonResource(req.Params.URI, struct {
		Origin        string   `json:"origin"`
		RadiusMiles   float64  `json:"radius_miles"`
		Keywords      []string `json:"keywords"`
		APIConfigured bool     `json:"api_key_configured"`
	}{search.Origin, search.RadiusMiles, search.Keywords, configured})
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractRunID extracts the run ID from a URI like nearby://history/{runId}.
func extractRunID(uri string) string {
	const prefix = uriScheme + "history/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
