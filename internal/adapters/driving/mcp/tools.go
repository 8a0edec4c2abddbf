package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/nearby-cli/internal/core/domain"
)

// SearchInput is the input schema for the nearby_search tool.
type SearchInput struct {
	Origin      string   `json:"origin,omitempty" jsonschema:"street address distances are measured from (defaults to the configured origin)"`
	RadiusMiles float64  `json:"radius_miles,omitempty" jsonschema:"inclusive search radius in miles (defaults to the configured radius)"`
	Keywords    []string `json:"keywords,omitempty" jsonschema:"place keywords such as apartment or community (defaults to the configured keywords)"`
}

// SearchOutput is the output schema for the nearby_search tool.
type SearchOutput struct {
	RunID           string           `json:"run_id"`
	Origin          string           `json:"origin"`
	Latitude        float64          `json:"lat"`
	Longitude       float64          `json:"lng"`
	RadiusMiles     float64          `json:"radius_miles"`
	Summary         string           `json:"summary"`
	Count           int              `json:"count"`
	CandidateCount  int              `json:"candidate_count"`
	FailedDetails   int              `json:"failed_details"`
	SkippedKeywords []string         `json:"skipped_keywords,omitempty"`
	Locations       []LocationOutput `json:"locations"`
}

// LocationOutput represents a single place within the radius.
type LocationOutput struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Address          string   `json:"address"`
	Latitude         float64  `json:"lat"`
	Longitude        float64  `json:"lng"`
	DistanceMiles    float64  `json:"distance_miles"`
	Rating           *float64 `json:"rating,omitempty"`
	UserRatingsTotal *int     `json:"user_ratings_total,omitempty"`
	Website          *string  `json:"website,omitempty"`
	Phone            *string  `json:"phone,omitempty"`
}

// DistanceInput is the input schema for the distance tool.
type DistanceInput struct {
	FromLat float64 `json:"from_lat" jsonschema:"latitude of the first point in degrees"`
	FromLng float64 `json:"from_lng" jsonschema:"longitude of the first point in degrees"`
	ToLat   float64 `json:"to_lat" jsonschema:"latitude of the second point in degrees"`
	ToLng   float64 `json:"to_lng" jsonschema:"longitude of the second point in degrees"`
}

// DistanceOutput is the output schema for the distance tool.
type DistanceOutput struct {
	Miles float64 `json:"miles"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "nearby_search",
		Description: "Find places near a street address within a radius in miles, nearest first",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "distance",
		Description: "Great-circle distance in miles between two coordinates",
	}, s.handleDistance)
}

// handleSearch handles the nearby_search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	req, err := s.buildRequest(input)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	result, err := s.ports.Search.Run(ctx, req)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		RunID:          result.RunID,
		Origin:         result.Request.OriginAddress,
		Latitude:       result.Origin.Latitude,
		Longitude:      result.Origin.Longitude,
		RadiusMiles:    result.Request.RadiusMiles,
		Summary:        result.Summary(),
		Count:          len(result.Locations),
		CandidateCount: result.CandidateCount,
		FailedDetails:  len(result.Failures),
		Locations:      make([]LocationOutput, len(result.Locations)),
	}
	for _, ke := range result.KeywordErrors {
		output.SkippedKeywords = append(output.SkippedKeywords, ke.Keyword)
	}

	for i := range result.Locations {
		loc := &result.Locations[i]
		output.Locations[i] = LocationOutput{
			PlaceID:          loc.PlaceID,
			Name:             loc.Name,
			Address:          loc.FormattedAddress,
			Latitude:         loc.Coordinate.Latitude,
			Longitude:        loc.Coordinate.Longitude,
			DistanceMiles:    loc.DisplayDistance(),
			Rating:           loc.Rating,
			UserRatingsTotal: loc.RatingCount,
			Website:          loc.Website,
			Phone:            loc.Phone,
		}
	}

	return nil, output, nil
}

// buildRequest fills unset input fields from the configured defaults.
func (s *Server) buildRequest(input SearchInput) (domain.SearchRequest, error) {
	req := domain.DefaultAppSettings().Search.Request()
	if s.ports.Settings != nil {
		settings, err := s.ports.Settings.Get()
		if err != nil {
			return domain.SearchRequest{}, fmt.Errorf("loading settings: %w", err)
		}
		req = settings.Search.Request()
	}

	if input.Origin != "" {
		req.OriginAddress = input.Origin
	}
	if input.RadiusMiles != 0 {
		req.RadiusMiles = input.RadiusMiles
	}
	if len(input.Keywords) > 0 {
		req.Keywords = input.Keywords
	}
	return req, nil
}

// handleDistance handles the distance tool invocation.
func (s *Server) handleDistance(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input DistanceInput,
) (*mcp.CallToolResult, DistanceOutput, error) {
	from, err := domain.NewCoordinate(input.FromLat, input.FromLng)
	if err != nil {
		return nil, DistanceOutput{}, err
	}
	to, err := domain.NewCoordinate(input.ToLat, input.ToLng)
	if err != nil {
		return nil, DistanceOutput{}, err
	}

	return nil, DistanceOutput{Miles: domain.RoundMiles(domain.DistanceMiles(from, to))}, nil
}
