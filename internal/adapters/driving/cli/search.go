package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nearby-cli/internal/core/domain"
)

var (
	searchOrigin   string
	searchRadius   float64
	searchKeywords []string
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search for places within a radius of an address",
	Long: `Resolves the origin, runs a nearby search for every keyword, looks up
details for each unique place and prints those within the radius, nearest
first. Unset flags fall back to the configured defaults.`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchOrigin, "origin", "o", "", "origin street address")
	searchCmd.Flags().Float64VarP(&searchRadius, "radius", "r", 0, "search radius in miles")
	searchCmd.Flags().StringSliceVarP(&searchKeywords, "keyword", "k", nil, "keyword to search (repeatable)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, _ []string) error {
	req, err := buildRequest(cmd)
	if err != nil {
		return err
	}

	session, err := newSearch()
	if err != nil {
		return err
	}

	result, err := session.Run(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, result)
	}
	outputSearchTable(cmd, result)
	return nil
}

// buildRequest starts from the configured defaults and applies flags.
func buildRequest(cmd *cobra.Command) (domain.SearchRequest, error) {
	req, err := defaultRequest()
	if err != nil {
		return domain.SearchRequest{}, err
	}

	if cmd.Flags().Changed("origin") {
		req.OriginAddress = searchOrigin
	}
	if cmd.Flags().Changed("radius") {
		req.RadiusMiles = searchRadius
	}
	if cmd.Flags().Changed("keyword") {
		req.Keywords = searchKeywords
	}
	return req, nil
}

func defaultRequest() (domain.SearchRequest, error) {
	if settingsService == nil {
		return domain.DefaultAppSettings().Search.Request(), nil
	}
	settings, err := settingsService.Get()
	if err != nil {
		return domain.SearchRequest{}, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings.Search.Request(), nil
}

// locationJSON is the JSON form of one enriched location.
type locationJSON struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Address          string   `json:"address"`
	Lat              float64  `json:"lat"`
	Lng              float64  `json:"lng"`
	DistanceMiles    float64  `json:"distance_miles"`
	Rating           *float64 `json:"rating,omitempty"`
	UserRatingsTotal *int     `json:"user_ratings_total,omitempty"`
	Website          *string  `json:"website,omitempty"`
	Phone            *string  `json:"phone,omitempty"`
}

type resultJSON struct {
	RunID           string         `json:"run_id"`
	Origin          string         `json:"origin"`
	RadiusMiles     float64        `json:"radius_miles"`
	Keywords        []string       `json:"keywords"`
	CandidateCount  int            `json:"candidate_count"`
	FailedDetails   []string       `json:"failed_details,omitempty"`
	SkippedKeywords []string       `json:"skipped_keywords,omitempty"`
	Locations       []locationJSON `json:"locations"`
}

func outputSearchJSON(cmd *cobra.Command, result *domain.SearchResult) error {
	out := resultJSON{
		RunID:          result.RunID,
		Origin:         result.Request.OriginAddress,
		RadiusMiles:    result.Request.RadiusMiles,
		Keywords:       result.Request.Keywords,
		CandidateCount: result.CandidateCount,
		Locations:      make([]locationJSON, len(result.Locations)),
	}
	for _, f := range result.Failures {
		out.FailedDetails = append(out.FailedDetails, f.PlaceID)
	}
	for _, ke := range result.KeywordErrors {
		out.SkippedKeywords = append(out.SkippedKeywords, ke.Keyword)
	}
	for i := range result.Locations {
		loc := &result.Locations[i]
		out.Locations[i] = locationJSON{
			PlaceID:          loc.PlaceID,
			Name:             loc.Name,
			Address:          loc.FormattedAddress,
			Lat:              loc.Coordinate.Latitude,
			Lng:              loc.Coordinate.Longitude,
			DistanceMiles:    loc.DisplayDistance(),
			Rating:           loc.Rating,
			UserRatingsTotal: loc.RatingCount,
			Website:          loc.Website,
			Phone:            loc.Phone,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, result *domain.SearchResult) {
	cmd.Println(result.Summary())
	if result.Empty() {
		printRunNotes(cmd, result)
		return
	}
	cmd.Println()

	for i := range result.Locations {
		loc := &result.Locations[i]
		// Format: [N] Name (0.47 mi)
		cmd.Printf("  [%d] %s (%.2f mi)\n", i+1, loc.Name, loc.DisplayDistance())
		if loc.FormattedAddress != "" {
			cmd.Printf("      %s\n", loc.FormattedAddress)
		}
		if extra := locationExtras(loc); extra != "" {
			cmd.Printf("      %s\n", extra)
		}
	}

	printRunNotes(cmd, result)
}

// locationExtras joins the optional fields that are present.
func locationExtras(loc *domain.EnrichedLocation) string {
	var parts []string
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

func printRunNotes(cmd *cobra.Command, result *domain.SearchResult) {
	if result.Partial() {
		skipped := make([]string, len(result.KeywordErrors))
		for i, ke := range result.KeywordErrors {
			skipped[i] = ke.Keyword
		}
		cmd.Println()
		cmd.Printf("Warning: skipped keyword(s): %s\n", strings.Join(skipped, ", "))
	}
	if n := len(result.Failures); n > 0 {
		cmd.Println()
		cmd.Printf("Note: details unavailable for %d place(s)\n", n)
	}
}

// isSuperseded reports whether err only means a newer run took over.
func isSuperseded(err error) bool {
	return errors.Is(err, domain.ErrSuperseded)
}
