package driven

import (
	"context"

	"github.com/custodia-labs/nearby-cli/internal/core/domain"
)

// Geocoder resolves free-text addresses to coordinates.
// Backed by the Google Geocoding API.
type Geocoder interface {
	// Geocode returns the candidate coordinates for address, best first.
	// A response with zero results is returned as an empty slice, not an error.
	Geocode(ctx context.Context, address string) ([]domain.Coordinate, error)
}

// NearbySearcher fetches one page of a keyword nearby search.
// Backed by the Google Places Nearby Search API.
type NearbySearcher interface {
	// NearbyPage fetches the page selected by query.PageToken
	// (the first page when the token is empty).
	NearbyPage(ctx context.Context, query NearbyQuery) (NearbyPage, error)
}

// DetailFetcher fetches full details for one place.
// Backed by the Google Place Details API.
type DetailFetcher interface {
	// PlaceDetail returns the details of placeID.
	PlaceDetail(ctx context.Context, placeID string) (*domain.PlaceDetail, error)
}

// PlacesClient is the combined upstream surface used by the pipeline.
type PlacesClient interface {
	Geocoder
	NearbySearcher
	DetailFetcher
}

// NearbyQuery selects one nearby-search page.
type NearbyQuery struct {
	// Location is the search centre.
	Location domain.Coordinate

	// RadiusMeters bounds the search area.
	RadiusMeters float64

	// Keyword filters hits by term.
	Keyword string

	// PageToken continues a previous page. Empty for the first page.
	PageToken string
}

// NearbyPage is one page of nearby-search hits.
type NearbyPage struct {
	// Results are the hits in upstream order.
	Results []domain.RawPlaceRef

	// NextPageToken continues the search. Empty when exhausted.
	NextPageToken string
}
