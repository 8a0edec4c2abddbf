package googlemaps

import "github.com/custodia-labs/nearby-cli/internal/core/domain"

// latLng is the Google location object.
type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (l latLng) coordinate() domain.Coordinate {
	return domain.Coordinate{Latitude: l.Lat, Longitude: l.Lng}
}

type geometry struct {
	Location latLng `json:"location"`
}

// geocodeResponse is the Geocoding API response format.
type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	Results      []struct {
		FormattedAddress string   `json:"formatted_address"`
		Geometry         geometry `json:"geometry"`
	} `json:"results"`
}

// nearbyResponse is the Places Nearby Search response format.
type nearbyResponse struct {
	Status        string `json:"status"`
	ErrorMessage  string `json:"error_message,omitempty"`
	NextPageToken string `json:"next_page_token,omitempty"`
	Results       []struct {
		PlaceID  string   `json:"place_id"`
		Name     string   `json:"name"`
		Vicinity string   `json:"vicinity"`
		Types    []string `json:"types"`
	} `json:"results"`
}

// detailsResponse is the Place Details response format.
type detailsResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Result       detailsResult `json:"result"`
}

// detailsResult holds the requested detail fields. Optional fields are
// pointers so absent values stay distinguishable from zero values.
type detailsResult struct {
	PlaceID              string   `json:"place_id"`
	Name                 string   `json:"name"`
	FormattedAddress     string   `json:"formatted_address"`
	Geometry             geometry `json:"geometry"`
	Rating               *float64 `json:"rating"`
	UserRatingsTotal     *int     `json:"user_ratings_total"`
	Website              *string  `json:"website"`
	FormattedPhoneNumber *string  `json:"formatted_phone_number"`
}

// detailFields are requested from Place Details; billing depends on them.
var detailFields = []string{
	"place_id",
	"name",
	"formatted_address",
	"geometry",
	"rating",
	"user_ratings_total",
	"website",
	"formatted_phone_number",
}

func (r detailsResult) toDomain(placeID string) *domain.PlaceDetail {
	id := r.PlaceID
	if id == "" {
		id = placeID
	}
	return &domain.PlaceDetail{
		PlaceID:          id,
		Name:             r.Name,
		FormattedAddress: r.FormattedAddress,
		Coordinate:       r.Geometry.Location.coordinate(),
		Rating:           r.Rating,
		RatingCount:      r.UserRatingsTotal,
		Website:          nonEmpty(r.Website),
		Phone:            nonEmpty(r.FormattedPhoneNumber),
	}
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
