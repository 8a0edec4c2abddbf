package domain

// RawPlaceRef is the minimal record returned by a nearby-search hit.
// Identity is defined solely by PlaceID.
type RawPlaceRef struct {
	// PlaceID is the upstream place identifier.
	PlaceID string `json:"place_id"`

	// RoughAddress is the short "vicinity" address of the hit.
	RoughAddress string `json:"vicinity,omitempty"`

	// Categories are the upstream place types, without duplicates.
	Categories []string `json:"types,omitempty"`
}

// NewRawPlaceRef creates a place reference with de-duplicated categories.
func NewRawPlaceRef(placeID, roughAddress string, categories []string) RawPlaceRef {
	return RawPlaceRef{
		PlaceID:      placeID,
		RoughAddress: roughAddress,
		Categories:   uniqueStrings(categories),
	}
}

// HasCategory reports whether the reference carries the given category.
func (r RawPlaceRef) HasCategory(category string) bool {
	for _, c := range r.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// PlaceDetail is the full record returned by a place-details lookup.
// Optional fields are nil when the upstream service did not return them.
type PlaceDetail struct {
	PlaceID          string     `json:"place_id"`
	Name             string     `json:"name"`
	FormattedAddress string     `json:"formatted_address"`
	Coordinate       Coordinate `json:"coordinate"`
	Rating           *float64   `json:"rating,omitempty"`
	RatingCount      *int       `json:"user_ratings_total,omitempty"`
	Website          *string    `json:"website,omitempty"`
	Phone            *string    `json:"phone,omitempty"`
}

// EnrichedLocation is a place detail with its distance from the origin.
// It is the output unit of a search run.
type EnrichedLocation struct {
	PlaceDetail

	// DistanceMiles is the unrounded great-circle distance from the origin.
	DistanceMiles float64 `json:"distance_miles"`
}

// NewEnrichedLocation computes the distance from origin and returns the
// enriched record.
func NewEnrichedLocation(detail PlaceDetail, origin Coordinate) EnrichedLocation {
	return EnrichedLocation{
		PlaceDetail:   detail,
		DistanceMiles: DistanceMiles(origin, detail.Coordinate),
	}
}

// WithinRadius reports whether the location lies inside radiusMiles,
// using full precision.
func (l EnrichedLocation) WithinRadius(radiusMiles float64) bool {
	return l.DistanceMiles <= radiusMiles
}

// DisplayDistance returns the distance rounded to two decimals.
func (l EnrichedLocation) DisplayDistance() float64 {
	return RoundMiles(l.DistanceMiles)
}

// RatingValue returns the rating or 0 when absent.
func (l EnrichedLocation) RatingValue() float64 {
	if l.Rating == nil {
		return 0
	}
	return *l.Rating
}

// WebsiteValue returns the website or an empty string when absent.
func (l EnrichedLocation) WebsiteValue() string {
	if l.Website == nil {
		return ""
	}
	return *l.Website
}

// PhoneValue returns the phone number or an empty string when absent.
func (l EnrichedLocation) PhoneValue() string {
	if l.Phone == nil {
		return ""
	}
	return *l.Phone
}

func uniqueStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
