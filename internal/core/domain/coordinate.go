package domain

import (
	"fmt"
	"math"
)

// EarthRadiusMiles is the mean Earth radius used for great-circle distances.
const EarthRadiusMiles = 3959.0

// MetersPerMile converts a radius in miles to the meters the places API expects.
const MetersPerMile = 1609.34

// Coordinate is a latitude/longitude pair in degrees.
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// NewCoordinate creates a coordinate, rejecting out-of-range values.
func NewCoordinate(lat, lng float64) (Coordinate, error) {
	c := Coordinate{Latitude: lat, Longitude: lng}
	if !c.Valid() {
		return Coordinate{}, fmt.Errorf("%w: coordinate (%f, %f) out of range", ErrInvalidInput, lat, lng)
	}
	return c, nil
}

// Valid reports whether the coordinate lies within [-90,90] x [-180,180].
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// String formats the coordinate as "lat,lng" with six decimals,
// the form the Google location parameter accepts.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Latitude, c.Longitude)
}

// DistanceMiles returns the Haversine great-circle distance between a and b
// in miles. The result is never rounded.
func DistanceMiles(a, b Coordinate) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMiles * c
}

// RoundMiles rounds a distance to two decimals for display.
// Filtering must always use the unrounded value.
func RoundMiles(d float64) float64 {
	return math.Round(d*100) / 100
}

// MilesToMeters converts a radius in miles to whole meters.
func MilesToMeters(miles float64) float64 {
	return math.Round(miles * MetersPerMile)
}

// ValidRadius reports whether miles is a usable search radius.
// NaN and infinities are rejected along with zero and negatives.
func ValidRadius(miles float64) bool {
	return miles > 0 && !math.IsInf(miles, 0)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
