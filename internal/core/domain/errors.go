package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingAPIKey indicates no Google Maps API key is configured.
	ErrMissingAPIKey = errors.New("google maps API key not configured")

	// ErrRateLimited indicates the upstream API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Pipeline Errors.

	// ErrGeocode indicates the origin address could not be resolved.
	// Fatal: the whole run is aborted.
	ErrGeocode = errors.New("geocode failed")

	// ErrPlacesSearch indicates a nearby search for a keyword failed.
	ErrPlacesSearch = errors.New("places search failed")

	// ErrDetailFetch indicates a single place-details lookup failed.
	// Non-fatal: the place is dropped from the run's output.
	ErrDetailFetch = errors.New("place details fetch failed")

	// ErrSuperseded indicates a run was replaced by a newer run before it
	// could commit its results.
	ErrSuperseded = errors.New("search run superseded")
)

// GeocodeError reports a failure to resolve the origin address.
type GeocodeError struct {
	Address string
	Status  string
	Err     error
}

func (e *GeocodeError) Error() string {
	switch {
	case e.Err != nil && e.Status != "":
		return fmt.Sprintf("geocode %q: status %s: %v", e.Address, e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("geocode %q: %v", e.Address, e.Err)
	case e.Status != "":
		return fmt.Sprintf("geocode %q: status %s", e.Address, e.Status)
	default:
		return fmt.Sprintf("geocode %q: no results", e.Address)
	}
}

// Unwrap returns the underlying cause.
func (e *GeocodeError) Unwrap() error { return e.Err }

// Is matches ErrGeocode.
func (e *GeocodeError) Is(target error) bool { return target == ErrGeocode }

// PlacesSearchError reports a failed nearby-search page for a keyword.
type PlacesSearchError struct {
	Keyword string
	Page    int
	Status  string
	Err     error
}

func (e *PlacesSearchError) Error() string {
	msg := fmt.Sprintf("places search %q page %d", e.Keyword, e.Page)
	if e.Status != "" {
		msg += ": status " + e.Status
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *PlacesSearchError) Unwrap() error { return e.Err }

// Is matches ErrPlacesSearch.
func (e *PlacesSearchError) Is(target error) bool { return target == ErrPlacesSearch }

// DetailFetchError reports a failed details lookup for one place.
type DetailFetchError struct {
	PlaceID string
	Status  string
	Err     error
}

func (e *DetailFetchError) Error() string {
	msg := fmt.Sprintf("place details %s", e.PlaceID)
	if e.Status != "" {
		msg += ": status " + e.Status
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *DetailFetchError) Unwrap() error { return e.Err }

// Is matches ErrDetailFetch.
func (e *DetailFetchError) Is(target error) bool { return target == ErrDetailFetch }
