package domain

import (
	"fmt"
	"strings"
	"time"
)

// KeywordFailurePolicy decides what a run does when one keyword's
// nearby search fails.
type KeywordFailurePolicy string

// Available keyword failure policies.
const (
	// KeywordFailureAbort fails the whole run on the first keyword error.
	KeywordFailureAbort KeywordFailurePolicy = "abort"

	// KeywordFailureContinue skips the failing keyword and marks the
	// result as partial.
	KeywordFailureContinue KeywordFailurePolicy = "continue"
)

// IsValid returns true if the policy is recognised.
func (p KeywordFailurePolicy) IsValid() bool {
	return p == KeywordFailureAbort || p == KeywordFailureContinue
}

// String returns the string representation.
func (p KeywordFailurePolicy) String() string {
	return string(p)
}

// SearchRequest is the input of one pipeline run.
type SearchRequest struct {
	// OriginAddress is the free-text address distances are measured from.
	OriginAddress string

	// RadiusMiles is the inclusive search radius.
	RadiusMiles float64

	// Keywords broaden nearby-search coverage, e.g. "apartment".
	Keywords []string
}

// Normalise trims keywords, drops blanks and duplicates, and validates
// the request.
func (r SearchRequest) Normalise() (SearchRequest, error) {
	out := SearchRequest{
		OriginAddress: strings.TrimSpace(r.OriginAddress),
		RadiusMiles:   r.RadiusMiles,
	}

	if out.OriginAddress == "" {
		return out, fmt.Errorf("%w: origin address is required", ErrInvalidInput)
	}
	if !ValidRadius(r.RadiusMiles) {
		return out, fmt.Errorf("%w: radius must be a positive number, got %v", ErrInvalidInput, r.RadiusMiles)
	}

	trimmed := make([]string, 0, len(r.Keywords))
	for _, k := range r.Keywords {
		trimmed = append(trimmed, strings.TrimSpace(k))
	}
	out.Keywords = uniqueStrings(trimmed)
	if len(out.Keywords) == 0 {
		return out, fmt.Errorf("%w: at least one keyword is required", ErrInvalidInput)
	}

	return out, nil
}

// RadiusMeters returns the radius in whole meters.
func (r SearchRequest) RadiusMeters() float64 {
	return MilesToMeters(r.RadiusMiles)
}

// DetailResult is the per-item outcome of a details lookup.
// Exactly one of Detail and Err is set.
type DetailResult struct {
	PlaceID string
	Detail  *PlaceDetail
	Err     error
}

// OK reports whether the lookup succeeded.
func (r DetailResult) OK() bool {
	return r.Err == nil && r.Detail != nil
}

// KeywordError records a keyword skipped under KeywordFailureContinue.
type KeywordError struct {
	Keyword string
	Err     error
}

// SearchResult is the committed output of one pipeline run.
type SearchResult struct {
	// RunID identifies the run in history.
	RunID string

	// Generation is the session generation that produced this result.
	Generation uint64

	// Request is the normalised request of the run.
	Request SearchRequest

	// Origin is the resolved origin coordinate.
	Origin Coordinate

	// Locations are the enriched places within the radius, nearest first.
	Locations []EnrichedLocation

	// CandidateCount is the number of unique places found before
	// enrichment and filtering.
	CandidateCount int

	// Failures are the per-item detail lookups that failed.
	Failures []DetailResult

	// KeywordErrors lists skipped keywords when the run continued past a
	// failed keyword search.
	KeywordErrors []KeywordError

	// StartedAt and Duration describe the run's timing.
	StartedAt time.Time
	Duration  time.Duration
}

// Partial reports whether some keywords were skipped.
func (r *SearchResult) Partial() bool {
	return len(r.KeywordErrors) > 0
}

// Empty reports a successful run with no matches.
func (r *SearchResult) Empty() bool {
	return len(r.Locations) == 0
}

// Summary returns the user-facing one-line outcome of the run.
func (r *SearchResult) Summary() string {
	if r.Empty() {
		return fmt.Sprintf("No results found within %s miles.", FormatMiles(r.Request.RadiusMiles))
	}
	return fmt.Sprintf("Found %d location(s) within %s miles", len(r.Locations), FormatMiles(r.Request.RadiusMiles))
}

// Clone returns a copy whose slices do not alias the receiver's.
func (r *SearchResult) Clone() *SearchResult {
	if r == nil {
		return nil
	}
	c := *r
	c.Request.Keywords = append([]string(nil), r.Request.Keywords...)
	c.Locations = append([]EnrichedLocation(nil), r.Locations...)
	c.Failures = append([]DetailResult(nil), r.Failures...)
	c.KeywordErrors = append([]KeywordError(nil), r.KeywordErrors...)
	return &c
}

// FormatMiles formats a radius without trailing zeros ("5", "2.5").
func FormatMiles(miles float64) string {
	s := fmt.Sprintf("%.2f", miles)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
