package domain

import (
	"fmt"
	"time"
)

// Default search configuration, taken from the Cedar Park deployment.
const (
	DefaultOrigin         = "610 Brashear Lane, Cedar Park, Texas"
	DefaultRadiusMiles    = 5.0
	DefaultBatchSize      = 6
	DefaultPageTokenDelay = 1500 * time.Millisecond
	DefaultMaxPages       = 10
)

// Default Google Maps client configuration.
const (
	DefaultGoogleBaseURL     = "https://maps.googleapis.com"
	DefaultGoogleTimeout     = 10 * time.Second
	DefaultRequestsPerSecond = 10.0
	DefaultBurst             = 6
)

// DefaultKeywords returns the keyword categories searched by default.
func DefaultKeywords() []string {
	return []string{"apartment", "apartment complex", "apartments", "community"}
}

// SearchSettings holds pipeline behaviour configuration.
type SearchSettings struct {
	// Origin is the default origin address.
	Origin string

	// RadiusMiles is the default search radius.
	RadiusMiles float64

	// Keywords are the default keyword categories.
	Keywords []string

	// BatchSize bounds concurrent place-details requests.
	BatchSize int

	// PageTokenDelay is how long a next_page_token needs before it is valid.
	PageTokenDelay time.Duration

	// MaxPages caps how many pages one keyword may follow.
	MaxPages int

	// ConcurrentKeywords runs keyword searches in parallel.
	ConcurrentKeywords bool

	// KeywordFailure decides whether a failed keyword aborts the run.
	KeywordFailure KeywordFailurePolicy
}

// Request builds a search request from the defaults.
func (s SearchSettings) Request() SearchRequest {
	return SearchRequest{
		OriginAddress: s.Origin,
		RadiusMiles:   s.RadiusMiles,
		Keywords:      append([]string(nil), s.Keywords...),
	}
}

// GoogleSettings holds Google Maps Platform client configuration.
type GoogleSettings struct {
	// APIKey authenticates requests. Never logged.
	APIKey string

	// BaseURL is the API host (overridable for testing).
	BaseURL string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// RequestsPerSecond is the sustained client-side rate limit.
	RequestsPerSecond float64

	// Burst is the token bucket burst size.
	Burst int
}

// IsConfigured returns true if an API key is present.
func (g GoogleSettings) IsConfigured() bool {
	return g.APIKey != ""
}

// MaskedAPIKey returns the key with all but the last four characters hidden.
func (g GoogleSettings) MaskedAPIKey() string {
	if g.APIKey == "" {
		return "(not set)"
	}
	if len(g.APIKey) <= 4 {
		return "****"
	}
	return "****" + g.APIKey[len(g.APIKey)-4:]
}

// HistorySettings controls run-history recording.
type HistorySettings struct {
	// Enabled turns on recording of run metadata.
	Enabled bool
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Search holds pipeline settings.
	Search SearchSettings

	// Google holds upstream client settings.
	Google GoogleSettings

	// History holds run-history settings.
	History HistorySettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The API key is left empty; users set it via `nearby settings set-key`
// or the NEARBY_GOOGLE_API_KEY environment variable.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Search: SearchSettings{
			Origin:         DefaultOrigin,
			RadiusMiles:    DefaultRadiusMiles,
			Keywords:       DefaultKeywords(),
			BatchSize:      DefaultBatchSize,
			PageTokenDelay: DefaultPageTokenDelay,
			MaxPages:       DefaultMaxPages,
			KeywordFailure: KeywordFailureAbort,
		},
		Google: GoogleSettings{
			BaseURL:           DefaultGoogleBaseURL,
			Timeout:           DefaultGoogleTimeout,
			RequestsPerSecond: DefaultRequestsPerSecond,
			Burst:             DefaultBurst,
		},
		History: HistorySettings{
			Enabled: true,
		},
	}
}

// Validate checks settings for values the pipeline cannot run with.
func (a AppSettings) Validate() error {
	if !ValidRadius(a.Search.RadiusMiles) {
		return fmt.Errorf("%w: search.radius_miles must be positive", ErrInvalidInput)
	}
	if a.Search.BatchSize <= 0 {
		return fmt.Errorf("%w: search.batch_size must be positive", ErrInvalidInput)
	}
	if a.Search.PageTokenDelay < 0 {
		return fmt.Errorf("%w: search.page_token_delay_ms must not be negative", ErrInvalidInput)
	}
	if !a.Search.KeywordFailure.IsValid() {
		return fmt.Errorf("%w: unknown keyword failure policy %q", ErrInvalidInput, a.Search.KeywordFailure)
	}
	if a.Google.RequestsPerSecond <= 0 {
		return fmt.Errorf("%w: google.requests_per_second must be positive", ErrInvalidInput)
	}
	return nil
}
