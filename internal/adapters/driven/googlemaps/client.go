package googlemaps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/nearby-cli/internal/core/domain"
	"github.com/custodia-labs/nearby-cli/internal/core/ports/driven"
	"github.com/custodia-labs/nearby-cli/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.PlacesClient = (*Client)(nil)

// API paths relative to the base URL.
const (
	geocodePath      = "/maps/api/geocode/json"
	nearbySearchPath = "/maps/api/place/nearbysearch/json"
	placeDetailsPath = "/maps/api/place/details/json"
)

// Config holds configuration for the Google Maps client.
type Config struct {
	// APIKey authenticates every request. Required.
	APIKey string

	// BaseURL is the API host (default: https://maps.googleapis.com).
	BaseURL string

	// Timeout is the per-request timeout (default: 10s).
	Timeout time.Duration

	// RateLimit throttles outbound requests (default: DefaultRateLimit).
	RateLimit RateLimitConfig

	// HTTPClient overrides the transport. Timeout is ignored when set.
	HTTPClient *http.Client
}

// ConfigFromSettings maps application settings onto a client config.
func ConfigFromSettings(s domain.GoogleSettings) Config {
	return Config{
		APIKey:  s.APIKey,
		BaseURL: s.BaseURL,
		Timeout: s.Timeout,
		RateLimit: RateLimitConfig{
			RequestsPerSecond: s.RequestsPerSecond,
			BurstSize:         s.Burst,
		},
	}
}

// Client calls the Google Maps Platform web services.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	limiter *RateLimiter
}

// NewClient creates a Google Maps client.
// Returns domain.ErrMissingAPIKey if no API key is configured.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, domain.ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = domain.DefaultGoogleBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = domain.DefaultGoogleTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  strings.TrimSpace(cfg.APIKey),
		limiter: NewRateLimiter(cfg.RateLimit),
	}, nil
}

// Geocode resolves address to candidate coordinates, best match first.
func (c *Client) Geocode(ctx context.Context, address string) ([]domain.Coordinate, error) {
	params := url.Values{}
	params.Set("address", address)

	var resp geocodeResponse
	if err := c.get(ctx, endpointGeocode, geocodePath, params, &resp); err != nil {
		return nil, &domain.GeocodeError{Address: address, Err: err}
	}

	switch resp.Status {
	case StatusOK:
	case StatusZeroResults:
		return []domain.Coordinate{}, nil
	default:
		c.noteStatus(resp.Status)
		return nil, &domain.GeocodeError{
			Address: address,
			Status:  resp.Status,
			Err:     statusError(endpointGeocode, resp.Status, resp.ErrorMessage),
		}
	}

	coords := make([]domain.Coordinate, 0, len(resp.Results))
	for _, r := range resp.Results {
		coords = append(coords, r.Geometry.Location.coordinate())
	}
	return coords, nil
}

// NearbyPage fetches one page of a keyword nearby search.
func (c *Client) NearbyPage(ctx context.Context, query driven.NearbyQuery) (driven.NearbyPage, error) {
	params := url.Values{}
	if query.PageToken != "" {
		params.Set("pagetoken", query.PageToken)
	} else {
		params.Set("location", query.Location.String())
		params.Set("radius", strconv.FormatFloat(query.RadiusMeters, 'f', 0, 64))
		params.Set("keyword", query.Keyword)
	}

	var resp nearbyResponse
	if err := c.get(ctx, endpointNearbySearch, nearbySearchPath, params, &resp); err != nil {
		return driven.NearbyPage{}, &domain.PlacesSearchError{Keyword: query.Keyword, Err: err}
	}

	switch resp.Status {
	case StatusOK:
	case StatusZeroResults:
		return driven.NearbyPage{}, nil
	default:
		c.noteStatus(resp.Status)
		return driven.NearbyPage{}, &domain.PlacesSearchError{
			Keyword: query.Keyword,
			Status:  resp.Status,
			Err:     statusError(endpointNearbySearch, resp.Status, resp.ErrorMessage),
		}
	}

	page := driven.NearbyPage{
		Results:       make([]domain.RawPlaceRef, 0, len(resp.Results)),
		NextPageToken: resp.NextPageToken,
	}
	for _, r := range resp.Results {
		page.Results = append(page.Results, domain.NewRawPlaceRef(r.PlaceID, r.Vicinity, r.Types))
	}
	return page, nil
}

// PlaceDetail fetches the details of one place.
func (c *Client) PlaceDetail(ctx context.Context, placeID string) (*domain.PlaceDetail, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", strings.Join(detailFields, ","))

	var resp detailsResponse
	if err := c.get(ctx, endpointPlaceDetails, placeDetailsPath, params, &resp); err != nil {
		return nil, &domain.DetailFetchError{PlaceID: placeID, Err: err}
	}

	if resp.Status != StatusOK {
		c.noteStatus(resp.Status)
		return nil, &domain.DetailFetchError{
			PlaceID: placeID,
			Status:  resp.Status,
			Err:     statusError(endpointPlaceDetails, resp.Status, resp.ErrorMessage),
		}
	}

	return resp.Result.toDomain(placeID), nil
}

// get performs a throttled GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	params.Set("key", c.apiKey)
	u.RawQuery = params.Encode()

	logger.Debug("GET %s", redactURL(u))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", redactError(err, c.apiKey))
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		if resp.StatusCode == http.StatusTooManyRequests {
			c.limiter.Backoff(retryAfter(resp.Header))
		}
		return httpError(endpoint, err)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// noteStatus backs off after a quota response.
func (c *Client) noteStatus(status string) {
	if status == StatusOverQueryLimit {
		logger.Warn("Google Maps quota exceeded, backing off")
		c.limiter.Backoff(DefaultBackoff)
	}
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
