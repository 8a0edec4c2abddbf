package googlemaps

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/nearby-cli/internal/core/domain"
)

// Google Maps web service status codes.
const (
	StatusOK             = "OK"
	StatusZeroResults    = "ZERO_RESULTS"
	StatusOverQueryLimit = "OVER_QUERY_LIMIT"
	StatusRequestDenied  = "REQUEST_DENIED"
	StatusInvalidRequest = "INVALID_REQUEST"
	StatusNotFound       = "NOT_FOUND"
	StatusUnknownError   = "UNKNOWN_ERROR"
)

const (
	endpointGeocode      = "geocode"
	endpointNearbySearch = "nearbysearch"
	endpointPlaceDetails = "details"
	redactedKey          = "REDACTED"
)

// APIError is a non-OK response from a Google Maps endpoint, either as an
// HTTP status or as a status field in the JSON body.
type APIError struct {
	// Endpoint is the API that failed ("geocode", "nearbysearch", "details").
	Endpoint string

	// Status is the body status code, e.g. "REQUEST_DENIED". Empty for
	// HTTP-level failures.
	Status string

	// HTTPStatus is the HTTP response code.
	HTTPStatus int

	// Message is the upstream error_message, if any.
	Message string
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "google maps %s", e.Endpoint)
	if e.Status != "" {
		fmt.Fprintf(&b, ": %s", e.Status)
	}
	if e.HTTPStatus != 0 && e.HTTPStatus != http.StatusOK {
		fmt.Fprintf(&b, " (HTTP %d)", e.HTTPStatus)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	return b.String()
}

// Is matches domain.ErrRateLimited for quota responses.
func (e *APIError) Is(target error) bool {
	return target == domain.ErrRateLimited && e.RateLimited()
}

// RateLimited reports whether the response signals an exhausted quota.
func (e *APIError) RateLimited() bool {
	return e.Status == StatusOverQueryLimit || e.HTTPStatus == http.StatusTooManyRequests
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, domain.ErrRateLimited) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests
	}
	return false
}

// statusError builds the APIError for a non-OK body status.
func statusError(endpoint, status, message string) *APIError {
	return &APIError{
		Endpoint:   endpoint,
		Status:     status,
		HTTPStatus: http.StatusOK,
		Message:    message,
	}
}

// httpError converts a googleapi.CheckResponse failure into an APIError.
func httpError(endpoint string, err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	msg := gerr.Message
	if msg == "" {
		msg = strings.TrimSpace(gerr.Body)
	}
	return &APIError{
		Endpoint:   endpoint,
		HTTPStatus: gerr.Code,
		Message:    msg,
	}
}

// redactURL hides the API key in u for logging.
func redactURL(u *url.URL) string {
	c := *u
	q := c.Query()
	if q.Has("key") {
		q.Set("key", redactedKey)
		c.RawQuery = q.Encode()
	}
	return c.String()
}

// redactError scrubs the key from transport errors, which embed the
// request URL.
func redactError(err error, apiKey string) error {
	if err == nil || apiKey == "" {
		return err
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && strings.Contains(urlErr.URL, apiKey) {
		return &url.Error{
			Op:  urlErr.Op,
			URL: strings.ReplaceAll(urlErr.URL, apiKey, redactedKey),
			Err: urlErr.Err,
		}
	}
	return err
}
