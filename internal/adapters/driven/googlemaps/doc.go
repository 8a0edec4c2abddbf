// Package googlemaps implements the geocoding, nearby-search and
// place-details ports over the Google Maps Platform web service APIs.
//
// Every request is throttled by a shared token-bucket RateLimiter. The API
// key is sent as a query parameter and is redacted from all logged URLs.
package googlemaps
