package services

import (
	"context"
	"errors"
	"strings"

	"github.com/custodia-labs/nearby-cli/internal/core/domain"
	"github.com/custodia-labs/nearby-cli/internal/core/ports/driven"
	"github.com/custodia-labs/nearby-cli/internal/logger"
)

// GeoResolver converts the origin address into a coordinate.
type GeoResolver struct {
	geocoder driven.Geocoder
}

// NewGeoResolver creates a resolver backed by geocoder.
func NewGeoResolver(geocoder driven.Geocoder) *GeoResolver {
	return &GeoResolver{geocoder: geocoder}
}

// Resolve returns the coordinate of the best geocoding match for address.
// Failure is fatal for a run and is never retried.
func (r *GeoResolver) Resolve(ctx context.Context, address string) (domain.Coordinate, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return domain.Coordinate{}, &domain.GeocodeError{Err: domain.ErrInvalidInput}
	}

	logger.Debug("Geocoding origin %q", address)

	candidates, err := r.geocoder.Geocode(ctx, address)
	if err != nil {
		var geoErr *domain.GeocodeError
		if errors.As(err, &geoErr) {
			return domain.Coordinate{}, err
		}
		return domain.Coordinate{}, &domain.GeocodeError{Address: address, Err: err}
	}
	if len(candidates) == 0 {
		return domain.Coordinate{}, &domain.GeocodeError{Address: address, Status: "ZERO_RESULTS"}
	}

	origin := candidates[0]
	if !origin.Valid() {
		return domain.Coordinate{}, &domain.GeocodeError{Address: address, Err: domain.ErrInvalidInput}
	}

	logger.Debug("Origin resolved to %s", origin)
	return origin, nil
}
