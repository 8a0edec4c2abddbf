// Package domain defines the core business entities for nearby.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Coordinate: A latitude/longitude pair and Haversine distance maths
//   - RawPlaceRef: A nearby-search hit keyed by place ID
//   - PlaceDetail: A place-details record with optional fields
//   - EnrichedLocation: A place detail with its distance from the origin
//   - SearchRequest / SearchResult: The input and output of one run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
