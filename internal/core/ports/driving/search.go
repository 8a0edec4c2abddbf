package driving

import (
	"context"

	"github.com/custodia-labs/nearby-cli/internal/core/domain"
)

// SearchRunner executes one complete proximity-search run.
type SearchRunner interface {
	// Run resolves the origin, discovers and enriches nearby places, and
	// returns those within the radius. Intermediate stages are not exposed.
	Run(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error)
}

// ProximitySearch is the long-lived search entry point used by interactive
// adapters. Each call to Run or SetRadius supersedes any run in flight.
type ProximitySearch interface {
	SearchRunner

	// SetRadius reruns the last request with a new radius.
	SetRadius(ctx context.Context, radiusMiles float64) (*domain.SearchResult, error)

	// Latest returns the most recently committed result, or nil.
	Latest() *domain.SearchResult

	// Generation returns the current run generation.
	Generation() uint64
}
