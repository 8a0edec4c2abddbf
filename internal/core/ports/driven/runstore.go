package driven

import (
	"context"

	"github.com/custodia-labs/nearby-cli/internal/core/domain"
)

// RunStore persists run metadata for `nearby history`.
// Only metadata is stored; result sets are never persisted.
type RunStore interface {
	// Save records a run.
	Save(ctx context.Context, record domain.RunRecord) error

	// Get retrieves a run by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.RunRecord, error)

	// List returns the most recent runs, newest first.
	// A limit of zero or less returns all runs.
	List(ctx context.Context, limit int) ([]domain.RunRecord, error)

	// Clear removes all recorded runs.
	Clear(ctx context.Context) error
}
