package driving

import (
	"context"

	"github.com/custodia-labs/nearby-cli/internal/core/domain"
)

// HistoryService exposes recorded run metadata.
type HistoryService interface {
	// Recent returns up to limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]domain.RunRecord, error)

	// Get retrieves a single run.
	Get(ctx context.Context, id string) (*domain.RunRecord, error)

	// Clear removes all recorded runs.
	Clear(ctx context.Context) error
}
