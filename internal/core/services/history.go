package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/nearby-cli/internal/core/domain"
	"github.com/custodia-labs/nearby-cli/internal/core/ports/driven"
	"github.com/custodia-labs/nearby-cli/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// HistoryService reads recorded run metadata.
type HistoryService struct {
	runStore driven.RunStore
}

// NewHistoryService creates a new history service.
func NewHistoryService(runStore driven.RunStore) *HistoryService {
	return &HistoryService{runStore: runStore}
}

// Recent returns up to limit runs, newest first.
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	return s.runStore.List(ctx, limit)
}

// Get retrieves a single run.
func (s *HistoryService) Get(ctx context.Context, id string) (*domain.RunRecord, error) {
	return s.runStore.Get(ctx, id)
}

// Clear removes all recorded runs.
func (s *HistoryService) Clear(ctx context.Context) error {
	return s.runStore.Clear(ctx)
}

// newRunRecord summarises a finished run. result is nil when the run failed.
func newRunRecord(
	req domain.SearchRequest, result *domain.SearchResult, runErr error, started time.Time,
) domain.RunRecord {
	rec := domain.RunRecord{
		ID:          uuid.New().String(),
		Origin:      req.OriginAddress,
		RadiusMiles: req.RadiusMiles,
		Keywords:    append([]string(nil), req.Keywords...),
		Status:      domain.RunStatusSucceeded,
		StartedAt:   started,
		Duration:    time.Since(started),
	}

	if result != nil {
		if result.RunID != "" {
			rec.ID = result.RunID
		}
		rec.Origin = result.Request.OriginAddress
		rec.Keywords = append([]string(nil), result.Request.Keywords...)
		rec.Candidates = result.CandidateCount
		rec.Matches = len(result.Locations)
		rec.DetailFailures = len(result.Failures)
		rec.StartedAt = result.StartedAt
		rec.Duration = result.Duration
	}

	switch {
	case errors.Is(runErr, domain.ErrSuperseded):
		rec.Status = domain.RunStatusSuperseded
	case runErr != nil:
		rec.Status = domain.RunStatusFailed
		rec.Error = runErr.Error()
	}

	return rec
}
