package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/nearby-cli/internal/core/domain"
	"github.com/custodia-labs/nearby-cli/internal/core/ports/driven"
	"github.com/custodia-labs/nearby-cli/internal/core/ports/driving"
	"github.com/custodia-labs/nearby-cli/internal/logger"
)

// Ensure SearchSession implements the interface.
var _ driving.ProximitySearch = (*SearchSession)(nil)

// SearchSession serialises runs for one interactive consumer. Starting a
// run supersedes the one in flight: the older run's context is cancelled
// and its result is discarded even if it completes.
type SearchSession struct {
	runner   driving.SearchRunner
	runStore driven.RunStore

	mu          sync.Mutex
	generation  uint64
	cancel      context.CancelFunc
	lastRequest *domain.SearchRequest
	latest      *domain.SearchResult
}

// NewSearchSession creates a session over runner.
func NewSearchSession(runner driving.SearchRunner) *SearchSession {
	return &SearchSession{runner: runner}
}

// SetRunStore enables run-history recording. Recording is best-effort.
func (s *SearchSession) SetRunStore(store driven.RunStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runStore = store
}

// Run starts a new generation, cancels the previous run and executes req.
// It returns domain.ErrSuperseded if a newer run started before this one
// finished.
func (s *SearchSession) Run(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	started := time.Now()
	runCtx, cancel, gen := s.begin(ctx, req)
	defer cancel()
	logger.Debug("Starting search generation %d", gen)

	result, err := s.runner.Run(runCtx, req)

	s.mu.Lock()
	current := s.generation == gen
	if current {
		s.cancel = nil
		if err == nil && result != nil {
			result.Generation = gen
			s.latest = result.Clone()
		}
	}
	store := s.runStore
	s.mu.Unlock()

	if !current {
		logger.Debug("Discarding superseded generation %d", gen)
		s.record(ctx, store, req, nil, domain.ErrSuperseded, started)
		return nil, domain.ErrSuperseded
	}

	s.record(ctx, store, req, result, err, started)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetRadius reruns the last request with a new radius.
func (s *SearchSession) SetRadius(ctx context.Context, radiusMiles float64) (*domain.SearchResult, error) {
	s.mu.Lock()
	last := s.lastRequest
	s.mu.Unlock()

	if last == nil {
		return nil, fmt.Errorf("%w: no previous search to update", domain.ErrInvalidInput)
	}

	req := *last
	req.Keywords = append([]string(nil), last.Keywords...)
	req.RadiusMiles = radiusMiles
	return s.Run(ctx, req)
}

// Latest returns a copy of the most recently committed result, or nil.
func (s *SearchSession) Latest() *domain.SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest.Clone()
}

// Generation returns the generation of the most recently started run.
func (s *SearchSession) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Cancel aborts the run in flight, if any. The committed result is kept.
func (s *SearchSession) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *SearchSession) begin(
	ctx context.Context, req domain.SearchRequest,
) (context.Context, context.CancelFunc, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.generation++

	saved := req
	saved.Keywords = append([]string(nil), req.Keywords...)
	s.lastRequest = &saved

	return runCtx, cancel, s.generation
}

func (s *SearchSession) record(
	ctx context.Context,
	store driven.RunStore,
	req domain.SearchRequest,
	result *domain.SearchResult,
	runErr error,
	started time.Time,
) {
	if store == nil {
		return
	}
	if result == nil && errors.Is(runErr, domain.ErrInvalidInput) {
		return
	}

	rec := newRunRecord(req, result, runErr, started)
	if err := store.Save(context.WithoutCancel(ctx), rec); err != nil {
		logger.Warn("Failed to record run %s: %v", rec.ID, err)
	}
}
