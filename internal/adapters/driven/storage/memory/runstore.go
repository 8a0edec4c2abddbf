package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/nearby-cli/internal/core/domain"
	"github.com/custodia-labs/nearby-cli/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]domain.RunRecord
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]domain.RunRecord),
	}
}

// Save stores or replaces a run record.
func (s *RunStore) Save(_ context.Context, record domain.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.Keywords = append([]string(nil), record.Keywords...)
	s.runs[record.ID] = record
	return nil
}

// Get retrieves a run by ID.
func (s *RunStore) Get(_ context.Context, id string) (*domain.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	record.Keywords = append([]string(nil), record.Keywords...)
	return &record, nil
}

// List returns runs newest first, at most limit when limit > 0.
func (s *RunStore) List(_ context.Context, limit int) ([]domain.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.RunRecord, 0, len(s.runs))
	for _, r := range s.runs {
		r.Keywords = append([]string(nil), r.Keywords...)
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].StartedAt.Equal(records[j].StartedAt) {
			return records[i].StartedAt.After(records[j].StartedAt)
		}
		return records[i].ID < records[j].ID
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Clear removes all runs.
func (s *RunStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = make(map[string]domain.RunRecord)
	return nil
}
