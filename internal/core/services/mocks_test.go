package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/nearby-cli/internal/core/domain"
	"github.com/custodia-labs/nearby-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// cedarPark is the resolved default origin.
var cedarPark = domain.Coordinate{Latitude: 30.5095, Longitude: -97.8644}

// mockGeocoder implements driven.Geocoder for testing.
type mockGeocoder struct {
	results []domain.Coordinate
	err     error
	calls   atomic.Int32
}

func (m *mockGeocoder) Geocode(_ context.Context, _ string) ([]domain.Coordinate, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

// mockSearcher implements driven.NearbySearcher for testing.
// Pages are keyed by keyword and then by page token ("" for the first page).
type mockSearcher struct {
	mu      sync.Mutex
	pages   map[string]map[string]driven.NearbyPage
	errs    map[string]error
	block   map[string]bool
	queries []driven.NearbyQuery
}

func newMockSearcher() *mockSearcher {
	return &mockSearcher{
		pages: make(map[string]map[string]driven.NearbyPage),
		errs:  make(map[string]error),
		block: make(map[string]bool),
	}
}

func (m *mockSearcher) addPage(keyword, token string, page driven.NearbyPage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pages[keyword] == nil {
		m.pages[keyword] = make(map[string]driven.NearbyPage)
	}
	m.pages[keyword][token] = page
}

func (m *mockSearcher) NearbyPage(ctx context.Context, q driven.NearbyQuery) (driven.NearbyPage, error) {
	m.mu.Lock()
	m.queries = append(m.queries, q)
	err := m.errs[q.Keyword]
	block := m.block[q.Keyword]
	page := m.pages[q.Keyword][q.PageToken]
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return driven.NearbyPage{}, ctx.Err()
	}
	if err != nil {
		return driven.NearbyPage{}, err
	}
	return page, nil
}

func (m *mockSearcher) recorded() []driven.NearbyQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]driven.NearbyQuery(nil), m.queries...)
}

// mockDetails implements driven.DetailFetcher for testing.
type mockDetails struct {
	mu       sync.Mutex
	details  map[string]*domain.PlaceDetail
	errs     map[string]error
	delay    time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32
	calls    atomic.Int32
}

func newMockDetails() *mockDetails {
	return &mockDetails{
		details: make(map[string]*domain.PlaceDetail),
		errs:    make(map[string]error),
	}
}

func (m *mockDetails) add(d domain.PlaceDetail) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.details[d.PlaceID] = &d
}

func (m *mockDetails) fail(id string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[id] = err
}

func (m *mockDetails) PlaceDetail(ctx context.Context, placeID string) (*domain.PlaceDetail, error) {
	m.calls.Add(1)
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		p := m.peak.Load()
		if n <= p || m.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.delay):
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs[placeID]; err != nil {
		return nil, err
	}
	d, ok := m.details[placeID]
	if !ok {
		return nil, errors.New("unknown place")
	}
	c := *d
	return &c, nil
}

// mockClient combines the mocks into a driven.PlacesClient.
type mockClient struct {
	*mockGeocoder
	*mockSearcher
	*mockDetails
}

var _ driven.PlacesClient = mockClient{}

// noSleep is a Sleeper that records requested waits without blocking.
type noSleep struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (n *noSleep) sleep(ctx context.Context, d time.Duration) error {
	n.mu.Lock()
	n.waits = append(n.waits, d)
	n.mu.Unlock()
	return ctx.Err()
}

func ref(id, vicinity string, types ...string) domain.RawPlaceRef {
	return domain.NewRawPlaceRef(id, vicinity, types)
}

func detail(id, name string, lat, lng float64) domain.PlaceDetail {
	return domain.PlaceDetail{
		PlaceID:          id,
		Name:             name,
		FormattedAddress: name + ", Cedar Park, TX",
		Coordinate:       domain.Coordinate{Latitude: lat, Longitude: lng},
	}
}

// memoryRunStore implements driven.RunStore for testing.
type memoryRunStore struct {
	mu      sync.Mutex
	records []domain.RunRecord
	saveErr error
}

func (s *memoryRunStore) Save(_ context.Context, r domain.RunRecord) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
	return nil
}

func (s *memoryRunStore) Get(_ context.Context, id string) (*domain.RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			r := s.records[i]
			return &r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memoryRunStore) List(_ context.Context, limit int) ([]domain.RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.RunRecord, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		out = append(out, s.records[i])
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *memoryRunStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}

func (s *memoryRunStore) all() []domain.RunRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.RunRecord(nil), s.records...)
}
