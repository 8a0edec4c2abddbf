package tui

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/nearby-cli/internal/core/domain"
)

// MockProximitySearch implements driving.ProximitySearch for testing.
type MockProximitySearch struct {
	mu         sync.Mutex
	requests   []domain.SearchRequest
	generation uint64
	err        error
}

func (m *MockProximitySearch) Run(_ context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation++
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.SearchResult{
		Generation: m.generation,
		Request:    req,
		Locations: []domain.EnrichedLocation{{
			PlaceDetail:   domain.PlaceDetail{PlaceID: "p1", Name: "Westgate Apartments"},
			DistanceMiles: 0.4674,
		}},
	}, nil
}

func (m *MockProximitySearch) SetRadius(ctx context.Context, radiusMiles float64) (*domain.SearchResult, error) {
	m.mu.Lock()
	if len(m.requests) == 0 {
		m.mu.Unlock()
		return nil, domain.ErrInvalidInput
	}
	req := m.requests[len(m.requests)-1]
	m.mu.Unlock()

	req.RadiusMiles = radiusMiles
	return m.Run(ctx, req)
}

func (m *MockProximitySearch) Latest() *domain.SearchResult { return nil }

func (m *MockProximitySearch) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

// MockSettingsService implements driving.SettingsService for testing.
type MockSettingsService struct {
	settings *domain.AppSettings
	err      error
}

func (m *MockSettingsService) Get() (*domain.AppSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.settings, nil
}

func (m *MockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = settings
	return nil
}

func (m *MockSettingsService) Set(string, string) error { return errors.New("not supported") }

func (m *MockSettingsService) SetAPIKey(string) error { return nil }

func (m *MockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *MockSettingsService) Keys() []string { return nil }
