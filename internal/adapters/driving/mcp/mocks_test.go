package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/nearby-cli/internal/core/domain"
)

// mockSearchRunner is a mock implementation of driving.SearchRunner.
type mockSearchRunner struct {
	result  *domain.SearchResult
	err     error
	lastReq domain.SearchRequest
}

func (m *mockSearchRunner) Run(_ context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings *domain.AppSettings
	err      error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	return m.settings, m.err
}

func (m *mockSettingsService) Save(_ *domain.AppSettings) error { return m.err }

func (m *mockSettingsService) Set(_, _ string) error { return m.err }

func (m *mockSettingsService) SetAPIKey(_ string) error { return m.err }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) Keys() []string { return nil }

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	runs []domain.RunRecord
	err  error
}

func (m *mockHistoryService) Recent(_ context.Context, _ int) ([]domain.RunRecord, error) {
	return m.runs, m.err
}

func (m *mockHistoryService) Get(_ context.Context, id string) (*domain.RunRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.runs {
		if m.runs[i].ID == id {
			return &m.runs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockHistoryService) Clear(_ context.Context) error { return m.err }

var errUpstream = errors.New("upstream down")

func ptr[T any](v T) *T { return &v }

func sampleResult() *domain.SearchResult {
	origin := domain.Coordinate{Latitude: 30.5095, Longitude: -97.8644}
	near := domain.NewEnrichedLocation(domain.PlaceDetail{
		PlaceID:          "westgate",
		Name:             "Westgate Apartments",
		FormattedAddress: "1 Westgate Blvd",
		Coordinate:       domain.Coordinate{Latitude: 30.5112, Longitude: -97.8720},
		Rating:           ptr(4.2),
		RatingCount:      ptr(118),
		Website:          ptr("https://westgate.example"),
	}, origin)

	return &domain.SearchResult{
		RunID: "run-1",
		Request: domain.SearchRequest{
			OriginAddress: "610 Brashear Lane, Cedar Park, Texas",
			RadiusMiles:   5,
			Keywords:      []string{"apartment", "community"},
		},
		Origin:         origin,
		Locations:      []domain.EnrichedLocation{near},
		CandidateCount: 4,
		Failures:       []domain.DetailResult{{PlaceID: "broken", Err: domain.ErrDetailFetch}},
		KeywordErrors:  []domain.KeywordError{{Keyword: "community", Err: errUpstream}},
		StartedAt:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}
