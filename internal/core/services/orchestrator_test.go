package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nearby-cli/internal/core/domain"
	"github.com/custodia-labs/nearby-cli/internal/core/ports/driven"
)

// cedarParkFixture builds a client around the default origin:
//
//	westgate  0.47 mi
//	mesa      0.80 mi (no formatted address)
//	lakeline  3.38 mi
//	brushy    5.14 mi
//	liberty   23.91 mi
//	broken    details lookup fails
func cedarParkFixture() mockClient {
	searcher := newMockSearcher()
	searcher.addPage("apartment", "", driven.NearbyPage{
		Results:       []domain.RawPlaceRef{ref("westgate", "Westgate Blvd"), ref("lakeline", "Lakeline Blvd")},
		NextPageToken: "apt-2",
	})
	searcher.addPage("apartment", "apt-2", driven.NearbyPage{
		Results: []domain.RawPlaceRef{ref("liberty", "Liberty Hill")},
	})
	searcher.addPage("apartment complex", "", driven.NearbyPage{
		Results: []domain.RawPlaceRef{ref("westgate", "dup"), ref("mesa", "Mesa Dr")},
	})
	searcher.addPage("apartments", "", driven.NearbyPage{})
	searcher.addPage("community", "", driven.NearbyPage{
		Results: []domain.RawPlaceRef{ref("broken", "Nowhere"), ref("brushy", "Brushy Creek")},
	})

	details := newMockDetails()
	details.add(detail("westgate", "Westgate Apartments", 30.5112, -97.8720))
	mesa := detail("mesa", "Mesa Ridge", 30.52, -97.87)
	mesa.FormattedAddress = ""
	details.add(mesa)
	details.add(detail("lakeline", "Lakeline Villas", 30.54, -97.82))
	details.add(detail("brushy", "Brushy Creek Commons", 30.46, -97.80))
	details.add(detail("liberty", "Liberty Hill Lofts", 30.7, -98.2))
	details.fail("broken", &domain.DetailFetchError{Status: "NOT_FOUND"})

	return mockClient{
		mockGeocoder: &mockGeocoder{results: []domain.Coordinate{cedarPark}},
		mockSearcher: searcher,
		mockDetails:  details,
	}
}

func newTestOrchestrator(client driven.PlacesClient) *SearchOrchestrator {
	settings := domain.DefaultAppSettings().Search
	o := NewSearchOrchestratorFromClient(client, settings)
	sleeper := &noSleep{}
	o.fetcher.SetSleeper(sleeper.sleep)
	return o
}

func defaultRequest(radius float64) domain.SearchRequest {
	return domain.SearchRequest{
		OriginAddress: domain.DefaultOrigin,
		RadiusMiles:   radius,
		Keywords:      domain.DefaultKeywords(),
	}
}

func locationIDs(locs []domain.EnrichedLocation) []string {
	ids := make([]string, 0, len(locs))
	for _, l := range locs {
		ids = append(ids, l.PlaceID)
	}
	return ids
}

func TestSearchOrchestrator_Run_CedarPark(t *testing.T) {
	client := cedarParkFixture()
	o := newTestOrchestrator(client)

	result, err := o.Run(context.Background(), defaultRequest(5))

	require.NoError(t, err)
	assert.Equal(t, cedarPark, result.Origin)
	assert.Equal(t, 6, result.CandidateCount)
	assert.Equal(t, []string{"westgate", "mesa", "lakeline"}, locationIDs(result.Locations))
	assert.NotEmpty(t, result.RunID)
	assert.False(t, result.Partial())

	require.Len(t, result.Failures, 1)
	assert.Equal(t, "broken", result.Failures[0].PlaceID)

	westgate := result.Locations[0]
	assert.InDelta(t, 0.4674, westgate.DistanceMiles, 0.001)
	assert.Equal(t, 0.47, westgate.DisplayDistance())

	// Details without a formatted address fall back to the nearby vicinity.
	assert.Equal(t, "Mesa Dr", result.Locations[1].FormattedAddress)

	assert.Equal(t, "Found 3 location(s) within 5 miles", result.Summary())
	assert.Equal(t, int32(1), client.mockGeocoder.calls.Load(), "origin is geocoded once per run")
}

func TestSearchOrchestrator_Run_RadiusConvertedToMeters(t *testing.T) {
	client := cedarParkFixture()
	o := newTestOrchestrator(client)

	_, err := o.Run(context.Background(), defaultRequest(5))
	require.NoError(t, err)

	for _, q := range client.mockSearcher.recorded() {
		assert.Equal(t, 8047.0, q.RadiusMeters)
		assert.Equal(t, cedarPark, q.Location)
	}
}

func TestSearchOrchestrator_Run_WiderRadius(t *testing.T) {
	o := newTestOrchestrator(cedarParkFixture())

	result, err := o.Run(context.Background(), defaultRequest(10))

	require.NoError(t, err)
	assert.Equal(t, []string{"westgate", "mesa", "lakeline", "brushy"}, locationIDs(result.Locations))
}

func TestSearchOrchestrator_Run_EveryLocationWithinRadius(t *testing.T) {
	o := newTestOrchestrator(cedarParkFixture())

	for _, radius := range []float64{0.5, 1, 3.38, 5, 25} {
		result, err := o.Run(context.Background(), defaultRequest(radius))
		require.NoError(t, err)

		seen := make(map[string]bool)
		for i, loc := range result.Locations {
			assert.LessOrEqual(t, loc.DistanceMiles, radius)
			assert.False(t, seen[loc.PlaceID], "duplicate place %s", loc.PlaceID)
			seen[loc.PlaceID] = true
			if i > 0 {
				assert.GreaterOrEqual(t, loc.DistanceMiles, result.Locations[i-1].DistanceMiles)
			}
		}
	}
}

func TestSearchOrchestrator_Run_NoResults(t *testing.T) {
	client := mockClient{
		mockGeocoder: &mockGeocoder{results: []domain.Coordinate{cedarPark}},
		mockSearcher: newMockSearcher(),
		mockDetails:  newMockDetails(),
	}
	o := newTestOrchestrator(client)

	result, err := o.Run(context.Background(), defaultRequest(5))

	require.NoError(t, err)
	assert.True(t, result.Empty())
	assert.NotNil(t, result.Locations)
	assert.Equal(t, "No results found within 5 miles.", result.Summary())
	assert.Equal(t, int32(0), client.mockDetails.calls.Load())
}

func TestSearchOrchestrator_Run_AllDetailsFail(t *testing.T) {
	client := cedarParkFixture()
	for _, id := range []string{"westgate", "mesa", "lakeline", "brushy", "liberty"} {
		client.mockDetails.fail(id, errors.New("down"))
	}
	o := newTestOrchestrator(client)

	result, err := o.Run(context.Background(), defaultRequest(5))

	require.NoError(t, err)
	assert.True(t, result.Empty())
	assert.Len(t, result.Failures, 6)
}

func TestSearchOrchestrator_Run_GeocodeFailure(t *testing.T) {
	client := cedarParkFixture()
	client.mockGeocoder = &mockGeocoder{}
	o := newTestOrchestrator(client)

	result, err := o.Run(context.Background(), defaultRequest(5))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrGeocode)
	assert.Empty(t, client.mockSearcher.recorded())
	assert.Equal(t, int32(0), client.mockDetails.calls.Load())
}

func TestSearchOrchestrator_Run_KeywordFailureAborts(t *testing.T) {
	client := cedarParkFixture()
	client.mockSearcher.errs["apartments"] = &domain.PlacesSearchError{Status: "OVER_QUERY_LIMIT"}
	o := newTestOrchestrator(client)

	result, err := o.Run(context.Background(), defaultRequest(5))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrPlacesSearch)
	var searchErr *domain.PlacesSearchError
	require.ErrorAs(t, err, &searchErr)
	assert.Equal(t, "apartments", searchErr.Keyword)
	assert.Equal(t, int32(0), client.mockDetails.calls.Load(), "no partial enrichment")
}

func TestSearchOrchestrator_Run_KeywordFailureContinues(t *testing.T) {
	client := cedarParkFixture()
	client.mockSearcher.errs["community"] = errors.New("unavailable")
	o := newTestOrchestrator(client)
	o.SetKeywordFailurePolicy(domain.KeywordFailureContinue)

	result, err := o.Run(context.Background(), defaultRequest(5))

	require.NoError(t, err)
	assert.True(t, result.Partial())
	require.Len(t, result.KeywordErrors, 1)
	assert.Equal(t, "community", result.KeywordErrors[0].Keyword)
	assert.Equal(t, []string{"westgate", "mesa", "lakeline"}, locationIDs(result.Locations))
	assert.Empty(t, result.Failures, "broken was only found by the skipped keyword")
}

func TestSearchOrchestrator_Run_ConcurrentKeywords(t *testing.T) {
	o := newTestOrchestrator(cedarParkFixture())
	o.SetConcurrentKeywords(true)

	result, err := o.Run(context.Background(), defaultRequest(5))

	require.NoError(t, err)
	assert.Equal(t, 6, result.CandidateCount)
	assert.Equal(t, []string{"westgate", "mesa", "lakeline"}, locationIDs(result.Locations))
}

func TestSearchOrchestrator_Run_ConcurrentKeywordFailureAborts(t *testing.T) {
	client := cedarParkFixture()
	client.mockSearcher.errs["apartments"] = &domain.PlacesSearchError{Status: "REQUEST_DENIED"}
	o := newTestOrchestrator(client)
	o.SetConcurrentKeywords(true)

	_, err := o.Run(context.Background(), defaultRequest(5))

	var searchErr *domain.PlacesSearchError
	require.ErrorAs(t, err, &searchErr)
	assert.Equal(t, "REQUEST_DENIED", searchErr.Status)
}

func TestSearchOrchestrator_Run_InvalidRequest(t *testing.T) {
	o := newTestOrchestrator(cedarParkFixture())

	tests := []struct {
		name string
		req  domain.SearchRequest
	}{
		{"zero radius", domain.SearchRequest{OriginAddress: "x", RadiusMiles: 0, Keywords: []string{"a"}}},
		{"negative radius", domain.SearchRequest{OriginAddress: "x", RadiusMiles: -1, Keywords: []string{"a"}}},
		{"NaN radius", domain.SearchRequest{OriginAddress: "x", RadiusMiles: math.NaN(), Keywords: []string{"a"}}},
		{"infinite radius", domain.SearchRequest{OriginAddress: "x", RadiusMiles: math.Inf(1), Keywords: []string{"a"}}},
		{"no keywords", domain.SearchRequest{OriginAddress: "x", RadiusMiles: 5}},
		{"blank keywords", domain.SearchRequest{OriginAddress: "x", RadiusMiles: 5, Keywords: []string{" ", ""}}},
		{"no origin", domain.SearchRequest{RadiusMiles: 5, Keywords: []string{"a"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := o.Run(context.Background(), tt.req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSearchOrchestrator_Run_CancelledContext(t *testing.T) {
	o := newTestOrchestrator(cedarParkFixture())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := o.Run(ctx, defaultRequest(5))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSortLocations_TieBreaksByName(t *testing.T) {
	locs := []domain.EnrichedLocation{
		{PlaceDetail: domain.PlaceDetail{PlaceID: "3", Name: "Zeta"}, DistanceMiles: 1},
		{PlaceDetail: domain.PlaceDetail{PlaceID: "2", Name: "Alpha"}, DistanceMiles: 1},
		{PlaceDetail: domain.PlaceDetail{PlaceID: "1", Name: "Mid"}, DistanceMiles: 0.5},
	}

	sortLocations(locs)

	assert.Equal(t, []string{"1", "2", "3"}, locationIDs(locs))
}
