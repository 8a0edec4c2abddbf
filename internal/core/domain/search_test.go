package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchRequest_Normalise(t *testing.T) {
	req := SearchRequest{
		OriginAddress: "  610 Brashear Lane, Cedar Park, Texas ",
		RadiusMiles:   5,
		Keywords:      []string{" apartment", "community", "", "apartment", "  "},
	}

	got, err := req.Normalise()

	require.NoError(t, err)
	assert.Equal(t, "610 Brashear Lane, Cedar Park, Texas", got.OriginAddress)
	assert.Equal(t, []string{"apartment", "community"}, got.Keywords)
	assert.Equal(t, 8047.0, got.RadiusMeters())
}

func TestSearchRequest_Normalise_Invalid(t *testing.T) {
	tests := []struct {
		name string
		req  SearchRequest
	}{
		{"missing origin", SearchRequest{RadiusMiles: 5, Keywords: []string{"a"}}},
		{"zero radius", SearchRequest{OriginAddress: "x", Keywords: []string{"a"}}},
		{"negative radius", SearchRequest{OriginAddress: "x", RadiusMiles: -1, Keywords: []string{"a"}}},
		{"NaN radius", SearchRequest{OriginAddress: "x", RadiusMiles: math.NaN(), Keywords: []string{"a"}}},
		{"infinite radius", SearchRequest{OriginAddress: "x", RadiusMiles: math.Inf(1), Keywords: []string{"a"}}},
		{"no keywords", SearchRequest{OriginAddress: "x", RadiusMiles: 5}},
		{"blank keywords", SearchRequest{OriginAddress: "x", RadiusMiles: 5, Keywords: []string{" ", ""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.req.Normalise()
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestSearchResult_Summary(t *testing.T) {
	empty := &SearchResult{Request: SearchRequest{RadiusMiles: 5}}
	assert.True(t, empty.Empty())
	assert.Equal(t, "No results found within 5 miles.", empty.Summary())

	found := &SearchResult{
		Request:   SearchRequest{RadiusMiles: 2.5},
		Locations: []EnrichedLocation{{}, {}},
	}
	assert.False(t, found.Empty())
	assert.Equal(t, "Found 2 location(s) within 2.5 miles", found.Summary())
}

func TestSearchResult_Partial(t *testing.T) {
	r := &SearchResult{}
	assert.False(t, r.Partial())

	r.KeywordErrors = []KeywordError{{Keyword: "community"}}
	assert.True(t, r.Partial())
}

func TestSearchResult_Clone(t *testing.T) {
	orig := &SearchResult{
		Request:   SearchRequest{Keywords: []string{"a"}},
		Locations: []EnrichedLocation{{PlaceDetail: PlaceDetail{PlaceID: "p1"}}},
	}

	c := orig.Clone()
	c.Locations[0].PlaceID = "changed"
	c.Request.Keywords[0] = "b"

	assert.Equal(t, "p1", orig.Locations[0].PlaceID)
	assert.Equal(t, "a", orig.Request.Keywords[0])

	var nilResult *SearchResult
	assert.Nil(t, nilResult.Clone())
}

func TestDetailResult_OK(t *testing.T) {
	assert.True(t, DetailResult{PlaceID: "p", Detail: &PlaceDetail{}}.OK())
	assert.False(t, DetailResult{PlaceID: "p", Err: ErrDetailFetch}.OK())
	assert.False(t, DetailResult{PlaceID: "p"}.OK())
}

func TestFormatMiles(t *testing.T) {
	assert.Equal(t, "5", FormatMiles(5))
	assert.Equal(t, "2.5", FormatMiles(2.5))
	assert.Equal(t, "0.25", FormatMiles(0.25))
	assert.Equal(t, "10", FormatMiles(10))
}

func TestKeywordFailurePolicy_IsValid(t *testing.T) {
	assert.True(t, KeywordFailureAbort.IsValid())
	assert.True(t, KeywordFailureContinue.IsValid())
	assert.False(t, KeywordFailurePolicy("retry").IsValid())
}
