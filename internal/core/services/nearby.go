package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/nearby-cli/internal/core/domain"
	"github.com/custodia-labs/nearby-cli/internal/core/ports/driven"
	"github.com/custodia-labs/nearby-cli/internal/logger"
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// ContextSleep is the production Sleeper.
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NearbySearchFetcher retrieves every page of a keyword nearby search.
type NearbySearchFetcher struct {
	searcher   driven.NearbySearcher
	tokenDelay time.Duration
	maxPages   int
	sleep      Sleeper
}

// NewNearbySearchFetcher creates a fetcher with the default token delay
// and page cap.
func NewNearbySearchFetcher(searcher driven.NearbySearcher) *NearbySearchFetcher {
	return &NearbySearchFetcher{
		searcher:   searcher,
		tokenDelay: domain.DefaultPageTokenDelay,
		maxPages:   domain.DefaultMaxPages,
		sleep:      ContextSleep,
	}
}

// SetTokenDelay sets the wait before a next_page_token is used.
func (f *NearbySearchFetcher) SetTokenDelay(d time.Duration) {
	if d >= 0 {
		f.tokenDelay = d
	}
}

// SetMaxPages caps the pages followed per keyword. Zero or less keeps the default.
func (f *NearbySearchFetcher) SetMaxPages(n int) {
	if n > 0 {
		f.maxPages = n
	}
}

// SetSleeper replaces the wait function. Used by tests.
func (f *NearbySearchFetcher) SetSleeper(s Sleeper) {
	if s != nil {
		f.sleep = s
	}
}

// SearchAll returns the concatenated hits of every page for keyword, in
// page order. Any failed page fails the whole keyword.
func (f *NearbySearchFetcher) SearchAll(
	ctx context.Context, origin domain.Coordinate, radiusMeters float64, keyword string,
) ([]domain.RawPlaceRef, error) {
	query := driven.NearbyQuery{
		Location:     origin,
		RadiusMeters: radiusMeters,
		Keyword:      keyword,
	}

	var all []domain.RawPlaceRef
	for page := 1; ; page++ {
		if page > f.maxPages {
			return nil, &domain.PlacesSearchError{
				Keyword: keyword,
				Page:    page,
				Err:     fmt.Errorf("page limit %d exceeded", f.maxPages),
			}
		}

		if query.PageToken != "" {
			// Tokens are not valid immediately after they are issued.
			logger.Debug("Waiting %s before page %d of %q", f.tokenDelay, page, keyword)
			if err := f.sleep(ctx, f.tokenDelay); err != nil {
				return nil, &domain.PlacesSearchError{Keyword: keyword, Page: page, Err: err}
			}
		}

		result, err := f.searcher.NearbyPage(ctx, query)
		if err != nil {
			return nil, wrapPageError(keyword, page, err)
		}

		logger.Debug("Keyword %q page %d: %d hits", keyword, page, len(result.Results))
		all = append(all, result.Results...)

		if result.NextPageToken == "" {
			break
		}
		query.PageToken = result.NextPageToken
	}

	return all, nil
}

// wrapPageError stamps keyword and page onto err, keeping any upstream status.
func wrapPageError(keyword string, page int, err error) error {
	var searchErr *domain.PlacesSearchError
	if errors.As(err, &searchErr) {
		return &domain.PlacesSearchError{
			Keyword: keyword,
			Page:    page,
			Status:  searchErr.Status,
			Err:     searchErr.Err,
		}
	}
	return &domain.PlacesSearchError{Keyword: keyword, Page: page, Err: err}
}
