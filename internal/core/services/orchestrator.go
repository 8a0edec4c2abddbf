package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/nearby-cli/internal/core/domain"
	"github.com/custodia-labs/nearby-cli/internal/core/ports/driven"
	"github.com/custodia-labs/nearby-cli/internal/core/ports/driving"
	"github.com/custodia-labs/nearby-cli/internal/logger"
)

// Ensure SearchOrchestrator implements the interface.
var _ driving.SearchRunner = (*SearchOrchestrator)(nil)

// SearchOrchestrator runs the full pipeline: resolve the origin, search
// every keyword, merge, enrich, measure and filter.
type SearchOrchestrator struct {
	resolver           *GeoResolver
	fetcher            *NearbySearchFetcher
	enricher           *DetailEnricher
	concurrentKeywords bool
	keywordFailure     domain.KeywordFailurePolicy
	now                func() time.Time
}

// NewSearchOrchestrator creates an orchestrator over the three pipeline stages.
// Keywords run sequentially and a failed keyword aborts the run.
func NewSearchOrchestrator(
	resolver *GeoResolver,
	fetcher *NearbySearchFetcher,
	enricher *DetailEnricher,
) *SearchOrchestrator {
	return &SearchOrchestrator{
		resolver:       resolver,
		fetcher:        fetcher,
		enricher:       enricher,
		keywordFailure: domain.KeywordFailureAbort,
		now:            time.Now,
	}
}

// NewSearchOrchestratorFromClient wires all stages to one upstream client
// using the given settings.
func NewSearchOrchestratorFromClient(client driven.PlacesClient, settings domain.SearchSettings) *SearchOrchestrator {
	fetcher := NewNearbySearchFetcher(client)
	fetcher.SetTokenDelay(settings.PageTokenDelay)
	fetcher.SetMaxPages(settings.MaxPages)

	o := NewSearchOrchestrator(
		NewGeoResolver(client),
		fetcher,
		NewDetailEnricher(client, settings.BatchSize),
	)
	o.SetConcurrentKeywords(settings.ConcurrentKeywords)
	o.SetKeywordFailurePolicy(settings.KeywordFailure)
	return o
}

// SetConcurrentKeywords toggles parallel keyword searches.
func (o *SearchOrchestrator) SetConcurrentKeywords(enabled bool) {
	o.concurrentKeywords = enabled
}

// SetKeywordFailurePolicy sets how a failed keyword affects the run.
// Unknown policies are ignored.
func (o *SearchOrchestrator) SetKeywordFailurePolicy(p domain.KeywordFailurePolicy) {
	if p.IsValid() {
		o.keywordFailure = p
	}
}

// Run executes one pipeline run. A run either returns a complete result
// or an error; partial output is never returned alongside an error.
func (o *SearchOrchestrator) Run(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	req, err := req.Normalise()
	if err != nil {
		return nil, err
	}

	started := o.now()
	logger.Section("Proximity Search")
	logger.Debug("Origin: %q, radius: %s mi, keywords: %v", req.OriginAddress, domain.FormatMiles(req.RadiusMiles), req.Keywords)

	origin, err := o.resolver.Resolve(ctx, req.OriginAddress)
	if err != nil {
		return nil, err
	}

	radiusMeters := req.RadiusMeters()
	logger.Debug("Search radius: %.0f m", radiusMeters)

	logger.Section("Nearby Search")
	var (
		keywordResults [][]domain.RawPlaceRef
		keywordErrors  []domain.KeywordError
	)
	if o.concurrentKeywords {
		keywordResults, keywordErrors, err = o.searchConcurrent(ctx, origin, radiusMeters, req.Keywords)
	} else {
		keywordResults, keywordErrors, err = o.searchSequential(ctx, origin, radiusMeters, req.Keywords)
	}
	if err != nil {
		return nil, err
	}

	places := MergePlaces(keywordResults)
	logger.Debug("Unique places: %d", places.Len())

	logger.Section("Place Details")
	details := o.enricher.Enrich(ctx, places.IDs())
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &domain.SearchResult{
		RunID:          uuid.New().String(),
		Request:        req,
		Origin:         origin,
		Locations:      []domain.EnrichedLocation{},
		CandidateCount: places.Len(),
		KeywordErrors:  keywordErrors,
		StartedAt:      started,
	}

	for _, d := range details {
		if !d.OK() {
			result.Failures = append(result.Failures, d)
			continue
		}
		detail := *d.Detail
		if detail.FormattedAddress == "" {
			if ref, ok := places.Get(d.PlaceID); ok {
				detail.FormattedAddress = ref.RoughAddress
			}
		}
		loc := domain.NewEnrichedLocation(detail, origin)
		if loc.WithinRadius(req.RadiusMiles) {
			result.Locations = append(result.Locations, loc)
		}
	}

	sortLocations(result.Locations)
	result.Duration = o.now().Sub(started)

	logger.Info("%s (%d candidates, %d detail failures)", result.Summary(), result.CandidateCount, len(result.Failures))
	return result, nil
}

func (o *SearchOrchestrator) searchSequential(
	ctx context.Context, origin domain.Coordinate, radiusMeters float64, keywords []string,
) ([][]domain.RawPlaceRef, []domain.KeywordError, error) {
	results := make([][]domain.RawPlaceRef, 0, len(keywords))
	var skipped []domain.KeywordError

	for _, kw := range keywords {
		refs, err := o.fetcher.SearchAll(ctx, origin, radiusMeters, kw)
		if err != nil {
			if o.keywordFailure == domain.KeywordFailureAbort || ctx.Err() != nil {
				return nil, nil, err
			}
			logger.Warn("Skipping keyword %q: %v", kw, err)
			skipped = append(skipped, domain.KeywordError{Keyword: kw, Err: err})
			continue
		}
		logger.Debug("Keyword %q: %d hits", kw, len(refs))
		results = append(results, refs)
	}

	return results, skipped, nil
}

func (o *SearchOrchestrator) searchConcurrent(
	ctx context.Context, origin domain.Coordinate, radiusMeters float64, keywords []string,
) ([][]domain.RawPlaceRef, []domain.KeywordError, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	collector := NewPlaceCollector(len(keywords))
	errs := make([]error, len(keywords))

	var wg sync.WaitGroup
	for i, kw := range keywords {
		wg.Add(1)
		go func(slot int, keyword string) {
			defer wg.Done()
			refs, err := o.fetcher.SearchAll(ctx, origin, radiusMeters, keyword)
			if err != nil {
				errs[slot] = err
				if o.keywordFailure == domain.KeywordFailureAbort {
					cancel()
				}
				return
			}
			logger.Debug("Keyword %q: %d hits", keyword, len(refs))
			collector.Put(slot, refs)
		}(i, kw)
	}
	wg.Wait()

	var skipped []domain.KeywordError
	for i, err := range errs {
		if err == nil {
			continue
		}
		if o.keywordFailure == domain.KeywordFailureAbort {
			return nil, nil, firstCause(errs)
		}
		logger.Warn("Skipping keyword %q: %v", keywords[i], err)
		skipped = append(skipped, domain.KeywordError{Keyword: keywords[i], Err: err})
	}

	return [][]domain.RawPlaceRef{collector.Merge().orderedRefs()}, skipped, nil
}

// firstCause prefers an upstream failure over the cancellations it triggered.
func firstCause(errs []error) error {
	var first error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if first == nil {
			first = err
		}
		if !errors.Is(err, context.Canceled) {
			return err
		}
	}
	return first
}

// sortLocations orders by distance, then name, then place ID.
func sortLocations(locs []domain.EnrichedLocation) {
	sort.SliceStable(locs, func(i, j int) bool {
		if locs[i].DistanceMiles != locs[j].DistanceMiles {
			return locs[i].DistanceMiles < locs[j].DistanceMiles
		}
		if locs[i].Name != locs[j].Name {
			return locs[i].Name < locs[j].Name
		}
		return locs[i].PlaceID < locs[j].PlaceID
	})
}
