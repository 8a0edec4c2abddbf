package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/nearby-cli/internal/core/domain"
	"github.com/custodia-labs/nearby-cli/internal/core/ports/driven"
	"github.com/custodia-labs/nearby-cli/internal/logger"
)

// DetailEnricher fetches place details in fixed-size concurrent batches.
// A failed lookup drops that place and never fails the batch.
type DetailEnricher struct {
	fetcher   driven.DetailFetcher
	batchSize int
}

// NewDetailEnricher creates an enricher. A batchSize of zero or less
// uses domain.DefaultBatchSize.
func NewDetailEnricher(fetcher driven.DetailFetcher, batchSize int) *DetailEnricher {
	if batchSize <= 0 {
		batchSize = domain.DefaultBatchSize
	}
	return &DetailEnricher{fetcher: fetcher, batchSize: batchSize}
}

// BatchSize returns the number of lookups in flight per batch.
func (e *DetailEnricher) BatchSize() int {
	return e.batchSize
}

// Enrich looks up every place in placeIDs. Batches run one after another;
// the members of a batch run concurrently and are reported in completion
// order. Each ID yields exactly one result.
func (e *DetailEnricher) Enrich(ctx context.Context, placeIDs []string) []domain.DetailResult {
	results := make([]domain.DetailResult, 0, len(placeIDs))

	for start := 0; start < len(placeIDs); start += e.batchSize {
		end := min(start+e.batchSize, len(placeIDs))
		batch := placeIDs[start:end]
		logger.Debug("Fetching details batch %d-%d of %d", start+1, end, len(placeIDs))
		results = append(results, e.enrichBatch(ctx, batch)...)
	}

	return results
}

// EnrichDetails returns only the successful lookups.
func (e *DetailEnricher) EnrichDetails(ctx context.Context, placeIDs []string) []domain.PlaceDetail {
	var details []domain.PlaceDetail
	for _, r := range e.Enrich(ctx, placeIDs) {
		if r.OK() {
			details = append(details, *r.Detail)
		}
	}
	return details
}

func (e *DetailEnricher) enrichBatch(ctx context.Context, batch []string) []domain.DetailResult {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		out = make([]domain.DetailResult, 0, len(batch))
	)

	for _, id := range batch {
		wg.Add(1)
		go func(placeID string) {
			defer wg.Done()
			res := e.fetchOne(ctx, placeID)
			mu.Lock()
			out = append(out, res)
			mu.Unlock()
		}(id)
	}

	wg.Wait()
	return out
}

func (e *DetailEnricher) fetchOne(ctx context.Context, placeID string) domain.DetailResult {
	if err := ctx.Err(); err != nil {
		return domain.DetailResult{PlaceID: placeID, Err: &domain.DetailFetchError{PlaceID: placeID, Err: err}}
	}

	detail, err := e.fetcher.PlaceDetail(ctx, placeID)
	if err == nil && detail == nil {
		err = domain.ErrNotFound
	}
	if err != nil {
		fetchErr := asDetailFetchError(placeID, err)
		logger.Warnw("Place details lookup failed", "place_id", placeID, "error", fetchErr.Error())
		return domain.DetailResult{PlaceID: placeID, Err: fetchErr}
	}

	if detail.PlaceID == "" {
		detail.PlaceID = placeID
	}
	return domain.DetailResult{PlaceID: placeID, Detail: detail}
}

func asDetailFetchError(placeID string, err error) *domain.DetailFetchError {
	var fetchErr *domain.DetailFetchError
	if errors.As(err, &fetchErr) {
		if fetchErr.PlaceID == "" {
			c := *fetchErr
			c.PlaceID = placeID
			return &c
		}
		return fetchErr
	}
	return &domain.DetailFetchError{PlaceID: placeID, Err: err}
}
