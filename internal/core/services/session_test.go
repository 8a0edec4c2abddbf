package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nearby-cli/internal/core/domain"
)

// scriptedRunner implements driving.SearchRunner. Runs for radii listed in
// blockOn wait for their context to be cancelled and then still return a
// result, like a slow run that finishes after being superseded.
type scriptedRunner struct {
	mu      sync.Mutex
	blockOn map[float64]bool
	started chan float64
	err     error
}

func newScriptedRunner(blockOn ...float64) *scriptedRunner {
	r := &scriptedRunner{blockOn: make(map[float64]bool), started: make(chan float64, 8)}
	for _, radius := range blockOn {
		r.blockOn[radius] = true
	}
	return r
}

func (r *scriptedRunner) Run(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	r.started <- req.RadiusMiles

	r.mu.Lock()
	block := r.blockOn[req.RadiusMiles]
	err := r.err
	r.mu.Unlock()

	if block {
		<-ctx.Done()
	}
	if err != nil {
		return nil, err
	}
	return &domain.SearchResult{
		RunID:     "run-" + domain.FormatMiles(req.RadiusMiles),
		Request:   req,
		Locations: []domain.EnrichedLocation{{PlaceDetail: domain.PlaceDetail{PlaceID: "p"}}},
		StartedAt: time.Now(),
	}, nil
}

func TestSearchSession_Run_CommitsResult(t *testing.T) {
	session := NewSearchSession(newScriptedRunner())

	result, err := session.Run(context.Background(), defaultRequest(5))

	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Generation)
	assert.Equal(t, uint64(1), session.Generation())

	latest := session.Latest()
	require.NotNil(t, latest)
	assert.Equal(t, 5.0, latest.Request.RadiusMiles)
}

func TestSearchSession_Run_NewerRunSupersedesOlder(t *testing.T) {
	runner := newScriptedRunner(5)
	session := NewSearchSession(runner)

	type outcome struct {
		result *domain.SearchResult
		err    error
	}
	first := make(chan outcome, 1)
	go func() {
		res, err := session.Run(context.Background(), defaultRequest(5))
		first <- outcome{res, err}
	}()
	require.Equal(t, 5.0, <-runner.started)

	second, err := session.SetRadius(context.Background(), 10)
	require.NoError(t, err)
	<-runner.started

	stale := <-first
	assert.Nil(t, stale.result)
	assert.ErrorIs(t, stale.err, domain.ErrSuperseded)

	assert.Equal(t, uint64(2), second.Generation)
	latest := session.Latest()
	require.NotNil(t, latest)
	assert.Equal(t, 10.0, latest.Request.RadiusMiles)
	assert.Equal(t, uint64(2), latest.Generation)
}

func TestSearchSession_Run_FailureKeepsPreviousResult(t *testing.T) {
	runner := newScriptedRunner()
	session := NewSearchSession(runner)

	_, err := session.Run(context.Background(), defaultRequest(5))
	require.NoError(t, err)

	runner.err = &domain.GeocodeError{Address: "x", Status: "ZERO_RESULTS"}
	_, err = session.Run(context.Background(), defaultRequest(7))

	assert.ErrorIs(t, err, domain.ErrGeocode)
	latest := session.Latest()
	require.NotNil(t, latest)
	assert.Equal(t, 5.0, latest.Request.RadiusMiles)
}

func TestSearchSession_SetRadius_WithoutPreviousRun(t *testing.T) {
	session := NewSearchSession(newScriptedRunner())

	_, err := session.SetRadius(context.Background(), 10)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, uint64(0), session.Generation())
}

func TestSearchSession_SetRadius_ReusesLastRequest(t *testing.T) {
	session := NewSearchSession(newScriptedRunner())
	req := domain.SearchRequest{OriginAddress: "Austin, TX", RadiusMiles: 2, Keywords: []string{"loft"}}

	_, err := session.Run(context.Background(), req)
	require.NoError(t, err)
	result, err := session.SetRadius(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, "Austin, TX", result.Request.OriginAddress)
	assert.Equal(t, []string{"loft"}, result.Request.Keywords)
	assert.Equal(t, 3.0, result.Request.RadiusMiles)
}

func TestSearchSession_Latest_ReturnsCopy(t *testing.T) {
	session := NewSearchSession(newScriptedRunner())
	_, err := session.Run(context.Background(), defaultRequest(5))
	require.NoError(t, err)

	latest := session.Latest()
	latest.Locations[0].PlaceID = "mutated"

	assert.Equal(t, "p", session.Latest().Locations[0].PlaceID)
}

func TestSearchSession_Latest_NilBeforeFirstRun(t *testing.T) {
	assert.Nil(t, NewSearchSession(newScriptedRunner()).Latest())
}

func TestSearchSession_Cancel(t *testing.T) {
	runner := newScriptedRunner(5)
	session := NewSearchSession(runner)

	done := make(chan error, 1)
	go func() {
		_, err := session.Run(context.Background(), defaultRequest(5))
		done <- err
	}()
	<-runner.started

	session.Cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, domain.ErrSuperseded)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop after Cancel")
	}
	assert.Nil(t, session.Latest())
}

func TestSearchSession_RecordsHistory(t *testing.T) {
	store := &memoryRunStore{}
	runner := newScriptedRunner()
	session := NewSearchSession(runner)
	session.SetRunStore(store)

	_, err := session.Run(context.Background(), defaultRequest(5))
	require.NoError(t, err)

	runner.err = errors.New("upstream down")
	_, err = session.Run(context.Background(), defaultRequest(6))
	require.Error(t, err)

	records := store.all()
	require.Len(t, records, 2)
	assert.Equal(t, domain.RunStatusSucceeded, records[0].Status)
	assert.Equal(t, "run-5", records[0].ID)
	assert.Equal(t, 1, records[0].Matches)
	assert.Equal(t, domain.RunStatusFailed, records[1].Status)
	assert.Equal(t, "upstream down", records[1].Error)
	assert.Equal(t, 6.0, records[1].RadiusMiles)
}

func TestSearchSession_RecordsSupersededRun(t *testing.T) {
	store := &memoryRunStore{}
	runner := newScriptedRunner(5)
	session := NewSearchSession(runner)
	session.SetRunStore(store)

	done := make(chan error, 1)
	go func() {
		_, err := session.Run(context.Background(), defaultRequest(5))
		done <- err
	}()
	<-runner.started

	_, err := session.SetRadius(context.Background(), 10)
	require.NoError(t, err)
	<-runner.started
	require.ErrorIs(t, <-done, domain.ErrSuperseded)

	var statuses []domain.RunStatus
	for _, r := range store.all() {
		statuses = append(statuses, r.Status)
	}
	assert.ElementsMatch(t, []domain.RunStatus{domain.RunStatusSucceeded, domain.RunStatusSuperseded}, statuses)
}

func TestSearchSession_HistoryFailureIsNotFatal(t *testing.T) {
	session := NewSearchSession(newScriptedRunner())
	session.SetRunStore(&memoryRunStore{saveErr: errors.New("disk full")})

	_, err := session.Run(context.Background(), defaultRequest(5))

	assert.NoError(t, err)
}

func TestSearchSession_InvalidRequestNotRecorded(t *testing.T) {
	store := &memoryRunStore{}
	runner := newScriptedRunner()
	runner.err = domain.ErrInvalidInput
	session := NewSearchSession(runner)
	session.SetRunStore(store)

	_, err := session.Run(context.Background(), domain.SearchRequest{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, store.all())
}
