package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/nearby-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/nearby-cli/internal/core/domain"
	"github.com/custodia-labs/nearby-cli/internal/core/ports/driving"
	"github.com/custodia-labs/nearby-cli/internal/core/services"
)

// fakeSearch implements driving.ProximitySearch for testing.
type fakeSearch struct {
	mu         sync.Mutex
	requests   []domain.SearchRequest
	generation uint64
	result     *domain.SearchResult
	err        error
}

func (f *fakeSearch) Run(_ context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generation++
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	result := f.result.Clone()
	if result == nil {
		result = &domain.SearchResult{}
	}
	result.Generation = f.generation
	result.Request = req
	return result, nil
}

func (f *fakeSearch) SetRadius(ctx context.Context, radiusMiles float64) (*domain.SearchResult, error) {
	f.mu.Lock()
	req := f.requests[len(f.requests)-1]
	f.mu.Unlock()
	req.RadiusMiles = radiusMiles
	return f.Run(ctx, req)
}

func (f *fakeSearch) Latest() *domain.SearchResult { return nil }

func (f *fakeSearch) Generation() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generation
}

func (f *fakeSearch) Requests() []domain.SearchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.SearchRequest(nil), f.requests...)
}

func ptr[T any](v T) *T { return &v }

// sampleResult has two locations measured from Cedar Park.
func sampleResult() *domain.SearchResult {
	return &domain.SearchResult{
		RunID:          "run-1",
		Origin:         domain.Coordinate{Latitude: 30.5095, Longitude: -97.8644},
		CandidateCount: 4,
		Locations: []domain.EnrichedLocation{
			{
				PlaceDetail: domain.PlaceDetail{
					PlaceID:          "westgate",
					Name:             "Westgate Apartments",
					FormattedAddress: "1 Westgate Blvd, Cedar Park, TX 78613",
					Coordinate:       domain.Coordinate{Latitude: 30.5112, Longitude: -97.8720},
					Rating:           ptr(4.2),
					RatingCount:      ptr(118),
					Phone:            ptr("(512) 555-0100"),
					Website:          ptr("https://westgate.example"),
				},
				DistanceMiles: 0.4674,
			},
			{
				PlaceDetail: domain.PlaceDetail{
					PlaceID:          "lakeline",
					Name:             "Lakeline Commons",
					FormattedAddress: "9 Lakeline Mall Dr, Austin, TX",
				},
				DistanceMiles: 3.912,
			},
		},
	}
}

type testServices struct {
	search   *fakeSearch
	settings *services.SettingsService
	runs     *memory.RunStore
}

// setupTestServices wires in-memory services into the command tree and
// restores the unconfigured state when the test ends.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()
	t.Setenv(services.EnvAPIKey, "")
	resetContexts(rootCmd)

	ts := &testServices{
		search:   &fakeSearch{result: sampleResult()},
		settings: services.NewSettingsService(memory.NewConfigStore()),
		runs:     memory.NewRunStore(),
	}
	Configure(Services{
		Search:     func() (driving.ProximitySearch, error) { return ts.search, nil },
		Settings:   ts.settings,
		History:    services.NewHistoryService(ts.runs),
		ConfigPath: "/tmp/nearby-test/config.toml",
	})

	t.Cleanup(func() {
		Configure(Services{})
		resetFlags()
	})
	return ts
}

// resetFlags clears flag state left behind by earlier executions.
func resetFlags() {
	searchOrigin, searchRadius, searchKeywords, searchJSON = "", 0, nil, false
	historyLimit = 20
	verbose = false
	for _, c := range []*cobra.Command{rootCmd, searchCmd, historyCmd, mcpServeCmd} {
		c.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
		c.PersistentFlags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	}
	resetContexts(rootCmd)
}

// resetContexts drops contexts left on subcommands by earlier executions.
// Cobra only hands the root context to subcommands whose own is nil.
func resetContexts(c *cobra.Command) {
	c.SetContext(nil) //nolint:staticcheck
	for _, sub := range c.Commands() {
		resetContexts(sub)
	}
}

// executeCommand runs the root command with args and returns everything
// written to stdout and stderr.
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}
