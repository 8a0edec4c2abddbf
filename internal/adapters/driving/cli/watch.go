package cli

import (
	"context"
	"errors"
	"sync"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nearby-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/nearby-cli/internal/core/domain"
	"github.com/custodia-labs/nearby-cli/internal/core/ports/driving"
	"github.com/custodia-labs/nearby-cli/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the search whenever the config file changes",
	Long: `Runs the configured search once, then watches the config file and runs
again whenever it is saved. Editing search.radius_miles or search.origin while
a run is in flight supersedes that run; only the newest result is printed.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if configPath == "" {
		return errors.New("config file not configured")
	}

	session, err := newSearch()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	watcher := file.NewWatcher(configPath)
	changes, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}
	defer watcher.Close()

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", configPath)
	watchLoop(ctx, cmd, session, changes)
	return nil
}

// watchLoop starts a run now and after every change, printing each result
// that is not superseded. It returns when ctx is done or changes closes,
// after in-flight runs have finished.
func watchLoop(ctx context.Context, cmd *cobra.Command, session driving.ProximitySearch, changes <-chan struct{}) {
	var (
		wg    sync.WaitGroup
		outMu sync.Mutex
	)

	start := func() {
		if configReload != nil {
			if err := configReload(); err != nil {
				logger.Warn("reloading config: %v", err)
			}
		}
		req, err := defaultRequest()
		if err != nil {
			outMu.Lock()
			cmd.Printf("Error: %v\n", err)
			outMu.Unlock()
			return
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := session.Run(ctx, req)
			if isSuperseded(err) || errors.Is(err, context.Canceled) {
				logger.Debug("run for radius %s superseded", domain.FormatMiles(req.RadiusMiles))
				return
			}

			outMu.Lock()
			defer outMu.Unlock()
			cmd.Println()
			if err != nil {
				cmd.Printf("Error: search failed: %v\n", err)
				return
			}
			cmd.Printf("Origin: %s\n", result.Request.OriginAddress)
			outputSearchTable(cmd, result)
		}()
	}

	start()
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			logger.Debug("config changed, re-running search")
			start()
		}
	}
}
