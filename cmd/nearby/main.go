// Command nearby finds places within a radius of an address.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/nearby-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/nearby-cli/internal/adapters/driven/googlemaps"
	"github.com/custodia-labs/nearby-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/nearby-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/nearby-cli/internal/core/domain"
	"github.com/custodia-labs/nearby-cli/internal/core/ports/driven"
	"github.com/custodia-labs/nearby-cli/internal/core/ports/driving"
	"github.com/custodia-labs/nearby-cli/internal/core/services"
	"github.com/custodia-labs/nearby-cli/internal/logger"
)

// version is set via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		// cobra has already printed command errors.
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open config: %v\n", err)
		return err
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read settings: %v\n", err)
		return err
	}

	var (
		runStore       driven.RunStore
		historyService driving.HistoryService
	)
	if settings.History.Enabled {
		store, err := sqlite.NewStore("")
		if err != nil {
			// History is optional; searching still works without it.
			logger.Warn("Run history unavailable: %v", err)
		} else {
			defer store.Close()
			runStore = store.RunStore()
			historyService = services.NewHistoryService(runStore)
		}
	}

	cli.SetVersion(version)
	cli.Configure(cli.Services{
		Search:     newSearchFactory(settingsService, runStore),
		Settings:   settingsService,
		History:    historyService,
		ConfigPath: configStore.Path(),
		Reload:     configStore.Load,
	})

	return cli.Command().ExecuteContext(ctx)
}

// newSearchFactory defers building the Google client until a command
// needs it, so `nearby settings set-key` works before a key exists.
func newSearchFactory(settingsService driving.SettingsService, runStore driven.RunStore) cli.SearchFactory {
	return func() (driving.ProximitySearch, error) {
		settings, err := settingsService.Get()
		if err != nil {
			return nil, fmt.Errorf("failed to read settings: %w", err)
		}
		if err := settings.Validate(); err != nil {
			return nil, err
		}

		client, err := googlemaps.NewClient(googlemaps.ConfigFromSettings(settings.Google))
		if err != nil {
			if errors.Is(err, domain.ErrMissingAPIKey) {
				return nil, fmt.Errorf("%w (run: nearby settings set-key)", err)
			}
			return nil, err
		}

		session := services.NewSearchSession(services.NewSearchOrchestratorFromClient(client, settings.Search))
		if runStore != nil {
			session.SetRunStore(runStore)
		}
		return session, nil
	}
}
