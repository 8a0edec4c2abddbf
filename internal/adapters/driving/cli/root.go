// Package cli provides the cobra commands of the nearby binary.
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nearby-cli/internal/core/ports/driving"
	"github.com/custodia-labs/nearby-cli/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Services wired by the entry point.
var (
	searchFactory   SearchFactory
	settingsService driving.SettingsService
	historyService  driving.HistoryService
	configPath      string
	configReload    func() error
)

var verbose bool

// SearchFactory builds a search session from the current settings.
// It is called per command so `settings set-key` works before a key exists.
type SearchFactory func() (driving.ProximitySearch, error)

// Services holds the dependencies of the command tree.
type Services struct {
	// Search builds the pipeline. Required by search, watch, mcp and tui.
	Search SearchFactory

	// Settings reads and writes configuration.
	Settings driving.SettingsService

	// History exposes recorded runs. Nil when history is disabled.
	History driving.HistoryService

	// ConfigPath is the config file watched by `nearby watch`.
	ConfigPath string

	// Reload re-reads the config file after an external edit.
	Reload func() error
}

var rootCmd = &cobra.Command{
	Use:   "nearby",
	Short: "Find places near an address",
	Long: `nearby resolves an origin address, searches Google Places for each
keyword around it, enriches every unique hit with place details and lists the
locations within the radius, nearest first.

Set an API key first:
  nearby settings set-key

Then search:
  nearby search --radius 5 --keyword apartment`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logs")
}

// Configure injects the services used by all commands.
func Configure(s Services) {
	searchFactory = s.Search
	settingsService = s.Settings
	historyService = s.History
	configPath = s.ConfigPath
	configReload = s.Reload
}

// SetVersion sets the version reported by `nearby version`.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Command returns the root command, for callers that need ExecuteContext.
func Command() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func newSearch() (driving.ProximitySearch, error) {
	if searchFactory == nil {
		return nil, errors.New("search service not configured")
	}
	return searchFactory()
}
