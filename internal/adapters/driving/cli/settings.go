package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/nearby-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change the search defaults and the Google Maps client settings.

Settings live in ~/.nearby/config.toml. The NEARBY_GOOGLE_API_KEY environment
variable overrides the stored API key.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a single setting by its config key.

Lists take comma-separated values:
  nearby settings set search.keywords "apartment,apartment complex,community"

Run "nearby settings keys" for the full list of keys.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsSetKeyCmd = &cobra.Command{
	Use:   "set-key [api-key]",
	Short: "Store the Google Maps API key",
	Long: `Store the Google Maps Platform API key used for geocoding, nearby search
and place details. Without an argument the key is read without echo.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsSetKey,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable config keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsSetKeyCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func requireSettings() error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return nil
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Origin: %s\n", settings.Search.Origin)
	cmd.Printf("  Radius: %s miles\n", domain.FormatMiles(settings.Search.RadiusMiles))
	cmd.Printf("  Keywords: %s\n", strings.Join(settings.Search.Keywords, ", "))
	cmd.Printf("  Details batch size: %d\n", settings.Search.BatchSize)
	cmd.Printf("  Page token delay: %s\n", settings.Search.PageTokenDelay)
	cmd.Printf("  Max pages per keyword: %d\n", settings.Search.MaxPages)
	cmd.Printf("  Concurrent keywords: %t\n", settings.Search.ConcurrentKeywords)
	cmd.Printf("  On keyword failure: %s\n", settings.Search.KeywordFailure)
	cmd.Println()

	cmd.Println("[Google]")
	cmd.Printf("  API Key: %s\n", settings.Google.MaskedAPIKey())
	cmd.Printf("  Base URL: %s\n", settings.Google.BaseURL)
	cmd.Printf("  Timeout: %s\n", settings.Google.Timeout)
	cmd.Printf("  Rate limit: %g req/s (burst %d)\n", settings.Google.RequestsPerSecond, settings.Google.Burst)
	status := "configured"
	if !settings.Google.IsConfigured() {
		status = "not configured (run: nearby settings set-key)"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[History]")
	cmd.Printf("  Enabled: %t\n", settings.History.Enabled)

	if configPath != "" {
		cmd.Println()
		cmd.Printf("Config file: %s\n", configPath)
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}

func runSettingsSetKey(cmd *cobra.Command, args []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	var key string
	if len(args) == 1 {
		key = args[0]
	} else {
		cmd.Print("Google Maps API key: ")
		key = readPassword(cmd.InOrStdin())
		cmd.Println()
	}

	if err := settingsService.SetAPIKey(key); err != nil {
		return err
	}
	cmd.Printf("API key saved (%s)\n", domain.GoogleSettings{APIKey: strings.TrimSpace(key)}.MaskedAPIKey())
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}
	for _, k := range settingsService.Keys() {
		cmd.Println(k)
	}
	return nil
}

// readPassword reads a line without echo when in is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	// Fallback to regular input
	input, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(input)
}
