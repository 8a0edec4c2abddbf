package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nearby-cli/internal/adapters/driving/tui"
)

// runProgram starts the Bubbletea program. Tests replace it to avoid
// taking over the terminal.
var runProgram = func(app *tui.App) error {
	return app.Run()
}

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Explore nearby places interactively",
	Long: `Launch the interactive radius explorer.

The explorer runs a search with the configured origin and radius, then lets
you widen or narrow the radius and rerun instantly. A run that is overtaken by
a newer one is discarded.

Controls:
  +/-      - Widen / narrow the radius by one mile
  o, r     - Edit origin / radius
  Tab      - Next field
  Enter    - Search
  ↑/k, ↓/j - Navigate locations
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	// Recover so a rendering bug leaves a stack trace instead of a broken terminal.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	session, err := newSearch()
	if err != nil {
		return err
	}

	app, err := tui.NewApp(tui.NewPorts(session, settingsService))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := runProgram(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
