package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nearby-cli/internal/core/domain"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded search runs",
	Long: `Lists the metadata of recent runs: when they started, the origin and
radius, how many places were found and matched, and how the run ended.
Result sets themselves are never stored.`,
	Args: cobra.NoArgs,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show a single recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded runs",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs to list (0 for all)")
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func requireHistory() error {
	if historyService == nil {
		return errors.New("history is disabled (set history.enabled = true)")
	}
	return nil
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if err := requireHistory(); err != nil {
		return err
	}

	runs, err := historyService.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	for i := range runs {
		r := &runs[i]
		// Format: 2026-03-01 09:00  succeeded  3/6 within 5 mi of <origin>  (1.2s)  <id>
		cmd.Printf("%s  %-10s  %d/%d within %s mi of %s  (%s)  %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Status,
			r.Matches, r.Candidates,
			domain.FormatMiles(r.RadiusMiles),
			r.Origin,
			r.Duration.Round(100*time.Millisecond),
			r.ID,
		)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if err := requireHistory(); err != nil {
		return err
	}

	r, err := historyService.Get(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("run %q not found", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	cmd.Printf("ID:             %s\n", r.ID)
	cmd.Printf("Started:        %s\n", r.StartedAt.Local().Format(time.RFC3339))
	cmd.Printf("Duration:       %s\n", r.Duration)
	cmd.Printf("Origin:         %s\n", r.Origin)
	cmd.Printf("Radius:         %s miles\n", domain.FormatMiles(r.RadiusMiles))
	cmd.Printf("Keywords:       %s\n", strings.Join(r.Keywords, ", "))
	cmd.Printf("Candidates:     %d\n", r.Candidates)
	cmd.Printf("Matches:        %d\n", r.Matches)
	cmd.Printf("Detail errors:  %d\n", r.DetailFailures)
	cmd.Printf("Status:         %s\n", r.Status)
	if r.Error != "" {
		cmd.Printf("Error:          %s\n", r.Error)
	}
	return nil
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	if err := requireHistory(); err != nil {
		return err
	}
	if err := historyService.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	cmd.Println("History cleared.")
	return nil
}
