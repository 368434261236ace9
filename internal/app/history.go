package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/startupmgr/internal/output"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent changes made through startupmgr",
	Long: `Show the journal of add, remove, enable and disable operations,
newest first, including the ones that failed.`,
	Example: `  startupmgr history
  startupmgr history --limit 100`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of events to show (0 for all)")

	RootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	events, err := e.store.ListEvents(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	fmt.Print(output.RenderJournalTable(events))

	if total, err := e.store.GetEventCount(); err == nil && total > len(events) {
		fmt.Printf("\nShowing %d of %d events. Use --limit 0 to see all.\n", len(events), total)
	}
	return nil
}
