package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/startupmgr/internal/startup"
)

var (
	removeLocation string
	removeYes      bool
	removeNoBackup bool
)

var removeCmd = &cobra.Command{
	Use:   "remove <name>...",
	Short: "Delete startup entries",
	Long: `Delete entries from their location. Removing a disabled entry discards
the copy kept for it.

A backup of the full entry set is written before anything is removed
(unless --no-backup), so 'startupmgr restore latest --apply' can undo it.
The backup keeps a copy of each startup-folder file for that purpose.`,
	Example: `  startupmgr remove OldTool
  startupmgr remove OldTool Helper --yes
  startupmgr remove Updater --location machine-folder`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().StringVar(&removeLocation, "location", "", "location of the entries (required when a name exists in several)")
	removeCmd.Flags().BoolVar(&removeYes, "yes", false, "skip confirmation prompt")
	removeCmd.Flags().BoolVar(&removeNoBackup, "no-backup", false, "skip the automatic backup")

	RootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	location, err := parseLocationFlag(removeLocation)
	if err != nil {
		return err
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := commandContext(cmd)
	e.catalog.Refresh(ctx)

	sel := selectEntries(e.catalog.Entries(), args, location, startup.VerbRemove)
	if len(sel.targets) == 0 {
		return reportResults(startup.VerbRemove, sel.failed)
	}

	fmt.Println("Entries to remove:")
	for _, t := range sel.targets {
		fmt.Printf("  - %s (%s) %s\n", t.Name, t.Location, t.Path)
	}
	fmt.Println()

	if !removeYes && !confirm(fmt.Sprintf("Remove %d entries?", len(sel.targets))) {
		fmt.Println("Removal cancelled.")
		return nil
	}

	if !removeNoBackup {
		id, err := e.snapshots.Capture(e.catalog.Entries())
		if err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
		fmt.Printf("Backup saved: %s\n", id)
	}

	results := append(sel.failed, e.catalog.ApplyAll(ctx, startup.VerbRemove, sel.targets)...)
	return reportResults(startup.VerbRemove, results)
}
