package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/startupmgr/internal/output"
)

var (
	listLocation   string
	listEnabled    bool
	listDisabled   bool
	listHideSystem bool
	listSearch     string
	listJSON       bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List programs that launch at logon",
	Long: `Discover startup entries in all four locations and show them in one table.

A location that cannot be read (for example because of permissions) is
reported and skipped; the other locations are still listed.

Entries marked with * are machine-wide and usually need an elevated
prompt to change.`,
	Example: `  startupmgr list
  startupmgr list --disabled
  startupmgr list --location machine-folder
  startupmgr list --search onedrive --json`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listLocation, "location", "", "only show one location (user-registry, machine-registry, user-folder, machine-folder)")
	listCmd.Flags().BoolVar(&listEnabled, "enabled", false, "only show enabled entries")
	listCmd.Flags().BoolVar(&listDisabled, "disabled", false, "only show disabled entries")
	listCmd.Flags().BoolVar(&listHideSystem, "hide-system", false, "hide machine-wide entries")
	listCmd.Flags().StringVar(&listSearch, "search", "", "filter by name, publisher or path (case-insensitive)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print entries as JSON")

	RootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	if listEnabled && listDisabled {
		return fmt.Errorf("--enabled and --disabled are mutually exclusive")
	}
	location, err := parseLocationFlag(listLocation)
	if err != nil {
		return err
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	spinner := output.NewSpinner("Scanning startup locations...")
	spinner.Start()
	discovery := e.catalog.Refresh(commandContext(cmd))
	spinner.Stop()

	filter := entryFilter{
		Location:   location,
		Enabled:    listEnabled,
		Disabled:   listDisabled,
		HideSystem: listHideSystem,
		Search:     listSearch,
	}
	entries := filter.apply(e.catalog.Entries())

	fmt.Fprint(os.Stderr, output.RenderFailures(discovery.Failures))

	if listJSON {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode entries: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Print(output.RenderEntryTable(entries))
	fmt.Println()
	fmt.Println(output.RenderEntrySummary(entries))

	return nil
}
