package app

import (
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/startupmgr/internal/startup"
)

var toggleLocation string

var enableCmd = &cobra.Command{
	Use:   "enable <name>...",
	Short: "Re-enable disabled startup entries",
	Long: `Put disabled entries back into the location they were disabled from.

Registry entries get their original command line back; startup-folder
entries get their original file back.`,
	Example: `  startupmgr enable OneDrive
  startupmgr enable Updater --location machine-registry`,
	Args: cobra.MinimumNArgs(1),
	RunE: runToggle(startup.VerbEnable),
}

var disableCmd = &cobra.Command{
	Use:   "disable <name>...",
	Short: "Stop startup entries from launching",
	Long: `Remove entries from Windows while keeping a copy so they can be enabled again.

Each entry is handled independently: a failure for one entry is reported
and the rest are still processed.`,
	Example: `  startupmgr disable OneDrive Teams
  startupmgr disable Updater --location machine-registry`,
	Args: cobra.MinimumNArgs(1),
	RunE: runToggle(startup.VerbDisable),
}

func init() {
	for _, c := range []*cobra.Command{enableCmd, disableCmd} {
		c.Flags().StringVar(&toggleLocation, "location", "", "location of the entries (required when a name exists in several)")
		RootCmd.AddCommand(c)
	}
}

func runToggle(verb startup.Verb) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		location, err := parseLocationFlag(toggleLocation)
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

		sel := selectEntries(e.catalog.Entries(), args, location, verb)
		printSkipped(verb, sel.skipped)

		results := append(sel.failed, e.catalog.ApplyAll(ctx, verb, sel.targets)...)
		return reportResults(verb, results)
	}
}
