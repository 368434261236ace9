package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	configDirFlag string
	verboseFlag   bool

	// RootCmd is the root command for startupmgr
	RootCmd = &cobra.Command{
		Use:   "startupmgr",
		Short: "Inspect and manage programs that launch at logon",
		Long: `startupmgr lists every program registered to start automatically at logon
and lets you add, remove, enable and disable them.

Four locations are inspected:
  • Registry (Current User)    HKCU\SOFTWARE\Microsoft\Windows\CurrentVersion\Run
  • Registry (Local Machine)   HKLM\SOFTWARE\Microsoft\Windows\CurrentVersion\Run
  • Startup Folder (User)      shell:startup
  • Startup Folder (Common)    shell:common startup

Machine-wide locations usually need an elevated prompt to change.

Disabling an entry removes it from Windows and keeps a copy in the
startupmgr state directory, so 'enable' can put it back exactly as it was.

Examples:
  # Show everything
  startupmgr list

  # Show only enabled entries from the user registry
  startupmgr list --location user-registry --enabled

  # Stop an updater from launching, then bring it back
  startupmgr disable "Adobe Updater"
  startupmgr enable "Adobe Updater"

  # Save the current set and restore it later
  startupmgr backup
  startupmgr restore latest --apply`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("startupmgr: manage programs that launch at logon")
			fmt.Println()
			fmt.Println("Run 'startupmgr list' to see registered programs.")
			fmt.Println("Run 'startupmgr --help' for the full reference.")
			return nil
		},
	}
)

func init() {
	RootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "", "state directory (default: $STARTUPMGR_HOME or <user config dir>/startupmgr)")
	RootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "print diagnostic logs to stderr")

	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}
