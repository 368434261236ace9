package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/startupmgr/internal/output"
	"github.com/blackwell-systems/startupmgr/internal/snapshots"
)

var (
	backupList        bool
	backupCleanupDays int
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Save the current startup entries to a backup file",
	Long: `Write every discovered entry, enabled and disabled, to a timestamped
JSON file in the backup directory.

Backups are named backup_<yyyyMMdd>_<HHmmss>.json (UTC).`,
	Example: `  startupmgr backup
  startupmgr backup --list
  startupmgr backup --cleanup-days 30`,
	RunE: runBackup,
}

func init() {
	backupCmd.Flags().BoolVar(&backupList, "list", false, "list existing backups")
	backupCmd.Flags().IntVar(&backupCleanupDays, "cleanup-days", 0, "delete backups older than N days")

	RootCmd.AddCommand(backupCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	if backupCleanupDays < 0 {
		return fmt.Errorf("--cleanup-days must be positive")
	}

	if backupList || backupCleanupDays > 0 {
		settings, err := loadSettings()
		if err != nil {
			return err
		}
		mgr := snapshots.New(settings.BackupDir, snapshots.WithLogger(newLogger(settings)))

		if backupCleanupDays > 0 {
			removed, err := mgr.Cleanup(time.Duration(backupCleanupDays) * 24 * time.Hour)
			if err != nil {
				return fmt.Errorf("failed to clean up backups: %w", err)
			}
			fmt.Printf("Deleted %d backup(s) older than %d days\n", removed, backupCleanupDays)
		}
		if backupList {
			return listBackups(mgr)
		}
		return nil
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	discovery := e.catalog.Refresh(commandContext(cmd))
	if len(discovery.Failures) > 0 {
		fmt.Print(output.RenderFailures(discovery.Failures))
		fmt.Println("The backup will not contain entries from the locations above.")
	}

	entries := e.catalog.Entries()
	id, err := e.snapshots.Capture(entries)
	if err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	fmt.Printf("✓ Backup saved: %s (%d entries)\n", id, len(entries))
	fmt.Printf("  Directory: %s\n", e.snapshots.Dir())
	return nil
}

func listBackups(mgr *snapshots.Manager) error {
	summaries, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	fmt.Print(output.RenderSnapshotTable(summaries))
	if len(summaries) > 0 {
		fmt.Printf("\nRestore with: startupmgr restore <id> --apply\n")
	}
	return nil
}
