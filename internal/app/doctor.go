package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/startupmgr/internal/locations"
	"github.com/blackwell-systems/startupmgr/internal/output"
	"github.com/blackwell-systems/startupmgr/internal/startup"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose common issues and check system health",
	Long: `Runs diagnostic checks on your startupmgr installation.

Checks:
  • State directory and database are usable
  • Each startup location can be read
  • Whether the prompt is elevated (needed for machine-wide changes)
  • Backups on disk`,
	RunE: runDoctor,
}

func init() {
	RootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	fmt.Println("Running startupmgr diagnostics...")
	fmt.Println()

	criticalIssues := 0
	warningIssues := 0

	// Check 1: state directory and database
	e, err := openEnv()
	if err != nil {
		fmt.Println("✗ Cannot open state:", err)
		fmt.Println("  Action: check --config-dir or STARTUPMGR_HOME")
		fmt.Println()
		fmt.Println("Found 1 critical issue(s).")
		return fmt.Errorf("diagnostics failed")
	}
	defer e.Close()

	fmt.Println("✓ State directory:", e.settings.Dir)
	if info, err := os.Stat(e.settings.DBPath); err == nil {
		fmt.Printf("✓ Database: %s (%s)\n", e.settings.DBPath, output.FormatSize(info.Size()))
	} else {
		fmt.Println("✓ Database:", e.settings.DBPath)
	}

	if disabled, err := e.stash.ListDisabled(); err != nil {
		fmt.Println("✗ Cannot read disabled entries:", err)
		criticalIssues++
	} else {
		fmt.Printf("✓ %d disabled entries kept for re-enabling\n", len(disabled))
	}

	// Check 2: each location is readable
	ctx := commandContext(cmd)
	for _, a := range e.adapters {
		records, err := a.Enumerate(ctx)
		switch {
		case errors.Is(err, startup.ErrAccessDenied):
			fmt.Printf("⚠ %s: access denied\n", a.Kind())
			warningIssues++
		case err != nil:
			fmt.Printf("⚠ %s: %v\n", a.Kind(), err)
			warningIssues++
		default:
			fmt.Printf("✓ %s: %d entries\n", a.Kind(), len(records))
		}
	}
	for kind, dir := range e.folderDirs() {
		if dir == "" {
			fmt.Printf("⚠ %s: folder location unknown\n", kind)
			fmt.Println("  Action: set user_startup_dir / common_startup_dir in the settings file")
			warningIssues++
		}
	}

	// Check 3: elevation
	if locations.Elevated() {
		fmt.Println("✓ Running elevated: machine-wide entries can be changed")
	} else {
		fmt.Println("⚠ Not elevated: machine-wide entries are read-only")
		fmt.Println("  Action: run from an administrator prompt to change them")
		warningIssues++
	}

	// Check 4: backups
	latest, err := e.snapshots.Latest()
	switch {
	case errors.Is(err, startup.ErrNotFound):
		fmt.Println("⚠ No backups yet")
		fmt.Println("  Action: run 'startupmgr backup'")
		warningIssues++
	case err != nil:
		fmt.Println("✗ Cannot read backups:", err)
		criticalIssues++
	default:
		fmt.Printf("✓ Latest backup: %s (%d entries)\n", latest.ID, latest.EntryCount)
	}

	fmt.Println()
	if criticalIssues == 0 && warningIssues == 0 {
		fmt.Println("✓ All checks passed!")
		return nil
	}

	if criticalIssues > 0 {
		fmt.Printf("Found %d critical issue(s) and %d warning(s).\n", criticalIssues, warningIssues)
		return fmt.Errorf("diagnostics failed")
	}

	fmt.Printf("Found %d warning(s). startupmgr is usable.\n", warningIssues)
	return nil
}
