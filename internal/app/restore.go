package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/startupmgr/internal/output"
	"github.com/blackwell-systems/startupmgr/internal/snapshots"
	"github.com/blackwell-systems/startupmgr/internal/startup"
)

var (
	restoreList  bool
	restoreApply bool
	restoreYes   bool
)

var restoreCmd = &cobra.Command{
	Use:   "restore [backup-id | latest]",
	Short: "Show or re-apply a backup",
	Long: `Load a backup and show the entries it contains.

With --apply, the live system is brought in line with the backup:
  • entries missing from the system are added back
  • entries whose enabled state differs are enabled or disabled

Entries that exist now but are not in the backup are left alone.
Startup-folder files are re-added from the copy kept with the backup when
the original file is gone.`,
	Example: `  startupmgr restore --list
  startupmgr restore latest
  startupmgr restore backup_20261016_081500 --apply --yes`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRestore,
}

func init() {
	restoreCmd.Flags().BoolVar(&restoreList, "list", false, "list available backups")
	restoreCmd.Flags().BoolVar(&restoreApply, "apply", false, "apply the backup to the live system")
	restoreCmd.Flags().BoolVar(&restoreYes, "yes", false, "skip confirmation prompt")

	RootCmd.AddCommand(restoreCmd)
}

// restoreStep is one mutation needed to bring the live set in line with a
// backup.
type restoreStep struct {
	verbs []startup.Verb
	entry startup.Entry
}

// planRestore compares a backup with the live entries.
func planRestore(backup, live []startup.Entry) []restoreStep {
	current := make(map[startup.Key]startup.Entry, len(live))
	for _, e := range live {
		current[e.Key()] = e
	}

	var steps []restoreStep
	for _, want := range backup {
		have, ok := current[want.Key()]
		switch {
		case !ok && want.Enabled:
			steps = append(steps, restoreStep{verbs: []startup.Verb{startup.VerbAdd}, entry: want})
		case !ok:
			steps = append(steps, restoreStep{verbs: []startup.Verb{startup.VerbAdd, startup.VerbDisable}, entry: want})
		case have.Enabled && !want.Enabled:
			steps = append(steps, restoreStep{verbs: []startup.Verb{startup.VerbDisable}, entry: have})
		case !have.Enabled && want.Enabled:
			steps = append(steps, restoreStep{verbs: []startup.Verb{startup.VerbEnable}, entry: have})
		}
	}
	return steps
}

func runRestore(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	if restoreList {
		return listBackups(e.snapshots)
	}

	if len(args) == 0 {
		return fmt.Errorf("backup ID or 'latest' required\n\nUsage: startupmgr restore [backup-id | latest]\n\nUse 'startupmgr restore --list' to see available backups")
	}

	id := args[0]
	if strings.EqualFold(id, "latest") {
		latest, err := e.snapshots.Latest()
		if errors.Is(err, startup.ErrNotFound) {
			return fmt.Errorf("no backups available\n\nRun 'startupmgr backup' to create one")
		}
		if err != nil {
			return fmt.Errorf("failed to find latest backup: %w", err)
		}
		id = latest.ID
		fmt.Printf("Using latest backup: %s\n", id)
	}

	snap, err := e.snapshots.Restore(id)
	if errors.Is(err, startup.ErrNotFound) {
		return fmt.Errorf("backup %s not found\n\nRun 'startupmgr restore --list' to see available backups", id)
	}
	if err != nil {
		return fmt.Errorf("failed to load backup %s: %w", id, err)
	}

	fmt.Printf("\nBackup Details:\n")
	fmt.Printf("  ID: %s\n", id)
	fmt.Printf("  Created: %s\n", snap.Timestamp.UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Printf("  Entries: %d\n", len(snap.Entries))
	fmt.Println()

	if !restoreApply {
		e.catalog.Replace(snap.Entries)
		entries := e.catalog.Entries()
		fmt.Print(output.RenderEntryTable(entries))
		fmt.Println()
		fmt.Println(output.RenderEntrySummary(entries))
		fmt.Printf("\nApply with: startupmgr restore %s --apply\n", id)
		return nil
	}

	return applyBackup(cmd, e, id, snap)
}

func applyBackup(cmd *cobra.Command, e *env, id string, snap *snapshots.Snapshot) error {
	ctx := commandContext(cmd)
	e.catalog.Refresh(ctx)

	steps := planRestore(snap.Entries, e.catalog.Entries())
	if len(steps) == 0 {
		fmt.Println("✓ The system already matches this backup.")
		return nil
	}

	fmt.Println("Changes to apply:")
	for _, s := range steps {
		fmt.Printf("  - %s %s (%s)\n", joinVerbs(s.verbs), s.entry.Name, s.entry.Location)
	}
	fmt.Println()

	if !restoreYes && !confirm(fmt.Sprintf("Apply %d changes?", len(steps))) {
		fmt.Println("Restore cancelled.")
		return nil
	}

	counter := output.NewCounter(len(steps), "Restoring")
	var results []startup.Result
	for _, s := range steps {
		counter.Step(s.entry.Name)
		results = append(results, applyStep(ctx, e, id, s))
	}
	counter.Done()

	return reportResults("restore", results)
}

// applyStep runs the verbs of one step in order, stopping at the first
// failure. A folder entry whose file is gone is added from the copy kept
// with backup id.
func applyStep(ctx context.Context, e *env, id string, s restoreStep) startup.Result {
	entry := s.entry
	var r startup.Result
	for _, verb := range s.verbs {
		target := entry
		if verb == startup.VerbAdd && !entry.Location.IsRegistry() {
			source, err := restoreSource(e.snapshots, id, entry)
			if err != nil {
				return startup.Result{Entry: entry, Err: err}
			}
			target.Path = source
		}

		r = e.catalog.Apply(ctx, verb, target)
		if r.Err != nil {
			r.Entry.Path = entry.Path
			return r
		}
		r.Entry.Path = entry.Path
		entry = r.Entry
	}
	return r
}

// restoreSource picks the file a startup-folder entry is re-added from.
func restoreSource(mgr *snapshots.Manager, id string, entry startup.Entry) (string, error) {
	if _, err := os.Stat(entry.Path); err == nil {
		return entry.Path, nil
	}
	if kept, ok := mgr.KeptFile(id, entry); ok {
		return kept, nil
	}
	return "", fmt.Errorf("%s is gone and backup %s holds no copy of it: %w", entry.Path, id, startup.ErrNotFound)
}

func joinVerbs(verbs []startup.Verb) string {
	parts := make([]string, len(verbs))
	for i, v := range verbs {
		parts[i] = string(v)
	}
	return strings.Join(parts, "+")
}
