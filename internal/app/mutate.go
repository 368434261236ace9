package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/blackwell-systems/startupmgr/internal/output"
	"github.com/blackwell-systems/startupmgr/internal/startup"
)

var errAmbiguous = errors.New("name matches more than one entry; pass --location, or the file name for startup-folder entries")

// selection is the outcome of resolving command-line names to entries.
type selection struct {
	targets []startup.Entry
	// failed holds names that matched nothing usable.
	failed []startup.Result
	// skipped holds entries already in the requested state.
	skipped []startup.Entry
}

// selectEntries resolves names against entries. Each name must match exactly
// one entry, optionally restricted to location. Startup-folder entries also
// match their file name (App.lnk).
func selectEntries(entries []startup.Entry, names []string, location startup.LocationKind, verb startup.Verb) selection {
	var sel selection
	for _, name := range names {
		var matches []startup.Entry
		for _, e := range entries {
			if !matchesName(e, name) {
				continue
			}
			if location != "" && e.Location != location {
				continue
			}
			matches = append(matches, e)
		}

		switch {
		case len(matches) == 0:
			sel.failed = append(sel.failed, startup.Result{
				Entry: startup.Entry{Name: name, Location: location},
				Err:   startup.ErrNotFound,
			})
		case len(matches) > 1:
			sel.failed = append(sel.failed, startup.Result{
				Entry: startup.Entry{Name: name},
				Err:   errAmbiguous,
			})
		case verb == startup.VerbEnable && matches[0].Enabled,
			verb == startup.VerbDisable && !matches[0].Enabled:
			sel.skipped = append(sel.skipped, matches[0])
		default:
			sel.targets = append(sel.targets, matches[0])
		}
	}
	return sel
}

func matchesName(e startup.Entry, name string) bool {
	if strings.EqualFold(e.Name, name) {
		return true
	}
	return !e.Location.IsRegistry() && strings.EqualFold(e.FileName(), name)
}

// reportResults prints per-entry outcomes and returns an error when any of
// them failed.
func reportResults(verb startup.Verb, results []startup.Result) error {
	fmt.Print(output.RenderResults(verb, results))

	failed := 0
	denied := false
	for _, r := range results {
		if r.Err == nil {
			continue
		}
		failed++
		if errors.Is(r.Err, startup.ErrAccessDenied) && r.Entry.Location.Privileged() {
			denied = true
		}
	}

	if denied {
		fmt.Fprintln(os.Stderr, "\nMachine-wide entries need an elevated prompt. Re-run as administrator.")
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d operations failed", failed, len(results))
	}
	return nil
}

func printSkipped(verb startup.Verb, skipped []startup.Entry) {
	for _, e := range skipped {
		fmt.Printf("- %s is already %sd (%s)\n", e.Name, verb, e.Location)
	}
}
