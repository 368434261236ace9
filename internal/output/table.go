// Package output provides terminal output utilities for startupmgr.
//
// Table renderers return strings so commands can print or test them. ANSI
// colour is only emitted when stdout is a terminal and NO_COLOR is unset.
package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/startupmgr/internal/snapshots"
	"github.com/blackwell-systems/startupmgr/internal/startup"
	"github.com/blackwell-systems/startupmgr/internal/store"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// RenderEntryTable renders startup entries in the order given.
func RenderEntryTable(entries []startup.Entry) string {
	if len(entries) == 0 {
		return "No startup entries found.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-24s %-20s %-9s %-25s %s\n",
		"Name", "Publisher", "Status", "Location", "Path"))
	sb.WriteString(strings.Repeat("─", 100))
	sb.WriteString("\n")

	for _, e := range entries {
		// Pad before colouring so escape codes do not break alignment.
		status := fmt.Sprintf("%-9s", e.Status())
		if e.Enabled {
			status = colorize(colorGreen, status)
		} else {
			status = colorize(colorGray, status)
		}

		name := e.Name
		if e.IsSystem {
			name += " *"
		}

		sb.WriteString(fmt.Sprintf("%-24s %-20s %s %-25s %s\n",
			truncate(name, 24),
			truncate(e.Publisher, 20),
			status,
			e.Location,
			e.Path))
	}

	return sb.String()
}

// RenderEntrySummary renders the one-line count footer under the entry table.
func RenderEntrySummary(entries []startup.Entry) string {
	enabled := 0
	system := 0
	for _, e := range entries {
		if e.Enabled {
			enabled++
		}
		if e.IsSystem {
			system++
		}
	}

	line := fmt.Sprintf("Total: %d · Enabled: %d · Disabled: %d",
		len(entries), enabled, len(entries)-enabled)
	if system > 0 {
		line += fmt.Sprintf(" · %d machine-wide (*)", system)
	}
	return line
}

// RenderFailures lists locations that could not be read during discovery.
func RenderFailures(failures map[startup.LocationKind]error) string {
	if len(failures) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, kind := range startup.AllLocations {
		err, ok := failures[kind]
		if !ok {
			continue
		}
		sb.WriteString(colorize(colorYellow, "⚠ "))
		sb.WriteString(fmt.Sprintf("%s skipped: %v\n", kind, err))
	}
	return sb.String()
}

// RenderResults reports the per-entry outcome of a batch mutation.
func RenderResults(verb startup.Verb, results []startup.Result) string {
	var sb strings.Builder
	for _, r := range results {
		if r.Err != nil {
			sb.WriteString(colorize(colorRed, "✗ "))
			sb.WriteString(fmt.Sprintf("%s %s: %v\n", verb, r.Entry.Name, r.Err))
			continue
		}
		sb.WriteString(colorize(colorGreen, "✓ "))
		sb.WriteString(fmt.Sprintf("%s %s (%s)\n", pastTense(verb), r.Entry.Name, r.Entry.Location))
	}
	return sb.String()
}

func pastTense(verb startup.Verb) string {
	switch verb {
	case startup.VerbAdd:
		return "Added"
	case startup.VerbRemove:
		return "Removed"
	case startup.VerbEnable:
		return "Enabled"
	case startup.VerbDisable:
		return "Disabled"
	case "restore":
		return "Restored"
	default:
		return string(verb)
	}
}

// RenderSnapshotTable renders stored snapshots, newest first as listed.
func RenderSnapshotTable(summaries []snapshots.Summary) string {
	if len(summaries) == 0 {
		return "No backups found.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-26s %-22s %-16s %s\n",
		"ID", "Created (UTC)", "Age", "Entries"))
	sb.WriteString(strings.Repeat("─", 76))
	sb.WriteString("\n")

	for _, s := range summaries {
		sb.WriteString(fmt.Sprintf("%-26s %-22s %-16s %d\n",
			s.ID,
			s.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			humanize.Time(s.Timestamp),
			s.EntryCount))
	}

	return sb.String()
}

// RenderJournalTable renders journal events as returned by the store.
func RenderJournalTable(events []*store.JournalEvent) string {
	if len(events) == 0 {
		return "No changes recorded.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-16s %-8s %-16s %-24s %s\n",
		"When", "Action", "Location", "Name", "Result"))
	sb.WriteString(strings.Repeat("─", 80))
	sb.WriteString("\n")

	for _, ev := range events {
		result := colorize(colorGreen, "ok")
		if !ev.Succeeded {
			result = colorize(colorRed, "failed: "+ev.Error)
		}

		sb.WriteString(fmt.Sprintf("%-16s %-8s %-16s %-24s %s\n",
			humanize.Time(ev.Timestamp),
			ev.Action,
			ev.Location.Slug(),
			truncate(ev.Name, 24),
			result))
	}

	return sb.String()
}

// FormatSize converts bytes to a human-readable size.
func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.Bytes(uint64(bytes))
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
