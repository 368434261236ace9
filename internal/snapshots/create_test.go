package snapshots

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/startupmgr/internal/startup"
)

func testEntries() []startup.Entry {
	return []startup.Entry{
		{
			Name:      "Updater",
			Publisher: "Vendor Inc.",
			Enabled:   true,
			Location:  startup.UserRegistry,
			Path:      `C:\Program Files\Vendor\upd.exe`,
			Command:   `"C:\Program Files\Vendor\upd.exe" /silent`,
		},
		{
			Name:      "vpn",
			Publisher: startup.UnknownPublisher,
			Enabled:   false,
			Location:  startup.MachineFolder,
			Path:      `C:\ProgramData\Microsoft\Windows\Start Menu\Programs\StartUp\vpn.lnk`,
			IsSystem:  true,
		},
	}
}

// fixedClock returns a clock that advances by step on every call.
func fixedClock(start time.Time, step time.Duration) func() time.Time {
	current := start
	return func() time.Time {
		t := current
		current = current.Add(step)
		return t
	}
}

func TestCapture(t *testing.T) {
	tempDir := t.TempDir()
	backupDir := filepath.Join(tempDir, "backups")
	start := time.Date(2026, 10, 16, 9, 30, 15, 0, time.FixedZone("CEST", 2*60*60))
	manager := New(backupDir, WithClock(fixedClock(start, time.Second)))

	id, err := manager.Capture(testEntries())
	if err != nil {
		t.Fatalf("Failed to capture snapshot: %v", err)
	}

	if id != "backup_20261016_073015" {
		t.Errorf("Expected UTC-based id backup_20261016_073015, got %s", id)
	}

	data, err := os.ReadFile(filepath.Join(backupDir, id+".json"))
	if err != nil {
		t.Fatalf("Failed to read snapshot file: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Failed to unmarshal snapshot data: %v", err)
	}
	if raw["timestamp"] != "2026-10-16T07:30:15Z" {
		t.Errorf("Expected ISO-8601 UTC timestamp, got %v", raw["timestamp"])
	}

	entries, ok := raw["entries"].([]any)
	if !ok || len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %v", raw["entries"])
	}
	first := entries[0].(map[string]any)
	for _, field := range []string{"name", "publisher", "enabled", "locationType", "path", "isSystem", "command"} {
		if _, ok := first[field]; !ok {
			t.Errorf("Expected field %q in entry", field)
		}
	}
	if first["locationType"] != "Registry (Current User)" {
		t.Errorf("Expected human-readable location, got %v", first["locationType"])
	}
	if _, ok := entries[1].(map[string]any)["command"]; ok {
		t.Error("Expected empty command to be omitted")
	}

	if !strings.Contains(string(data), "\n  ") {
		t.Error("Expected indented JSON")
	}
}

func TestCaptureSameSecond(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	manager := New(t.TempDir(), WithClock(fixedClock(start, time.Millisecond)))

	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		id, err := manager.Capture(testEntries())
		if err != nil {
			t.Fatalf("Capture %d failed: %v", i, err)
		}
		if seen[id] {
			t.Fatalf("duplicate snapshot id %s", id)
		}
		seen[id] = true
	}

	for _, id := range []string{"backup_20260102_030405", "backup_20260102_030405_1", "backup_20260102_030405_2"} {
		if !seen[id] {
			t.Errorf("Expected id %s, got %v", id, seen)
		}
	}
}

func TestCaptureThenList(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	manager := New(t.TempDir(), WithClock(fixedClock(start, time.Minute)))

	var ids []string
	for i := 1; i <= 3; i++ {
		id, err := manager.Capture(testEntries()[:i%2+1])
		if err != nil {
			t.Fatalf("Failed to capture snapshot %d: %v", i, err)
		}
		ids = append(ids, id)
	}

	summaries, err := manager.List()
	if err != nil {
		t.Fatalf("Failed to list snapshots: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("Expected 3 snapshots, got %d", len(summaries))
	}

	// Newest first
	if summaries[0].ID != ids[2] {
		t.Errorf("Expected newest snapshot %s first, got %s", ids[2], summaries[0].ID)
	}
	for i := 1; i < len(summaries); i++ {
		if summaries[i].Timestamp.After(summaries[i-1].Timestamp) {
			t.Error("Snapshots are not ordered by timestamp (newest first)")
		}
	}

	counts := map[string]int{ids[0]: 2, ids[1]: 1, ids[2]: 2}
	for _, s := range summaries {
		if s.EntryCount != counts[s.ID] {
			t.Errorf("snapshot %s: expected %d entries, got %d", s.ID, counts[s.ID], s.EntryCount)
		}
	}

	latest, err := manager.Latest()
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest.ID != ids[2] {
		t.Errorf("Expected latest %s, got %s", ids[2], latest.ID)
	}
}

func TestListSkipsCorruptAndForeignFiles(t *testing.T) {
	dir := t.TempDir()
	manager := New(dir)

	id, err := manager.Capture(testEntries())
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	junk := map[string]string{
		"backup_20200101_000000.json": "{not json",
		"backup_20200101_000001.json": `{"timestamp":"2020-01-01T00:00:01Z","entries":[{"name":"x","locationType":"Scheduled Task"}]}`,
		"backup_notes.json":           `{"timestamp":"2020-01-01T00:00:01Z","entries":[]}`,
		"other.json":                  `{"timestamp":"2020-01-01T00:00:01Z","entries":[]}`,
	}
	for name, content := range junk {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	summaries, err := manager.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(summaries) != 1 || summaries[0].ID != id {
		t.Errorf("Expected only %s, got %+v", id, summaries)
	}
}

func TestListMissingDirectory(t *testing.T) {
	manager := New(filepath.Join(t.TempDir(), "never-created"))
	summaries, err := manager.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(summaries) != 0 {
		t.Errorf("Expected no snapshots, got %d", len(summaries))
	}

	if _, err := manager.Latest(); err == nil {
		t.Error("Expected error from Latest with no snapshots")
	}
}

func TestCleanup(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

	old := New(dir, WithClock(func() time.Time { return now.AddDate(0, 0, -91) }))
	if _, err := old.Capture(testEntries()); err != nil {
		t.Fatal(err)
	}
	recent := New(dir, WithClock(func() time.Time { return now.AddDate(0, 0, -30) }))
	recentID, err := recent.Capture(testEntries())
	if err != nil {
		t.Fatal(err)
	}

	manager := New(dir, WithClock(func() time.Time { return now }))
	deleted, err := manager.Cleanup(90 * 24 * time.Hour)
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted snapshot, got %d", deleted)
	}

	summaries, _ := manager.List()
	if len(summaries) != 1 || summaries[0].ID != recentID {
		t.Errorf("Expected only %s to remain, got %+v", recentID, summaries)
	}
}

func TestCaptureKeepsFolderFiles(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "Startup", "Notes.lnk")
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(file, []byte("shortcut"), 0644); err != nil {
		t.Fatal(err)
	}

	entries := append(testEntries(), startup.Entry{Name: "Notes", Location: startup.UserFolder, Path: file, Enabled: true})
	now := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	manager := New(filepath.Join(root, "backups"), WithClock(func() time.Time { return now }))

	id, err := manager.Capture(entries)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if err := os.Remove(file); err != nil {
		t.Fatal(err)
	}

	kept, ok := manager.KeptFile(id, entries[2])
	if !ok {
		t.Fatal("Expected a kept copy of Notes.lnk")
	}
	if want := filepath.Join(root, "backups", id, "user-folder", "Notes.lnk"); kept != want {
		t.Errorf("Expected copy at %s, got %s", want, kept)
	}
	data, err := os.ReadFile(kept)
	if err != nil || string(data) != "shortcut" {
		t.Errorf("Expected copied content, got %q, %v", data, err)
	}

	if _, ok := manager.KeptFile(id, entries[0]); ok {
		t.Error("registry entries have no kept file")
	}
	if _, ok := manager.KeptFile(id, entries[1]); ok {
		t.Error("Expected no copy for a file that did not exist at capture time")
	}

	summaries, err := manager.List()
	if err != nil || len(summaries) != 1 {
		t.Fatalf("Expected the copy directory to be ignored by List, got %+v, %v", summaries, err)
	}

	later := New(filepath.Join(root, "backups"), WithClock(func() time.Time { return now.AddDate(0, 0, 10) }))
	if _, err := later.Cleanup(24 * time.Hour); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "backups", id)); !os.IsNotExist(err) {
		t.Error("Expected Cleanup to delete the kept files")
	}
}
