package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/startupmgr/internal/locations"
	"github.com/blackwell-systems/startupmgr/internal/startup"
)

func TestStashRegistryEntry(t *testing.T) {
	st := NewStash(newTestStore(t), t.TempDir())
	e := startup.Entry{Name: "Sync", Location: startup.UserRegistry, Path: `C:\sync.exe`, Command: `"C:\sync.exe" -bg`, Enabled: true}

	if err := st.Put(e); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	rec, err := st.Source(e)
	if err != nil {
		t.Fatalf("Source failed: %v", err)
	}
	if rec.Name != "Sync" || rec.Value != `"C:\sync.exe" -bg` {
		t.Errorf("unexpected record: %+v", rec)
	}

	disabled, err := st.ListDisabled()
	if err != nil {
		t.Fatalf("ListDisabled failed: %v", err)
	}
	if len(disabled) != 1 || disabled[0].Enabled {
		t.Errorf("Expected one disabled entry, got %+v", disabled)
	}

	if err := st.Drop(e.Key()); err != nil {
		t.Fatalf("Drop failed: %v", err)
	}
	if err := st.Drop(e.Key()); err != nil {
		t.Errorf("second Drop failed: %v", err)
	}
	if _, err := st.Source(e); err == nil {
		t.Error("Expected error from Source after Drop")
	}
}

func TestStashFolderEntryRoundTrip(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	startupDir := filepath.Join(root, "Startup")
	stashDir := filepath.Join(root, "disabled")

	file := filepath.Join(startupDir, "notes.lnk")
	if err := os.MkdirAll(startupDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(file, []byte("shortcut"), 0644); err != nil {
		t.Fatal(err)
	}

	db := newTestStore(t)
	stash := NewStash(db, stashDir)
	folder := locations.NewFolderAdapter(startup.UserFolder, startupDir, zerolog.Nop())
	adapters := []startup.Adapter{folder}
	router := startup.NewRouter(adapters, startup.WithStash(stash), startup.WithJournal(db))
	engine := startup.NewEngine(nil, adapters, startup.WithDisabledSource(stash))
	catalog := startup.NewCatalog(engine, router)
	catalog.Refresh(ctx)

	entry, ok := catalog.Find(startup.Key{Location: startup.UserFolder, Name: "notes", File: "notes.lnk"})
	if !ok {
		t.Fatal("Expected notes entry")
	}

	if r := catalog.Apply(ctx, startup.VerbDisable, entry); r.Err != nil {
		t.Fatalf("Disable failed: %v", r.Err)
	}
	if _, err := os.Stat(file); !os.IsNotExist(err) {
		t.Error("Expected startup file removed on disable")
	}
	stashed := filepath.Join(stashDir, "user-folder", "notes.lnk")
	if _, err := os.Stat(stashed); err != nil {
		t.Errorf("Expected stashed copy: %v", err)
	}

	catalog.Refresh(ctx)
	entry, ok = catalog.Find(startup.Key{Location: startup.UserFolder, Name: "notes", File: "notes.lnk"})
	if !ok || entry.Enabled {
		t.Fatalf("Expected disabled notes entry after refresh, got %+v (found=%v)", entry, ok)
	}
	if entry.Path != file {
		t.Errorf("Expected original path %s, got %s", file, entry.Path)
	}

	if r := catalog.Apply(ctx, startup.VerbEnable, entry); r.Err != nil {
		t.Fatalf("Enable failed: %v", r.Err)
	}
	data, err := os.ReadFile(file)
	if err != nil || string(data) != "shortcut" {
		t.Errorf("Expected file restored with original content, got %q, %v", data, err)
	}
	if _, err := os.Stat(stashed); !os.IsNotExist(err) {
		t.Error("Expected stashed copy removed after enable")
	}

	catalog.Refresh(ctx)
	if n := len(catalog.Entries()); n != 1 {
		t.Errorf("Expected 1 entry after enable, got %d", n)
	}

	count, err := db.GetEventCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("Expected 2 journal events, got %d", count)
	}
}

func TestStashPutMissingFolderFile(t *testing.T) {
	st := NewStash(newTestStore(t), t.TempDir())
	e := startup.Entry{Name: "gone", Location: startup.MachineFolder, Path: filepath.Join(t.TempDir(), "gone.exe")}
	if err := st.Put(e); err == nil {
		t.Fatal("Expected error stashing a missing file")
	}
	disabled, _ := st.ListDisabled()
	if len(disabled) != 0 {
		t.Errorf("Expected nothing stashed, got %+v", disabled)
	}
}

func TestStashKeepsSameNamedFolderFilesApart(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	startupDir := filepath.Join(root, "Startup")
	if err := os.MkdirAll(startupDir, 0755); err != nil {
		t.Fatal(err)
	}
	for name, content := range map[string]string{"App.lnk": "shortcut", "App.url": "internet"} {
		if err := os.WriteFile(filepath.Join(startupDir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	db := newTestStore(t)
	stash := NewStash(db, filepath.Join(root, "disabled"))
	adapters := []startup.Adapter{locations.NewFolderAdapter(startup.UserFolder, startupDir, zerolog.Nop())}
	router := startup.NewRouter(adapters, startup.WithStash(stash))
	catalog := startup.NewCatalog(startup.NewEngine(nil, adapters, startup.WithDisabledSource(stash)), router)
	catalog.Refresh(ctx)

	entries := catalog.Entries()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	for _, r := range catalog.ApplyAll(ctx, startup.VerbDisable, entries) {
		if r.Err != nil {
			t.Fatalf("Disable %s failed: %v", r.Entry.Path, r.Err)
		}
	}

	disabled, err := stash.ListDisabled()
	if err != nil {
		t.Fatal(err)
	}
	if len(disabled) != 2 {
		t.Fatalf("Expected 2 stashed entries, got %+v", disabled)
	}

	catalog.Refresh(ctx)
	for _, r := range catalog.ApplyAll(ctx, startup.VerbEnable, catalog.Entries()) {
		if r.Err != nil {
			t.Fatalf("Enable %s failed: %v", r.Entry.Path, r.Err)
		}
	}
	for name, content := range map[string]string{"App.lnk": "shortcut", "App.url": "internet"} {
		data, err := os.ReadFile(filepath.Join(startupDir, name))
		if err != nil || string(data) != content {
			t.Errorf("Expected %s restored with %q, got %q, %v", name, content, data, err)
		}
	}
}
