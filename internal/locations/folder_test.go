package locations

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/startupmgr/internal/startup"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestFolderEnumerate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes.lnk"), "lnk")
	writeFile(t, filepath.Join(dir, "sync.exe"), "exe")
	writeFile(t, filepath.Join(dir, "desktop.ini"), "[.ShellClassInfo]")
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0755); err != nil {
		t.Fatal(err)
	}

	a := NewFolderAdapter(startup.UserFolder, dir, zerolog.Nop())
	records, err := a.Enumerate(context.Background())
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d: %+v", len(records), records)
	}
	if records[0].Name != "notes" || records[0].Value != filepath.Join(dir, "notes.lnk") {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	if records[1].Name != "sync" {
		t.Errorf("unexpected second record: %+v", records[1])
	}
}

func TestFolderEnumerateMissing(t *testing.T) {
	a := NewFolderAdapter(startup.MachineFolder, filepath.Join(t.TempDir(), "absent"), zerolog.Nop())
	records, err := a.Enumerate(context.Background())
	if err != nil {
		t.Fatalf("Expected no error for missing folder, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}

	unset := NewFolderAdapter(startup.MachineFolder, "", zerolog.Nop())
	if records, err := unset.Enumerate(context.Background()); err != nil || len(records) != 0 {
		t.Errorf("Expected empty result for unset folder, got %v, %v", records, err)
	}
}

func TestFolderAddCreatesDirAndCopies(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "bin", "tool.exe")
	writeFile(t, src, "payload")
	dir := filepath.Join(root, "Startup")

	a := NewFolderAdapter(startup.UserFolder, dir, zerolog.Nop())
	if err := a.Add(context.Background(), startup.Record{Name: "tool", Value: src}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "tool.exe"))
	if err != nil {
		t.Fatalf("Expected copied file: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("Expected payload, got %q", data)
	}

	leftovers, _ := filepath.Glob(filepath.Join(dir, ".tool.exe.tmp*"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestFolderAddDoesNotOverwrite(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "tool.exe")
	writeFile(t, src, "new")
	dir := filepath.Join(root, "Startup")
	writeFile(t, filepath.Join(dir, "tool.exe"), "original")

	a := NewFolderAdapter(startup.UserFolder, dir, zerolog.Nop())
	if err := a.Add(context.Background(), startup.Record{Name: "tool", Value: src}); err != nil {
		t.Fatalf("Add should not fail when destination exists: %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(dir, "tool.exe"))
	if string(data) != "original" {
		t.Errorf("Expected existing file untouched, got %q", data)
	}
}

func TestFolderAddMissingSource(t *testing.T) {
	dir := t.TempDir()
	a := NewFolderAdapter(startup.UserFolder, dir, zerolog.Nop())
	err := a.Add(context.Background(), startup.Record{Name: "x", Value: filepath.Join(dir, "nope", "x.exe")})
	if err == nil {
		t.Fatal("Expected error for missing source")
	}
	if classified := startup.Classify(err); classified == nil {
		t.Error("Expected classified error")
	}
}

func TestFolderRemoveIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sync.exe")
	writeFile(t, path, "exe")

	a := NewFolderAdapter(startup.UserFolder, dir, zerolog.Nop())
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := a.Remove(ctx, startup.Record{Name: "sync", Value: path}); err != nil {
			t.Fatalf("Remove #%d failed: %v", i+1, err)
		}
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected file to be deleted")
	}
}

func TestFolderRemoveByName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.lnk")
	writeFile(t, path, "lnk")

	a := NewFolderAdapter(startup.UserFolder, dir, zerolog.Nop())
	if err := a.Remove(context.Background(), startup.Record{Name: "notes"}); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected file located by name to be deleted")
	}
}

func TestCopyFileKeepsMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}
	root := t.TempDir()
	src := filepath.Join(root, "run.sh")
	if err := os.WriteFile(src, []byte("#!/bin/sh\n"), 0750); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(root, "copy.sh")
	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile failed: %v", err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0750 {
		t.Errorf("Expected mode 0750, got %v", info.Mode().Perm())
	}
}

func TestDefaultsUsesOverrides(t *testing.T) {
	user := t.TempDir()
	common := t.TempDir()
	writeFile(t, filepath.Join(user, "a.exe"), "a")
	writeFile(t, filepath.Join(common, "b.exe"), "b")

	key := newMemRunKey(map[string]any{"R": `C:\r.exe`})
	adapters := Defaults(Options{
		UserStartupDir:   user,
		CommonStartupDir: common,
		RunKey:           func(startup.LocationKind) KeyOpener { return key },
	}, zerolog.Nop())

	if len(adapters) != 4 {
		t.Fatalf("Expected 4 adapters, got %d", len(adapters))
	}
	for i, k := range startup.AllLocations {
		if adapters[i].Kind() != k {
			t.Errorf("adapter %d kind = %s, want %s", i, adapters[i].Kind(), k)
		}
	}

	entries := startup.NewEngine(nil, adapters).DiscoverAll(context.Background())
	if len(entries) != 4 {
		t.Errorf("Expected 4 entries, got %d", len(entries))
	}
}

func TestResolveStartupDirs(t *testing.T) {
	user, common := ResolveStartupDirs("/u", "/c", zerolog.Nop())
	if user != "/u" || common != "/c" {
		t.Errorf("Expected overrides kept, got %q, %q", user, common)
	}

	_, sysCommon, _ := StartupDirs()
	user, common = ResolveStartupDirs("/u", "", zerolog.Nop())
	if user != "/u" {
		t.Errorf("Expected user override kept, got %q", user)
	}
	if common != sysCommon {
		t.Errorf("Expected system common folder %q, got %q", sysCommon, common)
	}
}
