package app

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/blackwell-systems/startupmgr/internal/locations"
	"github.com/blackwell-systems/startupmgr/internal/startup"
)

// fakeRunKey is an in-memory run-key shared by opener and key.
type fakeRunKey struct {
	mu     sync.Mutex
	values map[string]string
}

func (k *fakeRunKey) OpenRunKey(access locations.Access) (locations.RunKey, error) {
	return k, nil
}

func (k *fakeRunKey) ValueNames() ([]string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	names := make([]string, 0, len(k.values))
	for n := range k.values {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (k *fakeRunKey) StringValue(name string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.values[name]
	if !ok {
		return "", fs.ErrNotExist
	}
	return v, nil
}

func (k *fakeRunKey) SetStringValue(name, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.values[name] = value
	return nil
}

func (k *fakeRunKey) DeleteValue(name string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.values[name]; !ok {
		return fs.ErrNotExist
	}
	delete(k.values, name)
	return nil
}

func (k *fakeRunKey) Close() error { return nil }

func (k *fakeRunKey) get(name string) (string, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.values[name]
	return v, ok
}

// testEnv is a throwaway state directory with fake registry keys and
// temporary startup folders.
type testEnv struct {
	configDir  string
	userDir    string
	commonDir  string
	userKey    *fakeRunKey
	machineKey *fakeRunKey
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	root := t.TempDir()
	te := &testEnv{
		configDir:  filepath.Join(root, "state"),
		userDir:    filepath.Join(root, "Startup"),
		commonDir:  filepath.Join(root, "CommonStartup"),
		userKey:    &fakeRunKey{values: map[string]string{}},
		machineKey: &fakeRunKey{values: map[string]string{}},
	}
	for _, dir := range []string{te.configDir, te.userDir, te.commonDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}

	settings := "user_startup_dir = " + te.userDir + "\n" +
		"common_startup_dir = " + te.commonDir + "\n" +
		"log_level = error\n"
	if err := os.WriteFile(filepath.Join(te.configDir, "settings"), []byte(settings), 0644); err != nil {
		t.Fatalf("failed to write settings: %v", err)
	}

	oldConfigDir, oldOpener := configDirFlag, runKeyOpener
	configDirFlag = te.configDir
	runKeyOpener = func(kind startup.LocationKind) locations.KeyOpener {
		if kind == startup.MachineRegistry {
			return te.machineKey
		}
		return te.userKey
	}
	t.Cleanup(func() {
		configDirFlag = oldConfigDir
		runKeyOpener = oldOpener
	})

	return te
}

func (te *testEnv) writeStartupFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// captureStdout replaces os.Stdout with a pipe during f(), then restores it
// and returns all bytes written to stdout.
func captureStdout(t *testing.T, f func()) string {
	t.Helper()
	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = origStdout }()

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		buf.ReadFrom(r)
		close(done)
	}()

	f()

	w.Close()
	<-done
	return buf.String()
}
