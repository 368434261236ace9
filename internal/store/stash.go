package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/blackwell-systems/startupmgr/internal/locations"
	"github.com/blackwell-systems/startupmgr/internal/startup"
)

// Stash keeps disabled entries in the database. Startup-folder files are
// copied under dir/<location-slug>/ so they can be put back on enable.
type Stash struct {
	store *Store
	dir   string
	now   func() time.Time
}

var _ startup.Stash = (*Stash)(nil)

// NewStash creates a Stash backed by s, keeping file copies under dir.
func NewStash(s *Store, dir string) *Stash {
	return &Stash{store: s, dir: dir, now: time.Now}
}

// Put records e as disabled. Folder entries have their file copied first.
func (st *Stash) Put(e startup.Entry) error {
	d := &DisabledEntry{Entry: e, DisabledAt: st.now()}
	d.Entry.Enabled = false

	if !e.Location.IsRegistry() {
		dst := filepath.Join(st.dir, e.Location.Slug(), filepath.Base(e.Path))
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return fmt.Errorf("failed to create stash directory: %w", err)
		}
		if err := locations.CopyFile(e.Path, dst); err != nil {
			return fmt.Errorf("failed to stash file: %w", err)
		}
		d.StashPath = dst
	}

	if err := st.store.SaveDisabled(d); err != nil {
		if d.StashPath != "" {
			os.Remove(d.StashPath)
		}
		return err
	}
	return nil
}

// Source returns the record that re-registers a disabled entry.
func (st *Stash) Source(e startup.Entry) (startup.Record, error) {
	d, err := st.store.GetDisabled(e.Key())
	if err != nil {
		return startup.Record{}, err
	}

	if d.Entry.Location.IsRegistry() {
		value := d.Entry.Command
		if value == "" {
			value = d.Entry.Path
		}
		return startup.Record{Name: d.Entry.Name, Value: value}, nil
	}

	if d.StashPath == "" {
		return startup.Record{}, fmt.Errorf("no stashed file for %s: %w", e.Name, startup.ErrNotFound)
	}
	return startup.Record{Name: d.Entry.Name, Value: d.StashPath}, nil
}

// Drop forgets a disabled entry and deletes its stashed file.
func (st *Stash) Drop(k startup.Key) error {
	d, err := st.store.GetDisabled(k)
	if errors.Is(err, startup.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if d.StashPath != "" {
		if err := os.Remove(d.StashPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to delete stashed file: %w", err)
		}
	}
	return st.store.DeleteDisabled(k)
}

// ListDisabled returns every disabled entry.
func (st *Stash) ListDisabled() ([]startup.Entry, error) {
	rows, err := st.store.ListDisabledEntries()
	if err != nil {
		return nil, err
	}
	entries := make([]startup.Entry, 0, len(rows))
	for _, d := range rows {
		entries = append(entries, d.Entry)
	}
	return entries, nil
}
