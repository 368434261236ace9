package snapshots

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/blackwell-systems/startupmgr/internal/locations"
	"github.com/blackwell-systems/startupmgr/internal/startup"
)

// Capture writes a snapshot of entries and returns its ID. The file name is
// derived from the UTC capture time; a second capture within the same second
// gets a numeric suffix. Startup-folder files that still exist are copied to
// <dir>/<id>/<location-slug>/ so the entries can be re-added after the
// original file is gone.
func (m *Manager) Capture(entries []startup.Entry) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	snap := &Snapshot{
		Timestamp: m.now().UTC(),
		Entries:   append([]startup.Entry{}, entries...),
	}

	jsonData, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	id, err := m.freeID(snap.Timestamp)
	if err != nil {
		return "", err
	}

	m.copyFiles(id, snap.Entries)

	if err := writeAtomic(m.pathFor(id), jsonData); err != nil {
		os.RemoveAll(m.filesDir(id))
		return "", fmt.Errorf("failed to write snapshot file: %w", err)
	}

	m.log.Debug().Str("id", id).Int("entries", len(entries)).Msg("snapshot captured")
	return id, nil
}

// freeID picks the first unused ID for timestamp (lock held).
func (m *Manager) freeID(ts time.Time) (string, error) {
	base := filePrefix + ts.Format(timestampLayout)
	id := base
	for n := 1; ; n++ {
		_, err := os.Stat(m.pathFor(id))
		if errors.Is(err, fs.ErrNotExist) {
			return id, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check snapshot file: %w", err)
		}
		id = fmt.Sprintf("%s_%d", base, n)
	}
}

// List returns summaries of all readable snapshots, newest first. Files that
// cannot be read or parsed are skipped.
func (m *Manager) List() ([]Summary, error) {
	files, err := filepath.Glob(filepath.Join(m.dir, filePrefix+"*"+fileExt))
	if err != nil {
		return nil, fmt.Errorf("failed to scan backup directory: %w", err)
	}

	summaries := make([]Summary, 0, len(files))
	for _, file := range files {
		id := strings.TrimSuffix(filepath.Base(file), fileExt)
		if !idPattern.MatchString(id) {
			continue
		}

		snap, err := loadSnapshotFile(file)
		if err != nil {
			m.log.Debug().Err(err).Str("file", file).Msg("skipping unreadable snapshot")
			continue
		}

		summaries = append(summaries, Summary{
			ID:         id,
			Path:       file,
			Timestamp:  snap.Timestamp,
			EntryCount: len(snap.Entries),
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].Timestamp.Equal(summaries[j].Timestamp) {
			return summaries[i].ID > summaries[j].ID
		}
		return summaries[i].Timestamp.After(summaries[j].Timestamp)
	})
	return summaries, nil
}

// Latest returns the newest readable snapshot summary.
func (m *Manager) Latest() (*Summary, error) {
	summaries, err := m.List()
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, fmt.Errorf("no snapshots available: %w", startup.ErrNotFound)
	}
	return &summaries[0], nil
}

// Cleanup removes snapshots captured more than maxAge ago and returns how
// many were deleted.
func (m *Manager) Cleanup(maxAge time.Duration) (int, error) {
	summaries, err := m.List()
	if err != nil {
		return 0, fmt.Errorf("failed to list snapshots: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxAge)
	deleted := 0
	for _, s := range summaries {
		if !s.Timestamp.Before(cutoff) {
			continue
		}
		if err := os.Remove(s.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return deleted, fmt.Errorf("failed to delete snapshot file %s: %w", s.Path, err)
		}
		if err := os.RemoveAll(m.filesDir(s.ID)); err != nil {
			m.log.Warn().Err(err).Str("id", s.ID).Msg("failed to delete snapshot file copies")
		}
		deleted++
	}
	return deleted, nil
}

func (m *Manager) pathFor(id string) string {
	return filepath.Join(m.dir, id+fileExt)
}

func (m *Manager) filesDir(id string) string {
	return filepath.Join(m.dir, id)
}

func (m *Manager) copyPath(id string, e startup.Entry) string {
	return filepath.Join(m.filesDir(id), e.Location.Slug(), e.FileName())
}

// copyFiles keeps a copy of every startup-folder file that still exists
// (lock held). A file that cannot be copied only costs that entry its copy.
func (m *Manager) copyFiles(id string, entries []startup.Entry) {
	for _, e := range entries {
		if e.Location.IsRegistry() || e.FileName() == "" {
			continue
		}
		if _, err := os.Stat(e.Path); err != nil {
			m.log.Debug().Err(err).Str("name", e.Name).Msg("no file to keep with snapshot")
			continue
		}

		dst := m.copyPath(id, e)
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			m.log.Warn().Err(err).Str("name", e.Name).Msg("failed to create snapshot file directory")
			continue
		}
		if err := locations.CopyFile(e.Path, dst); err != nil {
			m.log.Warn().Err(err).Str("name", e.Name).Msg("failed to keep file with snapshot")
		}
	}
}

// KeptFile returns the copy of a startup-folder entry's file taken when
// snapshot id was captured.
func (m *Manager) KeptFile(id string, e startup.Entry) (string, bool) {
	if e.Location.IsRegistry() || e.FileName() == "" || !idPattern.MatchString(id) {
		return "", false
	}
	path := m.copyPath(id, e)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// writeAtomic writes data to a temp file next to path and renames it into
// place.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
