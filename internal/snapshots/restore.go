package snapshots

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/startupmgr/internal/startup"
)

// Restore loads the snapshot with the given ID. The ID may also be given as
// a file name or path inside the backup directory. Unknown IDs yield
// startup.ErrNotFound; unparseable records yield startup.ErrInvalidFormat.
func (m *Manager) Restore(id string) (*Snapshot, error) {
	id = strings.TrimSuffix(filepath.Base(id), fileExt)
	if !idPattern.MatchString(id) {
		return nil, fmt.Errorf("snapshot %q: %w", id, startup.ErrNotFound)
	}

	snap, err := loadSnapshotFile(m.pathFor(id))
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", id, err)
	}
	return snap, nil
}

// loadSnapshotFile reads and parses a snapshot JSON file.
func loadSnapshotFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", startup.ErrNotFound, err)
	}
	if err != nil {
		return nil, startup.Classify(fmt.Errorf("failed to read snapshot file: %w", err))
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: failed to parse snapshot JSON: %w", startup.ErrInvalidFormat, err)
	}
	if snap.Timestamp.IsZero() {
		return nil, fmt.Errorf("%w: snapshot has no timestamp", startup.ErrInvalidFormat)
	}
	for i, e := range snap.Entries {
		if !e.Location.Valid() {
			return nil, fmt.Errorf("%w: entry %d has unknown location %q", startup.ErrInvalidFormat, i, e.Location)
		}
	}

	return &snap, nil
}
