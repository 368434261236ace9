package locations

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/startupmgr/internal/startup"
)

// FolderAdapter serves one startup folder. Every regular file in the folder
// is one entry, named after the file without its extension.
type FolderAdapter struct {
	kind startup.LocationKind
	dir  string
	log  zerolog.Logger
}

var _ startup.Adapter = (*FolderAdapter)(nil)

// NewFolderAdapter creates an adapter for the startup folder dir.
func NewFolderAdapter(kind startup.LocationKind, dir string, log zerolog.Logger) *FolderAdapter {
	return &FolderAdapter{
		kind: kind,
		dir:  dir,
		log:  log.With().Str("location", string(kind)).Logger(),
	}
}

// Kind returns the adapter's location.
func (a *FolderAdapter) Kind() startup.LocationKind { return a.kind }

// Dir returns the startup folder path.
func (a *FolderAdapter) Dir() string { return a.dir }

// Enumerate lists the files in the folder.
func (a *FolderAdapter) Enumerate(ctx context.Context) ([]startup.Record, error) {
	if a.dir == "" {
		return nil, nil
	}

	dirents, err := os.ReadDir(a.dir)
	if errors.Is(err, fs.ErrNotExist) {
		a.log.Debug().Str("dir", a.dir).Msg("startup folder does not exist")
		return nil, nil
	}
	if err != nil {
		a.log.Warn().Err(err).Str("dir", a.dir).Msg("failed to read startup folder")
		return nil, startup.NewOpError("enumerate", a.kind, "", err)
	}

	records := make([]startup.Record, 0, len(dirents))
	for _, d := range dirents {
		if skipFolderEntry(d) {
			continue
		}
		if _, err := d.Info(); err != nil {
			a.log.Debug().Err(err).Str("file", d.Name()).Msg("skipping unreadable file")
			continue
		}
		records = append(records, startup.Record{
			Name:  displayName(d.Name()),
			Value: filepath.Join(a.dir, d.Name()),
		})
	}
	return records, nil
}

// Add copies the file at rec.Value into the folder. A file of the same name
// already in the folder is left untouched.
func (a *FolderAdapter) Add(ctx context.Context, rec startup.Record) error {
	if a.dir == "" {
		return fmt.Errorf("%w: startup folder is not configured", startup.ErrNotFound)
	}
	if rec.Value == "" {
		return fmt.Errorf("%w: source path is empty", startup.ErrInvalidFormat)
	}

	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return fmt.Errorf("failed to create startup folder: %w", err)
	}

	dest := filepath.Join(a.dir, filepath.Base(rec.Value))
	if _, err := os.Lstat(dest); err == nil {
		a.log.Debug().Str("file", dest).Msg("destination exists, not overwriting")
		return nil
	}

	if err := CopyFile(rec.Value, dest); err != nil {
		return err
	}
	a.log.Debug().Str("file", dest).Msg("file copied")
	return nil
}

// Remove deletes the entry's file from the folder. The file is located by
// the base name of rec.Value, or by display name when no path is recorded.
// A missing file is not an error.
func (a *FolderAdapter) Remove(ctx context.Context, rec startup.Record) error {
	if a.dir == "" {
		return nil
	}

	target, err := a.locate(rec)
	if err != nil {
		return err
	}
	if target == "" {
		return nil
	}

	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	a.log.Debug().Str("file", target).Msg("file deleted")
	return nil
}

func (a *FolderAdapter) locate(rec startup.Record) (string, error) {
	if rec.Value != "" {
		return filepath.Join(a.dir, filepath.Base(rec.Value)), nil
	}

	dirents, err := os.ReadDir(a.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read startup folder: %w", err)
	}
	for _, d := range dirents {
		if !skipFolderEntry(d) && displayName(d.Name()) == rec.Name {
			return filepath.Join(a.dir, d.Name()), nil
		}
	}
	return "", nil
}

func skipFolderEntry(d fs.DirEntry) bool {
	return d.IsDir() || strings.EqualFold(d.Name(), "desktop.ini")
}

func displayName(file string) string {
	return strings.TrimSuffix(file, filepath.Ext(file))
}
