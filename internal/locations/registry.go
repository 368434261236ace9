// Package locations implements the startup.Adapter for each auto-launch
// mechanism: the two registry run-keys and the two startup folders.
package locations

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/startupmgr/internal/startup"
)

// RunKeyPath is the run-key subpath under both HKCU and HKLM.
const RunKeyPath = `SOFTWARE\Microsoft\Windows\CurrentVersion\Run`

// Access selects how a run-key is opened.
type Access int

const (
	// ReadAccess opens an existing key for enumeration.
	ReadAccess Access = iota
	// WriteAccess opens an existing key for value deletion.
	WriteAccess
	// CreateAccess opens the key for writing, creating it if absent.
	CreateAccess
)

// RunKey is the subset of registry key operations the adapter needs.
type RunKey interface {
	ValueNames() ([]string, error)
	// StringValue returns the value as a string, expanding REG_EXPAND_SZ.
	// Non-string values produce an error.
	StringValue(name string) (string, error)
	SetStringValue(name, value string) error
	DeleteValue(name string) error
	Close() error
}

// KeyOpener opens one run-key. A missing key is reported as fs.ErrNotExist
// for ReadAccess and WriteAccess.
type KeyOpener interface {
	OpenRunKey(access Access) (RunKey, error)
}

var errEmptyName = fmt.Errorf("%w: entry name is empty", startup.ErrInvalidFormat)

// RegistryAdapter serves one registry run-key.
type RegistryAdapter struct {
	kind   startup.LocationKind
	opener KeyOpener
	log    zerolog.Logger
}

var _ startup.Adapter = (*RegistryAdapter)(nil)

// NewRegistryAdapter creates an adapter for the run-key reached through opener.
func NewRegistryAdapter(kind startup.LocationKind, opener KeyOpener, log zerolog.Logger) *RegistryAdapter {
	return &RegistryAdapter{
		kind:   kind,
		opener: opener,
		log:    log.With().Str("location", string(kind)).Logger(),
	}
}

// Kind returns the adapter's location.
func (a *RegistryAdapter) Kind() startup.LocationKind { return a.kind }

// Enumerate lists every non-empty string value under the run-key.
func (a *RegistryAdapter) Enumerate(ctx context.Context) ([]startup.Record, error) {
	key, err := a.opener.OpenRunKey(ReadAccess)
	if errors.Is(err, fs.ErrNotExist) {
		a.log.Debug().Msg("run-key does not exist")
		return nil, nil
	}
	if err != nil {
		a.log.Warn().Err(err).Msg("failed to open run-key")
		return nil, startup.NewOpError("enumerate", a.kind, "", err)
	}
	defer key.Close()

	names, err := key.ValueNames()
	if err != nil {
		a.log.Warn().Err(err).Msg("failed to read value names")
		return nil, startup.NewOpError("enumerate", a.kind, "", err)
	}

	records := make([]startup.Record, 0, len(names))
	for _, name := range names {
		value, err := key.StringValue(name)
		if err != nil {
			a.log.Debug().Err(err).Str("name", name).Msg("skipping unreadable value")
			continue
		}
		if value == "" {
			continue
		}
		records = append(records, startup.Record{Name: name, Value: value})
	}
	return records, nil
}

// Add sets rec.Name to rec.Value, creating the run-key if needed. An
// existing value of the same name is replaced.
func (a *RegistryAdapter) Add(ctx context.Context, rec startup.Record) error {
	if rec.Name == "" {
		return errEmptyName
	}

	key, err := a.opener.OpenRunKey(CreateAccess)
	if err != nil {
		return fmt.Errorf("failed to open run-key: %w", err)
	}
	defer key.Close()

	if err := key.SetStringValue(rec.Name, rec.Value); err != nil {
		return fmt.Errorf("failed to set value: %w", err)
	}
	a.log.Debug().Str("name", rec.Name).Msg("value set")
	return nil
}

// Remove deletes the value named rec.Name. A missing key or value is not an
// error.
func (a *RegistryAdapter) Remove(ctx context.Context, rec startup.Record) error {
	key, err := a.opener.OpenRunKey(WriteAccess)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open run-key: %w", err)
	}
	defer key.Close()

	if err := key.DeleteValue(rec.Name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete value: %w", err)
	}
	a.log.Debug().Str("name", rec.Name).Msg("value deleted")
	return nil
}
