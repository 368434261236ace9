// Package startup holds the unified model of auto-launch registrations and the
// machinery that discovers and mutates them.
//
// Four storage mechanisms feed the model: the current-user and local-machine
// registry run-keys, and the per-user and common startup folders. Each one is
// served by an Adapter. The Engine fans out across adapters and assembles
// Entry values tagged with their provenance; the Router sends mutations back
// to the adapter that owns an entry; the Catalog owns the in-memory set and
// serializes mutations against it.
package startup

import (
	"context"
	"fmt"
	"strings"
)

// LocationKind is the provenance tag recorded on every entry. Its string
// value is the human-readable form persisted in snapshots.
type LocationKind string

const (
	UserRegistry    LocationKind = "Registry (Current User)"
	MachineRegistry LocationKind = "Registry (Local Machine)"
	UserFolder      LocationKind = "Startup Folder (User)"
	MachineFolder   LocationKind = "Startup Folder (Common)"
)

// AllLocations lists the four location kinds in discovery order.
var AllLocations = []LocationKind{UserRegistry, MachineRegistry, UserFolder, MachineFolder}

var locationSlugs = map[LocationKind]string{
	UserRegistry:    "user-registry",
	MachineRegistry: "machine-registry",
	UserFolder:      "user-folder",
	MachineFolder:   "machine-folder",
}

// Slug returns the short command-line name of the location.
func (k LocationKind) Slug() string {
	if s, ok := locationSlugs[k]; ok {
		return s
	}
	return string(k)
}

// Privileged reports whether the location is machine-scoped, meaning
// mutations may need elevated rights.
func (k LocationKind) Privileged() bool {
	return k == MachineRegistry || k == MachineFolder
}

// IsRegistry reports whether the location is a registry run-key.
func (k LocationKind) IsRegistry() bool {
	return k == UserRegistry || k == MachineRegistry
}

// Valid reports whether k is one of the four known kinds.
func (k LocationKind) Valid() bool {
	_, ok := locationSlugs[k]
	return ok
}

// ParseLocationKind accepts either the slug or the display string of a
// location, case-insensitively.
func ParseLocationKind(s string) (LocationKind, error) {
	s = strings.TrimSpace(s)
	for _, k := range AllLocations {
		if strings.EqualFold(s, k.Slug()) || strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown location %q (want one of user-registry, machine-registry, user-folder, machine-folder)", s)
}

// Entry is one auto-launch registration as seen by the rest of the program.
// Uniqueness is scoped to (Location, Name); folder entries are further told
// apart by file name, since App.lnk and App.url share the name "App".
type Entry struct {
	Name      string       `json:"name"`
	Publisher string       `json:"publisher"`
	Enabled   bool         `json:"enabled"`
	Location  LocationKind `json:"locationType"`
	Path      string       `json:"path"`
	// Command is the raw registry value (path plus arguments). Empty for
	// folder entries.
	Command  string `json:"command,omitempty"`
	IsSystem bool   `json:"isSystem"`
}

// Key identifies an entry within the unified set. File is empty for
// registry entries.
type Key struct {
	Location LocationKind
	Name     string
	File     string
}

// Key returns the identity of the entry.
func (e Entry) Key() Key {
	k := Key{Location: e.Location, Name: e.Name}
	if !e.Location.IsRegistry() {
		k.File = e.FileName()
	}
	return k
}

// FileName returns the last element of Path. Both separators are accepted so
// that paths recorded on Windows resolve the same everywhere.
func (e Entry) FileName() string {
	if i := strings.LastIndexAny(e.Path, `\/`); i >= 0 {
		return e.Path[i+1:]
	}
	return e.Path
}

// Status returns "Enabled" or "Disabled".
func (e Entry) Status() string {
	if e.Enabled {
		return "Enabled"
	}
	return "Disabled"
}

// record converts the entry into the raw form its adapter understands.
func (e Entry) record() Record {
	if e.Location.IsRegistry() {
		value := e.Command
		if value == "" {
			value = e.Path
		}
		return Record{Name: e.Name, Value: value}
	}
	return Record{Name: e.Name, Value: e.Path}
}

// Record is the raw form an adapter reads and writes. For registry adapters
// Name is the value name and Value the raw command string; for folder
// adapters Name is the file name without extension and Value the full path.
type Record struct {
	Name  string
	Value string
}

// Adapter enumerates and mutates exactly one storage mechanism.
//
// Enumerate returns an empty result without error when the backing key or
// folder does not exist. Add is a no-op when the registration already exists
// for folder locations, and Remove is a no-op when the registration is
// already gone.
type Adapter interface {
	Kind() LocationKind
	Enumerate(ctx context.Context) ([]Record, error)
	Add(ctx context.Context, rec Record) error
	Remove(ctx context.Context, rec Record) error
}

// PublisherResolver maps an executable path to a vendor name.
type PublisherResolver interface {
	Resolve(path string) string
}

// UnknownPublisher is reported when no vendor can be resolved.
const UnknownPublisher = "Unknown"
