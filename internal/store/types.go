package store

import (
	"time"

	"github.com/blackwell-systems/startupmgr/internal/startup"
)

// DisabledEntry is a registration removed from the system by a disable.
type DisabledEntry struct {
	Entry startup.Entry
	// StashPath is the copy of a startup-folder file kept while the entry is
	// disabled. Empty for registry entries.
	StashPath  string
	DisabledAt time.Time
}

// JournalEvent records one attempted mutation.
type JournalEvent struct {
	ID        int64
	Timestamp time.Time
	Action    string // "add", "remove", "enable" or "disable"
	Location  startup.LocationKind
	Name      string
	Path      string
	Succeeded bool
	Error     string
}
