package app

import (
	"strings"

	"github.com/blackwell-systems/startupmgr/internal/startup"
)

// entryFilter narrows the entry list shown to the user.
type entryFilter struct {
	Location   startup.LocationKind
	Enabled    bool
	Disabled   bool
	HideSystem bool
	Search     string
}

func (f entryFilter) match(e startup.Entry) bool {
	if f.Location != "" && e.Location != f.Location {
		return false
	}
	if f.Enabled && !e.Enabled {
		return false
	}
	if f.Disabled && e.Enabled {
		return false
	}
	if f.HideSystem && e.IsSystem {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(e.Name), q) &&
			!strings.Contains(strings.ToLower(e.Publisher), q) &&
			!strings.Contains(strings.ToLower(e.Path), q) {
			return false
		}
	}
	return true
}

func (f entryFilter) apply(entries []startup.Entry) []startup.Entry {
	out := make([]startup.Entry, 0, len(entries))
	for _, e := range entries {
		if f.match(e) {
			out = append(out, e)
		}
	}
	return out
}
