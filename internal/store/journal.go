package store

import (
	"time"

	"github.com/blackwell-systems/startupmgr/internal/startup"
)

var _ startup.Journal = (*Store)(nil)

// Record appends the outcome of a mutation to the journal.
func (s *Store) Record(action string, e startup.Entry, err error) error {
	ev := &JournalEvent{
		Timestamp: time.Now(),
		Action:    action,
		Location:  e.Location,
		Name:      e.Name,
		Path:      e.Path,
		Succeeded: err == nil,
	}
	if err != nil {
		ev.Error = err.Error()
	}
	_, insertErr := s.InsertEvent(ev)
	return insertErr
}
