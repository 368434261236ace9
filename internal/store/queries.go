package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/blackwell-systems/startupmgr/internal/startup"
)

// Disabled entry operations

// SaveDisabled inserts or replaces a disabled entry. Rows are keyed by
// location, name and, for folder entries, file name.
func (s *Store) SaveDisabled(d *DisabledEntry) error {
	query := `
		INSERT OR REPLACE INTO disabled_entries
		(location, name, file, publisher, path, command, is_system, stash_path, disabled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		string(d.Entry.Location),
		d.Entry.Name,
		d.Entry.Key().File,
		d.Entry.Publisher,
		d.Entry.Path,
		d.Entry.Command,
		d.Entry.IsSystem,
		d.StashPath,
		d.DisabledAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return wrapErr(err, "failed to save disabled entry %s", d.Entry.Name)
	}

	return nil
}

// GetDisabled retrieves a disabled entry by key.
func (s *Store) GetDisabled(k startup.Key) (*DisabledEntry, error) {
	query := `
		SELECT location, name, publisher, path, command, is_system, stash_path, disabled_at
		FROM disabled_entries
		WHERE location = ? AND name = ? AND file = ?
	`

	d, err := scanDisabled(s.db.QueryRow(query, string(k.Location), k.Name, k.File))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("disabled entry %s: %w", k.Name, startup.ErrNotFound)
	}
	if err != nil {
		return nil, wrapErr(err, "failed to get disabled entry %s", k.Name)
	}

	return d, nil
}

// ListDisabledEntries returns all disabled entries ordered by location and name.
func (s *Store) ListDisabledEntries() ([]*DisabledEntry, error) {
	query := `
		SELECT location, name, publisher, path, command, is_system, stash_path, disabled_at
		FROM disabled_entries
		ORDER BY location, name, file
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, wrapErr(err, "failed to list disabled entries")
	}
	defer rows.Close()

	var entries []*DisabledEntry
	for rows.Next() {
		d, err := scanDisabled(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan disabled entry row: %w", err)
		}
		entries = append(entries, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating disabled entries: %w", err)
	}

	return entries, nil
}

// DeleteDisabled removes a disabled entry. Deleting an unknown key is not an error.
func (s *Store) DeleteDisabled(k startup.Key) error {
	query := `DELETE FROM disabled_entries WHERE location = ? AND name = ? AND file = ?`
	if _, err := s.db.Exec(query, string(k.Location), k.Name, k.File); err != nil {
		return wrapErr(err, "failed to delete disabled entry %s", k.Name)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDisabled(row rowScanner) (*DisabledEntry, error) {
	var d DisabledEntry
	var location, disabledAt string
	var publisher, path, command, stashPath sql.NullString
	var isSystem sql.NullBool

	if err := row.Scan(
		&location,
		&d.Entry.Name,
		&publisher,
		&path,
		&command,
		&isSystem,
		&stashPath,
		&disabledAt,
	); err != nil {
		return nil, err
	}

	d.Entry.Location = startup.LocationKind(location)
	d.Entry.Publisher = publisher.String
	d.Entry.Path = path.String
	d.Entry.Command = command.String
	d.Entry.IsSystem = isSystem.Bool
	d.Entry.Enabled = false
	d.StashPath = stashPath.String

	var err error
	d.DisabledAt, err = time.Parse(time.RFC3339, disabledAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse disabled_at for %s: %w", d.Entry.Name, err)
	}

	return &d, nil
}

// Journal operations

// InsertEvent appends a mutation record and returns its ID.
func (s *Store) InsertEvent(ev *JournalEvent) (int64, error) {
	query := `
		INSERT INTO journal (timestamp, action, location, name, path, succeeded, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.Exec(query,
		ev.Timestamp.UTC().Format(time.RFC3339),
		ev.Action,
		string(ev.Location),
		ev.Name,
		ev.Path,
		ev.Succeeded,
		ev.Error,
	)
	if err != nil {
		return 0, wrapErr(err, "failed to insert journal event for %s", ev.Name)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get journal event ID: %w", err)
	}

	return id, nil
}

// ListEvents returns the most recent journal events, newest first. A
// non-positive limit returns all events.
func (s *Store) ListEvents(limit int) ([]*JournalEvent, error) {
	query := `
		SELECT id, timestamp, action, location, name, path, succeeded, error
		FROM journal
		ORDER BY id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, wrapErr(err, "failed to list journal events")
	}
	defer rows.Close()

	var events []*JournalEvent
	for rows.Next() {
		var ev JournalEvent
		var timestamp, location string
		var path, errText sql.NullString

		if err := rows.Scan(
			&ev.ID,
			&timestamp,
			&ev.Action,
			&location,
			&ev.Name,
			&path,
			&ev.Succeeded,
			&errText,
		); err != nil {
			return nil, fmt.Errorf("failed to scan journal row: %w", err)
		}

		ev.Location = startup.LocationKind(location)
		ev.Path = path.String
		ev.Error = errText.String
		ev.Timestamp, err = time.Parse(time.RFC3339, timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to parse timestamp for journal event %d: %w", ev.ID, err)
		}

		events = append(events, &ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal events: %w", err)
	}

	return events, nil
}

// GetEventCount returns the number of journal events.
func (s *Store) GetEventCount() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM journal").Scan(&count); err != nil {
		return 0, wrapErr(err, "failed to count journal events")
	}
	return count, nil
}
