package startup

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Stash keeps disabled registrations so they can be re-added later.
// Disabling removes a registration from the operating system, so whatever is
// needed to write it back (the raw command, or a copy of the startup-folder
// file) must live in the stash until the entry is enabled or removed.
type Stash interface {
	DisabledSource
	// Put remembers e. Folder entries have their file copied aside.
	Put(e Entry) error
	// Source returns the record to hand to the owning adapter's Add when the
	// entry is enabled again.
	Source(e Entry) (Record, error)
	// Drop forgets the entry and any stashed file. Dropping an unknown key
	// is not an error.
	Drop(k Key) error
}

// Journal receives one record per attempted mutation.
type Journal interface {
	Record(action string, e Entry, err error) error
}

// ErrNoStash is returned by Enable and Disable when the router has no stash.
var ErrNoStash = errors.New("no disabled-entry stash configured")

// Router dispatches mutations to the adapter that owns an entry.
type Router struct {
	adapters map[LocationKind]Adapter
	stash    Stash
	journal  Journal
	log      zerolog.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithStash enables physical disable/enable.
func WithStash(s Stash) RouterOption {
	return func(r *Router) { r.stash = s }
}

// WithJournal records every mutation outcome.
func WithJournal(j Journal) RouterOption {
	return func(r *Router) { r.journal = j }
}

// WithRouterLogger sets the diagnostics logger.
func WithRouterLogger(log zerolog.Logger) RouterOption {
	return func(r *Router) { r.log = log }
}

// NewRouter builds the provenance lookup table. A later adapter for the same
// kind replaces an earlier one.
func NewRouter(adapters []Adapter, opts ...RouterOption) *Router {
	r := &Router{
		adapters: make(map[LocationKind]Adapter, len(adapters)),
		log:      zerolog.Nop(),
	}
	for _, a := range adapters {
		r.adapters[a.Kind()] = a
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Router) adapterFor(op string, e *Entry) (Adapter, error) {
	a, ok := r.adapters[e.Location]
	if !ok {
		return nil, &OpError{Op: op, Location: e.Location, Name: e.Name, Err: ErrUnsupportedLocation}
	}
	return a, nil
}

// Add registers e with its location and marks it enabled.
func (r *Router) Add(ctx context.Context, e *Entry) error {
	err := r.add(ctx, e)
	r.record("add", e, err)
	return err
}

func (r *Router) add(ctx context.Context, e *Entry) error {
	a, err := r.adapterFor("add", e)
	if err != nil {
		return err
	}
	if err := a.Add(ctx, e.record()); err != nil {
		return NewOpError("add", e.Location, e.Name, err)
	}
	e.Enabled = true
	e.IsSystem = e.Location.Privileged()
	return nil
}

// Remove deletes e from its location. A disabled entry only exists in the
// stash, so removing it drops the stash record. Removing a live entry also
// drops any stash record it superseded.
func (r *Router) Remove(ctx context.Context, e *Entry) error {
	err := r.remove(ctx, e)
	r.record("remove", e, err)
	return err
}

func (r *Router) remove(ctx context.Context, e *Entry) error {
	a, err := r.adapterFor("remove", e)
	if err != nil {
		return err
	}
	if !e.Enabled && r.stash != nil {
		if err := r.stash.Drop(e.Key()); err != nil {
			return NewOpError("remove", e.Location, e.Name, err)
		}
		return nil
	}
	if err := a.Remove(ctx, e.record()); err != nil {
		return NewOpError("remove", e.Location, e.Name, err)
	}
	if r.stash != nil {
		if err := r.stash.Drop(e.Key()); err != nil {
			r.log.Warn().Err(err).Str("name", e.Name).Msg("entry removed but superseded stash record kept")
		}
	}
	return nil
}

// Disable stashes e and removes its registration. Disabling a disabled entry
// is a no-op. A superseded stash record for the same key is overwritten.
func (r *Router) Disable(ctx context.Context, e *Entry) error {
	err := r.disable(ctx, e)
	r.record("disable", e, err)
	return err
}

func (r *Router) disable(ctx context.Context, e *Entry) error {
	a, err := r.adapterFor("disable", e)
	if err != nil {
		return err
	}
	if !e.Enabled {
		return nil
	}
	if r.stash == nil {
		return &OpError{Op: "disable", Location: e.Location, Name: e.Name, Err: ErrNoStash}
	}

	stashed := *e
	stashed.Enabled = false
	if err := r.stash.Put(stashed); err != nil {
		return NewOpError("disable", e.Location, e.Name, fmt.Errorf("failed to stash entry: %w", err))
	}

	if err := a.Remove(ctx, e.record()); err != nil {
		if dropErr := r.stash.Drop(e.Key()); dropErr != nil {
			r.log.Warn().Err(dropErr).Str("name", e.Name).Msg("failed to roll back stash")
		}
		return NewOpError("disable", e.Location, e.Name, err)
	}

	e.Enabled = false
	return nil
}

// Enable re-adds a disabled entry from the stash. Enabling an enabled entry
// is a no-op.
func (r *Router) Enable(ctx context.Context, e *Entry) error {
	err := r.enable(ctx, e)
	r.record("enable", e, err)
	return err
}

func (r *Router) enable(ctx context.Context, e *Entry) error {
	a, err := r.adapterFor("enable", e)
	if err != nil {
		return err
	}
	if e.Enabled {
		return nil
	}
	if r.stash == nil {
		return &OpError{Op: "enable", Location: e.Location, Name: e.Name, Err: ErrNoStash}
	}

	rec, err := r.stash.Source(*e)
	if err != nil {
		return NewOpError("enable", e.Location, e.Name, err)
	}
	if err := a.Add(ctx, rec); err != nil {
		return NewOpError("enable", e.Location, e.Name, err)
	}
	if err := r.stash.Drop(e.Key()); err != nil {
		r.log.Warn().Err(err).Str("name", e.Name).Msg("entry re-added but stash not cleared")
	}

	e.Enabled = true
	return nil
}

func (r *Router) record(action string, e *Entry, err error) {
	if err != nil {
		r.log.Warn().Err(err).Str("action", action).Str("name", e.Name).Str("location", string(e.Location)).Msg("mutation failed")
	}
	if r.journal == nil {
		return
	}
	if jerr := r.journal.Record(action, *e, err); jerr != nil {
		r.log.Warn().Err(jerr).Str("action", action).Msg("failed to journal mutation")
	}
}
