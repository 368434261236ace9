package startup

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DisabledSource supplies entries that were disabled by the Router and are
// therefore no longer visible in the operating system.
type DisabledSource interface {
	ListDisabled() ([]Entry, error)
}

// Discovery is the result of one discovery pass.
type Discovery struct {
	Entries []Entry
	// Failures holds the error each failing location reported. A location
	// that failed contributes no entries but never suppresses the others.
	Failures map[LocationKind]error
	// Superseded holds stashed entries that were re-registered while
	// disabled. The live registration is reported instead.
	Superseded []Entry
}

// Engine aggregates all adapters into the unified entry set.
type Engine struct {
	adapters   []Adapter
	resolver   PublisherResolver
	disabled   DisabledSource
	log        zerolog.Logger
	sequential bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithDisabledSource merges stashed disabled entries into every discovery.
func WithDisabledSource(src DisabledSource) EngineOption {
	return func(e *Engine) { e.disabled = src }
}

// WithLogger sets the diagnostics logger.
func WithLogger(log zerolog.Logger) EngineOption {
	return func(e *Engine) { e.log = log }
}

// Sequential makes the engine enumerate adapters one after another.
func Sequential(on bool) EngineOption {
	return func(e *Engine) { e.sequential = on }
}

// NewEngine creates an Engine over the given adapters. Entries are returned
// in adapter order.
func NewEngine(resolver PublisherResolver, adapters []Adapter, opts ...EngineOption) *Engine {
	e := &Engine{
		adapters: adapters,
		resolver: resolver,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DiscoverAll returns every entry from every location.
func (e *Engine) DiscoverAll(ctx context.Context) []Entry {
	return e.Discover(ctx).Entries
}

// Discover enumerates all adapters and reports per-location failures
// alongside the entries that could be read.
func (e *Engine) Discover(ctx context.Context) *Discovery {
	perAdapter := make([][]Entry, len(e.adapters))
	errs := make([]error, len(e.adapters))

	var g errgroup.Group
	if e.sequential {
		g.SetLimit(1)
	}
	for i, a := range e.adapters {
		i, a := i, a
		g.Go(func() error {
			perAdapter[i], errs[i] = e.collect(ctx, a)
			return nil
		})
	}
	_ = g.Wait()

	d := &Discovery{Failures: make(map[LocationKind]error)}
	for i, a := range e.adapters {
		if errs[i] != nil {
			d.Failures[a.Kind()] = errs[i]
			e.log.Warn().Err(errs[i]).Str("location", string(a.Kind())).Msg("enumeration failed")
		}
		d.Entries = append(d.Entries, perAdapter[i]...)
	}

	if e.disabled != nil {
		stashed, err := e.disabled.ListDisabled()
		if err != nil {
			e.log.Warn().Err(err).Msg("failed to read disabled entries")
		}
		live := make(map[Key]bool, len(d.Entries))
		for _, entry := range d.Entries {
			live[entry.Key()] = true
		}
		for _, entry := range stashed {
			if live[entry.Key()] {
				e.log.Warn().Str("name", entry.Name).Str("location", string(entry.Location)).
					Msg("disabled entry was registered again; showing the live registration")
				d.Superseded = append(d.Superseded, entry)
				continue
			}
			d.Entries = append(d.Entries, entry)
		}
	}

	return d
}

// collect enumerates one adapter and turns its records into entries.
func (e *Engine) collect(ctx context.Context, a Adapter) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kind := a.Kind()
	records, err := a.Enumerate(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, e.toEntry(kind, rec))
	}

	e.log.Debug().Str("location", string(kind)).Int("entries", len(entries)).Msg("enumerated")
	return entries, nil
}

func (e *Engine) toEntry(kind LocationKind, rec Record) Entry {
	entry := Entry{
		Name:     rec.Name,
		Enabled:  true,
		Location: kind,
		Path:     rec.Value,
		IsSystem: kind.Privileged(),
	}
	if kind.IsRegistry() {
		entry.Command = rec.Value
		entry.Path = ExtractExecutablePath(rec.Value)
	}

	entry.Publisher = UnknownPublisher
	if e.resolver != nil {
		entry.Publisher = e.resolver.Resolve(entry.Path)
	}
	return entry
}
