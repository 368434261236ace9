package startup

import (
	"context"
	"fmt"
	"sync"
)

// Verb names a mutation the Catalog can apply.
type Verb string

const (
	VerbAdd     Verb = "add"
	VerbRemove  Verb = "remove"
	VerbEnable  Verb = "enable"
	VerbDisable Verb = "disable"
)

// Result is the outcome of one mutation within a batch.
type Result struct {
	Entry Entry
	Err   error
}

// Catalog owns the in-memory entry set. Mutations are serialized by its lock;
// reads return copies.
type Catalog struct {
	mu      sync.Mutex
	engine  *Engine
	router  *Router
	entries []Entry
}

// NewCatalog creates an empty catalog. Call Refresh to populate it.
func NewCatalog(engine *Engine, router *Router) *Catalog {
	return &Catalog{engine: engine, router: router}
}

// Refresh replaces the set with a fresh discovery.
func (c *Catalog) Refresh(ctx context.Context) *Discovery {
	d := c.engine.Discover(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append([]Entry(nil), d.Entries...)
	return d
}

// Entries returns a copy of the current set.
func (c *Catalog) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Entry(nil), c.entries...)
}

// Replace swaps in entries wholesale. restore does this when it loads a
// snapshot for display.
func (c *Catalog) Replace(entries []Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append([]Entry(nil), entries...)
}

// Find looks up an entry by location and name.
func (c *Catalog) Find(k Key) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(k); i >= 0 {
		return c.entries[i], true
	}
	return Entry{}, false
}

// Apply runs one mutation and returns its result.
func (c *Catalog) Apply(ctx context.Context, verb Verb, target Entry) Result {
	return c.ApplyAll(ctx, verb, []Entry{target})[0]
}

// ApplyAll attempts verb on every target independently. A failure for one
// target never stops the rest; each outcome is reported in its Result.
func (c *Catalog) ApplyAll(ctx context.Context, verb Verb, targets []Entry) []Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	results := make([]Result, 0, len(targets))
	for _, t := range targets {
		e := t
		err := c.apply(ctx, verb, &e)
		if err == nil {
			c.update(verb, e)
		}
		results = append(results, Result{Entry: e, Err: err})
	}
	return results
}

func (c *Catalog) apply(ctx context.Context, verb Verb, e *Entry) error {
	switch verb {
	case VerbAdd:
		return c.router.Add(ctx, e)
	case VerbRemove:
		return c.router.Remove(ctx, e)
	case VerbEnable:
		return c.router.Enable(ctx, e)
	case VerbDisable:
		return c.router.Disable(ctx, e)
	default:
		return fmt.Errorf("unknown verb %q", verb)
	}
}

// update reflects a successful mutation in the set (lock held).
func (c *Catalog) update(verb Verb, e Entry) {
	i := c.indexOf(e.Key())
	switch {
	case verb == VerbRemove:
		if i >= 0 {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
		}
	case i >= 0:
		c.entries[i] = e
	default:
		c.entries = append(c.entries, e)
	}
}

func (c *Catalog) indexOf(k Key) int {
	for i := range c.entries {
		if c.entries[i].Key() == k {
			return i
		}
	}
	return -1
}
