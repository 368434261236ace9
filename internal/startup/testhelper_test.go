package startup

import (
	"context"
	"sort"
	"sync"
)

// fakeAdapter is an in-memory Adapter keyed by record name.
type fakeAdapter struct {
	mu      sync.Mutex
	kind    LocationKind
	records map[string]string
	enumErr error
	addErr  error
	rmErr   error
	adds    int
	removes int
}

func newFakeAdapter(kind LocationKind, records ...Record) *fakeAdapter {
	f := &fakeAdapter{kind: kind, records: make(map[string]string)}
	for _, r := range records {
		f.records[r.Name] = r.Value
	}
	return f
}

func (f *fakeAdapter) Kind() LocationKind { return f.kind }

func (f *fakeAdapter) Enumerate(ctx context.Context) ([]Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.enumErr != nil {
		return nil, f.enumErr
	}
	names := make([]string, 0, len(f.records))
	for n := range f.records {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]Record, 0, len(names))
	for _, n := range names {
		out = append(out, Record{Name: n, Value: f.records[n]})
	}
	return out, nil
}

func (f *fakeAdapter) Add(ctx context.Context, rec Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adds++
	if f.addErr != nil {
		return f.addErr
	}
	if _, ok := f.records[rec.Name]; ok && !f.kind.IsRegistry() {
		return nil
	}
	f.records[rec.Name] = rec.Value
	return nil
}

func (f *fakeAdapter) Remove(ctx context.Context, rec Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removes++
	if f.rmErr != nil {
		return f.rmErr
	}
	delete(f.records, rec.Name)
	return nil
}

func (f *fakeAdapter) has(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.records[name]
	return ok
}

// memStash is an in-memory Stash.
type memStash struct {
	entries map[Key]Entry
	putErr  error
}

func newMemStash() *memStash {
	return &memStash{entries: make(map[Key]Entry)}
}

func (s *memStash) Put(e Entry) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.entries[e.Key()] = e
	return nil
}

func (s *memStash) Source(e Entry) (Record, error) {
	stored, ok := s.entries[e.Key()]
	if !ok {
		return Record{}, ErrNotFound
	}
	return stored.record(), nil
}

func (s *memStash) Drop(k Key) error {
	delete(s.entries, k)
	return nil
}

func (s *memStash) ListDisabled() ([]Entry, error) {
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// memJournal collects journal records.
type memJournal struct {
	actions []string
	failed  int
}

func (j *memJournal) Record(action string, e Entry, err error) error {
	j.actions = append(j.actions, action)
	if err != nil {
		j.failed++
	}
	return nil
}

// staticResolver resolves every path through a fixed map.
type staticResolver map[string]string

func (r staticResolver) Resolve(path string) string {
	if p, ok := r[path]; ok {
		return p
	}
	return UnknownPublisher
}
