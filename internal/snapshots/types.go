package snapshots

import (
	"regexp"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/startupmgr/internal/startup"
)

// Snapshot is the JSON structure stored in backup files.
type Snapshot struct {
	Timestamp time.Time       `json:"timestamp"`
	Entries   []startup.Entry `json:"entries"`
}

// Summary describes a stored snapshot without its entries.
type Summary struct {
	ID         string
	Path       string
	Timestamp  time.Time
	EntryCount int
}

const (
	filePrefix      = "backup_"
	fileExt         = ".json"
	timestampLayout = "20060102_150405"
)

// idPattern matches backup_<yyyyMMdd_HHmmss> with an optional _N collision suffix.
var idPattern = regexp.MustCompile(`^backup_\d{8}_\d{6}(_\d+)?$`)

// Manager manages snapshot capture, listing, restoration and cleanup.
type Manager struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
	log zerolog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the diagnostics logger.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// New creates a new snapshot Manager storing records in dir.
func New(dir string, opts ...Option) *Manager {
	m := &Manager{
		dir: dir,
		now: time.Now,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dir returns the backup directory.
func (m *Manager) Dir() string {
	return m.dir
}
