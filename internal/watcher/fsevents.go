package watcher

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/blackwell-systems/startupmgr/internal/startup"
)

// Op is the kind of change seen in a startup folder.
type Op string

const (
	Created  Op = "created"
	Modified Op = "modified"
	Removed  Op = "removed"
	Renamed  Op = "renamed"
)

// Change is one observed modification of a startup folder.
type Change struct {
	Time     time.Time
	Location startup.LocationKind
	Name     string
	File     string
	Op       Op
}

func (c Change) String() string {
	return fmt.Sprintf("%s %s: %s %s", c.Time.Format("15:04:05"), c.Location, c.Name, c.Op)
}

// ErrNothingToWatch is returned by Start when none of the folders exist.
var ErrNothingToWatch = errors.New("no startup folder could be watched")

// Watcher turns fsnotify events in the startup folders into Changes.
type Watcher struct {
	fs      *fsnotify.Watcher
	dirs    map[string]startup.LocationKind
	changes chan Change
	stopCh  chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	log     zerolog.Logger
}

// New creates a watcher for the given folders. Blank paths are ignored.
func New(dirs map[startup.LocationKind]string, log zerolog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		fs:      fw,
		dirs:    make(map[string]startup.LocationKind),
		changes: make(chan Change, 64),
		stopCh:  make(chan struct{}),
		log:     log,
	}
	for kind, dir := range dirs {
		if dir == "" {
			continue
		}
		w.dirs[filepath.Clean(dir)] = kind
	}
	return w, nil
}

// Changes returns the stream of observed changes. It is closed by Stop.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Start registers the folders and begins delivering changes. Folders that
// cannot be watched are logged and skipped.
func (w *Watcher) Start() error {
	watched := 0
	for dir, kind := range w.dirs {
		if err := w.fs.Add(dir); err != nil {
			w.log.Warn().Err(err).Str("location", string(kind)).Str("dir", dir).Msg("cannot watch startup folder")
			continue
		}
		w.log.Debug().Str("location", string(kind)).Str("dir", dir).Msg("watching startup folder")
		watched++
	}
	if watched == 0 {
		w.fs.Close()
		return ErrNothingToWatch
	}

	w.wg.Add(1)
	go w.run()

	return nil
}

func (w *Watcher) run() {
	defer w.wg.Done()
	defer close(w.changes)

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			c, ok := w.translate(event)
			if !ok {
				continue
			}
			select {
			case w.changes <- c:
			case <-w.stopCh:
				return
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("file watcher error")
		}
	}
}

// translate maps an fsnotify event onto a Change. Events outside the
// watched folders, desktop.ini and chmod-only events are dropped.
func (w *Watcher) translate(event fsnotify.Event) (Change, bool) {
	kind, ok := w.dirs[filepath.Dir(event.Name)]
	if !ok {
		return Change{}, false
	}

	base := filepath.Base(event.Name)
	if strings.EqualFold(base, "desktop.ini") {
		return Change{}, false
	}

	var op Op
	switch {
	case event.Has(fsnotify.Create):
		op = Created
	case event.Has(fsnotify.Write):
		op = Modified
	case event.Has(fsnotify.Remove):
		op = Removed
	case event.Has(fsnotify.Rename):
		op = Renamed
	default:
		return Change{}, false
	}

	return Change{
		Time:     time.Now(),
		Location: kind,
		Name:     strings.TrimSuffix(base, filepath.Ext(base)),
		File:     event.Name,
		Op:       op,
	}, true
}

// Stop halts the watcher and closes the Changes channel. It is safe to call
// more than once.
func (w *Watcher) Stop() error {
	var err error
	w.once.Do(func() {
		close(w.stopCh)
		err = w.fs.Close()
		w.wg.Wait()
	})
	return err
}
