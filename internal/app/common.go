package app

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/startupmgr/internal/config"
	"github.com/blackwell-systems/startupmgr/internal/locations"
	"github.com/blackwell-systems/startupmgr/internal/logger"
	"github.com/blackwell-systems/startupmgr/internal/publisher"
	"github.com/blackwell-systems/startupmgr/internal/snapshots"
	"github.com/blackwell-systems/startupmgr/internal/startup"
	"github.com/blackwell-systems/startupmgr/internal/store"
)

// runKeyOpener overrides registry access; nil selects the live registry.
var runKeyOpener func(kind startup.LocationKind) locations.KeyOpener

// env is everything a command needs, wired from the settings file.
type env struct {
	settings  *config.Settings
	log       zerolog.Logger
	store     *store.Store
	stash     *store.Stash
	adapters  []startup.Adapter
	resolver  *publisher.Resolver
	engine    *startup.Engine
	router    *startup.Router
	catalog   *startup.Catalog
	snapshots *snapshots.Manager
}

// loadSettings resolves the config directory and reads its settings file.
func loadSettings() (*config.Settings, error) {
	dir, err := config.Dir(configDirFlag)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config directory: %w", err)
	}
	settings, err := config.LoadSettings(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	return settings, nil
}

func newLogger(settings *config.Settings) zerolog.Logger {
	log, err := logger.New(logger.Config{Level: settings.LogLevel, Debug: verboseFlag})
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ ignoring log_level %q: %v\n", settings.LogLevel, err)
		log, _ = logger.New(logger.Config{Debug: verboseFlag})
	}
	return log
}

// openEnv opens the state database and builds the adapter stack.
func openEnv() (*env, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	log := newLogger(settings)

	if err := os.MkdirAll(settings.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	st, err := store.Open(settings.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	e := &env{
		settings: settings,
		log:      log,
		store:    st,
		stash:    store.NewStash(st, settings.StashDir),
	}

	e.adapters = locations.Defaults(locations.Options{
		UserStartupDir:   settings.UserStartupDir,
		CommonStartupDir: settings.CommonStartupDir,
		RunKey:           runKeyOpener,
	}, logger.WithComponent(log, "locations"))

	e.resolver = publisher.New(settings.PublisherCacheSize, logger.WithComponent(log, "publisher"))

	e.engine = startup.NewEngine(e.resolver, e.adapters,
		startup.WithDisabledSource(e.stash),
		startup.WithLogger(logger.WithComponent(log, "engine")),
		startup.Sequential(settings.Sequential),
	)
	e.router = startup.NewRouter(e.adapters,
		startup.WithStash(e.stash),
		startup.WithJournal(st),
		startup.WithRouterLogger(logger.WithComponent(log, "router")),
	)
	e.catalog = startup.NewCatalog(e.engine, e.router)
	e.snapshots = snapshots.New(settings.BackupDir, snapshots.WithLogger(logger.WithComponent(log, "snapshots")))

	return e, nil
}

func (e *env) Close() error {
	return e.store.Close()
}

// folderDirs returns the startup folder of each folder adapter.
func (e *env) folderDirs() map[startup.LocationKind]string {
	dirs := make(map[startup.LocationKind]string)
	for _, a := range e.adapters {
		if f, ok := a.(*locations.FolderAdapter); ok {
			dirs[f.Kind()] = f.Dir()
		}
	}
	return dirs
}

func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

// parseLocationFlag returns "" for an empty flag value.
func parseLocationFlag(value string) (startup.LocationKind, error) {
	if value == "" {
		return "", nil
	}
	return startup.ParseLocationKind(value)
}

// confirm prompts the user and reports whether they answered yes.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)

	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
