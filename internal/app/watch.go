package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/startupmgr/internal/config"
	"github.com/blackwell-systems/startupmgr/internal/locations"
	"github.com/blackwell-systems/startupmgr/internal/logger"
	"github.com/blackwell-systems/startupmgr/internal/startup"
	"github.com/blackwell-systems/startupmgr/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Report changes to the startup folders as they happen",
	Long: `Watch the user and common startup folders and print a line for every
file that is created, modified, renamed or removed.

Installers often drop shortcuts into these folders; watch shows them as
they appear. Registry run-keys are not watched; use 'startupmgr list'.

Press Ctrl+C to stop.`,
	RunE: runWatch,
}

func init() {
	RootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	log := newLogger(settings)

	w, err := newFolderWatcher(settings, logger.WithComponent(log, "watcher"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return watchLoop(ctx, w)
}

func newFolderWatcher(settings *config.Settings, log zerolog.Logger) (*watcher.Watcher, error) {
	user, common := locations.ResolveStartupDirs(settings.UserStartupDir, settings.CommonStartupDir, log)

	w, err := watcher.New(map[startup.LocationKind]string{
		startup.UserFolder:    user,
		startup.MachineFolder: common,
	}, log)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// watchLoop prints changes until ctx is cancelled.
func watchLoop(ctx context.Context, w *watcher.Watcher) error {
	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Stop()

	fmt.Println("Watching startup folders (press Ctrl+C to stop)...")
	fmt.Println()

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nWatcher stopped")
			return nil
		case c, ok := <-w.Changes():
			if !ok {
				return nil
			}
			fmt.Println(c)
		}
	}
}
