//go:build !windows

package locations

import (
	"os"
	"path/filepath"
)

const startMenuStartup = "Microsoft/Windows/Start Menu/Programs/Startup"

// StartupDirs derives the startup folders from APPDATA and ProgramData when
// they are set (for example under Wine). Either result may be empty.
func StartupDirs() (user, common string, err error) {
	if appData := os.Getenv("APPDATA"); appData != "" {
		user = filepath.Join(appData, filepath.FromSlash(startMenuStartup))
	}
	if programData := os.Getenv("ProgramData"); programData != "" {
		common = filepath.Join(programData, filepath.FromSlash(startMenuStartup))
	}
	return user, common, nil
}
