//go:build windows

package locations

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// StartupDirs returns the per-user and common startup folders.
func StartupDirs() (user, common string, err error) {
	user, err = windows.KnownFolderPath(windows.FOLDERID_Startup, 0)
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve user startup folder: %w", err)
	}
	common, err = windows.KnownFolderPath(windows.FOLDERID_CommonStartup, 0)
	if err != nil {
		return user, "", fmt.Errorf("failed to resolve common startup folder: %w", err)
	}
	return user, common, nil
}
