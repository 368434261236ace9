//go:build windows

package locations

import "golang.org/x/sys/windows"

// Elevated reports whether the process holds an elevated (administrator) token.
func Elevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
