//go:build !windows

package locations

import (
	"errors"
	"fmt"
	"io/fs"
	"runtime"

	"github.com/blackwell-systems/startupmgr/internal/startup"
)

var errNoRegistry = fmt.Errorf("registry is not available on %s: %w", runtime.GOOS, errors.ErrUnsupported)

type absentOpener struct{}

// SystemRunKey returns an opener with no backing registry. Reads behave as if
// the run-key does not exist; writes fail.
func SystemRunKey(kind startup.LocationKind) KeyOpener {
	return absentOpener{}
}

func (absentOpener) OpenRunKey(access Access) (RunKey, error) {
	if access == CreateAccess {
		return nil, errNoRegistry
	}
	return nil, fs.ErrNotExist
}
