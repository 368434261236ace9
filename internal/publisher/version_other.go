//go:build !windows

package publisher

import (
	"errors"
	"fmt"
	"runtime"
)

var errNoVersionReader = fmt.Errorf("version resources cannot be read on %s: %w", runtime.GOOS, errors.ErrUnsupported)

func companyName(path string) (string, error) {
	return "", errNoVersionReader
}
