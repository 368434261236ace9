package startup

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrAccessDenied means the caller lacks the privilege the location needs.
	ErrAccessDenied = errors.New("access denied")
	// ErrNotFound means a backing key, folder, file or record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidFormat means a persisted record could not be parsed.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrUnsupportedLocation means no adapter is registered for an entry's location.
	ErrUnsupportedLocation = errors.New("unsupported location")
	// ErrIO is any other operating-system I/O failure.
	ErrIO = errors.New("i/o failure")
)

// OpError records the operation, location and entry behind a failure.
type OpError struct {
	Op       string
	Location LocationKind
	Name     string
	Err      error
}

func (e *OpError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Location, e.Err)
	}
	return fmt.Sprintf("%s %q in %s: %v", e.Op, e.Name, e.Location, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// Classify maps an operating-system error onto the error taxonomy. The
// original error stays in the chain so callers can still inspect it.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrAccessDenied), errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidFormat), errors.Is(err, ErrUnsupportedLocation),
		errors.Is(err, ErrIO):
		return err
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %w", ErrAccessDenied, err)
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	default:
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
}

// NewOpError classifies err and wraps it with operation context.
func NewOpError(op string, loc LocationKind, name string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Location: loc, Name: name, Err: Classify(err)}
}
