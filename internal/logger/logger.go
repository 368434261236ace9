// Package logger builds the zerolog logger used for startupmgr diagnostics.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config controls diagnostic logging.
type Config struct {
	Level  string
	Debug  bool
	Output io.Writer
}

// New returns a console logger writing to cfg.Output (stderr when nil).
// Debug forces debug level; otherwise Level is parsed, defaulting to warn.
func New(cfg Config) (zerolog.Logger, error) {
	var output io.Writer = os.Stderr
	if cfg.Output != nil {
		output = cfg.Output
	}

	level := zerolog.WarnLevel

	if cfg.Debug {
		level = zerolog.DebugLevel
	} else if cfg.Level != "" {
		var err error

		level, err = zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), err
		}
	}

	console := zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: time.Kitchen,
		NoColor:    !isTerminal(output),
	}

	return zerolog.New(console).
		Level(level).
		With().
		Timestamp().
		Logger(), nil
}

// WithComponent tags log lines with the emitting component.
func WithComponent(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str("component", component).Logger()
}
