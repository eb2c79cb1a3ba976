// Package logging builds the zerolog loggers used across the player.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// MaxVerbosity is the highest accepted -v level.
const MaxVerbosity = 5

// Level maps a verbosity (0 = silent, 5 = trace) to a zerolog level.
func Level(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.Disabled
	case verbosity == 1:
		return zerolog.ErrorLevel
	case verbosity == 2:
		return zerolog.WarnLevel
	case verbosity == 3:
		return zerolog.InfoLevel
	case verbosity == 4:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// New returns a logger writing to w at the given verbosity. Terminal writers
// get the console format.
func New(verbosity int, w io.Writer) zerolog.Logger {
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		w = zerolog.ConsoleWriter{Out: f, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(w).Level(Level(verbosity)).With().Timestamp().Logger()
}

// OpenFile opens path for appending, creating its directory.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// Component returns a child logger tagged with the component name.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
