// Package logger builds the zerolog loggers used across both binaries.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates a new zerolog logger with the specified level and format.
func New(level, format string) zerolog.Logger {
	return build(os.Stdout, level, format)
}

// NewStderr creates a logger that writes to stderr, keeping stdout free
// for the interactive transcript.
func NewStderr(level, format string) zerolog.Logger {
	return build(os.Stderr, level, format)
}

func build(out io.Writer, level, format string) zerolog.Logger {
	var output io.Writer = out

	// Use pretty printing for console format
	if format == "console" || format == "text" {
		output = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(output).
		Level(lvl).
		With().
		Timestamp().
		Caller().
		Logger()
}

// Component returns log with a component field attached, so each subsystem
// (capture, playback, session, gateway) tags its own lines.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// NewNop creates a no-op logger for testing.
func NewNop() zerolog.Logger {
	return zerolog.Nop()
}
