// Package logging builds the zerolog loggers used across the CLI.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger writing to w.
// The level is warn, or debug when debug is set.
func New(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}

	console := zerolog.NewConsoleWriter()
	console.Out = w
	console.TimeFormat = time.DateTime
	console.NoColor = true

	return zerolog.New(console).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
