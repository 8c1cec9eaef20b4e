// Package logger provides structured logging using zerolog.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Log is the global logger instance. It writes human-readable lines until
// Configure or SetJSON switches it to JSON.
var Log = newConsole(os.Stdout)

func newConsole(w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Caller().
		Logger()
}

// Configure applies LOG_LEVEL and LOG_FORMAT ("console" or "json").
func Configure(level, format string) {
	if format == "json" {
		SetJSON()
	}
	SetLevel(level)
}

// SetLevel sets the global log level. Unknown or empty levels mean info.
func SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// SetJSON switches to JSON output on stdout.
func SetJSON() {
	SetOutput(os.Stdout)
}

// SetOutput sends JSON log lines to w. Tests use it to capture output.
func SetOutput(w io.Writer) {
	Log = zerolog.New(w).
		With().
		Timestamp().
		Logger()
}
