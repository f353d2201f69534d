// Package logging sets up the structured logger shared by every component
// of the replicated-log core. No component reaches for a package-level
// global logger; a configured *zerolog.Logger is threaded in at
// construction time instead.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds a zerolog.Logger writing level-tagged, structured JSON
// output to w (os.Stderr if nil). level parses via zerolog.ParseLevel;
// an unrecognized level falls back to info.
func New(w io.Writer, level string) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Disabled returns a logger that discards everything — the default for
// components constructed without an explicit logger.
func Disabled() zerolog.Logger {
	return zerolog.New(io.Discard).Level(zerolog.Disabled)
}

// Console builds a human-readable console writer, for CLI use, as opposed
// to the JSON output New produces for services.
func Console() zerolog.Logger {
	cw := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(cw).With().Timestamp().Logger()
}
