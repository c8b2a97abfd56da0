package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New creates a zerolog logger writing to stderr. Format "console" gives
// human-readable output for the CLI; anything else logs JSON for the
// dev server.
func New(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = os.Stderr
	if format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
