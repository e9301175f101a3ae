package utils

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// NewLogger creates the process logger. Development gets human-readable console output,
// everything else JSON lines.
func NewLogger(development bool) zerolog.Logger {
	return newLogger(os.Stdout, development)
}

func newLogger(out io.Writer, development bool) zerolog.Logger {
	if development {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}
	return zerolog.New(out).With().Timestamp().Logger()
}
