package runlog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewConsole returns the process logger: human-readable lines on w (stderr
// when nil), Info level, Debug when verbose.
func NewConsole(w io.Writer, verbose bool) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	out := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    true,
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
