package cliconfig

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Logger builds the CLI logger writing to w. Interactive terminals get
// zerolog's console format; pipes, files and buffers get JSON lines.
// Unknown levels fall back to warn.
func Logger(w io.Writer, level string) zerolog.Logger {
	console := false
	if f, ok := w.(*os.File); ok {
		console = term.IsTerminal(int(f.Fd()))
	}
	return newLogger(w, console, level)
}

func newLogger(w io.Writer, console bool, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
