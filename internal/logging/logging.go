// Package logging builds the zerolog loggers used by the TUI and the CLI.
//
// The TUI owns the terminal, so it logs to a file. CLI commands log to
// stderr through a console writer that drops colour when stderr is not a
// terminal.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Options selects the destination and verbosity of a logger.
type Options struct {
	// Level is a zerolog level name ("debug", "info", "warn", "error").
	// Empty means info.
	Level string
	// Verbose forces debug regardless of Level.
	Verbose bool
	// File, when set, appends JSON lines to this path instead of writing to
	// Writer.
	File string
	// Writer receives console output when File is empty. Nil means stderr.
	Writer io.Writer
}

// New returns a logger and a close func that releases any opened file.
func New(opts Options) (zerolog.Logger, func() error, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), noopClose, err
	}
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	if strings.TrimSpace(opts.File) != "" {
		f, err := openLogFile(opts.File)
		if err != nil {
			return zerolog.Nop(), noopClose, err
		}
		logger := zerolog.New(f).Level(level).With().Timestamp().Logger()
		return logger, f.Close, nil
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	console := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.TimeOnly,
		NoColor:    !isTerminal(w),
	}
	logger := zerolog.New(console).Level(level).With().Timestamp().Logger()
	return logger, noopClose, nil
}

// ParseLevel maps a config level name to a zerolog level.
func ParseLevel(name string) (zerolog.Level, error) {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	if trimmed == "" {
		return zerolog.InfoLevel, nil
	}
	if trimmed == "warning" {
		trimmed = "warn"
	}
	level, err := zerolog.ParseLevel(trimmed)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

type fdWriter interface {
	Fd() uintptr
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(fdWriter)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func noopClose() error { return nil }
