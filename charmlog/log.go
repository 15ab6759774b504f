// Package charmlog provides an implementation of pomodo.Logger using charmbracelet/log
package charmlog

import (
	"io"
	"os"
	"path"
	"time"

	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/pomodo"
)

type Options struct {
	Writer io.Writer
	Level  string
	Prefix string
}

// NewLogger falls back to stdout and INFO when Writer or Level are unset or invalid.
func NewLogger(opts Options) pomodo.Logger {
	var w io.Writer = os.Stdout
	if opts.Writer != nil {
		w = opts.Writer
	}

	lvl, err := log.ParseLevel(opts.Level)
	if err != nil {
		lvl = log.InfoLevel
	}

	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          opts.Prefix,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
}

// OpenFile appends to the log file at logPath, creating it and its directory if needed.
// The caller closes the returned file.
func OpenFile(logPath, level string) (pomodo.Logger, io.Closer, error) {
	if err := os.MkdirAll(path.Dir(logPath), 0o744); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return nil, nil, err
	}
	return NewLogger(Options{Writer: f, Level: level}), f, nil
}

func Discard() pomodo.Logger {
	return NewLogger(Options{Writer: io.Discard, Level: "DEBUG"})
}
