// Package logger builds the zerolog logger shared by the CLI and the pipeline.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

var globalLogger = New(os.Stderr)

// New returns a console logger writing to w with timestamps and caller info.
func New(w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05.99",
		FormatMessage: func(i interface{}) string {
			return fmt.Sprintf("| %s |", i)
		},
		FormatCaller: func(i interface{}) string {
			return filepath.Base(fmt.Sprintf("%s", i))
		},
	}).With().
		Timestamp().
		Caller().
		Logger()
}

// GetLogger retrieves the global zerolog logger
func GetLogger() zerolog.Logger {
	return globalLogger
}

// WithLevel returns l filtered at the named level. Unknown names fall back to
// info; "debug" and "trace" enable stage-level detail.
func WithLevel(l zerolog.Logger, name string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return l.Level(lvl)
}
