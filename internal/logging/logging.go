package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// New returns the root logger. An unknown level falls back to info; verbose
// forces debug output.
func New(level string, verbose bool, out io.Writer) hclog.Logger {
	if out == nil {
		out = os.Stderr
	}

	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	if verbose {
		lvl = hclog.Debug
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   "clipsplit",
		Level:  lvl,
		Output: out,
		Color:  hclog.AutoColor,
	})
}

// Discard is used by tests and by callers that do not pass a logger.
func Discard() hclog.Logger {
	return hclog.NewNullLogger()
}
