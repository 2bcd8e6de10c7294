package logging

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// New returns the console logger shared by every component of a run.
// verbose enables debug output and caller reporting.
func New(w io.Writer, verbose bool) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportCaller:    verbose,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "videoprogress",
	})
	if verbose {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

// Discard returns a logger that drops everything; used by tests and library callers.
func Discard() *log.Logger {
	l := log.New(io.Discard)
	l.SetLevel(log.FatalLevel)
	return l
}
