package logger

import (
	"io"

	"github.com/charmbracelet/log"
)

// Plain creates a charm log without timestamps, meant for interactive output
// such as the CLI where lines are read by a person, not collected.
func Plain(w io.Writer, prefix string) *log.Logger {
	return NewWithConfig(w, prefix, log.GetLevel(), false, false, log.TextFormatter)
}

// Discard returns a logger that drops everything, for tests.
func Discard() *log.Logger {
	return NewWithConfig(io.Discard, "", log.FatalLevel, false, false, log.TextFormatter)
}
