// Package logging provides the scheduler and CLI's progress-narration
// idiom: plain fmt.Fprintf to a writer, gated by a verbose flag. Grounded
// on cmd/ao/root.go's package-level VerbosePrintf — reworked into an
// instance so a library package (internal/scheduler) can hold its own
// logger instead of reaching for global state.
package logging

import (
	"fmt"
	"io"
	"os"
)

// Logger prints progress lines the way cmd/ao's VerbosePrintf does:
// unconditional Printf-style output for normal lines, gated output for
// verbose-only detail.
type Logger struct {
	Out     io.Writer
	Verbose bool
}

// New returns a Logger writing to os.Stdout.
func New(verbose bool) *Logger {
	return &Logger{Out: os.Stdout, Verbose: verbose}
}

// Printf always prints.
func (l *Logger) Printf(format string, args ...interface{}) {
	if l == nil || l.Out == nil {
		return
	}
	fmt.Fprintf(l.Out, format, args...)
}

// VerbosePrintf prints only when Verbose is set, mirroring the teacher's
// VerbosePrintf gate.
func (l *Logger) VerbosePrintf(format string, args ...interface{}) {
	if l == nil || !l.Verbose {
		return
	}
	l.Printf(format, args...)
}
