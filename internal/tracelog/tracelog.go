// Package tracelog prints narrow, low-ceremony progress lines from the
// analysis core's hot paths, the same inspection role the teacher compiler
// gives its debug/trace builtins.
package tracelog

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Tracer writes trace lines when Enabled, colorizing them only when the
// underlying writer is an actual terminal.
type Tracer struct {
	Enabled bool
	w       io.Writer
	color   bool
}

// New builds a Tracer writing to os.Stderr, enabled only if enabled is true.
// Color is auto-detected from whether stderr is a terminal.
func New(enabled bool) *Tracer {
	return &Tracer{
		Enabled: enabled,
		w:       os.Stderr,
		color:   isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()),
	}
}

// NewTo builds a Tracer writing to w, color-detected from w if it exposes
// an Fd() uintptr method (as *os.File does), else uncolored.
func NewTo(w io.Writer, enabled bool) *Tracer {
	t := &Tracer{Enabled: enabled, w: w}
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		t.color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return t
}

const (
	colorFlow   = "\x1b[36m" // cyan
	colorNarrow = "\x1b[33m" // yellow
	colorReset  = "\x1b[0m"
)

func (t *Tracer) emit(tag, color, format string, args ...any) {
	if t == nil || !t.Enabled {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if t.color {
		fmt.Fprintf(t.w, "%s[%s]%s %s\n", color, tag, colorReset, msg)
	} else {
		fmt.Fprintf(t.w, "[%s] %s\n", tag, msg)
	}
}

// Flow logs a flow-analyzer statement walk.
func (t *Tracer) Flow(format string, args ...any) {
	t.emit("flow", colorFlow, format, args...)
}

// Narrow logs a narrowing-analyzer condition evaluation.
func (t *Tracer) Narrow(format string, args ...any) {
	t.emit("narrow", colorNarrow, format, args...)
}

// Infer logs a type-inference decision.
func (t *Tracer) Infer(format string, args ...any) {
	t.emit("infer", colorFlow, format, args...)
}
