package tracelog

import (
	"bytes"
	"strings"
	"testing"
)

func TestDisabledTracerWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTo(&buf, false)
	tr.Flow("walking %s", "if-stmt")
	if buf.Len() != 0 {
		t.Errorf("disabled tracer wrote %q, want nothing", buf.String())
	}
}

func TestEnabledTracerWritesTaggedLine(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTo(&buf, true)
	tr.Narrow("x is %s", "Dictionary")

	got := buf.String()
	if !strings.Contains(got, "[narrow]") {
		t.Errorf("output %q missing [narrow] tag", got)
	}
	if !strings.Contains(got, "x is Dictionary") {
		t.Errorf("output %q missing formatted message", got)
	}
}

func TestNilTracerIsSafeToCall(t *testing.T) {
	var tr *Tracer
	tr.Flow("should not panic")
}

func TestNonFdWriterHasNoColor(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTo(&buf, true)
	tr.Infer("x")
	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("expected no ANSI color codes when writer has no Fd(), got %q", buf.String())
	}
}
