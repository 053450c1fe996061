package infer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/oxhq/semcore/internal/ast"
	"github.com/oxhq/semcore/internal/config"
	"github.com/oxhq/semcore/internal/provider/builtin"
	"github.com/oxhq/semcore/internal/symbols"
	"github.com/oxhq/semcore/internal/tracelog"
	"github.com/oxhq/semcore/internal/types"
)

func TestEngineUsesDefaultLimitsWhenUnset(t *testing.T) {
	e, _ := newTestEngine()
	if e.maxInferDepth() != defaultInferDepth {
		t.Errorf("maxInferDepth() = %d, want default %d", e.maxInferDepth(), defaultInferDepth)
	}
	if e.maxLoopIterations() != defaultLoopIterations {
		t.Errorf("maxLoopIterations() = %d, want default %d", e.maxLoopIterations(), defaultLoopIterations)
	}
}

func TestEngineHonorsConfiguredLimits(t *testing.T) {
	e, a := newTestEngine()

	// A chain of five nested negations resolves fine at the default
	// depth: each level's type depends on the inferred type of the one
	// beneath it, so a premature Variant anywhere in the chain propagates
	// outward.
	deep := intLit(a, 1)
	for i := 0; i < 5; i++ {
		deep = a.Add(ast.KindUnaryExpr, a.Root(), ast.UnaryExpr{Op: ast.OpNeg, Operand: deep}, ast.Pos{})
	}
	if got := e.Infer(deep, nil); !got.Equal(types.Primitive{Name: "Int"}) {
		t.Fatalf("Infer at default depth = %s, want Int", got.String())
	}

	// With the recursion bound lowered below the chain's depth, the
	// engine must bottom out at Variant instead of resolving it.
	lim := config.Default()
	lim.InferenceRecursionDepth = 2
	e.Limits = &lim
	if got := e.Infer(deep, nil); !got.Equal(types.Variant{}) {
		t.Errorf("Infer with depth 2 on a 5-deep chain = %s, want Variant", got.String())
	}
}

func TestEngineTracerReceivesInferLines(t *testing.T) {
	var buf bytes.Buffer
	a := ast.NewArena()
	e := NewEngine(a, symbols.NewTable(a.Root()), symbols.NewClassTable(), builtin.New())
	e.Tracer = tracelog.NewTo(&buf, true)

	expr := binary(a, ast.OpAdd, intLit(a, 1), intLit(a, 2))
	e.Infer(expr, nil)

	if !strings.Contains(buf.String(), "[infer]") {
		t.Errorf("expected an [infer] trace line, got %q", buf.String())
	}
}

func TestDisabledTracerOnEngineProducesNoOutput(t *testing.T) {
	var buf bytes.Buffer
	a := ast.NewArena()
	e := NewEngine(a, symbols.NewTable(a.Root()), symbols.NewClassTable(), builtin.New())
	e.Tracer = tracelog.NewTo(&buf, false)

	expr := binary(a, ast.OpAdd, intLit(a, 1), intLit(a, 2))
	e.Infer(expr, nil)

	if buf.Len() != 0 {
		t.Errorf("disabled tracer wrote %q, want nothing", buf.String())
	}
}
