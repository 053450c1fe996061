package infer

import (
	"testing"

	"github.com/oxhq/semcore/internal/ast"
	"github.com/oxhq/semcore/internal/flow"
	"github.com/oxhq/semcore/internal/narrow"
	"github.com/oxhq/semcore/internal/provider"
	"github.com/oxhq/semcore/internal/provider/builtin"
	"github.com/oxhq/semcore/internal/symbols"
	"github.com/oxhq/semcore/internal/types"
)

// fakeProvider wraps the builtin fixture catalog to add global functions,
// which Catalog itself only populates from its own package.
type fakeProvider struct {
	*builtin.Catalog
	globals map[string]provider.MemberInfo
}

func (f fakeProvider) GetGlobalFunction(name string) (provider.MemberInfo, bool) {
	m, ok := f.globals[name]
	return m, ok
}

func newTestEngine() (*Engine, *ast.Arena) {
	a := ast.NewArena()
	e := NewEngine(a, symbols.NewTable(a.Root()), symbols.NewClassTable(), builtin.New())
	return e, a
}

func ident(a *ast.Arena, name string) ast.NodeID {
	return a.Add(ast.KindIdentifier, a.Root(), ast.Identifier{Name: name}, ast.Pos{})
}

func intLit(a *ast.Arena, v int64) ast.NodeID {
	return a.Add(ast.KindIntLiteral, a.Root(), ast.IntLiteral{Value: v}, ast.Pos{})
}

func floatLit(a *ast.Arena, v float64) ast.NodeID {
	return a.Add(ast.KindFloatLiteral, a.Root(), ast.FloatLiteral{Value: v}, ast.Pos{})
}

func strLit(a *ast.Arena, v string) ast.NodeID {
	return a.Add(ast.KindStringLiteral, a.Root(), ast.StringLiteral{Value: v}, ast.Pos{})
}

func binary(a *ast.Arena, op ast.BinaryOp, l, r ast.NodeID) ast.NodeID {
	return a.Add(ast.KindBinaryExpr, a.Root(), ast.BinaryExpr{Op: op, Left: l, Right: r}, ast.Pos{})
}

func TestInferBinaryNumericPromotion(t *testing.T) {
	e, a := newTestEngine()
	expr := binary(a, ast.OpAdd, intLit(a, 1), floatLit(a, 2.5))
	got := e.Infer(expr, nil)
	if !got.Equal(types.Primitive{Name: "Float"}) {
		t.Errorf("1 + 2.5 = %s, want Float", got.String())
	}

	bothInt := binary(a, ast.OpAdd, intLit(a, 1), intLit(a, 2))
	got = e.Infer(bothInt, nil)
	if !got.Equal(types.Primitive{Name: "Int"}) {
		t.Errorf("1 + 2 = %s, want Int", got.String())
	}

	concat := binary(a, ast.OpAdd, strLit(a, "a"), strLit(a, "b"))
	got = e.Infer(concat, nil)
	if !got.Equal(types.Primitive{Name: "String"}) {
		t.Errorf(`"a" + "b" = %s, want String`, got.String())
	}
}

func TestInferComparisonIsBool(t *testing.T) {
	e, a := newTestEngine()
	expr := binary(a, ast.OpLess, intLit(a, 1), intLit(a, 2))
	got := e.Infer(expr, nil)
	if !got.Equal(types.Primitive{Name: "Bool"}) {
		t.Errorf("1 < 2 = %s, want Bool", got.String())
	}
}

func TestInferUnary(t *testing.T) {
	e, a := newTestEngine()
	not := a.Add(ast.KindUnaryExpr, a.Root(), ast.UnaryExpr{Op: ast.OpNot, Operand: intLit(a, 1)}, ast.Pos{})
	if got := e.Infer(not, nil); !got.Equal(types.Primitive{Name: "Bool"}) {
		t.Errorf("not 1 = %s, want Bool", got.String())
	}

	neg := a.Add(ast.KindUnaryExpr, a.Root(), ast.UnaryExpr{Op: ast.OpNeg, Operand: floatLit(a, 1.5)}, ast.Pos{})
	if got := e.Infer(neg, nil); !got.Equal(types.Primitive{Name: "Float"}) {
		t.Errorf("-1.5 = %s, want Float", got.String())
	}
}

func TestInferTernaryJoinsBranches(t *testing.T) {
	e, a := newTestEngine()
	cond := ident(a, "flag")
	te := a.Add(ast.KindTernaryExpr, a.Root(), ast.TernaryExpr{Cond: cond, Then: intLit(a, 1), Else: strLit(a, "s")}, ast.Pos{})

	got := e.Infer(te, flow.New())
	u, ok := got.(types.Union)
	if !ok {
		t.Fatalf("expected Union, got %s", got.String())
	}
	if len(u.Members) != 2 {
		t.Errorf("len(Members) = %d, want 2 (%s)", len(u.Members), got.String())
	}
}

func TestInferMemberAccessViaProvider(t *testing.T) {
	e, a := newTestEngine()
	recv := ident(a, "n")
	ma := a.Add(ast.KindMemberAccess, a.Root(), ast.MemberAccess{Receiver: recv, Member: "name"}, ast.Pos{})

	state := flow.New()
	state.Declare("n", types.Named{Name: "Node"}, types.Named{Name: "Node"})

	got := e.Infer(ma, state)
	if !got.Equal(types.Primitive{Name: "StringName"}) {
		t.Errorf("n.name = %s, want StringName", got.String())
	}
}

func TestInferMemberAccessOnUnionMajorityVote(t *testing.T) {
	e, _ := newTestEngine()
	u := types.Union{Members: []types.Type{types.Named{Name: "Node"}, types.Named{Name: "Node2D"}, types.Primitive{Name: "Int"}}}
	got, ok := e.memberTypeForUnion(u, "name")
	if !ok {
		t.Fatalf("expected a majority hit for 'name' across Node/Node2D/Int")
	}
	if !got.Equal(types.Primitive{Name: "StringName"}) {
		t.Errorf("got %s, want StringName", got.String())
	}

	// "position" is declared only on Node2D: one of three members, not a
	// strict majority, so the union must not resolve it.
	_, ok = e.memberTypeForUnion(u, "position")
	if ok {
		t.Errorf("expected no majority for a member only one of three union types declares")
	}
}

func TestInferIndexArrayElementType(t *testing.T) {
	e, a := newTestEngine()
	recv := ident(a, "xs")
	idx := a.Add(ast.KindIndexExpr, a.Root(), ast.IndexExpr{Receiver: recv, Index: intLit(a, 0)}, ast.Pos{})

	state := flow.New()
	arrType := types.Generic{Base: "Array", Args: []types.Type{types.Primitive{Name: "Int"}}}
	state.Declare("xs", arrType, arrType)

	got := e.Infer(idx, state)
	if !got.Equal(types.Primitive{Name: "Int"}) {
		t.Errorf("xs[0] = %s, want Int", got.String())
	}
}

func TestInferIndexDictionaryYieldsValueType(t *testing.T) {
	e, a := newTestEngine()
	recv := ident(a, "d")
	idx := a.Add(ast.KindIndexExpr, a.Root(), ast.IndexExpr{Receiver: recv, Index: strLit(a, "k")}, ast.Pos{})

	state := flow.New()
	dictType := types.Generic{Base: "Dictionary", Args: []types.Type{types.Primitive{Name: "String"}, types.Named{Name: "Node"}}}
	state.Declare("d", dictType, dictType)

	got := e.Infer(idx, state)
	if !got.Equal(types.Named{Name: "Node"}) {
		t.Errorf("d[k] = %s, want Node", got.String())
	}
}

func TestInferCallGlobalFunction(t *testing.T) {
	a := ast.NewArena()
	prov := fakeProvider{
		Catalog: builtin.New(),
		globals: map[string]provider.MemberInfo{
			"load": {Name: "load", Kind: provider.MemberMethod, Type: "Image"},
		},
	}
	e := NewEngine(a, symbols.NewTable(a.Root()), symbols.NewClassTable(), prov)

	callee := ident(a, "load")
	call := a.Add(ast.KindCallExpr, a.Root(), ast.CallExpr{Callee: callee, Args: []ast.NodeID{strLit(a, "res://x.png")}}, ast.Pos{})

	got := e.Infer(call, nil)
	if !got.Equal(types.Named{Name: "Image"}) {
		t.Errorf("load(...) = %s, want Image", got.String())
	}
}

// TestNarrowingIsTypeThenMemberAccess covers scenario S1 (spec.md §8):
// narrowing a Variant parameter with `x is Dictionary` makes a subsequent
// `x.get(...)` resolve through the provider instead of staying Variant.
func TestNarrowingIsTypeThenMemberAccess(t *testing.T) {
	e, a := newTestEngine()

	state := flow.New()
	state.Declare("x", types.Variant{}, types.Variant{})
	cond := a.Add(ast.KindBinaryExpr, a.Root(), ast.BinaryExpr{Op: ast.OpIs, Left: ident(a, "x"), TypeName: "Dictionary"}, ast.Pos{})

	typeOf, elemKey := e.narrowCallbacks(state)
	an := &narrow.Analyzer{Arena: a, TypeOf: typeOf, ElementKeyOf: elemKey}
	r := an.Analyze(cond, false)

	branchState := state.Clone()
	for name, ty := range r.Types {
		branchState.Narrow(name, ty)
	}

	recv := ident(a, "x")
	call := a.Add(ast.KindCallExpr, a.Root(), ast.CallExpr{
		Callee: a.Add(ast.KindMemberAccess, a.Root(), ast.MemberAccess{Receiver: recv, Member: "get"}, ast.Pos{}),
		Args:   []ast.NodeID{strLit(a, "k")},
	}, ast.Pos{})

	got := e.Infer(call, branchState)
	if !got.Equal(types.Variant{}) {
		t.Errorf("Dictionary.get(...) = %s, want Variant", got.String())
	}
	if branchState.CurrentType("x").String() != "Dictionary" {
		t.Errorf("x narrowed to %s, want Dictionary", branchState.CurrentType("x").String())
	}
}

func TestInferLambdaDoesNotMutateOuterState(t *testing.T) {
	e, a := newTestEngine()

	body := a.Add(ast.KindBlockStmt, a.Root(), ast.BlockStmt{Statements: []ast.NodeID{}}, ast.Pos{})
	param := a.Add(ast.KindParamDecl, a.Root(), ast.ParamDecl{Name: "y"}, ast.Pos{})
	lambda := a.Add(ast.KindLambdaExpr, a.Root(), ast.LambdaExpr{Params: []ast.NodeID{param}, Body: body}, ast.Pos{})

	state := flow.New()
	state.Declare("x", types.Primitive{Name: "Int"}, types.Primitive{Name: "Int"})

	got := e.Infer(lambda, state)
	if _, ok := got.(types.Generic); !ok {
		t.Fatalf("lambda type = %T, want Generic(Callable)", got)
	}
	if _, ok := state.Get("y"); ok {
		t.Errorf("lambda parameter leaked into outer state")
	}
}

func TestInferRecursionGuardTerminatesOnSelfReferentialNode(t *testing.T) {
	a := ast.NewArena()
	e := NewEngine(a, symbols.NewTable(a.Root()), symbols.NewClassTable(), builtin.New())

	// A binary expression whose own operands point back at itself: not
	// producible by a real parser, but exercises the cycle guard the same
	// way a pathological cross-method return cycle would.
	self := a.Add(ast.KindBinaryExpr, a.Root(), ast.BinaryExpr{Op: ast.OpAdd}, ast.Pos{})
	a.Get(self).Payload = ast.BinaryExpr{Op: ast.OpAdd, Left: self, Right: self}

	got := e.Infer(self, nil)
	if !got.Equal(types.Variant{}) {
		t.Errorf("cyclic node inference = %s, want Variant", got.String())
	}
}
