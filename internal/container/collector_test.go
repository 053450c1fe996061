package container

import (
	"testing"

	"github.com/oxhq/semcore/internal/ast"
	"github.com/oxhq/semcore/internal/infer"
	"github.com/oxhq/semcore/internal/provider/builtin"
	"github.com/oxhq/semcore/internal/symbols"
	"github.com/oxhq/semcore/internal/types"
)

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

func newEngine(a *ast.Arena) *infer.Engine {
	return infer.NewEngine(a, symbols.NewTable(a.Root()), symbols.NewClassTable(), builtin.New())
}

// TestCollectAppendRecordsValueEvidence builds `xs.append(1)`.
func TestCollectAppendRecordsValueEvidence(t *testing.T) {
	a := ast.NewArena()
	call := a.Add(ast.KindCallExpr, a.Root(), ast.CallExpr{
		Callee: a.Add(ast.KindMemberAccess, a.Root(), ast.MemberAccess{Receiver: ident(a, "xs"), Member: "append"}, ast.Pos{}),
		Args:   []ast.NodeID{intLit(a, 1)},
	}, ast.Pos{})
	body := a.Add(ast.KindBlockStmt, a.Root(), ast.BlockStmt{Statements: []ast.NodeID{
		a.Add(ast.KindExprStmt, a.Root(), ast.ExprStmt{Expr: call}, ast.Pos{}),
	}}, ast.Pos{})

	col := NewCollector(newEngine(a), nil)
	profiles := col.Collect(body)

	p, ok := profiles["xs"]
	if !ok {
		t.Fatalf("no profile recorded for xs")
	}
	if len(p.Values) != 1 || p.Values[0].Usage != Append {
		t.Fatalf("Values = %+v, want 1 Append entry", p.Values)
	}
	inferred := p.ValueType()
	if !inferred.Type.Equal(types.Primitive{Name: "Int"}) {
		t.Errorf("ValueType() = %s, want Int", inferred.Type.String())
	}
}

// TestCollectIndexAssignmentRecordsKeyAndValue builds `d["k"] = 1`.
func TestCollectIndexAssignmentRecordsKeyAndValue(t *testing.T) {
	a := ast.NewArena()
	assign := a.Add(ast.KindAssignStmt, a.Root(), ast.AssignStmt{
		Left:  a.Add(ast.KindIndexExpr, a.Root(), ast.IndexExpr{Receiver: ident(a, "d"), Index: strLit(a, "k")}, ast.Pos{}),
		Value: intLit(a, 1),
	}, ast.Pos{})
	body := a.Add(ast.KindBlockStmt, a.Root(), ast.BlockStmt{Statements: []ast.NodeID{assign}}, ast.Pos{})

	col := NewCollector(newEngine(a), nil)
	profiles := col.Collect(body)

	p := profiles["d"]
	if p == nil {
		t.Fatalf("no profile recorded for d")
	}
	if !p.ValueType().Type.Equal(types.Primitive{Name: "Int"}) {
		t.Errorf("ValueType() = %s, want Int", p.ValueType().Type.String())
	}
	if !p.KeyType().Type.Equal(types.Primitive{Name: "String"}) {
		t.Errorf("KeyType() = %s, want String", p.KeyType().Type.String())
	}
}

// TestMixedIntFloatCollapsesToFloat covers spec.md §4.6's int+float
// collapse rule.
func TestMixedIntFloatCollapsesToFloat(t *testing.T) {
	a := ast.NewArena()
	appendInt := a.Add(ast.KindCallExpr, a.Root(), ast.CallExpr{
		Callee: a.Add(ast.KindMemberAccess, a.Root(), ast.MemberAccess{Receiver: ident(a, "xs"), Member: "push_back"}, ast.Pos{}),
		Args:   []ast.NodeID{intLit(a, 1)},
	}, ast.Pos{})
	appendFloat := a.Add(ast.KindCallExpr, a.Root(), ast.CallExpr{
		Callee: a.Add(ast.KindMemberAccess, a.Root(), ast.MemberAccess{Receiver: ident(a, "xs"), Member: "push_back"}, ast.Pos{}),
		Args:   []ast.NodeID{floatLit(a, 1.5)},
	}, ast.Pos{})
	body := a.Add(ast.KindBlockStmt, a.Root(), ast.BlockStmt{Statements: []ast.NodeID{
		a.Add(ast.KindExprStmt, a.Root(), ast.ExprStmt{Expr: appendInt}, ast.Pos{}),
		a.Add(ast.KindExprStmt, a.Root(), ast.ExprStmt{Expr: appendFloat}, ast.Pos{}),
	}}, ast.Pos{})

	col := NewCollector(newEngine(a), nil)
	profiles := col.Collect(body)

	got := profiles["xs"].ValueType()
	if !got.Type.Equal(types.Primitive{Name: "Float"}) {
		t.Errorf("ValueType() = %s, want collapsed Float", got.Type.String())
	}
}

// TestDictionaryGetRecordsKeyEvidence builds `d.get("k")`.
func TestDictionaryGetRecordsKeyEvidence(t *testing.T) {
	a := ast.NewArena()
	call := a.Add(ast.KindCallExpr, a.Root(), ast.CallExpr{
		Callee: a.Add(ast.KindMemberAccess, a.Root(), ast.MemberAccess{Receiver: ident(a, "d"), Member: "get"}, ast.Pos{}),
		Args:   []ast.NodeID{strLit(a, "k")},
	}, ast.Pos{})
	body := a.Add(ast.KindBlockStmt, a.Root(), ast.BlockStmt{Statements: []ast.NodeID{
		a.Add(ast.KindExprStmt, a.Root(), ast.ExprStmt{Expr: call}, ast.Pos{}),
	}}, ast.Pos{})

	col := NewCollector(newEngine(a), nil)
	profiles := col.Collect(body)

	p := profiles["d"]
	if p == nil || len(p.Keys) != 1 || p.Keys[0].Usage != DictionaryGet {
		t.Fatalf("Keys = %+v, want 1 DictionaryGet entry", p)
	}
}

// TestNoEvidenceYieldsVariant covers a variable with no recorded usage.
func TestNoEvidenceYieldsVariant(t *testing.T) {
	p := &Profile{Variable: "unused"}
	got := p.ValueType()
	if !got.Type.Equal(types.Variant{}) {
		t.Errorf("ValueType() = %s, want Variant", got.Type.String())
	}
	if got.Derivable {
		t.Errorf("expected Derivable = false with no evidence in either slot")
	}
}

// TestDerivableWhenOtherSlotHasEvidence covers an appended-to variable
// that only ever records value evidence never having been queried by key
// (synthetic: testing the Derivable marker directly).
func TestDerivableWhenOtherSlotHasEvidence(t *testing.T) {
	p := &Profile{Variable: "d", Values: []Evidence{{Type: types.Primitive{Name: "Int"}, Usage: Append}}}
	got := p.KeyType()
	if !got.Type.Equal(types.Variant{}) {
		t.Errorf("KeyType().Type = %s, want Variant", got.Type.String())
	}
	if !got.Derivable {
		t.Errorf("expected Derivable = true since the value slot has evidence")
	}
}

// TestElementTypeCallbackFallsBackWithoutEvidence verifies the
// ContainerProfile-shaped callback reports ok=false for a variable with
// no recorded evidence.
func TestElementTypeCallbackFallsBackWithoutEvidence(t *testing.T) {
	cb := ElementTypeCallback(map[string]*Profile{
		"xs": {Variable: "xs", Values: []Evidence{{Type: types.Primitive{Name: "String"}, Usage: Append}}},
	})

	got, ok := cb("xs")
	if !ok || !got.Equal(types.Primitive{Name: "String"}) {
		t.Errorf("cb(xs) = %s, %v; want String, true", got.String(), ok)
	}

	_, ok = cb("unseen")
	if ok {
		t.Errorf("cb(unseen) ok = true, want false (falls back to static table)")
	}
}
