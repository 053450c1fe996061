package ast

import "testing"

func TestArenaParentChildLinks(t *testing.T) {
	a := NewArena()
	method := a.Add(KindMethodDecl, a.Root(), MethodDecl{Name: "f"}, Pos{})
	block := a.Add(KindBlockStmt, method, BlockStmt{}, Pos{})
	ident := a.Add(KindIdentifier, block, Identifier{Name: "x"}, Pos{})

	if a.Parent(ident) != block {
		t.Errorf("Parent(ident) = %d, want %d", a.Parent(ident), block)
	}
	if a.Parent(block) != method {
		t.Errorf("Parent(block) = %d, want %d", a.Parent(block), method)
	}
	if got := a.Get(method).Children; len(got) != 1 || got[0] != block {
		t.Errorf("method children = %v, want [%d]", got, block)
	}
}

func TestFindAncestor(t *testing.T) {
	a := NewArena()
	method := a.Add(KindMethodDecl, a.Root(), MethodDecl{Name: "f"}, Pos{})
	block := a.Add(KindBlockStmt, method, BlockStmt{}, Pos{})
	ident := a.Add(KindIdentifier, block, Identifier{Name: "x"}, Pos{})

	found := a.FindAncestor(ident, KindMethodDecl)
	if found != method {
		t.Errorf("FindAncestor(ident, MethodDecl) = %d, want %d", found, method)
	}

	notFound := a.FindAncestor(ident, KindClassDecl)
	if notFound != InvalidNode {
		t.Errorf("FindAncestor(ident, ClassDecl) = %d, want InvalidNode", notFound)
	}
}

func TestEnclosingScopeFallsBackToRoot(t *testing.T) {
	a := NewArena()
	ident := a.Add(KindIdentifier, a.Root(), Identifier{Name: "x"}, Pos{})
	if got := a.EnclosingScope(ident); got != a.Root() {
		t.Errorf("EnclosingScope at top level = %d, want root %d", got, a.Root())
	}
}

func TestPayloadAccessorMismatchIsTolerated(t *testing.T) {
	a := NewArena()
	id := a.Add(KindIdentifier, a.Root(), Identifier{Name: "x"}, Pos{})
	if _, ok := a.CallExpr(id); ok {
		t.Errorf("CallExpr accessor on an Identifier node should report false")
	}
	if _, ok := a.Identifier(InvalidNode); ok {
		t.Errorf("accessor on InvalidNode should report false")
	}
}
