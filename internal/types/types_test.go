package types

import "testing"

func TestNormalizeUnionAbsorbsVariant(t *testing.T) {
	got := NormalizeUnion(Primitive{Name: "Int"}, Variant{})
	if !got.Equal((Variant{})) {
		t.Errorf("NormalizeUnion with Variant = %s, want Variant", got.String())
	}
}

func TestNormalizeUnionFlattensNested(t *testing.T) {
	inner := NormalizeUnion(Primitive{Name: "Int"}, Primitive{Name: "Float"})
	got := NormalizeUnion(inner, Primitive{Name: "String"})
	u, ok := got.(Union)
	if !ok {
		t.Fatalf("expected Union, got %T", got)
	}
	if len(u.Members) != 3 {
		t.Errorf("len(Members) = %d, want 3 (%s)", len(u.Members), got.String())
	}
}

func TestNormalizeUnionDedupsAndCollapses(t *testing.T) {
	got := NormalizeUnion(Primitive{Name: "Int"}, Primitive{Name: "Int"})
	if _, ok := got.(Union); ok {
		t.Errorf("duplicate members should collapse to a single type, got %s", got.String())
	}
	if !got.Equal((Primitive{Name: "Int"})) {
		t.Errorf("got %s, want Int", got.String())
	}
}

func TestJoinIdentical(t *testing.T) {
	a := Named{Name: "Node"}
	got := Join(a, Named{Name: "Node"})
	if !got.Equal(a) {
		t.Errorf("Join(Node, Node) = %s, want Node", got.String())
	}
}

func TestJoinDistinctFormsUnion(t *testing.T) {
	got := Join(Primitive{Name: "Int"}, Primitive{Name: "Float"})
	if _, ok := got.(Union); !ok {
		t.Errorf("Join(Int, Float) = %T, want Union", got)
	}
}

func TestGenericString(t *testing.T) {
	g := Generic{Base: "Dictionary", Args: []Type{Named{Name: "String"}, Named{Name: "Node"}}}
	want := "Dictionary[String, Node]"
	if g.String() != want {
		t.Errorf("Generic.String() = %q, want %q", g.String(), want)
	}
}

func TestMembersOfNonUnion(t *testing.T) {
	m := Members(Primitive{Name: "Int"})
	if len(m) != 1 || !m[0].Equal((Primitive{Name: "Int"})) {
		t.Errorf("Members(Int) = %v, want [Int]", m)
	}
}
