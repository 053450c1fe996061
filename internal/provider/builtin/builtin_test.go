package builtin

import "testing"

func TestGetMemberWalksBaseChain(t *testing.T) {
	c := New()
	m, ok := c.GetMember("Node2D", "add_child")
	if !ok {
		t.Fatalf("expected Node2D to inherit add_child from Node")
	}
	if m.Name != "add_child" {
		t.Errorf("got member %q", m.Name)
	}
}

func TestIsAssignableToTransitive(t *testing.T) {
	c := New()
	if !c.IsAssignableTo("Node2D", "Node") {
		t.Errorf("Node2D should be assignable to Node")
	}
	if c.IsAssignableTo("Node", "Node2D") {
		t.Errorf("Node should not be assignable to Node2D")
	}
}

func TestFindTypesWithMethod(t *testing.T) {
	c := New()
	types := c.FindTypesWithMethod("append")
	found := map[string]bool{}
	for _, ty := range types {
		found[ty] = true
	}
	if !found["Array"] || !found["PackedInt32Array"] {
		t.Errorf("FindTypesWithMethod(append) = %v, want Array and PackedInt32Array present", types)
	}
}
