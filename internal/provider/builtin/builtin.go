// Package builtin is an in-memory provider.Provider populated with a
// small, hand-curated slice of the runtime catalog (Array, Dictionary,
// String, Node, and a few packed-array aliases). It exists purely as a
// test fixture for this module's own package tests; it is not a claim
// about the shape of the real runtime database, which is an external
// collaborator per spec.md §1. Grounded on the teacher's prelude
// singleton pattern (symbols.GetPrelude / InitBuiltins), adapted to
// populate a provider.Provider instead of a symbol table.
package builtin

import "github.com/oxhq/semcore/internal/provider"

// Catalog is a simple map-backed provider.Provider.
type Catalog struct {
	types          map[string]provider.TypeInfo
	methodIndex    map[string]map[string]bool // method name -> set of type names
	propertyIndex  map[string]map[string]bool
	globalFuncs    map[string]provider.MemberInfo
}

// New returns a Catalog pre-populated with the fixture types used across
// this module's tests and scenario checks (S1-S6 in spec.md §8).
func New() *Catalog {
	c := &Catalog{
		types:         make(map[string]provider.TypeInfo),
		methodIndex:   make(map[string]map[string]bool),
		propertyIndex: make(map[string]map[string]bool),
		globalFuncs:   make(map[string]provider.MemberInfo),
	}
	c.registerBuiltins()
	return c
}

func (c *Catalog) define(t provider.TypeInfo) {
	c.types[t.Name] = t
	for _, m := range t.Members {
		switch m.Kind {
		case provider.MemberMethod:
			if c.methodIndex[m.Name] == nil {
				c.methodIndex[m.Name] = make(map[string]bool)
			}
			c.methodIndex[m.Name][t.Name] = true
		case provider.MemberProperty:
			if c.propertyIndex[m.Name] == nil {
				c.propertyIndex[m.Name] = make(map[string]bool)
			}
			c.propertyIndex[m.Name][t.Name] = true
		}
	}
}

func method(name, retType string, params ...provider.ParamInfo) provider.MemberInfo {
	return provider.MemberInfo{Name: name, Kind: provider.MemberMethod, Type: retType, Parameters: params}
}

func prop(name, typ string) provider.MemberInfo {
	return provider.MemberInfo{Name: name, Kind: provider.MemberProperty, Type: typ}
}

func signal(name string, params ...provider.ParamInfo) provider.MemberInfo {
	return provider.MemberInfo{Name: name, Kind: provider.MemberSignal, Parameters: params}
}

func (c *Catalog) registerBuiltins() {
	c.define(provider.TypeInfo{Name: "Variant"})
	c.define(provider.TypeInfo{Name: "Int"})
	c.define(provider.TypeInfo{Name: "Float"})
	c.define(provider.TypeInfo{Name: "Bool"})
	c.define(provider.TypeInfo{Name: "String"})
	c.define(provider.TypeInfo{Name: "StringName"})
	c.define(provider.TypeInfo{Name: "NodePath"})

	c.define(provider.TypeInfo{
		Name: "Array",
		Members: []provider.MemberInfo{
			method("size", "Int"),
			method("append", "Variant", provider.ParamInfo{Name: "value", Type: "Variant"}),
			method("push_back", "Variant", provider.ParamInfo{Name: "value", Type: "Variant"}),
			method("push_front", "Variant", provider.ParamInfo{Name: "value", Type: "Variant"}),
			method("has", "Bool", provider.ParamInfo{Name: "value", Type: "Variant"}),
			method("filter", "Array", provider.ParamInfo{Name: "fn", Type: "Variant"}),
			method("keys", "Array"),
		},
	})

	for _, packed := range []string{"PackedInt32Array", "PackedInt64Array", "PackedByteArray", "PackedStringArray", "PackedFloat32Array", "PackedFloat64Array"} {
		c.define(provider.TypeInfo{
			Name: packed,
			Members: []provider.MemberInfo{
				method("size", "Int"),
				method("append", "Variant", provider.ParamInfo{Name: "value", Type: "Variant"}),
				method("has", "Bool", provider.ParamInfo{Name: "value", Type: "Variant"}),
			},
		})
	}

	c.define(provider.TypeInfo{
		Name: "Dictionary",
		Members: []provider.MemberInfo{
			method("size", "Int"),
			method("has", "Bool", provider.ParamInfo{Name: "key", Type: "Variant"}),
			method("keys", "Array"),
			method("get", "Variant", provider.ParamInfo{Name: "key", Type: "Variant"}),
			method("erase", "Bool", provider.ParamInfo{Name: "key", Type: "Variant"}),
		},
	})

	c.define(provider.TypeInfo{
		Name: "Node",
		Members: []provider.MemberInfo{
			method("add_child", "Variant", provider.ParamInfo{Name: "node", Type: "Node"}),
			method("get_node", "Node", provider.ParamInfo{Name: "path", Type: "NodePath"}),
			method("queue_free", "Variant"),
			prop("name", "StringName"),
		},
	})

	c.define(provider.TypeInfo{
		Name: "Node2D",
		Base: "Node",
		Members: []provider.MemberInfo{
			prop("position", "Vector2"),
		},
	})

	c.define(provider.TypeInfo{
		Name: "Image",
		Members: []provider.MemberInfo{
			method("size", "Int"),
			method("get_width", "Int"),
		},
	})

	c.define(provider.TypeInfo{
		Name: "XMLParser",
		Members: []provider.MemberInfo{
			method("size", "Int"),
		},
	})

	// Known singletons, never valid as inferred parameter types (C9 step 5).
	for _, singleton := range []string{"OS", "Engine", "Input"} {
		c.define(provider.TypeInfo{Name: singleton})
	}
}

func (c *Catalog) GetTypeInfo(name string) (provider.TypeInfo, bool) {
	t, ok := c.types[name]
	return t, ok
}

func (c *Catalog) GetMember(typeName, memberName string) (provider.MemberInfo, bool) {
	seen := make(map[string]bool)
	for typeName != "" && !seen[typeName] {
		seen[typeName] = true
		t, ok := c.types[typeName]
		if !ok {
			return provider.MemberInfo{}, false
		}
		for _, m := range t.Members {
			if m.Name == memberName {
				return m, true
			}
		}
		typeName = t.Base
	}
	return provider.MemberInfo{}, false
}

func (c *Catalog) GetBaseType(typeName string) (string, bool) {
	t, ok := c.types[typeName]
	if !ok || t.Base == "" {
		return "", false
	}
	return t.Base, true
}

func (c *Catalog) IsAssignableTo(source, target string) bool {
	if source == target {
		return true
	}
	seen := make(map[string]bool)
	for source != "" && !seen[source] {
		seen[source] = true
		if source == target {
			return true
		}
		t, ok := c.types[source]
		if !ok {
			return false
		}
		source = t.Base
	}
	return false
}

func (c *Catalog) IsBuiltIn(identifier string) bool {
	_, ok := c.types[identifier]
	return ok
}

func (c *Catalog) FindTypesWithMethod(methodName string) []string {
	return setKeys(c.methodIndex[methodName])
}

func (c *Catalog) FindTypesWithProperty(propertyName string) []string {
	return setKeys(c.propertyIndex[propertyName])
}

func (c *Catalog) GetAllTypes() []string {
	out := make([]string, 0, len(c.types))
	for name := range c.types {
		out = append(out, name)
	}
	return out
}

func (c *Catalog) GetGlobalFunction(name string) (provider.MemberInfo, bool) {
	m, ok := c.globalFuncs[name]
	return m, ok
}

func setKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
