// Package types implements the closed sum of value types used throughout
// the semantic core: Variant, Null, Primitive, Named, Generic and Union.
package types

import (
	"sort"
	"strings"
)

// Type is the interface implemented by every member of the type sum.
// Concrete variants live in this file; Union is normalized on construction
// so that it never contains Variant or another Union (see NormalizeUnion).
type Type interface {
	String() string
	Equal(Type) bool
	// isType is unexported so the sum is closed to this package.
	isType()
}

// Variant is the top of the lattice: "any value, type unknown".
type Variant struct{}

func (Variant) String() string   { return "Variant" }
func (Variant) isType()          {}
func (v Variant) Equal(o Type) bool {
	_, ok := o.(Variant)
	return ok
}

// Null is the singleton null type.
type Null struct{}

func (Null) String() string { return "null" }
func (Null) isType()        {}
func (n Null) Equal(o Type) bool {
	_, ok := o.(Null)
	return ok
}

// Primitive is one of a fixed catalog of built-in scalar kinds
// (integer, float, boolean, string, string-name, node-path, ...).
type Primitive struct {
	Name string
}

func (p Primitive) String() string { return p.Name }
func (Primitive) isType()          {}
func (p Primitive) Equal(o Type) bool {
	op, ok := o.(Primitive)
	return ok && op.Name == p.Name
}

// Named is any non-generic user or runtime class, identified by name.
type Named struct {
	Name string
}

func (n Named) String() string { return n.Name }
func (Named) isType()          {}
func (n Named) Equal(o Type) bool {
	on, ok := o.(Named)
	return ok && on.Name == n.Name
}

// Generic is a parameterized container type, e.g. Array[Int],
// Dictionary[String, Node], or a packed-array alias treated as
// Generic{Base: "PackedInt32Array"} with no Args.
type Generic struct {
	Base string
	Args []Type
}

func (g Generic) String() string {
	if len(g.Args) == 0 {
		return g.Base
	}
	parts := make([]string, len(g.Args))
	for i, a := range g.Args {
		parts[i] = a.String()
	}
	return g.Base + "[" + strings.Join(parts, ", ") + "]"
}

func (Generic) isType() {}

func (g Generic) Equal(o Type) bool {
	og, ok := o.(Generic)
	if !ok || og.Base != g.Base || len(og.Args) != len(g.Args) {
		return false
	}
	for i := range g.Args {
		if !g.Args[i].Equal(og.Args[i]) {
			return false
		}
	}
	return true
}

// Union is a finite, unordered, non-union, non-variant set of at least
// two types. Always construct via NormalizeUnion / Join so the
// invariants in spec.md §3 hold: Union never contains Variant (absorbs)
// nor another Union (flattened).
type Union struct {
	Members []Type
}

func (u Union) String() string {
	parts := make([]string, len(u.Members))
	for i, m := range u.Members {
		parts[i] = m.String()
	}
	return strings.Join(parts, " | ")
}

func (Union) isType() {}

func (u Union) Equal(o Type) bool {
	ou, ok := o.(Union)
	if !ok || len(ou.Members) != len(u.Members) {
		return false
	}
	// Members are always kept sorted by String() by NormalizeUnion, so a
	// positional comparison is sufficient.
	for i := range u.Members {
		if !u.Members[i].Equal(ou.Members[i]) {
			return false
		}
	}
	return true
}

// NormalizeUnion flattens nested unions, absorbs Variant (Variant joined
// with anything collapses the whole union to Variant, per spec.md §3),
// deduplicates by rendered form, sorts for deterministic output, and
// collapses a single surviving member to that member directly.
func NormalizeUnion(members ...Type) Type {
	flat := make([]Type, 0, len(members))
	for _, m := range members {
		if m == nil {
			continue
		}
		switch mm := m.(type) {
		case Union:
			flat = append(flat, mm.Members...)
		case Variant:
			return Variant{}
		default:
			flat = append(flat, mm)
		}
	}

	seen := make(map[string]bool, len(flat))
	unique := make([]Type, 0, len(flat))
	for _, t := range flat {
		key := t.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, t)
	}

	switch len(unique) {
	case 0:
		return Variant{}
	case 1:
		return unique[0]
	}

	sort.Slice(unique, func(i, j int) bool { return unique[i].String() < unique[j].String() })
	return Union{Members: unique}
}

// Join computes the least upper bound of two types for merge/union
// purposes: Variant absorbs everything, identical types collapse, and
// distinct types form (or extend) a Union.
func Join(a, b Type) Type {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if _, ok := a.(Variant); ok {
		return Variant{}
	}
	if _, ok := b.(Variant); ok {
		return Variant{}
	}
	if a.Equal(b) {
		return a
	}
	return NormalizeUnion(a, b)
}

// Members returns the flattened member list of t: a Union's members, or
// a single-element slice for any other type.
func Members(t Type) []Type {
	if t == nil {
		return nil
	}
	if u, ok := t.(Union); ok {
		return u.Members
	}
	return []Type{t}
}

// IsVariant reports whether t is the top type.
func IsVariant(t Type) bool {
	_, ok := t.(Variant)
	return ok
}

// IsConcrete reports whether t is neither Variant nor nil — i.e. it
// carries actual information about the value's shape.
func IsConcrete(t Type) bool {
	return t != nil && !IsVariant(t)
}
