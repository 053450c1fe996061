// Package symbols implements the scope stack, symbol kinds, and
// per-scope declaration/lookup described in spec.md §4.7 (C3: Symbol &
// Scope). Grounded on the teacher's symbol_table_core.go / _operations.go
// split, adapted from a unification-based type-symbol table to the
// spec's flow-sensitive, scope-aware one.
package symbols

import (
	"github.com/oxhq/semcore/internal/ast"
	"github.com/oxhq/semcore/internal/types"
)

// Kind enumerates the symbol kinds named in spec.md §3.
type Kind int

const (
	KindVariable Kind = iota
	KindParameter
	KindIterator
	KindMatchBinding
	KindProperty
	KindMethod
	KindSignal
	KindConstant
	KindEnum
	KindEnumValue
	KindClass
	KindInnerClass
)

func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "Variable"
	case KindParameter:
		return "Parameter"
	case KindIterator:
		return "Iterator"
	case KindMatchBinding:
		return "MatchBinding"
	case KindProperty:
		return "Property"
	case KindMethod:
		return "Method"
	case KindSignal:
		return "Signal"
	case KindConstant:
		return "Constant"
	case KindEnum:
		return "Enum"
	case KindEnumValue:
		return "EnumValue"
	case KindClass:
		return "Class"
	case KindInnerClass:
		return "InnerClass"
	default:
		return "Unknown"
	}
}

// ParamInfo describes one declared parameter of a method symbol.
type ParamInfo struct {
	Name string
	Type types.Type // nil if unannotated
}

// Symbol is the spec.md §3 Symbol record: name, kind, declaration node,
// declaring-scope node (so two methods can each declare a local `x`
// without conflation, spec.md §8 property 5), declared type, static-ness,
// and method-only return/parameter info.
type Symbol struct {
	Name  string
	Kind  Kind
	Decl  ast.NodeID // the AST node that declared this symbol
	Scope ast.NodeID // the enclosing method/lambda/class node

	DeclaredType types.Type // nil if the declaration is untyped
	IsStatic     bool

	// Method-only fields.
	ReturnType types.Type // nil if unannotated or not a method
	Params     []ParamInfo

	// DeclaringType is set for class members (methods, properties,
	// signals, constants, enums, inner classes): the name of the class
	// that declares them, independent of lexical scope.
	DeclaringType string
}

// IsCallable reports whether the symbol can appear as a call target.
func (s *Symbol) IsCallable() bool {
	return s.Kind == KindMethod
}
