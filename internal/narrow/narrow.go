// Package narrow implements the Narrowing Analyzer (spec.md §4.3,
// component C7): it converts a boolean condition expression into a
// narrowing map recognizing the six-plus guard idioms named in spec.md
// §4.3, and computes the "under negation" form used for the implicit
// narrowing after an early-return guard (spec.md §8 scenario S4).
//
// Grounded on the teacher's constraints.go (condition-driven constraint
// extraction feeding the unifier), adapted from unification constraints
// to the spec's per-variable narrowing map.
package narrow

import (
	"strings"

	"github.com/oxhq/semcore/internal/ast"
	"github.com/oxhq/semcore/internal/types"
)

// TypeOfNode resolves the static type of an arbitrary expression node,
// used only for the `x in container` idiom (to find the container's
// element/key type) and is supplied by the caller (the Flow Analyzer,
// which owns a Type Inference Engine) rather than imported directly —
// this package has no dependency on inference, keeping the narrowing
// idiom table a pure function of AST shape plus this one callback.
type TypeOfNode func(ast.NodeID) types.Type

// ElementAndKeyType extracts, from a container's static type, the
// element type and (for dictionaries) the key type, per the table in
// spec.md §4.6. Supplied by the caller for the same reason as TypeOfNode.
type ElementAndKeyType func(containerType types.Type) (elem, key types.Type, isDict bool)

// Result is the narrowing map produced by analyzing one condition.
type Result struct {
	// Types holds the concrete type a variable is asserted to have
	// inside the branch where the condition held.
	Types map[string]types.Type
	// NonNull / PossiblyNull mark variables whose nullability is
	// asserted, independent of Types.
	NonNull      map[string]bool
	PossiblyNull map[string]bool
	// RequiredMethods / RequiredProperties / RequiredSignals record duck-
	// type constraints discovered via has_method/has/has_signal guards,
	// consumed by the Parameter Usage Analyzer (C8) when the narrowed
	// variable is a parameter.
	RequiredMethods    map[string][]string
	RequiredProperties map[string][]string
	RequiredSignals    map[string][]string
}

func newResult() Result {
	return Result{
		Types:              make(map[string]types.Type),
		NonNull:            make(map[string]bool),
		PossiblyNull:       make(map[string]bool),
		RequiredMethods:    make(map[string][]string),
		RequiredProperties: make(map[string][]string),
		RequiredSignals:    make(map[string][]string),
	}
}

// Merge folds other into r in place (used to combine the two sides of an
// `and` chain).
func (r Result) Merge(other Result) {
	for k, v := range other.Types {
		r.Types[k] = v
	}
	for k := range other.NonNull {
		r.NonNull[k] = true
	}
	for k := range other.PossiblyNull {
		r.PossiblyNull[k] = true
	}
	for k, v := range other.RequiredMethods {
		r.RequiredMethods[k] = append(r.RequiredMethods[k], v...)
	}
	for k, v := range other.RequiredProperties {
		r.RequiredProperties[k] = append(r.RequiredProperties[k], v...)
	}
	for k, v := range other.RequiredSignals {
		r.RequiredSignals[k] = append(r.RequiredSignals[k], v...)
	}
}

// typeOfConstants maps the language's TYPE_* reflection constants to
// type names, for the `typeof(x) == TYPE_*` idiom.
var typeOfConstants = map[string]types.Type{
	"TYPE_NIL":         types.Null{},
	"TYPE_BOOL":        types.Primitive{Name: "Bool"},
	"TYPE_INT":         types.Primitive{Name: "Int"},
	"TYPE_FLOAT":       types.Primitive{Name: "Float"},
	"TYPE_STRING":      types.Primitive{Name: "String"},
	"TYPE_STRING_NAME": types.Primitive{Name: "StringName"},
	"TYPE_NODE_PATH":   types.Primitive{Name: "NodePath"},
	"TYPE_ARRAY":       types.Generic{Base: "Array"},
	"TYPE_DICTIONARY":  types.Generic{Base: "Dictionary"},
}

// Analyzer converts condition expressions to narrowing maps. The zero
// value is usable only if TypeOf/ElementKeyOf are set for conditions
// that need them (`x in container`, `typeof(x) == TYPE_*` needs no
// lookup beyond the constant table above).
type Analyzer struct {
	Arena        *ast.Arena
	TypeOf       TypeOfNode
	ElementKeyOf ElementAndKeyType
}

// Analyze converts cond into a narrowing map for the branch taken when
// cond evaluates to true (negated=false) or false (negated=true, used
// to compute the implicit narrowing after an early-return guard).
// Unrecognized conditions contribute nothing — sound, per spec.md §4.3.
func (an *Analyzer) Analyze(cond ast.NodeID, negated bool) Result {
	r := newResult()
	an.analyzeInto(r, cond, negated)
	return r
}

func (an *Analyzer) analyzeInto(r Result, cond ast.NodeID, negated bool) {
	a := an.Arena
	if !a.Valid(cond) {
		return
	}
	node := a.Get(cond)

	switch node.Kind {
	case ast.KindUnaryExpr:
		ue, _ := a.UnaryExpr(cond)
		if ue.Op == ast.OpNot {
			an.analyzeInto(r, ue.Operand, !negated)
		}
		return

	case ast.KindIdentifier:
		if negated {
			return // falsy includes non-null-but-falsy values; unsound to assert non-null
		}
		ident, _ := a.Identifier(cond)
		r.NonNull[ident.Name] = true
		return

	case ast.KindBinaryExpr:
		be, _ := a.BinaryExpr(cond)
		an.analyzeBinary(r, be, negated)
		return

	case ast.KindCallExpr:
		an.analyzeCall(r, cond, negated)
		return
	}
}

func (an *Analyzer) analyzeBinary(r Result, be ast.BinaryExpr, negated bool) {
	a := an.Arena

	switch be.Op {
	case ast.OpAnd:
		if negated {
			return // De Morgan turns this into an OR; no sound per-variable narrowing
		}
		an.analyzeInto(r, be.Left, negated)
		an.analyzeInto(r, be.Right, negated)
		return

	case ast.OpIs, ast.OpIsNot:
		isPositive := (be.Op == ast.OpIs) != negated
		if !isPositive {
			return // "is not T" gives no concrete type, sound to skip
		}
		ident, ok := a.Identifier(be.Left)
		if !ok {
			return
		}
		r.Types[ident.Name] = types.Named{Name: be.TypeName}
		r.NonNull[ident.Name] = true
		return

	case ast.OpEq, ast.OpNotEq:
		effectiveEq := (be.Op == ast.OpEq) != negated

		// `typeof(x) == TYPE_*` — the narrowed variable is typeof's
		// argument, not either direct operand, so this is checked before
		// the generic identifier/literal handling below.
		if an.tryTypeofConstant(r, be.Left, be.Right, effectiveEq) {
			return
		}
		if an.tryTypeofConstant(r, be.Right, be.Left, effectiveEq) {
			return
		}

		ident, isIdent := a.Identifier(be.Left)
		other := be.Right
		if !isIdent {
			if ident2, ok := a.Identifier(be.Right); ok {
				ident, isIdent, other = ident2, true, be.Left
			}
		}
		if !isIdent {
			return
		}

		if a.Get(other).Kind == ast.KindNullLiteral {
			if effectiveEq {
				r.PossiblyNull[ident.Name] = true
			} else {
				r.NonNull[ident.Name] = true
			}
			return
		}

		litType, ok := literalType(a, other)
		if !ok {
			return
		}
		if !effectiveEq {
			return
		}
		r.Types[ident.Name] = litType
		r.NonNull[ident.Name] = true
		return

	case ast.OpIn:
		if negated {
			return
		}
		ident, ok := a.Identifier(be.Left)
		if !ok || an.TypeOf == nil || an.ElementKeyOf == nil {
			return
		}
		containerType := an.TypeOf(be.Right)
		elem, key, isDict := an.ElementKeyOf(containerType)
		target := elem
		if isDict {
			target = key
		}
		if target == nil {
			return
		}
		r.Types[ident.Name] = target
		return
	}
}

// tryTypeofConstant recognizes callSide as `typeof(x)` and constSide as a
// `TYPE_*` identifier, narrowing x's type when effectiveEq holds. Returns
// false (without mutating r) if callSide/constSide don't match the shape,
// so the caller can try the operands in the other order.
func (an *Analyzer) tryTypeofConstant(r Result, callSide, constSide ast.NodeID, effectiveEq bool) bool {
	a := an.Arena
	call, ok := a.CallExpr(callSide)
	if !ok {
		return false
	}
	callee, ok := a.Identifier(call.Callee)
	if !ok || callee.Name != "typeof" || len(call.Args) != 1 {
		return false
	}
	arg, ok := a.Identifier(call.Args[0])
	if !ok {
		return false
	}
	constIdent, ok := a.Identifier(constSide)
	if !ok {
		return false
	}
	t, ok := typeConstantName(constIdent.Name)
	if !ok {
		return false
	}
	if effectiveEq {
		r.Types[arg.Name] = t
		if _, isNull := t.(types.Null); !isNull {
			r.NonNull[arg.Name] = true
		} else {
			r.PossiblyNull[arg.Name] = true
		}
	}
	return true
}

// literalType returns the static type of a literal node, for the
// `x == literal` idiom (spec.md §4.3): int/float/bool/string literals,
// or nil/false for anything else (unrecognized, skipped soundly).
func literalType(a *ast.Arena, node ast.NodeID) (types.Type, bool) {
	switch a.Get(node).Kind {
	case ast.KindIntLiteral:
		return types.Primitive{Name: "Int"}, true
	case ast.KindFloatLiteral:
		return types.Primitive{Name: "Float"}, true
	case ast.KindBoolLiteral:
		return types.Primitive{Name: "Bool"}, true
	case ast.KindStringLiteral:
		return types.Primitive{Name: "String"}, true
	}
	return nil, false
}

func (an *Analyzer) analyzeCall(r Result, call ast.NodeID, negated bool) {
	if negated {
		return // structural guards are dropped under negation, per spec.md §4.3
	}
	a := an.Arena
	ce, ok := a.CallExpr(call)
	if !ok {
		return
	}
	callee, ok := a.Identifier(ce.Callee)
	if !ok {
		return
	}

	switch callee.Name {
	case "typeof":
		// handled as part of == TYPE_* in analyzeBinary; a bare typeof()
		// call in boolean position carries no narrowing on its own.
		return

	case "has_method", "has", "has_signal":
		if len(ce.Args) != 2 {
			return
		}
		recv, ok := a.Identifier(ce.Args[0])
		if !ok {
			return
		}
		name, ok := a.StringLiteral(ce.Args[1])
		if !ok {
			return
		}
		switch callee.Name {
		case "has_method":
			r.RequiredMethods[recv.Name] = append(r.RequiredMethods[recv.Name], name.Value)
		case "has":
			r.RequiredProperties[recv.Name] = append(r.RequiredProperties[recv.Name], name.Value)
		case "has_signal":
			r.RequiredSignals[recv.Name] = append(r.RequiredSignals[recv.Name], name.Value)
		}
		r.NonNull[recv.Name] = true

	case "is_instance_valid":
		if len(ce.Args) != 1 {
			return
		}
		recv, ok := a.Identifier(ce.Args[0])
		if !ok {
			return
		}
		r.NonNull[recv.Name] = true
	}
}

// typeConstantName resolves a TYPE_* identifier to its mapped type. It
// is unexported; tryTypeofConstant uses it for typeof(x) == TYPE_*
// support.
func typeConstantName(name string) (types.Type, bool) {
	if !strings.HasPrefix(name, "TYPE_") {
		return nil, false
	}
	t, ok := typeOfConstants[name]
	return t, ok
}
