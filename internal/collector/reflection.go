package collector

import (
	"github.com/oxhq/semcore/internal/ast"
	"github.com/oxhq/semcore/internal/infer"
	"github.com/oxhq/semcore/internal/symbols"
)

// reflectionCalls maps an allowlisted callee member name to the symbol
// kind its traced string argument names, and the argument index the
// name appears at (spec.md §4.7's reflection-style string tracking).
var reflectionCalls = map[string]struct {
	argIndex int
	kind     symbols.Kind
}{
	"call":          {0, symbols.KindMethod},
	"call_deferred": {0, symbols.KindMethod},
	"has_method":    {0, symbols.KindMethod},
	"emit_signal":   {0, symbols.KindSignal},
	"has_signal":    {0, symbols.KindSignal},
	"connect":       {0, symbols.KindSignal},
	"get":           {0, symbols.KindProperty},
	"set":           {0, symbols.KindProperty},
}

// recordCallReflection inspects a call expression for the fixed
// allowlist of reflection-style calls and, when the documented argument
// is a string literal (or a class constant traceable to one through a
// single assignment hop), records a Potential reference to the symbol
// of that name and kind in the enclosing class.
func (c *Collector) recordCallReflection(owner ast.NodeID, node ast.NodeID, ce ast.CallExpr, ma *infer.MethodAnalysis) {
	a := c.arena()

	if callee, ok := a.Identifier(ce.Callee); ok && callee.Name == "Callable" && len(ce.Args) >= 2 {
		c.traceReflectionArg(owner, node, ce.Args[1], symbols.KindMethod)
		return
	}

	memberAccess, ok := a.MemberAccess(ce.Callee)
	if !ok {
		return
	}
	spec, ok := reflectionCalls[memberAccess.Member]
	if !ok || spec.argIndex >= len(ce.Args) {
		return
	}
	c.traceReflectionArg(owner, node, ce.Args[spec.argIndex], spec.kind)
}

// traceReflectionArg resolves arg to a literal string, either directly
// or through one constant-declaration hop, and records the traced
// symbol name as a Potential reference anchored at node.
func (c *Collector) traceReflectionArg(owner ast.NodeID, node ast.NodeID, arg ast.NodeID, kind symbols.Kind) {
	a := c.arena()
	name, ok := c.literalStringValue(arg)
	if !ok {
		return
	}

	classNode := a.FindAncestor(owner, ast.KindClassDecl)
	var sym *symbols.Symbol
	if a.Valid(classNode) {
		qualified := c.qualifiedClassName(classNode)
		if found, ok := c.Engine.Classes.Member(qualified, name); ok && found.Kind == kind {
			sym = found
		}
	}

	c.References = append(c.References, Reference{
		Node:       node,
		Name:       name,
		Symbol:     sym,
		Confidence: Potential,
		Scope:      c.scopeChain(node),
	})
}

// literalStringValue reports the string value of node if it is a string
// literal, or the string literal initializing it if node is an
// identifier resolving to a same-class constant (spec.md §4.7's
// "constant traceable through assignments within the class" — traced
// one declaration hop, not through arbitrary reassignment chains).
func (c *Collector) literalStringValue(node ast.NodeID) (string, bool) {
	a := c.arena()
	if lit, ok := a.StringLiteral(node); ok {
		return lit.Value, true
	}
	id, ok := a.Identifier(node)
	if !ok {
		return "", false
	}
	classNode := a.FindAncestor(node, ast.KindClassDecl)
	if !a.Valid(classNode) {
		return "", false
	}
	qualified := c.qualifiedClassName(classNode)
	sym, ok := c.Engine.Classes.Member(qualified, id.Name)
	if !ok || sym.Kind != symbols.KindConstant {
		return "", false
	}
	cdecl, ok := a.ConstDecl(sym.Decl)
	if !ok {
		return "", false
	}
	if lit, ok := a.StringLiteral(cdecl.Initializer); ok {
		return lit.Value, true
	}
	return "", false
}
