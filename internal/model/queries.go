package model

import (
	"sort"

	"github.com/oxhq/semcore/internal/ast"
	"github.com/oxhq/semcore/internal/collector"
	"github.com/oxhq/semcore/internal/flow"
	"github.com/oxhq/semcore/internal/infer"
	"github.com/oxhq/semcore/internal/symbols"
	"github.com/oxhq/semcore/internal/types"
)

// statementKinds are the node kinds the Flow Analyzer records an entry
// state for (spec.md §4.2); used by stateAtNode to climb from an
// arbitrary node (often an expression deep inside a statement) to the
// nearest ancestor whose flow state was actually recorded.
var statementKinds = []ast.Kind{
	ast.KindBlockStmt, ast.KindExprStmt, ast.KindReturnStmt, ast.KindVarDecl,
	ast.KindAssignStmt, ast.KindIfStmt, ast.KindForStmt, ast.KindWhileStmt,
	ast.KindMatchStmt,
}

// methodOf returns the nearest enclosing MethodDecl of node, or
// ast.InvalidNode if node sits outside any method body (e.g. a
// class-level constant initializer).
func (fm *FileModel) methodOf(node ast.NodeID) ast.NodeID {
	return fm.Arena.FindAncestor(node, ast.KindMethodDecl)
}

// stateAtNode finds the flow state active at node by climbing ancestors
// until one matches a kind the Flow Analyzer actually records (see
// walker.walkStmt in internal/infer/flow_analyzer.go, which records a
// state per statement). Returns nil if ma is nil
// or no recorded ancestor exists.
func stateAtNode(a *ast.Arena, ma *infer.MethodAnalysis, node ast.NodeID) *flow.State {
	if ma == nil {
		return nil
	}
	var found *flow.State
	a.Ancestors(node, func(cur ast.NodeID) bool {
		for _, k := range statementKinds {
			if a.Get(cur).Kind != k {
				continue
			}
			if st, ok := ma.NodeStates[cur]; ok {
				found = st
				return false
			}
		}
		return true
	})
	return found
}

// GetSymbolAt implements get_symbol_at(line, column): the symbol
// declared or referenced at that exact source position, if any. The AST
// carries point positions rather than spans, so this matches a node
// whose own Pos equals the query exactly, preferring a reference over a
// bare declaration site when both exist at the same position.
func (fm *FileModel) GetSymbolAt(pos ast.Pos) (*symbols.Symbol, bool) {
	for _, id := range fm.nodeAt[pos] {
		if ref, ok := fm.refsByNode[id]; ok && ref.Symbol != nil {
			return ref.Symbol, true
		}
	}
	for _, id := range fm.nodeAt[pos] {
		if sym, ok := fm.declNodeToSymbol[id]; ok {
			return sym, true
		}
	}
	return nil, false
}

// GetSymbolForNode implements get_symbol_for_node(node): the resolved
// symbol a reference node points to, or the symbol a declaration node
// itself introduces.
func (fm *FileModel) GetSymbolForNode(node ast.NodeID) (*symbols.Symbol, bool) {
	if ref, ok := fm.refsByNode[node]; ok && ref.Symbol != nil {
		return ref.Symbol, true
	}
	sym, ok := fm.declNodeToSymbol[node]
	return sym, ok
}

// FindSymbol implements find_symbol(name): the first symbol declared
// under that name anywhere in the file (scope-local or class member), in
// a deterministic but otherwise unspecified order. Use FindSymbolInScope
// when the lookup must respect lexical context.
func (fm *FileModel) FindSymbol(name string) (*symbols.Symbol, bool) {
	all := fm.FindSymbols(name)
	if len(all) == 0 {
		return nil, false
	}
	return all[0], true
}

// FindSymbols implements find_symbols(name): every symbol declared under
// that name in the file, sorted by declaring node id for determinism.
func (fm *FileModel) FindSymbols(name string) []*symbols.Symbol {
	syms := append([]*symbols.Symbol(nil), fm.symbolsByName[name]...)
	sort.Slice(syms, func(i, j int) bool { return syms[i].Decl < syms[j].Decl })
	return syms
}

// FindSymbolInScope implements find_symbol_in_scope(name, context_node):
// the same two-step resolution the collector itself uses for a bare
// identifier (scope lookup, then current-class member fallback), so a
// query at an arbitrary node resolves exactly the way the reference at
// that node would have.
func (fm *FileModel) FindSymbolInScope(name string, contextNode ast.NodeID) (*symbols.Symbol, bool) {
	if sym, ok := fm.Engine.Scopes.FindInScope(fm.Arena, name, contextNode); ok {
		return sym, true
	}
	if classNode := fm.Arena.FindAncestor(contextNode, ast.KindClassDecl); fm.Arena.Valid(classNode) {
		qualified := fm.Collector.QualifiedClassName(classNode)
		if sym, ok := fm.Engine.Classes.Member(qualified, name); ok {
			return sym, true
		}
	}
	return nil, false
}

// GetReferencesTo implements get_references_to(symbol): every resolved
// reference (read or write) to sym within this file.
func (fm *FileModel) GetReferencesTo(sym *symbols.Symbol) []collector.Reference {
	refs := fm.refsBySymbol[sym]
	out := make([]collector.Reference, 0, len(refs))
	for _, r := range refs {
		out = append(out, *r)
	}
	return out
}

// GetTypeForNode implements get_type_for_node(node): the statically
// inferred type of any AST node, flow-sensitive where a method body's
// recorded state applies.
func (fm *FileModel) GetTypeForNode(node ast.NodeID) types.Type {
	ma := fm.Engine.AnalyzeMethod(fm.methodOf(node))
	state := stateAtNode(fm.Arena, ma, node)
	return fm.Engine.Infer(node, state)
}

// GetExpressionType is an alias for GetTypeForNode restricted to
// expression nodes (get_expression_type in spec.md §6); the engine
// already treats any node uniformly, so no separate code path is needed.
func (fm *FileModel) GetExpressionType(node ast.NodeID) types.Type {
	return fm.GetTypeForNode(node)
}

// GetFlowType implements get_flow_type(variable, at_node): the variable's
// currently tracked flow type at the nearest recorded state covering
// at_node, independent of whether that type arrived via narrowing or a
// plain assignment. Returns false if the method at at_node never
// analyzed (or never tracked) the variable.
func (fm *FileModel) GetFlowType(sym *symbols.Symbol, atNode ast.NodeID) (types.Type, bool) {
	ma := fm.Engine.AnalyzeMethod(fm.methodOf(atNode))
	state := stateAtNode(fm.Arena, ma, atNode)
	if state == nil {
		return nil, false
	}
	ft, ok := state.Get(sym.Name)
	if !ok || ft.Current == nil {
		return nil, false
	}
	return ft.Current, true
}

// GetNarrowedType implements get_narrowed_type(variable, at_node): the
// variable's current type only if a narrowing is actively in effect at
// at_node (flow.Type.NarrowedFrom is set). A variable merely assigned a
// concrete type, with no preceding guard, reports false here even though
// GetFlowType reports the same type.
func (fm *FileModel) GetNarrowedType(sym *symbols.Symbol, atNode ast.NodeID) (types.Type, bool) {
	ma := fm.Engine.AnalyzeMethod(fm.methodOf(atNode))
	state := stateAtNode(fm.Arena, ma, atNode)
	if state == nil {
		return nil, false
	}
	ft, ok := state.Get(sym.Name)
	if !ok || ft.NarrowedFrom == nil || ft.Current == nil {
		return nil, false
	}
	return ft.Current, true
}

// GetEffectiveType implements get_effective_type(variable, at_node): the
// most useful type a caller should actually treat the variable as having
// here. When the flow type is already concrete, that is the effective
// type; when flow analysis can only offer Variant (no declared type, no
// narrowing), a parameter's duck-typed candidate (if any) widens it
// instead of reporting Variant outright.
func (fm *FileModel) GetEffectiveType(sym *symbols.Symbol, atNode ast.NodeID) (types.Type, bool) {
	ft, ok := fm.GetFlowType(sym, atNode)
	if !ok {
		return nil, false
	}
	if types.IsConcrete(ft) {
		return ft, true
	}
	if sym.Kind == symbols.KindParameter {
		if dt, ok := fm.GetDuckType(sym); ok && types.IsConcrete(dt.Type) {
			return dt.Type, true
		}
	}
	return ft, true
}

// GetMemberAccessConfidence implements get_member_access_confidence,
// reusing the same confidence grading the collector applied when it
// originally resolved the member access (spec.md §4.7), rather than
// recomputing it from scratch.
func (fm *FileModel) GetMemberAccessConfidence(node ast.NodeID) (collector.Confidence, bool) {
	ref, ok := fm.refsByNode[node]
	if !ok {
		return 0, false
	}
	if _, isMA := fm.Arena.MemberAccess(node); !isMA {
		return 0, false
	}
	return ref.Confidence, true
}
