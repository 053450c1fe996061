// Package infer combines the Flow Analyzer (spec.md §4.2, component C5)
// and the Type Inference Engine (spec.md §4.4, component C6) in one
// package: the two are mutually recursive (inference consults the flow
// analyzer for identifier types at a node; the flow analyzer consults
// inference to evaluate every expression it walks over), so splitting
// them would force an import cycle. Grounded on the teacher's
// internal/analyzer package, which keeps its own inference.go,
// inference_control.go and constraints.go together for the same reason.
package infer

import (
	"github.com/oxhq/semcore/internal/ast"
	"github.com/oxhq/semcore/internal/config"
	"github.com/oxhq/semcore/internal/flow"
	"github.com/oxhq/semcore/internal/narrow"
	"github.com/oxhq/semcore/internal/provider"
	"github.com/oxhq/semcore/internal/symbols"
	"github.com/oxhq/semcore/internal/tracelog"
	"github.com/oxhq/semcore/internal/types"

	"golang.org/x/tools/container/intsets"
)

// defaultInferDepth bounds recursive expression inference (spec.md §4.4
// step 1) when an Engine has no Limits configured.
const defaultInferDepth = 50

// defaultLoopIterations bounds fixed-point loop analysis (spec.md §4.2)
// when an Engine has no Limits configured.
const defaultLoopIterations = 10

// Engine is the combined flow/inference engine for one file. It is not
// safe for concurrent use — per spec.md §5, a unit (one file's semantic
// model) owns its own mutable state.
type Engine struct {
	Arena    *ast.Arena
	Scopes   *symbols.Table
	Classes  *symbols.ClassTable
	Provider provider.Provider

	// CallSites is optional; when set, every resolved call records a
	// call-site entry (spec.md §3's call-site registry).
	CallSites *CallSiteRegistry
	FilePath  string

	// ContainerProfile resolves the accumulated element type for a
	// variable from its Container Usage Profile (C10), consulted before
	// the static iterator-element-type table per the Open Question in
	// spec.md §9 ("profile first, engine second"). Optional.
	ContainerProfile func(variable string) (types.Type, bool)

	// CurrentClass / CurrentMethod track the method currently being
	// analyzed, for bare-call resolution and call-site attribution.
	CurrentClass  string
	CurrentMethod string

	// Limits overrides the default recursion/loop bounds. Nil means use
	// config.Default().
	Limits *config.Limits

	// Tracer, when non-nil, receives a line for every Infer call and every
	// narrowing decision the engine makes; flow transitions are not traced. A nil Tracer (or one with Enabled false)
	// costs nothing beyond the method-call overhead.
	Tracer *tracelog.Tracer

	methodAnalyses map[ast.NodeID]*MethodAnalysis
	returnTypes    map[string]types.Type
	inProgress     map[string]bool

	depth    int
	visiting intsets.Sparse
}

// NewEngine returns an Engine ready to analyze methods in arena.
func NewEngine(arena *ast.Arena, scopes *symbols.Table, classes *symbols.ClassTable, prov provider.Provider) *Engine {
	return &Engine{
		Arena:          arena,
		Scopes:         scopes,
		Classes:        classes,
		Provider:       prov,
		methodAnalyses: make(map[ast.NodeID]*MethodAnalysis),
		returnTypes:    make(map[string]types.Type),
		inProgress:     make(map[string]bool),
	}
}

// maxInferDepth is the effective recursion bound for expression inference.
func (e *Engine) maxInferDepth() int {
	if e.Limits != nil {
		return e.Limits.InferenceRecursionDepth
	}
	return defaultInferDepth
}

// maxLoopIterations is the effective fixed-point bound for loop analysis.
func (e *Engine) maxLoopIterations() int {
	if e.Limits != nil {
		return e.Limits.LoopFixedPointBound
	}
	return defaultLoopIterations
}

// trace logs a tagged line if a Tracer is attached and enabled; a nil
// receiver or disabled Tracer makes this a no-op.
func (e *Engine) trace(tag, format string, args ...any) {
	if e.Tracer == nil {
		return
	}
	switch tag {
	case "narrow":
		e.Tracer.Narrow(format, args...)
	default:
		e.Tracer.Infer(format, args...)
	}
}

// Infer computes the static type of expression node. state is the flow
// state active at node (nil outside any method body, e.g. a class-level
// constant initializer). Unrecognized or malformed nodes yield Variant,
// never an error (spec.md §7).
func (e *Engine) Infer(node ast.NodeID, state *flow.State) types.Type {
	if !e.Arena.Valid(node) {
		return types.Variant{}
	}
	if e.depth >= e.maxInferDepth() || e.visiting.Has(int(node)) {
		return types.Variant{}
	}
	e.visiting.Insert(int(node))
	e.depth++
	defer func() {
		e.depth--
		e.visiting.Remove(int(node))
	}()
	e.trace("infer", "node %d kind %v", int(node), e.Arena.Get(node).Kind)

	switch e.Arena.Get(node).Kind {
	case ast.KindIdentifier:
		return e.inferIdentifier(node, state)
	case ast.KindIntLiteral:
		return types.Primitive{Name: "Int"}
	case ast.KindFloatLiteral:
		return types.Primitive{Name: "Float"}
	case ast.KindBoolLiteral:
		return types.Primitive{Name: "Bool"}
	case ast.KindStringLiteral:
		return types.Primitive{Name: "String"}
	case ast.KindNullLiteral:
		return types.Null{}
	case ast.KindArrayLiteral:
		return types.Generic{Base: "Array"}
	case ast.KindDictLiteral:
		return types.Generic{Base: "Dictionary"}
	case ast.KindMemberAccess:
		return e.inferMemberAccess(node, state)
	case ast.KindCallExpr:
		return e.inferCall(node, state)
	case ast.KindIndexExpr:
		return e.inferIndex(node, state)
	case ast.KindBinaryExpr:
		return e.inferBinary(node, state)
	case ast.KindUnaryExpr:
		return e.inferUnary(node, state)
	case ast.KindTernaryExpr:
		return e.inferTernary(node, state)
	case ast.KindLambdaExpr:
		return e.inferLambda(node, state)
	}
	return types.Variant{}
}

func (e *Engine) inferIdentifier(node ast.NodeID, state *flow.State) types.Type {
	ident, ok := e.Arena.Identifier(node)
	if !ok {
		return types.Variant{}
	}
	if state != nil {
		if ft, ok := state.Get(ident.Name); ok && ft.Current != nil {
			return ft.Current
		}
	}
	if e.Scopes != nil {
		if sym, ok := e.Scopes.FindInScope(e.Arena, ident.Name, node); ok && sym.DeclaredType != nil {
			return sym.DeclaredType
		}
	}
	if e.CurrentClass != "" {
		if _, sym, _, ok := e.ClassMemberInChain(e.CurrentClass, ident.Name); ok {
			return symbolValueType(sym)
		}
	}
	return types.Variant{}
}

// symbolValueType returns the type a bare reference to sym should carry:
// a method's return type, or anything else's declared type.
func symbolValueType(sym *symbols.Symbol) types.Type {
	if sym.Kind == symbols.KindMethod {
		if sym.ReturnType != nil {
			return sym.ReturnType
		}
		return types.Variant{}
	}
	if sym.DeclaredType != nil {
		return sym.DeclaredType
	}
	return types.Variant{}
}

// inferMemberAccess implements spec.md §4.4 step 3. A Variant receiver
// whose root variable carries an active narrowing is already handled:
// inferIdentifier returns the narrowed (non-Variant) current type, so no
// separate narrowing lookup is needed here.
func (e *Engine) inferMemberAccess(node ast.NodeID, state *flow.State) types.Type {
	ma, ok := e.Arena.MemberAccess(node)
	if !ok {
		return types.Variant{}
	}
	recvType := e.Infer(ma.Receiver, state)
	if u, ok := recvType.(types.Union); ok {
		if t, ok := e.memberTypeForUnion(u, ma.Member); ok {
			return t
		}
		return types.Variant{}
	}
	name := typeNameOf(recvType)
	if name == "" {
		return types.Variant{}
	}
	if _, sym, _, ok := e.ClassMemberInChain(name, ma.Member); ok {
		return symbolValueType(sym)
	}
	if mi, ok := e.Provider.GetMember(name, ma.Member); ok {
		return e.resolveTypeName(mi.Type, nil)
	}
	return types.Variant{}
}

// memberTypeForUnion resolves member access on a union receiver by
// majority vote across members (spec.md §9 Open Question): the returned
// type is only trusted if a strict majority of members declare the
// member. The vote is monotonic — widening the union can only add
// non-matching members, which can never raise the hit ratio.
func (e *Engine) memberTypeForUnion(u types.Union, member string) (types.Type, bool) {
	total := len(u.Members)
	hits := 0
	var chosen provider.MemberInfo
	found := false
	for _, m := range u.Members {
		name := typeNameOf(m)
		if name == "" {
			continue
		}
		if mi, ok := e.Provider.GetMember(name, member); ok {
			hits++
			if !found {
				chosen, found = mi, true
			}
		}
	}
	if !found || hits*2 <= total {
		return nil, false
	}
	return e.resolveTypeName(chosen.Type, nil), true
}

func (e *Engine) inferCall(node ast.NodeID, state *flow.State) types.Type {
	ce, ok := e.Arena.CallExpr(node)
	if !ok {
		return types.Variant{}
	}
	for _, arg := range ce.Args {
		e.Infer(arg, state)
	}

	if calleeIdent, ok := e.Arena.Identifier(ce.Callee); ok {
		if e.CurrentClass != "" {
			declClass, sym, escaped, ok := e.ClassMemberInChain(e.CurrentClass, calleeIdent.Name)
			if ok && sym.Kind == symbols.KindMethod {
				e.recordCallSite(declClass, calleeIdent.Name, node, ce.Args)
				return e.MethodReturnType(declClass, calleeIdent.Name)
			}
			if !ok && escaped != "" {
				if mi, ok := e.Provider.GetMember(escaped, calleeIdent.Name); ok && mi.Kind == provider.MemberMethod {
					e.recordCallSite(escaped, calleeIdent.Name, node, ce.Args)
					return e.resolveTypeName(mi.Type, nil)
				}
			}
		}
		if mi, ok := e.Provider.GetGlobalFunction(calleeIdent.Name); ok {
			return e.resolveTypeName(mi.Type, nil)
		}
		return types.Variant{}
	}

	if ma, ok := e.Arena.MemberAccess(ce.Callee); ok {
		recvType := e.Infer(ma.Receiver, state)
		name := typeNameOf(recvType)
		if name == "" {
			return types.Variant{}
		}
		e.recordCallSite(name, ma.Member, node, ce.Args)
		if declClass, sym, _, ok := e.ClassMemberInChain(name, ma.Member); ok && sym.Kind == symbols.KindMethod {
			return e.MethodReturnType(declClass, ma.Member)
		}
		if mi, ok := e.Provider.GetMember(name, ma.Member); ok && mi.Kind == provider.MemberMethod {
			return e.resolveTypeName(mi.Type, nil)
		}
		return types.Variant{}
	}
	return types.Variant{}
}

func (e *Engine) recordCallSite(class, method string, node ast.NodeID, args []ast.NodeID) {
	if e.CallSites == nil {
		return
	}
	callerKey := ""
	if e.CurrentClass != "" && e.CurrentMethod != "" {
		callerKey = e.CurrentClass + "." + e.CurrentMethod
	}
	e.CallSites.Record(callerKey, class, method, e.FilePath, node, args)
}

func (e *Engine) inferIndex(node ast.NodeID, state *flow.State) types.Type {
	ie, ok := e.Arena.IndexExpr(node)
	if !ok {
		return types.Variant{}
	}
	recvType := e.Infer(ie.Receiver, state)
	e.Infer(ie.Index, state)
	return CollectionElementType(recvType)
}

func (e *Engine) inferBinary(node ast.NodeID, state *flow.State) types.Type {
	be, ok := e.Arena.BinaryExpr(node)
	if !ok {
		return types.Variant{}
	}
	lt := e.Infer(be.Left, state)
	rt := e.Infer(be.Right, state)

	switch be.Op {
	case ast.OpAdd:
		if isString(lt) && isString(rt) {
			return types.Primitive{Name: "String"}
		}
		return numericPromotion(lt, rt)
	case ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		return numericPromotion(lt, rt)
	case ast.OpConcat:
		return types.Primitive{Name: "String"}
	case ast.OpEq, ast.OpNotEq, ast.OpLess, ast.OpLessEq, ast.OpGreater, ast.OpGreaterEq,
		ast.OpAnd, ast.OpOr, ast.OpIs, ast.OpIsNot, ast.OpIn:
		return types.Primitive{Name: "Bool"}
	}
	return types.Variant{}
}

func numericPromotion(a, b types.Type) types.Type {
	if isFloat(a) || isFloat(b) {
		return types.Primitive{Name: "Float"}
	}
	if isInt(a) && isInt(b) {
		return types.Primitive{Name: "Int"}
	}
	return types.Variant{}
}

func (e *Engine) inferUnary(node ast.NodeID, state *flow.State) types.Type {
	ue, ok := e.Arena.UnaryExpr(node)
	if !ok {
		return types.Variant{}
	}
	operand := e.Infer(ue.Operand, state)
	switch ue.Op {
	case ast.OpNot:
		return types.Primitive{Name: "Bool"}
	case ast.OpNeg:
		if isFloat(operand) {
			return types.Primitive{Name: "Float"}
		}
		if isInt(operand) {
			return types.Primitive{Name: "Int"}
		}
	}
	return types.Variant{}
}

func (e *Engine) inferTernary(node ast.NodeID, state *flow.State) types.Type {
	te, ok := e.Arena.TernaryExpr(node)
	if !ok {
		return types.Variant{}
	}
	e.Infer(te.Cond, state)
	thenT := e.Infer(te.Then, state)
	elseT := e.Infer(te.Else, state)
	return types.Join(thenT, elseT)
}

// inferLambda walks the lambda body in a clone of state, so calls inside
// it are inferred and recorded as call sites; the walk's node-state
// records go into a throwaway MethodAnalysis and are not kept. Per
// spec.md §4.2, the outer flow state is never mutated by a lambda's body.
func (e *Engine) inferLambda(node ast.NodeID, state *flow.State) types.Type {
	le, ok := e.Arena.LambdaExpr(node)
	if ok && state != nil {
		child := state.Clone()
		for _, p := range le.Params {
			pd, ok := e.Arena.ParamDecl(p)
			if !ok {
				continue
			}
			declared := e.paramDeclaredType(pd)
			child.Declare(pd.Name, declared, declared)
			child.MarkNonNull(pd.Name)
		}
		w := &walker{engine: e, analysis: newMethodAnalysis()}
		w.walkBlock(le.Body, child)
	}
	return types.Generic{Base: "Callable"}
}

func (e *Engine) paramDeclaredType(pd ast.ParamDecl) types.Type {
	if e.Arena.Valid(pd.Declared) {
		return e.resolveTypeNode(pd.Declared)
	}
	return types.Variant{}
}

// ExpectedType implements spec.md §4.4's expected_type for a named
// parameter: the union of argument types observed at every recorded call
// site for (class, method), used sparingly for completion.
func (e *Engine) ExpectedType(class, method, paramName string) types.Type {
	if e.CallSites == nil {
		return types.Variant{}
	}
	sym, ok := e.Classes.Member(class, method)
	if !ok {
		return types.Variant{}
	}
	idx := -1
	for i, p := range sym.Params {
		if p.Name == paramName {
			idx = i
			break
		}
	}
	if idx < 0 {
		return types.Variant{}
	}
	var acc types.Type
	for _, site := range e.CallSites.CallSitesFor(class, method) {
		if idx >= len(site.Args) {
			continue
		}
		acc = types.Join(acc, e.Infer(site.Args[idx], nil))
	}
	if acc == nil {
		return types.Variant{}
	}
	return acc
}

// InvalidateReturnType discards any cached return type and method
// analysis for (class, method), so the next MethodReturnType or
// AnalyzeMethod call recomputes it from scratch. Used by the project
// model's optional cycle-widening pass (spec.md §4.9): once every member
// of a strongly-connected call cycle has been analyzed once (each seeing
// Variant for the others), invalidating and re-running a member lets it
// pick up a sibling's now-cached, possibly more concrete return type.
func (e *Engine) InvalidateReturnType(class, method string) {
	delete(e.returnTypes, class+"."+method)
	if sym, ok := e.Classes.Member(class, method); ok {
		delete(e.methodAnalyses, sym.Decl)
	}
}

// Assignable delegates to the runtime provider (spec.md §4.4), treating
// Variant on either side as always assignable.
func (e *Engine) Assignable(source, target types.Type) bool {
	if types.IsVariant(source) || types.IsVariant(target) {
		return true
	}
	sName, tName := typeNameOf(source), typeNameOf(target)
	if sName == "" || tName == "" {
		return source.Equal(target)
	}
	return e.Provider.IsAssignableTo(sName, tName)
}

func typeNameOf(t types.Type) string {
	switch v := t.(type) {
	case types.Primitive:
		return v.Name
	case types.Named:
		return v.Name
	case types.Generic:
		return v.Base
	}
	return ""
}

func isInt(t types.Type) bool {
	p, ok := t.(types.Primitive)
	return ok && p.Name == "Int"
}

func isFloat(t types.Type) bool {
	p, ok := t.(types.Primitive)
	return ok && p.Name == "Float"
}

func isString(t types.Type) bool {
	p, ok := t.(types.Primitive)
	return ok && p.Name == "String"
}

// narrowCallbacks builds the TypeOf / ElementKeyOf callbacks the
// narrowing analyzer needs for the `x in container` idiom, bridging to
// this engine's own inference without narrow importing infer.
func (e *Engine) narrowCallbacks(state *flow.State) (narrow.TypeOfNode, narrow.ElementAndKeyType) {
	typeOf := func(n ast.NodeID) types.Type { return e.Infer(n, state) }
	elemKey := func(ct types.Type) (elem, key types.Type, isDict bool) {
		g, ok := ct.(types.Generic)
		if !ok {
			return nil, nil, false
		}
		if g.Base == "Dictionary" {
			if len(g.Args) == 2 {
				return nil, g.Args[0], true
			}
			return nil, types.Variant{}, true
		}
		return CollectionElementType(ct), nil, false
	}
	return typeOf, elemKey
}
