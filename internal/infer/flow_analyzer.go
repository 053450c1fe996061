package infer

import (
	"strings"

	"github.com/oxhq/semcore/internal/ast"
	"github.com/oxhq/semcore/internal/flow"
	"github.com/oxhq/semcore/internal/narrow"
	"github.com/oxhq/semcore/internal/symbols"
	"github.com/oxhq/semcore/internal/types"
)

// qualifiedClassName joins every ClassDecl name found walking from
// classNode up to the file root, outermost first, so an inner class
// registers under the same "Outer.Inner" key ClassTable indexes it by
// (mirrors collector.qualifiedClassName; duplicated rather than
// imported, since collector already imports this package).
func qualifiedClassName(a *ast.Arena, classNode ast.NodeID) string {
	var names []string
	cur := classNode
	for a.Valid(cur) {
		if cd, ok := a.ClassDecl(cur); ok {
			names = append([]string{cd.Name}, names...)
		}
		cur = a.Parent(cur)
	}
	return strings.Join(names, ".")
}

// MethodAnalysis is the per-method result of the Flow Analyzer
// (spec.md §4.2): the entry-state snapshot recorded at every node the
// walk visited, the exit state, and the inferred return type (the union
// of every return statement's value type; Null if the method never
// returns a value).
type MethodAnalysis struct {
	NodeStates map[ast.NodeID]*flow.State
	Exit       *flow.State
	ReturnType types.Type
}

func newMethodAnalysis() *MethodAnalysis {
	return &MethodAnalysis{NodeStates: make(map[ast.NodeID]*flow.State)}
}

// AnalyzeMethod returns the cached MethodAnalysis for method, running the
// Flow Analyzer the first time it's requested. The (possibly incomplete)
// analysis is cached before the walk runs, so a call re-entering the
// same method during its own analysis — the mutual-recursion case
// spec.md §5 calls out — observes a partially-built result instead of
// recursing forever.
func (e *Engine) AnalyzeMethod(method ast.NodeID) *MethodAnalysis {
	if ma, ok := e.methodAnalyses[method]; ok {
		return ma
	}
	ma := newMethodAnalysis()
	e.methodAnalyses[method] = ma

	md, ok := e.Arena.MethodDecl(method)
	if !ok {
		return ma
	}

	className := ""
	if classNode := e.Arena.FindAncestor(method, ast.KindClassDecl); e.Arena.Valid(classNode) {
		className = qualifiedClassName(e.Arena, classNode)
	}
	savedClass, savedMethod := e.CurrentClass, e.CurrentMethod
	e.CurrentClass, e.CurrentMethod = className, md.Name
	defer func() { e.CurrentClass, e.CurrentMethod = savedClass, savedMethod }()

	entry := flow.New()
	for _, p := range md.Params {
		pd, ok := e.Arena.ParamDecl(p)
		if !ok {
			continue
		}
		declared := e.paramDeclaredType(pd)
		entry.Declare(pd.Name, declared, declared)
	}

	w := &walker{engine: e, analysis: ma}
	ma.Exit = w.walkBlock(md.Body, entry)
	if w.returnType == nil {
		w.returnType = types.Null{}
	}
	ma.ReturnType = w.returnType
	return ma
}

// MethodReturnType resolves (class, method)'s return type: the
// annotation if present, otherwise the inferred union from its
// analysis. A string-keyed in-progress set guards direct self-recursion
// (f calling f) even before any MethodAnalysis exists for f; mutual
// cycles through two or more methods are caught by AnalyzeMethod's
// cache-before-run discipline above.
func (e *Engine) MethodReturnType(class, method string) types.Type {
	key := class + "." + method
	if t, ok := e.returnTypes[key]; ok {
		return t
	}
	if e.inProgress[key] {
		return types.Variant{}
	}
	sym, ok := e.Classes.Member(class, method)
	if !ok || sym.Kind != symbols.KindMethod {
		return types.Variant{}
	}
	if sym.ReturnType != nil {
		e.returnTypes[key] = sym.ReturnType
		return sym.ReturnType
	}
	e.inProgress[key] = true
	ma := e.AnalyzeMethod(sym.Decl)
	delete(e.inProgress, key)

	rt := ma.ReturnType
	if rt == nil {
		rt = types.Variant{}
	}
	e.returnTypes[key] = rt
	return rt
}

// walker is a one-shot statement-by-statement walk of a single method or
// lambda body, recording the entry state of every visited node.
type walker struct {
	engine     *Engine
	analysis   *MethodAnalysis
	returnType types.Type
}

func (w *walker) record(node ast.NodeID, state *flow.State) {
	w.analysis.NodeStates[node] = state.Clone()
}

func (w *walker) walkBlock(block ast.NodeID, state *flow.State) *flow.State {
	bs, ok := w.engine.Arena.BlockStmt(block)
	if !ok {
		return state
	}
	cur := state
	for _, stmt := range bs.Statements {
		cur = w.walkStmt(stmt, cur)
	}
	return cur
}

func (w *walker) walkStmt(node ast.NodeID, state *flow.State) *flow.State {
	a := w.engine.Arena
	if !a.Valid(node) {
		return state
	}
	w.record(node, state)

	switch a.Get(node).Kind {
	case ast.KindVarDecl:
		vd, _ := a.VarDecl(node)
		var initType types.Type = types.Variant{}
		if a.Valid(vd.Initializer) {
			initType = w.engine.Infer(vd.Initializer, state)
		}
		declared := initType
		if a.Valid(vd.Declared) {
			declared = w.engine.resolveTypeNode(vd.Declared)
		}
		state.Declare(vd.Name, declared, initType)
		return state

	case ast.KindAssignStmt:
		as, _ := a.AssignStmt(node)
		valueType := w.engine.Infer(as.Value, state)
		if ident, ok := a.Identifier(as.Left); ok {
			state.Assign(ident.Name, valueType)
		} else {
			w.engine.Infer(as.Left, state)
		}
		return state

	case ast.KindExprStmt:
		es, _ := a.ExprStmt(node)
		w.engine.Infer(es.Expr, state)
		return state

	case ast.KindReturnStmt:
		rs, _ := a.ReturnStmt(node)
		var rt types.Type = types.Null{}
		if a.Valid(rs.Value) {
			rt = w.engine.Infer(rs.Value, state)
		}
		w.returnType = types.Join(w.returnType, rt)
		state.MarkTerminated(flow.TerminatedReturn)
		return state

	case ast.KindBreakStmt:
		state.MarkTerminated(flow.TerminatedBreak)
		return state

	case ast.KindContinueStmt:
		state.MarkTerminated(flow.TerminatedContinue)
		return state

	case ast.KindIfStmt:
		return w.walkIf(node, state)

	case ast.KindForStmt:
		return w.walkFor(node, state)

	case ast.KindWhileStmt:
		return w.walkWhile(node, state)

	case ast.KindMatchStmt:
		return w.walkMatch(node, state)

	case ast.KindBlockStmt:
		return w.walkBlock(node, state)
	}
	return state
}

// applyNarrowing mutates target according to a narrow.Result (type
// assertions, non-null/possibly-null marks).
func (w *walker) applyNarrowing(target *flow.State, r narrow.Result) {
	for name, t := range r.Types {
		target.Narrow(name, t)
	}
	for name := range r.NonNull {
		target.MarkNonNull(name)
	}
	for name := range r.PossiblyNull {
		target.MarkPossiblyNull(name)
	}
}

func (w *walker) narrowCondition(cond ast.NodeID, negated bool, state *flow.State) narrow.Result {
	typeOf, elemKey := w.engine.narrowCallbacks(state)
	an := &narrow.Analyzer{Arena: w.engine.Arena, TypeOf: typeOf, ElementKeyOf: elemKey}
	r := an.Analyze(cond, negated)
	w.engine.trace("narrow", "node %d negated=%v -> %d narrowed type(s), %d non-null, %d possibly-null",
		int(cond), negated, len(r.Types), len(r.NonNull), len(r.PossiblyNull))
	return r
}

// walkIf implements spec.md §4.2's if/elif/else handling: every branch
// clones the pre-statement parent state (never the previous branch's end
// state), narrows from its own condition, and for a chain with no else
// clause the fall-through path is the parent narrowed by the negated if
// condition. Per spec.md §9's Open Question, the else branch of a chain
// does not receive the negation of preceding conditions.
func (w *walker) walkIf(node ast.NodeID, state *flow.State) *flow.State {
	a := w.engine.Arena
	ifs, ok := a.IfStmt(node)
	if !ok {
		return state
	}

	var ends []*flow.State

	thenState := state.Clone()
	w.applyNarrowing(thenState, w.narrowCondition(ifs.Condition, false, state))
	ends = append(ends, w.walkBlock(ifs.Then, thenState))

	for _, elifNode := range ifs.Elifs {
		elif, ok := a.ElifClause(elifNode)
		if !ok {
			continue
		}
		elifState := state.Clone()
		w.applyNarrowing(elifState, w.narrowCondition(elif.Condition, false, state))
		ends = append(ends, w.walkBlock(elif.Body, elifState))
	}

	if a.Valid(ifs.ElseBranch) {
		ends = append(ends, w.walkBlock(ifs.ElseBranch, state.Clone()))
	} else {
		// No explicit else: the implicit fallthrough is exactly the
		// negated-condition path, so it picks up that narrowing (spec.md
		// §8 scenario S4, an early-return guard). This differs from an
		// explicit else clause, which never receives it (§9).
		fallthroughState := state.Clone()
		w.applyNarrowing(fallthroughState, w.narrowCondition(ifs.Condition, true, state))
		ends = append(ends, fallthroughState)
	}

	merged := ends[0]
	for _, end := range ends[1:] {
		merged = flow.Merge(merged, end, state)
	}
	return merged
}

// walkFor implements spec.md §4.2/§4.6: the iterator's element type is
// taken from the Container Usage Profile when available (Open Question:
// profile first), falling back to the static element-type table.
func (w *walker) walkFor(node ast.NodeID, state *flow.State) *flow.State {
	a := w.engine.Arena
	fs, ok := a.ForStmt(node)
	if !ok {
		return state
	}
	collType := w.engine.Infer(fs.Collection, state)

	elemType := IteratorElementType(collType)
	if w.engine.ContainerProfile != nil {
		if ident, ok := a.Identifier(fs.Collection); ok {
			if t, ok := w.engine.ContainerProfile(ident.Name); ok {
				elemType = t
			}
		}
	}

	iterName := ""
	if id, ok := a.IteratorDecl(fs.Iterator); ok {
		iterName = id.Name
	}

	preLoop := state.Clone()
	bodyEntry := preLoop.Clone()
	if iterName != "" {
		bodyEntry.Declare(iterName, elemType, elemType)
	}

	accumulated := bodyEntry.Clone()
	iterState := bodyEntry
	var prevSnapshot map[string]map[string]bool

	for i := 0; i < w.engine.maxLoopIterations(); i++ {
		entry := flow.Merge(iterState, preLoop, preLoop)
		walked := w.walkBlock(fs.Body, entry.Clone())
		changed := accumulated.MergeInto(walked)
		snap := accumulated.Snapshot()
		stable := prevSnapshot != nil && flow.SnapshotEqual(snap, prevSnapshot)
		prevSnapshot = snap
		iterState = walked
		if !changed || stable {
			break
		}
	}

	return flow.Merge(accumulated, preLoop, preLoop)
}

// walkWhile mirrors walkFor without an iterator declaration, narrowing
// the loop condition at entry per spec.md §4.2.
func (w *walker) walkWhile(node ast.NodeID, state *flow.State) *flow.State {
	a := w.engine.Arena
	ws, ok := a.WhileStmt(node)
	if !ok {
		return state
	}

	preLoop := state.Clone()
	bodyEntry := preLoop.Clone()
	w.applyNarrowing(bodyEntry, w.narrowCondition(ws.Condition, false, state))

	accumulated := bodyEntry.Clone()
	iterState := bodyEntry
	var prevSnapshot map[string]map[string]bool

	for i := 0; i < w.engine.maxLoopIterations(); i++ {
		entry := flow.Merge(iterState, preLoop, preLoop)
		walked := w.walkBlock(ws.Body, entry.Clone())
		changed := accumulated.MergeInto(walked)
		snap := accumulated.Snapshot()
		stable := prevSnapshot != nil && flow.SnapshotEqual(snap, prevSnapshot)
		prevSnapshot = snap
		iterState = walked
		if !changed || stable {
			break
		}
	}

	return flow.Merge(accumulated, preLoop, preLoop)
}

// walkMatch mirrors walkIf's branch-clone-and-merge structure: every
// case clones the pre-match state and declares its binding (if any) as
// Variant, per spec.md §4.2.
func (w *walker) walkMatch(node ast.NodeID, state *flow.State) *flow.State {
	a := w.engine.Arena
	ms, ok := a.MatchStmt(node)
	if !ok {
		return state
	}
	w.engine.Infer(ms.Subject, state)

	if len(ms.Cases) == 0 {
		return state
	}

	var ends []*flow.State
	for _, caseNode := range ms.Cases {
		mc, ok := a.MatchCase(caseNode)
		if !ok {
			continue
		}
		caseState := state.Clone()
		if a.Valid(mc.Binding) {
			if mb, ok := a.MatchBindingDecl(mc.Binding); ok && mb.Name != "" {
				caseState.Declare(mb.Name, types.Variant{}, types.Variant{})
			}
		}
		ends = append(ends, w.walkBlock(mc.Body, caseState))
	}
	if len(ends) == 0 {
		return state
	}

	merged := ends[0]
	for _, end := range ends[1:] {
		merged = flow.Merge(merged, end, state)
	}
	return merged
}
