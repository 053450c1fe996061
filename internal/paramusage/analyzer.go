package paramusage

import (
	"github.com/oxhq/semcore/internal/ast"
	"github.com/oxhq/semcore/internal/flow"
	"github.com/oxhq/semcore/internal/infer"
	"github.com/oxhq/semcore/internal/types"
)

// Analyzer walks one method body collecting a Fingerprint for a single
// named parameter, the way the teacher's per-declaration helper walks
// fold facts about one declaration at a time (declarations_helpers.go).
type Analyzer struct {
	Engine *infer.Engine

	// Method supplies the per-node flow state recorded during the
	// method's flow analysis, used to infer argument and index types in
	// context. Nil is safe: Engine.Infer degrades to declared/static
	// typing without a flow state.
	Method *infer.MethodAnalysis
}

// Analyze walks body and returns the usage fingerprint for param.
func (an *Analyzer) Analyze(body ast.NodeID, param string) *Fingerprint {
	fp := newFingerprint(param)
	an.walkBlock(body, param, fp)
	return fp
}

func (an *Analyzer) stateAt(node ast.NodeID) *flow.State {
	if an.Method == nil {
		return nil
	}
	return an.Method.NodeStates[node]
}

func (an *Analyzer) isParam(node ast.NodeID, param string) bool {
	id, ok := an.Engine.Arena.Identifier(node)
	return ok && id.Name == param
}

func (an *Analyzer) walkBlock(block ast.NodeID, param string, fp *Fingerprint) {
	a := an.Engine.Arena
	bs, ok := a.BlockStmt(block)
	if !ok {
		return
	}
	for _, stmt := range bs.Statements {
		an.walkStmt(stmt, param, fp)
	}
}

func (an *Analyzer) walkStmt(node ast.NodeID, param string, fp *Fingerprint) {
	a := an.Engine.Arena
	if !a.Valid(node) {
		return
	}
	switch a.Get(node).Kind {
	case ast.KindExprStmt:
		es, _ := a.ExprStmt(node)
		an.walkExpr(es.Expr, param, fp)
	case ast.KindReturnStmt:
		rs, _ := a.ReturnStmt(node)
		an.walkExpr(rs.Value, param, fp)
	case ast.KindAssignStmt:
		asn, _ := a.AssignStmt(node)
		an.walkExpr(asn.Left, param, fp)
		an.walkExpr(asn.Value, param, fp)
	case ast.KindVarDecl:
		vd, _ := a.VarDecl(node)
		an.walkExpr(vd.Initializer, param, fp)
	case ast.KindBlockStmt:
		an.walkBlock(node, param, fp)
	case ast.KindIfStmt:
		ifs, _ := a.IfStmt(node)
		an.walkExpr(ifs.Condition, param, fp)
		an.walkBlock(ifs.Then, param, fp)
		for _, el := range ifs.Elifs {
			ec, ok := a.ElifClause(el)
			if !ok {
				continue
			}
			an.walkExpr(ec.Condition, param, fp)
			an.walkBlock(ec.Body, param, fp)
		}
		if a.Valid(ifs.ElseBranch) {
			an.walkBlock(ifs.ElseBranch, param, fp)
		}
	case ast.KindForStmt:
		fs, _ := a.ForStmt(node)
		an.walkExpr(fs.Collection, param, fp)
		if an.isParam(fs.Collection, param) {
			fp.Iterated = true
			an.collectElementEvidence(fs, fp)
		}
		an.walkBlock(fs.Body, param, fp)
	case ast.KindWhileStmt:
		ws, _ := a.WhileStmt(node)
		an.walkExpr(ws.Condition, param, fp)
		an.walkBlock(ws.Body, param, fp)
	case ast.KindMatchStmt:
		ms, _ := a.MatchStmt(node)
		an.walkExpr(ms.Subject, param, fp)
		for _, c := range ms.Cases {
			mc, ok := a.MatchCase(c)
			if !ok {
				continue
			}
			an.walkBlock(mc.Body, param, fp)
		}
	}
}

func (an *Analyzer) walkExpr(node ast.NodeID, param string, fp *Fingerprint) {
	a := an.Engine.Arena
	if !a.Valid(node) {
		return
	}
	switch a.Get(node).Kind {
	case ast.KindMemberAccess:
		ma, _ := a.MemberAccess(node)
		an.walkExpr(ma.Receiver, param, fp)
		if an.isParam(ma.Receiver, param) {
			fp.Properties[ma.Member] = true
		}
	case ast.KindCallExpr:
		ce, _ := a.CallExpr(node)
		an.recordCall(node, ce, param, fp)
		if callee, ok := a.MemberAccess(ce.Callee); ok {
			// A called member is a method, not a property read.
			an.walkExpr(callee.Receiver, param, fp)
		} else {
			an.walkExpr(ce.Callee, param, fp)
		}
		for _, arg := range ce.Args {
			an.walkExpr(arg, param, fp)
		}
	case ast.KindIndexExpr:
		ie, _ := a.IndexExpr(node)
		an.walkExpr(ie.Receiver, param, fp)
		an.walkExpr(ie.Index, param, fp)
		if an.isParam(ie.Receiver, param) {
			fp.Indexed = true
			fp.KeyTypes = append(fp.KeyTypes, an.Engine.Infer(ie.Index, an.stateAt(node)))
		}
	case ast.KindBinaryExpr:
		be, _ := a.BinaryExpr(node)
		an.walkExpr(be.Left, param, fp)
		an.walkExpr(be.Right, param, fp)
		an.recordGuard(node, param, fp)
	case ast.KindUnaryExpr:
		ue, _ := a.UnaryExpr(node)
		if inner, ok := a.BinaryExpr(ue.Operand); ok && ue.Op == ast.OpNot && (inner.Op == ast.OpIs || inner.Op == ast.OpIsNot) {
			// The inner `is` test is recorded once, negated, below.
			an.walkExpr(inner.Left, param, fp)
			an.walkExpr(inner.Right, param, fp)
		} else {
			an.walkExpr(ue.Operand, param, fp)
		}
		an.recordGuard(node, param, fp)
	case ast.KindTernaryExpr:
		te, _ := a.TernaryExpr(node)
		an.walkExpr(te.Cond, param, fp)
		an.walkExpr(te.Then, param, fp)
		an.walkExpr(te.Else, param, fp)
	case ast.KindLambdaExpr:
		le, _ := a.LambdaExpr(node)
		an.walkBlock(le.Body, param, fp)
	}
}

// recordCall captures method calls on the parameter (`param.method(...)`)
// and call sites where the parameter is passed as an argument elsewhere.
func (an *Analyzer) recordCall(node ast.NodeID, ce ast.CallExpr, param string, fp *Fingerprint) {
	a := an.Engine.Arena
	state := an.stateAt(node)

	if recv, ok := a.MemberAccess(ce.Callee); ok && an.isParam(recv.Receiver, param) {
		args := make([]types.Type, 0, len(ce.Args))
		for _, arg := range ce.Args {
			args = append(args, an.Engine.Infer(arg, state))
		}
		fp.Calls = append(fp.Calls, CallEvidence{Name: recv.Member, Args: args})

		// `.get(key)` is simultaneously a method call and index-like
		// key evidence (spec.md §4.5: "key types observed when ...
		// calling .get(key)").
		if recv.Member == "get" && len(ce.Args) > 0 {
			fp.Indexed = true
			fp.KeyTypes = append(fp.KeyTypes, an.Engine.Infer(ce.Args[0], state))
		}
	}

	calleeName := an.calleeName(ce.Callee)
	for i, arg := range ce.Args {
		if an.isParam(arg, param) {
			fp.PassedAs = append(fp.PassedAs, ArgumentPassage{Callee: calleeName, ArgIndex: i})
		}
	}
}

func (an *Analyzer) calleeName(node ast.NodeID) string {
	a := an.Engine.Arena
	if id, ok := a.Identifier(node); ok {
		return id.Name
	}
	if ma, ok := a.MemberAccess(node); ok {
		return ma.Member
	}
	return ""
}

// recordGuard recognizes `x is T`, `x not is T`, and `not (x is T)` guards
// on the parameter.
func (an *Analyzer) recordGuard(node ast.NodeID, param string, fp *Fingerprint) {
	a := an.Engine.Arena
	switch a.Get(node).Kind {
	case ast.KindBinaryExpr:
		be, _ := a.BinaryExpr(node)
		if !an.isParam(be.Left, param) {
			return
		}
		switch be.Op {
		case ast.OpIs:
			fp.IsGuards = append(fp.IsGuards, be.TypeName)
		case ast.OpIsNot:
			fp.NotIsGuards = append(fp.NotIsGuards, be.TypeName)
		}
	case ast.KindUnaryExpr:
		ue, _ := a.UnaryExpr(node)
		if ue.Op != ast.OpNot {
			return
		}
		inner, ok := a.BinaryExpr(ue.Operand)
		if !ok || !an.isParam(inner.Left, param) {
			return
		}
		switch inner.Op {
		case ast.OpIs:
			fp.NotIsGuards = append(fp.NotIsGuards, inner.TypeName)
		case ast.OpIsNot:
			fp.IsGuards = append(fp.IsGuards, inner.TypeName)
		}
	}
}

// collectElementEvidence scans a for-loop body for an `is T` guard on the
// loop's iteration variable, recording T as observed element-type
// evidence for the iterated parameter.
func (an *Analyzer) collectElementEvidence(fs ast.ForStmt, fp *Fingerprint) {
	a := an.Engine.Arena
	iter, ok := a.IteratorDecl(fs.Iterator)
	if !ok {
		return
	}
	bs, ok := a.BlockStmt(fs.Body)
	if !ok {
		return
	}
	for _, stmt := range bs.Statements {
		an.scanIteratorGuard(stmt, iter.Name, fp)
	}
}

func (an *Analyzer) scanIteratorGuard(node ast.NodeID, iterName string, fp *Fingerprint) {
	a := an.Engine.Arena
	if !a.Valid(node) {
		return
	}
	var cond ast.NodeID
	switch a.Get(node).Kind {
	case ast.KindIfStmt:
		ifs, _ := a.IfStmt(node)
		cond = ifs.Condition
	case ast.KindExprStmt:
		es, _ := a.ExprStmt(node)
		cond = es.Expr
	default:
		return
	}
	be, ok := a.BinaryExpr(cond)
	if !ok || be.Op != ast.OpIs {
		return
	}
	id, ok := a.Identifier(be.Left)
	if !ok || id.Name != iterName {
		return
	}
	fp.ElementTypes = append(fp.ElementTypes, be.TypeName)
}
