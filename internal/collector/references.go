package collector

import (
	"github.com/oxhq/semcore/internal/ast"
	"github.com/oxhq/semcore/internal/diag"
	"github.com/oxhq/semcore/internal/flow"
	"github.com/oxhq/semcore/internal/infer"
	"github.com/oxhq/semcore/internal/symbols"
)

// AnalyzeBodies runs Pass 2 (spec.md §4.7) starting at root: every
// method body is walked expression by expression, resolving each
// identifier and member access to a Reference. AnalyzeNaming must have
// already run so Engine.Scopes/Engine.Classes are populated.
func (c *Collector) AnalyzeBodies(root ast.NodeID) {
	c.walkBodiesFrom(root)
}

func (c *Collector) walkBodiesFrom(node ast.NodeID) {
	if node != c.arena().Root() && !c.arena().Valid(node) {
		return
	}
	if c.bodyVisited[node] {
		return
	}
	c.bodyVisited[node] = true

	if md, ok := c.arena().MethodDecl(node); ok {
		ma := c.Engine.AnalyzeMethod(node)
		c.walkStmt(node, md.Body, ma)
	}

	for _, child := range c.arena().Get(node).Children {
		c.walkBodiesFrom(child)
	}
}

func (c *Collector) stateAt(ma *infer.MethodAnalysis, node ast.NodeID) *flow.State {
	if ma == nil {
		return nil
	}
	return ma.NodeStates[node]
}

func (c *Collector) walkStmt(owner ast.NodeID, node ast.NodeID, ma *infer.MethodAnalysis) {
	a := c.arena()
	if !a.Valid(node) {
		return
	}
	// The Flow Analyzer records an entry state for every statement node
	// it visits (never for the expressions nested inside one), so the
	// state active for every expression in this statement is the
	// statement's own recorded entry state, threaded down rather than
	// looked up again per expression.
	state := c.stateAt(ma, node)
	switch a.Get(node).Kind {
	case ast.KindBlockStmt:
		bs, _ := a.BlockStmt(node)
		for _, stmt := range bs.Statements {
			c.walkStmt(owner, stmt, ma)
		}
	case ast.KindExprStmt:
		es, _ := a.ExprStmt(node)
		c.walkExpr(owner, es.Expr, ma, state, false)
	case ast.KindReturnStmt:
		rs, _ := a.ReturnStmt(node)
		c.walkExpr(owner, rs.Value, ma, state, false)
	case ast.KindVarDecl:
		vd, _ := a.VarDecl(node)
		c.walkExpr(owner, vd.Initializer, ma, state, false)
	case ast.KindAssignStmt:
		asn, _ := a.AssignStmt(node)
		c.walkExpr(owner, asn.Left, ma, state, true)
		c.walkExpr(owner, asn.Value, ma, state, false)
	case ast.KindIfStmt:
		ifs, _ := a.IfStmt(node)
		c.walkExpr(owner, ifs.Condition, ma, state, false)
		c.walkStmt(owner, ifs.Then, ma)
		for _, el := range ifs.Elifs {
			ec, ok := a.ElifClause(el)
			if !ok {
				continue
			}
			// ElifClause nodes are never themselves passed to the Flow
			// Analyzer's walkStmt (only their Body blocks are), so no
			// entry state is recorded under el; an elif condition is
			// evaluated against the enclosing if's own entry state,
			// matching walkIf's own narrowCondition(elif.Condition,
			// false, state) call.
			c.walkExpr(owner, ec.Condition, ma, state, false)
			c.walkStmt(owner, ec.Body, ma)
		}
		if a.Valid(ifs.ElseBranch) {
			c.walkStmt(owner, ifs.ElseBranch, ma)
		}
	case ast.KindForStmt:
		fs, _ := a.ForStmt(node)
		c.walkExpr(owner, fs.Collection, ma, state, false)
		c.walkStmt(owner, fs.Body, ma)
	case ast.KindWhileStmt:
		ws, _ := a.WhileStmt(node)
		c.walkExpr(owner, ws.Condition, ma, state, false)
		c.walkStmt(owner, ws.Body, ma)
	case ast.KindMatchStmt:
		ms, _ := a.MatchStmt(node)
		c.walkExpr(owner, ms.Subject, ma, state, false)
		for _, cs := range ms.Cases {
			mc, ok := a.MatchCase(cs)
			if !ok {
				continue
			}
			c.walkStmt(owner, mc.Body, ma)
		}
	}
}

func (c *Collector) walkExpr(owner ast.NodeID, node ast.NodeID, ma *infer.MethodAnalysis, state *flow.State, write bool) {
	a := c.arena()
	if !a.Valid(node) {
		return
	}
	switch a.Get(node).Kind {
	case ast.KindIdentifier:
		id, _ := a.Identifier(node)
		c.recordIdentifier(node, id.Name, write)

	case ast.KindMemberAccess:
		ma2, _ := a.MemberAccess(node)
		c.walkExpr(owner, ma2.Receiver, ma, state, false)
		recvType := c.Engine.Infer(ma2.Receiver, state)
		conf := MemberAccessConfidence(c.Engine, recvType, ma2.Member)
		c.recordReference(node, ma2.Member, conf, write)

	case ast.KindCallExpr:
		ce, _ := a.CallExpr(node)
		c.recordCallReflection(owner, node, ce, ma)
		c.walkExpr(owner, ce.Callee, ma, state, false)
		for _, arg := range ce.Args {
			c.walkExpr(owner, arg, ma, state, false)
		}

	case ast.KindIndexExpr:
		ie, _ := a.IndexExpr(node)
		c.walkExpr(owner, ie.Receiver, ma, state, write)
		c.walkExpr(owner, ie.Index, ma, state, false)

	case ast.KindBinaryExpr:
		be, _ := a.BinaryExpr(node)
		c.walkExpr(owner, be.Left, ma, state, false)
		c.walkExpr(owner, be.Right, ma, state, false)

	case ast.KindUnaryExpr:
		ue, _ := a.UnaryExpr(node)
		c.walkExpr(owner, ue.Operand, ma, state, false)

	case ast.KindTernaryExpr:
		te, _ := a.TernaryExpr(node)
		c.walkExpr(owner, te.Cond, ma, state, false)
		c.walkExpr(owner, te.Then, ma, state, false)
		c.walkExpr(owner, te.Else, ma, state, false)

	case ast.KindLambdaExpr:
		le, _ := a.LambdaExpr(node)
		// The lambda's own per-node states were discarded by the engine
		// (spec.md §4.2: a lambda body never mutates outer flow state),
		// so walkStmt finds no recorded state for the statements inside
		// it and references there are resolved with a nil flow state.
		c.walkStmt(node, le.Body, ma)
	}
}

// recordIdentifier resolves a bare name reference through scope,
// current-class members, and the runtime provider's builtins/globals,
// in that order, grading confidence and falling back to NameMatch.
func (c *Collector) recordIdentifier(node ast.NodeID, name string, write bool) {
	a := c.arena()
	if sym, ok := c.Engine.Scopes.FindInScope(a, name, node); ok {
		c.append(node, name, sym, Strict, write)
		return
	}
	if classNode := a.FindAncestor(node, ast.KindClassDecl); a.Valid(classNode) {
		qualified := c.qualifiedClassName(classNode)
		if _, sym, escaped, ok := c.Engine.ClassMemberInChain(qualified, name); ok {
			c.append(node, name, sym, Strict, write)
			return
		} else if escaped != "" {
			if _, ok := c.Engine.Provider.GetMember(escaped, name); ok {
				c.append(node, name, nil, Strict, write)
				return
			}
		}
	}
	if c.Engine.Provider.IsBuiltIn(name) {
		c.append(node, name, nil, Strict, write)
		return
	}
	if _, ok := c.Engine.Provider.GetGlobalFunction(name); ok {
		c.append(node, name, nil, Strict, write)
		return
	}
	c.append(node, name, nil, NameMatch, write)
	c.reportNameMatch(node, name)
}

func (c *Collector) recordReference(node ast.NodeID, name string, conf Confidence, write bool) {
	c.append(node, name, nil, conf, write)
	if conf == NameMatch {
		c.reportNameMatch(node, name)
	}
}

func (c *Collector) append(node ast.NodeID, name string, sym *symbols.Symbol, conf Confidence, write bool) {
	c.References = append(c.References, Reference{
		Node:       node,
		Name:       name,
		Symbol:     sym,
		Confidence: conf,
		Write:      write,
		Scope:      c.scopeChain(node),
	})
}

func (c *Collector) scopeChain(node ast.NodeID) []ast.NodeID {
	var chain []ast.NodeID
	c.arena().Ancestors(node, func(cur ast.NodeID) bool {
		if _, ok := c.Engine.Scopes.ScopeFor(cur); ok {
			chain = append(chain, cur)
		}
		return true
	})
	return chain
}

func (c *Collector) reportNameMatch(node ast.NodeID, name string) {
	if c.Diagnostics == nil {
		return
	}
	c.Diagnostics.Addf(diag.CodeNameMatchOnly, diag.Info, node, c.arena().Get(node).Pos,
		"%q resolved by name only; no declaration or provider evidence found", name)
}
