package collector

import (
	"strings"

	"github.com/oxhq/semcore/internal/ast"
	"github.com/oxhq/semcore/internal/symbols"
)

// AnalyzeNaming runs Pass 1 (spec.md §4.7) starting at root: every class
// (including inner classes, discovered at whatever depth they appear)
// is registered in Engine.Classes under its fully-qualified name, every
// member is registered as a class symbol, and every method/lambda body's
// locals (parameters, `var` declarations, loop iterators, match
// bindings) are registered in Engine.Scopes under a scope owned by the
// declaring method or lambda node.
func (c *Collector) AnalyzeNaming(root ast.NodeID) {
	c.walkForClasses(root)
}

// walkForClasses recurses the whole tree (not just class-member lists)
// so a ClassDecl nested inside an InnerClassDecl anywhere in the tree is
// found regardless of how deep it sits, mirroring qualifiedClassName's
// equally generic ancestor walk.
func (c *Collector) walkForClasses(node ast.NodeID) {
	if node != c.arena().Root() && !c.arena().Valid(node) {
		return
	}
	if c.namingVisited[node] {
		return
	}
	c.namingVisited[node] = true

	if cd, ok := c.arena().ClassDecl(node); ok {
		qualified := c.qualifiedClassName(node)
		c.Engine.Classes.DeclareClass(qualified, cd.Base)
		for _, m := range cd.Members {
			c.declareMember(qualified, m)
		}
	}

	for _, child := range c.arena().Get(node).Children {
		c.walkForClasses(child)
	}
}

// QualifiedClassName exposes qualifiedClassName to callers outside this
// package (the semantic model's scope-aware symbol lookup needs the same
// outer.inner joining this package's own identifier resolution uses).
func (c *Collector) QualifiedClassName(classNode ast.NodeID) string {
	return c.qualifiedClassName(classNode)
}

// qualifiedClassName joins every ClassDecl name found walking from
// classNode up to the file root, outermost first, so an inner class
// "Inner" declared inside "Outer" registers as "Outer.Inner" and never
// collides with a same-named inner class declared in a different outer.
func (c *Collector) qualifiedClassName(classNode ast.NodeID) string {
	var names []string
	cur := classNode
	for c.arena().Valid(cur) {
		if cd, ok := c.arena().ClassDecl(cur); ok {
			names = append([]string{cd.Name}, names...)
		}
		cur = c.arena().Parent(cur)
	}
	return strings.Join(names, ".")
}

func (c *Collector) declareMember(className string, node ast.NodeID) {
	a := c.arena()
	switch a.Get(node).Kind {
	case ast.KindMethodDecl:
		md, _ := a.MethodDecl(node)
		sym := &symbols.Symbol{Name: md.Name, Kind: symbols.KindMethod, Decl: node, Scope: node, IsStatic: md.IsStatic}
		if a.Valid(md.ReturnType) {
			sym.ReturnType = c.Engine.ResolveType(md.ReturnType)
		}
		for _, p := range md.Params {
			pd, ok := a.ParamDecl(p)
			if !ok {
				continue
			}
			var pt symbols.ParamInfo
			pt.Name = pd.Name
			if a.Valid(pd.Declared) {
				pt.Type = c.Engine.ResolveType(pd.Declared)
			}
			sym.Params = append(sym.Params, pt)
		}
		c.Engine.Classes.AddMember(className, sym)

		methodScope := c.Engine.Scopes.PushScope(node, c.Engine.Scopes.Root())
		for _, p := range md.Params {
			pd, ok := a.ParamDecl(p)
			if !ok {
				continue
			}
			psym := &symbols.Symbol{Name: pd.Name, Kind: symbols.KindParameter, Decl: p, Scope: node}
			if a.Valid(pd.Declared) {
				psym.DeclaredType = c.Engine.ResolveType(pd.Declared)
			}
			methodScope.Declare(psym)
		}
		c.walkLocalDecls(methodScope, node, md.Body)

	case ast.KindPropertyDecl:
		pd, _ := a.PropertyDecl(node)
		sym := &symbols.Symbol{Name: pd.Name, Kind: symbols.KindProperty, Decl: node}
		if a.Valid(pd.Declared) {
			sym.DeclaredType = c.Engine.ResolveType(pd.Declared)
		}
		c.Engine.Classes.AddMember(className, sym)

	case ast.KindSignalDecl:
		sd, _ := a.SignalDecl(node)
		sym := &symbols.Symbol{Name: sd.Name, Kind: symbols.KindSignal, Decl: node}
		for _, p := range sd.Params {
			pd, ok := a.ParamDecl(p)
			if !ok {
				continue
			}
			var pt symbols.ParamInfo
			pt.Name = pd.Name
			if a.Valid(pd.Declared) {
				pt.Type = c.Engine.ResolveType(pd.Declared)
			}
			sym.Params = append(sym.Params, pt)
		}
		c.Engine.Classes.AddMember(className, sym)

	case ast.KindConstDecl:
		cdecl, _ := a.ConstDecl(node)
		sym := &symbols.Symbol{Name: cdecl.Name, Kind: symbols.KindConstant, Decl: node}
		if a.Valid(cdecl.Declared) {
			sym.DeclaredType = c.Engine.ResolveType(cdecl.Declared)
		}
		c.Engine.Classes.AddMember(className, sym)

	case ast.KindEnumDecl:
		ed, _ := a.EnumDecl(node)
		sym := &symbols.Symbol{Name: ed.Name, Kind: symbols.KindEnum, Decl: node}
		c.Engine.Classes.AddMember(className, sym)
		for _, v := range ed.Values {
			evd, ok := a.EnumValueDecl(v)
			if !ok {
				continue
			}
			vsym := &symbols.Symbol{Name: evd.Name, Kind: symbols.KindEnumValue, Decl: v}
			c.Engine.Classes.AddMember(className, vsym)
		}

	case ast.KindInnerClassDecl:
		icd, ok := a.InnerClassDecl(node)
		if !ok {
			return
		}
		inner, ok := a.ClassDecl(icd.Class)
		if !ok {
			return
		}
		sym := &symbols.Symbol{Name: inner.Name, Kind: symbols.KindInnerClass, Decl: icd.Class}
		c.Engine.Classes.AddMember(className, sym)
		// walkForClasses (driven from the generic tree recursion in
		// AnalyzeNaming) independently discovers icd.Class and declares
		// it under its own qualified name; no need to recurse here.
	}
}

// walkLocalDecls registers every local declaration reachable within a
// method or lambda body into scope, recursing through nested statement
// blocks (GDScript has no block-level scoping: an `if`/`for`/`while`
// body shares its enclosing method's scope) and descending into any
// lambda expressions found along the way with their own nested scope.
func (c *Collector) walkLocalDecls(scope *symbols.Scope, owner ast.NodeID, node ast.NodeID) {
	a := c.arena()
	if !a.Valid(node) {
		return
	}
	switch a.Get(node).Kind {
	case ast.KindBlockStmt:
		bs, _ := a.BlockStmt(node)
		for _, stmt := range bs.Statements {
			c.walkLocalDecls(scope, owner, stmt)
		}

	case ast.KindVarDecl:
		vd, _ := a.VarDecl(node)
		sym := &symbols.Symbol{Name: vd.Name, Kind: symbols.KindVariable, Decl: node, Scope: owner}
		if a.Valid(vd.Declared) {
			sym.DeclaredType = c.Engine.ResolveType(vd.Declared)
		}
		scope.Declare(sym)
		c.scanExprForLambdas(scope, owner, vd.Initializer)

	case ast.KindAssignStmt:
		asn, _ := a.AssignStmt(node)
		c.scanExprForLambdas(scope, owner, asn.Value)

	case ast.KindExprStmt:
		es, _ := a.ExprStmt(node)
		c.scanExprForLambdas(scope, owner, es.Expr)

	case ast.KindReturnStmt:
		rs, _ := a.ReturnStmt(node)
		c.scanExprForLambdas(scope, owner, rs.Value)

	case ast.KindIfStmt:
		ifs, _ := a.IfStmt(node)
		c.scanExprForLambdas(scope, owner, ifs.Condition)
		c.walkLocalDecls(scope, owner, ifs.Then)
		for _, el := range ifs.Elifs {
			ec, ok := a.ElifClause(el)
			if !ok {
				continue
			}
			c.scanExprForLambdas(scope, owner, ec.Condition)
			c.walkLocalDecls(scope, owner, ec.Body)
		}
		if a.Valid(ifs.ElseBranch) {
			c.walkLocalDecls(scope, owner, ifs.ElseBranch)
		}

	case ast.KindForStmt:
		fs, _ := a.ForStmt(node)
		c.scanExprForLambdas(scope, owner, fs.Collection)
		if id, ok := a.IteratorDecl(fs.Iterator); ok && id.Name != "" {
			scope.Declare(&symbols.Symbol{Name: id.Name, Kind: symbols.KindIterator, Decl: fs.Iterator, Scope: owner})
		}
		c.walkLocalDecls(scope, owner, fs.Body)

	case ast.KindWhileStmt:
		ws, _ := a.WhileStmt(node)
		c.scanExprForLambdas(scope, owner, ws.Condition)
		c.walkLocalDecls(scope, owner, ws.Body)

	case ast.KindMatchStmt:
		ms, _ := a.MatchStmt(node)
		c.scanExprForLambdas(scope, owner, ms.Subject)
		for _, cs := range ms.Cases {
			mc, ok := a.MatchCase(cs)
			if !ok {
				continue
			}
			if a.Valid(mc.Binding) {
				if bd, ok := a.MatchBindingDecl(mc.Binding); ok && bd.Name != "" {
					scope.Declare(&symbols.Symbol{Name: bd.Name, Kind: symbols.KindMatchBinding, Decl: mc.Binding, Scope: owner})
				}
			}
			c.walkLocalDecls(scope, owner, mc.Body)
		}
	}
}

// scanExprForLambdas finds LambdaExpr nodes reachable from an
// expression and registers their own nested scope (parented to scope),
// recursing into the lambda body for further nested declarations.
func (c *Collector) scanExprForLambdas(scope *symbols.Scope, owner ast.NodeID, node ast.NodeID) {
	a := c.arena()
	if !a.Valid(node) {
		return
	}
	switch a.Get(node).Kind {
	case ast.KindLambdaExpr:
		le, _ := a.LambdaExpr(node)
		lambdaScope := c.Engine.Scopes.PushScope(node, scope)
		for _, p := range le.Params {
			pd, ok := a.ParamDecl(p)
			if !ok {
				continue
			}
			psym := &symbols.Symbol{Name: pd.Name, Kind: symbols.KindParameter, Decl: p, Scope: node}
			if a.Valid(pd.Declared) {
				psym.DeclaredType = c.Engine.ResolveType(pd.Declared)
			}
			lambdaScope.Declare(psym)
		}
		c.walkLocalDecls(lambdaScope, node, le.Body)

	case ast.KindMemberAccess:
		ma, _ := a.MemberAccess(node)
		c.scanExprForLambdas(scope, owner, ma.Receiver)
	case ast.KindCallExpr:
		ce, _ := a.CallExpr(node)
		c.scanExprForLambdas(scope, owner, ce.Callee)
		for _, arg := range ce.Args {
			c.scanExprForLambdas(scope, owner, arg)
		}
	case ast.KindIndexExpr:
		ie, _ := a.IndexExpr(node)
		c.scanExprForLambdas(scope, owner, ie.Receiver)
		c.scanExprForLambdas(scope, owner, ie.Index)
	case ast.KindBinaryExpr:
		be, _ := a.BinaryExpr(node)
		c.scanExprForLambdas(scope, owner, be.Left)
		c.scanExprForLambdas(scope, owner, be.Right)
	case ast.KindUnaryExpr:
		ue, _ := a.UnaryExpr(node)
		c.scanExprForLambdas(scope, owner, ue.Operand)
	case ast.KindTernaryExpr:
		te, _ := a.TernaryExpr(node)
		c.scanExprForLambdas(scope, owner, te.Cond)
		c.scanExprForLambdas(scope, owner, te.Then)
		c.scanExprForLambdas(scope, owner, te.Else)
	}
}
