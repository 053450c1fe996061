package container

import (
	"github.com/oxhq/semcore/internal/ast"
	"github.com/oxhq/semcore/internal/flow"
	"github.com/oxhq/semcore/internal/infer"
)

// appendMethods map a call name to the UsageKind it contributes when
// called on a bare identifier receiver (the receiver's type is not
// checked).
var appendMethods = map[string]UsageKind{
	"append":     Append,
	"push_back":  PushBack,
	"push_front": PushFront,
}

// Collector walks a method body building a Profile per variable,
// grounded on the same per-node flow-state lookup infer's walker and
// paramusage's Analyzer use.
type Collector struct {
	Engine   *infer.Engine
	Method   *infer.MethodAnalysis
	Profiles map[string]*Profile
}

// NewCollector returns a Collector that will accumulate profiles using
// engine for type inference and method's per-node flow states for
// context (method may be nil).
func NewCollector(engine *infer.Engine, method *infer.MethodAnalysis) *Collector {
	return &Collector{Engine: engine, Method: method, Profiles: make(map[string]*Profile)}
}

// Collect walks body and returns the accumulated per-variable profiles.
func (c *Collector) Collect(body ast.NodeID) map[string]*Profile {
	c.walkBlock(body)
	return c.Profiles
}

func (c *Collector) profileFor(name string) *Profile {
	p, ok := c.Profiles[name]
	if !ok {
		p = &Profile{Variable: name}
		c.Profiles[name] = p
	}
	return p
}

func (c *Collector) stateAt(node ast.NodeID) *flow.State {
	if c.Method == nil {
		return nil
	}
	return c.Method.NodeStates[node]
}

func (c *Collector) identName(node ast.NodeID) (string, bool) {
	id, ok := c.Engine.Arena.Identifier(node)
	if !ok {
		return "", false
	}
	return id.Name, true
}

func (c *Collector) walkBlock(block ast.NodeID) {
	a := c.Engine.Arena
	bs, ok := a.BlockStmt(block)
	if !ok {
		return
	}
	for _, stmt := range bs.Statements {
		c.walkStmt(stmt)
	}
}

func (c *Collector) walkStmt(node ast.NodeID) {
	a := c.Engine.Arena
	if !a.Valid(node) {
		return
	}
	switch a.Get(node).Kind {
	case ast.KindExprStmt:
		es, _ := a.ExprStmt(node)
		c.walkExpr(es.Expr)
	case ast.KindReturnStmt:
		rs, _ := a.ReturnStmt(node)
		c.walkExpr(rs.Value)
	case ast.KindAssignStmt:
		asn, _ := a.AssignStmt(node)
		c.recordAssignTarget(node, asn)
		c.walkExpr(asn.Value)
	case ast.KindVarDecl:
		vd, _ := a.VarDecl(node)
		c.walkExpr(vd.Initializer)
	case ast.KindBlockStmt:
		c.walkBlock(node)
	case ast.KindIfStmt:
		ifs, _ := a.IfStmt(node)
		c.walkExpr(ifs.Condition)
		c.walkBlock(ifs.Then)
		for _, el := range ifs.Elifs {
			ec, ok := a.ElifClause(el)
			if !ok {
				continue
			}
			c.walkExpr(ec.Condition)
			c.walkBlock(ec.Body)
		}
		if a.Valid(ifs.ElseBranch) {
			c.walkBlock(ifs.ElseBranch)
		}
	case ast.KindForStmt:
		fs, _ := a.ForStmt(node)
		c.walkExpr(fs.Collection)
		c.walkBlock(fs.Body)
	case ast.KindWhileStmt:
		ws, _ := a.WhileStmt(node)
		c.walkExpr(ws.Condition)
		c.walkBlock(ws.Body)
	case ast.KindMatchStmt:
		ms, _ := a.MatchStmt(node)
		c.walkExpr(ms.Subject)
		for _, cs := range ms.Cases {
			mc, ok := a.MatchCase(cs)
			if !ok {
				continue
			}
			c.walkBlock(mc.Body)
		}
	}
}

func (c *Collector) walkExpr(node ast.NodeID) {
	a := c.Engine.Arena
	if !a.Valid(node) {
		return
	}
	switch a.Get(node).Kind {
	case ast.KindMemberAccess:
		ma, _ := a.MemberAccess(node)
		c.walkExpr(ma.Receiver)
	case ast.KindCallExpr:
		ce, _ := a.CallExpr(node)
		c.recordCall(node, ce)
		c.walkExpr(ce.Callee)
		for _, arg := range ce.Args {
			c.walkExpr(arg)
		}
	case ast.KindIndexExpr:
		ie, _ := a.IndexExpr(node)
		c.walkExpr(ie.Receiver)
		c.walkExpr(ie.Index)
	case ast.KindBinaryExpr:
		be, _ := a.BinaryExpr(node)
		c.walkExpr(be.Left)
		c.walkExpr(be.Right)
	case ast.KindUnaryExpr:
		ue, _ := a.UnaryExpr(node)
		c.walkExpr(ue.Operand)
	case ast.KindTernaryExpr:
		te, _ := a.TernaryExpr(node)
		c.walkExpr(te.Cond)
		c.walkExpr(te.Then)
		c.walkExpr(te.Else)
	case ast.KindLambdaExpr:
		le, _ := a.LambdaExpr(node)
		c.walkBlock(le.Body)
	}
}

// recordAssignTarget handles `recv[index] = value` and
// `recv[key] = value`: IndexAssignment value evidence on recv, and
// KeyAssignment key evidence from index.
func (c *Collector) recordAssignTarget(node ast.NodeID, asn ast.AssignStmt) {
	a := c.Engine.Arena
	ie, ok := a.IndexExpr(asn.Left)
	if !ok {
		return
	}
	name, ok := c.identName(ie.Receiver)
	if !ok {
		return
	}
	state := c.stateAt(node)
	p := c.profileFor(name)
	p.Values = append(p.Values, Evidence{
		Type:   c.Engine.Infer(asn.Value, state),
		Usage:  IndexAssignment,
		Source: node,
	})
	p.Keys = append(p.Keys, Evidence{
		Type:   c.Engine.Infer(ie.Index, state),
		Usage:  KeyAssignment,
		Source: node,
	})
}

// recordCall handles `recv.append(value)` / `push_back` / `push_front`
// (value evidence) and `recv.get(key)` (key evidence).
func (c *Collector) recordCall(node ast.NodeID, ce ast.CallExpr) {
	a := c.Engine.Arena
	ma, ok := a.MemberAccess(ce.Callee)
	if !ok || len(ce.Args) == 0 {
		return
	}
	name, ok := c.identName(ma.Receiver)
	if !ok {
		return
	}
	state := c.stateAt(node)
	p := c.profileFor(name)

	if usage, ok := appendMethods[ma.Member]; ok {
		p.Values = append(p.Values, Evidence{
			Type:   c.Engine.Infer(ce.Args[0], state),
			Usage:  usage,
			Source: node,
		})
		return
	}
	if ma.Member == "get" {
		p.Keys = append(p.Keys, Evidence{
			Type:   c.Engine.Infer(ce.Args[0], state),
			Usage:  DictionaryGet,
			Source: node,
		})
	}
}
