package ast

// Payload accessors centralize the type assertion so the rest of the
// core never touches Node.Payload directly. Each returns the zero value
// and false if the node's Kind doesn't match (malformed-AST tolerance
// per spec.md §7: callers treat a missing payload like a missing node).

func (a *Arena) Identifier(id NodeID) (Identifier, bool) {
	return payload[Identifier](a, id, KindIdentifier)
}

func (a *Arena) IntLiteral(id NodeID) (IntLiteral, bool) {
	return payload[IntLiteral](a, id, KindIntLiteral)
}

func (a *Arena) FloatLiteral(id NodeID) (FloatLiteral, bool) {
	return payload[FloatLiteral](a, id, KindFloatLiteral)
}

func (a *Arena) BoolLiteral(id NodeID) (BoolLiteral, bool) {
	return payload[BoolLiteral](a, id, KindBoolLiteral)
}

func (a *Arena) StringLiteral(id NodeID) (StringLiteral, bool) {
	return payload[StringLiteral](a, id, KindStringLiteral)
}

func (a *Arena) MemberAccess(id NodeID) (MemberAccess, bool) {
	return payload[MemberAccess](a, id, KindMemberAccess)
}

func (a *Arena) CallExpr(id NodeID) (CallExpr, bool) {
	return payload[CallExpr](a, id, KindCallExpr)
}

func (a *Arena) IndexExpr(id NodeID) (IndexExpr, bool) {
	return payload[IndexExpr](a, id, KindIndexExpr)
}

func (a *Arena) BinaryExpr(id NodeID) (BinaryExpr, bool) {
	return payload[BinaryExpr](a, id, KindBinaryExpr)
}

func (a *Arena) UnaryExpr(id NodeID) (UnaryExpr, bool) {
	return payload[UnaryExpr](a, id, KindUnaryExpr)
}

func (a *Arena) TernaryExpr(id NodeID) (TernaryExpr, bool) {
	return payload[TernaryExpr](a, id, KindTernaryExpr)
}

func (a *Arena) LambdaExpr(id NodeID) (LambdaExpr, bool) {
	return payload[LambdaExpr](a, id, KindLambdaExpr)
}

func (a *Arena) VarDecl(id NodeID) (VarDecl, bool) {
	return payload[VarDecl](a, id, KindVarDecl)
}

func (a *Arena) ParamDecl(id NodeID) (ParamDecl, bool) {
	return payload[ParamDecl](a, id, KindParamDecl)
}

func (a *Arena) IteratorDecl(id NodeID) (IteratorDecl, bool) {
	return payload[IteratorDecl](a, id, KindIteratorDecl)
}

func (a *Arena) MatchBindingDecl(id NodeID) (MatchBindingDecl, bool) {
	return payload[MatchBindingDecl](a, id, KindMatchBindingDecl)
}

func (a *Arena) TypeNode(id NodeID) (TypeNode, bool) {
	return payload[TypeNode](a, id, KindTypeNode)
}

func (a *Arena) AssignStmt(id NodeID) (AssignStmt, bool) {
	return payload[AssignStmt](a, id, KindAssignStmt)
}

func (a *Arena) ExprStmt(id NodeID) (ExprStmt, bool) {
	return payload[ExprStmt](a, id, KindExprStmt)
}

func (a *Arena) ReturnStmt(id NodeID) (ReturnStmt, bool) {
	return payload[ReturnStmt](a, id, KindReturnStmt)
}

func (a *Arena) BlockStmt(id NodeID) (BlockStmt, bool) {
	return payload[BlockStmt](a, id, KindBlockStmt)
}

func (a *Arena) IfStmt(id NodeID) (IfStmt, bool) {
	return payload[IfStmt](a, id, KindIfStmt)
}

func (a *Arena) ElifClause(id NodeID) (ElifClause, bool) {
	return payload[ElifClause](a, id, KindElifClause)
}

func (a *Arena) ForStmt(id NodeID) (ForStmt, bool) {
	return payload[ForStmt](a, id, KindForStmt)
}

func (a *Arena) WhileStmt(id NodeID) (WhileStmt, bool) {
	return payload[WhileStmt](a, id, KindWhileStmt)
}

func (a *Arena) MatchStmt(id NodeID) (MatchStmt, bool) {
	return payload[MatchStmt](a, id, KindMatchStmt)
}

func (a *Arena) MatchCase(id NodeID) (MatchCase, bool) {
	return payload[MatchCase](a, id, KindMatchCase)
}

func (a *Arena) ClassDecl(id NodeID) (ClassDecl, bool) {
	return payload[ClassDecl](a, id, KindClassDecl)
}

func (a *Arena) MethodDecl(id NodeID) (MethodDecl, bool) {
	return payload[MethodDecl](a, id, KindMethodDecl)
}

func (a *Arena) SignalDecl(id NodeID) (SignalDecl, bool) {
	return payload[SignalDecl](a, id, KindSignalDecl)
}

func (a *Arena) PropertyDecl(id NodeID) (PropertyDecl, bool) {
	return payload[PropertyDecl](a, id, KindPropertyDecl)
}

func (a *Arena) EnumDecl(id NodeID) (EnumDecl, bool) {
	return payload[EnumDecl](a, id, KindEnumDecl)
}

func (a *Arena) ConstDecl(id NodeID) (ConstDecl, bool) {
	return payload[ConstDecl](a, id, KindConstDecl)
}

func (a *Arena) EnumValueDecl(id NodeID) (EnumValueDecl, bool) {
	return payload[EnumValueDecl](a, id, KindEnumValueDecl)
}

func (a *Arena) InnerClassDecl(id NodeID) (InnerClassDecl, bool) {
	return payload[InnerClassDecl](a, id, KindInnerClassDecl)
}

// payload fetches and asserts a node's payload, returning false on any
// mismatch (out-of-range id, wrong kind, or wrong/absent payload type)
// rather than panicking — malformed input is expected to be tolerated,
// never to crash the core (spec.md §7).
func payload[T any](a *Arena, id NodeID, want Kind) (T, bool) {
	var zero T
	if !a.Valid(id) {
		return zero, false
	}
	n := a.Get(id)
	if n.Kind != want {
		return zero, false
	}
	v, ok := n.Payload.(T)
	if !ok {
		return zero, false
	}
	return v, true
}
