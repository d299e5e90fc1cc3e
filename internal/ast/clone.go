package ast

// CloneMember deep-copies a member including its body. Annotations are
// copied as well; callers overwrite what they specialize.
func CloneMember(m *Member) *Member {
	if m == nil {
		return nil
	}
	out := *m
	out.Params = make([]*Param, len(m.Params))
	for i, p := range m.Params {
		cp := *p
		out.Params[i] = &cp
	}
	out.Body = CloneBlock(m.Body)
	return &out
}

// CloneBlock deep-copies a block.
func CloneBlock(b *Block) *Block {
	if b == nil {
		return nil
	}
	out := &Block{Span: b.Span, Stmts: make([]*Stmt, len(b.Stmts))}
	for i, s := range b.Stmts {
		out.Stmts[i] = CloneStmt(s)
	}
	return out
}

// CloneStmt deep-copies a statement.
func CloneStmt(s *Stmt) *Stmt {
	if s == nil {
		return nil
	}
	out := &Stmt{Kind: s.Kind, Span: s.Span}
	switch data := s.Data.(type) {
	case *LetData:
		out.Data = &LetData{Name: data.Name, Type: data.Type, Value: CloneExpr(data.Value)}
	case *AssignData:
		out.Data = &AssignData{Target: CloneExpr(data.Target), Value: CloneExpr(data.Value)}
	case *ExprStmtData:
		out.Data = &ExprStmtData{Expr: CloneExpr(data.Expr)}
	case *ReturnData:
		out.Data = &ReturnData{Value: CloneExpr(data.Value)}
	case *IfData:
		out.Data = &IfData{Cond: CloneExpr(data.Cond), Then: CloneBlock(data.Then), Else: CloneBlock(data.Else)}
	case *WhileData:
		out.Data = &WhileData{Cond: CloneExpr(data.Cond), Body: CloneBlock(data.Body)}
	case *BlockData:
		out.Data = &BlockData{Block: CloneBlock(data.Block)}
	}
	return out
}

// CloneExpr deep-copies an expression tree.
func CloneExpr(e *Expr) *Expr {
	if e == nil {
		return nil
	}
	out := &Expr{Kind: e.Kind, Span: e.Span, Type: e.Type}
	switch data := e.Data.(type) {
	case *LiteralData:
		cp := *data
		out.Data = &cp
	case *IdentData:
		cp := *data
		out.Data = &cp
	case *ThisData:
		out.Data = &ThisData{}
	case *FieldData:
		out.Data = &FieldData{Object: CloneExpr(data.Object), Name: data.Name, Index: data.Index}
	case *UnaryData:
		out.Data = &UnaryData{Op: data.Op, Operand: CloneExpr(data.Operand)}
	case *BinaryData:
		out.Data = &BinaryData{Op: data.Op, Left: CloneExpr(data.Left), Right: CloneExpr(data.Right)}
	case *CallData:
		args := make([]*Expr, len(data.Args))
		for i, a := range data.Args {
			args[i] = CloneExpr(a)
		}
		out.Data = &CallData{Receiver: CloneExpr(data.Receiver), Method: data.Method, Args: args, Target: data.Target}
	case *NewData:
		cp := *data
		out.Data = &cp
	case *TypeNameData:
		cp := *data
		out.Data = &cp
	case *CastData:
		out.Data = &CastData{Type: data.Type, Value: CloneExpr(data.Value)}
	}
	return out
}
