package ast

// WalkStmts calls fn for every statement in b, depth-first, pre-order.
func WalkStmts(b *Block, fn func(*Stmt)) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		fn(s)
		switch data := s.Data.(type) {
		case *IfData:
			WalkStmts(data.Then, fn)
			WalkStmts(data.Else, fn)
		case *WhileData:
			WalkStmts(data.Body, fn)
		case *BlockData:
			WalkStmts(data.Block, fn)
		}
	}
}

// WalkExprs calls fn for every expression in b in evaluation order
// (children before parents). Call sites are therefore visited in the
// order they are discovered left to right.
func WalkExprs(b *Block, fn func(*Expr)) {
	WalkStmts(b, func(s *Stmt) {
		for _, e := range StmtExprs(s) {
			walkExpr(e, fn)
		}
	})
}

// StmtExprs returns the top-level expressions owned directly by s.
func StmtExprs(s *Stmt) []*Expr {
	switch data := s.Data.(type) {
	case *LetData:
		return nonNil(data.Value)
	case *AssignData:
		return nonNil(data.Target, data.Value)
	case *ExprStmtData:
		return nonNil(data.Expr)
	case *ReturnData:
		return nonNil(data.Value)
	case *IfData:
		return nonNil(data.Cond)
	case *WhileData:
		return nonNil(data.Cond)
	}
	return nil
}

func walkExpr(e *Expr, fn func(*Expr)) {
	if e == nil {
		return
	}
	switch data := e.Data.(type) {
	case *FieldData:
		walkExpr(data.Object, fn)
	case *UnaryData:
		walkExpr(data.Operand, fn)
	case *BinaryData:
		walkExpr(data.Left, fn)
		walkExpr(data.Right, fn)
	case *CallData:
		walkExpr(data.Receiver, fn)
		for _, a := range data.Args {
			walkExpr(a, fn)
		}
	case *CastData:
		walkExpr(data.Value, fn)
	}
	fn(e)
}

func nonNil(exprs ...*Expr) []*Expr {
	out := exprs[:0]
	for _, e := range exprs {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

// Calls returns call expressions of b in discovery order.
func Calls(b *Block) []*Expr {
	var out []*Expr
	WalkExprs(b, func(e *Expr) {
		if e.Kind == ExprCall {
			out = append(out, e)
		}
	})
	return out
}
