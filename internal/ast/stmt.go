package ast

import (
	"cstar/internal/source"
)

// StmtKind enumerates statement kinds.
type StmtKind uint8

const (
	// StmtLet declares a local (let x: T = e, or var x = e).
	StmtLet StmtKind = iota
	// StmtAssign assigns to a local, a field or this.field.
	StmtAssign
	// StmtExpr evaluates an expression for its effect.
	StmtExpr
	// StmtReturn returns from the member.
	StmtReturn
	// StmtIf is if/else.
	StmtIf
	// StmtWhile is a pre-checked loop.
	StmtWhile
	// StmtBlock is a nested block.
	StmtBlock
)

// String returns a human-readable name for the statement kind.
func (k StmtKind) String() string {
	switch k {
	case StmtLet:
		return "Let"
	case StmtAssign:
		return "Assign"
	case StmtExpr:
		return "Expr"
	case StmtReturn:
		return "Return"
	case StmtIf:
		return "If"
	case StmtWhile:
		return "While"
	case StmtBlock:
		return "Block"
	default:
		return "Unknown"
	}
}

// Stmt represents a statement.
type Stmt struct {
	Kind StmtKind
	Span source.Span
	Data StmtData // Kind-specific payload
}

// StmtData is the interface for statement-specific data.
type StmtData interface {
	stmtData()
}

// LetData holds data for StmtLet.
type LetData struct {
	Name  string
	Type  TypeRef // placeholder when inferred
	Value *Expr   // nil if none
}

func (*LetData) stmtData() {}

// AssignData holds data for StmtAssign.
type AssignData struct {
	Target *Expr
	Value  *Expr
}

func (*AssignData) stmtData() {}

// ExprStmtData holds data for StmtExpr.
type ExprStmtData struct {
	Expr *Expr
}

func (*ExprStmtData) stmtData() {}

// ReturnData holds data for StmtReturn.
type ReturnData struct {
	Value *Expr // nil for bare return
}

func (*ReturnData) stmtData() {}

// IfData holds data for StmtIf.
type IfData struct {
	Cond *Expr
	Then *Block
	Else *Block // nil if no else
}

func (*IfData) stmtData() {}

// WhileData holds data for StmtWhile.
type WhileData struct {
	Cond *Expr
	Body *Block
}

func (*WhileData) stmtData() {}

// BlockData holds data for StmtBlock.
type BlockData struct {
	Block *Block
}

func (*BlockData) stmtData() {}
