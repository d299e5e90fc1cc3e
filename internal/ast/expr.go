package ast

import (
	"cstar/internal/source"
	"cstar/internal/types"
)

// ExprKind enumerates expression kinds.
type ExprKind uint8

const (
	ExprLiteral ExprKind = iota
	// ExprIdent names a local, a parameter or a field of the implicit receiver.
	ExprIdent
	// ExprThis is the method receiver.
	ExprThis
	ExprField
	ExprUnary
	ExprBinary
	// ExprCall is a member call: recv.M(args), M(args) or Class.M(args).
	ExprCall
	// ExprNew allocates an instance; the type may be left for inference.
	ExprNew
	// ExprTypeName is a class name used as a static call receiver.
	ExprTypeName
	ExprCast
)

// String returns a human-readable name for the expression kind.
func (k ExprKind) String() string {
	switch k {
	case ExprLiteral:
		return "Literal"
	case ExprIdent:
		return "Ident"
	case ExprThis:
		return "This"
	case ExprField:
		return "Field"
	case ExprUnary:
		return "Unary"
	case ExprBinary:
		return "Binary"
	case ExprCall:
		return "Call"
	case ExprNew:
		return "New"
	case ExprTypeName:
		return "TypeName"
	case ExprCast:
		return "Cast"
	default:
		return "Unknown"
	}
}

// Expr represents an expression. Type is filled by the resolver.
type Expr struct {
	Kind ExprKind
	Span source.Span
	Type types.TypeID
	Data ExprData
}

// ExprData is the interface for expression-specific data.
type ExprData interface {
	exprData()
}

// LiteralKind distinguishes literal forms.
type LiteralKind uint8

const (
	LitInt LiteralKind = iota
	LitFloat
	LitBool
	LitString
	LitChar
)

func (k LiteralKind) String() string {
	switch k {
	case LitInt:
		return "int"
	case LitFloat:
		return "float"
	case LitBool:
		return "bool"
	case LitString:
		return "string"
	case LitChar:
		return "char"
	default:
		return "unknown"
	}
}

// LiteralData holds data for ExprLiteral. Text is the literal as written.
type LiteralData struct {
	Kind LiteralKind
	Text string
}

func (*LiteralData) exprData() {}

// RefKind tells what an identifier resolved to.
type RefKind uint8

const (
	RefUnresolved RefKind = iota
	RefLocal
	RefParam
	RefField
)

// IdentData holds data for ExprIdent.
type IdentData struct {
	Name string

	Ref   RefKind // annotation
	Index int     // param or field index for RefParam/RefField
}

func (*IdentData) exprData() {}

// ThisData holds data for ExprThis.
type ThisData struct{}

func (*ThisData) exprData() {}

// FieldData holds data for ExprField.
type FieldData struct {
	Object *Expr
	Name   string
	Index  int // annotation: field index in the owning class
}

func (*FieldData) exprData() {}

// UnaryData holds data for ExprUnary.
type UnaryData struct {
	Op      UnaryOp
	Operand *Expr
}

func (*UnaryData) exprData() {}

// BinaryData holds data for ExprBinary.
type BinaryData struct {
	Op    BinaryOp
	Left  *Expr
	Right *Expr
}

func (*BinaryData) exprData() {}

// CallData holds data for ExprCall.
type CallData struct {
	Receiver *Expr // nil for implicit this
	Method   string
	Args     []*Expr

	Target CallTarget // annotation
}

func (*CallData) exprData() {}

// NewData holds data for ExprNew.
type NewData struct {
	Type TypeRef // placeholder inside constructors
}

func (*NewData) exprData() {}

// TypeNameData holds data for ExprTypeName.
type TypeNameData struct {
	Name string
}

func (*TypeNameData) exprData() {}

// CastData holds data for ExprCast.
type CastData struct {
	Type  TypeRef
	Value *Expr
}

func (*CastData) exprData() {}

// CallKind records how a call is dispatched. Passes refine it:
// the resolver sets Direct/Generic/Interface, the instantiator fills
// Symbol for Generic, interface lowering turns Interface into Direct or
// Tagged.
type CallKind uint8

const (
	CallUnresolved CallKind = iota
	CallDirect
	CallGeneric
	CallInterface
	CallTagged
)

func (k CallKind) String() string {
	switch k {
	case CallDirect:
		return "direct"
	case CallGeneric:
		return "generic"
	case CallInterface:
		return "interface"
	case CallTagged:
		return "tagged"
	default:
		return "unresolved"
	}
}

// CallTarget is the resolved target of a call.
type CallTarget struct {
	Kind      CallKind
	Class     types.TypeID // receiver class for Direct/Generic
	Member    *Member      // callee member (template for Generic)
	Binding   types.TypeID // concrete type bound to the generic parameter
	Interface types.TypeID // for Interface/Tagged
	Signature int          // signature index in the interface
	Static    bool         // receiver is a type name (constructor call)
	Symbol    string       // emitted function name once known
}
