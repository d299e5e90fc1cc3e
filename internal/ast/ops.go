package ast

// BinaryOp enumerates binary operators.
type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNotEq
	OpLess
	OpGreater
	OpLessEq
	OpGreaterEq
	OpAnd
	OpOr
	OpBitAnd
	OpBitOr
	OpBitXor
)

var binaryOpText = [...]string{
	OpAdd:       "+",
	OpSub:       "-",
	OpMul:       "*",
	OpDiv:       "/",
	OpMod:       "%",
	OpEq:        "==",
	OpNotEq:     "!=",
	OpLess:      "<",
	OpGreater:   ">",
	OpLessEq:    "<=",
	OpGreaterEq: ">=",
	OpAnd:       "&&",
	OpOr:        "||",
	OpBitAnd:    "&",
	OpBitOr:     "|",
	OpBitXor:    "^",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpText) {
		return binaryOpText[op]
	}
	return "?"
}

// ParseBinaryOp maps operator text to BinaryOp.
func ParseBinaryOp(s string) (BinaryOp, bool) {
	for i, txt := range binaryOpText {
		if txt == s {
			return BinaryOp(i), true
		}
	}
	return 0, false
}

// UnaryOp enumerates unary operators.
type UnaryOp uint8

const (
	OpNeg UnaryOp = iota
	OpNot
	OpBitNot
)

var unaryOpText = [...]string{
	OpNeg:    "-",
	OpNot:    "!",
	OpBitNot: "~",
}

func (op UnaryOp) String() string {
	if int(op) < len(unaryOpText) {
		return unaryOpText[op]
	}
	return "?"
}

// ParseUnaryOp maps operator text to UnaryOp.
func ParseUnaryOp(s string) (UnaryOp, bool) {
	for i, txt := range unaryOpText {
		if txt == s {
			return UnaryOp(i), true
		}
	}
	return 0, false
}
