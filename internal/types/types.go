package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type (an unresolved TypeRef).
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindBool
	KindChar
	KindString
	KindInt
	KindUint
	KindFloat
	KindClass
	KindInterface
	KindParam
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindParam:
		return "param"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of integers/floats.
type Width uint8

const (
	WidthAny Width = 0
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
)

// Type is a compact descriptor for any supported type.
// Payload indexes nominal metadata for classes, interfaces and params.
type Type struct {
	Kind    Kind
	Width   Width
	Payload uint32
}

// MakeInt describes a signed integer of the given width.
func MakeInt(width Width) Type {
	return Type{Kind: KindInt, Width: width}
}

// MakeUint describes an unsigned integer type.
func MakeUint(width Width) Type {
	return Type{Kind: KindUint, Width: width}
}

// MakeFloat describes a floating-point type.
func MakeFloat(width Width) Type {
	return Type{Kind: KindFloat, Width: width}
}

// IsScalar reports whether the kind is a builtin value type.
func (t Type) IsScalar() bool {
	switch t.Kind {
	case KindBool, KindChar, KindString, KindInt, KindUint, KindFloat:
		return true
	}
	return false
}

// IsNominal reports whether the kind refers to a user declaration.
func (t Type) IsNominal() bool {
	return t.Kind == KindClass || t.Kind == KindInterface
}
