package types

import "fmt"

// Name renders the source-level name of a type. It is also the
// ConcreteTypeName used when mangling specializations.
func (in *Interner) Name(id TypeID) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return "<unresolved>"
	}
	switch tt.Kind {
	case KindVoid, KindBool, KindChar, KindString:
		return tt.Kind.String()
	case KindInt:
		return fmt.Sprintf("int%d", tt.Width)
	case KindUint:
		return fmt.Sprintf("uint%d", tt.Width)
	case KindFloat:
		return fmt.Sprintf("float%d", tt.Width)
	case KindClass:
		info, _ := in.ClassInfo(id)
		return info.Name
	case KindInterface:
		info, _ := in.InterfaceInfo(id)
		return info.Name
	case KindParam:
		info, _ := in.ParamInfo(id)
		return info.Name
	}
	return tt.Kind.String()
}

// CName renders the C spelling of a scalar type; nominal types are
// resolved by the IR builder which knows the struct naming.
func (in *Interner) CName(id TypeID) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return "/* ? */"
	}
	switch tt.Kind {
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindString:
		return "char*"
	case KindInt:
		return fmt.Sprintf("int%d_t", tt.Width)
	case KindUint:
		return fmt.Sprintf("uint%d_t", tt.Width)
	case KindFloat:
		if tt.Width == Width32 {
			return "float"
		}
		return "double"
	}
	return in.Name(id)
}

// FamilyMask describes broad categories of types an operator accepts.
type FamilyMask uint32

const (
	FamilyNone FamilyMask = 0
	FamilyAny  FamilyMask = 1 << iota
	FamilyBool
	FamilySignedInt
	FamilyUnsignedInt
	FamilyFloat
	FamilyString
	FamilyChar
	FamilyNominal
	FamilyParam
)

const (
	FamilyIntegral = FamilySignedInt | FamilyUnsignedInt
	FamilyNumeric  = FamilyIntegral | FamilyFloat
)

// Family classifies id for operator checks.
func (in *Interner) Family(id TypeID) FamilyMask {
	switch in.Kind(id) {
	case KindBool:
		return FamilyBool
	case KindInt:
		return FamilySignedInt
	case KindUint:
		return FamilyUnsignedInt
	case KindFloat:
		return FamilyFloat
	case KindString:
		return FamilyString
	case KindChar:
		return FamilyChar
	case KindClass, KindInterface:
		return FamilyNominal
	case KindParam:
		return FamilyParam
	}
	return FamilyNone
}
