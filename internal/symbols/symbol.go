package symbols

import (
	"cstar/internal/ast"
	"cstar/internal/source"
	"cstar/internal/types"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolClass
	SymbolInterface
	SymbolMember
	SymbolSignature
	SymbolFunction
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolClass:
		return "class"
	case SymbolInterface:
		return "interface"
	case SymbolMember:
		return "member"
	case SymbolSignature:
		return "signature"
	case SymbolFunction:
		return "function"
	default:
		return "invalid"
	}
}

// SymbolFlags encode misc attributes for quick checks.
type SymbolFlags uint8

const (
	SymbolFlagGeneric SymbolFlags = 1 << iota
	SymbolFlagConstructor
	SymbolFlagImplicit
)

// Symbol is a named declaration. Top-level symbols carry Decl, member
// symbols carry Member and the owning top-level symbol.
type Symbol struct {
	Kind   SymbolKind
	Name   source.StringID
	Span   source.Span
	Flags  SymbolFlags
	Type   types.TypeID
	Owner  SymbolID
	Module string
	Decl   ast.Decl
	Member *ast.Member
}
