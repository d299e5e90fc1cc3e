// Package ir is the boundary between the core and the C emitter: flat
// structs, free functions and dispatch unions with every name and type
// already resolved.
package ir

import (
	"cstar/internal/ast"
	"cstar/internal/types"
)

type Program struct {
	Structs []*Struct
	Unions  []*Union
	Funcs   []*Func
}

// Struct is the flat C struct of a class. Size and Align stay zero until
// the layout pass fills them.
type Struct struct {
	Name   string
	Class  *ast.ClassDecl
	Fields []Field

	Size  int
	Align int
}

type Field struct {
	Name   string
	Type   types.TypeID
	CType  string
	Offset int
}

type Param struct {
	Name  string
	Type  types.TypeID
	CType string
}

type FuncKind uint8

const (
	FuncMethod FuncKind = iota
	FuncConstructor
	FuncSpecialization
	FuncThunk
	// FuncModule is a module function or one of its specializations.
	FuncModule
)

func (k FuncKind) String() string {
	switch k {
	case FuncConstructor:
		return "ctor"
	case FuncSpecialization:
		return "spec"
	case FuncThunk:
		return "thunk"
	case FuncModule:
		return "func"
	default:
		return "method"
	}
}

// Func is a free function. Methods take their receiver as the first
// parameter named self; module functions and constructors have none. Thunks have no body; their Cases switch on the
// union tag of the receiver.
type Func struct {
	Kind    FuncKind
	Name    string
	Params  []Param
	Result  types.TypeID
	CResult string
	Member  *ast.Member
	Origin  string
	Cases   []Case
}

// Union carries any implementer of one interface.
type Union struct {
	Name      string
	Interface *ast.InterfaceDecl
	Tags      []Tag

	Size  int
	Align int
}

type Tag struct {
	Name   string
	Value  int
	Struct string
}

// Case maps a union tag to the function handling it.
type Case struct {
	Tag    string
	Target string
}
