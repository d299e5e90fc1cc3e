package ast

import (
	"cstar/internal/source"
	"cstar/internal/types"
)

// Program is the parser output the core consumes.
type Program struct {
	Files   *source.FileSet
	Modules []*Module
}

// Module groups declarations under a name used as the C struct prefix.
// Modules sharing a name are one module split across nodes.
type Module struct {
	Name    string
	Span    source.Span
	Imports []*Import
	Decls   []Decl
}

// Import is a `use` clause. A public import re-exports the imported
// module to every importer of this one.
type Import struct {
	Name   string
	Span   source.Span
	Public bool
}

// DeclKind distinguishes top-level declarations.
type DeclKind uint8

const (
	DeclClass DeclKind = iota
	DeclInterface
	DeclFunction
)

func (k DeclKind) String() string {
	switch k {
	case DeclClass:
		return "class"
	case DeclInterface:
		return "interface"
	case DeclFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Decl is a top-level declaration: *ClassDecl, *InterfaceDecl or *FuncDecl.
type Decl interface {
	DeclKind() DeclKind
	DeclName() string
	DeclSpan() source.Span
}

// Ident is a name with its position.
type Ident struct {
	Name string
	Span source.Span
}

// ClassDecl declares a class with fields, members and satisfied interfaces.
type ClassDecl struct {
	Name       string
	Span       source.Span
	Fields     []*Field
	Members    []*Member
	Implements []Ident

	// Annotations.
	Module   string       // owning module name, set by the symbol table
	Type     types.TypeID // nominal type, set by the symbol table
	Implicit []*Member    // members synthesized by the resolver
}

func (*ClassDecl) DeclKind() DeclKind { return DeclClass }
func (c *ClassDecl) DeclName() string { return c.Name }
func (c *ClassDecl) DeclSpan() source.Span { return c.Span }

// AllMembers returns declared members followed by synthesized ones.
func (c *ClassDecl) AllMembers() []*Member {
	if len(c.Implicit) == 0 {
		return c.Members
	}
	out := make([]*Member, 0, len(c.Members)+len(c.Implicit))
	out = append(out, c.Members...)
	return append(out, c.Implicit...)
}

// Member finds a member by name among declared and synthesized members.
func (c *ClassDecl) Member(name string) *Member {
	for _, m := range c.AllMembers() {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// FieldIndex returns the position of the named field or -1.
func (c *ClassDecl) FieldIndex(name string) int {
	for i, f := range c.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Field is a class field; Default is the optional initializer.
type Field struct {
	Name    string
	Span    source.Span
	Type    TypeRef
	Default *Expr
}

// InterfaceDecl declares member signatures without bodies.
type InterfaceDecl struct {
	Name       string
	Span       source.Span
	Signatures []*Member

	Module string
	Type   types.TypeID
}

func (*InterfaceDecl) DeclKind() DeclKind { return DeclInterface }
func (i *InterfaceDecl) DeclName() string { return i.Name }
func (i *InterfaceDecl) DeclSpan() source.Span { return i.Span }

// Signature finds a signature by name.
func (i *InterfaceDecl) Signature(name string) (*Member, int) {
	for idx, s := range i.Signatures {
		if s.Name == name {
			return s, idx
		}
	}
	return nil, -1
}

// FuncDecl is a module-level function. Fn has no receiver; its Owner is
// the module name, so it is emitted as Module_Name.
type FuncDecl struct {
	Name string
	Span source.Span
	Fn   *Member

	Module string // set by the symbol table
}

func (*FuncDecl) DeclKind() DeclKind { return DeclFunction }
func (f *FuncDecl) DeclName() string { return f.Name }
func (f *FuncDecl) DeclSpan() source.Span { return f.Span }

// MemberKind distinguishes methods from constructors.
type MemberKind uint8

const (
	MemberMethod MemberKind = iota
	MemberConstructor
)

func (k MemberKind) String() string {
	if k == MemberConstructor {
		return "constructor"
	}
	return "method"
}

// Member is a method, constructor or interface signature.
type Member struct {
	Kind      MemberKind
	Name      string
	Span      source.Span
	TypeParam string // generic parameter name, methods only
	Params    []*Param
	Result    TypeRef
	Body      *Block // nil for signatures

	// Annotations.
	Owner     string       // owning class, interface or module name
	ParamType types.TypeID // TypeID of TypeParam
}

// IsGeneric reports whether the member is a template.
func (m *Member) IsGeneric() bool { return m.TypeParam != "" }

// QualifiedName is the declaration identity used in diagnostics.
func (m *Member) QualifiedName() string {
	if m.Owner == "" {
		return m.Name
	}
	return m.Owner + "." + m.Name
}

// Param is a member parameter.
type Param struct {
	Name string
	Span source.Span
	Type TypeRef
}

// TypeRef is a written type reference. ID is filled by the resolver.
type TypeRef struct {
	Name string
	Span source.Span
	ID   types.TypeID
}

// IsPlaceholder reports whether the parser left the type to be inferred.
func (t TypeRef) IsPlaceholder() bool {
	switch t.Name {
	case "", "var", "?":
		return true
	}
	return false
}

// Resolved reports whether the resolver filled the reference.
func (t TypeRef) Resolved() bool { return t.ID != types.NoTypeID }

// Block is an ordered statement list.
type Block struct {
	Stmts []*Stmt
	Span  source.Span
}
