// Package testkit builds AST fixtures for package tests and checks the
// invariants every successful core run must leave behind.
package testkit

import (
	"strings"

	"cstar/internal/ast"
	"cstar/internal/source"
)

// Builder creates AST nodes with increasing line numbers so that every
// declaration and statement gets a distinct position.
type Builder struct {
	Files *source.FileSet
	file  source.FileID
	line  uint32
}

func NewBuilder(path string) *Builder {
	fs := source.NewFileSet()
	return &Builder{Files: fs, file: fs.Add(path)}
}

func (b *Builder) next() source.Span {
	b.line++
	return b.cur()
}

func (b *Builder) cur() source.Span {
	pos := source.LineCol{Line: b.line, Col: 1}
	if b.line == 0 {
		pos.Line = 1
	}
	return source.Span{File: b.file, Start: pos, End: pos}
}

// Program wraps modules into a program sharing the builder's file set.
func (b *Builder) Program(mods ...*ast.Module) *ast.Program {
	return &ast.Program{Files: b.Files, Modules: mods}
}

func (b *Builder) Module(name string, decls ...ast.Decl) *ast.Module {
	return &ast.Module{Name: name, Span: b.next(), Decls: decls}
}

// Use adds `use` clauses to mod; names prefixed with "pub " re-export.
func (b *Builder) Use(mod *ast.Module, names ...string) *ast.Module {
	for _, name := range names {
		imp := &ast.Import{Name: name, Span: b.next()}
		if rest, ok := strings.CutPrefix(name, "pub "); ok {
			imp.Name = rest
			imp.Public = true
		}
		mod.Imports = append(mod.Imports, imp)
	}
	return mod
}

// Class declares a class. implements may be nil.
func (b *Builder) Class(name string, implements []string, fields []*ast.Field, members ...*ast.Member) *ast.ClassDecl {
	sp := b.next()
	c := &ast.ClassDecl{Name: name, Span: sp, Fields: fields, Members: members}
	for _, iface := range implements {
		c.Implements = append(c.Implements, ast.Ident{Name: iface, Span: sp})
	}
	return c
}

func (b *Builder) Interface(name string, sigs ...*ast.Member) *ast.InterfaceDecl {
	return &ast.InterfaceDecl{Name: name, Span: b.next(), Signatures: sigs}
}

func Fields(fs ...*ast.Field) []*ast.Field { return fs }

func Params(ps ...*ast.Param) []*ast.Param { return ps }

func Stmts(ss ...*ast.Stmt) []*ast.Stmt { return ss }

func (b *Builder) Field(name, typ string) *ast.Field {
	sp := b.next()
	return &ast.Field{Name: name, Span: sp, Type: ast.TypeRef{Name: typ, Span: sp}}
}

func (b *Builder) FieldDefault(name, typ string, def *ast.Expr) *ast.Field {
	f := b.Field(name, typ)
	f.Default = def
	return f
}

func (b *Builder) Param(name, typ string) *ast.Param {
	sp := b.cur()
	return &ast.Param{Name: name, Span: sp, Type: ast.TypeRef{Name: typ, Span: sp}}
}

// Ctor declares a constructor whose result is left for inference.
func (b *Builder) Ctor(name string, params []*ast.Param, stmts ...*ast.Stmt) *ast.Member {
	sp := b.next()
	return &ast.Member{
		Kind:   ast.MemberConstructor,
		Name:   name,
		Span:   sp,
		Params: params,
		Result: ast.TypeRef{Span: sp},
		Body:   &ast.Block{Stmts: stmts, Span: sp},
	}
}

func (b *Builder) Method(name, result string, params []*ast.Param, stmts ...*ast.Stmt) *ast.Member {
	sp := b.next()
	return &ast.Member{
		Kind:   ast.MemberMethod,
		Name:   name,
		Span:   sp,
		Params: params,
		Result: ast.TypeRef{Name: result, Span: sp},
		Body:   &ast.Block{Stmts: stmts, Span: sp},
	}
}

// Generic declares a method with a single type parameter.
func (b *Builder) Generic(name, typeParam, result string, params []*ast.Param, stmts ...*ast.Stmt) *ast.Member {
	m := b.Method(name, result, params, stmts...)
	m.TypeParam = typeParam
	return m
}

// Func declares a module-level function.
func (b *Builder) Func(name, result string, params []*ast.Param, stmts ...*ast.Stmt) *ast.FuncDecl {
	m := b.Method(name, result, params, stmts...)
	return &ast.FuncDecl{Name: name, Span: m.Span, Fn: m}
}

// GenericFunc declares a module-level function with one type parameter.
func (b *Builder) GenericFunc(name, typeParam, result string, params []*ast.Param, stmts ...*ast.Stmt) *ast.FuncDecl {
	fn := b.Func(name, result, params, stmts...)
	fn.Fn.TypeParam = typeParam
	return fn
}

// Sig declares an interface signature.
func (b *Builder) Sig(name, result string, params ...*ast.Param) *ast.Member {
	sp := b.next()
	return &ast.Member{Kind: ast.MemberMethod, Name: name, Span: sp, Params: params, Result: ast.TypeRef{Name: result, Span: sp}}
}

func (b *Builder) GenericSig(name, typeParam, result string, params ...*ast.Param) *ast.Member {
	m := b.Sig(name, result, params...)
	m.TypeParam = typeParam
	return m
}

// statements

func (b *Builder) Let(name, typ string, value *ast.Expr) *ast.Stmt {
	sp := b.next()
	return &ast.Stmt{Kind: ast.StmtLet, Span: sp, Data: &ast.LetData{Name: name, Type: ast.TypeRef{Name: typ, Span: sp}, Value: value}}
}

func (b *Builder) Assign(target, value *ast.Expr) *ast.Stmt {
	return &ast.Stmt{Kind: ast.StmtAssign, Span: b.next(), Data: &ast.AssignData{Target: target, Value: value}}
}

func (b *Builder) Do(e *ast.Expr) *ast.Stmt {
	return &ast.Stmt{Kind: ast.StmtExpr, Span: b.next(), Data: &ast.ExprStmtData{Expr: e}}
}

func (b *Builder) Return(e *ast.Expr) *ast.Stmt {
	return &ast.Stmt{Kind: ast.StmtReturn, Span: b.next(), Data: &ast.ReturnData{Value: e}}
}

// If builds if/else; a nil els means no else branch.
func (b *Builder) If(cond *ast.Expr, then, els []*ast.Stmt) *ast.Stmt {
	sp := b.next()
	data := &ast.IfData{Cond: cond, Then: &ast.Block{Stmts: then, Span: sp}}
	if els != nil {
		data.Else = &ast.Block{Stmts: els, Span: sp}
	}
	return &ast.Stmt{Kind: ast.StmtIf, Span: sp, Data: data}
}

func (b *Builder) While(cond *ast.Expr, body ...*ast.Stmt) *ast.Stmt {
	sp := b.next()
	return &ast.Stmt{Kind: ast.StmtWhile, Span: sp, Data: &ast.WhileData{Cond: cond, Body: &ast.Block{Stmts: body, Span: sp}}}
}

// expressions

func (b *Builder) lit(kind ast.LiteralKind, text string) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprLiteral, Span: b.cur(), Data: &ast.LiteralData{Kind: kind, Text: text}}
}

func (b *Builder) Int(text string) *ast.Expr { return b.lit(ast.LitInt, text) }
func (b *Builder) Float(text string) *ast.Expr { return b.lit(ast.LitFloat, text) }
func (b *Builder) Str(text string) *ast.Expr { return b.lit(ast.LitString, text) }

func (b *Builder) Bool(v bool) *ast.Expr {
	if v {
		return b.lit(ast.LitBool, "true")
	}
	return b.lit(ast.LitBool, "false")
}

func (b *Builder) Ident(name string) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprIdent, Span: b.cur(), Data: &ast.IdentData{Name: name}}
}

func (b *Builder) This() *ast.Expr {
	return &ast.Expr{Kind: ast.ExprThis, Span: b.cur(), Data: &ast.ThisData{}}
}

// Sel builds obj.name.
func (b *Builder) Sel(obj *ast.Expr, name string) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprField, Span: b.cur(), Data: &ast.FieldData{Object: obj, Name: name, Index: -1}}
}

// Bin builds a binary expression; op is the operator text ("+", "<=").
func (b *Builder) Bin(op string, l, r *ast.Expr) *ast.Expr {
	bop, ok := ast.ParseBinaryOp(op)
	if !ok {
		panic("testkit: unknown binary operator " + op)
	}
	return &ast.Expr{Kind: ast.ExprBinary, Span: b.cur(), Data: &ast.BinaryData{Op: bop, Left: l, Right: r}}
}

func (b *Builder) Un(op string, e *ast.Expr) *ast.Expr {
	uop, ok := ast.ParseUnaryOp(op)
	if !ok {
		panic("testkit: unknown unary operator " + op)
	}
	return &ast.Expr{Kind: ast.ExprUnary, Span: b.cur(), Data: &ast.UnaryData{Op: uop, Operand: e}}
}

// Call builds recv.method(args); a nil recv means the implicit receiver.
func (b *Builder) Call(recv *ast.Expr, method string, args ...*ast.Expr) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprCall, Span: b.cur(), Data: &ast.CallData{Receiver: recv, Method: method, Args: args}}
}

func (b *Builder) TypeName(name string) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprTypeName, Span: b.cur(), Data: &ast.TypeNameData{Name: name}}
}

// New builds an allocation; an empty typ leaves the target for inference.
func (b *Builder) New(typ string) *ast.Expr {
	sp := b.cur()
	return &ast.Expr{Kind: ast.ExprNew, Span: sp, Data: &ast.NewData{Type: ast.TypeRef{Name: typ, Span: sp}}}
}

func (b *Builder) Cast(typ string, e *ast.Expr) *ast.Expr {
	sp := b.cur()
	return &ast.Expr{Kind: ast.ExprCast, Span: sp, Data: &ast.CastData{Type: ast.TypeRef{Name: typ, Span: sp}, Value: e}}
}
