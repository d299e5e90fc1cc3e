package sema

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"cstar/internal/ast"
	"cstar/internal/diag"
	"cstar/internal/symbols"
	"cstar/internal/types"
)

// ImplicitConstructorName names the constructor synthesized for classes
// whose fields all carry default initializers.
const ImplicitConstructorName = "Create"

// SynthesizeConstructors adds an implicit constructor to every class that
// declares none and whose fields all have defaults. It must run before the
// table is frozen.
func SynthesizeConstructors(table *symbols.Table) error {
	for _, class := range table.Classes() {
		if hasConstructor(class) || !allFieldsDefaulted(class) {
			continue
		}
		if class.Member(ImplicitConstructorName) != nil {
			continue
		}
		if err := table.AddImplicit(class, implicitConstructor(class)); err != nil {
			return err
		}
	}
	return nil
}

func hasConstructor(class *ast.ClassDecl) bool {
	for _, m := range class.AllMembers() {
		if m.Kind == ast.MemberConstructor {
			return true
		}
	}
	return false
}

func allFieldsDefaulted(class *ast.ClassDecl) bool {
	for _, f := range class.Fields {
		if f.Default == nil {
			return false
		}
	}
	return true
}

const implicitInstance = "instance"

func implicitConstructor(class *ast.ClassDecl) *ast.Member {
	sp := class.Span
	local := func() *ast.Expr {
		return &ast.Expr{Kind: ast.ExprIdent, Span: sp, Data: &ast.IdentData{Name: implicitInstance}}
	}
	stmts := []*ast.Stmt{{
		Kind: ast.StmtLet,
		Span: sp,
		Data: &ast.LetData{
			Name:  implicitInstance,
			Type:  ast.TypeRef{Span: sp},
			Value: &ast.Expr{Kind: ast.ExprNew, Span: sp, Data: &ast.NewData{Type: ast.TypeRef{Span: sp}}},
		},
	}}
	for _, f := range class.Fields {
		stmts = append(stmts, &ast.Stmt{
			Kind: ast.StmtAssign,
			Span: f.Span,
			Data: &ast.AssignData{
				Target: &ast.Expr{Kind: ast.ExprField, Span: f.Span, Data: &ast.FieldData{Object: local(), Name: f.Name, Index: -1}},
				Value:  ast.CloneExpr(f.Default),
			},
		})
	}
	stmts = append(stmts, &ast.Stmt{Kind: ast.StmtReturn, Span: sp, Data: &ast.ReturnData{Value: local()}})
	return &ast.Member{
		Kind:   ast.MemberConstructor,
		Name:   ImplicitConstructorName,
		Span:   sp,
		Result: ast.TypeRef{Span: sp},
		Body:   &ast.Block{Stmts: stmts, Span: sp},
	}
}

// ResolveSignatures resolves the declared TypeRefs of a declaration:
// fields, implements clauses, member parameters and results. It also runs
// the class-shape checks. It must run sequentially for all declarations
// before any body is resolved. The returned error is fatal.
func ResolveSignatures(decl ast.Decl, opts Options) error {
	switch d := decl.(type) {
	case *ast.ClassDecl:
		return resolveClassSignatures(d, opts)
	case *ast.InterfaceDecl:
		return resolveInterfaceSignatures(d, opts)
	case *ast.FuncDecl:
		return resolveFuncSignature(d, opts)
	}
	return errors.AssertionFailedf("unexpected declaration %T", decl)
}

func resolveClassSignatures(class *ast.ClassDecl, opts Options) error {
	table := opts.Symbols
	seenFields := make(map[string]*ast.Field, len(class.Fields))
	for _, f := range class.Fields {
		if prev, dup := seenFields[f.Name]; dup {
			diag.ReportError(opts.Reporter, diag.SemaDuplicateField, f.Span,
				fmt.Sprintf("field `%s` is declared twice in `%s`", f.Name, class.Name)).
				WithNote(prev.Span, "first declared here").
				Emit()
		} else {
			seenFields[f.Name] = f
		}
		if f.Type.IsPlaceholder() {
			return ast.InvalidAST(table.Files(), f.Span, "field %s.%s has no type", class.Name, f.Name)
		}
		if resolveTypeRef(table, class.Module, &f.Type, nil, opts.Reporter) {
			if table.Types.Kind(f.Type.ID) == types.KindVoid {
				diag.ReportError(opts.Reporter, diag.SemaTypeMismatch, f.Span,
					fmt.Sprintf("field `%s` of `%s` cannot have type void", f.Name, class.Name)).Emit()
			}
		}
		if decl := table.Decl(f.Name); decl != nil {
			diag.ReportWarning(opts.Reporter, diag.SemaFieldShadowsType, f.Span,
				fmt.Sprintf("field `%s` of `%s` shadows %s `%s`", f.Name, class.Name, decl.DeclKind(), f.Name)).Emit()
		}
	}

	for _, ref := range class.Implements {
		id, code, msg := lookupType(table, class.Module, ref.Name)
		switch code {
		case diag.UnknownCode:
		case diag.SemaUnknownType:
			diag.ReportError(opts.Reporter, diag.SemaUnknownType, ref.Span,
				fmt.Sprintf("unknown interface `%s` in implements list of `%s`", ref.Name, class.Name)).Emit()
			continue
		default:
			diag.ReportError(opts.Reporter, code, ref.Span, msg).Emit()
		}
		if table.Types.Kind(id) != types.KindInterface {
			diag.ReportError(opts.Reporter, diag.SemaNotAnInterface, ref.Span,
				fmt.Sprintf("`%s` is not an interface and cannot be implemented by `%s`", ref.Name, class.Name)).Emit()
		}
	}

	seenMembers := make(map[string]*ast.Member)
	for _, m := range class.AllMembers() {
		if prev, dup := seenMembers[m.Name]; dup {
			diag.ReportError(opts.Reporter, diag.SemaDuplicateDeclaration, m.Span,
				fmt.Sprintf("member `%s` is declared twice in `%s`", m.Name, class.Name)).
				WithNote(prev.Span, "first declared here").
				Emit()
		} else {
			seenMembers[m.Name] = m
			if !m.IsGeneric() {
				claimSymbol(opts, class, m, ast.MemberSymbol(class.Name, m.Name))
			}
		}
		mc := newMemberChecker(opts, class, m, &DeclResult{Decl: class})
		if err := mc.resolveSignature(); err != nil {
			return err
		}
	}
	return nil
}

func resolveInterfaceSignatures(iface *ast.InterfaceDecl, opts Options) error {
	seen := make(map[string]*ast.Member)
	for _, sig := range iface.Signatures {
		if prev, dup := seen[sig.Name]; dup {
			diag.ReportError(opts.Reporter, diag.SemaDuplicateDeclaration, sig.Span,
				fmt.Sprintf("signature `%s` is declared twice in `%s`", sig.Name, iface.Name)).
				WithNote(prev.Span, "first declared here").
				Emit()
		} else {
			seen[sig.Name] = sig
		}
		mc := newMemberChecker(opts, nil, sig, &DeclResult{Decl: iface})
		mc.iface = iface
		if err := mc.resolveSignature(); err != nil {
			return err
		}
	}
	return nil
}

func resolveFuncSignature(fn *ast.FuncDecl, opts Options) error {
	if !fn.Fn.IsGeneric() {
		claimSymbol(opts, fn, fn.Fn, ast.MemberSymbol(fn.Module, fn.Name))
	}
	mc := newMemberChecker(opts, nil, fn.Fn, &DeclResult{Decl: fn})
	mc.fn = fn
	return mc.resolveSignature()
}

// ClaimedAs names m of owner in collision messages.
func ClaimedAs(owner ast.Decl, m *ast.Member) string {
	kind := "member"
	switch {
	case owner.DeclKind() == ast.DeclFunction:
		kind = "function"
	case owner.DeclKind() == ast.DeclInterface:
		kind = "dispatch of"
	case m.Kind == ast.MemberConstructor:
		kind = "constructor"
	}
	return fmt.Sprintf("%s `%s`", kind, m.QualifiedName())
}

// claimSymbol records that m of owner is emitted as name. A name already
// emitted by another declaration or member is SemaDuplicateDeclaration
// on the later one: both would define the same C function.
func claimSymbol(opts Options, owner ast.Decl, m *ast.Member, name string) bool {
	what := ClaimedAs(owner, m)
	prev, ok := opts.Symbols.ClaimSymbol(name, symbols.Claim{Decl: owner, Member: m, Span: m.Span, What: what})
	if ok {
		return true
	}
	diag.ReportError(opts.Reporter, diag.SemaDuplicateDeclaration, m.Span,
		fmt.Sprintf("%s is emitted as `%s`, which %s already uses", what, name, prev.What)).
		WithNote(prev.Span, "first emitted here").
		Emit()
	return false
}

// resolveSignature resolves parameter and result TypeRefs of the member.
func (mc *memberChecker) resolveSignature() error {
	m := mc.member
	table := mc.table
	seen := make(map[string]bool, len(m.Params))
	for _, p := range m.Params {
		if seen[p.Name] {
			mc.report(diag.SemaDuplicateDeclaration, p.Span, "parameter `%s` is declared twice in `%s`", p.Name, m.QualifiedName())
		}
		seen[p.Name] = true
		if p.Type.IsPlaceholder() {
			return ast.InvalidAST(table.Files(), p.Span, "parameter %s of %s has no type", p.Name, m.QualifiedName())
		}
		mc.resolveType(&p.Type)
	}
	if m.Result.IsPlaceholder() {
		if m.Kind != ast.MemberConstructor || mc.class == nil {
			return ast.InvalidAST(table.Files(), m.Span, "%s has no result type", m.QualifiedName())
		}
		// the allocation target of a constructor is its owning class
		m.Result.ID = mc.class.Type
		return nil
	}
	if !mc.resolveType(&m.Result) {
		return nil
	}
	if m.Kind == ast.MemberConstructor && mc.class != nil && m.Result.ID != mc.class.Type {
		mc.report(diag.SemaTypeMismatch, m.Span, "constructor `%s` must return `%s`, declared `%s`",
			m.QualifiedName(), mc.class.Name, table.Types.Name(m.Result.ID))
	}
	return nil
}

// resolveTypeRef resolves ref by name as seen from module; aliases bind
// generic parameter names.
func resolveTypeRef(table *symbols.Table, module string, ref *ast.TypeRef, aliases map[string]types.TypeID, reporter diag.Reporter) bool {
	if id, ok := aliases[ref.Name]; ok {
		ref.ID = id
		return true
	}
	id, code, msg := lookupType(table, module, ref.Name)
	ref.ID = id
	if code != diag.UnknownCode {
		diag.ReportError(reporter, code, ref.Span, msg).Emit()
	}
	return id != types.NoTypeID
}

// lookupType resolves name from module. code is UnknownCode on success.
// A type that exists but is not imported still yields its id so checking
// goes on with the declaration it names.
func lookupType(table *symbols.Table, module, name string) (types.TypeID, diag.Code, string) {
	id, err := table.LookupFrom(module, name)
	switch {
	case err == nil:
		return id, diag.UnknownCode, ""
	case errors.Is(err, symbols.ErrNotImported):
		return id, diag.SemaNotImported, fmt.Sprintf("type `%s` is declared in module `%s`, which `%s` does not import",
			name, declModule(table.Decl(name)), module)
	}
	return types.NoTypeID, diag.SemaUnknownType, fmt.Sprintf("unknown type `%s`", name)
}

func declModule(d ast.Decl) string {
	switch d := d.(type) {
	case *ast.ClassDecl:
		return d.Module
	case *ast.InterfaceDecl:
		return d.Module
	case *ast.FuncDecl:
		return d.Module
	}
	return ""
}

// CheckRecursiveFields reports classes that contain themselves by value
// through their fields. reporterFor returns the reporter of a class.
func CheckRecursiveFields(table *symbols.Table, reporterFor func(*ast.ClassDecl) diag.Reporter) {
	for _, class := range table.Classes() {
		path, field := findFieldCycle(table, class)
		if path == nil {
			continue
		}
		names := make([]string, 0, len(path)+1)
		for _, c := range path {
			names = append(names, c.Name)
		}
		names = append(names, class.Name)
		diag.ReportError(reporterFor(class), diag.SemaRecursiveField, field.Span,
			fmt.Sprintf("field `%s` makes `%s` contain itself (%s)", field.Name, class.Name, strings.Join(names, " -> "))).Emit()
	}
}

// findFieldCycle returns the class path from root back to root and the
// first field of root on that path.
func findFieldCycle(table *symbols.Table, root *ast.ClassDecl) ([]*ast.ClassDecl, *ast.Field) {
	visited := make(map[*ast.ClassDecl]bool)
	var path []*ast.ClassDecl
	var dfs func(c *ast.ClassDecl) bool
	dfs = func(c *ast.ClassDecl) bool {
		path = append(path, c)
		for _, f := range c.Fields {
			next := table.Class(f.Type.ID)
			if next == nil {
				continue
			}
			if next == root {
				return true
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			if dfs(next) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}
	for _, f := range root.Fields {
		next := table.Class(f.Type.ID)
		if next == nil {
			continue
		}
		path = path[:0]
		path = append(path, root)
		if next == root {
			return path, f
		}
		if !visited[next] {
			visited[next] = true
			if dfs(next) {
				return path, f
			}
		}
	}
	return nil, nil
}
