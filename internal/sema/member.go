package sema

import (
	"fmt"

	"cstar/internal/ast"
	"cstar/internal/diag"
	"cstar/internal/source"
	"cstar/internal/symbols"
	"cstar/internal/types"
)

type local struct {
	name  string
	typ   types.TypeID
	span  source.Span
	param bool
	index int
	// concrete is the class a never-reassigned local was initialized with.
	concrete types.TypeID
	// alloc marks a constructor local holding the allocated instance.
	alloc bool
}

// memberChecker resolves one member body.
type memberChecker struct {
	opts     Options
	table    *symbols.Table
	in       *types.Interner
	builtins types.Builtins

	class  *ast.ClassDecl
	iface  *ast.InterfaceDecl
	fn     *ast.FuncDecl
	member *ast.Member
	res    *DeclResult

	aliases        map[string]types.TypeID
	specialization string // symbol name when re-checking a specialization

	scopes     []map[string]*local
	reassigned map[string]bool
	allocs     int
	allocLocal *local
	missing    map[int]bool
	fatal      error
}

func newMemberChecker(opts Options, class *ast.ClassDecl, m *ast.Member, res *DeclResult) *memberChecker {
	mc := &memberChecker{
		opts:     opts,
		table:    opts.Symbols,
		in:       opts.Symbols.Types,
		builtins: opts.Symbols.Types.Builtins(),
		class:    class,
		member:   m,
		res:      res,
	}
	if m.IsGeneric() {
		mc.aliases = map[string]types.TypeID{m.TypeParam: m.ParamType}
	}
	return mc
}

func (mc *memberChecker) report(code diag.Code, sp source.Span, format string, args ...any) {
	mc.reportSev(diag.SevError, code, sp, format, args...)
}

func (mc *memberChecker) reportSev(sev diag.Severity, code diag.Code, sp source.Span, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if mc.specialization != "" {
		msg = fmt.Sprintf("%s: %s", mc.specialization, msg)
		code = diag.MonoUnsubstitutableBody
	}
	diag.NewReportBuilder(mc.opts.Reporter, sev, code, sp, msg).Emit()
}

func (mc *memberChecker) failAST(sp source.Span, format string, args ...any) {
	if mc.fatal == nil {
		mc.fatal = ast.InvalidAST(mc.table.Files(), sp, format, args...)
	}
}

func (mc *memberChecker) isCtor() bool {
	return mc.member.Kind == ast.MemberConstructor
}

// hasReceiver reports whether `this` and implicit field access are available.
func (mc *memberChecker) hasReceiver() bool {
	return mc.class != nil && !mc.isCtor()
}

// module is the module the checked member is declared in.
func (mc *memberChecker) module() string {
	switch {
	case mc.class != nil:
		return mc.class.Module
	case mc.iface != nil:
		return mc.iface.Module
	case mc.fn != nil:
		return mc.fn.Module
	}
	return ""
}

func (mc *memberChecker) resolveType(ref *ast.TypeRef) bool {
	if id, ok := mc.aliases[ref.Name]; ok {
		ref.ID = id
		return true
	}
	id, code, msg := lookupType(mc.table, mc.module(), ref.Name)
	ref.ID = id
	if code != diag.UnknownCode {
		mc.report(code, ref.Span, "%s", msg)
	}
	return id != types.NoTypeID
}

func (mc *memberChecker) typeName(id types.TypeID) string {
	return mc.in.Name(id)
}

// scopes

func (mc *memberChecker) push() {
	mc.scopes = append(mc.scopes, make(map[string]*local))
}

func (mc *memberChecker) pop() {
	mc.scopes = mc.scopes[:len(mc.scopes)-1]
}

func (mc *memberChecker) declare(l *local) {
	top := mc.scopes[len(mc.scopes)-1]
	if _, ok := top[l.name]; ok {
		mc.report(diag.SemaDuplicateDeclaration, l.span, "`%s` is already declared in this scope", l.name)
	}
	top[l.name] = l
}

// allocated returns the local e names when it holds the constructor's
// allocation.
func (mc *memberChecker) allocated(e *ast.Expr) *local {
	if e == nil || e.Kind != ast.ExprIdent {
		return nil
	}
	if l := mc.lookupLocal(e.Data.(*ast.IdentData).Name); l != nil && l.alloc {
		return l
	}
	return nil
}

func (mc *memberChecker) lookupLocal(name string) *local {
	for i := len(mc.scopes) - 1; i >= 0; i-- {
		if l, ok := mc.scopes[i][name]; ok {
			return l
		}
	}
	return nil
}

// flow state for constructor completeness and reachability

type flowState struct {
	assigned   []bool
	terminated bool
}

func (st flowState) clone() flowState {
	out := flowState{terminated: st.terminated}
	if st.assigned != nil {
		out.assigned = append([]bool(nil), st.assigned...)
	}
	return out
}

func join(a, b flowState) flowState {
	switch {
	case a.terminated && b.terminated:
		return a
	case a.terminated:
		return b
	case b.terminated:
		return a
	}
	out := a.clone()
	for i := range out.assigned {
		out.assigned[i] = a.assigned[i] && b.assigned[i]
	}
	return out
}

func (mc *memberChecker) run() error {
	m := mc.member
	if m.Body == nil {
		return nil
	}
	mc.reassigned = collectReassigned(m.Body)
	mc.push()
	for i, p := range m.Params {
		mc.declare(&local{name: p.Name, typ: p.Type.ID, span: p.Span, param: true, index: i})
	}
	st := flowState{}
	if mc.isCtor() && mc.class != nil {
		st.assigned = make([]bool, len(mc.class.Fields))
	}
	st = mc.block(m.Body, st)
	mc.pop()

	if !st.terminated {
		switch {
		case mc.isCtor():
			mc.report(diag.SemaMissingReturn, m.Span, "constructor `%s` can reach its end without returning an instance", m.QualifiedName())
		case m.Result.ID != types.NoTypeID && mc.in.Kind(m.Result.ID) != types.KindVoid:
			mc.report(diag.SemaMissingReturn, m.Span, "`%s` can reach its end without returning %s", m.QualifiedName(), mc.typeName(m.Result.ID))
		}
	}
	return mc.fatal
}

func collectReassigned(b *ast.Block) map[string]bool {
	out := make(map[string]bool)
	ast.WalkStmts(b, func(s *ast.Stmt) {
		if data, ok := s.Data.(*ast.AssignData); ok && data.Target.Kind == ast.ExprIdent {
			out[data.Target.Data.(*ast.IdentData).Name] = true
		}
	})
	return out
}

func (mc *memberChecker) block(b *ast.Block, st flowState) flowState {
	if b == nil {
		return st
	}
	mc.push()
	defer mc.pop()
	for _, s := range b.Stmts {
		st = mc.stmt(s, st)
	}
	return st
}

func (mc *memberChecker) stmt(s *ast.Stmt, st flowState) flowState {
	switch data := s.Data.(type) {
	case *ast.LetData:
		mc.let(s, data)
	case *ast.AssignData:
		st = mc.assign(data, st)
	case *ast.ExprStmtData:
		mc.expr(data.Expr, types.NoTypeID)
	case *ast.ReturnData:
		st = mc.ret(s, data, st)
	case *ast.IfData:
		mc.cond(data.Cond)
		thenSt := mc.block(data.Then, st.clone())
		elseSt := st.clone()
		if data.Else != nil {
			elseSt = mc.block(data.Else, elseSt)
		}
		st = join(thenSt, elseSt)
	case *ast.WhileData:
		mc.cond(data.Cond)
		// the body may run zero times
		mc.block(data.Body, st.clone())
	case *ast.BlockData:
		st = mc.block(data.Block, st)
	}
	return st
}

func (mc *memberChecker) cond(e *ast.Expr) {
	t := mc.expr(e, mc.builtins.Bool)
	switch mc.in.Kind(t) {
	case types.KindInvalid, types.KindBool, types.KindParam:
		return
	}
	mc.report(diag.SemaTypeMismatch, e.Span, "condition must be bool, got %s", mc.typeName(t))
}

func (mc *memberChecker) let(s *ast.Stmt, data *ast.LetData) {
	l := &local{name: data.Name, span: s.Span}
	declared := types.NoTypeID
	explicit := !data.Type.IsPlaceholder()
	if explicit && mc.resolveType(&data.Type) {
		declared = data.Type.ID
	}
	valueType := types.NoTypeID
	if data.Value != nil {
		valueType = mc.expr(data.Value, declared)
	}
	switch {
	case explicit:
		l.typ = declared
		if data.Value != nil && !mc.assignable(declared, valueType) {
			mc.report(diag.SemaTypeMismatch, s.Span, "local `%s` expects %s, got %s", data.Name, mc.typeName(declared), mc.typeName(valueType))
		}
	case mc.in.Kind(valueType) == types.KindVoid:
		mc.report(diag.SemaTypeMismatch, s.Span, "cannot infer local `%s` from a void value", data.Name)
	default:
		l.typ = valueType
		data.Type.ID = valueType
	}
	if mc.in.Kind(valueType) == types.KindClass && !mc.reassigned[data.Name] {
		l.concrete = valueType
	}
	if data.Value != nil && data.Value.Kind == ast.ExprNew && mc.isCtor() && mc.allocLocal == nil {
		mc.allocLocal = l
		l.alloc = true
	}
	if mc.allocated(data.Value) != nil {
		l.alloc = true
	}
	mc.declare(l)
}

func (mc *memberChecker) assign(data *ast.AssignData, st flowState) flowState {
	target := data.Target
	expected := types.NoTypeID
	describe := ""
	trackField := -1

	switch target.Kind {
	case ast.ExprIdent:
		id := target.Data.(*ast.IdentData)
		expected = mc.ident(target, id)
		target.Type = expected
		if id.Ref == ast.RefField {
			describe = fmt.Sprintf("field `%s` of `%s`", id.Name, mc.class.Name)
		} else {
			describe = fmt.Sprintf("local `%s`", id.Name)
		}
		if l := mc.lookupLocal(id.Name); id.Ref == ast.RefLocal && l != nil && mc.isCtor() {
			switch {
			case data.Value.Kind == ast.ExprNew && mc.allocLocal == nil:
				// `let p: T; p = new` binds the allocation the same way `let p = new` does
				mc.allocLocal = l
				l.alloc = true
			case l != mc.allocLocal:
				l.alloc = mc.allocated(data.Value) != nil
			}
		}
	case ast.ExprField:
		fd := target.Data.(*ast.FieldData)
		objType := mc.expr(fd.Object, types.NoTypeID)
		expected = mc.fieldOf(target, fd, objType)
		target.Type = expected
		if class := mc.table.Class(objType); class != nil {
			describe = fmt.Sprintf("field `%s` of `%s`", fd.Name, class.Name)
		}
		if fd.Index >= 0 && mc.allocated(fd.Object) != nil {
			trackField = fd.Index
		}
	}

	valueType := mc.expr(data.Value, expected)
	if describe != "" && !mc.assignable(expected, valueType) {
		mc.report(diag.SemaTypeMismatch, target.Span, "%s expects %s, got %s", describe, mc.typeName(expected), mc.typeName(valueType))
	}
	if trackField >= 0 && trackField < len(st.assigned) {
		st.assigned[trackField] = true
	}
	return st
}

func (mc *memberChecker) ret(s *ast.Stmt, data *ast.ReturnData, st flowState) flowState {
	m := mc.member
	expected := m.Result.ID
	switch {
	case mc.isCtor():
		if data.Value == nil {
			mc.report(diag.SemaConstructorShape, s.Span, "constructor `%s` must return the allocated instance", m.QualifiedName())
			break
		}
		vt := mc.expr(data.Value, expected)
		if !mc.assignable(expected, vt) {
			mc.report(diag.SemaTypeMismatch, s.Span, "constructor `%s` returns %s, expected %s", m.QualifiedName(), mc.typeName(vt), mc.typeName(expected))
		}
		switch {
		case data.Value.Kind == ast.ExprNew:
			mc.checkComplete(s.Span, make([]bool, len(st.assigned)))
		case data.Value.Kind == ast.ExprIdent:
			l := mc.lookupLocal(data.Value.Data.(*ast.IdentData).Name)
			switch {
			case l == nil:
			case l.alloc:
				mc.checkComplete(s.Span, st.assigned)
			default:
				// parameters and other locals escape field tracking
				mc.report(diag.SemaConstructorShape, s.Span, "constructor `%s` must return the binding it allocated, not `%s`", m.QualifiedName(), l.name)
			}
		}
	case expected == types.NoTypeID:
		if data.Value != nil {
			mc.expr(data.Value, types.NoTypeID)
		}
	case mc.in.Kind(expected) == types.KindVoid:
		if data.Value != nil {
			mc.expr(data.Value, types.NoTypeID)
			mc.report(diag.SemaTypeMismatch, s.Span, "void member `%s` returns a value", m.QualifiedName())
		}
	default:
		if data.Value == nil {
			mc.report(diag.SemaTypeMismatch, s.Span, "`%s` must return %s", m.QualifiedName(), mc.typeName(expected))
			break
		}
		vt := mc.expr(data.Value, expected)
		if !mc.assignable(expected, vt) {
			mc.report(diag.SemaTypeMismatch, s.Span, "`%s` returns %s, expected %s", m.QualifiedName(), mc.typeName(vt), mc.typeName(expected))
		}
	}
	st.terminated = true
	return st
}

// checkComplete reports every field not assigned on the path reaching a
// return of the allocated instance. Each field is reported once.
func (mc *memberChecker) checkComplete(sp source.Span, assigned []bool) {
	if mc.class == nil {
		return
	}
	if mc.missing == nil {
		mc.missing = make(map[int]bool)
	}
	sev := diag.SevError
	if mc.opts.ZeroInit {
		sev = diag.SevWarning
	}
	for i, f := range mc.class.Fields {
		if i < len(assigned) && assigned[i] {
			continue
		}
		if mc.missing[i] {
			continue
		}
		mc.missing[i] = true
		mc.reportSev(sev, diag.SemaIncompleteInitialization, sp,
			"field `%s` of `%s` is not initialized on every path of constructor `%s`",
			f.Name, mc.class.Name, mc.member.QualifiedName())
	}
}

// checkFieldDefaults type-checks default initializers of a class that has
// no synthesized constructor to check them.
func checkFieldDefaults(opts Options, class *ast.ClassDecl, res *DeclResult) error {
	holder := &ast.Member{Kind: ast.MemberConstructor, Name: "<defaults>", Owner: class.Name, Span: class.Span}
	mc := newMemberChecker(opts, class, holder, res)
	mc.push()
	defer mc.pop()
	for _, f := range class.Fields {
		if f.Default == nil {
			continue
		}
		vt := mc.expr(f.Default, f.Type.ID)
		if !mc.assignable(f.Type.ID, vt) {
			mc.report(diag.SemaTypeMismatch, f.Span, "default of field `%s` of `%s` expects %s, got %s",
				f.Name, class.Name, mc.typeName(f.Type.ID), mc.typeName(vt))
		}
	}
	return mc.fatal
}
