package dispatch

import (
	"fmt"

	"cstar/internal/ast"
	"cstar/internal/diag"
	"cstar/internal/mono"
	"cstar/internal/sema"
	"cstar/internal/source"
	"cstar/internal/symbols"
	"cstar/internal/types"
)

type Options struct {
	Symbols         *symbols.Table
	Specializations *mono.Set
	ReporterFor     func(ast.Decl) diag.Reporter
	// Skip reports declarations that failed an earlier pass. Their bodies
	// are not rewritten and calls into them block the caller.
	Skip func(ast.Decl) bool
}

// Lower builds a descriptor per interface, checks every declared
// implementer and rewrites interface calls of the remaining classes and
// module functions. Callers whose calls reach a skipped class are listed
// in Blocked.
func Lower(opts Options) *Result {
	if opts.ReporterFor == nil {
		opts.ReporterFor = func(ast.Decl) diag.Reporter { return diag.NopReporter{} }
	}
	if opts.Skip == nil {
		opts.Skip = func(ast.Decl) bool { return false }
	}
	l := &lowerer{
		opts:    opts,
		table:   opts.Symbols,
		in:      opts.Symbols.Types,
		res:     &Result{byType: make(map[types.TypeID]*Descriptor)},
		blocked: make(map[ast.Decl][]*ast.ClassDecl),
	}
	for _, iface := range l.table.Interfaces() {
		if !opts.Skip(iface) {
			l.describe(iface)
		}
	}
	for _, class := range l.table.Classes() {
		if opts.Skip(class) {
			continue
		}
		l.rewriteClass(class)
	}
	for _, fn := range l.table.Functions() {
		if opts.Skip(fn) {
			continue
		}
		l.rewriteFunc(fn)
	}
	l.res.Blocked = l.blocked
	return l.res
}

type lowerer struct {
	opts    Options
	table   *symbols.Table
	in      *types.Interner
	res     *Result
	blocked map[ast.Decl][]*ast.ClassDecl
}

func (l *lowerer) describe(iface *ast.InterfaceDecl) {
	d := &Descriptor{
		Interface:  iface,
		Signatures: iface.Signatures,
		Union:      ast.DispatchUnionName(iface.Name),
	}
	l.res.Descriptors = append(l.res.Descriptors, d)
	l.res.byType[iface.Type] = d
	for _, class := range l.table.Implementers(iface.Type) {
		entry, ok := l.satisfy(iface, class)
		if !ok {
			l.res.markUnsatisfied(class)
			continue
		}
		entry.Tag = len(d.Entries)
		entry.TagName = ast.DispatchTagName(iface.Name, class.Name)
		d.Entries = append(d.Entries, entry)
	}
}

// satisfy checks that class provides a member for every signature of
// iface and reports each missing or mismatched one.
func (l *lowerer) satisfy(iface *ast.InterfaceDecl, class *ast.ClassDecl) (*Entry, bool) {
	entry := &Entry{
		Class:    class,
		Methods:  make([]*ast.Member, len(iface.Signatures)),
		Bindings: make([]types.TypeID, len(iface.Signatures)),
	}
	ok := true
	for i, sig := range iface.Signatures {
		m := class.Member(sig.Name)
		problem := ""
		switch {
		case m == nil:
			problem = fmt.Sprintf("missing member `%s`", sig.Name)
		case m.Kind == ast.MemberConstructor:
			problem = fmt.Sprintf("`%s` is a constructor", sig.Name)
		case m.Body == nil:
			problem = fmt.Sprintf("member `%s` has no body", sig.Name)
		default:
			entry.Bindings[i], problem = l.matchSignature(sig, m)
		}
		if problem != "" {
			ok = false
			diag.ReportError(l.opts.ReporterFor(class), diag.DispatchUnsatisfiedInterface, implementsSpan(class, iface),
				fmt.Sprintf("type `%s` does not satisfy interface `%s`: %s", class.Name, iface.Name, problem)).
				WithNote(sig.Span, "signature declared here").
				Emit()
			continue
		}
		entry.Methods[i] = m
	}
	return entry, ok
}

func implementsSpan(class *ast.ClassDecl, iface *ast.InterfaceDecl) source.Span {
	for _, ref := range class.Implements {
		if ref.Name == iface.Name {
			return ref.Span
		}
	}
	return class.Span
}

// matchSignature compares parameter and result types after resolution. A
// generic signature matches a generic member structurally or a concrete
// member through one consistent binding, which is returned.
func (l *lowerer) matchSignature(sig, m *ast.Member) (types.TypeID, string) {
	if len(sig.Params) != len(m.Params) {
		return types.NoTypeID, fmt.Sprintf("member `%s` takes %d parameter(s), the interface expects %d", m.Name, len(m.Params), len(sig.Params))
	}
	if !sig.IsGeneric() && m.IsGeneric() {
		return types.NoTypeID, fmt.Sprintf("member `%s` is generic, the interface signature is not", m.Name)
	}
	binding := types.NoTypeID
	same := func(want, got types.TypeID) bool {
		if want == types.NoTypeID || got == types.NoTypeID {
			// already reported by the resolver
			return true
		}
		if sig.IsGeneric() && want == sig.ParamType {
			if m.IsGeneric() {
				return got == m.ParamType
			}
			if binding == types.NoTypeID {
				binding = got
				return true
			}
			return got == binding
		}
		return want == got
	}
	for i := range sig.Params {
		want, got := sig.Params[i].Type.ID, m.Params[i].Type.ID
		if !same(want, got) {
			return types.NoTypeID, fmt.Sprintf("parameter %d of `%s` is %s, the interface expects %s",
				i+1, m.Name, l.in.Name(got), l.in.Name(want))
		}
	}
	if !same(sig.Result.ID, m.Result.ID) {
		return types.NoTypeID, fmt.Sprintf("`%s` returns %s, the interface expects %s",
			m.Name, l.in.Name(m.Result.ID), l.in.Name(sig.Result.ID))
	}
	return binding, ""
}

func (l *lowerer) rewriteClass(class *ast.ClassDecl) {
	var bodies []*ast.Member
	for _, m := range class.AllMembers() {
		if !m.IsGeneric() {
			bodies = append(bodies, m)
		}
	}
	for _, sp := range l.opts.Specializations.OfClass(class) {
		if !sp.Failed {
			bodies = append(bodies, sp.Member)
		}
	}
	l.rewriteBodies(class, bodies)
}

func (l *lowerer) rewriteFunc(fn *ast.FuncDecl) {
	var bodies []*ast.Member
	if !fn.Fn.IsGeneric() {
		bodies = append(bodies, fn.Fn)
	}
	for _, sp := range l.opts.Specializations.OfFunc(fn) {
		if !sp.Failed {
			bodies = append(bodies, sp.Member)
		}
	}
	l.rewriteBodies(fn, bodies)
}

func (l *lowerer) rewriteBodies(owner ast.Decl, bodies []*ast.Member) {
	for _, m := range bodies {
		for _, call := range ast.Calls(m.Body) {
			data := call.Data.(*ast.CallData)
			if data.Target.Kind == ast.CallInterface {
				l.rewrite(owner, call, data)
			}
		}
	}
}

func (l *lowerer) rewrite(owner ast.Decl, call *ast.Expr, data *ast.CallData) {
	desc := l.res.Descriptor(data.Target.Interface)
	if desc == nil {
		return
	}
	sig := data.Target.Signature
	binding := data.Target.Binding
	reporter := l.opts.ReporterFor(owner)

	if data.Target.Class != types.NoTypeID {
		entry := desc.Entry(l.table.Class(data.Target.Class))
		if entry == nil {
			// the class failed satisfaction and blocks its users
			l.block(owner, l.table.Class(data.Target.Class))
			return
		}
		sym, ok := l.targetSymbol(owner, entry, sig, binding, call, reporter)
		if !ok {
			return
		}
		data.Target.Kind = ast.CallDirect
		data.Target.Member = entry.Methods[sig]
		data.Target.Symbol = sym
		return
	}

	if len(desc.Entries) == 0 {
		diag.ReportWarning(reporter, diag.DispatchNoImplementers, call.Span,
			fmt.Sprintf("interface `%s` has no implementers; call to `%s` can never run", desc.Interface.Name, data.Method)).Emit()
	}
	th := desc.thunk(sig, binding)
	if th == nil {
		// a thunk is kept only once every target exists; until then each
		// caller is blocked by the missing ones on its own
		th = &Thunk{Signature: sig, Binding: binding, Symbol: l.thunkSymbol(desc, sig, binding)}
		complete := true
		for _, entry := range desc.Entries {
			sym, ok := l.targetSymbol(owner, entry, sig, binding, call, reporter)
			if !ok {
				complete = false
				continue
			}
			th.Targets = append(th.Targets, sym)
		}
		if !complete {
			return
		}
		s := desc.Signatures[sig]
		what := sema.ClaimedAs(desc.Interface, s)
		if prev, ok := l.table.ClaimSymbol(th.Symbol, symbols.Claim{Decl: desc.Interface, Member: s, Span: s.Span, What: what}); !ok {
			diag.ReportError(reporter, diag.SemaDuplicateDeclaration, call.Span,
				fmt.Sprintf("%s is emitted as `%s`, which %s already uses", what, th.Symbol, prev.What)).
				WithNote(prev.Span, "first emitted here").
				Emit()
			return
		}
		desc.Thunks = append(desc.Thunks, th)
	}
	data.Target.Kind = ast.CallTagged
	data.Target.Symbol = th.Symbol
}

func (l *lowerer) thunkSymbol(desc *Descriptor, sig int, binding types.TypeID) string {
	s := desc.Signatures[sig]
	if s.IsGeneric() {
		return ast.SpecializationSymbol(desc.Interface.Name, s.Name, l.in.Name(binding))
	}
	return ast.MemberSymbol(desc.Interface.Name, s.Name)
}

// targetSymbol returns the function implementing signature sig of entry
// for binding. ok is false when the target cannot be emitted.
func (l *lowerer) targetSymbol(owner ast.Decl, entry *Entry, sig int, binding types.TypeID, call *ast.Expr, reporter diag.Reporter) (string, bool) {
	if l.opts.Skip(entry.Class) {
		l.block(owner, entry.Class)
		return "", false
	}
	m := entry.Methods[sig]
	if !m.IsGeneric() {
		if want := entry.Bindings[sig]; want != types.NoTypeID && binding != types.NoTypeID && want != binding {
			diag.ReportError(reporter, diag.DispatchUnsatisfiedInterface, call.Span,
				fmt.Sprintf("type `%s` implements `%s` only for %s, called with %s",
					entry.Class.Name, m.Name, l.in.Name(want), l.in.Name(binding))).Emit()
			return "", false
		}
		return ast.MemberSymbol(entry.Class.Name, m.Name), true
	}
	sp := l.opts.Specializations.Lookup(m, binding)
	if sp == nil || sp.Failed {
		// the specialization failure belongs to the implementer
		l.block(owner, entry.Class)
		return "", false
	}
	return sp.Symbol, true
}

func (l *lowerer) block(owner ast.Decl, by *ast.ClassDecl) {
	if by == nil || owner == ast.Decl(by) {
		return
	}
	for _, c := range l.blocked[owner] {
		if c == by {
			return
		}
	}
	l.blocked[owner] = append(l.blocked[owner], by)
}
