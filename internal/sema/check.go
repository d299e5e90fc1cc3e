package sema

import (
	"cstar/internal/ast"
	"cstar/internal/diag"
	"cstar/internal/source"
	"cstar/internal/symbols"
	"cstar/internal/types"
)

// Options configure resolution of one declaration.
type Options struct {
	Reporter diag.Reporter
	Symbols  *symbols.Table
	// ZeroInit downgrades missing field initialization to a warning; the
	// emitter then zero-fills the allocation.
	ZeroInit bool
}

// Request asks the instantiator for a specialization of a generic member
// or of a generic module function. Exactly one of Class and Func is set.
// Requests are produced in call-site discovery order.
type Request struct {
	Class    *ast.ClassDecl
	Func     *ast.FuncDecl
	Member   *ast.Member
	Concrete types.TypeID
	Site     source.Span
	Caller   string
	// Call is the call expression to rewrite; nil when the request comes
	// from an interface call that dispatch lowers per implementer.
	Call *ast.Expr
}

// Owner returns the declaration owning the requested member.
func (r Request) Owner() ast.Decl {
	if r.Func != nil {
		return r.Func
	}
	if r.Class != nil {
		return r.Class
	}
	return nil
}

// OwnerName is the symbol prefix of the requested member: the class name
// or, for a function, its module.
func (r Request) OwnerName() string {
	if r.Func != nil {
		return r.Func.Module
	}
	if r.Class != nil {
		return r.Class.Name
	}
	return ""
}

// DeclResult stores what resolving one declaration produced besides
// annotations and diagnostics.
type DeclResult struct {
	Decl     ast.Decl
	Requests []Request
	// Deps lists the classes and functions whose members this
	// declaration calls, in first-use order.
	Deps []ast.Decl
}

func (r *DeclResult) addDep(d ast.Decl) {
	if d == nil || d == r.Decl {
		return
	}
	for _, prev := range r.Deps {
		if prev == d {
			return
		}
	}
	r.Deps = append(r.Deps, d)
}

// ResolveDecl resolves member bodies of one declaration. Signatures must
// have been resolved and the table frozen. It is safe to call for
// different declarations concurrently: it writes annotations of decl only.
// The returned error is fatal (malformed AST).
func ResolveDecl(decl ast.Decl, opts Options) (*DeclResult, error) {
	res := &DeclResult{Decl: decl}
	var class *ast.ClassDecl
	switch d := decl.(type) {
	case *ast.ClassDecl:
		class = d
	case *ast.FuncDecl:
		mc := newMemberChecker(opts, nil, d.Fn, res)
		mc.fn = d
		return res, mc.run()
	default:
		// interface signatures are fully handled by ResolveSignatures
		return res, nil
	}
	for _, m := range class.AllMembers() {
		mc := newMemberChecker(opts, class, m, res)
		if err := mc.run(); err != nil {
			return res, err
		}
	}
	if len(class.Implicit) == 0 {
		if err := checkFieldDefaults(opts, class, res); err != nil {
			return res, err
		}
	}
	return res, nil
}

// ResolveSpecialization re-resolves a cloned generic member of owner, a
// class or a module function, with its type parameter bound to concrete.
// Every problem is reported as MonoUnsubstitutableBody. It returns the
// requests discovered inside the specialized body and whether the body
// checked cleanly.
func ResolveSpecialization(owner ast.Decl, clone *ast.Member, param string, concrete types.TypeID, symbolName string, opts Options) ([]Request, bool, error) {
	res := &DeclResult{Decl: owner}
	counter := &errorCounter{next: opts.Reporter}
	opts.Reporter = counter
	class, _ := owner.(*ast.ClassDecl)
	mc := newMemberChecker(opts, class, clone, res)
	if fn, ok := owner.(*ast.FuncDecl); ok {
		mc.fn = fn
	}
	mc.aliases = map[string]types.TypeID{param: concrete}
	mc.specialization = symbolName
	if err := mc.resolveSignature(); err != nil {
		return nil, false, err
	}
	if err := mc.run(); err != nil {
		return nil, false, err
	}
	return res.Requests, counter.errors == 0, nil
}

type errorCounter struct {
	next   diag.Reporter
	errors int
}

func (c *errorCounter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	if sev >= diag.SevError {
		c.errors++
	}
	if c.next != nil {
		c.next.Report(code, sev, primary, msg, notes)
	}
}
