package ir

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"cstar/internal/ast"
	"cstar/internal/types"
)

// Validate checks what the emitter relies on: every type is resolved and
// concrete, every call names an emitted function, and no interface call
// is left without dispatch.
func Validate(p *Program, in *types.Interner) error {
	if p == nil {
		return nil
	}
	funcs := make(map[string]*Func, len(p.Funcs))
	for _, f := range p.Funcs {
		if _, dup := funcs[f.Name]; dup {
			return errors.Newf("ir: function %s emitted twice", f.Name)
		}
		funcs[f.Name] = f
	}
	concrete := func(id types.TypeID) bool {
		switch in.Kind(id) {
		case types.KindInvalid, types.KindParam:
			return false
		}
		return true
	}

	var errs []error
	for _, st := range p.Structs {
		for _, f := range st.Fields {
			if !concrete(f.Type) {
				errs = append(errs, errors.Newf("ir: struct %s: field %s has no concrete type", st.Name, f.Name))
			}
		}
	}
	for _, f := range p.Funcs {
		if err := validateFunc(f, funcs, concrete); err != nil {
			errs = append(errs, errors.Wrapf(err, "ir: function %s", f.Name))
		}
	}
	return errors.Join(errs...)
}

func validateFunc(f *Func, funcs map[string]*Func, concrete func(types.TypeID) bool) error {
	for _, p := range f.Params {
		if !concrete(p.Type) {
			return errors.Newf("parameter %s has no concrete type", p.Name)
		}
	}
	if !concrete(f.Result) {
		return errors.New("result has no concrete type")
	}
	if f.Kind == FuncThunk {
		for _, c := range f.Cases {
			if funcs[c.Target] == nil {
				return errors.Newf("case %s targets missing function %s", c.Tag, c.Target)
			}
		}
		return nil
	}

	var err error
	fail := func(format string, args ...any) {
		if err == nil {
			err = errors.Newf("%s", fmt.Sprintf(format, args...))
		}
	}
	ast.WalkStmts(f.Member.Body, func(s *ast.Stmt) {
		if data, ok := s.Data.(*ast.LetData); ok && !concrete(data.Type.ID) {
			fail("local %s at %s has no concrete type", data.Name, s.Span)
		}
	})
	ast.WalkExprs(f.Member.Body, func(e *ast.Expr) {
		if !concrete(e.Type) {
			fail("%s expression at %s has no concrete type", e.Kind, e.Span)
			return
		}
		data, ok := e.Data.(*ast.CallData)
		if !ok {
			return
		}
		t := data.Target
		switch t.Kind {
		case ast.CallDirect, ast.CallGeneric:
			if t.Symbol == "" {
				fail("call to %s at %s was not instantiated", data.Method, e.Span)
			} else if funcs[t.Symbol] == nil {
				fail("call at %s targets missing function %s", e.Span, t.Symbol)
			}
		case ast.CallTagged:
			if th := funcs[t.Symbol]; th == nil || th.Kind != FuncThunk {
				fail("dispatched call at %s has no descriptor entry %s", e.Span, t.Symbol)
			}
		case ast.CallInterface:
			fail("interface call to %s at %s was not lowered", data.Method, e.Span)
		default:
			fail("call to %s at %s is unresolved", data.Method, e.Span)
		}
	})
	return err
}
