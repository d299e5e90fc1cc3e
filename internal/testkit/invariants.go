package testkit

import (
	"fmt"

	"cstar/internal/ast"
	"cstar/internal/types"
)

// CheckResolved verifies what a clean resolution must leave behind: every
// TypeRef of every declaration is resolved, and every expression and call
// of non-generic members is annotated. Generic templates are only checked
// for their declared types since their bodies are typed per specialization.
func CheckResolved(p *ast.Program) error {
	if p == nil {
		return fmt.Errorf("nil program")
	}
	for _, mod := range p.Modules {
		for _, d := range mod.Decls {
			switch decl := d.(type) {
			case *ast.ClassDecl:
				if decl.Type == types.NoTypeID {
					return fmt.Errorf("class %s has no type", decl.Name)
				}
				for _, f := range decl.Fields {
					if !f.Type.Resolved() {
						return fmt.Errorf("field %s.%s is unresolved", decl.Name, f.Name)
					}
				}
				for _, m := range decl.AllMembers() {
					if err := checkSignature(m); err != nil {
						return err
					}
					if m.IsGeneric() {
						continue
					}
					if err := CheckMember(m); err != nil {
						return err
					}
				}
			case *ast.InterfaceDecl:
				for _, sig := range decl.Signatures {
					if err := checkSignature(sig); err != nil {
						return err
					}
				}
			case *ast.FuncDecl:
				if err := checkSignature(decl.Fn); err != nil {
					return err
				}
				if decl.Fn.IsGeneric() {
					continue
				}
				if err := CheckMember(decl.Fn); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func checkSignature(m *ast.Member) error {
	for _, p := range m.Params {
		if !p.Type.Resolved() {
			return fmt.Errorf("parameter %s of %s is unresolved", p.Name, m.QualifiedName())
		}
	}
	if !m.Result.Resolved() {
		return fmt.Errorf("result of %s is unresolved", m.QualifiedName())
	}
	return nil
}

// CheckMember verifies the body annotations of one concrete member, a
// written one or a specialization.
func CheckMember(m *ast.Member) error {
	var err error
	ast.WalkStmts(m.Body, func(s *ast.Stmt) {
		if data, ok := s.Data.(*ast.LetData); ok && err == nil && !data.Type.Resolved() {
			err = fmt.Errorf("local %s in %s is unresolved", data.Name, m.QualifiedName())
		}
	})
	if err != nil {
		return err
	}
	ast.WalkExprs(m.Body, func(e *ast.Expr) {
		if err != nil {
			return
		}
		if e.Type == types.NoTypeID {
			err = fmt.Errorf("%s expression at %s in %s has no type", e.Kind, e.Span, m.QualifiedName())
			return
		}
		switch data := e.Data.(type) {
		case *ast.CallData:
			if data.Target.Kind == ast.CallUnresolved {
				err = fmt.Errorf("call to %s at %s in %s is unresolved", data.Method, e.Span, m.QualifiedName())
			}
		case *ast.NewData:
			if !data.Type.Resolved() {
				err = fmt.Errorf("allocation at %s in %s has no target type", e.Span, m.QualifiedName())
			}
		}
	})
	return err
}
