package ast

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"cstar/internal/source"
)

// ErrInvalidAST marks input that violates the parser contract. It is the
// only fatal condition of the core: the run stops without a result.
var ErrInvalidAST = errors.New("invalid AST")

// InvalidAST builds an error marked with ErrInvalidAST that carries the
// offending position.
func InvalidAST(fs *source.FileSet, sp source.Span, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	err := errors.Mark(errors.Newf("%s:%d:%d: %s", fs.Path(sp.File), sp.Start.Line, sp.Start.Col, msg), ErrInvalidAST)
	return errors.WithHint(err, "the AST producer emitted a node the core cannot interpret; regenerate the AST")
}

// Validate checks structural well-formedness: node payloads match their
// kinds, mandatory children are present and constructors are not generic.
// Type-level placeholder rules are enforced by the resolver.
func Validate(p *Program) error {
	if p == nil {
		return errors.Mark(errors.New("nil program"), ErrInvalidAST)
	}
	v := validator{fs: p.Files}
	for _, mod := range p.Modules {
		if mod == nil {
			return v.fail(source.Span{}, "nil module")
		}
		for _, imp := range mod.Imports {
			if imp == nil || imp.Name == "" {
				return v.fail(mod.Span, "module %s has an unnamed import", mod.Name)
			}
		}
		for _, d := range mod.Decls {
			if err := v.decl(d); err != nil {
				return err
			}
		}
	}
	return nil
}

type validator struct {
	fs *source.FileSet
}

func (v validator) fail(sp source.Span, format string, args ...any) error {
	return InvalidAST(v.fs, sp, format, args...)
}

func (v validator) decl(d Decl) error {
	switch decl := d.(type) {
	case *ClassDecl:
		if decl == nil || decl.Name == "" {
			return v.fail(source.Span{}, "class without a name")
		}
		for _, f := range decl.Fields {
			if f == nil || f.Name == "" {
				return v.fail(decl.Span, "class %s has an unnamed field", decl.Name)
			}
			if f.Default != nil {
				if err := v.expr(f.Default); err != nil {
					return err
				}
			}
		}
		for _, m := range decl.Members {
			if err := v.member(m, true); err != nil {
				return err
			}
		}
	case *InterfaceDecl:
		if decl == nil || decl.Name == "" {
			return v.fail(source.Span{}, "interface without a name")
		}
		for _, m := range decl.Signatures {
			if err := v.member(m, false); err != nil {
				return err
			}
			if m.Body != nil {
				return v.fail(m.Span, "interface signature %s.%s has a body", decl.Name, m.Name)
			}
			if m.Kind == MemberConstructor {
				return v.fail(m.Span, "interface %s declares a constructor", decl.Name)
			}
		}
	case *FuncDecl:
		if decl == nil || decl.Name == "" {
			return v.fail(source.Span{}, "function without a name")
		}
		if decl.Fn == nil || decl.Fn.Name != decl.Name {
			return v.fail(decl.Span, "function %s has no matching member", decl.Name)
		}
		if decl.Fn.Kind == MemberConstructor {
			return v.fail(decl.Span, "function %s is declared as a constructor", decl.Name)
		}
		return v.member(decl.Fn, true)
	default:
		return v.fail(source.Span{}, "unknown declaration %T", d)
	}
	return nil
}

func (v validator) member(m *Member, needBody bool) error {
	if m == nil || m.Name == "" {
		return v.fail(source.Span{}, "member without a name")
	}
	if m.Kind == MemberConstructor && m.TypeParam != "" {
		return v.fail(m.Span, "constructor %s declares a type parameter", m.Name)
	}
	for _, p := range m.Params {
		if p == nil || p.Name == "" {
			return v.fail(m.Span, "member %s has an unnamed parameter", m.Name)
		}
	}
	if needBody && m.Body == nil {
		return v.fail(m.Span, "member %s has no body", m.Name)
	}
	return v.block(m.Body)
}

func (v validator) block(b *Block) error {
	if b == nil {
		return nil
	}
	for _, s := range b.Stmts {
		if err := v.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (v validator) stmt(s *Stmt) error {
	if s == nil {
		return v.fail(source.Span{}, "nil statement")
	}
	bad := func() error { return v.fail(s.Span, "%s statement has payload %T", s.Kind, s.Data) }
	switch s.Kind {
	case StmtLet:
		data, ok := s.Data.(*LetData)
		if !ok || data.Name == "" {
			return bad()
		}
		if data.Type.IsPlaceholder() && data.Value == nil {
			return v.fail(s.Span, "local %s has neither a type nor an initializer", data.Name)
		}
		return v.optExpr(data.Value)
	case StmtAssign:
		data, ok := s.Data.(*AssignData)
		if !ok || data.Target == nil || data.Value == nil {
			return bad()
		}
		switch data.Target.Kind {
		case ExprIdent, ExprField:
		default:
			return v.fail(s.Span, "cannot assign to %s expression", data.Target.Kind)
		}
		if err := v.expr(data.Target); err != nil {
			return err
		}
		return v.expr(data.Value)
	case StmtExpr:
		data, ok := s.Data.(*ExprStmtData)
		if !ok || data.Expr == nil {
			return bad()
		}
		return v.expr(data.Expr)
	case StmtReturn:
		data, ok := s.Data.(*ReturnData)
		if !ok {
			return bad()
		}
		return v.optExpr(data.Value)
	case StmtIf:
		data, ok := s.Data.(*IfData)
		if !ok || data.Cond == nil || data.Then == nil {
			return bad()
		}
		if err := v.expr(data.Cond); err != nil {
			return err
		}
		if err := v.block(data.Then); err != nil {
			return err
		}
		return v.block(data.Else)
	case StmtWhile:
		data, ok := s.Data.(*WhileData)
		if !ok || data.Cond == nil || data.Body == nil {
			return bad()
		}
		if err := v.expr(data.Cond); err != nil {
			return err
		}
		return v.block(data.Body)
	case StmtBlock:
		data, ok := s.Data.(*BlockData)
		if !ok || data.Block == nil {
			return bad()
		}
		return v.block(data.Block)
	}
	return v.fail(s.Span, "unknown statement kind %d", s.Kind)
}

func (v validator) optExpr(e *Expr) error {
	if e == nil {
		return nil
	}
	return v.expr(e)
}

func (v validator) expr(e *Expr) error {
	if e == nil {
		return v.fail(source.Span{}, "nil expression")
	}
	bad := func() error { return v.fail(e.Span, "%s expression has payload %T", e.Kind, e.Data) }
	switch e.Kind {
	case ExprLiteral:
		if _, ok := e.Data.(*LiteralData); !ok {
			return bad()
		}
	case ExprIdent:
		if data, ok := e.Data.(*IdentData); !ok || data.Name == "" {
			return bad()
		}
	case ExprThis:
		if _, ok := e.Data.(*ThisData); !ok {
			return bad()
		}
	case ExprField:
		data, ok := e.Data.(*FieldData)
		if !ok || data.Object == nil || data.Name == "" {
			return bad()
		}
		return v.expr(data.Object)
	case ExprUnary:
		data, ok := e.Data.(*UnaryData)
		if !ok || data.Operand == nil {
			return bad()
		}
		return v.expr(data.Operand)
	case ExprBinary:
		data, ok := e.Data.(*BinaryData)
		if !ok || data.Left == nil || data.Right == nil {
			return bad()
		}
		if err := v.expr(data.Left); err != nil {
			return err
		}
		return v.expr(data.Right)
	case ExprCall:
		data, ok := e.Data.(*CallData)
		if !ok || data.Method == "" {
			return bad()
		}
		if err := v.optExpr(data.Receiver); err != nil {
			return err
		}
		for _, a := range data.Args {
			if err := v.expr(a); err != nil {
				return err
			}
		}
	case ExprNew:
		if _, ok := e.Data.(*NewData); !ok {
			return bad()
		}
	case ExprTypeName:
		if data, ok := e.Data.(*TypeNameData); !ok || data.Name == "" {
			return bad()
		}
	case ExprCast:
		data, ok := e.Data.(*CastData)
		if !ok || data.Value == nil || data.Type.IsPlaceholder() {
			return bad()
		}
		return v.expr(data.Value)
	default:
		return v.fail(e.Span, "unknown expression kind %d", e.Kind)
	}
	return nil
}
