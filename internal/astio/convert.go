package astio

import (
	"cstar/internal/ast"
	"cstar/internal/source"
)

type converter struct {
	fs   *source.FileSet
	file source.FileID
}

func (c *converter) span(at string, parent source.Span) (source.Span, error) {
	sp, ok := parsePos(c.file, at)
	if !ok {
		return sp, ast.InvalidAST(c.fs, parent, "malformed position %q", at)
	}
	if sp.Empty() {
		// Nodes without a position inherit their parent's.
		return parent, nil
	}
	return sp, nil
}

func (c *converter) module(m *moduleDTO, defaultFile string) (*ast.Module, error) {
	file := m.File
	if file == "" {
		file = defaultFile
	}
	c.file = c.fs.Add(file)
	sp, err := c.span(m.At, source.Span{File: c.file})
	if err != nil {
		return nil, err
	}
	mod := &ast.Module{Name: m.Name, Span: sp}
	for _, u := range m.Use {
		usp, err := c.span(u.At, sp)
		if err != nil {
			return nil, err
		}
		mod.Imports = append(mod.Imports, &ast.Import{Name: u.Name, Span: usp, Public: u.Pub})
	}
	for i := range m.Decls {
		d, err := c.decl(&m.Decls[i], sp)
		if err != nil {
			return nil, err
		}
		mod.Decls = append(mod.Decls, d)
	}
	return mod, nil
}

func (c *converter) decl(d *declDTO, parent source.Span) (ast.Decl, error) {
	sp, err := c.span(d.At, parent)
	if err != nil {
		return nil, err
	}
	switch d.Kind {
	case "class":
		if len(d.Signatures) > 0 {
			return nil, ast.InvalidAST(c.fs, sp, "class %s lists interface signatures", d.Name)
		}
		class := &ast.ClassDecl{Name: d.Name, Span: sp}
		for _, name := range d.Implements {
			class.Implements = append(class.Implements, ast.Ident{Name: name, Span: sp})
		}
		for i := range d.Fields {
			f, err := c.field(&d.Fields[i], sp)
			if err != nil {
				return nil, err
			}
			class.Fields = append(class.Fields, f)
		}
		for i := range d.Members {
			m, err := c.member(&d.Members[i], sp, true)
			if err != nil {
				return nil, err
			}
			class.Members = append(class.Members, m)
		}
		return class, nil
	case "interface":
		if len(d.Fields) > 0 || len(d.Members) > 0 || len(d.Implements) > 0 {
			return nil, ast.InvalidAST(c.fs, sp, "interface %s may only list signatures", d.Name)
		}
		iface := &ast.InterfaceDecl{Name: d.Name, Span: sp}
		for i := range d.Signatures {
			m, err := c.member(&d.Signatures[i], sp, false)
			if err != nil {
				return nil, err
			}
			iface.Signatures = append(iface.Signatures, m)
		}
		return iface, nil
	case "function":
		if len(d.Fields) > 0 || len(d.Members) > 0 || len(d.Signatures) > 0 || len(d.Implements) > 0 {
			return nil, ast.InvalidAST(c.fs, sp, "function %s may only carry a signature and a body", d.Name)
		}
		fn, err := c.member(&memberDTO{
			Name:      d.Name,
			At:        d.At,
			TypeParam: d.TypeParam,
			Params:    d.Params,
			Result:    d.Result,
			Body:      d.Body,
		}, parent, true)
		if err != nil {
			return nil, err
		}
		return &ast.FuncDecl{Name: d.Name, Span: sp, Fn: fn}, nil
	}
	return nil, ast.InvalidAST(c.fs, sp, "unknown declaration kind %q", d.Kind)
}

func (c *converter) field(f *fieldDTO, parent source.Span) (*ast.Field, error) {
	sp, err := c.span(f.At, parent)
	if err != nil {
		return nil, err
	}
	field := &ast.Field{Name: f.Name, Span: sp, Type: ast.TypeRef{Name: f.Type, Span: sp}}
	if f.Default != nil {
		if field.Default, err = c.expr(f.Default, sp); err != nil {
			return nil, err
		}
	}
	return field, nil
}

// member converts a method, constructor or signature. Class members always
// get a block, even an empty one; signatures keep whatever body the
// document gave so that validation can reject it.
func (c *converter) member(m *memberDTO, parent source.Span, inClass bool) (*ast.Member, error) {
	sp, err := c.span(m.At, parent)
	if err != nil {
		return nil, err
	}
	out := &ast.Member{
		Name:      m.Name,
		Span:      sp,
		TypeParam: m.TypeParam,
		Result:    ast.TypeRef{Name: m.Result, Span: sp},
	}
	switch m.Kind {
	case "", "method":
		out.Kind = ast.MemberMethod
	case "constructor":
		out.Kind = ast.MemberConstructor
	default:
		return nil, ast.InvalidAST(c.fs, sp, "unknown member kind %q", m.Kind)
	}
	for _, p := range m.Params {
		psp, err := c.span(p.At, sp)
		if err != nil {
			return nil, err
		}
		out.Params = append(out.Params, &ast.Param{Name: p.Name, Span: psp, Type: ast.TypeRef{Name: p.Type, Span: psp}})
	}
	if m.Body != nil || inClass {
		var stmts []stmtDTO
		if m.Body != nil {
			stmts = *m.Body
		}
		if out.Body, err = c.block(stmts, sp); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *converter) block(stmts []stmtDTO, sp source.Span) (*ast.Block, error) {
	b := &ast.Block{Span: sp}
	for i := range stmts {
		s, err := c.stmt(&stmts[i], sp)
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, s)
	}
	return b, nil
}

func (c *converter) optExpr(e *exprDTO, sp source.Span) (*ast.Expr, error) {
	if e == nil {
		return nil, nil
	}
	return c.expr(e, sp)
}

func (c *converter) stmt(s *stmtDTO, parent source.Span) (*ast.Stmt, error) {
	sp, err := c.span(s.At, parent)
	if err != nil {
		return nil, err
	}
	out := &ast.Stmt{Span: sp}
	switch s.Kind {
	case "let", "var":
		value, err := c.optExpr(s.Value, sp)
		if err != nil {
			return nil, err
		}
		out.Kind = ast.StmtLet
		out.Data = &ast.LetData{Name: s.Name, Type: ast.TypeRef{Name: s.Type, Span: sp}, Value: value}
	case "assign":
		if s.Target == nil || s.Value == nil {
			return nil, ast.InvalidAST(c.fs, sp, "assignment needs a target and a value")
		}
		target, err := c.expr(s.Target, sp)
		if err != nil {
			return nil, err
		}
		value, err := c.expr(s.Value, sp)
		if err != nil {
			return nil, err
		}
		out.Kind = ast.StmtAssign
		out.Data = &ast.AssignData{Target: target, Value: value}
	case "expr":
		if s.Expr == nil {
			return nil, ast.InvalidAST(c.fs, sp, "expression statement without an expression")
		}
		e, err := c.expr(s.Expr, sp)
		if err != nil {
			return nil, err
		}
		out.Kind = ast.StmtExpr
		out.Data = &ast.ExprStmtData{Expr: e}
	case "return":
		value, err := c.optExpr(s.Value, sp)
		if err != nil {
			return nil, err
		}
		out.Kind = ast.StmtReturn
		out.Data = &ast.ReturnData{Value: value}
	case "if":
		if s.Cond == nil {
			return nil, ast.InvalidAST(c.fs, sp, "if without a condition")
		}
		cond, err := c.expr(s.Cond, sp)
		if err != nil {
			return nil, err
		}
		data := &ast.IfData{Cond: cond}
		if data.Then, err = c.block(s.Then, sp); err != nil {
			return nil, err
		}
		if s.Else != nil {
			if data.Else, err = c.block(*s.Else, sp); err != nil {
				return nil, err
			}
		}
		out.Kind = ast.StmtIf
		out.Data = data
	case "while":
		if s.Cond == nil {
			return nil, ast.InvalidAST(c.fs, sp, "while without a condition")
		}
		cond, err := c.expr(s.Cond, sp)
		if err != nil {
			return nil, err
		}
		body, err := c.block(s.Body, sp)
		if err != nil {
			return nil, err
		}
		out.Kind = ast.StmtWhile
		out.Data = &ast.WhileData{Cond: cond, Body: body}
	case "block":
		body, err := c.block(s.Body, sp)
		if err != nil {
			return nil, err
		}
		out.Kind = ast.StmtBlock
		out.Data = &ast.BlockData{Block: body}
	default:
		return nil, ast.InvalidAST(c.fs, sp, "unknown statement kind %q", s.Kind)
	}
	return out, nil
}

var literalKinds = map[string]ast.LiteralKind{
	"int":    ast.LitInt,
	"float":  ast.LitFloat,
	"bool":   ast.LitBool,
	"string": ast.LitString,
	"char":   ast.LitChar,
}

func (c *converter) expr(e *exprDTO, parent source.Span) (*ast.Expr, error) {
	sp, err := c.span(e.At, parent)
	if err != nil {
		return nil, err
	}
	out := &ast.Expr{Span: sp}
	if lit, ok := literalKinds[e.Kind]; ok {
		out.Kind = ast.ExprLiteral
		out.Data = &ast.LiteralData{Kind: lit, Text: e.Value}
		return out, nil
	}
	need := func(child *exprDTO, what string) (*ast.Expr, error) {
		if child == nil {
			return nil, ast.InvalidAST(c.fs, sp, "%s expression without %s", e.Kind, what)
		}
		return c.expr(child, sp)
	}
	switch e.Kind {
	case "ident":
		out.Kind = ast.ExprIdent
		out.Data = &ast.IdentData{Name: e.Name}
	case "this":
		out.Kind = ast.ExprThis
		out.Data = &ast.ThisData{}
	case "field":
		obj, err := need(e.Object, "an object")
		if err != nil {
			return nil, err
		}
		out.Kind = ast.ExprField
		out.Data = &ast.FieldData{Object: obj, Name: e.Name, Index: -1}
	case "unary":
		op, ok := ast.ParseUnaryOp(e.Op)
		if !ok {
			return nil, ast.InvalidAST(c.fs, sp, "unknown unary operator %q", e.Op)
		}
		operand, err := need(e.Operand, "an operand")
		if err != nil {
			return nil, err
		}
		out.Kind = ast.ExprUnary
		out.Data = &ast.UnaryData{Op: op, Operand: operand}
	case "binary":
		op, ok := ast.ParseBinaryOp(e.Op)
		if !ok {
			return nil, ast.InvalidAST(c.fs, sp, "unknown binary operator %q", e.Op)
		}
		left, err := need(e.Left, "a left operand")
		if err != nil {
			return nil, err
		}
		right, err := need(e.Right, "a right operand")
		if err != nil {
			return nil, err
		}
		out.Kind = ast.ExprBinary
		out.Data = &ast.BinaryData{Op: op, Left: left, Right: right}
	case "call":
		recv, err := c.optExpr(e.Object, sp)
		if err != nil {
			return nil, err
		}
		data := &ast.CallData{Receiver: recv, Method: e.Name}
		for i := range e.Args {
			arg, err := c.expr(&e.Args[i], sp)
			if err != nil {
				return nil, err
			}
			data.Args = append(data.Args, arg)
		}
		out.Kind = ast.ExprCall
		out.Data = data
	case "new":
		out.Kind = ast.ExprNew
		out.Data = &ast.NewData{Type: ast.TypeRef{Name: e.Type, Span: sp}}
	case "type":
		out.Kind = ast.ExprTypeName
		out.Data = &ast.TypeNameData{Name: e.Name}
	case "cast":
		value, err := need(e.Operand, "an operand")
		if err != nil {
			return nil, err
		}
		out.Kind = ast.ExprCast
		out.Data = &ast.CastData{Type: ast.TypeRef{Name: e.Type, Span: sp}, Value: value}
	default:
		return nil, ast.InvalidAST(c.fs, sp, "unknown expression kind %q", e.Kind)
	}
	return out, nil
}
