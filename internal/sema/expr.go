package sema

import (
	"cstar/internal/ast"
	"cstar/internal/diag"
	"cstar/internal/types"
)

// expr types e and records the result on the node. expected is a hint
// used by untyped literals; NoTypeID means none. A NoTypeID result means
// an error was already reported or the type depends on a generic
// parameter and is checked per specialization.
func (mc *memberChecker) expr(e *ast.Expr, expected types.TypeID) types.TypeID {
	t := mc.exprType(e, expected)
	e.Type = t
	return t
}

func (mc *memberChecker) exprType(e *ast.Expr, expected types.TypeID) types.TypeID {
	switch data := e.Data.(type) {
	case *ast.LiteralData:
		return mc.literal(data, expected)
	case *ast.IdentData:
		return mc.ident(e, data)
	case *ast.ThisData:
		if !mc.hasReceiver() {
			mc.report(diag.SemaUnknownIdentifier, e.Span, "`this` is not available in constructor `%s`", mc.member.QualifiedName())
			return types.NoTypeID
		}
		return mc.class.Type
	case *ast.FieldData:
		objType := mc.expr(data.Object, types.NoTypeID)
		return mc.fieldOf(e, data, objType)
	case *ast.UnaryData:
		return mc.unary(e, data, expected)
	case *ast.BinaryData:
		return mc.binary(e, data, expected)
	case *ast.CallData:
		return mc.call(e, data)
	case *ast.NewData:
		return mc.alloc(e, data)
	case *ast.TypeNameData:
		mc.report(diag.SemaUnknownIdentifier, e.Span, "type `%s` used as a value", data.Name)
		return types.NoTypeID
	case *ast.CastData:
		return mc.cast(e, data)
	}
	return types.NoTypeID
}

func (mc *memberChecker) literal(data *ast.LiteralData, expected types.TypeID) types.TypeID {
	kind := mc.in.Kind(expected)
	switch data.Kind {
	case ast.LitInt:
		switch kind {
		case types.KindInt, types.KindUint, types.KindParam:
			return expected
		}
		return mc.builtins.Int32
	case ast.LitFloat:
		switch kind {
		case types.KindFloat, types.KindParam:
			return expected
		}
		return mc.builtins.Float64
	case ast.LitBool:
		return mc.builtins.Bool
	case ast.LitString:
		return mc.builtins.String
	case ast.LitChar:
		return mc.builtins.Char
	}
	return types.NoTypeID
}

func isUntypedLiteral(e *ast.Expr) bool {
	switch data := e.Data.(type) {
	case *ast.LiteralData:
		return data.Kind == ast.LitInt || data.Kind == ast.LitFloat
	case *ast.UnaryData:
		return data.Op == ast.OpNeg && isUntypedLiteral(data.Operand)
	}
	return false
}

// ident resolves a name: locals and parameters first, then fields of the
// implicit receiver.
func (mc *memberChecker) ident(e *ast.Expr, data *ast.IdentData) types.TypeID {
	if l := mc.lookupLocal(data.Name); l != nil {
		if l.param {
			data.Ref = ast.RefParam
			data.Index = l.index
		} else {
			data.Ref = ast.RefLocal
		}
		return l.typ
	}
	if mc.class != nil {
		if idx := mc.class.FieldIndex(data.Name); idx >= 0 {
			if !mc.hasReceiver() {
				mc.report(diag.SemaUnknownIdentifier, e.Span,
					"unknown identifier `%s`: constructor `%s` has no receiver, assign through the allocated instance",
					data.Name, mc.member.QualifiedName())
				return types.NoTypeID
			}
			data.Ref = ast.RefField
			data.Index = idx
			return mc.class.Fields[idx].Type.ID
		}
	}
	if d := mc.table.Decl(data.Name); d != nil {
		mc.report(diag.SemaUnknownIdentifier, e.Span, "%s `%s` used as a value", d.DeclKind(), data.Name)
		return types.NoTypeID
	}
	if len(mc.table.FunctionsFrom(mc.module(), data.Name)) > 0 {
		mc.report(diag.SemaUnknownIdentifier, e.Span, "function `%s` used as a value", data.Name)
		return types.NoTypeID
	}
	mc.report(diag.SemaUnknownIdentifier, e.Span, "unknown identifier `%s`", data.Name)
	return types.NoTypeID
}

func (mc *memberChecker) fieldOf(e *ast.Expr, data *ast.FieldData, objType types.TypeID) types.TypeID {
	data.Index = -1
	switch mc.in.Kind(objType) {
	case types.KindInvalid, types.KindParam:
		return types.NoTypeID
	case types.KindClass:
		class := mc.table.Class(objType)
		idx := class.FieldIndex(data.Name)
		if idx < 0 {
			mc.report(diag.SemaUnknownMember, e.Span, "type `%s` has no field `%s`", class.Name, data.Name)
			return types.NoTypeID
		}
		data.Index = idx
		return class.Fields[idx].Type.ID
	case types.KindInterface:
		mc.report(diag.SemaUnknownMember, e.Span, "interface `%s` has no fields (accessing `%s`)", mc.typeName(objType), data.Name)
		return types.NoTypeID
	}
	mc.report(diag.SemaNotAClassType, e.Span, "type `%s` has no field `%s`", mc.typeName(objType), data.Name)
	return types.NoTypeID
}

func (mc *memberChecker) unary(e *ast.Expr, data *ast.UnaryData, expected types.TypeID) types.TypeID {
	spec := unarySpecTable[data.Op]
	hint := types.NoTypeID
	if spec.result == resultOperand {
		hint = expected
	}
	ot := mc.expr(data.Operand, hint)
	result := func(operand types.TypeID) types.TypeID {
		if spec.result == resultBool {
			return mc.builtins.Bool
		}
		return operand
	}
	switch mc.in.Kind(ot) {
	case types.KindInvalid:
		return result(types.NoTypeID)
	case types.KindParam:
		return result(ot)
	}
	if !accepts(spec.operand, mc.in.Family(ot)) {
		mc.report(diag.SemaTypeMismatch, e.Span, "operator `%s` is not defined for %s", data.Op, mc.typeName(ot))
		return result(types.NoTypeID)
	}
	return result(ot)
}

func (mc *memberChecker) binary(e *ast.Expr, data *ast.BinaryData, expected types.TypeID) types.TypeID {
	spec := binarySpecTable[data.Op]
	hint := types.NoTypeID
	if spec.result == resultOperand {
		hint = expected
	}
	var lt, rt types.TypeID
	if isUntypedLiteral(data.Left) && !isUntypedLiteral(data.Right) {
		rt = mc.expr(data.Right, hint)
		lt = mc.expr(data.Left, rt)
	} else {
		lt = mc.expr(data.Left, hint)
		rt = mc.expr(data.Right, lt)
	}
	result := func(operand types.TypeID) types.TypeID {
		if spec.result == resultBool {
			return mc.builtins.Bool
		}
		return operand
	}
	if lt == types.NoTypeID || rt == types.NoTypeID {
		return result(types.NoTypeID)
	}
	lk, rk := mc.in.Kind(lt), mc.in.Kind(rt)
	if lk == types.KindParam || rk == types.KindParam {
		if lk == types.KindParam {
			return result(lt)
		}
		return result(rt)
	}
	if lt != rt {
		mc.report(diag.SemaTypeMismatch, e.Span, "operator `%s` needs operands of one type, got %s and %s",
			data.Op, mc.typeName(lt), mc.typeName(rt))
		return result(types.NoTypeID)
	}
	if !accepts(spec.operands, mc.in.Family(lt)) {
		mc.report(diag.SemaTypeMismatch, e.Span, "operator `%s` is not defined for %s", data.Op, mc.typeName(lt))
		return result(types.NoTypeID)
	}
	return result(lt)
}

func (mc *memberChecker) alloc(e *ast.Expr, data *ast.NewData) types.TypeID {
	if !mc.isCtor() || mc.class == nil {
		if data.Type.IsPlaceholder() {
			mc.failAST(e.Span, "allocation without a type outside a constructor in %s", mc.member.QualifiedName())
			return types.NoTypeID
		}
		mc.report(diag.SemaConstructorShape, e.Span, "allocation outside a constructor in `%s`; call a constructor instead", mc.member.QualifiedName())
		return types.NoTypeID
	}
	mc.allocs++
	if mc.allocs == 2 {
		mc.report(diag.SemaConstructorShape, e.Span, "constructor `%s` allocates more than one instance", mc.member.QualifiedName())
	}
	if data.Type.IsPlaceholder() {
		// implicit allocation target: the owning class
		data.Type.ID = mc.class.Type
		return mc.class.Type
	}
	if !mc.resolveType(&data.Type) {
		return types.NoTypeID
	}
	if data.Type.ID != mc.class.Type {
		mc.report(diag.SemaTypeMismatch, e.Span, "constructor `%s` allocates %s, expected %s",
			mc.member.QualifiedName(), mc.typeName(data.Type.ID), mc.class.Name)
	}
	return data.Type.ID
}

func (mc *memberChecker) cast(e *ast.Expr, data *ast.CastData) types.TypeID {
	vt := mc.expr(data.Value, types.NoTypeID)
	if !mc.resolveType(&data.Type) {
		return types.NoTypeID
	}
	target := data.Type.ID
	if vt == types.NoTypeID || vt == target {
		return target
	}
	vk, tk := mc.in.Kind(vt), mc.in.Kind(target)
	if vk == types.KindParam || tk == types.KindParam {
		return target
	}
	scalar := types.FamilyNumeric | types.FamilyChar
	if accepts(scalar, mc.in.Family(vt)) && accepts(scalar, mc.in.Family(target)) {
		return target
	}
	if mc.assignable(target, vt) {
		return target
	}
	mc.report(diag.SemaTypeMismatch, e.Span, "cannot cast %s to %s", mc.typeName(vt), mc.typeName(target))
	return target
}

// assignable reports whether a value of type src may be stored in dst.
// Unknown types are accepted since their error was already reported;
// generic parameters are accepted and checked per specialization.
func (mc *memberChecker) assignable(dst, src types.TypeID) bool {
	if dst == types.NoTypeID || src == types.NoTypeID || dst == src {
		return true
	}
	dk, sk := mc.in.Kind(dst), mc.in.Kind(src)
	if dk == types.KindParam || sk == types.KindParam {
		return true
	}
	if dk == types.KindInterface && sk == types.KindClass {
		return mc.table.Declares(mc.table.Class(src), dst)
	}
	return false
}
