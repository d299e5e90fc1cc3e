package sema

import (
	"strings"

	"cstar/internal/ast"
	"cstar/internal/diag"
	"cstar/internal/types"
)

func (mc *memberChecker) call(e *ast.Expr, data *ast.CallData) types.TypeID {
	data.Target = ast.CallTarget{}
	recv := data.Receiver
	switch {
	case recv == nil:
		return mc.implicitCall(e, data)
	case recv.Kind == ast.ExprTypeName:
		return mc.staticCall(e, data)
	}

	rt := mc.expr(recv, types.NoTypeID)
	switch mc.in.Kind(rt) {
	case types.KindInvalid, types.KindParam:
		// either already reported or checked per specialization
		mc.argsUnchecked(data)
		return types.NoTypeID
	case types.KindClass:
		return mc.classCall(e, data, mc.table.Class(rt), false)
	case types.KindInterface:
		return mc.interfaceCall(e, data, rt)
	}
	mc.report(diag.SemaNotAClassType, recv.Span, "cannot call `%s` on %s", data.Method, mc.typeName(rt))
	mc.argsUnchecked(data)
	return types.NoTypeID
}

func (mc *memberChecker) argsUnchecked(data *ast.CallData) {
	for _, a := range data.Args {
		mc.expr(a, types.NoTypeID)
	}
}

// implicitCall handles `M(args)`: a member of the enclosing class called
// on the implicit receiver, one of its constructors, or a module function.
// Class members shadow functions.
func (mc *memberChecker) implicitCall(e *ast.Expr, data *ast.CallData) types.TypeID {
	if mc.class == nil || mc.class.Member(data.Method) == nil {
		fns := mc.table.FunctionsFrom(mc.module(), data.Method)
		switch {
		case len(fns) == 1:
			return mc.funcCall(e, data, fns[0])
		case len(fns) > 1:
			mods := make([]string, len(fns))
			for i, fn := range fns {
				mods[i] = "`" + fn.Module + "`"
			}
			mc.report(diag.SemaAmbiguousCall, e.Span, "call of `%s` is ambiguous: imported from %s", data.Method, strings.Join(mods, ", "))
			mc.argsUnchecked(data)
			return types.NoTypeID
		case mc.class == nil:
			mc.report(diag.SemaUnknownIdentifier, e.Span, "unknown function `%s`", data.Method)
			mc.argsUnchecked(data)
			return types.NoTypeID
		}
	}
	if m := mc.class.Member(data.Method); m != nil && m.Kind == ast.MemberConstructor {
		return mc.classCall(e, data, mc.class, true)
	}
	if !mc.hasReceiver() {
		mc.report(diag.SemaUnknownIdentifier, e.Span,
			"constructor `%s` has no receiver to call `%s` on", mc.member.QualifiedName(), data.Method)
		mc.argsUnchecked(data)
		return types.NoTypeID
	}
	return mc.classCall(e, data, mc.class, false)
}

// staticCall handles `Class.Create(args)`.
func (mc *memberChecker) staticCall(e *ast.Expr, data *ast.CallData) types.TypeID {
	name := data.Receiver.Data.(*ast.TypeNameData).Name
	id, code, msg := lookupType(mc.table, mc.module(), name)
	if code != diag.UnknownCode {
		mc.report(code, data.Receiver.Span, "%s", msg)
	}
	if id == types.NoTypeID {
		mc.argsUnchecked(data)
		return types.NoTypeID
	}
	data.Receiver.Type = id
	class := mc.table.Class(id)
	if class == nil {
		mc.report(diag.SemaNotAClassType, data.Receiver.Span, "`%s` is not a class and has no constructors", name)
		mc.argsUnchecked(data)
		return types.NoTypeID
	}
	return mc.classCall(e, data, class, true)
}

func (mc *memberChecker) classCall(e *ast.Expr, data *ast.CallData, class *ast.ClassDecl, static bool) types.TypeID {
	m := class.Member(data.Method)
	if m == nil {
		mc.missingMember(e, class, data.Method)
		mc.argsUnchecked(data)
		return types.NoTypeID
	}
	switch {
	case static && m.Kind != ast.MemberConstructor:
		mc.report(diag.SemaUnknownMember, e.Span, "`%s` is not a constructor of `%s`", data.Method, class.Name)
		mc.argsUnchecked(data)
		return types.NoTypeID
	case !static && m.Kind == ast.MemberConstructor:
		mc.report(diag.SemaConstructorShape, e.Span, "constructor `%s` must be called on the type, not on an instance", m.QualifiedName())
		mc.argsUnchecked(data)
		return types.NoTypeID
	}
	mc.res.addDep(class)

	binding, ok := mc.checkArgs(e, data, m)
	result := m.Result.ID
	if m.IsGeneric() && result == m.ParamType {
		result = binding
	}
	data.Target = ast.CallTarget{
		Kind:   ast.CallDirect,
		Class:  class.Type,
		Member: m,
		Static: static,
		Symbol: ast.MemberSymbol(class.Name, m.Name),
	}
	if !m.IsGeneric() {
		return result
	}
	data.Target.Kind = ast.CallGeneric
	data.Target.Binding = binding
	data.Target.Symbol = ""
	if ok && mc.isConcrete(binding) {
		mc.request(Request{Class: class, Member: m, Concrete: binding, Site: e.Span, Call: e})
	}
	return result
}

// funcCall handles a call of a module function.
func (mc *memberChecker) funcCall(e *ast.Expr, data *ast.CallData, fn *ast.FuncDecl) types.TypeID {
	m := fn.Fn
	mc.res.addDep(fn)
	binding, ok := mc.checkArgs(e, data, m)
	result := m.Result.ID
	if m.IsGeneric() && result == m.ParamType {
		result = binding
	}
	data.Target = ast.CallTarget{
		Kind:   ast.CallDirect,
		Member: m,
		Static: true,
		Symbol: ast.MemberSymbol(fn.Module, fn.Name),
	}
	if !m.IsGeneric() {
		return result
	}
	data.Target.Kind = ast.CallGeneric
	data.Target.Binding = binding
	data.Target.Symbol = ""
	if ok && mc.isConcrete(binding) {
		mc.request(Request{Func: fn, Member: m, Concrete: binding, Site: e.Span, Call: e})
	}
	return result
}

func (mc *memberChecker) interfaceCall(e *ast.Expr, data *ast.CallData, iface types.TypeID) types.TypeID {
	decl := mc.table.Interface(iface)
	sig, idx := decl.Signature(data.Method)
	if sig == nil {
		mc.report(diag.SemaUnknownMember, e.Span, "interface `%s` has no member `%s`", decl.Name, data.Method)
		mc.argsUnchecked(data)
		return types.NoTypeID
	}
	binding, ok := mc.checkArgs(e, data, sig)
	result := sig.Result.ID
	if sig.IsGeneric() && result == sig.ParamType {
		result = binding
	}
	data.Target = ast.CallTarget{
		Kind:      ast.CallInterface,
		Interface: iface,
		Member:    sig,
		Signature: idx,
		Binding:   binding,
	}
	if concrete := mc.knownConcrete(data.Receiver); concrete != types.NoTypeID {
		if class := mc.table.Class(concrete); class != nil && mc.table.Declares(class, iface) {
			data.Target.Class = concrete
			mc.res.addDep(class)
		}
	}
	if !sig.IsGeneric() || !ok || !mc.isConcrete(binding) {
		return result
	}
	implementers := mc.table.Implementers(iface)
	if data.Target.Class != types.NoTypeID {
		implementers = []*ast.ClassDecl{mc.table.Class(data.Target.Class)}
	}
	for _, class := range implementers {
		m := class.Member(data.Method)
		if m == nil || !m.IsGeneric() || m.Kind != ast.MemberMethod {
			// dispatch reports the mismatch
			continue
		}
		mc.request(Request{Class: class, Member: m, Concrete: binding, Site: e.Span})
	}
	return result
}

func (mc *memberChecker) request(r Request) {
	r.Caller = mc.member.QualifiedName()
	if mc.specialization != "" {
		r.Caller = mc.specialization
	}
	mc.res.Requests = append(mc.res.Requests, r)
}

// checkArgs types the arguments against callee's parameters and infers the
// binding of its generic parameter from the first argument declared with
// it. ok is false when the binding could not be inferred.
func (mc *memberChecker) checkArgs(e *ast.Expr, data *ast.CallData, callee *ast.Member) (types.TypeID, bool) {
	if len(data.Args) != len(callee.Params) {
		mc.report(diag.SemaArityMismatch, e.Span, "`%s` takes %d argument(s), got %d",
			callee.QualifiedName(), len(callee.Params), len(data.Args))
		mc.argsUnchecked(data)
		return types.NoTypeID, false
	}
	generic := callee.IsGeneric()
	binding := types.NoTypeID
	inferred := false
	for i, a := range data.Args {
		pt := callee.Params[i].Type.ID
		if generic && pt == callee.ParamType {
			if !inferred {
				binding = mc.expr(a, types.NoTypeID)
				inferred = true
				if binding == types.NoTypeID {
					return types.NoTypeID, false
				}
				if mc.in.Kind(binding) == types.KindVoid {
					mc.report(diag.SemaTypeMismatch, a.Span, "cannot bind `%s` of `%s` to void", callee.TypeParam, callee.QualifiedName())
					return types.NoTypeID, false
				}
				continue
			}
			pt = binding
		}
		at := mc.expr(a, pt)
		if !mc.assignable(pt, at) {
			mc.report(diag.SemaTypeMismatch, a.Span, "argument %d of `%s` expects %s, got %s",
				i+1, callee.QualifiedName(), mc.typeName(pt), mc.typeName(at))
		}
	}
	if generic && !inferred {
		mc.report(diag.SemaTypeMismatch, e.Span, "cannot infer `%s` of `%s` from the arguments", callee.TypeParam, callee.QualifiedName())
		return types.NoTypeID, false
	}
	return binding, true
}

// knownConcrete returns the class a receiver is statically known to hold:
// a local initialized once from a class value and never reassigned.
func (mc *memberChecker) knownConcrete(recv *ast.Expr) types.TypeID {
	if recv == nil || recv.Kind != ast.ExprIdent {
		return types.NoTypeID
	}
	id := recv.Data.(*ast.IdentData)
	if id.Ref != ast.RefLocal {
		return types.NoTypeID
	}
	if l := mc.lookupLocal(id.Name); l != nil && !l.param {
		return l.concrete
	}
	return types.NoTypeID
}

// missingMember reports a call to a member class lacks. When an interface
// signature has that name the class is reported as not satisfying it.
func (mc *memberChecker) missingMember(e *ast.Expr, class *ast.ClassDecl, name string) {
	if iface := mc.unsatisfiedInterfaceFor(class, name); iface != nil {
		mc.report(diag.SemaUnsatisfiedInterface, e.Span, "type `%s` does not satisfy interface `%s`: missing member `%s`",
			class.Name, iface.Name, name)
		return
	}
	mc.report(diag.SemaUnknownMember, e.Span, "type `%s` has no member `%s`", class.Name, name)
}

func (mc *memberChecker) unsatisfiedInterfaceFor(class *ast.ClassDecl, name string) *ast.InterfaceDecl {
	for _, it := range class.Implements {
		id, err := mc.table.Lookup(it.Name)
		if err != nil {
			continue
		}
		if iface := mc.table.Interface(id); iface != nil {
			if sig, _ := iface.Signature(name); sig != nil {
				return iface
			}
		}
	}
	for _, iface := range mc.table.Interfaces() {
		if sig, _ := iface.Signature(name); sig != nil {
			return iface
		}
	}
	return nil
}

func (mc *memberChecker) isConcrete(id types.TypeID) bool {
	switch mc.in.Kind(id) {
	case types.KindInvalid, types.KindParam, types.KindVoid:
		return false
	}
	return true
}
