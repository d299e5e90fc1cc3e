package ir

import (
	"cstar/internal/ast"
	"cstar/internal/dispatch"
	"cstar/internal/mono"
	"cstar/internal/symbols"
	"cstar/internal/types"
)

type Input struct {
	Symbols         *symbols.Table
	Specializations *mono.Set
	Dispatch        *dispatch.Result
	// Ready reports declarations that reached ReadyForEmission; nothing
	// else is emitted.
	Ready func(ast.Decl) bool
}

type builder struct {
	in    Input
	types *types.Interner
	prog  *Program
}

// Build flattens every ready declaration. Classes become structs plus one
// function per concrete member and specialization; module functions become
// one function per concrete body; interfaces become tagged unions plus one
// thunk per dispatched signature and binding.
func Build(in Input) *Program {
	if in.Ready == nil {
		in.Ready = func(ast.Decl) bool { return true }
	}
	b := &builder{in: in, types: in.Symbols.Types, prog: &Program{}}
	for _, class := range in.Symbols.Classes() {
		if in.Ready(class) {
			b.class(class)
		}
	}
	for _, fn := range in.Symbols.Functions() {
		if in.Ready(fn) {
			b.function(fn)
		}
	}
	if in.Dispatch != nil {
		for _, d := range in.Dispatch.Descriptors {
			if in.Ready(d.Interface) {
				b.union(d)
			}
		}
	}
	return b.prog
}

// CType renders the C spelling of a resolved type: classes travel by
// pointer, interfaces as their dispatch union.
func CType(in *types.Interner, table *symbols.Table, id types.TypeID) string {
	switch in.Kind(id) {
	case types.KindClass:
		c := table.Class(id)
		return ast.StructSymbol(c.Module, c.Name) + "*"
	case types.KindInterface:
		return ast.DispatchUnionName(table.Interface(id).Name)
	}
	return in.CName(id)
}

func (b *builder) ctype(id types.TypeID) string {
	return CType(b.types, b.in.Symbols, id)
}

func (b *builder) class(class *ast.ClassDecl) {
	st := &Struct{Name: ast.StructSymbol(class.Module, class.Name), Class: class}
	for _, f := range class.Fields {
		st.Fields = append(st.Fields, Field{Name: f.Name, Type: f.Type.ID, CType: b.ctype(f.Type.ID)})
	}
	b.prog.Structs = append(b.prog.Structs, st)

	for _, m := range class.AllMembers() {
		if m.IsGeneric() {
			continue
		}
		kind := FuncMethod
		if m.Kind == ast.MemberConstructor {
			kind = FuncConstructor
		}
		var self *ast.ClassDecl
		if kind == FuncMethod {
			self = class
		}
		b.prog.Funcs = append(b.prog.Funcs, b.fn(kind, ast.MemberSymbol(class.Name, m.Name), self, m, ""))
	}
	for _, sp := range b.in.Specializations.OfClass(class) {
		if sp.Failed {
			continue
		}
		b.prog.Funcs = append(b.prog.Funcs, b.fn(FuncSpecialization, sp.Symbol, class, sp.Member, sp.Origin.QualifiedName()))
	}
}

func (b *builder) function(fn *ast.FuncDecl) {
	if !fn.Fn.IsGeneric() {
		b.prog.Funcs = append(b.prog.Funcs, b.fn(FuncModule, ast.MemberSymbol(fn.Module, fn.Name), nil, fn.Fn, ""))
	}
	for _, sp := range b.in.Specializations.OfFunc(fn) {
		if sp.Failed {
			continue
		}
		b.prog.Funcs = append(b.prog.Funcs, b.fn(FuncModule, sp.Symbol, nil, sp.Member, sp.Origin.QualifiedName()))
	}
}

// fn lowers one concrete body; self is the receiver class or nil.
func (b *builder) fn(kind FuncKind, name string, self *ast.ClassDecl, m *ast.Member, origin string) *Func {
	f := &Func{Kind: kind, Name: name, Member: m, Origin: origin, Result: m.Result.ID, CResult: b.ctype(m.Result.ID)}
	if self != nil {
		f.Params = append(f.Params, Param{Name: "self", Type: self.Type, CType: b.ctype(self.Type)})
	}
	for _, p := range m.Params {
		f.Params = append(f.Params, Param{Name: p.Name, Type: p.Type.ID, CType: b.ctype(p.Type.ID)})
	}
	return f
}

func (b *builder) union(d *dispatch.Descriptor) {
	u := &Union{Name: d.Union, Interface: d.Interface}
	ready := make([]bool, len(d.Entries))
	for i, e := range d.Entries {
		ready[i] = b.in.Ready(e.Class)
		if !ready[i] {
			continue
		}
		u.Tags = append(u.Tags, Tag{Name: e.TagName, Value: e.Tag, Struct: ast.StructSymbol(e.Class.Module, e.Class.Name)})
	}
	b.prog.Unions = append(b.prog.Unions, u)

	for _, th := range d.Thunks {
		sig := d.Signatures[th.Signature]
		result := sig.Result.ID
		if sig.IsGeneric() && result == sig.ParamType {
			result = th.Binding
		}
		f := &Func{Kind: FuncThunk, Name: th.Symbol, Member: sig, Result: result, CResult: b.ctype(result)}
		f.Params = append(f.Params, Param{Name: "self", Type: d.Interface.Type, CType: d.Union})
		for _, p := range sig.Params {
			pt := p.Type.ID
			if sig.IsGeneric() && pt == sig.ParamType {
				pt = th.Binding
			}
			f.Params = append(f.Params, Param{Name: p.Name, Type: pt, CType: b.ctype(pt)})
		}
		complete := true
		for i, e := range d.Entries {
			if !ready[i] {
				complete = false
				continue
			}
			f.Cases = append(f.Cases, Case{Tag: e.TagName, Target: th.Targets[i]})
		}
		if !complete {
			// callers of this thunk were blocked by the missing implementer
			continue
		}
		b.prog.Funcs = append(b.prog.Funcs, f)
	}
}
