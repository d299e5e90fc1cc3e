package pipeline

import (
	"cstar/internal/ast"
	"cstar/internal/mono"
	"cstar/internal/types"
)

func (r *runner) addDep(from, to ast.Decl) {
	if from == to || to == nil {
		return
	}
	for _, d := range r.deps[from] {
		if d == to {
			return
		}
	}
	r.deps[from] = append(r.deps[from], to)
}

// refDep records a dependency on the declaration behind a resolved type.
// A struct or union that is not emitted leaves every mention of it dangling.
func (r *runner) refDep(from ast.Decl, id types.TypeID) {
	if id == types.NoTypeID {
		return
	}
	table := r.res.Symbols
	if c := table.Class(id); c != nil {
		r.addDep(from, c)
		return
	}
	if i := table.Interface(id); i != nil {
		r.addDep(from, i)
	}
}

// typeDeps records the declarations named by the types of decl.
func (r *runner) typeDeps(decl ast.Decl) {
	switch d := decl.(type) {
	case *ast.ClassDecl:
		for _, f := range d.Fields {
			r.refDep(d, f.Type.ID)
		}
		for _, m := range d.AllMembers() {
			if !m.IsGeneric() {
				r.memberDeps(d, m)
			}
		}
	case *ast.InterfaceDecl:
		for _, sig := range d.Signatures {
			r.signatureDeps(d, sig)
		}
	case *ast.FuncDecl:
		if !d.Fn.IsGeneric() {
			r.memberDeps(d, d.Fn)
		}
	}
}

func (r *runner) signatureDeps(from ast.Decl, m *ast.Member) {
	for _, p := range m.Params {
		if p.Type.ID != m.ParamType {
			r.refDep(from, p.Type.ID)
		}
	}
	if m.Result.ID != m.ParamType {
		r.refDep(from, m.Result.ID)
	}
}

// memberDeps records the declarations a concrete member body mentions:
// its signature, local types and interfaces it calls through.
func (r *runner) memberDeps(from ast.Decl, m *ast.Member) {
	r.signatureDeps(from, m)
	ast.WalkStmts(m.Body, func(s *ast.Stmt) {
		if data, ok := s.Data.(*ast.LetData); ok {
			r.refDep(from, data.Type.ID)
		}
	})
	for _, call := range ast.Calls(m.Body) {
		data := call.Data.(*ast.CallData)
		if data.Target.Interface != types.NoTypeID {
			r.refDep(from, data.Target.Interface)
		}
		if data.Target.Class != types.NoTypeID {
			r.refDep(from, data.Target.Class)
		}
	}
}

// bodies returns the concrete bodies emitted for decl: non-generic members
// and successful specializations.
func (r *runner) bodies(decl ast.Decl) []*ast.Member {
	var out []*ast.Member
	var specs []*mono.Specialization
	switch d := decl.(type) {
	case *ast.ClassDecl:
		for _, m := range d.AllMembers() {
			if !m.IsGeneric() {
				out = append(out, m)
			}
		}
		specs = r.res.Specializations.OfClass(d)
	case *ast.FuncDecl:
		if !d.Fn.IsGeneric() {
			out = append(out, d.Fn)
		}
		specs = r.res.Specializations.OfFunc(d)
	}
	for _, sp := range specs {
		if !sp.Failed {
			out = append(out, sp.Member)
		}
	}
	return out
}

// taggedDeps makes a declaration depend on every implementer its tagged
// calls may reach: the dispatch thunk exists only when all of them are
// emitted.
func (r *runner) taggedDeps(decl ast.Decl) {
	for _, m := range r.bodies(decl) {
		for _, call := range ast.Calls(m.Body) {
			data := call.Data.(*ast.CallData)
			if data.Target.Kind != ast.CallTagged {
				continue
			}
			desc := r.res.Dispatch.Descriptor(data.Target.Interface)
			if desc == nil {
				continue
			}
			for _, e := range desc.Entries {
				r.addDep(decl, e.Class)
			}
		}
	}
}

func hasGeneric(decl ast.Decl) bool {
	switch d := decl.(type) {
	case *ast.ClassDecl:
		for _, m := range d.Members {
			if m.IsGeneric() {
				return true
			}
		}
	case *ast.FuncDecl:
		return d.Fn.IsGeneric()
	}
	return false
}
