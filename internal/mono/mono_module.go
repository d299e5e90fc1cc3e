package mono

import (
	"cstar/internal/ast"
	"cstar/internal/types"
)

// Specialization is one concrete copy of a generic member. Exactly one of
// Class and Func is set.
type Specialization struct {
	Key    Key
	Class  *ast.ClassDecl
	Func   *ast.FuncDecl
	Origin *ast.Member
	// Member is the resolved clone; it is not generic.
	Member *ast.Member
	Symbol string
	Depth  int
	// Failed specializations are cached so that the key is reported once.
	Failed bool
}

// Owner returns the class or function the specialization belongs to.
func (sp *Specialization) Owner() ast.Decl {
	if sp.Func != nil {
		return sp.Func
	}
	return sp.Class
}

// Set holds every specialization created for a program.
type Set struct {
	Uses  *InstantiationMap
	byKey map[Key]*Specialization
	order []*Specialization
	owner map[ast.Decl][]*Specialization
}

func newSet() *Set {
	return &Set{
		Uses:  NewInstantiationMap(),
		byKey: make(map[Key]*Specialization),
		owner: make(map[ast.Decl][]*Specialization),
	}
}

func (s *Set) add(sp *Specialization) {
	s.byKey[sp.Key] = sp
	s.order = append(s.order, sp)
	s.owner[sp.Owner()] = append(s.owner[sp.Owner()], sp)
}

// Lookup returns the specialization of member for concrete, if any.
func (s *Set) Lookup(member *ast.Member, concrete types.TypeID) *Specialization {
	if s == nil {
		return nil
	}
	return s.byKey[Key{Member: member, Concrete: concrete}]
}

// All returns specializations in creation order.
func (s *Set) All() []*Specialization {
	if s == nil {
		return nil
	}
	return s.order
}

// OfClass returns the specializations registered under class in creation
// order, failed ones included.
func (s *Set) OfClass(class *ast.ClassDecl) []*Specialization {
	if s == nil {
		return nil
	}
	return s.owner[class]
}

// OfFunc returns the specializations of a generic module function in
// creation order, failed ones included.
func (s *Set) OfFunc(fn *ast.FuncDecl) []*Specialization {
	if s == nil {
		return nil
	}
	return s.owner[fn]
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}
