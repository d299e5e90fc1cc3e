// Package dispatch lowers interfaces. Each interface gets a descriptor
// listing its implementers with stable tags; interface calls become direct
// calls when the receiver's class is known and tagged-union dispatch
// otherwise. No vtables are produced.
package dispatch

import (
	"cstar/internal/ast"
	"cstar/internal/types"
)

// Entry pairs an implementing class with its member for every signature.
type Entry struct {
	Class   *ast.ClassDecl
	Tag     int
	TagName string
	// Methods[i] implements Signatures[i] of the descriptor. A generic
	// signature maps to the generic member template of the class.
	Methods []*ast.Member
	// Bindings[i] is set when a generic signature is implemented by a
	// concrete member; only that binding can be dispatched to it.
	Bindings []types.TypeID
}

// Thunk is a dispatch function switching on the union tag for one
// signature and binding.
type Thunk struct {
	Signature int
	Binding   types.TypeID
	Symbol    string
	// Targets[i] is the function called for Entries[i].
	Targets []string
}

// Descriptor is the lowered form of one interface.
type Descriptor struct {
	Interface  *ast.InterfaceDecl
	Signatures []*ast.Member
	Entries    []*Entry
	Union      string
	Thunks     []*Thunk
}

// Entry returns the entry of class, or nil when class is not a satisfying
// implementer.
func (d *Descriptor) Entry(class *ast.ClassDecl) *Entry {
	for _, e := range d.Entries {
		if e.Class == class {
			return e
		}
	}
	return nil
}

func (d *Descriptor) thunk(sig int, binding types.TypeID) *Thunk {
	for _, t := range d.Thunks {
		if t.Signature == sig && t.Binding == binding {
			return t
		}
	}
	return nil
}

// Result holds the descriptors of every interface in declaration order.
type Result struct {
	Descriptors []*Descriptor
	byType      map[types.TypeID]*Descriptor
	// Unsatisfied lists classes that declare an interface they do not
	// fully implement.
	Unsatisfied []*ast.ClassDecl
	// Blocked maps a class or function to the failed classes its calls
	// dispatch to.
	Blocked map[ast.Decl][]*ast.ClassDecl
}

// Descriptor returns the descriptor of the interface type iface.
func (r *Result) Descriptor(iface types.TypeID) *Descriptor {
	if r == nil {
		return nil
	}
	return r.byType[iface]
}

func (r *Result) markUnsatisfied(class *ast.ClassDecl) {
	for _, c := range r.Unsatisfied {
		if c == class {
			return
		}
	}
	r.Unsatisfied = append(r.Unsatisfied, class)
}
