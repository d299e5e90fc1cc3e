package types

import (
	"fmt"

	"fortio.org/safecast"

	"cstar/internal/source"
)

// NominalInfo stores metadata for a class or interface type.
type NominalInfo struct {
	Name string
	Decl source.Span
}

// ParamInfo describes a member's generic type parameter. Owner is the
// member identity ("Enemy.TakeDamage") the parameter is scoped to.
type ParamInfo struct {
	Name  string
	Owner string
}

// RegisterClass allocates a nominal class type slot and returns its TypeID.
func (in *Interner) RegisterClass(name string, decl source.Span) TypeID {
	slot := appendSlot(&in.classes, NominalInfo{Name: name, Decl: decl})
	return in.internRaw(Type{Kind: KindClass, Payload: slot})
}

// RegisterInterface allocates a nominal interface type slot.
func (in *Interner) RegisterInterface(name string, decl source.Span) TypeID {
	slot := appendSlot(&in.interfaces, NominalInfo{Name: name, Decl: decl})
	return in.internRaw(Type{Kind: KindInterface, Payload: slot})
}

// RegisterParam allocates a generic parameter type local to owner.
func (in *Interner) RegisterParam(name, owner string) TypeID {
	slot := appendSlot(&in.params, ParamInfo{Name: name, Owner: owner})
	return in.internRaw(Type{Kind: KindParam, Payload: slot})
}

// ClassInfo returns metadata for the provided class TypeID.
func (in *Interner) ClassInfo(id TypeID) (NominalInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindClass || int(tt.Payload) >= len(in.classes) {
		return NominalInfo{}, false
	}
	return in.classes[tt.Payload], true
}

// InterfaceInfo returns metadata for the provided interface TypeID.
func (in *Interner) InterfaceInfo(id TypeID) (NominalInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindInterface || int(tt.Payload) >= len(in.interfaces) {
		return NominalInfo{}, false
	}
	return in.interfaces[tt.Payload], true
}

// ParamInfo returns metadata for a generic parameter TypeID.
func (in *Interner) ParamInfo(id TypeID) (ParamInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindParam || int(tt.Payload) >= len(in.params) {
		return ParamInfo{}, false
	}
	return in.params[tt.Payload], true
}

func appendSlot[T any](slots *[]T, v T) uint32 {
	n, err := safecast.Conv[uint32](len(*slots))
	if err != nil {
		panic(fmt.Errorf("nominal slots overflow: %w", err))
	}
	*slots = append(*slots, v)
	return n
}
