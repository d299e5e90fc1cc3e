package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for the builtin scalar types.
type Builtins struct {
	Invalid TypeID
	Void    TypeID
	Bool    TypeID
	Char    TypeID
	String  TypeID
	Int8    TypeID
	Int16   TypeID
	Int32   TypeID
	Int64   TypeID
	Uint8   TypeID
	Uint16  TypeID
	Uint32  TypeID
	Uint64  TypeID
	Float32 TypeID
	Float64 TypeID
}

// Interner provides stable TypeIDs for scalar descriptors and allocates
// nominal slots for classes, interfaces and generic parameters.
type Interner struct {
	types      []Type
	index      map[typeKey]TypeID
	builtins   Builtins
	byName     map[string]TypeID
	classes    []NominalInfo
	interfaces []NominalInfo
	params     []ParamInfo
	frozen     bool
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:  make(map[typeKey]TypeID, 32),
		byName: make(map[string]TypeID, 32),
	}
	in.classes = append(in.classes, NominalInfo{}) // reserve 0 as invalid sentinel
	in.interfaces = append(in.interfaces, NominalInfo{})
	in.params = append(in.params, ParamInfo{})

	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Void = in.builtin("void", Type{Kind: KindVoid})
	in.builtins.Bool = in.builtin("bool", Type{Kind: KindBool})
	in.builtins.Char = in.builtin("char", Type{Kind: KindChar})
	in.builtins.String = in.builtin("string", Type{Kind: KindString})
	in.builtins.Int8 = in.builtin("int8", MakeInt(Width8))
	in.builtins.Int16 = in.builtin("int16", MakeInt(Width16))
	in.builtins.Int32 = in.builtin("int32", MakeInt(Width32))
	in.builtins.Int64 = in.builtin("int64", MakeInt(Width64))
	in.builtins.Uint8 = in.builtin("uint8", MakeUint(Width8))
	in.builtins.Uint16 = in.builtin("uint16", MakeUint(Width16))
	in.builtins.Uint32 = in.builtin("uint32", MakeUint(Width32))
	in.builtins.Uint64 = in.builtin("uint64", MakeUint(Width64))
	in.builtins.Float32 = in.builtin("float32", MakeFloat(Width32))
	in.builtins.Float64 = in.builtin("float64", MakeFloat(Width64))

	// short spellings accepted by the source language
	in.byName["int"] = in.builtins.Int32
	in.byName["uint"] = in.builtins.Uint32
	in.byName["byte"] = in.builtins.Uint8
	in.byName["float"] = in.builtins.Float32
	in.byName["double"] = in.builtins.Float64
	return in
}

func (in *Interner) builtin(name string, t Type) TypeID {
	id := in.Intern(t)
	in.byName[name] = id
	return id
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Builtin resolves a scalar type name or alias.
func (in *Interner) Builtin(name string) (TypeID, bool) {
	id, ok := in.byName[name]
	return id, ok
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	if in.frozen {
		panic("types: intern after freeze")
	}
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[typeKey(t)] = id
	return id
}

// Freeze forbids further registrations; afterwards the interner is safe for
// concurrent readers.
func (in *Interner) Freeze() {
	in.frozen = true
}

// Frozen reports whether Freeze was called.
func (in *Interner) Frozen() bool {
	return in.frozen
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Kind returns the kind of id, KindInvalid for unknown ids.
func (in *Interner) Kind(id TypeID) Kind {
	tt, _ := in.Lookup(id)
	return tt.Kind
}

type typeKey Type
