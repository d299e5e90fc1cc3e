// Package layout computes the C memory layout of the emitted structs and
// dispatch unions for one target.
package layout

import (
	"cstar/internal/types"
)

// TypeLayout is the ABI layout of a value for a specific Target.
type TypeLayout struct {
	Size  int
	Align int

	// Struct-only:
	FieldOffsets []int

	// Dispatch unions: the enum tag comes first, the payload pointer after it.
	TagSize       int
	PayloadOffset int
}

// Engine computes memory layout for values stored in emitted structs.
// It is not safe for concurrent use.
type Engine struct {
	Target Target
	Types  *types.Interner

	cache *cache
}

func New(target Target, typesIn *types.Interner) *Engine {
	return &Engine{
		Target: target,
		Types:  typesIn,
		cache:  newCache(),
	}
}

// LayoutOf returns the layout of a value of type t as it appears in a
// field or parameter: classes travel by pointer, interfaces by their
// dispatch union.
func (e *Engine) LayoutOf(t types.TypeID) (TypeLayout, error) {
	l, err := e.layoutOf(t)
	if err != nil {
		return l, err
	}
	return l, nil
}

func (e *Engine) layoutOf(t types.TypeID) (TypeLayout, *Error) {
	if e == nil {
		return TypeLayout{Size: 0, Align: 1}, nil
	}
	if e.cache == nil {
		e.cache = newCache()
	}
	if cached, ok := e.cache.get(t); ok {
		return cached.Layout, cached.Err
	}
	l, err := e.computeLayout(t)
	e.cache.put(t, cacheEntry{Layout: l, Err: err})
	return l, err
}

func (e *Engine) SizeOf(t types.TypeID) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Size, err
}

func (e *Engine) AlignOf(t types.TypeID) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Align, err
}

// StructOf lays out fields of the given types in order, C style: each
// field at the next offset aligned for it, the total padded to the
// largest alignment. An empty struct has size 0.
func (e *Engine) StructOf(fields []types.TypeID) (TypeLayout, error) {
	out := TypeLayout{Align: 1, FieldOffsets: make([]int, 0, len(fields))}
	off := 0
	for _, f := range fields {
		fl, err := e.layoutOf(f)
		if err != nil {
			return TypeLayout{}, err
		}
		off = roundUp(off, fl.Align)
		out.FieldOffsets = append(out.FieldOffsets, off)
		off += fl.Size
		out.Align = maxInt(out.Align, fl.Align)
	}
	out.Size = roundUp(off, out.Align)
	return out, nil
}

// DispatchUnion is the layout shared by every interface dispatch union.
func (e *Engine) DispatchUnion() TypeLayout {
	ptr := e.ptrLayout()
	tag := scalarLayoutBytes(e.Target.TagSize)
	payload := roundUp(tag.Size, ptr.Align)
	align := maxInt(tag.Align, ptr.Align)
	return TypeLayout{
		Size:          roundUp(payload+ptr.Size, align),
		Align:         align,
		TagSize:       tag.Size,
		PayloadOffset: payload,
	}
}
