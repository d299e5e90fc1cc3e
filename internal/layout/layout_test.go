package layout

import (
	"errors"
	"strings"
	"testing"

	"cstar/internal/ir"
	"cstar/internal/source"
	"cstar/internal/types"
)

func TestScalarLayouts(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	e := New(X86_64LinuxGNU(), in)
	cases := []struct {
		name  string
		id    types.TypeID
		size  int
		align int
	}{
		{"bool", b.Bool, 1, 1},
		{"char", b.Char, 1, 1},
		{"int16", b.Int16, 2, 2},
		{"uint32", b.Uint32, 4, 4},
		{"float64", b.Float64, 8, 8},
		{"string", b.String, 8, 8},
		{"class", in.RegisterClass("Enemy", source.Span{}), 8, 8},
		{"interface", in.RegisterInterface("Damageable", source.Span{}), 16, 8},
	}
	for _, tc := range cases {
		l, err := e.LayoutOf(tc.id)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if l.Size != tc.size || l.Align != tc.align {
			t.Fatalf("%s: got size %d align %d, want %d/%d", tc.name, l.Size, l.Align, tc.size, tc.align)
		}
	}
}

func TestStructPadding(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	e := New(X86_64LinuxGNU(), in)
	l, err := e.StructOf([]types.TypeID{b.Int8, b.Int32, b.Int64, b.Bool})
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	want := []int{0, 4, 8, 16}
	for i, off := range want {
		if l.FieldOffsets[i] != off {
			t.Fatalf("field %d at %d, want %d", i, l.FieldOffsets[i], off)
		}
	}
	if l.Size != 24 || l.Align != 8 {
		t.Fatalf("got size %d align %d, want 24/8", l.Size, l.Align)
	}

	empty, err := e.StructOf(nil)
	if err != nil || empty.Size != 0 || empty.Align != 1 {
		t.Fatalf("empty struct: %+v %v", empty, err)
	}
}

func TestDispatchUnionFollowsTarget(t *testing.T) {
	in := types.NewInterner()
	u64 := New(X86_64LinuxGNU(), in).DispatchUnion()
	if u64.Size != 16 || u64.Align != 8 || u64.TagSize != 4 || u64.PayloadOffset != 8 {
		t.Fatalf("x86_64 union: %+v", u64)
	}
	u32 := New(I686LinuxGNU(), in).DispatchUnion()
	if u32.Size != 8 || u32.Align != 4 || u32.PayloadOffset != 4 {
		t.Fatalf("i686 union: %+v", u32)
	}
}

func TestGenericParamHasNoLayout(t *testing.T) {
	in := types.NewInterner()
	param := in.RegisterParam("T", "Enemy.TakeDamage")
	e := New(X86_64LinuxGNU(), in)
	_, err := e.LayoutOf(param)
	var lerr *Error
	if !errors.As(err, &lerr) || lerr.Kind != ErrGenericParam {
		t.Fatalf("expected generic param error, got %v", err)
	}
	// cached failures stay failures
	if _, err := e.SizeOf(param); err == nil {
		t.Fatalf("second query lost the error")
	}
	if _, err := e.LayoutOf(in.Builtins().Void); err == nil {
		t.Fatalf("void must have no value layout")
	}
}

func TestAnnotate(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	enemy := in.RegisterClass("Enemy", source.Span{})
	dmg := in.RegisterInterface("Damageable", source.Span{})
	p := &ir.Program{
		Structs: []*ir.Struct{{Name: "GameLogic_Game", Fields: []ir.Field{
			{Name: "round", Type: b.Int16, CType: "int16_t"},
			{Name: "boss", Type: enemy, CType: "GameLogic_Enemy*"},
			{Name: "target", Type: dmg, CType: "Damageable_Dispatch"},
			{Name: "alive", Type: b.Bool, CType: "bool"},
		}}},
		Unions: []*ir.Union{{Name: "Damageable_Dispatch"}},
	}
	if err := Annotate(p, New(X86_64LinuxGNU(), in)); err != nil {
		t.Fatalf("annotate: %v", err)
	}
	st := p.Structs[0]
	if st.Size != 40 || st.Align != 8 {
		t.Fatalf("struct: size %d align %d", st.Size, st.Align)
	}
	for i, off := range []int{0, 8, 16, 32} {
		if st.Fields[i].Offset != off {
			t.Fatalf("%s at %d, want %d", st.Fields[i].Name, st.Fields[i].Offset, off)
		}
	}
	if p.Unions[0].Size != 16 || p.Unions[0].Align != 8 {
		t.Fatalf("union: %+v", p.Unions[0])
	}

	var sb strings.Builder
	if err := ir.Dump(&sb, p); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if !strings.Contains(sb.String(), "struct GameLogic_Game { // size 40, align 8\n") ||
		!strings.Contains(sb.String(), "target; // +16\n") {
		t.Fatalf("dump misses layout:\n%s", sb.String())
	}
}

func TestAnnotateNamesBadField(t *testing.T) {
	in := types.NewInterner()
	p := &ir.Program{Structs: []*ir.Struct{{Name: "Box", Fields: []ir.Field{
		{Name: "v", Type: in.RegisterParam("T", "Box.Put")},
	}}}}
	err := Annotate(p, New(X86_64LinuxGNU(), in))
	if err == nil || !strings.Contains(err.Error(), "struct Box field v") {
		t.Fatalf("expected field error, got %v", err)
	}
}
