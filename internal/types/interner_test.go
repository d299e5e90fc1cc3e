package types

import "testing"

func TestInternerBuiltinsAndAliases(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	cases := map[string]TypeID{
		"int":     b.Int32,
		"int32":   b.Int32,
		"uint":    b.Uint32,
		"byte":    b.Uint8,
		"float":   b.Float32,
		"double":  b.Float64,
		"float64": b.Float64,
		"string":  b.String,
	}
	for name, want := range cases {
		got, ok := in.Builtin(name)
		if !ok || got != want {
			t.Fatalf("Builtin(%q) = %d,%v want %d", name, got, ok, want)
		}
	}
	if in.Intern(MakeInt(Width32)) != b.Int32 {
		t.Fatalf("interning an existing descriptor must return the same id")
	}
}

func TestNominalRegistration(t *testing.T) {
	in := NewInterner()
	enemy := in.RegisterClass("Enemy", spanZero())
	other := in.RegisterClass("Enemy", spanZero())
	if enemy == other {
		t.Fatalf("nominal types must get distinct ids")
	}
	iface := in.RegisterInterface("Damageable", spanZero())
	param := in.RegisterParam("T", "Enemy.TakeDamage")
	if in.Name(enemy) != "Enemy" || in.Name(iface) != "Damageable" || in.Name(param) != "T" {
		t.Fatalf("unexpected names %q %q %q", in.Name(enemy), in.Name(iface), in.Name(param))
	}
	if _, ok := in.ClassInfo(iface); ok {
		t.Fatalf("interface must not report class info")
	}
	if in.Family(param) != FamilyParam || in.Family(enemy) != FamilyNominal {
		t.Fatalf("unexpected families")
	}
}

func TestNamesAndCNames(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	cases := []struct {
		id    TypeID
		name  string
		cname string
	}{
		{b.Int32, "int32", "int32_t"},
		{b.Uint8, "uint8", "uint8_t"},
		{b.Float32, "float32", "float"},
		{b.Float64, "float64", "double"},
		{b.String, "string", "char*"},
		{b.Bool, "bool", "bool"},
	}
	for _, tc := range cases {
		if got := in.Name(tc.id); got != tc.name {
			t.Fatalf("Name = %q want %q", got, tc.name)
		}
		if got := in.CName(tc.id); got != tc.cname {
			t.Fatalf("CName = %q want %q", got, tc.cname)
		}
	}
	if in.Name(NoTypeID) != "<unresolved>" {
		t.Fatalf("NoTypeID must render as unresolved")
	}
}

func TestFreezePanicsOnRegister(t *testing.T) {
	in := NewInterner()
	in.Freeze()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic after freeze")
		}
	}()
	in.RegisterClass("Late", spanZero())
}
