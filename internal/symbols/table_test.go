package symbols

import (
	"testing"

	"github.com/cockroachdb/errors"

	"cstar/internal/ast"
	"cstar/internal/diag"
	"cstar/internal/testkit"
	"cstar/internal/types"
)

func newTable() *Table {
	return NewTable(Hints{}, nil, nil)
}

func TestDeclareAndLookup(t *testing.T) {
	b := testkit.NewBuilder("game.cs")
	player := b.Class("Player", nil, testkit.Fields(b.Field("health", "int32")),
		b.Method("Heal", "void", nil))
	tbl := newTable()
	if _, err := tbl.Declare("GameLogic", player); err != nil {
		t.Fatalf("declare: %v", err)
	}
	id, err := tbl.Lookup("Player")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if id != player.Type || player.Module != "GameLogic" {
		t.Fatalf("declaration not annotated: type=%d module=%q", player.Type, player.Module)
	}
	if player.Members[0].Owner != "Player" {
		t.Fatalf("member owner = %q", player.Members[0].Owner)
	}
	if got, err := tbl.Lookup("int"); err != nil || got != tbl.Types.Builtins().Int32 {
		t.Fatalf("builtin alias lookup failed: %d %v", got, err)
	}
}

func TestDeclareDuplicate(t *testing.T) {
	b := testkit.NewBuilder("game.cs")
	tbl := newTable()
	if _, err := tbl.Declare("", b.Class("Enemy", nil, nil)); err != nil {
		t.Fatalf("first declare: %v", err)
	}
	_, err := tbl.Declare("", b.Interface("Enemy"))
	if !errors.Is(err, ErrDuplicateDeclaration) {
		t.Fatalf("expected ErrDuplicateDeclaration, got %v", err)
	}
	_, err = tbl.Declare("", b.Class("int32", nil, nil))
	if !errors.Is(err, ErrDuplicateDeclaration) {
		t.Fatalf("builtin names must be reserved, got %v", err)
	}
}

func TestLookupUnknown(t *testing.T) {
	tbl := newTable()
	if _, err := tbl.Lookup("Vector3"); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestMembersOf(t *testing.T) {
	b := testkit.NewBuilder("game.cs")
	enemy := b.Class("Enemy", []string{"Damageable"}, nil,
		b.Method("TakeDamage", "void", testkit.Params(b.Param("amount", "int32"))))
	iface := b.Interface("Damageable", b.Sig("TakeDamage", "void", b.Param("amount", "int32")))
	tbl := newTable()
	for _, d := range []ast.Decl{enemy, iface} {
		if _, err := tbl.Declare("", d); err != nil {
			t.Fatalf("declare %s: %v", d.DeclName(), err)
		}
	}
	tbl.Freeze()

	members, err := tbl.MembersOf(enemy.Type)
	if err != nil || len(members) != 1 || members[0].Name != "TakeDamage" {
		t.Fatalf("MembersOf(Enemy) = %v, %v", members, err)
	}
	if _, err := tbl.MembersOf(iface.Type); !errors.Is(err, ErrNotAClassType) {
		t.Fatalf("MembersOf(interface) must fail, got %v", err)
	}
	if _, err := tbl.MembersOf(tbl.Types.Builtins().Int32); !errors.Is(err, ErrNotAClassType) {
		t.Fatalf("MembersOf(int32) must fail, got %v", err)
	}
	impls := tbl.Implementers(iface.Type)
	if len(impls) != 1 || impls[0] != enemy || !tbl.Declares(enemy, iface.Type) {
		t.Fatalf("implementers index = %v", impls)
	}
}

func TestFreezeRejectsDeclare(t *testing.T) {
	b := testkit.NewBuilder("game.cs")
	tbl := newTable()
	tbl.Freeze()
	if _, err := tbl.Declare("", b.Class("Late", nil, nil)); !errors.Is(err, ErrTableFrozen) {
		t.Fatalf("expected ErrTableFrozen, got %v", err)
	}
}

func TestGenericMemberGetsParamType(t *testing.T) {
	b := testkit.NewBuilder("game.cs")
	m := b.Generic("TakeDamage", "T", "void", testkit.Params(b.Param("amount", "T")))
	tbl := newTable()
	if _, err := tbl.Declare("", b.Class("Enemy", nil, nil, m)); err != nil {
		t.Fatalf("declare: %v", err)
	}
	if tbl.Types.Kind(m.ParamType) != types.KindParam {
		t.Fatalf("generic parameter not registered")
	}
	sym, ok := tbl.SymbolOf(m)
	if !ok || sym.Flags&SymbolFlagGeneric == 0 {
		t.Fatalf("member symbol missing generic flag")
	}
}

func TestPopulateReportsDuplicates(t *testing.T) {
	b := testkit.NewBuilder("game.cs")
	first := b.Class("Player", nil, nil)
	second := b.Class("Player", nil, nil)
	prog := b.Program(b.Module("GameLogic", first, second))
	bag := diag.NewBag(0)
	tbl := newTable()
	rejected := Populate(tbl, prog, diag.BagReporter{Bag: bag}, nil)
	if len(rejected) != 1 || rejected[0] != second {
		t.Fatalf("expected the second declaration to be rejected, got %v", rejected)
	}
	if got := bag.ByCode(diag.SemaDuplicateDeclaration); len(got) != 1 {
		t.Fatalf("expected one duplicate diagnostic, got %d", len(got))
	}
}

func TestFunctionsAndVisibility(t *testing.T) {
	b := testkit.NewBuilder("mods.cs")
	enemy := b.Class("Enemy", nil, nil)
	logFn := b.Func("Log", "void", nil)
	rpg := b.Module("RpgGame", enemy, logFn)
	hub := b.Use(b.Module("Hub", b.Class("Relay", nil, nil)), "pub RpgGame")
	app := b.Use(b.Module("App", b.Func("Run", "void", nil)), "Hub")
	lone := b.Module("Lone", b.Func("Enemy", "void", nil))
	bag := diag.NewBag(0)
	tbl := newTable()
	if rejected := Populate(tbl, b.Program(rpg, hub, app, lone), diag.BagReporter{Bag: bag}, nil); len(rejected) != 0 {
		t.Fatalf("unexpected rejections %v (%v)", rejected, bag.Items())
	}
	tbl.Freeze()

	for _, tc := range []struct {
		from, to string
		want     bool
	}{
		{"App", "Hub", true},
		{"App", "RpgGame", true},
		{"Hub", "RpgGame", true},
		{"RpgGame", "Hub", false},
		{"Lone", "RpgGame", false},
	} {
		if got := tbl.Visible(tc.from, tc.to); got != tc.want {
			t.Fatalf("Visible(%s, %s) = %v", tc.from, tc.to, got)
		}
	}

	if id, err := tbl.LookupFrom("App", "Enemy"); err != nil || id != enemy.Type {
		t.Fatalf("re-exported type: %d %v", id, err)
	}
	id, err := tbl.LookupFrom("Lone", "Enemy")
	if !errors.Is(err, ErrNotImported) || id != enemy.Type {
		t.Fatalf("expected ErrNotImported with the type, got %d %v", id, err)
	}
	if _, err := tbl.LookupFrom("Lone", "int32"); err != nil {
		t.Fatalf("builtins are visible everywhere: %v", err)
	}

	if fn := tbl.Function("RpgGame", "Log"); fn != logFn || fn.Module != "RpgGame" || fn.Fn.Owner != "RpgGame" {
		t.Fatalf("function not annotated: %+v", fn)
	}
	if got := tbl.FunctionsFrom("App", "Log"); len(got) != 1 || got[0] != logFn {
		t.Fatalf("App must reach Log, got %v", got)
	}
	if got := tbl.FunctionsFrom("Lone", "Log"); len(got) != 0 {
		t.Fatalf("Lone must not reach Log, got %v", got)
	}
	if tbl.Function("Lone", "Enemy") == nil {
		t.Fatalf("functions and types live in separate namespaces")
	}
	if got := len(tbl.Functions()); got != 3 {
		t.Fatalf("expected 3 functions, got %d", got)
	}
}

func TestDuplicateFunction(t *testing.T) {
	b := testkit.NewBuilder("dup.cs")
	tbl := newTable()
	if _, err := tbl.Declare("Util", b.Func("Log", "void", nil)); err != nil {
		t.Fatalf("declare: %v", err)
	}
	if _, err := tbl.Declare("Other", b.Func("Log", "void", nil)); err != nil {
		t.Fatalf("same name in another module: %v", err)
	}
	_, err := tbl.Declare("Util", b.Func("Log", "void", nil))
	if !errors.Is(err, ErrDuplicateDeclaration) {
		t.Fatalf("expected ErrDuplicateDeclaration, got %v", err)
	}
}

func TestCheckImports(t *testing.T) {
	b := testkit.NewBuilder("imports.cs")
	a := b.Use(b.Module("A"), "A", "B", "B", "Nowhere")
	bm := b.Use(b.Module("B"), "C")
	c := b.Use(b.Module("C"), "A")
	// a second node of A merges into the first
	again := b.Module("A")
	bag := diag.NewBag(0)
	tbl := newTable()
	Populate(tbl, b.Program(a, bm, c, again), diag.BagReporter{Bag: bag}, nil)
	tbl.Freeze()

	if got := tbl.Modules(); len(got) != 3 {
		t.Fatalf("expected 3 modules, got %v", got)
	}
	want := []diag.Code{diag.ModImportSelf, diag.ModImportDuplicate, diag.ModImportUnknown, diag.ModImportCycle}
	items := bag.Items()
	if len(items) != len(want) {
		t.Fatalf("expected %v, got %v", want, items)
	}
	for i, code := range want {
		if items[i].Code != code {
			t.Fatalf("diagnostic %d: expected %s, got %s (%s)", i, code.ID(), items[i].Code.ID(), items[i].Message)
		}
	}
	if items[0].Severity != diag.SevWarning || items[1].Severity != diag.SevWarning || items[3].Severity != diag.SevError {
		t.Fatalf("unexpected severities %v", items)
	}
	if items[3].Message != "cyclic module imports: A -> B -> C -> A" || items[3].Primary != c.Imports[0].Span {
		t.Fatalf("unexpected cycle diagnostic %+v", items[3])
	}
}

func TestClaimSymbol(t *testing.T) {
	b := testkit.NewBuilder("claims.cs")
	hit := b.Method("Hit", "void", nil)
	enemy := b.Class("Enemy", nil, nil, hit)
	other := b.Class("Enemy_Hit", nil, nil)
	tbl := newTable()
	first := Claim{Decl: enemy, Member: hit, Span: hit.Span, What: "member `Enemy.Hit`"}
	if _, ok := tbl.ClaimSymbol("Enemy_Hit", first); !ok {
		t.Fatalf("first claim must succeed")
	}
	if _, ok := tbl.ClaimSymbol("Enemy_Hit", first); !ok {
		t.Fatalf("repeated claim by the same member must succeed")
	}
	prev, ok := tbl.ClaimSymbol("Enemy_Hit", Claim{Decl: other, What: "constructor `Enemy_Hit`"})
	if ok || prev.Decl != enemy || prev.What != first.What {
		t.Fatalf("expected the earlier claim back, got %+v %v", prev, ok)
	}
	if c, ok := tbl.SymbolOwner("Enemy_Hit"); !ok || c.Member != hit {
		t.Fatalf("owner = %+v %v", c, ok)
	}
}
