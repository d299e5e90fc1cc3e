package pipeline

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"

	"cstar/internal/ast"
	"cstar/internal/diag"
	"cstar/internal/ir"
	"cstar/internal/layout"
	"cstar/internal/mono"
	"cstar/internal/source"
	"cstar/internal/testkit"
)

func run(t *testing.T, prog *ast.Program, opts Options) *Result {
	t.Helper()
	res, err := Run(context.Background(), prog, opts)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return res
}

func funcNames(p *ir.Program) []string {
	out := make([]string, 0, len(p.Funcs))
	for _, f := range p.Funcs {
		out = append(out, f.Name)
	}
	return out
}

func structNames(p *ir.Program) []string {
	out := make([]string, 0, len(p.Structs))
	for _, s := range p.Structs {
		out = append(out, s.Name)
	}
	return out
}

func contains(list []string, name string) bool {
	for _, s := range list {
		if s == name {
			return true
		}
	}
	return false
}

func wantState(t *testing.T, res *Result, name string, want State) *DeclState {
	t.Helper()
	st := res.State(name)
	if st == nil {
		t.Fatalf("no state for %s", name)
	}
	if st.State != want {
		t.Fatalf("%s: expected %s, got %s (history %v)", name, want, st.State, st.History)
	}
	return st
}

func TestScenarioAReachesEmission(t *testing.T) {
	prog := testkit.ScenarioA()
	res := run(t, prog, Options{})
	if !res.OK() {
		t.Fatalf("unexpected errors:\n%s", diag.FormatGoldenDiagnostics(res.Bag.Items(), prog.Files, true))
	}
	st := wantState(t, res, "Player", StateReadyForEmission)
	want := []State{StateDeclared, StateTypeResolved, StateInterfaceLowered, StateReadyForEmission}
	if !reflect.DeepEqual(st.History, want) {
		t.Fatalf("history: got %v, want %v", st.History, want)
	}
	if err := testkit.CheckResolved(prog); err != nil {
		t.Fatalf("unresolved annotations: %v", err)
	}
	if got := structNames(res.IR); !reflect.DeepEqual(got, []string{"RpgGame_Player"}) {
		t.Fatalf("structs: %v", got)
	}
	if got := funcNames(res.IR); !reflect.DeepEqual(got, []string{"Player_Create"}) {
		t.Fatalf("funcs: %v", got)
	}
	if player := res.IR.Structs[0]; player.Size != 12 || player.Align != 4 || player.Fields[2].Offset != 8 {
		t.Fatalf("layout: size %d align %d", player.Size, player.Align)
	}
}

func TestTargetChangesUnionLayout(t *testing.T) {
	res := run(t, testkit.ScenarioC(false), Options{Target: layout.I686LinuxGNU()})
	if !res.OK() {
		t.Fatalf("unexpected errors %+v", res.Bag.Items())
	}
	if u := res.IR.Unions[0]; u.Size != 8 || u.Align != 4 {
		t.Fatalf("union layout: size %d align %d", u.Size, u.Align)
	}
}

func TestScenarioBFailsPlayerOnly(t *testing.T) {
	prog := testkit.ScenarioB()
	res := run(t, prog, Options{})
	if res.OK() || res.Errors != 1 {
		t.Fatalf("expected one error, got %d", res.Errors)
	}
	st := wantState(t, res, "Player", StateFailed)
	if st.Stage != StageResolve {
		t.Fatalf("expected failure in resolve, got %s", st.Stage)
	}
	d := res.Bag.ByCode(diag.SemaIncompleteInitialization)
	if len(d) != 1 || d[0].Decl != "Player" || !strings.Contains(d[0].Message, "`y`") {
		t.Fatalf("unexpected diagnostics %+v", d)
	}
	if len(res.IR.Structs) != 0 || len(res.IR.Funcs) != 0 {
		t.Fatalf("failed class must not be emitted")
	}
}

func TestZeroInitKeepsPlayer(t *testing.T) {
	res := run(t, testkit.ScenarioB(), Options{ZeroInit: true})
	if !res.OK() {
		t.Fatalf("expected success with zero init")
	}
	wantState(t, res, "Player", StateReadyForEmission)
	if len(res.Bag.ByCode(diag.SemaIncompleteInitialization)) != 1 {
		t.Fatalf("expected the incomplete initialization warning")
	}
}

func TestScenarioCDispatch(t *testing.T) {
	res := run(t, testkit.ScenarioC(false), Options{})
	if !res.OK() {
		t.Fatalf("unexpected errors %+v", res.Bag.Items())
	}
	for _, name := range []string{"Damageable", "Enemy", "Player", "Game"} {
		wantState(t, res, name, StateReadyForEmission)
	}
	funcs := funcNames(res.IR)
	for _, want := range []string{"Enemy_TakeDamage", "Game_Run", "Game_Hit", "Damageable_TakeDamage"} {
		if !contains(funcs, want) {
			t.Fatalf("missing %s in %v", want, funcs)
		}
	}
	if len(res.IR.Unions) != 1 || res.IR.Unions[0].Name != "Damageable_Dispatch" {
		t.Fatalf("unexpected unions %+v", res.IR.Unions)
	}
}

func TestScenarioCMisuseFailsCallerOnly(t *testing.T) {
	res := run(t, testkit.ScenarioC(true), Options{})
	st := wantState(t, res, "Game", StateFailed)
	if st.Stage != StageResolve {
		t.Fatalf("expected failure in resolve, got %s", st.Stage)
	}
	for _, name := range []string{"Damageable", "Enemy", "Player"} {
		wantState(t, res, name, StateReadyForEmission)
	}
	d := res.Bag.ByCode(diag.SemaUnsatisfiedInterface)
	if len(d) != 1 || d[0].Decl != "Game" {
		t.Fatalf("unexpected diagnostics %+v", res.Bag.Items())
	}
	if contains(funcNames(res.IR), "Game_Run") {
		t.Fatalf("failed Game must not be emitted")
	}
}

func TestScenarioDInstantiates(t *testing.T) {
	res := run(t, testkit.ScenarioD(), Options{})
	if !res.OK() {
		t.Fatalf("unexpected errors %+v", res.Bag.Items())
	}
	st := wantState(t, res, "Enemy", StateReadyForEmission)
	want := []State{StateDeclared, StateTypeResolved, StateGenericInstantiated, StateInterfaceLowered, StateReadyForEmission}
	if !reflect.DeepEqual(st.History, want) {
		t.Fatalf("history: got %v, want %v", st.History, want)
	}
	funcs := funcNames(res.IR)
	if !contains(funcs, "Enemy_TakeDamage_int32") || !contains(funcs, "Enemy_TakeDamage_float64") {
		t.Fatalf("missing specializations in %v", funcs)
	}
	if contains(funcs, "Enemy_TakeDamage") {
		t.Fatalf("generic template must not be emitted: %v", funcs)
	}
	if res.Specializations.Len() != 2 {
		t.Fatalf("expected 2 specializations, got %d", res.Specializations.Len())
	}
}

// isolationProgram: Broken misses a field, User calls it, Top holds a
// User, Other is unrelated.
func isolationProgram() *ast.Program {
	b := testkit.NewBuilder("iso.cs")
	broken := b.Class("Broken", nil, testkit.Fields(b.Field("n", "int32")),
		b.Ctor("Create", nil,
			b.Let("x", "", b.New("")),
			b.Return(b.Ident("x")),
		),
	)
	user := b.Class("User", nil, nil,
		b.Method("Use", "void", nil,
			b.Let("k", "", b.Call(b.TypeName("Broken"), "Create")),
		),
	)
	top := b.Class("Top", nil, testkit.Fields(b.Field("u", "User")))
	other := b.Class("Other", nil, testkit.Fields(b.Field("v", "int32")),
		b.Ctor("Make", testkit.Params(b.Param("v", "int32")),
			b.Let("o", "", b.New("")),
			b.Assign(b.Sel(b.Ident("o"), "v"), b.Ident("v")),
			b.Return(b.Ident("o")),
		),
	)
	return b.Program(b.Module("Iso", broken, user, top, other))
}

func TestFailureIsolationAndBlocking(t *testing.T) {
	res := run(t, isolationProgram(), Options{Jobs: 2})
	if res.Errors != 1 {
		t.Fatalf("expected exactly one error, got %+v", res.Bag.Items())
	}
	wantState(t, res, "Broken", StateFailed)
	user := wantState(t, res, "User", StateBlocked)
	if !reflect.DeepEqual(user.BlockedBy, []string{"Broken"}) {
		t.Fatalf("User blocked by %v", user.BlockedBy)
	}
	top := wantState(t, res, "Top", StateBlocked)
	if !reflect.DeepEqual(top.BlockedBy, []string{"User"}) {
		t.Fatalf("Top blocked by %v", top.BlockedBy)
	}
	wantState(t, res, "Other", StateReadyForEmission)

	blocked := res.Bag.ByCode(diag.PipeBlockedByDependency)
	if len(blocked) != 2 || blocked[0].Decl != "User" || blocked[0].Severity != diag.SevInfo {
		t.Fatalf("unexpected blocked notes %+v", blocked)
	}
	if want := "`User` is halted because it depends on `Broken`, which cannot be emitted"; blocked[0].Message != want {
		t.Fatalf("message: got %q", blocked[0].Message)
	}
	if got := structNames(res.IR); !reflect.DeepEqual(got, []string{"Iso_Other"}) {
		t.Fatalf("structs: %v", got)
	}
}

// twoDispatchCallers has a failing implementer of Damageable and two
// classes calling Hit through the interface.
func twoDispatchCallers() *ast.Program {
	b := testkit.NewBuilder("callers.cs")
	damageable := b.Interface("Damageable", b.Sig("Hit", "void"))
	implementer := func(name string, assignHP bool) *ast.ClassDecl {
		stmts := []*ast.Stmt{b.Let("x", "", b.New(""))}
		if assignHP {
			stmts = append(stmts, b.Assign(b.Sel(b.Ident("x"), "hp"), b.Int("1")))
		}
		stmts = append(stmts, b.Return(b.Ident("x")))
		return b.Class(name, []string{"Damageable"}, testkit.Fields(b.Field("hp", "int32")),
			b.Ctor("Create", nil, stmts...),
			b.Method("Hit", "void", nil),
		)
	}
	caller := func(name string) *ast.ClassDecl {
		return b.Class(name, nil, nil,
			b.Method("Go", "void", testkit.Params(b.Param("d", "Damageable")),
				b.Do(b.Call(b.Ident("d"), "Hit")),
			),
		)
	}
	return b.Program(b.Module("Game", damageable, implementer("Bad", false), implementer("Good", true), caller("C1"), caller("C2")))
}

func TestFailedImplementerBlocksEveryDispatchCaller(t *testing.T) {
	res := run(t, twoDispatchCallers(), Options{})
	if res.Errors != 1 {
		t.Fatalf("expected one error, got %+v", res.Bag.Items())
	}
	wantState(t, res, "Bad", StateFailed)
	wantState(t, res, "Good", StateReadyForEmission)
	for _, name := range []string{"C1", "C2"} {
		st := wantState(t, res, name, StateBlocked)
		if !reflect.DeepEqual(st.BlockedBy, []string{"Bad"}) {
			t.Fatalf("%s blocked by %v", name, st.BlockedBy)
		}
	}
	if funcs := funcNames(res.IR); contains(funcs, "C1_Go") || contains(funcs, "C2_Go") {
		t.Fatalf("blocked callers emitted: %v", funcs)
	}
}

func TestEmittedSymbolCollisionFailsOnlyItsOwner(t *testing.T) {
	other := func(b *testkit.Builder) *ast.ClassDecl {
		return b.Class("Other", nil, nil, b.Method("Ping", "void", nil))
	}
	t.Run("specialization", func(t *testing.T) {
		b := testkit.NewBuilder("collide.cs")
		enemy := b.Class("Enemy", nil, nil,
			b.Generic("TakeDamage", "T", "void", testkit.Params(b.Param("amount", "T"))),
			b.Method("TakeDamage_int32", "void", testkit.Params(b.Param("amount", "int32"))),
			b.Method("Hit", "void", testkit.Params(b.Param("v", "int32")),
				b.Do(b.Call(nil, "TakeDamage", b.Ident("v"))),
			),
		)
		res := run(t, b.Program(b.Module("Game", enemy, other(b))), Options{})
		if res.Errors != 1 || len(res.Bag.ByCode(diag.MonoSymbolCollision)) != 1 {
			t.Fatalf("expected one collision, got %+v", res.Bag.Items())
		}
		wantState(t, res, "Enemy", StateFailed)
		wantState(t, res, "Other", StateReadyForEmission)
		if funcs := funcNames(res.IR); !contains(funcs, "Other_Ping") || contains(funcs, "Enemy_TakeDamage_int32") {
			t.Fatalf("unexpected functions %v", funcs)
		}
	})
	t.Run("members", func(t *testing.T) {
		b := testkit.NewBuilder("collide.cs")
		first := b.Class("A_B", nil, nil, b.Method("C", "void", nil))
		second := b.Class("A", nil, nil, b.Method("B_C", "void", nil))
		res := run(t, b.Program(b.Module("Game", first, second, other(b))), Options{})
		d := res.Bag.ByCode(diag.SemaDuplicateDeclaration)
		if res.Errors != 1 || len(d) != 1 || d[0].Decl != "A" {
			t.Fatalf("expected one collision on A, got %+v", res.Bag.Items())
		}
		if d[0].Message != "member `A.B_C` is emitted as `A_B_C`, which member `A_B.C` already uses" {
			t.Fatalf("unexpected message %q", d[0].Message)
		}
		wantState(t, res, "A_B", StateReadyForEmission)
		wantState(t, res, "A", StateFailed)
		wantState(t, res, "Other", StateReadyForEmission)
		if funcs := funcNames(res.IR); !contains(funcs, "A_B_C") || !contains(funcs, "Other_Ping") {
			t.Fatalf("unexpected functions %v", funcs)
		}
	})
}

func TestEmptyBodiesAgainstSignatures(t *testing.T) {
	b := testkit.NewBuilder("empty.cs")
	shape := b.Interface("Shape", b.Sig("Area", "float64"), b.Sig("Reset", "void"))
	hollow := b.Class("Hollow", []string{"Shape"}, nil,
		b.Method("Area", "float64", nil),
		b.Method("Reset", "void", nil),
	)
	solid := b.Class("Solid", []string{"Shape"}, nil,
		b.Method("Area", "float64", nil, b.Return(b.Float("1.0"))),
		b.Method("Reset", "void", nil),
	)
	res := run(t, b.Program(b.Module("Geo", shape, hollow, solid)), Options{})
	d := res.Bag.ByCode(diag.SemaMissingReturn)
	if res.Errors != 1 || len(d) != 1 || d[0].Decl != "Hollow" {
		t.Fatalf("expected a missing return on Hollow, got %+v", res.Bag.Items())
	}
	wantState(t, res, "Hollow", StateFailed)
	wantState(t, res, "Solid", StateReadyForEmission)
	// an empty block is a body; the missing return is the only finding
	if len(res.Dispatch.Unsatisfied) != 0 || len(res.Bag.ByCode(diag.DispatchUnsatisfiedInterface)) != 0 {
		t.Fatalf("empty bodies must not count as missing members: %+v", res.Bag.Items())
	}
	if funcs := funcNames(res.IR); !contains(funcs, "Solid_Reset") || contains(funcs, "Hollow_Area") {
		t.Fatalf("unexpected functions %v", funcs)
	}
}

func TestDuplicateDeclarationFailsSecond(t *testing.T) {
	b := testkit.NewBuilder("dup.cs")
	first := b.Class("A", nil, nil)
	second := b.Class("A", nil, nil)
	res := run(t, b.Program(b.Module("Dup", first, second)), Options{})
	if res.States[0].State != StateReadyForEmission {
		t.Fatalf("first A: %s", res.States[0].State)
	}
	if res.States[1].State != StateFailed || res.States[1].Stage != StageSymbols {
		t.Fatalf("second A: %s at %s", res.States[1].State, res.States[1].Stage)
	}
	d := res.Bag.ByCode(diag.SemaDuplicateDeclaration)
	if len(d) != 1 || d[0].Primary != second.Span || d[0].Decl != "A" {
		t.Fatalf("unexpected diagnostics %+v", d)
	}
}

func snapshot(t *testing.T, res *Result) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString(diag.FormatGoldenDiagnostics(res.Bag.Items(), res.Program.Files, true))
	for _, st := range res.States {
		sb.WriteString(st.Decl.DeclName() + " " + st.State.String() + "\n")
	}
	if err := mono.Dump(&sb, res.Specializations, res.Program.Files, res.Symbols.Types); err != nil {
		t.Fatalf("mono dump: %v", err)
	}
	if err := ir.Dump(&sb, res.IR); err != nil {
		t.Fatalf("ir dump: %v", err)
	}
	return sb.String()
}

func TestDeterministicAcrossJobs(t *testing.T) {
	fixtures := map[string]func() *ast.Program{
		"A":         testkit.ScenarioA,
		"B":         testkit.ScenarioB,
		"C":         func() *ast.Program { return testkit.ScenarioC(false) },
		"C-misuse":  func() *ast.Program { return testkit.ScenarioC(true) },
		"D":         testkit.ScenarioD,
		"modules":   testkit.ScenarioModules,
		"isolation": isolationProgram,
	}
	for name, build := range fixtures {
		t.Run(name, func(t *testing.T) {
			serial := snapshot(t, run(t, build(), Options{Jobs: 1}))
			for i := 0; i < 3; i++ {
				if got := snapshot(t, run(t, build(), Options{Jobs: 8})); got != serial {
					t.Fatalf("run %d differs:\n--- serial\n%s\n--- parallel\n%s", i, serial, got)
				}
			}
		})
	}
}

func TestInvalidASTIsFatal(t *testing.T) {
	b := testkit.NewBuilder("bad.cs")
	ctor := b.Ctor("Create", nil, b.Return(b.New("")))
	ctor.TypeParam = "T"
	prog := b.Program(b.Module("Bad", b.Class("C", nil, nil, ctor)))
	res, err := Run(context.Background(), prog, Options{})
	if err == nil || res != nil {
		t.Fatalf("expected fatal error, got %v", err)
	}
	if !errors.Is(err, ast.ErrInvalidAST) {
		t.Fatalf("expected ErrInvalidAST, got %v", err)
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, testkit.ScenarioA(), Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestProgressEvents(t *testing.T) {
	var stages []Stage
	var player []State
	sink := SinkFunc(func(e Event) {
		switch {
		case e.Decl == "" && e.Status == StatusDone:
			stages = append(stages, e.Stage)
		case e.Decl == "Player":
			player = append(player, e.State)
		}
	})
	run(t, testkit.ScenarioA(), Options{Progress: sink})
	if !reflect.DeepEqual(stages, Stages) {
		t.Fatalf("stages: got %v", stages)
	}
	want := []State{StateTypeResolved, StateInterfaceLowered, StateReadyForEmission}
	if !reflect.DeepEqual(player, want) {
		t.Fatalf("player states: got %v", player)
	}
}

func TestMaxDiagnosticsCapsBagNotErrors(t *testing.T) {
	res := run(t, isolationProgram(), Options{MaxDiagnostics: 1})
	if res.Bag.Len() != 1 {
		t.Fatalf("expected capped bag, got %d", res.Bag.Len())
	}
	if res.Errors != 1 || res.OK() {
		t.Fatalf("error count must survive the cap")
	}
}

func TestModuleFunctionsReachEmission(t *testing.T) {
	prog := testkit.ScenarioModules()
	res := run(t, prog, Options{})
	if !res.OK() {
		t.Fatalf("unexpected errors:\n%s", diag.FormatGoldenDiagnostics(res.Bag.Items(), prog.Files, true))
	}
	attack := wantState(t, res, "Attack", StateReadyForEmission)
	if !reflect.DeepEqual(attack.History, []State{
		StateDeclared, StateTypeResolved, StateGenericInstantiated, StateInterfaceLowered, StateReadyForEmission,
	}) {
		t.Fatalf("Attack history: %v", attack.History)
	}
	wantState(t, res, "Update", StateReadyForEmission)
	if err := testkit.CheckResolved(prog); err != nil {
		t.Fatalf("unresolved annotations: %v", err)
	}
	if got := structNames(res.IR); !reflect.DeepEqual(got, []string{"RpgGame_Enemy", "GameLogic_Player"}) {
		t.Fatalf("structs: %v", got)
	}
	want := []string{"Enemy_TakeDamage", "Enemy_Create", "Player_Create", "RpgGame_Attack_Enemy", "GameLogic_Update"}
	if got := funcNames(res.IR); !reflect.DeepEqual(got, want) {
		t.Fatalf("funcs: got %v, want %v", got, want)
	}
	update := res.IR.Funcs[4]
	if update.Kind != ir.FuncModule || len(update.Params) != 1 || update.Params[0].Name != "p" {
		t.Fatalf("module function must take no receiver: %+v", update.Params)
	}
	spec := res.IR.Funcs[3]
	if spec.Kind != ir.FuncModule || spec.Origin != "RpgGame.Attack" || spec.Params[0].CType != "RpgGame_Enemy*" {
		t.Fatalf("unexpected specialization %+v", spec)
	}
}

func TestFailedClassBlocksFunction(t *testing.T) {
	b := testkit.NewBuilder("fn.cs")
	broken := b.Class("Broken", nil, testkit.Fields(b.Field("v", "int32")),
		b.Ctor("Create", nil, b.Let("x", "", b.New("")), b.Return(b.Ident("x"))),
	)
	use := b.Func("Use", "void", nil, b.Let("x", "", b.Call(b.TypeName("Broken"), "Create")))
	other := b.Func("Other", "int32", nil, b.Return(b.Int("1")))
	res := run(t, b.Program(b.Module("Iso", broken, use, other)), Options{})
	if res.Errors != 1 {
		t.Fatalf("expected one error, got %+v", res.Bag.Items())
	}
	wantState(t, res, "Broken", StateFailed)
	st := wantState(t, res, "Use", StateBlocked)
	if !reflect.DeepEqual(st.BlockedBy, []string{"Broken"}) {
		t.Fatalf("Use blocked by %v", st.BlockedBy)
	}
	wantState(t, res, "Other", StateReadyForEmission)
	if got := funcNames(res.IR); !reflect.DeepEqual(got, []string{"Iso_Other"}) {
		t.Fatalf("funcs: %v", got)
	}
}

func TestImportProblemsAreRunLevel(t *testing.T) {
	b := testkit.NewBuilder("mods.cs")
	a := b.Use(b.Module("A", b.Class("X", nil, nil)), "B", "Missing")
	bm := b.Use(b.Module("B", b.Class("Y", nil, nil)), "A")
	res := run(t, b.Program(a, bm), Options{})
	cycle := res.Bag.ByCode(diag.ModImportCycle)
	if len(cycle) != 1 || cycle[0].Decl != "" || cycle[0].Message != "cyclic module imports: A -> B -> A" {
		t.Fatalf("unexpected cycle diagnostics %+v", cycle)
	}
	if got := res.Bag.ByCode(diag.ModImportUnknown); len(got) != 1 {
		t.Fatalf("expected unknown import, got %+v", res.Bag.Items())
	}
	if res.Errors != 2 || res.OK() {
		t.Fatalf("import errors must count, got %d", res.Errors)
	}
	wantState(t, res, "X", StateReadyForEmission)
	wantState(t, res, "Y", StateReadyForEmission)
}

func TestDuplicateAttributedWithoutPositions(t *testing.T) {
	b := testkit.NewBuilder("nopos.cs")
	first := b.Class("A", nil, nil)
	second := b.Class("A", nil, nil)
	other := b.Class("B", nil, nil)
	for _, c := range []*ast.ClassDecl{first, second, other} {
		c.Span = source.Span{}
	}
	res := run(t, b.Program(b.Module("NoPos", first, second, other)), Options{})
	if res.States[1].State != StateFailed {
		t.Fatalf("second A: %s", res.States[1].State)
	}
	if res.States[0].State != StateReadyForEmission || res.States[2].State != StateReadyForEmission {
		t.Fatalf("first A and B must survive: %s, %s", res.States[0].State, res.States[2].State)
	}
}

func TestReporterListsRepeatsOnce(t *testing.T) {
	r := &runner{
		bag:       diag.NewBag(0),
		errs:      make(map[ast.Decl]int),
		reporters: make(map[ast.Decl]*diag.DedupReporter),
	}
	d := &ast.ClassDecl{Name: "A"}
	for i := 0; i < 2; i++ {
		diag.ReportError(r.reporter(d), diag.SemaUnknownType, source.Span{}, "unknown type `X`").Emit()
	}
	if r.bag.Len() != 1 || r.errs[d] != 1 {
		t.Fatalf("repeat must be listed and counted once: bag %d, errors %d", r.bag.Len(), r.errs[d])
	}
	if r.suppressed() != 1 {
		t.Fatalf("expected one suppressed repeat, got %d", r.suppressed())
	}
	if r.bag.Items()[0].Decl != "A" {
		t.Fatalf("diagnostic must keep its declaration")
	}
}
