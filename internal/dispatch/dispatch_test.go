package dispatch

import (
	"strings"
	"testing"

	"cstar/internal/ast"
	"cstar/internal/diag"
	"cstar/internal/mono"
	"cstar/internal/sema"
	"cstar/internal/symbols"
	"cstar/internal/testkit"
)

type lowered struct {
	table *symbols.Table
	bag   *diag.Bag
	set   *mono.Set
	res   *Result
}

func lowerProgram(t *testing.T, p *ast.Program, skip ...func(ast.Decl) bool) lowered {
	t.Helper()
	bag := diag.NewBag(0)
	table := symbols.NewTable(symbols.Hints{}, nil, nil)
	symbols.Populate(table, p, diag.BagReporter{Bag: bag}, nil)
	if err := sema.SynthesizeConstructors(table); err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	table.Freeze()
	reporterFor := func(d ast.Decl) diag.Reporter { return diag.BagReporter{Bag: bag, Decl: d.DeclName()} }
	for _, d := range table.Decls() {
		if err := sema.ResolveSignatures(d, sema.Options{Reporter: reporterFor(d), Symbols: table}); err != nil {
			t.Fatalf("signatures: %v", err)
		}
	}
	var reqs []sema.Request
	for _, d := range table.Decls() {
		res, err := sema.ResolveDecl(d, sema.Options{Reporter: reporterFor(d), Symbols: table})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		reqs = append(reqs, res.Requests...)
	}
	set, err := mono.Monomorphize(reqs, mono.Options{
		Symbols:     table,
		ReporterFor: reporterFor,
	})
	if err != nil {
		t.Fatalf("mono: %v", err)
	}
	opts := Options{Symbols: table, Specializations: set, ReporterFor: reporterFor}
	if len(skip) > 0 {
		opts.Skip = skip[0]
	}
	res := Lower(opts)
	return lowered{table: table, bag: bag, set: set, res: res}
}

func (l lowered) class(t *testing.T, name string) *ast.ClassDecl {
	t.Helper()
	id, err := l.table.Lookup(name)
	if err != nil {
		t.Fatalf("lookup %s: %v", name, err)
	}
	return l.table.Class(id)
}

func TestScenarioCDescriptorListsOnlyEnemy(t *testing.T) {
	l := lowerProgram(t, testkit.ScenarioC(false))
	if l.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", l.bag.Items())
	}
	if len(l.res.Descriptors) != 1 {
		t.Fatalf("expected one descriptor, got %d", len(l.res.Descriptors))
	}
	d := l.res.Descriptors[0]
	if d.Interface.Name != "Damageable" || d.Union != "Damageable_Dispatch" {
		t.Fatalf("unexpected descriptor %s/%s", d.Interface.Name, d.Union)
	}
	if len(d.Entries) != 1 || d.Entries[0].Class.Name != "Enemy" {
		t.Fatalf("descriptor must contain only Enemy")
	}
	if d.Entries[0].TagName != "Damageable_Tag_Enemy" || d.Entries[0].Tag != 0 {
		t.Fatalf("unexpected tag %d %s", d.Entries[0].Tag, d.Entries[0].TagName)
	}

	game := l.class(t, "Game")
	hit := ast.Calls(game.Member("Hit").Body)[0].Data.(*ast.CallData)
	if hit.Target.Kind != ast.CallTagged || hit.Target.Symbol != "Damageable_TakeDamage" {
		t.Fatalf("polymorphic call must go through the union, got %+v", hit.Target)
	}
	if len(d.Thunks) != 1 || strings.Join(d.Thunks[0].Targets, ",") != "Enemy_TakeDamage" {
		t.Fatalf("unexpected thunks %+v", d.Thunks)
	}
}

func TestStaticReceiverIsDevirtualized(t *testing.T) {
	b := testkit.NewBuilder("dv.cs")
	iface := b.Interface("Named", b.Sig("Name", "string"))
	dog := b.Class("Dog", []string{"Named"}, nil,
		b.Method("Name", "string", nil, b.Return(b.Str("dog"))),
	)
	user := b.Class("Shelter", nil, nil,
		b.Method("Greet", "string", nil,
			b.Let("n", "Named", b.Call(b.TypeName("Dog"), sema.ImplicitConstructorName)),
			b.Return(b.Call(b.Ident("n"), "Name")),
		),
	)
	l := lowerProgram(t, b.Program(b.Module("", iface, dog, user)))
	if l.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", l.bag.Items())
	}
	calls := ast.Calls(user.Member("Greet").Body)
	target := calls[len(calls)-1].Data.(*ast.CallData).Target
	if target.Kind != ast.CallDirect || target.Symbol != "Dog_Name" {
		t.Fatalf("expected direct call to Dog_Name, got %+v", target)
	}
	if len(l.res.Descriptors[0].Thunks) != 0 {
		t.Fatalf("no thunk is needed for a devirtualized call")
	}
}

func TestUnsatisfiedImplementer(t *testing.T) {
	b := testkit.NewBuilder("u.cs")
	iface := b.Interface("Shape",
		b.Sig("Area", "float64"),
		b.Sig("Scale", "void", b.Param("k", "float64")),
	)
	square := b.Class("Square", []string{"Shape"}, nil,
		b.Method("Area", "float64", nil, b.Return(b.Float("1.0"))),
		b.Method("Scale", "void", testkit.Params(b.Param("k", "float64"))),
	)
	circle := b.Class("Circle", []string{"Shape"}, nil,
		b.Method("Area", "int32", nil, b.Return(b.Int("3"))),
	)
	l := lowerProgram(t, b.Program(b.Module("", iface, square, circle)))
	got := l.bag.ByCode(diag.DispatchUnsatisfiedInterface)
	if len(got) != 2 {
		t.Fatalf("expected two unsatisfied diagnostics, got %v", l.bag.Items())
	}
	for _, d := range got {
		if d.Decl != "Circle" {
			t.Fatalf("diagnostic must belong to Circle, got %q", d.Decl)
		}
	}
	if !strings.Contains(got[0].Message, "`Area` returns int32, the interface expects float64") {
		t.Fatalf("unexpected message %q", got[0].Message)
	}
	if !strings.Contains(got[1].Message, "missing member `Scale`") {
		t.Fatalf("unexpected message %q", got[1].Message)
	}
	d := l.res.Descriptors[0]
	if len(d.Entries) != 1 || d.Entries[0].Class != square {
		t.Fatalf("only Square satisfies Shape")
	}
	if len(l.res.Unsatisfied) != 1 || l.res.Unsatisfied[0] != circle {
		t.Fatalf("Circle must be unsatisfied")
	}
}

func TestNoImplementersWarns(t *testing.T) {
	b := testkit.NewBuilder("n.cs")
	iface := b.Interface("Ghost", b.Sig("Boo", "void"))
	user := b.Class("House", nil, nil,
		b.Method("Haunt", "void", testkit.Params(b.Param("g", "Ghost")), b.Do(b.Call(b.Ident("g"), "Boo"))),
	)
	l := lowerProgram(t, b.Program(b.Module("", iface, user)))
	if l.bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", l.bag.Items())
	}
	if got := l.bag.ByCode(diag.DispatchNoImplementers); len(got) != 1 || got[0].Severity != diag.SevWarning {
		t.Fatalf("expected one warning, got %v", l.bag.Items())
	}
	call := ast.Calls(user.Member("Haunt").Body)[0].Data.(*ast.CallData)
	if call.Target.Kind != ast.CallTagged {
		t.Fatalf("expected tagged call, got %s", call.Target.Kind)
	}
}

func TestGenericSignatureDispatch(t *testing.T) {
	b := testkit.NewBuilder("g.cs")
	iface := b.Interface("Sink", b.GenericSig("Put", "T", "void", b.Param("v", "T")))
	log := b.Class("Log", []string{"Sink"}, nil,
		b.Generic("Put", "T", "void", testkit.Params(b.Param("v", "T"))),
	)
	ints := b.Class("IntSink", []string{"Sink"}, testkit.Fields(b.FieldDefault("last", "int32", b.Int("0"))),
		b.Method("Put", "void", testkit.Params(b.Param("v", "int32")), b.Assign(b.Ident("last"), b.Ident("v"))),
	)
	user := b.Class("Feeder", nil, nil,
		b.Method("Feed", "void", testkit.Params(b.Param("s", "Sink")),
			b.Do(b.Call(b.Ident("s"), "Put", b.Int("1"))),
		),
		b.Method("FeedText", "void", testkit.Params(b.Param("s", "Sink")),
			b.Do(b.Call(b.Ident("s"), "Put", b.Str("x"))),
		),
	)
	l := lowerProgram(t, b.Program(b.Module("", iface, log, ints, user)))
	d := l.res.Descriptors[0]
	if len(d.Entries) != 2 {
		t.Fatalf("both classes satisfy Sink, got %d (%v)", len(d.Entries), l.bag.Items())
	}
	if l.set.Lookup(log.Member("Put"), l.table.Types.Builtins().Int32) == nil {
		t.Fatalf("interface call must request Log.Put specialization")
	}
	feed := ast.Calls(user.Member("Feed").Body)[0].Data.(*ast.CallData)
	if feed.Target.Kind != ast.CallTagged || feed.Target.Symbol != "Sink_Put_int32" {
		t.Fatalf("unexpected target %+v", feed.Target)
	}
	if strings.Join(d.Thunks[0].Targets, ",") != "Log_Put_int32,IntSink_Put" {
		t.Fatalf("unexpected targets %v", d.Thunks[0].Targets)
	}
	errs := l.bag.ByCode(diag.DispatchUnsatisfiedInterface)
	if len(errs) != 1 || errs[0].Decl != "Feeder" || !strings.Contains(errs[0].Message, "only for int32, called with string") {
		t.Fatalf("expected binding mismatch at the string call, got %v", l.bag.Items())
	}
}

func TestDump(t *testing.T) {
	l := lowerProgram(t, testkit.ScenarioC(false))
	var sb strings.Builder
	if err := Dump(&sb, l.res, l.table.Types); err != nil {
		t.Fatalf("dump: %v", err)
	}
	want := "interface Damageable union=Damageable_Dispatch implementers=1\n" +
		"  sig 0 TakeDamage(int32) void\n" +
		"  tag 0 Damageable_Tag_Enemy -> Enemy_TakeDamage\n" +
		"  thunk Damageable_TakeDamage [Enemy_TakeDamage]\n"
	if sb.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", sb.String(), want)
	}
}

func TestFunctionCallsThroughInterface(t *testing.T) {
	b := testkit.NewBuilder("fn.cs")
	iface := b.Interface("Named", b.Sig("Name", "string"))
	dog := b.Class("Dog", []string{"Named"}, nil,
		b.Method("Name", "string", nil, b.Return(b.Str("dog"))),
	)
	greet := b.Func("Greet", "string", testkit.Params(b.Param("n", "Named")),
		b.Return(b.Call(b.Ident("n"), "Name")),
	)
	l := lowerProgram(t, b.Program(b.Module("Zoo", iface, dog, greet)))
	if l.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", l.bag.Items())
	}
	call := ast.Calls(greet.Fn.Body)[0].Data.(*ast.CallData)
	if call.Target.Kind != ast.CallTagged || call.Target.Symbol != "Named_Name" {
		t.Fatalf("function body must be lowered, got %+v", call.Target)
	}
}

func TestSkippedImplementerBlocksFunction(t *testing.T) {
	b := testkit.NewBuilder("fn.cs")
	iface := b.Interface("Named", b.Sig("Name", "string"))
	dog := b.Class("Dog", []string{"Named"}, nil,
		b.Method("Name", "string", nil, b.Return(b.Str("dog"))),
	)
	greet := b.Func("Greet", "string", testkit.Params(b.Param("n", "Named")),
		b.Return(b.Call(b.Ident("n"), "Name")),
	)
	l := lowerProgram(t, b.Program(b.Module("Zoo", iface, dog, greet)),
		func(d ast.Decl) bool { return d == ast.Decl(dog) })
	res := l.res
	by := res.Blocked[greet]
	if len(by) != 1 || by[0] != dog {
		t.Fatalf("Greet must be blocked by Dog, got %v", by)
	}
	if got := len(res.Descriptors[0].Thunks); got != 0 {
		t.Fatalf("no thunk may be kept while a target is missing, got %d", got)
	}
}
