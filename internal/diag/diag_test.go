package diag

import (
	"testing"

	"cstar/internal/source"
)

func at(file source.FileID, line, col uint32) source.Span {
	return source.Span{File: file, Start: source.LineCol{Line: line, Col: col}, End: source.LineCol{Line: line, Col: col}}
}

func TestBagLimitAndCounts(t *testing.T) {
	b := NewBag(2)
	if !b.Add(NewError(SemaUnknownType, at(0, 1, 1), "a")) {
		t.Fatalf("first add must succeed")
	}
	b.Add(New(SevWarning, SemaFieldShadowsType, at(0, 2, 1), "b"))
	if b.Add(NewError(SemaUnknownType, at(0, 3, 1), "c")) {
		t.Fatalf("add beyond limit must fail")
	}
	if !b.HasErrors() || !b.HasWarnings() {
		t.Fatalf("expected errors and warnings")
	}
	if got := b.Count(SevError); got != 1 {
		t.Fatalf("Count(SevError) = %d", got)
	}
}

func TestBagReporterStampsDecl(t *testing.T) {
	b := NewBag(0)
	r := BagReporter{Bag: b, Decl: "Player"}
	ReportError(r, SemaIncompleteInitialization, at(0, 4, 2), "field `y` is not assigned").
		WithNote(at(0, 1, 1), "declared here").
		Emit()
	items := b.ByDecl("Player")
	if len(items) != 1 {
		t.Fatalf("expected one diagnostic for Player, got %d", len(items))
	}
	if items[0].Code != SemaIncompleteInitialization || len(items[0].Notes) != 1 {
		t.Fatalf("unexpected diagnostic %+v", items[0])
	}
}

func TestDedupReporter(t *testing.T) {
	b := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: b})
	for i := 0; i < 3; i++ {
		r.Report(SemaUnknownType, SevError, at(0, 1, 1), "unknown type `Foo`", nil)
	}
	if b.Len() != 1 {
		t.Fatalf("expected 1 diagnostic after dedup, got %d", b.Len())
	}
	if got := r.Suppressed(); got != 2 {
		t.Fatalf("Suppressed() = %d, want 2", got)
	}
	r.Report(SemaUnknownType, SevWarning, at(0, 1, 1), "unknown type `Foo`", nil)
	if b.Len() != 2 {
		t.Fatalf("a different severity is a different diagnostic")
	}
}

func TestFormatGoldenDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	f := fs.Add("game.cs")
	diags := []Diagnostic{
		NewError(SemaTypeMismatch, at(f, 9, 3), "field `x` expects int32, got string"),
		NewError(SemaUnknownType, at(f, 2, 5), "unknown type `Vec`").WithNote(at(f, 1, 1), "used\nhere"),
	}
	got := FormatGoldenDiagnostics(diags, fs, true)
	want := "note SEM3002 game.cs:1:1 used here\n" +
		"error SEM3002 game.cs:2:5 unknown type `Vec`\n" +
		"error SEM3004 game.cs:9:3 field `x` expects int32, got string"
	if got != want {
		t.Fatalf("golden mismatch:\n%s\nwant:\n%s", got, want)
	}
}

func TestCodeID(t *testing.T) {
	cases := map[Code]string{
		InvalidAST:                   "AST1001",
		ModImportCycle:               "MOD2004",
		SemaTypeMismatch:             "SEM3004",
		MonoUnsubstitutableBody:      "MON4001",
		DispatchUnsatisfiedInterface: "DSP5001",
		PipeBlockedByDependency:      "PIP6001",
	}
	for code, want := range cases {
		if code.ID() != want {
			t.Fatalf("%d.ID() = %s, want %s", code, code.ID(), want)
		}
	}
}
