package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestStreamTracerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)
	pass := Begin(tr, ScopePass, "resolve", 0)
	decl := BeginDecl(tr, "Player", pass.ID())
	decl.End("")
	pass.With("decls", "3").With("jobs", "2").End("ok")

	out := buf.String()
	if strings.Contains(out, "Player") {
		t.Fatalf("declaration span leaked at phase level:\n%s", out)
	}
	if !strings.Contains(out, "→ resolve\n") || !strings.Contains(out, "← resolve (ok) decls=3 jobs=2\n") {
		t.Fatalf("missing pass span:\n%s", out)
	}
}

func TestDeclSpansAtDetail(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)
	root := Begin(tr, ScopeDriver, "check", 0)
	BeginDecl(tr, "Enemy", root.ID()).End("ok")
	DeclPoint(tr, "blocked", "Game", root.ID())
	root.End("")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got:\n%s", buf.String())
	}
	if !strings.HasSuffix(lines[1], "    → decl Enemy") || !strings.HasSuffix(lines[3], "    • blocked Game") {
		t.Fatalf("unexpected declaration lines:\n%s", buf.String())
	}
}

func TestNDJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatNDJSON)
	DeclPoint(tr, "blocked", "Game", 0)
	line := strings.TrimSpace(buf.String())
	for _, want := range []string{`"kind":"point"`, `"scope":"decl"`, `"decl":"Game"`, `"name":"blocked"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("ndjson line %q lacks %s", line, want)
		}
	}
}

func TestRingTracerKeepsLastEvents(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(ring, ScopePass, name, "", 0)
	}
	snap := ring.Snapshot()
	if len(snap) != 2 || snap[0].Name != "b" || snap[1].Name != "c" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap[0].Seq >= snap[1].Seq {
		t.Fatalf("sequence out of order: %d, %d", snap[0].Seq, snap[1].Seq)
	}
}

func TestErrorLevelFeedsOnlyTheRing(t *testing.T) {
	var buf bytes.Buffer
	ring := NewRingTracer(8, LevelError)
	multi := NewMultiTracer(LevelError, NewStreamTracer(&buf, LevelError, FormatText), ring)
	BeginDecl(multi, "Player", 0).End("error")
	if buf.Len() != 0 {
		t.Fatalf("error level wrote events:\n%s", buf.String())
	}
	if got := len(ring.Snapshot()); got != 2 {
		t.Fatalf("ring holds %d events, want 2", got)
	}
}

func TestNewAndRingOf(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf, RingSize: 4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if RingOf(tr) == nil {
		t.Fatalf("both mode must carry a ring")
	}
	off, err := New(Config{Level: LevelOff, Mode: ModeStream})
	if err != nil || off != Nop || RingOf(off) != nil {
		t.Fatalf("off must be Nop, got %v %v", off, err)
	}
	if d := Begin(off, ScopeDriver, "check", 0).With("k", "v").End(""); d != 0 {
		t.Fatalf("nop span measured time")
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("expected Nop without a tracer")
	}
	ring := NewRingTracer(4, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	if FromContext(ctx) != Tracer(ring) {
		t.Fatalf("tracer not propagated")
	}
	ctx = WithSpanContext(ctx, SpanContext{SpanID: 7})
	if CurrentSpan(ctx).SpanID != 7 {
		t.Fatalf("span context lost")
	}
}

func TestParseLevelAndMode(t *testing.T) {
	if lvl, err := ParseLevel("Detail"); err != nil || lvl != LevelDetail {
		t.Fatalf("ParseLevel: %v %v", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if m, err := ParseMode("both"); err != nil || m != ModeBoth || m.String() != "both" {
		t.Fatalf("ParseMode: %v %v", m, err)
	}
	if LevelPhase.ShouldEmit(ScopeDecl) || !LevelDebug.ShouldEmit(ScopeDecl) || LevelError.ShouldEmit(ScopeDriver) {
		t.Fatalf("unexpected level filtering")
	}
}
