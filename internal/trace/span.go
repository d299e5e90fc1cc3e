package trace

import (
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// NextSeq numbers events in the order tracers accept them.
func NextSeq() uint64 { return seqCounter.Add(1) }

func nextSpanID() uint64 { return spanCounter.Add(1) }

// Span is an open span. The zero of a disabled tracer is a valid Span whose
// methods do nothing.
type Span struct {
	tracer  Tracer
	begin   Event
	started time.Time
	attrs   []Attr
}

// Begin opens a span under parent (0 for a root) and emits its begin event.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	return begin(t, scope, name, "", parent)
}

// BeginDecl opens the span of one declaration.
func BeginDecl(t Tracer, decl string, parent uint64) *Span {
	return begin(t, ScopeDecl, "decl", decl, parent)
}

func begin(t Tracer, scope Scope, name, decl string, parent uint64) *Span {
	if t == nil || !t.Enabled() || !t.Level().records(scope) {
		return &Span{}
	}
	s := &Span{
		tracer:  t,
		started: time.Now(),
		begin: Event{
			Kind:     KindSpanBegin,
			Scope:    scope,
			SpanID:   nextSpanID(),
			ParentID: parent,
			Name:     name,
			Decl:     decl,
		},
	}
	ev := s.begin
	ev.Time = s.started
	t.Emit(&ev)
	return s
}

// With attaches an attribute to the end event.
func (s *Span) With(key, value string) *Span {
	if s != nil && s.tracer != nil {
		s.attrs = append(s.attrs, Attr{Key: key, Value: value})
	}
	return s
}

// End emits the end event with outcome as its detail.
func (s *Span) End(outcome string) time.Duration {
	if s == nil || s.tracer == nil {
		return 0
	}
	ev := s.begin
	ev.Kind = KindSpanEnd
	ev.Time = time.Now()
	ev.Detail = outcome
	ev.Attrs = s.attrs
	s.tracer.Emit(&ev)
	return ev.Time.Sub(s.started)
}

func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.begin.SpanID
}

// Point emits an instant event under parent.
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	point(t, &Event{Kind: KindPoint, Scope: scope, ParentID: parent, Name: name, Detail: detail})
}

// DeclPoint marks something that happened to decl, such as "failed".
func DeclPoint(t Tracer, what, decl string, parent uint64) {
	point(t, &Event{Kind: KindPoint, Scope: ScopeDecl, ParentID: parent, Name: what, Decl: decl})
}

func point(t Tracer, ev *Event) {
	if t == nil || !t.Enabled() || !t.Level().records(ev.Scope) {
		return
	}
	ev.Time = time.Now()
	t.Emit(ev)
}
