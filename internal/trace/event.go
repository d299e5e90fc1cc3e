package trace

import "time"

type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

var kindNames = [...]string{KindSpanBegin: "begin", KindSpanEnd: "end", KindPoint: "point"}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope is the granularity of an event. Coarser scopes have lower values.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // one check run
	ScopePass                    // symbols, resolve, mono, dispatch, ir
	ScopeDecl                    // one class or interface
)

var scopeNames = [...]string{ScopeDriver: "driver", ScopePass: "pass", ScopeDecl: "decl"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Attr is one key/value pair attached to the end of a span. Attrs keep the
// order they were added in.
type Attr struct {
	Key   string
	Value string
}

type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for roots
	Name     string // "check", "resolve", "decl"
	Decl     string // declaration name for ScopeDecl events
	Detail   string // outcome of a span or message of a point
	Attrs    []Attr
}
