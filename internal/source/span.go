package source

import (
	"fmt"
)

// Span is a source range as reported by the external parser.
// Positions are 1-based; a zero Start means the position is unknown.
type Span struct {
	File  FileID
	Start LineCol
	End   LineCol // inclusive; may equal Start
}

func (s Span) Empty() bool {
	return s.Start.Line == 0
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d:%d", s.File, s.Start.Line, s.Start.Col)
}

// Cover returns the smallest span containing both spans of the same file.
func (s Span) Cover(other Span) Span {
	if s.File != other.File || other.Empty() {
		return s
	}
	if s.Empty() {
		return other
	}
	if other.Start.Before(s.Start) {
		s.Start = other.Start
	}
	if s.End.Before(other.End) {
		s.End = other.End
	}
	return s
}

// Before reports whether p is strictly before q.
func (p LineCol) Before(q LineCol) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Col < q.Col
}
