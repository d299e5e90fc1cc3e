package trace

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Level controls how fine-grained the recorded events are.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // nothing is written; the ring still records for crash dumps
	LevelPhase        // driver and passes
	LevelDetail       // plus declarations
	LevelDebug        // everything
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(s)
	if name == "" {
		return LevelOff, nil
	}
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return LevelOff, errors.Newf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// deepest is the finest scope each level lets through; zero lets nothing.
var deepest = [...]Scope{LevelPhase: ScopePass, LevelDetail: ScopeDecl, LevelDebug: ScopeDecl}

// ShouldEmit reports whether events of scope are written at level l.
func (l Level) ShouldEmit(scope Scope) bool {
	if int(l) >= len(deepest) {
		return false
	}
	return scope != 0 && scope <= deepest[l]
}

// records reports whether spans of scope are worth building at level l.
// LevelError writes nothing but still feeds the ring.
func (l Level) records(scope Scope) bool {
	return (l == LevelError && scope != 0) || l.ShouldEmit(scope)
}
