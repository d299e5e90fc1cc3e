package pipeline

import "cstar/internal/ast"

// State is the position of a declaration in the pass sequence.
type State uint8

const (
	StateDeclared State = iota
	StateTypeResolved
	StateGenericInstantiated
	StateInterfaceLowered
	StateReadyForEmission
	// StateFailed marks a declaration with error diagnostics.
	StateFailed
	// StateBlocked marks a declaration that depends on a failed one.
	StateBlocked
)

func (s State) String() string {
	switch s {
	case StateDeclared:
		return "declared"
	case StateTypeResolved:
		return "type-resolved"
	case StateGenericInstantiated:
		return "generic-instantiated"
	case StateInterfaceLowered:
		return "interface-lowered"
	case StateReadyForEmission:
		return "ready"
	case StateFailed:
		return "failed"
	case StateBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Terminal reports whether no later pass processes the declaration.
func (s State) Terminal() bool {
	return s == StateFailed || s == StateBlocked || s == StateReadyForEmission
}

// DeclState tracks one declaration through the run.
type DeclState struct {
	Decl  ast.Decl
	State State
	// Stage is the pass that failed or blocked the declaration.
	Stage Stage
	// BlockedBy names the failed declarations this one depends on.
	BlockedBy []string
	// History lists every state entered, starting with StateDeclared.
	History []State
}

func (s *DeclState) live() bool {
	return s.State != StateFailed && s.State != StateBlocked
}

func (s *DeclState) enter(st State) {
	s.State = st
	s.History = append(s.History, st)
}
