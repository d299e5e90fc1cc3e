package layout

import (
	"fmt"

	"cstar/internal/types"
)

// ErrorKind enumerates layout failures. Each one means an earlier pass let
// a type through that has no C representation.
type ErrorKind uint8

const (
	ErrUnresolved ErrorKind = iota + 1
	ErrGenericParam
	ErrVoidValue
)

type Error struct {
	Kind ErrorKind
	Type types.TypeID
	Name string // type name when known
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ErrUnresolved:
		return fmt.Sprintf("type#%d has no layout: unresolved", e.Type)
	case ErrGenericParam:
		return fmt.Sprintf("generic parameter %s has no layout before instantiation", e.Name)
	case ErrVoidValue:
		return "void has no value layout"
	default:
		return fmt.Sprintf("layout error kind=%d type#%d", e.Kind, e.Type)
	}
}
