package symbols

import "github.com/cockroachdb/errors"

var (
	// ErrDuplicateDeclaration is returned by Declare for a name already taken.
	ErrDuplicateDeclaration = errors.New("duplicate declaration")
	// ErrUnknownType is returned by Lookup for an unregistered name.
	ErrUnknownType = errors.New("unknown type")
	// ErrNotAClassType is returned by MembersOf for non-class types.
	ErrNotAClassType = errors.New("not a class type")
	// ErrNotImported is returned by LookupFrom for a type whose module is
	// not imported.
	ErrNotImported = errors.New("not imported")
	// ErrTableFrozen is returned by Declare after Freeze.
	ErrTableFrozen = errors.New("symbol table is frozen")
)
