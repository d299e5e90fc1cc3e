package diag

import (
	"cstar/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	// Decl is the identity of the declaration the finding belongs to
	// ("Enemy", "Enemy.TakeDamage"); empty for program-level findings.
	Decl  string
	Notes []Note
}
