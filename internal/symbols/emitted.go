package symbols

import (
	"sync"

	"cstar/internal/ast"
	"cstar/internal/source"
)

// Claim records who emits a C function name.
type Claim struct {
	Decl   ast.Decl
	Member *ast.Member
	Span   source.Span
	// What names the claimant in messages, e.g. "member `Enemy.Hit`".
	What string
}

// emitted maps C function names to their first claimant. It keeps growing
// after Freeze: signatures claim members and functions, the instantiator
// claims specializations and interface lowering claims dispatch thunks.
type emitted struct {
	mu     sync.Mutex
	owners map[string]Claim
}

// ClaimSymbol records that c emits name. When another declaration or
// member already emits it, the earlier claim is returned with ok false
// and the table keeps it. Claiming the same name twice for the same
// declaration and member is a no-op.
func (t *Table) ClaimSymbol(name string, c Claim) (prev Claim, ok bool) {
	t.emitted.mu.Lock()
	defer t.emitted.mu.Unlock()
	if t.emitted.owners == nil {
		t.emitted.owners = make(map[string]Claim)
	}
	if prev, taken := t.emitted.owners[name]; taken {
		return prev, prev.Decl == c.Decl && prev.Member == c.Member
	}
	t.emitted.owners[name] = c
	return c, true
}

// SymbolOwner returns the claim on name, if any.
func (t *Table) SymbolOwner(name string) (Claim, bool) {
	t.emitted.mu.Lock()
	defer t.emitted.mu.Unlock()
	c, ok := t.emitted.owners[name]
	return c, ok
}
