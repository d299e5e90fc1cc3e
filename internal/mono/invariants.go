package mono

import (
	"github.com/cockroachdb/errors"

	"cstar/internal/ast"
	"cstar/internal/types"
)

// validateNoTypeParams checks that no successful specialization still
// mentions a generic parameter type.
func validateNoTypeParams(set *Set, in *types.Interner) error {
	isParam := func(id types.TypeID) bool { return in.Kind(id) == types.KindParam }
	for _, sp := range set.All() {
		if sp.Failed {
			continue
		}
		m := sp.Member
		if m.IsGeneric() {
			return errors.AssertionFailedf("mono: %s is still generic", sp.Symbol)
		}
		for _, p := range m.Params {
			if isParam(p.Type.ID) {
				return errors.AssertionFailedf("mono: parameter %s of %s has a type parameter", p.Name, sp.Symbol)
			}
		}
		if isParam(m.Result.ID) {
			return errors.AssertionFailedf("mono: result of %s has a type parameter", sp.Symbol)
		}
		var bad *ast.Expr
		ast.WalkExprs(m.Body, func(e *ast.Expr) {
			if bad == nil && isParam(e.Type) {
				bad = e
			}
		})
		if bad != nil {
			return errors.AssertionFailedf("mono: %s expression at %s in %s has a type parameter", bad.Kind, bad.Span, sp.Symbol)
		}
	}
	return nil
}
