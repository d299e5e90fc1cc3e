package symbols

import (
	"github.com/cockroachdb/errors"

	"cstar/internal/ast"
	"cstar/internal/diag"
)

// Populate records every module of p with its imports and declares its
// declarations in order. Duplicates are reported to reporterFor of the
// rejected declaration and returned; the first declaration wins. Import
// problems belong to no declaration and go to reporter. A nil reporterFor
// sends everything to reporter. The table is left unfrozen so that
// synthesized members can still be attached.
func Populate(t *Table, p *ast.Program, reporter diag.Reporter, reporterFor func(ast.Decl) diag.Reporter) (rejected []ast.Decl) {
	if t.FileSet == nil {
		t.FileSet = p.Files
	}
	if reporterFor == nil {
		reporterFor = func(ast.Decl) diag.Reporter { return reporter }
	}
	for _, mod := range p.Modules {
		if err := t.DeclareModule(mod); err != nil {
			diag.ReportError(reporter, diag.UnknownCode, mod.Span, err.Error()).Emit()
		}
	}
	for _, mod := range p.Modules {
		for _, d := range mod.Decls {
			_, err := t.Declare(mod.Name, d)
			if err == nil {
				continue
			}
			rejected = append(rejected, d)
			if errors.Is(err, ErrDuplicateDeclaration) {
				diag.ReportError(reporterFor(d), diag.SemaDuplicateDeclaration, d.DeclSpan(), err.Error()).Emit()
				continue
			}
			diag.ReportError(reporterFor(d), diag.UnknownCode, d.DeclSpan(), err.Error()).Emit()
		}
	}
	t.CheckImports(reporter)
	return rejected
}
