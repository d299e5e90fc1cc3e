package symbols

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"cstar/internal/ast"
	"cstar/internal/diag"
	"cstar/internal/source"
)

type moduleInfo struct {
	name    string
	span    source.Span
	imports []*ast.Import
}

// moduleGraph records modules in first-seen order and, once closed, the
// set of modules each one sees through its imports.
type moduleGraph struct {
	order   []*moduleInfo
	byName  map[string]*moduleInfo
	visible map[string]map[string]bool
}

func newModuleGraph() *moduleGraph {
	return &moduleGraph{byName: make(map[string]*moduleInfo)}
}

func (g *moduleGraph) add(name string, sp source.Span, imports []*ast.Import) *moduleInfo {
	mod, ok := g.byName[name]
	if !ok {
		mod = &moduleInfo{name: name}
		g.byName[name] = mod
		g.order = append(g.order, mod)
	}
	if mod.span.Empty() {
		mod.span = sp
	}
	mod.imports = append(mod.imports, imports...)
	return mod
}

// close computes visibility: a module sees what it imports and, through
// every module it sees, that module's public imports.
func (g *moduleGraph) close() {
	g.visible = make(map[string]map[string]bool, len(g.order))
	for _, mod := range g.order {
		seen := make(map[string]bool)
		queue := make([]*moduleInfo, 0, len(mod.imports))
		for _, imp := range mod.imports {
			if dep := g.byName[imp.Name]; dep != nil && !seen[dep.name] {
				seen[dep.name] = true
				queue = append(queue, dep)
			}
		}
		for len(queue) > 0 {
			dep := queue[0]
			queue = queue[1:]
			for _, imp := range dep.imports {
				if !imp.Public {
					continue
				}
				if next := g.byName[imp.Name]; next != nil && !seen[next.name] {
					seen[next.name] = true
					queue = append(queue, next)
				}
			}
		}
		g.visible[mod.name] = seen
	}
}

// DeclareModule records a module and its imports. Modules sharing a name
// merge their imports.
func (t *Table) DeclareModule(mod *ast.Module) error {
	if t.frozen {
		return errors.Wrapf(ErrTableFrozen, "declare module %s", mod.Name)
	}
	t.modules.add(mod.Name, mod.Span, mod.Imports)
	return nil
}

// Modules returns module names in first-seen order.
func (t *Table) Modules() []string {
	out := make([]string, 0, len(t.modules.order))
	for _, mod := range t.modules.order {
		out = append(out, mod.name)
	}
	return out
}

// Visible reports whether declarations of module to can be named from
// module from. Only valid after Freeze.
func (t *Table) Visible(from, to string) bool {
	if from == to {
		return true
	}
	return t.modules.visible[from][to]
}

// CheckImports reports imports of unknown modules, self imports, repeated
// imports and import cycles. Cycles are errors: the emitted headers would
// include each other.
func (t *Table) CheckImports(reporter diag.Reporter) {
	g := t.modules
	for _, mod := range g.order {
		seen := make(map[string]*ast.Import, len(mod.imports))
		for _, imp := range mod.imports {
			switch {
			case imp.Name == mod.name:
				diag.ReportWarning(reporter, diag.ModImportSelf, imp.Span,
					fmt.Sprintf("module `%s` imports itself", mod.name)).Emit()
			case seen[imp.Name] != nil:
				diag.ReportWarning(reporter, diag.ModImportDuplicate, imp.Span,
					fmt.Sprintf("module `%s` imports `%s` more than once", mod.name, imp.Name)).
					WithNote(seen[imp.Name].Span, "first imported here").
					Emit()
			case g.byName[imp.Name] == nil:
				diag.ReportError(reporter, diag.ModImportUnknown, imp.Span,
					fmt.Sprintf("module `%s` imports unknown module `%s`", mod.name, imp.Name)).Emit()
			}
			if seen[imp.Name] == nil {
				seen[imp.Name] = imp
			}
		}
	}
	for _, cycle := range g.cycles() {
		names := make([]string, 0, len(cycle)+1)
		for _, mod := range cycle {
			names = append(names, mod.name)
		}
		names = append(names, cycle[0].name)
		closing := cycle[len(cycle)-1].importOf(cycle[0].name)
		diag.ReportError(reporter, diag.ModImportCycle, closing.Span,
			fmt.Sprintf("cyclic module imports: %s", strings.Join(names, " -> "))).Emit()
	}
}

func (m *moduleInfo) importOf(name string) *ast.Import {
	for _, imp := range m.imports {
		if imp.Name == name {
			return imp
		}
	}
	return nil
}

// cycles returns each import cycle once, starting at the module first
// reached by a depth-first walk in declaration order.
func (g *moduleGraph) cycles() [][]*moduleInfo {
	const (
		white = iota
		grey
		black
	)
	color := make(map[*moduleInfo]int, len(g.order))
	var stack []*moduleInfo
	var out [][]*moduleInfo
	var visit func(mod *moduleInfo)
	visit = func(mod *moduleInfo) {
		color[mod] = grey
		stack = append(stack, mod)
		for _, imp := range mod.imports {
			dep := g.byName[imp.Name]
			if dep == nil || dep == mod {
				continue
			}
			switch color[dep] {
			case white:
				visit(dep)
			case grey:
				for i := len(stack) - 1; i >= 0; i-- {
					if stack[i] == dep {
						out = append(out, append([]*moduleInfo(nil), stack[i:]...))
						break
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[mod] = black
	}
	for _, mod := range g.order {
		if color[mod] == white {
			visit(mod)
		}
	}
	return out
}
