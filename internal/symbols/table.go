package symbols

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/cockroachdb/errors"

	"cstar/internal/ast"
	"cstar/internal/source"
	"cstar/internal/types"
)

// Hints provide optional capacity suggestions for the table arena.
type Hints struct{ Symbols uint }

// Table maps top-level type names to declarations. It is populated once,
// frozen, and then shared read-only by every pass.
type Table struct {
	Symbols *Symbols
	Strings *source.Interner
	Types   *types.Interner
	FileSet *source.FileSet

	byName  map[source.StringID]SymbolID
	byType  map[types.TypeID]SymbolID
	funcs   map[funcKey]SymbolID
	members map[*ast.Member]SymbolID
	order   []SymbolID
	impls   map[types.TypeID][]*ast.ClassDecl
	modules *moduleGraph
	emitted emitted
	frozen  bool
}

// funcKey scopes function names by module: two modules may both declare
// Update and emit GameLogic_Update and Ui_Update.
type funcKey struct {
	module string
	name   source.StringID
}

// NewTable builds a fresh table. Nil interners are allocated.
func NewTable(h Hints, strings *source.Interner, typesIn *types.Interner) *Table {
	symCap, err := safecast.Conv[uint32](h.Symbols)
	if err != nil {
		panic(fmt.Errorf("symbol capacity overflow: %w", err))
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	if typesIn == nil {
		typesIn = types.NewInterner()
	}
	return &Table{
		Symbols: NewSymbols(symCap),
		Strings: strings,
		Types:   typesIn,
		byName:  make(map[source.StringID]SymbolID),
		byType:  make(map[types.TypeID]SymbolID),
		funcs:   make(map[funcKey]SymbolID),
		members: make(map[*ast.Member]SymbolID),
		modules: newModuleGraph(),
	}
}

// Declare registers a class or interface under its name, allocates its
// nominal type and annotates the declaration and its members. Functions
// are registered in the namespace of their module instead.
func (t *Table) Declare(module string, d ast.Decl) (SymbolID, error) {
	if t.frozen {
		return NoSymbolID, errors.Wrapf(ErrTableFrozen, "declare %s", d.DeclName())
	}
	t.modules.add(module, source.Span{}, nil)
	if fn, ok := d.(*ast.FuncDecl); ok {
		return t.declareFunc(module, fn)
	}
	name := d.DeclName()
	if _, builtin := t.Types.Builtin(name); builtin {
		return NoSymbolID, errors.Wrapf(ErrDuplicateDeclaration, "%s shadows a builtin type", name)
	}
	nameID := t.Strings.Intern(name)
	if prev, ok := t.byName[nameID]; ok {
		prevSym := t.Symbols.Get(prev)
		return prev, errors.Wrapf(ErrDuplicateDeclaration, "%s already declared as %s", name, prevSym.Kind)
	}

	sym := Symbol{Name: nameID, Span: d.DeclSpan(), Module: module, Decl: d}
	switch decl := d.(type) {
	case *ast.ClassDecl:
		sym.Kind = SymbolClass
		sym.Type = t.Types.RegisterClass(name, decl.Span)
		decl.Type = sym.Type
		decl.Module = module
	case *ast.InterfaceDecl:
		sym.Kind = SymbolInterface
		sym.Type = t.Types.RegisterInterface(name, decl.Span)
		decl.Type = sym.Type
		decl.Module = module
	default:
		return NoSymbolID, errors.AssertionFailedf("unexpected declaration %T", d)
	}
	id := t.Symbols.New(&sym)
	t.byName[nameID] = id
	t.byType[sym.Type] = id
	t.order = append(t.order, id)

	switch decl := d.(type) {
	case *ast.ClassDecl:
		for _, m := range decl.Members {
			t.declareMember(id, name, m, SymbolMember)
		}
	case *ast.InterfaceDecl:
		for _, m := range decl.Signatures {
			t.declareMember(id, name, m, SymbolSignature)
		}
	}
	return id, nil
}

func (t *Table) declareFunc(module string, fn *ast.FuncDecl) (SymbolID, error) {
	key := funcKey{module: module, name: t.Strings.Intern(fn.Name)}
	if _, ok := t.funcs[key]; ok {
		if module == "" {
			return NoSymbolID, errors.Wrapf(ErrDuplicateDeclaration, "function %s already declared", fn.Name)
		}
		return NoSymbolID, errors.Wrapf(ErrDuplicateDeclaration, "function %s already declared in module %s", fn.Name, module)
	}
	fn.Module = module
	sym := Symbol{Kind: SymbolFunction, Name: key.name, Span: fn.Span, Module: module, Decl: fn}
	id := t.Symbols.New(&sym)
	t.funcs[key] = id
	t.order = append(t.order, id)
	t.declareMember(id, module, fn.Fn, SymbolMember)
	return id, nil
}

// AddImplicit attaches a synthesized member to a class before freezing.
func (t *Table) AddImplicit(class *ast.ClassDecl, m *ast.Member) error {
	if t.frozen {
		return errors.Wrapf(ErrTableFrozen, "add %s.%s", class.Name, m.Name)
	}
	owner, ok := t.byType[class.Type]
	if !ok {
		return errors.Wrapf(ErrUnknownType, "%s", class.Name)
	}
	class.Implicit = append(class.Implicit, m)
	id := t.declareMember(owner, class.Name, m, SymbolMember)
	t.Symbols.Get(id).Flags |= SymbolFlagImplicit
	return nil
}

func (t *Table) declareMember(owner SymbolID, ownerName string, m *ast.Member, kind SymbolKind) SymbolID {
	m.Owner = ownerName
	sym := Symbol{
		Kind:   kind,
		Name:   t.Strings.Intern(m.Name),
		Span:   m.Span,
		Owner:  owner,
		Member: m,
	}
	if m.Kind == ast.MemberConstructor {
		sym.Flags |= SymbolFlagConstructor
	}
	if m.IsGeneric() {
		sym.Flags |= SymbolFlagGeneric
		m.ParamType = t.Types.RegisterParam(m.TypeParam, m.QualifiedName())
	}
	id := t.Symbols.New(&sym)
	t.members[m] = id
	return id
}

// Freeze ends population. It indexes declared interface implementers and
// freezes the type interner; afterwards the table is read-only.
func (t *Table) Freeze() {
	if t.frozen {
		return
	}
	t.impls = make(map[types.TypeID][]*ast.ClassDecl)
	for _, class := range t.Classes() {
		for _, ref := range class.Implements {
			id, err := t.Lookup(ref.Name)
			if err != nil || t.Types.Kind(id) != types.KindInterface {
				continue
			}
			if !t.Declares(class, id) {
				t.impls[id] = append(t.impls[id], class)
			}
		}
	}
	t.modules.close()
	t.frozen = true
	t.Types.Freeze()
}

// Files returns the file set spans of declarations refer to.
func (t *Table) Files() *source.FileSet { return t.FileSet }

// Frozen reports whether population has ended.
func (t *Table) Frozen() bool { return t.frozen }

// Lookup resolves a type name: builtin scalars and aliases first, then
// declared classes and interfaces.
func (t *Table) Lookup(name string) (types.TypeID, error) {
	if id, ok := t.Types.Builtin(name); ok {
		return id, nil
	}
	nameID, ok := t.Strings.Find(name)
	if ok {
		if sym := t.Symbols.Get(t.byName[nameID]); sym != nil {
			return sym.Type, nil
		}
	}
	return types.NoTypeID, errors.Wrapf(ErrUnknownType, "%s", name)
}

// LookupFrom resolves a type name as seen from module. A type declared in
// a module that is neither module itself nor visible through its imports
// yields ErrNotImported together with its valid TypeID, so callers can
// report the import and keep checking. Only valid after Freeze.
func (t *Table) LookupFrom(module, name string) (types.TypeID, error) {
	id, err := t.Lookup(name)
	if err != nil {
		return id, err
	}
	if _, builtin := t.Types.Builtin(name); builtin {
		return id, nil
	}
	sym := t.Symbols.Get(t.byType[id])
	if sym == nil || t.Visible(module, sym.Module) {
		return id, nil
	}
	return id, errors.Wrapf(ErrNotImported, "%s is declared in module %s", name, sym.Module)
}

// Function returns the function declared as name in module or nil.
func (t *Table) Function(module, name string) *ast.FuncDecl {
	nameID, ok := t.Strings.Find(name)
	if !ok {
		return nil
	}
	if sym := t.Symbols.Get(t.funcs[funcKey{module: module, name: nameID}]); sym != nil {
		return sym.Decl.(*ast.FuncDecl)
	}
	return nil
}

// FunctionsFrom returns the functions a call of name from module may
// reach: the one of module itself if it exists, otherwise every visible
// module's function of that name in module declaration order. More than
// one result is an ambiguous call. Only valid after Freeze.
func (t *Table) FunctionsFrom(module, name string) []*ast.FuncDecl {
	if fn := t.Function(module, name); fn != nil {
		return []*ast.FuncDecl{fn}
	}
	var out []*ast.FuncDecl
	for _, mod := range t.modules.order {
		if mod.name == module || !t.Visible(module, mod.name) {
			continue
		}
		if fn := t.Function(mod.name, name); fn != nil {
			out = append(out, fn)
		}
	}
	return out
}

// MembersOf returns the members of a class type, synthesized ones last.
func (t *Table) MembersOf(id types.TypeID) ([]*ast.Member, error) {
	class := t.Class(id)
	if class == nil {
		return nil, errors.Wrapf(ErrNotAClassType, "%s", t.Types.Name(id))
	}
	return class.AllMembers(), nil
}

// Class returns the class declaration of a class type or nil.
func (t *Table) Class(id types.TypeID) *ast.ClassDecl {
	if sym := t.Symbols.Get(t.byType[id]); sym != nil {
		if class, ok := sym.Decl.(*ast.ClassDecl); ok {
			return class
		}
	}
	return nil
}

// Interface returns the interface declaration of an interface type or nil.
func (t *Table) Interface(id types.TypeID) *ast.InterfaceDecl {
	if sym := t.Symbols.Get(t.byType[id]); sym != nil {
		if iface, ok := sym.Decl.(*ast.InterfaceDecl); ok {
			return iface
		}
	}
	return nil
}

// Decl returns the top-level declaration registered under name.
func (t *Table) Decl(name string) ast.Decl {
	nameID, ok := t.Strings.Find(name)
	if !ok {
		return nil
	}
	if sym := t.Symbols.Get(t.byName[nameID]); sym != nil {
		return sym.Decl
	}
	return nil
}

// SymbolOf returns the symbol of a declared member.
func (t *Table) SymbolOf(m *ast.Member) (*Symbol, bool) {
	id, ok := t.members[m]
	if !ok {
		return nil, false
	}
	return t.Symbols.Get(id), true
}

// Decls returns top-level declarations in declaration order.
func (t *Table) Decls() []ast.Decl {
	out := make([]ast.Decl, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.Symbols.Get(id).Decl)
	}
	return out
}

// Classes returns declared classes in declaration order.
func (t *Table) Classes() []*ast.ClassDecl {
	var out []*ast.ClassDecl
	for _, id := range t.order {
		if class, ok := t.Symbols.Get(id).Decl.(*ast.ClassDecl); ok {
			out = append(out, class)
		}
	}
	return out
}

// Interfaces returns declared interfaces in declaration order.
func (t *Table) Interfaces() []*ast.InterfaceDecl {
	var out []*ast.InterfaceDecl
	for _, id := range t.order {
		if iface, ok := t.Symbols.Get(id).Decl.(*ast.InterfaceDecl); ok {
			out = append(out, iface)
		}
	}
	return out
}

// Functions returns declared functions in declaration order.
func (t *Table) Functions() []*ast.FuncDecl {
	var out []*ast.FuncDecl
	for _, id := range t.order {
		if fn, ok := t.Symbols.Get(id).Decl.(*ast.FuncDecl); ok {
			out = append(out, fn)
		}
	}
	return out
}

// Implementers lists classes declaring iface, in declaration order.
// Only valid after Freeze.
func (t *Table) Implementers(iface types.TypeID) []*ast.ClassDecl {
	return t.impls[iface]
}

// Declares reports whether class lists iface in its implements clause.
func (t *Table) Declares(class *ast.ClassDecl, iface types.TypeID) bool {
	for _, c := range t.impls[iface] {
		if c == class {
			return true
		}
	}
	return false
}
