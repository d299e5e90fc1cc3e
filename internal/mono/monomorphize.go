package mono

import (
	"fmt"

	"cstar/internal/ast"
	"cstar/internal/diag"
	"cstar/internal/sema"
	"cstar/internal/symbols"
	"cstar/internal/types"
)

// DefaultMaxDepth bounds chains of specializations requesting other
// specializations.
const DefaultMaxDepth = 64

type Options struct {
	Symbols  *symbols.Table
	MaxDepth int
	ZeroInit bool
	// ReporterFor returns the reporter of the class or function owning a
	// specialization.
	ReporterFor func(ast.Decl) diag.Reporter
}

type workItem struct {
	req   sema.Request
	depth int
}

// Monomorphize creates one specialization per distinct (member, concrete
// type) pair requested, in request order. Requests discovered inside fresh
// specializations are appended to the worklist. Generic call sites get the
// symbol of their specialization. The returned error is fatal.
func Monomorphize(requests []sema.Request, opt Options) (*Set, error) {
	if opt.MaxDepth <= 0 {
		opt.MaxDepth = DefaultMaxDepth
	}
	if opt.ReporterFor == nil {
		opt.ReporterFor = func(ast.Decl) diag.Reporter { return diag.NopReporter{} }
	}
	b := &monoBuilder{opt: opt, types: opt.Symbols.Types, set: newSet()}
	queue := make([]workItem, 0, len(requests))
	for _, r := range requests {
		queue = append(queue, workItem{req: r})
	}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		more, err := b.ensure(it)
		if err != nil {
			return nil, err
		}
		queue = append(queue, more...)
	}
	if err := validateNoTypeParams(b.set, b.types); err != nil {
		return nil, err
	}
	return b.set, nil
}

type monoBuilder struct {
	opt   Options
	types *types.Interner
	set   *Set
}

// symbolName is Owner_Member_Type; a function's owner is its module.
func (b *monoBuilder) symbolName(req sema.Request, concrete types.TypeID) string {
	return ast.SpecializationSymbol(req.OwnerName(), req.Member.Name, b.types.Name(concrete))
}

func (b *monoBuilder) ensure(it workItem) ([]workItem, error) {
	req := it.req
	if req.Member == nil || req.Owner() == nil || !req.Member.IsGeneric() {
		return nil, nil
	}
	key := Key{Member: req.Member, Concrete: req.Concrete}
	b.set.Uses.Record(req.Owner(), key, req.Site, req.Caller)

	var more []workItem
	sp := b.set.byKey[key]
	if sp == nil {
		var err error
		sp, more, err = b.instantiate(it, key)
		if err != nil {
			return nil, err
		}
	}
	if req.Call != nil && !sp.Failed {
		if call, ok := req.Call.Data.(*ast.CallData); ok {
			call.Target.Symbol = sp.Symbol
		}
	}
	return more, nil
}

func (b *monoBuilder) instantiate(it workItem, key Key) (*Specialization, []workItem, error) {
	req := it.req
	tmpl := req.Member
	sp := &Specialization{
		Key:    key,
		Class:  req.Class,
		Func:   req.Func,
		Origin: tmpl,
		Symbol: b.symbolName(req, key.Concrete),
		Depth:  it.depth,
	}
	reporter := b.opt.ReporterFor(req.Owner())
	if it.depth >= b.opt.MaxDepth {
		sp.Failed = true
		b.set.add(sp)
		diag.ReportError(reporter, diag.MonoDepthExceeded, req.Site,
			fmt.Sprintf("instantiating `%s` exceeds the maximum depth of %d (requested from %s)", sp.Symbol, b.opt.MaxDepth, req.Caller)).Emit()
		return sp, nil, nil
	}
	what := fmt.Sprintf("specialization `%s` of %s", sp.Symbol, sema.ClaimedAs(req.Owner(), tmpl))
	if prev, ok := b.opt.Symbols.ClaimSymbol(sp.Symbol, symbols.Claim{Decl: req.Owner(), Member: tmpl, Span: tmpl.Span, What: what}); !ok {
		sp.Failed = true
		b.set.add(sp)
		diag.ReportError(reporter, diag.MonoSymbolCollision, req.Site,
			fmt.Sprintf("cannot instantiate %s: %s already emits `%s`", sema.ClaimedAs(req.Owner(), tmpl), prev.What, sp.Symbol)).
			WithNote(prev.Span, "first emitted here").
			Emit()
		return sp, nil, nil
	}
	// registered before the body is checked so that recursive requests hit
	// the cache
	b.set.add(sp)

	clone := ast.CloneMember(tmpl)
	reqs, ok, err := sema.ResolveSpecialization(req.Owner(), clone, tmpl.TypeParam, key.Concrete, sp.Symbol, sema.Options{
		Reporter: reporter,
		Symbols:  b.opt.Symbols,
		ZeroInit: b.opt.ZeroInit,
	})
	if err != nil {
		return nil, nil, err
	}
	clone.TypeParam = ""
	clone.ParamType = types.NoTypeID
	sp.Member = clone
	if !ok {
		sp.Failed = true
		return sp, nil, nil
	}
	more := make([]workItem, 0, len(reqs))
	for _, r := range reqs {
		more = append(more, workItem{req: r, depth: it.depth + 1})
	}
	return sp, more, nil
}
