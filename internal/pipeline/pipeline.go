// Package pipeline runs the core passes over a program and tracks every
// declaration through them. A declaration that fails a pass leaves the
// run; declarations depending on it are blocked; everything else goes on
// to emission.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"cstar/internal/ast"
	"cstar/internal/diag"
	"cstar/internal/dispatch"
	"cstar/internal/ir"
	"cstar/internal/layout"
	"cstar/internal/mono"
	"cstar/internal/observ"
	"cstar/internal/sema"
	"cstar/internal/source"
	"cstar/internal/symbols"
	"cstar/internal/trace"
)

// Options configure a run.
type Options struct {
	// Jobs bounds parallel body resolution; <= 0 uses GOMAXPROCS.
	Jobs int
	// ZeroInit downgrades incomplete constructor initialization to a warning.
	ZeroInit bool
	// MaxDiagnostics caps Result.Bag; <= 0 keeps everything.
	MaxDiagnostics int
	// MaxDepth bounds nested generic instantiation; <= 0 uses mono.DefaultMaxDepth.
	MaxDepth int
	// ReportTimings appends a PipeTimings note per stage.
	ReportTimings bool
	Progress      ProgressSink
	// Target sets the C ABI for struct layout; the zero value is x86_64-linux-gnu.
	Target layout.Target
}

// Result is everything a run produced. Failed and blocked declarations
// keep whatever annotations they got but take no part in emission.
type Result struct {
	Program         *ast.Program
	Symbols         *symbols.Table
	Specializations *mono.Set
	Dispatch        *dispatch.Result
	IR              *ir.Program
	// States follows program order, duplicates included.
	States []*DeclState
	Bag    *diag.Bag
	Errors int
	// Suppressed counts diagnostics dropped as repeats within one
	// declaration.
	Suppressed int
	Timings    Timings
	Timer      *observ.Timer
}

// State returns the first declaration state registered under name.
func (r *Result) State(name string) *DeclState {
	for _, st := range r.States {
		if st.Decl.DeclName() == name {
			return st
		}
	}
	return nil
}

// OK reports whether the run produced no error diagnostics.
func (r *Result) OK() bool { return r.Errors == 0 }

// Run executes every pass over prog. The only error results are a
// malformed AST (marked with ast.ErrInvalidAST), cancellation of ctx and
// violated emission invariants; every finding about the program itself is
// a diagnostic in Result.Bag.
func Run(ctx context.Context, prog *ast.Program, opts Options) (*Result, error) {
	if err := ast.Validate(prog); err != nil {
		return nil, err
	}
	r := &runner{
		ctx:       ctx,
		opts:      opts,
		tracer:    trace.FromContext(ctx),
		bag:       diag.NewBag(0),
		states:    make(map[ast.Decl]*DeclState),
		errs:      make(map[ast.Decl]int),
		deps:      make(map[ast.Decl][]ast.Decl),
		reporters: make(map[ast.Decl]*diag.DedupReporter),
		res:       &Result{Program: prog, Timer: observ.NewTimer()},
	}
	span := trace.Begin(r.tracer, trace.ScopeDriver, "pipeline", trace.CurrentSpan(ctx).SpanID)
	r.root = span.ID()

	steps := []struct {
		stage Stage
		fn    func() error
	}{
		{StageSymbols, r.populate},
		{StageSignatures, r.signatures},
		{StageResolve, r.resolve},
		{StageMono, r.monomorphize},
		{StageDispatch, r.lower},
		{StageIR, r.emit},
	}
	for _, step := range steps {
		if err := r.pass(step.stage, step.fn); err != nil {
			span.End("error")
			return nil, err
		}
	}
	res := r.finish()
	span.With("errors", strconv.Itoa(res.Errors)).End("")
	return res, nil
}

type runner struct {
	ctx    context.Context
	opts   Options
	tracer trace.Tracer
	root   uint64
	parent uint64

	res       *Result
	bag       *diag.Bag
	states    map[ast.Decl]*DeclState
	errs      map[ast.Decl]int
	deps      map[ast.Decl][]ast.Decl
	reporters map[ast.Decl]*diag.DedupReporter
	results   []*sema.DeclResult
}

func (r *runner) pass(stage Stage, fn func() error) error {
	if err := r.ctx.Err(); err != nil {
		return errors.Wrapf(err, "%s", stage)
	}
	span := trace.Begin(r.tracer, trace.ScopePass, string(stage), r.root)
	r.parent = span.ID()
	idx := r.res.Timer.Begin(string(stage))
	emit(r.opts.Progress, Event{Stage: stage, Status: StatusWorking})

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	r.res.Timings.Set(stage, elapsed)
	r.res.Timer.End(idx, "")
	status := StatusDone
	if err != nil {
		status = StatusError
	}
	emit(r.opts.Progress, Event{Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	span.End(string(status))
	return err
}

// declReporter stamps the declaration name on diagnostics and counts
// errors per declaration.
type declReporter struct {
	r    *runner
	decl ast.Decl
}

func (d declReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	d.r.bag.Add(diag.Diagnostic{
		Severity: sev, Code: code, Message: msg,
		Primary: primary, Decl: d.decl.DeclName(), Notes: notes,
	})
	if sev >= diag.SevError {
		d.r.errs[d.decl]++
	}
}

// reporter returns the reporter of d. Every pass reports through the same
// one, so a finding reached again by a later pass is listed once.
func (r *runner) reporter(d ast.Decl) diag.Reporter {
	if rep, ok := r.reporters[d]; ok {
		return rep
	}
	rep := diag.NewDedupReporter(declReporter{r: r, decl: d})
	r.reporters[d] = rep
	return rep
}

// suppressed totals the repeats dropped across declarations.
func (r *runner) suppressed() int {
	n := 0
	for _, rep := range r.reporters {
		n += rep.Suppressed()
	}
	return n
}

func (r *runner) semaOptions(rep diag.Reporter) sema.Options {
	return sema.Options{Reporter: rep, Symbols: r.res.Symbols, ZeroInit: r.opts.ZeroInit}
}

func (r *runner) populate() error {
	prog := r.res.Program
	n := 0
	for _, mod := range prog.Modules {
		for _, d := range mod.Decls {
			st := &DeclState{Decl: d}
			st.enter(StateDeclared)
			r.states[d] = st
			r.res.States = append(r.res.States, st)
			n++
		}
	}
	table := symbols.NewTable(symbols.Hints{Symbols: uint(n)}, nil, nil)
	table.FileSet = prog.Files
	r.res.Symbols = table

	// rejected declarations already counted their error through reporter
	symbols.Populate(table, prog, diag.BagReporter{Bag: r.bag}, r.reporter)
	if err := sema.SynthesizeConstructors(table); err != nil {
		return errors.Wrap(err, "synthesize constructors")
	}
	table.Freeze()
	r.settle(StageSymbols, nil)
	return nil
}

func (r *runner) signatures() error {
	for _, st := range r.res.States {
		if !st.live() {
			continue
		}
		if err := sema.ResolveSignatures(st.Decl, r.semaOptions(r.reporter(st.Decl))); err != nil {
			return err
		}
	}
	sema.CheckRecursiveFields(r.res.Symbols, func(c *ast.ClassDecl) diag.Reporter { return r.reporter(c) })
	r.settle(StageSignatures, nil)
	return nil
}

func (r *runner) jobs() int {
	if r.opts.Jobs > 0 {
		return r.opts.Jobs
	}
	return runtime.GOMAXPROCS(0)
}

// resolve checks member bodies of live declarations in parallel. Each
// worker owns one declaration, its bag and its requests; results merge in
// declaration order.
func (r *runner) resolve() error {
	live := r.live()
	results := make([]*sema.DeclResult, len(live))
	bags := make([]*diag.Bag, len(live))
	errs := make([]error, len(live))

	g, gctx := errgroup.WithContext(r.ctx)
	g.SetLimit(r.jobs())
	for i, st := range live {
		i, st := i, st
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				errs[i] = err
				return err
			}
			name := st.Decl.DeclName()
			span := trace.BeginDecl(r.tracer, name, r.parent)
			bags[i] = diag.NewBag(0)
			res, err := sema.ResolveDecl(st.Decl, r.semaOptions(diag.BagReporter{Bag: bags[i], Decl: name}))
			results[i], errs[i] = res, err
			span.With("diagnostics", strconv.Itoa(bags[i].Len())).End("")
			return err
		})
	}
	waitErr := g.Wait()
	if err := firstError(errs); err != nil {
		return err
	}
	if waitErr != nil {
		return waitErr
	}
	if err := r.ctx.Err(); err != nil {
		return errors.Wrap(err, "resolve")
	}

	for i, st := range live {
		if bags[i] != nil {
			rep := r.reporter(st.Decl)
			for _, d := range bags[i].Items() {
				rep.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
			}
		}
		if res := results[i]; res != nil {
			r.results = append(r.results, res)
			for _, dep := range res.Deps {
				r.addDep(st.Decl, dep)
			}
		}
		r.typeDeps(st.Decl)
	}
	r.settle(StageResolve, func(*DeclState) (State, bool) { return StateTypeResolved, true })
	r.propagate(StageResolve)
	return nil
}

// firstError prefers a real failure over the cancellations it caused.
func firstError(errs []error) error {
	var canceled error
	for _, err := range errs {
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			if canceled == nil {
				canceled = err
			}
		default:
			return err
		}
	}
	return canceled
}

func (r *runner) monomorphize() error {
	var reqs []sema.Request
	for _, res := range r.results {
		if st := r.states[res.Decl]; st == nil || !st.live() {
			continue
		}
		for _, req := range res.Requests {
			if st := r.states[req.Owner()]; st != nil && st.live() {
				reqs = append(reqs, req)
			}
		}
	}
	set, err := mono.Monomorphize(reqs, mono.Options{
		Symbols:     r.res.Symbols,
		MaxDepth:    r.opts.MaxDepth,
		ZeroInit:    r.opts.ZeroInit,
		ReporterFor: r.reporter,
	})
	if err != nil {
		return err
	}
	r.res.Specializations = set
	for _, sp := range set.All() {
		if !sp.Failed {
			r.memberDeps(sp.Owner(), sp.Member)
		}
	}
	r.settle(StageMono, func(st *DeclState) (State, bool) {
		if hasGeneric(st.Decl) {
			return StateGenericInstantiated, true
		}
		return 0, false
	})
	r.propagate(StageMono)
	return nil
}

func (r *runner) lower() error {
	res := dispatch.Lower(dispatch.Options{
		Symbols:         r.res.Symbols,
		Specializations: r.res.Specializations,
		ReporterFor:     r.reporter,
		Skip: func(d ast.Decl) bool {
			st := r.states[d]
			return st == nil || !st.live()
		},
	})
	r.res.Dispatch = res
	for _, st := range r.res.States {
		for _, by := range res.Blocked[st.Decl] {
			r.addDep(st.Decl, by)
		}
		r.taggedDeps(st.Decl)
	}
	r.settle(StageDispatch, func(*DeclState) (State, bool) { return StateInterfaceLowered, true })
	r.propagate(StageDispatch)
	return nil
}

func (r *runner) emit() error {
	r.settle(StageIR, func(*DeclState) (State, bool) { return StateReadyForEmission, true })
	prog := ir.Build(ir.Input{
		Symbols:         r.res.Symbols,
		Specializations: r.res.Specializations,
		Dispatch:        r.res.Dispatch,
		Ready: func(d ast.Decl) bool {
			st := r.states[d]
			return st != nil && st.State == StateReadyForEmission
		},
	})
	if err := ir.Validate(prog, r.res.Symbols.Types); err != nil {
		return errors.Wrap(err, "emission invariants")
	}
	target := r.opts.Target
	if target.PtrSize == 0 {
		target = layout.X86_64LinuxGNU()
	}
	if err := layout.Annotate(prog, layout.New(target, r.res.Symbols.Types)); err != nil {
		return errors.Wrap(err, "struct layout")
	}
	r.res.IR = prog
	return nil
}

func (r *runner) live() []*DeclState {
	var out []*DeclState
	for _, st := range r.res.States {
		if st.live() {
			out = append(out, st)
		}
	}
	return out
}

// settle fails every live declaration that collected an error and moves
// the others to the state next picks, if any.
func (r *runner) settle(stage Stage, next func(*DeclState) (State, bool)) {
	for _, st := range r.res.States {
		if !st.live() {
			continue
		}
		if r.errs[st.Decl] > 0 {
			st.Stage = stage
			st.enter(StateFailed)
			trace.DeclPoint(r.tracer, "failed", st.Decl.DeclName(), r.parent)
			emit(r.opts.Progress, Event{Decl: st.Decl.DeclName(), Stage: stage, Status: StatusError, State: StateFailed})
			continue
		}
		if next == nil {
			continue
		}
		if s, ok := next(st); ok {
			st.enter(s)
			emit(r.opts.Progress, Event{Decl: st.Decl.DeclName(), Stage: stage, Status: StatusDone, State: s})
		}
	}
}

// propagate blocks live declarations depending on failed or blocked ones
// until nothing changes.
func (r *runner) propagate(stage Stage) {
	for changed := true; changed; {
		changed = false
		for _, st := range r.res.States {
			if !st.live() {
				continue
			}
			var by []string
			for _, d := range r.deps[st.Decl] {
				if dst := r.states[d]; dst != nil && !dst.live() {
					by = append(by, d.DeclName())
				}
			}
			if len(by) == 0 {
				continue
			}
			r.block(st, stage, by)
			changed = true
		}
	}
}

func (r *runner) block(st *DeclState, stage Stage, by []string) {
	st.Stage = stage
	st.BlockedBy = by
	st.enter(StateBlocked)
	quoted := make([]string, len(by))
	for i, name := range by {
		quoted[i] = "`" + name + "`"
	}
	diag.ReportInfo(r.reporter(st.Decl), diag.PipeBlockedByDependency, st.Decl.DeclSpan(),
		fmt.Sprintf("`%s` is halted because it depends on %s, which cannot be emitted", st.Decl.DeclName(), strings.Join(quoted, ", "))).Emit()
	trace.DeclPoint(r.tracer, "blocked", st.Decl.DeclName(), r.parent)
	emit(r.opts.Progress, Event{Decl: st.Decl.DeclName(), Stage: stage, Status: StatusError, State: StateBlocked})
}

func (r *runner) finish() *Result {
	res := r.res
	if r.opts.ReportTimings {
		for _, stage := range Stages {
			if !res.Timings.Has(stage) {
				continue
			}
			diag.ReportInfo(diag.BagReporter{Bag: r.bag}, diag.PipeTimings, source.Span{},
				fmt.Sprintf("%s took %.2f ms", stage, float64(res.Timings.Duration(stage))/float64(time.Millisecond))).Emit()
		}
	}
	res.Suppressed = r.suppressed()
	if res.Suppressed > 0 {
		trace.Point(r.tracer, trace.ScopeDriver, "deduplicated", strconv.Itoa(res.Suppressed), r.root)
	}
	res.Errors = r.bag.Count(diag.SevError)
	res.Bag = diag.NewBag(r.opts.MaxDiagnostics)
	for _, d := range r.bag.Items() {
		if !res.Bag.Add(d) {
			break
		}
	}
	return res
}
