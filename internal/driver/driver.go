// Package driver runs one check: it loads the configuration governing the
// input, decodes the AST document, runs the pipeline and remembers the
// outcome in the disk cache.
package driver

import (
	"context"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"

	"cstar/internal/astio"
	"cstar/internal/config"
	"cstar/internal/diag"
	"cstar/internal/layout"
	"cstar/internal/pipeline"
	"cstar/internal/source"
	"cstar/internal/trace"
)

type Options struct {
	Config config.Config
	// Cache, when set, answers repeated checks of an unchanged document.
	Cache *DiskCache
	// NeedArtifacts forces a full run even on a cache hit, for callers
	// that print IR, instantiations or dispatch descriptors.
	NeedArtifacts bool
	ReportTimings bool
	Progress      pipeline.ProgressSink
}

// Result is the outcome of Check. Pipeline is nil when the summary came
// from the cache.
type Result struct {
	Path     string
	Digest   Digest
	Pipeline *pipeline.Result
	Summary  *Summary
	Cached   bool
	// Bag and Files are what diagnostics are printed from, live or restored.
	Bag   *diag.Bag
	Files *source.FileSet
	// CacheErr is a cache failure that did not stop the check.
	CacheErr error
}

func (r *Result) OK() bool { return r.Summary.OK() }

// Check checks the AST document at path. Errors are infrastructure
// failures or an invalid AST (errors.Is(err, ast.ErrInvalidAST)); findings
// about the program are diagnostics in the result.
func Check(ctx context.Context, path string, opts Options) (*Result, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "check", trace.CurrentSpan(ctx).SpanID)
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	data, err := os.ReadFile(path)
	if err != nil {
		span.End("error")
		return nil, errors.Wrapf(err, "read %s", path)
	}
	res := &Result{Path: path, Digest: ComputeDigest(data, opts.Config.Check)}

	if opts.Cache != nil && !opts.NeedArtifacts {
		summary, ok, err := opts.Cache.Get(res.Digest)
		switch {
		case err != nil:
			res.CacheErr = err
		case ok:
			res.Summary, res.Cached = summary, true
			res.Bag, res.Files = summary.Restore()
			trace.Point(tracer, trace.ScopeDriver, "cache-hit", res.Digest.String(), span.ID())
			span.With("cached", "true").End("")
			return res, nil
		}
	}

	prog, err := astio.Decode(data, path, astio.FormatAuto)
	if err != nil {
		span.End("error")
		return nil, err
	}
	check := opts.Config.Check
	target, _ := layout.TargetByTriple(opts.Config.Emit.Target)
	out, err := pipeline.Run(ctx, prog, pipeline.Options{
		Jobs:           check.Jobs,
		ZeroInit:       check.ZeroInit,
		MaxDiagnostics: check.MaxDiagnostics,
		MaxDepth:       check.MaxInstantiationDepth,
		ReportTimings:  opts.ReportTimings,
		Progress:       opts.Progress,
		Target:         target,
	})
	if err != nil {
		span.End("error")
		return nil, err
	}
	res.Pipeline = out
	res.Summary = Summarize(path, out)
	res.Bag, res.Files = out.Bag, out.Program.Files

	// Timing notes differ between runs; such a summary is not worth keeping.
	if opts.Cache != nil && !opts.ReportTimings {
		if err := opts.Cache.Put(res.Digest, res.Summary); err != nil && res.CacheErr == nil {
			res.CacheErr = err
		}
	}
	span.With("errors", strconv.Itoa(out.Errors)).End("")
	return res, nil
}
