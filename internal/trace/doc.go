// Package trace records spans of a check run: the driver, each pass and
// each declaration.
//
// # Usage
//
//	cstar check --trace=- --trace-level=detail ast.yaml
//
// # Tracers
//
//   - Nop: zero-overhead tracer used when tracing is off
//   - StreamTracer: writes every event immediately (file or stderr)
//   - RingTracer: keeps the last N events for a dump after a crash
//   - MultiTracer: fans out to several tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: crash dumps only
//   - LevelPhase: driver and pass boundaries
//   - LevelDetail: per-declaration spans
//   - LevelDebug: everything
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "resolve", parentID)
//	defer span.End("")
package trace
