package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"cstar/internal/config"
	"cstar/internal/trace"
)

// ringTracer is kept for dumping recent events when a check panics.
var ringTracer *trace.RingTracer

// setupTracing builds the tracer described by cfg and attaches it to the
// command context. The returned cleanup flushes and closes it.
func setupTracing(cmd *cobra.Command, cfg config.TraceConfig) (func(), error) {
	level, err := trace.ParseLevel(cfg.Level)
	if err != nil {
		return nil, errors.Wrap(err, "invalid trace level")
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}
	mode, err := trace.ParseMode(cfg.Mode)
	if err != nil {
		return nil, errors.Wrap(err, "invalid trace mode")
	}
	format, err := trace.ParseFormat(cfg.Format)
	if err != nil {
		return nil, errors.Wrap(err, "invalid trace format")
	}
	output := cfg.Output
	if output == "" {
		output = "-"
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: output,
		RingSize:   cfg.RingSize,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create tracer")
	}
	ringTracer = trace.RingOf(tracer)

	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)

	cleanup := func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}

// dumpTraceOnPanic writes the ring buffer to stderr and re-panics.
func dumpTraceOnPanic() {
	r := recover()
	if r == nil {
		return
	}
	if ringTracer != nil {
		fmt.Fprintf(os.Stderr, "panic: %v\nlast trace events:\n", r)
		_ = ringTracer.Dump(os.Stderr, trace.FormatText)
	}
	panic(r)
}
