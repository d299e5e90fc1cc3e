package main

import (
	"context"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"cstar/internal/astio"
	"cstar/internal/driver"
	"cstar/internal/pipeline"
	"cstar/internal/ui"
)

type checkOutcome struct {
	result *driver.Result
	err    error
}

// runCheckWithUI runs the check in the background while a progress view
// follows its declarations.
func runCheckWithUI(ctx context.Context, path string, opts driver.Options) (*driver.Result, error) {
	// The view needs its rows up front; a document that does not decode
	// gets the plain path, which reports the same error.
	prog, err := astio.Load(path)
	if err != nil {
		return driver.Check(ctx, path, opts)
	}
	var decls []string
	for _, mod := range prog.Modules {
		for _, d := range mod.Decls {
			decls = append(decls, d.DeclName())
		}
	}

	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)
	go func() {
		runOpts := opts
		runOpts.Progress = pipeline.ChannelSink{Ch: events}
		// a cache hit would leave the view with nothing to follow
		runOpts.NeedArtifacts = true
		res, err := driver.Check(ctx, path, runOpts)
		outcomeCh <- checkOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("cstar check "+filepath.Base(path), decls, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// The view may quit early; keep the run from blocking on its sink.
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
