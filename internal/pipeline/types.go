package pipeline

import "time"

// Stage describes one pass of a check run.
type Stage string

const (
	// StageSymbols populates and freezes the symbol table.
	StageSymbols Stage = "symbols"
	// StageSignatures resolves declared types and class shapes.
	StageSignatures Stage = "signatures"
	// StageResolve resolves member bodies in parallel.
	StageResolve Stage = "resolve"
	// StageMono instantiates generic members.
	StageMono Stage = "mono"
	// StageDispatch lowers interface calls.
	StageDispatch Stage = "dispatch"
	// StageIR builds and validates the emission IR.
	StageIR Stage = "ir"
)

// Stages lists every stage in execution order.
var Stages = []Stage{StageSymbols, StageSignatures, StageResolve, StageMono, StageDispatch, StageIR}

// Status is where a declaration or the run stands within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error" // failed or blocked; see Event.State
)

// Event reports progress for a declaration, or for the whole run when
// Decl is empty.
type Event struct {
	Decl    string
	Stage   Stage
	Status  Status
	State   State
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Events are delivered from the
// goroutine calling Run.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings holds stage durations.
type Timings struct {
	stages map[Stage]time.Duration
}

func (t *Timings) ensure() {
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
}

// Set stores a duration for the given stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.stages[stage] = dur
}

// Has reports whether a duration for stage is recorded.
func (t Timings) Has(stage Stage) bool {
	if t.stages == nil {
		return false
	}
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages.
func (t Timings) Sum(stages ...Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
