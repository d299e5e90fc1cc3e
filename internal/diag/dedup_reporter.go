package diag

import "cstar/internal/source"

type dedupKey struct {
	code  Code
	sev   Severity
	file  source.FileID
	start source.LineCol
	msg   string
}

// DedupReporter forwards each distinct diagnostic once. Two reports are
// the same when code, severity, primary start and message agree; notes are
// ignored. Passes that revisit a declaration (resolution, instantiation,
// dispatch) share one DedupReporter per declaration so a finding reached
// twice is listed once.
type DedupReporter struct {
	next       Reporter
	seen       map[dedupKey]struct{}
	suppressed int
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{
		next: next,
		seen: make(map[dedupKey]struct{}),
	}
}

func (r *DedupReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if r == nil {
		return
	}
	key := dedupKey{code: code, sev: sev, file: primary.File, start: primary.Start, msg: msg}
	if _, ok := r.seen[key]; ok {
		r.suppressed++
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(code, sev, primary, msg, notes)
	}
}

// Suppressed returns how many reports were dropped as repeats.
func (r *DedupReporter) Suppressed() int {
	if r == nil {
		return 0
	}
	return r.suppressed
}
