package trace

import (
	"io"
	"os"
)

type nopTracer struct{}

func (nopTracer) Emit(*Event) {}
func (nopTracer) Flush() error { return nil }
func (nopTracer) Close() error { return nil }
func (nopTracer) Level() Level { return LevelOff }
func (nopTracer) Enabled() bool { return false }

// Nop is used whenever tracing is off.
var Nop Tracer = nopTracer{}

func isStdStream(w io.Writer) bool {
	return w == os.Stdout || w == os.Stderr
}
