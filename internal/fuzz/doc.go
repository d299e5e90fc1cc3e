// Package fuzztests houses Go fuzz harnesses that feed arbitrary AST
// documents through decoding and the whole pipeline. A harness fails on a
// panic, a hang, or an error other than a decode failure or an invalid AST.
package fuzztests
