// Package diag defines the diagnostic model shared by all core passes.
//
// Passes never fail fast on user errors: they emit a Diagnostic through a
// Reporter and keep going with the next declaration. A BagReporter bound to a
// declaration name stamps that identity on every finding so the pipeline can
// decide which declarations halted.
//
// Diagnostic fields:
//
//   - Severity – Info, Warning or Error (severity.go).
//   - Code – numeric identifier with a stable string form (codes.go).
//   - Message – short human text naming the involved field/type/member.
//   - Primary – source position reported by the parser.
//   - Decl – owning declaration identity.
//   - Notes – secondary positions, used sparingly.
//
// Rendering lives in internal/diagfmt; this package only formats the compact
// golden form used by tests and the short CLI output.
package diag
