package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"cstar/internal/diag"
	"cstar/internal/source"
)

type palette struct {
	err, warn, info, code, loc, note *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow, color.Bold),
		info: color.New(color.FgCyan),
		code: color.New(color.Bold),
		loc:  color.New(color.Faint),
		note: color.New(color.FgBlue),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.loc, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

func location(fs *source.FileSet, sp source.Span, mode PathMode, baseDir string) string {
	if sp.Empty() {
		return formatPath(fs.Path(sp.File), mode, baseDir)
	}
	return fmt.Sprintf("%s:%d:%d", formatPath(fs.Path(sp.File), mode, baseDir), sp.Start.Line, sp.Start.Col)
}

// Pretty writes one block per diagnostic, in bag order:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message> [<decl>]
//	  note: <path>:<line>:<col>: <message>
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	var sb strings.Builder
	for _, d := range bag.Items() {
		if d.Primary.Empty() && d.Code == diag.PipeTimings {
			fmt.Fprintf(&sb, "%s %s: %s\n", p.info.Sprint(d.Severity.String()), p.code.Sprint(d.Code.ID()), d.Message)
			continue
		}
		fmt.Fprintf(&sb, "%s: %s %s: %s",
			p.loc.Sprint(location(fs, d.Primary, opts.PathMode, opts.BaseDir)),
			p.severity(d.Severity).Sprint(d.Severity.String()),
			p.code.Sprint(d.Code.ID()),
			d.Message)
		if opts.ShowDecl && d.Decl != "" {
			fmt.Fprintf(&sb, " [%s]", d.Decl)
		}
		sb.WriteString("\n")
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(&sb, "  %s %s: %s\n", p.note.Sprint("note:"), location(fs, n.Span, opts.PathMode, opts.BaseDir), n.Msg)
		}
	}
	if opts.Summary {
		sb.WriteString(summary(bag))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func summary(bag *diag.Bag) string {
	errs := bag.Count(diag.SevError)
	warns := bag.Count(diag.SevWarning) - errs
	return plural(errs, "error") + ", " + plural(warns, "warning") + "\n"
}
