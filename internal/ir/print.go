package ir

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Dump writes a human-readable listing of p: structs with aligned field
// columns, unions with their tags, then function signatures. Layout
// comments appear once the layout pass has run.
func Dump(w io.Writer, p *Program) error {
	if w == nil || p == nil {
		return nil
	}
	var sb strings.Builder
	for _, st := range p.Structs {
		fmt.Fprintf(&sb, "struct %s {", st.Name)
		if st.Align > 0 {
			fmt.Fprintf(&sb, " // size %d, align %d", st.Size, st.Align)
		}
		sb.WriteByte('\n')
		width := 0
		for _, f := range st.Fields {
			width = max(width, runewidth.StringWidth(f.CType))
		}
		for _, f := range st.Fields {
			fmt.Fprintf(&sb, "  %s %s;", pad(f.CType, width), f.Name)
			if st.Align > 0 {
				fmt.Fprintf(&sb, " // +%d", f.Offset)
			}
			sb.WriteByte('\n')
		}
		sb.WriteString("}\n")
	}
	for _, u := range p.Unions {
		fmt.Fprintf(&sb, "union %s {", u.Name)
		if u.Align > 0 {
			fmt.Fprintf(&sb, " // size %d, align %d", u.Size, u.Align)
		}
		sb.WriteByte('\n')
		width := 0
		for _, t := range u.Tags {
			width = max(width, runewidth.StringWidth(t.Name))
		}
		for _, t := range u.Tags {
			fmt.Fprintf(&sb, "  %s = %d -> %s*\n", pad(t.Name, width), t.Value, t.Struct)
		}
		sb.WriteString("}\n")
	}
	for _, f := range p.Funcs {
		params := make([]string, 0, len(f.Params))
		for _, prm := range f.Params {
			params = append(params, prm.CType+" "+prm.Name)
		}
		fmt.Fprintf(&sb, "%s %s %s(%s)", f.Kind, f.CResult, f.Name, strings.Join(params, ", "))
		if f.Origin != "" {
			fmt.Fprintf(&sb, " from %s", f.Origin)
		}
		sb.WriteByte('\n')
		for _, c := range f.Cases {
			fmt.Fprintf(&sb, "  case %s: %s\n", c.Tag, c.Target)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func pad(s string, width int) string {
	if n := runewidth.StringWidth(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
