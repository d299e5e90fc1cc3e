package dispatch

import (
	"fmt"
	"io"
	"strings"

	"cstar/internal/ast"
	"cstar/internal/types"
)

// Dump writes descriptors in interface declaration order.
func Dump(w io.Writer, res *Result, in *types.Interner) error {
	if w == nil || res == nil {
		return nil
	}
	for _, d := range res.Descriptors {
		if _, err := fmt.Fprintf(w, "interface %s union=%s implementers=%d\n", d.Interface.Name, d.Union, len(d.Entries)); err != nil {
			return err
		}
		for i, sig := range d.Signatures {
			if _, err := fmt.Fprintf(w, "  sig %d %s\n", i, signatureString(sig, in)); err != nil {
				return err
			}
		}
		for _, e := range d.Entries {
			targets := make([]string, 0, len(e.Methods))
			for _, m := range e.Methods {
				targets = append(targets, ast.MemberSymbol(e.Class.Name, m.Name))
			}
			if _, err := fmt.Fprintf(w, "  tag %d %s -> %s\n", e.Tag, e.TagName, strings.Join(targets, ", ")); err != nil {
				return err
			}
		}
		for _, th := range d.Thunks {
			if _, err := fmt.Fprintf(w, "  thunk %s [%s]\n", th.Symbol, strings.Join(th.Targets, ", ")); err != nil {
				return err
			}
		}
	}
	return nil
}

func signatureString(m *ast.Member, in *types.Interner) string {
	var sb strings.Builder
	sb.WriteString(m.Name)
	if m.IsGeneric() {
		sb.WriteString("<" + m.TypeParam + ">")
	}
	sb.WriteByte('(')
	for i, p := range m.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(in.Name(p.Type.ID))
	}
	sb.WriteString(") ")
	sb.WriteString(in.Name(m.Result.ID))
	return sb.String()
}
