package mono

import (
	"fmt"
	"io"

	"cstar/internal/source"
	"cstar/internal/types"
)

// Dump writes the specializations of set in creation order together with
// the sites that requested them.
func Dump(w io.Writer, set *Set, fs *source.FileSet, in *types.Interner) error {
	if w == nil || set == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "specializations=%d\n", set.Len()); err != nil {
		return err
	}
	for _, sp := range set.All() {
		status := "ok"
		switch {
		case sp.Failed && sp.Member == nil:
			status = "depth-exceeded"
		case sp.Failed:
			status = "failed"
		}
		entry := set.Uses.Entries[sp.Key]
		uses := 0
		if entry != nil {
			uses = len(entry.UseSites)
		}
		if _, err := fmt.Fprintf(w, "%s  %s[%s=%s]  %s  uses=%d\n",
			sp.Symbol, sp.Origin.QualifiedName(), sp.Origin.TypeParam, in.Name(sp.Key.Concrete), status, uses); err != nil {
			return err
		}
		if entry == nil {
			continue
		}
		for _, us := range entry.UseSites {
			if _, err := fmt.Fprintf(w, "  at %s:%d:%d from %s\n",
				fs.Path(us.Span.File), us.Span.Start.Line, us.Span.Start.Col, us.Caller); err != nil {
				return err
			}
		}
	}
	return nil
}
