package layout

import (
	"github.com/cockroachdb/errors"

	"cstar/internal/ir"
	"cstar/internal/types"
)

// Annotate fills the size, alignment and field offsets of every struct and
// union in p. The first failure is returned with the struct and field
// that caused it.
func Annotate(p *ir.Program, e *Engine) error {
	if p == nil || e == nil {
		return nil
	}
	for _, st := range p.Structs {
		fields := make([]types.TypeID, len(st.Fields))
		for i, f := range st.Fields {
			if _, err := e.LayoutOf(f.Type); err != nil {
				return errors.Wrapf(err, "struct %s field %s", st.Name, f.Name)
			}
			fields[i] = f.Type
		}
		l, err := e.StructOf(fields)
		if err != nil {
			return errors.Wrapf(err, "struct %s", st.Name)
		}
		st.Size, st.Align = l.Size, l.Align
		for i := range st.Fields {
			st.Fields[i].Offset = l.FieldOffsets[i]
		}
	}
	u := e.DispatchUnion()
	for _, un := range p.Unions {
		un.Size, un.Align = u.Size, u.Align
	}
	return nil
}
