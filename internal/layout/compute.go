package layout

import (
	"cstar/internal/types"
)

func (e *Engine) computeLayout(id types.TypeID) (TypeLayout, *Error) {
	bad := TypeLayout{Size: 0, Align: 1}
	if id == types.NoTypeID || e.Types == nil {
		return bad, &Error{Kind: ErrUnresolved, Type: id}
	}
	tt, ok := e.Types.Lookup(id)
	if !ok {
		return bad, &Error{Kind: ErrUnresolved, Type: id}
	}

	switch tt.Kind {
	case types.KindBool, types.KindChar:
		return scalarLayoutBytes(1), nil

	case types.KindInt, types.KindUint, types.KindFloat:
		if tt.Width == types.WidthAny {
			return bad, &Error{Kind: ErrUnresolved, Type: id, Name: e.Types.Name(id)}
		}
		return scalarLayoutBytes(int(tt.Width) / 8), nil

	case types.KindString, types.KindClass:
		return e.ptrLayout(), nil

	case types.KindInterface:
		return e.DispatchUnion(), nil

	case types.KindParam:
		return bad, &Error{Kind: ErrGenericParam, Type: id, Name: e.Types.Name(id)}

	case types.KindVoid:
		return bad, &Error{Kind: ErrVoidValue, Type: id}

	default:
		return bad, &Error{Kind: ErrUnresolved, Type: id}
	}
}

func (e *Engine) ptrLayout() TypeLayout {
	return TypeLayout{Size: e.Target.PtrSize, Align: e.Target.PtrAlign}
}

// scalarLayoutBytes assumes natural alignment.
func scalarLayoutBytes(n int) TypeLayout {
	if n <= 0 {
		return TypeLayout{Size: 0, Align: 1}
	}
	return TypeLayout{Size: n, Align: n}
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	if r := n % align; r != 0 {
		return n + (align - r)
	}
	return n
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
