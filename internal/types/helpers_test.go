package types

import "cstar/internal/source"

func spanZero() source.Span { return source.Span{} }
