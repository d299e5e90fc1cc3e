package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// input AST contract
	AstInfo    Code = 1000
	InvalidAST Code = 1001

	// modules and imports
	ModInfo            Code = 2000
	ModImportUnknown   Code = 2001
	ModImportDuplicate Code = 2002
	ModImportSelf      Code = 2003
	ModImportCycle     Code = 2004

	// symbols and type resolution
	SemaInfo                     Code = 3000
	SemaDuplicateDeclaration     Code = 3001
	SemaUnknownType              Code = 3002
	SemaNotAClassType            Code = 3003
	SemaTypeMismatch             Code = 3004
	SemaIncompleteInitialization Code = 3005
	SemaUnknownMember            Code = 3006
	SemaUnknownIdentifier        Code = 3007
	SemaMissingReturn            Code = 3008
	SemaConstructorShape         Code = 3009
	SemaDuplicateField           Code = 3010
	SemaRecursiveField           Code = 3011
	SemaFieldShadowsType         Code = 3012
	SemaNotAnInterface           Code = 3013
	SemaUnsatisfiedInterface     Code = 3014
	SemaArityMismatch            Code = 3015
	SemaNotImported              Code = 3016
	SemaAmbiguousCall            Code = 3017

	// monomorphization
	MonoInfo                Code = 4000
	MonoUnsubstitutableBody Code = 4001
	MonoDepthExceeded       Code = 4002
	MonoSymbolCollision     Code = 4003

	// interface lowering
	DispatchInfo                 Code = 5000
	DispatchUnsatisfiedInterface Code = 5001
	DispatchNoImplementers       Code = 5002

	// pipeline
	PipeInfo                Code = 6000
	PipeBlockedByDependency Code = 6001
	PipeTimings             Code = 6002
)

var codeDescription = map[Code]string{
	UnknownCode:                  "Unknown error",
	AstInfo:                      "AST information",
	InvalidAST:                   "Malformed AST",
	ModInfo:                      "Module information",
	ModImportUnknown:             "Import of unknown module",
	ModImportDuplicate:           "Duplicate import",
	ModImportSelf:                "Module imports itself",
	ModImportCycle:               "Cyclic module imports",
	SemaInfo:                     "Semantic information",
	SemaDuplicateDeclaration:     "Duplicate declaration",
	SemaUnknownType:              "Unknown type",
	SemaNotAClassType:            "Not a class type",
	SemaTypeMismatch:             "Type mismatch",
	SemaIncompleteInitialization: "Incomplete initialization",
	SemaUnknownMember:            "Unknown member",
	SemaUnknownIdentifier:        "Unknown identifier",
	SemaMissingReturn:            "Missing return",
	SemaConstructorShape:         "Malformed constructor",
	SemaDuplicateField:           "Duplicate field",
	SemaRecursiveField:           "Recursive field",
	SemaFieldShadowsType:         "Field shadows type",
	SemaNotAnInterface:           "Not an interface",
	SemaUnsatisfiedInterface:     "Unsatisfied interface",
	SemaArityMismatch:            "Argument count mismatch",
	SemaNotImported:              "Declaration not imported",
	SemaAmbiguousCall:            "Ambiguous function call",
	MonoInfo:                     "Instantiation information",
	MonoUnsubstitutableBody:      "Unsubstitutable generic body",
	MonoDepthExceeded:            "Instantiation depth exceeded",
	MonoSymbolCollision:          "Specialization symbol already emitted",
	DispatchInfo:                 "Dispatch information",
	DispatchUnsatisfiedInterface: "Unsatisfied interface",
	DispatchNoImplementers:       "Interface has no implementers",
	PipeInfo:                     "Pipeline information",
	PipeBlockedByDependency:      "Blocked by failed dependency",
	PipeTimings:                  "Pipeline timings",
}

// ID returns the stable code identifier, e.g. "SEM3004".
func (c Code) ID() string {
	ic := int(c)
	switch {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("AST%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("MOD%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("MON%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("DSP%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("PIP%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	if desc, ok := codeDescription[c]; ok {
		return desc
	}
	return codeDescription[UnknownCode]
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
