package sema

import (
	"cstar/internal/ast"
	"cstar/internal/types"
)

type opResult uint8

const (
	resultOperand opResult = iota
	resultBool
)

// binarySpec lists the operand families an operator accepts. Both operands
// must have the same type; there are no implicit conversions.
type binarySpec struct {
	operands types.FamilyMask
	result   opResult
}

var binarySpecTable = map[ast.BinaryOp]binarySpec{
	ast.OpAdd:       {operands: types.FamilyNumeric | types.FamilyString, result: resultOperand},
	ast.OpSub:       {operands: types.FamilyNumeric, result: resultOperand},
	ast.OpMul:       {operands: types.FamilyNumeric, result: resultOperand},
	ast.OpDiv:       {operands: types.FamilyNumeric, result: resultOperand},
	ast.OpMod:       {operands: types.FamilyIntegral, result: resultOperand},
	ast.OpEq:        {operands: types.FamilyAny, result: resultBool},
	ast.OpNotEq:     {operands: types.FamilyAny, result: resultBool},
	ast.OpLess:      {operands: types.FamilyNumeric | types.FamilyChar, result: resultBool},
	ast.OpGreater:   {operands: types.FamilyNumeric | types.FamilyChar, result: resultBool},
	ast.OpLessEq:    {operands: types.FamilyNumeric | types.FamilyChar, result: resultBool},
	ast.OpGreaterEq: {operands: types.FamilyNumeric | types.FamilyChar, result: resultBool},
	ast.OpAnd:       {operands: types.FamilyBool, result: resultBool},
	ast.OpOr:        {operands: types.FamilyBool, result: resultBool},
	ast.OpBitAnd:    {operands: types.FamilyIntegral, result: resultOperand},
	ast.OpBitOr:     {operands: types.FamilyIntegral, result: resultOperand},
	ast.OpBitXor:    {operands: types.FamilyIntegral, result: resultOperand},
}

type unarySpec struct {
	operand types.FamilyMask
	result  opResult
}

var unarySpecTable = map[ast.UnaryOp]unarySpec{
	ast.OpNeg:    {operand: types.FamilySignedInt | types.FamilyFloat, result: resultOperand},
	ast.OpNot:    {operand: types.FamilyBool, result: resultBool},
	ast.OpBitNot: {operand: types.FamilyIntegral, result: resultOperand},
}

func accepts(mask, fam types.FamilyMask) bool {
	if mask&types.FamilyAny != 0 {
		return fam != types.FamilyNone
	}
	return mask&fam != 0
}
