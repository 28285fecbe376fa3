package bound

import (
	"github.com/PeterBassett/Compiler-sub001/ast"
	"github.com/PeterBassett/Compiler-sub001/types"
)

// UnaryOperatorKind is the operation performed by a unary operator.
type UnaryOperatorKind int

// Enumeration of unary operations.
const (
	UnaryIdentity UnaryOperatorKind = iota
	UnaryNegation
	UnaryLogicalNot
	UnaryBitwiseNot
)

// UnaryOperator is a resolved unary operator: an operation on an operand type.
type UnaryOperator struct {
	Syntax      ast.Operator
	Kind        UnaryOperatorKind
	OperandType *types.Type
	ResultType  *types.Type
}

// BinaryOperatorKind is the operation performed by a binary operator.
type BinaryOperatorKind int

// Enumeration of binary operations.
const (
	BinaryAddition BinaryOperatorKind = iota
	BinarySubtraction
	BinaryMultiplication
	BinaryDivision
	BinaryModulus
	BinaryLogicalAnd
	BinaryLogicalOr
	BinaryBitwiseAnd
	BinaryBitwiseOr
	BinaryBitwiseXor
	BinaryEquals
	BinaryNotEquals
	BinaryLess
	BinaryLessOrEquals
	BinaryGreater
	BinaryGreaterOrEquals
)

// IsComparison returns whether the operation yields a `bool` comparing its
// operands.
func (k BinaryOperatorKind) IsComparison() bool {
	return k >= BinaryEquals
}

// BinaryOperator is a resolved binary operator: an operation on a pair of
// operand types.
type BinaryOperator struct {
	Syntax     ast.Operator
	Kind       BinaryOperatorKind
	LeftType   *types.Type
	RightType  *types.Type
	ResultType *types.Type
}

// -----------------------------------------------------------------------------

var unaryOperators = []*UnaryOperator{
	{ast.OpPlus, UnaryIdentity, types.Int, types.Int},
	{ast.OpPlus, UnaryIdentity, types.Float, types.Float},
	{ast.OpMinus, UnaryNegation, types.Int, types.Int},
	{ast.OpMinus, UnaryNegation, types.Float, types.Float},
	{ast.OpBang, UnaryLogicalNot, types.Bool, types.Bool},
	{ast.OpTilde, UnaryBitwiseNot, types.Int, types.Int},
	{ast.OpTilde, UnaryBitwiseNot, types.Byte, types.Byte},
}

var binaryOperators = buildBinaryOperators()

func buildBinaryOperators() []*BinaryOperator {
	var ops []*BinaryOperator
	add := func(syntax ast.Operator, kind BinaryOperatorKind, operand, result *types.Type) {
		ops = append(ops, &BinaryOperator{syntax, kind, operand, operand, result})
	}

	for _, t := range []*types.Type{types.Int, types.Float, types.Byte} {
		add(ast.OpPlus, BinaryAddition, t, t)
		add(ast.OpMinus, BinarySubtraction, t, t)
		add(ast.OpStar, BinaryMultiplication, t, t)
		add(ast.OpSlash, BinaryDivision, t, t)
		add(ast.OpEqEq, BinaryEquals, t, types.Bool)
		add(ast.OpBangEq, BinaryNotEquals, t, types.Bool)
		add(ast.OpLt, BinaryLess, t, types.Bool)
		add(ast.OpLtEq, BinaryLessOrEquals, t, types.Bool)
		add(ast.OpGt, BinaryGreater, t, types.Bool)
		add(ast.OpGtEq, BinaryGreaterOrEquals, t, types.Bool)
	}

	for _, t := range []*types.Type{types.Int, types.Byte} {
		add(ast.OpPercent, BinaryModulus, t, t)
		add(ast.OpAmp, BinaryBitwiseAnd, t, t)
		add(ast.OpPipe, BinaryBitwiseOr, t, t)
		add(ast.OpCaret, BinaryBitwiseXor, t, t)
	}

	add(ast.OpAmpAmp, BinaryLogicalAnd, types.Bool, types.Bool)
	add(ast.OpPipePipe, BinaryLogicalOr, types.Bool, types.Bool)
	add(ast.OpEqEq, BinaryEquals, types.Bool, types.Bool)
	add(ast.OpBangEq, BinaryNotEquals, types.Bool, types.Bool)

	return ops
}

// LookupUnaryOperator looks up the unary operator `op` applied to `operand`.
func LookupUnaryOperator(op ast.Operator, operand *types.Type) (*UnaryOperator, bool) {
	for _, uop := range unaryOperators {
		if uop.Syntax == op && uop.OperandType.Equals(operand) {
			return uop, true
		}
	}

	return nil, false
}

// LookupBinaryOperator looks up the binary operator `op` applied to `left` and
// `right`.  Pointers of the same type can be compared for equality.
func LookupBinaryOperator(op ast.Operator, left, right *types.Type) (*BinaryOperator, bool) {
	for _, bop := range binaryOperators {
		if bop.Syntax == op && bop.LeftType.Equals(left) && bop.RightType.Equals(right) {
			return bop, true
		}
	}

	if left.IsPointer() && left.Equals(right) {
		switch op {
		case ast.OpEqEq:
			return &BinaryOperator{op, BinaryEquals, left, right, types.Bool}, true
		case ast.OpBangEq:
			return &BinaryOperator{op, BinaryNotEquals, left, right, types.Bool}, true
		}
	}

	return nil, false
}
