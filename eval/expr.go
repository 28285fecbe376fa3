package eval

import (
	"math"
	"strconv"

	"github.com/PeterBassett/Compiler-sub001/bound"
	"github.com/PeterBassett/Compiler-sub001/report"
	"github.com/PeterBassett/Compiler-sub001/types"
)

func (in *Interpreter) eval(fr *frame, e bound.Expression) Value {
	switch v := e.(type) {
	case *bound.Literal:
		return v.Value
	case *bound.Variable:
		id := v.Identifier
		if id.IsVariable() {
			return in.lookup(fr, id.Symbol).Load()
		}

		return FunctionValue{Name: id.Name}
	case *bound.Unary:
		return unary(v.Op, in.eval(fr, v.Operand))
	case *bound.Binary:
		return in.binary(fr, v)
	case *bound.Call:
		return in.evalCall(fr, v)
	case *bound.Conversion:
		return convert(in.eval(fr, v.Operand), v.Operand.Type(), v.Type())
	case *bound.GetMember, *bound.Index:
		return in.address(fr, e).Load()
	case *bound.Dereference:
		return deref(in.eval(fr, v.Operand)).Load()
	case *bound.AddressOf:
		return in.address(fr, v.Operand)
	}

	report.ICE("eval: expression kind %s in lowered program", e.Kind())
	return nil
}

func deref(v Value) Ref {
	ref, ok := v.(Ref)
	if !ok {
		fail("null pointer dereference")
	}

	return ref
}

// address evaluates an expression to the storage it denotes.  Aggregates that
// aren't stored in a variable are given temporary storage.
func (in *Interpreter) address(fr *frame, e bound.Expression) Ref {
	switch v := e.(type) {
	case *bound.Variable:
		if v.Identifier.IsVariable() {
			return in.lookup(fr, v.Identifier.Symbol)
		}
	case *bound.GetMember:
		var s *StructValue
		if v.Operand.Type().IsPointer() {
			s = deref(in.eval(fr, v.Operand)).Load().(*StructValue)
		} else {
			s = in.address(fr, v.Operand).Load().(*StructValue)
		}

		return fieldRef{s: s, index: fieldIndex(v.Operand.Type(), v.Member)}
	case *bound.Index:
		index := int(in.eval(fr, v.Index).(int32))

		if v.Operand.Type().IsPointer() {
			return offsetRef(deref(in.eval(fr, v.Operand)), index)
		}

		a := in.address(fr, v.Operand).Load().(*ArrayValue)
		if index < 0 || index >= len(a.Elements) {
			fail("index %d out of range for an array of length %d", index, len(a.Elements))
		}

		return elemRef{a: a, index: index}
	case *bound.Dereference:
		return deref(in.eval(fr, v.Operand))
	}

	if e.Type().IsAggregate() {
		return &cell{value: in.eval(fr, e)}
	}

	report.ICE("eval: expression kind %s is not addressable", e.Kind())
	return nil
}

// offsetRef indexes a pointer.  Only pointers to array elements can be offset.
func offsetRef(ref Ref, index int) Ref {
	if index == 0 {
		return ref
	}

	elem, ok := ref.(elemRef)
	if !ok || elem.index+index < 0 || elem.index+index >= len(elem.a.Elements) {
		fail("pointer offset %d is out of bounds", index)
	}

	return elemRef{a: elem.a, index: elem.index + index}
}

// -----------------------------------------------------------------------------

func (in *Interpreter) evalCall(fr *frame, c *bound.Call) Value {
	callee := c.Callee()

	args := make([]Value, len(c.Arguments()))
	for i, arg := range c.Arguments() {
		args[i] = copyValue(in.eval(fr, arg))
	}

	if callee.IsBuiltin() {
		fn, ok := in.registry.Lookup(callee.Name)
		if !ok {
			report.ICE("eval: builtin `%s` is not in the registry", callee.Name)
		}

		return fn.Eval(args)
	}

	name := callee.Name
	if callee.IsVariable() {
		fv, ok := in.lookup(fr, callee.Symbol).Load().(FunctionValue)
		if !ok {
			fail("call through a null function value")
		}

		name = fv.Name
	}

	fn, ok := in.functions[name]
	if !ok {
		report.ICE("eval: call to undefined function `%s`", name)
	}

	return in.call(fn, args)
}

// -----------------------------------------------------------------------------

func unary(op *bound.UnaryOperator, v Value) Value {
	switch op.Kind {
	case bound.UnaryIdentity:
		return v
	case bound.UnaryLogicalNot:
		return !v.(bool)
	case bound.UnaryNegation:
		switch x := v.(type) {
		case int32:
			return -x
		case float64:
			return -x
		}
	case bound.UnaryBitwiseNot:
		switch x := v.(type) {
		case int32:
			return ^x
		case uint8:
			return ^x
		}
	}

	report.ICE("eval: unary operator %d on %T", op.Kind, v)
	return nil
}

func (in *Interpreter) binary(fr *frame, b *bound.Binary) Value {
	switch b.Op.Kind {
	case bound.BinaryLogicalAnd:
		return in.eval(fr, b.Left).(bool) && in.eval(fr, b.Right).(bool)
	case bound.BinaryLogicalOr:
		return in.eval(fr, b.Left).(bool) || in.eval(fr, b.Right).(bool)
	}

	left, right := in.eval(fr, b.Left), in.eval(fr, b.Right)

	switch b.Op.Kind {
	case bound.BinaryEquals:
		return left == right
	case bound.BinaryNotEquals:
		return left != right
	}

	switch x := left.(type) {
	case int32:
		return intBinary(b.Op.Kind, x, right.(int32))
	case uint8:
		return byteBinary(b.Op.Kind, x, right.(uint8))
	case float64:
		return floatBinary(b.Op.Kind, x, right.(float64))
	}

	report.ICE("eval: binary operator %d on %T", b.Op.Kind, left)
	return nil
}

func intBinary(kind bound.BinaryOperatorKind, x, y int32) Value {
	switch kind {
	case bound.BinaryAddition:
		return x + y
	case bound.BinarySubtraction:
		return x - y
	case bound.BinaryMultiplication:
		return x * y
	case bound.BinaryDivision:
		if y == 0 {
			fail("division by zero")
		}
		return x / y
	case bound.BinaryModulus:
		if y == 0 {
			fail("division by zero")
		}
		return x % y
	case bound.BinaryBitwiseAnd:
		return x & y
	case bound.BinaryBitwiseOr:
		return x | y
	case bound.BinaryBitwiseXor:
		return x ^ y
	}

	return compare(kind, x < y, x > y)
}

func byteBinary(kind bound.BinaryOperatorKind, x, y uint8) Value {
	switch kind {
	case bound.BinaryAddition:
		return x + y
	case bound.BinarySubtraction:
		return x - y
	case bound.BinaryMultiplication:
		return x * y
	case bound.BinaryDivision:
		if y == 0 {
			fail("division by zero")
		}
		return x / y
	case bound.BinaryModulus:
		if y == 0 {
			fail("division by zero")
		}
		return x % y
	case bound.BinaryBitwiseAnd:
		return x & y
	case bound.BinaryBitwiseOr:
		return x | y
	case bound.BinaryBitwiseXor:
		return x ^ y
	}

	return compare(kind, x < y, x > y)
}

func floatBinary(kind bound.BinaryOperatorKind, x, y float64) Value {
	switch kind {
	case bound.BinaryAddition:
		return x + y
	case bound.BinarySubtraction:
		return x - y
	case bound.BinaryMultiplication:
		return x * y
	case bound.BinaryDivision:
		return x / y
	}

	return compare(kind, x < y, x > y)
}

// compare evaluates an ordering comparison from the strict orderings of its
// operands.
func compare(kind bound.BinaryOperatorKind, less, greater bool) Value {
	switch kind {
	case bound.BinaryLess:
		return less
	case bound.BinaryLessOrEquals:
		return !greater
	case bound.BinaryGreater:
		return greater
	case bound.BinaryGreaterOrEquals:
		return !less
	}

	report.ICE("eval: binary operator %d is not a comparison", kind)
	return nil
}

// -----------------------------------------------------------------------------

// convert converts a value between types with the semantics of the target
// machine's conversion instructions.
func convert(v Value, from, to *types.Type) Value {
	if from.Equals(to) || from.Kind == types.KindNull || from.IsPointer() {
		return v
	}

	switch to.Kind {
	case types.KindInt:
		switch x := v.(type) {
		case uint8:
			return int32(x)
		case bool:
			return boolInt(x)
		case float64:
			return floatToInt(x)
		case string:
			n, err := strconv.ParseInt(x, 10, 32)
			if err != nil {
				fail("cannot convert %q to an int", x)
			}
			return int32(n)
		}
	case types.KindByte:
		switch x := v.(type) {
		case int32:
			return uint8(x)
		case bool:
			return uint8(boolInt(x))
		case float64:
			return uint8(floatToInt(x))
		case string:
			n, err := strconv.ParseUint(x, 10, 8)
			if err != nil {
				fail("cannot convert %q to a byte", x)
			}
			return uint8(n)
		}
	case types.KindFloat:
		switch x := v.(type) {
		case int32:
			return float64(x)
		case uint8:
			return float64(x)
		case string:
			f, err := strconv.ParseFloat(x, 64)
			if err != nil {
				fail("cannot convert %q to a float", x)
			}
			return f
		}
	case types.KindBool:
		switch x := v.(type) {
		case int32:
			return x != 0
		case uint8:
			return x != 0
		case string:
			b, err := strconv.ParseBool(x)
			if err != nil {
				fail("cannot convert %q to a bool", x)
			}
			return b
		}
	case types.KindString:
		if s, ok := v.(string); ok {
			return s
		}

		return Format(v)
	}

	report.ICE("eval: conversion from `%s` to `%s`", from, to)
	return nil
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}

	return 0
}

// floatToInt truncates a float to an int.  Values outside the range of an
// int saturate.
func floatToInt(f float64) int32 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}

	return int32(f)
}
