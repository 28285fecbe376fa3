package codegen

import (
	"strconv"
	"strings"

	"github.com/PeterBassett/Compiler-sub001/bound"
	"github.com/PeterBassett/Compiler-sub001/common"
	"github.com/PeterBassett/Compiler-sub001/report"
	"github.com/PeterBassett/Compiler-sub001/types"
)

// valueSize returns the size of the register value of type `t`.  Aggregates
// are held by address.
func (g *Generator) valueSize(t *types.Type) int {
	if t.IsAggregate() {
		return 4
	}

	return g.layout.Size(t)
}

func (g *Generator) push(t *types.Type) {
	g.emit("PUSH%s R1", suffix(g.valueSize(t)))
}

func (g *Generator) pop(t *types.Type, reg string) {
	g.emit("POP%s %s", suffix(g.valueSize(t)), reg)
}

// store stores R1 to memory.  Aggregates are block-copied from the address in
// R1.
func (g *Generator) store(ref memRef, t *types.Type) {
	if t.IsAggregate() {
		g.copyBlock(ref, at("R1"), g.layout.Size(t))
		return
	}

	if size := g.layout.Size(t); size > 0 {
		g.emit("MOV%s %s, R1", suffix(size), ref)
	}
}

// load loads a value from memory into R1.  Aggregates yield their address.
func (g *Generator) load(ref memRef, t *types.Type) {
	if t.IsAggregate() {
		g.loadAddress(ref)
		return
	}

	if size := g.layout.Size(t); size > 0 {
		g.emit("MOV%s R1, %s", suffix(size), ref)
	}
}

// loadAddress loads the address a memory operand refers to into R1.
func (g *Generator) loadAddress(ref memRef) {
	if ref.base != "R1" {
		g.emit("MOV R1, %s", ref.base)
	}

	switch {
	case ref.offset > 0:
		g.emit("ADD R1, %d", ref.offset)
	case ref.offset < 0:
		g.emit("SUB R1, %d", -ref.offset)
	}
}

// variableRef returns the storage of a variable.
func (g *Generator) variableRef(sym *common.VariableSymbol) memRef {
	if sym.IsGlobal {
		return memRef{base: "." + sym.Name}
	}

	offset, ok := g.fn.frame.offsets[sym]
	if !ok {
		report.ICE("codegen: variable `%s` has no storage in `%s`", sym.Name, g.fn.name)
	}

	return memRef{base: "BP", offset: offset}
}

// staticAddress returns the storage of an expression if its address is known
// without computing anything: variables, fields of such storage and elements
// at constant indices.
func (g *Generator) staticAddress(e bound.Expression) (memRef, bool) {
	switch v := e.(type) {
	case *bound.Variable:
		if v.Identifier.IsVariable() {
			return g.variableRef(v.Identifier.Symbol), true
		}
	case *bound.GetMember:
		if !v.Operand.Type().IsPointer() {
			if ref, ok := g.staticAddress(v.Operand); ok {
				offset, _ := g.layout.FieldOffset(v.Operand.Type(), v.Member)
				return ref.plus(offset), true
			}
		}
	case *bound.Index:
		if v.Operand.Type().IsArray {
			if n, ok := constantIndex(v.Index); ok {
				if ref, ok := g.staticAddress(v.Operand); ok {
					return ref.plus(n * g.layout.Size(v.Type())), true
				}
			}
		}
	}

	return memRef{}, false
}

func constantIndex(e bound.Expression) (int, bool) {
	if lit, ok := e.(*bound.Literal); ok {
		if n, ok := lit.Value.(int32); ok {
			return int(n), true
		}
	}

	return 0, false
}

// generateAddress computes the address of an assignable expression or of an
// aggregate value into R1.
func (g *Generator) generateAddress(e bound.Expression) {
	if ref, ok := g.staticAddress(e); ok {
		g.loadAddress(ref)
		return
	}

	switch v := e.(type) {
	case *bound.GetMember:
		if v.Operand.Type().IsPointer() {
			g.generateExpr(v.Operand)
		} else {
			g.generateAddress(v.Operand)
		}

		if offset, _ := g.layout.FieldOffset(v.Operand.Type(), v.Member); offset != 0 {
			g.emit("ADD R1, %d", offset)
		}
	case *bound.Index:
		elemSize := g.layout.Size(v.Type())
		if v.Operand.Type().IsArray {
			g.generateAddress(v.Operand)
		} else {
			g.generateExpr(v.Operand)
		}

		if n, ok := constantIndex(v.Index); ok {
			if n != 0 {
				g.emit("ADD R1, %d", n*elemSize)
			}
			return
		}

		g.emit("PUSH R1")
		g.generateExpr(v.Index)
		if elemSize != 1 {
			g.emit("MUL R1, %d", elemSize)
		}
		g.emit("POP R2")
		g.emit("ADD R1, R2")
	case *bound.Dereference:
		g.generateExpr(v.Operand)
	default:
		if !e.Type().IsAggregate() {
			report.ICE("codegen: expression kind %s is not addressable", e.Kind())
		}

		// aggregate values are already addresses
		g.generateExpr(e)
	}
}

// -----------------------------------------------------------------------------

// generateExpr generates an expression leaving its value in R1.
func (g *Generator) generateExpr(e bound.Expression) {
	switch v := e.(type) {
	case *bound.Literal:
		g.generateLiteral(v)
	case *bound.Variable:
		g.generateVariable(v)
	case *bound.Unary:
		g.generateUnary(v)
	case *bound.Binary:
		g.generateBinary(v)
	case *bound.Call:
		g.generateCall(v)
	case *bound.Conversion:
		g.generateConversion(v)
	case *bound.GetMember, *bound.Index:
		if ref, ok := g.staticAddress(e); ok {
			g.load(ref, e.Type())
			return
		}

		g.generateAddress(e)
		if !e.Type().IsAggregate() {
			g.load(at("R1"), e.Type())
		}
	case *bound.Dereference:
		g.generateExpr(v.Operand)
		if !v.Type().IsAggregate() {
			g.load(at("R1"), v.Type())
		}
	case *bound.AddressOf:
		g.generateAddress(v.Operand)
	default:
		report.ICE("codegen: expression kind %s in lowered program", e.Kind())
	}
}

func (g *Generator) generateLiteral(lit *bound.Literal) {
	switch v := lit.Value.(type) {
	case int32:
		g.emit("MOV R1, %d", v)
	case uint8:
		g.emit("MOV R1, %d", v)
	case bool:
		if v {
			g.emit("MOV R1, 1")
		} else {
			g.emit("MOV R1, 0")
		}
	case nil:
		g.emit("MOV R1, 0")
	case float64:
		g.emit("MOVf R1, [.%s]", g.pool(types.KindFloat, v))
	case string:
		g.emit("MOV R1, .%s", g.pool(types.KindString, v))
	default:
		report.ICE("codegen: literal of Go type %T", v)
	}
}

func (g *Generator) generateVariable(v *bound.Variable) {
	id := v.Identifier
	if id.IsVariable() {
		g.load(g.variableRef(id.Symbol), id.Type)
		g.annotate("%s", id.Name)
		return
	}

	if id.IsBuiltin() || strings.Contains(id.Name, ".") {
		g.diags.Error(report.KindCodegen, v.Span(), "`%s` cannot be used as a value", id.Name)
		g.emit("MOV R1, 0")
		return
	}

	g.emit("MOV R1, %s", codeLabel(id.Name))
}

func (g *Generator) generateUnary(u *bound.Unary) {
	g.generateExpr(u.Operand)

	w := suffix(g.layout.Size(u.Op.OperandType))
	switch u.Op.Kind {
	case bound.UnaryIdentity:
	case bound.UnaryNegation:
		g.emit("NEG%s R1", w)
	case bound.UnaryLogicalNot:
		g.emit("XORb R1, 1")
	case bound.UnaryBitwiseNot:
		g.emit("NOT%s R1", w)
	}
}

var arithmeticMnemonics = map[bound.BinaryOperatorKind]string{
	bound.BinaryAddition:       "ADD",
	bound.BinarySubtraction:    "SUB",
	bound.BinaryMultiplication: "MUL",
	bound.BinaryDivision:       "DIV",
	bound.BinaryModulus:        "MOD",
	bound.BinaryBitwiseAnd:     "AND",
	bound.BinaryBitwiseOr:      "OR",
	bound.BinaryBitwiseXor:     "XOR",
}

var comparisonConditions = map[bound.BinaryOperatorKind]string{
	bound.BinaryEquals:          "EQ",
	bound.BinaryNotEquals:       "NE",
	bound.BinaryLess:            "LT",
	bound.BinaryLessOrEquals:    "LE",
	bound.BinaryGreater:         "GT",
	bound.BinaryGreaterOrEquals: "GE",
}

func (g *Generator) generateBinary(b *bound.Binary) {
	switch b.Op.Kind {
	case bound.BinaryLogicalAnd, bound.BinaryLogicalOr:
		g.generateShortCircuit(b)
		return
	}

	operandType := b.Op.LeftType
	w := suffix(g.valueSize(operandType))

	g.generateExpr(b.Left)
	rhs, ok := g.simpleOperand(b.Right)
	if !ok {
		g.push(operandType)
		g.generateExpr(b.Right)
		g.emit("MOV%s R2, R1", w)
		g.pop(operandType, "R1")
		rhs = "R2"
	}

	if cond, ok := comparisonConditions[b.Op.Kind]; ok {
		g.emit("CMP%s R1, %s", w, rhs)
		g.emit("SET%s R1", cond)
		return
	}

	g.emit("%s%s R1, %s", arithmeticMnemonics[b.Op.Kind], w, rhs)
}

// simpleOperand returns the operand text of an expression that can be used
// directly as the source operand of an instruction: a constant or a variable
// of primitive type.
func (g *Generator) simpleOperand(e bound.Expression) (string, bool) {
	switch v := e.(type) {
	case *bound.Literal:
		switch val := v.Value.(type) {
		case int32:
			return strconv.Itoa(int(val)), true
		case uint8:
			return strconv.Itoa(int(val)), true
		case bool:
			if val {
				return "1", true
			}

			return "0", true
		case nil:
			return "0", true
		case float64:
			return "[." + g.pool(types.KindFloat, val) + "]", true
		}
	case *bound.Variable:
		if v.Identifier.IsVariable() && !v.Type().IsAggregate() {
			return g.variableRef(v.Identifier.Symbol).String(), true
		}
	}

	return "", false
}

func (g *Generator) generateShortCircuit(b *bound.Binary) {
	end := g.newLabel()

	g.generateExpr(b.Left)
	g.emit("CMPb R1, 0")
	if b.Op.Kind == bound.BinaryLogicalAnd {
		g.emit("JEQ %s", end)
	} else {
		g.emit("JNE %s", end)
	}

	g.generateExpr(b.Right)
	g.emitLabel(end)
}

// -----------------------------------------------------------------------------

func (g *Generator) generateCall(c *bound.Call) {
	callee := c.Callee()
	args := c.Arguments()

	if callee.IsBuiltin() {
		g.generateBuiltinCall(c)
		return
	}

	ret := c.Type()
	var slot int
	if ret.IsAggregate() {
		depth, ok := g.fn.frame.temps[c.ID()]
		if !ok {
			report.ICE("codegen: call to `%s` has no return slot", callee.Name)
		}

		slot = depth
		g.zeroBlock(memRef{base: "BP", offset: -slot}, g.layout.Size(ret))
	}

	g.pushArguments(args)

	if callee.IsFunction() {
		g.setReturnSlot(slot)
		g.emit("CALL %s", codeLabel(callee.Name))
	} else {
		g.load(g.variableRef(callee.Symbol), callee.Type)
		g.emit("MOV R4, R1")
		g.setReturnSlot(slot)
		g.emit("CALL R4")
	}
	g.annotate("call %s", callee.Name)

	g.releaseArguments(args)

	if slot > 0 {
		g.emit("MOV R1, BP")
		g.emit("SUB R1, %d", slot)
	}
}

func (g *Generator) setReturnSlot(slot int) {
	if slot > 0 {
		g.emit("MOV R3, BP")
		g.emit("SUB R3, %d", slot)
	}
}

func (g *Generator) generateBuiltinCall(c *bound.Call) {
	fn, ok := g.builtins.Lookup(c.Callee().Name)
	if !ok {
		report.ICE("codegen: builtin `%s` is not in the registry", c.Callee().Name)
	}

	args := c.Arguments()
	g.pushArguments(args)
	g.emit("PUSH %d", len(args))
	g.emit("PUSH %d", fn.Interrupt)
	g.emit("INT")
	g.annotate("%s", fn.Name)
	g.emit("POP R2")
	g.emit("POP R2")
	g.releaseArguments(args)
}

// pushArguments pushes the arguments of a call in reverse order.  Aggregates
// are copied onto the stack by value.
func (g *Generator) pushArguments(args []bound.Expression) {
	for i := len(args) - 1; i >= 0; i-- {
		t := args[i].Type()
		g.generateExpr(args[i])

		if t.IsAggregate() {
			size := g.layout.Size(t)
			g.emit("SUB SP, %d", size)
			g.copyBlock(at("SP"), at("R1"), size)
		} else {
			g.emit("PUSH%s R1", suffix(g.layout.Size(t)))
		}
	}
}

// releaseArguments releases the stack space the arguments of a call occupy.
func (g *Generator) releaseArguments(args []bound.Expression) {
	if g.opts.OptimiseForSize {
		total := 0
		for _, arg := range args {
			total += g.layout.Size(arg.Type())
		}

		if total > 0 {
			g.emit("ADD SP, %d", total)
		}

		return
	}

	for _, arg := range args {
		t := arg.Type()
		if t.IsAggregate() {
			g.emit("ADD SP, %d", g.layout.Size(t))
		} else {
			g.emit("POP%s R2", suffix(g.layout.Size(t)))
		}
	}
}

// -----------------------------------------------------------------------------

func (g *Generator) generateConversion(c *bound.Conversion) {
	g.generateExpr(c.Operand)

	from, to := c.Operand.Type(), c.Type()
	switch {
	case from.Equals(to), from.Kind == types.KindNull:
	case from.IsPointer() && to.IsPointer():
	case from.Kind == types.KindByte && to.Kind == types.KindInt:
	case from.Kind == types.KindBool && (to.Kind == types.KindInt || to.Kind == types.KindByte):
	case from.Kind == types.KindInt && to.Kind == types.KindByte:
		g.emit("AND R1, 255")
	case (from.Kind == types.KindInt || from.Kind == types.KindByte) && to.Kind == types.KindFloat:
		g.emit("CVTIF R1")
	case from.Kind == types.KindFloat && to.Kind == types.KindInt:
		g.emit("CVTFI R1")
	case from.Kind == types.KindFloat && to.Kind == types.KindByte:
		g.emit("CVTFI R1")
		g.emit("AND R1, 255")
	case from.Kind == types.KindInt && to.Kind == types.KindBool:
		g.emit("CMP R1, 0")
		g.emit("SETNE R1")
	case from.Kind == types.KindByte && to.Kind == types.KindBool:
		g.emit("CMPb R1, 0")
		g.emit("SETNE R1")
	default:
		g.diags.Error(report.KindCodegen, c.Span(), "conversion from `%s` to `%s` is not supported by the target", from, to)
	}
}
