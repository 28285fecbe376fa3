package codegen

import (
	"strings"

	"github.com/PeterBassett/Compiler-sub001/bound"
	"github.com/PeterBassett/Compiler-sub001/report"
)

// generateFunction generates the code of a single function.
func (g *Generator) generateFunction(fd *bound.FunctionDeclaration) {
	label := codeLabel(fd.Name())
	structReturn := fd.ReturnType().IsAggregate()

	base := 0
	if structReturn {
		base = 4
	}

	g.fn = &funcState{
		name:         fd.Name(),
		exit:         "__exit_" + label,
		structReturn: structReturn,
		frame:        g.layout.layoutFunction(fd.Parameters, fd.Body(), base),
		depth:        base,
	}
	defer func() { g.fn = nil }()

	g.emitLabel(label)
	g.annotate("func %s", fd.Name())
	g.emit("PUSH BP")
	g.emit("MOV BP, SP")
	if structReturn {
		g.emit("PUSH R3")
		g.annotate("return slot")
	}

	g.generateBlock(fd.Body(), true)

	// a jump straight to the epilogue is redundant
	if last := len(g.code) - 1; last >= 0 && isJumpTo(g.code[last], g.fn.exit) {
		g.code = g.code[:last]
	}

	g.emitLabel(g.fn.exit)
	g.emit("MOV SP, BP")
	g.emit("POP BP")
	g.emit("RET")
}

func isJumpTo(line, label string) bool {
	if i := strings.IndexRune(line, ';'); i >= 0 {
		line = line[:i]
	}

	return strings.TrimSpace(line) == "JMP "+label
}

// generateBlock generates a block.  The outermost block of a function doesn't
// release its storage: the epilogue resets SP.
func (g *Generator) generateBlock(block *bound.Block, outermost bool) {
	bl, ok := g.fn.frame.blocks[block.ID()]
	if !ok {
		report.ICE("codegen: block %d of `%s` has no layout", block.ID(), g.fn.name)
	}

	if bl.size > 0 {
		g.emit("SUB SP, %d", bl.size)
	}

	outer := g.fn.depth
	g.fn.depth = bl.start + bl.size
	defer func() { g.fn.depth = outer }()

	for _, stmt := range block.Statements {
		g.generateStatement(stmt)
	}

	if bl.size > 0 && !outermost {
		g.emit("ADD SP, %d", bl.size)
	}
}

func (g *Generator) generateStatement(stmt bound.Statement) {
	switch v := stmt.(type) {
	case *bound.Block:
		g.generateBlock(v, false)
	case *bound.VariableDeclaration:
		ref := g.variableRef(v.Variable)
		if v.Initializer == nil {
			g.zeroBlock(ref, g.layout.Size(v.Variable.Type))
		} else {
			g.generateExpr(v.Initializer)
			g.store(ref, v.Variable.Type)
		}
		g.annotate("let %s", v.Variable.Name)
	case *bound.ExpressionStatement:
		g.generateExpr(v.Expression)
	case *bound.Assignment:
		g.generateAssignment(v)
	case *bound.Return:
		g.generateReturn(v)
	case *bound.Goto:
		if diff := g.stackAdjustment(v.Label); diff > 0 {
			g.emit("ADD SP, %d", diff)
		}
		g.emit("JMP %s", v.Label)
	case *bound.ConditionalGoto:
		g.generateConditionalGoto(v)
	case *bound.LabelStatement:
		g.emitLabel(string(v.Label))
	default:
		report.ICE("codegen: statement kind %s in lowered program", stmt.Kind())
	}
}

// stackAdjustment returns the number of bytes that must be released to jump
// from the current depth to `label`.  Jumps only ever leave blocks.
func (g *Generator) stackAdjustment(label bound.Label) int {
	depth, ok := g.fn.frame.labels[label]
	if !ok {
		report.ICE("codegen: jump to undefined label `%s` in `%s`", label, g.fn.name)
	}

	diff := g.fn.depth - depth
	if diff < 0 {
		report.ICE("codegen: jump into a nested block to label `%s` in `%s`", label, g.fn.name)
	}

	return diff
}

func (g *Generator) generateConditionalGoto(cg *bound.ConditionalGoto) {
	g.generateExpr(cg.Condition)
	g.emit("CMPb R1, 0")

	jump, inverse := "JNE", "JEQ"
	if !cg.JumpIfTrue {
		jump, inverse = inverse, jump
	}

	diff := g.stackAdjustment(cg.Label)
	if diff == 0 {
		g.emit("%s %s", jump, cg.Label)
		return
	}

	// the stack is only re-balanced if the jump is taken
	skip := g.newLabel()
	g.emit("%s %s", inverse, skip)
	g.emit("ADD SP, %d", diff)
	g.emit("JMP %s", cg.Label)
	g.emitLabel(skip)
}

func (g *Generator) generateReturn(r *bound.Return) {
	if r.Value != nil {
		g.generateExpr(r.Value)

		if g.fn.structReturn {
			g.emit("MOV R2, [BP-4]")
			g.copyBlock(at("R2"), at("R1"), g.layout.Size(r.Value.Type()))
		}
	}

	g.emit("JMP %s", g.fn.exit)
	g.annotate("return")
}

func (g *Generator) generateAssignment(a *bound.Assignment) {
	t := a.Target.Type()

	if ref, ok := g.staticAddress(a.Target); ok {
		g.generateExpr(a.Value)
		g.store(ref, t)
		return
	}

	// the value is computed first and held on the stack while the address of
	// the target is computed
	g.generateExpr(a.Value)
	g.push(t)
	g.generateAddress(a.Target)
	g.emit("MOV R2, R1")
	g.pop(t, "R1")
	g.store(at("R2"), t)
}
