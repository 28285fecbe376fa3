package codegen

import (
	"github.com/PeterBassett/Compiler-sub001/bound"
	"github.com/PeterBassett/Compiler-sub001/common"
	"github.com/PeterBassett/Compiler-sub001/report"
	"github.com/PeterBassett/Compiler-sub001/types"
)

// Layout computes the sizes and field offsets of types.  The sizes of struct
// and array types are cached by type ID.
type Layout struct {
	sizes map[int]int
}

// NewLayout creates a new layout with an empty cache.
func NewLayout() *Layout {
	return &Layout{sizes: make(map[int]int)}
}

// Size returns the size in bytes of a value of type `t`.
func (l *Layout) Size(t *types.Type) int {
	switch t.Kind {
	case types.KindBool, types.KindByte:
		return 1
	case types.KindInt, types.KindPointer, types.KindString, types.KindFunction, types.KindNull:
		return 4
	case types.KindFloat:
		return 8
	case types.KindUnit:
		return 0
	case types.KindStruct, types.KindClass:
		if size, ok := l.sizes[t.ID]; ok {
			return size
		}

		size := 0
		for _, field := range t.Members.Fields {
			size += l.Size(field.Type)
		}

		l.sizes[t.ID] = size
		return size
	case types.KindArray:
		if size, ok := l.sizes[t.ID]; ok {
			return size
		}

		size := l.Size(t.ElementType) * t.Length
		l.sizes[t.ID] = size
		return size
	}

	report.ICE("size of type `%s` is undefined", t)
	return 0
}

// FieldOffset returns the offset of a field within a struct-shaped type.  A
// pointer to a struct is followed transparently.
func (l *Layout) FieldOffset(t *types.Type, name string) (int, *types.Type) {
	if t.IsPointer() {
		t = t.PointerTo
	}

	offset := 0
	for _, field := range t.Members.Fields {
		if field.Name == name {
			return offset, field.Type
		}

		offset += l.Size(field.Type)
	}

	report.ICE("type `%s` has no field `%s`", t, name)
	return 0, nil
}

// PathOffset returns the offset of a dotted field path such as `a.b.c`.
func (l *Layout) PathOffset(t *types.Type, path ...string) (int, *types.Type) {
	total := 0
	for _, name := range path {
		offset, ft := l.FieldOffset(t, name)
		total += offset
		t = ft
	}

	return total, t
}

// -----------------------------------------------------------------------------

// frameLayout is the stack layout of one function: the result of the layout
// pass over its body.  Depths are byte counts below BP.
type frameLayout struct {
	// offsets stores the BP-relative offset of every local and parameter.
	offsets map[*common.VariableSymbol]int

	// blocks stores the start depth and reserved size of each block by node ID.
	blocks map[int]blockLayout

	// labels stores the stack depth at each label.
	labels map[bound.Label]int

	// temps stores the depth of the return slot of every struct-returning call
	// by node ID.
	temps map[int]int
}

type blockLayout struct {
	start, size int
}

func newFrameLayout() *frameLayout {
	return &frameLayout{
		offsets: make(map[*common.VariableSymbol]int),
		blocks:  make(map[int]blockLayout),
		labels:  make(map[bound.Label]int),
		temps:   make(map[int]int),
	}
}

// layoutFunction computes the frame layout of a function.  `base` is the depth
// reserved before the body's first block: the saved struct-return address.
func (l *Layout) layoutFunction(params []*common.VariableSymbol, body *bound.Block, base int) *frameLayout {
	fl := newFrameLayout()

	// parameters sit above the saved BP and the return address
	offset := 8
	for _, param := range params {
		fl.offsets[param] = offset
		offset += l.Size(param.Type)
	}

	l.layoutBlock(fl, body, base)
	return fl
}

// layoutBlock lays out a block starting at `start` bytes below BP.  A block
// reserves space for its own declarations and for the return slots of the
// struct-returning calls in its own statements.
func (l *Layout) layoutBlock(fl *frameLayout, block *bound.Block, start int) {
	depth := start
	reserve := func(size int) int {
		depth += size
		return depth
	}

	for _, stmt := range block.Statements {
		if vd, ok := stmt.(*bound.VariableDeclaration); ok {
			fl.offsets[vd.Variable] = -reserve(l.Size(vd.Variable.Type))
		}

		for _, call := range l.structCalls(stmt) {
			fl.temps[call.ID()] = reserve(l.Size(call.Type()))
		}
	}

	fl.blocks[block.ID()] = blockLayout{start: start, size: depth - start}

	for _, stmt := range block.Statements {
		switch v := stmt.(type) {
		case *bound.Block:
			l.layoutBlock(fl, v, depth)
		case *bound.LabelStatement:
			fl.labels[v.Label] = depth
		}
	}
}

// structCalls returns the calls returning aggregates within the expressions of
// a single statement.
func (l *Layout) structCalls(stmt bound.Statement) []*bound.Call {
	var calls []*bound.Call

	r := bound.NewRewriter(nil)
	r.Expression = func(e bound.Expression) (bound.Expression, bool) {
		if call, ok := e.(*bound.Call); ok && call.Type().IsAggregate() && !call.Callee().IsBuiltin() {
			calls = append(calls, call)
		}

		return nil, false
	}

	for _, expr := range statementExpressions(stmt) {
		r.RewriteExpression(expr)
	}

	return calls
}

// statementExpressions returns the expressions directly held by a lowered
// statement.
func statementExpressions(stmt bound.Statement) []bound.Expression {
	switch v := stmt.(type) {
	case *bound.VariableDeclaration:
		if v.Initializer != nil {
			return []bound.Expression{v.Initializer}
		}
	case *bound.ExpressionStatement:
		return []bound.Expression{v.Expression}
	case *bound.Assignment:
		return []bound.Expression{v.Target, v.Value}
	case *bound.Return:
		if v.Value != nil {
			return []bound.Expression{v.Value}
		}
	case *bound.ConditionalGoto:
		return []bound.Expression{v.Condition}
	case *bound.Block, *bound.Goto, *bound.LabelStatement:
	default:
		report.ICE("codegen: statement kind %s in lowered program", stmt.Kind())
	}

	return nil
}
