package bound

import (
	"github.com/PeterBassett/Compiler-sub001/common"
	"github.com/PeterBassett/Compiler-sub001/report"
	"github.com/PeterBassett/Compiler-sub001/types"
)

// Literal is a constant.  Its value is an `int32`, `float64`, `uint8`, `bool`,
// `string` or nil for the null pointer.
type Literal struct {
	nodeBase

	Value interface{}
	typ   *types.Type
}

// Variable is a reference to a named value: a variable or a function.
type Variable struct {
	nodeBase

	Identifier *common.Identifier
}

// Unary is a unary operator application.
type Unary struct {
	nodeBase

	Op      *UnaryOperator
	Operand Expression
}

// Binary is a binary operator application.
type Binary struct {
	nodeBase

	Left  Expression
	Op    *BinaryOperator
	Right Expression
}

// GetMember accesses a field of a struct-shaped value.  If the operand is a
// pointer, the access is made through the pointer.
type GetMember struct {
	nodeBase

	Operand Expression
	Member  string
	typ     *types.Type
}

// Dereference loads the value a pointer points to.
type Dereference struct {
	nodeBase

	Operand Expression
}

// Conversion converts a value to another type.
type Conversion struct {
	nodeBase

	Operand Expression
	typ     *types.Type
}

// Error stands in for an expression that failed to bind.
type Error struct {
	nodeBase
}

// Index accesses an element of an array or the element a pointer points to
// offset by the index.
type Index struct {
	nodeBase

	Operand Expression
	Index   Expression
	typ     *types.Type
}

// AddressOf yields the address of an assignable expression.
type AddressOf struct {
	nodeBase

	Operand Expression
	typ     *types.Type
}

func (l *Literal) Type() *types.Type     { return l.typ }
func (v *Variable) Type() *types.Type    { return v.Identifier.Type }
func (u *Unary) Type() *types.Type       { return u.Op.ResultType }
func (b *Binary) Type() *types.Type      { return b.Op.ResultType }
func (g *GetMember) Type() *types.Type   { return g.typ }
func (d *Dereference) Type() *types.Type { return d.Operand.Type().PointerTo }
func (c *Conversion) Type() *types.Type  { return c.typ }
func (*Error) Type() *types.Type         { return types.Error }
func (i *Index) Type() *types.Type       { return i.typ }
func (a *AddressOf) Type() *types.Type   { return a.typ }

func (*Literal) Kind() Kind     { return KindLiteral }
func (*Variable) Kind() Kind    { return KindVariable }
func (*Unary) Kind() Kind       { return KindUnary }
func (*Binary) Kind() Kind      { return KindBinary }
func (*GetMember) Kind() Kind   { return KindGetMember }
func (*Dereference) Kind() Kind { return KindDereference }
func (*Conversion) Kind() Kind  { return KindConversion }
func (*Error) Kind() Kind       { return KindError }
func (*Index) Kind() Kind       { return KindIndex }
func (*AddressOf) Kind() Kind   { return KindAddressOf }

func (*Literal) expression()     {}
func (*Variable) expression()    {}
func (*Unary) expression()       {}
func (*Binary) expression()      {}
func (*GetMember) expression()   {}
func (*Dereference) expression() {}
func (*Conversion) expression()  {}
func (*Error) expression()       {}
func (*Index) expression()       {}
func (*AddressOf) expression()   {}

// IsAssignable returns whether an expression denotes storage that can be
// assigned to or have its address taken.  Members and elements are storage
// only if their base is storage or a pointer to it.
func IsAssignable(expr Expression) bool {
	switch v := expr.(type) {
	case *Variable:
		return v.Identifier.IsVariable()
	case *GetMember:
		return v.Operand.Type().IsPointer() || IsAssignable(v.Operand)
	case *Index:
		return v.Operand.Type().IsPointer() || IsAssignable(v.Operand)
	case *Dereference:
		return true
	}

	return false
}

// -----------------------------------------------------------------------------

// CallState is the state of a call site: either `Pending` or `Resolved`.
type CallState interface {
	callState()
}

// Pending is the state of a placeholder call site: the call was bound before
// its callee was declared.  Only the callee's name and return type are known.
type Pending struct {
	Name string
	Type *types.Type
}

// Resolved is the state of a complete call site.
type Resolved struct {
	Callee    *common.Identifier
	Arguments []Expression
}

func (Pending) callState()  {}
func (Resolved) callState() {}

// Call is a call site.  A call created pending is resolved exactly once.
type Call struct {
	nodeBase

	typ   *types.Type
	state CallState
}

func (c *Call) Type() *types.Type { return c.typ }
func (*Call) Kind() Kind          { return KindCall }
func (*Call) expression()         {}

// State returns the current state of the call site.
func (c *Call) State() CallState {
	return c.state
}

// IsPending returns whether the call site has yet to be resolved.
func (c *Call) IsPending() bool {
	_, ok := c.state.(Pending)
	return ok
}

// Resolve populates a pending call site.
func (c *Call) Resolve(callee *common.Identifier, args []Expression) {
	pending, ok := c.state.(Pending)
	if !ok {
		report.ICE("call to `%s` resolved multiple times", callee.Name)
	}

	if !callee.Type.Func.ReturnType.Equals(pending.Type) && !pending.Type.IsError() {
		report.ICE("placeholder call to `%s` resolved with return type `%s` not `%s`", pending.Name, callee.Type.Func.ReturnType, pending.Type)
	}

	c.state = Resolved{Callee: callee, Arguments: args}
}

func (c *Call) resolved() Resolved {
	switch s := c.state.(type) {
	case Resolved:
		return s
	case Pending:
		report.ICE("call to `%s` read before it was resolved", s.Name)
	}

	report.ICE("call site in unknown state")
	return Resolved{}
}

// Callee returns the identifier of the called function.
func (c *Call) Callee() *common.Identifier {
	return c.resolved().Callee
}

// Arguments returns the argument expressions of the call.
func (c *Call) Arguments() []Expression {
	return c.resolved().Arguments
}

// Name returns the name of the callee.  It is available in either state.
func (c *Call) Name() string {
	switch s := c.state.(type) {
	case Resolved:
		return s.Callee.Name
	case Pending:
		return s.Name
	}

	return ""
}
