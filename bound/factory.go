package bound

import (
	"fmt"

	"github.com/PeterBassett/Compiler-sub001/common"
	"github.com/PeterBassett/Compiler-sub001/report"
	"github.com/PeterBassett/Compiler-sub001/types"
)

// Factory creates the nodes and labels of one compilation.  It owns the node
// ID and label counters: both increase monotonically for its lifetime.
type Factory struct {
	nextID    int
	nextLabel int
}

// NewFactory creates a new factory.
func NewFactory() *Factory {
	return &Factory{nextID: 1, nextLabel: 1}
}

func (f *Factory) base(span *report.TextSpan) nodeBase {
	id := f.nextID
	f.nextID++
	return nodeBase{id: id, span: span}
}

// NewLabel generates a new unique label with the given prefix, for example
// `__break3`.
func (f *Factory) NewLabel(prefix string) Label {
	n := f.nextLabel
	f.nextLabel++
	return Label(fmt.Sprintf("__%s%d", prefix, n))
}

// NewName generates a new unique hidden variable name with the given prefix.
// It shares its counter with `NewLabel`.
func (f *Factory) NewName(prefix string) string {
	return string(f.NewLabel(prefix))
}

// -----------------------------------------------------------------------------

func (f *Factory) NewBlock(span *report.TextSpan, stmts []Statement) *Block {
	return &Block{nodeBase: f.base(span), Statements: stmts}
}

func (f *Factory) NewVariableDeclaration(span *report.TextSpan, sym *common.VariableSymbol, init Expression) *VariableDeclaration {
	return &VariableDeclaration{nodeBase: f.base(span), Variable: sym, Initializer: init}
}

func (f *Factory) NewIf(span *report.TextSpan, cond Expression, then, els Statement) *If {
	return &If{nodeBase: f.base(span), Condition: cond, Then: then, Else: els}
}

func (f *Factory) NewWhile(span *report.TextSpan, cond Expression, body Statement, breakLabel, continueLabel Label) *While {
	return &While{nodeBase: f.base(span), Condition: cond, Body: body, BreakLabel: breakLabel, ContinueLabel: continueLabel}
}

func (f *Factory) NewFor(span *report.TextSpan, v *common.VariableSymbol, lower, upper Expression, body Statement, breakLabel, continueLabel Label) *For {
	return &For{
		nodeBase:      f.base(span),
		Variable:      v,
		Lower:         lower,
		Upper:         upper,
		Body:          body,
		BreakLabel:    breakLabel,
		ContinueLabel: continueLabel,
	}
}

func (f *Factory) NewReturn(span *report.TextSpan, value Expression) *Return {
	return &Return{nodeBase: f.base(span), Value: value}
}

func (f *Factory) NewExpressionStatement(span *report.TextSpan, expr Expression) *ExpressionStatement {
	return &ExpressionStatement{nodeBase: f.base(span), Expression: expr}
}

func (f *Factory) NewAssignment(span *report.TextSpan, target, value Expression) *Assignment {
	return &Assignment{nodeBase: f.base(span), Target: target, Value: value}
}

func (f *Factory) NewGoto(span *report.TextSpan, label Label) *Goto {
	return &Goto{nodeBase: f.base(span), Label: label}
}

func (f *Factory) NewConditionalGoto(span *report.TextSpan, label Label, cond Expression, jumpIfTrue bool) *ConditionalGoto {
	return &ConditionalGoto{nodeBase: f.base(span), Label: label, Condition: cond, JumpIfTrue: jumpIfTrue}
}

func (f *Factory) NewLabelStatement(span *report.TextSpan, label Label) *LabelStatement {
	return &LabelStatement{nodeBase: f.base(span), Label: label}
}

func (f *Factory) NewStructDeclaration(span *report.TextSpan, typ *types.Type) *StructDeclaration {
	return &StructDeclaration{nodeBase: f.base(span), Type: typ}
}

func (f *Factory) NewClassDeclaration(span *report.TextSpan, typ *types.Type) *ClassDeclaration {
	return &ClassDeclaration{nodeBase: f.base(span), Type: typ}
}

// NewFunctionDeclaration creates a function declaration whose body is not yet
// defined.
func (f *Factory) NewFunctionDeclaration(span *report.TextSpan, id *common.Identifier, params []*common.VariableSymbol) *FunctionDeclaration {
	return &FunctionDeclaration{nodeBase: f.base(span), Identifier: id, Parameters: params}
}

// -----------------------------------------------------------------------------

func (f *Factory) NewLiteral(span *report.TextSpan, value interface{}, typ *types.Type) *Literal {
	return &Literal{nodeBase: f.base(span), Value: value, typ: typ}
}

func (f *Factory) NewVariable(span *report.TextSpan, id *common.Identifier) *Variable {
	return &Variable{nodeBase: f.base(span), Identifier: id}
}

func (f *Factory) NewUnary(span *report.TextSpan, op *UnaryOperator, operand Expression) *Unary {
	return &Unary{nodeBase: f.base(span), Op: op, Operand: operand}
}

func (f *Factory) NewBinary(span *report.TextSpan, left Expression, op *BinaryOperator, right Expression) *Binary {
	return &Binary{nodeBase: f.base(span), Left: left, Op: op, Right: right}
}

// NewCall creates a resolved call.
func (f *Factory) NewCall(span *report.TextSpan, callee *common.Identifier, args []Expression) *Call {
	return &Call{
		nodeBase: f.base(span),
		typ:      callee.Type.Func.ReturnType,
		state:    Resolved{Callee: callee, Arguments: args},
	}
}

// NewPendingCall creates a placeholder call: only the name and the type of the
// callee's result are known.
func (f *Factory) NewPendingCall(span *report.TextSpan, name string, typ *types.Type) *Call {
	return &Call{nodeBase: f.base(span), typ: typ, state: Pending{Name: name, Type: typ}}
}

func (f *Factory) NewGetMember(span *report.TextSpan, operand Expression, member string, typ *types.Type) *GetMember {
	return &GetMember{nodeBase: f.base(span), Operand: operand, Member: member, typ: typ}
}

func (f *Factory) NewDereference(span *report.TextSpan, operand Expression) *Dereference {
	return &Dereference{nodeBase: f.base(span), Operand: operand}
}

func (f *Factory) NewConversion(span *report.TextSpan, operand Expression, typ *types.Type) *Conversion {
	return &Conversion{nodeBase: f.base(span), Operand: operand, typ: typ}
}

func (f *Factory) NewError(span *report.TextSpan) *Error {
	return &Error{nodeBase: f.base(span)}
}

func (f *Factory) NewIndex(span *report.TextSpan, operand, index Expression, typ *types.Type) *Index {
	return &Index{nodeBase: f.base(span), Operand: operand, Index: index, typ: typ}
}

func (f *Factory) NewAddressOf(span *report.TextSpan, operand Expression, typ *types.Type) *AddressOf {
	return &AddressOf{nodeBase: f.base(span), Operand: operand, typ: typ}
}
