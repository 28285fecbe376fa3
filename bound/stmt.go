package bound

import (
	"github.com/PeterBassett/Compiler-sub001/common"
	"github.com/PeterBassett/Compiler-sub001/types"
)

// Block is a sequence of statements forming a lexical scope.
type Block struct {
	nodeBase

	Statements []Statement
}

// VariableDeclaration declares a global or local variable.  A nil initializer
// means the variable's storage is zero-initialised: the binder only leaves it
// nil for aggregate types.
type VariableDeclaration struct {
	nodeBase

	Variable    *common.VariableSymbol
	Initializer Expression
}

// If is a structured conditional.  `Else` may be nil.
type If struct {
	nodeBase

	Condition Expression
	Then      Statement
	Else      Statement
}

// While is a structured while loop with the labels that its break and continue
// statements jump to.
type While struct {
	nodeBase

	Condition     Expression
	Body          Statement
	BreakLabel    Label
	ContinueLabel Label
}

// For is a structured counting loop: the variable takes every value from
// `Lower` to `Upper` inclusive.
type For struct {
	nodeBase

	Variable      *common.VariableSymbol
	Lower         Expression
	Upper         Expression
	Body          Statement
	BreakLabel    Label
	ContinueLabel Label
}

// Return returns from the enclosing function.  `Value` is nil in `unit`
// functions.
type Return struct {
	nodeBase

	Value Expression
}

// ExpressionStatement evaluates an expression for its effects.
type ExpressionStatement struct {
	nodeBase

	Expression Expression
}

// Assignment stores a value into an assignable target: a variable, member,
// index or dereference expression.
type Assignment struct {
	nodeBase

	Target Expression
	Value  Expression
}

// Goto is an unconditional jump.
type Goto struct {
	nodeBase

	Label Label
}

// ConditionalGoto jumps to the label if the condition evaluates to
// `JumpIfTrue`.
type ConditionalGoto struct {
	nodeBase

	Label      Label
	Condition  Expression
	JumpIfTrue bool
}

// LabelStatement marks a jump target.
type LabelStatement struct {
	nodeBase

	Label Label
}

// StructDeclaration declares a struct type.
type StructDeclaration struct {
	nodeBase

	Type *types.Type
}

// ClassDeclaration declares a class type.  Its methods are bound as ordinary
// functions and appear in the program's function list.
type ClassDeclaration struct {
	nodeBase

	Type    *types.Type
	Methods []*FunctionDeclaration
}

func (*Block) Kind() Kind               { return KindBlock }
func (*VariableDeclaration) Kind() Kind { return KindVariableDeclaration }
func (*If) Kind() Kind                  { return KindIf }
func (*While) Kind() Kind               { return KindWhile }
func (*For) Kind() Kind                 { return KindFor }
func (*Return) Kind() Kind              { return KindReturn }
func (*ExpressionStatement) Kind() Kind { return KindExpressionStatement }
func (*Assignment) Kind() Kind          { return KindAssignment }
func (*Goto) Kind() Kind                { return KindGoto }
func (*ConditionalGoto) Kind() Kind     { return KindConditionalGoto }
func (*LabelStatement) Kind() Kind      { return KindLabel }
func (*StructDeclaration) Kind() Kind   { return KindStructDeclaration }
func (*ClassDeclaration) Kind() Kind    { return KindClassDeclaration }

func (*Block) statement()               {}
func (*VariableDeclaration) statement() {}
func (*If) statement()                  {}
func (*While) statement()               {}
func (*For) statement()                 {}
func (*Return) statement()              {}
func (*ExpressionStatement) statement() {}
func (*Assignment) statement()          {}
func (*Goto) statement()                {}
func (*ConditionalGoto) statement()     {}
func (*LabelStatement) statement()      {}
func (*StructDeclaration) statement()   {}
func (*ClassDeclaration) statement()    {}
