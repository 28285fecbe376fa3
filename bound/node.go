package bound

import (
	"github.com/PeterBassett/Compiler-sub001/report"
	"github.com/PeterBassett/Compiler-sub001/types"
)

// Kind is the variant tag of a bound node.
type Kind int

// Enumeration of statement kinds.
const (
	KindBlock Kind = iota
	KindVariableDeclaration
	KindIf
	KindFor
	KindWhile
	KindReturn
	KindExpressionStatement
	KindAssignment
	KindGoto
	KindConditionalGoto
	KindLabel
	KindFunctionDeclaration
	KindClassDeclaration
	KindStructDeclaration

	firstExpressionKind
)

// Enumeration of expression kinds.
const (
	KindLiteral Kind = iota + firstExpressionKind + 1
	KindVariable
	KindUnary
	KindBinary
	KindCall
	KindGetMember
	KindDereference
	KindConversion
	KindError
	KindIndex
	KindAddressOf

	kindCount
)

var kindNames = [...]string{
	KindBlock:               "Block",
	KindVariableDeclaration: "VariableDeclaration",
	KindIf:                  "If",
	KindFor:                 "For",
	KindWhile:               "While",
	KindReturn:              "Return",
	KindExpressionStatement: "ExpressionStatement",
	KindAssignment:          "Assignment",
	KindGoto:                "Goto",
	KindConditionalGoto:     "ConditionalGoto",
	KindLabel:               "Label",
	KindFunctionDeclaration: "FunctionDeclaration",
	KindClassDeclaration:    "ClassDeclaration",
	KindStructDeclaration:   "StructDeclaration",
	firstExpressionKind:     "",
	KindLiteral:             "Literal",
	KindVariable:            "Variable",
	KindUnary:               "Unary",
	KindBinary:              "Binary",
	KindCall:                "Call",
	KindGetMember:           "GetMember",
	KindDereference:         "Dereference",
	KindConversion:          "Conversion",
	KindError:               "Error",
	KindIndex:               "Index",
	KindAddressOf:           "AddressOf",
}

func (k Kind) String() string {
	if k >= 0 && k < kindCount && kindNames[k] != "" {
		return kindNames[k]
	}

	return "<invalid kind>"
}

// IsStatement returns whether the kind is a statement kind.
func (k Kind) IsStatement() bool {
	return k >= 0 && k < firstExpressionKind
}

// IsExpression returns whether the kind is an expression kind.
func (k Kind) IsExpression() bool {
	return k > firstExpressionKind && k < kindCount
}

// StatementKinds returns every statement kind.
func StatementKinds() []Kind {
	var kinds []Kind
	for k := KindBlock; k < firstExpressionKind; k++ {
		kinds = append(kinds, k)
	}

	return kinds
}

// ExpressionKinds returns every expression kind.
func ExpressionKinds() []Kind {
	var kinds []Kind
	for k := KindLiteral; k < kindCount; k++ {
		kinds = append(kinds, k)
	}

	return kinds
}

// -----------------------------------------------------------------------------

// Node is a node of the bound tree.  Every node has a creation ID unique to the
// `Factory` that created it.  Nodes are immutable once constructed, with the
// exception of the populate-once nodes `Call` and `FunctionDeclaration`.
type Node interface {
	ID() int
	Kind() Kind
	Span() *report.TextSpan
}

// Statement is a bound statement.
type Statement interface {
	Node
	statement()
}

// Expression is a bound expression.
type Expression interface {
	Node
	Type() *types.Type
	expression()
}

// nodeBase is the base struct of all bound nodes.
type nodeBase struct {
	id   int
	span *report.TextSpan
}

func (nb *nodeBase) ID() int {
	return nb.id
}

func (nb *nodeBase) Span() *report.TextSpan {
	return nb.span
}

// Label is the name of a jump target.
type Label string
