package ast

// LiteralKind is the kind of a literal.
type LiteralKind int

// Enumeration of literal kinds.
const (
	LitInt LiteralKind = iota
	LitFloat
	LitByte
	LitBool
	LitString
	LitNull
)

var literalKindNames = map[LiteralKind]string{
	LitInt:    "int",
	LitFloat:  "float",
	LitByte:   "byte",
	LitBool:   "bool",
	LitString: "string",
	LitNull:   "null",
}

func (lk LiteralKind) String() string {
	return literalKindNames[lk]
}

// Literal is a literal value.  `Value` is the literal's text as written: its
// value is decoded during binding.  String literals hold their unescaped text.
type Literal struct {
	ASTBase

	Kind  LiteralKind
	Value string
}

// Name is a reference to a named value.
type Name struct {
	ASTBase

	Name string
}

// Unary is a unary operator application.  Dereference (`*`) and address-of
// (`&`) are unary operators.
type Unary struct {
	ASTBase

	Op      Operator
	Operand Expr
}

// Binary is a binary operator application.
type Binary struct {
	ASTBase

	Op          Operator
	Left, Right Expr
}

// Call is a call by name.  The callee may be a function, a variable holding a
// function, a builtin, a predefined type (an explicit conversion) or a
// qualified class method: `Class.method`.
type Call struct {
	ASTBase

	Callee string
	Args   []Expr
}

// Get is a member access: `operand.member`.
type Get struct {
	ASTBase

	Operand Expr
	Member  string
}

// Index is an index expression: `operand[index]`.
type Index struct {
	ASTBase

	Operand Expr
	Index   Expr
}

func (*Literal) expr() {}
func (*Name) expr()    {}
func (*Unary) expr()   {}
func (*Binary) expr()  {}
func (*Call) expr()    {}
func (*Get) expr()     {}
func (*Index) expr()   {}
