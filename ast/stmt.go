package ast

// Block is a braced sequence of statements.  It opens a new scope.
type Block struct {
	ASTBase

	Stmts []Stmt
}

// If is an if statement.  `Else` may be nil.
type If struct {
	ASTBase

	Cond Expr
	Then Stmt
	Else Stmt
}

// While is a while loop.
type While struct {
	ASTBase

	Cond Expr
	Body Stmt
}

// For is a counting loop: `for v in lower to upper body`.  The loop variable
// takes every value from `Lower` to `Upper` inclusive.
type For struct {
	ASTBase

	Var   string
	Lower Expr
	Upper Expr
	Body  Stmt
}

// Return is a return statement.  `Value` may be nil.
type Return struct {
	ASTBase

	Value Expr
}

// Break is a break statement.
type Break struct {
	ASTBase
}

// Continue is a continue statement.
type Continue struct {
	ASTBase
}

// ExprStmt is an expression evaluated for its effects.
type ExprStmt struct {
	ASTBase

	Expr Expr
}

// Assign is an assignment.  If `Op` is not `OpNone`, the assignment is a
// compound assignment: `target op= value`.
type Assign struct {
	ASTBase

	Target Expr
	Op     Operator
	Value  Expr
}

func (*Block) stmt()    {}
func (*VarDecl) stmt()  {}
func (*If) stmt()       {}
func (*While) stmt()    {}
func (*For) stmt()      {}
func (*Return) stmt()   {}
func (*Break) stmt()    {}
func (*Continue) stmt() {}
func (*ExprStmt) stmt() {}
func (*Assign) stmt()   {}
