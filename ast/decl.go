package ast

// VarDecl is a variable declaration.  It is both a declaration (a global or a
// class field) and a statement (a local variable).  At least one of `Type` and
// `Init` should be present.
type VarDecl struct {
	ASTBase

	Name     string
	ReadOnly bool

	// Type is the type annotation: it may be nil.
	Type TypeExpr

	// Init is the initializer: it may be nil.
	Init Expr
}

// Param is a function parameter.
type Param struct {
	ASTBase

	Name string
	Type TypeExpr
}

// FuncDecl is a named function declaration.  A nil `ReturnType` means the
// function returns `unit`.
type FuncDecl struct {
	ASTBase

	Name       string
	Params     []*Param
	ReturnType TypeExpr
	Body       *Block
}

// LambdaDecl is a named expression-bodied function.  If `ReturnType` is nil,
// the return type is inferred from the body.
type LambdaDecl struct {
	ASTBase

	Name       string
	Params     []*Param
	ReturnType TypeExpr
	Body       Expr
}

// Field is a struct field.
type Field struct {
	ASTBase

	Name string
	Type TypeExpr
}

// StructDecl is a struct declaration.
type StructDecl struct {
	ASTBase

	Name   string
	Fields []*Field
}

// ClassDecl is a class declaration.  Its members are fields (`VarDecl`) and
// methods (`FuncDecl` and `LambdaDecl`).
type ClassDecl struct {
	ASTBase

	Name    string
	Members []Decl
}

func (*VarDecl) decl()    {}
func (*FuncDecl) decl()   {}
func (*LambdaDecl) decl() {}
func (*StructDecl) decl() {}
func (*ClassDecl) decl()  {}
