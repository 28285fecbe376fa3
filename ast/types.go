package ast

// NamedType is a type referred to by name: a predefined type, a struct or a
// class.
type NamedType struct {
	ASTBase

	Name string
}

// PointerType is a pointer type: `*T`.
type PointerType struct {
	ASTBase

	Elem TypeExpr
}

// ArrayType is a fixed-length array type: `[N]T`.
type ArrayType struct {
	ASTBase

	Elem   TypeExpr
	Length int
}

// FuncType is a function type: `func(A, B): R`.  A nil `ReturnType` means the
// function returns `unit`.
type FuncType struct {
	ASTBase

	Params     []TypeExpr
	ReturnType TypeExpr
}

func (*NamedType) typeExpr()   {}
func (*PointerType) typeExpr() {}
func (*ArrayType) typeExpr()   {}
func (*FuncType) typeExpr()    {}
