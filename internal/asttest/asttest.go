// Package asttest provides shorthand constructors for building syntax trees in
// tests.  None of the nodes it builds carry spans.
package asttest

import (
	"strconv"

	"github.com/PeterBassett/Compiler-sub001/ast"
)

// Unit creates a compilation unit from declarations.
func Unit(decls ...ast.Decl) *ast.CompilationUnit {
	return &ast.CompilationUnit{Declarations: decls}
}

// -----------------------------------------------------------------------------

// T is a named type.
func T(name string) ast.TypeExpr {
	return &ast.NamedType{Name: name}
}

// Ptr is a pointer type.
func Ptr(elem ast.TypeExpr) ast.TypeExpr {
	return &ast.PointerType{Elem: elem}
}

// Arr is an array type.
func Arr(elem ast.TypeExpr, length int) ast.TypeExpr {
	return &ast.ArrayType{Elem: elem, Length: length}
}

// FnT is a function type.
func FnT(ret ast.TypeExpr, params ...ast.TypeExpr) ast.TypeExpr {
	return &ast.FuncType{Params: params, ReturnType: ret}
}

// -----------------------------------------------------------------------------

// P is a function parameter.
func P(name string, typ ast.TypeExpr) *ast.Param {
	return &ast.Param{Name: name, Type: typ}
}

// Params builds a parameter list.
func Params(params ...*ast.Param) []*ast.Param {
	return params
}

// Func is a function declaration.  A nil `ret` means `unit`.
func Func(name string, params []*ast.Param, ret ast.TypeExpr, body ...ast.Stmt) *ast.FuncDecl {
	return &ast.FuncDecl{Name: name, Params: params, ReturnType: ret, Body: Block(body...)}
}

// Lambda is a lambda declaration.  A nil `ret` means the return type is
// inferred.
func Lambda(name string, params []*ast.Param, ret ast.TypeExpr, body ast.Expr) *ast.LambdaDecl {
	return &ast.LambdaDecl{Name: name, Params: params, ReturnType: ret, Body: body}
}

// F is a struct field.
func F(name string, typ ast.TypeExpr) *ast.Field {
	return &ast.Field{Name: name, Type: typ}
}

// Struct is a struct declaration.
func Struct(name string, fields ...*ast.Field) *ast.StructDecl {
	return &ast.StructDecl{Name: name, Fields: fields}
}

// Class is a class declaration.
func Class(name string, members ...ast.Decl) *ast.ClassDecl {
	return &ast.ClassDecl{Name: name, Members: members}
}

// -----------------------------------------------------------------------------

// Var is a mutable variable declaration.
func Var(name string, typ ast.TypeExpr, init ast.Expr) *ast.VarDecl {
	return &ast.VarDecl{Name: name, Type: typ, Init: init}
}

// Let is a read-only variable declaration.
func Let(name string, typ ast.TypeExpr, init ast.Expr) *ast.VarDecl {
	return &ast.VarDecl{Name: name, ReadOnly: true, Type: typ, Init: init}
}

// Block is a block statement.
func Block(stmts ...ast.Stmt) *ast.Block {
	return &ast.Block{Stmts: stmts}
}

// If is an if statement.  `els` may be nil.
func If(cond ast.Expr, then, els ast.Stmt) *ast.If {
	return &ast.If{Cond: cond, Then: then, Else: els}
}

// While is a while loop.
func While(cond ast.Expr, body ...ast.Stmt) *ast.While {
	return &ast.While{Cond: cond, Body: Block(body...)}
}

// For is a counting loop.
func For(v string, lower, upper ast.Expr, body ...ast.Stmt) *ast.For {
	return &ast.For{Var: v, Lower: lower, Upper: upper, Body: Block(body...)}
}

// Return is a return statement.  `value` may be nil.
func Return(value ast.Expr) *ast.Return {
	return &ast.Return{Value: value}
}

// Break is a break statement.
func Break() *ast.Break {
	return &ast.Break{}
}

// Continue is a continue statement.
func Continue() *ast.Continue {
	return &ast.Continue{}
}

// Do is an expression statement.
func Do(expr ast.Expr) *ast.ExprStmt {
	return &ast.ExprStmt{Expr: expr}
}

// Set is an assignment.
func Set(target, value ast.Expr) *ast.Assign {
	return &ast.Assign{Target: target, Value: value}
}

// SetOp is a compound assignment.
func SetOp(target ast.Expr, op string, value ast.Expr) *ast.Assign {
	return &ast.Assign{Target: target, Op: mustOp(op), Value: value}
}

// -----------------------------------------------------------------------------

// Int is an int literal.
func Int(n int) ast.Expr {
	return &ast.Literal{Kind: ast.LitInt, Value: strconv.Itoa(n)}
}

// Float is a float literal.
func Float(text string) ast.Expr {
	return &ast.Literal{Kind: ast.LitFloat, Value: text}
}

// Byte is a byte literal.
func Byte(n int) ast.Expr {
	return &ast.Literal{Kind: ast.LitByte, Value: strconv.Itoa(n)}
}

// Bool is a bool literal.
func Bool(b bool) ast.Expr {
	return &ast.Literal{Kind: ast.LitBool, Value: strconv.FormatBool(b)}
}

// Str is a string literal.
func Str(s string) ast.Expr {
	return &ast.Literal{Kind: ast.LitString, Value: s}
}

// Null is the null literal.
func Null() ast.Expr {
	return &ast.Literal{Kind: ast.LitNull, Value: "null"}
}

// N is a name reference.
func N(name string) ast.Expr {
	return &ast.Name{Name: name}
}

// Un is a unary operator application.
func Un(op string, operand ast.Expr) ast.Expr {
	return &ast.Unary{Op: mustOp(op), Operand: operand}
}

// Bin is a binary operator application.
func Bin(left ast.Expr, op string, right ast.Expr) ast.Expr {
	return &ast.Binary{Op: mustOp(op), Left: left, Right: right}
}

// Call is a call by name.
func Call(callee string, args ...ast.Expr) ast.Expr {
	return &ast.Call{Callee: callee, Args: args}
}

// Get is a member access.
func Get(operand ast.Expr, member string) ast.Expr {
	return &ast.Get{Operand: operand, Member: member}
}

// Idx is an index expression.
func Idx(operand, index ast.Expr) ast.Expr {
	return &ast.Index{Operand: operand, Index: index}
}

func mustOp(tok string) ast.Operator {
	op, ok := ast.OperatorFromToken(tok)
	if !ok {
		panic("unknown operator token: " + tok)
	}

	return op
}
