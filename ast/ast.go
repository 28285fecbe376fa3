package ast

import "github.com/PeterBassett/Compiler-sub001/report"

// The abstract interface for all AST nodes.
type ASTNode interface {
	// The text span of the AST.
	Span() *report.TextSpan
}

// A utility base struct for all AST nodes.
type ASTBase struct {
	// The span over which the AST node occurs.
	span *report.TextSpan
}

// NewASTBaseOn creates a new AST base with the given span.
func NewASTBaseOn(span *report.TextSpan) ASTBase {
	return ASTBase{span: span}
}

// NewASTBaseOver creates a new AST base spanning over two spans.
func NewASTBaseOver(start, end *report.TextSpan) ASTBase {
	return ASTBase{span: report.NewSpanOver(start, end)}
}

func (ab ASTBase) Span() *report.TextSpan {
	return ab.span
}

// CompilationUnit is the root of a syntax tree: one source text and the
// declarations parsed from it.
type CompilationUnit struct {
	// Source is the original source text.  It is only used for rendering
	// diagnostics.
	Source string

	Declarations []Decl
}

// -----------------------------------------------------------------------------

// Decl is a top-level or class-level declaration.  The set of declarations is
// closed: it is exactly the declaration types of this package.
type Decl interface {
	ASTNode
	decl()
}

// Stmt is a statement.  The set of statements is closed.
type Stmt interface {
	ASTNode
	stmt()
}

// Expr is an expression.  The set of expressions is closed.
type Expr interface {
	ASTNode
	expr()
}

// TypeExpr is a type annotation.  The set of type expressions is closed.
type TypeExpr interface {
	ASTNode
	typeExpr()
}
