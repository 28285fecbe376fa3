package bind

import (
	"strconv"
	"strings"

	"github.com/PeterBassett/Compiler-sub001/ast"
	"github.com/PeterBassett/Compiler-sub001/bound"
	"github.com/PeterBassett/Compiler-sub001/common"
	"github.com/PeterBassett/Compiler-sub001/report"
	"github.com/PeterBassett/Compiler-sub001/types"
)

// bindExpr binds an expression.  It never returns nil: expressions that fail to
// bind are replaced by error expressions.
func (b *Binder) bindExpr(expr ast.Expr) bound.Expression {
	switch v := expr.(type) {
	case *ast.Literal:
		return b.bindLiteral(v)
	case *ast.Name:
		return b.bindName(v)
	case *ast.Unary:
		return b.bindUnary(v)
	case *ast.Binary:
		left := b.bindExpr(v.Left)
		right := b.bindExpr(v.Right)
		return b.bindBinaryOperator(v.Span(), left, v.Op, right)
	case *ast.Call:
		return b.bindCall(v)
	case *ast.Get:
		return b.bindGet(v)
	case *ast.Index:
		return b.bindIndex(v)
	}

	report.ICE("binder: unhandled expression %T", expr)
	return nil
}

// bindLiteral decodes the text of a literal.
func (b *Binder) bindLiteral(lit *ast.Literal) bound.Expression {
	switch lit.Kind {
	case ast.LitInt:
		n, err := strconv.ParseInt(lit.Value, 0, 32)
		if err != nil {
			return b.errorExpr(report.KindValue, lit.Span(), "invalid int literal `%s`", lit.Value)
		}

		return b.factory.NewLiteral(lit.Span(), int32(n), types.Int)
	case ast.LitFloat:
		x, err := strconv.ParseFloat(lit.Value, 64)
		if err != nil {
			return b.errorExpr(report.KindValue, lit.Span(), "invalid float literal `%s`", lit.Value)
		}

		return b.factory.NewLiteral(lit.Span(), x, types.Float)
	case ast.LitByte:
		if len(lit.Value) > 2 && strings.HasPrefix(lit.Value, "'") {
			r, _, tail, err := strconv.UnquoteChar(lit.Value[1:len(lit.Value)-1], '\'')
			if err == nil && tail == "" && r < 256 {
				return b.factory.NewLiteral(lit.Span(), uint8(r), types.Byte)
			}
		} else if n, err := strconv.ParseUint(lit.Value, 0, 8); err == nil {
			return b.factory.NewLiteral(lit.Span(), uint8(n), types.Byte)
		}

		return b.errorExpr(report.KindValue, lit.Span(), "invalid byte literal `%s`", lit.Value)
	case ast.LitBool:
		v, err := strconv.ParseBool(lit.Value)
		if err != nil {
			return b.errorExpr(report.KindValue, lit.Span(), "invalid bool literal `%s`", lit.Value)
		}

		return b.factory.NewLiteral(lit.Span(), v, types.Bool)
	case ast.LitString:
		return b.factory.NewLiteral(lit.Span(), lit.Value, types.String)
	case ast.LitNull:
		return b.factory.NewLiteral(lit.Span(), nil, types.Null)
	}

	report.ICE("binder: unhandled literal kind %s", lit.Kind)
	return nil
}

// bindName binds a reference to a variable or function.
func (b *Binder) bindName(name *ast.Name) bound.Expression {
	id, method := b.findName(name.Name)
	if !id.IsUndefined() {
		return b.factory.NewVariable(name.Span(), id)
	}

	if _, ok := b.lookupCallable(name.Name); ok || method != nil {
		return b.errorExpr(report.KindName, name.Span(), "function `%s` cannot be used as a value before its declaration", name.Name)
	}

	if _, ok := b.builtins.Lookup(name.Name); ok {
		return b.errorExpr(report.KindUsage, name.Span(), "builtin `%s` can only be called", name.Name)
	}

	return b.errorExpr(report.KindName, name.Span(), "undefined symbol: `%s`", name.Name)
}

// findName looks up a name in scope.  Inside a class, a method of the class
// shadows every name declared outside the class whether or not the method has
// been bound yet: an unbound method is returned in place of an identifier.
func (b *Binder) findName(name string) (*common.Identifier, *callable) {
	if b.class != nil {
		if c, ok := b.class.methods[name]; ok {
			if id := b.scopes.FindWithin(b.class.frame, name); !id.IsUndefined() {
				return id, nil
			}

			return common.Undefined, c
		}
	}

	return b.scopes.Find(name), nil
}

// lookupCallable looks up a callable that has been recorded but not yet
// defined.  Methods of the enclosing class shadow top-level callables.
func (b *Binder) lookupCallable(name string) (*callable, bool) {
	if b.class != nil {
		if c, ok := b.class.methods[name]; ok {
			return c, true
		}
	}

	c, ok := b.callables[name]
	return c, ok
}

// bindUnary binds a unary operator, dereference or address-of expression.
func (b *Binder) bindUnary(u *ast.Unary) bound.Expression {
	operand := b.bindExpr(u.Operand)
	if operand.Type().IsError() {
		return operand
	}

	switch u.Op {
	case ast.OpStar:
		if !operand.Type().IsPointer() {
			return b.errorExpr(report.KindUsage, u.Span(), "cannot dereference non-pointer type `%s`", operand.Type())
		}

		return b.factory.NewDereference(u.Span(), operand)
	case ast.OpAmp:
		if !bound.IsAssignable(operand) {
			return b.errorExpr(report.KindUsage, u.Span(), "cannot take the address of a non-assignable expression")
		}

		return b.factory.NewAddressOf(u.Span(), operand, b.table.NewPointer(operand.Type()))
	}

	op, ok := bound.LookupUnaryOperator(u.Op, operand.Type())
	if !ok {
		b.recError(report.KindOperator, u.Span(), "operator `%s` is not defined for type `%s`", u.Op, operand.Type())
		return operand
	}

	return b.factory.NewUnary(u.Span(), op, operand)
}

// bindBinaryOperator binds a binary operator applied to two bound operands.  If
// no operator matches the operand types, each operand is in turn implicitly
// converted to the type of the other.
func (b *Binder) bindBinaryOperator(span *report.TextSpan, left bound.Expression, op ast.Operator, right bound.Expression) bound.Expression {
	if left.Type().IsError() || right.Type().IsError() {
		return b.factory.NewError(span)
	}

	if bop, ok := bound.LookupBinaryOperator(op, left.Type(), right.Type()); ok {
		return b.factory.NewBinary(span, left, bop, right)
	}

	if b.classify(left, right.Type()).IsSilent() {
		if bop, ok := bound.LookupBinaryOperator(op, right.Type(), right.Type()); ok {
			return b.factory.NewBinary(span, b.convertImplicit(left, right.Type(), left.Span()), bop, right)
		}
	}

	if b.classify(right, left.Type()).IsSilent() {
		if bop, ok := bound.LookupBinaryOperator(op, left.Type(), left.Type()); ok {
			return b.factory.NewBinary(span, left, bop, b.convertImplicit(right, left.Type(), right.Span()))
		}
	}

	b.recError(report.KindOperator, span, "operator `%s` is not defined for types `%s` and `%s`", op, left.Type(), right.Type())
	return left
}

// bindGet binds a member access.  Members of struct-shaped values can be
// accessed through pointers.
func (b *Binder) bindGet(g *ast.Get) bound.Expression {
	operand := b.bindExpr(g.Operand)
	if operand.Type().IsError() {
		return operand
	}

	typ := operand.Type()
	if typ.IsPointer() {
		typ = typ.PointerTo
	}

	if !typ.IsStructShaped() {
		return b.errorExpr(report.KindMember, g.Span(), "type `%s` has no members", operand.Type())
	}

	field, ok := typ.Members.Field(g.Member)
	if !ok {
		if _, ok := b.classMethod(typ, g.Member); ok {
			return b.errorExpr(report.KindUsage, g.Span(), "method `%s` must be called as `%s.%s(...)`", g.Member, typ.Name, g.Member)
		}

		return b.errorExpr(report.KindMember, g.Span(), "type `%s` has no field named `%s`", typ, g.Member)
	}

	return b.factory.NewGetMember(g.Span(), operand, g.Member, field.Type)
}

// classMethod looks up a method of a class whether or not it has been bound.
func (b *Binder) classMethod(typ *types.Type, name string) (*callable, bool) {
	if !typ.IsClass {
		return nil, false
	}

	if ci, ok := b.classes[typ.Name]; ok {
		c, ok := ci.methods[name]
		return c, ok
	}

	return nil, false
}

// bindIndex binds an index into an array or pointer.
func (b *Binder) bindIndex(ix *ast.Index) bound.Expression {
	operand := b.bindExpr(ix.Operand)
	index := b.bindExpr(ix.Index)
	if operand.Type().IsError() || index.Type().IsError() {
		return b.factory.NewError(ix.Span())
	}

	var elem *types.Type
	switch typ := operand.Type(); {
	case typ.IsArray:
		elem = typ.ElementType
	case typ.IsPointer():
		elem = typ.PointerTo
	default:
		return b.errorExpr(report.KindType, ix.Span(), "type `%s` cannot be indexed", typ)
	}

	index = b.convertImplicit(index, types.Int, ix.Index.Span())
	return b.factory.NewIndex(ix.Span(), operand, index, elem)
}
