package bind

import (
	"github.com/PeterBassett/Compiler-sub001/ast"
	"github.com/PeterBassett/Compiler-sub001/bound"
	"github.com/PeterBassett/Compiler-sub001/report"
	"github.com/PeterBassett/Compiler-sub001/types"
)

// resolveType resolves a type annotation.  Unresolvable annotations are
// reported and resolve to the error type.
func (b *Binder) resolveType(te ast.TypeExpr) *types.Type {
	switch v := te.(type) {
	case *ast.NamedType:
		if typ, ok := types.Lookup(v.Name); ok {
			return typ
		}

		if typ, ok := b.typeNames[v.Name]; ok {
			return typ
		}

		b.recError(report.KindName, v.Span(), "undefined type: `%s`", v.Name)
		return types.Error
	case *ast.PointerType:
		elem := b.resolveType(v.Elem)
		if elem.IsError() {
			return elem
		}

		return b.table.NewPointer(elem)
	case *ast.ArrayType:
		elem := b.resolveType(v.Elem)
		if elem.IsError() {
			return elem
		}

		if v.Length <= 0 {
			b.recError(report.KindType, v.Span(), "array length must be positive not %d", v.Length)
			return types.Error
		}

		switch elem.Kind {
		case types.KindUnit, types.KindNull:
			b.recError(report.KindType, v.Span(), "array elements cannot be of type `%s`", elem)
			return types.Error
		}

		return b.table.NewArray(elem, v.Length)
	case *ast.FuncType:
		params := make([]*types.Type, len(v.Params))
		for i, param := range v.Params {
			params[i] = b.resolveType(param)
		}

		return b.table.NewFunction(params, b.resolveOptionalType(v.ReturnType))
	}

	report.ICE("binder: unhandled type expression %T", te)
	return nil
}

// resolveOptionalType resolves a return type annotation: a missing annotation
// is `unit`.
func (b *Binder) resolveOptionalType(te ast.TypeExpr) *types.Type {
	if te == nil {
		return types.Unit
	}

	return b.resolveType(te)
}

// -----------------------------------------------------------------------------

// classify classifies the conversion of a bound expression to a type.  Literals
// may undergo immediate conversions.
func (b *Binder) classify(expr bound.Expression, to *types.Type) types.Conversion {
	if lit, ok := expr.(*bound.Literal); ok {
		return types.ClassifyLiteral(lit.Type(), lit.Value, to)
	}

	return types.Classify(expr.Type(), to)
}

// convertImplicit converts an expression to a type where an explicit
// conversion isn't written: declarations, assignments, arguments, returns and
// conditions.
func (b *Binder) convertImplicit(expr bound.Expression, to *types.Type, span *report.TextSpan) bound.Expression {
	switch b.classify(expr, to) {
	case types.ConvIdentity:
		return expr
	case types.ConvImplicit:
		return b.implicitConversion(expr, to, span)
	case types.ConvImmediate:
		return b.foldConversion(expr.(*bound.Literal), to)
	case types.ConvExplicit:
		return b.errorExpr(
			report.KindType,
			span,
			"cannot implicitly convert `%s` to `%s`: an explicit conversion is required",
			expr.Type(),
			to,
		)
	}

	return b.errorExpr(report.KindType, span, "cannot convert `%s` to `%s`", expr.Type(), to)
}

// convertExplicit converts an expression to a type through an explicit
// conversion: `int(x)`.
func (b *Binder) convertExplicit(expr bound.Expression, to *types.Type, span *report.TextSpan) bound.Expression {
	switch b.classify(expr, to) {
	case types.ConvIdentity:
		return expr
	case types.ConvImplicit:
		return b.implicitConversion(expr, to, span)
	case types.ConvImmediate:
		return b.foldConversion(expr.(*bound.Literal), to)
	case types.ConvExplicit:
		return b.factory.NewConversion(span, expr, to)
	}

	return b.errorExpr(report.KindType, span, "cannot convert `%s` to `%s`", expr.Type(), to)
}

// implicitConversion creates an implicit conversion node.  Null literals are
// retyped instead: a null of pointer type.
func (b *Binder) implicitConversion(expr bound.Expression, to *types.Type, span *report.TextSpan) bound.Expression {
	if lit, ok := expr.(*bound.Literal); ok && lit.Type().Kind == types.KindNull {
		return b.factory.NewLiteral(lit.Span(), nil, to)
	}

	return b.factory.NewConversion(span, expr, to)
}

// foldConversion folds the conversion of a literal into a new literal.
func (b *Binder) foldConversion(lit *bound.Literal, to *types.Type) bound.Expression {
	switch v := lit.Value.(type) {
	case int32:
		if to.Kind == types.KindByte {
			return b.factory.NewLiteral(lit.Span(), uint8(v), to)
		}
	}

	report.ICE("binder: cannot fold conversion of `%v` to `%s`", lit.Value, to)
	return nil
}
