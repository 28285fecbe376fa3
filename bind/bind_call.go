package bind

import (
	"strings"

	"github.com/PeterBassett/Compiler-sub001/ast"
	"github.com/PeterBassett/Compiler-sub001/bound"
	"github.com/PeterBassett/Compiler-sub001/common"
	"github.com/PeterBassett/Compiler-sub001/report"
	"github.com/PeterBassett/Compiler-sub001/types"
)

// bindCall binds a call by name.  The callee is resolved in the following
// order:
//
//  1. a predefined type name called with one argument is an explicit conversion
//  2. a qualified name `Class.method` is a method of that class
//  3. a name in scope: a function or a variable holding a function.  Inside a
//     class, the class's methods shadow every name outside the class
//  4. a callable that is recorded but not yet defined: the call becomes a
//     placeholder resolved once all callables are bound
//  5. a builtin
func (b *Binder) bindCall(call *ast.Call) bound.Expression {
	if typ, ok := types.Lookup(call.Callee); ok {
		if len(call.Args) != 1 {
			return b.errorExpr(report.KindArg, call.Span(), "conversion to `%s` takes exactly one argument", typ)
		}

		return b.convertExplicit(b.bindExpr(call.Args[0]), typ, call.Span())
	}

	args := make([]bound.Expression, len(call.Args))
	for i, arg := range call.Args {
		args[i] = b.bindExpr(arg)
	}

	if dot := strings.IndexByte(call.Callee, '.'); dot >= 0 {
		return b.bindMethodCall(call, call.Callee[:dot], call.Callee[dot+1:], args)
	}

	id, method := b.findName(call.Callee)
	if !id.IsUndefined() {
		return b.bindResolvedCall(call, id, args)
	} else if method != nil {
		if method.decl != nil {
			return b.bindResolvedCall(call, method.decl.Identifier, args)
		}

		return b.newPlaceholder(method, call, args)
	}

	if c, ok := b.lookupCallable(call.Callee); ok {
		return b.newPlaceholder(c, call, args)
	}

	if fn, ok := b.builtins.Lookup(call.Callee); ok {
		return b.bindResolvedCall(call, common.NewIdentifier(fn.Name, fn.Type, nil), args)
	}

	return b.errorExpr(report.KindName, call.Span(), "undefined function: `%s`", call.Callee)
}

// bindMethodCall binds a call to a method qualified by its class name.
func (b *Binder) bindMethodCall(call *ast.Call, className, method string, args []bound.Expression) bound.Expression {
	ci, ok := b.classes[className]
	if !ok {
		return b.errorExpr(report.KindName, call.Span(), "undefined class: `%s`", className)
	}

	c, ok := ci.methods[method]
	if !ok {
		return b.errorExpr(report.KindMember, call.Span(), "class `%s` has no method named `%s`", className, method)
	}

	if c.decl != nil {
		return b.bindResolvedCall(call, c.decl.Identifier, args)
	}

	return b.newPlaceholder(c, call, args)
}

// bindResolvedCall binds a call whose callee is known.
func (b *Binder) bindResolvedCall(call *ast.Call, callee *common.Identifier, args []bound.Expression) bound.Expression {
	if callee.Type.IsError() {
		return b.factory.NewError(call.Span())
	}

	if callee.Type.Kind != types.KindFunction {
		return b.errorExpr(report.KindType, call.Span(), "`%s` of type `%s` is not callable", call.Callee, callee.Type)
	}

	return b.factory.NewCall(call.Span(), callee, b.convertArguments(callee, args, call))
}
