package bind

import (
	"github.com/PeterBassett/Compiler-sub001/ast"
	"github.com/PeterBassett/Compiler-sub001/bound"
	"github.com/PeterBassett/Compiler-sub001/common"
	"github.com/PeterBassett/Compiler-sub001/report"
	"github.com/PeterBassett/Compiler-sub001/scope"
	"github.com/PeterBassett/Compiler-sub001/types"
)

// callable is a function, lambda or method recorded during phase 1.  Its
// signature is resolved when it is recorded so that placeholder call sites
// know their return type before the callable is bound.
type callable struct {
	// name is the name the callable is visible by in its scope.
	name string

	// qualified is the full name of the callable: `Class.method` for methods.
	qualified string

	syntax ast.Decl
	class  *classInfo

	params []*types.Type

	// returnType is nil for lambdas whose return type is inferred.
	returnType *types.Type

	decl *bound.FunctionDeclaration
}

func callableName(decl ast.Decl) string {
	switch v := decl.(type) {
	case *ast.FuncDecl:
		return v.Name
	case *ast.LambdaDecl:
		return v.Name
	}

	report.ICE("binder: %T is not a callable", decl)
	return ""
}

func callableParams(decl ast.Decl) []*ast.Param {
	if fd, ok := decl.(*ast.FuncDecl); ok {
		return fd.Params
	}

	return decl.(*ast.LambdaDecl).Params
}

// recordCallable records the name and signature of a callable into `table`.
func (b *Binder) recordCallable(table map[string]*callable, decl ast.Decl, ci *classInfo) {
	name := callableName(decl)
	span := decl.Span()

	if _, ok := table[name]; ok {
		if ci == nil {
			b.recError(report.KindDef, span, "function `%s` defined multiple times", name)
		} else {
			b.recError(report.KindDef, span, "method `%s` defined multiple times in class `%s`", name, ci.typ.Name)
		}

		return
	}

	c := &callable{name: name, qualified: name, syntax: decl, class: ci}
	if ci != nil {
		c.qualified = ci.typ.Name + "." + name

		if _, ok := ci.typ.Members.Field(name); ok {
			b.recError(report.KindDef, span, "method `%s` conflicts with a field of class `%s`", name, ci.typ.Name)
			return
		}
	}

	for _, param := range callableParams(decl) {
		c.params = append(c.params, b.resolveParamType(param))
	}

	switch v := decl.(type) {
	case *ast.FuncDecl:
		c.returnType = b.resolveOptionalType(v.ReturnType)
	case *ast.LambdaDecl:
		if v.ReturnType != nil {
			c.returnType = b.resolveType(v.ReturnType)
		}
	}

	table[name] = c
	if ci != nil {
		ci.order = append(ci.order, c)
	}
}

func (b *Binder) resolveParamType(param *ast.Param) *types.Type {
	typ := b.resolveType(param.Type)
	switch typ.Kind {
	case types.KindUnit, types.KindNull:
		b.recError(report.KindType, param.Span(), "parameter `%s` cannot be of type `%s`", param.Name, typ)
		return types.Error
	}

	return typ
}

// bindCallable defines a callable in the current scope and binds its body.
func (b *Binder) bindCallable(c *callable) {
	span := c.syntax.Span()
	params := callableParams(c.syntax)

	// parameter symbols are created here but defined in the body's frame
	syms := make([]*common.VariableSymbol, len(params))
	for i, param := range params {
		syms[i] = common.NewVariableSymbol(param.Name, false, c.params[i], false, true)
	}

	var classType *types.Type
	if c.class != nil {
		classType = c.class.typ
	}

	prevFn := b.fn
	defer func() {
		b.fn = prevFn
	}()

	switch v := c.syntax.(type) {
	case *ast.FuncDecl:
		id := b.defineCallable(c, b.table.NewFunction(c.params, c.returnType), span)
		c.decl = b.factory.NewFunctionDeclaration(span, id, syms)
		c.decl.Class = classType
		b.addFunction(c)

		b.fn = &funcContext{name: c.qualified, returnType: c.returnType}
		body := b.bindParamScope(params, syms, func() []bound.Statement {
			return b.bindStatements(v.Body.Stmts)
		})

		if !c.returnType.IsError() && c.returnType.Kind != types.KindUnit && b.fn.returnCount == 0 {
			b.recError(report.KindUsage, span, "function `%s` must return a value of type `%s`", c.qualified, c.returnType)
		}

		c.decl.DefineBody(b.factory.NewBlock(v.Body.Span(), body), c.returnType)
	case *ast.LambdaDecl:
		b.fn = &funcContext{name: c.qualified, returnType: c.returnType}

		// an inferred lambda's type is specialised from a provisional type once
		// its body is bound
		fnType := b.table.NewFunction(c.params, types.Unit)
		if c.returnType != nil {
			// an annotated lambda is defined before its body so it can recurse
			fnType = b.table.CloneWithReturn(fnType, c.returnType)
			c.decl = b.factory.NewFunctionDeclaration(span, b.defineCallable(c, fnType, span), syms)
			c.decl.Class = classType
			b.addFunction(c)
		}

		var result bound.Expression
		body := b.bindParamScope(params, syms, func() []bound.Statement {
			result = b.bindExpr(v.Body)
			return nil
		})

		retType := c.returnType
		if retType == nil {
			retType = result.Type()
			switch retType.Kind {
			case types.KindNull:
				b.recError(report.KindType, v.Body.Span(), "unable to infer the return type of `%s` from null", c.qualified)
				retType = types.Error
			}

			fnType = b.table.CloneWithReturn(fnType, retType)
			c.decl = b.factory.NewFunctionDeclaration(span, b.defineCallable(c, fnType, span), syms)
			c.decl.Class = classType
			b.addFunction(c)
		} else {
			result = b.convertImplicit(result, retType, v.Body.Span())
		}

		// the body of a lambda is a single return
		if retType.Kind == types.KindUnit {
			body = append(body,
				b.factory.NewExpressionStatement(v.Body.Span(), result),
				b.factory.NewReturn(v.Body.Span(), nil),
			)
		} else {
			body = append(body, b.factory.NewReturn(v.Body.Span(), result))
		}

		c.decl.DefineBody(b.factory.NewBlock(v.Body.Span(), body), retType)
	}
}

// defineCallable defines the identifier of a callable in the current scope.
func (b *Binder) defineCallable(c *callable, fnType *types.Type, span *report.TextSpan) *common.Identifier {
	id := common.NewIdentifier(c.qualified, fnType, nil)
	if err := b.scopes.DefineAs(c.name, id); err != nil {
		b.recError(report.KindDef, span, "multiple symbols named `%s` defined in the same scope", c.name)
	}

	if c.class != nil {
		c.class.typ.Members.AddMethod(c.name, fnType)
	}

	return id
}

func (b *Binder) addFunction(c *callable) {
	b.program.Functions = append(b.program.Functions, c.decl)
	if c.class != nil {
		c.class.bound.Methods = append(c.class.bound.Methods, c.decl)
	}
}

// bindParamScope pushes the frame of a function body, defines its parameters in
// it and then calls `bindBody`.  Parameters share the frame of the body's
// top-level statements.
func (b *Binder) bindParamScope(params []*ast.Param, syms []*common.VariableSymbol, bindBody func() []bound.Statement) []bound.Statement {
	// loops never enclose a function body
	prevLoops := b.loops
	b.loops = nil
	defer func() {
		b.loops = prevLoops
	}()

	defer b.scopes.Push().Release()

	for i, param := range params {
		if _, err := b.scopes.Define(param.Name, syms[i].Type, syms[i]); err != nil {
			b.recError(report.KindDef, param.Span(), "multiple parameters named `%s`", param.Name)
		}
	}

	return bindBody()
}

// -----------------------------------------------------------------------------

// placeholder is a call site bound before its callee was defined.
type placeholder struct {
	call   *bound.Call
	syntax *ast.Call

	// name and class determine where the callee will be defined: in the frame
	// of `class` or, if it is nil, in the root frame.
	name  string
	class *classInfo

	args []bound.Expression
}

// newPlaceholder creates a pending call to a recorded callable.
func (b *Binder) newPlaceholder(c *callable, call *ast.Call, args []bound.Expression) bound.Expression {
	if c.returnType == nil {
		return b.errorExpr(
			report.KindUsage,
			call.Span(),
			"cannot call `%s` before its return type is inferred: annotate its return type",
			c.qualified,
		)
	}

	pending := b.factory.NewPendingCall(call.Span(), c.qualified, c.returnType)
	b.placeholders = append(b.placeholders, &placeholder{
		call:   pending,
		syntax: call,
		name:   c.name,
		class:  c.class,
		args:   args,
	})

	return pending
}

// resolvePlaceholders resolves every placeholder call site in the order the
// call sites were bound.
func (b *Binder) resolvePlaceholders() {
	for _, ph := range b.placeholders {
		frame := scope.RootFrame
		if ph.class != nil {
			frame = ph.class.frame
		}

		callee := b.scopes.FindFrom(frame, ph.name)
		if !callee.IsFunction() || !callee.Type.Func.ReturnType.Equals(ph.call.Type()) {
			// the callee failed to be defined: that has already been reported
			if b.diags.ErrorCount() == 0 {
				report.ICE("placeholder call to `%s` could not be resolved", ph.name)
			}

			continue
		}

		ph.call.Resolve(callee, b.convertArguments(callee, ph.args, ph.syntax))
	}

	b.placeholders = nil
}

// convertArguments checks the arguments of a call against the parameters of
// the callee and inserts implicit conversions.
func (b *Binder) convertArguments(callee *common.Identifier, args []bound.Expression, call *ast.Call) []bound.Expression {
	params := callee.Type.Func.Params
	if len(args) != len(params) {
		b.recError(
			report.KindArg,
			call.Span(),
			"`%s` expects %d arguments but received %d",
			call.Callee,
			len(params),
			len(args),
		)
	}

	n := len(args)
	if len(params) < n {
		n = len(params)
	}

	converted := make([]bound.Expression, n)
	for i := 0; i < n; i++ {
		converted[i] = b.convertImplicit(args[i], params[i], call.Args[i].Span())
	}

	return converted
}
