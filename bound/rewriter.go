package bound

import "github.com/PeterBassett/Compiler-sub001/report"

// Rewriter is a structural-sharing transform over the bound tree.  It rebuilds
// only the nodes whose children changed: any subtree that is unchanged is
// returned by identity.
//
// The `Statement` and `Expression` hooks let a pass replace nodes of its
// choosing.  A hook returns true if it handled the node, in which case its
// result is used as is; otherwise the rewriter recurses into the node's
// children.  Hooks may call `RewriteChildren` or `RewriteExpressionChildren`
// themselves to get the default behaviour for a node.
type Rewriter struct {
	Factory *Factory

	Statement  func(s Statement) (Statement, bool)
	Expression func(e Expression) (Expression, bool)
}

// NewRewriter creates a new rewriter with no hooks.
func NewRewriter(f *Factory) *Rewriter {
	return &Rewriter{Factory: f}
}

// RewriteProgram rewrites every global and function of a program.
func (r *Rewriter) RewriteProgram(p *Program) *Program {
	changed := false

	globals := make([]*VariableDeclaration, len(p.Globals))
	for i, global := range p.Globals {
		rewritten, ok := r.RewriteStatement(global).(*VariableDeclaration)
		if !ok {
			report.ICE("global `%s` rewritten to a non-declaration", global.Variable.Name)
		}

		globals[i] = rewritten
		changed = changed || rewritten != global
	}

	replaced := make(map[*FunctionDeclaration]*FunctionDeclaration)
	funcs := make([]*FunctionDeclaration, len(p.Functions))
	for i, fd := range p.Functions {
		funcs[i] = r.RewriteFunction(fd)
		if funcs[i] != fd {
			replaced[fd] = funcs[i]
			changed = true
		}
	}

	if !changed {
		return p
	}

	classes := make([]*ClassDeclaration, len(p.Classes))
	for i, cd := range p.Classes {
		methods := make([]*FunctionDeclaration, len(cd.Methods))
		methodChanged := false
		for j, method := range cd.Methods {
			if newMethod, ok := replaced[method]; ok {
				methods[j] = newMethod
				methodChanged = true
			} else {
				methods[j] = method
			}
		}

		if methodChanged {
			classes[i] = r.Factory.NewClassDeclaration(cd.Span(), cd.Type)
			classes[i].Methods = methods
		} else {
			classes[i] = cd
		}
	}

	return &Program{Globals: globals, Structs: p.Structs, Classes: classes, Functions: funcs}
}

// RewriteFunction rewrites the body of a function.
func (r *Rewriter) RewriteFunction(fd *FunctionDeclaration) *FunctionDeclaration {
	body := fd.Body()

	newBody, ok := r.RewriteStatement(body).(*Block)
	if !ok {
		report.ICE("body of function `%s` rewritten to a non-block", fd.Name())
	}

	if newBody == body {
		return fd
	}

	nfd := r.Factory.NewFunctionDeclaration(fd.Span(), fd.Identifier, fd.Parameters)
	nfd.Class = fd.Class
	nfd.DefineBody(newBody, fd.ReturnType())
	return nfd
}

// RewriteStatement rewrites a statement.
func (r *Rewriter) RewriteStatement(s Statement) Statement {
	if r.Statement != nil {
		if result, ok := r.Statement(s); ok {
			return result
		}
	}

	return r.RewriteChildren(s)
}

// RewriteExpression rewrites an expression.  It accepts nil.
func (r *Rewriter) RewriteExpression(e Expression) Expression {
	if e == nil {
		return nil
	}

	if r.Expression != nil {
		if result, ok := r.Expression(e); ok {
			return result
		}
	}

	return r.RewriteExpressionChildren(e)
}

// RewriteStatements rewrites a list of statements.  The original slice is
// returned if no statement changed.
func (r *Rewriter) RewriteStatements(stmts []Statement) []Statement {
	var result []Statement
	for i, s := range stmts {
		rewritten := r.RewriteStatement(s)
		if result == nil && rewritten != s {
			result = make([]Statement, i, len(stmts))
			copy(result, stmts[:i])
		}

		if result != nil {
			result = append(result, rewritten)
		}
	}

	if result == nil {
		return stmts
	}

	return result
}

// RewriteChildren rewrites the children of a statement and rebuilds it if any
// of them changed.
func (r *Rewriter) RewriteChildren(s Statement) Statement {
	f := r.Factory

	switch v := s.(type) {
	case *Block:
		stmts := r.RewriteStatements(v.Statements)
		if sameStatements(stmts, v.Statements) {
			return v
		}

		return f.NewBlock(v.Span(), stmts)
	case *VariableDeclaration:
		init := r.RewriteExpression(v.Initializer)
		if init == v.Initializer {
			return v
		}

		return f.NewVariableDeclaration(v.Span(), v.Variable, init)
	case *If:
		cond := r.RewriteExpression(v.Condition)
		then := r.RewriteStatement(v.Then)

		var els Statement
		if v.Else != nil {
			els = r.RewriteStatement(v.Else)
		}

		if cond == v.Condition && then == v.Then && els == v.Else {
			return v
		}

		return f.NewIf(v.Span(), cond, then, els)
	case *While:
		cond := r.RewriteExpression(v.Condition)
		body := r.RewriteStatement(v.Body)
		if cond == v.Condition && body == v.Body {
			return v
		}

		return f.NewWhile(v.Span(), cond, body, v.BreakLabel, v.ContinueLabel)
	case *For:
		lower := r.RewriteExpression(v.Lower)
		upper := r.RewriteExpression(v.Upper)
		body := r.RewriteStatement(v.Body)
		if lower == v.Lower && upper == v.Upper && body == v.Body {
			return v
		}

		return f.NewFor(v.Span(), v.Variable, lower, upper, body, v.BreakLabel, v.ContinueLabel)
	case *Return:
		value := r.RewriteExpression(v.Value)
		if value == v.Value {
			return v
		}

		return f.NewReturn(v.Span(), value)
	case *ExpressionStatement:
		expr := r.RewriteExpression(v.Expression)
		if expr == v.Expression {
			return v
		}

		return f.NewExpressionStatement(v.Span(), expr)
	case *Assignment:
		target := r.RewriteExpression(v.Target)
		value := r.RewriteExpression(v.Value)
		if target == v.Target && value == v.Value {
			return v
		}

		return f.NewAssignment(v.Span(), target, value)
	case *ConditionalGoto:
		cond := r.RewriteExpression(v.Condition)
		if cond == v.Condition {
			return v
		}

		return f.NewConditionalGoto(v.Span(), v.Label, cond, v.JumpIfTrue)
	case *Goto, *LabelStatement, *FunctionDeclaration, *StructDeclaration, *ClassDeclaration:
		return v
	}

	report.ICE("rewriter: unhandled statement kind %s", s.Kind())
	return nil
}

// RewriteExpressionChildren rewrites the children of an expression and
// rebuilds it if any of them changed.
func (r *Rewriter) RewriteExpressionChildren(e Expression) Expression {
	f := r.Factory

	switch v := e.(type) {
	case *Literal, *Variable, *Error:
		return v
	case *Unary:
		operand := r.RewriteExpression(v.Operand)
		if operand == v.Operand {
			return v
		}

		return f.NewUnary(v.Span(), v.Op, operand)
	case *Binary:
		left := r.RewriteExpression(v.Left)
		right := r.RewriteExpression(v.Right)
		if left == v.Left && right == v.Right {
			return v
		}

		return f.NewBinary(v.Span(), left, v.Op, right)
	case *Call:
		args := v.Arguments()

		var newArgs []Expression
		for i, arg := range args {
			rewritten := r.RewriteExpression(arg)
			if newArgs == nil && rewritten != arg {
				newArgs = make([]Expression, i, len(args))
				copy(newArgs, args[:i])
			}

			if newArgs != nil {
				newArgs = append(newArgs, rewritten)
			}
		}

		if newArgs == nil {
			return v
		}

		return f.NewCall(v.Span(), v.Callee(), newArgs)
	case *GetMember:
		operand := r.RewriteExpression(v.Operand)
		if operand == v.Operand {
			return v
		}

		return f.NewGetMember(v.Span(), operand, v.Member, v.Type())
	case *Dereference:
		operand := r.RewriteExpression(v.Operand)
		if operand == v.Operand {
			return v
		}

		return f.NewDereference(v.Span(), operand)
	case *Conversion:
		operand := r.RewriteExpression(v.Operand)
		if operand == v.Operand {
			return v
		}

		return f.NewConversion(v.Span(), operand, v.Type())
	case *Index:
		operand := r.RewriteExpression(v.Operand)
		index := r.RewriteExpression(v.Index)
		if operand == v.Operand && index == v.Index {
			return v
		}

		return f.NewIndex(v.Span(), operand, index, v.Type())
	case *AddressOf:
		operand := r.RewriteExpression(v.Operand)
		if operand == v.Operand {
			return v
		}

		return f.NewAddressOf(v.Span(), operand, v.Type())
	}

	report.ICE("rewriter: unhandled expression kind %s", e.Kind())
	return nil
}

func sameStatements(a, b []Statement) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
