package bind

import (
	"github.com/PeterBassett/Compiler-sub001/ast"
	"github.com/PeterBassett/Compiler-sub001/bound"
	"github.com/PeterBassett/Compiler-sub001/common"
	"github.com/PeterBassett/Compiler-sub001/report"
	"github.com/PeterBassett/Compiler-sub001/types"
)

// bindStatements binds a sequence of statements in the current scope.  The
// first statement following a jump out of the sequence is reported as
// unreachable.
func (b *Binder) bindStatements(stmts []ast.Stmt) []bound.Statement {
	bstmts := make([]bound.Statement, 0, len(stmts))
	for i, stmt := range stmts {
		bstmts = append(bstmts, b.bindStatement(stmt))

		if jump := jumpKeyword(stmt); jump != "" && i+1 < len(stmts) {
			b.diags.Warn(report.KindUsage, stmts[i+1].Span(), "unreachable code after `%s`", jump)
			for _, rest := range stmts[i+1:] {
				bstmts = append(bstmts, b.bindStatement(rest))
			}

			break
		}
	}

	return bstmts
}

// jumpKeyword returns the keyword of a statement that unconditionally leaves
// the enclosing sequence or "" for any other statement.
func jumpKeyword(stmt ast.Stmt) string {
	switch stmt.(type) {
	case *ast.Return:
		return "return"
	case *ast.Break:
		return "break"
	case *ast.Continue:
		return "continue"
	}

	return ""
}

// bindStatement binds a single statement.
func (b *Binder) bindStatement(stmt ast.Stmt) bound.Statement {
	switch v := stmt.(type) {
	case *ast.Block:
		return b.bindBlock(v)
	case *ast.VarDecl:
		return b.bindVarDecl(v, false)
	case *ast.If:
		cond := b.bindCondition(v.Cond)
		then := b.bindStatement(v.Then)

		var els bound.Statement
		if v.Else != nil {
			els = b.bindStatement(v.Else)
		}

		return b.factory.NewIf(v.Span(), cond, then, els)
	case *ast.While:
		cond := b.bindCondition(v.Cond)
		labels := b.newLoopLabels()
		body := b.bindLoopBody(labels, v.Body)
		return b.factory.NewWhile(v.Span(), cond, body, labels.breakLabel, labels.continueLabel)
	case *ast.For:
		return b.bindFor(v)
	case *ast.Return:
		return b.bindReturn(v)
	case *ast.Break:
		if len(b.loops) == 0 {
			b.recError(report.KindUsage, v.Span(), "break statement outside of loop")
			return b.factory.NewExpressionStatement(v.Span(), b.factory.NewError(v.Span()))
		}

		return b.factory.NewGoto(v.Span(), b.loops[len(b.loops)-1].breakLabel)
	case *ast.Continue:
		if len(b.loops) == 0 {
			b.recError(report.KindUsage, v.Span(), "continue statement outside of loop")
			return b.factory.NewExpressionStatement(v.Span(), b.factory.NewError(v.Span()))
		}

		return b.factory.NewGoto(v.Span(), b.loops[len(b.loops)-1].continueLabel)
	case *ast.ExprStmt:
		return b.factory.NewExpressionStatement(v.Span(), b.bindExpr(v.Expr))
	case *ast.Assign:
		return b.bindAssign(v)
	}

	report.ICE("binder: unhandled statement %T", stmt)
	return nil
}

// bindBlock binds a block in a new scope.
func (b *Binder) bindBlock(block *ast.Block) *bound.Block {
	defer b.scopes.Push().Release()

	return b.factory.NewBlock(block.Span(), b.bindStatements(block.Stmts))
}

// bindCondition binds the condition of an if statement or loop.
func (b *Binder) bindCondition(cond ast.Expr) bound.Expression {
	return b.convertImplicit(b.bindExpr(cond), types.Bool, cond.Span())
}

func (b *Binder) newLoopLabels() loopLabels {
	return loopLabels{
		breakLabel:    b.factory.NewLabel("break"),
		continueLabel: b.factory.NewLabel("continue"),
	}
}

// bindLoopBody binds the body of a loop with `labels` as the innermost loop.
func (b *Binder) bindLoopBody(labels loopLabels, body ast.Stmt) bound.Statement {
	b.loops = append(b.loops, labels)
	defer func() {
		b.loops = b.loops[:len(b.loops)-1]
	}()

	return b.bindStatement(body)
}

// bindFor binds a counting loop.  The bounds are bound before the loop
// variable is defined: they cannot refer to it.
func (b *Binder) bindFor(f *ast.For) bound.Statement {
	lower := b.convertImplicit(b.bindExpr(f.Lower), types.Int, f.Lower.Span())
	upper := b.convertImplicit(b.bindExpr(f.Upper), types.Int, f.Upper.Span())

	defer b.scopes.Push().Release()

	sym := common.NewVariableSymbol(f.Var, false, types.Int, false, false)
	if _, err := b.scopes.Define(f.Var, types.Int, sym); err != nil {
		report.ICE("loop variable `%s` defined in a non-empty scope", f.Var)
	}

	labels := b.newLoopLabels()
	body := b.bindLoopBody(labels, f.Body)
	return b.factory.NewFor(f.Span(), sym, lower, upper, body, labels.breakLabel, labels.continueLabel)
}

// bindReturn binds a return statement against the enclosing function.
func (b *Binder) bindReturn(r *ast.Return) bound.Statement {
	if b.fn == nil {
		b.recError(report.KindUsage, r.Span(), "return statement outside of function")
		return b.factory.NewReturn(r.Span(), nil)
	}

	b.fn.returnCount++
	rt := b.fn.returnType

	if r.Value == nil {
		if rt.Kind != types.KindUnit && !rt.IsError() {
			b.recError(report.KindType, r.Span(), "function `%s` must return a value of type `%s`", b.fn.name, rt)
		}

		return b.factory.NewReturn(r.Span(), nil)
	}

	value := b.bindExpr(r.Value)
	if rt.Kind == types.KindUnit {
		if !value.Type().IsError() {
			b.recError(report.KindType, r.Value.Span(), "function `%s` returns `unit` and cannot return a value", b.fn.name)
		}

		return b.factory.NewReturn(r.Span(), nil)
	}

	return b.factory.NewReturn(r.Span(), b.convertImplicit(value, rt, r.Value.Span()))
}

// bindAssign binds an assignment.  Compound assignments are expanded:
// `x op= v` binds as `x = x op v`.
func (b *Binder) bindAssign(a *ast.Assign) bound.Statement {
	target := b.bindExpr(a.Target)
	value := b.bindExpr(a.Value)

	if target.Type().IsError() {
		return b.factory.NewAssignment(a.Span(), target, value)
	}

	if !bound.IsAssignable(target) {
		b.recError(report.KindUsage, a.Target.Span(), "cannot assign to a non-assignable expression")
		return b.factory.NewAssignment(a.Span(), b.factory.NewError(a.Target.Span()), value)
	}

	if v, ok := target.(*bound.Variable); ok && v.Identifier.Symbol.ReadOnly {
		b.recError(report.KindUsage, a.Target.Span(), "cannot assign to read-only variable `%s`", v.Identifier.Name)
	}

	if a.Op != ast.OpNone {
		value = b.bindBinaryOperator(a.Span(), target, a.Op, value)
	}

	return b.factory.NewAssignment(a.Span(), target, b.convertImplicit(value, target.Type(), a.Value.Span()))
}
