// Package lower rewrites the structured control flow of a bound program into
// labels and gotos.  Its output contains no if, while or for statements.
package lower

import (
	"github.com/PeterBassett/Compiler-sub001/ast"
	"github.com/PeterBassett/Compiler-sub001/bound"
	"github.com/PeterBassett/Compiler-sub001/common"
	"github.com/PeterBassett/Compiler-sub001/report"
	"github.com/PeterBassett/Compiler-sub001/types"
)

// Lowerer is the construct responsible for lowering bound programs.  It must
// share its factory with the binder that produced the program so that the
// labels it generates never collide with the binder's loop labels.
type Lowerer struct {
	factory *bound.Factory
	rw      *bound.Rewriter
}

// New creates a new lowerer.
func New(factory *bound.Factory) *Lowerer {
	l := &Lowerer{factory: factory, rw: bound.NewRewriter(factory)}
	l.rw.Statement = l.lowerStatement
	return l
}

// Lower lowers a whole program.
func Lower(p *bound.Program, factory *bound.Factory) *bound.Program {
	return New(factory).LowerProgram(p)
}

// LowerProgram lowers a whole program.  A program that is already lowered is
// returned by identity.
func (l *Lowerer) LowerProgram(p *bound.Program) *bound.Program {
	return l.rw.RewriteProgram(p)
}

// LowerFunction lowers the body of a single function.
func (l *Lowerer) LowerFunction(fd *bound.FunctionDeclaration) *bound.FunctionDeclaration {
	return l.rw.RewriteFunction(fd)
}

// LowerStatement lowers a single statement.
func (l *Lowerer) LowerStatement(s bound.Statement) bound.Statement {
	return l.rw.RewriteStatement(s)
}

// -----------------------------------------------------------------------------

// lowerStatement is the rewriter hook: it handles the structured control flow
// statements and leaves everything else to the rewriter.
func (l *Lowerer) lowerStatement(s bound.Statement) (bound.Statement, bool) {
	switch v := s.(type) {
	case *bound.If:
		return l.lowerIf(v), true
	case *bound.While:
		return l.lowerWhile(v), true
	case *bound.For:
		return l.lowerFor(v), true
	}

	return nil, false
}

// lowerIf lowers an if statement:
//
//	gotoIfFalse C end        gotoIfFalse C else
//	T                        T
//	end:                     goto end
//	                         else:
//	                         E
//	                         end:
func (l *Lowerer) lowerIf(s *bound.If) bound.Statement {
	cond := l.rw.RewriteExpression(s.Condition)
	then := l.rw.RewriteStatement(s.Then)
	end := l.factory.NewLabel("endIf")

	if s.Else == nil {
		return l.factory.NewBlock(s.Span(), []bound.Statement{
			l.factory.NewConditionalGoto(s.Span(), end, cond, false),
			then,
			l.factory.NewLabelStatement(s.Span(), end),
		})
	}

	els := l.rw.RewriteStatement(s.Else)
	elseLabel := l.factory.NewLabel("else")

	return l.factory.NewBlock(s.Span(), []bound.Statement{
		l.factory.NewConditionalGoto(s.Span(), elseLabel, cond, false),
		then,
		l.factory.NewGoto(s.Span(), end),
		l.factory.NewLabelStatement(s.Span(), elseLabel),
		els,
		l.factory.NewLabelStatement(s.Span(), end),
	})
}

// lowerWhile lowers a while loop.  The condition is tested once per iteration
// after the body:
//
//	goto continue
//	body:
//	B
//	continue:
//	gotoIfTrue C body
//	break:
func (l *Lowerer) lowerWhile(s *bound.While) bound.Statement {
	cond := l.rw.RewriteExpression(s.Condition)
	body := l.rw.RewriteStatement(s.Body)
	bodyLabel := l.factory.NewLabel("body")

	return l.factory.NewBlock(s.Span(), []bound.Statement{
		l.factory.NewGoto(s.Span(), s.ContinueLabel),
		l.factory.NewLabelStatement(s.Span(), bodyLabel),
		body,
		l.factory.NewLabelStatement(s.Span(), s.ContinueLabel),
		l.factory.NewConditionalGoto(s.Span(), bodyLabel, cond, true),
		l.factory.NewLabelStatement(s.Span(), s.BreakLabel),
	})
}

// lowerFor desugars a counting loop into a while loop and lowers that:
//
//	{
//	    var v = lower
//	    let upper = upper
//	    while (v <= upper) {
//	        B
//	        continue:
//	        v = v + 1
//	    }
//	}
//
// The upper bound is evaluated exactly once.  The while loop keeps the for
// loop's break label so that breaks in `B` leave the whole loop.
func (l *Lowerer) lowerFor(s *bound.For) bound.Statement {
	span := s.Span()

	upperName := l.factory.NewName("upper")
	upperSym := common.NewVariableSymbol(upperName, true, types.Int, false, false)
	upper := l.factory.NewVariable(span, common.NewIdentifier(upperName, types.Int, upperSym))

	loopVar := common.NewIdentifier(s.Variable.Name, s.Variable.Type, s.Variable)

	cond := l.factory.NewBinary(
		span,
		l.factory.NewVariable(span, loopVar),
		intOperator(ast.OpLtEq),
		upper,
	)

	increment := l.factory.NewAssignment(
		span,
		l.factory.NewVariable(span, loopVar),
		l.factory.NewBinary(
			span,
			l.factory.NewVariable(span, loopVar),
			intOperator(ast.OpPlus),
			l.factory.NewLiteral(span, int32(1), types.Int),
		),
	)

	whileBody := l.factory.NewBlock(span, []bound.Statement{
		s.Body,
		l.factory.NewLabelStatement(span, s.ContinueLabel),
		increment,
	})

	block := l.factory.NewBlock(span, []bound.Statement{
		l.factory.NewVariableDeclaration(span, s.Variable, s.Lower),
		l.factory.NewVariableDeclaration(span, upperSym, s.Upper),
		l.factory.NewWhile(span, cond, whileBody, s.BreakLabel, l.factory.NewLabel("continue")),
	})

	return l.rw.RewriteStatement(block)
}

func intOperator(op ast.Operator) *bound.BinaryOperator {
	bop, ok := bound.LookupBinaryOperator(op, types.Int, types.Int)
	if !ok {
		report.ICE("missing int operator `%s`", op)
	}

	return bop
}
