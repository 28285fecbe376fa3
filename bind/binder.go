package bind

import (
	"github.com/PeterBassett/Compiler-sub001/ast"
	"github.com/PeterBassett/Compiler-sub001/bound"
	"github.com/PeterBassett/Compiler-sub001/builtins"
	"github.com/PeterBassett/Compiler-sub001/report"
	"github.com/PeterBassett/Compiler-sub001/scope"
	"github.com/PeterBassett/Compiler-sub001/types"
)

// Binder is responsible for turning a syntax tree into a bound program: it
// resolves names, checks and converts types, and resolves forward references
// between callables.  User errors are reported to the diagnostics log and
// binding carries on with an error node in place of whatever failed to bind.
type Binder struct {
	diags    *report.Diagnostics
	factory  *bound.Factory
	table    *types.Table
	builtins *builtins.Registry
	scopes   *scope.Stack

	// typeNames maps the names of declared structs and classes to their types.
	typeNames map[string]*types.Type

	// classes stores the binding state of every class by name.
	classes map[string]*classInfo

	// callables maps the names of all top-level callables to their syntax.
	callables map[string]*callable

	// placeholders is the queue of call sites bound before their callee was
	// in scope.  They are resolved once every callable is bound.
	placeholders []*placeholder

	// loops is the stack of enclosing loops' break and continue labels.
	loops []loopLabels

	// fn is the enclosing function.  If this is `nil`, there is no enclosing
	// function: ie. return statements are not valid.
	fn *funcContext

	// class is the class whose methods are being bound, if any.
	class *classInfo

	program *bound.Program
}

// loopLabels are the labels `break` and `continue` jump to inside a loop.
type loopLabels struct {
	breakLabel, continueLabel bound.Label
}

// funcContext is the binding state of the function whose body is being bound.
type funcContext struct {
	name        string
	returnType  *types.Type
	returnCount int
}

// New creates a new binder.  The factory is shared with the later stages of
// the compilation.  If `registry` is nil, the default builtin registry is used.
func New(diags *report.Diagnostics, factory *bound.Factory, registry *builtins.Registry) *Binder {
	if registry == nil {
		registry = builtins.Default()
	}

	return &Binder{
		diags:     diags,
		factory:   factory,
		table:     types.NewTable(),
		builtins:  registry,
		scopes:    scope.NewStack(),
		typeNames: make(map[string]*types.Type),
		classes:   make(map[string]*classInfo),
		callables: make(map[string]*callable),
		program:   &bound.Program{},
	}
}

// Bind binds a whole compilation unit.
func Bind(unit *ast.CompilationUnit, diags *report.Diagnostics, factory *bound.Factory, registry *builtins.Registry) *bound.Program {
	return New(diags, factory, registry).BindUnit(unit)
}

// -----------------------------------------------------------------------------

// recError reports a recoverable error on the given span.
func (b *Binder) recError(kind report.MessageKind, span *report.TextSpan, msg string, args ...interface{}) {
	b.diags.Error(kind, span, msg, args...)
}

// errorExpr reports an error and returns an error expression in place of the
// expression that failed to bind.
func (b *Binder) errorExpr(kind report.MessageKind, span *report.TextSpan, msg string, args ...interface{}) bound.Expression {
	b.recError(kind, span, msg, args...)
	return b.factory.NewError(span)
}
