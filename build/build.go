// Package build drives the compilation pipeline.  It binds a syntax tree,
// lowers the bound program and then either generates assembly for it or
// evaluates it.  Each phase runs only if the phases before it succeeded.
package build

import (
	"errors"
	"fmt"

	"github.com/PeterBassett/Compiler-sub001/ast"
	"github.com/PeterBassett/Compiler-sub001/bind"
	"github.com/PeterBassett/Compiler-sub001/bound"
	"github.com/PeterBassett/Compiler-sub001/builtins"
	"github.com/PeterBassett/Compiler-sub001/codegen"
	"github.com/PeterBassett/Compiler-sub001/eval"
	"github.com/PeterBassett/Compiler-sub001/lower"
	"github.com/PeterBassett/Compiler-sub001/report"
)

// Options configures a compilation.
type Options struct {
	// Generator configures code generation.  Its builtin registry is also the
	// registry the program is bound and evaluated against.
	Generator codegen.Options

	// Reporter displays the progress of the compilation.  A nil reporter
	// displays nothing.
	Reporter *report.Reporter

	// StepLimit bounds evaluation.  Zero means `eval.DefaultStepLimit`.
	StepLimit int
}

// Result is everything a compilation produced.  Fields of phases that did not
// run are left empty.
type Result struct {
	// Program is the bound program.
	Program *bound.Program

	// Lowered is the lowered program.
	Lowered *bound.Program

	// Assembly is the generated assembly text.
	Assembly string

	// Value is the result of `main` when the program was evaluated.
	Value eval.Value

	Diagnostics *report.Diagnostics
}

// Succeeded indicates whether the compilation produced no errors.
func (r *Result) Succeeded() bool {
	return r.Diagnostics.ShouldProceed()
}

// pipeline is the state shared by the phases of one compilation.
type pipeline struct {
	opts     Options
	reporter *report.Reporter
	registry *builtins.Registry
	factory  *bound.Factory
	result   *Result
}

func newPipeline(unit *ast.CompilationUnit, opts Options) *pipeline {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = report.NewReporter("", report.LogLevelSilent)
	}

	registry := opts.Generator.Builtins
	if registry == nil {
		registry = builtins.Default()
	}
	opts.Generator.Builtins = registry

	return &pipeline{
		opts:     opts,
		reporter: reporter,
		registry: registry,
		factory:  bound.NewFactory(),
		result:   &Result{Diagnostics: report.NewDiagnostics(unit.Source)},
	}
}

// Analyze binds and lowers a compilation unit.  Errors in the program are
// reported in the diagnostics of the result: the returned error is only set
// for internal compiler errors.
func Analyze(unit *ast.CompilationUnit, opts Options) (res *Result, err error) {
	p := newPipeline(unit, opts)
	res = p.result

	defer p.finish(&err)
	defer report.CatchICE(&err)

	p.analyze(unit)
	return
}

// Compile binds, lowers and generates assembly for a compilation unit.
func Compile(unit *ast.CompilationUnit, opts Options) (res *Result, err error) {
	p := newPipeline(unit, opts)
	res = p.result

	defer p.finish(&err)
	defer report.CatchICE(&err)

	if p.analyze(unit) {
		p.generate()
	}

	return
}

// Run binds and lowers a compilation unit and then evaluates its `main`
// function.  Runtime errors in the program are returned as errors.
func Run(unit *ast.CompilationUnit, opts Options) (res *Result, err error) {
	p := newPipeline(unit, opts)
	res = p.result

	defer p.finish(&err)
	defer report.CatchICE(&err)

	if p.analyze(unit) {
		err = p.evaluate()
	}

	return
}

// -----------------------------------------------------------------------------

func (p *pipeline) analyze(unit *ast.CompilationUnit) bool {
	diags := p.result.Diagnostics

	p.reporter.BeginPhase("Binding")
	p.result.Program = bind.Bind(unit, diags, p.factory, p.registry)
	p.reporter.EndPhase(diags.ShouldProceed())

	// the lowerer expects a well-typed program
	if !diags.ShouldProceed() {
		return false
	}

	p.reporter.BeginPhase("Lowering")
	p.result.Lowered = lower.Lower(p.result.Program, p.factory)
	p.reporter.EndPhase(true)

	return true
}

func (p *pipeline) generate() {
	diags := p.result.Diagnostics

	p.reporter.BeginPhase("Generating")
	asm := codegen.Generate(p.result.Lowered, diags, p.opts.Generator)
	p.reporter.EndPhase(diags.ShouldProceed())

	if diags.ShouldProceed() {
		p.result.Assembly = asm
	}
}

func (p *pipeline) evaluate() error {
	in := eval.New(p.result.Lowered, p.registry)
	if p.opts.StepLimit > 0 {
		in.StepLimit = p.opts.StepLimit
	}

	p.reporter.BeginPhase("Evaluating")
	value, err := in.Run()
	p.reporter.EndPhase(err == nil)

	if err != nil {
		return fmt.Errorf("runtime error: %w", err)
	}

	p.result.Value = value
	return nil
}

// finish displays the outcome of the compilation.
// NB: This function must be deferred before `report.CatchICE`.
func (p *pipeline) finish(err *error) {
	p.reporter.ReportDiagnostics(p.result.Diagnostics)

	if *err != nil {
		var ice *report.InternalError
		if errors.As(*err, &ice) {
			p.reporter.ReportICE(ice)
		} else {
			p.reporter.ReportFatal("Runtime Error", *err)
		}

		return
	}

	p.reporter.ReportFinished(p.result.Diagnostics)
}
