// Package eval interprets lowered bound programs.  It runs the same programs
// the code generator compiles and is used to check the generator's output and
// to run programs without the virtual machine.
package eval

import (
	"errors"
	"fmt"

	"github.com/PeterBassett/Compiler-sub001/bound"
	"github.com/PeterBassett/Compiler-sub001/builtins"
	"github.com/PeterBassett/Compiler-sub001/common"
	"github.com/PeterBassett/Compiler-sub001/report"
)

// DefaultStepLimit is the number of statements an interpreter executes before
// it gives up.
const DefaultStepLimit = 10_000_000

// ErrNoMain is returned when the program has no `main` function.
var ErrNoMain = errors.New("program has no `main` function")

// Interpreter runs one lowered program.
type Interpreter struct {
	// StepLimit bounds the number of statements executed.
	StepLimit int

	program   *bound.Program
	registry  *builtins.Registry
	globals   map[*common.VariableSymbol]*cell
	functions map[string]*function
	steps     int
}

// function is a function flattened into a single list of statements.
type function struct {
	decl   *bound.FunctionDeclaration
	code   []bound.Statement
	labels map[bound.Label]int
}

// frame is the variables of one function invocation.
type frame struct {
	vars map[*common.VariableSymbol]*cell
}

// runtimeError is an error in the program being run.
type runtimeError struct {
	msg string
}

func (re *runtimeError) Error() string {
	return re.msg
}

func fail(format string, args ...interface{}) {
	panic(&runtimeError{msg: fmt.Sprintf(format, args...)})
}

// New creates an interpreter for a lowered program.  A nil registry means
// `builtins.Default()`.
func New(p *bound.Program, registry *builtins.Registry) *Interpreter {
	if registry == nil {
		registry = builtins.Default()
	}

	in := &Interpreter{
		StepLimit: DefaultStepLimit,
		program:   p,
		registry:  registry,
		globals:   make(map[*common.VariableSymbol]*cell),
		functions: make(map[string]*function),
	}

	for _, fd := range p.Functions {
		in.functions[fd.Name()] = flatten(fd)
	}

	return in
}

// Run evaluates a lowered program.
func Run(p *bound.Program, registry *builtins.Registry) (Value, error) {
	return New(p, registry).Run()
}

// Run initializes the globals and calls `main`, returning its result.
// Runtime errors in the program are returned as errors.  Internal errors
// still panic.
func (in *Interpreter) Run() (result Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(*runtimeError); ok {
				err = re
				return
			}

			panic(r)
		}
	}()

	main, ok := in.functions["main"]
	if !ok {
		return nil, ErrNoMain
	}

	// globals start zeroed and are initialized in declaration order
	for _, global := range in.program.Globals {
		in.globals[global.Variable] = &cell{value: zero(global.Variable.Type)}
	}

	for _, global := range in.program.Globals {
		if global.Initializer != nil {
			in.globals[global.Variable].Store(copyValue(in.eval(nil, global.Initializer)))
		}
	}

	return in.call(main, nil), nil
}

// -----------------------------------------------------------------------------

// flatten flattens the blocks of a function into a single statement list.
// Variables are scoped by symbol so the blocks carry no information the
// interpreter needs.
func flatten(fd *bound.FunctionDeclaration) *function {
	fn := &function{decl: fd, labels: make(map[bound.Label]int)}

	var walk func(s bound.Statement)
	walk = func(s bound.Statement) {
		switch v := s.(type) {
		case *bound.Block:
			for _, stmt := range v.Statements {
				walk(stmt)
			}
		case *bound.LabelStatement:
			fn.labels[v.Label] = len(fn.code)
		case *bound.If, *bound.While, *bound.For:
			report.ICE("eval: statement kind %s in lowered program", s.Kind())
		default:
			fn.code = append(fn.code, s)
		}
	}

	walk(fd.Body())
	return fn
}

// control is the effect of executing a statement on control flow.
type control struct {
	jump     bound.Label
	returned bool
	value    Value
}

func (in *Interpreter) call(fn *function, args []Value) Value {
	fr := &frame{vars: make(map[*common.VariableSymbol]*cell)}
	for i, param := range fn.decl.Parameters {
		fr.vars[param] = &cell{value: copyValue(args[i])}
	}

	for pc := 0; pc < len(fn.code); {
		in.steps++
		if in.steps > in.StepLimit {
			fail("step limit of %d exceeded", in.StepLimit)
		}

		ctl := in.exec(fr, fn.code[pc])
		switch {
		case ctl.returned:
			return ctl.value
		case ctl.jump != "":
			target, ok := fn.labels[ctl.jump]
			if !ok {
				report.ICE("eval: jump to undefined label `%s` in `%s`", ctl.jump, fn.decl.Name())
			}

			pc = target
		default:
			pc++
		}
	}

	return nil
}

func (in *Interpreter) exec(fr *frame, s bound.Statement) control {
	switch v := s.(type) {
	case *bound.VariableDeclaration:
		// each execution of a declaration creates a new variable
		fr.vars[v.Variable] = &cell{value: in.initialValue(v, fr)}
	case *bound.ExpressionStatement:
		in.eval(fr, v.Expression)
	case *bound.Assignment:
		value := copyValue(in.eval(fr, v.Value))
		in.address(fr, v.Target).Store(value)
	case *bound.Return:
		ctl := control{returned: true}
		if v.Value != nil {
			ctl.value = copyValue(in.eval(fr, v.Value))
		}

		return ctl
	case *bound.Goto:
		return control{jump: v.Label}
	case *bound.ConditionalGoto:
		if in.eval(fr, v.Condition).(bool) == v.JumpIfTrue {
			return control{jump: v.Label}
		}
	default:
		report.ICE("eval: statement kind %s in lowered program", s.Kind())
	}

	return control{}
}

func (in *Interpreter) initialValue(vd *bound.VariableDeclaration, fr *frame) Value {
	if vd.Initializer == nil {
		return zero(vd.Variable.Type)
	}

	return copyValue(in.eval(fr, vd.Initializer))
}

// lookup returns the storage of a variable.
func (in *Interpreter) lookup(fr *frame, sym *common.VariableSymbol) *cell {
	if sym.IsGlobal {
		if c, ok := in.globals[sym]; ok {
			return c
		}
	}

	if fr != nil {
		if c, ok := fr.vars[sym]; ok {
			return c
		}
	}

	report.ICE("eval: variable `%s` has no storage", sym.Name)
	return nil
}
