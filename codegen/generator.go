package codegen

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/PeterBassett/Compiler-sub001/bound"
	"github.com/PeterBassett/Compiler-sub001/builtins"
	"github.com/PeterBassett/Compiler-sub001/report"
	"github.com/PeterBassett/Compiler-sub001/types"
)

// Options configures the generator.  The options only change the verbosity
// and size of the output, never its behaviour.
type Options struct {
	// Builtins is the registry builtin calls are resolved against.  A nil
	// registry means `builtins.Default()`.
	Builtins *builtins.Registry

	// Comments annotates instructions with the source constructs they were
	// generated for.
	Comments bool

	// BlankLines separates functions and sections with blank lines.
	BlankLines bool

	// OptimiseForSize releases call arguments with a single stack adjustment
	// rather than one pop per argument.
	OptimiseForSize bool
}

// Generator generates the assembly of one program.  A generator is not
// reusable.
type Generator struct {
	opts     Options
	diags    *report.Diagnostics
	builtins *builtins.Registry
	layout   *Layout

	// the output sections
	data, init, code []string

	// out is the section currently being written.
	out *[]string

	literals  []pooledLiteral
	nextLabel int

	// fn is the function currently being generated.
	fn *funcState
}

// pooledLiteral is a float or string constant stored in the data section.
type pooledLiteral struct {
	kind  types.ValueKind
	value interface{}
	name  string
}

// funcState is the generation state of a single function.
type funcState struct {
	name string

	// exit is the label of the function's epilogue.
	exit string

	// structReturn indicates that the function returns an aggregate through
	// the address saved at [BP-4].
	structReturn bool

	frame *frameLayout

	// depth is the number of bytes currently reserved below BP.
	depth int
}

// New creates a new generator reporting to `diags`.
func New(diags *report.Diagnostics, opts Options) *Generator {
	registry := opts.Builtins
	if registry == nil {
		registry = builtins.Default()
	}

	return &Generator{
		opts:     opts,
		diags:    diags,
		builtins: registry,
		layout:   NewLayout(),
	}
}

// Generate generates the assembly of a lowered program.
func Generate(p *bound.Program, diags *report.Diagnostics, opts Options) string {
	return New(diags, opts).Generate(p)
}

// Layout returns the type layout used by the generator.
func (g *Generator) Layout() *Layout {
	return g.layout
}

// Generate generates the assembly of a lowered program.  Problems the target
// can't express are reported to the diagnostics log; the returned text is then
// incomplete.
func (g *Generator) Generate(p *bound.Program) string {
	g.checkMain(p)
	g.generateInit(p.Globals)

	g.out = &g.code
	for i, fd := range p.Functions {
		if i > 0 {
			g.blank()
		}

		g.generateFunction(fd)
	}

	return g.assemble()
}

// checkMain checks that the program has an entry point the VM can call.
func (g *Generator) checkMain(p *bound.Program) {
	main, ok := p.Function("main")
	if !ok {
		g.diags.Error(report.KindCodegen, nil, "program has no `main` function")
		return
	}

	if len(main.Parameters) > 0 {
		g.diags.Error(report.KindCodegen, main.Span(), "`main` cannot take parameters")
	}

	if main.ReturnType().IsAggregate() {
		g.diags.Error(report.KindCodegen, main.Span(), "`main` cannot return a value of type `%s`", main.ReturnType())
	}
}

// assemble joins the sections of the output in their fixed order.
func (g *Generator) assemble() string {
	sb := strings.Builder{}
	writeLines := func(lines []string) {
		for _, line := range lines {
			sb.WriteString(line)
			sb.WriteRune('\n')
		}
	}

	writeLines(g.data)
	if len(g.data) > 0 {
		g.blankInto(&sb)
	}

	writeLines([]string{
		".global __start",
		"__start:",
		"    MOV BP, SP",
		"    CALL __init",
		"    CALL main",
		"    HALT",
	})
	g.blankInto(&sb)

	writeLines(g.init)
	g.blankInto(&sb)

	writeLines(g.code)
	return sb.String()
}

func (g *Generator) blankInto(sb *strings.Builder) {
	if g.opts.BlankLines {
		sb.WriteRune('\n')
	}
}

// -----------------------------------------------------------------------------

// emit writes an instruction to the current section.
func (g *Generator) emit(format string, args ...interface{}) {
	*g.out = append(*g.out, "    "+fmt.Sprintf(format, args...))
}

// emitLabel writes a label to the current section.
func (g *Generator) emitLabel(label string) {
	*g.out = append(*g.out, label+":")
}

// annotate appends a comment to the last line written when comments are
// enabled.
func (g *Generator) annotate(format string, args ...interface{}) {
	if !g.opts.Comments || len(*g.out) == 0 {
		return
	}

	last := len(*g.out) - 1
	(*g.out)[last] += "  ; " + fmt.Sprintf(format, args...)
}

// blank writes a blank line to the current section when blank lines are
// enabled.
func (g *Generator) blank() {
	if g.opts.BlankLines {
		*g.out = append(*g.out, "")
	}
}

// newLabel creates a new internal code label.
func (g *Generator) newLabel() string {
	g.nextLabel++
	return "__cg" + strconv.Itoa(g.nextLabel)
}

// codeLabel returns the code label of a function.  Methods are named
// `Class.method` which is not a valid label.
func codeLabel(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}

// -----------------------------------------------------------------------------

// pool returns the data name holding a float or string constant, adding it to
// the data section if it is not already there.
func (g *Generator) pool(kind types.ValueKind, value interface{}) string {
	for _, lit := range g.literals {
		if lit.kind == kind && samePooled(lit.value, value) {
			return lit.name
		}
	}

	var name, decl string
	switch kind {
	case types.KindFloat:
		name = "__lit" + strconv.Itoa(len(g.literals))
		decl = "float " + formatFloat(value.(float64))
	case types.KindString:
		name = "__str" + strconv.Itoa(len(g.literals))
		decl = "string " + strconv.Quote(value.(string))
	default:
		report.ICE("literal of kind %s cannot be pooled", kind)
	}

	g.literals = append(g.literals, pooledLiteral{kind: kind, value: value, name: name})
	g.data = append(g.data, "."+name+" "+decl)
	return name
}

// samePooled compares pooled constants.  Floats compare by bit pattern so
// that signed zeros stay distinct and a NaN matches itself.
func samePooled(a, b interface{}) bool {
	if x, ok := a.(float64); ok {
		y, ok := b.(float64)
		return ok && math.Float64bits(x) == math.Float64bits(y)
	}

	return a == b
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}

	return s
}

// dataValue returns the data keyword and value of a literal that can be
// stored directly in the data section.
func dataValue(lit *bound.Literal) (string, string, bool) {
	switch v := lit.Value.(type) {
	case int32:
		return "int", strconv.Itoa(int(v)), true
	case uint8:
		return "byte", strconv.Itoa(int(v)), true
	case bool:
		if v {
			return "byte", "1", true
		}

		return "byte", "0", true
	case float64:
		return "float", formatFloat(v), true
	case nil:
		return "int", "0", true
	}

	return "", "", false
}

// -----------------------------------------------------------------------------

// generateInit generates the data entries of the globals and the `__init`
// function computing the initializers that aren't constants.
func (g *Generator) generateInit(globals []*bound.VariableDeclaration) {
	g.out = &g.init

	// __init has no locals, only the return slots of struct-returning calls
	frame := newFrameLayout()
	depth := 0
	for _, global := range globals {
		for _, call := range g.layout.structCalls(global) {
			depth += g.layout.Size(call.Type())
			frame.temps[call.ID()] = depth
		}
	}

	g.fn = &funcState{name: "__init", exit: "__exit___init", frame: frame, depth: depth}
	defer func() { g.fn = nil }()

	g.emitLabel("__init")
	g.emit("PUSH BP")
	g.emit("MOV BP, SP")
	if depth > 0 {
		g.emit("SUB SP, %d", depth)
	}

	for _, global := range globals {
		g.generateGlobal(global)
	}

	g.emit("MOV SP, BP")
	g.emit("POP BP")
	g.emit("RET")
}

func (g *Generator) generateGlobal(vd *bound.VariableDeclaration) {
	sym := vd.Variable
	name := "." + sym.Name

	if lit, ok := vd.Initializer.(*bound.Literal); ok {
		if keyword, value, ok := dataValue(lit); ok {
			g.data = append(g.data, fmt.Sprintf("%s %s %s", name, keyword, value))
			return
		}
	}

	g.data = append(g.data, fmt.Sprintf("%s zero %d", name, g.layout.Size(sym.Type)))
	if vd.Initializer != nil {
		g.generateExpr(vd.Initializer)
		g.store(memRef{base: name}, sym.Type)
		g.annotate("init %s", sym.Name)
	}
}
