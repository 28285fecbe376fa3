package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PeterBassett/Compiler-sub001/ast"
	"github.com/PeterBassett/Compiler-sub001/bind"
	"github.com/PeterBassett/Compiler-sub001/bound"
	"github.com/PeterBassett/Compiler-sub001/builtins"
	. "github.com/PeterBassett/Compiler-sub001/internal/asttest"
	"github.com/PeterBassett/Compiler-sub001/internal/vmsim"
	"github.com/PeterBassett/Compiler-sub001/lower"
	"github.com/PeterBassett/Compiler-sub001/report"
	"github.com/PeterBassett/Compiler-sub001/types"
)

func messages(diags *report.Diagnostics) string {
	var sb strings.Builder
	for _, d := range diags.Entries() {
		sb.WriteString(d.String())
		sb.WriteString("\n")
	}

	return sb.String()
}

// generate binds, lowers and generates a program returning the assembly and
// the generator's diagnostics.
func generate(t *testing.T, opts Options, decls ...ast.Decl) (string, *report.Diagnostics) {
	diags := report.NewDiagnostics("")
	factory := bound.NewFactory()

	prog := bind.Bind(Unit(decls...), diags, factory, opts.Builtins)
	require.Equal(t, 0, diags.Len(), messages(diags))

	return Generate(lower.Lower(prog, factory), diags, opts), diags
}

func compile(t *testing.T, opts Options, decls ...ast.Decl) string {
	asm, diags := generate(t, opts, decls...)
	require.Equal(t, 0, diags.Len(), messages(diags))
	return asm
}

// execute runs generated assembly and checks that the stack is balanced when
// the machine halts.
func execute(t *testing.T, asm string, registry *builtins.Registry) *vmsim.Machine {
	m, err := vmsim.Run(asm, registry)
	require.NoError(t, err, asm)
	assert.Equal(t, uint64(vmsim.MemorySize), m.Register("SP"), "unbalanced stack")
	return m
}

func runMain(t *testing.T, body ...ast.Stmt) int32 {
	asm := compile(t, Options{}, Func("main", nil, T("int"), body...))
	return execute(t, asm, nil).Int("R1")
}

// contains asserts that the lines appear contiguously in the assembly.
func contains(t *testing.T, asm string, lines ...string) {
	t.Helper()
	assert.Contains(t, asm, strings.Join(lines, "\n")+"\n", asm)
}

// counter is a builtin registry with a `tick` builtin that counts its calls
// and returns `value`.
func counter(value int32) (*builtins.Registry, *int) {
	calls := 0
	registry := builtins.Default()
	registry.MustAdd("tick", nil, types.Int, func([]interface{}) interface{} {
		calls++
		return value
	})

	return registry, &calls
}

// -----------------------------------------------------------------------------

func TestSizes(t *testing.T) {
	tb := types.NewTable()
	s := tb.NewStruct("S")
	s.Members.AddField("a", types.Int)
	s.Members.AddField("b", types.Float)
	s.Members.AddField("c", types.Byte)

	l := NewLayout()
	assert.Equal(t, 13, l.Size(s))
	assert.Equal(t, 130, l.Size(tb.NewArray(s, 10)))
	assert.Equal(t, 4, l.Size(tb.NewPointer(s)))
	assert.Equal(t, 1, l.Size(types.Bool))

	offset, ft := l.FieldOffset(s, "c")
	assert.Equal(t, 12, offset)
	assert.Same(t, types.Byte, ft)

	outer := tb.NewStruct("Outer")
	outer.Members.AddField("tag", types.Byte)
	outer.Members.AddField("inner", s)
	offset, ft = l.PathOffset(outer, "inner", "b")
	assert.Equal(t, 5, offset)
	assert.Same(t, types.Float, ft)
}

func TestBlockCopy(t *testing.T) {
	assert.Equal(t, []int{8, 4, 1}, chunks(13))
	assert.Equal(t, []int{8, 8, 2, 1}, chunks(19))
	assert.Empty(t, chunks(0))

	g := New(report.NewDiagnostics(""), Options{})
	g.out = &g.code
	g.copyBlock(at("R2"), at("R1"), 13)
	assert.Equal(t, []string{
		"    MOVf [R2], [R1]",
		"    MOV [R2+8], [R1+8]",
		"    MOVb [R2+12], [R1+12]",
	}, g.code)

	g.code = nil
	g.zeroBlock(memRef{base: "BP", offset: -6}, 6)
	assert.Equal(t, []string{"    MOV [BP-6], 0", "    MOVw [BP-2], 0"}, g.code)
}

func TestArithmeticResult(t *testing.T) {
	asm := compile(t, Options{},
		Func("main", nil, T("int"), Return(Bin(Int(2), "+", Bin(Int(3), "*", Int(4))))),
	)

	m := execute(t, asm, nil)
	assert.Equal(t, int32(14), m.Int("R1"))

	// the return is the last statement so its jump to the epilogue is elided
	assert.NotContains(t, asm, "JMP __exit_main")
	contains(t, asm,
		"__start:",
		"    MOV BP, SP",
		"    CALL __init",
		"    CALL main",
		"    HALT",
	)
}

func TestBuiltinInterruptSequence(t *testing.T) {
	asm := compile(t, Options{}, Func("main", nil, T("int"), Return(Call("rnd", Int(5), Int(5)))))

	contains(t, asm,
		"    MOV R1, 5",
		"    PUSH R1",
		"    MOV R1, 5",
		"    PUSH R1",
		"    PUSH 2",
		"    PUSH 0",
		"    INT",
		"    POP R2",
		"    POP R2",
		"    POP R2",
		"    POP R2",
	)
	assert.NotContains(t, asm, "CALL rnd")

	assert.Equal(t, int32(5), execute(t, asm, nil).Int("R1"))
}

func TestExpressions(t *testing.T) {
	cases := []struct {
		name string
		body []ast.Stmt
		want int32
	}{
		{"precedence", []ast.Stmt{Return(Bin(Bin(Int(20), "-", Int(8)), "/", Int(3)))}, 4},
		{"modulus", []ast.Stmt{Return(Bin(Int(17), "%", Int(5)))}, 2},
		{"negation", []ast.Stmt{Var("x", nil, Int(6)), Return(Un("-", N("x")))}, -6},
		{"bitwise", []ast.Stmt{Return(Bin(Bin(Int(12), "&", Int(10)), "|", Bin(Int(1), "^", Int(3))))}, 10},
		{"complement", []ast.Stmt{Return(Un("~", Int(0)))}, -1},
		{"comparison", []ast.Stmt{Return(Call("int", Bin(Int(3), "<", Int(4))))}, 1},
		{"float", []ast.Stmt{
			Var("f", nil, Float("1.5")),
			Return(Call("int", Bin(N("f"), "*", Float("3.0")))),
		}, 4},
		{"widening", []ast.Stmt{Var("f", T("float"), Int(7)), Return(Call("int", Bin(N("f"), "/", Float("2.0"))))}, 3},
		{"bytes", []ast.Stmt{Var("b", T("byte"), Int(250)), Return(Bin(N("b"), "+", Int(1)))}, 251},
		{"narrowing", []ast.Stmt{Var("n", nil, Int(300)), Return(Call("byte", N("n")))}, 44},
		{"and", []ast.Stmt{
			Var("x", nil, Int(0)),
			If(Bin(Bin(N("x"), "!=", Int(0)), "&&", Bin(Bin(Int(10), "/", N("x")), ">", Int(1))), Return(Int(1)), nil),
			Return(Int(2)),
		}, 2},
		{"or", []ast.Stmt{
			If(Bin(Bool(true), "||", Bool(false)), Return(Int(1)), nil),
			Return(Int(2)),
		}, 1},
		{"not", []ast.Stmt{Return(Call("int", Un("!", Bool(false))))}, 1},
		{"compound", []ast.Stmt{Var("x", nil, Int(5)), SetOp(N("x"), "*", Int(3)), Return(N("x"))}, 15},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, runMain(t, c.body...))
		})
	}
}

func TestControlFlow(t *testing.T) {
	// sum of 1..10
	assert.Equal(t, int32(55), runMain(t,
		Var("s", nil, Int(0)),
		For("i", Int(1), Int(10), SetOp(N("s"), "+", N("i"))),
		Return(N("s")),
	))

	assert.Equal(t, int32(0), runMain(t,
		Var("x", nil, Int(0)),
		While(Bool(false), Set(N("x"), Int(1))),
		Return(N("x")),
	))

	// break and continue leave blocks that hold locals
	assert.Equal(t, int32(10), runMain(t,
		Var("s", nil, Int(0)),
		Var("i", nil, Int(0)),
		While(Bool(true),
			Var("j", nil, Bin(N("i"), "*", Int(2))),
			Set(N("i"), Bin(N("i"), "+", Int(1))),
			If(Bin(N("j"), "==", Int(2)), Continue(), nil),
			If(Bin(N("j"), ">", Int(6)), Break(), nil),
			SetOp(N("s"), "+", N("j")),
		),
		Return(N("s")),
	))

	assert.Equal(t, int32(2), runMain(t,
		Var("x", nil, Int(7)),
		If(Bin(N("x"), "<", Int(5)), Return(Int(1)), Return(Int(2))),
	))
}

func TestForUpperBoundEvaluatedOnce(t *testing.T) {
	registry, calls := counter(4)
	asm := compile(t, Options{Builtins: registry},
		Func("main", nil, T("int"),
			Var("n", nil, Int(0)),
			For("i", Int(0), Call("tick"), SetOp(N("n"), "+", Int(1))),
			Return(N("n")),
		),
	)

	m := execute(t, asm, registry)
	assert.Equal(t, int32(5), m.Int("R1"))
	assert.Equal(t, 1, *calls)
}

func TestWhileFalseNeverRunsBody(t *testing.T) {
	registry, calls := counter(0)
	asm := compile(t, Options{Builtins: registry},
		Func("main", nil, nil, While(Bool(false), Do(Call("tick")))),
	)

	execute(t, asm, registry)
	assert.Equal(t, 0, *calls)
}

func TestFunctionCalls(t *testing.T) {
	asm := compile(t, Options{},
		Func("mix", Params(P("a", T("int")), P("b", T("byte")), P("c", T("float"))), T("int"),
			Return(Bin(Bin(N("a"), "*", Int(100)), "+", Bin(Call("int", N("b")), "*", Call("int", N("c"))))),
		),
		Func("fact", Params(P("n", T("int"))), T("int"),
			If(Bin(N("n"), "<=", Int(1)), Return(Int(1)), nil),
			Return(Bin(N("n"), "*", Call("fact", Bin(N("n"), "-", Int(1))))),
		),
		Func("main", nil, T("int"),
			Return(Bin(Call("mix", Int(3), Byte(2), Float("5.0")), "+", Call("fact", Int(5)))),
		),
	)

	assert.Equal(t, int32(430), execute(t, asm, nil).Int("R1"))
	contains(t, asm,
		"    PUSHf R1",
		"    MOV R1, 2",
		"    PUSHb R1",
		"    MOV R1, 3",
		"    PUSH R1",
		"    CALL mix",
		"    POP R2",
		"    POPb R2",
		"    POPf R2",
	)
}

func TestOptimiseForSize(t *testing.T) {
	decls := []ast.Decl{
		Func("add", Params(P("a", T("int")), P("b", T("int"))), T("int"), Return(Bin(N("a"), "+", N("b")))),
		Func("main", nil, T("int"), Return(Call("add", Int(1), Int(2)))),
	}

	asm := compile(t, Options{OptimiseForSize: true}, decls...)
	contains(t, asm, "    CALL add", "    ADD SP, 8")
	assert.Equal(t, int32(3), execute(t, asm, nil).Int("R1"))

	asm = compile(t, Options{}, decls...)
	contains(t, asm, "    CALL add", "    POP R2", "    POP R2")
}

func TestFunctionValues(t *testing.T) {
	asm := compile(t, Options{},
		Func("double", Params(P("n", T("int"))), T("int"), Return(Bin(N("n"), "*", Int(2)))),
		Func("main", nil, T("int"),
			Var("f", FnT(T("int"), T("int")), N("double")),
			Return(Call("f", Int(21))),
		),
	)

	contains(t, asm, "    MOV R1, double")
	contains(t, asm, "    MOV R4, R1", "    CALL R4")
	assert.Equal(t, int32(42), execute(t, asm, nil).Int("R1"))
}

func TestStructs(t *testing.T) {
	asm := compile(t, Options{},
		Struct("Point", F("x", T("int")), F("y", T("int")), F("tag", T("byte"))),
		Func("makePoint", Params(P("x", T("int")), P("y", T("int"))), T("Point"),
			Var("p", T("Point"), nil),
			Set(Get(N("p"), "x"), N("x")),
			Set(Get(N("p"), "y"), N("y")),
			Return(N("p")),
		),
		Func("sum", Params(P("p", T("Point"))), T("int"),
			Return(Bin(Get(N("p"), "x"), "+", Get(N("p"), "y"))),
		),
		Func("main", nil, T("int"),
			Var("p", nil, Call("makePoint", Int(3), Int(4))),
			Var("q", Ptr(T("Point")), Un("&", N("p"))),
			Set(Get(N("q"), "y"), Int(9)),
			Return(Bin(Bin(Get(N("p"), "x"), "*", Int(100)), "+", Call("sum", N("p")))),
		),
	)

	// the callee saves the return slot address and the caller passes it in R3
	contains(t, asm, "makePoint:", "    PUSH BP", "    MOV BP, SP", "    PUSH R3")
	contains(t, asm, "    MOV R3, BP")
	assert.Equal(t, int32(312), execute(t, asm, nil).Int("R1"))
}

func TestArraysAndPointers(t *testing.T) {
	assert.Equal(t, int32(25), runMain(t,
		Var("a", Arr(T("int"), 5), nil),
		For("i", Int(0), Int(4), Set(Idx(N("a"), N("i")), Bin(N("i"), "*", N("i")))),
		Return(Bin(Idx(N("a"), Int(4)), "+", Idx(N("a"), Int(3)))),
	))

	assert.Equal(t, int32(8), runMain(t,
		Var("x", nil, Int(1)),
		Var("p", nil, Un("&", N("x"))),
		Set(Un("*", N("p")), Int(8)),
		Return(N("x")),
	))

	assert.Equal(t, int32(7), runMain(t,
		Var("bytes", Arr(T("byte"), 3), nil),
		Var("i", nil, Int(2)),
		Set(Idx(N("bytes"), N("i")), Byte(7)),
		Return(Call("int", Idx(N("bytes"), Int(2)))),
	))
}

func TestGlobals(t *testing.T) {
	asm := compile(t, Options{},
		Var("base", T("int"), Int(5)),
		Var("flag", T("bool"), Bool(true)),
		Var("ratio", T("float"), Float("2.5")),
		Var("derived", T("int"), Bin(N("base"), "+", Int(1))),
		Var("grid", Arr(T("int"), 4), nil),
		Func("main", nil, T("int"),
			Set(Idx(N("grid"), Int(2)), N("derived")),
			Return(Bin(Idx(N("grid"), Int(2)), "*", N("base"))),
		),
	)

	contains(t, asm, ".base int 5", ".flag byte 1", ".ratio float 2.5", ".derived zero 4", ".grid zero 16")
	contains(t, asm, "    MOV [.derived], R1")
	contains(t, asm, "    MOV [.grid+8], R1")

	assert.Equal(t, int32(30), execute(t, asm, nil).Int("R1"))
}

func TestLiteralPool(t *testing.T) {
	asm := compile(t, Options{Builtins: builtins.Catalog(new(strings.Builder))},
		Func("main", nil, nil,
			Do(Call("printf", Float("2.5"))),
			Do(Call("printf", Float("2.5"))),
			Do(Call("prints", Str("hello"))),
			Do(Call("prints", Str("hello"))),
			Do(Call("prints", Str("world"))),
		),
	)

	assert.Equal(t, 1, strings.Count(asm, ".__lit0 float 2.5"))
	assert.Equal(t, 1, strings.Count(asm, ".__str1 string \"hello\""))
	assert.Equal(t, 1, strings.Count(asm, ".__str2 string \"world\""))
	assert.Equal(t, 2, strings.Count(asm, "MOVf R1, [.__lit0]"))
}

func TestLiteralPoolKeepsSignedZerosApart(t *testing.T) {
	asm := compile(t, Options{},
		Func("main", nil, T("int"),
			Var("a", nil, Float("0.0")),
			Var("b", nil, Float("-0.0")),
			If(Bin(Bin(Float("1.0"), "/", N("b")), "<", N("a")), Return(Int(1)), nil),
			Return(Int(0)),
		),
	)

	contains(t, asm, ".__lit0 float 0.0", ".__lit1 float -0.0")
	assert.Equal(t, int32(1), execute(t, asm, nil).Int("R1"))
}

func TestBuiltinOutput(t *testing.T) {
	out := new(strings.Builder)
	registry := builtins.Catalog(out)
	asm := compile(t, Options{Builtins: registry},
		Var("greeting", T("string"), Str("hi")),
		Func("main", nil, nil,
			Do(Call("prints", N("greeting"))),
			Do(Call("printi", Int(-3))),
			Do(Call("printf", Call("sqrt", Float("2.25")))),
		),
	)

	execute(t, asm, registry)
	assert.Equal(t, "hi\n-3\n1.5\n", out.String())
}

func TestClassMethods(t *testing.T) {
	asm := compile(t, Options{},
		Class("Counter",
			Var("count", T("int"), nil),
			Func("twice", Params(P("n", T("int"))), T("int"), Return(Call("double", N("n")))),
			Func("double", Params(P("n", T("int"))), T("int"), Return(Bin(N("n"), "*", Int(2)))),
		),
		Func("main", nil, T("int"), Return(Call("Counter.twice", Int(4)))),
	)

	contains(t, asm, "Counter_twice:")
	contains(t, asm, "    CALL Counter_double")
	assert.Equal(t, int32(8), execute(t, asm, nil).Int("R1"))
}

func TestFormattingOptions(t *testing.T) {
	decls := []ast.Decl{
		Func("one", nil, T("int"), Return(Int(1))),
		Func("main", nil, T("int"), Var("x", nil, Call("one")), Return(N("x"))),
	}

	plain := compile(t, Options{}, decls...)
	assert.NotContains(t, plain, ";")
	assert.NotContains(t, plain, "\n\n")

	commented := compile(t, Options{Comments: true, BlankLines: true}, decls...)
	assert.Contains(t, commented, "one:  ; func one")
	assert.Contains(t, commented, "; call one")
	assert.Contains(t, commented, "; let x")
	assert.Contains(t, commented, "    RET\n\nmain:")

	// options never change behaviour
	assert.Equal(t, execute(t, plain, nil).Int("R1"), execute(t, commented, nil).Int("R1"))
}

func TestGeneratorDiagnostics(t *testing.T) {
	_, diags := generate(t, Options{}, Func("start", nil, nil))
	assert.Contains(t, messages(diags), "program has no `main` function")

	_, diags = generate(t, Options{}, Func("main", Params(P("n", T("int"))), nil))
	assert.Contains(t, messages(diags), "`main` cannot take parameters")

	_, diags = generate(t, Options{},
		Func("main", nil, T("int"), Return(Call("int", Str("5")))),
	)
	assert.Contains(t, messages(diags), "conversion from `string` to `int` is not supported by the target")

	_, diags = generate(t, Options{},
		Class("C",
			Func("get", nil, T("int"), Return(Int(1))),
			Func("use", nil, T("int"),
				Var("f", FnT(T("int")), N("get")),
				Return(Call("f")),
			),
		),
		Func("main", nil, nil),
	)
	assert.Contains(t, messages(diags), "`C.get` cannot be used as a value")
	for _, d := range diags.Entries() {
		assert.Equal(t, report.KindCodegen, d.Kind)
	}
}
