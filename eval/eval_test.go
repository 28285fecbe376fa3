package eval

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
	"github.com/PeterBassett/Compiler-sub001/lower"
	"github.com/PeterBassett/Compiler-sub001/report"
	"github.com/PeterBassett/Compiler-sub001/types"
)

func lowered(t *testing.T, registry *builtins.Registry, decls ...ast.Decl) *bound.Program {
	diags := report.NewDiagnostics("")
	factory := bound.NewFactory()
	prog := bind.Bind(Unit(decls...), diags, factory, registry)
	require.Equal(t, 0, diags.Len(), "%v", diags.Entries())
	return lower.Lower(prog, factory)
}

func run(t *testing.T, decls ...ast.Decl) Value {
	result, err := Run(lowered(t, nil, decls...), nil)
	require.NoError(t, err)
	return result
}

func runMain(t *testing.T, body ...ast.Stmt) Value {
	return run(t, Func("main", nil, T("int"), body...))
}

func TestArithmetic(t *testing.T) {
	assert.Equal(t, int32(14), runMain(t, Return(Bin(Int(2), "+", Bin(Int(3), "*", Int(4))))))
	assert.Equal(t, int32(-2), runMain(t, Return(Bin(Int(-7), "/", Int(3)))))
	assert.Equal(t, int32(4), runMain(t, Return(Call("int", Bin(Float("1.5"), "*", Float("3.0"))))))
	assert.Equal(t, int32(44), runMain(t, Var("n", nil, Int(300)), Return(Call("byte", N("n")))))
	assert.Equal(t, int32(1), runMain(t, Return(Call("int", Bin(Int(3), "<=", Int(3))))))
}

func TestLoops(t *testing.T) {
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
}

func TestForUpperBoundEvaluatedOnce(t *testing.T) {
	calls := 0
	registry := builtins.Default()
	registry.MustAdd("tick", nil, types.Int, func([]interface{}) interface{} {
		calls++
		return int32(3)
	})

	prog := lowered(t, registry,
		Func("main", nil, T("int"),
			Var("n", nil, Int(0)),
			For("i", Int(0), Call("tick"), SetOp(N("n"), "+", Int(1))),
			Return(N("n")),
		),
	)

	result, err := Run(prog, registry)
	require.NoError(t, err)
	assert.Equal(t, int32(4), result)
	assert.Equal(t, 1, calls)
}

func TestStructsHaveValueSemantics(t *testing.T) {
	result := run(t,
		Struct("Point", F("x", T("int")), F("y", T("int"))),
		Func("bump", Params(P("p", T("Point"))), T("Point"),
			Set(Get(N("p"), "x"), Bin(Get(N("p"), "x"), "+", Int(1))),
			Return(N("p")),
		),
		Func("main", nil, T("int"),
			Var("a", T("Point"), nil),
			Set(Get(N("a"), "y"), Int(5)),
			Var("b", nil, N("a")),
			Set(Get(N("b"), "y"), Int(7)),
			Var("c", nil, Call("bump", N("a"))),
			Var("q", nil, Un("&", N("c"))),
			Set(Get(N("q"), "y"), Int(9)),
			Return(Bin(Bin(Get(N("a"), "y"), "*", Int(100)), "+", Bin(Bin(Get(N("c"), "x"), "*", Int(10)), "+", Get(N("c"), "y")))),
		),
	)

	assert.Equal(t, int32(519), result)
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

	// a pointer to an element can be indexed
	assert.Equal(t, int32(30), runMain(t,
		Var("a", Arr(T("int"), 3), nil),
		Set(Idx(N("a"), Int(2)), Int(30)),
		Var("p", nil, Un("&", Idx(N("a"), Int(1)))),
		Return(Idx(N("p"), Int(1))),
	))
}

func TestCallsAndGlobals(t *testing.T) {
	result := run(t,
		Var("base", T("int"), Bin(Call("fact", Int(4)), "+", Int(1))),
		Func("fact", Params(P("n", T("int"))), T("int"),
			If(Bin(N("n"), "<=", Int(1)), Return(Int(1)), nil),
			Return(Bin(N("n"), "*", Call("fact", Bin(N("n"), "-", Int(1))))),
		),
		Func("double", Params(P("n", T("int"))), T("int"), Return(Bin(N("n"), "*", Int(2)))),
		Func("main", nil, T("int"),
			Var("f", FnT(T("int"), T("int")), N("double")),
			Return(Bin(Call("f", N("base")), "+", Call("Math.half", Int(8)))),
		),
		Class("Math",
			Func("half", Params(P("n", T("int"))), T("int"), Return(Bin(N("n"), "/", Int(2)))),
		),
	)

	assert.Equal(t, int32(54), result)
}

func TestBuiltins(t *testing.T) {
	out := new(strings.Builder)
	registry := builtins.Catalog(out)

	prog := lowered(t, registry,
		Func("main", nil, nil,
			Do(Call("prints", Str("hi"))),
			Do(Call("printi", Call("rnd", Int(3), Int(3)))),
			Do(Call("printf", Call("sqrt", Float("6.25")))),
		),
	)

	result, err := Run(prog, registry)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, "hi\n3\n2.5\n", out.String())
}

func TestStringConversions(t *testing.T) {
	assert.Equal(t, int32(42), runMain(t, Return(Call("int", Str("42")))))

	_, err := Run(lowered(t, nil, Func("main", nil, T("int"), Return(Call("int", Str("x"))))), nil)
	assert.ErrorContains(t, err, "cannot convert")
}

func TestRuntimeErrors(t *testing.T) {
	cases := []struct {
		name string
		body []ast.Stmt
		want string
	}{
		{"division", []ast.Stmt{Var("z", nil, Int(0)), Return(Bin(Int(1), "/", N("z")))}, "division by zero"},
		{"index", []ast.Stmt{
			Var("a", Arr(T("int"), 2), nil),
			Var("i", nil, Int(2)),
			Return(Idx(N("a"), N("i"))),
		}, "out of range"},
		{"null", []ast.Stmt{
			Var("p", Ptr(T("int")), Null()),
			Return(Un("*", N("p"))),
		}, "null pointer"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Run(lowered(t, nil, Func("main", nil, T("int"), c.body...)), nil)
			assert.ErrorContains(t, err, c.want)
		})
	}
}

func TestStepLimit(t *testing.T) {
	in := New(lowered(t, nil, Func("main", nil, nil, While(Bool(true)))), nil)
	in.StepLimit = 1000

	_, err := in.Run()
	assert.ErrorContains(t, err, "step limit")
}

func TestNoMain(t *testing.T) {
	_, err := Run(lowered(t, nil, Func("start", nil, nil)), nil)
	assert.ErrorIs(t, err, ErrNoMain)
}

func TestFormat(t *testing.T) {
	tb := types.NewTable()
	s := tb.NewStruct("P")
	s.Members.AddField("x", types.Int)
	s.Members.AddField("name", types.String)

	v := zero(s).(*StructValue)
	v.Fields[0] = int32(3)
	assert.Equal(t, `P{x: 3, name: ""}`, Format(v))
	assert.Equal(t, "[0, 0]", Format(zero(tb.NewArray(types.Byte, 2))))
	assert.Equal(t, "null", Format(nil))
	assert.Equal(t, "2.5", Format(2.5))
}
