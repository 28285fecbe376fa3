package bind

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PeterBassett/Compiler-sub001/ast"
	"github.com/PeterBassett/Compiler-sub001/bound"
	. "github.com/PeterBassett/Compiler-sub001/internal/asttest"
	"github.com/PeterBassett/Compiler-sub001/report"
	"github.com/PeterBassett/Compiler-sub001/types"
)

func bindDecls(decls ...ast.Decl) (*bound.Program, *report.Diagnostics) {
	diags := report.NewDiagnostics("")
	prog := Bind(Unit(decls...), diags, bound.NewFactory(), nil)
	return prog, diags
}

func messages(diags *report.Diagnostics) string {
	var sb strings.Builder
	for _, d := range diags.Entries() {
		sb.WriteString(d.Message)
		sb.WriteString("\n")
	}

	return sb.String()
}

func mustFunction(t *testing.T, prog *bound.Program, name string) *bound.FunctionDeclaration {
	fd, ok := prog.Function(name)
	require.True(t, ok, "function `%s` not bound", name)
	return fd
}

// firstCall finds the first call expression in a function's body.
func firstCall(fd *bound.FunctionDeclaration) *bound.Call {
	var found *bound.Call
	r := bound.NewRewriter(bound.NewFactory())
	r.Expression = func(e bound.Expression) (bound.Expression, bool) {
		if c, ok := e.(*bound.Call); ok && found == nil {
			found = c
		}

		return e, false
	}

	r.RewriteStatement(fd.Body())
	return found
}

func TestBindWellTypedProgram(t *testing.T) {
	prog, diags := bindDecls(
		Var("counter", T("int"), Int(0)),
		Func("add", Params(P("a", T("int")), P("b", T("int"))), T("int"),
			Return(Bin(N("a"), "+", N("b"))),
		),
		Func("main", nil, nil,
			Var("x", T("float"), Int(1)),
			Var("y", nil, Call("add", Int(2), Int(3))),
			Var("b", T("byte"), Int(7)),
			For("i", Int(1), Int(10),
				SetOp(N("counter"), "+", N("i")),
			),
			While(Bin(N("y"), "<", Int(10)), Set(N("y"), Bin(N("y"), "+", Int(1)))),
		),
	)

	require.Equal(t, 0, diags.Len(), messages(diags))
	require.Len(t, prog.Globals, 1)
	assert.True(t, prog.Globals[0].Variable.IsGlobal)

	add := mustFunction(t, prog, "add")
	assert.Same(t, types.Int, add.ReturnType())
	require.Len(t, add.Parameters, 2)
	assert.True(t, add.Parameters[0].IsParameter)

	main := mustFunction(t, prog, "main")
	assert.Same(t, types.Unit, main.ReturnType())

	stmts := main.Body().Statements
	x := stmts[0].(*bound.VariableDeclaration)
	require.IsType(t, &bound.Conversion{}, x.Initializer)
	assert.Same(t, types.Float, x.Initializer.Type())

	y := stmts[1].(*bound.VariableDeclaration)
	assert.Same(t, types.Int, y.Variable.Type)

	b := stmts[2].(*bound.VariableDeclaration)
	lit := b.Initializer.(*bound.Literal)
	assert.Equal(t, uint8(7), lit.Value)
	assert.Same(t, types.Byte, lit.Type())

	loop := stmts[3].(*bound.For)
	assert.NotEqual(t, loop.BreakLabel, loop.ContinueLabel)
	body := loop.Body.(*bound.Block)
	assign := body.Statements[0].(*bound.Assignment)
	require.IsType(t, &bound.Binary{}, assign.Value)
	assert.Equal(t, bound.BinaryAddition, assign.Value.(*bound.Binary).Op.Kind)
}

func TestBindForwardCallResolvesPlaceholder(t *testing.T) {
	prog, diags := bindDecls(
		Func("main", nil, nil,
			Do(Call("later", Float("1.5"))),
		),
		Func("later", Params(P("x", T("float"))), T("int"),
			Return(Int(1)),
		),
	)

	require.Equal(t, 0, diags.Len(), messages(diags))

	call := firstCall(mustFunction(t, prog, "main"))
	require.NotNil(t, call)
	assert.False(t, call.IsPending())
	assert.Equal(t, "later", call.Callee().Name)
	assert.Same(t, mustFunction(t, prog, "later").Identifier, call.Callee())
	assert.Same(t, types.Int, call.Type())
	require.Len(t, call.Arguments(), 1)
}

func TestBindMethodsShadowTopLevelFunctions(t *testing.T) {
	prog, diags := bindDecls(
		Func("helper", nil, T("int"), Return(Int(1))),
		Class("C",
			Func("a", nil, T("int"), Return(Call("helper"))),
			Func("helper", nil, T("int"), Return(Int(2))),
			Func("b", nil, T("int"), Return(Call("helper"))),
		),
		Func("main", nil, T("int"), Return(Call("helper"))),
	)

	require.Equal(t, 0, diags.Len(), messages(diags))

	method := mustFunction(t, prog, "C.helper").Identifier
	assert.Same(t, method, firstCall(mustFunction(t, prog, "C.a")).Callee())
	assert.Same(t, method, firstCall(mustFunction(t, prog, "C.b")).Callee())
	assert.Same(t, mustFunction(t, prog, "helper").Identifier, firstCall(mustFunction(t, prog, "main")).Callee())
}

func TestBindLocalsShadowMethods(t *testing.T) {
	prog, diags := bindDecls(
		Func("twice", Params(P("n", T("int"))), T("int"), Return(Bin(N("n"), "*", Int(2)))),
		Class("C",
			Func("a", nil, T("int"),
				Var("helper", FnT(T("int"), T("int")), N("twice")),
				Return(Call("helper", Int(4))),
			),
			Func("helper", Params(P("n", T("int"))), T("int"), Return(N("n"))),
		),
		Func("main", nil, nil),
	)

	require.Equal(t, 0, diags.Len(), messages(diags))

	call := firstCall(mustFunction(t, prog, "C.a"))
	assert.True(t, call.Callee().IsVariable())
}

func TestBindUnreachableCodeWarning(t *testing.T) {
	prog, diags := bindDecls(
		Func("main", nil, T("int"),
			Return(Int(1)),
			Var("x", nil, Int(2)),
			Return(N("x")),
		),
	)

	assert.True(t, diags.ShouldProceed())
	require.Equal(t, 1, diags.WarningCount(), messages(diags))
	assert.Equal(t, report.SeverityWarning, diags.Entries()[0].Severity)
	assert.Contains(t, messages(diags), "unreachable code after `return`")

	// the unreachable statements are still bound
	assert.Len(t, mustFunction(t, prog, "main").Body().Statements, 3)
}

func TestBindDereferenceOfNonPointerIsUsageError(t *testing.T) {
	_, diags := bindDecls(Func("main", nil, nil, Var("x", nil, Int(1)), Do(Un("*", N("x")))))
	require.Equal(t, 1, diags.Len(), messages(diags))
	assert.Equal(t, report.KindUsage, diags.Entries()[0].Kind)
}

func TestBindGlobalInitializerCallsFunction(t *testing.T) {
	prog, diags := bindDecls(
		Var("g", nil, Call("seven")),
		Func("seven", nil, T("int"), Return(Int(7))),
		Func("main", nil, nil),
	)

	require.Equal(t, 0, diags.Len(), messages(diags))
	call := prog.Globals[0].Initializer.(*bound.Call)
	assert.False(t, call.IsPending())
	assert.Same(t, types.Int, prog.Globals[0].Variable.Type)
}

func TestBindClassMethods(t *testing.T) {
	prog, diags := bindDecls(
		Func("main", nil, nil,
			Var("v", nil, Call("Counter.twice", Int(4))),
		),
		Class("Counter",
			Var("count", T("int"), nil),
			Func("twice", Params(P("n", T("int"))), T("int"),
				Return(Call("double", N("n"))),
			),
			Func("double", Params(P("n", T("int"))), T("int"),
				Return(Bin(N("n"), "*", Int(2))),
			),
		),
	)

	require.Equal(t, 0, diags.Len(), messages(diags))
	require.Len(t, prog.Classes, 1)

	class := prog.Classes[0]
	assert.Len(t, class.Methods, 2)
	assert.Len(t, class.Type.Members.Fields, 1)
	_, ok := class.Type.Members.Method("twice")
	assert.True(t, ok)

	twice := mustFunction(t, prog, "Counter.twice")
	assert.Same(t, class.Type, twice.Class)
	assert.Equal(t, "Counter.double", firstCall(twice).Callee().Name)

	call := firstCall(mustFunction(t, prog, "main"))
	assert.Equal(t, "Counter.twice", call.Callee().Name)
}

func TestBindLambdas(t *testing.T) {
	prog, diags := bindDecls(
		Lambda("square", Params(P("x", T("int"))), nil, Bin(N("x"), "*", N("x"))),
		Lambda("half", Params(P("x", T("float"))), T("float"), Bin(N("x"), "/", Int(2))),
		Func("main", nil, nil,
			Do(Call("square", Int(3))),
		),
	)

	require.Equal(t, 0, diags.Len(), messages(diags))

	square := mustFunction(t, prog, "square")
	assert.Same(t, types.Int, square.ReturnType())
	assert.Same(t, types.Int, square.Identifier.Type.Func.ReturnType)
	require.Len(t, square.Body().Statements, 1)
	assert.IsType(t, &bound.Return{}, square.Body().Statements[0])

	half := mustFunction(t, prog, "half")
	assert.Same(t, types.Float, half.ReturnType())
}

func TestBindForwardCallToInferredLambda(t *testing.T) {
	_, diags := bindDecls(
		Func("main", nil, nil, Do(Call("square", Int(3)))),
		Lambda("square", Params(P("x", T("int"))), nil, Bin(N("x"), "*", N("x"))),
	)

	assert.Equal(t, 1, diags.ErrorCount())
	assert.Contains(t, messages(diags), "annotate its return type")
}

func TestBindConversions(t *testing.T) {
	prog, diags := bindDecls(
		Func("main", nil, nil,
			Var("f", nil, Float("2.5")),
			Var("i", nil, Call("int", N("f"))),
			Var("b", nil, Call("byte", N("i"))),
			Var("p", T("*int"), Null()),
			Var("q", Ptr(T("int")), Null()),
			Var("same", nil, Bin(N("q"), "==", Null())),
		),
	)

	// `*int` is not a type name
	require.Equal(t, 1, diags.ErrorCount(), messages(diags))
	assert.Contains(t, messages(diags), "undefined type: `*int`")

	stmts := mustFunction(t, prog, "main").Body().Statements
	i := stmts[1].(*bound.VariableDeclaration)
	require.IsType(t, &bound.Conversion{}, i.Initializer)
	assert.Same(t, types.Int, i.Variable.Type)

	b := stmts[2].(*bound.VariableDeclaration)
	assert.Same(t, types.Byte, b.Variable.Type)

	q := stmts[4].(*bound.VariableDeclaration)
	lit := q.Initializer.(*bound.Literal)
	assert.Nil(t, lit.Value)
	assert.True(t, lit.Type().IsPointer())

	same := stmts[5].(*bound.VariableDeclaration)
	assert.Same(t, types.Bool, same.Variable.Type)
}

func TestBindParametersShareBodyScope(t *testing.T) {
	_, diags := bindDecls(
		Func("f", Params(P("x", T("int"))), nil,
			Var("x", nil, Int(1)),
		),
	)

	assert.Equal(t, 1, diags.ErrorCount())
	assert.Contains(t, messages(diags), "multiple symbols named `x`")
}

func TestBindDiagnostics(t *testing.T) {
	cases := []struct {
		name  string
		decls []ast.Decl
		want  string
	}{
		{
			"undefined name",
			[]ast.Decl{Func("main", nil, nil, Do(N("nope")))},
			"undefined symbol: `nope`",
		},
		{
			"undefined function",
			[]ast.Decl{Func("main", nil, nil, Do(Call("nope")))},
			"undefined function: `nope`",
		},
		{
			"wrong arity",
			[]ast.Decl{
				Func("f", Params(P("a", T("int"))), nil),
				Func("main", nil, nil, Do(Call("f"))),
			},
			"expects 1 arguments but received 0",
		},
		{
			"mismatched types",
			[]ast.Decl{Func("main", nil, nil, Var("x", T("int"), Str("s")))},
			"cannot implicitly convert `string` to `int`",
		},
		{
			"narrowing without conversion",
			[]ast.Decl{Func("main", nil, nil, Var("i", nil, Int(1)), Var("b", T("byte"), N("i")))},
			"an explicit conversion is required",
		},
		{
			"break outside loop",
			[]ast.Decl{Func("main", nil, nil, Break())},
			"break statement outside of loop",
		},
		{
			"continue outside loop",
			[]ast.Decl{Func("main", nil, nil, Continue())},
			"continue statement outside of loop",
		},
		{
			"return value from unit function",
			[]ast.Decl{Func("main", nil, nil, Return(Int(1)))},
			"cannot return a value",
		},
		{
			"missing return",
			[]ast.Decl{Func("f", nil, T("int"))},
			"must return a value of type `int`",
		},
		{
			"assign to read-only",
			[]ast.Decl{Func("main", nil, nil, Let("x", nil, Int(1)), Set(N("x"), Int(2)))},
			"cannot assign to read-only variable `x`",
		},
		{
			"assign to non-assignable",
			[]ast.Decl{Func("main", nil, nil, Set(Int(1), Int(2)))},
			"cannot assign to a non-assignable expression",
		},
		{
			"uninitialised let",
			[]ast.Decl{Func("main", nil, nil, Let("x", T("int"), nil))},
			"must be initialised",
		},
		{
			"dereference non-pointer",
			[]ast.Decl{Func("main", nil, nil, Var("x", nil, Int(1)), Do(Un("*", N("x"))))},
			"cannot dereference non-pointer type `int`",
		},
		{
			"undefined operator",
			[]ast.Decl{Func("main", nil, nil, Do(Bin(Bool(true), "+", Int(1))))},
			"operator `+` is not defined for types `bool` and `int`",
		},
		{
			"recursive struct",
			[]ast.Decl{Struct("Node", F("next", T("Node")))},
			"type `Node` contains itself",
		},
		{
			"class field initializer",
			[]ast.Decl{Class("C", Var("x", T("int"), Int(1)))},
			"cannot have an initializer",
		},
		{
			"duplicate function",
			[]ast.Decl{Func("f", nil, nil), Func("f", nil, nil)},
			"function `f` defined multiple times",
		},
		{
			"unknown field",
			[]ast.Decl{
				Struct("P", F("x", T("int"))),
				Func("main", nil, nil, Var("p", T("P"), nil), Do(Get(N("p"), "y"))),
			},
			"type `P` has no field named `y`",
		},
		{
			"index non-array",
			[]ast.Decl{Func("main", nil, nil, Var("x", nil, Int(1)), Do(Idx(N("x"), Int(0))))},
			"type `int` cannot be indexed",
		},
		{
			"assign to member of call result",
			[]ast.Decl{
				Struct("P", F("x", T("int"))),
				Func("mk", nil, T("P"), Var("p", T("P"), nil), Return(N("p"))),
				Func("main", nil, nil, Set(Get(Call("mk"), "x"), Int(5))),
			},
			"cannot assign to a non-assignable expression",
		},
		{
			"address of member of call result",
			[]ast.Decl{
				Struct("P", F("x", T("int"))),
				Func("mk", nil, T("P"), Var("p", T("P"), nil), Return(N("p"))),
				Func("main", nil, nil, Var("q", nil, Un("&", Get(Call("mk"), "x")))),
			},
			"cannot take the address of a non-assignable expression",
		},
		{
			"infer from null",
			[]ast.Decl{Func("main", nil, nil, Var("x", nil, Null()))},
			"unable to infer type of `x` from null",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, diags := bindDecls(c.decls...)
			assert.False(t, diags.ShouldProceed())
			assert.Contains(t, messages(diags), c.want)
		})
	}
}

func TestBindErrorsDoNotCascade(t *testing.T) {
	_, diags := bindDecls(
		Func("main", nil, nil,
			Var("x", nil, Bin(N("nope"), "+", Int(1))),
			Var("y", T("int"), Bin(N("x"), "*", Int(2))),
		),
	)

	assert.Equal(t, 1, diags.ErrorCount(), messages(diags))
}

func TestBindStructsAndPointers(t *testing.T) {
	prog, diags := bindDecls(
		Struct("Point", F("x", T("int")), F("y", T("int"))),
		Struct("Line", F("from", T("Point")), F("to", Ptr(T("Point")))),
		Func("main", nil, nil,
			Var("p", T("Point"), nil),
			Var("pp", nil, Un("&", N("p"))),
			Set(Get(N("pp"), "x"), Int(3)),
			Var("arr", Arr(T("int"), 4), nil),
			Set(Idx(N("arr"), Int(2)), Get(N("p"), "y")),
			Set(Un("*", N("pp")), N("p")),
		),
	)

	require.Equal(t, 0, diags.Len(), messages(diags))
	require.Len(t, prog.Structs, 2)

	stmts := mustFunction(t, prog, "main").Body().Statements
	p := stmts[0].(*bound.VariableDeclaration)
	assert.Nil(t, p.Initializer)

	pp := stmts[1].(*bound.VariableDeclaration)
	assert.True(t, pp.Variable.Type.IsPointer())
	assert.True(t, pp.Variable.Type.PointerTo.Equals(p.Variable.Type))
}
