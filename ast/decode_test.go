package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mainSource = `{
	"source": "func main(): int { return 2 + 3 * 4; }",
	"declarations": [{
		"kind": "func", "name": "main", "span": [0, 0, 0, 38],
		"returns": {"kind": "named", "name": "int"},
		"body": {"kind": "block", "stmts": [{
			"kind": "return",
			"value": {
				"kind": "binary", "op": "+", "span": [0, 26, 0, 34],
				"left": {"kind": "literal", "lit": "int", "value": 2},
				"right": {
					"kind": "binary", "op": "*",
					"left": {"kind": "literal", "lit": "int", "value": "3"},
					"right": {"kind": "literal", "lit": "int", "value": 4}
				}
			}
		}]}
	}]
}`

func TestDecodeFunction(t *testing.T) {
	unit, err := Decode([]byte(mainSource))
	require.NoError(t, err)

	assert.Equal(t, "func main(): int { return 2 + 3 * 4; }", unit.Source)
	require.Len(t, unit.Declarations, 1)

	fd, ok := unit.Declarations[0].(*FuncDecl)
	require.True(t, ok)
	assert.Equal(t, "main", fd.Name)
	assert.Equal(t, &NamedType{Name: "int"}, fd.ReturnType)
	assert.Equal(t, 38, fd.Span().EndCol)

	require.Len(t, fd.Body.Stmts, 1)
	ret := fd.Body.Stmts[0].(*Return)
	sum := ret.Value.(*Binary)
	assert.Equal(t, OpPlus, sum.Op)
	assert.Equal(t, 26, sum.Span().StartCol)
	assert.Equal(t, "2", sum.Left.(*Literal).Value)

	product := sum.Right.(*Binary)
	assert.Equal(t, OpStar, product.Op)
	assert.Equal(t, "3", product.Left.(*Literal).Value)
	assert.Nil(t, product.Span())
}

func TestDecodeDeclarations(t *testing.T) {
	unit, err := Decode([]byte(`{"declarations": [
		{"kind": "struct", "name": "S", "fields": [
			{"name": "a", "type": {"kind": "named", "name": "int"}},
			{"name": "p", "type": {"kind": "pointer", "elem": {"kind": "named", "name": "S"}}},
			{"name": "xs", "type": {"kind": "array", "length": 3, "elem": {"kind": "named", "name": "byte"}}}
		]},
		{"kind": "var", "name": "g", "readonly": true, "init": {"kind": "literal", "lit": "string", "value": "hi"}},
		{"kind": "lambda", "name": "sq", "params": [{"name": "x", "type": {"kind": "named", "name": "int"}}],
		 "body": {"kind": "binary", "op": "*", "left": {"kind": "name", "name": "x"}, "right": {"kind": "name", "name": "x"}}},
		{"kind": "class", "name": "C", "members": [
			{"kind": "var", "name": "f", "type": {"kind": "functype", "params": [{"kind": "named", "name": "int"}]}}
		]}
	]}`))
	require.NoError(t, err)
	require.Len(t, unit.Declarations, 4)

	sd := unit.Declarations[0].(*StructDecl)
	require.Len(t, sd.Fields, 3)
	assert.Equal(t, "S", sd.Fields[1].Type.(*PointerType).Elem.(*NamedType).Name)
	assert.Equal(t, 3, sd.Fields[2].Type.(*ArrayType).Length)

	vd := unit.Declarations[1].(*VarDecl)
	assert.True(t, vd.ReadOnly)
	assert.Nil(t, vd.Type)
	assert.Equal(t, &Literal{Kind: LitString, Value: "hi"}, vd.Init)

	ld := unit.Declarations[2].(*LambdaDecl)
	assert.Nil(t, ld.ReturnType)
	assert.Len(t, ld.Params, 1)

	cd := unit.Declarations[3].(*ClassDecl)
	ft := cd.Members[0].(*VarDecl).Type.(*FuncType)
	assert.Len(t, ft.Params, 1)
	assert.Nil(t, ft.ReturnType)
}

func TestDecodeStatements(t *testing.T) {
	unit, err := Decode([]byte(`{"declarations": [{"kind": "func", "name": "f", "body": {"kind": "block", "stmts": [
		{"kind": "var", "name": "i", "init": {"kind": "literal", "lit": "int", "value": 0}},
		{"kind": "while", "cond": {"kind": "literal", "lit": "bool", "value": true}, "body": {"kind": "block", "stmts": [
			{"kind": "if", "cond": {"kind": "binary", "op": ">", "left": {"kind": "name", "name": "i"}, "right": {"kind": "literal", "lit": "int", "value": 3}},
			 "then": {"kind": "break"}},
			{"kind": "assign", "op": "+", "target": {"kind": "name", "name": "i"}, "value": {"kind": "literal", "lit": "int", "value": 1}},
			{"kind": "continue"}
		]}},
		{"kind": "for", "var": "j", "lower": {"kind": "literal", "lit": "int", "value": 1}, "upper": {"kind": "call", "callee": "rnd", "args": [
			{"kind": "literal", "lit": "int", "value": 1}, {"kind": "literal", "lit": "int", "value": 2}]},
		 "body": {"kind": "expr", "expr": {"kind": "index", "operand": {"kind": "name", "name": "xs"}, "index": {"kind": "name", "name": "j"}}}},
		{"kind": "return"}
	]}}]}`))
	require.NoError(t, err)

	body := unit.Declarations[0].(*FuncDecl).Body
	require.Len(t, body.Stmts, 4)

	loop := body.Stmts[1].(*While).Body.(*Block)
	ifStmt := loop.Stmts[0].(*If)
	assert.IsType(t, &Break{}, ifStmt.Then)
	assert.Nil(t, ifStmt.Else)
	assert.Equal(t, OpPlus, loop.Stmts[1].(*Assign).Op)
	assert.IsType(t, &Continue{}, loop.Stmts[2])

	forStmt := body.Stmts[2].(*For)
	assert.Equal(t, "j", forStmt.Var)
	assert.Equal(t, "rnd", forStmt.Upper.(*Call).Callee)
	assert.IsType(t, &Index{}, forStmt.Body.(*ExprStmt).Expr)

	assert.Nil(t, body.Stmts[3].(*Return).Value)
}

func TestDecodeErrors(t *testing.T) {
	cases := map[string]string{
		"malformed json":   `{"declarations": [`,
		"unknown decl":     `{"declarations": [{"kind": "module"}]}`,
		"unknown operator": `{"declarations": [{"kind": "var", "name": "x", "init": {"kind": "unary", "op": "++", "operand": {"kind": "name", "name": "y"}}}]}`,
		"bad span":         `{"declarations": [{"kind": "var", "name": "x", "span": [1, 2]}]}`,
		"missing body":     `{"declarations": [{"kind": "lambda", "name": "l"}]}`,
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(input))
			assert.Error(t, err)
		})
	}
}
