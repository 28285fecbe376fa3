package ast

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/PeterBassett/Compiler-sub001/report"
)

// The syntax tree is handed to the compiler by the external parser as JSON.
// Every node is an object with a `kind` and an optional `span` holding the
// zero-indexed start line, start column, end line and end column of the node:
//
//	{"kind": "binary", "span": [0, 4, 0, 8], "op": "+", "left": ..., "right": ...}
//
// The root of the document is an envelope:
//
//	{"source": "...", "declarations": [...]}

// rawNode is the union of all the fields any node may have.
type rawNode struct {
	Kind string `json:"kind"`
	Span []int  `json:"span"`

	Name     string `json:"name"`
	ReadOnly bool   `json:"readonly"`
	Var      string `json:"var"`
	Op       string `json:"op"`
	Lit      string `json:"lit"`
	Callee   string `json:"callee"`
	Member   string `json:"member"`
	Length   int    `json:"length"`

	Type    json.RawMessage   `json:"type"`
	Init    json.RawMessage   `json:"init"`
	Returns json.RawMessage   `json:"returns"`
	Body    json.RawMessage   `json:"body"`
	Params  []json.RawMessage `json:"params"`
	Fields  []json.RawMessage `json:"fields"`
	Members []json.RawMessage `json:"members"`
	Stmts   []json.RawMessage `json:"stmts"`
	Cond    json.RawMessage   `json:"cond"`
	Then    json.RawMessage   `json:"then"`
	Else    json.RawMessage   `json:"else"`
	Lower   json.RawMessage   `json:"lower"`
	Upper   json.RawMessage   `json:"upper"`
	Value   json.RawMessage   `json:"value"`
	Expr    json.RawMessage   `json:"expr"`
	Target  json.RawMessage   `json:"target"`
	Operand json.RawMessage   `json:"operand"`
	Left    json.RawMessage   `json:"left"`
	Right   json.RawMessage   `json:"right"`
	Args    []json.RawMessage `json:"args"`
	Index   json.RawMessage   `json:"index"`
	Elem    json.RawMessage   `json:"elem"`
}

type rawUnit struct {
	Source       string            `json:"source"`
	Declarations []json.RawMessage `json:"declarations"`
}

// Decode decodes a compilation unit from its JSON representation.
func Decode(data []byte) (*CompilationUnit, error) {
	ru := &rawUnit{}
	if err := json.Unmarshal(data, ru); err != nil {
		return nil, fmt.Errorf("decoding syntax tree: %w", err)
	}

	unit := &CompilationUnit{Source: ru.Source}
	for _, raw := range ru.Declarations {
		decl, err := decodeDecl(raw)
		if err != nil {
			return nil, err
		}

		unit.Declarations = append(unit.Declarations, decl)
	}

	return unit, nil
}

// present returns whether an optional child was given.
func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func decodeRaw(raw json.RawMessage) (*rawNode, error) {
	rn := &rawNode{}
	if err := json.Unmarshal(raw, rn); err != nil {
		return nil, fmt.Errorf("decoding syntax tree: %w", err)
	}

	if rn.Span != nil && len(rn.Span) != 4 {
		return nil, fmt.Errorf("decoding syntax tree: `%s` node has a malformed span", rn.Kind)
	}

	return rn, nil
}

func (rn *rawNode) base() ASTBase {
	if rn.Span == nil {
		return NewASTBaseOn(nil)
	}

	return NewASTBaseOn(&report.TextSpan{
		StartLine: rn.Span[0],
		StartCol:  rn.Span[1],
		EndLine:   rn.Span[2],
		EndCol:    rn.Span[3],
	})
}

func (rn *rawNode) errorf(msg string, args ...interface{}) error {
	return fmt.Errorf("%s: %s", rn.base().Span(), fmt.Sprintf(msg, args...))
}

func (rn *rawNode) operator() (Operator, error) {
	if op, ok := OperatorFromToken(rn.Op); ok {
		return op, nil
	}

	return OpNone, rn.errorf("unknown operator `%s`", rn.Op)
}

// -----------------------------------------------------------------------------

func decodeDecl(raw json.RawMessage) (Decl, error) {
	rn, err := decodeRaw(raw)
	if err != nil {
		return nil, err
	}

	switch rn.Kind {
	case "var":
		return rn.decodeVarDecl()
	case "func":
		params, err := decodeParams(rn.Params)
		if err != nil {
			return nil, err
		}

		retType, err := decodeOptionalType(rn.Returns)
		if err != nil {
			return nil, err
		}

		body, err := decodeBlock(rn.Body)
		if err != nil {
			return nil, err
		}

		return &FuncDecl{ASTBase: rn.base(), Name: rn.Name, Params: params, ReturnType: retType, Body: body}, nil
	case "lambda":
		params, err := decodeParams(rn.Params)
		if err != nil {
			return nil, err
		}

		retType, err := decodeOptionalType(rn.Returns)
		if err != nil {
			return nil, err
		}

		body, err := decodeExpr(rn.Body)
		if err != nil {
			return nil, err
		}

		return &LambdaDecl{ASTBase: rn.base(), Name: rn.Name, Params: params, ReturnType: retType, Body: body}, nil
	case "struct":
		sd := &StructDecl{ASTBase: rn.base(), Name: rn.Name}
		for _, rawField := range rn.Fields {
			fn, err := decodeRaw(rawField)
			if err != nil {
				return nil, err
			}

			typ, err := decodeType(fn.Type)
			if err != nil {
				return nil, err
			}

			sd.Fields = append(sd.Fields, &Field{ASTBase: fn.base(), Name: fn.Name, Type: typ})
		}

		return sd, nil
	case "class":
		cd := &ClassDecl{ASTBase: rn.base(), Name: rn.Name}
		for _, rawMember := range rn.Members {
			member, err := decodeDecl(rawMember)
			if err != nil {
				return nil, err
			}

			cd.Members = append(cd.Members, member)
		}

		return cd, nil
	}

	return nil, rn.errorf("unknown declaration kind `%s`", rn.Kind)
}

func (rn *rawNode) decodeVarDecl() (*VarDecl, error) {
	typ, err := decodeOptionalType(rn.Type)
	if err != nil {
		return nil, err
	}

	init, err := decodeOptionalExpr(rn.Init)
	if err != nil {
		return nil, err
	}

	return &VarDecl{ASTBase: rn.base(), Name: rn.Name, ReadOnly: rn.ReadOnly, Type: typ, Init: init}, nil
}

func decodeParams(raws []json.RawMessage) ([]*Param, error) {
	params := make([]*Param, 0, len(raws))
	for _, raw := range raws {
		rn, err := decodeRaw(raw)
		if err != nil {
			return nil, err
		}

		typ, err := decodeType(rn.Type)
		if err != nil {
			return nil, err
		}

		params = append(params, &Param{ASTBase: rn.base(), Name: rn.Name, Type: typ})
	}

	return params, nil
}

// -----------------------------------------------------------------------------

func decodeBlock(raw json.RawMessage) (*Block, error) {
	stmt, err := decodeStmt(raw)
	if err != nil {
		return nil, err
	}

	if block, ok := stmt.(*Block); ok {
		return block, nil
	}

	return &Block{ASTBase: NewASTBaseOn(stmt.Span()), Stmts: []Stmt{stmt}}, nil
}

func decodeOptionalStmt(raw json.RawMessage) (Stmt, error) {
	if !present(raw) {
		return nil, nil
	}

	return decodeStmt(raw)
}

func decodeStmt(raw json.RawMessage) (Stmt, error) {
	if !present(raw) {
		return nil, fmt.Errorf("decoding syntax tree: missing statement")
	}

	rn, err := decodeRaw(raw)
	if err != nil {
		return nil, err
	}

	switch rn.Kind {
	case "block":
		block := &Block{ASTBase: rn.base()}
		for _, rawStmt := range rn.Stmts {
			stmt, err := decodeStmt(rawStmt)
			if err != nil {
				return nil, err
			}

			block.Stmts = append(block.Stmts, stmt)
		}

		return block, nil
	case "var":
		return rn.decodeVarDecl()
	case "if":
		cond, err := decodeExpr(rn.Cond)
		if err != nil {
			return nil, err
		}

		then, err := decodeStmt(rn.Then)
		if err != nil {
			return nil, err
		}

		els, err := decodeOptionalStmt(rn.Else)
		if err != nil {
			return nil, err
		}

		return &If{ASTBase: rn.base(), Cond: cond, Then: then, Else: els}, nil
	case "while":
		cond, err := decodeExpr(rn.Cond)
		if err != nil {
			return nil, err
		}

		body, err := decodeStmt(rn.Body)
		if err != nil {
			return nil, err
		}

		return &While{ASTBase: rn.base(), Cond: cond, Body: body}, nil
	case "for":
		lower, err := decodeExpr(rn.Lower)
		if err != nil {
			return nil, err
		}

		upper, err := decodeExpr(rn.Upper)
		if err != nil {
			return nil, err
		}

		body, err := decodeStmt(rn.Body)
		if err != nil {
			return nil, err
		}

		return &For{ASTBase: rn.base(), Var: rn.Var, Lower: lower, Upper: upper, Body: body}, nil
	case "return":
		value, err := decodeOptionalExpr(rn.Value)
		if err != nil {
			return nil, err
		}

		return &Return{ASTBase: rn.base(), Value: value}, nil
	case "break":
		return &Break{ASTBase: rn.base()}, nil
	case "continue":
		return &Continue{ASTBase: rn.base()}, nil
	case "expr":
		expr, err := decodeExpr(rn.Expr)
		if err != nil {
			return nil, err
		}

		return &ExprStmt{ASTBase: rn.base(), Expr: expr}, nil
	case "assign":
		target, err := decodeExpr(rn.Target)
		if err != nil {
			return nil, err
		}

		value, err := decodeExpr(rn.Value)
		if err != nil {
			return nil, err
		}

		op := OpNone
		if rn.Op != "" {
			if op, err = rn.operator(); err != nil {
				return nil, err
			}
		}

		return &Assign{ASTBase: rn.base(), Target: target, Op: op, Value: value}, nil
	}

	return nil, rn.errorf("unknown statement kind `%s`", rn.Kind)
}

// -----------------------------------------------------------------------------

var literalKinds = map[string]LiteralKind{
	"int":    LitInt,
	"float":  LitFloat,
	"byte":   LitByte,
	"bool":   LitBool,
	"string": LitString,
	"null":   LitNull,
}

func decodeOptionalExpr(raw json.RawMessage) (Expr, error) {
	if !present(raw) {
		return nil, nil
	}

	return decodeExpr(raw)
}

func decodeExprs(raws []json.RawMessage) ([]Expr, error) {
	exprs := make([]Expr, 0, len(raws))
	for _, raw := range raws {
		expr, err := decodeExpr(raw)
		if err != nil {
			return nil, err
		}

		exprs = append(exprs, expr)
	}

	return exprs, nil
}

func decodeExpr(raw json.RawMessage) (Expr, error) {
	if !present(raw) {
		return nil, fmt.Errorf("decoding syntax tree: missing expression")
	}

	rn, err := decodeRaw(raw)
	if err != nil {
		return nil, err
	}

	switch rn.Kind {
	case "literal":
		kind, ok := literalKinds[rn.Lit]
		if !ok {
			return nil, rn.errorf("unknown literal kind `%s`", rn.Lit)
		}

		// Literal values may be given either as JSON strings holding the
		// literal text or as bare JSON values.
		text := string(bytes.TrimSpace(rn.Value))
		if len(text) > 0 && text[0] == '"' {
			if err := json.Unmarshal(rn.Value, &text); err != nil {
				return nil, fmt.Errorf("decoding syntax tree: %w", err)
			}
		}

		return &Literal{ASTBase: rn.base(), Kind: kind, Value: text}, nil
	case "name":
		return &Name{ASTBase: rn.base(), Name: rn.Name}, nil
	case "unary":
		op, err := rn.operator()
		if err != nil {
			return nil, err
		}

		operand, err := decodeExpr(rn.Operand)
		if err != nil {
			return nil, err
		}

		return &Unary{ASTBase: rn.base(), Op: op, Operand: operand}, nil
	case "binary":
		op, err := rn.operator()
		if err != nil {
			return nil, err
		}

		left, err := decodeExpr(rn.Left)
		if err != nil {
			return nil, err
		}

		right, err := decodeExpr(rn.Right)
		if err != nil {
			return nil, err
		}

		return &Binary{ASTBase: rn.base(), Op: op, Left: left, Right: right}, nil
	case "call":
		args, err := decodeExprs(rn.Args)
		if err != nil {
			return nil, err
		}

		return &Call{ASTBase: rn.base(), Callee: rn.Callee, Args: args}, nil
	case "get":
		operand, err := decodeExpr(rn.Operand)
		if err != nil {
			return nil, err
		}

		return &Get{ASTBase: rn.base(), Operand: operand, Member: rn.Member}, nil
	case "index":
		operand, err := decodeExpr(rn.Operand)
		if err != nil {
			return nil, err
		}

		index, err := decodeExpr(rn.Index)
		if err != nil {
			return nil, err
		}

		return &Index{ASTBase: rn.base(), Operand: operand, Index: index}, nil
	}

	return nil, rn.errorf("unknown expression kind `%s`", rn.Kind)
}

// -----------------------------------------------------------------------------

func decodeOptionalType(raw json.RawMessage) (TypeExpr, error) {
	if !present(raw) {
		return nil, nil
	}

	return decodeType(raw)
}

func decodeType(raw json.RawMessage) (TypeExpr, error) {
	if !present(raw) {
		return nil, fmt.Errorf("decoding syntax tree: missing type")
	}

	rn, err := decodeRaw(raw)
	if err != nil {
		return nil, err
	}

	switch rn.Kind {
	case "named":
		return &NamedType{ASTBase: rn.base(), Name: rn.Name}, nil
	case "pointer":
		elem, err := decodeType(rn.Elem)
		if err != nil {
			return nil, err
		}

		return &PointerType{ASTBase: rn.base(), Elem: elem}, nil
	case "array":
		elem, err := decodeType(rn.Elem)
		if err != nil {
			return nil, err
		}

		return &ArrayType{ASTBase: rn.base(), Elem: elem, Length: rn.Length}, nil
	case "functype":
		ft := &FuncType{ASTBase: rn.base()}
		for _, rawParam := range rn.Params {
			param, err := decodeType(rawParam)
			if err != nil {
				return nil, err
			}

			ft.Params = append(ft.Params, param)
		}

		if ft.ReturnType, err = decodeOptionalType(rn.Returns); err != nil {
			return nil, err
		}

		return ft, nil
	}

	return nil, rn.errorf("unknown type kind `%s`", rn.Kind)
}
