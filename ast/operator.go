package ast

// Operator is an operator token.  Tokens that are both unary and binary
// operators (`-`, `*`, `&`) are the same operator: which one is meant is
// decided by the node it appears in.
type Operator int

// Enumeration of operators.
const (
	OpNone Operator = iota
	OpPlus
	OpMinus
	OpStar
	OpSlash
	OpPercent
	OpAmp
	OpPipe
	OpCaret
	OpAmpAmp
	OpPipePipe
	OpBang
	OpTilde
	OpEqEq
	OpBangEq
	OpLt
	OpLtEq
	OpGt
	OpGtEq
)

var operatorTokens = map[Operator]string{
	OpPlus:     "+",
	OpMinus:    "-",
	OpStar:     "*",
	OpSlash:    "/",
	OpPercent:  "%",
	OpAmp:      "&",
	OpPipe:     "|",
	OpCaret:    "^",
	OpAmpAmp:   "&&",
	OpPipePipe: "||",
	OpBang:     "!",
	OpTilde:    "~",
	OpEqEq:     "==",
	OpBangEq:   "!=",
	OpLt:       "<",
	OpLtEq:     "<=",
	OpGt:       ">",
	OpGtEq:     ">=",
}

var tokenOperators = func() map[string]Operator {
	m := make(map[string]Operator, len(operatorTokens))
	for op, tok := range operatorTokens {
		m[tok] = op
	}
	return m
}()

func (op Operator) String() string {
	if tok, ok := operatorTokens[op]; ok {
		return tok
	}

	return "<none>"
}

// OperatorFromToken returns the operator written as `tok`.
func OperatorFromToken(tok string) (Operator, bool) {
	op, ok := tokenOperators[tok]
	return op, ok
}
