package bound

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PeterBassett/Compiler-sub001/report"
)

// printer renders bound trees as indented pseudocode.  It is used for dumping
// programs and in tests.
type printer struct {
	sb     strings.Builder
	indent int
}

// Fprint writes a whole program to `w`.
func Fprint(w io.Writer, p *Program) error {
	_, err := io.WriteString(w, Sprint(p))
	return err
}

// Sprint renders a whole program.
func Sprint(p *Program) string {
	pr := &printer{}

	for _, sd := range p.Structs {
		pr.printStatement(sd)
	}

	for _, cd := range p.Classes {
		pr.printStatement(cd)
	}

	for _, global := range p.Globals {
		pr.printStatement(global)
	}

	for _, fd := range p.Functions {
		pr.printStatement(fd)
	}

	return pr.sb.String()
}

// StatementString renders a single statement.
func StatementString(s Statement) string {
	pr := &printer{}
	pr.printStatement(s)
	return pr.sb.String()
}

// ExpressionString renders a single expression.
func ExpressionString(e Expression) string {
	pr := &printer{}
	pr.printExpression(e)
	return pr.sb.String()
}

// -----------------------------------------------------------------------------

func (pr *printer) line(format string, args ...interface{}) {
	pr.sb.WriteString(strings.Repeat("    ", pr.indent))
	fmt.Fprintf(&pr.sb, format, args...)
	pr.sb.WriteRune('\n')
}

func (pr *printer) expr(e Expression) string {
	sub := &printer{}
	sub.printExpression(e)
	return sub.sb.String()
}

// nested prints a statement one level further in unless it is a block.
func (pr *printer) nested(s Statement) {
	if _, ok := s.(*Block); ok {
		pr.printStatement(s)
		return
	}

	pr.indent++
	pr.printStatement(s)
	pr.indent--
}

func (pr *printer) printStatement(s Statement) {
	switch v := s.(type) {
	case *Block:
		pr.line("{")
		pr.indent++
		for _, stmt := range v.Statements {
			pr.printStatement(stmt)
		}
		pr.indent--
		pr.line("}")
	case *VariableDeclaration:
		keyword := "var"
		if v.Variable.ReadOnly {
			keyword = "let"
		}

		if v.Initializer == nil {
			pr.line("%s %s: %s", keyword, v.Variable.Name, v.Variable.Type)
		} else {
			pr.line("%s %s: %s = %s", keyword, v.Variable.Name, v.Variable.Type, pr.expr(v.Initializer))
		}
	case *If:
		pr.line("if %s", pr.expr(v.Condition))
		pr.nested(v.Then)
		if v.Else != nil {
			pr.line("else")
			pr.nested(v.Else)
		}
	case *While:
		pr.line("while %s", pr.expr(v.Condition))
		pr.nested(v.Body)
	case *For:
		pr.line("for %s = %s to %s", v.Variable.Name, pr.expr(v.Lower), pr.expr(v.Upper))
		pr.nested(v.Body)
	case *Return:
		if v.Value == nil {
			pr.line("return")
		} else {
			pr.line("return %s", pr.expr(v.Value))
		}
	case *ExpressionStatement:
		pr.line("%s", pr.expr(v.Expression))
	case *Assignment:
		pr.line("%s = %s", pr.expr(v.Target), pr.expr(v.Value))
	case *Goto:
		pr.line("goto %s", v.Label)
	case *ConditionalGoto:
		if v.JumpIfTrue {
			pr.line("gotoIfTrue %s %s", pr.expr(v.Condition), v.Label)
		} else {
			pr.line("gotoIfFalse %s %s", pr.expr(v.Condition), v.Label)
		}
	case *LabelStatement:
		pr.line("%s:", v.Label)
	case *StructDeclaration:
		pr.printMembers("struct", v.Type.Name, v)
	case *ClassDeclaration:
		pr.printMembers("class", v.Type.Name, v)
	case *FunctionDeclaration:
		params := make([]string, len(v.Parameters))
		for i, param := range v.Parameters {
			params[i] = param.Name + ": " + param.Type.Repr()
		}

		if !v.IsDefined() {
			pr.line("func %s(%s) <undefined>", v.Name(), strings.Join(params, ", "))
			return
		}

		pr.line("func %s(%s): %s", v.Name(), strings.Join(params, ", "), v.ReturnType())
		pr.printStatement(v.Body())
	default:
		report.ICE("printer: unhandled statement kind %s", s.Kind())
	}
}

func (pr *printer) printMembers(keyword, name string, s Statement) {
	var typeFields []string
	var methods []string

	switch v := s.(type) {
	case *StructDeclaration:
		for _, field := range v.Type.Members.Fields {
			typeFields = append(typeFields, field.Name+": "+field.Type.Repr())
		}
	case *ClassDeclaration:
		for _, field := range v.Type.Members.Fields {
			typeFields = append(typeFields, field.Name+": "+field.Type.Repr())
		}
		for _, method := range v.Methods {
			methods = append(methods, method.Name())
		}
	}

	if len(methods) == 0 {
		pr.line("%s %s { %s }", keyword, name, strings.Join(typeFields, ", "))
	} else {
		pr.line("%s %s { %s } methods %s", keyword, name, strings.Join(typeFields, ", "), strings.Join(methods, ", "))
	}
}

func (pr *printer) printExpression(e Expression) {
	switch v := e.(type) {
	case *Literal:
		pr.sb.WriteString(LiteralString(v.Value))
	case *Variable:
		pr.sb.WriteString(v.Identifier.Name)
	case *Unary:
		pr.sb.WriteString(v.Op.Syntax.String())
		pr.printExpression(v.Operand)
	case *Binary:
		pr.sb.WriteRune('(')
		pr.printExpression(v.Left)
		pr.sb.WriteString(" " + v.Op.Syntax.String() + " ")
		pr.printExpression(v.Right)
		pr.sb.WriteRune(')')
	case *Call:
		var args []Expression
		if v.IsPending() {
			pr.sb.WriteString(v.Name() + "<pending>")
		} else {
			pr.sb.WriteString(v.Name())
			args = v.Arguments()
		}

		pr.sb.WriteRune('(')
		for i, arg := range args {
			if i > 0 {
				pr.sb.WriteString(", ")
			}
			pr.printExpression(arg)
		}
		pr.sb.WriteRune(')')
	case *GetMember:
		pr.printExpression(v.Operand)
		pr.sb.WriteString("." + v.Member)
	case *Dereference:
		pr.sb.WriteRune('*')
		pr.printExpression(v.Operand)
	case *Conversion:
		pr.sb.WriteString(v.Type().Repr() + "(")
		pr.printExpression(v.Operand)
		pr.sb.WriteRune(')')
	case *Error:
		pr.sb.WriteString("<error>")
	case *Index:
		pr.printExpression(v.Operand)
		pr.sb.WriteRune('[')
		pr.printExpression(v.Index)
		pr.sb.WriteRune(']')
	case *AddressOf:
		pr.sb.WriteRune('&')
		pr.printExpression(v.Operand)
	default:
		report.ICE("printer: unhandled expression kind %s", e.Kind())
	}
}

// LiteralString renders a literal value the way it would be written in source.
func LiteralString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case int32:
		return strconv.Itoa(int(v))
	case uint8:
		return strconv.Itoa(int(v)) + "b"
	case float64:
		s := strconv.FormatFloat(v, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		return s
	case bool:
		return strconv.FormatBool(v)
	case string:
		return strconv.Quote(v)
	}

	report.ICE("printer: literal of unknown type %T", value)
	return ""
}
