package eval

import (
	"strconv"
	"strings"

	"github.com/PeterBassett/Compiler-sub001/types"
)

// Value is a runtime value: an `int32`, `float64`, `uint8`, `bool`, `string`,
// `*StructValue`, `*ArrayValue`, `FunctionValue`, a `Ref` for a non-null
// pointer, or nil for the null pointer and `unit`.
type Value = interface{}

// StructValue is the value of a struct or class.  Its fields are stored in
// declaration order.
type StructValue struct {
	Type   *types.Type
	Fields []Value
}

// ArrayValue is the value of a fixed-length array.
type ArrayValue struct {
	Elements []Value
}

// FunctionValue is a reference to a declared function.
type FunctionValue struct {
	Name string
}

func (s *StructValue) String() string {
	sb := strings.Builder{}
	sb.WriteString(s.Type.Repr())
	sb.WriteRune('{')
	for i, field := range s.Type.Members.Fields {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(field.Name)
		sb.WriteString(": ")
		sb.WriteString(Format(s.Fields[i]))
	}
	sb.WriteRune('}')
	return sb.String()
}

func (a *ArrayValue) String() string {
	sb := strings.Builder{}
	sb.WriteRune('[')
	for i, elem := range a.Elements {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(Format(elem))
	}
	sb.WriteRune(']')
	return sb.String()
}

// Format returns the display string of a value.
func Format(v Value) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case int32:
		return strconv.Itoa(int(x))
	case uint8:
		return strconv.Itoa(int(x))
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case string:
		return strconv.Quote(x)
	case *StructValue:
		return x.String()
	case *ArrayValue:
		return x.String()
	case FunctionValue:
		return "func " + x.Name
	case Ref:
		return "<pointer>"
	}

	return "<?>"
}

// -----------------------------------------------------------------------------

// Ref is a pointer: a reference to storage holding a value.
type Ref interface {
	Load() Value
	Store(v Value)
}

// cell is the storage of a variable.
type cell struct {
	value Value
}

func (c *cell) Load() Value   { return c.value }
func (c *cell) Store(v Value) { c.value = v }

// fieldRef refers to a field of a struct value.
type fieldRef struct {
	s     *StructValue
	index int
}

func (f fieldRef) Load() Value   { return f.s.Fields[f.index] }
func (f fieldRef) Store(v Value) { f.s.Fields[f.index] = v }

// elemRef refers to an element of an array value.
type elemRef struct {
	a     *ArrayValue
	index int
}

func (e elemRef) Load() Value   { return e.a.Elements[e.index] }
func (e elemRef) Store(v Value) { e.a.Elements[e.index] = v }

// -----------------------------------------------------------------------------

// zero returns the zero value of a type.
func zero(t *types.Type) Value {
	switch t.Kind {
	case types.KindInt:
		return int32(0)
	case types.KindFloat:
		return float64(0)
	case types.KindByte:
		return uint8(0)
	case types.KindBool:
		return false
	case types.KindString:
		return ""
	case types.KindStruct, types.KindClass:
		s := &StructValue{Type: t, Fields: make([]Value, len(t.Members.Fields))}
		for i, field := range t.Members.Fields {
			s.Fields[i] = zero(field.Type)
		}
		return s
	case types.KindArray:
		a := &ArrayValue{Elements: make([]Value, t.Length)}
		for i := range a.Elements {
			a.Elements[i] = zero(t.ElementType)
		}
		return a
	}

	return nil
}

// copyValue copies a value for storage.  Aggregates have value semantics and
// are copied deeply; pointers are not followed.
func copyValue(v Value) Value {
	switch x := v.(type) {
	case *StructValue:
		s := &StructValue{Type: x.Type, Fields: make([]Value, len(x.Fields))}
		for i, field := range x.Fields {
			s.Fields[i] = copyValue(field)
		}
		return s
	case *ArrayValue:
		a := &ArrayValue{Elements: make([]Value, len(x.Elements))}
		for i, elem := range x.Elements {
			a.Elements[i] = copyValue(elem)
		}
		return a
	}

	return v
}

func fieldIndex(t *types.Type, name string) int {
	if t.IsPointer() {
		t = t.PointerTo
	}

	for i, field := range t.Members.Fields {
		if field.Name == name {
			return i
		}
	}

	return -1
}
