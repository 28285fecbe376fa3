package types

import (
	"strconv"
	"strings"
)

// ValueKind is the coarse category of a value: its value-kind tag.
type ValueKind int

// Enumeration of value kinds.
const (
	KindUnit ValueKind = iota
	KindNull
	KindError
	KindFunction
	KindBool
	KindInt
	KindFloat
	KindByte
	KindString
	KindPointer
	KindArray
	KindStruct
	KindClass
)

var valueKindNames = [...]string{
	KindUnit:     "unit",
	KindNull:     "null",
	KindError:    "error",
	KindFunction: "function",
	KindBool:     "bool",
	KindInt:      "int",
	KindFloat:    "float",
	KindByte:     "byte",
	KindString:   "string",
	KindPointer:  "pointer",
	KindArray:    "array",
	KindStruct:   "struct",
	KindClass:    "class",
}

func (vk ValueKind) String() string {
	if vk >= 0 && int(vk) < len(valueKindNames) {
		return valueKindNames[vk]
	}

	return "<invalid kind>"
}

// -----------------------------------------------------------------------------

// Type is an identity-bearing type descriptor.  Every type created by a `Table`
// has an ID unique to that table; the predefined types have fixed IDs shared by
// all tables.  Types are never mutated after their declaration is complete:
// specializations are made by cloning.
type Type struct {
	ID   int
	Kind ValueKind
	Name string

	IsStruct     bool
	IsArray      bool
	IsClass      bool
	IsPredefined bool

	// PointerTo is the pointee type of a pointer type.
	PointerTo *Type

	// ElementType and Length describe a fixed-length array type.
	ElementType *Type
	Length      int

	// Func is the signature of a function type.
	Func *Signature

	// Members is the member table of a struct or class type.  It is shared
	// between a type and all of its clones.
	Members *MemberTable
}

// Signature is the signature of a function type.
type Signature struct {
	Params     []*Type
	ReturnType *Type

	// Builtin indicates that the function is implemented by the host and is
	// called by interrupt rather than directly.
	Builtin bool
}

// IsPointer returns whether this type is a pointer type.
func (t *Type) IsPointer() bool {
	return t.PointerTo != nil
}

// IsStructShaped returns whether values of this type have a field layout:
// whether it is either a struct or a class.
func (t *Type) IsStructShaped() bool {
	return t.IsStruct || t.IsClass
}

// IsAggregate returns whether values of this type are too large to be held in
// a register and are therefore always manipulated by address.
func (t *Type) IsAggregate() bool {
	return t.IsStructShaped() || t.IsArray
}

// IsNumeric returns whether this type is one of the arithmetic types.
func (t *Type) IsNumeric() bool {
	return t.Kind == KindInt || t.Kind == KindFloat || t.Kind == KindByte
}

// IsError returns whether this is the error type.
func (t *Type) IsError() bool {
	return t.Kind == KindError
}

// Equals returns whether two types are equal.  The value-kind tags must match.
// Struct and class types are then compared nominally by their ID; pointers by
// their pointee types; arrays by their element type and length; and functions
// by their signatures.
func (t *Type) Equals(other *Type) bool {
	if t == other {
		return true
	} else if t == nil || other == nil || t.Kind != other.Kind {
		return false
	}

	switch t.Kind {
	case KindStruct, KindClass:
		return t.ID == other.ID
	case KindPointer:
		return t.PointerTo.Equals(other.PointerTo)
	case KindArray:
		return t.Length == other.Length && t.ElementType.Equals(other.ElementType)
	case KindFunction:
		return t.Func.equals(other.Func)
	}

	return true
}

func (s *Signature) equals(other *Signature) bool {
	if s == nil || other == nil {
		return s == other
	}

	if len(s.Params) != len(other.Params) || !s.ReturnType.Equals(other.ReturnType) {
		return false
	}

	for i, param := range s.Params {
		if !param.Equals(other.Params[i]) {
			return false
		}
	}

	return true
}

// Repr returns the representative string for this type.
func (t *Type) Repr() string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind {
	case KindPointer:
		return "*" + t.PointerTo.Repr()
	case KindArray:
		return "[" + strconv.Itoa(t.Length) + "]" + t.ElementType.Repr()
	case KindFunction:
		sb := strings.Builder{}
		sb.WriteString("func(")
		for i, param := range t.Func.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(param.Repr())
		}
		sb.WriteString("): ")
		sb.WriteString(t.Func.ReturnType.Repr())
		return sb.String()
	}

	return t.Name
}

func (t *Type) String() string {
	return t.Repr()
}

// -----------------------------------------------------------------------------

// Member is a named member of a struct or class: a field or, for classes, a
// method.  The type of a method is its function type.
type Member struct {
	Name string
	Type *Type
}

// MemberTable is the ordered member table of a struct or class.  Fields are
// stored in declaration order which is also their layout order.
type MemberTable struct {
	Fields  []*Member
	Methods []*Member
}

// AddField appends a field to the table.  It returns false if a member by the
// same name already exists.
func (mt *MemberTable) AddField(name string, typ *Type) bool {
	if _, ok := mt.Lookup(name); ok {
		return false
	}

	mt.Fields = append(mt.Fields, &Member{Name: name, Type: typ})
	return true
}

// AddMethod appends a method to the table.  It returns false if a member by
// the same name already exists.
func (mt *MemberTable) AddMethod(name string, typ *Type) bool {
	if _, ok := mt.Lookup(name); ok {
		return false
	}

	mt.Methods = append(mt.Methods, &Member{Name: name, Type: typ})
	return true
}

// Field looks up a field by name.
func (mt *MemberTable) Field(name string) (*Member, bool) {
	for _, field := range mt.Fields {
		if field.Name == name {
			return field, true
		}
	}

	return nil, false
}

// Method looks up a method by name.
func (mt *MemberTable) Method(name string) (*Member, bool) {
	for _, method := range mt.Methods {
		if method.Name == name {
			return method, true
		}
	}

	return nil, false
}

// Lookup looks up a member of either kind by name.
func (mt *MemberTable) Lookup(name string) (*Member, bool) {
	if field, ok := mt.Field(name); ok {
		return field, true
	}

	return mt.Method(name)
}
