package types

// Enumeration of the fixed IDs of the predefined types.
const (
	UnitID = iota
	NullID
	ErrorID
	BoolID
	IntID
	FloatID
	ByteID
	StringID

	firstUserID
)

// BuiltinFuncID is the ID given to the function types of builtin functions.
// These types belong to no table and are only ever compared structurally.
const BuiltinFuncID = -1

// The predefined types.
var (
	Unit   = &Type{ID: UnitID, Kind: KindUnit, Name: "unit", IsPredefined: true}
	Null   = &Type{ID: NullID, Kind: KindNull, Name: "null", IsPredefined: true}
	Error  = &Type{ID: ErrorID, Kind: KindError, Name: "<error>", IsPredefined: true}
	Bool   = &Type{ID: BoolID, Kind: KindBool, Name: "bool", IsPredefined: true}
	Int    = &Type{ID: IntID, Kind: KindInt, Name: "int", IsPredefined: true}
	Float  = &Type{ID: FloatID, Kind: KindFloat, Name: "float", IsPredefined: true}
	Byte   = &Type{ID: ByteID, Kind: KindByte, Name: "byte", IsPredefined: true}
	String = &Type{ID: StringID, Kind: KindString, Name: "string", IsPredefined: true}
)

// namedPredefined are the predefined types that can be named in source.
var namedPredefined = map[string]*Type{
	"unit":   Unit,
	"bool":   Bool,
	"int":    Int,
	"float":  Float,
	"byte":   Byte,
	"string": String,
}

// Lookup looks up a predefined type by the name it is written with in source.
func Lookup(name string) (*Type, bool) {
	t, ok := namedPredefined[name]
	return t, ok
}

// NewBuiltinFunction creates the function type of a builtin function.
func NewBuiltinFunction(params []*Type, ret *Type) *Type {
	return &Type{
		ID:   BuiltinFuncID,
		Kind: KindFunction,
		Name: "builtin",
		Func: &Signature{Params: params, ReturnType: ret, Builtin: true},
	}
}

// -----------------------------------------------------------------------------

// Table creates and owns all the non-predefined types of one compilation.  It
// is responsible for handing out unique type IDs.
type Table struct {
	nextID int

	// pointers caches pointer types by the ID of their pointee so that each
	// named type has only one pointer type.
	pointers map[int]*Type
}

// NewTable creates a new type table.
func NewTable() *Table {
	return &Table{nextID: firstUserID, pointers: make(map[int]*Type)}
}

func (tb *Table) newID() int {
	id := tb.nextID
	tb.nextID++
	return id
}

// NewStruct creates a new struct type with an empty member table.
func (tb *Table) NewStruct(name string) *Type {
	return &Type{
		ID:       tb.newID(),
		Kind:     KindStruct,
		Name:     name,
		IsStruct: true,
		Members:  &MemberTable{},
	}
}

// NewClass creates a new class type with an empty member table.
func (tb *Table) NewClass(name string) *Type {
	return &Type{
		ID:      tb.newID(),
		Kind:    KindClass,
		Name:    name,
		IsClass: true,
		Members: &MemberTable{},
	}
}

// NewPointer returns the pointer type to `to`.
func (tb *Table) NewPointer(to *Type) *Type {
	// Only types with a stable identity may be cached by ID.
	cacheable := to.ID != BuiltinFuncID && to.Kind != KindPointer && to.Kind != KindArray && to.Kind != KindFunction
	if cacheable {
		if pt, ok := tb.pointers[to.ID]; ok {
			return pt
		}
	}

	pt := &Type{
		ID:        tb.newID(),
		Kind:      KindPointer,
		PointerTo: to,
	}

	if cacheable {
		tb.pointers[to.ID] = pt
	}

	return pt
}

// NewArray creates a new fixed-length array type.
func (tb *Table) NewArray(elem *Type, length int) *Type {
	return &Type{
		ID:          tb.newID(),
		Kind:        KindArray,
		IsArray:     true,
		ElementType: elem,
		Length:      length,
	}
}

// NewFunction creates a new function type.
func (tb *Table) NewFunction(params []*Type, ret *Type) *Type {
	return &Type{
		ID:   tb.newID(),
		Kind: KindFunction,
		Func: &Signature{Params: params, ReturnType: ret},
	}
}

// Clone creates a copy of a type.  The clone keeps the ID of the original and
// shares its member table, but has its own signature so that it may be
// specialized without affecting the original.
func (tb *Table) Clone(t *Type) *Type {
	clone := *t
	if t.Func != nil {
		sig := *t.Func
		sig.Params = append([]*Type(nil), t.Func.Params...)
		clone.Func = &sig
	}

	return &clone
}

// CloneWithReturn clones a function type and sets the return type of the clone.
func (tb *Table) CloneWithReturn(fn *Type, ret *Type) *Type {
	clone := tb.Clone(fn)
	clone.Func.ReturnType = ret
	return clone
}
