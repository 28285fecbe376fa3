package common

import "github.com/PeterBassett/Compiler-sub001/types"

// VariableSymbol represents a bound variable: a global, a local or a function
// parameter.  Variable symbols are created once when the variable is bound and
// are never modified thereafter.
type VariableSymbol struct {
	// The name of the variable.
	Name string

	// Whether or not the variable may be assigned to after its declaration.
	ReadOnly bool

	// The type of the value stored in the variable.
	Type *types.Type

	// Whether the variable lives for the program's lifetime.
	IsGlobal bool

	// Whether the variable is a function parameter.
	IsParameter bool
}

// NewVariableSymbol creates a new variable symbol.
func NewVariableSymbol(name string, readOnly bool, typ *types.Type, isGlobal, isParameter bool) *VariableSymbol {
	return &VariableSymbol{
		Name:        name,
		ReadOnly:    readOnly,
		Type:        typ,
		IsGlobal:    isGlobal,
		IsParameter: isParameter,
	}
}

// Identifier is the result of looking up a name: a name, the type of the value
// it denotes and, if it denotes a variable, its variable symbol.  Identifiers
// for functions have no symbol.  Identifiers are immutable.
type Identifier struct {
	Name   string
	Type   *types.Type
	Symbol *VariableSymbol
}

// NewIdentifier creates a new identifier.
func NewIdentifier(name string, typ *types.Type, sym *VariableSymbol) *Identifier {
	return &Identifier{Name: name, Type: typ, Symbol: sym}
}

// Undefined is the identifier returned by a failed lookup.
var Undefined = &Identifier{Name: "<undefined>", Type: types.Error}

// IsUndefined returns whether the identifier is the `Undefined` sentinel.
func (id *Identifier) IsUndefined() bool {
	return id == Undefined
}

// IsVariable returns whether the identifier denotes a variable.
func (id *Identifier) IsVariable() bool {
	return id.Symbol != nil
}

// IsFunction returns whether the identifier denotes a declared or builtin
// function rather than a variable holding a function.
func (id *Identifier) IsFunction() bool {
	return id.Symbol == nil && id.Type.Kind == types.KindFunction
}

// IsBuiltin returns whether the identifier denotes a builtin function.
func (id *Identifier) IsBuiltin() bool {
	return id.IsFunction() && id.Type.Func.Builtin
}
