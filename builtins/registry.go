package builtins

import (
	"fmt"

	"github.com/PeterBassett/Compiler-sub001/types"
)

// Evaluator is the host implementation of a builtin function.  It receives the
// argument values in declaration order: `int32` for ints, `float64` for
// floats, `uint8` for bytes, `bool` for bools and `string` for strings.  It
// returns the result value or nil for `unit` functions.
type Evaluator func(args []interface{}) interface{}

// Function is a builtin function.  Builtins are invoked by interrupt: their
// interrupt index is their position in the registry.
type Function struct {
	Name      string
	Type      *types.Type
	Interrupt int
	Eval      Evaluator
}

// Registry is a table of builtin functions indexed both by name and by
// interrupt index.  A registry is only modified while it is being set up.
type Registry struct {
	byName  map[string]*Function
	byIndex []*Function
}

// NewRegistry creates a new, empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Function)}
}

// Add adds a new builtin function.  Its interrupt index is the number of
// functions added before it.
func (r *Registry) Add(name string, params []*types.Type, ret *types.Type, eval Evaluator) (*Function, error) {
	if _, ok := r.byName[name]; ok {
		return nil, fmt.Errorf("builtin `%s` defined multiple times", name)
	}

	fn := &Function{
		Name:      name,
		Type:      types.NewBuiltinFunction(params, ret),
		Interrupt: len(r.byIndex),
		Eval:      eval,
	}

	r.byName[name] = fn
	r.byIndex = append(r.byIndex, fn)
	return fn, nil
}

// MustAdd is like `Add` but panics if the function is defined twice.
func (r *Registry) MustAdd(name string, params []*types.Type, ret *types.Type, eval Evaluator) *Function {
	fn, err := r.Add(name, params, ret, eval)
	if err != nil {
		panic(err)
	}

	return fn
}

// Lookup looks up a builtin by name.
func (r *Registry) Lookup(name string) (*Function, bool) {
	fn, ok := r.byName[name]
	return fn, ok
}

// ByInterrupt looks up a builtin by its interrupt index.
func (r *Registry) ByInterrupt(index int) (*Function, bool) {
	if index < 0 || index >= len(r.byIndex) {
		return nil, false
	}

	return r.byIndex[index], true
}

// Functions returns all the builtins in interrupt order.
func (r *Registry) Functions() []*Function {
	return r.byIndex
}

// Len returns the number of builtins.
func (r *Registry) Len() int {
	return len(r.byIndex)
}
