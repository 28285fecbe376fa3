package builtins

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/PeterBassett/Compiler-sub001/types"
)

// entry is a catalog entry: everything but the interrupt index of a builtin.
type entry struct {
	params []*types.Type
	ret    *types.Type
	eval   func(out io.Writer, rng *rand.Rand) Evaluator
}

// catalogOrder is the order builtins appear in the full catalog.
var catalogOrder = []string{"rnd", "printi", "printf", "prints", "sqrt"}

var catalog = map[string]entry{
	// rnd(lower, upper) returns a random integer in the inclusive range.
	"rnd": {
		params: []*types.Type{types.Int, types.Int},
		ret:    types.Int,
		eval: func(_ io.Writer, rng *rand.Rand) Evaluator {
			return func(args []interface{}) interface{} {
				lower, upper := args[0].(int32), args[1].(int32)
				if upper <= lower {
					return lower
				}

				return lower + int32(rng.Int63n(int64(upper)-int64(lower)+1))
			}
		},
	},
	"printi": {
		params: []*types.Type{types.Int},
		ret:    types.Unit,
		eval: func(out io.Writer, _ *rand.Rand) Evaluator {
			return func(args []interface{}) interface{} {
				fmt.Fprintln(out, args[0].(int32))
				return nil
			}
		},
	},
	"printf": {
		params: []*types.Type{types.Float},
		ret:    types.Unit,
		eval: func(out io.Writer, _ *rand.Rand) Evaluator {
			return func(args []interface{}) interface{} {
				fmt.Fprintln(out, args[0].(float64))
				return nil
			}
		},
	},
	"prints": {
		params: []*types.Type{types.String},
		ret:    types.Unit,
		eval: func(out io.Writer, _ *rand.Rand) Evaluator {
			return func(args []interface{}) interface{} {
				fmt.Fprintln(out, args[0].(string))
				return nil
			}
		},
	},
	"sqrt": {
		params: []*types.Type{types.Float},
		ret:    types.Float,
		eval: func(_ io.Writer, _ *rand.Rand) Evaluator {
			return func(args []interface{}) interface{} {
				return math.Sqrt(args[0].(float64))
			}
		},
	},
}

// CatalogNames returns the names of all the builtins in the standard catalog.
func CatalogNames() []string {
	return append([]string(nil), catalogOrder...)
}

// Default returns the default registry: it contains only `rnd`.
func Default() *Registry {
	r, _ := Select(io.Discard, "rnd")
	return r
}

// Catalog returns a registry containing every builtin of the standard catalog.
// Builtins that print write to `out`.
func Catalog(out io.Writer) *Registry {
	r, _ := Select(out, catalogOrder...)
	return r
}

// Select builds a registry from the named catalog builtins.  The interrupt
// index of each builtin is its position in `names`.
func Select(out io.Writer, names ...string) (*Registry, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	r := NewRegistry()
	for _, name := range names {
		e, ok := catalog[name]
		if !ok {
			return nil, fmt.Errorf("unknown builtin: `%s`", name)
		}

		if _, err := r.Add(name, e.params, e.ret, e.eval(out, rng)); err != nil {
			return nil, err
		}
	}

	return r, nil
}
