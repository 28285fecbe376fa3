package builtins

import (
	"bytes"
	"testing"

	"github.com/PeterBassett/Compiler-sub001/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()
	require.Equal(t, 1, r.Len())

	rnd, ok := r.Lookup("rnd")
	require.True(t, ok)
	assert.Equal(t, 0, rnd.Interrupt)
	assert.True(t, rnd.Type.Func.Builtin)
	assert.Equal(t, []*types.Type{types.Int, types.Int}, rnd.Type.Func.Params)
	assert.Same(t, types.Int, rnd.Type.Func.ReturnType)

	byIndex, ok := r.ByInterrupt(0)
	require.True(t, ok)
	assert.Same(t, rnd, byIndex)

	_, ok = r.ByInterrupt(1)
	assert.False(t, ok)
}

func TestRndRange(t *testing.T) {
	rnd, _ := Default().Lookup("rnd")

	assert.Equal(t, int32(5), rnd.Eval([]interface{}{int32(5), int32(5)}))
	for i := 0; i < 100; i++ {
		n := rnd.Eval([]interface{}{int32(-2), int32(3)}).(int32)
		assert.True(t, -2 <= n && n <= 3, "%d out of range", n)
	}
}

func TestCatalog(t *testing.T) {
	out := &bytes.Buffer{}
	r := Catalog(out)
	assert.Equal(t, len(CatalogNames()), r.Len())

	printi, ok := r.Lookup("printi")
	require.True(t, ok)
	assert.Equal(t, 1, printi.Interrupt)
	assert.Nil(t, printi.Eval([]interface{}{int32(42)}))

	prints, _ := r.Lookup("prints")
	prints.Eval([]interface{}{"hello"})
	assert.Equal(t, "42\nhello\n", out.String())

	sqrt, _ := r.Lookup("sqrt")
	assert.Equal(t, 3.0, sqrt.Eval([]interface{}{9.0}))
}

func TestSelect(t *testing.T) {
	r, err := Select(&bytes.Buffer{}, "sqrt", "rnd")
	require.NoError(t, err)

	sqrt, _ := r.Lookup("sqrt")
	rnd, _ := r.Lookup("rnd")
	assert.Equal(t, 0, sqrt.Interrupt)
	assert.Equal(t, 1, rnd.Interrupt)

	_, err = Select(&bytes.Buffer{}, "rnd", "bogus")
	assert.Error(t, err)

	_, err = Select(&bytes.Buffer{}, "rnd", "rnd")
	assert.Error(t, err)
}

func TestCustomBuiltin(t *testing.T) {
	r := NewRegistry()
	count := 0
	tick := r.MustAdd("tick", nil, types.Int, func([]interface{}) interface{} {
		count++
		return int32(count)
	})

	assert.Equal(t, int32(1), tick.Eval(nil))
	assert.Panics(t, func() { r.MustAdd("tick", nil, types.Int, nil) })
}
