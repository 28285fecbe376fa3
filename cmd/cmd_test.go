package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PeterBassett/Compiler-sub001/build"
)

func TestParseProfile(t *testing.T) {
	out := new(strings.Builder)
	opts, err := parseProfile([]byte(`
[generator]
comments = true
blank-lines = true

[builtins]
enabled = ["prints", "rnd"]

[evaluator]
step-limit = 500
`), out)
	require.NoError(t, err)

	assert.True(t, opts.Generator.Comments)
	assert.True(t, opts.Generator.BlankLines)
	assert.False(t, opts.Generator.OptimiseForSize)
	assert.Equal(t, 500, opts.StepLimit)

	prints, ok := opts.Generator.Builtins.Lookup("prints")
	require.True(t, ok)
	assert.Equal(t, 0, prints.Interrupt)

	rnd, ok := opts.Generator.Builtins.Lookup("rnd")
	require.True(t, ok)
	assert.Equal(t, 1, rnd.Interrupt)

	prints.Eval([]interface{}{"hello"})
	assert.Equal(t, "hello\n", out.String())
}

func TestEmptyProfileUsesDefaults(t *testing.T) {
	opts, err := parseProfile(nil, nil)
	require.NoError(t, err)

	assert.False(t, opts.Generator.Comments)
	assert.Equal(t, 0, opts.StepLimit)
	assert.Equal(t, 1, opts.Generator.Builtins.Len())

	_, ok := opts.Generator.Builtins.Lookup("rnd")
	assert.True(t, ok)
}

func TestProfileErrors(t *testing.T) {
	_, err := parseProfile([]byte(`[builtins]
enabled = ["rnd", "launch"]`), nil)
	assert.ErrorContains(t, err, "unknown builtin: `launch`")

	_, err = parseProfile([]byte(`[generator`), nil)
	assert.ErrorContains(t, err, "error parsing profile")

	_, err = parseProfile([]byte("[evaluator]\nstep-limit = -1"), nil)
	assert.ErrorContains(t, err, "must not be negative")

	_, err = loadProfile(filepath.Join(t.TempDir(), "missing.toml"), nil)
	assert.ErrorContains(t, err, "error loading profile")
}

func TestLoadTree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"source": "func main(): int { return 6 * 7; }",
		"declarations": [{
			"kind": "func", "name": "main",
			"returns": {"kind": "named", "name": "int"},
			"body": {"kind": "block", "stmts": [{
				"kind": "return",
				"value": {
					"kind": "binary", "op": "*",
					"left": {"kind": "literal", "lit": "int", "value": 6},
					"right": {"kind": "literal", "lit": "int", "value": 7}
				}
			}]}
		}]
	}`), 0644))

	unit, err := loadTree(path)
	require.NoError(t, err)
	assert.Equal(t, "func main(): int { return 6 * 7; }", unit.Source)

	res, err := build.Run(unit, build.Options{})
	require.NoError(t, err)
	assert.Equal(t, int32(42), res.Value)

	_, err = loadTree(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "error loading syntax tree")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"declarations": [{"kind": "bogus"}]}`), 0644))
	_, err = loadTree(bad)
	assert.ErrorContains(t, err, "error decoding syntax tree")
}
