package report

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticsCounts(t *testing.T) {
	d := NewDiagnostics("")
	assert.True(t, d.ShouldProceed())

	d.Warn(KindType, nil, "unused %s", "x")
	assert.True(t, d.ShouldProceed())

	d.Error(KindName, &TextSpan{}, "undefined symbol: `%s`", "y")
	assert.False(t, d.ShouldProceed())
	assert.Equal(t, 2, d.Len())
	assert.Equal(t, 1, d.ErrorCount())
	assert.Equal(t, 1, d.WarningCount())

	entries := d.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, SeverityWarning, entries[0].Severity)
	assert.Equal(t, "undefined symbol: `y`", entries[1].Message)
	assert.Equal(t, "1:1: Name error: undefined symbol: `y`", entries[1].String())
}

func TestSpanText(t *testing.T) {
	d := NewDiagnostics("func main() {\n  return 1 + x;\n}")

	assert.Equal(t, "1 + x", d.SpanText(&TextSpan{StartLine: 1, StartCol: 9, EndLine: 1, EndCol: 13}))
	assert.Equal(t, "{\n  re", d.SpanText(&TextSpan{StartLine: 0, StartCol: 12, EndLine: 1, EndCol: 3}))
	assert.Equal(t, "", d.SpanText(&TextSpan{StartLine: 5, EndLine: 6}))
	assert.Equal(t, "", d.SpanText(nil))
}

func TestNewSpanOver(t *testing.T) {
	a := &TextSpan{StartLine: 1, StartCol: 2, EndLine: 1, EndCol: 4}
	b := &TextSpan{StartLine: 3, StartCol: 0, EndLine: 3, EndCol: 7}

	assert.Equal(t, &TextSpan{StartLine: 1, StartCol: 2, EndLine: 3, EndCol: 7}, NewSpanOver(a, b))
	assert.Same(t, a, NewSpanOver(a, nil))
	assert.Same(t, b, NewSpanOver(nil, b))
	assert.Equal(t, "<unknown>", (*TextSpan)(nil).String())
}

func TestCatchICE(t *testing.T) {
	run := func() (err error) {
		defer CatchICE(&err)
		ICE("bad node kind: %d", 7)
		return nil
	}

	err := run()
	require.Error(t, err)

	var ice *InternalError
	require.True(t, errors.As(err, &ice))
	assert.Equal(t, "bad node kind: 7", ice.Message)
}

func TestCatchICERepanicsForeignPanics(t *testing.T) {
	run := func() (err error) {
		defer CatchICE(&err)
		panic("not an ICE")
	}

	assert.PanicsWithValue(t, "not an ICE", func() { _ = run() })
}

func TestParseLogLevel(t *testing.T) {
	for i, name := range LogLevelNames() {
		level, err := ParseLogLevel(name)
		require.NoError(t, err)
		assert.Equal(t, i, level)
	}

	_, err := ParseLogLevel("loud")
	assert.Error(t, err)
}
