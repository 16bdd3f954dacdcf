package gen

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGenerator(t *testing.T, opts ...Opt) *Generator {
	t.Helper()

	g, err := New(opts...)
	require.NoError(t, err)
	return g
}

func output(t *testing.T, g *Generator) string {
	t.Helper()

	data, err := g.Buf()
	require.NoError(t, err)
	return string(data)
}

func TestAtoms(t *testing.T) {
	tests := []struct {
		name     string
		generate func(g *Generator) error
		expected string
	}{
		{"null", func(g *Generator) error { return g.Null() }, "null"},
		{"true", func(g *Generator) error { return g.Bool(true) }, "true"},
		{"false", func(g *Generator) error { return g.Bool(false) }, "false"},
		{"integer", func(g *Generator) error { return g.Integer(-42) }, "-42"},
		{"number", func(g *Generator) error { return g.Number([]byte("1.5e10")) }, "1.5e10"},
		{"string", func(g *Generator) error { return g.String([]byte("hi")) }, `"hi"`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := newGenerator(t)
			require.NoError(t, tc.generate(g))
			assert.Equal(t, tc.expected, output(t, g))
		})
	}
}

func TestDoubleFormatting(t *testing.T) {
	g := newGenerator(t)
	require.NoError(t, g.Double(1))
	// a double with no fraction must re-parse as a double
	assert.Equal(t, "1.0", output(t, g))

	g = newGenerator(t)
	require.NoError(t, g.Double(3.5))
	assert.Equal(t, "3.5", output(t, g))
}

func TestNonFiniteDoubleRejected(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		g := newGenerator(t)
		assert.ErrorIs(t, g.Double(v), ErrInvalidNumber)
		assert.ErrorIs(t, g.Null(), ErrInErrorState)
	}
}

func TestCompactMap(t *testing.T) {
	g := newGenerator(t)

	require.NoError(t, g.MapOpen())
	require.NoError(t, g.String([]byte("a")))
	require.NoError(t, g.Integer(1))
	require.NoError(t, g.String([]byte("b")))
	require.NoError(t, g.ArrayOpen())
	require.NoError(t, g.Bool(true))
	require.NoError(t, g.Null())
	require.NoError(t, g.ArrayClose())
	require.NoError(t, g.MapClose())

	assert.Equal(t, `{"a":1,"b":[true,null]}`, output(t, g))
}

func TestBeautifiedMap(t *testing.T) {
	g := newGenerator(t, Beautify(), Indent("  "))

	require.NoError(t, g.MapOpen())
	require.NoError(t, g.String([]byte("k")))
	require.NoError(t, g.Integer(42))
	require.NoError(t, g.MapClose())

	assert.Equal(t, "{\n  \"k\": 42\n}\n", output(t, g))
}

func TestKeysMustBeStrings(t *testing.T) {
	g := newGenerator(t)

	require.NoError(t, g.MapOpen())
	assert.ErrorIs(t, g.Integer(1), ErrKeysMustBeStrings)

	// the error state is sticky: every further call fails
	assert.ErrorIs(t, g.String([]byte("k")), ErrInErrorState)
	assert.ErrorIs(t, g.MapClose(), ErrInErrorState)
}

func TestGenerationComplete(t *testing.T) {
	g := newGenerator(t)

	require.NoError(t, g.Integer(1))
	assert.ErrorIs(t, g.Integer(2), ErrGenerationComplete)
	assert.ErrorIs(t, g.MapOpen(), ErrGenerationComplete)
}

func TestMaxDepthExceeded(t *testing.T) {
	g := newGenerator(t)

	var err error
	for i := 0; i < MaxDepth+1; i++ {
		if err = g.ArrayOpen(); err != nil {
			break
		}
	}
	assert.ErrorIs(t, err, ErrMaxDepthExceeded)
	assert.ErrorIs(t, g.ArrayOpen(), ErrInErrorState)
}

func TestStringValidation(t *testing.T) {
	g := newGenerator(t, ValidateUTF8())
	assert.ErrorIs(t, g.String([]byte("bad \xc3\x28")), ErrInvalidString)

	// without the option the bytes pass through
	g = newGenerator(t)
	require.NoError(t, g.String([]byte("bad \xc3\x28")))
}

func TestEscapeSolidus(t *testing.T) {
	g := newGenerator(t, EscapeSolidus())
	require.NoError(t, g.String([]byte("a/b")))
	assert.Equal(t, `"a\/b"`, output(t, g))
}

func TestStringEscaping(t *testing.T) {
	g := newGenerator(t)
	require.NoError(t, g.String([]byte("a\nb\"c\x01")))
	assert.Equal(t, `"a\nb\"c\u0001"`, output(t, g))
}

func TestPrintCallbackSink(t *testing.T) {
	g := newGenerator(t)

	var sink []byte
	g.PrintCallback(func(b []byte) {
		sink = append(sink, b...)
	})

	require.NoError(t, g.Integer(7))
	assert.Equal(t, "7", string(sink))

	// with an external sink there is no internal buffer to get
	_, err := g.Buf()
	assert.ErrorIs(t, err, ErrNoBuf)
}

func TestClearKeepsState(t *testing.T) {
	g := newGenerator(t)

	require.NoError(t, g.ArrayOpen())
	require.NoError(t, g.Integer(1))
	g.Clear()
	require.NoError(t, g.Integer(2))
	require.NoError(t, g.ArrayClose())

	// the separator proves generation state survived the clear
	assert.Equal(t, ",2]", output(t, g))
}

func TestResetWithSeparator(t *testing.T) {
	g := newGenerator(t)

	require.NoError(t, g.Integer(1))
	g.Reset("\n")
	require.NoError(t, g.Integer(2))

	// reset does not clear the buffer
	assert.Equal(t, "1\n2", output(t, g))
}

func TestDoubleCloseIsRejected(t *testing.T) {
	g := newGenerator(t)

	require.NoError(t, g.MapOpen())
	require.NoError(t, g.MapClose())
	assert.ErrorIs(t, g.MapClose(), ErrGenerationComplete)
}
