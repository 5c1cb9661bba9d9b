package font

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFaceMetrics(t *testing.T) {
	face := Default()
	assert.Equal(t, "Go Regular", face.Name())
	assert.Equal(t, 2048, face.UnitsPerEm())

	m := face.Advance('m')
	i := face.Advance('i')
	assert.Greater(t, m, i, "m is wider than i in a proportional font")
	assert.Greater(t, m, 0.0)
	assert.Less(t, m, 1.5)

	assert.InDelta(t, (m+i)*10, face.Measure("mi", 10), 1e-9)
	assert.Equal(t, 0.0, face.Measure("", 10))

	lh := face.LineHeight(16)
	assert.Greater(t, lh, 12.0)
	assert.Less(t, lh, 32.0)
	assert.Greater(t, face.Ascent(16), 0.0)
}

func TestAdvanceIsCached(t *testing.T) {
	face := Default()
	first := face.Advance('x')
	assert.Equal(t, first, face.Advance('x'))
	assert.Len(t, face.advances, 1)
}

func TestFontFaceCachedPerSize(t *testing.T) {
	face := Default()
	a, err := face.FontFace(12)
	require.NoError(t, err)
	b, err := face.FontFace(12)
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("junk", []byte("not a font"))
	assert.Error(t, err)
}

func TestFindEmptyFamily(t *testing.T) {
	_, err := Find("  ")
	assert.ErrorIs(t, err, ErrNoFont)
}
