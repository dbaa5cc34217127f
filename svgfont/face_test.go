package svgfont

import (
	"testing"

	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func regularFace(t *testing.T, size float64) *Face {
	t.Helper()
	face, err := Default().NewFace("sans-serif", Style{}, size)
	require.NoError(t, err)
	return face
}

func TestMetrics(t *testing.T) {
	face := regularFace(t, 16)
	assert.Equal(t, 16., face.Size())
	assert.Greater(t, face.Ascent(), 0.)
	assert.Greater(t, face.Descent(), 0.)
	assert.Less(t, face.Ascent(), 2*16.)

	big := regularFace(t, 32)
	assert.InDelta(t, 2*face.Ascent(), big.Ascent(), 0.1)
}

func TestMeasure(t *testing.T) {
	face := regularFace(t, 20)

	w, h := face.MeasureString("a")
	chars := face.MeasureCharacters("a")
	require.Len(t, chars, 1)
	assert.InDelta(t, w, chars[0].W, 1e-9)
	assert.InDelta(t, face.Ascent()+face.Descent(), h, 1e-9)

	chars = face.MeasureCharacters("héllo")
	require.Len(t, chars, 5)
	x := 0.
	for _, c := range chars {
		assert.Equal(t, x, c.X)
		assert.Equal(t, -face.Ascent(), c.Y)
		x += c.W
	}

	w, _ = face.MeasureString("")
	assert.Equal(t, 0., w)
}

func TestAppendString(t *testing.T) {
	face := regularFace(t, 20)

	var path svgpath.Path
	face.AppendString(&path, " ", svgpath.Point{})
	assert.True(t, path.IsEmpty(), "space has no outline")

	origin := svgpath.Point{X: 10, Y: 50}
	face.AppendString(&path, "Hg", origin)
	require.False(t, path.IsEmpty())

	bounds := path.Bounds()
	assert.GreaterOrEqual(t, bounds.X, origin.X-1)
	assert.GreaterOrEqual(t, bounds.Y, origin.Y-face.Ascent()-1)
	assert.LessOrEqual(t, bounds.Bottom(), origin.Y+face.Descent()+1)
	assert.Less(t, bounds.Top(), origin.Y, "glyphs are drawn above the baseline")
	assert.Greater(t, bounds.Bottom(), origin.Y, "g descends below the baseline")
	w, _ := face.MeasureString("Hg")
	assert.LessOrEqual(t, bounds.Right(), origin.X+w+1)
}

func TestLookup(t *testing.T) {
	c := NewCollection()
	mono, err := c.Lookup("monospace", Style{})
	require.NoError(t, err)

	f, err := c.Lookup(`"Unknown Font", Monospace`, Style{})
	require.NoError(t, err)
	assert.Same(t, mono, f)

	fallback, err := c.Lookup("Unknown Font", Style{})
	require.NoError(t, err)
	sans, _ := c.Lookup("sans-serif", Style{})
	assert.Same(t, sans, fallback)

	bold, err := c.Lookup("sans-serif", Style{Bold: true})
	require.NoError(t, err)
	assert.NotSame(t, sans, bold)
}

func TestRegister(t *testing.T) {
	c := NewCollection()
	assert.Error(t, c.Register("broken", Style{}, []byte("not a font")))

	require.NoError(t, c.Register("My Font", Style{}, goregular.TTF))
	f, err := c.Lookup("my font", Style{Italic: true})
	require.NoError(t, err)
	assert.NotNil(t, f)
}
