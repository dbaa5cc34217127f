package svgfilter

import (
	"image"
	"image/color"
	"testing"

	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// returns a source drawing a red square in the top left quarter,
// and a pointer to the number of calls
func redSquare() (SourceFunc, *int) {
	calls := 0
	return func(dst *image.RGBA) {
		calls++
		size := dst.Rect.Size()
		for y := 0; y < size.Y/2; y++ {
			for x := 0; x < size.X/2; x++ {
				dst.SetRGBA(x, y, color.RGBA{R: 0xff, A: 0xff})
			}
		}
	}, &calls
}

func TestSourceGraphicLazy(t *testing.T) {
	source, calls := redSquare()
	buf := NewImageBuffer(image.Pt(10, 10), svgpath.Identity, source)
	defer buf.Close()

	assert.Equal(t, 0, *calls)
	assert.False(t, buf.Contains(SourceGraphic))

	img := buf.Get(SourceGraphic)
	require.NotNil(t, img)
	assert.Equal(t, 1, *calls)
	assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(9, 9))

	buf.Get(SourceGraphic)
	buf.Get("")
	assert.Equal(t, 1, *calls, "source must be rendered once")

	buf.Clear()
	assert.False(t, buf.Contains(SourceGraphic))
	buf.Get(SourceAlpha)
	assert.Equal(t, 2, *calls, "source must be rendered again after Clear")
}

func TestRemoveReserved(t *testing.T) {
	source, _ := redSquare()
	buf := NewImageBuffer(image.Pt(4, 4), svgpath.Identity, source)
	defer buf.Close()

	for _, key := range reservedNames {
		buf.Get(key)
		assert.False(t, buf.Remove(key), key)
		assert.True(t, buf.Contains(key), key)
	}
	assert.False(t, buf.Remove("unknown"))

	buf.Set("blurred", buf.NewImage())
	assert.True(t, buf.Contains("blurred"))
	assert.True(t, buf.Remove("blurred"))
	assert.False(t, buf.Contains("blurred"))
}

func TestLastResult(t *testing.T) {
	source, _ := redSquare()
	buf := NewImageBuffer(image.Pt(4, 4), svgpath.Identity, source)
	defer buf.Close()

	assert.Same(t, buf.Get(SourceGraphic), buf.Result(), "without writes, the result is the source")

	a := buf.NewImage()
	buf.Set("a", a)
	assert.Same(t, a, buf.Get(""))
	assert.Same(t, a, buf.Get("missing"), "unknown inputs default to the last result")

	b := buf.NewImage()
	buf.Set("", b)
	assert.Same(t, b, buf.Result())
	assert.Same(t, a, buf.Get("a"))
}

func TestSourceAlpha(t *testing.T) {
	source, _ := redSquare()
	buf := NewImageBuffer(image.Pt(4, 4), svgpath.Identity, source)
	defer buf.Close()

	alpha := buf.Get(SourceAlpha)
	assert.Equal(t, color.RGBA{A: 0xff}, alpha.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{}, alpha.RGBAAt(3, 3))
}
