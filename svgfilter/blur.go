package svgfilter

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/convolution"
	"github.com/disintegration/imaging"
)

// GaussianBlur blurs its input. StdDeviation has zero, one (used for both axis)
// or two (x then y) components, in user space.
type GaussianBlur struct {
	In, Result   string
	StdDeviation []float64
}

// Deviations returns the x and y standard deviations, in user space.
func (g GaussianBlur) Deviations() (sx, sy float64) {
	switch len(g.StdDeviation) {
	case 0:
		return 0, 0
	case 1:
		return g.StdDeviation[0], g.StdDeviation[0]
	default:
		return g.StdDeviation[0], g.StdDeviation[1]
	}
}

func (g GaussianBlur) Apply(buf *ImageBuffer) {
	input := buf.Get(g.In)
	sx, sy := g.Deviations()
	if sx <= 0 && sy <= 0 {
		// pass through, aliasing the input
		buf.Set(g.Result, input)
		return
	}
	// deviations are scaled to buffer pixels
	dx, dy := buf.Transform.TransformVector(sx, 0)
	sx = math.Hypot(dx, dy)
	dx, dy = buf.Transform.TransformVector(0, sy)
	sy = math.Hypot(dx, dy)
	buf.Set(g.Result, blur(input, sx, sy))
}

// blur returns a new image. An isotropic blur uses the
// imaging package; otherwise, two 1D convolutions are applied.
func blur(src *image.RGBA, sx, sy float64) *image.RGBA {
	if sx == sy {
		return clone.AsRGBA(imaging.Blur(src, sx))
	}
	out := src
	if sx > 0 {
		out = convolution.Convolve(out, gaussianKernel(sx, true), nil)
	}
	if sy > 0 {
		out = convolution.Convolve(out, gaussianKernel(sy, false), nil)
	}
	return out
}

// gaussianKernel returns a normalized 1D kernel, laid
// out horizontally or vertically.
func gaussianKernel(sigma float64, horizontal bool) convolution.Matrix {
	radius := int(math.Ceil(sigma * 3.0))
	size := 2*radius + 1
	var k *convolution.Kernel
	if horizontal {
		k = convolution.NewKernel(size, 1)
	} else {
		k = convolution.NewKernel(1, size)
	}
	for i := 0; i < size; i++ {
		x := float64(i - radius)
		k.Matrix[i] = math.Exp(-(x * x) / (2 * sigma * sigma))
	}
	return k.Normalized()
}
