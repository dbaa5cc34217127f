package svgfilter

import (
	"image"
	"math"
)

// ColorMatrixType selects how the matrix of a ColorMatrix is built.
type ColorMatrixType uint8

const (
	Matrix ColorMatrixType = iota
	Saturate
	HueRotate
	LuminanceToAlpha
)

func (t ColorMatrixType) String() string {
	switch t {
	case Matrix:
		return "matrix"
	case Saturate:
		return "saturate"
	case HueRotate:
		return "hueRotate"
	case LuminanceToAlpha:
		return "luminanceToAlpha"
	default:
		return "<unknown ColorMatrixType>"
	}
}

// ColorMatrix applies a 4x5 linear transform to the colors of its input.
type ColorMatrix struct {
	In, Result string
	Type       ColorMatrixType
	// Values is either a single number (saturate, hueRotate)
	// or up to 20 coefficients; missing coefficients are zero.
	Values []float64
}

// alphaOnly keeps the alpha channel and blackens the colors
var alphaOnly = [20]float64{
	0, 0, 0, 0, 0,
	0, 0, 0, 0, 0,
	0, 0, 0, 0, 0,
	0, 0, 0, 1, 0,
}

// Coefficients returns the 4x5 matrix, in row-major order.
func (cm ColorMatrix) Coefficients() [20]float64 {
	var m [20]float64
	switch cm.Type {
	case HueRotate:
		value := 0.
		if len(cm.Values) > 0 {
			value = cm.Values[0]
		}
		sinV, cosV := math.Sincos(value * math.Pi / 180)
		m = [20]float64{
			0.213 + cosV*0.787 - sinV*0.213, 0.715 - cosV*0.715 - sinV*0.715, 0.072 - cosV*0.072 + sinV*0.928, 0, 0,
			0.213 - cosV*0.213 + sinV*0.143, 0.715 + cosV*0.285 + sinV*0.140, 0.072 - cosV*0.072 - sinV*0.283, 0, 0,
			0.213 - cosV*0.213 - sinV*0.787, 0.715 - cosV*0.715 + sinV*0.715, 0.072 + cosV*0.928 + sinV*0.072, 0, 0,
			0, 0, 0, 1, 0,
		}
	case LuminanceToAlpha:
		m = [20]float64{
			0, 0, 0, 0, 0,
			0, 0, 0, 0, 0,
			0, 0, 0, 0, 0,
			0.2125, 0.7154, 0.0721, 0, 0,
		}
	case Saturate:
		value := 1.
		if len(cm.Values) > 0 {
			value = cm.Values[0]
		}
		m = [20]float64{
			0.213 + 0.787*value, 0.715 - 0.715*value, 0.072 - 0.072*value, 0, 0,
			0.213 - 0.213*value, 0.715 + 0.285*value, 0.072 - 0.072*value, 0, 0,
			0.213 - 0.213*value, 0.715 - 0.715*value, 0.072 + 0.928*value, 0, 0,
			0, 0, 0, 1, 0,
		}
	default:
		copy(m[:], cm.Values)
	}
	return m
}

func (cm ColorMatrix) Apply(buf *ImageBuffer) {
	input := buf.Get(cm.In)
	buf.Set(cm.Result, applyColorMatrix(input, cm.Coefficients()))
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// applyColorMatrix returns a new image. The matrix operates on
// straight alpha colors in [0, 1], offsets included.
func applyColorMatrix(src *image.RGBA, m [20]float64) *image.RGBA {
	dst := newImage(src.Rect.Size())
	w, h := src.Rect.Dx(), src.Rect.Dy()
	for y := 0; y < h; y++ {
		srcRow := src.Pix[y*src.Stride : y*src.Stride+4*w]
		dstRow := dst.Pix[y*dst.Stride : y*dst.Stride+4*w]
		for x := 0; x < 4*w; x += 4 {
			a := float64(srcRow[x+3]) / 255
			var r, g, b float64
			if a > 0 {
				// Un-premultiply
				r = float64(srcRow[x]) / 255 / a
				g = float64(srcRow[x+1]) / 255 / a
				b = float64(srcRow[x+2]) / 255 / a
			}
			nr := clampUnit(m[0]*r + m[1]*g + m[2]*b + m[3]*a + m[4])
			ng := clampUnit(m[5]*r + m[6]*g + m[7]*b + m[8]*a + m[9])
			nb := clampUnit(m[10]*r + m[11]*g + m[12]*b + m[13]*a + m[14])
			na := clampUnit(m[15]*r + m[16]*g + m[17]*b + m[18]*a + m[19])
			// Re-premultiply for storage
			dstRow[x] = uint8(math.Round(nr * na * 255))
			dstRow[x+1] = uint8(math.Round(ng * na * 255))
			dstRow[x+2] = uint8(math.Round(nb * na * 255))
			dstRow[x+3] = uint8(math.Round(na * 255))
		}
	}
	return dst
}
