package svgrender

import (
	"image"
	"image/color"

	"github.com/benoitkugler/svgrender/svgpath"
)

// Brush is the resolved form of a paint, ready to be drawn.
// It is one of SolidBrush, *LinearBrush, *RadialBrush, *PatternBrush.
type Brush interface {
	isBrush()
}

func (SolidBrush) isBrush()    {}
func (*LinearBrush) isBrush()  {}
func (*RadialBrush) isBrush()  {}
func (*PatternBrush) isBrush() {}

// SolidBrush is a plain color; opacity is included in the alpha channel.
type SolidBrush struct {
	Color color.NRGBA
}

// Spread is the gradient behavior outside [0, 1].
type Spread uint8

const (
	PadSpread Spread = iota
	ReflectSpread
	RepeatSpread
)

// BrushStop is a resolved gradient stop, with an offset in [0, 1].
// Opacity is included in the alpha channel.
type BrushStop struct {
	Offset float64
	Color  color.NRGBA
}

// LinearBrush is a linear gradient between two points in user space.
type LinearBrush struct {
	Start, End svgpath.Point
	Stops      []BrushStop
	Spread     Spread
}

// RadialBrush is a radial gradient. Center, Focal and Radius
// are mapped by Matrix to user space.
type RadialBrush struct {
	Center, Focal svgpath.Point
	Radius        float64
	Matrix        svgpath.Matrix2D
	Stops         []BrushStop
	Spread        Spread
}

// PatternBrush repeats a tile. Matrix maps tile pixels to user space.
type PatternBrush struct {
	Tile    *image.RGBA
	Matrix  svgpath.Matrix2D
	Opacity float64
}
