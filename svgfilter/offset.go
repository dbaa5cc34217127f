package svgfilter

import (
	"math"

	"github.com/anthonynsimon/bild/transform"
)

// Offset translates its input by (DX, DY), given in user space.
type Offset struct {
	In, Result string
	DX, DY     float64
}

func (o Offset) Apply(buf *ImageBuffer) {
	input := buf.Get(o.In)
	dx, dy := buf.Transform.TransformVector(o.DX, o.DY)
	// positive y moves up for Translate
	buf.Set(o.Result, transform.Translate(input, int(math.Round(dx)), -int(math.Round(dy))))
}
