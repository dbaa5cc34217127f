package svgfilter

import (
	"image"

	"golang.org/x/image/draw"
)

// Merge composites its inputs, in order, with the
// source over operator.
type Merge struct {
	Inputs []string
	Result string
}

func (m Merge) Apply(buf *ImageBuffer) {
	if len(m.Inputs) == 0 {
		return
	}
	first := buf.Get(m.Inputs[0])
	out := newImage(first.Rect.Size())
	for _, in := range m.Inputs {
		img := buf.Get(in)
		draw.Draw(out, out.Rect, img, image.Point{}, draw.Over)
	}
	buf.Set(m.Result, out)
}
