package svgrender

import (
	"image"
	"math"

	"github.com/benoitkugler/svgrender/svgfilter"
	"github.com/benoitkugler/svgrender/svgpath"
)

// Filter is a <filter> element. Its children are the
// primitives, applied in order.
type Filter struct {
	Node
}

// FilterPrimitive is implemented by the filter primitive elements.
type FilterPrimitive interface {
	Element
	Primitive() svgfilter.Primitive
}

// FeColorMatrix is a <feColorMatrix> element.
type FeColorMatrix struct {
	Node
	Params svgfilter.ColorMatrix
}

func (f *FeColorMatrix) Primitive() svgfilter.Primitive { return f.Params }

// FeGaussianBlur is a <feGaussianBlur> element.
type FeGaussianBlur struct {
	Node
	Params svgfilter.GaussianBlur
}

func (f *FeGaussianBlur) Primitive() svgfilter.Primitive { return f.Params }

// FeOffset is a <feOffset> element.
type FeOffset struct {
	Node
	Params svgfilter.Offset
}

func (f *FeOffset) Primitive() svgfilter.Primitive { return f.Params }

// FeMerge is a <feMerge> element, whose inputs are
// given by its FeMergeNode children.
type FeMerge struct {
	Node
	Result string
}

// FeMergeNode is a <feMergeNode> element.
type FeMergeNode struct {
	Node
	In string
}

func (f *FeMerge) Primitive() svgfilter.Primitive {
	m := svgfilter.Merge{Result: f.Result}
	for _, child := range f.children {
		if n, ok := child.(*FeMergeNode); ok {
			m.Inputs = append(m.Inputs, n.In)
		}
	}
	return m
}

func (f *Filter) primitives() []svgfilter.Primitive {
	var out []svgfilter.Primitive
	for _, child := range f.children {
		if p, ok := child.(FilterPrimitive); ok {
			out = append(out, p.Primitive())
		}
	}
	return out
}

func intersect(a, b svgpath.Rect) svgpath.Rect {
	x0, y0 := math.Max(a.Left(), b.Left()), math.Max(a.Top(), b.Top())
	x1, y1 := math.Min(a.Right(), b.Right()), math.Min(a.Bottom(), b.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return svgpath.Rect{}
	}
	return svgpath.Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// apply renders `el` through the filter. `render` draws the unfiltered
// element, the renderer transform being the one of its parent.
// It returns false if the filter could not be applied, in which
// case the element should be rendered directly.
func (f *Filter) apply(ctx *Context, el Element, render func(ctx *Context)) bool {
	if !ctx.enter(f) {
		Logger().Warn("recursive filter", "id", f.ID)
		return false
	}
	defer ctx.leave(f)

	primitives := f.primitives()
	if len(primitives) == 0 {
		return true // an empty filter disables rendering
	}
	local := objectBounds(ctx, el)
	if local.IsEmpty() {
		return true
	}
	region := local.Inflate(local.W/2, local.H/2)
	m := ctx.Transform().Mult(localMatrix(ctx, el))
	dev := m.TransformRect(region)
	if clip, ok := ctx.ClipBounds(); ok {
		dev = intersect(dev, clip)
	}
	x0, y0 := math.Floor(dev.Left()), math.Floor(dev.Top())
	w, h := int(math.Ceil(dev.Right())-x0), int(math.Ceil(dev.Bottom())-y0)
	if dev.IsEmpty() || w <= 0 || h <= 0 {
		return true
	}
	if int64(w)*int64(h) > MaxSurfacePixels {
		Logger().Warn("filter region too large, filter ignored", "id", f.ID, "width", w, "height", h)
		return false
	}

	toBuffer := svgpath.Identity.Translate(-x0, -y0)
	parentMatrix := ctx.Transform()
	source := func(dst *image.RGBA) {
		off := ctx.offscreen(ctx.Offscreen(dst))
		off.SetTransform(toBuffer.Mult(parentMatrix))
		if b := ctx.Top(); b != nil {
			off.Push(b)
			defer off.Pop()
		}
		render(off)
	}
	buf := svgfilter.NewImageBuffer(image.Pt(w, h), toBuffer.Mult(m), source)
	defer buf.Close()

	for _, p := range primitives {
		runPrimitive(f, p, buf)
	}
	result := buf.Result()

	ctx.Save()
	defer ctx.Restore()
	ctx.SetTransform(svgpath.Identity)
	ctx.DrawImage(result, svgpath.Rect{X: x0, Y: y0, W: float64(w), H: float64(h)}, result.Bounds())
	return true
}

// runPrimitive applies one primitive; a failing primitive
// is logged and skipped.
func runPrimitive(f *Filter, p svgfilter.Primitive, buf *svgfilter.ImageBuffer) {
	defer func() {
		if r := recover(); r != nil {
			Logger().Warn("filter primitive failed", "id", f.ID, "primitive", p, "panic", r)
		}
	}()
	p.Apply(buf)
}
