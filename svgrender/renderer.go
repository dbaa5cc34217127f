// Package svgrender implements the rendering core of SVG documents:
// the element tree, paint servers, filters, text layout and the
// render traversal.
//
// Drawing is delegated to a Renderer, implemented by a raster backend
// (see package svgraster) or by a test double (see package svgdraw).
package svgrender

import (
	"image"

	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgunit"
)

// Renderer is the drawing backend driven by the traversal.
// Paths are given in user space, and mapped by the current transform.
//
// Every Save or SaveLayer must be balanced by a Restore, which restores
// the transform and the clip. The boundable stack is independent.
type Renderer interface {
	Save()
	// SaveLayer starts an offscreen layer, composited with
	// `opacity` by the matching Restore.
	SaveLayer(opacity float64)
	Restore()

	Transform() svgpath.Matrix2D
	SetTransform(m svgpath.Matrix2D)

	// SetClip intersects the current clip with `path`.
	SetClip(path svgpath.Path, rule svgpath.FillRule)
	// ClipBounds returns the bounding box of the clip, in device
	// space, or false if there is no clip.
	ClipBounds() (svgpath.Rect, bool)

	FillPath(path svgpath.Path, rule svgpath.FillRule, brush Brush)
	StrokePath(path svgpath.Path, stroke Stroke, brush Brush)
	// DrawImage draws the `src` part of `img` into the `dst` rectangle.
	DrawImage(img image.Image, dst svgpath.Rect, src image.Rectangle)

	Push(b svgunit.Boundable)
	Pop() svgunit.Boundable
	Top() svgunit.Boundable

	Smoothing() bool
	SetSmoothing(smooth bool)

	// Offscreen returns a new, independent renderer drawing into `dst`,
	// with an identity transform, no clip and an empty boundable stack.
	Offscreen(dst *image.RGBA) Renderer
}

// SetClipRect intersects the clip of `r` with a rectangle.
func SetClipRect(r Renderer, rect svgpath.Rect) {
	r.SetClip(svgpath.NewRect(rect.X, rect.Y, rect.W, rect.H, 0, 0), svgpath.NonZero)
}

// LineJoin is the shape of stroke corners.
type LineJoin uint8

const (
	MiterJoin LineJoin = iota
	RoundJoin
	BevelJoin
)

// LineCap is the shape of open stroke ends.
type LineCap uint8

const (
	ButtCap LineCap = iota
	RoundCap
	SquareCap
)

// Stroke groups the stroke properties, in user space.
type Stroke struct {
	Width      float64
	MiterLimit float64
	Join       LineJoin
	Cap        LineCap
	Dashes     []float64 // empty for a solid line
	DashOffset float64
}
