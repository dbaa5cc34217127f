package svgrender

import (
	"math"

	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgunit"
)

// PathElement is a <path> element.
type PathElement struct {
	Node
	Segments []svgpath.Segment
	// PathLength is the author length of the path, used
	// to scale distances along it; zero if unset.
	PathLength float64

	// noPaint is set when the segments draw nothing : the element
	// keeps a degenerate geometry but is not painted.
	noPaint bool
}

// Geometry interprets the path data. When the segments draw
// nothing, the geometry is a zero length line at the final point.
func (p *PathElement) Geometry(ctx *Context) svgpath.Path {
	return p.cachedGeometry(ctx, func() svgpath.Path {
		if len(p.Segments) == 0 {
			return nil
		}
		path, end := svgpath.Build(p.Segments)
		p.noPaint = path == nil
		if p.noPaint {
			path = svgpath.Path{svgpath.MoveTo(end), svgpath.LineTo(end)}
		}
		return path
	})
}

func (p *PathElement) Render(ctx *Context) { renderShape(ctx, p, true) }

// Rect is a <rect> element.
type Rect struct {
	Node
	X, Y, Width, Height svgunit.Length
	RX, RY              svgunit.Length
}

func (r *Rect) Geometry(ctx *Context) svgpath.Path {
	return r.cachedGeometry(ctx, func() svgpath.Path {
		loc := svgunit.ResolvePoint(&r.X, &r.Y, ctx, r)
		w := r.Width.Resolve(ctx, svgunit.Horizontal, r)
		h := r.Height.Resolve(ctx, svgunit.Vertical, r)
		rx := r.RX.Resolve(ctx, svgunit.Horizontal, r)
		ry := r.RY.Resolve(ctx, svgunit.Vertical, r)
		return svgpath.NewRect(loc.X, loc.Y, w, h, rx, ry)
	})
}

func (r *Rect) Render(ctx *Context) { renderShape(ctx, r, false) }

// Circle is a <circle> element.
type Circle struct {
	Node
	CX, CY, R svgunit.Length
}

func (c *Circle) Geometry(ctx *Context) svgpath.Path {
	return c.cachedGeometry(ctx, func() svgpath.Path {
		center := svgunit.ResolvePoint(&c.CX, &c.CY, ctx, c)
		r := c.R.Resolve(ctx, svgunit.Other, c)
		return svgpath.NewEllipse(center.X, center.Y, r, r)
	})
}

func (c *Circle) Render(ctx *Context) { renderShape(ctx, c, false) }

// Ellipse is an <ellipse> element.
type Ellipse struct {
	Node
	CX, CY, RX, RY svgunit.Length
}

func (e *Ellipse) Geometry(ctx *Context) svgpath.Path {
	return e.cachedGeometry(ctx, func() svgpath.Path {
		center := svgunit.ResolvePoint(&e.CX, &e.CY, ctx, e)
		rx := e.RX.Resolve(ctx, svgunit.Horizontal, e)
		ry := e.RY.Resolve(ctx, svgunit.Vertical, e)
		return svgpath.NewEllipse(center.X, center.Y, rx, ry)
	})
}

func (e *Ellipse) Render(ctx *Context) { renderShape(ctx, e, false) }

// Line is a <line> element.
type Line struct {
	Node
	X1, Y1, X2, Y2 svgunit.Length
}

func (l *Line) Geometry(ctx *Context) svgpath.Path {
	return l.cachedGeometry(ctx, func() svgpath.Path {
		start := svgunit.ResolvePoint(&l.X1, &l.Y1, ctx, l)
		end := svgunit.ResolvePoint(&l.X2, &l.Y2, ctx, l)
		return svgpath.NewPolyline([]svgpath.Point{start, end}, false)
	})
}

func (l *Line) Render(ctx *Context) { renderShape(ctx, l, true) }

// Polyline is a <polyline> element, or a <polygon> when Closed is true.
type Polyline struct {
	Node
	Points []svgpath.Point
	Closed bool
}

func (p *Polyline) Geometry(ctx *Context) svgpath.Path {
	return p.cachedGeometry(ctx, func() svgpath.Path {
		return svgpath.NewPolyline(p.Points, p.Closed)
	})
}

func (p *Polyline) Render(ctx *Context) { renderShape(ctx, p, true) }

// renderShape fills, strokes and decorates a geometric element.
func renderShape(ctx *Context, el Element, withMarkers bool) {
	n := el.node()
	if !n.isVisible() {
		return
	}
	path := el.Geometry(ctx)
	if len(path) == 0 {
		return
	}
	paint := true
	if p, ok := el.(*PathElement); ok {
		paint = !p.noPaint
	}
	renderElement(ctx, el, func(ctx *Context) {
		smooth := ctx.Smoothing()
		ctx.SetSmoothing(n.antialias())
		defer ctx.SetSmoothing(smooth)

		if paint {
			fillPath(ctx, el, path)
			strokePath(ctx, el, path)
		}
		if withMarkers {
			renderMarkers(ctx, el, path)
		}
	})
}

func fillPath(ctx *Context, el Element, path svgpath.Path) {
	n := el.node()
	brush := resolvePaint(ctx, n.fill(), el, n.fillOpacity(), false)
	if brush == nil {
		return
	}
	ctx.FillPath(path, n.fillRule(), brush)
}

func strokePath(ctx *Context, el Element, path svgpath.Path) {
	n := el.node()
	ps := n.stroke()
	if ps == None || ps == NotSet {
		return
	}
	stroke := n.strokeStyle(ctx)
	if stroke.Width <= 0 {
		return
	}
	brush := resolvePaint(ctx, ps, el, n.strokeOpacity(), true)
	if brush == nil {
		return
	}
	ctx.StrokePath(path, stroke, brush)
}

// strokeStyle resolves the stroke properties of `n`.
func (n *Node) strokeStyle(ctx *Context) Stroke {
	s := Stroke{
		Width:      n.strokeWidth().Resolve(ctx, svgunit.Other, n),
		MiterLimit: n.miterLimit(),
		Join:       n.lineJoin(),
		Cap:        n.lineCap(),
	}
	s.Dashes = normalizeDashes(n.dashArray().Resolve(ctx, svgunit.Other, n))
	if s.Dashes != nil {
		if off := n.dashOffset(); off != nil {
			s.DashOffset = off.Resolve(ctx, svgunit.Other, n)
		}
	}
	return s
}

// normalizeDashes returns nil for a solid line : empty arrays,
// negative values or a zero sum.
// Odd arrays are repeated to yield an even number of values.
func normalizeDashes(dashes []float64) []float64 {
	sum := 0.
	for _, d := range dashes {
		if d < 0 || math.IsNaN(d) {
			return nil
		}
		sum += d
	}
	if sum == 0 {
		return nil
	}
	if len(dashes)%2 == 1 {
		dashes = append(dashes, dashes...)
	}
	return dashes
}
