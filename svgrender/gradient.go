package svgrender

import (
	"image/color"
	"math"
	"sort"

	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgunit"
)

// Stop is a gradient <stop>.
type Stop struct {
	Node
	Offset      float64     // in percent, clamped to [0, 100]
	StopColor   PaintServer // Color or CurrentColor; nil is black
	StopOpacity *float64
}

func (s *Stop) color() color.NRGBA {
	switch c := s.StopColor.(type) {
	case Color:
		return color.NRGBA(c)
	case CurrentColor:
		return s.currentColor()
	}
	return color.NRGBA{A: 0xff}
}

func (s *Stop) opacity() float64 {
	if s.StopOpacity == nil {
		return 1
	}
	return clampOpacity(*s.StopOpacity)
}

// Gradient holds the attributes common to linear and radial gradients.
// Unset attributes are inherited through Href.
type Gradient struct {
	Node
	Units             *Units // ObjectBoundingBox by default
	Spread            *Spread
	GradientTransform svgpath.TransformList
	Href              string
}

func (g *Gradient) base() *Gradient { return g }

type gradientElement interface {
	paintElement
	base() *Gradient
}

// chain returns `g` followed by the gradients it references.
func gradientChain(ctx *Context, g gradientElement) []gradientElement {
	chain := []gradientElement{g}
	seen := map[gradientElement]bool{g: true}
	for href := g.base().Href; href != ""; {
		next, ok := ctx.lookup(href).(gradientElement)
		if !ok || seen[next] {
			break
		}
		seen[next] = true
		chain = append(chain, next)
		href = next.base().Href
	}
	return chain
}

func chainUnits(chain []gradientElement) Units {
	for _, g := range chain {
		if u := g.base().Units; u != nil {
			return *u
		}
	}
	return ObjectBoundingBox
}

func chainSpread(chain []gradientElement) Spread {
	for _, g := range chain {
		if s := g.base().Spread; s != nil {
			return *s
		}
	}
	return PadSpread
}

func chainTransform(chain []gradientElement) svgpath.Matrix2D {
	for _, g := range chain {
		if t := g.base().GradientTransform; t != nil {
			return t.Matrix()
		}
	}
	return svgpath.Identity
}

// chainLength returns the first length defined by a gradient of type T.
func chainLength[T gradientElement](chain []gradientElement, get func(T) *svgunit.Length) *svgunit.Length {
	for _, g := range chain {
		if t, ok := g.(T); ok {
			if l := get(t); l != nil {
				return l
			}
		}
	}
	return nil
}

type resolvedStop struct {
	offset  float64 // in [0, 1]
	color   color.NRGBA
	opacity float64
}

// chainStops returns the stops of the first gradient having some.
// Offsets are clamped and made non decreasing.
func chainStops(chain []gradientElement) []resolvedStop {
	for _, g := range chain {
		var out []resolvedStop
		prev := 0.
		for _, child := range g.node().children {
			s, ok := child.(*Stop)
			if !ok {
				continue
			}
			off := math.Max(0, math.Min(1, s.Offset/100))
			if off < prev {
				off = prev
			}
			prev = off
			out = append(out, resolvedStop{offset: off, color: s.color(), opacity: s.opacity()})
		}
		if len(out) != 0 {
			return out
		}
	}
	return nil
}

// colorBlend returns the brush stops, with implied stops
// added at 0 and 1.
func colorBlend(stops []resolvedStop, opacity float64) []BrushStop {
	out := make([]BrushStop, 0, len(stops)+2)
	for _, s := range stops {
		out = append(out, BrushStop{Offset: s.offset, Color: withOpacity(s.color, opacity*s.opacity)})
	}
	if out[0].Offset > 0 {
		out = append([]BrushStop{{Offset: 0, Color: out[0].Color}}, out...)
	}
	if last := out[len(out)-1]; last.Offset < 1 {
		out = append(out, BrushStop{Offset: 1, Color: last.Color})
	}
	return out
}

// fraction reads a bounding box coordinate.
func fraction(l *svgunit.Length) float64 {
	if l.Unit == svgunit.Percent {
		return l.Value / 100
	}
	return l.Value
}

// bboxMatrix maps the unit square to `bounds`.
func bboxMatrix(bounds svgpath.Rect) svgpath.Matrix2D {
	return svgpath.Identity.Translate(bounds.X, bounds.Y).Scale(bounds.W, bounds.H)
}

// LinearGradient is a <linearGradient> element.
// Nil coordinates are inherited, or take their default value.
type LinearGradient struct {
	Gradient
	X1, Y1, X2, Y2 *svgunit.Length
}

func lengthOr(l *svgunit.Length, def svgunit.Length) *svgunit.Length {
	if l == nil {
		return &def
	}
	return l
}

func (g *LinearGradient) points(ctx *Context, chain []gradientElement) (p0, p1 svgpath.Point) {
	x1 := lengthOr(chainLength(chain, func(l *LinearGradient) *svgunit.Length { return l.X1 }), svgunit.Pct(0))
	y1 := lengthOr(chainLength(chain, func(l *LinearGradient) *svgunit.Length { return l.Y1 }), svgunit.Pct(0))
	x2 := lengthOr(chainLength(chain, func(l *LinearGradient) *svgunit.Length { return l.X2 }), svgunit.Pct(100))
	y2 := lengthOr(chainLength(chain, func(l *LinearGradient) *svgunit.Length { return l.Y2 }), svgunit.Pct(0))
	if chainUnits(chain) == ObjectBoundingBox {
		return svgpath.Point{X: fraction(x1), Y: fraction(y1)}, svgpath.Point{X: fraction(x2), Y: fraction(y2)}
	}
	return svgunit.ResolvePointOffset(x1, y1, ctx, g), svgunit.ResolvePointOffset(x2, y2, ctx, g)
}

func (g *LinearGradient) brush(ctx *Context, owner Element, opacity float64) Brush {
	chain := gradientChain(ctx, g)
	stops := chainStops(chain)
	switch len(stops) {
	case 0:
		return nil
	case 1:
		return SolidBrush{Color: withOpacity(stops[0].color, opacity*stops[0].opacity)}
	}

	bounds := objectBounds(ctx, owner)
	units := chainUnits(chain)
	m := chainTransform(chain)
	if units == ObjectBoundingBox {
		if bounds.IsEmpty() {
			return nil
		}
		m = bboxMatrix(bounds).Mult(m)
	} else if b := ctx.Boundable(); b == nil || b.Bounds().IsEmpty() {
		return nil
	}

	u0, u1 := g.points(ctx, chain)
	p0, p1 := m.TransformPoint(u0), m.TransformPoint(u1)
	if units == ObjectBoundingBox {
		p1 = perpendicularEnd(m, u0, u1, p0, p1)
	}
	p0, p1 = p0.Round(4), p1.Round(4)
	if p0 == p1 {
		Logger().Debug("degenerate linear gradient", "id", g.ID)
		return nil
	}

	spread := chainSpread(chain)
	blend := colorBlend(stops, opacity)
	if bounds.IsEmpty() {
		return &LinearBrush{Start: p0, End: p1, Stops: blend, Spread: spread}
	}
	start, end, blend := expandLinear(bounds, p0, p1, blend, spread)
	return &LinearBrush{Start: start, End: end, Stops: blend, Spread: spread}
}

// perpendicularEnd moves the end point so that the gradient vector
// is orthogonal to the images of the bounding box isolines,
// which are not orthogonal anymore after a non uniform scaling.
func perpendicularEnd(m svgpath.Matrix2D, u0, u1, p0, p1 svgpath.Point) svgpath.Point {
	dx, dy := m.TransformVector(-(u1.Y - u0.Y), u1.X-u0.X) // isoline direction
	n := svgpath.Point{X: dy, Y: -dx}
	nn := n.X*n.X + n.Y*n.Y
	if nn == 0 {
		return p1
	}
	d := p1.Sub(p0)
	return p0.Add(n.Scale((d.X*n.X + d.Y*n.Y) / nn))
}

// insideBounds returns true if `p` must be moved to the edge
// of `bounds`. Axis aligned gradients only test the other axis.
func insideBounds(bounds svgpath.Rect, p, other svgpath.Point) bool {
	switch {
	case p.X == other.X:
		return bounds.Top() < p.Y && p.Y < bounds.Bottom()
	case p.Y == other.Y:
		return bounds.Left() < p.X && p.X < bounds.Right()
	default:
		return bounds.Contains(p)
	}
}

// boxIntersections returns the intersections of the line (p0, p1)
// with the edges of `bounds`, sorted along the direction p0 -> p1.
func boxIntersections(bounds svgpath.Rect, p0, p1 svgpath.Point) []svgpath.Point {
	var out []svgpath.Point
	add := func(p svgpath.Point) {
		p = p.Round(4)
		for _, q := range out {
			if q.Dist(p) < 0.001 {
				return
			}
		}
		out = append(out, p)
	}
	d := p1.Sub(p0)
	switch {
	case d.Y == 0:
		add(svgpath.Point{X: bounds.Left(), Y: p0.Y})
		add(svgpath.Point{X: bounds.Right(), Y: p0.Y})
	case d.X == 0:
		add(svgpath.Point{X: p0.X, Y: bounds.Top()})
		add(svgpath.Point{X: p0.X, Y: bounds.Bottom()})
	default:
		const eps = 1e-9
		for _, x := range [2]float64{bounds.Left(), bounds.Right()} {
			y := p0.Y + d.Y*(x-p0.X)/d.X
			if bounds.Top()-eps <= y && y <= bounds.Bottom()+eps {
				add(svgpath.Point{X: x, Y: y})
			}
		}
		for _, y := range [2]float64{bounds.Top(), bounds.Bottom()} {
			x := p0.X + d.X*(y-p0.Y)/d.Y
			if bounds.Left()-eps <= x && x <= bounds.Right()+eps {
				add(svgpath.Point{X: x, Y: y})
			}
		}
	}
	proj := func(p svgpath.Point) float64 { return (p.X-p0.X)*d.X + (p.Y-p0.Y)*d.Y }
	sort.SliceStable(out, func(i, j int) bool { return proj(out[i]) < proj(out[j]) })
	return out
}

// expandLinear moves the end points lying inside `bounds` to its edges,
// and reprojects the stops so that the rendering is unchanged.
// For reflect and repeat spreads, the ends are pushed further out to a
// whole number of gradient vectors.
func expandLinear(bounds svgpath.Rect, p0, p1 svgpath.Point, blend []BrushStop, spread Spread) (start, end svgpath.Point, out []BrushStop) {
	moveStart, moveEnd := insideBounds(bounds, p0, p1), insideBounds(bounds, p1, p0)
	if !moveStart && !moveEnd {
		return p0, p1, blend
	}
	edges := boxIntersections(bounds, p0, p1)
	if len(edges) < 2 {
		return p0, p1, blend
	}
	start, end = p0, p1
	if moveStart {
		start = edges[0]
	}
	if moveEnd {
		end = edges[len(edges)-1]
	}

	length := p0.Dist(p1)
	unit := p1.Sub(p0).Scale(1 / length)
	if spread == ReflectSpread || spread == RepeatSpread {
		start = p0.Sub(unit.Scale(math.Ceil(start.Dist(p0)/length) * length))
		end = p1.Add(unit.Scale(math.Ceil(end.Dist(p1)/length) * length))
	}
	effLength := start.Dist(end)
	out = make([]BrushStop, 0, len(blend)+2)
	if start.Dist(p0) > 0.001 {
		out = append(out, BrushStop{Offset: 0, Color: blend[0].Color})
	}
	for _, s := range blend {
		pos := p0.Add(unit.Scale(length * s.Offset))
		off := math.Max(0, math.Min(1, pos.Dist(start)/effLength))
		out = append(out, BrushStop{Offset: off, Color: s.Color})
	}
	if end.Dist(p1) > 0.001 {
		out = append(out, BrushStop{Offset: 1, Color: blend[len(blend)-1].Color})
	}
	return start, end, out
}

// RadialGradient is a <radialGradient> element.
// Nil coordinates are inherited, or take their default value.
type RadialGradient struct {
	Gradient
	CX, CY, R, FX, FY *svgunit.Length
}

func (g *RadialGradient) brush(ctx *Context, owner Element, opacity float64) Brush {
	chain := gradientChain(ctx, g)
	stops := chainStops(chain)
	switch len(stops) {
	case 0:
		return nil
	case 1:
		return SolidBrush{Color: withOpacity(stops[0].color, opacity*stops[0].opacity)}
	}

	get := func(f func(r *RadialGradient) *svgunit.Length, def svgunit.Length) *svgunit.Length {
		return lengthOr(chainLength(chain, f), def)
	}
	cx := get(func(r *RadialGradient) *svgunit.Length { return r.CX }, svgunit.Pct(50))
	cy := get(func(r *RadialGradient) *svgunit.Length { return r.CY }, svgunit.Pct(50))
	r := get(func(r *RadialGradient) *svgunit.Length { return r.R }, svgunit.Pct(50))
	fx := lengthOr(chainLength(chain, func(r *RadialGradient) *svgunit.Length { return r.FX }), *cx)
	fy := lengthOr(chainLength(chain, func(r *RadialGradient) *svgunit.Length { return r.FY }), *cy)

	m := chainTransform(chain)
	var center, focal svgpath.Point
	var radius float64
	if chainUnits(chain) == ObjectBoundingBox {
		bounds := objectBounds(ctx, owner)
		if bounds.IsEmpty() {
			return nil
		}
		m = bboxMatrix(bounds).Mult(m)
		center = svgpath.Point{X: fraction(cx), Y: fraction(cy)}
		focal = svgpath.Point{X: fraction(fx), Y: fraction(fy)}
		radius = fraction(r)
	} else {
		center = svgunit.ResolvePointOffset(cx, cy, ctx, g)
		focal = svgunit.ResolvePointOffset(fx, fy, ctx, g)
		radius = r.Resolve(ctx, svgunit.Other, g)
	}
	if radius <= 0 {
		last := stops[len(stops)-1]
		return SolidBrush{Color: withOpacity(last.color, opacity*last.opacity)}
	}
	// the focal point is kept inside the circle
	if d := focal.Dist(center); d > radius {
		focal = center.Add(focal.Sub(center).Scale(radius * 0.999 / d))
	}
	return &RadialBrush{
		Center: center, Focal: focal, Radius: radius,
		Matrix: m,
		Stops:  colorBlend(stops, opacity),
		Spread: chainSpread(chain),
	}
}
