package svgrender

import (
	"math"

	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgunit"
)

// Units selects the coordinate system of gradients, patterns,
// clip paths and markers.
type Units uint8

const (
	ObjectBoundingBox Units = iota
	UserSpaceOnUse
	// StrokeWidth is only valid for markers.
	StrokeWidth
)

// Orient is the orientation of a marker.
type Orient struct {
	Auto             bool
	AutoStartReverse bool
	Angle            float64 // in degrees, when Auto is false
}

// Marker is a <marker> element, drawn at the vertices
// of paths, lines and polylines.
type Marker struct {
	Node
	RefX, RefY                svgunit.Length
	MarkerWidth, MarkerHeight svgunit.Length
	Units                     Units // StrokeWidth or UserSpaceOnUse
	Orient                    Orient
	ViewBox                   svgpath.Rect
	Aspect                    AspectRatio
	// OverflowVisible disables the clipping to the marker viewport.
	OverflowVisible bool
}

// NewMarker returns a marker with the default attributes.
func NewMarker() *Marker {
	return &Marker{
		MarkerWidth:  svgunit.Px(3),
		MarkerHeight: svgunit.Px(3),
		Units:        StrokeWidth,
	}
}

// renderMarkers draws the start and end markers of `owner`.
// Mid markers are not supported.
func renderMarkers(ctx *Context, owner Element, path svgpath.Path) {
	n := owner.node()
	start, end := n.markerStart(), n.markerEnd()
	if start == "" && end == "" {
		return
	}
	points := path.Points()
	if len(points) == 0 {
		return
	}
	if m := lookupMarker(ctx, start); m != nil {
		ref := points[0]
		next := ref
		for _, p := range points[1:] {
			if p != ref {
				next = p
				break
			}
		}
		m.render(ctx, owner, ref, ref, next, true)
	}
	if m := lookupMarker(ctx, end); m != nil {
		ref := points[len(points)-1]
		prev := ref
		for i := len(points) - 2; i >= 0; i-- {
			if points[i] != ref {
				prev = points[i]
				break
			}
		}
		m.render(ctx, owner, ref, prev, ref, false)
	}
}

func lookupMarker(ctx *Context, id string) *Marker {
	if id == "" {
		return nil
	}
	m, ok := ctx.lookup(id).(*Marker)
	if !ok {
		Logger().Debug("unresolved marker reference", "id", id)
		return nil
	}
	return m
}

// angle returns the orientation in degrees, `from` and `to`
// defining the direction of the path at the vertex.
func (m *Marker) angle(from, to svgpath.Point, isStart bool) float64 {
	if !m.Orient.Auto {
		return m.Orient.Angle
	}
	a := math.Atan2(to.Y-from.Y, to.X-from.X) * 180 / math.Pi
	if isStart && m.Orient.AutoStartReverse {
		a += 180
	}
	return a
}

// render draws the marker content at `ref`.
func (m *Marker) render(ctx *Context, owner Element, ref, from, to svgpath.Point, isStart bool) {
	if !ctx.enter(m) {
		return
	}
	defer ctx.leave(m)

	mw := m.MarkerWidth.Resolve(ctx, svgunit.Horizontal, m)
	mh := m.MarkerHeight.Resolve(ctx, svgunit.Vertical, m)
	if mw <= 0 || mh <= 0 {
		return
	}
	scale := 1.
	if m.Units == StrokeWidth {
		scale = owner.node().strokeWidth().Resolve(ctx, svgunit.Other, owner.node())
	}
	content := svgpath.Identity
	if !m.ViewBox.IsEmpty() {
		content = viewBoxTransform(m.ViewBox, m.Aspect, mw, mh)
	}
	refPoint := content.TransformPoint(svgunit.ResolvePoint(&m.RefX, &m.RefY, ctx, m))

	mat := svgpath.Identity.Translate(ref.X, ref.Y).
		Rotate(m.angle(from, to, isStart)*math.Pi/180).
		Scale(scale, scale).
		Translate(-refPoint.X, -refPoint.Y)

	ctx.Save()
	defer ctx.Restore()
	ctx.SetTransform(ctx.Transform().Mult(mat).Mult(m.Transforms.Matrix()))
	if !m.OverflowVisible {
		SetClipRect(ctx, svgpath.Rect{W: mw, H: mh})
	}
	ctx.SetTransform(ctx.Transform().Mult(content))
	renderChildren(ctx, &m.Node)
}
