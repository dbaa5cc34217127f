package svgpath

import "math"

// Unset marks a coordinate which must be inherited
// from the current point (see H and V commands).
var Unset = math.NaN()

// IsUnset returns true for the Unset sentinel.
func IsUnset(v float64) bool { return math.IsNaN(v) }

// Segment is one command of a path data attribute, with
// its parameters already parsed.
type Segment interface {
	isSegment()
}

// MoveSegment starts a new subpath.
type MoveSegment struct {
	End      Point
	Relative bool
}

// LineSegment draws a straight line. One of the coordinates
// may be Unset.
type LineSegment struct {
	End      Point
	Relative bool
}

// CubicSegment draws a cubic bezier curve.
// For smooth segments, C1 is ignored and computed from the previous segment.
type CubicSegment struct {
	C1, C2, End Point
	Smooth      bool
	Relative    bool
}

// QuadSegment draws a quadratic bezier curve.
// For smooth segments, C is ignored and computed from the previous segment.
type QuadSegment struct {
	C, End   Point
	Smooth   bool
	Relative bool
}

// ArcSegment draws an elliptical arc.
type ArcSegment struct {
	RX, RY   float64
	Rotation float64 // in degrees
	LargeArc bool
	Sweep    bool
	End      Point
	Relative bool
}

// CloseSegment closes the current subpath.
type CloseSegment struct{}

func (MoveSegment) isSegment()  {}
func (LineSegment) isSegment()  {}
func (CubicSegment) isSegment() {}
func (QuadSegment) isSegment()  {}
func (ArcSegment) isSegment()   {}
func (CloseSegment) isSegment() {}

type curveFamily uint8

const (
	noCurve curveFamily = iota
	cubicCurve
	quadCurve
)

// Builder converts segments to a Path, tracking the current point
// and the last control point needed by smooth curves.
type Builder struct {
	path Path

	current, start Point
	lastControl    Point
	lastFamily     curveFamily

	started   bool
	needStart bool // after a Close, the next drawing command reopens at `start`
	invalid   bool // the first segment was not a move
}

// Current returns the current point.
func (b *Builder) Current() Point { return b.current }

func (b *Builder) resolve(p Point, relative bool) Point {
	if IsUnset(p.X) {
		p.X = b.current.X
		if relative {
			p.X = 0
		}
	}
	if IsUnset(p.Y) {
		p.Y = b.current.Y
		if relative {
			p.Y = 0
		}
	}
	if relative {
		return b.current.Add(p)
	}
	return p
}

// reflect returns the reflection of `p` across `m`,
// that is m + sign(m-p)*|m-p|
func reflect(p, m Point) Point {
	return Point{
		X: m.X + math.Copysign(math.Abs(m.X-p.X), m.X-p.X),
		Y: m.Y + math.Copysign(math.Abs(m.Y-p.Y), m.Y-p.Y),
	}
}

func (b *Builder) smoothControl(family curveFamily) Point {
	if b.lastFamily == family {
		return reflect(b.lastControl, b.current)
	}
	return b.current
}

func (b *Builder) ensureStarted() {
	if b.needStart {
		b.path.Start(b.start)
		b.needStart = false
	}
}

// Add processes one segment.
func (b *Builder) Add(seg Segment) {
	if !b.started {
		if _, isMove := seg.(MoveSegment); !isMove {
			b.invalid = true
		}
		b.started = true
	}
	family := noCurve
	var control Point
	switch seg := seg.(type) {
	case MoveSegment:
		end := b.resolve(seg.End, seg.Relative)
		b.path.Start(end)
		b.current, b.start = end, end
		b.needStart = false
	case LineSegment:
		end := b.resolve(seg.End, seg.Relative)
		b.ensureStarted()
		b.path.Line(end)
		b.current = end
	case CubicSegment:
		c1 := b.smoothControl(cubicCurve)
		if !seg.Smooth {
			c1 = b.resolve(seg.C1, seg.Relative)
		}
		c2 := b.resolve(seg.C2, seg.Relative)
		end := b.resolve(seg.End, seg.Relative)
		b.ensureStarted()
		b.path.CubeBezier(c1, c2, end)
		b.current = end
		family, control = cubicCurve, c2
	case QuadSegment:
		c := b.smoothControl(quadCurve)
		if !seg.Smooth {
			c = b.resolve(seg.C, seg.Relative)
		}
		end := b.resolve(seg.End, seg.Relative)
		b.ensureStarted()
		b.path.QuadBezier(c, end)
		b.current = end
		family, control = quadCurve, c
	case ArcSegment:
		end := b.resolve(seg.End, seg.Relative)
		b.ensureStarted()
		b.addArcSegment(seg, end)
		b.current = end
	case CloseSegment:
		b.path.Stop(true)
		b.current = b.start
		b.needStart = true
	}
	b.lastFamily, b.lastControl = family, control
}

func (b *Builder) addArcSegment(seg ArcSegment, end Point) {
	if end == b.current {
		return // an arc with identical endpoints is omitted
	}
	rx, ry := math.Abs(seg.RX), math.Abs(seg.RY)
	if rx == 0 || ry == 0 {
		b.path.Line(end)
		return
	}
	rotX := seg.Rotation * math.Pi / 180
	cx, cy := findEllipseCenter(&rx, &ry, rotX, b.current.X, b.current.Y, end.X, end.Y, !seg.Sweep, !seg.LargeArc)
	b.path.addArc(arc{rx: rx, ry: ry, rotation: seg.Rotation, largeArc: seg.LargeArc, sweep: seg.Sweep, end: end},
		cx, cy, b.current.X, b.current.Y)
}

// Path returns the accumulated path, or nil if the
// segments did not start with a move or did not draw anything.
func (b *Builder) Path() Path {
	if b.invalid || b.path.IsEmpty() {
		return nil
	}
	return b.path
}

// Build interprets the segments and returns the resulting path
// (possibly nil), and the final current point.
func Build(segments []Segment) (Path, Point) {
	var b Builder
	for _, seg := range segments {
		b.Add(seg)
	}
	return b.Path(), b.current
}
