package svgpath

import "math"

// number of lines used to flatten one bezier curve
const flattenSteps = 16

// Measure provides arc length queries on a path,
// which is flattened into polylines once.
type Measure struct {
	points  []Point
	lengths []float64 // cumulative length at each point; same length as points
	breaks  []bool    // true if the segment ending at point i is a jump (new subpath)
}

// NewMeasure flattens `p`.
func NewMeasure(p Path) *Measure {
	m := &Measure{}
	var current, start Point
	add := func(pt Point, jump bool) {
		l := 0.
		if n := len(m.points); n > 0 {
			l = m.lengths[n-1]
			if !jump {
				l += pt.Dist(m.points[n-1])
			}
		}
		m.points = append(m.points, pt)
		m.lengths = append(m.lengths, l)
		m.breaks = append(m.breaks, jump)
	}
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			current, start = Point(op), Point(op)
			add(current, true)
		case LineTo:
			current = Point(op)
			add(current, false)
		case QuadTo:
			c := quadBezier{current, op[0], op[1]}
			for i := 1; i <= flattenSteps; i++ {
				x, y := c.evaluateCurve(float64(i) / flattenSteps)
				add(Point{x, y}, false)
			}
			current = op[1]
		case CubicTo:
			c := cubicBezier{current, op[0], op[1], op[2]}
			for i := 1; i <= flattenSteps; i++ {
				x, y := c.evaluateCurve(float64(i) / flattenSteps)
				add(Point{x, y}, false)
			}
			current = op[2]
		case Close:
			current = start
			add(current, false)
		}
	}
	return m
}

// Length returns the total length of the path.
func (m *Measure) Length() float64 {
	if len(m.lengths) == 0 {
		return 0
	}
	return m.lengths[len(m.lengths)-1]
}

// PointAt returns the position and the tangent angle (in degrees)
// at distance `offset` along the path. `ok` is false if
// offset is outside [0, Length()].
func (m *Measure) PointAt(offset float64) (pos Point, angle float64, ok bool) {
	if len(m.points) < 2 || offset < 0 || offset > m.Length() {
		return Point{}, 0, false
	}
	for i := 1; i < len(m.points); i++ {
		if m.breaks[i] || m.lengths[i] < offset {
			continue
		}
		segLength := m.lengths[i] - m.lengths[i-1]
		a, b := m.points[i-1], m.points[i]
		if segLength == 0 {
			if m.lengths[i] == offset && i == len(m.points)-1 {
				return b, m.angleBefore(i), true
			}
			continue
		}
		t := (offset - m.lengths[i-1]) / segLength
		pos = Point{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
		return pos, math.Atan2(b.Y-a.Y, b.X-a.X) * 180 / math.Pi, true
	}
	return m.points[len(m.points)-1], m.angleBefore(len(m.points) - 1), true
}

// angleBefore returns the direction of the last non degenerate
// segment ending at or before index i.
func (m *Measure) angleBefore(i int) float64 {
	for ; i > 0; i-- {
		if m.breaks[i] {
			continue
		}
		a, b := m.points[i-1], m.points[i]
		if a != b {
			return math.Atan2(b.Y-a.Y, b.X-a.X) * 180 / math.Pi
		}
	}
	return 0
}
