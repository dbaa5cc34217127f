// Implements an abstract representation of
// svg paths, which can then be consumed
// by painting driver
package svgpath

import (
	"fmt"
	"strings"

	"golang.org/x/image/math/fixed"
)

// Adder interface for types that can accumlate path commands,
// expressed in device space.
type Adder interface {
	// Start starts a new curve at the given point.
	Start(a fixed.Point26_6)
	// Line adds a line segment to the path
	Line(b fixed.Point26_6)
	// QuadBezier adds a quadratic bezier curve to the path
	QuadBezier(b, c fixed.Point26_6)
	// CubeBezier adds a cubic bezier curve to the path
	CubeBezier(b, c, d fixed.Point26_6)
	// Closes the path to the start point if closeLoop is true
	Stop(closeLoop bool)
}

type pathCommand uint8

// Human readable path constants
const (
	pathMoveTo pathCommand = iota
	pathLineTo
	pathQuadTo
	pathCubicTo
	pathClose
)

// Operation groups the different SVG commands
type Operation interface {
	command() pathCommand
	// returns the operation with its points mapped by `m`
	transform(m Matrix2D) Operation
}

type MoveTo Point

type LineTo Point

type QuadTo [2]Point

type CubicTo [3]Point

type Close struct{}

func (MoveTo) command() pathCommand  { return pathMoveTo }
func (LineTo) command() pathCommand  { return pathLineTo }
func (QuadTo) command() pathCommand  { return pathQuadTo }
func (CubicTo) command() pathCommand { return pathCubicTo }
func (Close) command() pathCommand   { return pathClose }

func (op MoveTo) transform(m Matrix2D) Operation { return MoveTo(m.TransformPoint(Point(op))) }
func (op LineTo) transform(m Matrix2D) Operation { return LineTo(m.TransformPoint(Point(op))) }
func (op QuadTo) transform(m Matrix2D) Operation {
	return QuadTo{m.TransformPoint(op[0]), m.TransformPoint(op[1])}
}

func (op CubicTo) transform(m Matrix2D) Operation {
	return CubicTo{m.TransformPoint(op[0]), m.TransformPoint(op[1]), m.TransformPoint(op[2])}
}
func (op Close) transform(Matrix2D) Operation { return op }

// FillRule selects the algorithm deciding the inside of a path.
type FillRule uint8

const (
	NonZero FillRule = iota
	EvenOdd
)

func (f FillRule) String() string {
	switch f {
	case NonZero:
		return "nonzero"
	case EvenOdd:
		return "evenodd"
	default:
		return "<unknown FillRule>"
	}
}

// Path describes a sequence of basic SVG operations, in user space.
// Higher-level shapes may be reduced to a path.
// A nil or empty Path is valid and renders nothing.
type Path []Operation

// ToSVGPath returns a string representation of the path
func (p Path) ToSVGPath() string {
	chunks := make([]string, len(p))
	for i, op := range p {
		switch op := op.(type) {
		case MoveTo:
			chunks[i] = fmt.Sprintf("M%4.3f,%4.3f", op.X, op.Y)
		case LineTo:
			chunks[i] = fmt.Sprintf("L%4.3f,%4.3f", op.X, op.Y)
		case QuadTo:
			chunks[i] = fmt.Sprintf("Q%4.3f,%4.3f,%4.3f,%4.3f", op[0].X, op[0].Y, op[1].X, op[1].Y)
		case CubicTo:
			chunks[i] = fmt.Sprintf("C%4.3f,%4.3f,%4.3f,%4.3f,%4.3f,%4.3f", op[0].X, op[0].Y,
				op[1].X, op[1].Y, op[2].X, op[2].Y)
		case Close:
			chunks[i] = "Z"
		}
	}
	return strings.Join(chunks, " ")
}

// String returns a readable representation of a Path.
func (p Path) String() string {
	return p.ToSVGPath()
}

// Clear zeros the path slice
func (p *Path) Clear() {
	*p = (*p)[:0]
}

// Start starts a new curve at the given point.
func (p *Path) Start(a Point) {
	*p = append(*p, MoveTo(a))
}

// Line adds a linear segment to the current curve.
func (p *Path) Line(b Point) {
	*p = append(*p, LineTo(b))
}

// QuadBezier adds a quadratic segment to the current curve.
func (p *Path) QuadBezier(b, c Point) {
	*p = append(*p, QuadTo{b, c})
}

// CubeBezier adds a cubic segment to the current curve.
func (p *Path) CubeBezier(b, c, d Point) {
	*p = append(*p, CubicTo{b, c, d})
}

// Stop joins the ends of the path
func (p *Path) Stop(closeLoop bool) {
	if closeLoop {
		*p = append(*p, Close{})
	}
}

// Append adds all the operations of `other` to `p`.
func (p *Path) Append(other Path) {
	*p = append(*p, other...)
}

// Transform returns a new path, with every point mapped by `m`.
func (p Path) Transform(m Matrix2D) Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	for i, op := range p {
		out[i] = op.transform(m)
	}
	return out
}

// IsEmpty returns true if the path has no drawing operation
// (only moves, or nothing at all).
func (p Path) IsEmpty() bool {
	for _, op := range p {
		if op.command() != pathMoveTo {
			return false
		}
	}
	return true
}

// Vertices returns the end points of every operation, in order.
// A Close operation contributes the start point of its subpath.
func (p Path) Vertices() []Point {
	var (
		out   []Point
		start Point
	)
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			start = Point(op)
			out = append(out, start)
		case LineTo:
			out = append(out, Point(op))
		case QuadTo:
			out = append(out, op[1])
		case CubicTo:
			out = append(out, op[2])
		case Close:
			out = append(out, start)
		}
	}
	return out
}

// AddTo sends the path, mapped by `m` to device space, to `q`.
func (p Path) AddTo(q Adder, m Matrix2D) {
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			q.Stop(false) // implicit close if currently in path.
			q.Start(m.TFixed(Point(op)))
		case LineTo:
			q.Line(m.TFixed(Point(op)))
		case QuadTo:
			q.QuadBezier(m.TFixed(op[0]), m.TFixed(op[1]))
		case CubicTo:
			q.CubeBezier(m.TFixed(op[0]), m.TFixed(op[1]), m.TFixed(op[2]))
		case Close:
			q.Stop(true)
		}
	}
	q.Stop(false)
}

// Points returns every point of the path, control points included,
// in order. Close operations contribute nothing.
func (p Path) Points() []Point {
	var out []Point
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			out = append(out, Point(op))
		case LineTo:
			out = append(out, Point(op))
		case QuadTo:
			out = append(out, op[0], op[1])
		case CubicTo:
			out = append(out, op[0], op[1], op[2])
		}
	}
	return out
}
