package svgpath

import (
	"math"

	"golang.org/x/image/math/fixed"
)

// Matrix2D represents an affine transformation, with the
// following layout:
//
//	A C E
//	B D F
//	0 0 1
type Matrix2D struct {
	A, B, C, D, E, F float64
}

// Identity is the identity matrix
var Identity = Matrix2D{1, 0, 0, 1, 0, 0}

// Mult returns a * b : `b` is applied first, then `a`.
func (a Matrix2D) Mult(b Matrix2D) Matrix2D {
	return Matrix2D{
		A: a.A*b.A + a.C*b.B,
		B: a.B*b.A + a.D*b.B,
		C: a.A*b.C + a.C*b.D,
		D: a.B*b.C + a.D*b.D,
		E: a.A*b.E + a.C*b.F + a.E,
		F: a.B*b.E + a.D*b.F + a.F,
	}
}

// Translate post multiplies `a` by a translation of (x, y).
func (a Matrix2D) Translate(x, y float64) Matrix2D {
	return a.Mult(Matrix2D{1, 0, 0, 1, x, y})
}

// Scale post multiplies `a` by a scaling of (x, y).
func (a Matrix2D) Scale(x, y float64) Matrix2D {
	return a.Mult(Matrix2D{x, 0, 0, y, 0, 0})
}

// Rotate post multiplies `a` by a rotation of `theta` radians.
func (a Matrix2D) Rotate(theta float64) Matrix2D {
	s, c := math.Sincos(theta)
	return a.Mult(Matrix2D{c, s, -s, c, 0, 0})
}

// SkewX post multiplies `a` by a skew along the x axis of `theta` radians.
func (a Matrix2D) SkewX(theta float64) Matrix2D {
	return a.Mult(Matrix2D{1, 0, math.Tan(theta), 1, 0, 0})
}

// SkewY post multiplies `a` by a skew along the y axis of `theta` radians.
func (a Matrix2D) SkewY(theta float64) Matrix2D {
	return a.Mult(Matrix2D{1, math.Tan(theta), 0, 1, 0, 0})
}

// IsIdentity returns true if `a` has no effect.
func (a Matrix2D) IsIdentity() bool { return a == Identity }

// Invert returns the inverse matrix, or the identity
// if `a` is not invertible.
func (a Matrix2D) Invert() Matrix2D {
	det := a.A*a.D - a.B*a.C
	if det == 0 {
		return Identity
	}
	return Matrix2D{
		A: a.D / det,
		B: -a.B / det,
		C: -a.C / det,
		D: a.A / det,
		E: (a.C*a.F - a.D*a.E) / det,
		F: (a.B*a.E - a.A*a.F) / det,
	}
}

// Transform applies the matrix to (x, y).
func (a Matrix2D) Transform(x, y float64) (float64, float64) {
	return a.A*x + a.C*y + a.E, a.B*x + a.D*y + a.F
}

// TransformVector applies the linear part of the matrix to (x, y),
// ignoring the translation.
func (a Matrix2D) TransformVector(x, y float64) (float64, float64) {
	return a.A*x + a.C*y, a.B*x + a.D*y
}

// TransformPoint is a convenience wrapper for Transform.
func (a Matrix2D) TransformPoint(p Point) Point {
	x, y := a.Transform(p.X, p.Y)
	return Point{x, y}
}

// TFixed applies the matrix and converts to fixed coordinates.
func (a Matrix2D) TFixed(p Point) fixed.Point26_6 {
	x, y := a.Transform(p.X, p.Y)
	return toFixedP(x, y)
}

// TransformRect returns the bounding box of the image of `r`.
func (a Matrix2D) TransformRect(r Rect) Rect {
	if a.IsIdentity() {
		return r
	}
	corners := [4]Point{
		a.TransformPoint(Point{r.X, r.Y}),
		a.TransformPoint(Point{r.Right(), r.Y}),
		a.TransformPoint(Point{r.Right(), r.Bottom()}),
		a.TransformPoint(Point{r.X, r.Bottom()}),
	}
	minX, minY := corners[0].X, corners[0].Y
	maxX, maxY := minX, minY
	for _, c := range corners[1:] {
		minX, maxX = math.Min(minX, c.X), math.Max(maxX, c.X)
		minY, maxY = math.Min(minY, c.Y), math.Max(maxY, c.Y)
	}
	return Rect{minX, minY, maxX - minX, maxY - minY}
}
