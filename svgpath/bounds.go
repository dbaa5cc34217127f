package svgpath

import (
	"math"
)

// compute the bouding box of a path, needed when using gradient with objectBoudingBox

type line [2]Point

func (l line) criticalPoints() (tX, tY []float64) {
	return nil, nil
}

func (l line) evaluateCurve(t float64) (x, y float64) {
	return bezierLine(l[0].X, l[1].X, t), bezierLine(l[0].Y, l[1].Y, t)
}

func bezierLine(p0, p1, t float64) float64 {
	return (p1-p0)*t + p0
}

type quadBezier [3]Point

// quadratic polinomial
// x = At^2 + Bt + C
// where
// A = p0 + p2 - 2p1
// B = 2(p1 - p0)
// C = p0
func bezierQuad(p0, p1, p2, t float64) float64 {
	return (p0+p2-2*p1)*t*t + 2*(p1-p0)*t + p0
}

// derivative as at + b where a,b :
func quadraticDerivative(p0, p1, p2 float64) (a, b float64) {
	return 2 * (p2 - p1 - (p1 - p0)), 2 * (p1 - p0)
}

// handle the case where a = 0
func linearRoots(a, b float64) []float64 {
	if a == 0 {
		return nil
	}
	return []float64{-b / a}
}

func (cu quadBezier) criticalPoints() (tX, tY []float64) {
	aX, bX := quadraticDerivative(cu[0].X, cu[1].X, cu[2].X)
	aY, bY := quadraticDerivative(cu[0].Y, cu[1].Y, cu[2].Y)
	return linearRoots(aX, bX), linearRoots(aY, bY)
}

func (cu quadBezier) evaluateCurve(t float64) (x, y float64) {
	return bezierQuad(cu[0].X, cu[1].X, cu[2].X, t), bezierQuad(cu[0].Y, cu[1].Y, cu[2].Y, t)
}

type cubicBezier [4]Point

func (cu cubicBezier) criticalPoints() (tX, tY []float64) {
	aX, bX, cX := cubicDerivative(cu[0].X, cu[1].X, cu[2].X, cu[3].X)
	aY, bY, cY := cubicDerivative(cu[0].Y, cu[1].Y, cu[2].Y, cu[3].Y)
	return quadraticRoots(aX, bX, cX), quadraticRoots(aY, bY, cY)
}

func (cu cubicBezier) evaluateCurve(t float64) (x, y float64) {
	return bezierSpline(cu[0].X, cu[1].X, cu[2].X, cu[3].X, t), bezierSpline(cu[0].Y, cu[1].Y, cu[2].Y, cu[3].Y, t)
}

// cubic polinomial
// x = At^3 + Bt^2 + Ct + D
// where A,B,C,D:
// A = p3 -3 * p2 + 3 * p1 - p0
// B = 3 * p2 - 6 * p1 +3 * p0
// C = 3 * p1 - 3 * p0
// D = p0
func bezierSpline(p0, p1, p2, p3, t float64) float64 {
	return (p3-3*p2+3*p1-p0)*t*t*t +
		(3*p2-6*p1+3*p0)*t*t +
		(3*p1-3*p0)*t +
		(p0)
}

// X' = (3*p3-9*p2+9*p1-3*p0)t^2 + (6*p2-12*p1+6*p0)t + (3*p1-3*p0)
// taken as aX^2 + bX + c  a,b and c are:
func cubicDerivative(p0, p1, p2, p3 float64) (a, b, c float64) {
	return 3*p3 - 9*p2 + 9*p1 - 3*p0, 6*p2 - 12*p1 + 6*p0, 3*p1 - 3*p0
}

// b^2 - 4ac = Determinant
func determinant(a, b, c float64) float64 { return b*b - 4*a*c }

func solve(a, b, c float64, s bool) float64 {
	sign := 1.
	if !s {
		sign = -1.
	}
	return (-b + (math.Sqrt((b*b)-(4*a*c)) * sign)) / (2 * a)
}

func quadraticRoots(a, b, c float64) []float64 {
	if a == 0 {
		// aX^2 + bX + c well then then this is a simple line
		return linearRoots(b, c)
	}
	d := determinant(a, b, c)
	if d < 0 {
		return nil
	}
	if d == 0 {
		return []float64{solve(a, b, c, true)}
	}
	return []float64{
		solve(a, b, c, true),
		solve(a, b, c, false),
	}
}

type bezier interface {
	// compute the t zeroing the derivative
	criticalPoints() (tX, tY []float64)
	// compute the point a time t
	evaluateCurve(t float64) (x, y float64)
}

// extend grows the box [minX, minY, maxX, maxY] to include the curve.
func extend(box *[4]float64, curve bezier) {
	resX, resY := curve.criticalPoints()

	// add begin and end point
	for _, t := range append(append(resX, 0, 1), resY...) {
		// filter invalid value
		if !(0 <= t && t <= 1) {
			continue
		}
		x, y := curve.evaluateCurve(t)
		box[0] = math.Min(x, box[0])
		box[1] = math.Min(y, box[1])
		box[2] = math.Max(x, box[2])
		box[3] = math.Max(y, box[3])
	}
}

// Bounds returns the tight bounding box of the path,
// including curve extrema. An empty path has empty bounds.
func (p Path) Bounds() Rect {
	box := [4]float64{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	var current, start Point
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			current, start = Point(op), Point(op)
			extend(&box, line{current, current})
		case LineTo:
			extend(&box, line{current, Point(op)})
			current = Point(op)
		case QuadTo:
			extend(&box, quadBezier{current, op[0], op[1]})
			current = op[1]
		case CubicTo:
			extend(&box, cubicBezier{current, op[0], op[1], op[2]})
			current = op[2]
		case Close:
			current = start
		}
	}
	if math.IsInf(box[0], 1) {
		return Rect{}
	}
	return Rect{box[0], box[1], box[2] - box[0], box[3] - box[1]}
}
