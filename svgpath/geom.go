package svgpath

import (
	"math"

	"golang.org/x/image/math/fixed"
)

// Point is a location in user or device space.
type Point struct{ X, Y float64 }

func (p Point) Add(q Point) Point         { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point         { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(f float64) Point     { return Point{p.X * f, p.Y * f} }
func (p Point) Dist(q Point) float64      { return math.Hypot(p.X-q.X, p.Y-q.Y) }
func (p Point) Len() float64              { return math.Hypot(p.X, p.Y) }
func (p Point) Equal(q Point) bool        { return p.X == q.X && p.Y == q.Y }
func (p Point) Round(precision int) Point { return Point{round(p.X, precision), round(p.Y, precision)} }

func round(v float64, precision int) float64 {
	f := math.Pow10(precision)
	return math.Round(v*f) / f
}

// Rect is an axis aligned rectangle, given by its
// top left corner and size.
type Rect struct{ X, Y, W, H float64 }

func (r Rect) Left() float64   { return r.X }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Location returns the top left corner.
func (r Rect) Location() Point { return Point{r.X, r.Y} }

// IsEmpty returns true if the rectangle has no area.
func (r Rect) IsEmpty() bool { return r.W <= 0 || r.H <= 0 }

// Contains uses half-open intervals : the left and top edges
// are inside, the right and bottom are not.
func (r Rect) Contains(p Point) bool {
	return r.X <= p.X && p.X < r.Right() && r.Y <= p.Y && p.Y < r.Bottom()
}

// Union returns the smallest rectangle containing both `r` and `o`.
func (r Rect) Union(o Rect) Rect {
	minX, minY := math.Min(r.X, o.X), math.Min(r.Y, o.Y)
	maxX, maxY := math.Max(r.Right(), o.Right()), math.Max(r.Bottom(), o.Bottom())
	return Rect{minX, minY, maxX - minX, maxY - minY}
}

// Inflate grows the rectangle by `dx` on the left and right,
// and `dy` on the top and bottom.
func (r Rect) Inflate(dx, dy float64) Rect {
	return Rect{r.X - dx, r.Y - dy, r.W + 2*dx, r.H + 2*dy}
}

// ToFixed converts to a fixed rectangle.
func (r Rect) ToFixed() fixed.Rectangle26_6 {
	return fixed.Rectangle26_6{Min: toFixedP(r.X, r.Y), Max: toFixedP(r.Right(), r.Bottom())}
}

// RectFromFixed converts back from a fixed rectangle.
func RectFromFixed(r fixed.Rectangle26_6) Rect {
	mnx, mny := float64(r.Min.X)/64, float64(r.Min.Y)/64
	mxx, mxy := float64(r.Max.X)/64, float64(r.Max.Y)/64
	return Rect{mnx, mny, mxx - mnx, mxy - mny}
}
