package svgpath

import (
	"math"
	"math/rand"
	"testing"
)

func randPoint() Point {
	return Point{rand.Float64() * 1100, rand.Float64() * 1000}
}

// the bounding box must contain every point of the curve,
// and be reached by at least one point on each side.
func checkBox(t *testing.T, curve bezier) {
	box := [4]float64{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	extend(&box, curve)
	const eps = 1e-6
	sampled := [4]float64{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for i := 0; i <= 1000; i++ {
		x, y := curve.evaluateCurve(float64(i) / 1000)
		if x < box[0]-eps || x > box[2]+eps || y < box[1]-eps || y > box[3]+eps {
			t.Fatalf("point (%f, %f) outside of %v", x, y, box)
		}
		sampled[0], sampled[1] = math.Min(sampled[0], x), math.Min(sampled[1], y)
		sampled[2], sampled[3] = math.Max(sampled[2], x), math.Max(sampled[3], y)
	}
	for i := range box {
		if math.Abs(box[i]-sampled[i]) > 0.5 {
			t.Fatalf("box %v is not tight (sampled %v)", box, sampled)
		}
	}
}

func TestBoundingBox(t *testing.T) {
	for range [200]int{} {
		checkBox(t, line{randPoint(), randPoint()})
		checkBox(t, quadBezier{randPoint(), randPoint(), randPoint()})
		checkBox(t, cubicBezier{randPoint(), randPoint(), randPoint(), randPoint()})
	}
}

func TestPathBounds(t *testing.T) {
	if b := Path(nil).Bounds(); b != (Rect{}) {
		t.Fatalf("expected empty bounds, got %v", b)
	}

	p := NewEllipse(50, 50, 20, 10)
	b := p.Bounds()
	if math.Abs(b.X-30) > 1e-9 || math.Abs(b.Y-40) > 1e-9 || math.Abs(b.W-40) > 1e-9 || math.Abs(b.H-20) > 1e-9 {
		t.Fatalf("unexpected ellipse bounds %v", b)
	}

	p = NewRect(10, 20, 30, 40, 5, 0)
	if b := p.Bounds(); b != (Rect{10, 20, 30, 40}) {
		t.Fatalf("unexpected rect bounds %v", b)
	}
}

func TestShapes(t *testing.T) {
	if NewRect(0, 0, 0, 10, 0, 0) != nil {
		t.Error("zero width rect should be empty")
	}
	if NewEllipse(0, 0, 10, 0) != nil {
		t.Error("zero radius ellipse should be empty")
	}
	if NewPolyline([]Point{{0, 0}}, true) != nil {
		t.Error("a single point polyline should be empty")
	}
	if p := NewPolyline([]Point{{0, 0}, {10, 0}, {10, 10}}, true); len(p) != 4 {
		t.Errorf("unexpected polygon %s", p)
	}
	if p := NewPolyline([]Point{{0, 0}, {10, 0}, {10, 10}}, false); len(p) != 3 {
		t.Errorf("unexpected polyline %s", p)
	}
	// radius are clamped to half the size
	p := NewRect(0, 0, 10, 10, 20, 20)
	if b := p.Bounds(); math.Abs(b.W-10) > 1e-9 || math.Abs(b.H-10) > 1e-9 {
		t.Errorf("unexpected bounds %v", b)
	}
}
