package svgpath

import (
	"math"
	"testing"
)

func TestBuildRequiresMove(t *testing.T) {
	p, _ := Build([]Segment{
		LineSegment{End: Point{10, 10}},
		LineSegment{End: Point{20, 20}},
	})
	if p != nil {
		t.Fatalf("expected empty path, got %s", p)
	}

	p, _ = Build(nil)
	if p != nil {
		t.Fatalf("expected empty path, got %s", p)
	}
}

func TestBuildClosedTriangle(t *testing.T) {
	segs, err := ParsePathData("M 10 10 L 20 20 L 30 10 Z")
	if err != nil {
		t.Fatal(err)
	}
	p, end := Build(segs)
	if len(p) != 4 {
		t.Fatalf("unexpected path %s", p)
	}
	if _, ok := p[3].(Close); !ok {
		t.Fatalf("expected closed path, got %s", p)
	}
	if end != (Point{10, 10}) {
		t.Fatalf("close should return to start, got %v", end)
	}
	moves := 0
	for _, op := range p {
		if _, ok := op.(MoveTo); ok {
			moves++
		}
	}
	if moves != 1 {
		t.Fatalf("expected one subpath, got %d", moves)
	}
	if b := p.Bounds(); b != (Rect{10, 10, 20, 10}) {
		t.Fatalf("unexpected bounds %v", b)
	}
}

func TestSmoothCubicReflection(t *testing.T) {
	segs, err := ParsePathData("M 0 0 C 0 0 10 0 10 10 S 20 20 20 10")
	if err != nil {
		t.Fatal(err)
	}
	p, _ := Build(segs)
	if len(p) != 3 {
		t.Fatalf("unexpected path %s", p)
	}
	second, ok := p[2].(CubicTo)
	if !ok {
		t.Fatalf("expected a cubic, got %T", p[2])
	}
	if second[0] != (Point{10, 20}) {
		t.Fatalf("expected reflected control point (10,20), got %v", second[0])
	}
}

func TestSmoothWithoutPrevious(t *testing.T) {
	// the previous segment is a line: the control point is the current point
	p, _ := Build([]Segment{
		MoveSegment{End: Point{0, 0}},
		LineSegment{End: Point{5, 5}},
		CubicSegment{C2: Point{10, 0}, End: Point{10, 10}, Smooth: true},
		QuadSegment{End: Point{20, 10}, Smooth: true},
	})
	if c := p[2].(CubicTo); c[0] != (Point{5, 5}) {
		t.Fatalf("unexpected control point %v", c[0])
	}
	// the previous segment is a cubic: different family
	if q := p[3].(QuadTo); q[0] != (Point{10, 10}) {
		t.Fatalf("unexpected control point %v", q[0])
	}
}

func TestSmoothQuad(t *testing.T) {
	segs, _ := ParsePathData("M0 0 Q 5 10 10 0 T 20 0")
	p, _ := Build(segs)
	if q := p[2].(QuadTo); q[0] != (Point{15, -10}) {
		t.Fatalf("unexpected control point %v", q[0])
	}
}

func TestRelativeAndUnset(t *testing.T) {
	segs, err := ParsePathData("m 10 10 h 5 v 5 H 0 l -1 -1")
	if err != nil {
		t.Fatal(err)
	}
	p, end := Build(segs)
	exp := []Point{{10, 10}, {15, 10}, {15, 15}, {0, 15}, {-1, 14}}
	got := p.Vertices()
	if len(got) != len(exp) {
		t.Fatalf("unexpected path %s", p)
	}
	for i := range exp {
		if got[i] != exp[i] {
			t.Errorf("point %d: expected %v, got %v", i, exp[i], got[i])
		}
	}
	if end != (Point{-1, 14}) {
		t.Errorf("unexpected end point %v", end)
	}
}

func TestArc(t *testing.T) {
	segs, err := ParsePathData("M 0 0 A 10 10 0 0 1 20 0")
	if err != nil {
		t.Fatal(err)
	}
	p, _ := Build(segs)
	b := p.Bounds()
	// half circle of radius 10, below or above the x axis
	if math.Abs(b.W-20) > 1e-3 || math.Abs(b.H-10) > 0.1 {
		t.Fatalf("unexpected arc bounds %v", b)
	}

	// degenerate arcs
	segs, _ = ParsePathData("M 0 0 A 0 10 0 0 1 20 0 A 5 5 0 0 1 20 0")
	p, _ = Build(segs)
	if len(p) != 2 {
		t.Fatalf("expected a single line, got %s", p)
	}
	if _, ok := p[1].(LineTo); !ok {
		t.Fatalf("expected a line, got %T", p[1])
	}
}

func TestDrawAfterClose(t *testing.T) {
	segs, _ := ParsePathData("M 5 5 L 10 5 Z L 5 10")
	p, _ := Build(segs)
	if len(p) != 5 {
		t.Fatalf("unexpected path %s", p)
	}
	if m, ok := p[3].(MoveTo); !ok || Point(m) != (Point{5, 5}) {
		t.Fatalf("expected an implicit move to the subpath start, got %v", p[3])
	}
}

func TestPoints(t *testing.T) {
	var p Path
	p.Start(Point{0, 0})
	p.QuadBezier(Point{5, 5}, Point{10, 0})
	p.Stop(true)
	pts := p.Points()
	if len(pts) != 3 || pts[1] != (Point{5, 5}) || pts[2] != (Point{10, 0}) {
		t.Fatalf("unexpected points %v", pts)
	}
	if v := p.Vertices(); len(v) != 3 || v[2] != (Point{0, 0}) {
		t.Fatalf("unexpected vertices %v", v)
	}
}
