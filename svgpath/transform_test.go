package svgpath

import (
	"math"
	"testing"
)

func closeTo(a, b Matrix2D) bool {
	const eps = 1e-9
	return math.Abs(a.A-b.A) < eps && math.Abs(a.B-b.B) < eps && math.Abs(a.C-b.C) < eps &&
		math.Abs(a.D-b.D) < eps && math.Abs(a.E-b.E) < eps && math.Abs(a.F-b.F) < eps
}

func TestParseTransform(t *testing.T) {
	for _, test := range []struct {
		in  string
		exp Matrix2D
	}{
		{"translate(10)", Matrix2D{1, 0, 0, 1, 10, 0}},
		{"translate(10, 20)", Matrix2D{1, 0, 0, 1, 10, 20}},
		{"scale(2)", Matrix2D{2, 0, 0, 2, 0, 0}},
		{"scale(2 3)", Matrix2D{2, 0, 0, 3, 0, 0}},
		{"rotate(90)", Matrix2D{0, 1, -1, 0, 0, 0}},
		{"matrix(1 2 3 4 5 6)", Matrix2D{1, 2, 3, 4, 5, 6}},
		{"translate(10,0) scale(2)", Matrix2D{2, 0, 0, 2, 10, 0}},
		{"scale(2) translate(10,0)", Matrix2D{2, 0, 0, 2, 20, 0}},
		{"skewX(45)", Matrix2D{1, 0, 1, 1, 0, 0}},
	} {
		l, err := ParseTransform(test.in)
		if err != nil {
			t.Fatalf("%s: %s", test.in, err)
		}
		if got := l.Matrix(); !closeTo(got, test.exp) {
			t.Errorf("%s: expected %v, got %v", test.in, test.exp, got)
		}
	}

	if _, err := ParseTransform("rotate(1 2)"); err == nil {
		t.Error("expected error for invalid parameters")
	}
}

func TestRotationCenter(t *testing.T) {
	m := Rotation{Angle: 180, CX: 10, CY: 10}.Matrix()
	x, y := m.Transform(0, 0)
	if math.Abs(x-20) > 1e-9 || math.Abs(y-20) > 1e-9 {
		t.Fatalf("unexpected rotated point (%f, %f)", x, y)
	}
}

func TestInvert(t *testing.T) {
	m := Identity.Translate(10, 5).Rotate(0.3).Scale(2, 4)
	if got := m.Mult(m.Invert()); !closeTo(got, Identity) {
		t.Fatalf("expected identity, got %v", got)
	}
}

func TestTransformRect(t *testing.T) {
	r := Identity.Scale(2, 3).Translate(1, 1).TransformRect(Rect{0, 0, 10, 10})
	if r != (Rect{2, 3, 20, 30}) {
		t.Fatalf("unexpected rect %v", r)
	}
}
