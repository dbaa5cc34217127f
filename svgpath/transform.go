package svgpath

import (
	"errors"
	"math"
	"strings"
)

var errParamMismatch = errors.New("param mismatch")

// Transform is one primitive of a `transform` attribute.
type Transform interface {
	Matrix() Matrix2D
}

// Translation moves by (X, Y).
type Translation struct{ X, Y float64 }

// Scaling scales by (X, Y).
type Scaling struct{ X, Y float64 }

// Rotation rotates by Angle degrees around (CX, CY).
type Rotation struct{ Angle, CX, CY float64 }

// Skew skews by AngleX degrees along x, and AngleY degrees along y.
type Skew struct{ AngleX, AngleY float64 }

// Shear applies the raw shear factors (X, Y).
type Shear struct{ X, Y float64 }

// MatrixTransform is an explicit matrix(a b c d e f).
type MatrixTransform Matrix2D

func (t Translation) Matrix() Matrix2D { return Identity.Translate(t.X, t.Y) }
func (t Scaling) Matrix() Matrix2D     { return Identity.Scale(t.X, t.Y) }

func (t Rotation) Matrix() Matrix2D {
	return Identity.Translate(t.CX, t.CY).Rotate(t.Angle*math.Pi/180).Translate(-t.CX, -t.CY)
}

func (t Skew) Matrix() Matrix2D {
	return Matrix2D{1, math.Tan(t.AngleY * math.Pi / 180), math.Tan(t.AngleX * math.Pi / 180), 1, 0, 0}
}
func (t Shear) Matrix() Matrix2D           { return Matrix2D{1, t.Y, t.X, 1, 0, 0} }
func (t MatrixTransform) Matrix() Matrix2D { return Matrix2D(t) }

// TransformList is an ordered list of transforms, as found
// in a `transform` attribute.
type TransformList []Transform

// Matrix composes the list from left to right, each primitive
// post multiplying the accumulated matrix.
func (l TransformList) Matrix() Matrix2D {
	m := Identity
	for _, t := range l {
		m = m.Mult(t.Matrix())
	}
	return m
}

// ParseTransform parses a `transform` attribute value.
// The transforms read before an error are returned.
func ParseTransform(v string) (TransformList, error) {
	var out TransformList
	for _, t := range strings.Split(v, ")") {
		t = strings.TrimSpace(strings.TrimLeft(t, " ,\t\n\r"))
		if len(t) == 0 {
			continue
		}
		d := strings.Split(t, "(")
		if len(d) != 2 || len(d[1]) < 1 {
			return out, errParamMismatch // badly formed transformation
		}
		points, err := ParseNumbers(d[1])
		if err != nil {
			return out, err
		}
		tr, err := readTransformAttr(points, strings.ToLower(strings.TrimSpace(d[0])))
		if err != nil {
			return out, err
		}
		out = append(out, tr)
	}
	return out, nil
}

func readTransformAttr(points []float64, k string) (Transform, error) {
	ln := len(points)
	switch k {
	case "rotate":
		if ln == 1 {
			return Rotation{Angle: points[0]}, nil
		} else if ln == 3 {
			return Rotation{points[0], points[1], points[2]}, nil
		}
	case "translate":
		if ln == 1 {
			return Translation{points[0], 0}, nil
		} else if ln == 2 {
			return Translation{points[0], points[1]}, nil
		}
	case "skewx":
		if ln == 1 {
			return Skew{AngleX: points[0]}, nil
		}
	case "skewy":
		if ln == 1 {
			return Skew{AngleY: points[0]}, nil
		}
	case "scale":
		if ln == 1 {
			return Scaling{points[0], points[0]}, nil
		} else if ln == 2 {
			return Scaling{points[0], points[1]}, nil
		}
	case "matrix":
		if ln == 6 {
			return MatrixTransform{
				A: points[0],
				B: points[1],
				C: points[2],
				D: points[3],
				E: points[4],
				F: points[5],
			}, nil
		}
	}
	return nil, errParamMismatch
}
