package svgpath

import (
	"math"

	"golang.org/x/image/math/fixed"
)

// This file implements the transformation from
// high level shapes to their path equivalent

// maxDx is the maximum radians a cubic splice is allowed to span
// in ellipse parametric when approximating an off-axis ellipse.
const maxDx float64 = math.Pi / 8

// kappa is the distance of the control points, for a cubic
// approximation of a quarter of unit circle.
const kappa = 0.5522847498307936

// toFixedP converts two floats to a fixed point.
func toFixedP(x, y float64) (p fixed.Point26_6) {
	p.X = fixed.Int26_6(x * 64)
	p.Y = fixed.Int26_6(y * 64)
	return
}

// NewRect returns the path of a rectangle, with optional
// rounded corners. Radius are clamped to half the size of the rectangle.
// If only one of rx or ry is positive, it is used for both.
func NewRect(x, y, w, h, rx, ry float64) Path {
	if w <= 0 || h <= 0 {
		return nil
	}
	if rx <= 0 {
		rx = ry
	} else if ry <= 0 {
		ry = rx
	}
	rx, ry = math.Min(rx, w/2), math.Min(ry, h/2)
	var p Path
	if rx <= 0 || ry <= 0 {
		p.addRect(x, y, x+w, y+h)
	} else {
		p.addRoundRect(x, y, x+w, y+h, rx, ry)
	}
	return p
}

// NewEllipse returns the path of an ellipse, or nil
// if one of the radius is not positive.
func NewEllipse(cx, cy, rx, ry float64) Path {
	if rx <= 0 || ry <= 0 {
		return nil
	}
	var p Path
	p.Start(Point{cx + rx, cy})
	p.quarterEllipse(Point{cx, cy}, Point{rx, 0}, Point{0, ry})
	p.quarterEllipse(Point{cx, cy}, Point{0, ry}, Point{-rx, 0})
	p.quarterEllipse(Point{cx, cy}, Point{-rx, 0}, Point{0, -ry})
	p.quarterEllipse(Point{cx, cy}, Point{0, -ry}, Point{rx, 0})
	p.Stop(true)
	return p
}

// NewPolyline returns the path joining the given points,
// closed if `closed` is true. At least two points are required.
func NewPolyline(points []Point, closed bool) Path {
	if len(points) < 2 {
		return nil
	}
	var p Path
	p.Start(points[0])
	for _, pt := range points[1:] {
		p.Line(pt)
	}
	p.Stop(closed)
	return p
}

// addRect adds a rectangle of the indicated size.
func (p *Path) addRect(minX, minY, maxX, maxY float64) {
	p.Start(Point{minX, minY})
	p.Line(Point{maxX, minY})
	p.Line(Point{maxX, maxY})
	p.Line(Point{minX, maxY})
	p.Stop(true)
}

// addRoundRect adds a rectangle of the indicated size,
// with rounded corners of radius rx in the x axis and ry in the y axis.
func (p *Path) addRoundRect(minX, minY, maxX, maxY, rx, ry float64) {
	p.Start(Point{minX + rx, minY})
	p.Line(Point{maxX - rx, minY})
	p.quarterEllipse(Point{maxX - rx, minY + ry}, Point{0, -ry}, Point{rx, 0})
	p.Line(Point{maxX, maxY - ry})
	p.quarterEllipse(Point{maxX - rx, maxY - ry}, Point{rx, 0}, Point{0, ry})
	p.Line(Point{minX + rx, maxY})
	p.quarterEllipse(Point{minX + rx, maxY - ry}, Point{0, ry}, Point{-rx, 0})
	p.Line(Point{minX, minY + ry})
	p.quarterEllipse(Point{minX + rx, minY + ry}, Point{-rx, 0}, Point{0, -ry})
	p.Stop(true)
}

// quarterEllipse adds a cubic from center+from to center+to,
// where `from` and `to` are orthogonal radius vectors.
func (p *Path) quarterEllipse(center, from, to Point) {
	start, end := center.Add(from), center.Add(to)
	p.CubeBezier(start.Add(to.Scale(kappa)), end.Add(from.Scale(kappa)), end)
}

// arc stores the parameters of an SVG arc command,
// in absolute coordinates.
type arc struct {
	rx, ry   float64
	rotation float64 // degrees
	largeArc bool
	sweep    bool
	end      Point
}

// addArc adds an arc to the path, starting at (px, py)
// and centered at (cx, cy).
func (p *Path) addArc(a arc, cx, cy, px, py float64) (lx, ly float64) {
	rotX := a.rotation * math.Pi / 180 // Convert degress to radians
	startAngle := math.Atan2(py-cy, px-cx) - rotX
	endAngle := math.Atan2(a.end.Y-cy, a.end.X-cx) - rotX
	deltaTheta := endAngle - startAngle
	arcBig := math.Abs(deltaTheta) > math.Pi

	// Approximate ellipse using cubic bezeir splines
	etaStart := math.Atan2(math.Sin(startAngle)/a.ry, math.Cos(startAngle)/a.rx)
	etaEnd := math.Atan2(math.Sin(endAngle)/a.ry, math.Cos(endAngle)/a.rx)
	deltaEta := etaEnd - etaStart
	if arcBig != a.largeArc {
		if deltaEta < 0 {
			deltaEta += math.Pi * 2
		} else {
			deltaEta -= math.Pi * 2
		}
	}
	// This check might be needed if the center point of the elipse is
	// at the midpoint of the start and end lines.
	if deltaEta < 0 && a.sweep {
		deltaEta += math.Pi * 2
	} else if deltaEta >= 0 && !a.sweep {
		deltaEta -= math.Pi * 2
	}

	// Round up to determine number of cubic splines to approximate bezier curve
	segs := int(math.Abs(deltaEta)/maxDx) + 1
	dEta := deltaEta / float64(segs) // span of each segment
	// Approximate the ellipse using a set of cubic bezier curves by the method of
	// L. Maisonobe, "Drawing an elliptical arc using polylines, quadratic
	// or cubic Bezier curves", 2003
	// https://www.spaceroots.org/documents/elllipse/elliptical-arc.pdf
	tde := math.Tan(dEta / 2)
	alpha := math.Sin(dEta) * (math.Sqrt(4+3*tde*tde) - 1) / 3 // Math is fun!
	lx, ly = px, py
	sinTheta, cosTheta := math.Sin(rotX), math.Cos(rotX)
	ldx, ldy := ellipsePrime(a.rx, a.ry, sinTheta, cosTheta, etaStart, cx, cy)
	for i := 1; i <= segs; i++ {
		eta := etaStart + dEta*float64(i)
		var px, py float64
		if i == segs {
			px, py = a.end.X, a.end.Y // Just makes the end point exact; no roundoff error
		} else {
			px, py = ellipsePointAt(a.rx, a.ry, sinTheta, cosTheta, eta, cx, cy)
		}
		dx, dy := ellipsePrime(a.rx, a.ry, sinTheta, cosTheta, eta, cx, cy)
		p.CubeBezier(Point{lx + alpha*ldx, ly + alpha*ldy},
			Point{px - alpha*dx, py - alpha*dy}, Point{px, py})
		lx, ly, ldx, ldy = px, py, dx, dy
	}
	return lx, ly
}

// ellipsePrime gives tangent vectors for parameterized elipse; a, b, radii, eta parameter, center cx, cy
func ellipsePrime(a, b, sinTheta, cosTheta, eta, cx, cy float64) (px, py float64) {
	bCosEta := b * math.Cos(eta)
	aSinEta := a * math.Sin(eta)
	px = -aSinEta*cosTheta - bCosEta*sinTheta
	py = -aSinEta*sinTheta + bCosEta*cosTheta
	return
}

// ellipsePointAt gives points for parameterized elipse; a, b, radii, eta parameter, center cx, cy
func ellipsePointAt(a, b, sinTheta, cosTheta, eta, cx, cy float64) (px, py float64) {
	aCosEta := a * math.Cos(eta)
	bSinEta := b * math.Sin(eta)
	px = cx + aCosEta*cosTheta - bSinEta*sinTheta
	py = cy + aCosEta*sinTheta + bSinEta*cosTheta
	return
}

// findEllipseCenter locates the center of the Ellipse if it exists. If it does not exist,
// the radius values will be increased minimally for a solution to be possible
// while preserving the ra to rb ratio.  ra and rb arguments are pointers that can be
// checked after the call to see if the values changed. This method uses coordinate transformations
// to reduce the problem to finding the center of a circle that includes the origin
// and an arbitrary point. The center of the circle is then transformed
// back to the original coordinates and returned.
func findEllipseCenter(ra, rb *float64, rotX, startX, startY, endX, endY float64, sweep, smallArc bool) (cx, cy float64) {
	cos, sin := math.Cos(rotX), math.Sin(rotX)

	// Move origin to start point
	nx, ny := endX-startX, endY-startY

	// Rotate ellipse x-axis to coordinate x-axis
	nx, ny = nx*cos+ny*sin, -nx*sin+ny*cos
	// Scale X dimension so that ra = rb
	nx *= *rb / *ra // Now the ellipse is a circle radius rb; therefore foci and center coincide

	midX, midY := nx/2, ny/2
	midlenSq := midX*midX + midY*midY

	var hr float64
	if *rb**rb < midlenSq {
		// Requested ellipse does not exist; scale ra, rb to fit. Length of
		// span is greater than max width of ellipse, must scale *ra, *rb
		nrb := math.Sqrt(midlenSq)
		if *ra == *rb {
			*ra = nrb // prevents roundoff
		} else {
			*ra = *ra * nrb / *rb
		}
		*rb = nrb
	} else {
		hr = math.Sqrt(*rb**rb-midlenSq) / math.Sqrt(midlenSq)
	}
	// Notice that if hr is zero, both answers are the same.
	if (sweep && smallArc) || (!sweep && !smallArc) {
		cx = midX + midY*hr
		cy = midY - midX*hr
	} else {
		cx = midX - midY*hr
		cy = midY + midX*hr
	}

	// reverse scale
	cx *= *ra / *rb
	//Reverse rotate and translate back to original coordinates
	return cx*cos - cy*sin + startX, cx*sin + cy*cos + startY
}
