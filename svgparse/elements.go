package svgparse

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/benoitkugler/svgrender/svgfilter"
	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgrender"
	"github.com/benoitkugler/svgrender/svgunit"
)

// svgFunc builds the element for a start tag. Malformed attributes
// are reported with cursor.readAttrs, and left unset.
type svgFunc func(c *cursor, attrs []xml.Attr) (svgrender.Element, error)

var elementFuncs = map[string]svgFunc{
	"svg":            svgF,
	"g":              gF,
	"defs":           defsF,
	"symbol":         symbolF,
	"use":            useF,
	"switch":         switchF,
	"path":           pathF,
	"rect":           rectF,
	"circle":         circleF,
	"ellipse":        ellipseF,
	"line":           lineF,
	"polyline":       polylineF,
	"polygon":        polygonF,
	"text":           textF,
	"tspan":          tspanF,
	"textPath":       textPathF,
	"linearGradient": linearGradientF,
	"radialGradient": radialGradientF,
	"stop":           stopF,
	"pattern":        patternF,
	"clipPath":       clipPathF,
	"marker":         markerF,
	"filter":         filterF,
	"feColorMatrix":  feColorMatrixF,
	"feGaussianBlur": feGaussianBlurF,
	"feOffset":       feOffsetF,
	"feMerge":        feMergeF,
	"feMergeNode":    feMergeNodeF,
}

// readAttrs calls `read` for each attribute, reporting its errors
// according to the error mode.
func (c *cursor) readAttrs(tag string, attrs []xml.Attr, read func(attr xml.Attr) error) error {
	for _, attr := range attrs {
		if err := read(attr); err != nil {
			if err = c.report(fmt.Errorf("invalid attribute %s on <%s>: %s", attr.Name.Local, tag, err)); err != nil {
				return err
			}
		}
	}
	return nil
}

func svgF(c *cursor, attrs []xml.Attr) (svgrender.Element, error) {
	f := svgrender.NewFragment()
	err := c.readAttrs("svg", attrs, func(attr xml.Attr) (err error) {
		switch attr.Name.Local {
		case "x":
			err = setLength(&f.X, attr.Value)
		case "y":
			err = setLength(&f.Y, attr.Value)
		case "width":
			err = setLength(&f.Width, attr.Value)
		case "height":
			err = setLength(&f.Height, attr.Value)
		case "viewBox":
			f.ViewBox, err = parseViewBox(attr.Value)
		case "preserveAspectRatio":
			f.Aspect, err = parseAspectRatio(attr.Value)
		}
		return err
	})
	return f, err
}

func gF(*cursor, []xml.Attr) (svgrender.Element, error)      { return &svgrender.Group{}, nil }
func defsF(*cursor, []xml.Attr) (svgrender.Element, error)   { return &svgrender.Defs{}, nil }
func switchF(*cursor, []xml.Attr) (svgrender.Element, error) { return &svgrender.Switch{}, nil }
func filterF(*cursor, []xml.Attr) (svgrender.Element, error) { return &svgrender.Filter{}, nil }

func symbolF(c *cursor, attrs []xml.Attr) (svgrender.Element, error) {
	s := &svgrender.Symbol{}
	err := c.readAttrs("symbol", attrs, func(attr xml.Attr) (err error) {
		switch attr.Name.Local {
		case "viewBox":
			s.ViewBox, err = parseViewBox(attr.Value)
		case "preserveAspectRatio":
			s.Aspect, err = parseAspectRatio(attr.Value)
		}
		return err
	})
	return s, err
}

func useF(c *cursor, attrs []xml.Attr) (svgrender.Element, error) {
	u := &svgrender.Use{}
	err := c.readAttrs("use", attrs, func(attr xml.Attr) (err error) {
		switch attr.Name.Local {
		case "href":
			u.Href, err = parseHref(attr.Value)
		case "x":
			err = setLength(&u.X, attr.Value)
		case "y":
			err = setLength(&u.Y, attr.Value)
		case "width":
			err = setLength(&u.Width, attr.Value)
		case "height":
			err = setLength(&u.Height, attr.Value)
		}
		return err
	})
	return u, err
}

func pathF(c *cursor, attrs []xml.Attr) (svgrender.Element, error) {
	p := &svgrender.PathElement{}
	err := c.readAttrs("path", attrs, func(attr xml.Attr) (err error) {
		switch attr.Name.Local {
		case "d":
			// keep the segments read before an error
			p.Segments, err = svgpath.ParsePathData(attr.Value)
		case "pathLength":
			p.PathLength, err = parseFloat(attr.Value)
		}
		return err
	})
	return p, err
}

func rectF(c *cursor, attrs []xml.Attr) (svgrender.Element, error) {
	r := &svgrender.Rect{}
	err := c.readAttrs("rect", attrs, func(attr xml.Attr) (err error) {
		switch attr.Name.Local {
		case "x":
			err = setLength(&r.X, attr.Value)
		case "y":
			err = setLength(&r.Y, attr.Value)
		case "width":
			err = setLength(&r.Width, attr.Value)
		case "height":
			err = setLength(&r.Height, attr.Value)
		case "rx":
			err = setLength(&r.RX, attr.Value)
		case "ry":
			err = setLength(&r.RY, attr.Value)
		}
		return err
	})
	return r, err
}

func circleF(c *cursor, attrs []xml.Attr) (svgrender.Element, error) {
	ci := &svgrender.Circle{}
	err := c.readAttrs("circle", attrs, func(attr xml.Attr) (err error) {
		switch attr.Name.Local {
		case "cx":
			err = setLength(&ci.CX, attr.Value)
		case "cy":
			err = setLength(&ci.CY, attr.Value)
		case "r":
			err = setLength(&ci.R, attr.Value)
		}
		return err
	})
	return ci, err
}

func ellipseF(c *cursor, attrs []xml.Attr) (svgrender.Element, error) {
	e := &svgrender.Ellipse{}
	var hasRX, hasRY bool
	err := c.readAttrs("ellipse", attrs, func(attr xml.Attr) (err error) {
		switch attr.Name.Local {
		case "cx":
			err = setLength(&e.CX, attr.Value)
		case "cy":
			err = setLength(&e.CY, attr.Value)
		case "rx":
			hasRX = true
			err = setLength(&e.RX, attr.Value)
		case "ry":
			hasRY = true
			err = setLength(&e.RY, attr.Value)
		}
		return err
	})
	// a missing radius takes the value of the other one
	if hasRX && !hasRY {
		e.RY = e.RX
	} else if hasRY && !hasRX {
		e.RX = e.RY
	}
	return e, err
}

func lineF(c *cursor, attrs []xml.Attr) (svgrender.Element, error) {
	l := &svgrender.Line{}
	err := c.readAttrs("line", attrs, func(attr xml.Attr) (err error) {
		switch attr.Name.Local {
		case "x1":
			err = setLength(&l.X1, attr.Value)
		case "y1":
			err = setLength(&l.Y1, attr.Value)
		case "x2":
			err = setLength(&l.X2, attr.Value)
		case "y2":
			err = setLength(&l.Y2, attr.Value)
		}
		return err
	})
	return l, err
}

func polylineF(c *cursor, attrs []xml.Attr) (svgrender.Element, error) {
	p := &svgrender.Polyline{}
	err := c.readAttrs("polyline", attrs, func(attr xml.Attr) error {
		if attr.Name.Local == "points" {
			p.Points = svgpath.ParsePoints(attr.Value)
		}
		return nil
	})
	return p, err
}

func polygonF(c *cursor, attrs []xml.Attr) (svgrender.Element, error) {
	el, err := polylineF(c, attrs)
	el.(*svgrender.Polyline).Closed = true
	return el, err
}

// readTextContent reads the positioning attributes of text elements.
func (c *cursor) readTextContent(tag string, t *svgrender.TextContent, attrs []xml.Attr, extra func(attr xml.Attr) error) error {
	t.PreserveSpace = c.parentPreserves()
	return c.readAttrs(tag, attrs, func(attr xml.Attr) (err error) {
		switch attr.Name.Local {
		case "x":
			t.X, err = svgunit.ParseList(attr.Value)
		case "y":
			t.Y, err = svgunit.ParseList(attr.Value)
		case "dx":
			t.DX, err = svgunit.ParseList(attr.Value)
		case "dy":
			t.DY, err = svgunit.ParseList(attr.Value)
		case "rotate":
			t.Rotate, err = svgpath.ParseNumbers(attr.Value)
		case "textLength":
			t.TextLength, err = parseOptLength(attr.Value)
		case "lengthAdjust":
			switch attr.Value {
			case "spacing":
				t.LengthAdjust = svgrender.Spacing
			case "spacingAndGlyphs":
				t.LengthAdjust = svgrender.SpacingAndGlyphs
			default:
				err = errParamMismatch
			}
		case "space": // xml:space
			t.PreserveSpace = attr.Value == "preserve"
		default:
			if extra != nil {
				err = extra(attr)
			}
		}
		return err
	})
}

func textF(c *cursor, attrs []xml.Attr) (svgrender.Element, error) {
	t := &svgrender.Text{}
	err := c.readTextContent("text", &t.TextContent, attrs, nil)
	return t, err
}

func tspanF(c *cursor, attrs []xml.Attr) (svgrender.Element, error) {
	t := &svgrender.TSpan{}
	err := c.readTextContent("tspan", &t.TextContent, attrs, nil)
	return t, err
}

func textPathF(c *cursor, attrs []xml.Attr) (svgrender.Element, error) {
	t := &svgrender.TextPath{}
	err := c.readTextContent("textPath", &t.TextContent, attrs, func(attr xml.Attr) (err error) {
		switch attr.Name.Local {
		case "href":
			t.Href, err = parseHref(attr.Value)
		case "startOffset":
			err = setLength(&t.StartOffset, attr.Value)
		}
		return err
	})
	return t, err
}

// readGradAttr reads the attributes common to both gradients
func readGradAttr(g *svgrender.Gradient, attr xml.Attr) (err error) {
	switch attr.Name.Local {
	case "gradientUnits":
		var units svgrender.Units
		units, err = parseUnits(attr.Value)
		if err == nil {
			g.Units = &units
		}
	case "spreadMethod":
		var spread svgrender.Spread
		spread, err = parseSpread(attr.Value)
		if err == nil {
			g.Spread = &spread
		}
	case "gradientTransform":
		g.GradientTransform, err = parseTransform(attr.Value)
	case "href":
		g.Href, err = parseHref(attr.Value)
	}
	return err
}

func linearGradientF(c *cursor, attrs []xml.Attr) (svgrender.Element, error) {
	g := &svgrender.LinearGradient{}
	err := c.readAttrs("linearGradient", attrs, func(attr xml.Attr) (err error) {
		switch attr.Name.Local {
		case "x1":
			g.X1, err = parseOptLength(attr.Value)
		case "y1":
			g.Y1, err = parseOptLength(attr.Value)
		case "x2":
			g.X2, err = parseOptLength(attr.Value)
		case "y2":
			g.Y2, err = parseOptLength(attr.Value)
		default:
			err = readGradAttr(&g.Gradient, attr)
		}
		return err
	})
	return g, err
}

func radialGradientF(c *cursor, attrs []xml.Attr) (svgrender.Element, error) {
	g := &svgrender.RadialGradient{}
	err := c.readAttrs("radialGradient", attrs, func(attr xml.Attr) (err error) {
		switch attr.Name.Local {
		case "cx":
			g.CX, err = parseOptLength(attr.Value)
		case "cy":
			g.CY, err = parseOptLength(attr.Value)
		case "r":
			g.R, err = parseOptLength(attr.Value)
		case "fx":
			g.FX, err = parseOptLength(attr.Value)
		case "fy":
			g.FY, err = parseOptLength(attr.Value)
		default:
			err = readGradAttr(&g.Gradient, attr)
		}
		return err
	})
	return g, err
}

// stop-color and stop-opacity are read as properties
func stopF(c *cursor, attrs []xml.Attr) (svgrender.Element, error) {
	s := &svgrender.Stop{}
	err := c.readAttrs("stop", attrs, func(attr xml.Attr) (err error) {
		if attr.Name.Local == "offset" {
			s.Offset, err = parseFraction(attr.Value)
			s.Offset *= 100
		}
		return err
	})
	return s, err
}

func patternF(c *cursor, attrs []xml.Attr) (svgrender.Element, error) {
	p := &svgrender.Pattern{}
	err := c.readAttrs("pattern", attrs, func(attr xml.Attr) (err error) {
		switch attr.Name.Local {
		case "x":
			p.X, err = parseOptLength(attr.Value)
		case "y":
			p.Y, err = parseOptLength(attr.Value)
		case "width":
			p.Width, err = parseOptLength(attr.Value)
		case "height":
			p.Height, err = parseOptLength(attr.Value)
		case "patternUnits", "patternContentUnits":
			var units svgrender.Units
			units, err = parseUnits(attr.Value)
			if err != nil {
				break
			}
			if attr.Name.Local == "patternUnits" {
				p.Units = &units
			} else {
				p.ContentUnits = &units
			}
		case "viewBox":
			var vb svgpath.Rect
			vb, err = parseViewBox(attr.Value)
			if err == nil {
				p.ViewBox = &vb
			}
		case "preserveAspectRatio":
			p.Aspect, err = parseAspectRatio(attr.Value)
		case "patternTransform":
			p.PatternTransform, err = parseTransform(attr.Value)
		case "href":
			p.Href, err = parseHref(attr.Value)
		}
		return err
	})
	return p, err
}

func clipPathF(c *cursor, attrs []xml.Attr) (svgrender.Element, error) {
	cp := svgrender.NewClipPath()
	err := c.readAttrs("clipPath", attrs, func(attr xml.Attr) (err error) {
		if attr.Name.Local == "clipPathUnits" {
			cp.Units, err = parseUnits(attr.Value)
		}
		return err
	})
	return cp, err
}

func markerF(c *cursor, attrs []xml.Attr) (svgrender.Element, error) {
	m := svgrender.NewMarker()
	err := c.readAttrs("marker", attrs, func(attr xml.Attr) (err error) {
		switch attr.Name.Local {
		case "refX":
			err = setLength(&m.RefX, attr.Value)
		case "refY":
			err = setLength(&m.RefY, attr.Value)
		case "markerWidth":
			err = setLength(&m.MarkerWidth, attr.Value)
		case "markerHeight":
			err = setLength(&m.MarkerHeight, attr.Value)
		case "markerUnits":
			var units svgrender.Units
			units, err = parseUnits(attr.Value)
			if err == nil && units == svgrender.ObjectBoundingBox {
				err = errParamMismatch
			}
			if err == nil {
				m.Units = units
			}
		case "orient":
			m.Orient, err = parseOrient(attr.Value)
		case "viewBox":
			m.ViewBox, err = parseViewBox(attr.Value)
		case "preserveAspectRatio":
			m.Aspect, err = parseAspectRatio(attr.Value)
		}
		return err
	})
	return m, err
}

var colorMatrixTypes = map[string]svgfilter.ColorMatrixType{
	"matrix":           svgfilter.Matrix,
	"saturate":         svgfilter.Saturate,
	"hueRotate":        svgfilter.HueRotate,
	"luminanceToAlpha": svgfilter.LuminanceToAlpha,
}

func feColorMatrixF(c *cursor, attrs []xml.Attr) (svgrender.Element, error) {
	f := &svgrender.FeColorMatrix{}
	err := c.readAttrs("feColorMatrix", attrs, func(attr xml.Attr) (err error) {
		switch attr.Name.Local {
		case "in":
			f.Params.In = attr.Value
		case "result":
			f.Params.Result = attr.Value
		case "type":
			var ok bool
			if f.Params.Type, ok = colorMatrixTypes[strings.TrimSpace(attr.Value)]; !ok {
				err = errParamMismatch
			}
		case "values":
			f.Params.Values, err = svgpath.ParseNumbers(attr.Value)
		}
		return err
	})
	return f, err
}

func feGaussianBlurF(c *cursor, attrs []xml.Attr) (svgrender.Element, error) {
	f := &svgrender.FeGaussianBlur{}
	err := c.readAttrs("feGaussianBlur", attrs, func(attr xml.Attr) (err error) {
		switch attr.Name.Local {
		case "in":
			f.Params.In = attr.Value
		case "result":
			f.Params.Result = attr.Value
		case "stdDeviation":
			f.Params.StdDeviation, err = svgpath.ParseNumbers(attr.Value)
		}
		return err
	})
	return f, err
}

func feOffsetF(c *cursor, attrs []xml.Attr) (svgrender.Element, error) {
	f := &svgrender.FeOffset{}
	err := c.readAttrs("feOffset", attrs, func(attr xml.Attr) (err error) {
		switch attr.Name.Local {
		case "in":
			f.Params.In = attr.Value
		case "result":
			f.Params.Result = attr.Value
		case "dx":
			f.Params.DX, err = parseFloat(attr.Value)
		case "dy":
			f.Params.DY, err = parseFloat(attr.Value)
		}
		return err
	})
	return f, err
}

func feMergeF(c *cursor, attrs []xml.Attr) (svgrender.Element, error) {
	f := &svgrender.FeMerge{}
	err := c.readAttrs("feMerge", attrs, func(attr xml.Attr) error {
		if attr.Name.Local == "result" {
			f.Result = attr.Value
		}
		return nil
	})
	return f, err
}

func feMergeNodeF(c *cursor, attrs []xml.Attr) (svgrender.Element, error) {
	f := &svgrender.FeMergeNode{}
	err := c.readAttrs("feMergeNode", attrs, func(attr xml.Attr) error {
		if attr.Name.Local == "in" {
			f.In = attr.Value
		}
		return nil
	})
	return f, err
}

func parseTransform(v string) (svgpath.TransformList, error) {
	return svgpath.ParseTransform(v)
}
