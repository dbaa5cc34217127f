package svgparse

import (
	"fmt"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"

	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgrender"
	"github.com/benoitkugler/svgrender/svgunit"
)

// presentation attributes, which may also be given as style declarations
var properties = map[string]bool{
	"fill": true, "fill-opacity": true, "fill-rule": true,
	"stroke": true, "stroke-opacity": true, "stroke-width": true,
	"stroke-linejoin": true, "stroke-linecap": true, "stroke-miterlimit": true,
	"stroke-dasharray": true, "stroke-dashoffset": true,
	"opacity": true, "color": true, "visibility": true, "display": true,
	"clip-rule": true, "clip-path": true, "clip": true, "filter": true,
	"font-family": true, "font-size": true, "font-weight": true, "font-style": true,
	"text-anchor": true, "letter-spacing": true, "word-spacing": true, "baseline-shift": true,
	"marker": true, "marker-start": true, "marker-mid": true, "marker-end": true,
	"shape-rendering": true, "overflow": true,
	"stop-color": true, "stop-opacity": true,
}

func isProperty(name string) bool { return properties[name] }

// parseStyleAttr reads the declarations of a style attribute.
// The CSS parser drops the value of a last declaration which
// is not terminated by a semicolon.
func parseStyleAttr(v string) ([]*css.Declaration, error) {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasSuffix(v, ";") {
		v += ";"
	}
	return parser.ParseDeclarations(v)
}

// applyStyles sets the element styles, once the whole document is
// read : presentation attributes come first, then style attributes.
func (c *cursor) applyStyles() error {
	for _, st := range c.styled {
		for _, attr := range st.attrs {
			if err := c.readStyleAttr(st, attr.Name.Local, attr.Value); err != nil {
				return err
			}
		}
		if err := c.readDeclarations(st, st.inline); err != nil {
			return err
		}
	}
	return nil
}

func (c *cursor) readDeclarations(st *styledElement, decls []*css.Declaration) error {
	for _, decl := range decls {
		k := strings.ToLower(strings.TrimSpace(decl.Property))
		if !isProperty(k) {
			continue
		}
		if err := c.readStyleAttr(st, k, decl.Value); err != nil {
			return err
		}
	}
	return nil
}

// readStyleAttr reports the errors of setStyleAttr.
func (c *cursor) readStyleAttr(st *styledElement, k, v string) error {
	if err := setStyleAttr(st.el, k, strings.TrimSpace(v)); err != nil {
		return c.report(fmt.Errorf("invalid property %s on <%s>: %s", k, st.tag, err))
	}
	return nil
}

// setStyleAttr sets the property `k` of `el`. The value "inherit"
// leaves inheritable properties unset.
func setStyleAttr(el svgrender.Element, k, v string) error {
	curStyle := &svgrender.NodeOf(el).Style
	if v == "inherit" && k != "fill" && k != "stroke" {
		return nil
	}
	var err error
	switch k {
	case "fill":
		curStyle.Fill, err = parsePaint(v)
	case "stroke":
		curStyle.Stroke, err = parsePaint(v)
	case "fill-opacity":
		curStyle.FillOpacity, err = optOpacity(v)
	case "stroke-opacity":
		curStyle.StrokeOpacity, err = optOpacity(v)
	case "opacity":
		curStyle.Opacity, err = optOpacity(v)
	case "fill-rule":
		curStyle.FillRule, err = parseFillRule(v)
	case "clip-rule":
		curStyle.ClipRule, err = parseFillRule(v)
	case "stroke-width":
		curStyle.StrokeWidth, err = parseOptLength(v)
	case "stroke-linejoin":
		var join svgrender.LineJoin
		switch v {
		case "miter", "miter-clip", "arcs":
			join = svgrender.MiterJoin
		case "round":
			join = svgrender.RoundJoin
		case "bevel":
			join = svgrender.BevelJoin
		default:
			return errParamMismatch
		}
		curStyle.LineJoin = &join
	case "stroke-linecap":
		var lc svgrender.LineCap
		switch v {
		case "butt":
			lc = svgrender.ButtCap
		case "round":
			lc = svgrender.RoundCap
		case "square":
			lc = svgrender.SquareCap
		default:
			return errParamMismatch
		}
		curStyle.LineCap = &lc
	case "stroke-miterlimit":
		var mLimit float64
		mLimit, err = parseFloat(v)
		if err == nil {
			curStyle.MiterLimit = &mLimit
		}
	case "stroke-dasharray":
		if v == "none" {
			curStyle.StrokeDashArray = svgunit.List{}
			break
		}
		var dashes svgunit.List
		dashes, err = svgunit.ParseList(v)
		if err == nil {
			curStyle.StrokeDashArray = dashes
		}
	case "stroke-dashoffset":
		curStyle.StrokeDashOffset, err = parseOptLength(v)
	case "color":
		c, err := ParseColor(v)
		if err != nil {
			return err
		}
		curStyle.Color = &c
	case "visibility":
		var vis svgrender.Visibility
		switch v {
		case "visible":
			vis = svgrender.Visible
		case "hidden":
			vis = svgrender.Hidden
		case "collapse":
			vis = svgrender.Collapse
		default:
			return errParamMismatch
		}
		curStyle.Visibility = &vis
	case "display":
		curStyle.DisplayNone = v == "none"
	case "clip-path":
		curStyle.ClipPath, err = parseReference(v)
	case "clip":
		if v != "auto" {
			curStyle.Clip = v
		}
	case "filter":
		curStyle.Filter, err = parseReference(v)
	case "marker":
		var id string
		id, err = parseReference(v)
		curStyle.MarkerStart, curStyle.MarkerMid, curStyle.MarkerEnd = id, id, id
	case "marker-start":
		curStyle.MarkerStart, err = parseReference(v)
	case "marker-mid":
		curStyle.MarkerMid, err = parseReference(v)
	case "marker-end":
		curStyle.MarkerEnd, err = parseReference(v)
	case "font-family":
		curStyle.FontFamily = v
	case "font-size":
		curStyle.FontSize, err = parseFontSize(v)
	case "font-weight":
		curStyle.FontWeight, err = parseFontWeight(v)
	case "font-style":
		italic := v == "italic" || v == "oblique"
		curStyle.Italic = &italic
	case "text-anchor":
		var anchor svgrender.TextAnchor
		switch v {
		case "start":
			anchor = svgrender.AnchorStart
		case "middle":
			anchor = svgrender.AnchorMiddle
		case "end":
			anchor = svgrender.AnchorEnd
		default:
			return errParamMismatch
		}
		curStyle.TextAnchor = &anchor
	case "letter-spacing":
		if v != "normal" {
			curStyle.LetterSpacing, err = parseOptLength(v)
		}
	case "word-spacing":
		if v != "normal" {
			curStyle.WordSpacing, err = parseOptLength(v)
		}
	case "baseline-shift":
		if v != "baseline" {
			curStyle.BaselineShift = v
		}
	case "shape-rendering":
		curStyle.ShapeRendering = v
	case "overflow":
		visible := v == "visible" || v == "auto"
		switch el := el.(type) {
		case *svgrender.Fragment:
			el.OverflowVisible = visible
		case *svgrender.Marker:
			el.OverflowVisible = visible
		}
	case "stop-color":
		if stop, ok := el.(*svgrender.Stop); ok {
			stop.StopColor, err = parseStopColor(v)
		}
	case "stop-opacity":
		if stop, ok := el.(*svgrender.Stop); ok {
			stop.StopOpacity, err = optOpacity(v)
		}
	}
	return err
}

func optOpacity(v string) (*float64, error) {
	op, err := parseOpacity(v)
	if err != nil {
		return nil, err
	}
	return &op, nil
}

func parseFillRule(v string) (*svgpath.FillRule, error) {
	var rule svgpath.FillRule
	switch v {
	case "nonzero":
		rule = svgpath.NonZero
	case "evenodd":
		rule = svgpath.EvenOdd
	default:
		return nil, errParamMismatch
	}
	return &rule, nil
}

// keyword font sizes, relative to the medium size
var fontSizes = map[string]float64{
	"xx-small": 3. / 5, "x-small": 3. / 4, "small": 8. / 9,
	"medium": 1, "large": 6. / 5, "x-large": 3. / 2, "xx-large": 2,
	"smaller": 5. / 6, "larger": 6. / 5,
}

func parseFontSize(v string) (*svgunit.Length, error) {
	if f, ok := fontSizes[v]; ok {
		l := svgunit.New(f, svgunit.Em)
		if v == "smaller" || v == "larger" {
			l = svgunit.Pct(100 * f)
		}
		return &l, nil
	}
	return parseOptLength(v)
}

func parseFontWeight(v string) (svgrender.FontWeight, error) {
	switch v {
	case "normal":
		return 400, nil
	case "bold":
		return 700, nil
	case "bolder":
		return 700, nil
	case "lighter":
		return 300, nil
	}
	w, err := parseFloat(v)
	if err != nil {
		return 0, err
	}
	if w < 1 || w > 1000 {
		return 0, fmt.Errorf("font weight out of range: %s", v)
	}
	return svgrender.FontWeight(w), nil
}

func parseStopColor(v string) (svgrender.PaintServer, error) {
	if v == "currentColor" || v == "currentcolor" {
		return svgrender.CurrentColor{}, nil
	}
	c, err := ParseColor(v)
	if err != nil {
		return nil, err
	}
	return svgrender.Color(c), nil
}
