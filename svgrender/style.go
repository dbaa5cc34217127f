package svgrender

import (
	"image/color"

	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgunit"
)

// TextAnchor is the horizontal alignment of text chunks.
type TextAnchor uint8

const (
	AnchorStart TextAnchor = iota
	AnchorMiddle
	AnchorEnd
)

// Visibility controls whether an element is drawn. Unlike display,
// it is inherited and may be overridden by children.
type Visibility uint8

const (
	Visible Visibility = iota
	Hidden
	Collapse
)

// FontWeight is a numeric weight : 400 is normal, 700 is bold.
type FontWeight uint16

// Style holds the presentation properties of an element.
// A nil (or empty) field is unset : inheritable properties are then
// looked up in the ancestors, the others take their initial value.
type Style struct {
	Fill          PaintServer
	FillOpacity   *float64
	FillRule      *svgpath.FillRule
	Stroke        PaintServer
	StrokeOpacity *float64
	StrokeWidth   *svgunit.Length
	LineJoin      *LineJoin
	LineCap       *LineCap
	MiterLimit    *float64
	// StrokeDashArray is nil when unset, and empty (not nil) for "none".
	StrokeDashArray  svgunit.List
	StrokeDashOffset *svgunit.Length
	ClipRule         *svgpath.FillRule
	Color            *color.NRGBA
	Visibility       *Visibility

	FontFamily    string
	FontSize      *svgunit.Length
	FontWeight    FontWeight
	Italic        *bool
	TextAnchor    *TextAnchor
	LetterSpacing *svgunit.Length
	WordSpacing   *svgunit.Length

	MarkerStart, MarkerMid, MarkerEnd string // element ids

	// ShapeRendering is "auto", "optimizeSpeed", "crispEdges"
	// or "geometricPrecision".
	ShapeRendering string

	// not inherited

	Opacity       *float64
	DisplayNone   bool
	ClipPath      string // element id
	Clip          string // legacy rect(top, right, bottom, left)
	Filter        string // element id
	BaselineShift string // "sub", "super" or a length
}

// lookup walks up the tree from `n`, returning the first value
// accepted by `get`.
func lookup[T any](n *Node, get func(s *Style) (T, bool)) (T, bool) {
	for ; n != nil; n = n.parentNode() {
		if v, ok := get(&n.Style); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// inheritedPaint resolves the Inherit and NotSet sentinels.
func inheritedPaint(n *Node, get func(s *Style) PaintServer) PaintServer {
	ps, _ := lookup(n, func(s *Style) (PaintServer, bool) {
		ps := get(s)
		return ps, ps != nil && ps != NotSet && ps != Inherit
	})
	if ps == nil {
		return NotSet
	}
	return ps
}

func (n *Node) fill() PaintServer {
	return inheritedPaint(n, func(s *Style) PaintServer { return s.Fill })
}

func (n *Node) stroke() PaintServer {
	return inheritedPaint(n, func(s *Style) PaintServer { return s.Stroke })
}

func lookupFloat(n *Node, get func(s *Style) *float64, def float64) float64 {
	v, ok := lookup(n, func(s *Style) (*float64, bool) { p := get(s); return p, p != nil })
	if !ok {
		return def
	}
	return *v
}

func clampOpacity(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (n *Node) fillOpacity() float64 {
	return clampOpacity(lookupFloat(n, func(s *Style) *float64 { return s.FillOpacity }, 1))
}

func (n *Node) strokeOpacity() float64 {
	return clampOpacity(lookupFloat(n, func(s *Style) *float64 { return s.StrokeOpacity }, 1))
}

func (n *Node) miterLimit() float64 {
	return lookupFloat(n, func(s *Style) *float64 { return s.MiterLimit }, 4)
}

// opacity is not inherited
func (n *Node) opacity() float64 {
	if n.Style.Opacity == nil {
		return 1
	}
	return clampOpacity(*n.Style.Opacity)
}

func (n *Node) fillRule() svgpath.FillRule {
	v, _ := lookup(n, func(s *Style) (svgpath.FillRule, bool) {
		if s.FillRule == nil {
			return 0, false
		}
		return *s.FillRule, true
	})
	return v
}

func (n *Node) clipRule() svgpath.FillRule {
	v, _ := lookup(n, func(s *Style) (svgpath.FillRule, bool) {
		if s.ClipRule == nil {
			return 0, false
		}
		return *s.ClipRule, true
	})
	return v
}

func (n *Node) lineJoin() LineJoin {
	v, _ := lookup(n, func(s *Style) (LineJoin, bool) {
		if s.LineJoin == nil {
			return 0, false
		}
		return *s.LineJoin, true
	})
	return v
}

func (n *Node) lineCap() LineCap {
	v, _ := lookup(n, func(s *Style) (LineCap, bool) {
		if s.LineCap == nil {
			return 0, false
		}
		return *s.LineCap, true
	})
	return v
}

func (n *Node) visibility() Visibility {
	v, _ := lookup(n, func(s *Style) (Visibility, bool) {
		if s.Visibility == nil {
			return 0, false
		}
		return *s.Visibility, true
	})
	return v
}

func (n *Node) textAnchor() TextAnchor {
	v, _ := lookup(n, func(s *Style) (TextAnchor, bool) {
		if s.TextAnchor == nil {
			return 0, false
		}
		return *s.TextAnchor, true
	})
	return v
}

// currentColor returns the value of the `color` property, black by default.
func (n *Node) currentColor() color.NRGBA {
	v, ok := lookup(n, func(s *Style) (color.NRGBA, bool) {
		if s.Color == nil {
			return color.NRGBA{}, false
		}
		return *s.Color, true
	})
	if !ok {
		return color.NRGBA{A: 0xff}
	}
	return v
}

var defaultStrokeWidth = svgunit.Px(1)

// strokeWidth returns the (shared) length of the stroke width,
// so that its resolution is memoized.
func (n *Node) strokeWidth() *svgunit.Length {
	v, ok := lookup(n, func(s *Style) (*svgunit.Length, bool) { return s.StrokeWidth, s.StrokeWidth != nil })
	if !ok {
		return &defaultStrokeWidth
	}
	return v
}

func (n *Node) dashArray() svgunit.List {
	v, _ := lookup(n, func(s *Style) (svgunit.List, bool) { return s.StrokeDashArray, s.StrokeDashArray != nil })
	return v
}

func (n *Node) dashOffset() *svgunit.Length {
	v, _ := lookup(n, func(s *Style) (*svgunit.Length, bool) { return s.StrokeDashOffset, s.StrokeDashOffset != nil })
	return v
}

func lookupLength(n *Node, get func(s *Style) *svgunit.Length) *svgunit.Length {
	v, _ := lookup(n, func(s *Style) (*svgunit.Length, bool) { l := get(s); return l, l != nil })
	return v
}

func lookupString(n *Node, get func(s *Style) string) string {
	v, _ := lookup(n, func(s *Style) (string, bool) { v := get(s); return v, v != "" })
	return v
}

func (n *Node) markerStart() string {
	return lookupString(n, func(s *Style) string { return s.MarkerStart })
}

func (n *Node) markerMid() string {
	return lookupString(n, func(s *Style) string { return s.MarkerMid })
}

func (n *Node) markerEnd() string {
	return lookupString(n, func(s *Style) string { return s.MarkerEnd })
}

func (n *Node) fontFamily() string {
	if f := lookupString(n, func(s *Style) string { return s.FontFamily }); f != "" {
		return f
	}
	return "sans-serif"
}

func (n *Node) fontWeight() FontWeight {
	v, ok := lookup(n, func(s *Style) (FontWeight, bool) { return s.FontWeight, s.FontWeight != 0 })
	if !ok {
		return 400
	}
	return v
}

func (n *Node) italic() bool {
	v, _ := lookup(n, func(s *Style) (bool, bool) {
		if s.Italic == nil {
			return false, false
		}
		return *s.Italic, true
	})
	return v
}

// FontSize resolves the inherited font size, in pixels.
// Relative sizes are resolved against the parent font size.
// It implements svgunit.Owner.
func (n *Node) FontSize(ctx svgunit.Context) (float64, bool) {
	for p := n; p != nil; p = p.parentNode() {
		l := p.Style.FontSize
		if l == nil {
			continue
		}
		parent := p.parentNode()
		if l.Unit == svgunit.Percent {
			size, ok := parent.FontSize(ctx)
			if !ok {
				size = defaultFontSize(ctx)
			}
			return l.Value / 100 * size, true
		}
		if parent == nil { // avoid a nil *Node in the interface
			return l.Resolve(ctx, svgunit.Vertical, nil), true
		}
		return l.Resolve(ctx, svgunit.Vertical, parent), true
	}
	if c, ok := ctx.(*Context); ok && c.doc != nil && c.doc.FontSize > 0 {
		return c.doc.FontSize, true
	}
	return 0, false
}

// defaultFontSize is the size of 1em without font context
func defaultFontSize(ctx svgunit.Context) float64 {
	l := svgunit.New(1, svgunit.Em)
	return l.Resolve(ctx, svgunit.Vertical, nil)
}

// antialias returns false if the shape-rendering property
// asks for aliased edges.
func (n *Node) antialias() bool {
	switch lookupString(n, func(s *Style) string { return s.ShapeRendering }) {
	case "crispEdges", "optimizeSpeed":
		return false
	}
	return true
}
