package svgparse

import (
	"errors"
	"image/color"
	"strings"
	"testing"

	"github.com/benoitkugler/svgrender/svgdraw"
	"github.com/benoitkugler/svgrender/svgfilter"
	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgrender"
	"github.com/benoitkugler/svgrender/svgunit"
)

func parseFile(t *testing.T, path string) *svgrender.Document {
	t.Helper()
	doc, err := ParseFile(path, StrictErrorMode)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func isNumber(l svgunit.Length, v float64) bool {
	return l.Unit == svgunit.None && l.Value == v
}

func parseString(t *testing.T, src string) *svgrender.Document {
	t.Helper()
	doc, err := Parse(strings.NewReader(src), StrictErrorMode)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestTestdata(t *testing.T) {
	for _, p := range []string{"shapes", "paint", "structure"} {
		doc, err := ParseFile("testdata/"+p+".svg", WarnErrorMode)
		if err != nil {
			t.Fatal(err)
		}
		rec := svgdraw.New()
		if err = doc.Draw(rec); err != nil {
			t.Fatal(err)
		}
		if rec.Depth() != 0 {
			t.Errorf("%s: unbalanced save/restore", p)
		}
		if rec.Count(svgdraw.Fill) == 0 {
			t.Errorf("%s: nothing filled", p)
		}
	}
}

func TestShapes(t *testing.T) {
	doc := parseFile(t, "testdata/shapes.svg")
	root := doc.Root
	if !isNumber(root.Width, 120) || root.ViewBox != (svgpath.Rect{W: 120, H: 80}) {
		t.Fatalf("unexpected root %v %v", root.Width, root.ViewBox)
	}
	children := root.Children()
	if len(children) != 7 { // title is skipped
		t.Fatalf("expected 7 shapes, got %d", len(children))
	}

	r := children[0].(*svgrender.Rect)
	if !isNumber(r.RX, 4) {
		t.Errorf("unexpected rx %v", r.RX)
	}
	if r.Style.Fill != svgrender.Color(color.NRGBA{0x33, 0xaa, 0x77, 0xff}) {
		t.Errorf("unexpected fill %v", r.Style.Fill)
	}
	if r.Style.Stroke != svgrender.Color(color.NRGBA{A: 0xff}) {
		t.Errorf("unexpected stroke %v", r.Style.Stroke)
	}

	if fill := children[1].(*svgrender.Circle).Style.Fill; fill != svgrender.Color(color.NRGBA{R: 0xff, A: 0xff}) {
		t.Errorf("unexpected circle fill %v", fill)
	}
	if fill := children[2].(*svgrender.Ellipse).Style.Fill; fill != svgrender.None {
		t.Errorf("expected no fill, got %v", fill)
	}
	line := children[3].(*svgrender.Line)
	if len(line.Style.StrokeDashArray) != 2 || !isNumber(line.X2, 115) {
		t.Errorf("unexpected line %v", line)
	}
	if pl := children[4].(*svgrender.Polyline); pl.Closed || len(pl.Points) != 4 {
		t.Errorf("unexpected polyline %v", pl.Points)
	}
	pg := children[5].(*svgrender.Polyline)
	if !pg.Closed || pg.Style.FillRule == nil || *pg.Style.FillRule != svgpath.EvenOdd {
		t.Errorf("unexpected polygon %v", pg)
	}
	p := children[6].(*svgrender.PathElement)
	if len(p.Segments) != 3 || p.Style.LineCap == nil || *p.Style.LineCap != svgrender.RoundCap {
		t.Errorf("unexpected path %v", p.Segments)
	}
}

func TestPaintServers(t *testing.T) {
	doc := parseFile(t, "testdata/paint.svg")

	base := doc.ElementByID("base").(*svgrender.LinearGradient)
	if base.Spread == nil || *base.Spread != svgrender.ReflectSpread {
		t.Errorf("unexpected spread %v", base.Spread)
	}
	if base.X2 == nil || !isNumber(*base.X2, 1) || base.Y1 != nil {
		t.Errorf("unexpected coordinates %v %v", base.X2, base.Y1)
	}
	stops := base.Children()
	if len(stops) != 2 {
		t.Fatalf("expected 2 stops, got %d", len(stops))
	}
	last := stops[1].(*svgrender.Stop)
	if last.Offset != 100 || last.StopColor != svgrender.Color(color.NRGBA{B: 0xff, A: 0xff}) ||
		last.StopOpacity == nil || *last.StopOpacity != 0.5 {
		t.Errorf("unexpected stop %v", last)
	}

	derived := doc.ElementByID("derived").(*svgrender.LinearGradient)
	if derived.Href != "base" || len(derived.GradientTransform) != 1 {
		t.Errorf("unexpected derived gradient %v", derived)
	}

	radial := doc.ElementByID("radial").(*svgrender.RadialGradient)
	if radial.FX == nil || !isNumber(*radial.FX, 0.3) || radial.FY != nil {
		t.Errorf("unexpected focal point %v %v", radial.FX, radial.FY)
	}
	if s := radial.Children()[0].(*svgrender.Stop); s.Offset != 20 || s.StopColor != (svgrender.CurrentColor{}) {
		t.Errorf("unexpected radial stop %v", s)
	}

	pattern := doc.ElementByID("dots").(*svgrender.Pattern)
	if pattern.Units == nil || *pattern.Units != svgrender.UserSpaceOnUse || pattern.Width == nil {
		t.Errorf("unexpected pattern %v", pattern)
	}
	if clip := doc.ElementByID("clip").(*svgrender.ClipPath); clip.Units != svgrender.ObjectBoundingBox {
		t.Errorf("unexpected clip units %v", clip.Units)
	}

	filter := doc.ElementByID("shadow").(*svgrender.Filter)
	primitives := filter.Children()
	if len(primitives) != 4 {
		t.Fatalf("expected 4 primitives, got %d", len(primitives))
	}
	if off := primitives[0].(*svgrender.FeOffset).Params; off != (svgfilter.Offset{In: "SourceAlpha", Result: "off", DX: 2, DY: 2}) {
		t.Errorf("unexpected offset %v", off)
	}
	if cm := primitives[2].(*svgrender.FeColorMatrix).Params; cm.Type != svgfilter.Saturate || len(cm.Values) != 1 {
		t.Errorf("unexpected color matrix %v", cm)
	}
	merge := primitives[3].(*svgrender.FeMerge).Primitive().(svgfilter.Merge)
	if len(merge.Inputs) != 2 || merge.Inputs[1] != svgfilter.SourceGraphic {
		t.Errorf("unexpected merge %v", merge)
	}

	g := doc.Root.Children()[1].(*svgrender.Group)
	if g.Style.Color == nil || *g.Style.Color != (color.NRGBA{G: 0x80, A: 0xff}) {
		t.Errorf("unexpected color %v", g.Style.Color)
	}
	rects := g.Children()
	if fill := rects[0].(*svgrender.Rect).Style.Fill; fill != (svgrender.Deferred{ID: "derived"}) {
		t.Errorf("unexpected fill %v", fill)
	}
	if fill := rects[1].(*svgrender.Rect).Style.Fill; fill != (svgrender.Deferred{ID: "radial", Fallback: svgrender.None}) {
		t.Errorf("unexpected fill %v", fill)
	}
	if s := rects[2].(*svgrender.Rect).Style; s.ClipPath != "clip" {
		t.Errorf("unexpected clip path %q", s.ClipPath)
	}
	if s := rects[3].(*svgrender.Rect).Style; s.Filter != "shadow" {
		t.Errorf("unexpected filter %q", s.Filter)
	}
}

func TestStructure(t *testing.T) {
	doc, err := ParseFile("testdata/structure.svg", IgnoreErrorMode)
	if err != nil {
		t.Fatal(err)
	}

	symbol := doc.ElementByID("icon").(*svgrender.Symbol)
	expected := svgrender.AspectRatio{X: svgrender.AlignMin, Y: svgrender.AlignMin, Slice: true}
	if symbol.Aspect != expected || symbol.ViewBox != (svgpath.Rect{W: 10, H: 10}) {
		t.Errorf("unexpected symbol %v %v", symbol.Aspect, symbol.ViewBox)
	}
	marker := doc.ElementByID("arrow").(*svgrender.Marker)
	if !marker.Orient.AutoStartReverse || marker.Units != svgrender.UserSpaceOnUse || !isNumber(marker.RefX, 2) {
		t.Errorf("unexpected marker %v", marker)
	}

	children := doc.Root.Children()
	if len(children) != 5 { // unknownElement is skipped with its content
		t.Fatalf("expected 5 children, got %d", len(children))
	}
	use := children[1].(*svgrender.Use)
	if use.Href != "icon" || !isNumber(use.X, 10) {
		t.Errorf("unexpected use %v", use)
	}
	sw := children[2].(*svgrender.Switch)
	texts := sw.Children()
	if texts[0].(*svgrender.Text).SystemLanguage != "fr" {
		t.Errorf("unexpected systemLanguage")
	}
	hello := texts[1].(*svgrender.Text)
	if hello.Style.Fill != svgrender.Color(color.NRGBA{R: 0xff, G: 0xa5, A: 0xff}) {
		t.Errorf("style attribute not applied: %v", hello.Style.Fill)
	}
	content := hello.Children()
	if len(content) != 2 || content[0].(*svgrender.TextNode).Data != "Hello " {
		t.Fatalf("unexpected text content %v", content)
	}
	if span := content[1].(*svgrender.TSpan); span.Style.FontWeight != 700 {
		t.Errorf("unexpected weight %v", span.Style.FontWeight)
	}

	line := children[3].(*svgrender.Line)
	if line.Style.MarkerEnd != "arrow" {
		t.Errorf("unexpected marker %q", line.Style.MarkerEnd)
	}
	if line.Style.StrokeWidth == nil || !isNumber(*line.Style.StrokeWidth, 3) {
		t.Errorf("style attribute not applied: %v", line.Style.StrokeWidth)
	}
	if !children[4].(*svgrender.Fragment).OverflowVisible {
		t.Errorf("expected visible overflow")
	}
}

func TestStylePriority(t *testing.T) {
	doc := parseString(t, `<svg>
		<style>rect { fill: green }</style>
		<rect id="r1" fill="blue"/>
		<rect id="r2" class="a"/>
		<rect id="r3" fill="blue" style="fill: black; stroke: red"/>
		<rect id="r4" style="fill : #00f ; unknown-property: 1"/>
	</svg>`)
	for id, expected := range map[string]svgrender.PaintServer{
		"r1": svgrender.Color(color.NRGBA{B: 0xff, A: 0xff}),
		"r2": nil, // style sheets are ignored
		"r3": svgrender.Color(color.NRGBA{A: 0xff}),
		"r4": svgrender.Color(color.NRGBA{B: 0xff, A: 0xff}),
	} {
		r := doc.ElementByID(id).(*svgrender.Rect)
		if r.Style.Fill != expected {
			t.Errorf("%s: expected %v, got %v", id, expected, r.Style.Fill)
		}
	}
	r3 := doc.ElementByID("r3").(*svgrender.Rect)
	if r3.Style.Stroke != svgrender.Color(color.NRGBA{R: 0xff, A: 0xff}) {
		t.Errorf("unexpected stroke %v", r3.Style.Stroke)
	}
}

func TestStyleAttribute(t *testing.T) {
	for _, style := range []string{"fill:red", "fill: red ", "stroke: blue; fill:red", "fill:red;"} {
		doc := parseString(t, `<svg><rect style="`+style+`"/></svg>`)
		r := doc.Root.Children()[0].(*svgrender.Rect)
		if r.Style.Fill != svgrender.Color(color.NRGBA{R: 0xff, A: 0xff}) {
			t.Errorf("%q: unexpected fill %v", style, r.Style.Fill)
		}
	}

	decls, err := parseStyleAttr("fill:red;stroke: blue; stop-opacity:0.5")
	if err != nil {
		t.Fatal(err)
	}
	if len(decls) != 3 || decls[2].Property != "stop-opacity" || decls[2].Value != "0.5" {
		t.Errorf("unexpected declarations %v", decls)
	}
	if decls, _ = parseStyleAttr("  "); len(decls) != 0 {
		t.Errorf("unexpected declarations %v", decls)
	}
}

func TestTextSpace(t *testing.T) {
	doc := parseString(t, `<svg><text xml:space="preserve"> a <tspan>b</tspan><tspan xml:space="default">c</tspan></text></svg>`)
	text := doc.Root.Children()[0].(*svgrender.Text)
	if !text.PreserveSpace {
		t.Fatal("expected preserved spaces")
	}
	children := text.Children()
	if !children[1].(*svgrender.TSpan).PreserveSpace {
		t.Error("xml:space should be inherited")
	}
	if children[2].(*svgrender.TSpan).PreserveSpace {
		t.Error("xml:space should be overridden")
	}
}

func TestErrorModes(t *testing.T) {
	const src = `<svg><blink/><rect width="10" height="10"/></svg>`
	if _, err := Parse(strings.NewReader(src), StrictErrorMode); err == nil {
		t.Fatal("expected an error for unsupported elements")
	}
	doc, err := Parse(strings.NewReader(src), IgnoreErrorMode)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Root.Children()) != 1 {
		t.Fatalf("unexpected children %v", doc.Root.Children())
	}

	const badAttr = `<svg><rect width="abc" height="10" fill="notacolor"/></svg>`
	if _, err = Parse(strings.NewReader(badAttr), StrictErrorMode); err == nil {
		t.Fatal("expected an error for malformed attributes")
	}
	doc, err = Parse(strings.NewReader(badAttr), WarnErrorMode)
	if err != nil {
		t.Fatal(err)
	}
	r := doc.Root.Children()[0].(*svgrender.Rect)
	if r.Width != (svgunit.Length{}) || r.Style.Fill != nil {
		t.Errorf("malformed values should be left unset: %v %v", r.Width, r.Style.Fill)
	}
}

func TestInvalidDocument(t *testing.T) {
	for _, src := range []string{
		"",
		"<html></html>",
		"not xml at all",
	} {
		_, err := Parse(strings.NewReader(src), IgnoreErrorMode)
		if !errors.Is(err, ErrInvalidSVG) {
			t.Errorf("%q: expected ErrInvalidSVG, got %v", src, err)
		}
	}
	if _, err := Parse(strings.NewReader("<svg><rect></svg>"), IgnoreErrorMode); err == nil {
		t.Error("expected a syntax error")
	}
}

func TestParseColor(t *testing.T) {
	for _, test := range []struct {
		in       string
		expected color.NRGBA
	}{
		{"red", color.NRGBA{R: 0xff, A: 0xff}},
		{"DarkBlue", color.NRGBA{B: 0x8b, A: 0xff}},
		{"#f00", color.NRGBA{R: 0xff, A: 0xff}},
		{"#00FF7f", color.NRGBA{G: 0xff, B: 0x7f, A: 0xff}},
		{"rgb(10, 20, 30)", color.NRGBA{10, 20, 30, 0xff}},
		{"rgb(100%, 0%, 50%)", color.NRGBA{0xff, 0, 0x80, 0xff}},
		{"rgba(0, 0, 255, 0.5)", color.NRGBA{B: 0xff, A: 0x80}},
		{"rgb(300, -5, 0)", color.NRGBA{R: 0xff, A: 0xff}},
		{"transparent", color.NRGBA{}},
	} {
		got, err := ParseColor(test.in)
		if err != nil {
			t.Fatal(err)
		}
		if got != test.expected {
			t.Errorf("%s: expected %v, got %v", test.in, test.expected, got)
		}
	}
	for _, in := range []string{"#12", "rgb(1,2)", "nocolor", "#ggg"} {
		if _, err := ParseColor(in); err == nil {
			t.Errorf("%s: expected an error", in)
		}
	}
}

func TestParsePaint(t *testing.T) {
	for _, test := range []struct {
		in       string
		expected svgrender.PaintServer
	}{
		{"none", svgrender.None},
		{"inherit", svgrender.Inherit},
		{"currentColor", svgrender.CurrentColor{}},
		{"url(#g)", svgrender.Deferred{ID: "g"}},
		{"url('#g') red", svgrender.Deferred{ID: "g", Fallback: svgrender.Color(color.NRGBA{R: 0xff, A: 0xff})}},
		{"blue", svgrender.Color(color.NRGBA{B: 0xff, A: 0xff})},
	} {
		got, err := parsePaint(test.in)
		if err != nil {
			t.Fatal(err)
		}
		if got != test.expected {
			t.Errorf("%s: expected %v, got %v", test.in, test.expected, got)
		}
	}
}

func TestParseAspectRatio(t *testing.T) {
	for _, test := range []struct {
		in       string
		expected svgrender.AspectRatio
	}{
		{"xMidYMid", svgrender.AspectRatio{}},
		{"none", svgrender.AspectRatio{None: true}},
		{"xMaxYMin slice", svgrender.AspectRatio{X: svgrender.AlignMax, Y: svgrender.AlignMin, Slice: true}},
		{"defer xMinYMax meet", svgrender.AspectRatio{X: svgrender.AlignMin, Y: svgrender.AlignMax}},
	} {
		got, err := parseAspectRatio(test.in)
		if err != nil {
			t.Fatal(err)
		}
		if got != test.expected {
			t.Errorf("%s: expected %v, got %v", test.in, test.expected, got)
		}
	}
	for _, in := range []string{"", "xMidYMid crop", "xLeftYTop"} {
		if _, err := parseAspectRatio(in); err == nil {
			t.Errorf("%q: expected an error", in)
		}
	}
}

func TestOrientAndAngles(t *testing.T) {
	for _, test := range []struct {
		in       string
		expected float64
	}{
		{"45", 45},
		{"90deg", 90},
		{"0.5turn", 180},
		{"100grad", 90},
	} {
		o, err := parseOrient(test.in)
		if err != nil {
			t.Fatal(err)
		}
		if o.Auto || o.Angle != test.expected {
			t.Errorf("%s: unexpected orient %v", test.in, o)
		}
	}
}
