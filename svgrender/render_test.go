package svgrender_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benoitkugler/svgrender/svgdraw"
	"github.com/benoitkugler/svgrender/svgfilter"
	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgrender"
	"github.com/benoitkugler/svgrender/svgunit"
)

var (
	red  = color.NRGBA{R: 0xff, A: 0xff}
	blue = color.NRGBA{B: 0xff, A: 0xff}
)

func newDoc(width, height float64, children ...svgrender.Element) *svgrender.Document {
	root := svgrender.NewFragment()
	root.Width, root.Height = svgunit.Px(width), svgunit.Px(height)
	for _, c := range children {
		svgrender.AppendChild(root, c)
	}
	return svgrender.NewDocument(root)
}

func draw(t *testing.T, doc *svgrender.Document) *svgdraw.Recorder {
	t.Helper()
	rec := svgdraw.New()
	require.NoError(t, doc.Draw(rec))
	require.Equal(t, 0, rec.Depth(), "unbalanced save/restore")
	return rec
}

func rect(x, y, w, h float64) *svgrender.Rect {
	return &svgrender.Rect{X: svgunit.Px(x), Y: svgunit.Px(y), Width: svgunit.Px(w), Height: svgunit.Px(h)}
}

func float(v float64) *float64 { return &v }

func TestDrawNilRenderer(t *testing.T) {
	doc := newDoc(10, 10)
	assert.ErrorIs(t, doc.Draw(nil), svgrender.ErrNilRenderer)
}

func TestFillDefaultBlack(t *testing.T) {
	rec := draw(t, newDoc(100, 100, rect(10, 10, 20, 20)))
	fills := rec.Filter(svgdraw.Fill)
	require.Len(t, fills, 1)
	assert.Equal(t, svgrender.SolidBrush{Color: color.NRGBA{A: 0xff}}, fills[0].Brush)
	assert.Equal(t, svgpath.Rect{X: 10, Y: 10, W: 20, H: 20}, fills[0].Path.Bounds())
	assert.Equal(t, 0, rec.Count(svgdraw.Stroke))
}

func TestEmptyRectNotRendered(t *testing.T) {
	rec := draw(t, newDoc(100, 100, rect(10, 10, 0, 20), rect(10, 10, 20, -1)))
	assert.Equal(t, 0, rec.Count(svgdraw.Fill))
}

func TestOpacityLayer(t *testing.T) {
	opaque := rect(0, 0, 10, 10)
	rec := draw(t, newDoc(100, 100, opaque))
	assert.Equal(t, 0, rec.Count(svgdraw.SaveLayer))
	baseSaves, baseRestores := rec.Count(svgdraw.Save), rec.Count(svgdraw.Restore)

	transparent := rect(0, 0, 10, 10)
	transparent.Style.Opacity = float(0.5)
	rec = draw(t, newDoc(100, 100, transparent))
	layers := rec.Filter(svgdraw.SaveLayer)
	require.Len(t, layers, 1)
	assert.Equal(t, 0.5, layers[0].Opacity)
	assert.Equal(t, baseSaves, rec.Count(svgdraw.Save))
	assert.Equal(t, baseRestores+1, rec.Count(svgdraw.Restore))
}

func TestStroke(t *testing.T) {
	r := rect(0, 0, 10, 10)
	r.Style.Fill = svgrender.None
	r.Style.Stroke = svgrender.Color(red)
	width := svgunit.Px(3)
	r.Style.StrokeWidth = &width
	r.Style.StrokeDashArray = svgunit.List{svgunit.Px(2)}
	rec := draw(t, newDoc(100, 100, r))
	assert.Equal(t, 0, rec.Count(svgdraw.Fill))
	strokes := rec.Filter(svgdraw.Stroke)
	require.Len(t, strokes, 1)
	assert.Equal(t, 3., strokes[0].Stroke.Width)
	assert.Equal(t, []float64{2, 2}, strokes[0].Stroke.Dashes)
	assert.Equal(t, 4., strokes[0].Stroke.MiterLimit)

	zero := svgunit.Px(0)
	r.Style.StrokeWidth = &zero
	svgrender.Invalidate(r)
	rec = draw(t, newDoc(100, 100, r))
	assert.Equal(t, 0, rec.Count(svgdraw.Stroke))
}

func TestInheritedStyle(t *testing.T) {
	g := &svgrender.Group{}
	g.Style.Fill = svgrender.Color(red)
	g.Style.FillOpacity = float(0.5)
	child := rect(0, 0, 10, 10)
	svgrender.AppendChild(g, child)
	rec := draw(t, newDoc(100, 100, g))
	fills := rec.Filter(svgdraw.Fill)
	require.Len(t, fills, 1)
	assert.Equal(t, svgrender.SolidBrush{Color: color.NRGBA{R: 0xff, A: 128}}, fills[0].Brush)
}

func TestTransforms(t *testing.T) {
	g := &svgrender.Group{}
	g.Transforms = svgpath.TransformList{svgpath.Translation{X: 5, Y: 7}}
	svgrender.AppendChild(g, rect(0, 0, 10, 10))
	rec := draw(t, newDoc(100, 100, g))
	fills := rec.Filter(svgdraw.Fill)
	require.Len(t, fills, 1)
	assert.Equal(t, svgpath.Identity.Translate(5, 7), fills[0].Transform)
}

func linearGradient(id string, x1, y1, x2, y2 float64, stops ...*svgrender.Stop) *svgrender.LinearGradient {
	g := &svgrender.LinearGradient{}
	g.ID = id
	l := func(v float64) *svgunit.Length { u := svgunit.Pct(v); return &u }
	g.X1, g.Y1, g.X2, g.Y2 = l(x1), l(y1), l(x2), l(y2)
	for _, s := range stops {
		svgrender.AppendChild(g, s)
	}
	return g
}

func stop(offset float64, c color.NRGBA) *svgrender.Stop {
	return &svgrender.Stop{Offset: offset, StopColor: svgrender.Color(c)}
}

func TestLinearGradientExpansion(t *testing.T) {
	for _, spread := range []svgrender.Spread{svgrender.PadSpread, svgrender.ReflectSpread, svgrender.RepeatSpread} {
		g := linearGradient("grad", 40, 50, 60, 50, stop(0, red), stop(100, blue))
		g.Spread = &spread
		defs := &svgrender.Defs{}
		svgrender.AppendChild(defs, g)
		r := rect(0, 0, 100, 100)
		r.Style.Fill = svgrender.Deferred{ID: "grad"}

		rec := draw(t, newDoc(200, 200, defs, r))
		fills := rec.Filter(svgdraw.Fill)
		require.Len(t, fills, 1)
		brush, ok := fills[0].Brush.(*svgrender.LinearBrush)
		require.True(t, ok)
		assert.Equal(t, spread, brush.Spread)
		assert.InDelta(t, 0, brush.Start.X, 1e-9, "spread %d", spread)
		assert.InDelta(t, 50, brush.Start.Y, 1e-9, "spread %d", spread)
		assert.InDelta(t, 100, brush.End.X, 1e-9, "spread %d", spread)
		assert.InDelta(t, 50, brush.End.Y, 1e-9, "spread %d", spread)
		require.Len(t, brush.Stops, 4)
		expected := []svgrender.BrushStop{{Offset: 0, Color: red}, {Offset: 0.4, Color: red}, {Offset: 0.6, Color: blue}, {Offset: 1, Color: blue}}
		for i, s := range brush.Stops {
			assert.InDelta(t, expected[i].Offset, s.Offset, 1e-9)
			assert.Equal(t, expected[i].Color, s.Color)
		}
	}
}

func TestGradientHref(t *testing.T) {
	defs := &svgrender.Defs{}
	base := linearGradient("base", 0, 0, 100, 0, stop(0, red), stop(100, blue))
	derived := &svgrender.LinearGradient{}
	derived.ID, derived.Href = "derived", "#base"
	svgrender.AppendChild(defs, base)
	svgrender.AppendChild(defs, derived)
	r := rect(0, 0, 100, 100)
	r.Style.Fill = svgrender.Deferred{ID: "derived"}

	rec := draw(t, newDoc(200, 200, defs, r))
	fills := rec.Filter(svgdraw.Fill)
	require.Len(t, fills, 1)
	brush, ok := fills[0].Brush.(*svgrender.LinearBrush)
	require.True(t, ok)
	assert.Equal(t, []svgrender.BrushStop{{Offset: 0, Color: red}, {Offset: 1, Color: blue}}, brush.Stops)
}

func TestDegenerateGradients(t *testing.T) {
	defs := &svgrender.Defs{}
	svgrender.AppendChild(defs, linearGradient("same-points", 50, 50, 50, 50, stop(0, red), stop(100, blue)))
	svgrender.AppendChild(defs, linearGradient("no-stop", 0, 0, 100, 0))
	svgrender.AppendChild(defs, linearGradient("one-stop", 0, 0, 100, 0, stop(30, blue)))

	for id, expected := range map[string]int{"same-points": 0, "no-stop": 0, "one-stop": 1, "missing": 0} {
		r := rect(0, 0, 100, 100)
		r.Style.Fill = svgrender.Deferred{ID: id}
		rec := draw(t, newDoc(200, 200, defs, r))
		assert.Equal(t, expected, rec.Count(svgdraw.Fill), id)
		if expected == 1 {
			assert.Equal(t, svgrender.SolidBrush{Color: blue}, rec.Filter(svgdraw.Fill)[0].Brush)
		}
	}

	// dangling reference with fallback
	r := rect(0, 0, 100, 100)
	r.Style.Fill = svgrender.Deferred{ID: "missing", Fallback: svgrender.Color(red)}
	rec := draw(t, newDoc(200, 200, r))
	require.Equal(t, 1, rec.Count(svgdraw.Fill))
	assert.Equal(t, svgrender.SolidBrush{Color: red}, rec.Filter(svgdraw.Fill)[0].Brush)
}

func TestRadialGradient(t *testing.T) {
	g := &svgrender.RadialGradient{}
	g.ID = "radial"
	svgrender.AppendChild(g, stop(20, red))
	svgrender.AppendChild(g, stop(100, blue))
	r := rect(10, 10, 100, 50)
	r.Style.Fill = svgrender.Deferred{ID: "radial"}

	rec := draw(t, newDoc(200, 200, g, r))
	fills := rec.Filter(svgdraw.Fill)
	require.Len(t, fills, 1)
	brush, ok := fills[0].Brush.(*svgrender.RadialBrush)
	require.True(t, ok)
	assert.Equal(t, svgpath.Point{X: 0.5, Y: 0.5}, brush.Center)
	assert.Equal(t, brush.Center, brush.Focal)
	assert.Equal(t, 0.5, brush.Radius)
	assert.Equal(t, svgpath.Point{X: 60, Y: 35}, brush.Matrix.TransformPoint(brush.Center))
	assert.Equal(t, []svgrender.BrushStop{{Offset: 0, Color: red}, {Offset: 0.2, Color: red}, {Offset: 1, Color: blue}}, brush.Stops)
}

func TestClipPath(t *testing.T) {
	clip := svgrender.NewClipPath()
	clip.ID = "clip"
	svgrender.AppendChild(clip, rect(0, 0, 50, 50))
	r := rect(0, 0, 100, 100)
	r.Style.ClipPath = "url(#clip)"

	rec := draw(t, newDoc(200, 200, clip, r))
	var clips []svgdraw.Op
	for _, op := range rec.Filter(svgdraw.SetClip) {
		if op.Path.Bounds() == (svgpath.Rect{W: 50, H: 50}) {
			clips = append(clips, op)
		}
	}
	assert.Len(t, clips, 1)
	assert.Equal(t, 1, rec.Count(svgdraw.Fill)) // the clip content is not painted
}

func TestClipPathBoundingBox(t *testing.T) {
	clip := svgrender.NewClipPath()
	clip.ID = "clip"
	clip.Units = svgrender.ObjectBoundingBox
	c := &svgrender.Circle{CX: svgunit.Px(0.5), CY: svgunit.Px(0.5), R: svgunit.Px(0.5)}
	svgrender.AppendChild(clip, c)
	r := rect(20, 20, 100, 50)
	r.Style.ClipPath = "#clip"

	rec := draw(t, newDoc(200, 200, clip, r))
	clips := rec.Filter(svgdraw.SetClip)
	require.Len(t, clips, 2) // viewport, then clip path
	b := clips[1].Path.Bounds()
	assert.InDelta(t, 20, b.X, 1e-6)
	assert.InDelta(t, 20, b.Y, 1e-6)
	assert.InDelta(t, 100, b.W, 1e-6)
	assert.InDelta(t, 50, b.H, 1e-6)
}

func TestUseElement(t *testing.T) {
	target := rect(0, 0, 10, 10)
	target.ID = "target"
	defs := &svgrender.Defs{}
	svgrender.AppendChild(defs, target)
	use := &svgrender.Use{Href: "#target", X: svgunit.Px(30), Y: svgunit.Px(40)}
	use.Style.Fill = svgrender.Color(red)

	rec := draw(t, newDoc(100, 100, defs, use))
	fills := rec.Filter(svgdraw.Fill)
	require.Len(t, fills, 1)
	assert.Equal(t, svgrender.SolidBrush{Color: red}, fills[0].Brush) // inherited from the use
	assert.Equal(t, svgpath.Identity.Translate(30, 40), fills[0].Transform)
	assert.Equal(t, defs, target.Parent()) // parent restored

}

func TestUseBounds(t *testing.T) {
	target := rect(0, 0, 10, 10)
	target.ID = "target"
	defs := &svgrender.Defs{}
	svgrender.AppendChild(defs, target)
	use := &svgrender.Use{Href: "#target", X: svgunit.Px(30), Y: svgunit.Px(40)}
	doc := newDoc(100, 100, defs, use)

	ctx := svgrender.NewContext(svgdraw.New(), doc)
	assert.Equal(t, svgpath.Rect{X: 30, Y: 40, W: 10, H: 10}, svgrender.Bounds(ctx, use))
	assert.Equal(t, svgpath.Rect{W: 10, H: 10}, svgrender.Bounds(ctx, target))
}

func TestRecursiveUse(t *testing.T) {
	g := &svgrender.Group{}
	g.ID = "g"
	svgrender.AppendChild(g, rect(0, 0, 10, 10))
	svgrender.AppendChild(g, &svgrender.Use{Href: "#g"}) // references its ancestor

	self := &svgrender.Use{Href: "#self"}
	self.ID = "self"

	a := &svgrender.Use{Href: "#b"}
	a.ID = "a"
	b := &svgrender.Use{Href: "#a"}
	b.ID = "b"

	rec := draw(t, newDoc(100, 100, g, self, a, b))
	assert.Equal(t, 1, rec.Count(svgdraw.Fill))
}

func TestDisplayNone(t *testing.T) {
	g := &svgrender.Group{}
	g.Style.DisplayNone = true
	svgrender.AppendChild(g, rect(0, 0, 10, 10))
	hidden := rect(0, 0, 10, 10)
	v := svgrender.Hidden
	hidden.Style.Visibility = &v
	rec := draw(t, newDoc(100, 100, g, hidden))
	assert.Equal(t, 0, rec.Count(svgdraw.Fill))
}

func TestDimensions(t *testing.T) {
	root := svgrender.NewFragment()
	root.ViewBox = svgpath.Rect{W: 50, H: 40}
	doc := svgrender.NewDocument(root)
	w, h := doc.Dimensions()
	assert.Equal(t, 50., w)
	assert.Equal(t, 40., h)

	root = svgrender.NewFragment()
	root.Width = svgunit.Pct(50)
	svgrender.AppendChild(root, rect(10, 10, 90, 30))
	doc = svgrender.NewDocument(root)
	w, h = doc.Dimensions()
	assert.Equal(t, 50., w)
	assert.Equal(t, 40., h)

	root = svgrender.NewFragment()
	root.Width, root.Height = svgunit.New(1, svgunit.Inch), svgunit.New(72, svgunit.Point)
	doc = svgrender.NewDocument(root)
	doc.PPI = 150
	w, h = doc.Dimensions()
	assert.Equal(t, 150., w)
	assert.Equal(t, 150., h)
}

func TestViewBox(t *testing.T) {
	doc := newDoc(200, 100, rect(0, 0, 10, 10))
	doc.Root.ViewBox = svgpath.Rect{W: 10, H: 10}
	rec := draw(t, doc)
	fills := rec.Filter(svgdraw.Fill)
	require.Len(t, fills, 1)
	// xMidYMid meet : scale 10, centered horizontally
	assert.Equal(t, svgpath.Rect{X: 50, Y: 0, W: 100, H: 100}, fills[0].Transform.TransformRect(fills[0].Path.Bounds()))
}

func TestSwitch(t *testing.T) {
	sw := &svgrender.Switch{}
	fr := rect(0, 0, 10, 10)
	fr.SystemLanguage = "fr, de"
	fr.Style.Fill = svgrender.Color(red)
	en := rect(0, 0, 10, 10)
	en.SystemLanguage = "en-US"
	en.Style.Fill = svgrender.Color(blue)
	svgrender.AppendChild(sw, fr)
	svgrender.AppendChild(sw, en)

	doc := newDoc(100, 100, sw)
	rec := draw(t, doc)
	fills := rec.Filter(svgdraw.Fill)
	require.Len(t, fills, 1)
	assert.Equal(t, svgrender.SolidBrush{Color: blue}, fills[0].Brush)
}

func TestFilterOffscreen(t *testing.T) {
	f := &svgrender.Filter{}
	f.ID = "blur"
	svgrender.AppendChild(f, &svgrender.FeGaussianBlur{Params: svgfilter.GaussianBlur{StdDeviation: []float64{2}}})
	r := rect(10, 10, 20, 20)
	r.Style.Filter = "blur"

	rec := draw(t, newDoc(100, 100, f, r))
	assert.Equal(t, 0, rec.Count(svgdraw.Fill))
	images := rec.Filter(svgdraw.DrawImage)
	require.Len(t, images, 1)
	// region inflated by half the size on each side
	assert.Equal(t, svgpath.Rect{X: 0, Y: 0, W: 40, H: 40}, images[0].Dst)
	assert.Equal(t, svgpath.Identity, images[0].Transform)

	require.Len(t, rec.Offscreens, 1)
	source := rec.Offscreens[0]
	fills := source.Filter(svgdraw.Fill)
	require.Len(t, fills, 1)
	assert.Equal(t, svgpath.Rect{X: 10, Y: 10, W: 20, H: 20}, fills[0].Transform.TransformRect(fills[0].Path.Bounds()))
}

func TestFilterResultsNotShared(t *testing.T) {
	f := &svgrender.Filter{}
	f.ID = "blur"
	svgrender.AppendChild(f, &svgrender.FeGaussianBlur{Params: svgfilter.GaussianBlur{StdDeviation: []float64{2}}})
	r1, r2 := rect(10, 10, 20, 20), rect(50, 50, 20, 20)
	r1.Style.Filter, r2.Style.Filter = "blur", "blur"

	rec := draw(t, newDoc(100, 100, f, r1, r2))
	images := rec.Filter(svgdraw.DrawImage)
	require.Len(t, images, 2)
	img1, ok1 := images[0].Image.(*image.RGBA)
	img2, ok2 := images[1].Image.(*image.RGBA)
	require.True(t, ok1 && ok2)
	// the filter buffers are recycled : the recorded images must not alias them
	assert.NotSame(t, &img1.Pix[0], &img2.Pix[0])
}

func TestEmptyFilter(t *testing.T) {
	f := &svgrender.Filter{}
	f.ID = "empty"
	r := rect(10, 10, 20, 20)
	r.Style.Filter = "url(#empty)"
	rec := draw(t, newDoc(100, 100, f, r))
	assert.Equal(t, 0, rec.Count(svgdraw.Fill))
	assert.Equal(t, 0, rec.Count(svgdraw.DrawImage))
}

func TestMarkers(t *testing.T) {
	marker := svgrender.NewMarker()
	marker.ID = "arrow"
	marker.Orient.Auto = true
	marker.Units = svgrender.UserSpaceOnUse
	svgrender.AppendChild(marker, rect(0, 0, 2, 2))

	line := &svgrender.Line{X1: svgunit.Px(10), Y1: svgunit.Px(10), X2: svgunit.Px(10), Y2: svgunit.Px(50)}
	line.Style.Fill = svgrender.None
	line.Style.Stroke = svgrender.Color(red)
	line.Style.MarkerStart = "arrow"
	line.Style.MarkerEnd = "arrow"

	after := rect(60, 60, 10, 10)

	rec := draw(t, newDoc(100, 100, marker, line, after))
	assert.Equal(t, 1, rec.Count(svgdraw.Stroke))
	assert.Equal(t, 0, rec.Depth())
	fills := rec.Filter(svgdraw.Fill)
	require.Len(t, fills, 3)
	// the marker transforms do not leak to the next element
	assert.Equal(t, rec.Filter(svgdraw.Stroke)[0].Transform, fills[2].Transform)
	// vertical line : rotated by 90 degrees around each end
	start := fills[0].Transform.TransformPoint(svgpath.Point{X: 1, Y: 0})
	assert.InDelta(t, 10, start.X, 1e-9)
	assert.InDelta(t, 11, start.Y, 1e-9)
	end := fills[1].Transform.TransformPoint(svgpath.Point{})
	assert.InDelta(t, 10, end.X, 1e-9)
	assert.InDelta(t, 50, end.Y, 1e-9)
}

func TestPattern(t *testing.T) {
	p := &svgrender.Pattern{}
	p.ID = "pat"
	units := svgrender.UserSpaceOnUse
	p.Units = &units
	w, h := svgunit.Px(10), svgunit.Px(5.5)
	p.Width, p.Height = &w, &h
	svgrender.AppendChild(p, rect(0, 0, 5, 5))
	r := rect(0, 0, 100, 100)
	r.Style.Fill = svgrender.Deferred{ID: "pat"}

	rec := draw(t, newDoc(100, 100, p, r))
	fills := rec.Filter(svgdraw.Fill)
	require.Len(t, fills, 1)
	brush, ok := fills[0].Brush.(*svgrender.PatternBrush)
	require.True(t, ok)
	assert.Equal(t, 10, brush.Tile.Bounds().Dx())
	assert.Equal(t, 6, brush.Tile.Bounds().Dy())
	assert.Equal(t, 1., brush.Opacity)
	require.Len(t, rec.Offscreens, 1)
	assert.Same(t, brush.Tile, rec.Offscreens[0].Target)
	assert.Equal(t, 1, rec.Offscreens[0].Count(svgdraw.Fill))
}

func TestPathElementEmpty(t *testing.T) {
	segs, err := svgpath.ParsePathData("M 10 20 M 30 40")
	require.NoError(t, err)
	p := &svgrender.PathElement{Segments: segs}
	p.Style.Stroke = svgrender.Color(red)
	doc := newDoc(100, 100, p)
	rec := draw(t, doc)
	assert.Equal(t, 0, rec.Count(svgdraw.Fill))
	assert.Equal(t, 0, rec.Count(svgdraw.Stroke))

	ctx := svgrender.NewContext(svgdraw.New(), doc)
	geom := p.Geometry(ctx)
	assert.Equal(t, svgpath.Path{svgpath.MoveTo{X: 30, Y: 40}, svgpath.LineTo{X: 30, Y: 40}}, geom)
}
