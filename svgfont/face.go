package svgfont

import (
	"unicode/utf8"

	"github.com/benoitkugler/svgrender/svgpath"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Face is a font at a given size, in pixels per em.
// Y coordinates increase downward, with the baseline at 0.
// A Face is not safe for concurrent use.
type Face struct {
	font *sfnt.Font
	size float64
	ppem fixed.Int26_6
	buf  sfnt.Buffer
}

// NewFace returns a face of `size` pixels.
func NewFace(f *sfnt.Font, size float64) *Face {
	return &Face{font: f, size: size, ppem: fixed.Int26_6(size * 64)}
}

// Size returns the font size, in pixels.
func (f *Face) Size() float64 { return f.size }

func fixedToFloat(x fixed.Int26_6) float64 { return float64(x) / 64 }

func (f *Face) metrics() font.Metrics {
	m, err := f.font.Metrics(&f.buf, f.ppem, font.HintingNone)
	if err != nil {
		return font.Metrics{}
	}
	return m
}

// Ascent returns the distance from the baseline to the top of the font, as a positive number.
func (f *Face) Ascent() float64 { return fixedToFloat(f.metrics().Ascent) }

// Descent returns the distance from the baseline to the bottom of the font, as a positive number.
func (f *Face) Descent() float64 { return fixedToFloat(f.metrics().Descent) }

func (f *Face) glyph(r rune) sfnt.GlyphIndex {
	g, err := f.font.GlyphIndex(&f.buf, r)
	if err != nil {
		return 0
	}
	return g
}

func (f *Face) advance(g sfnt.GlyphIndex) float64 {
	adv, err := f.font.GlyphAdvance(&f.buf, g, f.ppem, font.HintingNone)
	if err != nil {
		return 0
	}
	return fixedToFloat(adv)
}

// kern returns 0 when the font has no kerning for the pair
func (f *Face) kern(g0, g1 sfnt.GlyphIndex) float64 {
	k, err := f.font.Kern(&f.buf, g0, g1, f.ppem, font.HintingNone)
	if err != nil {
		return 0
	}
	return fixedToFloat(k)
}

// MeasureString returns the advance width of `s` (kerning included)
// and the line height (ascent + descent).
func (f *Face) MeasureString(s string) (width, height float64) {
	var prev sfnt.GlyphIndex
	for i, r := range []rune(s) {
		g := f.glyph(r)
		if i > 0 {
			width += f.kern(prev, g)
		}
		width += f.advance(g)
		prev = g
	}
	m := f.metrics()
	return width, fixedToFloat(m.Ascent + m.Descent)
}

// MeasureCharacters returns one box per rune of `s`, laid out
// from x = 0 without kerning. Boxes span from the ascent to the descent.
func (f *Face) MeasureCharacters(s string) []svgpath.Rect {
	m := f.metrics()
	ascent, descent := fixedToFloat(m.Ascent), fixedToFloat(m.Descent)
	out := make([]svgpath.Rect, 0, utf8.RuneCountInString(s))
	x := 0.
	for _, r := range s {
		w := f.advance(f.glyph(r))
		out = append(out, svgpath.Rect{X: x, Y: -ascent, W: w, H: ascent + descent})
		x += w
	}
	return out
}

// AppendString appends the outlines of `s` to `path`, with the
// baseline origin of the first glyph at `origin`.
func (f *Face) AppendString(path *svgpath.Path, s string, origin svgpath.Point) {
	pen := origin
	var prev sfnt.GlyphIndex
	for i, r := range []rune(s) {
		g := f.glyph(r)
		if i > 0 {
			pen.X += f.kern(prev, g)
		}
		f.appendGlyph(path, g, pen)
		pen.X += f.advance(g)
		prev = g
	}
}

func (f *Face) appendGlyph(path *svgpath.Path, g sfnt.GlyphIndex, pen svgpath.Point) {
	segments, err := f.font.LoadGlyph(&f.buf, g, f.ppem, nil)
	if err != nil {
		return
	}
	pt := func(p fixed.Point26_6) svgpath.Point {
		return svgpath.Point{X: pen.X + fixedToFloat(p.X), Y: pen.Y + fixedToFloat(p.Y)}
	}
	started := false
	for _, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if started {
				path.Stop(true)
			}
			path.Start(pt(seg.Args[0]))
			started = true
		case sfnt.SegmentOpLineTo:
			path.Line(pt(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			path.QuadBezier(pt(seg.Args[0]), pt(seg.Args[1]))
		case sfnt.SegmentOpCubeTo:
			path.CubeBezier(pt(seg.Args[0]), pt(seg.Args[1]), pt(seg.Args[2]))
		}
	}
	if started {
		path.Stop(true)
	}
}
