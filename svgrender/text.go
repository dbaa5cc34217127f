package svgrender

import (
	"github.com/benoitkugler/svgrender/svgfont"
	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgunit"
)

// Font is a font face at a given size, used to lay out text.
// Glyph outlines are in pixels, the y axis pointing down.
type Font interface {
	Size() float64
	Ascent() float64
	// MeasureString returns the advance and the line height of `s`.
	MeasureString(s string) (width, height float64)
	// MeasureCharacters returns the box of each rune of `s`,
	// relative to the start of `s` on the baseline.
	MeasureCharacters(s string) []svgpath.Rect
	// AppendString adds the outlines of `s` to `path`,
	// `origin` being the start of the baseline.
	AppendString(path *svgpath.Path, s string, origin svgpath.Point)
}

// FontLoader provides the fonts used by text elements.
type FontLoader interface {
	// LoadFont returns a face for the comma separated list of `family`.
	LoadFont(family string, weight FontWeight, italic bool, size float64) (Font, error)
}

// goFonts uses the fonts registered in svgfont.Default.
type goFonts struct{}

func (goFonts) LoadFont(family string, weight FontWeight, italic bool, size float64) (Font, error) {
	face, err := svgfont.Default().NewFace(family, svgfont.Style{Bold: weight >= 600, Italic: italic}, size)
	if err != nil {
		return nil, err
	}
	return face, nil
}

type fontKey struct {
	family string
	weight FontWeight
	italic bool
	size   float64
}

// font returns the font of `el`, or nil if it can't be loaded.
func (c *Context) font(el Element) Font {
	n := el.node()
	size, ok := n.FontSize(c)
	if !ok {
		size = defaultFontSize(c)
	}
	key := fontKey{n.fontFamily(), n.fontWeight(), n.italic(), size}

	var loader FontLoader = goFonts{}
	if c.doc != nil {
		if f, ok := c.doc.fonts[key]; ok {
			return f
		}
		if c.doc.Fonts != nil {
			loader = c.doc.Fonts
		}
	}
	f, err := loader.LoadFont(key.family, key.weight, key.italic, key.size)
	if err != nil {
		Logger().Warn("font not available", "family", key.family, "error", err)
		return nil
	}
	if c.doc != nil {
		if c.doc.fonts == nil {
			c.doc.fonts = make(map[fontKey]Font)
		}
		c.doc.fonts[key] = f
	}
	return f
}

// LengthAdjust selects how textLength is enforced.
type LengthAdjust uint8

const (
	Spacing LengthAdjust = iota
	SpacingAndGlyphs
)

// TextContent holds the attributes shared by text, tspan and textPath.
type TextContent struct {
	Node
	X, Y, DX, DY svgunit.List
	Rotate       []float64 // in degrees
	TextLength   *svgunit.Length
	LengthAdjust LengthAdjust
	// PreserveSpace is true for xml:space="preserve".
	PreserveSpace bool
}

func (t *TextContent) content() *TextContent { return t }

type textElement interface {
	Element
	svgunit.Owner
	content() *TextContent
}

// TextNode is the character data of a text element.
type TextNode struct {
	Node
	Data string
}

// Text is a <text> element.
type Text struct {
	TextContent

	layoutCache Cached[*textLayout]
	layoutKey   viewportKey
}

func (t *Text) resetCaches() { t.layoutCache.Invalidate() }

func (t *Text) layout(ctx *Context) *textLayout {
	if key := newViewportKey(ctx); key != t.layoutKey {
		t.layoutCache.Invalidate()
		t.layoutKey = key
	}
	return t.layoutCache.Get(func() *textLayout { return layoutText(ctx, t) })
}

// Geometry returns the outlines of every glyph of the text.
func (t *Text) Geometry(ctx *Context) svgpath.Path { return t.layout(ctx).all[t] }

func (t *Text) Render(ctx *Context) {
	layout := t.layout(ctx)
	renderElement(ctx, t, func(ctx *Context) { renderTextContent(ctx, t, layout) })
}

// TSpan is a <tspan> element.
type TSpan struct {
	TextContent
}

func (t *TSpan) Geometry(ctx *Context) svgpath.Path { return textGeometry(ctx, t) }

// TextPath is a <textPath> element, laying out its
// characters along the element referenced by Href.
type TextPath struct {
	TextContent
	Href        string
	StartOffset svgunit.Length
}

func (t *TextPath) Geometry(ctx *Context) svgpath.Path { return textGeometry(ctx, t) }

// rootText returns the <text> ancestor of `el`
func rootText(el Element) *Text {
	for p := el.node().parent; p != nil; p = p.node().parent {
		if t, ok := p.(*Text); ok {
			return t
		}
	}
	return nil
}

func textGeometry(ctx *Context, el textElement) svgpath.Path {
	root := rootText(el)
	if root == nil {
		return nil
	}
	return root.layout(ctx).all[el]
}

// renderTextContent paints the glyphs owned by `el`, then its text children.
// Spans are rendered from the layout of their <text> ancestor.
func renderTextContent(ctx *Context, el textElement, layout *textLayout) {
	n := el.node()
	if path := layout.own[el]; len(path) != 0 && n.isVisible() {
		smooth := ctx.Smoothing()
		ctx.SetSmoothing(n.antialias())
		fillPath(ctx, el, path)
		strokePath(ctx, el, path)
		ctx.SetSmoothing(smooth)
	}
	for _, child := range n.children {
		if span, ok := child.(textElement); ok {
			renderElement(ctx, span, func(ctx *Context) { renderTextContent(ctx, span, layout) })
		}
	}
}
