package svgrender

import (
	"math"

	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgunit"
)

// Pattern is a <pattern> element. Nil attributes
// are inherited through Href.
type Pattern struct {
	Node
	X, Y, Width, Height *svgunit.Length
	Units               *Units // ObjectBoundingBox by default
	ContentUnits        *Units // UserSpaceOnUse by default
	ViewBox             *svgpath.Rect
	Aspect              AspectRatio
	PatternTransform    svgpath.TransformList
	Href                string
}

func (p *Pattern) chain(ctx *Context) []*Pattern {
	chain := []*Pattern{p}
	seen := map[*Pattern]bool{p: true}
	for href := p.Href; href != ""; {
		next, ok := ctx.lookup(href).(*Pattern)
		if !ok || seen[next] {
			break
		}
		seen[next] = true
		chain = append(chain, next)
		href = next.Href
	}
	return chain
}

// inherited returns the first value accepted by `get` along the chain
func inherited[T any](chain []*Pattern, get func(p *Pattern) (T, bool)) (T, bool) {
	for _, p := range chain {
		if v, ok := get(p); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func (p *Pattern) brush(ctx *Context, owner Element, opacity float64) Brush {
	chain := p.chain(ctx)
	content, _ := inherited(chain, func(p *Pattern) (*Pattern, bool) { return p, len(p.children) != 0 })
	if content == nil {
		return nil
	}
	length := func(get func(p *Pattern) *svgunit.Length) *svgunit.Length {
		l, _ := inherited(chain, func(p *Pattern) (*svgunit.Length, bool) { l := get(p); return l, l != nil })
		if l == nil {
			return new(svgunit.Length)
		}
		return l
	}
	units, _ := inherited(chain, func(p *Pattern) (*Units, bool) { return p.Units, p.Units != nil })
	contentUnits, _ := inherited(chain, func(p *Pattern) (*Units, bool) { return p.ContentUnits, p.ContentUnits != nil })
	viewBox, _ := inherited(chain, func(p *Pattern) (*svgpath.Rect, bool) { return p.ViewBox, p.ViewBox != nil })
	transform, _ := inherited(chain, func(p *Pattern) (svgpath.TransformList, bool) {
		return p.PatternTransform, p.PatternTransform != nil
	})

	bounds := objectBounds(ctx, owner)
	xl, yl := length(func(p *Pattern) *svgunit.Length { return p.X }), length(func(p *Pattern) *svgunit.Length { return p.Y })
	wl, hl := length(func(p *Pattern) *svgunit.Length { return p.Width }), length(func(p *Pattern) *svgunit.Length { return p.Height })
	var tile svgpath.Rect
	if units == nil || *units == ObjectBoundingBox {
		tile = svgpath.Rect{X: fraction(xl), Y: fraction(yl), W: fraction(wl), H: fraction(hl)}
		tile = bboxMatrix(bounds).TransformRect(tile)
	} else {
		loc := svgunit.ResolvePointOffset(xl, yl, ctx, p)
		tile = svgpath.Rect{X: loc.X, Y: loc.Y, W: wl.Resolve(ctx, svgunit.Horizontal, p), H: hl.Resolve(ctx, svgunit.Vertical, p)}
	}
	if tile.IsEmpty() {
		return nil
	}

	tw, th := int(math.Ceil(tile.W)), int(math.Ceil(tile.H))
	img, err := NewSurfaceImage(tw, th)
	if err != nil {
		Logger().Warn("pattern tile not rendered", "id", p.ID, "error", err)
		return nil
	}

	// tile pixels -> pattern space
	pixelToTile := svgpath.Identity.Scale(tile.W/float64(tw), tile.H/float64(th))

	var contentMatrix svgpath.Matrix2D
	switch {
	case viewBox != nil && !viewBox.IsEmpty():
		contentMatrix = viewBoxTransform(*viewBox, p.Aspect, tile.W, tile.H)
	case contentUnits != nil && *contentUnits == ObjectBoundingBox:
		contentMatrix = svgpath.Identity.Scale(bounds.W, bounds.H)
	default:
		contentMatrix = svgpath.Identity
	}

	off := ctx.offscreen(ctx.Offscreen(img))
	off.SetTransform(pixelToTile.Invert().Mult(contentMatrix))
	off.withBoundable(svgunit.RectBoundable(bounds), func() { renderChildren(off, &content.Node) })

	return &PatternBrush{
		Tile:    img,
		Matrix:  transform.Matrix().Translate(tile.X, tile.Y).Mult(pixelToTile),
		Opacity: clampOpacity(opacity),
	}
}
