// Package svgunit resolves SVG lengths to device values.
package svgunit

import (
	"math"

	"github.com/benoitkugler/svgrender/svgpath"
)

// DefaultPPI is the resolution used when the document does not
// provide one.
const DefaultPPI = 96

// size, in points, of the font used when no font is available
const fallbackFontSize = 9

const cmInInch = 2.54

// Unit is the unit of a Length.
type Unit uint8

const (
	None Unit = iota // unitless number, treated as user units
	Pixel
	User
	Em
	Ex
	Centimeter
	Millimeter
	Inch
	Point
	Pica
	Percent
)

func (u Unit) String() string {
	switch u {
	case None:
		return ""
	case Pixel:
		return "px"
	case User:
		return "user"
	case Em:
		return "em"
	case Ex:
		return "ex"
	case Centimeter:
		return "cm"
	case Millimeter:
		return "mm"
	case Inch:
		return "in"
	case Point:
		return "pt"
	case Pica:
		return "pc"
	case Percent:
		return "%"
	default:
		return "<unknown Unit>"
	}
}

// RenderType selects the reference used by percentages.
type RenderType uint8

const (
	// Other is used for lengths with no direction,
	// such as stroke widths or radius.
	Other RenderType = iota
	Horizontal
	HorizontalOffset
	Vertical
	VerticalOffset
)

// Context provides the rendering state needed to resolve lengths.
type Context interface {
	// PPI returns the pixels per inch of the document.
	PPI() float64
	// Boundable returns the current boundable, or nil.
	Boundable() Boundable
	// ViewBox returns the viewBox of the document, or an empty rectangle.
	ViewBox() svgpath.Rect
}

// Owner is the element owning a length, which provides
// the font size for relative units.
type Owner interface {
	// FontSize returns the font size, in pixels,
	// or false if no font is defined.
	FontSize(ctx Context) (float64, bool)
}

type resolveKey struct {
	renderType RenderType
	ppi        float64
	bounds     svgpath.Rect
	viewBox    svgpath.Rect
	fontSize   float64
}

type resolution struct {
	key   resolveKey
	value float64
}

// Length is a number with a unit. Its resolved value is memoized,
// and reused as long as the resolution context is the same.
type Length struct {
	Value float64
	Unit  Unit

	cache *resolution
}

// New returns a length.
func New(value float64, unit Unit) Length { return Length{Value: value, Unit: unit} }

// Px is a shortcut for a length in pixels.
func Px(value float64) Length { return Length{Value: value, Unit: Pixel} }

// Pct is a shortcut for a percentage.
func Pct(value float64) Length { return Length{Value: value, Unit: Percent} }

// IsZero returns true for zero lengths, whatever the unit.
func (l Length) IsZero() bool { return l.Value == 0 }

func (l Length) needsFont() bool { return l.Unit == Em || l.Unit == Ex }

func contextKey(ctx Context, rt RenderType, owner Owner, l Length) resolveKey {
	key := resolveKey{renderType: rt, ppi: DefaultPPI, fontSize: -1}
	if ctx != nil {
		if ppi := ctx.PPI(); ppi > 0 {
			key.ppi = ppi
		}
		if b := ctx.Boundable(); b != nil {
			key.bounds = b.Bounds()
		}
		key.viewBox = ctx.ViewBox()
	}
	if l.needsFont() && owner != nil {
		if size, ok := owner.FontSize(ctx); ok {
			key.fontSize = size
		}
	}
	return key
}

// Resolve converts the length to a device value.
// `ctx` and `owner` may be nil.
func (l *Length) Resolve(ctx Context, rt RenderType, owner Owner) float64 {
	if l.Value == 0 {
		return 0
	}
	switch l.Unit {
	case None, Pixel, User:
		return l.Value
	}
	key := contextKey(ctx, rt, owner, *l)
	if l.cache != nil && l.cache.key == key {
		return l.cache.value
	}
	v := l.compute(ctx, key)
	l.cache = &resolution{key: key, value: v}
	return v
}

func (l Length) compute(ctx Context, key resolveKey) float64 {
	value, ppi := l.Value, key.ppi
	switch l.Unit {
	case Em, Ex:
		var size float64
		if key.fontSize < 0 {
			size = fallbackFontSize / 72. * ppi
		} else {
			size = key.fontSize
		}
		if l.Unit == Ex {
			size *= 0.5
		}
		return value * size
	case Centimeter:
		return value / cmInInch * ppi
	case Millimeter:
		return value / 10 / cmInInch * ppi
	case Inch:
		return value * ppi
	case Pica:
		return value * 12 / 72 * ppi
	case Point:
		return value / 72 * ppi
	case Percent:
		var b Boundable
		if ctx != nil {
			b = ctx.Boundable()
		}
		if b == nil {
			return value
		}
		bounds := key.bounds
		switch key.renderType {
		case Horizontal:
			return bounds.W / 100 * value
		case HorizontalOffset:
			return bounds.W/100*value + bounds.X
		case Vertical:
			return bounds.H / 100 * value
		case VerticalOffset:
			return bounds.H/100*value + bounds.Y
		default:
			w, h := bounds.W, bounds.H
			if vb := key.viewBox; vb.W != 0 && vb.H != 0 {
				w, h = vb.W, vb.H
			}
			return math.Hypot(w, h) / math.Sqrt2 * value / 100
		}
	default:
		return value
	}
}

// ResolvePoint resolves a pair of coordinates.
func ResolvePoint(x, y *Length, ctx Context, owner Owner) svgpath.Point {
	return svgpath.Point{X: x.Resolve(ctx, Horizontal, owner), Y: y.Resolve(ctx, Vertical, owner)}
}

// ResolvePointOffset resolves a pair of coordinates,
// percentages being relative to the current boundable location.
func ResolvePointOffset(x, y *Length, ctx Context, owner Owner) svgpath.Point {
	return svgpath.Point{X: x.Resolve(ctx, HorizontalOffset, owner), Y: y.Resolve(ctx, VerticalOffset, owner)}
}

// List is a list of lengths, as found in `x` or `dx` attributes.
type List []Length

// Resolve resolves every length of the list.
func (l List) Resolve(ctx Context, rt RenderType, owner Owner) []float64 {
	out := make([]float64, len(l))
	for i := range l {
		out[i] = l[i].Resolve(ctx, rt, owner)
	}
	return out
}
