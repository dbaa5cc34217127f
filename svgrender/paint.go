package svgrender

import (
	"image/color"
	"math"
)

// PaintServer is the value of a fill or stroke property.
// It is one of the None, NotSet and Inherit sentinels, Color,
// CurrentColor or Deferred. Gradient and pattern elements are
// referenced with Deferred.
type PaintServer interface {
	isPaintServer()
}

type sentinel string

func (sentinel) isPaintServer() {}

// Sentinel paint servers. NotSet and Inherit delegate to the parent
// element; at the root, NotSet paints black fills and no stroke.
var (
	None    PaintServer = sentinel("none")
	NotSet  PaintServer = sentinel("notset")
	Inherit PaintServer = sentinel("inherit")
)

// Color is a plain color paint.
type Color color.NRGBA

// CurrentColor paints with the value of the `color` property.
type CurrentColor struct{}

// Deferred is a reference to a paint server element (url(#ID)),
// resolved at render time. Fallback is used when the reference
// is dangling; it may be nil.
type Deferred struct {
	ID       string
	Fallback PaintServer
}

func (Color) isPaintServer()        {}
func (CurrentColor) isPaintServer() {}
func (Deferred) isPaintServer()     {}

// paintElement is implemented by gradients and patterns.
type paintElement interface {
	Element
	// brush returns the paint for `owner`, or nil for no paint.
	brush(ctx *Context, owner Element, opacity float64) Brush
}

// withOpacity multiplies the alpha of `c` by `opacity`.
func withOpacity(c color.NRGBA, opacity float64) color.NRGBA {
	c.A = uint8(math.Round(clampOpacity(opacity) * float64(c.A)))
	return c
}

// resolvePaint returns the brush painting `owner` with `ps`,
// or nil if nothing should be painted.
func resolvePaint(ctx *Context, ps PaintServer, owner Element, opacity float64, forStroke bool) Brush {
	switch ps := ps.(type) {
	case nil:
		return resolvePaint(ctx, NotSet, owner, opacity, forStroke)
	case sentinel:
		if ps == NotSet && !forStroke {
			return SolidBrush{Color: withOpacity(color.NRGBA{A: 0xff}, opacity)}
		}
		return nil
	case Color:
		return SolidBrush{Color: withOpacity(color.NRGBA(ps), opacity)}
	case CurrentColor:
		return SolidBrush{Color: withOpacity(owner.node().currentColor(), opacity)}
	case Deferred:
		if server, ok := ctx.lookup(ps.ID).(paintElement); ok {
			if !ctx.enter(server) {
				Logger().Warn("recursive paint server reference", "id", ps.ID)
				return nil
			}
			defer ctx.leave(server)
			return server.brush(ctx, owner, opacity)
		}
		if ps.Fallback != nil {
			return resolvePaint(ctx, ps.Fallback, owner, opacity, forStroke)
		}
		Logger().Debug("unresolved paint server", "id", ps.ID)
		return nil
	}
	return nil
}
