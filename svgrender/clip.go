package svgrender

import (
	"strings"

	"github.com/benoitkugler/svgrender/svgpath"
)

// ClipPath is a <clipPath> element.
type ClipPath struct {
	Node
	Units Units // UserSpaceOnUse by default
}

// NewClipPath returns a clip path in user space units.
func NewClipPath() *ClipPath { return &ClipPath{Units: UserSpaceOnUse} }

// Geometry combines the geometries of the visible children,
// each mapped by its own transforms.
func (c *ClipPath) Geometry(ctx *Context) svgpath.Path {
	var out svgpath.Path
	for _, child := range c.children {
		n := child.node()
		if n.Style.DisplayNone || n.visibility() != Visible {
			continue
		}
		g := child.Geometry(ctx)
		if len(g) == 0 {
			continue
		}
		out.Append(g.Transform(localMatrix(ctx, child)))
	}
	return out
}

// rule returns the clip rule of the last child.
func (c *ClipPath) rule() svgpath.FillRule {
	rule := c.clipRule()
	for _, child := range c.children {
		rule = child.node().clipRule()
	}
	return rule
}

// apply intersects the renderer clip with the clip path, for `owner`.
func (c *ClipPath) apply(ctx *Context, owner Element) {
	if !ctx.enter(c) {
		Logger().Warn("recursive clip path", "id", c.ID)
		return
	}
	defer ctx.leave(c)

	path := c.Geometry(ctx).Transform(c.Transforms.Matrix())
	if c.Units == ObjectBoundingBox {
		path = path.Transform(bboxMatrix(objectBounds(ctx, owner)))
	}
	ctx.SetClip(path, c.rule())
}

// setClip applies the clip-path and clip properties of `el`.
func setClip(ctx *Context, el Element) {
	n := el.node()
	if id := n.Style.ClipPath; id != "" {
		if cp, ok := ctx.lookup(id).(*ClipPath); ok {
			cp.apply(ctx, el)
		} else {
			Logger().Debug("unresolved clip path reference", "id", id)
		}
	}
	if n.Style.Clip != "" {
		if r, ok := parseClipRect(n.Style.Clip, objectBounds(ctx, el)); ok {
			SetClipRect(ctx, r)
		}
	}
}

// parseClipRect parses the legacy "rect(top, right, bottom, left)"
// syntax, the offsets being relative to the edges of `bounds`.
// "auto" is 0.
func parseClipRect(clip string, bounds svgpath.Rect) (svgpath.Rect, bool) {
	clip = strings.TrimSpace(clip)
	if !strings.HasPrefix(clip, "rect(") || !strings.HasSuffix(clip, ")") {
		return svgpath.Rect{}, false
	}
	args := strings.ReplaceAll(clip[5:len(clip)-1], "auto", "0")
	args = strings.ReplaceAll(args, "px", "")
	v, err := svgpath.ParseNumbers(args)
	if err != nil || len(v) != 4 {
		return svgpath.Rect{}, false
	}
	top, right, bottom, left := v[0], v[1], v[2], v[3]
	x0, y0 := bounds.Left()+left, bounds.Top()+top
	x1, y1 := bounds.Right()-right, bounds.Bottom()-bottom
	return svgpath.Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}, true
}
