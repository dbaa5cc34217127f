package svgrender

import (
	"math"
	"strings"

	"golang.org/x/text/language"

	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgunit"
)

// Align is the alignment of a viewBox inside its viewport, on one axis.
type Align uint8

const (
	AlignMid Align = iota
	AlignMin
	AlignMax
)

// AspectRatio is the preserveAspectRatio attribute.
// The zero value is "xMidYMid meet".
type AspectRatio struct {
	None  bool // stretch to the viewport
	X, Y  Align
	Slice bool
}

func (a Align) offset(free float64) float64 {
	switch a {
	case AlignMin:
		return 0
	case AlignMax:
		return free
	default:
		return free / 2
	}
}

// viewBoxTransform maps `vb` into the viewport (0, 0, width, height).
func viewBoxTransform(vb svgpath.Rect, aspect AspectRatio, width, height float64) svgpath.Matrix2D {
	if vb.W <= 0 || vb.H <= 0 {
		return svgpath.Identity
	}
	sx, sy := width/vb.W, height/vb.H
	var tx, ty float64
	if !aspect.None {
		s := math.Min(sx, sy)
		if aspect.Slice {
			s = math.Max(sx, sy)
		}
		sx, sy = s, s
		tx = aspect.X.offset(width - vb.W*s)
		ty = aspect.Y.offset(height - vb.H*s)
	}
	return svgpath.Identity.Translate(tx, ty).Scale(sx, sy).Translate(-vb.X, -vb.Y)
}

// Fragment is an <svg> element, either the root of a document
// or a nested viewport.
type Fragment struct {
	Node
	X, Y, Width, Height svgunit.Length
	ViewBox             svgpath.Rect
	Aspect              AspectRatio
	// OverflowVisible disables the clipping to the viewport.
	OverflowVisible bool
}

// NewFragment returns a fragment with a 100% width and height.
func NewFragment() *Fragment {
	return &Fragment{Width: svgunit.Pct(100), Height: svgunit.Pct(100)}
}

func (f *Fragment) isRoot() bool { return f.parent == nil }

// size resolves the viewport size against the current boundable.
func (f *Fragment) size(ctx *Context) (w, h float64) {
	return f.Width.Resolve(ctx, svgunit.Horizontal, f), f.Height.Resolve(ctx, svgunit.Vertical, f)
}

// viewport returns the viewport rectangle, in the parent user space.
func (f *Fragment) viewport(ctx *Context) svgpath.Rect {
	w, h := f.size(ctx)
	if f.isRoot() {
		return svgpath.Rect{W: w, H: h}
	}
	loc := svgunit.ResolvePoint(&f.X, &f.Y, ctx, f)
	return svgpath.Rect{X: loc.X, Y: loc.Y, W: w, H: h}
}

func (f *Fragment) extraTransform(ctx *Context) svgpath.Matrix2D {
	if f.isRoot() {
		return svgpath.Identity
	}
	loc := svgunit.ResolvePoint(&f.X, &f.Y, ctx, f)
	return svgpath.Identity.Translate(loc.X, loc.Y)
}

// contentTransform returns the viewBox transform, and the
// boundable used by the children.
func (f *Fragment) contentTransform(ctx *Context) (svgpath.Matrix2D, svgunit.Boundable) {
	w, h := f.size(ctx)
	if f.ViewBox.IsEmpty() {
		return svgpath.Identity, svgunit.RectBoundable{W: w, H: h}
	}
	return viewBoxTransform(f.ViewBox, f.Aspect, w, h), svgunit.RectBoundable(f.ViewBox)
}

// Geometry combines the children geometries, mapped by the viewBox transform.
func (f *Fragment) Geometry(ctx *Context) svgpath.Path {
	m, b := f.contentTransform(ctx)
	var out svgpath.Path
	ctx.withBoundable(b, func() { out = childrenGeometry(ctx, &f.Node) })
	return out.Transform(m)
}

func (f *Fragment) Render(ctx *Context) {
	renderElement(ctx, f, func(ctx *Context) {
		if !f.OverflowVisible {
			w, h := f.size(ctx)
			SetClipRect(ctx, svgpath.Rect{W: w, H: h})
		}
		m, b := f.contentTransform(ctx)
		ctx.SetTransform(ctx.Transform().Mult(m))
		ctx.withBoundable(b, func() { renderChildren(ctx, &f.Node) })
	})
}

// Group is a <g> element.
type Group struct {
	Node
}

func (g *Group) Geometry(ctx *Context) svgpath.Path { return childrenGeometry(ctx, &g.Node) }

func (g *Group) Render(ctx *Context) {
	renderElement(ctx, g, func(ctx *Context) { renderChildren(ctx, &g.Node) })
}

// Defs is a <defs> element : its children are only rendered
// through references.
type Defs struct {
	Node
}

// Symbol is a <symbol> element, only rendered through a <use>.
type Symbol struct {
	Node
	ViewBox svgpath.Rect
	Aspect  AspectRatio
}

func (s *Symbol) Geometry(ctx *Context) svgpath.Path { return childrenGeometry(ctx, &s.Node) }

func (s *Symbol) Render(ctx *Context) {
	use, ok := s.parent.(*Use)
	if !ok {
		return
	}
	renderElement(ctx, s, func(ctx *Context) {
		if s.ViewBox.IsEmpty() {
			renderChildren(ctx, &s.Node)
			return
		}
		w, h := use.size(ctx)
		ctx.SetTransform(ctx.Transform().Mult(viewBoxTransform(s.ViewBox, s.Aspect, w, h)))
		ctx.withBoundable(svgunit.RectBoundable(s.ViewBox), func() { renderChildren(ctx, &s.Node) })
	})
}

// Use is a <use> element, rendering the element referenced by Href
// as if it were its child.
type Use struct {
	Node
	Href                string // element id
	X, Y, Width, Height svgunit.Length
}

func (u *Use) extraTransform(ctx *Context) svgpath.Matrix2D {
	loc := svgunit.ResolvePoint(&u.X, &u.Y, ctx, u)
	return svgpath.Identity.Translate(loc.X, loc.Y)
}

// size returns the width and height of the use element,
// defaulting to the current viewport.
func (u *Use) size(ctx *Context) (w, h float64) {
	w = u.Width.Resolve(ctx, svgunit.Horizontal, u)
	h = u.Height.Resolve(ctx, svgunit.Vertical, u)
	if w <= 0 || h <= 0 {
		l, hl := svgunit.Pct(100), svgunit.Pct(100)
		w, h = l.Resolve(ctx, svgunit.Horizontal, u), hl.Resolve(ctx, svgunit.Vertical, u)
	}
	return w, h
}

// referenced returns the target of the use, or nil if
// it is missing or would create a cycle in the tree.
func (u *Use) referenced(ctx *Context) Element {
	ref := ctx.lookup(u.Href)
	if ref == nil {
		Logger().Debug("unresolved use reference", "id", u.Href)
		return nil
	}
	for p := Element(u); p != nil; p = p.node().parent {
		if p == ref {
			Logger().Warn("use element referencing its ancestor", "id", u.Href)
			return nil
		}
	}
	return ref
}

// withReferenced runs `fn` with `ref` temporarily attached to `u`,
// so that it inherits the style of the use element.
func (u *Use) withReferenced(ref Element, fn func()) {
	rn := ref.node()
	old := rn.parent
	rn.parent = u
	invalidateTree(ref)
	defer func() {
		rn.parent = old
		invalidateTree(ref)
	}()
	fn()
}

func (u *Use) Geometry(ctx *Context) svgpath.Path {
	ref := u.referenced(ctx)
	if ref == nil || !ctx.enterGeometry(u) {
		return nil
	}
	defer ctx.leaveGeometry(u)
	var out svgpath.Path
	u.withReferenced(ref, func() {
		out = ref.Geometry(ctx).Transform(localMatrix(ctx, ref))
	})
	return out
}

func (u *Use) Render(ctx *Context) {
	ref := u.referenced(ctx)
	if ref == nil {
		return
	}
	if !ctx.enter(u) {
		Logger().Warn("recursive use reference", "id", u.Href)
		return
	}
	defer ctx.leave(u)
	renderElement(ctx, u, func(ctx *Context) {
		u.withReferenced(ref, func() { ref.Render(ctx) })
	})
}

// Switch is a <switch> element : only its first child
// matching the document language is rendered.
type Switch struct {
	Node
}

func (s *Switch) selected(ctx *Context) Element {
	lang := language.English
	if d := ctx.Document(); d != nil && d.Language != language.Und {
		lang = d.Language
	}
	for _, child := range s.children {
		if child.node().matchesLanguage(lang) {
			return child
		}
	}
	return nil
}

func (s *Switch) Geometry(ctx *Context) svgpath.Path {
	child := s.selected(ctx)
	if child == nil {
		return nil
	}
	return child.Geometry(ctx).Transform(localMatrix(ctx, child))
}

func (s *Switch) Render(ctx *Context) {
	child := s.selected(ctx)
	if child == nil {
		return
	}
	renderElement(ctx, s, func(ctx *Context) { child.Render(ctx) })
}

// matchesLanguage returns true if one of the languages of the
// systemLanguage attribute shares its base with `lang`.
// An element without the attribute always matches.
func (n *Node) matchesLanguage(lang language.Tag) bool {
	if strings.TrimSpace(n.SystemLanguage) == "" {
		return true
	}
	base, _ := lang.Base()
	for _, s := range strings.Split(n.SystemLanguage, ",") {
		tag, err := language.Parse(strings.TrimSpace(s))
		if err != nil {
			continue
		}
		if tag == lang {
			return true
		}
		if b, _ := tag.Base(); b == base {
			return true
		}
	}
	return false
}
