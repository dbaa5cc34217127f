package svgrender

import (
	"github.com/benoitkugler/svgrender/svgpath"
)

// Element is a node of the document tree.
// The set of elements is closed : every implementation embeds Node.
type Element interface {
	node() *Node

	// Geometry returns the outline of the element in its own user
	// space, that is before its transforms are applied.
	// Non geometric elements return nil.
	Geometry(ctx *Context) svgpath.Path

	// Render draws the element and its descendants.
	Render(ctx *Context)
}

// Node holds the state common to every element.
type Node struct {
	ID         string
	Style      Style
	Transforms svgpath.TransformList
	// SystemLanguage is the comma separated list of
	// languages tested by Switch.
	SystemLanguage string

	parent   Element
	children []Element

	geometry    Cached[svgpath.Path]
	geometryKey viewportKey
}

func (n *Node) node() *Node { return n }

// NodeOf returns the common state of `el`.
func NodeOf(el Element) *Node { return el.node() }

// Geometry is nil for non geometric elements.
func (n *Node) Geometry(*Context) svgpath.Path { return nil }

// Render does nothing for non rendering elements.
func (n *Node) Render(*Context) {}

// Parent returns the parent element, or nil for the root.
func (n *Node) Parent() Element { return n.parent }

// Children returns the child elements, in document order.
func (n *Node) Children() []Element { return n.children }

func (n *Node) parentNode() *Node {
	if n.parent == nil {
		return nil
	}
	return n.parent.node()
}

// AppendChild adds `child` as the last child of `parent`.
func AppendChild(parent, child Element) {
	p := parent.node()
	child.node().parent = parent
	p.children = append(p.children, child)
	Invalidate(parent)
}

// Invalidate marks the cached geometry of `el`, its descendants
// and its ancestors as dirty. It must be called after a mutation
// of an element.
func Invalidate(el Element) {
	invalidateTree(el)
	for p := el.node().parent; p != nil; p = p.node().parent {
		invalidateOne(p)
	}
}

// cacheOwner is implemented by elements with caches
// other than their geometry
type cacheOwner interface {
	resetCaches()
}

func invalidateOne(el Element) {
	el.node().geometry.Invalidate()
	if c, ok := el.(cacheOwner); ok {
		c.resetCaches()
	}
}

func invalidateTree(el Element) {
	invalidateOne(el)
	for _, c := range el.node().children {
		invalidateTree(c)
	}
}

// viewportKey identifies the resolution context of a geometry
type viewportKey struct {
	bounds svgpath.Rect
	ppi    float64
}

// cachedGeometry returns the memoized geometry, which is
// recomputed when the viewport changes.
func (n *Node) cachedGeometry(ctx *Context, compute func() svgpath.Path) svgpath.Path {
	if key := newViewportKey(ctx); key != n.geometryKey {
		n.geometry.Invalidate()
		n.geometryKey = key
	}
	return n.geometry.Get(compute)
}

func newViewportKey(ctx *Context) viewportKey {
	key := viewportKey{ppi: ctx.PPI()}
	if b := ctx.Boundable(); b != nil {
		key.bounds = b.Bounds()
	}
	return key
}

// childrenGeometry combines the geometries of the children,
// mapped by their transforms.
func childrenGeometry(ctx *Context, n *Node) svgpath.Path {
	var out svgpath.Path
	for _, child := range n.children {
		g := child.Geometry(ctx)
		if len(g) == 0 {
			continue
		}
		out.Append(g.Transform(child.node().Transforms.Matrix()))
	}
	return out
}

// viewportElement is implemented by elements adding a
// transform after their `transform` attribute (viewBox, use offset).
type viewportElement interface {
	extraTransform(ctx *Context) svgpath.Matrix2D
}

// localMatrix maps the user space of `el` to the one of its parent.
func localMatrix(ctx *Context, el Element) svgpath.Matrix2D {
	m := el.node().Transforms.Matrix()
	if v, ok := el.(viewportElement); ok {
		m = m.Mult(v.extraTransform(ctx))
	}
	return m
}

// Bounds returns the bounding box of `el`, in the user space of its parent.
func Bounds(ctx *Context, el Element) svgpath.Rect {
	if f, ok := el.(*Fragment); ok {
		return f.viewport(ctx)
	}
	return localMatrix(ctx, el).TransformRect(objectBounds(ctx, el))
}

// objectBounds returns the bounding box of `el` in its own user space.
func objectBounds(ctx *Context, el Element) svgpath.Rect {
	return el.Geometry(ctx).Bounds()
}

// pushTransforms saves the renderer state and applies the
// local transform of `el`. It returns false, with the state
// already restored, if the transform is not invertible.
func pushTransforms(ctx *Context, el Element) bool {
	ctx.Save()
	m := localMatrix(ctx, el)
	if m.A*m.D-m.B*m.C == 0 {
		ctx.Restore()
		return false
	}
	if !m.IsIdentity() {
		ctx.SetTransform(ctx.Transform().Mult(m))
	}
	return true
}

// renderElement runs the common render pipeline :
// transforms, clip, filter and group opacity around `content`.
func renderElement(ctx *Context, el Element, content func(ctx *Context)) {
	n := el.node()
	if n.Style.DisplayNone {
		return
	}
	if id := n.Style.Filter; id != "" {
		if f, ok := ctx.lookup(id).(*Filter); ok {
			if f.apply(ctx, el, func(c *Context) { renderDirect(c, el, content) }) {
				return
			}
		} else {
			Logger().Debug("unresolved filter reference", "id", id)
		}
	}
	renderDirect(ctx, el, content)
}

func renderDirect(ctx *Context, el Element, content func(ctx *Context)) {
	if !pushTransforms(ctx, el) {
		return
	}
	defer ctx.Restore()

	setClip(ctx, el)
	if op := el.node().opacity(); op < 1 {
		ctx.SaveLayer(op)
		content(ctx)
		ctx.Restore()
	} else {
		content(ctx)
	}
}

// renderChildren renders the children of `n`, in order.
func renderChildren(ctx *Context, n *Node) {
	for _, child := range n.children {
		child.Render(ctx)
	}
}

// isVisible returns false for hidden and collapsed elements
func (n *Node) isVisible() bool {
	return !n.Style.DisplayNone && n.visibility() == Visible
}
