package svgrender

import (
	"image"

	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgunit"
)

// Context is the state of one traversal : a renderer
// and the document being rendered.
// It implements svgunit.Context.
type Context struct {
	Renderer
	doc *Document

	// referenced elements currently rendered or measured, to break cycles
	active, measuring map[Element]bool
}

var _ svgunit.Context = (*Context)(nil)

// NewContext returns a context drawing `doc` with `r`.
func NewContext(r Renderer, doc *Document) *Context {
	return &Context{Renderer: r, doc: doc, active: map[Element]bool{}, measuring: map[Element]bool{}}
}

// Document returns the document being rendered.
func (c *Context) Document() *Document { return c.doc }

func (c *Context) PPI() float64 {
	if c.doc == nil || c.doc.PPI <= 0 {
		return svgunit.DefaultPPI
	}
	return c.doc.PPI
}

// Boundable returns the top of the boundable stack.
func (c *Context) Boundable() svgunit.Boundable { return c.Top() }

func (c *Context) ViewBox() svgpath.Rect {
	if c.doc == nil || c.doc.Root == nil {
		return svgpath.Rect{}
	}
	return c.doc.Root.ViewBox
}

// offscreen returns a context drawing into another renderer,
// sharing the document and the reference guard.
func (c *Context) offscreen(r Renderer) *Context {
	return &Context{Renderer: r, doc: c.doc, active: c.active, measuring: c.measuring}
}

// enter marks `el` as being rendered, returning false
// if it already is (recursive reference).
func (c *Context) enter(el Element) bool {
	if c.active[el] {
		return false
	}
	c.active[el] = true
	return true
}

func (c *Context) leave(el Element) { delete(c.active, el) }

// enterGeometry is the same as enter, for geometry computations.
func (c *Context) enterGeometry(el Element) bool {
	if c.measuring[el] {
		return false
	}
	c.measuring[el] = true
	return true
}

func (c *Context) leaveGeometry(el Element) { delete(c.measuring, el) }

// withBoundable runs `fn` with `b` pushed on the boundable stack.
func (c *Context) withBoundable(b svgunit.Boundable, fn func()) {
	c.Push(b)
	defer c.Pop()
	fn()
}

func (c *Context) lookup(id string) Element {
	if c.doc == nil {
		return nil
	}
	return c.doc.ElementByID(id)
}

// measurer is a Renderer which only tracks the transform and the
// boundable stack. It is used to compute geometries outside a
// rendering pass.
type measurer struct {
	svgunit.Stack
	transforms []svgpath.Matrix2D
	current    svgpath.Matrix2D
}

func newMeasurer() *measurer { return &measurer{current: svgpath.Identity} }

func (m *measurer) Save()                                                { m.transforms = append(m.transforms, m.current) }
func (m *measurer) SaveLayer(float64)                                    { m.Save() }
func (m *measurer) Transform() svgpath.Matrix2D                          { return m.current }
func (m *measurer) SetTransform(t svgpath.Matrix2D)                      { m.current = t }
func (m *measurer) SetClip(svgpath.Path, svgpath.FillRule)               {}
func (m *measurer) ClipBounds() (svgpath.Rect, bool)                     { return svgpath.Rect{}, false }
func (m *measurer) FillPath(svgpath.Path, svgpath.FillRule, Brush)       {}
func (m *measurer) StrokePath(svgpath.Path, Stroke, Brush)               {}
func (m *measurer) DrawImage(image.Image, svgpath.Rect, image.Rectangle) {}
func (m *measurer) Smoothing() bool                                      { return false }
func (m *measurer) SetSmoothing(bool)                                    {}
func (m *measurer) Offscreen(*image.RGBA) Renderer                       { return newMeasurer() }

func (m *measurer) Restore() {
	if n := len(m.transforms); n > 0 {
		m.current = m.transforms[n-1]
		m.transforms = m.transforms[:n-1]
	}
}

// newMeasureContext returns a context without drawing surface.
func newMeasureContext(doc *Document) *Context { return NewContext(newMeasurer(), doc) }
