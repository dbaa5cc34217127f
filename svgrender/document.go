package svgrender

import (
	"errors"
	"strings"

	"golang.org/x/text/language"

	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgunit"
)

// Document is a parsed SVG document.
type Document struct {
	Root *Fragment

	// PPI is the resolution used for absolute units;
	// zero means svgunit.DefaultPPI.
	PPI float64
	// Language is used by <switch> elements; the zero value means English.
	Language language.Tag
	// FontSize is the default font size in pixels. Zero
	// selects a built-in default.
	FontSize float64
	// Fonts loads the fonts used by text elements.
	// If nil, the built-in Go fonts are used.
	Fonts FontLoader

	ids   map[string]Element
	fonts map[fontKey]Font
}

// NewDocument returns a document rooted at `root`, and indexes its elements.
func NewDocument(root *Fragment) *Document {
	d := &Document{Root: root}
	d.Reindex()
	return d
}

// Reindex rebuilds the id index. It must be called after
// adding or renaming elements.
func (d *Document) Reindex() {
	d.ids = make(map[string]Element)
	if d.Root != nil {
		d.index(d.Root)
	}
}

func (d *Document) index(el Element) {
	n := el.node()
	if n.ID != "" {
		if _, has := d.ids[n.ID]; !has { // first wins
			d.ids[n.ID] = el
		}
	}
	for _, child := range n.children {
		d.index(child)
	}
}

// ElementByID returns the element with the given id, or nil.
// The id may be given as a fragment reference ("#id") or
// a functional IRI ("url(#id)").
func (d *Document) ElementByID(id string) Element {
	if d.ids == nil {
		d.Reindex()
	}
	return d.ids[normalizeRef(id)]
}

func normalizeRef(ref string) string {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "url(") && strings.HasSuffix(ref, ")") {
		ref = strings.TrimSpace(ref[4 : len(ref)-1])
		ref = strings.Trim(ref, `"'`)
	}
	return strings.TrimPrefix(ref, "#")
}

// Dimensions returns the size of the document, in pixels.
// Percentages are resolved against the viewBox, or against
// the bounding box of the content if there is no viewBox.
func (d *Document) Dimensions() (width, height float64) {
	root := d.Root
	if root == nil {
		return 0, 0
	}
	ctx := newMeasureContext(d)
	var bounds svgpath.Rect
	if root.Width.Unit == svgunit.Percent || root.Height.Unit == svgunit.Percent {
		if !root.ViewBox.IsEmpty() {
			bounds = root.ViewBox
		} else {
			bounds = childrenGeometry(ctx, &root.Node).Bounds()
		}
	}
	if root.Width.Unit == svgunit.Percent {
		width = (bounds.W + bounds.X) * root.Width.Value / 100
	} else {
		width = root.Width.Resolve(ctx, svgunit.Horizontal, root)
	}
	if root.Height.Unit == svgunit.Percent {
		height = (bounds.H + bounds.Y) * root.Height.Value / 100
	} else {
		height = root.Height.Resolve(ctx, svgunit.Vertical, root)
	}
	return width, height
}

// Draw renders the document with `r`, whose transform maps
// the document pixels to the device.
func (d *Document) Draw(r Renderer) error {
	if r == nil {
		return ErrNilRenderer
	}
	if d.Root == nil {
		return errors.New("svgrender: document without root element")
	}
	w, h := d.Dimensions()
	ctx := NewContext(r, d)
	ctx.withBoundable(svgunit.RectBoundable{W: w, H: h}, func() { d.Root.Render(ctx) })
	return nil
}
