// Package svgdraw provides a Renderer which records the
// drawing operations instead of executing them.
// It is used to test the rendering traversal, and to
// inspect the commands issued for a document.
package svgdraw

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/anthonynsimon/bild/clone"

	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgrender"
	"github.com/benoitkugler/svgrender/svgunit"
)

// Kind identifies a recorded operation.
type Kind uint8

const (
	Save Kind = iota
	SaveLayer
	Restore
	SetTransform
	SetClip
	Fill
	Stroke
	DrawImage
)

func (k Kind) String() string {
	switch k {
	case Save:
		return "save"
	case SaveLayer:
		return "save-layer"
	case Restore:
		return "restore"
	case SetTransform:
		return "set-transform"
	case SetClip:
		return "set-clip"
	case Fill:
		return "fill"
	case Stroke:
		return "stroke"
	case DrawImage:
		return "draw-image"
	default:
		return "<unknown Kind>"
	}
}

// Op is one recorded call. Only the fields relevant
// to its Kind are set.
type Op struct {
	Kind Kind
	// Transform is the renderer transform at the time of the call.
	Transform svgpath.Matrix2D
	Path      svgpath.Path
	Rule      svgpath.FillRule
	Brush     svgrender.Brush
	Stroke    svgrender.Stroke
	Opacity   float64
	Image     image.Image
	Dst       svgpath.Rect
	Src       image.Rectangle
}

func (op Op) String() string {
	switch op.Kind {
	case SaveLayer:
		return fmt.Sprintf("%s %.3f", op.Kind, op.Opacity)
	case SetTransform:
		return fmt.Sprintf("%s %v", op.Kind, op.Transform)
	case SetClip:
		return fmt.Sprintf("%s %s %s", op.Kind, op.Rule, op.Path)
	case Fill:
		return fmt.Sprintf("%s %s %T %s", op.Kind, op.Rule, op.Brush, op.Path)
	case Stroke:
		return fmt.Sprintf("%s w=%g %T %s", op.Kind, op.Stroke.Width, op.Brush, op.Path)
	case DrawImage:
		return fmt.Sprintf("%s %v -> %v", op.Kind, op.Src, op.Dst)
	default:
		return op.Kind.String()
	}
}

type state struct {
	transform svgpath.Matrix2D
	clip      svgpath.Rect
	hasClip   bool
}

// Recorder implements svgrender.Renderer.
// The clip is approximated by the bounding box of the clip paths.
type Recorder struct {
	svgunit.Stack

	Ops []Op
	// Offscreens are the recorders returned by Offscreen, in call order.
	Offscreens []*Recorder
	// Target is the image given to Offscreen, or nil.
	Target *image.RGBA

	state
	saved  []state
	smooth bool
}

var _ svgrender.Renderer = (*Recorder)(nil)

// New returns an empty recorder, with an identity transform.
func New() *Recorder {
	return &Recorder{state: state{transform: svgpath.Identity}, smooth: true}
}

func (r *Recorder) record(op Op) {
	op.Transform = r.transform
	r.Ops = append(r.Ops, op)
}

func (r *Recorder) Save() {
	r.saved = append(r.saved, r.state)
	r.record(Op{Kind: Save})
}

func (r *Recorder) SaveLayer(opacity float64) {
	r.saved = append(r.saved, r.state)
	r.record(Op{Kind: SaveLayer, Opacity: opacity})
}

// Restore panics on unbalanced calls.
func (r *Recorder) Restore() {
	if len(r.saved) == 0 {
		panic("svgdraw: unbalanced Restore")
	}
	r.state = r.saved[len(r.saved)-1]
	r.saved = r.saved[:len(r.saved)-1]
	r.record(Op{Kind: Restore})
}

// Depth returns the number of pending Save and SaveLayer.
func (r *Recorder) Depth() int { return len(r.saved) }

func (r *Recorder) Transform() svgpath.Matrix2D { return r.transform }

func (r *Recorder) SetTransform(m svgpath.Matrix2D) {
	r.transform = m
	r.record(Op{Kind: SetTransform})
}

func intersect(a, b svgpath.Rect) svgpath.Rect {
	x0, y0 := math.Max(a.Left(), b.Left()), math.Max(a.Top(), b.Top())
	x1, y1 := math.Min(a.Right(), b.Right()), math.Min(a.Bottom(), b.Bottom())
	return svgpath.Rect{X: x0, Y: y0, W: math.Max(0, x1-x0), H: math.Max(0, y1-y0)}
}

func (r *Recorder) SetClip(path svgpath.Path, rule svgpath.FillRule) {
	bounds := path.Transform(r.transform).Bounds()
	if r.hasClip {
		bounds = intersect(r.clip, bounds)
	}
	r.clip, r.hasClip = bounds, true
	r.record(Op{Kind: SetClip, Path: path, Rule: rule})
}

func (r *Recorder) ClipBounds() (svgpath.Rect, bool) { return r.clip, r.hasClip }

func (r *Recorder) FillPath(path svgpath.Path, rule svgpath.FillRule, brush svgrender.Brush) {
	r.record(Op{Kind: Fill, Path: path, Rule: rule, Brush: brush})
}

func (r *Recorder) StrokePath(path svgpath.Path, stroke svgrender.Stroke, brush svgrender.Brush) {
	r.record(Op{Kind: Stroke, Path: path, Stroke: stroke, Brush: brush})
}

// DrawImage records a copy of `img`, since the caller
// may recycle its pixels once the call returns.
func (r *Recorder) DrawImage(img image.Image, dst svgpath.Rect, src image.Rectangle) {
	r.record(Op{Kind: DrawImage, Image: clone.AsRGBA(img), Dst: dst, Src: src})
}

func (r *Recorder) Smoothing() bool          { return r.smooth }
func (r *Recorder) SetSmoothing(smooth bool) { r.smooth = smooth }

// Offscreen returns a new recorder, also stored in Offscreens.
func (r *Recorder) Offscreen(dst *image.RGBA) svgrender.Renderer {
	child := New()
	child.Target = dst
	r.Offscreens = append(r.Offscreens, child)
	return child
}

// Count returns the number of recorded operations of kind `k`.
func (r *Recorder) Count(k Kind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == k {
			n++
		}
	}
	return n
}

// Filter returns the operations of kind `k`.
func (r *Recorder) Filter(k Kind) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == k {
			out = append(out, op)
		}
	}
	return out
}

// Dump writes one line per operation, offscreen recorders being indented.
func (r *Recorder) Dump(w io.Writer) error {
	return r.dump(w, "")
}

func (r *Recorder) dump(w io.Writer, indent string) error {
	for _, op := range r.Ops {
		if _, err := fmt.Fprintf(w, "%s%s\n", indent, op); err != nil {
			return err
		}
	}
	for i, child := range r.Offscreens {
		if _, err := fmt.Fprintf(w, "%soffscreen %d:\n", indent, i); err != nil {
			return err
		}
		if err := child.dump(w, indent+"  "); err != nil {
			return err
		}
	}
	return nil
}
