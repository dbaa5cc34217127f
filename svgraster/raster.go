// Implements a raster backend to render SVG documents,
// by wrapping rasterx.
package svgraster

import (
	"image"
	"image/color"
	"math"

	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgrender"
	"github.com/benoitkugler/svgrender/svgunit"
)

var _ svgrender.Renderer = (*Renderer)(nil) // assert interface conformance

// layer is an offscreen image started by SaveLayer
type layer struct {
	parent  *image.RGBA
	opacity float64
}

type state struct {
	transform  svgpath.Matrix2D
	clip       *image.Alpha // device space, nil when not clipped
	clipBounds svgpath.Rect
}

type savedState struct {
	state
	layer *layer // nil for Save
}

// Renderer draws into an RGBA image, whose origin
// is the device origin.
//
// The clip is kept as an alpha mask, so that any path may be used.
// The even-odd fill rule is not supported by the scanner : every
// path is filled with the non-zero rule.
type Renderer struct {
	svgunit.Stack

	dasher  *rasterx.Dasher // to avoid shared state
	filler  *rasterx.Filler // we use separated instance
	scanner *rasterx.ScannerGV

	target *image.RGBA // current destination, possibly a layer
	state
	saved  []savedState
	smooth bool
}

// NewRenderer returns a renderer drawing into `dst`,
// with an identity transform and no clip.
func NewRenderer(dst *image.RGBA) *Renderer {
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	return &Renderer{
		dasher:  rasterx.NewDasher(w, h, scanner),
		filler:  rasterx.NewFiller(w, h, scanner),
		scanner: scanner,
		target:  dst,
		state:   state{transform: svgpath.Identity},
		smooth:  true,
	}
}

// Rasterize renders `doc` at its natural size, rounded up.
func Rasterize(doc *svgrender.Document) (*image.RGBA, error) {
	w, h := doc.Dimensions()
	return RasterizeSize(doc, int(math.Ceil(w)), int(math.Ceil(h)))
}

// RasterizeSize renders `doc` into a `width` x `height` image,
// the document being scaled to fill it.
func RasterizeSize(doc *svgrender.Document, width, height int) (*image.RGBA, error) {
	img, err := svgrender.NewSurfaceImage(width, height)
	if err != nil {
		return nil, err
	}
	r := NewRenderer(img)
	if w, h := doc.Dimensions(); w > 0 && h > 0 {
		r.SetTransform(svgpath.Identity.Scale(float64(width)/w, float64(height)/h))
	}
	if err := doc.Draw(r); err != nil {
		return nil, err
	}
	return img, nil
}

// Target returns the image currently drawn into, which is
// an offscreen layer between SaveLayer and Restore.
func (rd *Renderer) Target() *image.RGBA { return rd.target }

func (rd *Renderer) Save() {
	rd.saved = append(rd.saved, savedState{state: rd.state})
}

// SaveLayer redirects the drawing to a transparent layer, which is
// composited by the matching Restore. If the layer can't be allocated,
// the drawing goes on in the current image, without opacity.
func (rd *Renderer) SaveLayer(opacity float64) {
	b := rd.target.Bounds()
	img, err := svgrender.NewSurfaceImage(b.Dx(), b.Dy())
	if err != nil {
		svgrender.Logger().Warn("layer not allocated", "error", err)
		rd.Save()
		return
	}
	rd.saved = append(rd.saved, savedState{state: rd.state, layer: &layer{parent: rd.target, opacity: opacity}})
	rd.setTarget(img)
}

func (rd *Renderer) setTarget(img *image.RGBA) {
	rd.target = img
	rd.scanner.Dest = img
}

// Restore panics on unbalanced calls.
func (rd *Renderer) Restore() {
	if len(rd.saved) == 0 {
		panic("svgraster: unbalanced Restore")
	}
	s := rd.saved[len(rd.saved)-1]
	rd.saved = rd.saved[:len(rd.saved)-1]
	rd.state = s.state
	if l := s.layer; l != nil {
		src := rd.target
		mask := image.NewUniform(color.Alpha{A: uint8(math.Round(clamp(l.opacity) * 0xff))})
		xdraw.DrawMask(l.parent, l.parent.Bounds(), src, src.Bounds().Min, mask, image.Point{}, xdraw.Over)
		rd.setTarget(l.parent)
	}
}

func clamp(v float64) float64 { return math.Max(0, math.Min(1, v)) }

func (rd *Renderer) Transform() svgpath.Matrix2D     { return rd.transform }
func (rd *Renderer) SetTransform(m svgpath.Matrix2D) { rd.transform = m }

func (rd *Renderer) Smoothing() bool          { return rd.smooth }
func (rd *Renderer) SetSmoothing(smooth bool) { rd.smooth = smooth }

// Offscreen returns a renderer drawing into `dst`.
func (rd *Renderer) Offscreen(dst *image.RGBA) svgrender.Renderer { return NewRenderer(dst) }

// SetClip rasterizes `path` into a mask, intersected with
// the current one.
func (rd *Renderer) SetClip(path svgpath.Path, rule svgpath.FillRule) {
	b := rd.target.Bounds()
	mask := image.NewAlpha(b)
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), mask, b)
	filler := rasterx.NewFiller(b.Dx(), b.Dy(), scanner)
	filler.SetWinding(rule == svgpath.NonZero)
	scanner.SetColor(color.Alpha{A: 0xff})
	path.AddTo(filler, rd.transform)
	filler.Draw()

	bounds := path.Transform(rd.transform).Bounds()
	if rd.clip != nil {
		for i, a := range rd.clip.Pix {
			mask.Pix[i] = uint8(uint32(mask.Pix[i]) * uint32(a) / 0xff)
		}
		bounds = intersect(rd.clipBounds, bounds)
	}
	rd.clip, rd.clipBounds = mask, bounds
}

func intersect(a, b svgpath.Rect) svgpath.Rect {
	x0, y0 := math.Max(a.Left(), b.Left()), math.Max(a.Top(), b.Top())
	x1, y1 := math.Min(a.Right(), b.Right()), math.Min(a.Bottom(), b.Bottom())
	return svgpath.Rect{X: x0, Y: y0, W: math.Max(0, x1-x0), H: math.Max(0, y1-y0)}
}

func (rd *Renderer) ClipBounds() (svgpath.Rect, bool) { return rd.clipBounds, rd.clip != nil }

// masked multiplies the colors of `fn` by the clip mask.
func masked(fn rasterx.ColorFunc, mask *image.Alpha) rasterx.ColorFunc {
	return func(x, y int) color.Color {
		a := uint32(mask.AlphaAt(x, y).A)
		switch a {
		case 0:
			return color.Transparent
		case 0xff:
			return fn(x, y)
		}
		r, g, b, al := fn(x, y).RGBA()
		return color.RGBA64{uint16(r * a / 0xff), uint16(g * a / 0xff), uint16(b * a / 0xff), uint16(al * a / 0xff)}
	}
}

// toGradient builds a gradient evaluated in brush space : the
// unit bounding box makes rasterx map the device pixels by the
// inverse of `m`, which goes from brush space to device.
func toGradient(stops []svgrender.BrushStop, spread svgrender.Spread, m svgpath.Matrix2D) rasterx.Gradient {
	g := rasterx.Gradient{
		Stops:  make([]rasterx.GradStop, len(stops)),
		Matrix: rasterx.Matrix2D(m),
		Spread: rasterx.SpreadMethod(spread),
		Units:  rasterx.ObjectBoundingBox,
	}
	g.Bounds.W, g.Bounds.H = 1, 1
	for i, s := range stops {
		opaque := s.Color
		opaque.A = 0xff
		g.Stops[i] = rasterx.GradStop{StopColor: opaque, Offset: s.Offset, Opacity: float64(s.Color.A) / 0xff}
	}
	return g
}

func colorFunc(g rasterx.Gradient) rasterx.ColorFunc {
	switch c := g.GetColorFunction(1).(type) {
	case rasterx.ColorFunc:
		return c
	case color.Color:
		return func(x, y int) color.Color { return c }
	}
	return func(x, y int) color.Color { return color.Transparent }
}

func patternFunc(b *svgrender.PatternBrush, m svgpath.Matrix2D) rasterx.ColorFunc {
	inv := m.Mult(b.Matrix).Invert()
	tile := b.Tile.Bounds()
	w, h := tile.Dx(), tile.Dy()
	opacity := uint32(math.Round(clamp(b.Opacity) * 0xff))
	return func(x, y int) color.Color {
		u, v := inv.Transform(float64(x)+0.5, float64(y)+0.5)
		i, j := int(math.Floor(u))%w, int(math.Floor(v))%h
		if i < 0 {
			i += w
		}
		if j < 0 {
			j += h
		}
		c := b.Tile.RGBAAt(tile.Min.X+i, tile.Min.Y+j)
		if opacity != 0xff {
			c = color.RGBA{
				uint8(uint32(c.R) * opacity / 0xff), uint8(uint32(c.G) * opacity / 0xff),
				uint8(uint32(c.B) * opacity / 0xff), uint8(uint32(c.A) * opacity / 0xff),
			}
		}
		return c
	}
}

// paint returns the scanner color for `brush`.
func (rd *Renderer) paint(brush svgrender.Brush) interface{} {
	var fn rasterx.ColorFunc
	switch b := brush.(type) {
	case svgrender.SolidBrush:
		if rd.clip == nil {
			return b.Color
		}
		c := b.Color
		fn = func(x, y int) color.Color { return c }
	case *svgrender.LinearBrush:
		g := toGradient(b.Stops, b.Spread, rd.transform)
		g.Points = [5]float64{b.Start.X, b.Start.Y, b.End.X, b.End.Y}
		fn = colorFunc(g)
	case *svgrender.RadialBrush:
		g := toGradient(b.Stops, b.Spread, rd.transform.Mult(b.Matrix))
		g.Points = [5]float64{b.Center.X, b.Center.Y, b.Focal.X, b.Focal.Y, b.Radius}
		g.IsRadial = true
		fn = colorFunc(g)
	case *svgrender.PatternBrush:
		fn = patternFunc(b, rd.transform)
	default:
		return color.Transparent
	}
	if rd.clip != nil {
		fn = masked(fn, rd.clip)
	}
	return fn
}

func (rd *Renderer) FillPath(path svgpath.Path, rule svgpath.FillRule, brush svgrender.Brush) {
	rd.filler.Clear()
	rd.filler.SetWinding(rule == svgpath.NonZero)
	rd.filler.SetColor(rd.paint(brush))
	path.AddTo(rd.filler, rd.transform)
	rd.filler.Draw()
	rd.filler.Clear()
}

var (
	joinToJoin = [...]rasterx.JoinMode{
		svgrender.MiterJoin: rasterx.Miter,
		svgrender.RoundJoin: rasterx.Round,
		svgrender.BevelJoin: rasterx.Bevel,
	}

	capToFunc = [...]rasterx.CapFunc{
		svgrender.ButtCap:   rasterx.ButtCap,
		svgrender.SquareCap: rasterx.SquareCap,
		svgrender.RoundCap:  rasterx.RoundCap,
	}
)

func toFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(v * 64) }

// StrokePath strokes in device space, the width being scaled
// by the mean scale factor of the transform.
func (rd *Renderer) StrokePath(path svgpath.Path, stroke svgrender.Stroke, brush svgrender.Brush) {
	m := rd.transform
	scale := math.Sqrt(math.Abs(m.A*m.D - m.B*m.C))
	var dashes []float64
	for _, d := range stroke.Dashes {
		dashes = append(dashes, d*scale)
	}
	rd.dasher.Clear()
	rd.dasher.SetStroke(
		toFixed(stroke.Width*scale), toFixed(stroke.MiterLimit), capToFunc[stroke.Cap],
		nil, rasterx.FlatGap, joinToJoin[stroke.Join], dashes, stroke.DashOffset*scale,
	)
	rd.dasher.SetColor(rd.paint(brush))
	path.AddTo(rd.dasher, m)
	rd.dasher.Draw()
	rd.dasher.Clear()
}

// DrawImage draws with a bilinear interpolation, or with the nearest
// neighbor when smoothing is disabled.
func (rd *Renderer) DrawImage(img image.Image, dst svgpath.Rect, src image.Rectangle) {
	if src.Empty() || dst.IsEmpty() {
		return
	}
	m := rd.transform.Translate(dst.X, dst.Y).
		Scale(dst.W/float64(src.Dx()), dst.H/float64(src.Dy())).
		Translate(-float64(src.Min.X), -float64(src.Min.Y))
	var opts *xdraw.Options
	if rd.clip != nil {
		opts = &xdraw.Options{DstMask: rd.clip}
	}
	var interp xdraw.Transformer = xdraw.BiLinear
	if !rd.smooth {
		interp = xdraw.NearestNeighbor
	}
	interp.Transform(rd.target, f64.Aff3{m.A, m.C, m.E, m.B, m.D, m.F}, img, src, xdraw.Over, opts)
}
