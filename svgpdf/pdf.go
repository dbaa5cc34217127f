// Implements a PDF backend to render SVG documents,
// by wrapping github.com/jung-kurt/gofpdf.
//
// Solid fills and strokes are written as vector paths.
// Gradients, patterns, transformed images and filter results
// are rasterized with svgraster and embedded as PNG images.
package svgpdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/math/fixed"

	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgraster"
	"github.com/benoitkugler/svgrender/svgrender"
	"github.com/benoitkugler/svgrender/svgunit"
)

var _ svgrender.Renderer = (*Renderer)(nil) // assert interface conformance

// ErrEmptyPage is returned when the document has no area.
var ErrEmptyPage = errors.New("svgpdf: empty document size")

type state struct {
	transform  svgpath.Matrix2D
	clipBounds svgpath.Rect // device space
	hasClip    bool
	opacity    float64 // product of the opened layer opacities
}

// Renderer writes into the current page of a gofpdf document,
// whose unit must be the point. The device space has its
// origin at the top left corner of the page.
//
// Opacity layers are approximated : the layer opacity is
// multiplied into the alpha of each drawing operation, so that
// overlapping shapes of a group are not composited together.
type Renderer struct {
	svgunit.Stack

	pdf *gofpdf.Fpdf
	state
	saved  []state
	smooth bool
	images int // embedded images, used to name them
}

// NewRenderer return a renderer which will
// write to the current page of `pdf`.
func NewRenderer(pdf *gofpdf.Fpdf) *Renderer {
	return &Renderer{
		pdf:    pdf,
		state:  state{transform: svgpath.Identity, opacity: 1},
		smooth: true,
	}
}

// Render draws `doc` on a new one page PDF document, sized
// to the document dimensions, one pixel being one point.
func Render(doc *svgrender.Document) (*gofpdf.Fpdf, error) {
	w, h := doc.Dimensions()
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyPage
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: gofpdf.SizeType{Wd: w, Ht: h}})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("svgrender", true)
	pdf.AddPage()
	if err := doc.Draw(NewRenderer(pdf)); err != nil {
		return nil, err
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("svgpdf: %w", err)
	}
	return pdf, nil
}

// Write renders `doc` and writes the PDF file to `out`.
func Write(doc *svgrender.Document, out io.Writer) error {
	pdf, err := Render(doc)
	if err != nil {
		return err
	}
	return pdf.Output(out)
}

func (rd *Renderer) Save() {
	rd.saved = append(rd.saved, rd.state)
	rd.pdf.TransformBegin()
}

func (rd *Renderer) SaveLayer(opacity float64) {
	rd.Save()
	rd.opacity *= clamp(opacity)
}

// Restore panics on unbalanced calls.
func (rd *Renderer) Restore() {
	if len(rd.saved) == 0 {
		panic("svgpdf: unbalanced Restore")
	}
	rd.state = rd.saved[len(rd.saved)-1]
	rd.saved = rd.saved[:len(rd.saved)-1]
	rd.pdf.TransformEnd()
}

func clamp(v float64) float64 { return math.Max(0, math.Min(1, v)) }

func (rd *Renderer) Transform() svgpath.Matrix2D     { return rd.transform }
func (rd *Renderer) SetTransform(m svgpath.Matrix2D) { rd.transform = m }

func (rd *Renderer) Smoothing() bool          { return rd.smooth }
func (rd *Renderer) SetSmoothing(smooth bool) { rd.smooth = smooth }

// Offscreen returns a raster renderer : filter results
// are drawn back as images.
func (rd *Renderer) Offscreen(dst *image.RGBA) svgrender.Renderer { return svgraster.NewRenderer(dst) }

// SetClip writes the path as a clipping path, which
// lasts until the matching Restore.
func (rd *Renderer) SetClip(path svgpath.Path, rule svgpath.FillRule) {
	if path.IsEmpty() {
		rd.pdf.RawWriteStr("0 0 0 0 re W n")
		rd.clipBounds, rd.hasClip = svgpath.Rect{}, true
		return
	}
	path.AddTo(&pather{pdf: rd.pdf}, rd.transform)
	if rule == svgpath.EvenOdd {
		rd.pdf.RawWriteStr("W* n")
	} else {
		rd.pdf.RawWriteStr("W n")
	}
	bounds := path.Transform(rd.transform).Bounds()
	if rd.hasClip {
		bounds = intersect(rd.clipBounds, bounds)
	}
	rd.clipBounds, rd.hasClip = bounds, true
}

func intersect(a, b svgpath.Rect) svgpath.Rect {
	x0, y0 := math.Max(a.Left(), b.Left()), math.Max(a.Top(), b.Top())
	x1, y1 := math.Min(a.Right(), b.Right()), math.Min(a.Bottom(), b.Bottom())
	return svgpath.Rect{X: x0, Y: y0, W: math.Max(0, x1-x0), H: math.Max(0, y1-y0)}
}

func (rd *Renderer) ClipBounds() (svgpath.Rect, bool) { return rd.clipBounds, rd.hasClip }

// setAlpha applies the color alpha and the layer opacity
func (rd *Renderer) setAlpha(a uint8) {
	rd.pdf.SetAlpha(clamp(float64(a)/0xff*rd.opacity), "Normal")
}

func (rd *Renderer) FillPath(path svgpath.Path, rule svgpath.FillRule, brush svgrender.Brush) {
	solid, ok := brush.(svgrender.SolidBrush)
	if !ok {
		bounds := path.Transform(rd.transform).Bounds()
		rd.rasterize(bounds, func(r svgrender.Renderer) { r.FillPath(path, rule, brush) })
		return
	}
	c := solid.Color
	if c.A == 0 || path.IsEmpty() {
		return
	}
	rd.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
	rd.setAlpha(c.A)
	path.AddTo(&pather{pdf: rd.pdf}, rd.transform)
	if rule == svgpath.EvenOdd {
		rd.pdf.DrawPath("F*")
	} else {
		rd.pdf.DrawPath("F")
	}
}

var (
	joinToStyle = [...]string{
		svgrender.MiterJoin: "miter",
		svgrender.RoundJoin: "round",
		svgrender.BevelJoin: "bevel",
	}

	capToStyle = [...]string{
		svgrender.ButtCap:   "butt",
		svgrender.SquareCap: "square",
		svgrender.RoundCap:  "round",
	}
)

// StrokePath strokes in device space, the width being scaled
// by the mean scale factor of the transform.
func (rd *Renderer) StrokePath(path svgpath.Path, stroke svgrender.Stroke, brush svgrender.Brush) {
	m := rd.transform
	scale := math.Sqrt(math.Abs(m.A*m.D - m.B*m.C))
	solid, ok := brush.(svgrender.SolidBrush)
	if !ok {
		margin := stroke.Width * scale * math.Max(1, stroke.MiterLimit) / 2
		bounds := path.Transform(m).Bounds().Inflate(margin, margin)
		rd.rasterize(bounds, func(r svgrender.Renderer) { r.StrokePath(path, stroke, brush) })
		return
	}
	c := solid.Color
	if c.A == 0 || path.IsEmpty() {
		return
	}
	dashes := make([]float64, len(stroke.Dashes))
	for i, d := range stroke.Dashes {
		dashes[i] = d * scale
	}
	rd.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	rd.setAlpha(c.A)
	rd.pdf.SetLineWidth(stroke.Width * scale)
	rd.pdf.SetLineCapStyle(capToStyle[stroke.Cap])
	rd.pdf.SetLineJoinStyle(joinToStyle[stroke.Join])
	if stroke.Join == svgrender.MiterJoin && stroke.MiterLimit >= 1 {
		rd.pdf.RawWriteStr(fmt.Sprintf("%.2f M", stroke.MiterLimit))
	}
	rd.pdf.SetDashPattern(dashes, stroke.DashOffset*scale)
	path.AddTo(&pather{pdf: rd.pdf}, m)
	rd.pdf.DrawPath("D")
}

// DrawImage embeds the `src` part of `img`. Images which are not
// axis aligned in device space are resampled first.
func (rd *Renderer) DrawImage(img image.Image, dst svgpath.Rect, src image.Rectangle) {
	if src.Empty() || dst.IsEmpty() {
		return
	}
	m := rd.transform
	if m.B == 0 && m.C == 0 && m.A > 0 && m.D > 0 {
		rd.embed(imaging.Crop(img, src), m.TransformRect(dst))
		return
	}
	bounds := m.TransformRect(dst)
	smooth := rd.smooth
	rd.rasterize(bounds, func(r svgrender.Renderer) {
		r.SetSmoothing(smooth)
		r.DrawImage(img, dst, src)
	})
}

// rasterize draws the `bounds` part of the page (in device space)
// with a raster renderer, and embeds the result.
func (rd *Renderer) rasterize(bounds svgpath.Rect, draw func(r svgrender.Renderer)) {
	if rd.hasClip {
		bounds = intersect(bounds, rd.clipBounds)
	}
	w, h := rd.pdf.GetPageSize()
	bounds = intersect(bounds, svgpath.Rect{W: w, H: h})
	x0, y0 := math.Floor(bounds.Left()), math.Floor(bounds.Top())
	x1, y1 := math.Ceil(bounds.Right()), math.Ceil(bounds.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return
	}
	img, err := svgrender.NewSurfaceImage(int(x1-x0), int(y1-y0))
	if err != nil {
		svgrender.Logger().Warn("raster fallback not allocated", "error", err)
		return
	}
	r := svgraster.NewRenderer(img)
	r.SetTransform(svgpath.Identity.Translate(-x0, -y0).Mult(rd.transform))
	draw(r)
	rd.embed(img, svgpath.Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0})
}

// embed writes `img` as a PNG image placed at `dst`.
func (rd *Renderer) embed(img image.Image, dst svgpath.Rect) {
	if dst.IsEmpty() || img.Bounds().Empty() {
		return
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		svgrender.Logger().Warn("image not embedded", "error", err)
		return
	}
	rd.images++
	name := fmt.Sprintf("svgpdf-img-%d", rd.images)
	opts := gofpdf.ImageOptions{ImageType: "png", AllowNegativePosition: true}
	rd.pdf.RegisterImageOptionsReader(name, opts, &buf)
	rd.setAlpha(0xff)
	rd.pdf.ImageOptions(name, dst.X, dst.Y, dst.W, dst.H, false, opts, 0, "")
}

// pather implements svgpath.Adder by
// writing the path commands.
type pather struct {
	pdf     *gofpdf.Fpdf
	current fixed.Point26_6 // used to promote quadratic curves
}

func fixedTof(a fixed.Point26_6) (float64, float64) {
	return float64(a.X) / 64, float64(a.Y) / 64
}

func (p *pather) Start(a fixed.Point26_6) {
	p.pdf.MoveTo(fixedTof(a))
	p.current = a
}

func (p *pather) Line(b fixed.Point26_6) {
	p.pdf.LineTo(fixedTof(b))
	p.current = b
}

// QuadBezier is written as the equivalent cubic curve,
// since the PDF format has no quadratic operator.
func (p *pather) QuadBezier(b, c fixed.Point26_6) {
	x0, y0 := fixedTof(p.current)
	bx, by := fixedTof(b)
	x, y := fixedTof(c)
	p.pdf.CurveBezierCubicTo(
		x0+2./3*(bx-x0), y0+2./3*(by-y0),
		x+2./3*(bx-x), y+2./3*(by-y),
		x, y,
	)
	p.current = c
}

func (p *pather) CubeBezier(b, c, d fixed.Point26_6) {
	cx0, cy0 := fixedTof(b)
	cx1, cy1 := fixedTof(c)
	x, y := fixedTof(d)
	p.pdf.CurveBezierCubicTo(cx0, cy0, cx1, cy1, x, y)
	p.current = d
}

func (p *pather) Stop(closeLoop bool) {
	if closeLoop {
		p.pdf.ClosePath()
	}
}
