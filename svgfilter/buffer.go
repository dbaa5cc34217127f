// Package svgfilter implements the raster side of SVG filter effects:
// a map of named bitmaps, scoped to one filter application, and the
// filter primitives operating on it.
package svgfilter

import (
	"image"
	"sync"

	"github.com/benoitkugler/svgrender/svgpath"
)

// Reserved input names.
const (
	SourceGraphic   = "SourceGraphic"
	SourceAlpha     = "SourceAlpha"
	BackgroundImage = "BackgroundImage"
	BackgroundAlpha = "BackgroundAlpha"
	FillPaint       = "FillPaint"
	StrokePaint     = "StrokePaint"
)

type reservedKey uint8

const (
	sourceGraphic reservedKey = iota
	sourceAlpha
	backgroundImage
	backgroundAlpha
	fillPaint
	strokePaint
	nbReserved
)

var reservedNames = [nbReserved]string{
	sourceGraphic:   SourceGraphic,
	sourceAlpha:     SourceAlpha,
	backgroundImage: BackgroundImage,
	backgroundAlpha: BackgroundAlpha,
	fillPaint:       FillPaint,
	strokePaint:     StrokePaint,
}

func lookupReserved(key string) (reservedKey, bool) {
	for i, name := range reservedNames {
		if name == key {
			return reservedKey(i), true
		}
	}
	return 0, false
}

// IsReserved returns true for the six built-in input names.
func IsReserved(key string) bool {
	_, ok := lookupReserved(key)
	return ok
}

// SourceFunc renders the filtered element into `dst`,
// which is transparent and has the size of the buffer.
type SourceFunc func(dst *image.RGBA)

// ImageBuffer owns the bitmaps of one filter application.
// Reserved entries are computed on first read, and can't be removed.
// Every write also updates the "last result", used when
// a primitive omits its input.
type ImageBuffer struct {
	reserved [nbReserved]*image.RGBA
	extra    map[string]*image.RGBA
	last     *image.RGBA

	// Transform maps user space to the buffer pixels.
	Transform svgpath.Matrix2D

	size   image.Point
	source SourceFunc
}

// NewImageBuffer returns an empty buffer. `source` is called
// each time SourceGraphic must be computed.
func NewImageBuffer(size image.Point, transform svgpath.Matrix2D, source SourceFunc) *ImageBuffer {
	return &ImageBuffer{
		extra:     make(map[string]*image.RGBA),
		Transform: transform,
		size:      size,
		source:    source,
	}
}

// Size returns the size of the bitmaps.
func (b *ImageBuffer) Size() image.Point { return b.size }

// NewImage returns a transparent bitmap with the size of the buffer.
func (b *ImageBuffer) NewImage() *image.RGBA { return newImage(b.size) }

// Get returns the bitmap stored for `key`. An empty key refers to
// the last result, or SourceGraphic before any write.
// Reserved keys are populated on demand. Unknown keys are
// resolved as if empty.
func (b *ImageBuffer) Get(key string) *image.RGBA {
	if rk, ok := lookupReserved(key); ok {
		return b.getReserved(rk)
	}
	if img, ok := b.extra[key]; ok && key != "" {
		return img
	}
	if b.last != nil {
		return b.last
	}
	return b.getReserved(sourceGraphic)
}

func (b *ImageBuffer) getReserved(rk reservedKey) *image.RGBA {
	if img := b.reserved[rk]; img != nil {
		return img
	}
	var img *image.RGBA
	switch rk {
	case sourceGraphic:
		img = newImage(b.size)
		if b.source != nil {
			b.source(img)
		}
	case sourceAlpha:
		img = applyColorMatrix(b.getReserved(sourceGraphic), alphaOnly)
	default:
		// background and paint inputs are not available: transparent black
		img = newImage(b.size)
	}
	b.reserved[rk] = img
	return img
}

// Set stores `img` under `key` and makes it the last result.
// A previous bitmap stored under the same key is released.
// An empty key only updates the last result.
func (b *ImageBuffer) Set(key string, img *image.RGBA) {
	var previous *image.RGBA
	if rk, ok := lookupReserved(key); ok {
		previous = b.reserved[rk]
		b.reserved[rk] = img
	} else if key != "" {
		previous = b.extra[key]
		b.extra[key] = img
	}
	oldLast := b.last
	b.last = img
	b.release(previous)
	b.release(oldLast)
}

// Contains returns true if a bitmap is currently stored for `key`.
func (b *ImageBuffer) Contains(key string) bool {
	if rk, ok := lookupReserved(key); ok {
		return b.reserved[rk] != nil
	}
	_, ok := b.extra[key]
	return ok
}

// Remove releases the bitmap stored for `key`.
// Reserved keys can't be removed: false is returned.
func (b *ImageBuffer) Remove(key string) bool {
	if IsReserved(key) {
		return false
	}
	img, ok := b.extra[key]
	if !ok {
		return false
	}
	delete(b.extra, key)
	b.release(img)
	return true
}

// Result returns the output of the last primitive, or the
// SourceGraphic if nothing has been written.
func (b *ImageBuffer) Result() *image.RGBA { return b.Get("") }

// Clear releases every bitmap. Reserved entries will be
// recomputed on next read.
func (b *ImageBuffer) Clear() {
	var all []*image.RGBA
	for i, img := range b.reserved {
		all = append(all, img)
		b.reserved[i] = nil
	}
	for k, img := range b.extra {
		all = append(all, img)
		delete(b.extra, k)
	}
	all = append(all, b.last)
	b.last = nil
	seen := map[*image.RGBA]bool{}
	for _, img := range all {
		if img == nil || seen[img] {
			continue
		}
		seen[img] = true
		putImage(img)
	}
}

// Close releases every bitmap : the buffer and the images
// it returned must not be used anymore.
func (b *ImageBuffer) Close() { b.Clear() }

// isReferenced returns true if `img` is still stored in the buffer.
func (b *ImageBuffer) isReferenced(img *image.RGBA) bool {
	if img == b.last {
		return true
	}
	for _, r := range b.reserved {
		if r == img {
			return true
		}
	}
	for _, r := range b.extra {
		if r == img {
			return true
		}
	}
	return false
}

// release recycles `img`, unless it is aliased by another entry.
func (b *ImageBuffer) release(img *image.RGBA) {
	if img == nil || b.isReferenced(img) {
		return
	}
	putImage(img)
}

type pixBuffer struct{ pix []uint8 }

// recycled pixel storage
var pixPool = sync.Pool{
	New: func() interface{} { return &pixBuffer{} },
}

func newImage(size image.Point) *image.RGBA {
	n := 4 * size.X * size.Y
	buf := pixPool.Get().(*pixBuffer)
	if cap(buf.pix) < n {
		pixPool.Put(buf)
		return image.NewRGBA(image.Rectangle{Max: size})
	}
	pix := buf.pix[:n]
	for i := range pix {
		pix[i] = 0
	}
	return &image.RGBA{Pix: pix, Stride: 4 * size.X, Rect: image.Rectangle{Max: size}}
}

// only pool reasonably-sized buffers
const maxPooledSize = 16 * 1024 * 1024

func putImage(img *image.RGBA) {
	if cap(img.Pix) <= maxPooledSize {
		pixPool.Put(&pixBuffer{pix: img.Pix[:cap(img.Pix)]})
	}
}
