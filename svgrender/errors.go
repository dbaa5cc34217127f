package svgrender

import (
	"errors"
	"fmt"
	"image"
)

var (
	// ErrNilRenderer is returned when drawing into a nil renderer.
	ErrNilRenderer = errors.New("svgrender: nil renderer")

	// ErrSurfaceTooLarge is returned when an offscreen or output
	// surface exceeds MaxSurfacePixels.
	ErrSurfaceTooLarge = errors.New("svgrender: surface too large")
)

// MaxSurfacePixels is the maximum number of pixels of a surface
// allocated while rendering.
const MaxSurfacePixels = 1 << 26

// NewSurfaceImage allocates a transparent image, or returns
// ErrSurfaceTooLarge.
func NewSurfaceImage(width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("svgrender: invalid surface size %dx%d", width, height)
	}
	if int64(width)*int64(height) > MaxSurfacePixels {
		return nil, fmt.Errorf("%w (%dx%d)", ErrSurfaceTooLarge, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height)), nil
}
