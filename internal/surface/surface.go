// Package surface wraps the pixel buffer every drawing tool paints into.
//
// A Surface validates each request before touching pixels so a rejected call
// leaves the buffer exactly as it was.
package surface

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/anthonynsimon/bild/transform"
)

const (
	// DefaultWidth and DefaultHeight size a fresh canvas.
	DefaultWidth  = 1000
	DefaultHeight = 900
)

var (
	// ErrInvalidStyle is returned for a stroke style that cannot be painted.
	ErrInvalidStyle = errors.New("invalid style")
	// ErrInvalidRegion is returned for empty or degenerate rectangles.
	ErrInvalidRegion = errors.New("invalid region")
	// ErrInvalidSnapshot is returned when restoring a zero Snapshot.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	// ErrInvalidBitmap is returned when compositing a nil image.
	ErrInvalidBitmap = errors.New("invalid bitmap")
)

// Surface is a fixed-size RGBA canvas. The zero value is not usable; call New.
type Surface struct {
	img      *image.RGBA
	textSize float64
}

// Option configures a Surface.
type Option func(*Surface)

// WithTextSize sets the point size used by DrawText.
func WithTextSize(size float64) Option {
	return func(s *Surface) {
		if size > 0 {
			s.textSize = size
		}
	}
}

// New creates a transparent surface. Non-positive dimensions fall back to the
// defaults.
func New(width, height int, opts ...Option) *Surface {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	s := &Surface{
		img:      image.NewRGBA(image.Rect(0, 0, width, height)),
		textSize: DefaultTextSize,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Reset replaces the buffer with a transparent one of the given size.
func (s *Surface) Reset(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("canvas %dx%d: %w", width, height, ErrInvalidRegion)
	}
	s.img = image.NewRGBA(image.Rect(0, 0, width, height))
	return nil
}

// Bounds returns the canvas bounds.
func (s *Surface) Bounds() image.Rectangle { return s.img.Bounds() }

// RGBAAt returns the pixel at (x, y); outside the canvas it is transparent.
func (s *Surface) RGBAAt(x, y int) color.RGBA { return s.img.RGBAAt(x, y) }

// Image returns a copy of the current buffer.
func (s *Surface) Image() *image.RGBA {
	out := image.NewRGBA(s.img.Bounds())
	copy(out.Pix, s.img.Pix)
	return out
}

// Clear makes the entire buffer transparent.
func (s *Surface) Clear() {
	clear(s.img.Pix)
}

// Erase cuts region out of the buffer, leaving fully transparent pixels. The
// part of region outside the canvas is ignored.
func (s *Surface) Erase(region image.Rectangle) error {
	if region.Empty() {
		return fmt.Errorf("erase %v: %w", region, ErrInvalidRegion)
	}
	r := region.Intersect(s.img.Bounds())
	if r.Empty() {
		return nil
	}
	draw.Draw(s.img, r, image.Transparent, image.Point{}, draw.Src)
	return nil
}

// CompositeBitmap draws src over the buffer, scaled to fill dst. Pixels
// outside dst are left alone.
func (s *Surface) CompositeBitmap(src image.Image, dst image.Rectangle) error {
	if src == nil || src.Bounds().Empty() {
		return ErrInvalidBitmap
	}
	if dst.Empty() {
		return fmt.Errorf("composite into %v: %w", dst, ErrInvalidRegion)
	}
	sb := src.Bounds()
	if sb.Dx() == dst.Dx() && sb.Dy() == dst.Dy() {
		draw.Draw(s.img, dst, src, sb.Min, draw.Over)
		return nil
	}
	scaled := transform.Resize(src, dst.Dx(), dst.Dy(), transform.Linear)
	draw.Draw(s.img, dst, scaled, scaled.Bounds().Min, draw.Over)
	return nil
}

// ExportPixels flattens the buffer onto an opaque background. A nil
// background means white.
func (s *Surface) ExportPixels(background color.Color) *image.RGBA {
	if background == nil {
		background = color.White
	}
	out := image.NewRGBA(s.img.Bounds())
	draw.Draw(out, out.Bounds(), image.NewUniform(opaque(background)), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), s.img, s.img.Bounds().Min, draw.Over)
	return out
}

func opaque(c color.Color) color.RGBA {
	r, g, b, _ := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 255}
}
