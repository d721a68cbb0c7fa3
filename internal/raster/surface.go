// Package raster is a software rain surface backed by an image.RGBA,
// used for headless rendering and PNG export.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/vector"
)

type segment struct {
	x0, y0, x1, y1 float64
}

// Surface rasterizes strokes as antialiased quads.
type Surface struct {
	img  *image.RGBA
	bg   *image.Uniform
	z    *vector.Rasterizer
	path []segment
	penX float64
	penY float64
}

// New returns a w x h surface cleared to bg.
func New(w, h int, bg color.Color) *Surface {
	s := &Surface{
		bg: image.NewUniform(bg),
		z:  vector.NewRasterizer(w, h),
	}
	s.img = image.NewRGBA(image.Rect(0, 0, w, h))
	s.Clear()
	return s
}

func (s *Surface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Image returns the backing image. It is reused across frames.
func (s *Surface) Image() *image.RGBA { return s.img }

// SetSize reallocates the surface, discarding its pixels.
func (s *Surface) SetSize(w, h int) {
	s.img = image.NewRGBA(image.Rect(0, 0, w, h))
	s.z.Reset(w, h)
	s.Clear()
}

func (s *Surface) Clear() {
	draw.Draw(s.img, s.img.Bounds(), s.bg, image.Point{}, draw.Src)
	s.path = s.path[:0]
}

func (s *Surface) MoveTo(x, y float64) {
	s.penX, s.penY = x, y
}

func (s *Surface) LineTo(x, y float64) {
	s.path = append(s.path, segment{s.penX, s.penY, x, y})
	s.penX, s.penY = x, y
}

// Stroke fills every pending segment as a quad of the given width in one
// rasterizer pass.
func (s *Surface) Stroke(clr color.Color, width float64) {
	if len(s.path) == 0 {
		return
	}
	w, h := s.Size()
	s.z.Reset(w, h)

	if width <= 0 {
		width = 1
	}
	half := width / 2
	for _, seg := range s.path {
		dx, dy := seg.x1-seg.x0, seg.y1-seg.y0
		l := math.Hypot(dx, dy)
		var nx, ny, tx, ty float64
		if l == 0 {
			// degenerate streak: a dot
			nx, ty = half, half
		} else {
			nx, ny = -dy/l*half, dx/l*half
		}
		s.z.MoveTo(float32(seg.x0+nx-tx), float32(seg.y0+ny-ty))
		s.z.LineTo(float32(seg.x1+nx+tx), float32(seg.y1+ny+ty))
		s.z.LineTo(float32(seg.x1-nx+tx), float32(seg.y1-ny+ty))
		s.z.LineTo(float32(seg.x0-nx-tx), float32(seg.y0-ny-ty))
		s.z.ClosePath()
	}
	s.z.DrawOp = draw.Over
	s.z.Draw(s.img, s.img.Bounds(), image.NewUniform(clr), image.Point{})
	s.path = s.path[:0]
}

func (s *Surface) FillRect(x, y, w, h float64, clr color.Color) {
	r := image.Rect(int(x), int(y), int(math.Ceil(x+w)), int(math.Ceil(y+h)))
	draw.Draw(s.img, r.Intersect(s.img.Bounds()), image.NewUniform(clr), image.Point{}, draw.Over)
}

// WritePNG encodes the current frame.
func (s *Surface) WritePNG(w io.Writer) error {
	if err := png.Encode(w, s.img); err != nil {
		return fmt.Errorf("encoding frame: %w", err)
	}
	return nil
}
