package game

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// strokeBatch bounds the segments turned into triangles per draw call,
// keeping vertex indices within uint16.
const strokeBatch = 4096

type segment struct {
	x0, y0, x1, y1 float32
}

// paneSurface is an offscreen image for one pane of the window.
type paneSurface struct {
	img      *ebiten.Image
	rect     image.Rectangle
	pending  image.Rectangle
	path     []segment
	pen      [2]float32
	vs       []ebiten.Vertex
	is       []uint16
	disposed bool
}

func newPaneSurface(r image.Rectangle) *paneSurface {
	s := &paneSurface{rect: r, pending: r}
	if !r.Empty() {
		s.img = ebiten.NewImage(r.Dx(), r.Dy())
	}
	return s
}

// setRect schedules a new placement, applied on Resize.
func (s *paneSurface) setRect(r image.Rectangle) { s.pending = r }

func (s *paneSurface) Resize() {
	if s.pending.Size() != s.rect.Size() {
		if s.img != nil {
			s.img.Deallocate()
			s.img = nil
		}
		if !s.pending.Empty() {
			s.img = ebiten.NewImage(s.pending.Dx(), s.pending.Dy())
		}
	}
	s.rect = s.pending
}

func (s *paneSurface) dispose() {
	if s.img != nil {
		s.img.Deallocate()
		s.img = nil
	}
	s.disposed = true
}

func (s *paneSurface) Disposed() bool { return s.disposed }

func (s *paneSurface) Size() (int, int) {
	if s.img == nil {
		return 0, 0
	}
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

func (s *paneSurface) Clear() {
	if s.img != nil {
		s.img.Clear()
	}
	s.path = s.path[:0]
}

func (s *paneSurface) MoveTo(x, y float64) {
	s.pen = [2]float32{float32(x), float32(y)}
}

func (s *paneSurface) LineTo(x, y float64) {
	s.path = append(s.path, segment{s.pen[0], s.pen[1], float32(x), float32(y)})
	s.pen = [2]float32{float32(x), float32(y)}
}

// Stroke turns the pending path into triangles and draws them with one
// style.
func (s *paneSurface) Stroke(clr color.Color, width float64) {
	if s.img == nil || len(s.path) == 0 {
		s.path = s.path[:0]
		return
	}

	r, g, b, a := clr.RGBA()
	op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
	stroke := &vector.StrokeOptions{Width: float32(width)}

	for start := 0; start < len(s.path); start += strokeBatch {
		end := min(start+strokeBatch, len(s.path))

		var p vector.Path
		for _, seg := range s.path[start:end] {
			p.MoveTo(seg.x0, seg.y0)
			p.LineTo(seg.x1, seg.y1)
		}

		s.vs, s.is = p.AppendVerticesAndIndicesForStroke(s.vs[:0], s.is[:0], stroke)
		for i := range s.vs {
			s.vs[i].SrcX = 1
			s.vs[i].SrcY = 1
			// clr.RGBA is premultiplied; vertex colors are straight alpha
			if a > 0 {
				s.vs[i].ColorR = float32(r) / float32(a)
				s.vs[i].ColorG = float32(g) / float32(a)
				s.vs[i].ColorB = float32(b) / float32(a)
			}
			s.vs[i].ColorA = float32(a) / 0xffff
		}
		s.img.DrawTriangles(s.vs, s.is, whiteSubImage, op)
	}
	s.path = s.path[:0]
}

func (s *paneSurface) FillRect(x, y, w, h float64, clr color.Color) {
	if s.img == nil {
		return
	}
	vector.DrawFilledRect(s.img, float32(x), float32(y), float32(w), float32(h), clr, false)
}
