// Package term renders rain into terminal cells with tcell.
package term

import (
	"image"
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
)

type segment struct {
	x0, y0, x1, y1 float64
}

// Surface is a rectangular region of a tcell screen, one cell per unit.
type Surface struct {
	screen   tcell.Screen
	rect     image.Rectangle
	path     []segment
	penX     float64
	penY     float64
	disposed bool
}

// NewSurface returns a surface covering rect of screen.
func NewSurface(screen tcell.Screen, rect image.Rectangle) *Surface {
	return &Surface{screen: screen, rect: rect}
}

// SetRect moves the surface; the next Resize picks it up.
func (s *Surface) SetRect(r image.Rectangle) { s.rect = r }

// Dispose marks the surface as gone so its instance is deregistered.
func (s *Surface) Dispose() { s.disposed = true }

func (s *Surface) Disposed() bool { return s.disposed }

func (s *Surface) Resize() {}

func (s *Surface) Size() (int, int) { return s.rect.Dx(), s.rect.Dy() }

func (s *Surface) Clear() {
	for y := s.rect.Min.Y; y < s.rect.Max.Y; y++ {
		for x := s.rect.Min.X; x < s.rect.Max.X; x++ {
			s.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault)
		}
	}
	s.path = s.path[:0]
}

func (s *Surface) MoveTo(x, y float64) {
	s.penX, s.penY = x, y
}

func (s *Surface) LineTo(x, y float64) {
	s.path = append(s.path, segment{s.penX, s.penY, x, y})
	s.penX, s.penY = x, y
}

// Stroke walks each pending segment cell by cell. Width is ignored;
// a cell is the thinnest line a terminal has.
func (s *Surface) Stroke(clr color.Color, _ float64) {
	style := tcell.StyleDefault.Foreground(toTcell(clr))
	for _, seg := range s.path {
		r := streakRune(seg.x1-seg.x0, seg.y1-seg.y0)
		steps := int(math.Ceil(math.Max(math.Abs(seg.x1-seg.x0), math.Abs(seg.y1-seg.y0))))
		for i := 0; i <= steps; i++ {
			t := 0.0
			if steps > 0 {
				t = float64(i) / float64(steps)
			}
			s.set(seg.x0+(seg.x1-seg.x0)*t, seg.y0+(seg.y1-seg.y0)*t, r, style)
		}
	}
	s.path = s.path[:0]
}

func (s *Surface) FillRect(x, y, _, _ float64, clr color.Color) {
	s.set(x, y, '•', tcell.StyleDefault.Foreground(toTcell(clr)))
}

func (s *Surface) set(x, y float64, r rune, style tcell.Style) {
	cx, cy := int(math.Floor(x)), int(math.Floor(y))
	if cx < 0 || cy < 0 || cx >= s.rect.Dx() || cy >= s.rect.Dy() {
		return
	}
	s.screen.SetContent(s.rect.Min.X+cx, s.rect.Min.Y+cy, r, nil, style)
}

// streakRune picks the glyph closest to the direction of a streak.
func streakRune(dx, dy float64) rune {
	ax, ay := math.Abs(dx), math.Abs(dy)
	switch {
	case ax < ay*0.4:
		return '|'
	case ay < ax*0.4:
		return '-'
	case (dx > 0) == (dy > 0):
		return '\\'
	default:
		return '/'
	}
}

// toTcell flattens alpha against a black terminal background.
func toTcell(c color.Color) tcell.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	a := int32(n.A)
	return tcell.NewRGBColor(int32(n.R)*a/255, int32(n.G)*a/255, int32(n.B)*a/255)
}
