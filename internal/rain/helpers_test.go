package rain

import (
	"image/color"
	"time"
)

type segment struct {
	x0, y0, x1, y1 float64
}

type rect struct {
	x, y, w, h float64
	clr        color.Color
}

// recordingSurface keeps every drawing command for inspection.
type recordingSurface struct {
	w, h     int
	clears   int
	strokes  int
	segments []segment
	rects    []rect
	stroke   color.Color
	width    float64
	pen      [2]float64
	gone     bool
	resized  int
}

func newRecordingSurface(w, h int) *recordingSurface {
	return &recordingSurface{w: w, h: h}
}

func (s *recordingSurface) Size() (int, int) { return s.w, s.h }

func (s *recordingSurface) Clear() {
	s.clears++
	s.segments = s.segments[:0]
	s.rects = s.rects[:0]
}

func (s *recordingSurface) MoveTo(x, y float64) { s.pen = [2]float64{x, y} }

func (s *recordingSurface) LineTo(x, y float64) {
	s.segments = append(s.segments, segment{s.pen[0], s.pen[1], x, y})
	s.pen = [2]float64{x, y}
}

func (s *recordingSurface) Stroke(clr color.Color, width float64) {
	s.strokes++
	s.stroke = clr
	s.width = width
}

func (s *recordingSurface) FillRect(x, y, w, h float64, clr color.Color) {
	s.rects = append(s.rects, rect{x, y, w, h, clr})
}

func (s *recordingSurface) Disposed() bool { return s.gone }

func (s *recordingSurface) Resize() { s.resized++ }

// seqRand replays a fixed sequence of draws, cycling when exhausted.
type seqRand struct {
	vals []float64
	i    int
}

func (r *seqRand) Float64() float64 {
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v
}

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// stillConfig returns a config whose particles fall straight down at speed.
func stillConfig(count int, speed float64) Config {
	cfg := DefaultConfig()
	cfg.Count = count
	cfg.Speed = speed
	cfg.Gravity = 0
	cfg.Wind = Vec2{}
	cfg.Shear = 0
	cfg.Spread = 0
	return cfg
}
