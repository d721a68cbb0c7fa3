package rain

import "time"

// MaxFrameDelta caps the wall-clock delta fed to a single step so a stall
// (a hidden window, a debugger pause) does not fling every particle away.
const MaxFrameDelta = 100 * time.Millisecond

// ClampDelta converts a wall-clock delta to seconds, clamped to
// [0, MaxFrameDelta].
func ClampDelta(d time.Duration) float64 {
	if d < 0 {
		d = 0
	}
	if d > MaxFrameDelta {
		d = MaxFrameDelta
	}
	return d.Seconds()
}

// Bounds is the drawable area in pixels.
type Bounds struct {
	Width, Height float64
}

// Empty reports whether nothing can be drawn.
func (b Bounds) Empty() bool {
	return !(b.Width > 0 && b.Height > 0)
}

// StepStats counts boundary events of the last step.
type StepStats struct {
	Wraps     int
	Respawns  int
	NonFinite int
}

// Stepper advances a store by one time delta.
type Stepper struct {
	cfg     *Config
	emitter *Emitter
	rng     Rand

	Stats StepStats
}

// NewStepper returns a stepper for cfg, respawning through e.
func NewStepper(cfg *Config, e *Emitter, rng Rand) *Stepper {
	return &Stepper{cfg: cfg, emitter: e, rng: rng}
}

// Step integrates every particle by dt seconds and applies the boundary
// policy. A non-positive dt leaves the store untouched.
func (s *Stepper) Step(st *Store, b Bounds, dt float64) {
	s.Stats = StepStats{}
	if dt <= 0 {
		return
	}

	c := s.cfg
	ax := c.Gust.X * dt
	ay := (c.Gravity + c.Gust.Y) * dt
	pos, vel := st.Positions, st.Velocities

	for i, n := 0, st.Count(); i < n; i++ {
		xi, yi := 2*i, 2*i+1

		vel[xi] += ax
		vel[yi] += ay
		pos[xi] += vel[xi] * dt
		pos[yi] += vel[yi] * dt

		if !finite(pos[xi]) || !finite(pos[yi]) || !finite(vel[xi]) || !finite(vel[yi]) {
			s.Stats.NonFinite++
			s.respawn(st, i, b, edgeBottom)
			continue
		}

		switch c.Boundary {
		case BoundaryRespawn:
			if edge := exitedEdge(st, i, b, c.Scale); edge != edgeNone {
				s.respawn(st, i, b, edge)
				s.Stats.Respawns++
			}
		default:
			if wrap(pos, xi, b.Width) || wrap(pos, yi, b.Height) {
				s.Stats.Wraps++
			}
		}
	}
}

// wrap moves a coordinate past [0, limit] to the opposite edge.
func wrap(pos []float64, idx int, limit float64) bool {
	switch {
	case pos[idx] < 0:
		pos[idx] = limit
	case pos[idx] > limit:
		pos[idx] = 0
	default:
		return false
	}
	return true
}

type edge uint8

const (
	edgeNone edge = iota
	edgeLeft
	edgeRight
	edgeTop
	edgeBottom
)

// exitedEdge reports the edge that both the head and the tail of particle
// i are past, so a streak is only recycled once it is fully offscreen.
func exitedEdge(st *Store, i int, b Bounds, scale float64) edge {
	x0, y0 := st.Position(i)
	x1, y1 := st.Tail(i, scale)
	switch {
	case x0 < 0 && x1 < 0:
		return edgeLeft
	case x0 > b.Width && x1 > b.Width:
		return edgeRight
	case y0 < 0 && y1 < 0:
		return edgeTop
	case y0 > b.Height && y1 > b.Height:
		return edgeBottom
	}
	return edgeNone
}

// respawn re-emits particle i on the edge opposite to the one it left.
func (s *Stepper) respawn(st *Store, i int, b Bounds, from edge) {
	var x, y float64
	switch from {
	case edgeLeft:
		x, y = b.Width, randomInRange(s.rng, 0, b.Height)
	case edgeRight:
		x, y = 0, randomInRange(s.rng, 0, b.Height)
	case edgeTop:
		x, y = randomInRange(s.rng, 0, b.Width), b.Height
	default:
		x, y = randomInRange(s.rng, 0, b.Width), 0
	}
	vx, vy := s.emitter.Velocity()
	st.Set(i, x, y, vx, vy)
}
