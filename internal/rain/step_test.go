package rain

import (
	"math"
	"testing"
	"time"
)

func newTestStepper(cfg *Config, rng Rand) *Stepper {
	return NewStepper(cfg, NewEmitter(cfg, rng), rng)
}

func TestClampDelta(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want float64
	}{
		{-time.Second, 0},
		{0, 0},
		{16 * time.Millisecond, 0.016},
		{100 * time.Millisecond, 0.1},
		{500 * time.Millisecond, 0.1},
		{time.Hour, 0.1},
	}
	for _, tt := range tests {
		if got := ClampDelta(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("ClampDelta(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStepNonPositiveDeltaIsNoop(t *testing.T) {
	cfg := stillConfig(1, 100)
	cfg.Gravity = 50
	s := newTestStepper(&cfg, NewRand(1))
	st := NewStore(1)
	st.Set(0, 5, 6, 7, 8)

	for _, dt := range []float64{0, -0.5} {
		s.Step(st, Bounds{Width: 100, Height: 100}, dt)
		x, y := st.Position(0)
		vx, vy := st.Velocity(0)
		if x != 5 || y != 6 || vx != 7 || vy != 8 {
			t.Errorf("dt=%v changed particle to (%v,%v,%v,%v)", dt, x, y, vx, vy)
		}
	}
}

func TestStepAppliesGravityAndGust(t *testing.T) {
	cfg := stillConfig(1, 0)
	cfg.Gravity = 10
	cfg.Gust = Vec2{X: 4, Y: 2}
	s := newTestStepper(&cfg, NewRand(1))
	st := NewStore(1)
	st.Set(0, 50, 50, 0, 0)

	s.Step(st, Bounds{Width: 100, Height: 100}, 0.5)

	vx, vy := st.Velocity(0)
	if vx != 2 || vy != 6 {
		t.Errorf("velocity = (%v, %v), want (2, 6)", vx, vy)
	}
	x, y := st.Position(0)
	if x != 51 || y != 53 {
		t.Errorf("position = (%v, %v), want (51, 53)", x, y)
	}
}

func TestStepWrap(t *testing.T) {
	const eps = 1e-6
	tests := []struct {
		name   string
		x, y   float64
		vx, vy float64
		wantX  float64
		wantY  float64
	}{
		{"left edge", 0, 50, -eps, 0, 200, 50},
		{"right edge", 200, 50, eps, 0, 0, 50},
		{"top edge", 80, 0, 0, -eps, 80, 100},
		{"bottom edge", 80, 100, 0, eps, 80, 0},
		{"inside", 80, 50, 1, 1, 81, 51},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := stillConfig(1, 0)
			cfg.Boundary = BoundaryWrap
			s := newTestStepper(&cfg, NewRand(1))
			st := NewStore(1)
			st.Set(0, tt.x, tt.y, tt.vx, tt.vy)

			s.Step(st, Bounds{Width: 200, Height: 100}, 1)

			x, y := st.Position(0)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("position = (%v, %v), want (%v, %v)", x, y, tt.wantX, tt.wantY)
			}
			vx, vy := st.Velocity(0)
			if vx != tt.vx || vy != tt.vy {
				t.Errorf("velocity changed to (%v, %v)", vx, vy)
			}
		})
	}
}

func TestStepRespawnNeedsHeadAndTailPastEdge(t *testing.T) {
	cfg := stillConfig(1, 300)
	cfg.Boundary = BoundaryRespawn
	cfg.Scale = 1
	b := Bounds{Width: 200, Height: 100}

	t.Run("head only", func(t *testing.T) {
		s := newTestStepper(&cfg, NewRand(1))
		st := NewStore(1)
		// after one step head is at y=110, tail at 110-20=90 (inside)
		st.Set(0, 50, 90, 0, 20)

		s.Step(st, b, 1)

		x, y := st.Position(0)
		vx, vy := st.Velocity(0)
		if x != 50 || y != 110 || vx != 0 || vy != 20 {
			t.Errorf("particle = (%v,%v,%v,%v), want (50,110,0,20)", x, y, vx, vy)
		}
		if s.Stats.Respawns != 0 {
			t.Errorf("Respawns = %d, want 0", s.Stats.Respawns)
		}
	})

	t.Run("head and tail", func(t *testing.T) {
		s := newTestStepper(&cfg, &seqRand{vals: []float64{0.25}})
		st := NewStore(1)
		// head at 130, tail at 110: both below
		st.Set(0, 50, 110, 0, 20)

		s.Step(st, b, 1)

		x, y := st.Position(0)
		vx, vy := st.Velocity(0)
		if y != 0 {
			t.Errorf("respawned y = %v, want 0", y)
		}
		if x != 50 {
			t.Errorf("respawned x = %v, want 0.25*200", x)
		}
		if vx != 0 || vy != 300 {
			t.Errorf("respawned velocity = (%v, %v), want (0, 300)", vx, vy)
		}
		if s.Stats.Respawns != 1 {
			t.Errorf("Respawns = %d, want 1", s.Stats.Respawns)
		}
	})

	t.Run("different edges", func(t *testing.T) {
		s := newTestStepper(&cfg, NewRand(1))
		st := NewStore(1)
		// head ends at (-4, 50), left of the surface; tail at (6, 110), below it
		st.Set(0, 6, 110, -10, -60)

		s.Step(st, b, 1)

		if s.Stats.Respawns != 0 {
			t.Errorf("Respawns = %d, want 0", s.Stats.Respawns)
		}
	})
}

func TestStepRespawnOppositeEdges(t *testing.T) {
	cfg := stillConfig(1, 300)
	cfg.Boundary = BoundaryRespawn
	cfg.Scale = 0
	b := Bounds{Width: 200, Height: 100}

	tests := []struct {
		name         string
		x, y         float64
		wantX, wantY float64
	}{
		{"left", -10, 40, 200, 50},
		{"right", 210, 40, 0, 50},
		{"top", 40, -10, 100, 100},
		{"bottom", 40, 110, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStepper(&cfg, &seqRand{vals: []float64{0.5}})
			st := NewStore(1)
			st.Set(0, tt.x, tt.y, 0, 0)

			s.Step(st, b, 1)

			x, y := st.Position(0)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("respawned at (%v, %v), want (%v, %v)", x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestStepReemitsNonFinite(t *testing.T) {
	cfg := stillConfig(2, 100)
	s := newTestStepper(&cfg, NewRand(1))
	st := NewStore(2)
	st.Set(0, math.NaN(), 10, 0, 0)
	st.Set(1, 10, 10, 0, 1)

	s.Step(st, Bounds{Width: 100, Height: 100}, 0.1)

	if s.Stats.NonFinite != 1 {
		t.Fatalf("NonFinite = %d, want 1", s.Stats.NonFinite)
	}
	x, y := st.Position(0)
	if !finite(x) || !finite(y) {
		t.Errorf("particle 0 still at (%v, %v)", x, y)
	}
}
