package rain

import (
	"image/color"
	"testing"
)

func TestRenderSingleBatchedStroke(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scale = 2
	st := NewStore(3)
	st.Set(0, 10, 10, 1, 2)
	st.Set(1, 20, 30, 0, 5)
	st.Set(2, 40, 40, -1, 1)
	s := newRecordingSurface(100, 100)

	drawn := Render(st, &cfg, Bounds{Width: 100, Height: 100}, s)

	if drawn != 3 {
		t.Errorf("drawn = %d, want 3", drawn)
	}
	if s.clears != 1 || s.strokes != 1 {
		t.Errorf("clears=%d strokes=%d, want 1 and 1", s.clears, s.strokes)
	}
	want := []segment{{10, 10, 8, 6}, {20, 30, 20, 20}, {40, 40, 42, 38}}
	for i, seg := range want {
		if s.segments[i] != seg {
			t.Errorf("segment %d = %+v, want %+v", i, s.segments[i], seg)
		}
	}
	if s.stroke != color.Color(cfg.Color.NRGBA) || s.width != cfg.LineWidth {
		t.Errorf("stroke style = %v/%v, want %v/%v", s.stroke, s.width, cfg.Color.NRGBA, cfg.LineWidth)
	}
	if len(s.rects) != 0 {
		t.Errorf("debug rects drawn without debug: %d", len(s.rects))
	}
}

func TestRenderSkipsFullyOffscreenStreaks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scale = 1
	b := Bounds{Width: 100, Height: 100}

	tests := []struct {
		name         string
		x, y, vx, vy float64
		visible      bool
	}{
		{"inside", 50, 50, 0, 10, true},
		{"head below tail inside", 50, 105, 0, 10, true},
		{"both below", 50, 120, 0, 10, false},
		{"both above", 50, -5, 0, 10, false},
		{"both left", -5, 50, 1, 0, false},
		{"both right", 120, 50, 10, 0, false},
		{"straddles corner", -5, 105, -10, 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewStore(1)
			st.Set(0, tt.x, tt.y, tt.vx, tt.vy)
			s := newRecordingSurface(100, 100)

			drawn := Render(st, &cfg, b, s)
			if (drawn == 1) != tt.visible {
				t.Errorf("drawn = %d, visible want %v", drawn, tt.visible)
			}
		})
	}
}

func TestRenderDebugOverlay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Debug = true
	st := NewStore(2)
	st.Set(0, 1, 2, 0, 0)
	st.Set(1, 300, 400, 0, 0)
	s := newRecordingSurface(100, 100)

	Render(st, &cfg, Bounds{Width: 100, Height: 100}, s)

	if len(s.rects) != 2 {
		t.Fatalf("rects = %d, want 2", len(s.rects))
	}
	r := s.rects[0]
	if r.x != 1 || r.y != 2 || r.w != DebugSquareSize || r.h != DebugSquareSize || r.clr != color.Color(DebugColor) {
		t.Errorf("debug rect = %+v", r)
	}
}

func TestEndToEndSingleDrop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Count = 1
	cfg.Gravity = 0
	cfg.Wind = Vec2{}
	cfg.Spread = 0
	cfg.Speed = 10
	cfg.Shear = 0
	s := newRecordingSurface(100, 1000)

	in, err := NewInstance("drop", s, cfg, NewRand(9))
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}
	st := in.Store()
	if vx, vy := st.Velocity(0); vx != 0 || vy != 10 {
		t.Fatalf("initial velocity = (%v, %v), want (0, 10)", vx, vy)
	}
	st.Set(0, 50, 100, 0, 10)

	if _, err := in.Frame(1); err != nil {
		t.Fatalf("Frame: %v", err)
	}

	x, y := st.Position(0)
	if x != 50 || y != 110 {
		t.Errorf("position = (%v, %v), want (50, 110)", x, y)
	}
	if len(s.segments) != 1 {
		t.Fatalf("segments = %d, want 1", len(s.segments))
	}
	want := segment{50, 110, 50, 110 - 10*cfg.Scale}
	if s.segments[0] != want {
		t.Errorf("streak = %+v, want %+v", s.segments[0], want)
	}
}
