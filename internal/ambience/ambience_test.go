package ambience

import (
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"

	"github.com/iburimskiy/rain-visualization/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// sliceStreamer plays a fixed sequence of mono values.
type sliceStreamer struct {
	vals []float64
	pos  int
}

func (s *sliceStreamer) Stream(samples [][2]float64) (int, bool) {
	n := 0
	for n < len(samples) && s.pos < len(s.vals) {
		samples[n] = [2]float64{s.vals[s.pos], s.vals[s.pos]}
		s.pos++
		n++
	}
	return n, n > 0
}

func (s *sliceStreamer) Err() error { return nil }

func TestTapSnapshotOrder(t *testing.T) {
	src := &sliceStreamer{vals: []float64{1, 2, 3, 4, 5, 6}}
	tap := newLevelTap(src, 4)

	buf := make([][2]float64, 6)
	if n, _ := tap.Stream(buf); n != 6 {
		t.Fatalf("streamed %d, want 6", n)
	}

	got := tap.snapshot(3)
	want := []float64{4, 5, 6}
	for i := range want {
		if got[i][0] != want[i] {
			t.Errorf("snapshot[%d] = %v, want %v", i, got[i][0], want[i])
		}
	}
	if len(tap.snapshot(10)) != 4 {
		t.Error("snapshot not capped at ring size")
	}
}

func TestNoiseFollowsIntensity(t *testing.T) {
	n := NewNoise(44100, 1)
	buf := make([][2]float64, 4096)

	n.SetIntensity(0)
	n.Stream(buf)
	for i, s := range buf {
		if s[0] != 0 || s[1] != 0 {
			t.Fatalf("silent rain produced %v at %d", s, i)
		}
	}

	n.SetIntensity(1)
	n.Stream(buf)
	var energy float64
	for _, s := range buf {
		if math.Abs(s[0]) > 1 || math.Abs(s[1]) > 1 {
			t.Fatalf("sample %v out of range", s)
		}
		energy += s[0]*s[0] + s[1]*s[1]
	}
	if energy == 0 {
		t.Error("full intensity produced silence")
	}

	n.SetIntensity(3)
	if n.Intensity() != 1 {
		t.Errorf("Intensity() = %v, want clamp to 1", n.Intensity())
	}
}

func TestPlayerLevel(t *testing.T) {
	p, err := NewPlayer(config.AudioConfig{SampleRate: 44100}, quietLogger())
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}
	defer p.Close()

	p.SetIntensity(0)
	buf := make([][2]float64, config.VisualRingSize)
	p.ctrl.Stream(buf)
	if lvl := p.Level(); lvl != 0 {
		t.Errorf("Level() with silent rain = %v", lvl)
	}

	p.SetIntensity(1)
	p.ctrl.Stream(buf)
	if lvl := p.Level(); lvl <= 0 {
		t.Errorf("Level() with heavy rain = %v, want > 0", lvl)
	}

	if !p.ToggleMute() {
		t.Error("first ToggleMute did not mute")
	}
	p.SetPaused(true)
	p.ctrl.Stream(buf)
	for _, s := range buf[:16] {
		if s != [2]float64{} {
			t.Fatalf("paused chain produced %v", s)
		}
	}
}

func TestPlayerSample(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loop.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	format := beep.Format{SampleRate: 22050, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, beep.Silence(2205), format); err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	f.Close()

	p, err := NewPlayer(config.AudioConfig{SampleRate: 44100, Sample: path}, quietLogger())
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}
	defer p.Close()

	buf := make([][2]float64, 8192)
	if n, ok := p.ctrl.Stream(buf); n != len(buf) || !ok {
		t.Errorf("Stream = %d, %v; the loop should never run dry", n, ok)
	}

	for _, bad := range []string{filepath.Join(dir, "missing.wav"), filepath.Join(dir, "rain.ogg")} {
		if _, err := NewPlayer(config.AudioConfig{SampleRate: 44100, Sample: bad}, quietLogger()); err == nil {
			t.Errorf("NewPlayer(%s) succeeded", bad)
		}
	}
}
