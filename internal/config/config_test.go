package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/iburimskiy/rain-visualization/internal/rain"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Window.Width != WindowWidth || cfg.Window.Height != WindowHeight {
		t.Errorf("window = %dx%d, want %dx%d", cfg.Window.Width, cfg.Window.Height, WindowWidth, WindowHeight)
	}
	if len(cfg.Panes) != 1 || cfg.Panes[0].Name != "main" {
		t.Fatalf("panes = %+v", cfg.Panes)
	}

	rc, err := cfg.PaneRain(0)
	if err != nil {
		t.Fatalf("PaneRain: %v", err)
	}
	if rc != rain.DefaultConfig() {
		t.Errorf("classic pane = %+v, want plugin defaults", rc)
	}
}

func TestEmbeddedPresetsAreClean(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range cfg.PresetNames() {
		t.Run(name, func(t *testing.T) {
			rc, err := cfg.Preset(name)
			if err != nil {
				t.Fatalf("Preset: %v", err)
			}
			if _, changed := rc.Sanitize(); len(changed) != 0 {
				t.Errorf("preset needs clamping: %v", changed)
			}
		})
	}
}

func TestLoadOverlay(t *testing.T) {
	path := writeFile(t, "rain.yaml", `
window:
  width: 800
presets:
  mist:
    count: 50
    speed: 30
panes:
  - name: left
    preset: storm
    weight: 2
  - name: right
    preset: mist
    rain:
      debug: true
      wind: {x: 5, y: 1}
  - preset: drizzle
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Window.Width != 800 || cfg.Window.Height != WindowHeight {
		t.Errorf("window = %dx%d, want 800x%d", cfg.Window.Width, cfg.Window.Height, WindowHeight)
	}
	if _, ok := cfg.Presets["storm"]; !ok {
		t.Error("overlay dropped embedded presets")
	}
	if len(cfg.Panes) != 3 {
		t.Fatalf("panes = %d, want 3", len(cfg.Panes))
	}
	if cfg.Panes[2].Name != "pane-3" || cfg.Panes[2].Weight != 1 {
		t.Errorf("unnamed pane = %+v", cfg.Panes[2])
	}

	storm, err := cfg.PaneRain(0)
	if err != nil {
		t.Fatal(err)
	}
	if storm.Boundary != rain.BoundaryRespawn || storm.Count != 900 {
		t.Errorf("storm pane = %+v", storm)
	}

	mist, err := cfg.PaneRain(1)
	if err != nil {
		t.Fatal(err)
	}
	if mist.Count != 50 || mist.Speed != 30 || !mist.Debug || mist.Wind != (rain.Vec2{X: 5, Y: 1}) {
		t.Errorf("mist pane = %+v", mist)
	}
	if mist.Scale != rain.DefaultConfig().Scale {
		t.Errorf("mist pane lost default scale: %v", mist.Scale)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		is   error
	}{
		{"unknown preset", "panes:\n  - preset: hail\n", ErrUnknownPreset},
		{"no panes", "panes: []\n", nil},
		{"bad window", "window: {width: 0}\n", nil},
		{"bad yaml", "window: [\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "c.yaml", tt.body))
			if err == nil {
				t.Fatal("Load succeeded")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("err = %v, want %v", err, tt.is)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestUsePreset(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.UsePreset("snow"); err != nil {
		t.Fatalf("UsePreset: %v", err)
	}
	rc, err := cfg.PaneRain(0)
	if err != nil {
		t.Fatal(err)
	}
	if rc.Spread != 90 || rc.Speed != 60 {
		t.Errorf("snow = %+v", rc)
	}
	if err := cfg.UsePreset("sleet"); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("UsePreset(sleet) = %v", err)
	}
}

func TestPresetFileRoundTrip(t *testing.T) {
	want := rain.DefaultConfig()
	want.Count = 42
	want.Boundary = rain.BoundaryRespawn
	want.Emission = rain.EmitDirect
	want.Wind = rain.Vec2{X: -3, Y: 4}

	path := filepath.Join(t.TempDir(), "preset.yaml")
	if err := WriteYAML(path, want); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	got, err := LoadPreset(path)
	if err != nil {
		t.Fatalf("LoadPreset: %v", err)
	}
	if got != want {
		t.Errorf("LoadPreset = %+v, want %+v", got, want)
	}
}

func TestPaneRects(t *testing.T) {
	cfg := &Config{Panes: []PaneConfig{{Weight: 1}, {Weight: 2}, {Weight: 1}}}

	got := cfg.PaneRects(101, 50)
	if len(got) != 3 {
		t.Fatalf("rects = %d, want 3", len(got))
	}
	if got[0].Dx() != 25 || got[1].Dx() != 50 || got[2].Dx() != 26 {
		t.Errorf("widths = %d, %d, %d; want 25, 50, 26", got[0].Dx(), got[1].Dx(), got[2].Dx())
	}
	if got[1].Min.X != 25 || got[2].Max.X != 101 || got[2].Dy() != 50 {
		t.Errorf("rects = %v", got)
	}
}
