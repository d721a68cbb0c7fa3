// Package config loads window, audio and rain settings.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/iburimskiy/rain-visualization/internal/rain"
)

const (
	WindowWidth  = 1024
	WindowHeight = 512

	VisualRingSize  = 8192
	SmoothingFactor = 0.6

	// Button dimensions
	ButtonWidth  = 120
	ButtonHeight = 40
	ButtonX      = 20
	ButtonY      = 50

	// HUD
	MeterWidth      = 160
	MeterHeight     = 8
	ColorShiftSpeed = 0.002
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrUnknownPreset is returned when a pane names a preset that does not exist.
var ErrUnknownPreset = errors.New("unknown preset")

// Config holds everything the front-ends need.
type Config struct {
	Window    WindowConfig         `yaml:"window"`
	Audio     AudioConfig          `yaml:"audio"`
	Telemetry TelemetryConfig      `yaml:"telemetry"`
	Presets   map[string]yaml.Node `yaml:"presets"`
	Panes     []PaneConfig         `yaml:"panes"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Width      int        `yaml:"width"`
	Height     int        `yaml:"height"`
	Title      string     `yaml:"title"`
	Background rain.Color `yaml:"background"`
	TPS        int        `yaml:"tps"`
}

// AudioConfig holds ambience settings.
type AudioConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Volume     float64 `yaml:"volume"` // base-2 exponent, 0 = unity gain
	SampleRate int     `yaml:"sample_rate"`
	Sample     string  `yaml:"sample"` // optional wav/mp3/flac looped under the noise
}

// TelemetryConfig holds logging cadence.
type TelemetryConfig struct {
	LogEvery int `yaml:"log_every"` // frames between stats log lines, 0 = off
}

// PaneConfig is one rain region of the window. Rain options are layered:
// defaults, then the named preset, then Rain.
type PaneConfig struct {
	Name   string    `yaml:"name"`
	Preset string    `yaml:"preset"`
	Weight float64   `yaml:"weight"` // share of the window width
	Rain   yaml.Node `yaml:"rain"`
}

// Load reads the embedded defaults and overlays the file at path, if any.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Window.TPS <= 0 {
		c.Window.TPS = 60
	}
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = 44100
	}
	if len(c.Panes) == 0 {
		return errors.New("no panes configured")
	}
	for i := range c.Panes {
		p := &c.Panes[i]
		if p.Name == "" {
			p.Name = fmt.Sprintf("pane-%d", i+1)
		}
		if p.Weight <= 0 {
			p.Weight = 1
		}
		if p.Preset != "" {
			if _, ok := c.Presets[p.Preset]; !ok {
				return fmt.Errorf("pane %q: %w %q", p.Name, ErrUnknownPreset, p.Preset)
			}
		}
	}
	return nil
}

// PresetNames returns the preset names in sorted order.
func (c *Config) PresetNames() []string {
	names := make([]string, 0, len(c.Presets))
	for n := range c.Presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Preset returns the rain options of a named preset over the defaults.
func (c *Config) Preset(name string) (rain.Config, error) {
	rc := rain.DefaultConfig()
	if name == "" {
		return rc, nil
	}
	node, ok := c.Presets[name]
	if !ok {
		return rc, fmt.Errorf("%w %q", ErrUnknownPreset, name)
	}
	if err := decodeOver(&node, &rc); err != nil {
		return rc, fmt.Errorf("preset %q: %w", name, err)
	}
	return rc, nil
}

// UsePreset points every pane at the named preset.
func (c *Config) UsePreset(name string) error {
	if _, ok := c.Presets[name]; !ok {
		return fmt.Errorf("%w %q", ErrUnknownPreset, name)
	}
	for i := range c.Panes {
		c.Panes[i].Preset = name
	}
	return nil
}

// PaneRain returns the layered rain options of pane i.
func (c *Config) PaneRain(i int) (rain.Config, error) {
	p := c.Panes[i]
	rc, err := c.Preset(p.Preset)
	if err != nil {
		return rc, err
	}
	if err := decodeOver(&p.Rain, &rc); err != nil {
		return rc, fmt.Errorf("pane %q: %w", p.Name, err)
	}
	return rc, nil
}

// LoadPreset reads a standalone rain options file over the defaults.
func LoadPreset(path string) (rain.Config, error) {
	rc := rain.DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return rc, fmt.Errorf("reading preset file: %w", err)
	}
	if err := yaml.Unmarshal(data, &rc); err != nil {
		return rc, fmt.Errorf("parsing preset file: %w", err)
	}
	return rc, nil
}

// WriteYAML writes the rain options to path, e.g. to save a tuned preset.
func WriteYAML(path string, rc rain.Config) error {
	data, err := yaml.Marshal(rc)
	if err != nil {
		return fmt.Errorf("marshaling preset: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func decodeOver(node *yaml.Node, rc *rain.Config) error {
	if node.Kind == 0 {
		return nil
	}
	return node.Decode(rc)
}
