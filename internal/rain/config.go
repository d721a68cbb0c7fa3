package rain

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// MaxCount bounds the particle population of one instance.
	MaxCount = 100000

	// MaxSpread is the widest emission cone in degrees.
	MaxSpread = 90

	// DebugSquareSize is the side of the debug marker drawn at each head.
	DebugSquareSize = 4
)

// DebugColor fills the debug markers.
var DebugColor = color.NRGBA{R: 255, G: 0, B: 0, A: 255}

// Boundary selects what happens to a particle that leaves the surface.
type Boundary uint8

const (
	BoundaryWrap Boundary = iota
	BoundaryRespawn
)

var boundaryNames = map[Boundary]string{
	BoundaryWrap:    "wrap",
	BoundaryRespawn: "respawn",
}

func (b Boundary) String() string {
	if s, ok := boundaryNames[b]; ok {
		return s
	}
	return fmt.Sprintf("Boundary(%d)", uint8(b))
}

func (b *Boundary) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	for k, v := range boundaryNames {
		if strings.EqualFold(s, v) {
			*b = k
			return nil
		}
	}
	return fmt.Errorf("unknown boundary %q (want wrap or respawn)", s)
}

func (b Boundary) MarshalYAML() (interface{}, error) {
	return b.String(), nil
}

// Emission selects how fresh velocities are produced.
type Emission uint8

const (
	// EmitCone jitters the wind by shear and fans the speed over the spread cone.
	EmitCone Emission = iota
	// EmitDirect samples each axis from the configured velocity range.
	EmitDirect
)

var emissionNames = map[Emission]string{
	EmitCone:   "cone",
	EmitDirect: "direct",
}

func (e Emission) String() string {
	if s, ok := emissionNames[e]; ok {
		return s
	}
	return fmt.Sprintf("Emission(%d)", uint8(e))
}

func (e *Emission) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	for k, v := range emissionNames {
		if strings.EqualFold(s, v) {
			*e = k
			return nil
		}
	}
	return fmt.Errorf("unknown emission %q (want cone or direct)", s)
}

func (e Emission) MarshalYAML() (interface{}, error) {
	return e.String(), nil
}

// Vec2 is a 2D vector in pixels (per second, or per second squared).
// In YAML it may be written as a scalar, which sets X only.
type Vec2 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (v *Vec2) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var x float64
		if err := value.Decode(&x); err != nil {
			return err
		}
		*v = Vec2{X: x}
		return nil
	}
	type plain Vec2
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*v = Vec2(p)
	return nil
}

// VelocityRange bounds direct emission per axis.
type VelocityRange struct {
	Min Vec2 `yaml:"min"`
	Max Vec2 `yaml:"max"`
}

// Config describes one rain instance.
type Config struct {
	Count     int           `yaml:"count"`
	Color     Color         `yaml:"color"`
	LineWidth float64       `yaml:"line_width"`
	Scale     float64       `yaml:"scale"` // streak length multiplier
	Gravity   float64       `yaml:"gravity"`
	Wind      Vec2          `yaml:"wind"`
	Gust      Vec2          `yaml:"gust"`  // wind acceleration applied every step
	Shear     float64       `yaml:"shear"` // wind variance fraction, [0,1]
	Speed     float64       `yaml:"speed"`
	Spread    float64       `yaml:"spread"` // cone width in degrees, [0,90]
	Velocity  VelocityRange `yaml:"velocity"`
	Boundary  Boundary      `yaml:"boundary"`
	Emission  Emission      `yaml:"emission"`
	Debug     bool          `yaml:"debug"`
}

// DefaultConfig mirrors the classic plugin defaults.
func DefaultConfig() Config {
	return Config{
		Count:     200,
		Color:     MustColor("rgba(255, 255, 255, 0.6)"),
		LineWidth: 0.5,
		Scale:     1.25,
		Speed:     2000,
		Velocity: VelocityRange{
			Min: Vec2{X: -50, Y: 1500},
			Max: Vec2{X: 50, Y: 2500},
		},
		Boundary: BoundaryWrap,
		Emission: EmitCone,
	}
}

// Sanitize clamps every field into its domain and reports the names of
// the fields it had to change.
func (c Config) Sanitize() (Config, []string) {
	var changed []string
	note := func(name string, ok bool) {
		if !ok {
			changed = append(changed, name)
		}
	}

	n := clampInt(c.Count, 0, MaxCount)
	note("count", n == c.Count)
	c.Count = n

	fix := func(name string, v *float64, lo, hi float64) {
		nv := *v
		if !finite(nv) {
			nv = clamp(0, lo, hi)
		}
		nv = clamp(nv, lo, hi)
		note(name, nv == *v)
		*v = nv
	}
	fix("line_width", &c.LineWidth, 0, math.MaxFloat64)
	fix("scale", &c.Scale, 0, math.MaxFloat64)
	fix("gravity", &c.Gravity, 0, math.MaxFloat64)
	fix("speed", &c.Speed, 0, math.MaxFloat64)
	fix("shear", &c.Shear, 0, 1)
	fix("spread", &c.Spread, 0, MaxSpread)
	fix("wind.x", &c.Wind.X, -math.MaxFloat64, math.MaxFloat64)
	fix("wind.y", &c.Wind.Y, -math.MaxFloat64, math.MaxFloat64)
	fix("gust.x", &c.Gust.X, -math.MaxFloat64, math.MaxFloat64)
	fix("gust.y", &c.Gust.Y, -math.MaxFloat64, math.MaxFloat64)

	if c.Velocity.Min.X > c.Velocity.Max.X {
		c.Velocity.Min.X, c.Velocity.Max.X = c.Velocity.Max.X, c.Velocity.Min.X
		changed = append(changed, "velocity.x")
	}
	if c.Velocity.Min.Y > c.Velocity.Max.Y {
		c.Velocity.Min.Y, c.Velocity.Max.Y = c.Velocity.Max.Y, c.Velocity.Min.Y
		changed = append(changed, "velocity.y")
	}

	if _, ok := boundaryNames[c.Boundary]; !ok {
		c.Boundary = BoundaryWrap
		changed = append(changed, "boundary")
	}
	if _, ok := emissionNames[c.Emission]; !ok {
		c.Emission = EmitCone
		changed = append(changed, "emission")
	}

	return c, changed
}

// Scaled returns c with every distance-based quantity multiplied by f,
// for surfaces whose unit is not a pixel (terminal cells, for one).
// Streak scale is a duration and is left alone.
func (c Config) Scaled(f float64) Config {
	c.Speed *= f
	c.Gravity *= f
	c.Wind = Vec2{X: c.Wind.X * f, Y: c.Wind.Y * f}
	c.Gust = Vec2{X: c.Gust.X * f, Y: c.Gust.Y * f}
	c.Velocity.Min = Vec2{X: c.Velocity.Min.X * f, Y: c.Velocity.Min.Y * f}
	c.Velocity.Max = Vec2{X: c.Velocity.Max.X * f, Y: c.Velocity.Max.Y * f}
	return c
}
