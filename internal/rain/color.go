package rain

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// Color is a stroke color that reads and writes CSS-like strings in YAML.
type Color struct {
	color.NRGBA
	src string
}

var namedColors = map[string]color.NRGBA{
	"white": {R: 255, G: 255, B: 255, A: 255},
	"black": {R: 0, G: 0, B: 0, A: 255},
	"red":   {R: 255, G: 0, B: 0, A: 255},
	"green": {R: 0, G: 128, B: 0, A: 255},
	"blue":  {R: 0, G: 0, B: 255, A: 255},
	"gray":  {R: 128, G: 128, B: 128, A: 255},
	"grey":  {R: 128, G: 128, B: 128, A: 255},
	"cyan":  {R: 0, G: 255, B: 255, A: 255},
}

// MustColor parses s and panics on failure. Meant for literals.
func MustColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseColor accepts #rgb, #rrggbb, rgb(r, g, b), rgba(r, g, b, a) and a
// few color names.
func ParseColor(s string) (Color, error) {
	str := strings.ToLower(strings.TrimSpace(s))
	if str == "" {
		return Color{}, fmt.Errorf("empty color")
	}

	if c, ok := namedColors[str]; ok {
		return Color{NRGBA: c, src: s}, nil
	}

	if strings.HasPrefix(str, "#") {
		cf, err := colorful.Hex(str)
		if err != nil {
			return Color{}, fmt.Errorf("color %q: %w", s, err)
		}
		r, g, b := cf.RGB255()
		return Color{NRGBA: color.NRGBA{R: r, G: g, B: b, A: 255}, src: s}, nil
	}

	var args string
	var withAlpha bool
	switch {
	case strings.HasPrefix(str, "rgba(") && strings.HasSuffix(str, ")"):
		args, withAlpha = str[5:len(str)-1], true
	case strings.HasPrefix(str, "rgb(") && strings.HasSuffix(str, ")"):
		args = str[4 : len(str)-1]
	default:
		return Color{}, fmt.Errorf("color %q: unrecognized format", s)
	}

	parts := strings.Split(args, ",")
	want := 3
	if withAlpha {
		want = 4
	}
	if len(parts) != want {
		return Color{}, fmt.Errorf("color %q: want %d components, got %d", s, want, len(parts))
	}

	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return Color{}, fmt.Errorf("color %q: %w", s, err)
		}
		ch[i] = uint8(clamp(v, 0, 255))
	}
	alpha := uint8(255)
	if withAlpha {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return Color{}, fmt.Errorf("color %q: %w", s, err)
		}
		alpha = uint8(clamp(a, 0, 1)*255 + 0.5)
	}

	return Color{NRGBA: color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: alpha}, src: s}, nil
}

// String returns the text the color was parsed from, or a hex form.
func (c Color) String() string {
	if c.src != "" {
		return c.src
	}
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %.3g)", c.R, c.G, c.B, float64(c.A)/255)
}

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Color) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}
