package game

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

// hueColor converts HSV (hue in degrees, any range) to premultiplied RGBA.
func hueColor(h, s, v float64, alpha uint8) color.RGBA {
	c := colorful.Hsv(math.Mod(math.Mod(h, 360)+360, 360), s, v).Clamped()
	r, g, b := c.RGB255()
	return color.RGBA{R: premul(r, alpha), G: premul(g, alpha), B: premul(b, alpha), A: alpha}
}

// premul scales a straight-alpha channel for color.RGBA.
func premul(c, a uint8) uint8 {
	return uint8(uint16(c) * uint16(a) / 255)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// formatDuration formats a duration as MM:SS
func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// intensity maps the streaks drawn last frame to an audio intensity.
// A thousand visible streaks is a downpour.
func intensity(drawn int) float64 {
	return clamp01(math.Sqrt(float64(drawn) / 1000))
}
