package rain

// Render clears s and draws every visible streak of st in one stroke.
// A streak is skipped when both ends lie past the same edge. It returns
// the number of streaks drawn.
func Render(st *Store, c *Config, b Bounds, s Surface) int {
	s.Clear()

	pos, vel := st.Positions, st.Velocities
	scale := c.Scale
	drawn := 0

	for i, n := 0, st.Count(); i < n; i++ {
		xi, yi := 2*i, 2*i+1

		x0, y0 := pos[xi], pos[yi]
		x1, y1 := x0-vel[xi]*scale, y0-vel[yi]*scale

		if x0 < 0 && x1 < 0 ||
			y0 < 0 && y1 < 0 ||
			x0 > b.Width && x1 > b.Width ||
			y0 > b.Height && y1 > b.Height {
			continue
		}

		s.MoveTo(x0, y0)
		s.LineTo(x1, y1)
		drawn++
	}

	s.Stroke(c.Color.NRGBA, c.LineWidth)

	if c.Debug {
		for i, n := 0, st.Count(); i < n; i++ {
			s.FillRect(pos[2*i], pos[2*i+1], DebugSquareSize, DebugSquareSize, DebugColor)
		}
	}

	return drawn
}
