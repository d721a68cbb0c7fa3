package config

import "image"

// PaneRects splits a w x h area into side-by-side columns, one per pane,
// sized by pane weight. The last column absorbs rounding.
func (c *Config) PaneRects(w, h int) []image.Rectangle {
	rects := make([]image.Rectangle, len(c.Panes))
	var total float64
	for _, p := range c.Panes {
		total += p.Weight
	}
	if total <= 0 {
		return rects
	}

	x := 0
	for i, p := range c.Panes {
		pw := int(float64(w) * p.Weight / total)
		if i == len(c.Panes)-1 {
			pw = w - x
		}
		rects[i] = image.Rect(x, 0, x+pw, h)
		x += pw
	}
	return rects
}
