package rain

import (
	"errors"
	"image/color"
)

var (
	// ErrNoSurface is returned when an instance is created without a surface.
	ErrNoSurface = errors.New("rain: no drawing surface")
	// ErrEmptySurface is returned when a surface has no drawable area.
	ErrEmptySurface = errors.New("rain: drawing surface has zero size")
	// ErrNonFinite reports particles that had to be re-emitted after
	// their state stopped being a finite number.
	ErrNonFinite = errors.New("rain: non-finite particle state")
)

// Surface is a 2D drawing target with a streaming line primitive.
// MoveTo/LineTo accumulate a path that Stroke draws in one call.
type Surface interface {
	Size() (width, height int)
	Clear()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	Stroke(clr color.Color, width float64)
	FillRect(x, y, w, h float64, clr color.Color)
}

// Disposer is implemented by surfaces that can go away under an
// instance, such as a closed pane. Disposed surfaces are deregistered.
type Disposer interface {
	Disposed() bool
}

// Resizer is implemented by surfaces that follow their owner's layout
// and need to be told when it changes.
type Resizer interface {
	Resize()
}

func surfaceBounds(s Surface) Bounds {
	w, h := s.Size()
	return Bounds{Width: float64(w), Height: float64(h)}
}
