package term

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/iburimskiy/rain-visualization/internal/config"
	"github.com/iburimskiy/rain-visualization/internal/rain"
)

// CellPixels is how many window pixels one terminal cell stands for when
// converting pixel-based rain options.
const CellPixels = 16

// App runs rain panes in a terminal.
type App struct {
	screen   tcell.Screen
	cfg      *config.Config
	sched    *rain.Scheduler
	surfaces []*Surface
	keys     []string
	logger   *slog.Logger
}

// NewApp attaches one rain instance per configured pane. The screen must
// already be initialized.
func NewApp(screen tcell.Screen, cfg *config.Config, sched *rain.Scheduler, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{screen: screen, cfg: cfg, sched: sched, logger: logger}

	w, h := screen.Size()
	for i, r := range cfg.PaneRects(w, h) {
		rc, err := cfg.PaneRain(i)
		if err != nil {
			return nil, err
		}
		surf := NewSurface(screen, r)
		key := cfg.Panes[i].Name
		if _, err := sched.Attach(key, surf, rc.Scaled(1.0/CellPixels)); err != nil {
			return nil, fmt.Errorf("attaching pane %q: %w", key, err)
		}
		a.surfaces = append(a.surfaces, surf)
		a.keys = append(a.keys, key)
	}
	return a, nil
}

// HandleEvent applies one terminal event and reports whether to keep running.
func (a *App) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch r := ev.Rune(); {
		case r == 'q' || r == 'Q':
			return false
		case r == ' ':
			a.toggleAll()
		case r >= '1' && r <= '9':
			a.togglePane(int(r - '1'))
		case r == 'c' || r == 'C':
			a.closeLastPane()
		}

	case *tcell.EventResize:
		a.relayout()
	}
	return true
}

func (a *App) toggleAll() {
	running := false
	for _, in := range a.sched.Instances() {
		running = running || in.Running()
	}
	a.sched.SetAll(!running)
}

func (a *App) togglePane(i int) {
	if i >= len(a.keys) {
		return
	}
	if in, ok := a.sched.Get(a.keys[i]); ok {
		a.logger.Debug("pane toggled", "pane", a.keys[i], "running", in.Toggle())
	}
}

// closeLastPane disposes the rightmost pane; the scheduler drops its
// instance on the next tick and the others take its columns.
func (a *App) closeLastPane() {
	n := len(a.surfaces)
	if n <= 1 {
		return
	}
	a.surfaces[n-1].Dispose()
	a.logger.Debug("pane closed", "pane", a.keys[n-1])
	a.surfaces = a.surfaces[:n-1]
	a.keys = a.keys[:n-1]
	a.relayout()
}

// paneRects lays out the panes that are still open.
func (a *App) paneRects(w, h int) []image.Rectangle {
	open := &config.Config{}
	for _, key := range a.keys {
		for _, pc := range a.cfg.Panes {
			if pc.Name == key {
				open.Panes = append(open.Panes, pc)
			}
		}
	}
	return open.PaneRects(w, h)
}

func (a *App) relayout() {
	w, h := a.screen.Size()
	for i, r := range a.paneRects(w, h) {
		a.surfaces[i].SetRect(r)
	}
	a.screen.Clear()
	a.sched.ResizeAll()
	a.logger.Debug("terminal resized", "cols", w, "rows", h)
}

// Run ticks the scheduler and shows the screen until ctx is done, the
// user quits or no pane is left.
func (a *App) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok || !a.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			if !a.sched.Tick() {
				return nil
			}
			a.screen.Show()
		}
	}
}
