// Package game is the ebiten front-end: a window split into rain panes
// with a small HUD and an audio ambience that follows the rain.
package game

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/ncruces/zenity"

	"github.com/iburimskiy/rain-visualization/internal/ambience"
	"github.com/iburimskiy/rain-visualization/internal/config"
	"github.com/iburimskiy/rain-visualization/internal/rain"
	"github.com/iburimskiy/rain-visualization/internal/telemetry"
)

var paneKeys = []ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5,
	ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
}

type pane struct {
	name    string
	surface *paneSurface
}

// presetResult carries the outcome of the file dialog back to Update.
type presetResult struct {
	path string
	cfg  rain.Config
	err  error
}

// Game implements ebiten.Game.
type Game struct {
	cfg      *config.Config
	sched    *rain.Scheduler
	panes    []*pane
	player   *ambience.Player
	recorder *telemetry.Recorder
	logger   *slog.Logger

	width, height int
	needsLayout   bool

	// HUD
	started      time.Time
	colorPhase   float64
	level        float64
	muted        bool
	presetName   string
	buttonHover  bool
	buttonActive bool

	// dialog
	dialogOpen bool
	presets    chan presetResult

	lastErr error
}

// Options wires collaborators into a Game. Player may be nil to run silent.
type Options struct {
	Config   *config.Config
	Player   *ambience.Player
	Recorder *telemetry.Recorder
	Logger   *slog.Logger
	Clock    rain.Clock
	Seed     uint64
}

// NewGame attaches one rain instance per configured pane.
func NewGame(opts Options) (*Game, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config

	schedOpts := []rain.Option{rain.WithLogger(logger)}
	if opts.Recorder != nil {
		schedOpts = append(schedOpts, rain.WithFrameHook(opts.Recorder.Observe))
	}
	if opts.Seed != 0 {
		seed := opts.Seed
		schedOpts = append(schedOpts, rain.WithRandSource(func(string) rain.Rand {
			seed++
			return rain.NewRand(seed)
		}))
	}

	g := &Game{
		cfg:      cfg,
		sched:    rain.NewScheduler(opts.Clock, schedOpts...),
		player:   opts.Player,
		recorder: opts.Recorder,
		logger:   logger,
		width:    cfg.Window.Width,
		height:   cfg.Window.Height,
		started:  time.Now(),
		presets:  make(chan presetResult, 1),
	}
	if len(cfg.Panes) == 1 {
		g.presetName = cfg.Panes[0].Preset
	}

	rects := cfg.PaneRects(g.width, g.height)
	for i, r := range rects {
		rc, err := cfg.PaneRain(i)
		if err != nil {
			return nil, err
		}
		p := &pane{name: cfg.Panes[i].Name, surface: newPaneSurface(r)}
		if _, err := g.sched.Attach(p.name, p.surface, rc); err != nil {
			return nil, fmt.Errorf("attaching pane %q: %w", p.name, err)
		}
		g.panes = append(g.panes, p)
	}
	return g, nil
}

func (g *Game) Update() error {
	if err := g.handleInput(); err != nil {
		return err
	}
	g.pollPreset()

	if g.needsLayout {
		g.relayout()
	}

	g.sched.Tick()
	g.prunePanes()

	drawn := 0
	for _, in := range g.sched.Instances() {
		if in.Running() {
			drawn += in.Stats().Drawn
		}
	}
	if g.player != nil {
		g.player.SetIntensity(intensity(drawn))
		g.level = g.player.Level()
	}
	g.colorPhase += config.ColorShiftSpeed

	return nil
}

func (g *Game) handleInput() error {
	mouseX, mouseY := ebiten.CursorPosition()
	g.buttonHover = mouseX >= config.ButtonX && mouseX <= config.ButtonX+config.ButtonWidth &&
		mouseY >= config.ButtonY && mouseY <= config.ButtonY+config.ButtonHeight

	if g.buttonHover && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.buttonActive = true
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		if g.buttonActive && g.buttonHover {
			g.openPresetDialog()
		}
		g.buttonActive = false
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape), inpututil.IsKeyJustPressed(ebiten.KeyQ):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.toggleAll()
	case inpututil.IsKeyJustPressed(ebiten.KeyO):
		g.openPresetDialog()
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		if g.player != nil {
			g.muted = g.player.ToggleMute()
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.closeLastPane()
	}

	for i, k := range paneKeys {
		if inpututil.IsKeyJustPressed(k) {
			g.togglePane(i)
		}
	}
	return nil
}

func (g *Game) toggleAll() {
	running := false
	for _, in := range g.sched.Instances() {
		running = running || in.Running()
	}
	g.sched.SetAll(!running)
	if g.player != nil {
		g.player.SetPaused(running)
	}
}

func (g *Game) togglePane(i int) {
	if i >= len(g.panes) {
		return
	}
	if in, ok := g.sched.Get(g.panes[i].name); ok {
		g.logger.Debug("pane toggled", "pane", g.panes[i].name, "running", in.Toggle())
	}
}

// closeLastPane disposes the rightmost pane; the scheduler drops its
// instance on the next tick.
func (g *Game) closeLastPane() {
	if len(g.panes) <= 1 {
		return
	}
	g.panes[len(g.panes)-1].surface.dispose()
}

// prunePanes forgets panes whose instance the scheduler has dropped and
// gives their space to the others.
func (g *Game) prunePanes() {
	kept := g.panes[:0]
	for _, p := range g.panes {
		if _, ok := g.sched.Get(p.name); ok {
			kept = append(kept, p)
		}
	}
	if len(kept) != len(g.panes) {
		g.panes = kept
		g.needsLayout = true
	}
}

func (g *Game) relayout() {
	g.needsLayout = false
	weights := &config.Config{}
	for _, p := range g.panes {
		for _, pc := range g.cfg.Panes {
			if pc.Name == p.name {
				weights.Panes = append(weights.Panes, pc)
			}
		}
	}
	for i, r := range weights.PaneRects(g.width, g.height) {
		g.panes[i].surface.setRect(r)
	}
	g.sched.ResizeAll()
	g.logger.Debug("layout changed", "width", g.width, "height", g.height, "panes", len(g.panes))
}

// openPresetDialog asks for a preset file without blocking the game loop.
func (g *Game) openPresetDialog() {
	if g.dialogOpen {
		return
	}
	g.dialogOpen = true
	go func() {
		filename, err := zenity.SelectFile(
			zenity.Title("Open Rain Preset"),
			zenity.FileFilters{{
				Name:     "Rain preset",
				Patterns: []string{"*.yaml", "*.yml"},
			}},
		)
		if err != nil {
			g.presets <- presetResult{err: err}
			return
		}
		rc, err := config.LoadPreset(filename)
		g.presets <- presetResult{path: filename, cfg: rc, err: err}
	}()
}

func (g *Game) pollPreset() {
	select {
	case res := <-g.presets:
		g.dialogOpen = false
		if res.err != nil {
			if !errors.Is(res.err, zenity.ErrCanceled) {
				g.lastErr = res.err
				g.logger.Warn("preset not loaded", "error", res.err)
			}
			return
		}
		g.applyPreset(res.path, res.cfg)
	default:
	}
}

// applyPreset replaces the rain in every pane, keeping the surfaces.
func (g *Game) applyPreset(name string, rc rain.Config) {
	for _, p := range g.panes {
		g.sched.Deregister(p.name)
		if _, err := g.sched.Attach(p.name, p.surface, rc); err != nil {
			g.lastErr = err
			g.logger.Warn("preset not applied", "pane", p.name, "error", err)
		}
	}
	g.presetName = name
	g.lastErr = nil
	g.logger.Info("preset applied", "path", name)
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.cfg.Window.Background.NRGBA)

	for i, p := range g.panes {
		if p.surface.img == nil {
			continue
		}
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(p.surface.rect.Min.X), float64(p.surface.rect.Min.Y))
		screen.DrawImage(p.surface.img, op)

		if i > 0 {
			x := float32(p.surface.rect.Min.X)
			vector.StrokeLine(screen, x, 0, x, float32(g.height), 1, color.RGBA{R: 60, G: 70, B: 90, A: 255}, false)
		}
		g.drawPaneLabel(screen, i, p)
	}

	g.drawButton(screen)
	g.drawMeter(screen)
	ebitenutil.DebugPrintAt(screen, g.status(), 12, 12)
}

func (g *Game) drawPaneLabel(screen *ebiten.Image, i int, p *pane) {
	in, ok := g.sched.Get(p.name)
	if !ok {
		return
	}
	label := fmt.Sprintf("%d %s", i+1, p.name)
	if !in.Running() {
		label += " (paused)"
	}
	ebitenutil.DebugPrintAt(screen, label, p.surface.rect.Min.X+8, g.height-20)
}

func (g *Game) drawButton(screen *ebiten.Image) {
	var bgColor color.Color
	if g.buttonActive {
		bgColor = color.RGBA{R: 60, G: 80, B: 120, A: 255} // Pressed
	} else if g.buttonHover {
		bgColor = color.RGBA{R: 80, G: 100, B: 140, A: 255} // Hovered
	} else {
		bgColor = color.RGBA{R: 100, G: 120, B: 160, A: 255} // Normal
	}

	vector.DrawFilledRect(screen, config.ButtonX, config.ButtonY, config.ButtonWidth, config.ButtonHeight, bgColor, false)
	borderColor := color.RGBA{R: 150, G: 170, B: 200, A: 255}
	vector.StrokeRect(screen, config.ButtonX, config.ButtonY, config.ButtonWidth, config.ButtonHeight, 2, borderColor, false)

	text := "Open Preset"
	textWidth := len(text) * 6 // debug font glyphs are 6px wide
	textX := config.ButtonX + (config.ButtonWidth-textWidth)/2
	textY := config.ButtonY + (config.ButtonHeight-16)/2
	ebitenutil.DebugPrintAt(screen, text, textX, textY)
}

// drawMeter shows the ambience level under the button.
func (g *Game) drawMeter(screen *ebiten.Image) {
	if g.player == nil {
		return
	}
	x := float32(config.ButtonX)
	y := float32(config.ButtonY + config.ButtonHeight + 12)

	vector.DrawFilledRect(screen, x, y, config.MeterWidth, config.MeterHeight, color.RGBA{R: 20, G: 25, B: 35, A: 200}, false)
	fill := float32(clamp01(g.level)) * config.MeterWidth
	if fill > 0 && !g.muted {
		hue := 200 + 160*g.level + g.colorPhase*360
		vector.DrawFilledRect(screen, x, y, fill, config.MeterHeight, hueColor(hue, 0.6, 0.9, 220), false)
	}
	vector.StrokeRect(screen, x, y, config.MeterWidth, config.MeterHeight, 1, color.RGBA{R: 100, G: 110, B: 130, A: 255}, false)
}

func (g *Game) status() string {
	running := 0
	for _, in := range g.sched.Instances() {
		if in.Running() {
			running++
		}
	}

	var status string
	switch {
	case running == 0:
		status = "Paused - Space to play"
	case running < g.sched.Len():
		status = fmt.Sprintf("%d of %d panes raining - Space to pause all", running, g.sched.Len())
	default:
		status = "Raining - Space to pause"
	}
	if g.presetName != "" {
		status += " | " + g.presetName
	}
	status += " | " + formatDuration(time.Since(g.started))
	if g.muted {
		status += " | muted"
	}
	if g.lastErr != nil {
		status += " | Error: " + g.lastErr.Error()
	}
	return status
}

// Layout follows the window so panes always fill it.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.needsLayout = true
	}
	return outsideWidth, outsideHeight
}

// Close releases audio resources.
func (g *Game) Close() {
	if g.player != nil {
		g.player.Close()
	}
}
