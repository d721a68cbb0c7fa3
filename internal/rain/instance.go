package rain

import (
	"fmt"
)

// FrameStats describes the last frame of one instance.
type FrameStats struct {
	Key       string
	DT        float64
	Count     int
	Drawn     int
	Wraps     int
	Respawns  int
	NonFinite int
}

// Instance is one rain simulation bound to one surface.
type Instance struct {
	key     string
	cfg     Config
	store   *Store
	surface Surface
	emitter *Emitter
	stepper *Stepper
	bounds  Bounds
	running bool
	last    FrameStats
}

// NewInstance validates the surface, sanitizes cfg and seeds the
// particles over the surface.
func NewInstance(key string, s Surface, cfg Config, rng Rand) (*Instance, error) {
	if s == nil {
		return nil, fmt.Errorf("instance %q: %w", key, ErrNoSurface)
	}
	b := surfaceBounds(s)
	if b.Empty() {
		return nil, fmt.Errorf("instance %q: surface is %vx%v: %w", key, b.Width, b.Height, ErrEmptySurface)
	}
	if rng == nil {
		rng = NewRand(0)
	}

	cfg, _ = cfg.Sanitize()
	in := &Instance{
		key:     key,
		cfg:     cfg,
		store:   NewStore(cfg.Count),
		surface: s,
		bounds:  b,
		running: true,
	}
	in.emitter = NewEmitter(&in.cfg, rng)
	in.stepper = NewStepper(&in.cfg, in.emitter, rng)
	in.store.Seed(in.emitter, int(b.Width), int(b.Height))

	return in, nil
}

func (in *Instance) Key() string      { return in.key }
func (in *Instance) Config() Config   { return in.cfg }
func (in *Instance) Store() *Store    { return in.store }
func (in *Instance) Surface() Surface { return in.surface }
func (in *Instance) Bounds() Bounds   { return in.bounds }

// Stats returns the statistics of the last frame that ran.
func (in *Instance) Stats() FrameStats { return in.last }

// Running reports whether the instance advances and draws on each tick.
func (in *Instance) Running() bool { return in.running }

// Play resumes a paused instance where it left off.
func (in *Instance) Play() { in.running = true }

// Pause freezes the instance without discarding its particles.
func (in *Instance) Pause() { in.running = false }

// Toggle flips between Play and Pause and returns the new state.
func (in *Instance) Toggle() bool {
	in.running = !in.running
	return in.running
}

// Resize lets the surface follow its owner's layout and re-reads its
// size. Particles outside the new area are recycled by the next step.
func (in *Instance) Resize() {
	if r, ok := in.surface.(Resizer); ok {
		r.Resize()
	}
	in.bounds = surfaceBounds(in.surface)
}

func (in *Instance) disposed() bool {
	d, ok := in.surface.(Disposer)
	return ok && d.Disposed()
}

// Frame steps the particles by dt seconds and redraws them. A failing
// frame leaves the surface as it was and reports why.
func (in *Instance) Frame(dt float64) (stats FrameStats, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("instance %q: panic during frame: %v", in.key, r)
		}
	}()

	in.bounds = surfaceBounds(in.surface)
	if in.bounds.Empty() {
		return FrameStats{}, fmt.Errorf("instance %q: %w", in.key, ErrEmptySurface)
	}

	in.stepper.Step(in.store, in.bounds, dt)
	st := in.stepper.Stats
	stats = FrameStats{
		Key:       in.key,
		DT:        dt,
		Count:     in.store.Count(),
		Wraps:     st.Wraps,
		Respawns:  st.Respawns,
		NonFinite: st.NonFinite,
	}
	if st.NonFinite > 0 {
		in.last = stats
		return stats, fmt.Errorf("instance %q: %d particles re-emitted: %w", in.key, st.NonFinite, ErrNonFinite)
	}

	stats.Drawn = Render(in.store, &in.cfg, in.bounds, in.surface)
	in.last = stats
	return stats, nil
}
