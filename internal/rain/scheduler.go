package rain

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Clock supplies the scheduler's notion of now.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock. time.Now carries a monotonic
// reading, so deltas are immune to clock adjustments.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FrameHook observes every successful instance frame.
type FrameHook func(frame uint64, stats FrameStats)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger used for attach, detach and frame failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithRandSource sets the factory that gives each new instance its RNG.
func WithRandSource(f func(key string) Rand) Option {
	return func(s *Scheduler) { s.newRand = f }
}

// WithFrameHook registers a callback run after each instance frame.
func WithFrameHook(h FrameHook) Option {
	return func(s *Scheduler) { s.hook = h }
}

// Scheduler owns the live instances and advances them together.
// It is idle while empty and running otherwise. It is not safe for
// concurrent use; drive it from one goroutine.
type Scheduler struct {
	clock     Clock
	logger    *slog.Logger
	newRand   func(key string) Rand
	hook      FrameHook
	order     []string
	instances map[string]*Instance
	last      time.Time
	frame     uint64
}

// NewScheduler returns an idle scheduler reading time from clock.
func NewScheduler(clock Clock, opts ...Option) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	s := &Scheduler{
		clock:     clock,
		logger:    slog.Default(),
		newRand:   func(string) Rand { return NewRand(0) },
		instances: make(map[string]*Instance),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach returns the instance registered under key, creating it on
// surface with cfg if there is none. Attaching an existing key is a no-op.
func (s *Scheduler) Attach(key string, surface Surface, cfg Config) (*Instance, error) {
	if in, ok := s.instances[key]; ok {
		return in, nil
	}

	if _, changed := cfg.Sanitize(); len(changed) > 0 {
		s.logger.Debug("clamped rain options", "instance", key, "fields", changed)
	}

	in, err := NewInstance(key, surface, cfg, s.newRand(key))
	if err != nil {
		return nil, err
	}

	if len(s.order) == 0 {
		s.last = s.clock.Now()
	}
	s.instances[key] = in
	s.order = append(s.order, key)

	s.logger.Info("rain attached",
		"instance", key,
		"count", in.cfg.Count,
		"boundary", in.cfg.Boundary,
		"emission", in.cfg.Emission,
		"width", in.bounds.Width,
		"height", in.bounds.Height,
	)
	return in, nil
}

// Deregister removes the instance under key and reports whether it was
// registered.
func (s *Scheduler) Deregister(key string) bool {
	if _, ok := s.instances[key]; !ok {
		return false
	}
	delete(s.instances, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.logger.Info("rain detached", "instance", key)
	return true
}

// Get returns the instance registered under key.
func (s *Scheduler) Get(key string) (*Instance, bool) {
	in, ok := s.instances[key]
	return in, ok
}

// Instances returns the registered instances in attach order.
func (s *Scheduler) Instances() []*Instance {
	out := make([]*Instance, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.instances[k])
	}
	return out
}

// Len returns the number of registered instances.
func (s *Scheduler) Len() int { return len(s.order) }

// Active reports whether any instance is registered.
func (s *Scheduler) Active() bool { return len(s.order) > 0 }

// Frame returns the number of ticks run so far.
func (s *Scheduler) Frame() uint64 { return s.frame }

// ResizeAll forwards a layout change to every instance.
func (s *Scheduler) ResizeAll() {
	for _, k := range s.order {
		s.instances[k].Resize()
	}
}

// SetAll plays or pauses every instance.
func (s *Scheduler) SetAll(running bool) {
	for _, k := range s.order {
		if running {
			s.instances[k].Play()
		} else {
			s.instances[k].Pause()
		}
	}
}

// Tick advances every running instance by the time since the previous
// tick, clamped to MaxFrameDelta. Instances whose surface was disposed
// are dropped first. One failing instance does not affect the others.
// Tick reports whether the scheduler is still active.
func (s *Scheduler) Tick() bool {
	if len(s.order) == 0 {
		return false
	}

	now := s.clock.Now()
	dt := ClampDelta(now.Sub(s.last))
	s.last = now
	s.frame++

	keys := append([]string(nil), s.order...)
	for _, k := range keys {
		in := s.instances[k]
		if in.disposed() {
			s.Deregister(k)
			continue
		}
		if !in.running {
			continue
		}

		stats, err := in.Frame(dt)
		if err != nil {
			s.logger.Warn("rain frame skipped", "instance", k, "frame", s.frame, "error", err)
			// the particles still moved; only the drawing was skipped
			if !errors.Is(err, ErrNonFinite) {
				continue
			}
		}
		if s.hook != nil {
			s.hook(s.frame, stats)
		}
	}

	return len(s.order) > 0
}

// Run ticks every interval until ctx is done or the scheduler becomes
// idle. It returns ctx.Err() on cancellation and nil when idle.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if !s.Tick() {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !s.Tick() {
				return nil
			}
		}
	}
}
