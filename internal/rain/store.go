package rain

// Store holds particle state as a structure of arrays.
//
// Indexing invariant: particle i lives at slots 2*i (x) and 2*i+1 (y) of
// both Positions and Velocities, and len(Positions) == len(Velocities)
// == 2*Count() at all times. Particles have no identity beyond their slot.
type Store struct {
	Positions  []float64
	Velocities []float64
}

// NewStore allocates a store for n particles, clamped to [0, MaxCount].
func NewStore(n int) *Store {
	n = clampInt(n, 0, MaxCount)
	return &Store{
		Positions:  make([]float64, 2*n),
		Velocities: make([]float64, 2*n),
	}
}

// Count returns the number of particles.
func (s *Store) Count() int {
	return len(s.Positions) / 2
}

// Position returns particle i's position.
func (s *Store) Position(i int) (x, y float64) {
	return s.Positions[2*i], s.Positions[2*i+1]
}

// Velocity returns particle i's velocity.
func (s *Store) Velocity(i int) (vx, vy float64) {
	return s.Velocities[2*i], s.Velocities[2*i+1]
}

// Set overwrites particle i.
func (s *Store) Set(i int, x, y, vx, vy float64) {
	xi, yi := 2*i, 2*i+1
	s.Positions[xi], s.Positions[yi] = x, y
	s.Velocities[xi], s.Velocities[yi] = vx, vy
}

// Tail returns the far end of particle i's streak.
func (s *Store) Tail(i int, scale float64) (x, y float64) {
	xi, yi := 2*i, 2*i+1
	return s.Positions[xi] - s.Velocities[xi]*scale, s.Positions[yi] - s.Velocities[yi]*scale
}

// Seed scatters every particle over a w x h area on integer coordinates
// and gives each a fresh velocity from e.
func (s *Store) Seed(e *Emitter, w, h int) {
	for i := 0; i < s.Count(); i++ {
		x := float64(randomInt(e.rng, w))
		y := float64(randomInt(e.rng, h))
		vx, vy := e.Velocity()
		s.Set(i, x, y, vx, vy)
	}
}
