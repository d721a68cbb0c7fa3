package rain

import "math"

// Emit returns a velocity for a particle falling at speed, pushed
// sideways by windSpeed, fanned over a cone spreadDegrees wide. u is a
// uniform draw in [0,1) that picks the angle within the cone; it is
// ignored when spreadDegrees is 0.
func Emit(speed, windSpeed, spreadDegrees, u float64) (vx, vy float64) {
	if spreadDegrees == 0 {
		return windSpeed, speed
	}

	// Centered on straight down (+90 degrees in screen space).
	angle := radians((u-0.5)*spreadDegrees + 90)
	return math.Cos(angle)*speed + windSpeed, math.Sin(angle) * speed
}

// WindJitter attenuates wind by up to shear of itself.
func WindJitter(wind, shear, u float64) float64 {
	if shear == 0 {
		return wind
	}
	return wind - wind*shear*u
}

// Emitter produces velocities for one instance according to its config.
type Emitter struct {
	cfg *Config
	rng Rand
}

// NewEmitter binds an emitter to a sanitized config and a random source.
func NewEmitter(cfg *Config, rng Rand) *Emitter {
	return &Emitter{cfg: cfg, rng: rng}
}

// Velocity draws a fresh velocity.
func (e *Emitter) Velocity() (vx, vy float64) {
	c := e.cfg
	if c.Emission == EmitDirect {
		return randomInRange(e.rng, c.Velocity.Min.X, c.Velocity.Max.X),
			randomInRange(e.rng, c.Velocity.Min.Y, c.Velocity.Max.Y)
	}

	wind := c.Wind.X
	if c.Shear != 0 {
		wind = WindJitter(wind, c.Shear, e.rng.Float64())
	}
	var u float64
	if c.Spread != 0 {
		u = e.rng.Float64()
	}
	vx, vy = Emit(c.Speed, wind, c.Spread, u)
	return vx, vy + c.Wind.Y
}
