package ambience

import (
	"math"
	"math/rand/v2"
	"sync/atomic"

	"github.com/faiface/beep"
)

// Noise synthesizes rain: low-passed white noise for the hiss plus short
// decaying clicks for individual drops. Its loudness and drop rate follow
// the intensity set with SetIntensity, which is safe to call while the
// speaker goroutine is streaming.
type Noise struct {
	sampleRate beep.SampleRate
	rng        *rand.Rand
	intensity  atomic.Uint64 // math.Float64bits of [0,1]

	hissL, hissR float64
	dropEnv      float64
	dropPan      float64
	dropDecay    float64
}

const (
	hissCutoff = 0.08 // one-pole low-pass coefficient
	hissGain   = 0.6
	dropGain   = 0.35
	dropsPerS  = 40.0 // at full intensity
)

// NewNoise returns a rain synthesizer for sr. seed 0 picks a random seed.
func NewNoise(sr beep.SampleRate, seed uint64) *Noise {
	if seed == 0 {
		seed = rand.Uint64()
	}
	n := &Noise{
		sampleRate: sr,
		rng:        rand.New(rand.NewPCG(seed, seed>>1|1)),
		// a drop rings for about 15ms
		dropDecay: math.Exp(-1 / (0.015 * float64(sr))),
	}
	n.SetIntensity(0.5)
	return n
}

// SetIntensity sets how heavy the rain sounds, clamped to [0,1].
func (n *Noise) SetIntensity(v float64) {
	n.intensity.Store(math.Float64bits(clamp01(v)))
}

// Intensity returns the current intensity.
func (n *Noise) Intensity() float64 {
	return math.Float64frombits(n.intensity.Load())
}

func (n *Noise) Stream(samples [][2]float64) (int, bool) {
	in := n.Intensity()
	dropChance := in * dropsPerS / float64(n.sampleRate)

	for i := range samples {
		n.hissL += hissCutoff * (n.rng.Float64()*2 - 1 - n.hissL)
		n.hissR += hissCutoff * (n.rng.Float64()*2 - 1 - n.hissR)

		if n.rng.Float64() < dropChance {
			n.dropEnv = 0.5 + 0.5*n.rng.Float64()
			n.dropPan = n.rng.Float64()
		}
		drop := 0.0
		if n.dropEnv > 1e-4 {
			drop = (n.rng.Float64()*2 - 1) * n.dropEnv * dropGain
			n.dropEnv *= n.dropDecay
		}

		samples[i][0] = in*hissGain*n.hissL + drop*(1-n.dropPan)
		samples[i][1] = in*hissGain*n.hissR + drop*n.dropPan
	}
	return len(samples), true
}

func (n *Noise) Err() error { return nil }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
