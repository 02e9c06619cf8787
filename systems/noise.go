package systems

import (
	"github.com/aquilax/go-perlin"
)

// Perlin parameters: persistence, lacunarity and octaves.
const (
	noiseAlpha   = 2.0
	noiseBeta    = 2.0
	noiseOctaves = 3
)

// WingNoise produces smooth per-agent wobble values for the wing-flap term.
type WingNoise struct {
	p *perlin.Perlin
}

// NewWingNoise creates a noise source seeded for reproducible runs.
func NewWingNoise(seed int64) *WingNoise {
	return &WingNoise{p: perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed)}
}

// Flap returns a value in [-1, 1] for an agent phase at time t (already
// scaled by the flap frequency).
func (w *WingNoise) Flap(phase, t float64) float64 {
	// Octave sums can slightly exceed the unit range
	return clampFloat(w.p.Noise1D(phase+t)*2, -1, 1)
}
