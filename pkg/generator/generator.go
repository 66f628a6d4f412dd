// Package generator produces synthetic sample streams for exercising the
// detector: a sine wave with bounded uniform noise and occasional positive
// spikes of known magnitude.
package generator

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// Generator defaults.
const (
	DefaultPoints      = 1000
	DefaultAnomalyRate = 0.05
	DefaultFrequency   = 0.01
	DefaultNoise       = 0.2
	DefaultSpikeMin    = 3.0
	DefaultSpikeMax    = 5.0
	DefaultSeed        = 1
)

// ErrInvalidConfig is returned for configurations that cannot produce a stream.
var ErrInvalidConfig = errors.New("invalid generator config")

// Config describes the synthetic signal.
type Config struct {
	// Points is the stream length.
	Points int `mapstructure:"n_points"`
	// AnomalyRate is the per-sample spike probability, in [0, 1].
	AnomalyRate float64 `mapstructure:"anomaly_rate"`
	// Frequency is the sine step per sample, in radians.
	Frequency float64 `mapstructure:"frequency"`
	// Noise is the half-width of the uniform noise band.
	Noise float64 `mapstructure:"noise"`
	// SpikeMin and SpikeMax bound the spike magnitude.
	SpikeMin float64 `mapstructure:"spike_min"`
	SpikeMax float64 `mapstructure:"spike_max"`
}

// DefaultConfig returns the demo signal: 1000 points, 5% spikes of 3..5.
func DefaultConfig() Config {
	return Config{
		Points:      DefaultPoints,
		AnomalyRate: DefaultAnomalyRate,
		Frequency:   DefaultFrequency,
		Noise:       DefaultNoise,
		SpikeMin:    DefaultSpikeMin,
		SpikeMax:    DefaultSpikeMax,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch {
	case c.Points < 0:
		return fmt.Errorf("%w: n_points must be >= 0, got %d", ErrInvalidConfig, c.Points)
	case math.IsNaN(c.AnomalyRate) || c.AnomalyRate < 0 || c.AnomalyRate > 1:
		return fmt.Errorf("%w: anomaly_rate must be in [0, 1], got %v", ErrInvalidConfig, c.AnomalyRate)
	case !finite(c.Frequency):
		return fmt.Errorf("%w: frequency must be finite, got %v", ErrInvalidConfig, c.Frequency)
	case !finite(c.Noise) || c.Noise < 0:
		return fmt.Errorf("%w: noise must be >= 0, got %v", ErrInvalidConfig, c.Noise)
	case !finite(c.SpikeMin) || !finite(c.SpikeMax) || c.SpikeMin > c.SpikeMax:
		return fmt.Errorf("%w: spike range [%v, %v] is empty", ErrInvalidConfig, c.SpikeMin, c.SpikeMax)
	}

	return nil
}

// Stream is a generated signal together with the indices that received a spike.
type Stream struct {
	Samples  []float64
	Injected []int
}

// Generate draws a stream from rng. The same config and an identically
// seeded rng always produce the same stream.
func Generate(cfg Config, rng *rand.Rand) (Stream, error) {
	if rng == nil {
		return Stream{}, fmt.Errorf("%w: nil random source", ErrInvalidConfig)
	}

	err := cfg.Validate()
	if err != nil {
		return Stream{}, err
	}

	out := Stream{Samples: make([]float64, cfg.Points)}

	for i := range cfg.Points {
		point := math.Sin(float64(i)*cfg.Frequency) + uniform(rng, -cfg.Noise, cfg.Noise)

		if rng.Float64() < cfg.AnomalyRate {
			point += uniform(rng, cfg.SpikeMin, cfg.SpikeMax)
			out.Injected = append(out.Injected, i)
		}

		out.Samples[i] = point
	}

	return out, nil
}

// NewSource returns a deterministic random source for seed.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // simulation, not security.
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
