package audio

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoiseAnalyzer_InsufficientHistory(t *testing.T) {
	a := NewNoiseAnalyzer(DefaultNoiseConfig())

	// First five samples: never trusted, regardless of spread
	volumes := []float64{0.9, 0.0, 0.9, 0.0, 0.9}
	for i, v := range volumes {
		r := a.Process(v)
		assert.False(t, r.NoiseDetected, "sample %d", i)
		assert.Zero(t, r.NoiseLevel, "sample %d", i)
		assert.Equal(t, v, r.VolumeLevel, "sample %d", i)
	}

	// Sixth sample crosses the confidence threshold
	r := a.Process(0.0)
	assert.Greater(t, r.NoiseLevel, 0.0)
}

func TestNoiseAnalyzer_SteadyVolumeIsQuiet(t *testing.T) {
	// Six identical samples: variance 0, no flag even though the
	// volume floor is exceeded
	a := NewNoiseAnalyzer(DefaultNoiseConfig())

	var r Result
	for i := 0; i < 6; i++ {
		r = a.Process(0.05)
	}

	assert.False(t, r.NoiseDetected)
	assert.Zero(t, r.NoiseLevel)
}

func TestNoiseAnalyzer_ErraticVolumeFlags(t *testing.T) {
	a := NewNoiseAnalyzer(DefaultNoiseConfig())

	// Alternate loud and silent: variance of {0,1,...} is 0.25, above
	// the 0.2 threshold. Flag only fires on ticks whose own volume is
	// above the floor.
	var r Result
	for i := 0; i < 10; i++ {
		v := float64(i % 2)
		r = a.Process(v)
	}

	// Last sample was 1.0 (loud): flagged
	assert.True(t, r.NoiseDetected)
	assert.InDelta(t, 0.25, r.NoiseLevel, 1e-9)

	// Next sample is silent: variance still high, but the floor
	// suppresses the flag
	r = a.Process(0.0)
	assert.False(t, r.NoiseDetected)
	assert.Greater(t, r.NoiseLevel, 0.2)
}

func TestNoiseAnalyzer_WindowCapacity(t *testing.T) {
	cfg := DefaultNoiseConfig()
	a := NewNoiseAnalyzer(cfg)

	for i := 0; i < cfg.MaxSamples*2; i++ {
		a.Process(rand.Float64())
		require.LessOrEqual(t, a.Len(), cfg.MaxSamples)
	}
	assert.Equal(t, cfg.MaxSamples, a.Len())
}

func TestNoiseAnalyzer_VarianceOrderIndependent(t *testing.T) {
	samples := []float64{0.1, 0.9, 0.3, 0.7, 0.5, 0.2, 0.8}

	variance := func(order []float64) float64 {
		a := NewNoiseAnalyzer(DefaultNoiseConfig())
		var r Result
		for _, v := range order {
			r = a.Process(v)
		}
		return r.NoiseLevel
	}

	want := variance(samples)

	shuffled := append([]float64(nil), samples...)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 5; i++ {
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		got := variance(shuffled)
		require.InDelta(t, want, got, 1e-12, "permutation %d", i)
	}
}

func TestNoiseAnalyzer_PopulationVariance(t *testing.T) {
	// {0, 1}: population variance 0.25 (sample variance would be 0.5)
	a := NewNoiseAnalyzer(NoiseConfig{MaxSamples: 20, MinSamples: 2, NoiseThreshold: 0.2, VolumeFloor: 0.1})
	a.Process(0)
	r := a.Process(1)
	assert.InDelta(t, 0.25, r.NoiseLevel, 1e-12)
}

func TestNoiseAnalyzer_Reset(t *testing.T) {
	a := NewNoiseAnalyzer(DefaultNoiseConfig())
	for i := 0; i < 10; i++ {
		a.Process(0.5)
	}

	a.Reset()
	assert.Zero(t, a.Len())

	// Safe to reuse: confidence gating starts over
	r := a.Process(0.9)
	assert.Zero(t, r.NoiseLevel)
}

func TestSpectrum_SilenceAndTone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = BackendMock

	spec := NewSpectrum(fftWindow)

	silent := NewMockSource(cfg, nil)
	mags := spec.Magnitudes(silent.NextChunk())
	assert.Zero(t, Volume(mags), "silence must read as zero volume")

	tone := NewMockSource(cfg, nil, WithSineWave(1000, 0.8))
	mags = spec.Magnitudes(tone.NextChunk())
	require.NotEmpty(t, mags)
	assert.Greater(t, Volume(mags), 0.0, "a tone must register volume")

	peak := 0.0
	for _, m := range mags {
		peak = math.Max(peak, m)
		require.LessOrEqual(t, m, 1.0)
		require.GreaterOrEqual(t, m, 0.0)
	}
	assert.Greater(t, peak, 0.3, "tone energy should concentrate in a bin")
}
