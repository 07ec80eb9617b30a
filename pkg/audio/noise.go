package audio

import "gonum.org/v1/gonum/stat"

// Result is the outcome of one audio analysis tick.
type Result struct {
	// NoiseDetected is true when the volume variance is suspicious.
	NoiseDetected bool `json:"noise_detected"`

	// NoiseLevel is the population variance of the volume window.
	NoiseLevel float64 `json:"noise_level"`

	// VolumeLevel is the normalized volume of the latest tick.
	VolumeLevel float64 `json:"volume_level"`
}

// NoiseAnalyzer keeps a rolling window of normalized volume samples and
// classifies erratic volume as suspicious noise.
//
// The window is only mutated by the audio tick driver; readers consume
// Result snapshots.
type NoiseAnalyzer struct {
	cfg    NoiseConfig
	window []float64
}

// NewNoiseAnalyzer creates an analyzer with an empty window.
func NewNoiseAnalyzer(cfg NoiseConfig) *NoiseAnalyzer {
	return &NoiseAnalyzer{
		cfg:    cfg,
		window: make([]float64, 0, cfg.MaxSamples),
	}
}

// Process appends the tick's volume sample and classifies the window.
//
// Until the window holds at least MinSamples samples, the variance is
// not trusted: NoiseLevel is 0 and nothing is flagged. Past that, the
// population variance of the window becomes NoiseLevel, and a flag is
// raised when it exceeds NoiseThreshold while the current volume is
// above the floor — variance in near-silence is sensor noise.
func (a *NoiseAnalyzer) Process(volume float64) Result {
	a.window = append(a.window, volume)
	if len(a.window) > a.cfg.MaxSamples {
		a.window = a.window[1:]
	}

	if len(a.window) < a.cfg.MinSamples {
		return Result{VolumeLevel: volume}
	}

	variance := stat.PopVariance(a.window, nil)

	return Result{
		NoiseDetected: variance > a.cfg.NoiseThreshold && volume > a.cfg.VolumeFloor,
		NoiseLevel:    variance,
		VolumeLevel:   volume,
	}
}

// Len returns the number of retained volume samples.
func (a *NoiseAnalyzer) Len() int {
	return len(a.window)
}

// Window returns a copy of the retained samples, oldest first.
func (a *NoiseAnalyzer) Window() []float64 {
	out := make([]float64, len(a.window))
	copy(out, a.window)
	return out
}

// Reset empties the window without releasing its backing storage, so
// the analyzer is safe to reuse after a teardown/re-init cycle.
func (a *NoiseAnalyzer) Reset() {
	a.window = a.window[:0]
}
