// Package audio provides microphone capture and the rolling noise
// analysis used for suspicious-sound detection.
//
// Capture backends:
//   - ALSA (Linux) - production capture via arecord
//   - Mock - CI/testing and simulation without hardware
//
// The backend is selected automatically based on platform, or can be
// explicitly specified via configuration.
package audio

import (
	"fmt"
	"time"
)

// Backend represents the audio capture backend type.
type Backend string

const (
	// BackendAuto automatically selects the best available backend.
	BackendAuto Backend = "auto"
	// BackendALSA captures from a Linux ALSA device.
	BackendALSA Backend = "alsa"
	// BackendMock uses a synthetic source for testing.
	BackendMock Backend = "mock"
)

// Config holds audio capture configuration.
type Config struct {
	// Backend specifies which capture backend to use.
	// Default: "auto" (selects best available for platform)
	Backend Backend `json:"backend"`

	// SampleRate is the capture sample rate in Hz.
	SampleRate int `json:"sample_rate"`

	// Channels is the number of capture channels.
	Channels int `json:"channels"`

	// BufferDuration is the duration of one captured chunk, which is
	// also the audio analysis tick.
	BufferDuration time.Duration `json:"buffer_duration"`

	// Device is the platform-specific device identifier.
	// ALSA examples: "default", "hw:1,0", "plughw:1,0".
	Device string `json:"device"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend:        BackendAuto,
		SampleRate:     16000,
		Channels:       1,
		BufferDuration: 250 * time.Millisecond,
		Device:         "",
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("channels must be positive, got %d", c.Channels)
	}
	if c.BufferDuration <= 0 {
		return fmt.Errorf("buffer_duration must be positive, got %v", c.BufferDuration)
	}
	return nil
}

// BufferSize returns the number of samples per captured chunk.
func (c *Config) BufferSize() int {
	return int(float64(c.SampleRate) * c.BufferDuration.Seconds())
}

// BufferBytes returns the size of a chunk in bytes (int16 samples).
func (c *Config) BufferBytes() int {
	return c.BufferSize() * c.Channels * 2
}

// NoiseConfig holds the tunables of the rolling noise classifier.
type NoiseConfig struct {
	// MaxSamples is the capacity of the volume window (FIFO).
	MaxSamples int `json:"max_samples"`

	// MinSamples is the number of samples required before the variance
	// is trusted. Below it the classifier reports no noise.
	MinSamples int `json:"min_samples"`

	// NoiseThreshold is the variance above which volume is erratic
	// enough to flag.
	NoiseThreshold float64 `json:"noise_threshold"`

	// VolumeFloor is the minimum mean volume for a flag. Variance in
	// near-silence is sensor noise, not activity.
	VolumeFloor float64 `json:"volume_floor"`
}

// DefaultNoiseConfig returns the recommended classifier tuning.
func DefaultNoiseConfig() NoiseConfig {
	return NoiseConfig{
		MaxSamples:     20,
		MinSamples:     6,
		NoiseThreshold: 0.2,
		VolumeFloor:    0.1,
	}
}
