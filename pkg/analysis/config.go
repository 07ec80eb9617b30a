// Package analysis turns raw per-frame face measurements into movement
// volatility and attention signals.
package analysis

import "time"

// ReferenceFrameWidth is the frame width the pixel thresholds are
// calibrated against. Thresholds scale proportionally for other widths.
const ReferenceFrameWidth = 640

// Config holds all tunable parameters for movement and attention analysis
type Config struct {
	// Position window
	MaxHeadPositions int           // Retained centroid samples (FIFO)
	TrackingInterval time.Duration // Minimum gap between recorded samples

	// Movement
	MovementThreshold float64 // Pixel distance counting as a significant movement (at 640px width)
	FrameWidth        int     // Actual frame width, used to rescale MovementThreshold

	// Attention
	FrequentMovements int // Movement count at which the subject is "looking away"
	AttentionPenalty  int // Attention points lost per significant movement
}

// DefaultConfig returns the recommended configuration for a 640x480 feed
func DefaultConfig() Config {
	return Config{
		MaxHeadPositions:  15,
		TrackingInterval:  300 * time.Millisecond,
		MovementThreshold: 25,
		FrameWidth:        ReferenceFrameWidth,

		FrequentMovements: 3,
		AttentionPenalty:  20,
	}
}

// StrictConfig returns a configuration that flags movement sooner.
func StrictConfig() Config {
	cfg := DefaultConfig()
	cfg.MovementThreshold = 18
	cfg.FrequentMovements = 2
	cfg.AttentionPenalty = 25
	return cfg
}

// LenientConfig returns a configuration tolerating more natural movement.
func LenientConfig() Config {
	cfg := DefaultConfig()
	cfg.MovementThreshold = 35
	cfg.FrequentMovements = 5
	cfg.AttentionPenalty = 15
	return cfg
}

// ScaledMovementThreshold returns the movement threshold rescaled to the
// configured frame width.
func (c Config) ScaledMovementThreshold() float64 {
	if c.FrameWidth <= 0 || c.FrameWidth == ReferenceFrameWidth {
		return c.MovementThreshold
	}
	return c.MovementThreshold * float64(c.FrameWidth) / ReferenceFrameWidth
}
