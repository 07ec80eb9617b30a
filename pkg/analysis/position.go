package analysis

import (
	"math"
	"time"

	"github.com/proctorlabs/go-vigil/pkg/detection"
)

// HeadPosition is one recorded centroid sample of the primary face.
type HeadPosition struct {
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Timestamp time.Time `json:"timestamp"`
}

// PositionTracker maintains a bounded, time-ordered history of the
// primary face's centroid and derives a movement-volatility count.
//
// The tracker is mutated only from the video tick driver and needs no
// locking (see the engine's concurrency model).
type PositionTracker struct {
	cfg       Config
	positions []HeadPosition
}

// NewPositionTracker creates an empty tracker.
func NewPositionTracker(cfg Config) *PositionTracker {
	return &PositionTracker{
		cfg:       cfg,
		positions: make([]HeadPosition, 0, cfg.MaxHeadPositions),
	}
}

// Record conditionally appends the centroid as a new sample.
// Recording is time-debounced: if the window is non-empty and less than
// TrackingInterval has elapsed since the last sample, the sample is
// skipped and Record returns false. On append the oldest sample is
// evicted once the window exceeds its capacity.
func (t *PositionTracker) Record(c detection.Point, now time.Time) bool {
	if n := len(t.positions); n > 0 {
		if now.Sub(t.positions[n-1].Timestamp) <= t.cfg.TrackingInterval {
			return false
		}
	}

	t.positions = append(t.positions, HeadPosition{X: c.X, Y: c.Y, Timestamp: now})
	if len(t.positions) > t.cfg.MaxHeadPositions {
		t.positions = t.positions[1:]
	}
	return true
}

// SignificantMovements counts consecutive sample pairs whose Euclidean
// distance exceeds the (resolution-scaled) movement threshold.
func (t *PositionTracker) SignificantMovements() int {
	threshold := t.cfg.ScaledMovementThreshold()
	count := 0
	for i := 1; i < len(t.positions); i++ {
		dx := t.positions[i].X - t.positions[i-1].X
		dy := t.positions[i].Y - t.positions[i-1].Y
		if math.Hypot(dx, dy) > threshold {
			count++
		}
	}
	return count
}

// Len returns the number of retained samples.
func (t *PositionTracker) Len() int {
	return len(t.positions)
}

// Positions returns a copy of the retained window, oldest first.
func (t *PositionTracker) Positions() []HeadPosition {
	out := make([]HeadPosition, len(t.positions))
	copy(out, t.positions)
	return out
}

// Reset clears the window. Used when a new monitoring session starts;
// a mere absence of the face leaves the window untouched.
func (t *PositionTracker) Reset() {
	t.positions = t.positions[:0]
}
