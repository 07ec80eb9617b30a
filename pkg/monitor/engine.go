// Package monitor wires the per-tick pipeline together: frame capture,
// face detection, movement and audio analysis, status aggregation, and
// alerting. One Engine owns all mutable session state.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/proctorlabs/go-vigil/pkg/alert"
	"github.com/proctorlabs/go-vigil/pkg/analysis"
	"github.com/proctorlabs/go-vigil/pkg/audio"
	"github.com/proctorlabs/go-vigil/pkg/camera"
	"github.com/proctorlabs/go-vigil/pkg/detection"
	"github.com/proctorlabs/go-vigil/pkg/status"
)

// Config holds the engine's timing parameters. The analysis tunables
// live in the embedded analysis config.
type Config struct {
	Analysis analysis.Config

	// TickInterval is the video evaluation cadence.
	TickInterval time.Duration

	// DetectTimeout bounds one detector call. A slower detection is a
	// dropped tick, not a fatal error.
	DetectTimeout time.Duration
}

// DefaultConfig returns the recommended engine timing.
func DefaultConfig() Config {
	return Config{
		Analysis:      analysis.DefaultConfig(),
		TickInterval:  500 * time.Millisecond,
		DetectTimeout: 2 * time.Second,
	}
}

// Stats counts what happened during the session.
type Stats struct {
	Ticks          int64 `json:"ticks"`
	DroppedTicks   int64 `json:"dropped_ticks"`
	DetectorErrors int64 `json:"detector_errors"`
}

// Snapshot is the immutable per-tick output handed to the
// presentation layer.
type Snapshot struct {
	Detection   status.DetectionResult `json:"detection"`
	Audio       audio.Result           `json:"audio"`
	AudioActive bool                   `json:"audio_active"`
	Status      status.Result          `json:"status"`
	MissedTicks int                    `json:"missed_ticks"`
	Stats       Stats                  `json:"stats"`
	Timestamp   time.Time              `json:"timestamp"`
}

// Engine runs the monitoring pipeline. All video-side state is touched
// only from the tick driver; the audio analyzer mutates its own window
// on its own tick and is read here as a snapshot.
type Engine struct {
	cfg      Config
	logger   *slog.Logger
	frames   camera.FrameSource
	detector detection.Detector
	audio    *audio.Analyzer
	alerts   *alert.Manager
	tracker  *analysis.PositionTracker
	clock    func() time.Time
	onUpdate func(Snapshot)

	// Tick-driver state (single writer, no lock)
	missedTicks     int
	lastLookingAway bool
	lastAttention   int
	pending         chan detectOut

	stats Stats

	mu       sync.RWMutex
	snapshot Snapshot
}

// Option configures an Engine.
type Option func(*Engine)

// WithAudio attaches an audio analyzer. The engine starts it with the
// run context and degrades to video-only if it fails.
func WithAudio(a *audio.Analyzer) Option {
	return func(e *Engine) { e.audio = a }
}

// WithAlertManager overrides the default alert manager.
func WithAlertManager(m *alert.Manager) Option {
	return func(e *Engine) { e.alerts = m }
}

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock overrides the time source, for deterministic tests.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithOnUpdate registers a callback invoked with each tick's snapshot.
// The callback runs on the tick driver and must not block.
func WithOnUpdate(fn func(Snapshot)) Option {
	return func(e *Engine) { e.onUpdate = fn }
}

// New creates an engine for one monitoring session.
func New(cfg Config, frames camera.FrameSource, detector detection.Detector, opts ...Option) *Engine {
	e := &Engine{
		cfg:           cfg,
		frames:        frames,
		detector:      detector,
		tracker:       analysis.NewPositionTracker(cfg.Analysis),
		clock:         time.Now,
		lastAttention: 100,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.alerts == nil {
		e.alerts = alert.NewManager(alert.WithLogger(e.logger))
	}
	return e
}

// Alerts exposes the session's alert manager.
func (e *Engine) Alerts() *alert.Manager {
	return e.alerts
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// SetOnUpdate sets the snapshot callback after construction, for
// consumers that need the engine to exist first. Call before Run.
func (e *Engine) SetOnUpdate(fn func(Snapshot)) {
	e.onUpdate = fn
}

// Snapshot returns the result of the most recent completed tick.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot
}

// Run drives the tick loop until the context is cancelled or video
// capture fails. Audio start failure is not fatal: the session falls
// back to video-only monitoring.
func (e *Engine) Run(ctx context.Context) error {
	if e.audio != nil {
		if err := e.audio.Start(ctx); err != nil {
			e.logger.Warn("audio unavailable, monitoring video only", "error", err)
			e.audio = nil
		} else {
			defer e.audio.Stop()
		}
	}

	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	e.logger.Info("monitoring started",
		"tick_interval", e.cfg.TickInterval,
		"detect_timeout", e.cfg.DetectTimeout,
		"audio", e.audio != nil,
	)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("monitoring stopped")
			return nil
		case <-ticker.C:
			if err := e.Tick(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				e.logger.Error("monitoring aborted", "error", err)
				return err
			}
		}
	}
}

type detectOut struct {
	obs []detection.Observation
	err error
}

// Tick runs one full evaluation cycle. A capture error is fatal to the
// session; a detector error degrades to "no detection"; a detector
// slower than DetectTimeout drops the tick without touching any
// window or counter. At most one detection is ever in flight: while a
// timed-out detection is still running, subsequent ticks are dropped
// instead of queueing more work behind it.
func (e *Engine) Tick(ctx context.Context) error {
	if e.pending != nil {
		select {
		case <-e.pending:
			// The straggler finished. Its frame belongs to a tick
			// that was already dropped, so the result is discarded.
			e.pending = nil
		default:
			e.stats.DroppedTicks++
			e.logger.Debug("detector still busy, tick dropped")
			return nil
		}
	}

	frame, err := e.frames.CaptureJPEG()
	if err != nil {
		return err
	}

	ch := make(chan detectOut, 1)
	go func() {
		obs, err := e.detector.Detect(frame)
		ch <- detectOut{obs, err}
	}()

	var obs []detection.Observation
	select {
	case <-ctx.Done():
		// Cancel in flight: discard this tick's would-be mutation
		e.pending = ch
		return ctx.Err()
	case <-time.After(e.cfg.DetectTimeout):
		e.pending = ch
		e.stats.DroppedTicks++
		e.logger.Debug("detector timed out, tick dropped")
		return nil
	case out := <-ch:
		if out.err != nil {
			// Inference failure reads as "no detection"
			e.stats.DetectorErrors++
			e.logger.Debug("detector error", "error", out.err)
		}
		obs = out.obs
		if out.err != nil {
			obs = nil
		}
	}

	e.process(obs, e.clock())
	return nil
}

// process applies one tick's observations to the session state.
func (e *Engine) process(obs []detection.Observation, now time.Time) {
	e.stats.Ticks++

	faceCount := len(obs)
	facePresent := faceCount > 0

	var lookingAway bool
	var attention int

	if facePresent {
		e.missedTicks = 0

		if primary := detection.Primary(obs); e.tracker.Record(primary.Centroid(), now) {
			moves := e.tracker.SignificantMovements()
			e.lastLookingAway, e.lastAttention = e.cfg.Analysis.Attention(true, moves)
		}
		// Between debounced samples the last computed score holds
		lookingAway, attention = e.lastLookingAway, e.lastAttention
	} else {
		e.missedTicks++
		lookingAway, attention = false, 0
	}

	det := status.DetectionResult{
		FaceCount:          faceCount,
		FacePresent:        facePresent,
		LookingAway:        lookingAway,
		EstimatedAttention: attention,
	}

	var audioResult audio.Result
	audioActive := false
	if e.audio != nil {
		audioResult, audioActive = e.audio.Latest()
	}

	result := status.Aggregate(det, e.missedTicks, audioResult, audioActive)

	if result.Status != status.Safe {
		e.alerts.Trigger(result.Message, result.Status, now)
	}

	snap := Snapshot{
		Detection:   det,
		Audio:       audioResult,
		AudioActive: audioActive,
		Status:      result,
		MissedTicks: e.missedTicks,
		Stats:       e.stats,
		Timestamp:   now,
	}

	e.mu.Lock()
	e.snapshot = snap
	e.mu.Unlock()

	if e.onUpdate != nil {
		e.onUpdate(snap)
	}
}
