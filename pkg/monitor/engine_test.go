package monitor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proctorlabs/go-vigil/pkg/audio"
	"github.com/proctorlabs/go-vigil/pkg/camera"
	"github.com/proctorlabs/go-vigil/pkg/detection"
	"github.com/proctorlabs/go-vigil/pkg/status"
)

// fakeClock is a manual time source stepped by the test.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestEngine(det detection.Detector, clock *fakeClock) *Engine {
	return New(DefaultConfig(), camera.NewMockSource(), det,
		WithClock(clock.Now),
	)
}

func oneFace() []detection.Observation {
	return []detection.Observation{detection.Box(270, 190, 370, 290)}
}

func TestEngine_FaceDisappearanceEscalation(t *testing.T) {
	// Absent ticks 1-2 warn, tick 3 escalates to danger
	clock := newFakeClock()
	det := detection.NewMockDetector(nil)
	e := newTestEngine(det, clock)
	ctx := context.Background()

	require.NoError(t, e.Tick(ctx))
	snap := e.Snapshot()
	assert.Equal(t, status.Warning, snap.Status.Status)
	assert.Equal(t, status.MsgFaceTransient, snap.Status.Message)
	assert.Zero(t, snap.Detection.EstimatedAttention)

	clock.Advance(500 * time.Millisecond)
	require.NoError(t, e.Tick(ctx))
	assert.Equal(t, status.Warning, e.Snapshot().Status.Status)

	clock.Advance(500 * time.Millisecond)
	require.NoError(t, e.Tick(ctx))
	snap = e.Snapshot()
	assert.Equal(t, status.Danger, snap.Status.Status)
	assert.Equal(t, status.MsgNoFace, snap.Status.Message)
	assert.Equal(t, 3, snap.MissedTicks)
}

func TestEngine_MultipleFacesIsDanger(t *testing.T) {
	clock := newFakeClock()
	det := detection.NewMockDetector([]detection.Observation{
		detection.Box(100, 100, 200, 200),
		detection.Box(400, 100, 500, 200),
	})
	e := newTestEngine(det, clock)

	require.NoError(t, e.Tick(context.Background()))
	snap := e.Snapshot()
	assert.Equal(t, status.Danger, snap.Status.Status)
	assert.Equal(t, "Multiple faces detected (2)", snap.Status.Message)
}

func TestEngine_OscillationTriggersLookingAway(t *testing.T) {
	// Centroid swings 40px every tick, one tick per 500ms: after 4
	// recorded samples there are 3 significant movements
	clock := newFakeClock()

	frames := make([][]detection.Observation, 4)
	for i := range frames {
		x := 300.0
		if i%2 == 1 {
			x = 340.0
		}
		frames[i] = []detection.Observation{detection.Box(x-50, 190, x+50, 290)}
	}
	det := detection.NewMockDetector(frames...)
	e := newTestEngine(det, clock)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, e.Tick(ctx))
		clock.Advance(500 * time.Millisecond)
	}

	snap := e.Snapshot()
	assert.True(t, snap.Detection.LookingAway)
	assert.Equal(t, 40, snap.Detection.EstimatedAttention)
	assert.Equal(t, status.Warning, snap.Status.Status)
	assert.Equal(t, status.MsgLookingAway, snap.Status.Message)
}

func TestEngine_AttentionHeldBetweenSamples(t *testing.T) {
	// A stable face recorded once keeps its score on debounced ticks
	clock := newFakeClock()
	det := detection.NewMockDetector(oneFace())
	e := newTestEngine(det, clock)
	ctx := context.Background()

	require.NoError(t, e.Tick(ctx))
	first := e.Snapshot().Detection.EstimatedAttention
	assert.Equal(t, 100, first)

	// 100ms later: inside the 300ms tracking interval, no new sample,
	// score carried over unchanged
	clock.Advance(100 * time.Millisecond)
	require.NoError(t, e.Tick(ctx))
	assert.Equal(t, first, e.Snapshot().Detection.EstimatedAttention)
}

func TestEngine_AttentionZeroWhileAbsent(t *testing.T) {
	clock := newFakeClock()
	det := detection.NewMockDetector(oneFace(), nil)
	e := newTestEngine(det, clock)
	ctx := context.Background()

	require.NoError(t, e.Tick(ctx))
	assert.Equal(t, 100, e.Snapshot().Detection.EstimatedAttention)

	clock.Advance(500 * time.Millisecond)
	require.NoError(t, e.Tick(ctx))
	snap := e.Snapshot()
	assert.Zero(t, snap.Detection.EstimatedAttention)
	assert.False(t, snap.Detection.LookingAway)
}

func TestEngine_MissCounterResetsOnReturn(t *testing.T) {
	clock := newFakeClock()
	det := detection.NewMockDetector(nil, nil, oneFace(), nil)
	e := newTestEngine(det, clock)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, e.Tick(ctx))
		clock.Advance(500 * time.Millisecond)
	}

	// Two misses, then the face came back at tick 3
	assert.Zero(t, e.Snapshot().MissedTicks)
	assert.Equal(t, status.Safe, e.Snapshot().Status.Status)

	// A fresh absence starts the count at 1 again, not 3
	require.NoError(t, e.Tick(ctx))
	snap := e.Snapshot()
	assert.Equal(t, 1, snap.MissedTicks)
	assert.Equal(t, status.Warning, snap.Status.Status)
}

func TestEngine_DetectorErrorReadsAsNoDetection(t *testing.T) {
	clock := newFakeClock()
	det := detection.NewMockDetector(oneFace())
	det.FailWith(0, errors.New("inference failed"))
	e := newTestEngine(det, clock)

	require.NoError(t, e.Tick(context.Background()))
	snap := e.Snapshot()
	assert.False(t, snap.Detection.FacePresent)
	assert.Equal(t, int64(1), snap.Stats.DetectorErrors)
	assert.Equal(t, status.Warning, snap.Status.Status)
}

func TestEngine_CaptureErrorIsFatal(t *testing.T) {
	clock := newFakeClock()
	frames := camera.NewMockSource()
	boom := errors.New("device lost")
	frames.FailWith(0, boom)

	e := New(DefaultConfig(), frames, detection.NewMockDetector(oneFace()),
		WithClock(clock.Now),
	)

	err := e.Tick(context.Background())
	assert.ErrorIs(t, err, boom)
}

// slowDetector blocks until released and counts its invocations.
type slowDetector struct {
	release chan struct{}
	calls   atomic.Int64
}

func (d *slowDetector) Detect(_ []byte) ([]detection.Observation, error) {
	d.calls.Add(1)
	<-d.release
	return nil, nil
}

func (d *slowDetector) Close() error { return nil }

func TestEngine_SlowDetectorDropsTick(t *testing.T) {
	clock := newFakeClock()
	slow := &slowDetector{release: make(chan struct{})}
	defer close(slow.release)

	cfg := DefaultConfig()
	cfg.DetectTimeout = 10 * time.Millisecond

	e := New(cfg, camera.NewMockSource(), slow, WithClock(clock.Now))

	require.NoError(t, e.Tick(context.Background()))

	// Dropped: no tick counted, no state mutated
	snap := e.Snapshot()
	assert.Equal(t, int64(1), snap.Stats.DroppedTicks)
	assert.Zero(t, snap.Stats.Ticks)
	assert.Zero(t, snap.MissedTicks)
}

func TestEngine_BusyDetectorSkipsTicksWithoutQueueing(t *testing.T) {
	clock := newFakeClock()
	slow := &slowDetector{release: make(chan struct{})}

	cfg := DefaultConfig()
	cfg.DetectTimeout = 10 * time.Millisecond

	e := New(cfg, camera.NewMockSource(), slow, WithClock(clock.Now))
	ctx := context.Background()

	// First tick times out with the detection still in flight; the
	// next ticks are dropped without starting more detections
	require.NoError(t, e.Tick(ctx))
	require.NoError(t, e.Tick(ctx))
	require.NoError(t, e.Tick(ctx))

	assert.Equal(t, int64(1), slow.calls.Load(), "at most one detection in flight")
	snap := e.Snapshot()
	assert.Equal(t, int64(3), snap.Stats.DroppedTicks)
	assert.Zero(t, snap.Stats.Ticks)

	// Once released, the straggler's stale result is discarded and a
	// fresh detection completes on a following tick
	close(slow.release)
	deadline := time.Now().Add(time.Second)
	for e.Snapshot().Stats.Ticks == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no tick completed after the detector was released")
		}
		require.NoError(t, e.Tick(ctx))
	}

	assert.Equal(t, int64(2), slow.calls.Load(), "exactly one fresh detection after release")
}

func TestEngine_AlertDedupAcrossTicks(t *testing.T) {
	clock := newFakeClock()
	det := detection.NewMockDetector(nil) // face never appears
	e := newTestEngine(det, clock)
	ctx := context.Background()

	// 10 faceless ticks at 500ms: one transient warning alert, then
	// one danger alert, both deduplicated for the rest of the window
	for i := 0; i < 10; i++ {
		require.NoError(t, e.Tick(ctx))
		clock.Advance(500 * time.Millisecond)
	}

	alerts := e.Alerts().Alerts()
	require.Len(t, alerts, 2)
	assert.Equal(t, status.MsgNoFace, alerts[0].Message)
	assert.Equal(t, status.MsgFaceTransient, alerts[1].Message)

	// Past the cooldown the danger alert fires again
	for i := 0; i < 12; i++ {
		require.NoError(t, e.Tick(ctx))
		clock.Advance(time.Second)
	}
	found := 0
	for _, a := range e.Alerts().Alerts() {
		if a.Message == status.MsgNoFace {
			found++
		}
	}
	assert.GreaterOrEqual(t, found, 2)
}

func TestEngine_RunStopsOnCancel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TickInterval = 5 * time.Millisecond

	e := New(cfg, camera.NewMockSource(), detection.NewMockDetector(oneFace()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	assert.Greater(t, e.Snapshot().Stats.Ticks, int64(0))
}

func TestEngine_SafeTicksEmitNoAlerts(t *testing.T) {
	clock := newFakeClock()
	det := detection.NewMockDetector(oneFace())
	e := newTestEngine(det, clock)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, e.Tick(ctx))
		clock.Advance(500 * time.Millisecond)
	}

	assert.Zero(t, e.Alerts().Len())
	assert.Equal(t, status.Safe, e.Snapshot().Status.Status)
}

func TestEngine_AudioSnapshotFlags(t *testing.T) {
	clock := newFakeClock()

	audioCfg := audio.DefaultConfig()
	audioCfg.Backend = audio.BackendMock
	audioCfg.BufferDuration = 5 * time.Millisecond

	analyzer := audio.NewAnalyzer(audioCfg, audio.DefaultNoiseConfig(), nil)
	source := audio.NewMockSource(audioCfg, nil)
	require.NoError(t, analyzer.StartWithSource(context.Background(), source))
	defer analyzer.Stop()

	e := New(DefaultConfig(), camera.NewMockSource(), detection.NewMockDetector(oneFace()),
		WithClock(clock.Now),
		WithAudio(analyzer),
	)

	require.NoError(t, e.Tick(context.Background()))
	snap := e.Snapshot()
	assert.True(t, snap.AudioActive)
	assert.False(t, snap.Audio.NoiseDetected, "silence must not flag noise")
	assert.Equal(t, status.Safe, snap.Status.Status)

	// After teardown the aggregator sees audio as inactive
	require.NoError(t, analyzer.Stop())
	clock.Advance(500 * time.Millisecond)
	require.NoError(t, e.Tick(context.Background()))
	assert.False(t, e.Snapshot().AudioActive)
}

func TestEngine_OnUpdateCallback(t *testing.T) {
	clock := newFakeClock()
	var got []Snapshot
	e := New(DefaultConfig(), camera.NewMockSource(), detection.NewMockDetector(oneFace()),
		WithClock(clock.Now),
		WithOnUpdate(func(s Snapshot) { got = append(got, s) }),
	)

	require.NoError(t, e.Tick(context.Background()))
	require.Len(t, got, 1)
	assert.Equal(t, status.Safe, got[0].Status.Status)
}
