// Simulate - hardware-free monitoring session runner
//
// Drives a real engine with a scripted detector and synthetic audio,
// printing every status transition. Useful for tuning thresholds and
// demoing the alert flow without a camera or microphone.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/proctorlabs/go-vigil/internal/log"
	"github.com/proctorlabs/go-vigil/pkg/audio"
	"github.com/proctorlabs/go-vigil/pkg/camera"
	"github.com/proctorlabs/go-vigil/pkg/detection"
	"github.com/proctorlabs/go-vigil/pkg/monitor"
)

func main() {
	var (
		ticks = flag.Int("ticks", 40, "Number of video ticks to simulate")
		noisy = flag.Bool("noisy", false, "Simulate erratic audio volume")
	)
	flag.Parse()

	log.Init("warn")

	engine := buildEngine(*noisy)

	fmt.Println("tick  status   attention  message")
	fmt.Println("----  -------  ---------  -------")

	ctx := context.Background()
	last := ""
	for i := 0; i < *ticks; i++ {
		if err := engine.Tick(ctx); err != nil {
			fmt.Printf("simulation aborted: %v\n", err)
			return
		}

		snap := engine.Snapshot()
		if snap.Status.Message != last {
			fmt.Printf("%4d  %-7s  %9d  %s\n",
				i, snap.Status.Status, snap.Detection.EstimatedAttention, snap.Status.Message)
			last = snap.Status.Message
		}

		time.Sleep(50 * time.Millisecond)
	}

	fmt.Println()
	fmt.Printf("alerts emitted: %d\n", engine.Alerts().Len())
	for _, a := range engine.Alerts().Alerts() {
		fmt.Printf("  [%s] %-7s  %s\n", a.Timestamp.Format("15:04:05.000"), a.Type, a.Message)
	}
}

// buildEngine assembles an engine over a scripted session: a calm
// face, a burst of rapid movement, a disappearance, a second person,
// and recovery.
func buildEngine(noisy bool) *monitor.Engine {
	var frames [][]detection.Observation

	face := func(x float64) []detection.Observation {
		return []detection.Observation{detection.Box(x-50, 190, x+50, 290)}
	}

	// Phase 1: calm (8 ticks)
	for i := 0; i < 8; i++ {
		frames = append(frames, face(320))
	}
	// Phase 2: rapid oscillation (8 ticks)
	for i := 0; i < 8; i++ {
		x := 300.0
		if i%2 == 1 {
			x = 360.0
		}
		frames = append(frames, face(x))
	}
	// Phase 3: disappearance (5 ticks)
	for i := 0; i < 5; i++ {
		frames = append(frames, nil)
	}
	// Phase 4: a second face joins (4 ticks)
	for i := 0; i < 4; i++ {
		frames = append(frames, append(face(280), detection.Box(420, 180, 540, 300)))
	}
	// Phase 5: recovery (rest of the run)
	frames = append(frames, face(320))

	// Compress time so the simulation runs quickly: 50ms wall-clock
	// per tick, virtual clock stepped a full 500ms
	virtual := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		virtual = virtual.Add(500 * time.Millisecond)
		return virtual
	}

	cfg := monitor.DefaultConfig()
	opts := []monitor.Option{monitor.WithClock(clock)}

	if noisy {
		audioCfg := audio.DefaultConfig()
		audioCfg.Backend = audio.BackendMock
		audioCfg.BufferDuration = 50 * time.Millisecond

		analyzer := audio.NewAnalyzer(audioCfg, audio.DefaultNoiseConfig(), log.L())
		source := audio.NewMockSource(audioCfg, log.L(),
			audio.WithAmplitudePattern(1000, []float64{0.9, 0.0, 0.8, 0.1}))
		if err := analyzer.StartWithSource(context.Background(), source); err == nil {
			opts = append(opts, monitor.WithAudio(analyzer))
		}
	}

	return monitor.New(cfg, camera.NewMockSource(), detection.NewMockDetector(frames...), opts...)
}
