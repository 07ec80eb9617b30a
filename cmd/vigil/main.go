// Vigil - live exam monitoring daemon
//
// Captures webcam frames and microphone audio, classifies subject
// behavior into a three-level status, and serves a reviewer dashboard.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/proctorlabs/go-vigil/internal/config"
	"github.com/proctorlabs/go-vigil/internal/log"
	"github.com/proctorlabs/go-vigil/pkg/analysis"
	"github.com/proctorlabs/go-vigil/pkg/audio"
	"github.com/proctorlabs/go-vigil/pkg/camera"
	"github.com/proctorlabs/go-vigil/pkg/debug"
	"github.com/proctorlabs/go-vigil/pkg/detection"
	"github.com/proctorlabs/go-vigil/pkg/monitor"
	"github.com/proctorlabs/go-vigil/pkg/web"
)

func main() {
	config.LoadDotenv()

	var (
		port       = flag.String("port", config.DashboardPort(), "Dashboard port")
		device     = flag.Int("camera", config.CameraDevice(), "Capture device index")
		model      = flag.String("model", config.ModelPath(), "YuNet ONNX model path")
		highRes    = flag.Bool("high-res", false, "Capture at 1280x720 instead of 640x480")
		noAudio    = flag.Bool("no-audio", config.AudioDisabled(), "Disable audio monitoring")
		strict     = flag.Bool("strict", false, "Use strict movement thresholds")
		debugTrack = flag.Bool("debug-tracking", false, "Verbose per-frame detection logs")
	)
	flag.Parse()

	log.Init(config.LogLevel())
	debug.Tracking = *debugTrack

	// Camera: a missing video device is fatal, there is no fallback
	camCfg := camera.DefaultConfig()
	if *highRes {
		camCfg = camera.HighResConfig()
	}
	camCfg.Device = *device

	frames, err := camera.OpenWebcam(camCfg)
	if err != nil {
		log.Error("camera unavailable", "error", err)
		os.Exit(1)
	}
	defer frames.Close()

	// Face detector
	detCfg := detection.DefaultConfig()
	detCfg.ModelPath = *model
	detector, err := detection.NewYuNet(detCfg)
	if err != nil {
		log.Error("face detector unavailable", "error", err)
		os.Exit(1)
	}
	defer detector.Close()

	// Engine configuration
	engCfg := monitor.DefaultConfig()
	if *strict {
		engCfg.Analysis = analysis.StrictConfig()
	}
	engCfg.Analysis.FrameWidth = camCfg.Width

	opts := []monitor.Option{monitor.WithLogger(log.L())}

	// Audio is optional: a denied microphone degrades to video-only
	if !*noAudio {
		audioCfg := audio.DefaultConfig()
		audioCfg.Device = config.AudioDevice()
		opts = append(opts, monitor.WithAudio(
			audio.NewAnalyzer(audioCfg, audio.DefaultNoiseConfig(), log.L()),
		))
	}

	engine := monitor.New(engCfg, frames, detector, opts...)

	// Dashboard
	server := web.NewServer(*port, engine)
	engine.SetOnUpdate(server.PublishSnapshot)
	engine.Alerts().SetOnEmit(server.PublishAlert)
	server.StartAsync()
	defer server.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := engine.Run(ctx); err != nil {
		log.Error("monitoring failed", "error", err)
		os.Exit(1)
	}
}
