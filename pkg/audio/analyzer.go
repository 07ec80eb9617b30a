package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// fftWindow is the number of samples fed to the FFT per tick.
const fftWindow = 1024

// Analyzer owns the capture device and runs the audio analysis loop on
// the capture tick. It is the audio half of the monitoring pipeline:
// source chunk -> magnitude snapshot -> volume -> noise classification.
//
// Start may fail when the device is denied or unavailable; the caller
// is expected to fall back to video-only monitoring in that case.
type Analyzer struct {
	cfg      Config
	noiseCfg NoiseConfig
	logger   *slog.Logger

	spectrum *Spectrum
	noise    *NoiseAnalyzer

	mu     sync.RWMutex
	source Source
	latest Result
	active bool

	cancel context.CancelFunc
	done   chan struct{}
}

// NewAnalyzer creates an analyzer; no device is touched until Start.
func NewAnalyzer(cfg Config, noiseCfg NoiseConfig, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		cfg:      cfg,
		noiseCfg: noiseCfg,
		logger:   logger,
		spectrum: NewSpectrum(fftWindow),
		noise:    NewNoiseAnalyzer(noiseCfg),
	}
}

// Start acquires the capture device and launches the analysis loop.
// A device failure is returned to the caller, not raised later from
// the loop.
func (a *Analyzer) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.active {
		return nil
	}

	source, err := NewSource(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("audio source: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := source.Start(runCtx); err != nil {
		cancel()
		source.Close()
		return fmt.Errorf("start capture: %w", err)
	}

	a.source = source
	a.cancel = cancel
	a.done = make(chan struct{})
	a.active = true

	go a.run(runCtx, source)

	a.logger.Info("audio analysis started", "backend", source.Name())

	return nil
}

// StartWithSource is Start with an injected source, for tests and the
// simulator.
func (a *Analyzer) StartWithSource(ctx context.Context, source Source) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.active {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := source.Start(runCtx); err != nil {
		cancel()
		return fmt.Errorf("start capture: %w", err)
	}

	a.source = source
	a.cancel = cancel
	a.done = make(chan struct{})
	a.active = true

	go a.run(runCtx, source)

	return nil
}

func (a *Analyzer) run(ctx context.Context, source Source) {
	defer close(a.done)

	for {
		chunk, err := source.Read(ctx)
		if err != nil {
			// Stopped or device lost: report inactive, keep last window
			a.mu.Lock()
			a.active = false
			a.mu.Unlock()
			a.logger.Debug("audio loop ended", "error", err)
			return
		}

		mags := a.spectrum.Magnitudes(chunk)
		result := a.noise.Process(Volume(mags))

		a.mu.Lock()
		a.latest = result
		a.mu.Unlock()
	}
}

// Latest returns the most recent analysis result and whether audio
// monitoring is currently active. With audio inactive the zero Result
// is returned, which reads as "no noise" to the aggregator.
func (a *Analyzer) Latest() (Result, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.active {
		return Result{}, false
	}
	return a.latest, true
}

// Stop releases the capture device and halts the loop. The noise
// window keeps its identity, so the analyzer can be started again.
func (a *Analyzer) Stop() error {
	a.mu.Lock()
	if !a.active && a.source == nil {
		a.mu.Unlock()
		return nil
	}
	cancel := a.cancel
	source := a.source
	done := a.done
	a.source = nil
	a.cancel = nil
	a.active = false
	a.latest = Result{}
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if source != nil {
		source.Stop()
		source.Close()
	}
	if done != nil {
		<-done
	}

	a.logger.Info("audio analysis stopped")

	return nil
}
