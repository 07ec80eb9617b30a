//go:build linux

package audio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
)

// ALSASource captures audio on Linux by reading raw PCM from arecord.
// Running the capture through a child process keeps the module free of
// cgo while still using the real device stack.
type ALSASource struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	running  bool
	closed   bool
	streamCh chan Chunk
	stopCh   chan struct{}
	done     chan struct{}
	cmd      *exec.Cmd

	// Stats
	chunksRead  atomic.Int64
	samplesRead atomic.Int64
	overruns    atomic.Int64

	device string
}

// newALSASource creates a new ALSA audio source.
func newALSASource(cfg Config, logger *slog.Logger) (Source, error) {
	device := cfg.Device
	if device == "" {
		device = "default"
	}

	if _, err := exec.LookPath("arecord"); err != nil {
		return nil, fmt.Errorf("arecord not available: %w", err)
	}

	s := &ALSASource{
		cfg:      cfg,
		logger:   logger,
		device:   device,
		streamCh: make(chan Chunk, 10),
		stopCh:   make(chan struct{}),
	}

	logger.Info("ALSA source created",
		"device", device,
		"sample_rate", cfg.SampleRate,
		"channels", cfg.Channels,
	)

	return s, nil
}

// Start begins audio capture.
func (s *ALSASource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return io.ErrClosedPipe
	}
	if s.running {
		return nil
	}

	cmd := exec.Command("arecord",
		"-D", s.device,
		"-f", "S16_LE",
		"-r", strconv.Itoa(s.cfg.SampleRate),
		"-c", strconv.Itoa(s.cfg.Channels),
		"-t", "raw",
		"-q",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("arecord stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start arecord: %w", err)
	}

	s.cmd = cmd
	s.running = true
	s.stopCh = make(chan struct{})
	s.streamCh = make(chan Chunk, 10)
	s.done = make(chan struct{})

	go s.captureLoop(ctx, stdout, s.stopCh, s.streamCh, s.done)

	s.logger.Info("ALSA audio source started", "device", s.device)

	return nil
}

// captureLoop reads raw PCM until stopped or the reader fails. It is
// the only sender on streamCh and the only goroutine that closes it,
// so a send can never race a close.
func (s *ALSASource) captureLoop(ctx context.Context, r io.Reader, stopCh <-chan struct{}, streamCh chan Chunk, done chan struct{}) {
	defer func() {
		close(streamCh)
		close(done)
	}()

	buf := make([]byte, s.cfg.BufferBytes())

	for {
		select {
		case <-ctx.Done():
			s.reap()
			return
		case <-stopCh:
			return
		default:
		}

		if _, err := io.ReadFull(r, buf); err != nil {
			// Device went away or the process was stopped
			s.logger.Debug("ALSA capture ended", "error", err)
			s.reap()
			return
		}

		var chunk Chunk
		chunk.FromBytes(buf, s.cfg.SampleRate, s.cfg.Channels)

		select {
		case streamCh <- chunk:
			s.chunksRead.Add(1)
			s.samplesRead.Add(int64(len(chunk.Samples)))
		default:
			s.overruns.Add(1)
			s.logger.Debug("ALSA source: buffer full, dropping chunk")
		}
	}
}

// reap marks the source stopped and kills the capture process. Called
// from the capture loop when it exits on its own.
func (s *ALSASource) reap() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
		_ = s.cmd.Wait()
		s.cmd = nil
	}
}

// Stop halts audio capture. Killing arecord unblocks a capture loop
// parked in a read; Stop returns once the loop has exited and closed
// the stream channel.
func (s *ALSASource) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	cmd := s.cmd
	s.cmd = nil
	done := s.done
	s.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}

	<-done

	s.logger.Info("ALSA audio source stopped")

	return nil
}

// Read reads the next audio chunk.
func (s *ALSASource) Read(ctx context.Context) (Chunk, error) {
	select {
	case <-ctx.Done():
		return Chunk{}, ctx.Err()
	case chunk, ok := <-s.streamCh:
		if !ok {
			return Chunk{}, io.EOF
		}
		return chunk, nil
	}
}

// Stream returns the audio chunk channel.
func (s *ALSASource) Stream() <-chan Chunk {
	return s.streamCh
}

// Config returns the audio configuration.
func (s *ALSASource) Config() Config {
	return s.cfg
}

// Name returns "alsa".
func (s *ALSASource) Name() string {
	return "alsa"
}

// Close releases resources.
func (s *ALSASource) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.Stop()
	return nil
}

// Stats returns source statistics.
func (s *ALSASource) Stats() SourceStats {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	return SourceStats{
		ChunksRead:  s.chunksRead.Load(),
		SamplesRead: s.samplesRead.Load(),
		Overruns:    s.overruns.Load(),
		Running:     running,
		Backend:     "alsa",
	}
}

// Ensure ALSASource implements SourceWithStats.
var _ SourceWithStats = (*ALSASource)(nil)
