package audio

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Rapid start/stop cycles with 1ms chunks keep the generate loop
// between its stop check and its send when Stop lands. Only the loop
// may close the stream channel, or one of these cycles panics.
func TestMockSource_StartStopStress(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = BackendMock
	cfg.BufferDuration = time.Millisecond

	source := NewMockSource(cfg, nil, WithSineWave(440, 0.5))

	for i := 0; i < 500; i++ {
		require.NoError(t, source.Start(context.Background()))
		require.NoError(t, source.Stop())
	}
}

func TestMockSource_StopDrainsToEOF(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = BackendMock
	cfg.BufferDuration = time.Millisecond

	source := NewMockSource(cfg, nil, WithSineWave(440, 0.5))
	require.NoError(t, source.Start(context.Background()))
	require.NoError(t, source.Stop())

	// The generator has exited by the time Stop returns, so the
	// stream drains to EOF instead of blocking
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for {
		_, err := source.Read(ctx)
		if err != nil {
			assert.ErrorIs(t, err, io.EOF)
			return
		}
	}
}

func TestMockSource_RestartAfterStop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = BackendMock
	cfg.BufferDuration = time.Millisecond

	source := NewMockSource(cfg, nil, WithSineWave(440, 0.5))

	require.NoError(t, source.Start(context.Background()))
	require.NoError(t, source.Stop())

	require.NoError(t, source.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	chunk, err := source.Read(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, chunk.Samples)

	require.NoError(t, source.Stop())
	require.NoError(t, source.Close())

	assert.ErrorIs(t, source.Start(context.Background()), io.ErrClosedPipe)
}
