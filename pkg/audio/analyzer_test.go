package audio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzer_Lifecycle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = BackendMock
	cfg.BufferDuration = 5 * time.Millisecond

	a := NewAnalyzer(cfg, DefaultNoiseConfig(), nil)

	// Before Start: inactive, zero result
	r, active := a.Latest()
	assert.False(t, active)
	assert.False(t, r.NoiseDetected)

	source := NewMockSource(cfg, nil, WithSineWave(1000, 0.5))
	require.NoError(t, a.StartWithSource(context.Background(), source))

	// Let a few ticks land
	deadline := time.Now().Add(time.Second)
	for {
		if _, active = a.Latest(); active {
			if r, _ = a.Latest(); r.VolumeLevel > 0 {
				break
			}
		}
		if time.Now().After(deadline) {
			t.Fatal("no audio result observed before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}

	require.NoError(t, a.Stop())

	// After Stop: inactive again, zero result for the aggregator
	r, active = a.Latest()
	assert.False(t, active)
	assert.False(t, r.NoiseDetected)

	// Stop is idempotent
	assert.NoError(t, a.Stop())
}

func TestAnalyzer_StartFailureIsReturned(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleRate = -1 // invalid: source construction must fail

	a := NewAnalyzer(cfg, DefaultNoiseConfig(), nil)
	err := a.Start(context.Background())
	require.Error(t, err)

	_, active := a.Latest()
	assert.False(t, active, "failed start must leave the analyzer inactive")
}
