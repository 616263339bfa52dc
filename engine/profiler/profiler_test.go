package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestProfiler_TickLogsAfterInterval(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := NewProfiler(zap.New(core), WithInterval(time.Nanosecond))

	p.Record(2*time.Millisecond, 4*time.Millisecond)
	p.Record(4*time.Millisecond, 6*time.Millisecond)
	time.Sleep(time.Millisecond)
	require.True(t, p.Tick())

	s := p.Last()
	assert.Equal(t, 1, s.Frames)
	assert.Equal(t, 6*time.Millisecond, s.AvgGeometry, "both records land in the single ticked frame")
	assert.Equal(t, 10*time.Millisecond, s.AvgLighting)
	assert.Equal(t, 10*time.Millisecond, s.MaxFrameTime)
	assert.Greater(t, s.FPS, 0.0)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "profiler", logs.All()[0].Message)
}

func TestProfiler_NoLogBeforeInterval(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := NewProfiler(zap.New(core), WithInterval(time.Hour))
	for i := 0; i < 10; i++ {
		p.Record(time.Millisecond, time.Millisecond)
		assert.False(t, p.Tick())
	}
	assert.Equal(t, 0, logs.Len())
	assert.Equal(t, Summary{}, p.Last())
}

func TestNewProfiler_NilLogger(t *testing.T) {
	p := NewProfiler(nil, WithInterval(-1))
	assert.Equal(t, time.Second, p.updateInterval)
	assert.NotPanics(t, func() { p.Tick() })
}
