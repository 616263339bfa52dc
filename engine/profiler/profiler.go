package profiler

import (
	"runtime"
	"sync"
	"time"

	"github.com/loov/hrtime"
	"go.uber.org/zap"
)

// Summary is the aggregate of one reporting interval.
type Summary struct {
	Frames       int
	FPS          float64
	AvgGeometry  time.Duration
	AvgLighting  time.Duration
	MaxFrameTime time.Duration
	HeapMB       float64
	GCCount      uint32
}

// Profiler tracks frame rate, pass timings and memory statistics.
// Outputs a summary to the logger at a configurable interval.
type Profiler struct {
	mu             *sync.Mutex
	logger         *zap.Logger
	updateInterval time.Duration

	frameCount   int
	lastTime     time.Duration
	geometry     time.Duration
	lighting     time.Duration
	maxFrameTime time.Duration
	memStats     runtime.MemStats
	last         Summary
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second.
//
// Parameters:
//   - logger: destination of the summaries; nil logs nothing
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(logger *zap.Logger, options ...ProfilerBuilderOption) *Profiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Profiler{
		mu:             &sync.Mutex{},
		logger:         logger,
		updateInterval: time.Second,
		lastTime:       hrtime.Now(),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Record adds the pass timings of one frame.
//
// Parameters:
//   - geometry: geometry pass duration
//   - lighting: lighting pass duration
func (p *Profiler) Record(geometry, lighting time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.geometry += geometry
	p.lighting += lighting
	p.maxFrameTime = max(p.maxFrameTime, geometry+lighting)
}

// Tick should be called once per frame.
// Logs a summary when the update interval has elapsed.
//
// Returns:
//   - bool: true if a summary was logged this tick
func (p *Profiler) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frameCount++
	now := hrtime.Now()
	elapsed := now - p.lastTime
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	frames := time.Duration(p.frameCount)
	s := Summary{
		Frames:       p.frameCount,
		FPS:          float64(p.frameCount) / elapsed.Seconds(),
		AvgGeometry:  p.geometry / frames,
		AvgLighting:  p.lighting / frames,
		MaxFrameTime: p.maxFrameTime,
		HeapMB:       float64(p.memStats.Alloc) / 1024 / 1024,
		GCCount:      p.memStats.NumGC,
	}
	p.logger.Info("profiler",
		zap.Float64("fps", s.FPS),
		zap.Duration("geometry_avg", s.AvgGeometry),
		zap.Duration("lighting_avg", s.AvgLighting),
		zap.Duration("frame_max", s.MaxFrameTime),
		zap.Float64("heap_mb", s.HeapMB),
		zap.Uint32("gc", s.GCCount),
	)

	p.last = s
	p.frameCount = 0
	p.geometry, p.lighting, p.maxFrameTime = 0, 0, 0
	p.lastTime = now
	return true
}

// Last returns the most recently logged summary.
func (p *Profiler) Last() Summary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}
