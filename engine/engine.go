package engine

import (
	"context"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-deferred/engine/config"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gbuffer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/logger"
	"github.com/Carmen-Shannon/oxy-deferred/engine/profiler"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/scene"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// FrameCallback receives every frame rendered by Run. Returning an error stops Run.
type FrameCallback func(out *gbuffer.Radiance, stats renderer.FrameStats) error

// engine implements the Engine interface.
// Steps the scene at a fixed rate and renders it headlessly.
type engine struct {
	mu     *sync.Mutex
	logger *zap.Logger
	cfg    *config.Config

	scene        scene.Scene
	renderer     renderer.Renderer
	ownsRenderer bool

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate   time.Duration
	orbitSpeed       float32 // radians per second
	orbitSpeedSet    bool
	zoomSpeed        float32    // world units per second
	panSpeed         [2]float32 // right, up in world units per second
	tickCallback     func(deltaTime float32)
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	closed bool
}

// Engine is the main entry point for headless rendering.
// It owns a scene and a renderer and drives them frame by frame.
type Engine interface {
	// Config returns the configuration the engine was built from.
	Config() *config.Config

	// Scene returns the scene being rendered.
	Scene() scene.Scene

	// Renderer returns the renderer.
	Renderer() renderer.Renderer

	// Profiler returns the engine profiler.
	Profiler() *profiler.Profiler

	// EnableProfiler enables periodic performance summaries.
	EnableProfiler()

	// DisableProfiler disables performance summaries.
	DisableProfiler()

	// SetTickRate sets the fixed simulation rate in ticks per second.
	//
	// Parameters:
	//   - fps: ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called once per step, before the scene advances.
	//
	// Parameters:
	//   - callback: function receiving the fixed delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit caps how often Run renders.
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Step advances the simulation by dt: tick callback, object animation, then camera orbit,
	// zoom and pan at their configured rates.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Step(dt float32)

	// RenderFrame snapshots the scene and renders it once without advancing time.
	//
	// Parameters:
	//   - ctx: bounds the wait for a renderer frame slot
	//
	// Returns:
	//   - *gbuffer.Radiance: the resolved frame
	//   - renderer.FrameStats: counters and timings
	//   - error: if the snapshot or the frame fails
	RenderFrame(ctx context.Context) (*gbuffer.Radiance, renderer.FrameStats, error)

	// Run steps and renders frames until n frames are done (n <= 0 runs until ctx ends),
	// handing each one to cb.
	//
	// Parameters:
	//   - ctx: cancels the loop
	//   - n: number of frames, or <= 0 for unbounded
	//   - cb: optional per-frame callback
	//
	// Returns:
	//   - error: the first frame or callback error, or ctx.Err() when a bounded run is cut short
	Run(ctx context.Context, n int, cb FrameCallback) error

	// Close releases the renderer if the engine created it. Safe to call more than once.
	Close()
}

var _ Engine = &engine{}

// NewEngine creates an Engine from a configuration. The scene and renderer are built from cfg
// unless supplied with WithScene and WithRenderer.
//
// Parameters:
//   - cfg: the configuration; nil uses config.Default()
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: if the configuration is invalid or a component could not be built
func NewEngine(cfg *config.Config, options ...EngineBuilderOption) (Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rate := cfg.TickRate
	if rate <= 0 {
		rate = config.DefaultTickRate
	}
	e := &engine{
		mu:             &sync.Mutex{},
		cfg:            cfg,
		engineTickRate: time.Duration(float64(time.Second) / rate),
		zoomSpeed:      cfg.Camera.ZoomSpeed,
		panSpeed:       cfg.Camera.PanSpeed,
	}
	for _, opt := range options {
		opt(e)
	}

	if e.logger == nil {
		l, err := logger.New(cfg.Debug)
		if err != nil {
			return nil, err
		}
		e.logger = l
	}
	if !e.orbitSpeedSet {
		e.orbitSpeed = mgl32.DegToRad(cfg.Camera.OrbitSpeed)
	}
	e.profiler = profiler.NewProfiler(logger.Named(e.logger, "profiler"), profiler.WithInterval(cfg.ProfileInterval))

	if e.scene == nil {
		cam, err := cfg.BuildCamera()
		if err != nil {
			return nil, errors.Wrap(err, "engine: camera")
		}
		reg, err := cfg.BuildRegistry()
		if err != nil {
			return nil, errors.Wrap(err, "engine: lights")
		}
		e.scene = scene.NewScene("main", cam, scene.WithLightRegistry(reg))
	}

	if e.renderer == nil {
		r, err := renderer.NewRenderer(cfg.Width, cfg.Height, cfg.RendererOptions(logger.Named(e.logger, "renderer"))...)
		if err != nil {
			return nil, errors.Wrap(err, "engine: renderer")
		}
		e.renderer = r
		e.ownsRenderer = true
	}

	e.logger.Info("engine ready",
		zap.Int("width", e.renderer.Width()),
		zap.Int("height", e.renderer.Height()),
		zap.Int("lights", e.scene.Lights().Len()),
		zap.Int("objects", e.scene.Count()),
	)
	return e, nil
}

func (e *engine) Config() *config.Config {
	return e.cfg
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60.0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.engineTickRate = time.Duration(float64(time.Second) / fps)
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) Step(dt float32) {
	e.mu.Lock()
	cb := e.tickCallback
	orbit, zoom, pan := e.orbitSpeed, e.zoomSpeed, e.panSpeed
	e.mu.Unlock()

	if cb != nil {
		cb(dt)
	}
	e.scene.Advance(dt)

	ctrl := e.scene.Camera().Controller()
	if ctrl == nil {
		return
	}
	if orbit != 0 {
		ctrl.Orbit(orbit*dt, 0)
	}
	if zoom != 0 {
		ctrl.Zoom(zoom * dt)
	}
	if pan[0] != 0 {
		ctrl.PanRight(pan[0] * dt)
	}
	if pan[1] != 0 {
		ctrl.PanUp(pan[1] * dt)
	}
}

func (e *engine) RenderFrame(ctx context.Context) (*gbuffer.Radiance, renderer.FrameStats, error) {
	snap, err := e.scene.Snapshot()
	if err != nil {
		return nil, renderer.FrameStats{}, errors.Wrap(err, "engine: snapshot")
	}
	out, stats, err := e.renderer.RenderFrame(ctx, snap)
	if err != nil {
		return nil, stats, err
	}

	e.mu.Lock()
	profiling := e.profilingEnabled
	e.mu.Unlock()
	if profiling {
		e.profiler.Record(stats.Geometry, stats.Lighting)
		e.profiler.Tick()
	}
	return out, stats, nil
}

func (e *engine) Run(ctx context.Context, n int, cb FrameCallback) error {
	e.mu.Lock()
	dt := float32(e.engineTickRate.Seconds())
	limit := e.renderFrameLimit
	e.mu.Unlock()

	e.logger.Debug("run started", zap.Int("frames", n), zap.Float32("dt", dt))
	for i := 0; n <= 0 || i < n; i++ {
		if err := ctx.Err(); err != nil {
			if n <= 0 {
				return nil
			}
			return err
		}
		start := time.Now()

		e.Step(dt)
		out, stats, err := e.RenderFrame(ctx)
		if err != nil {
			if n <= 0 && ctx.Err() != nil {
				return nil
			}
			e.logger.Error("frame failed", zap.Int("index", i), zap.Error(err))
			return err
		}
		if cb != nil {
			if err := cb(out, stats); err != nil {
				return errors.Wrapf(err, "engine: frame %d callback", stats.Frame)
			}
		}

		if wait := limit - time.Since(start); limit > 0 && wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
			case <-timer.C:
			}
		}
	}
	return nil
}

func (e *engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	if e.ownsRenderer {
		e.renderer.Close()
	}
	_ = e.logger.Sync()
}
