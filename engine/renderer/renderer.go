package renderer

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-deferred/engine/camera"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gbuffer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/light"
	"github.com/Carmen-Shannon/oxy-deferred/engine/scene"
	"github.com/Carmen-Shannon/oxy-deferred/engine/shading"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/loov/hrtime"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// DefaultFramesInFlight is the number of frames that may render concurrently by default.
const DefaultFramesInFlight = 2

// ErrRendererClosed is returned by RenderFrame after Close.
var ErrRendererClosed = errors.New("renderer: closed")

// FrameStats describes one rendered frame.
type FrameStats struct {
	Frame               uint64
	Slot                int
	ObjectsDrawn        int
	ObjectsCulled       int
	TrianglesRasterized int
	FragmentsDiscarded  int
	PixelsShaded        int
	Geometry            time.Duration
	Lighting            time.Duration
}

// frameSlot owns the attachments of one frame in flight.
type frameSlot struct {
	index    int
	gbuffer  *gbuffer.GBuffer
	radiance *gbuffer.Radiance
}

// renderer implements the Renderer interface.
type renderer struct {
	mu     *sync.Mutex
	logger *zap.Logger

	width          int
	height         int
	workers        int
	framesInFlight int

	ambientOcclusion float32
	distanceScale    float32
	clearColor       mgl32.Vec4

	backendType RendererBackendType
	backend     RendererBackend

	pool     worker.DynamicWorkerPool
	geometry *GeometryPass
	lighting *LightingPass

	inFlight *semaphore.Weighted
	free     []*frameSlot
	frame    atomic.Uint64
	closed   bool
}

// Renderer runs the deferred pipeline: a geometry pass into a G-buffer followed by a lighting
// pass that resolves it into radiance. Up to FramesInFlight frames may render at once, each
// with its own attachments and uniform slot.
type Renderer interface {
	// Width returns the render target width in pixels.
	Width() int

	// Height returns the render target height in pixels.
	Height() int

	// FramesInFlight returns the size of the frame ring.
	FramesInFlight() int

	// Backend returns the backend frames are mirrored to.
	Backend() RendererBackend

	// AmbientOcclusion returns the constant occlusion written by the geometry pass.
	AmbientOcclusion() float32

	// DistanceScale returns the point light distance scale used by the lighting pass.
	DistanceScale() float32

	// RenderFrame renders one frame of a snapshot. It blocks while every frame slot is busy
	// and returns early if ctx is done before a slot frees up.
	//
	// Parameters:
	//   - ctx: bounds the wait for a free frame slot
	//   - snap: the scene state to draw
	//
	// Returns:
	//   - *gbuffer.Radiance: the resolved frame, owned by the caller
	//   - FrameStats: counters and pass timings
	//   - error: if the context ends, the light snapshot is over capacity, or the backend fails
	RenderFrame(ctx context.Context, snap scene.Snapshot) (*gbuffer.Radiance, FrameStats, error)

	// Close stops the lighting workers and releases the backend. Frames already rendering
	// finish first.
	Close()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer with a width x height target.
// The backend defaults to an in-memory one and the logger to zap.NewNop().
//
// Parameters:
//   - width, height: render target size in pixels
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: if the size is invalid or the backend could not be created
func NewRenderer(width, height int, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:               &sync.Mutex{},
		logger:           zap.NewNop(),
		width:            width,
		height:           height,
		workers:          max(runtime.NumCPU()-1, 1),
		framesInFlight:   DefaultFramesInFlight,
		ambientOcclusion: shading.DefaultAmbientOcclusion,
		distanceScale:    shading.DefaultDistanceScale,
		clearColor:       mgl32.Vec4{0, 0, 0, 1},
		backendType:      BackendTypeMemory,
	}
	for _, option := range options {
		option(r)
	}
	if width <= 0 || height <= 0 {
		return nil, errors.Newf("renderer: invalid size %dx%d", width, height)
	}
	r.framesInFlight = max(r.framesInFlight, 1)

	if r.backend == nil {
		backend, err := newBackend(r.backendType, r.framesInFlight)
		if err != nil {
			return nil, err
		}
		r.backend = backend
	}
	if r.backend.FramesInFlight() < r.framesInFlight {
		return nil, errors.Newf("renderer: backend holds %d frame slots, need %d", r.backend.FramesInFlight(), r.framesInFlight)
	}

	r.free = make([]*frameSlot, 0, r.framesInFlight)
	for i := 0; i < r.framesInFlight; i++ {
		gb, err := gbuffer.New(width, height)
		if err != nil {
			return nil, err
		}
		rad, err := gbuffer.NewRadiance(width, height)
		if err != nil {
			return nil, err
		}
		r.free = append(r.free, &frameSlot{index: i, gbuffer: gb, radiance: rad})
	}

	r.inFlight = semaphore.NewWeighted(int64(r.framesInFlight))
	r.pool = worker.NewDynamicWorkerPool(r.workers, 256, 1*time.Second)
	r.geometry = NewGeometryPass(r.ambientOcclusion)
	r.lighting = NewLightingPass(r.pool, r.workers*4, r.distanceScale, r.clearColor)

	r.logger.Debug("renderer created",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("workers", r.workers),
		zap.Int("frames_in_flight", r.framesInFlight),
		zap.Stringer("backend", r.backend.Type()),
	)
	return r, nil
}

func newBackend(t RendererBackendType, framesInFlight int) (RendererBackend, error) {
	switch t {
	case BackendTypeMemory:
		return NewMemoryRendererBackend(framesInFlight), nil
	case BackendTypeWGPU:
		return NewWGPURendererBackend(framesInFlight, false)
	}
	return nil, errors.Newf("renderer: unknown backend type %d", int(t))
}

func (r *renderer) Width() int {
	return r.width
}

func (r *renderer) Height() int {
	return r.height
}

func (r *renderer) FramesInFlight() int {
	return r.framesInFlight
}

func (r *renderer) Backend() RendererBackend {
	return r.backend
}

func (r *renderer) AmbientOcclusion() float32 {
	return r.ambientOcclusion
}

func (r *renderer) DistanceScale() float32 {
	return r.distanceScale
}

func (r *renderer) acquire(ctx context.Context) (*frameSlot, error) {
	if err := r.inFlight.Acquire(ctx, 1); err != nil {
		return nil, errors.Wrap(err, "renderer: waiting for a frame slot")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.inFlight.Release(1)
		return nil, ErrRendererClosed
	}
	slot := r.free[len(r.free)-1]
	r.free = r.free[:len(r.free)-1]
	return slot, nil
}

func (r *renderer) release(slot *frameSlot) {
	r.mu.Lock()
	r.free = append(r.free, slot)
	r.mu.Unlock()
	r.inFlight.Release(1)
}

func (r *renderer) RenderFrame(ctx context.Context, snap scene.Snapshot) (*gbuffer.Radiance, FrameStats, error) {
	slot, err := r.acquire(ctx)
	if err != nil {
		return nil, FrameStats{}, err
	}
	defer r.release(slot)

	stats := FrameStats{Frame: r.frame.Add(1), Slot: slot.index}

	lights, err := light.PackLightUniform(snap.Lights, snap.View)
	if err != nil {
		return nil, stats, errors.Wrapf(err, "renderer: frame %d", stats.Frame)
	}
	cam := camera.NewGPUCameraUniformFromMatrices(snap.View, snap.Projection, snap.InverseProjection, snap.CameraPosition)
	if err := r.backend.WriteFrameUniforms(slot.index, cam.Marshal(), lights.Marshal()); err != nil {
		return nil, stats, errors.Wrapf(err, "renderer: frame %d uniforms", stats.Frame)
	}

	visible := r.geometry.Cull(snap)
	if err := r.backend.UploadObjects(slot.index, visible); err != nil {
		return nil, stats, errors.Wrapf(err, "renderer: frame %d objects", stats.Frame)
	}

	start := hrtime.Now()
	geo := r.geometry.Draw(slot.gbuffer, snap, visible)
	stats.Geometry = hrtime.Since(start)
	stats.ObjectsDrawn = geo.ObjectsDrawn
	stats.ObjectsCulled = geo.ObjectsCulled
	stats.TrianglesRasterized = geo.TrianglesRasterized
	stats.FragmentsDiscarded = geo.FragmentsDiscarded

	start = hrtime.Now()
	shaded, err := r.lighting.Execute(slot.gbuffer, slot.radiance, &lights, snap.InverseProjection)
	if err != nil {
		return nil, stats, errors.Wrapf(err, "renderer: frame %d lighting", stats.Frame)
	}
	stats.Lighting = hrtime.Since(start)
	stats.PixelsShaded = shaded

	if err := r.backend.Present(slot.index, slot.radiance); err != nil {
		return nil, stats, errors.Wrapf(err, "renderer: frame %d present", stats.Frame)
	}

	out, err := gbuffer.NewRadiance(r.width, r.height)
	if err != nil {
		return nil, stats, err
	}
	if err := out.CopyFrom(slot.radiance); err != nil {
		return nil, stats, err
	}

	r.logger.Debug("frame rendered",
		zap.Uint64("frame", stats.Frame),
		zap.Int("slot", stats.Slot),
		zap.Int("objects", stats.ObjectsDrawn),
		zap.Int("culled", stats.ObjectsCulled),
		zap.Int("pixels", stats.PixelsShaded),
		zap.Duration("geometry", stats.Geometry),
		zap.Duration("lighting", stats.Lighting),
	)
	return out, stats, nil
}

func (r *renderer) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	// Drain the ring so frames already rendering finish before the pool stops.
	_ = r.inFlight.Acquire(context.Background(), int64(r.framesInFlight))
	r.pool.Stop()
	r.backend.Release()
	r.inFlight.Release(int64(r.framesInFlight))
	r.logger.Debug("renderer closed", zap.Uint64("frames", r.frame.Load()))
}
