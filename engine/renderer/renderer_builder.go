package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithLogger sets the logger used for renderer diagnostics.
//
// Parameters:
//   - logger: the zap logger; nil keeps the no-op default
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(logger *zap.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithWorkers sets how many workers the lighting pass uses.
// Values <= 0 keep the default of runtime.NumCPU()-1.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - RendererBuilderOption: a function that applies the workers option to a renderer
func WithWorkers(n int) RendererBuilderOption {
	return func(r *renderer) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithFramesInFlight sets the size of the frame ring.
//
// Parameters:
//   - n: number of frames that may render at once (default 2)
//
// Returns:
//   - RendererBuilderOption: a function that applies the frames in flight option to a renderer
func WithFramesInFlight(n int) RendererBuilderOption {
	return func(r *renderer) {
		r.framesInFlight = n
	}
}

// WithAmbientOcclusion sets the constant occlusion the geometry pass writes.
//
// Parameters:
//   - ao: occlusion in [0, 1] (default 0.5)
//
// Returns:
//   - RendererBuilderOption: a function that applies the ambient occlusion option to a renderer
func WithAmbientOcclusion(ao float32) RendererBuilderOption {
	return func(r *renderer) {
		r.ambientOcclusion = ao
	}
}

// WithDistanceScale sets the factor point light distances are multiplied by before attenuation.
//
// Parameters:
//   - scale: the distance scale (default 0.2)
//
// Returns:
//   - RendererBuilderOption: a function that applies the distance scale option to a renderer
func WithDistanceScale(scale float32) RendererBuilderOption {
	return func(r *renderer) {
		r.distanceScale = scale
	}
}

// WithClearColor sets the radiance of pixels no geometry covered.
//
// Parameters:
//   - c: linear RGBA clear color
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color option to a renderer
func WithClearColor(c mgl32.Vec4) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = c
	}
}

// WithBackendType selects the backend NewRenderer creates. Ignored when WithBackend is used.
//
// Parameters:
//   - t: the backend type (default BackendTypeMemory)
//
// Returns:
//   - RendererBuilderOption: a function that applies the backend type option to a renderer
func WithBackendType(t RendererBackendType) RendererBuilderOption {
	return func(r *renderer) {
		r.backendType = t
	}
}

// WithBackend uses an existing backend. It must hold at least as many slots as frames in flight.
//
// Parameters:
//   - b: the backend
//
// Returns:
//   - RendererBuilderOption: a function that applies the backend option to a renderer
func WithBackend(b RendererBackend) RendererBuilderOption {
	return func(r *renderer) {
		r.backend = b
	}
}
