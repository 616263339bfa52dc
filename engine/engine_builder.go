package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the fixed simulation rate in ticks per second, overriding the configuration.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithTickCallback registers the function called once per step.
//
// Parameters:
//   - callback: receives the fixed delta time in seconds
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickCallback(callback func(deltaTime float32)) EngineBuilderOption {
	return func(e *engine) {
		e.tickCallback = callback
	}
}

// WithLogger sets the logger the engine and the components it builds use.
// Without it the engine builds one with logger.New(cfg.Debug).
//
// Parameters:
//   - l: the zap logger
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(l *zap.Logger) EngineBuilderOption {
	return func(e *engine) {
		e.logger = l
	}
}

// WithScene renders s instead of a scene built from the configuration.
//
// Parameters:
//   - s: the Scene to render
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scene = s
	}
}

// WithRenderer uses r instead of a renderer built from the configuration. The engine does not
// close a renderer it did not create.
//
// Parameters:
//   - r: the Renderer to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithOrbitSpeed rotates the camera around its target every step, overriding the configuration.
//
// Parameters:
//   - degreesPerSecond: azimuth change per simulated second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithOrbitSpeed(degreesPerSecond float32) EngineBuilderOption {
	return func(e *engine) {
		e.orbitSpeed = mgl32.DegToRad(degreesPerSecond)
		e.orbitSpeedSet = true
	}
}

// WithZoomSpeed moves the camera toward its target every step, overriding the configuration.
// Negative speeds move it away. The orbit radius bounds still apply.
//
// Parameters:
//   - unitsPerSecond: radius change per simulated second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithZoomSpeed(unitsPerSecond float32) EngineBuilderOption {
	return func(e *engine) {
		e.zoomSpeed = unitsPerSecond
	}
}

// WithPanSpeed translates the camera and its target along the camera's right and up axes every
// step, overriding the configuration.
//
// Parameters:
//   - right: world units per second along the right axis
//   - up: world units per second along the up axis
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPanSpeed(right, up float32) EngineBuilderOption {
	return func(e *engine) {
		e.panSpeed = [2]float32{right, up}
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}
