package engine

import (
	"context"
	"testing"

	"github.com/Carmen-Shannon/oxy-deferred/engine/config"
	"github.com/Carmen-Shannon/oxy-deferred/engine/game_object"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gbuffer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/model"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/material"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testConfig = `
width: 40
height: 30
workers: 2
ambient: [0.1, 0.1, 0.1]
camera:
  radius: 5
  elevation: 20
lights:
  - kind: point
    position: [2, 3, 4]
  - kind: directional
    direction: [-1, -1, -1]
    color: [0.5, 0.5, 0.5]
`

func newTestEngine(t *testing.T, options ...EngineBuilderOption) Engine {
	t.Helper()
	cfg, err := config.Parse([]byte(testConfig))
	require.NoError(t, err)
	e, err := NewEngine(cfg, append([]EngineBuilderOption{WithLogger(zap.NewNop())}, options...)...)
	require.NoError(t, err)
	t.Cleanup(e.Close)

	mdl, err := model.NewModel(model.WithMesh(model.Cube(2, 0)))
	require.NoError(t, err)
	e.Scene().Add(game_object.NewGameObject(
		game_object.WithModel(mdl),
		game_object.WithMaterials(material.NewMaterial(material.WithAlbedoColor(mgl32.Vec4{0.8, 0.2, 0.2, 1}))),
	))
	return e
}

func TestNewEngine_BuildsFromConfig(t *testing.T) {
	e := newTestEngine(t)
	assert.Equal(t, 40, e.Renderer().Width())
	assert.Equal(t, 30, e.Renderer().Height())
	assert.Equal(t, 2, e.Scene().Lights().Len())
	assert.InDelta(t, 40.0/30.0, e.Scene().Camera().Aspect(), 1e-6)
	assert.NotNil(t, e.Profiler())
}

func TestNewEngine_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Width = -4
	_, err := NewEngine(cfg, WithLogger(zap.NewNop()))
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))
}

func TestEngine_RenderFrame(t *testing.T) {
	e := newTestEngine(t)
	out, stats, err := e.RenderFrame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ObjectsDrawn)
	assert.Positive(t, stats.PixelsShaded)

	c := out.At(20, 15)
	assert.Greater(t, c[0], c[2], "the red cube fills the center of the frame")
}

func TestEngine_StepZoomsAndPansCamera(t *testing.T) {
	cfg, err := config.Parse([]byte(`
width: 16
height: 16
camera:
  radius: 5
  elevation: 20
  zoom_speed: 1
  pan_speed: [2, 0]
  radius_bounds: [4, 8]
`))
	require.NoError(t, err)
	e, err := NewEngine(cfg, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	defer e.Close()

	ctrl := e.Scene().Camera().Controller()
	require.NotNil(t, ctrl)

	e.Step(0.5)
	assert.InDelta(t, 4.5, ctrl.Radius(), 1e-5)
	assert.InDelta(t, 1, ctrl.Target()[0], 1e-5, "azimuth 0 puts the right axis on +X")
	assert.InDelta(t, 0, ctrl.Target()[1], 1e-5)

	e.Step(1)
	assert.Equal(t, float32(4), ctrl.Radius(), "zoom stops at the configured minimum radius")
	assert.InDelta(t, 3, ctrl.Target()[0], 1e-5)
	assert.InDelta(t, 4, ctrl.Position().Sub(ctrl.Target()).Len(), 1e-4)
}

func TestEngine_MotionOptionsOverrideConfig(t *testing.T) {
	e := newTestEngine(t, WithZoomSpeed(-2), WithPanSpeed(0, 1))
	ctrl := e.Scene().Camera().Controller()
	before := ctrl.Radius()

	e.Step(0.25)
	assert.InDelta(t, before+0.5, ctrl.Radius(), 1e-5, "negative zoom moves away")
	assert.InDelta(t, 0.25, ctrl.Target().Sub(mgl32.Vec3{}).Len(), 1e-5)
}

func TestEngine_RunOrbitsCamera(t *testing.T) {
	ticks := 0
	e := newTestEngine(t, WithOrbitSpeed(90), WithTickRate(10), WithTickCallback(func(dt float32) {
		assert.InDelta(t, 0.1, dt, 1e-6)
		ticks++
	}))

	var positions []mgl32.Vec3
	frames := 0
	err := e.Run(context.Background(), 3, func(out *gbuffer.Radiance, stats renderer.FrameStats) error {
		frames++
		positions = append(positions, e.Scene().Camera().Position())
		assert.Equal(t, uint64(frames), stats.Frame)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, frames)
	assert.Equal(t, 3, ticks)
	require.Len(t, positions, 3)
	assert.False(t, positions[0].ApproxEqual(positions[1]), "the camera orbits between frames")
	assert.InDelta(t, positions[0].Len(), positions[2].Len(), 1e-3, "orbiting keeps the radius")
}

func TestEngine_RunStops(t *testing.T) {
	e := newTestEngine(t)

	stop := errors.New("stop")
	frames := 0
	err := e.Run(context.Background(), 10, func(*gbuffer.Radiance, renderer.FrameStats) error {
		frames++
		if frames == 2 {
			return stop
		}
		return nil
	})
	assert.True(t, errors.Is(err, stop))
	assert.Equal(t, 2, frames)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, e.Run(ctx, 0, nil), "an unbounded run ends quietly on cancel")
	assert.ErrorIs(t, e.Run(ctx, 5, nil), context.Canceled)
}

func TestEngine_ProfilerToggle(t *testing.T) {
	e := newTestEngine(t)
	e.EnableProfiler()
	_, _, err := e.RenderFrame(context.Background())
	require.NoError(t, err)
	e.DisableProfiler()
	e.SetRenderFrameLimit(1000)
	e.SetTickRate(0)
	require.NoError(t, e.Run(context.Background(), 1, nil))
	assert.NotPanics(t, e.Close)
	assert.NotPanics(t, e.Close)
}
