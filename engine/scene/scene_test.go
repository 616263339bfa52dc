package scene

import (
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-deferred/engine/camera"
	"github.com/Carmen-Shannon/oxy-deferred/engine/game_object"
	"github.com/Carmen-Shannon/oxy-deferred/engine/light"
	"github.com/Carmen-Shannon/oxy-deferred/engine/model"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCamera(t *testing.T) camera.Camera {
	t.Helper()
	c, err := camera.NewCamera(camera.WithController(camera.NewCameraController(camera.WithRadius(5), camera.WithElevation(0))))
	require.NoError(t, err)
	return c
}

func TestNewScene_PanicsWithoutCamera(t *testing.T) {
	assert.PanicsWithValue(t, "scene: NewScene requires a non-nil Camera", func() {
		NewScene("empty", nil)
	})
}

func TestScene_AddRemoveOrdering(t *testing.T) {
	s := NewScene("main", newCamera(t))
	a := s.Add(game_object.NewGameObject())
	b := s.Add(game_object.NewGameObject())
	c := s.Add(game_object.NewGameObject())
	assert.Equal(t, []uint64{1, 2, 3}, []uint64{a, b, c})
	assert.Equal(t, 3, s.Count())

	assert.True(t, s.Remove(b))
	assert.False(t, s.Remove(b))
	assert.Nil(t, s.Get(b))

	objs := s.Objects()
	require.Len(t, objs, 2)
	assert.Equal(t, a, objs[0].ID())
	assert.Equal(t, c, objs[1].ID())

	s.Clear()
	assert.Equal(t, 0, s.Count())
}

func TestScene_Snapshot(t *testing.T) {
	cube, err := model.NewModel(model.WithMeshes(model.Cube(1, 0), model.Plane(4, 1)))
	require.NoError(t, err)
	red := material.NewMaterial(material.WithName("red"))

	reg := light.NewRegistry(mgl32.Vec3{0.1, 0.1, 0.1})
	_, err = reg.Add(light.NewLight(light.LightTypeDirectional))
	require.NoError(t, err)

	visible := game_object.NewGameObject(game_object.WithModel(cube), game_object.WithMaterials(red))
	hidden := game_object.NewGameObject(game_object.WithModel(cube), game_object.WithEnabled(false))
	bare := game_object.NewGameObject()

	s := NewScene("main", newCamera(t), WithLightRegistry(reg), WithObjects(visible, hidden, bare))
	snap, err := s.Snapshot()
	require.NoError(t, err)

	require.Len(t, snap.Objects, 1)
	obj := snap.Objects[0]
	assert.Equal(t, visible.ID(), obj.ID)
	require.Len(t, obj.Materials, 2)
	assert.Equal(t, "red", obj.Materials[0].Name())
	assert.Equal(t, "default", obj.Materials[1].Name())

	assert.Len(t, snap.Lights.Lights, 1)
	assert.Equal(t, mgl32.Vec3{0.1, 0.1, 0.1}, snap.Lights.Ambient)
	assert.Equal(t, snap.Projection.Inv(), snap.InverseProjection)
	assert.True(t, snap.Frustum.IntersectsAABB(obj.BoundsMin, obj.BoundsMax))
}

func TestScene_Advance(t *testing.T) {
	obj := game_object.NewGameObject(game_object.WithRotationSpeed(1, 0, 0))
	s := NewScene("main", newCamera(t), WithObjects(obj))
	s.Advance(2)
	assert.InDelta(t, 2, obj.Rotation()[0], 1e-6)
}

func TestScene_SnapshotMatricesStayConsistent(t *testing.T) {
	cam := newCamera(t)
	s := NewScene("main", cam)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			_ = cam.SetPerspective(0.4+float32(i%2), 1+float32(i%2), 0.1, 10+float32(i%5)*20)
		}
	}()

	for i := 0; i < 300; i++ {
		snap, err := s.Snapshot()
		require.NoError(t, err)
		assert.True(t, snap.Projection.Mul4(snap.InverseProjection).ApproxEqualThreshold(mgl32.Ident4(), 1e-3))
		assert.Equal(t, snap.Projection.Mul4(snap.View), snap.ViewProjection)
	}
	close(stop)
	wg.Wait()
}
