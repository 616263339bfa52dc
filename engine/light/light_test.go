package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLight_Defaults(t *testing.T) {
	l := NewLight(LightTypePoint, WithPosition(1, 2, 3), WithColor(0.5, 0.25, 1))
	assert.Equal(t, LightTypePoint, l.Type())
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, l.Position())
	assert.Equal(t, mgl32.Vec3{0.5, 0.25, 1}, l.Color())
	assert.True(t, l.Enabled())
	assert.Equal(t, mgl32.Vec4{1, 2, 3, 1}, l.Vector())

	d := NewLight(LightTypeDirectional, WithDirection(0, -2, 0))
	assert.Equal(t, mgl32.Vec4{0, -1, 0, 0}, d.Vector(), "directions are normalized and tagged w=0")
	assert.Equal(t, "directional", d.Type().String())
}

func TestRegistry_CapacityIsEnforcedAtAssignment(t *testing.T) {
	r := NewRegistry(mgl32.Vec3{0.1, 0.1, 0.1})
	for i := 0; i < MaxLights; i++ {
		_, err := r.Add(NewLight(LightTypePoint))
		require.NoError(t, err)
	}

	_, err := r.Add(NewLight(LightTypePoint))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooManyLights))
	assert.Equal(t, MaxLights, r.Len(), "the failed add must not truncate or grow the registry")

	lights := make([]Light, MaxLights+1)
	for i := range lights {
		lights[i] = NewLight(LightTypeDirectional)
	}
	_, err = r.Replace(lights)
	assert.True(t, errors.Is(err, ErrTooManyLights))
	assert.Equal(t, MaxLights, r.Len())
}

func TestRegistry_RemoveKeepsOrder(t *testing.T) {
	r := NewRegistry(mgl32.Vec3{})
	a, _ := r.Add(NewLight(LightTypePoint, WithPosition(1, 0, 0)))
	b, _ := r.Add(NewLight(LightTypePoint, WithPosition(2, 0, 0)))
	_, _ = r.Add(NewLight(LightTypePoint, WithPosition(3, 0, 0)))
	assert.NotEqual(t, a, b)

	assert.True(t, r.Remove(b))
	assert.False(t, r.Remove(b))

	snap := r.Snapshot()
	require.Len(t, snap.Lights, 2)
	assert.Equal(t, float32(1), snap.Lights[0].Vector[0])
	assert.Equal(t, float32(3), snap.Lights[1].Vector[0])

	got, ok := r.Get(a)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, got.Position())
}

func TestRegistry_SnapshotIsACopy(t *testing.T) {
	r := NewRegistry(mgl32.Vec3{0.2, 0.2, 0.2})
	l := NewLight(LightTypePoint, WithPosition(1, 1, 1))
	_, err := r.Add(l)
	require.NoError(t, err)
	off := NewLight(LightTypePoint, WithEnabled(false))
	_, err = r.Add(off)
	require.NoError(t, err)

	snap := r.Snapshot()
	l.SetPosition(9, 9, 9)
	r.SetAmbient(1, 1, 1)

	require.Len(t, snap.Lights, 1, "disabled lights are not copied")
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, snap.Lights[0].Vector)
	assert.Equal(t, mgl32.Vec3{0.2, 0.2, 0.2}, snap.Ambient)
}

func TestPackLightUniform_CountMatches(t *testing.T) {
	for k := 0; k <= MaxLights; k++ {
		snap := LightSnapshot{Ambient: mgl32.Vec3{0.3, 0.3, 0.3}}
		for i := 0; i < k; i++ {
			snap.Lights = append(snap.Lights, LightValue{
				Type:   LightTypePoint,
				Vector: mgl32.Vec4{float32(i + 1), 0, 0, 1},
				Color:  mgl32.Vec3{1, 0, 0},
			})
		}
		u, err := PackLightUniform(snap, mgl32.Ident4())
		require.NoError(t, err)

		buf := u.Marshal()
		require.Len(t, buf, GPULightUniformSize)
		assert.Equal(t, uint32(k), binary.LittleEndian.Uint32(buf[16:20]))
		assert.Len(t, u.Active(), k)
		for i := 0; i < k; i++ {
			x := math.Float32frombits(binary.LittleEndian.Uint32(buf[32+i*32:]))
			assert.Equal(t, float32(i+1), x, "slot %d position.x", i)
		}
	}

	over := LightSnapshot{Lights: make([]LightValue, MaxLights+1)}
	_, err := PackLightUniform(over, mgl32.Ident4())
	assert.True(t, errors.Is(err, ErrTooManyLights))
}

func TestPackLightUniform_ViewTransformRestoresW(t *testing.T) {
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	snap := LightSnapshot{Lights: []LightValue{
		{Type: LightTypeDirectional, Vector: mgl32.Vec4{0, -1, 0, 0}, Color: mgl32.Vec3{1, 1, 1}},
		{Type: LightTypePoint, Vector: mgl32.Vec4{0, 0, 0, 1}, Color: mgl32.Vec3{1, 1, 1}},
	}}
	u, err := PackLightUniform(snap, view)
	require.NoError(t, err)

	dir := mgl32.Vec4(u.Lights[0].Position)
	assert.True(t, dir.ApproxEqualThreshold(mgl32.Vec4{0, -1, 0, 0}, 1e-5), "translation must not move a direction: %v", dir)

	pos := mgl32.Vec4(u.Lights[1].Position)
	assert.True(t, pos.ApproxEqualThreshold(mgl32.Vec4{0, 0, -10, 1}, 1e-5), "world origin is 10 units in front: %v", pos)
}

func TestGPULightUniform_Layout(t *testing.T) {
	var u GPULightUniform
	assert.Equal(t, GPULightUniformSize, u.Size())

	u.AmbientColor = [4]float32{0.1, 0.2, 0.3, 1}
	u.Count = 2
	u.Lights[1] = GPULightSlot{Position: [4]float32{4, 5, 6, 1}, Color: [4]float32{7, 8, 9, 0}}
	buf := u.Marshal()

	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	assert.Equal(t, float32(0.2), f(4))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[20:24]), "count padding is zero")
	assert.Equal(t, float32(4), f(64))
	assert.Equal(t, float32(1), f(76))
	assert.Equal(t, float32(7), f(80))

	var back GPULightUniform
	require.NoError(t, back.Unmarshal(buf))
	assert.Equal(t, u, back)

	assert.Error(t, back.Unmarshal(buf[:100]))
}
