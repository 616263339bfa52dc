package material

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-deferred/engine/texture"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestMaterial_ScalarFallbacks(t *testing.T) {
	m := NewMaterial(
		WithName("plastic"),
		WithAlbedoColor(mgl32.Vec4{0.8, 0.1, 0.1, 1}),
		WithRoughness(0.4),
		WithMetallic(0.1),
	)
	uv := mgl32.Vec2{0.3, 0.7}
	assert.Equal(t, "plastic", m.Name())
	assert.Equal(t, mgl32.Vec4{0.8, 0.1, 0.1, 1}, m.Albedo(uv))

	r, mt := m.RoughnessMetallic(uv)
	assert.Equal(t, float32(0.4), r)
	assert.Equal(t, float32(0.1), mt)

	g := m.GPU()
	assert.Equal(t, float32(0), g.HasTexture)
	assert.Equal(t, float32(0), g.HasNormalMap)
	assert.Equal(t, float32(0), g.HasMetalRoughMap)
}

func TestMaterial_TexturesReplaceFactors(t *testing.T) {
	mr := texture.Solid(mgl32.Vec4{0, 0.9, 0.6, 1})
	alb := texture.Solid(mgl32.Vec4{0.2, 0.3, 0.4, 0.25})
	m := NewMaterial(
		WithAlbedoColor(mgl32.Vec4{1, 1, 1, 1}),
		WithAlbedoTexture(alb),
		WithMetalRoughTexture(mr),
		WithRoughness(0.1),
		WithMetallic(0),
	)
	uv := mgl32.Vec2{0.5, 0.5}
	assert.Equal(t, mgl32.Vec4{0.2, 0.3, 0.4, 0.25}, m.Albedo(uv), "texture wins, no blending with the color")

	r, mt := m.RoughnessMetallic(uv)
	assert.Equal(t, float32(0.9), r)
	assert.Equal(t, float32(0.6), mt)

	g := m.GPU()
	assert.Equal(t, float32(1), g.HasTexture)
	assert.Equal(t, float32(0), g.HasNormalMap)
	assert.Equal(t, float32(1), g.HasMetalRoughMap)
}

func TestMaterial_BoundTexturesUseDummy(t *testing.T) {
	n := texture.Solid(mgl32.Vec4{0.5, 0.5, 1, 1})
	m := NewMaterial(WithNormalTexture(n))
	bound := m.BoundTextures()
	for _, b := range bound {
		assert.NotNil(t, b)
	}
	assert.Same(t, n, bound[1])
	assert.Equal(t, "dummy", bound[0].Name())
	assert.Nil(t, m.AlbedoTexture(), "the dummy never leaks into the presence check")
}

func TestGPUMaterial_Marshal(t *testing.T) {
	g := GPUMaterial{
		AlbedoColor:     [4]float32{1, 0.5, 0.25, 1},
		HasNormalMap:    1,
		RoughnessFactor: 0.75,
		MetallicFactor:  0.5,
	}
	assert.Equal(t, 48, g.Size())
	buf := g.Marshal()
	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	assert.Equal(t, float32(0.25), f(8))
	assert.Equal(t, float32(1), f(20))
	assert.Equal(t, float32(0.75), f(28))
	assert.Equal(t, float32(0.5), f(32))
	assert.Equal(t, float32(0), f(44))
}
