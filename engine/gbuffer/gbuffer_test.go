package gbuffer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidSize(t *testing.T) {
	_, err := New(0, 4)
	assert.Error(t, err)
	_, err = NewRadiance(4, -1)
	assert.Error(t, err)
}

func TestGBuffer_WriteRead(t *testing.T) {
	g, err := New(4, 3)
	require.NoError(t, err)
	assert.False(t, g.Covered(2, 1))
	assert.Equal(t, float32(ClearDepth), g.DepthAt(2, 1))

	n := mgl32.Vec3{0.3, -0.5, 0.8}.Normalize()
	g.Write(2, 1, Fragment{
		Albedo:           mgl32.Vec4{1, 0.5, 0, 1},
		Normal:           n,
		AmbientOcclusion: 0.5,
		Roughness:        0.25,
		Metallic:         1,
		Depth:            0.75,
	})
	require.True(t, g.Covered(2, 1))

	s := g.Read(2, 1)
	assert.InDelta(t, 1, s.Albedo[0], 1.0/255)
	assert.InDelta(t, 0.5, s.Albedo[1], 1.0/255)
	assert.InDelta(t, 0, s.Albedo[2], 1.0/255)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, n[i], s.Normal[i], 1e-4)
	}
	assert.InDelta(t, 0.5, s.AmbientOcclusion, 1.0/255)
	assert.InDelta(t, 0.25, s.Roughness, 1.0/255)
	assert.InDelta(t, 1, s.Metallic, 1.0/255)
	assert.Equal(t, float32(0.75), s.Depth)

	_, _, _, alpha := g.Albedo.At(2, 1).RGBA()
	assert.Equal(t, uint32(0xffff), alpha)

	g.Clear()
	assert.False(t, g.Covered(2, 1))
	assert.Equal(t, uint8(0), g.Albedo.Pix[g.Albedo.PixOffset(2, 1)])
}

func TestRadiance_DisplayConversion(t *testing.T) {
	r, err := NewRadiance(2, 1)
	require.NoError(t, err)
	r.Fill(mgl32.Vec4{0, 0, 0, 1})
	r.Set(1, 0, mgl32.Vec4{4, 0.5, -1, 1})

	assert.Equal(t, mgl32.Vec4{4, 0.5, -1, 1}, r.At(1, 0), "stored radiance is not clamped")

	img := r.ToNRGBA()
	px := img.NRGBAAt(1, 0)
	assert.Equal(t, uint8(255), px.R)
	assert.Equal(t, uint8(188), px.G, "0.5 linear encodes to ~0.735 sRGB")
	assert.Equal(t, uint8(0), px.B)
	assert.Equal(t, uint8(255), px.A)

	assert.Len(t, r.Bytes(), 2*4*4)
}
