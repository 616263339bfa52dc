package texture

import (
	"encoding/binary"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checker() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{0, 255, 0, 255})
	img.Set(0, 1, color.RGBA{0, 0, 255, 255})
	img.Set(1, 1, color.RGBA{255, 255, 255, 255})
	return img
}

func TestFromImage_Nearest(t *testing.T) {
	tex, err := FromImage(checker(), WithFilter(FilterNearest))
	require.NoError(t, err)
	assert.Equal(t, 2, tex.Width())
	assert.Equal(t, 2, tex.Height())

	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, tex.Sample(mgl32.Vec2{0.25, 0.25}))
	assert.Equal(t, mgl32.Vec4{0, 1, 0, 1}, tex.Sample(mgl32.Vec2{0.75, 0.25}))
	assert.Equal(t, mgl32.Vec4{0, 0, 1, 1}, tex.Sample(mgl32.Vec2{0.25, 0.75}))
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, tex.Sample(mgl32.Vec2{1.25, -0.75}), "repeat addressing")
}

func TestFromImage_Linear(t *testing.T) {
	tex, err := FromImage(checker())
	require.NoError(t, err)

	center := tex.Sample(mgl32.Vec2{0.5, 0.5})
	assert.InDelta(t, 0.5, center[0], 1e-5)
	assert.InDelta(t, 0.5, center[1], 1e-5)
	assert.InDelta(t, 0.5, center[2], 1e-5)

	texelCenter := tex.Sample(mgl32.Vec2{0.25, 0.25})
	assert.True(t, texelCenter.ApproxEqual(mgl32.Vec4{1, 0, 0, 1}))
}

func TestFromImage_SRGB(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 1, 1))
	img.SetGray(0, 0, color.Gray{Y: 188})

	lin, err := FromImage(img)
	require.NoError(t, err)
	srgb, err := FromImage(img, WithColorSpace(ColorSpaceSRGB))
	require.NoError(t, err)

	assert.InDelta(t, 188.0/255, lin.At(0, 0)[0], 1e-5)
	assert.InDelta(t, 0.5, srgb.At(0, 0)[0], 0.01)
	assert.InDelta(t, 188.0/255, LinearToSRGB(SRGBToLinear(188.0/255)), 1e-5)
}

func TestFromImage_Errors(t *testing.T) {
	_, err := FromImage(nil)
	assert.Error(t, err)
	_, err = FromImage(image.NewRGBA(image.Rect(0, 0, 0, 4)))
	assert.Error(t, err)
}

func TestDummy(t *testing.T) {
	d := Dummy()
	assert.Equal(t, "dummy", d.Name())
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, d.Sample(mgl32.Vec2{0.3, 0.9}))
}

func TestBytes(t *testing.T) {
	tex, err := FromImage(checker(), WithFilter(FilterNearest))
	require.NoError(t, err)

	buf := tex.Bytes()
	require.Len(t, buf, 2*2*16)
	// texel (1, 0) is green
	assert.Equal(t, float32(0), math.Float32frombits(binary.LittleEndian.Uint32(buf[16:])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[20:])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[28:])))
}
