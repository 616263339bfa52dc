// Package texture holds sampled images in linear float RGBA form for the CPU passes.
package texture

import (
	"encoding/binary"
	"image"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"
)

// Filter selects how Sample reconstructs a value between texel centers.
type Filter int

const (
	// FilterLinear blends the four nearest texels. This is the default.
	FilterLinear Filter = iota

	// FilterNearest returns the texel containing the sample point.
	FilterNearest
)

// ColorSpace describes how 8-bit source values map to linear floats.
type ColorSpace int

const (
	// ColorSpaceLinear stores values as-is (normal maps, metal-rough maps).
	ColorSpaceLinear ColorSpace = iota

	// ColorSpaceSRGB decodes the sRGB transfer curve on load (albedo maps).
	ColorSpaceSRGB
)

// Texture is an immutable 2D image sampled with repeat addressing.
type Texture struct {
	name       string
	width      int
	height     int
	filter     Filter
	colorSpace ColorSpace
	texels     []mgl32.Vec4
}

// TextureBuilderOption configures a Texture during construction.
type TextureBuilderOption func(*Texture)

// WithName sets a debug name for the texture.
func WithName(name string) TextureBuilderOption {
	return func(t *Texture) {
		t.name = name
	}
}

// WithFilter sets the sampling filter.
func WithFilter(f Filter) TextureBuilderOption {
	return func(t *Texture) {
		t.filter = f
	}
}

// WithColorSpace sets how source values are decoded.
func WithColorSpace(cs ColorSpace) TextureBuilderOption {
	return func(t *Texture) {
		t.colorSpace = cs
	}
}

// FromImage converts any image.Image into a Texture. The source is first drawn into a
// non-premultiplied RGBA buffer so paletted, gray, and YCbCr images are all accepted.
//
// Parameters:
//   - img: the source image (must have a non-empty bounds)
//   - options: functional options to configure the texture
//
// Returns:
//   - *Texture: the converted texture
//   - error: if the image is empty
func FromImage(img image.Image, options ...TextureBuilderOption) (*Texture, error) {
	if img == nil {
		return nil, errors.New("texture: nil image")
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, errors.Newf("texture: empty image bounds %v", b)
	}

	t := &Texture{width: b.Dx(), height: b.Dy()}
	for _, opt := range options {
		opt(t)
	}

	nrgba := image.NewNRGBA(image.Rect(0, 0, t.width, t.height))
	draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)

	t.texels = make([]mgl32.Vec4, t.width*t.height)
	for i := range t.texels {
		p := nrgba.Pix[i*4 : i*4+4]
		t.texels[i] = mgl32.Vec4{
			t.decode(p[0]),
			t.decode(p[1]),
			t.decode(p[2]),
			float32(p[3]) / 255,
		}
	}
	return t, nil
}

// Solid creates a 1x1 texture of the given linear color.
func Solid(c mgl32.Vec4, options ...TextureBuilderOption) *Texture {
	t := &Texture{width: 1, height: 1, texels: []mgl32.Vec4{c}}
	for _, opt := range options {
		opt(t)
	}
	return t
}

// Dummy returns the 1x1 white texture bound in slots whose material has no texture, so every
// material exposes the same set of bindings.
func Dummy() *Texture {
	return Solid(mgl32.Vec4{1, 1, 1, 1}, WithName("dummy"), WithFilter(FilterNearest))
}

// Name returns the debug name.
func (t *Texture) Name() string { return t.name }

// Width returns the width in texels.
func (t *Texture) Width() int { return t.width }

// Height returns the height in texels.
func (t *Texture) Height() int { return t.height }

// At returns the texel at integer coordinates, wrapping out-of-range values.
func (t *Texture) At(x, y int) mgl32.Vec4 {
	return t.texels[wrap(y, t.height)*t.width+wrap(x, t.width)]
}

// Bytes serializes the texels row by row as little-endian RGBA32Float, the layout of a
// WebGPU RGBA32Float texture upload.
//
// Returns:
//   - []byte: Width()*Height()*16 bytes
func (t *Texture) Bytes() []byte {
	buf := make([]byte, len(t.texels)*16)
	for i, c := range t.texels {
		for ch := 0; ch < 4; ch++ {
			binary.LittleEndian.PutUint32(buf[i*16+ch*4:], math.Float32bits(c[ch]))
		}
	}
	return buf
}

// Sample reads the texture at normalized coordinates using repeat addressing. v = 0 is the
// top row of the source image.
//
// Parameters:
//   - uv: texture coordinates
//
// Returns:
//   - mgl32.Vec4: linear RGBA
func (t *Texture) Sample(uv mgl32.Vec2) mgl32.Vec4 {
	x := uv[0]*float32(t.width) - 0.5
	y := uv[1]*float32(t.height) - 0.5
	if t.filter == FilterNearest {
		return t.At(int(math.Floor(float64(x+0.5))), int(math.Floor(float64(y+0.5))))
	}

	x0 := float32(math.Floor(float64(x)))
	y0 := float32(math.Floor(float64(y)))
	fx, fy := x-x0, y-y0
	ix, iy := int(x0), int(y0)

	top := t.At(ix, iy).Mul(1 - fx).Add(t.At(ix+1, iy).Mul(fx))
	bottom := t.At(ix, iy+1).Mul(1 - fx).Add(t.At(ix+1, iy+1).Mul(fx))
	return top.Mul(1 - fy).Add(bottom.Mul(fy))
}

func (t *Texture) decode(v uint8) float32 {
	c := float32(v) / 255
	if t.colorSpace == ColorSpaceSRGB {
		return SRGBToLinear(c)
	}
	return c
}

// SRGBToLinear applies the inverse sRGB transfer function.
func SRGBToLinear(c float32) float32 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return float32(math.Pow((float64(c)+0.055)/1.055, 2.4))
}

// LinearToSRGB applies the sRGB transfer function.
func LinearToSRGB(c float32) float32 {
	if c <= 0.0031308 {
		return c * 12.92
	}
	return float32(1.055*math.Pow(float64(c), 1/2.4) - 0.055)
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
