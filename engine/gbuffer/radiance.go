package gbuffer

import (
	"encoding/binary"
	"image"
	"math"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/texture"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
)

// Radiance is the lighting pass output: unclamped linear RGBA per pixel.
type Radiance struct {
	width  int
	height int
	Pix    []float32
}

// NewRadiance allocates a radiance image filled with zero.
//
// Parameters:
//   - width, height: image size in pixels
//
// Returns:
//   - *Radiance: the image
//   - error: if either dimension is not positive
func NewRadiance(width, height int) (*Radiance, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Newf("gbuffer: invalid radiance size %dx%d", width, height)
	}
	return &Radiance{width: width, height: height, Pix: make([]float32, width*height*4)}, nil
}

func (r *Radiance) Width() int  { return r.width }
func (r *Radiance) Height() int { return r.height }

// At returns the radiance of one pixel.
func (r *Radiance) At(x, y int) mgl32.Vec4 {
	i := (y*r.width + x) * 4
	return mgl32.Vec4{r.Pix[i], r.Pix[i+1], r.Pix[i+2], r.Pix[i+3]}
}

// Set stores the radiance of one pixel.
func (r *Radiance) Set(x, y int, c mgl32.Vec4) {
	i := (y*r.width + x) * 4
	copy(r.Pix[i:i+4], c[:])
}

// Fill sets every pixel to c.
func (r *Radiance) Fill(c mgl32.Vec4) {
	for i := 0; i < len(r.Pix); i += 4 {
		copy(r.Pix[i:i+4], c[:])
	}
}

// CopyFrom copies the pixels of src, which must have the same size.
func (r *Radiance) CopyFrom(src *Radiance) error {
	if src.width != r.width || src.height != r.height {
		return errors.Newf("gbuffer: cannot copy %dx%d radiance into %dx%d", src.width, src.height, r.width, r.height)
	}
	copy(r.Pix, src.Pix)
	return nil
}

// Bytes serializes the image as little-endian float32 RGBA rows, the layout of an
// RGBA32Float texture.
func (r *Radiance) Bytes() []byte {
	buf := make([]byte, len(r.Pix)*4)
	for i, v := range r.Pix {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// ToNRGBA converts the radiance for display: each color channel is clamped to [0, 1] and
// sRGB encoded; alpha is clamped only.
//
// Returns:
//   - *image.NRGBA: an 8-bit display image
func (r *Radiance) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.width, r.height))
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			c := r.At(x, y)
			i := img.PixOffset(x, y)
			for ch := 0; ch < 3; ch++ {
				img.Pix[i+ch] = unorm8(texture.LinearToSRGB(common.Clamp01(c[ch])))
			}
			img.Pix[i+3] = unorm8(c[3])
		}
	}
	return img
}
