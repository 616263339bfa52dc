package gbuffer

import (
	"image"
	"math"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/shading"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
)

// ClearDepth is the depth every pixel holds before the geometry pass writes to it.
const ClearDepth = 1.0

// Fragment is what the geometry pass writes for one covered pixel.
type Fragment struct {
	Albedo           mgl32.Vec4 // linear color, alpha already past the cutout test
	Normal           mgl32.Vec3 // unit view-space normal
	AmbientOcclusion float32
	Roughness        float32
	Metallic         float32
	Depth            float32
}

// Sample is what the lighting pass reads back for one pixel.
type Sample struct {
	Albedo           mgl32.Vec3
	Normal           mgl32.Vec3
	AmbientOcclusion float32
	Roughness        float32
	Metallic         float32
	Depth            float32
}

// GBuffer holds the geometry pass attachments. Position is not stored; the lighting pass
// reconstructs it from Depth.
//
// Attachments:
//
//	Albedo  RGBA8   linear albedo
//	Normal  RGBA16  view-space normal remapped to [0, 1]
//	PBR     RGBA8   r = ambient occlusion, g = roughness, b = metallic
//	Depth   f32     zero-to-one depth, ClearDepth where nothing was drawn
type GBuffer struct {
	width  int
	height int

	Albedo *image.NRGBA
	Normal *image.NRGBA64
	PBR    *image.NRGBA
	Depth  []float32
}

// New allocates a cleared G-buffer.
//
// Parameters:
//   - width, height: attachment size in pixels
//
// Returns:
//   - *GBuffer: the allocated attachments
//   - error: if either dimension is not positive
func New(width, height int) (*GBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Newf("gbuffer: invalid size %dx%d", width, height)
	}
	rect := image.Rect(0, 0, width, height)
	g := &GBuffer{
		width:  width,
		height: height,
		Albedo: image.NewNRGBA(rect),
		Normal: image.NewNRGBA64(rect),
		PBR:    image.NewNRGBA(rect),
		Depth:  make([]float32, width*height),
	}
	g.Clear()
	return g, nil
}

// Width returns the attachment width in pixels.
func (g *GBuffer) Width() int { return g.width }

// Height returns the attachment height in pixels.
func (g *GBuffer) Height() int { return g.height }

// Clear zeroes the color attachments and resets depth to ClearDepth.
func (g *GBuffer) Clear() {
	clear(g.Albedo.Pix)
	clear(g.Normal.Pix)
	clear(g.PBR.Pix)
	for i := range g.Depth {
		g.Depth[i] = ClearDepth
	}
}

// DepthAt returns the stored depth of a pixel.
func (g *GBuffer) DepthAt(x, y int) float32 {
	return g.Depth[y*g.width+x]
}

// Covered reports whether any fragment was written to the pixel.
func (g *GBuffer) Covered(x, y int) bool {
	return g.Depth[y*g.width+x] < ClearDepth
}

// Write packs a fragment into every attachment. The caller has already passed the depth test.
//
// Parameters:
//   - x, y: pixel coordinates
//   - f: the fragment to store
func (g *GBuffer) Write(x, y int, f Fragment) {
	i := g.Albedo.PixOffset(x, y)
	g.Albedo.Pix[i+0] = unorm8(f.Albedo[0])
	g.Albedo.Pix[i+1] = unorm8(f.Albedo[1])
	g.Albedo.Pix[i+2] = unorm8(f.Albedo[2])
	g.Albedo.Pix[i+3] = unorm8(f.Albedo[3])

	enc := shading.EncodeNormal(f.Normal)
	j := g.Normal.PixOffset(x, y)
	for c := 0; c < 3; c++ {
		v := unorm16(enc[c])
		g.Normal.Pix[j+c*2] = uint8(v >> 8)
		g.Normal.Pix[j+c*2+1] = uint8(v)
	}
	g.Normal.Pix[j+6] = 0xff
	g.Normal.Pix[j+7] = 0xff

	k := g.PBR.PixOffset(x, y)
	g.PBR.Pix[k+0] = unorm8(f.AmbientOcclusion)
	g.PBR.Pix[k+1] = unorm8(f.Roughness)
	g.PBR.Pix[k+2] = unorm8(f.Metallic)
	g.PBR.Pix[k+3] = 0xff

	g.Depth[y*g.width+x] = f.Depth
}

// Read unpacks the attachments of one pixel.
//
// Parameters:
//   - x, y: pixel coordinates
//
// Returns:
//   - Sample: decoded albedo, normal, PBR factors and depth
func (g *GBuffer) Read(x, y int) Sample {
	i := g.Albedo.PixOffset(x, y)
	a := g.Albedo.Pix[i : i+3 : i+3]

	j := g.Normal.PixOffset(x, y)
	var enc mgl32.Vec3
	for c := 0; c < 3; c++ {
		v := uint16(g.Normal.Pix[j+c*2])<<8 | uint16(g.Normal.Pix[j+c*2+1])
		enc[c] = float32(v) / math.MaxUint16
	}
	n := shading.DecodeNormal(enc)
	if l := n.Len(); l > 0 {
		n = n.Mul(1 / l)
	}

	k := g.PBR.PixOffset(x, y)
	return Sample{
		Albedo:           mgl32.Vec3{float32(a[0]) / 255, float32(a[1]) / 255, float32(a[2]) / 255},
		Normal:           n,
		AmbientOcclusion: float32(g.PBR.Pix[k+0]) / 255,
		Roughness:        float32(g.PBR.Pix[k+1]) / 255,
		Metallic:         float32(g.PBR.Pix[k+2]) / 255,
		Depth:            g.Depth[y*g.width+x],
	}
}

func unorm8(v float32) uint8 {
	return uint8(common.Clamp01(v)*255 + 0.5)
}

func unorm16(v float32) uint16 {
	return uint16(common.Clamp01(v)*math.MaxUint16 + 0.5)
}
