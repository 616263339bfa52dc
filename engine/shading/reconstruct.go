package shading

import (
	"github.com/go-gl/mathgl/mgl32"
)

// wEpsilon is the smallest |w| accepted before the perspective divide.
const wEpsilon = 1e-7

// PixelNDC returns the normalized device coordinates of a pixel center. The y axis points down
// the image, matching texture coordinates of the G-buffer attachments.
//
// Parameters:
//   - x, y: pixel coordinates
//   - width, height: image size in pixels
//
// Returns:
//   - mgl32.Vec2: coordinates in [-1, 1]
func PixelNDC(x, y, width, height int) mgl32.Vec2 {
	return mgl32.Vec2{
		(float32(x)+0.5)/float32(width)*2 - 1,
		(float32(y)+0.5)/float32(height)*2 - 1,
	}
}

// ReconstructViewPosition recovers a view-space position from a stored depth value.
// The clip vector is (ndc.x, -ndc.y, depth, 1); the y flip undoes the downward image axis.
//
// Parameters:
//   - depth: the depth buffer value in [0, 1]
//   - ndc: the pixel's normalized device coordinates as returned by PixelNDC
//   - invProj: the inverse projection matrix
//
// Returns:
//   - mgl32.Vec3: the view-space position
//   - bool: false when the homogeneous w is too close to zero to divide by
func ReconstructViewPosition(depth float32, ndc mgl32.Vec2, invProj mgl32.Mat4) (mgl32.Vec3, bool) {
	clip := mgl32.Vec4{ndc[0], -ndc[1], depth, 1}
	view := invProj.Mul4x1(clip)
	w := view[3]
	if w > -wEpsilon && w < wEpsilon {
		return mgl32.Vec3{}, false
	}
	return view.Vec3().Mul(1 / w), true
}
