package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// singularEpsilon is the smallest determinant magnitude treated as invertible.
const singularEpsilon = 1e-12

// PerspectiveZO creates a right-handed perspective projection matrix that maps view-space
// depth into the zero-to-one clip range used by Vulkan and WebGPU. mgl32.Perspective targets
// the OpenGL [-1, 1] range, so it cannot be used directly.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func PerspectiveZO(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))
	var out mgl32.Mat4
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	return out
}

// Invertible reports whether m has a usable inverse. A matrix with a determinant that is
// zero, denormal-small, or not finite is rejected.
//
// Parameters:
//   - m: the matrix to check
//
// Returns:
//   - bool: true if m can be inverted
func Invertible(m mgl32.Mat4) bool {
	det := float64(m.Det())
	if math.IsNaN(det) || math.IsInf(det, 0) {
		return false
	}
	return math.Abs(det) > singularEpsilon
}

// TransformPreserveW multiplies v by m and restores the original w component afterwards.
// With w = 0 the result is a rotated direction, with w = 1 a transformed position; the tag
// survives either way.
//
// Parameters:
//   - m: the transform to apply
//   - v: the vector to transform, w carrying a caller-defined tag
//
// Returns:
//   - mgl32.Vec4: the transformed vector with v's w
func TransformPreserveW(m mgl32.Mat4, v mgl32.Vec4) mgl32.Vec4 {
	out := m.Mul4x1(v)
	out[3] = v[3]
	return out
}

// BuildModelMatrix constructs a model matrix from position, Euler rotation, and scale.
// The rotation order is Y * X * Z (yaw-pitch-roll).
//
// Parameters:
//   - position: translation in world space
//   - rotation: rotation angles in radians around each axis
//   - scale: scale factors along each axis
//
// Returns:
//   - mgl32.Mat4: the model matrix
func BuildModelMatrix(position, rotation, scale mgl32.Vec3) mgl32.Mat4 {
	r := mgl32.HomogRotate3DY(rotation.Y()).
		Mul4(mgl32.HomogRotate3DX(rotation.X())).
		Mul4(mgl32.HomogRotate3DZ(rotation.Z()))
	return mgl32.Translate3D(position.X(), position.Y(), position.Z()).
		Mul4(r).
		Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
}

// Clamp01 clamps v into [0, 1].
func Clamp01(v float32) float32 {
	return mgl32.Clamp(v, 0, 1)
}
