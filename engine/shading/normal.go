package shading

import (
	"github.com/go-gl/mathgl/mgl32"
)

// EncodeNormal remaps a unit normal from [-1, 1] to [0, 1] for unsigned fixed-point storage.
func EncodeNormal(n mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{n[0]*0.5 + 0.5, n[1]*0.5 + 0.5, n[2]*0.5 + 0.5}
}

// DecodeNormal reverses EncodeNormal: n = 2*stored - 1.
func DecodeNormal(stored mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{stored[0]*2 - 1, stored[1]*2 - 1, stored[2]*2 - 1}
}

// TBN builds the tangent-space basis with tangent, bitangent and normal as columns.
func TBN(t, b, n mgl32.Vec3) mgl32.Mat3 {
	return mgl32.Mat3FromCols(t, b, n)
}

// PerturbNormal moves a normal map sample from tangent space into the space of the basis vectors.
// The basis must already be in the output space (view space for the geometry pass).
//
// Parameters:
//   - sample: the normal map texel in [0, 1]
//   - t, b, n: interpolated tangent, bitangent and normal
//
// Returns:
//   - mgl32.Vec3: the normalized perturbed normal, or n when the result degenerates
func PerturbNormal(sample, t, b, n mgl32.Vec3) mgl32.Vec3 {
	out := TBN(t, b, n).Mul3x1(DecodeNormal(sample))
	if l := out.Len(); l > 1e-8 {
		return out.Mul(1 / l)
	}
	return n
}

func safeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	if l := v.Len(); l > 0 {
		return v.Mul(1 / l)
	}
	return mgl32.Vec3{}
}
