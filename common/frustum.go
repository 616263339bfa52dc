package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustum extracts frustum planes from a view-projection matrix whose clip depth is
// in [0, 1] (see PerspectiveZO). Uses the Gribb/Hartmann method, so the near plane is row 2
// alone rather than row 3 + row 2.
//
// Parameters:
//   - viewProj: the combined projection * view matrix
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustum(viewProj mgl32.Mat4) Frustum {
	row := func(i int) mgl32.Vec4 { return viewProj.Row(i) }
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	raw := [6]mgl32.Vec4{
		FrustumLeft:   r3.Add(r0),
		FrustumRight:  r3.Sub(r0),
		FrustumBottom: r3.Add(r1),
		FrustumTop:    r3.Sub(r1),
		FrustumNear:   r2,
		FrustumFar:    r3.Sub(r2),
	}

	var f Frustum
	for i, p := range raw {
		n := p.Vec3()
		length := n.Len()
		if length > 0 {
			n = n.Mul(1 / length)
			p[3] /= length
		}
		f.Planes[i] = Plane{Normal: n, Distance: p[3]}
	}
	return f
}

// IntersectsAABB reports whether an axis-aligned box is at least partially inside the frustum.
// For each plane only the box corner furthest along the plane normal is tested, so the test
// is conservative: boxes near frustum corners may be reported as visible.
//
// Parameters:
//   - lo: minimum corner of the box
//   - hi: maximum corner of the box
//
// Returns:
//   - bool: false if the box is fully outside any plane
func (f Frustum) IntersectsAABB(lo, hi mgl32.Vec3) bool {
	for _, p := range f.Planes {
		var v mgl32.Vec3
		for i := 0; i < 3; i++ {
			if p.Normal[i] >= 0 {
				v[i] = hi[i]
			} else {
				v[i] = lo[i]
			}
		}
		if p.Normal.Dot(v)+p.Distance < 0 {
			return false
		}
	}
	return true
}

// TransformAABB returns the world-space bounds of a local box under m, computed from its
// eight transformed corners.
//
// Parameters:
//   - m: the local-to-world transform
//   - lo: minimum corner of the local box
//   - hi: maximum corner of the local box
//
// Returns:
//   - mgl32.Vec3: minimum corner in world space
//   - mgl32.Vec3: maximum corner in world space
func TransformAABB(m mgl32.Mat4, lo, hi mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	outLo := mgl32.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	outHi := outLo.Mul(-1)
	for c := 0; c < 8; c++ {
		corner := mgl32.Vec3{lo[0], lo[1], lo[2]}
		if c&1 != 0 {
			corner[0] = hi[0]
		}
		if c&2 != 0 {
			corner[1] = hi[1]
		}
		if c&4 != 0 {
			corner[2] = hi[2]
		}
		w := mgl32.TransformCoordinate(corner, m)
		for i := 0; i < 3; i++ {
			outLo[i] = min(outLo[i], w[i])
			outHi[i] = max(outHi[i], w[i])
		}
	}
	return outLo, outHi
}
