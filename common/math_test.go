package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerspectiveZO_DepthRange(t *testing.T) {
	near, far := float32(0.5), float32(50)
	proj := PerspectiveZO(float32(math.Pi/3), 1.5, near, far)

	project := func(z float32) float32 {
		clip := proj.Mul4x1(mgl32.Vec4{0, 0, -z, 1})
		return clip[2] / clip[3]
	}
	assert.InDelta(t, 0, project(near), 1e-5, "near plane maps to depth 0")
	assert.InDelta(t, 1, project(far), 1e-5, "far plane maps to depth 1")
	mid := project(5)
	assert.Greater(t, mid, float32(0))
	assert.Less(t, mid, float32(1))
}

func TestInvertible(t *testing.T) {
	assert.True(t, Invertible(mgl32.Ident4()))
	assert.True(t, Invertible(PerspectiveZO(1, 1, 0.1, 100)))
	assert.False(t, Invertible(mgl32.Mat4{}))
	assert.False(t, Invertible(PerspectiveZO(1, 0, 0.1, 100)), "zero aspect yields Inf entries")

	singular := mgl32.Ident4()
	singular[5] = 0
	assert.False(t, Invertible(singular))
}

func TestTransformPreserveW(t *testing.T) {
	view := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.HomogRotate3DY(float32(math.Pi / 2)))

	point := TransformPreserveW(view, mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 1, point[0], 1e-5)
	assert.InDelta(t, 2, point[1], 1e-5)
	assert.InDelta(t, 2, point[2], 1e-5)
	assert.Equal(t, float32(1), point[3])

	dir := TransformPreserveW(view, mgl32.Vec4{1, 0, 0, 0})
	assert.InDelta(t, 0, dir[0], 1e-5, "directions ignore translation")
	assert.InDelta(t, 0, dir[1], 1e-5)
	assert.InDelta(t, -1, dir[2], 1e-5)
	assert.Equal(t, float32(0), dir[3])
}

func TestBuildModelMatrix(t *testing.T) {
	m := BuildModelMatrix(mgl32.Vec3{10, 20, 30}, mgl32.Vec3{}, mgl32.Vec3{2, 2, 2})
	p := mgl32.TransformCoordinate(mgl32.Vec3{1, 1, 1}, m)
	assert.True(t, p.ApproxEqualThreshold(mgl32.Vec3{12, 22, 32}, 1e-5), "got %v", p)

	inv := m.Inv()
	id := m.Mul4(inv)
	for i := 0; i < 4; i++ {
		assert.InDelta(t, 1, id.At(i, i), 1e-4)
	}
}

func TestFrustum_IntersectsAABB(t *testing.T) {
	proj := PerspectiveZO(float32(math.Pi/2), 1, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	f := ExtractFrustum(proj.Mul4(view))

	tests := []struct {
		name    string
		lo, hi  mgl32.Vec3
		visible bool
	}{
		{"at origin", mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}, true},
		{"behind camera", mgl32.Vec3{-1, -1, 10}, mgl32.Vec3{1, 1, 12}, false},
		{"far left", mgl32.Vec3{-100, -1, -1}, mgl32.Vec3{-90, 1, 1}, false},
		{"beyond far plane", mgl32.Vec3{-1, -1, -200}, mgl32.Vec3{1, 1, -150}, false},
		{"straddling left plane", mgl32.Vec3{-10, -1, -1}, mgl32.Vec3{0, 1, 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.visible, f.IntersectsAABB(tt.lo, tt.hi))
		})
	}
}

func TestTransformAABB(t *testing.T) {
	m := BuildModelMatrix(mgl32.Vec3{5, 0, 0}, mgl32.Vec3{0, float32(math.Pi / 4), 0}, mgl32.Vec3{1, 1, 1})
	lo, hi := TransformAABB(m, mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})
	r := float32(math.Sqrt2)
	require.InDelta(t, 5-r, lo[0], 1e-4)
	require.InDelta(t, 5+r, hi[0], 1e-4)
	assert.InDelta(t, -1, lo[1], 1e-4)
	assert.InDelta(t, 1, hi[1], 1e-4)
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 0, 3, 4))
	assert.Equal(t, "", Coalesce[string]())
	assert.Equal(t, float32(0.2), Coalesce(float32(0), float32(0.2)))
}

func TestValueOr(t *testing.T) {
	zero := float32(0)
	assert.Same(t, &zero, ValueOr(&zero, 0.5), "a set zero is kept")

	got := ValueOr[float32](nil, 0.5)
	require.NotNil(t, got)
	assert.Equal(t, float32(0.5), *got)
}
