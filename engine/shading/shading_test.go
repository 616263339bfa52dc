package shading

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/light"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVec3(t *testing.T, want, got mgl32.Vec3, delta float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], delta, "component %d: want %v got %v", i, want, got)
	}
}

func TestNormalCodec_RoundTrip(t *testing.T) {
	normals := []mgl32.Vec3{
		{0, 0, 1},
		{0, -1, 0},
		mgl32.Vec3{1, 2, -3}.Normalize(),
		mgl32.Vec3{-0.3, 0.1, 0.9}.Normalize(),
	}
	for _, n := range normals {
		stored := EncodeNormal(n)
		for i := 0; i < 3; i++ {
			assert.GreaterOrEqual(t, stored[i], float32(0))
			assert.LessOrEqual(t, stored[i], float32(1))
		}
		// 16-bit unsigned storage, as in the G-buffer normal attachment
		var q mgl32.Vec3
		for i := range stored {
			q[i] = float32(math.Round(float64(stored[i])*65535)) / 65535
		}
		assertVec3(t, n, DecodeNormal(q), 1e-4)
	}
}

func TestPerturbNormal(t *testing.T) {
	tan, bit, nrm := mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}

	flat := PerturbNormal(mgl32.Vec3{0.5, 0.5, 1}, tan, bit, nrm)
	assertVec3(t, nrm, flat, 1e-6)

	towardT := PerturbNormal(mgl32.Vec3{1, 0.5, 0.5}, tan, bit, nrm)
	assertVec3(t, tan, towardT, 1e-6)

	rotated := PerturbNormal(mgl32.Vec3{0.5, 0.5, 1}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0})
	assertVec3(t, mgl32.Vec3{1, 0, 0}, rotated, 1e-6)

	degenerate := PerturbNormal(mgl32.Vec3{1, 0.5, 0.5}, mgl32.Vec3{}, mgl32.Vec3{}, nrm)
	assert.Equal(t, nrm, degenerate, "zero tangent basis falls back to the normal")
}

func TestReconstructViewPosition_RoundTrip(t *testing.T) {
	proj := common.PerspectiveZO(float32(math.Pi/3), 16.0/9.0, 0.5, 100)
	invProj := proj.Inv()

	points := []mgl32.Vec3{
		{0, 0, -1},
		{0.5, -0.25, -3},
		{-2, 1.5, -10},
		{4, 3, -20},
	}
	for _, p := range points {
		clip := proj.Mul4x1(p.Vec4(1))
		ndc := clip.Vec3().Mul(1 / clip[3])
		// image-space NDC has y pointing down
		got, ok := ReconstructViewPosition(ndc[2], mgl32.Vec2{ndc[0], -ndc[1]}, invProj)
		require.True(t, ok)
		assertVec3(t, p, got, 1e-4*float64(max(1, -p[2])))
	}
}

func TestReconstructViewPosition_DegenerateW(t *testing.T) {
	var zero mgl32.Mat4
	_, ok := ReconstructViewPosition(0.5, mgl32.Vec2{}, zero)
	assert.False(t, ok)
}

func TestPixelNDC(t *testing.T) {
	ndc := PixelNDC(0, 0, 4, 2)
	assert.InDelta(t, -0.75, ndc[0], 1e-6)
	assert.InDelta(t, -0.5, ndc[1], 1e-6)
	ndc = PixelNDC(3, 1, 4, 2)
	assert.InDelta(t, 0.75, ndc[0], 1e-6)
	assert.InDelta(t, 0.5, ndc[1], 1e-6)
}

func TestAttenuation(t *testing.T) {
	assert.Equal(t, float32(1), Attenuation(5, DefaultDistanceScale))
	assert.InDelta(t, 0.25, Attenuation(10, DefaultDistanceScale), 1e-6)
	assert.True(t, math.IsInf(float64(Attenuation(0, DefaultDistanceScale)), 1), "unclamped at zero distance")
}

func TestDistributionGGX(t *testing.T) {
	n := mgl32.Vec3{0, 1, 0}
	// at the peak the distribution is 1 / (pi * alpha^2)
	alpha := float32(0.25)
	assert.InDelta(t, 1/(math.Pi*alpha*alpha), DistributionGGX(n, n, 0.5), 1e-3)

	assert.Equal(t, float32(0), DistributionGGX(n, n, 0), "mirror roughness is guarded, not NaN")
	off := mgl32.Vec3{0, 1, 1}.Normalize()
	assert.Equal(t, float32(0), DistributionGGX(n, off, 0))
}

func TestFresnelSchlick(t *testing.T) {
	f0 := BaseReflectance(mgl32.Vec3{1, 0.5, 0}, 0)
	assertVec3(t, mgl32.Vec3{0.04, 0.04, 0.04}, f0, 1e-7)
	assertVec3(t, f0, FresnelSchlick(1, f0), 1e-7)
	assertVec3(t, mgl32.Vec3{1, 1, 1}, FresnelSchlick(0, f0), 1e-6)

	metal := BaseReflectance(mgl32.Vec3{1, 0.5, 0}, 1)
	assertVec3(t, mgl32.Vec3{1, 0.5, 0}, metal, 1e-6)
}

func TestGeometrySmith_Bounds(t *testing.T) {
	n := mgl32.Vec3{0, 1, 0}
	assert.InDelta(t, 1, GeometrySmith(n, n, n, 0.3), 1e-6)
	assert.Equal(t, float32(0), GeometrySmith(n, mgl32.Vec3{1, 0, 0}, n, 0.3))
	assert.Equal(t, float32(0), GeometrySmith(n, n, mgl32.Vec3{0, -1, 0}, 0.3), "back-facing light clamps to zero")
}

func TestEvaluateLight_DirectionalDownOnUpNormal(t *testing.T) {
	s := Surface{
		Position:  mgl32.Vec3{0, -5, 0},
		Normal:    mgl32.Vec3{0, 1, 0},
		Albedo:    mgl32.Vec3{1, 1, 1},
		Roughness: 0,
		Metallic:  0,
	}
	out := EvaluateLight(s, mgl32.Vec4{0, -1, 0, 0}, mgl32.Vec3{1, 1, 1}, DefaultDistanceScale)
	for i := 0; i < 3; i++ {
		v := float64(out[i])
		require.False(t, math.IsNaN(v) || math.IsInf(v, 0), "component %d is %v", i, v)
		assert.Greater(t, out[i], float32(0))
	}
	// roughness 0 leaves only the diffuse lobe: (1 - F0) / pi
	assert.InDelta(t, (1-DielectricF0)/math.Pi, out[0], 1e-5)
}

func TestEvaluateLight_PointLight(t *testing.T) {
	s := Surface{
		Position:  mgl32.Vec3{0, 0, -10},
		Normal:    mgl32.Vec3{0, 0, 1},
		Albedo:    mgl32.Vec3{0.5, 0.5, 0.5},
		Roughness: 0.5,
	}
	near := EvaluateLight(s, mgl32.Vec4{0, 0, -5, 1}, mgl32.Vec3{1, 1, 1}, DefaultDistanceScale)
	far := EvaluateLight(s, mgl32.Vec4{0, 0, 0, 1}, mgl32.Vec3{1, 1, 1}, DefaultDistanceScale)
	assert.InDelta(t, 4, near[0]/far[0], 1e-4, "doubling the distance quarters the radiance")

	behind := EvaluateLight(s, mgl32.Vec4{0, 0, -15, 1}, mgl32.Vec3{1, 1, 1}, DefaultDistanceScale)
	assert.Equal(t, mgl32.Vec3{}, behind)
}

func TestEvaluateLight_MetalHasNoDiffuse(t *testing.T) {
	s := Surface{
		Position:  mgl32.Vec3{0, -5, 0},
		Normal:    mgl32.Vec3{0, 1, 0},
		Albedo:    mgl32.Vec3{1, 0, 0},
		Roughness: 0,
		Metallic:  1,
	}
	out := EvaluateLight(s, mgl32.Vec4{0, -1, 0, 0}, mgl32.Vec3{1, 1, 1}, DefaultDistanceScale)
	assert.Equal(t, mgl32.Vec3{}, out)
}

func TestShade_AmbientAndCountGating(t *testing.T) {
	s := Surface{
		Position:         mgl32.Vec3{0, -5, 0},
		Normal:           mgl32.Vec3{0, 1, 0},
		Albedo:           mgl32.Vec3{1, 0.5, 0.25},
		Roughness:        1,
		AmbientOcclusion: DefaultAmbientOcclusion,
	}
	u, err := light.PackLightUniform(light.LightSnapshot{Ambient: mgl32.Vec3{0.2, 0.2, 0.2}}, mgl32.Ident4())
	require.NoError(t, err)
	// a stale slot past Count must be ignored
	u.Lights[0] = light.GPULightSlot{Position: [4]float32{0, -1, 0, 0}, Color: [4]float32{1, 1, 1, 0}}

	out := Shade(s, &u, DefaultDistanceScale)
	assertVec3(t, mgl32.Vec3{0.1, 0.05, 0.025}, out, 1e-6)

	u.Count = 1
	lit := Shade(s, &u, DefaultDistanceScale)
	assert.Greater(t, lit[0], out[0])
}

func TestShade_Unclamped(t *testing.T) {
	s := Surface{
		Position:  mgl32.Vec3{0, -5, 0},
		Normal:    mgl32.Vec3{0, 1, 0},
		Albedo:    mgl32.Vec3{1, 1, 1},
		Roughness: 1,
	}
	snap := light.LightSnapshot{}
	for i := 0; i < light.MaxLights; i++ {
		snap.Lights = append(snap.Lights, light.LightValue{Type: light.LightTypeDirectional, Vector: mgl32.Vec4{0, -1, 0, 0}, Color: mgl32.Vec3{4, 4, 4}})
	}
	u, err := light.PackLightUniform(snap, mgl32.Ident4())
	require.NoError(t, err)
	out := Shade(s, &u, DefaultDistanceScale)
	assert.Greater(t, out[0], float32(1))
}
