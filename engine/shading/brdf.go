package shading

import (
	"math"

	"github.com/Carmen-Shannon/oxy-deferred/engine/light"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DielectricF0 is the base reflectance of non-metals.
	DielectricF0 = 0.04

	// DefaultDistanceScale multiplies point light distances before attenuation.
	DefaultDistanceScale = 0.2

	// DefaultAmbientOcclusion is the constant occlusion written by the geometry pass.
	DefaultAmbientOcclusion = 0.5

	ggxEpsilon      = 1e-7
	specularEpsilon = 0.001
)

// Surface is everything the lighting pass knows about one shaded point, in view space.
type Surface struct {
	Position         mgl32.Vec3
	Normal           mgl32.Vec3
	Albedo           mgl32.Vec3
	Metallic         float32
	Roughness        float32
	AmbientOcclusion float32
}

// DistributionGGX is the Trowbridge-Reitz normal distribution with alpha = roughness².
// The denominator is floored so roughness 0 returns 0 rather than NaN.
func DistributionGGX(n, h mgl32.Vec3, roughness float32) float32 {
	a := roughness * roughness
	a2 := a * a
	nDotH := max(n.Dot(h), 0)
	d := nDotH*nDotH*(a2-1) + 1
	denom := max(math.Pi*d*d, ggxEpsilon)
	return a2 / denom
}

// GeometrySchlickGGX is the Schlick-GGX shadowing term for one direction with k = (r+1)²/8.
func GeometrySchlickGGX(nDotX, roughness float32) float32 {
	r := roughness + 1
	k := r * r / 8
	return nDotX / (nDotX*(1-k) + k)
}

// GeometrySmith combines the view and light shadowing terms.
func GeometrySmith(n, v, l mgl32.Vec3, roughness float32) float32 {
	nDotV := max(n.Dot(v), 0)
	nDotL := max(n.Dot(l), 0)
	return GeometrySchlickGGX(nDotV, roughness) * GeometrySchlickGGX(nDotL, roughness)
}

// FresnelSchlick approximates the Fresnel reflectance for the given cosine.
func FresnelSchlick(cosTheta float32, f0 mgl32.Vec3) mgl32.Vec3 {
	f := float32(math.Pow(float64(1-mgl32.Clamp(cosTheta, 0, 1)), 5))
	return f0.Add(mgl32.Vec3{1, 1, 1}.Sub(f0).Mul(f))
}

// BaseReflectance mixes the dielectric constant toward albedo by metallic.
func BaseReflectance(albedo mgl32.Vec3, metallic float32) mgl32.Vec3 {
	f0 := mgl32.Vec3{DielectricF0, DielectricF0, DielectricF0}
	return f0.Add(albedo.Sub(f0).Mul(metallic))
}

// Attenuation returns 1/d² for the scaled distance d = distance*scale. It is unclamped and
// diverges as the distance approaches zero.
func Attenuation(distance, scale float32) float32 {
	d := distance * scale
	return 1 / (d * d)
}

// LightDirection returns the normalized surface-to-light direction and the attenuation for a
// tagged light vector. w = 0 marks a direction the light travels along, w = 1 a position.
//
// Parameters:
//   - vector: view-space position or direction with its kind tag in w
//   - p: view-space surface position
//   - scale: point light distance scale
//
// Returns:
//   - mgl32.Vec3: the direction toward the light
//   - float32: the attenuation factor
func LightDirection(vector mgl32.Vec4, p mgl32.Vec3, scale float32) (mgl32.Vec3, float32) {
	if vector[3] == float32(light.LightTypeDirectional) {
		return safeNormalize(vector.Vec3().Mul(-1)), 1
	}
	toLight := vector.Vec3().Sub(p)
	return safeNormalize(toLight), Attenuation(toLight.Len(), scale)
}

// EvaluateLight computes the Cook-Torrance radiance one light sends toward the viewer.
//
// Parameters:
//   - s: the shaded surface
//   - vector: the light's tagged view-space position or direction
//   - color: the light's linear color
//   - scale: point light distance scale
//
// Returns:
//   - mgl32.Vec3: outgoing radiance contribution
func EvaluateLight(s Surface, vector mgl32.Vec4, color mgl32.Vec3, scale float32) mgl32.Vec3 {
	n := s.Normal
	v := safeNormalize(s.Position.Mul(-1))
	l, attenuation := LightDirection(vector, s.Position, scale)
	h := safeNormalize(l.Add(v))

	nDotV := max(n.Dot(v), 0)
	nDotL := max(n.Dot(l), 0)

	ndf := DistributionGGX(n, h, s.Roughness)
	g := GeometrySmith(n, v, l, s.Roughness)
	f := FresnelSchlick(max(h.Dot(v), 0), BaseReflectance(s.Albedo, s.Metallic))

	specular := f.Mul(ndf * g / max(4*nDotV*nDotL, specularEpsilon))
	kD := mgl32.Vec3{1, 1, 1}.Sub(f).Mul(1 - s.Metallic)
	diffuse := hadamard(kD, s.Albedo).Mul(1 / math.Pi)

	return hadamard(diffuse.Add(specular), color).Mul(attenuation * nDotL)
}

// Shade composes the final pixel radiance: ambient*albedo*ao plus every active light in the
// packed uniform. The result is not clamped.
//
// Parameters:
//   - s: the shaded surface
//   - u: the per-frame light uniform; Count gates the loop
//   - scale: point light distance scale
//
// Returns:
//   - mgl32.Vec3: the pixel radiance
func Shade(s Surface, u *light.GPULightUniform, scale float32) mgl32.Vec3 {
	ambient := mgl32.Vec3{u.AmbientColor[0], u.AmbientColor[1], u.AmbientColor[2]}
	out := hadamard(ambient, s.Albedo).Mul(s.AmbientOcclusion)
	for _, slot := range u.Active() {
		color := mgl32.Vec3{slot.Color[0], slot.Color[1], slot.Color[2]}
		out = out.Add(EvaluateLight(s, mgl32.Vec4(slot.Position), color, scale))
	}
	return out
}

func hadamard(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}
