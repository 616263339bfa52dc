package material

import (
	"github.com/Carmen-Shannon/oxy-deferred/engine/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// material is the implementation of the Material interface.
type material struct {
	name              string
	albedoColor       mgl32.Vec4
	metallic          float32
	roughness         float32
	albedoTexture     *texture.Texture
	normalTexture     *texture.Texture
	metalRoughTexture *texture.Texture
}

// Material defines the interface for a PBR surface description consumed by the geometry pass.
//
// Each texture slot is optional; a nil texture means the matching fallback is used. Exactly
// one source is used per factor: the sampled texture when present, the scalar otherwise.
// The two are never blended.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// AlbedoColor retrieves the fallback RGBA albedo used when no albedo texture is bound.
	//
	// Returns:
	//   - mgl32.Vec4: the albedo color
	AlbedoColor() mgl32.Vec4

	// Metallic retrieves the scalar metallic factor used when no metal-rough texture is bound.
	//
	// Returns:
	//   - float32: the metallic factor (0.0 = dielectric, 1.0 = metal)
	Metallic() float32

	// Roughness retrieves the scalar roughness factor used when no metal-rough texture is bound.
	//
	// Returns:
	//   - float32: the roughness factor (0.0 = smooth, 1.0 = rough)
	Roughness() float32

	// AlbedoTexture retrieves the albedo texture, or nil if none is set.
	AlbedoTexture() *texture.Texture

	// NormalTexture retrieves the tangent-space normal map, or nil if none is set.
	NormalTexture() *texture.Texture

	// MetalRoughTexture retrieves the metallic-roughness texture (G = roughness,
	// B = metallic), or nil if none is set.
	MetalRoughTexture() *texture.Texture

	// Albedo evaluates the surface albedo at uv.
	//
	// Parameters:
	//   - uv: texture coordinates
	//
	// Returns:
	//   - mgl32.Vec4: linear RGBA, alpha used as the cutout mask
	Albedo(uv mgl32.Vec2) mgl32.Vec4

	// RoughnessMetallic evaluates roughness and metallic at uv.
	//
	// Parameters:
	//   - uv: texture coordinates
	//
	// Returns:
	//   - roughness: the roughness value
	//   - metallic: the metallic value
	RoughnessMetallic(uv mgl32.Vec2) (roughness, metallic float32)

	// BoundTextures returns the albedo, normal, and metal-rough textures with the dummy
	// texture substituted for absent slots, so every material binds three textures.
	//
	// Returns:
	//   - [3]*texture.Texture: never contains nil
	BoundTextures() [3]*texture.Texture

	// GPU returns the material uniform with presence flags derived from the texture slots.
	//
	// Returns:
	//   - GPUMaterial: the uniform value
	GPU() GPUMaterial
}

var _ Material = &material{}

var dummy = texture.Dummy()

// NewMaterial creates a new Material instance configured with the provided options.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		albedoColor: mgl32.Vec4{1, 1, 1, 1},
		metallic:    0.0,
		roughness:   1.0,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) AlbedoColor() mgl32.Vec4 {
	return m.albedoColor
}

func (m *material) Metallic() float32 {
	return m.metallic
}

func (m *material) Roughness() float32 {
	return m.roughness
}

func (m *material) AlbedoTexture() *texture.Texture {
	return m.albedoTexture
}

func (m *material) NormalTexture() *texture.Texture {
	return m.normalTexture
}

func (m *material) MetalRoughTexture() *texture.Texture {
	return m.metalRoughTexture
}

func (m *material) Albedo(uv mgl32.Vec2) mgl32.Vec4 {
	if m.albedoTexture != nil {
		return m.albedoTexture.Sample(uv)
	}
	return m.albedoColor
}

func (m *material) RoughnessMetallic(uv mgl32.Vec2) (float32, float32) {
	if m.metalRoughTexture != nil {
		s := m.metalRoughTexture.Sample(uv)
		return s[1], s[2]
	}
	return m.roughness, m.metallic
}

func (m *material) BoundTextures() [3]*texture.Texture {
	bound := [3]*texture.Texture{m.albedoTexture, m.normalTexture, m.metalRoughTexture}
	for i := range bound {
		if bound[i] == nil {
			bound[i] = dummy
		}
	}
	return bound
}

func (m *material) GPU() GPUMaterial {
	return GPUMaterial{
		AlbedoColor:      m.albedoColor,
		HasTexture:       flag(m.albedoTexture != nil),
		HasNormalMap:     flag(m.normalTexture != nil),
		HasMetalRoughMap: flag(m.metalRoughTexture != nil),
		RoughnessFactor:  m.roughness,
		MetallicFactor:   m.metallic,
	}
}

func flag(present bool) float32 {
	if present {
		return 1
	}
	return 0
}
