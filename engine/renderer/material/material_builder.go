package material

import (
	"github.com/Carmen-Shannon/oxy-deferred/engine/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithAlbedoColor is an option builder that sets the fallback RGBA albedo of the material.
//
// Parameters:
//   - color: the albedo color as linear RGBA
//
// Returns:
//   - MaterialBuilderOption: a function that applies the albedo option to a material
func WithAlbedoColor(color mgl32.Vec4) MaterialBuilderOption {
	return func(m *material) {
		m.albedoColor = color
	}
}

// WithMetallic is an option builder that sets the scalar metallic factor of the material.
//
// Parameters:
//   - metallic: the metallic factor (0.0 = dielectric, 1.0 = metal)
//
// Returns:
//   - MaterialBuilderOption: a function that applies the metallic option to a material
func WithMetallic(metallic float32) MaterialBuilderOption {
	return func(m *material) {
		m.metallic = metallic
	}
}

// WithRoughness is an option builder that sets the scalar roughness factor of the material.
//
// Parameters:
//   - roughness: the roughness factor (0.0 = smooth, 1.0 = rough)
//
// Returns:
//   - MaterialBuilderOption: a function that applies the roughness option to a material
func WithRoughness(roughness float32) MaterialBuilderOption {
	return func(m *material) {
		m.roughness = roughness
	}
}

// WithAlbedoTexture is an option builder that sets the albedo texture.
//
// Parameters:
//   - tex: the albedo texture, expected to be decoded from sRGB
//
// Returns:
//   - MaterialBuilderOption: a function that applies the texture option to a material
func WithAlbedoTexture(tex *texture.Texture) MaterialBuilderOption {
	return func(m *material) {
		m.albedoTexture = tex
	}
}

// WithNormalTexture is an option builder that sets the tangent-space normal map.
//
// Parameters:
//   - tex: the normal map in linear space
//
// Returns:
//   - MaterialBuilderOption: a function that applies the texture option to a material
func WithNormalTexture(tex *texture.Texture) MaterialBuilderOption {
	return func(m *material) {
		m.normalTexture = tex
	}
}

// WithMetalRoughTexture is an option builder that sets the metallic-roughness texture.
//
// Parameters:
//   - tex: the texture, G channel roughness and B channel metallic
//
// Returns:
//   - MaterialBuilderOption: a function that applies the texture option to a material
func WithMetalRoughTexture(tex *texture.Texture) MaterialBuilderOption {
	return func(m *material) {
		m.metalRoughTexture = tex
	}
}
