package material

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUMaterialSize is the byte size of a marshaled GPUMaterial.
const GPUMaterialSize = 48

// GPUMaterial is the GPU-aligned per-material uniform read by the geometry pass.
// Presence flags are floats (1.0 or 0.0) so the shader can branch on them without a
// separate integer block.
// Size: 48 bytes (std140).
//
// Layout:
//
//	vec4<f32> albedo_color          (16 bytes, offset  0)
//	f32       has_texture           ( 4 bytes, offset 16)
//	f32       has_normal_map        ( 4 bytes, offset 20)
//	f32       has_metal_rough_map   ( 4 bytes, offset 24)
//	f32       roughness_factor      ( 4 bytes, offset 28)
//	f32       metallic_factor       ( 4 bytes, offset 32)
//	f32 x 3   _pad                  (12 bytes, offset 36)
type GPUMaterial struct {
	AlbedoColor      [4]float32
	HasTexture       float32
	HasNormalMap     float32
	HasMetalRoughMap float32
	RoughnessFactor  float32
	MetallicFactor   float32
	_pad             [3]float32
}

// Size returns the size of the GPUMaterial struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes (48)
func (g *GPUMaterial) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterial struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload
func (g *GPUMaterial) Marshal() []byte {
	buf := make([]byte, GPUMaterialSize)
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.AlbedoColor[i]))
	}
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.HasTexture))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.HasNormalMap))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.HasMetalRoughMap))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.RoughnessFactor))
	binary.LittleEndian.PutUint32(buf[32:36], math.Float32bits(g.MetallicFactor))
	return buf
}
