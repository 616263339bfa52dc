package camera

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// GPUCameraUniformSize is the byte size of a marshaled GPUCameraUniform.
const GPUCameraUniformSize = 208

// GPUCameraUniform is the GPU-aligned per-frame camera uniform.
// Size: 208 bytes.
//
// Layout:
//
//	mat4x4<f32>  view                (64 bytes, offset   0)
//	mat4x4<f32>  projection          (64 bytes, offset  64)
//	mat4x4<f32>  inverse_projection  (64 bytes, offset 128)
//	vec3<f32>    position            (12 bytes, offset 192)
//	f32          _pad                ( 4 bytes, offset 204)
type GPUCameraUniform struct {
	View              [16]float32
	Projection        [16]float32
	InverseProjection [16]float32
	Position          [3]float32
	_pad              float32
}

// NewGPUCameraUniform captures the current matrices of a camera.
//
// Parameters:
//   - c: the camera to read
//
// Returns:
//   - GPUCameraUniform: the uniform ready to marshal
func NewGPUCameraUniform(c Camera) GPUCameraUniform {
	m := c.Matrices()
	return NewGPUCameraUniformFromMatrices(m.View, m.Projection, m.InverseProjection, m.Position)
}

// NewGPUCameraUniformFromMatrices builds the uniform from matrices captured earlier, such as
// those held by a scene snapshot.
func NewGPUCameraUniformFromMatrices(view, proj, invProj mgl32.Mat4, position mgl32.Vec3) GPUCameraUniform {
	return GPUCameraUniform{
		View:              view,
		Projection:        proj,
		InverseProjection: invProj,
		Position:          position,
	}
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (208)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, GPUCameraUniformSize)
	putMat4(buf[0:], g.View)
	putMat4(buf[64:], g.Projection)
	putMat4(buf[128:], g.InverseProjection)
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[192+i*4:], math.Float32bits(g.Position[i]))
	}
	return buf
}

func putMat4(dst []byte, m mgl32.Mat4) {
	for i := range 16 {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(m[i]))
	}
}
