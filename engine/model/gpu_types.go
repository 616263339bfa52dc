package model

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// GPUVertexStride is the byte distance between consecutive vertices in the interleaved buffer.
const GPUVertexStride = 56

// GPUVertex is the GPU-aligned representation of a single mesh vertex.
// Every attribute is tightly packed; there is no padding between fields.
// Size: 56 bytes.
type GPUVertex struct {
	Position  [3]float32 // offset  0: model-space position (12 bytes)
	Normal    [3]float32 // offset 12: model-space normal (12 bytes)
	Tangent   [3]float32 // offset 24: direction of increasing u (12 bytes)
	Bitangent [3]float32 // offset 36: direction of increasing v (12 bytes)
	TexCoord  [2]float32 // offset 48: UV texture coordinate (8 bytes)
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 56-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, GPUVertexStride)
	g.marshalInto(buf)
	return buf
}

func (g *GPUVertex) marshalInto(buf []byte) {
	off := 0
	for _, field := range [][]float32{g.Position[:], g.Normal[:], g.Tangent[:], g.Bitangent[:], g.TexCoord[:]} {
		for _, f := range field {
			binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(f))
			off += 4
		}
	}
}

// MarshalVertices serializes a vertex slice into one interleaved buffer.
//
// Parameters:
//   - vertices: the vertices to serialize
//
// Returns:
//   - []byte: len(vertices) * GPUVertexStride bytes
func MarshalVertices(vertices []GPUVertex) []byte {
	buf := make([]byte, len(vertices)*GPUVertexStride)
	for i := range vertices {
		vertices[i].marshalInto(buf[i*GPUVertexStride:])
	}
	return buf
}

// MarshalIndices serializes a uint32 index slice into a little-endian buffer.
//
// Parameters:
//   - indices: the indices to serialize
//
// Returns:
//   - []byte: len(indices) * 4 bytes
func MarshalIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

// VertexBufferLayout describes the interleaved GPUVertex buffer for a render pipeline.
// Shader locations follow field order: position 0, normal 1, tangent 2, bitangent 3, texcoord 4.
//
// Returns:
//   - wgpu.VertexBufferLayout: the per-vertex buffer layout
func VertexBufferLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: GPUVertexStride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 24, ShaderLocation: 2},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 36, ShaderLocation: 3},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 48, ShaderLocation: 4},
		},
	}
}
