package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangle() MeshData {
	return MeshData{
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Normals:   []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		Indices:   []uint32{0, 1, 2},
	}
}

func TestMeshData_VerticesZeroFillsMissingAttributes(t *testing.T) {
	d := triangle()
	verts, err := d.Vertices()
	require.NoError(t, err)
	require.Len(t, verts, 3)
	for _, v := range verts {
		assert.Equal(t, [3]float32{}, v.Tangent)
		assert.Equal(t, [3]float32{}, v.Bitangent)
		assert.Equal(t, [2]float32{}, v.TexCoord)
		assert.Equal(t, [3]float32{0, 0, 1}, v.Normal)
	}
	assert.Equal(t, [3]float32{1, 0, 0}, verts[1].Position)
}

func TestMeshData_LayoutErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *MeshData)
	}{
		{"ragged positions", func(d *MeshData) { d.Positions = d.Positions[:8] }},
		{"short normals", func(d *MeshData) { d.Normals = d.Normals[:6] }},
		{"short tangents", func(d *MeshData) { d.Tangents = make([]float32, 3) }},
		{"long bitangents", func(d *MeshData) { d.Bitangents = make([]float32, 12) }},
		{"odd texcoords", func(d *MeshData) { d.TexCoords = make([]float32, 5) }},
		{"partial triangle", func(d *MeshData) { d.Indices = []uint32{0, 1} }},
		{"index out of range", func(d *MeshData) { d.Indices = []uint32{0, 1, 3} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := triangle()
			tt.mutate(&d)
			_, err := d.Vertices()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMeshLayout))
		})
	}
}

func TestGPUVertex_Marshal(t *testing.T) {
	v := GPUVertex{
		Position:  [3]float32{1, 2, 3},
		Normal:    [3]float32{4, 5, 6},
		Tangent:   [3]float32{7, 8, 9},
		Bitangent: [3]float32{10, 11, 12},
		TexCoord:  [2]float32{13, 14},
	}
	assert.Equal(t, GPUVertexStride, v.Size())

	buf := v.Marshal()
	require.Len(t, buf, GPUVertexStride)
	for i := 0; i < 14; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		assert.Equal(t, float32(i+1), got, "float %d", i)
	}

	all := MarshalVertices([]GPUVertex{{}, v})
	assert.Equal(t, buf, all[GPUVertexStride:])
}

func TestVertexBufferLayout_MatchesStruct(t *testing.T) {
	layout := VertexBufferLayout()
	assert.Equal(t, uint64(GPUVertexStride), layout.ArrayStride)
	require.Len(t, layout.Attributes, 5)
	offsets := []uint64{0, 12, 24, 36, 48}
	for i, a := range layout.Attributes {
		assert.Equal(t, offsets[i], a.Offset)
		assert.Equal(t, uint32(i), a.ShaderLocation)
	}
}

func TestNewModel_SharedBuffers(t *testing.T) {
	tri := triangle()
	tri.MaterialIndex = 2
	m, err := NewModel(WithName("pair"), WithMeshes(tri, Cube(2, 0)))
	require.NoError(t, err)

	meshes := m.Meshes()
	require.Len(t, meshes, 2)
	assert.Equal(t, MeshRecord{VerticesOffset: 0, VerticesSize: 3, IndicesOffset: 0, NumIndices: 3, MaterialIndex: 2}, meshes[0])
	assert.Equal(t, MeshRecord{VerticesOffset: 3, VerticesSize: 24, IndicesOffset: 3, NumIndices: 36, MaterialIndex: 0}, meshes[1])
	assert.Equal(t, 39, m.IndexCount())
	assert.Len(t, m.VertexData(), 27*GPUVertexStride)
	assert.Len(t, m.IndexData(), 39*4)

	lo, hi := m.Bounds()
	assert.Equal(t, mgl32.Vec3{-1, -1, -1}, lo)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, hi)
	assert.InDelta(t, math.Sqrt(3), m.BoundingRadius(), 1e-5)
}

func TestNewModel_RejectsBadMesh(t *testing.T) {
	bad := triangle()
	bad.Normals = nil
	_, err := NewModel(WithName("broken"), WithMesh(bad))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMeshLayout))
	assert.Contains(t, err.Error(), "broken")
}

func TestPlane_Tangents(t *testing.T) {
	d := Plane(2, 0)
	verts, err := d.Vertices()
	require.NoError(t, err)
	for _, v := range verts {
		assert.True(t, mgl32.Vec3(v.Tangent).ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, 1e-6), "tangent %v", v.Tangent)
		assert.True(t, mgl32.Vec3(v.Bitangent).ApproxEqualThreshold(mgl32.Vec3{0, 0, 1}, 1e-6), "bitangent %v", v.Bitangent)
	}
}

func TestPrimitives_WindingFacesOutward(t *testing.T) {
	for name, d := range map[string]MeshData{
		"plane":  Plane(1, 0),
		"cube":   Cube(1, 0),
		"sphere": Sphere(1, 8, 12, 0),
	} {
		t.Run(name, func(t *testing.T) {
			verts, err := d.Vertices()
			require.NoError(t, err)
			for i := 0; i+2 < len(d.Indices); i += 3 {
				a := mgl32.Vec3(verts[d.Indices[i]].Position)
				b := mgl32.Vec3(verts[d.Indices[i+1]].Position)
				c := mgl32.Vec3(verts[d.Indices[i+2]].Position)
				face := b.Sub(a).Cross(c.Sub(a))
				n := mgl32.Vec3(verts[d.Indices[i]].Normal)
				assert.Greater(t, face.Dot(n), float32(0), "triangle %d winds inward", i/3)
			}
		})
	}
}

func TestComputeTangents_NeedsTexCoords(t *testing.T) {
	d := triangle()
	err := ComputeTangents(&d)
	assert.True(t, errors.Is(err, ErrMeshLayout))
}

func TestMustComputeTangents(t *testing.T) {
	d := triangle()
	err := ComputeTangents(&d)
	require.Error(t, err)
	assert.PanicsWithValue(t, "model: primitive tangents: "+err.Error(), func() {
		mustComputeTangents(&d)
	})

	for name, mesh := range map[string]MeshData{
		"plane":  Plane(2, 0),
		"cube":   Cube(2, 0),
		"sphere": Sphere(1, 6, 8, 0),
	} {
		assert.NotPanics(t, func() { mustComputeTangents(&mesh) }, name)
	}
}
