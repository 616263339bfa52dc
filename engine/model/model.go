package model

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
)

// MeshRecord locates one mesh inside the model's shared vertex and index buffers.
// Indices are relative to VerticesOffset.
type MeshRecord struct {
	VerticesOffset int // first vertex of the mesh in the shared vertex buffer
	VerticesSize   int // number of vertices
	IndicesOffset  int // first index of the mesh in the shared index buffer
	NumIndices     int
	MaterialIndex  int
}

// model is the implementation of the Model interface.
type model struct {
	name           string
	pending        []MeshData
	vertices       []GPUVertex
	indices        []uint32
	meshes         []MeshRecord
	boundsMin      mgl32.Vec3
	boundsMax      mgl32.Vec3
	boundingRadius float32
}

// Model defines the interface for a renderable mesh collection.
// Every mesh is appended into one shared vertex buffer and one shared index buffer, and a
// MeshRecord remembers where each mesh lives so a draw can address it by offset.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Meshes returns the per-mesh offsets into the shared buffers.
	//
	// Returns:
	//   - []MeshRecord: one record per mesh, in insertion order
	Meshes() []MeshRecord

	// Vertices returns the shared vertex buffer.
	//
	// Returns:
	//   - []GPUVertex: every vertex of every mesh
	Vertices() []GPUVertex

	// Indices returns the shared index buffer.
	//
	// Returns:
	//   - []uint32: every index of every mesh, relative to its mesh's VerticesOffset
	Indices() []uint32

	// VertexData returns the shared vertex buffer serialized for GPU upload.
	//
	// Returns:
	//   - []byte: the interleaved vertex data
	VertexData() []byte

	// IndexData returns the shared index buffer serialized for GPU upload.
	//
	// Returns:
	//   - []byte: the index data
	IndexData() []byte

	// IndexCount returns the number of indices across all meshes.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// Bounds returns the model-space axis-aligned bounding box.
	//
	// Returns:
	//   - mgl32.Vec3: minimum corner
	//   - mgl32.Vec3: maximum corner
	Bounds() (mgl32.Vec3, mgl32.Vec3)

	// BoundingRadius returns the maximum vertex distance from the model origin.
	//
	// Returns:
	//   - float32: the bounding radius
	BoundingRadius() float32
}

var _ Model = &model{}

// NewModel creates a new Model instance from the meshes supplied through WithMesh.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: the assembled model
//   - error: ErrMeshLayout if any mesh is malformed
func NewModel(options ...ModelBuilderOption) (Model, error) {
	m := &model{}
	for _, opt := range options {
		opt(m)
	}
	for i := range m.pending {
		if err := m.appendMesh(&m.pending[i]); err != nil {
			return nil, errors.Wrapf(err, "model %q mesh %d", m.name, i)
		}
	}
	m.pending = nil
	m.computeBounds()
	return m, nil
}

func (m *model) appendMesh(d *MeshData) error {
	verts, err := d.Vertices()
	if err != nil {
		return err
	}
	m.meshes = append(m.meshes, MeshRecord{
		VerticesOffset: len(m.vertices),
		VerticesSize:   len(verts),
		IndicesOffset:  len(m.indices),
		NumIndices:     len(d.Indices),
		MaterialIndex:  d.MaterialIndex,
	})
	m.vertices = append(m.vertices, verts...)
	m.indices = append(m.indices, d.Indices...)
	return nil
}

func (m *model) computeBounds() {
	if len(m.vertices) == 0 {
		return
	}
	lo := mgl32.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	hi := lo.Mul(-1)
	var maxDistSq float32
	for i := range m.vertices {
		p := mgl32.Vec3(m.vertices[i].Position)
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], p[k])
			hi[k] = max(hi[k], p[k])
		}
		maxDistSq = max(maxDistSq, p.Dot(p))
	}
	m.boundsMin, m.boundsMax = lo, hi
	m.boundingRadius = float32(math.Sqrt(float64(maxDistSq)))
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Meshes() []MeshRecord {
	return m.meshes
}

func (m *model) Vertices() []GPUVertex {
	return m.vertices
}

func (m *model) Indices() []uint32 {
	return m.indices
}

func (m *model) VertexData() []byte {
	return MarshalVertices(m.vertices)
}

func (m *model) IndexData() []byte {
	return MarshalIndices(m.indices)
}

func (m *model) IndexCount() int {
	return len(m.indices)
}

func (m *model) Bounds() (mgl32.Vec3, mgl32.Vec3) {
	return m.boundsMin, m.boundsMax
}

func (m *model) BoundingRadius() float32 {
	return m.boundingRadius
}
