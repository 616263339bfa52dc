package model

import (
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrMeshLayout is returned when the attribute arrays of a MeshData disagree on the vertex count.
var ErrMeshLayout = errors.New("model: inconsistent mesh layout")

// MeshData holds the flat attribute arrays of one mesh as they come from a generator or importer.
// Positions, normals, tangents and bitangents are xyz triples; texture coordinates are uv pairs.
// Tangents, bitangents and texture coordinates are optional and zero-filled when absent.
type MeshData struct {
	Positions     []float32
	Normals       []float32
	Tangents      []float32
	Bitangents    []float32
	TexCoords     []float32
	Indices       []uint32
	MaterialIndex int
}

// VertexCount returns the number of vertices described by Positions.
func (d *MeshData) VertexCount() int {
	return len(d.Positions) / 3
}

// Vertices interleaves the attribute arrays into GPUVertex records.
//
// Returns:
//   - []GPUVertex: one record per vertex
//   - error: ErrMeshLayout if an array length does not match the vertex count or an index is out of range
func (d *MeshData) Vertices() ([]GPUVertex, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	n := d.VertexCount()
	tangents := zeroFill(d.Tangents, n*3)
	bitangents := zeroFill(d.Bitangents, n*3)
	texCoords := zeroFill(d.TexCoords, n*2)

	out := make([]GPUVertex, n)
	for i := range out {
		v := &out[i]
		copy(v.Position[:], d.Positions[i*3:i*3+3])
		copy(v.Normal[:], d.Normals[i*3:i*3+3])
		copy(v.Tangent[:], tangents[i*3:i*3+3])
		copy(v.Bitangent[:], bitangents[i*3:i*3+3])
		copy(v.TexCoord[:], texCoords[i*2:i*2+2])
	}
	return out, nil
}

func (d *MeshData) validate() error {
	if len(d.Positions)%3 != 0 {
		return errors.Wrapf(ErrMeshLayout, "%d position floats is not a multiple of 3", len(d.Positions))
	}
	n := d.VertexCount()
	if len(d.Normals) != n*3 {
		return errors.Wrapf(ErrMeshLayout, "%d normal floats for %d vertices", len(d.Normals), n)
	}
	if len(d.Tangents) != 0 && len(d.Tangents) != n*3 {
		return errors.Wrapf(ErrMeshLayout, "%d tangent floats for %d vertices", len(d.Tangents), n)
	}
	if len(d.Bitangents) != 0 && len(d.Bitangents) != n*3 {
		return errors.Wrapf(ErrMeshLayout, "%d bitangent floats for %d vertices", len(d.Bitangents), n)
	}
	if len(d.TexCoords) != 0 && len(d.TexCoords) != n*2 {
		return errors.Wrapf(ErrMeshLayout, "%d texcoord floats for %d vertices", len(d.TexCoords), n)
	}
	if len(d.Indices)%3 != 0 {
		return errors.Wrapf(ErrMeshLayout, "%d indices do not form whole triangles", len(d.Indices))
	}
	for i, idx := range d.Indices {
		if int(idx) >= n {
			return errors.Wrapf(ErrMeshLayout, "index %d references vertex %d of %d", i, idx, n)
		}
	}
	return nil
}

func zeroFill(src []float32, n int) []float32 {
	if len(src) == n {
		return src
	}
	return make([]float32, n)
}

// ComputeTangents derives per-vertex tangents and bitangents from triangle edges and texture
// coordinates, overwriting any existing values. Each basis is orthogonalized against the
// vertex normal. Vertices whose triangles have a degenerate uv mapping keep a zero basis.
//
// Parameters:
//   - d: the mesh to update; TexCoords must be present
//
// Returns:
//   - error: ErrMeshLayout if the mesh is malformed or has no texture coordinates
func ComputeTangents(d *MeshData) error {
	if err := d.validate(); err != nil {
		return err
	}
	n := d.VertexCount()
	if len(d.TexCoords) != n*2 {
		return errors.Wrap(ErrMeshLayout, "tangent generation needs texture coordinates")
	}

	pos := func(i uint32) mgl32.Vec3 {
		return mgl32.Vec3{d.Positions[i*3], d.Positions[i*3+1], d.Positions[i*3+2]}
	}
	uv := func(i uint32) mgl32.Vec2 {
		return mgl32.Vec2{d.TexCoords[i*2], d.TexCoords[i*2+1]}
	}

	tan := make([]mgl32.Vec3, n)
	bit := make([]mgl32.Vec3, n)
	for t := 0; t+2 < len(d.Indices); t += 3 {
		i0, i1, i2 := d.Indices[t], d.Indices[t+1], d.Indices[t+2]
		e1, e2 := pos(i1).Sub(pos(i0)), pos(i2).Sub(pos(i0))
		d1, d2 := uv(i1).Sub(uv(i0)), uv(i2).Sub(uv(i0))
		r := d1[0]*d2[1] - d2[0]*d1[1]
		if r > -1e-12 && r < 1e-12 {
			continue
		}
		inv := 1 / r
		ft := e1.Mul(d2[1]).Sub(e2.Mul(d1[1])).Mul(inv)
		fb := e2.Mul(d1[0]).Sub(e1.Mul(d2[0])).Mul(inv)
		for _, i := range [3]uint32{i0, i1, i2} {
			tan[i] = tan[i].Add(ft)
			bit[i] = bit[i].Add(fb)
		}
	}

	d.Tangents = make([]float32, n*3)
	d.Bitangents = make([]float32, n*3)
	for i := 0; i < n; i++ {
		nrm := mgl32.Vec3{d.Normals[i*3], d.Normals[i*3+1], d.Normals[i*3+2]}
		t := orthonormalize(tan[i], nrm)
		b := orthonormalize(bit[i].Sub(t.Mul(t.Dot(bit[i]))), nrm)
		copy(d.Tangents[i*3:], t[:])
		copy(d.Bitangents[i*3:], b[:])
	}
	return nil
}

func orthonormalize(v, n mgl32.Vec3) mgl32.Vec3 {
	v = v.Sub(n.Mul(n.Dot(v)))
	if l := v.Len(); l > 1e-8 {
		return v.Mul(1 / l)
	}
	return mgl32.Vec3{}
}
