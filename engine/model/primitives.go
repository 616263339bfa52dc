package model

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Plane generates a square in the XZ plane facing +Y, centered on the origin.
//
// Parameters:
//   - size: edge length
//   - materialIndex: material slot assigned to the mesh
//
// Returns:
//   - MeshData: the plane mesh with tangents
func Plane(size float32, materialIndex int) MeshData {
	h := size / 2
	d := MeshData{
		Positions: []float32{
			-h, 0, -h,
			h, 0, -h,
			h, 0, h,
			-h, 0, h,
		},
		Normals:       []float32{0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1, 0},
		TexCoords:     []float32{0, 0, 1, 0, 1, 1, 0, 1},
		Indices:       []uint32{0, 3, 2, 0, 2, 1},
		MaterialIndex: materialIndex,
	}
	mustComputeTangents(&d)
	return d
}

type cubeFace struct {
	n, u, v mgl32.Vec3
}

// u x v == n for every face, so corners listed (-u-v, +u-v, +u+v, -u+v) wind counter-clockwise
// seen from outside.
var cubeFaces = [6]cubeFace{
	{n: mgl32.Vec3{1, 0, 0}, u: mgl32.Vec3{0, 0, -1}, v: mgl32.Vec3{0, 1, 0}},
	{n: mgl32.Vec3{-1, 0, 0}, u: mgl32.Vec3{0, 0, 1}, v: mgl32.Vec3{0, 1, 0}},
	{n: mgl32.Vec3{0, 1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, -1}},
	{n: mgl32.Vec3{0, -1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, 1}},
	{n: mgl32.Vec3{0, 0, 1}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
	{n: mgl32.Vec3{0, 0, -1}, u: mgl32.Vec3{-1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
}

// Cube generates an axis-aligned cube centered on the origin with four vertices per face.
//
// Parameters:
//   - size: edge length
//   - materialIndex: material slot assigned to the mesh
//
// Returns:
//   - MeshData: the cube mesh with tangents
func Cube(size float32, materialIndex int) MeshData {
	h := size / 2
	d := MeshData{MaterialIndex: materialIndex}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for f, face := range cubeFaces {
		center := face.n.Mul(h)
		for _, c := range corners {
			p := center.Add(face.u.Mul(c[0] * h)).Add(face.v.Mul(c[1] * h))
			d.Positions = append(d.Positions, p[0], p[1], p[2])
			d.Normals = append(d.Normals, face.n[0], face.n[1], face.n[2])
			d.TexCoords = append(d.TexCoords, (c[0]+1)/2, (c[1]+1)/2)
		}
		base := uint32(f * 4)
		d.Indices = append(d.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	mustComputeTangents(&d)
	return d
}

// Sphere generates a UV sphere centered on the origin.
//
// Parameters:
//   - radius: sphere radius
//   - rings: latitude subdivisions (minimum 2)
//   - segments: longitude subdivisions (minimum 3)
//   - materialIndex: material slot assigned to the mesh
//
// Returns:
//   - MeshData: the sphere mesh with tangents
func Sphere(radius float32, rings, segments, materialIndex int) MeshData {
	rings = max(rings, 2)
	segments = max(segments, 3)
	d := MeshData{MaterialIndex: materialIndex}
	for r := 0; r <= rings; r++ {
		theta := math.Pi * float64(r) / float64(rings)
		sinT, cosT := math.Sincos(theta)
		for s := 0; s <= segments; s++ {
			phi := 2 * math.Pi * float64(s) / float64(segments)
			sinP, cosP := math.Sincos(phi)
			n := mgl32.Vec3{float32(sinT * cosP), float32(cosT), float32(sinT * sinP)}
			p := n.Mul(radius)
			d.Positions = append(d.Positions, p[0], p[1], p[2])
			d.Normals = append(d.Normals, n[0], n[1], n[2])
			d.TexCoords = append(d.TexCoords, float32(s)/float32(segments), float32(r)/float32(rings))
		}
	}
	stride := uint32(segments + 1)
	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			a := uint32(r)*stride + uint32(s)
			b := a + stride
			if r != 0 {
				d.Indices = append(d.Indices, a, a+1, b)
			}
			if r != rings-1 {
				d.Indices = append(d.Indices, a+1, b+1, b)
			}
		}
	}
	mustComputeTangents(&d)
	return d
}

// mustComputeTangents runs ComputeTangents on generator output, which is always well formed.
// A failure is a bug in a generator and panics.
func mustComputeTangents(d *MeshData) {
	if err := ComputeTangents(d); err != nil {
		panic("model: primitive tangents: " + err.Error())
	}
}
