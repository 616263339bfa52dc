package renderer

import (
	"math"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gbuffer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/model"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-deferred/engine/scene"
	"github.com/Carmen-Shannon/oxy-deferred/engine/shading"
	"github.com/go-gl/mathgl/mgl32"
)

// AlphaCutoff is the albedo alpha below which a fragment is discarded.
const AlphaCutoff = 0.5

// GeometryStats counts the work done by one geometry pass.
type GeometryStats struct {
	ObjectsDrawn        int
	ObjectsCulled       int
	TrianglesRasterized int
	FragmentsDiscarded  int
}

// GeometryPass rasterizes the visible objects of a snapshot into a G-buffer.
// Triangles are counter-clockwise front facing; back faces are culled, depth test is less.
type GeometryPass struct {
	ambientOcclusion float32
}

// NewGeometryPass creates a GeometryPass that writes the given constant ambient occlusion.
//
// Parameters:
//   - ambientOcclusion: occlusion stored in the PBR attachment red channel
//
// Returns:
//   - *GeometryPass: the pass
func NewGeometryPass(ambientOcclusion float32) *GeometryPass {
	return &GeometryPass{ambientOcclusion: ambientOcclusion}
}

// clipVertex is a vertex after the vertex stage. Normal, tangent and bitangent are in view space.
type clipVertex struct {
	clip      mgl32.Vec4
	normal    mgl32.Vec3
	tangent   mgl32.Vec3
	bitangent mgl32.Vec3
	uv        mgl32.Vec2
}

// screenVertex is a clipVertex after the perspective divide and viewport mapping.
type screenVertex struct {
	x, y, z float32
	invW    float32
	v       *clipVertex
}

// Execute clears gb and draws every object of snap that survives frustum culling.
//
// Parameters:
//   - gb: the target G-buffer
//   - snap: the frame snapshot
//
// Returns:
//   - GeometryStats: per-pass counters
func (p *GeometryPass) Execute(gb *gbuffer.GBuffer, snap scene.Snapshot) GeometryStats {
	return p.Draw(gb, snap, p.Cull(snap))
}

// Cull returns the objects of snap whose world bounds intersect the view frustum, in
// snapshot order.
//
// Parameters:
//   - snap: the frame snapshot
//
// Returns:
//   - []scene.ObjectSnapshot: the visible objects
func (p *GeometryPass) Cull(snap scene.Snapshot) []scene.ObjectSnapshot {
	visible := make([]scene.ObjectSnapshot, 0, len(snap.Objects))
	for _, obj := range snap.Objects {
		if snap.Frustum.IntersectsAABB(obj.BoundsMin, obj.BoundsMax) {
			visible = append(visible, obj)
		}
	}
	return visible
}

// Draw clears gb and rasterizes visible, which must come from Cull(snap).
//
// Parameters:
//   - gb: the target G-buffer
//   - snap: the frame snapshot supplying the camera matrices
//   - visible: the objects to draw
//
// Returns:
//   - GeometryStats: per-pass counters
func (p *GeometryPass) Draw(gb *gbuffer.GBuffer, snap scene.Snapshot, visible []scene.ObjectSnapshot) GeometryStats {
	stats := GeometryStats{
		ObjectsDrawn:  len(visible),
		ObjectsCulled: len(snap.Objects) - len(visible),
	}
	gb.Clear()
	for _, obj := range visible {
		p.drawObject(gb, snap, obj, &stats)
	}
	return stats
}

func (p *GeometryPass) drawObject(gb *gbuffer.GBuffer, snap scene.Snapshot, obj scene.ObjectSnapshot, stats *GeometryStats) {
	modelView := snap.View.Mul4(obj.Transform)
	tangentMatrix := modelView.Mat3()
	normalMatrix := tangentMatrix.Inv().Transpose()

	vertices := obj.Model.Vertices()
	indices := obj.Model.Indices()
	transformed := make(map[uint32]clipVertex)

	for meshIndex, mesh := range obj.Model.Meshes() {
		mat := meshMaterial(obj, meshIndex)
		if mat == nil {
			continue
		}

		vertexAt := func(i uint32) clipVertex {
			global := uint32(mesh.VerticesOffset) + i
			if cv, ok := transformed[global]; ok {
				return cv
			}
			cv := vertexStage(vertices[global], modelView, snap.Projection, normalMatrix, tangentMatrix)
			transformed[global] = cv
			return cv
		}

		for k := 0; k+2 < mesh.NumIndices; k += 3 {
			base := mesh.IndicesOffset + k
			tri := [3]clipVertex{
				vertexAt(indices[base]),
				vertexAt(indices[base+1]),
				vertexAt(indices[base+2]),
			}
			for _, t := range clipNear(tri) {
				if p.rasterize(gb, t, mat, stats) {
					stats.TrianglesRasterized++
				}
			}
		}
	}
}

// meshMaterial returns the material bound to a mesh of obj, or nil when the mesh is not drawn.
func meshMaterial(obj scene.ObjectSnapshot, meshIndex int) material.Material {
	if meshIndex < len(obj.Materials) {
		return obj.Materials[meshIndex]
	}
	return nil
}

func vertexStage(v model.GPUVertex, modelView, proj mgl32.Mat4, normalMatrix, tangentMatrix mgl32.Mat3) clipVertex {
	viewPos := modelView.Mul4x1(mgl32.Vec4{v.Position[0], v.Position[1], v.Position[2], 1})
	return clipVertex{
		clip:      proj.Mul4x1(viewPos),
		normal:    normalMatrix.Mul3x1(mgl32.Vec3(v.Normal)),
		tangent:   tangentMatrix.Mul3x1(mgl32.Vec3(v.Tangent)),
		bitangent: tangentMatrix.Mul3x1(mgl32.Vec3(v.Bitangent)),
		uv:        mgl32.Vec2(v.TexCoord),
	}
}

// clipNear clips a triangle against the z >= 0 clip plane and returns it as a fan of triangles.
func clipNear(tri [3]clipVertex) [][3]clipVertex {
	inside := 0
	for _, v := range tri {
		if v.clip[2] >= 0 {
			inside++
		}
	}
	switch inside {
	case 3:
		return [][3]clipVertex{tri}
	case 0:
		return nil
	}

	poly := make([]clipVertex, 0, 4)
	for i := range tri {
		a, b := tri[i], tri[(i+1)%3]
		aIn, bIn := a.clip[2] >= 0, b.clip[2] >= 0
		if aIn {
			poly = append(poly, a)
		}
		if aIn != bIn {
			t := a.clip[2] / (a.clip[2] - b.clip[2])
			poly = append(poly, lerpVertex(a, b, t))
		}
	}

	out := make([][3]clipVertex, 0, len(poly)-2)
	for i := 1; i+1 < len(poly); i++ {
		out = append(out, [3]clipVertex{poly[0], poly[i], poly[i+1]})
	}
	return out
}

func lerpVertex(a, b clipVertex, t float32) clipVertex {
	return clipVertex{
		clip:      a.clip.Add(b.clip.Sub(a.clip).Mul(t)),
		normal:    a.normal.Add(b.normal.Sub(a.normal).Mul(t)),
		tangent:   a.tangent.Add(b.tangent.Sub(a.tangent).Mul(t)),
		bitangent: a.bitangent.Add(b.bitangent.Sub(a.bitangent).Mul(t)),
		uv:        a.uv.Add(b.uv.Sub(a.uv).Mul(t)),
	}
}

// toScreen maps clip space to pixel space. Screen y grows downward, so the top of NDC is row 0.
func toScreen(v *clipVertex, width, height int) (screenVertex, bool) {
	w := v.clip[3]
	if w <= 0 {
		return screenVertex{}, false
	}
	invW := 1 / w
	return screenVertex{
		x:    (v.clip[0]*invW + 1) * 0.5 * float32(width),
		y:    (1 - v.clip[1]*invW) * 0.5 * float32(height),
		z:    v.clip[2] * invW,
		invW: invW,
		v:    v,
	}, true
}

func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// rasterize draws one clipped triangle. It returns false when the triangle is back facing,
// degenerate or entirely off screen.
func (p *GeometryPass) rasterize(gb *gbuffer.GBuffer, tri [3]clipVertex, mat material.Material, stats *GeometryStats) bool {
	width, height := gb.Width(), gb.Height()
	var s [3]screenVertex
	for i := range tri {
		sv, ok := toScreen(&tri[i], width, height)
		if !ok {
			return false
		}
		s[i] = sv
	}

	// Counter-clockwise in NDC becomes clockwise once y points down.
	area := edge(s[0].x, s[0].y, s[1].x, s[1].y, s[2].x, s[2].y)
	if area >= 0 {
		return false
	}

	minX := max(int(math.Floor(float64(min(s[0].x, s[1].x, s[2].x)))), 0)
	maxX := min(int(math.Ceil(float64(max(s[0].x, s[1].x, s[2].x)))), width-1)
	minY := max(int(math.Floor(float64(min(s[0].y, s[1].y, s[2].y)))), 0)
	maxY := min(int(math.Ceil(float64(max(s[0].y, s[1].y, s[2].y)))), height-1)
	if minX > maxX || minY > maxY {
		return false
	}

	invArea := 1 / area
	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			l0 := edge(s[1].x, s[1].y, s[2].x, s[2].y, px, py) * invArea
			l1 := edge(s[2].x, s[2].y, s[0].x, s[0].y, px, py) * invArea
			l2 := edge(s[0].x, s[0].y, s[1].x, s[1].y, px, py) * invArea
			if l0 < 0 || l1 < 0 || l2 < 0 {
				continue
			}

			depth := l0*s[0].z + l1*s[1].z + l2*s[2].z
			if depth < 0 || depth >= gb.DepthAt(x, y) {
				continue
			}

			frag, keep := p.shadeFragment(s, l0, l1, l2, depth, mat)
			if !keep {
				stats.FragmentsDiscarded++
				continue
			}
			gb.Write(x, y, frag)
		}
	}
	return true
}

// shadeFragment runs the fragment stage: perspective-correct interpolation, material lookup,
// alpha cutout and normal mapping.
func (p *GeometryPass) shadeFragment(s [3]screenVertex, l0, l1, l2, depth float32, mat material.Material) (gbuffer.Fragment, bool) {
	w0, w1, w2 := l0*s[0].invW, l1*s[1].invW, l2*s[2].invW
	norm := 1 / (w0 + w1 + w2)
	w0, w1, w2 = w0*norm, w1*norm, w2*norm

	a, b, c := s[0].v, s[1].v, s[2].v
	uv := a.uv.Mul(w0).Add(b.uv.Mul(w1)).Add(c.uv.Mul(w2))

	albedo := mat.Albedo(uv)
	if albedo[3] < AlphaCutoff {
		return gbuffer.Fragment{}, false
	}

	n := a.normal.Mul(w0).Add(b.normal.Mul(w1)).Add(c.normal.Mul(w2))
	if l := n.Len(); l > 0 {
		n = n.Mul(1 / l)
	}
	if nt := mat.NormalTexture(); nt != nil {
		t := a.tangent.Mul(w0).Add(b.tangent.Mul(w1)).Add(c.tangent.Mul(w2))
		bt := a.bitangent.Mul(w0).Add(b.bitangent.Mul(w1)).Add(c.bitangent.Mul(w2))
		if t.Len() > 0 && bt.Len() > 0 {
			n = shading.PerturbNormal(nt.Sample(uv).Vec3(), t.Normalize(), bt.Normalize(), n)
		}
	}

	roughness, metallic := mat.RoughnessMetallic(uv)
	return gbuffer.Fragment{
		Albedo:           albedo,
		Normal:           n,
		AmbientOcclusion: p.ambientOcclusion,
		Roughness:        roughness,
		Metallic:         metallic,
		Depth:            depth,
	}, true
}
