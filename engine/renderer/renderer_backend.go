package renderer

import (
	"github.com/Carmen-Shannon/oxy-deferred/engine/gbuffer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-deferred/engine/scene"
)

// RendererBackendType identifies the backend implementation a Renderer mirrors its frames to.
type RendererBackendType int

const (
	// BackendTypeMemory keeps per-slot uniform copies and the last presented frame in memory.
	BackendTypeMemory RendererBackendType = iota

	// BackendTypeWGPU uploads uniforms and the resolved frame through WebGPU.
	BackendTypeWGPU
)

// String returns a short name for the backend type.
func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeMemory:
		return "memory"
	case BackendTypeWGPU:
		return "wgpu"
	}
	return "unknown"
}

// RendererBackend receives the per-frame uniform data, the geometry and materials of the drawn
// objects, and the resolved radiance of each frame.
// Slots index the frames-in-flight ring; the Renderer guarantees a slot is never written while
// the frame that last used it is still in flight.
type RendererBackend interface {
	// Type returns the backend implementation type.
	Type() RendererBackendType

	// FramesInFlight returns the number of uniform slots the backend holds.
	FramesInFlight() int

	// WriteFrameUniforms stores the camera and light uniforms for a frame slot.
	//
	// Parameters:
	//   - slot: the frame slot in [0, FramesInFlight())
	//   - cameraData: the marshaled camera uniform
	//   - lightData: the marshaled light uniform
	//
	// Returns:
	//   - error: if the slot is out of range or the upload fails
	WriteFrameUniforms(slot int, cameraData, lightData []byte) error

	// UploadObjects mirrors the objects drawn in a frame slot. Model vertex and index buffers
	// and material textures are uploaded the first time they are seen and reused afterwards.
	// Material uniforms are rewritten per slot, one per drawn mesh, in draw order.
	//
	// Parameters:
	//   - slot: the frame slot in [0, FramesInFlight())
	//   - objects: the visible objects of the frame
	//
	// Returns:
	//   - error: if the slot is out of range or an upload fails
	UploadObjects(slot int, objects []scene.ObjectSnapshot) error

	// Present hands the resolved radiance of a frame to the backend.
	//
	// Parameters:
	//   - slot: the frame slot the radiance was produced in
	//   - out: the lighting pass output
	//
	// Returns:
	//   - error: if the slot is out of range or the upload fails
	Present(slot int, out *gbuffer.Radiance) error

	// Release frees every resource the backend owns.
	Release()
}

// drawnMaterials lists the materials of every drawn mesh of objects, in draw order.
func drawnMaterials(objects []scene.ObjectSnapshot) []material.Material {
	var mats []material.Material
	for _, obj := range objects {
		for i := range obj.Model.Meshes() {
			if mat := meshMaterial(obj, i); mat != nil {
				mats = append(mats, mat)
			}
		}
	}
	return mats
}
