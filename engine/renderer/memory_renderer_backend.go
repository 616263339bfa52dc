package renderer

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gbuffer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/model"
	"github.com/Carmen-Shannon/oxy-deferred/engine/scene"
	"github.com/Carmen-Shannon/oxy-deferred/engine/texture"
	"github.com/cockroachdb/errors"
)

// memoryMesh is the serialized geometry of one uploaded model.
type memoryMesh struct {
	vertices []byte
	indices  []byte
}

type memoryRendererBackendImpl struct {
	mu        *sync.Mutex
	camera    [][]byte
	lights    [][]byte
	materials [][][]byte
	meshes    map[model.Model]memoryMesh
	textures  map[*texture.Texture][]byte
	frame     *gbuffer.Radiance
	lastSlot  int
	presents  int
}

// MemoryRendererBackend is a RendererBackend that keeps everything in memory. It is the default
// backend of a headless Renderer and what tests inspect.
type MemoryRendererBackend interface {
	RendererBackend

	// CameraUniform returns a copy of the camera uniform last written to slot.
	CameraUniform(slot int) []byte

	// LightUniform returns a copy of the light uniform last written to slot.
	LightUniform(slot int) []byte

	// MeshData returns the vertex and index bytes uploaded for m, and whether m was uploaded.
	MeshData(m model.Model) (vertices, indices []byte, ok bool)

	// MeshCount returns how many distinct models were uploaded.
	MeshCount() int

	// MaterialUniforms returns copies of the material uniforms last written to slot, in draw order.
	MaterialUniforms(slot int) [][]byte

	// TextureData returns the texel bytes uploaded for t, or nil if t was never bound.
	TextureData(t *texture.Texture) []byte

	// TextureCount returns how many distinct textures were uploaded.
	TextureCount() int

	// Frame returns a copy of the last presented radiance and the slot it was produced in, or nil.
	Frame() (*gbuffer.Radiance, int)

	// Presents returns how many frames were presented.
	Presents() int
}

var _ MemoryRendererBackend = &memoryRendererBackendImpl{}

// NewMemoryRendererBackend creates an in-memory backend with one uniform slot per frame in flight.
//
// Parameters:
//   - framesInFlight: number of slots (at least 1)
//
// Returns:
//   - MemoryRendererBackend: the backend
func NewMemoryRendererBackend(framesInFlight int) MemoryRendererBackend {
	n := max(framesInFlight, 1)
	return &memoryRendererBackendImpl{
		mu:        &sync.Mutex{},
		camera:    make([][]byte, n),
		lights:    make([][]byte, n),
		materials: make([][][]byte, n),
		meshes:    make(map[model.Model]memoryMesh),
		textures:  make(map[*texture.Texture][]byte),
		lastSlot:  -1,
	}
}

func (b *memoryRendererBackendImpl) Type() RendererBackendType {
	return BackendTypeMemory
}

func (b *memoryRendererBackendImpl) FramesInFlight() int {
	return len(b.camera)
}

func (b *memoryRendererBackendImpl) WriteFrameUniforms(slot int, cameraData, lightData []byte) error {
	if slot < 0 || slot >= len(b.camera) {
		return errors.Newf("renderer: frame slot %d out of range [0, %d)", slot, len(b.camera))
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.camera[slot] = append(b.camera[slot][:0], cameraData...)
	b.lights[slot] = append(b.lights[slot][:0], lightData...)
	return nil
}

func (b *memoryRendererBackendImpl) UploadObjects(slot int, objects []scene.ObjectSnapshot) error {
	if slot < 0 || slot >= len(b.camera) {
		return errors.Newf("renderer: frame slot %d out of range [0, %d)", slot, len(b.camera))
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, obj := range objects {
		if _, ok := b.meshes[obj.Model]; ok {
			continue
		}
		b.meshes[obj.Model] = memoryMesh{vertices: obj.Model.VertexData(), indices: obj.Model.IndexData()}
	}

	uniforms := b.materials[slot][:0]
	for _, mat := range drawnMaterials(objects) {
		g := mat.GPU()
		uniforms = append(uniforms, g.Marshal())
		for _, tex := range mat.BoundTextures() {
			if _, ok := b.textures[tex]; !ok {
				b.textures[tex] = tex.Bytes()
			}
		}
	}
	b.materials[slot] = uniforms
	return nil
}

func (b *memoryRendererBackendImpl) Present(slot int, out *gbuffer.Radiance) error {
	if slot < 0 || slot >= len(b.camera) {
		return errors.Newf("renderer: frame slot %d out of range [0, %d)", slot, len(b.camera))
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frame == nil || b.frame.Width() != out.Width() || b.frame.Height() != out.Height() {
		frame, err := gbuffer.NewRadiance(out.Width(), out.Height())
		if err != nil {
			return err
		}
		b.frame = frame
	}
	if err := b.frame.CopyFrom(out); err != nil {
		return err
	}
	b.lastSlot = slot
	b.presents++
	return nil
}

func (b *memoryRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.camera)
	clear(b.lights)
	clear(b.materials)
	clear(b.meshes)
	clear(b.textures)
	b.frame = nil
}

func (b *memoryRendererBackendImpl) CameraUniform(slot int) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if slot < 0 || slot >= len(b.camera) {
		return nil
	}
	return append([]byte(nil), b.camera[slot]...)
}

func (b *memoryRendererBackendImpl) LightUniform(slot int) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if slot < 0 || slot >= len(b.lights) {
		return nil
	}
	return append([]byte(nil), b.lights[slot]...)
}

func (b *memoryRendererBackendImpl) MeshData(m model.Model) ([]byte, []byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	mesh, ok := b.meshes[m]
	return mesh.vertices, mesh.indices, ok
}

func (b *memoryRendererBackendImpl) MeshCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.meshes)
}

func (b *memoryRendererBackendImpl) MaterialUniforms(slot int) [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if slot < 0 || slot >= len(b.materials) {
		return nil
	}
	out := make([][]byte, len(b.materials[slot]))
	for i, u := range b.materials[slot] {
		out[i] = append([]byte(nil), u...)
	}
	return out
}

func (b *memoryRendererBackendImpl) TextureData(t *texture.Texture) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.textures[t]
}

func (b *memoryRendererBackendImpl) TextureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.textures)
}

func (b *memoryRendererBackendImpl) Frame() (*gbuffer.Radiance, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frame, b.lastSlot
}

func (b *memoryRendererBackendImpl) Presents() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.presents
}
