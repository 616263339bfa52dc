package renderer

import (
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-deferred/engine/camera"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gbuffer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/light"
	"github.com/Carmen-Shannon/oxy-deferred/engine/model"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-deferred/engine/scene"
	"github.com/Carmen-Shannon/oxy-deferred/engine/texture"
	"github.com/cockroachdb/errors"
	"github.com/cogentcore/webgpu/wgpu"
)

// gpuMesh holds the vertex and index buffers of one uploaded model.
type gpuMesh struct {
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   int
}

// gpuTexture holds an uploaded material texture and its default view.
type gpuTexture struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

// wgpuRendererBackendImpl mirrors each frame to a WebGPU device: one camera and one light
// uniform buffer per frame slot, and an RGBA32Float texture holding the last resolved frame.
type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance   *wgpu.Instance
	adapter    *wgpu.Adapter
	ownsDevice bool

	cameraBuffers   []*wgpu.Buffer
	lightBuffers    []*wgpu.Buffer
	materialBuffers [][]*wgpu.Buffer

	vertexLayout wgpu.VertexBufferLayout
	meshes       map[model.Model]*gpuMesh
	textures     map[*texture.Texture]*gpuTexture

	output       *wgpu.Texture
	outputView   *wgpu.TextureView
	outputWidth  int
	outputHeight int
}

// WGPURendererBackend is a RendererBackend backed by WebGPU resources.
type WGPURendererBackend interface {
	RendererBackend

	// Device returns the WebGPU device the backend uploads to.
	Device() *wgpu.Device

	// Queue returns the device queue.
	Queue() *wgpu.Queue

	// CameraBuffer returns the camera uniform buffer of a frame slot.
	CameraBuffer(slot int) *wgpu.Buffer

	// LightBuffer returns the light uniform buffer of a frame slot.
	LightBuffer(slot int) *wgpu.Buffer

	// VertexBufferLayout returns the layout of every mesh vertex buffer the backend uploads.
	VertexBufferLayout() wgpu.VertexBufferLayout

	// MeshBuffers returns the vertex and index buffers uploaded for m and its index count, or
	// nils if m was never drawn.
	MeshBuffers(m model.Model) (vertices, indices *wgpu.Buffer, indexCount int)

	// MaterialBuffers returns the material uniform buffers last written to slot, in draw order.
	MaterialBuffers(slot int) []*wgpu.Buffer

	// TextureView returns the view of an uploaded material texture, or nil if t was never bound.
	TextureView(t *texture.Texture) *wgpu.TextureView

	// OutputView returns a view of the last presented frame, or nil before the first Present.
	OutputView() *wgpu.TextureView
}

var _ WGPURendererBackend = &wgpuRendererBackendImpl{}

// NewWGPURendererBackend creates a headless WebGPU device and a backend on top of it.
//
// Parameters:
//   - framesInFlight: number of uniform slots (at least 1)
//   - forceFallbackAdapter: request the software adapter
//
// Returns:
//   - WGPURendererBackend: the backend, owning its instance, adapter and device
//   - error: if no adapter or device could be acquired
func NewWGPURendererBackend(framesInFlight int, forceFallbackAdapter bool) (WGPURendererBackend, error) {
	runtime.LockOSThread()
	instance := wgpu.CreateInstance(nil)

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
	})
	if err != nil {
		instance.Release()
		return nil, errors.Wrap(err, "renderer: request adapter")
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Deferred Device",
	})
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, errors.Wrap(err, "renderer: request device")
	}

	b, err := newWGPURendererBackend(device, device.GetQueue(), framesInFlight)
	if err != nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, err
	}
	b.instance = instance
	b.adapter = adapter
	b.ownsDevice = true
	return b, nil
}

// NewWGPURendererBackendFromDevice creates a backend on a device the caller already owns.
// Release frees the buffers and texture but leaves the device alive.
//
// Parameters:
//   - device: the WebGPU device
//   - queue: the device queue
//   - framesInFlight: number of uniform slots (at least 1)
//
// Returns:
//   - WGPURendererBackend: the backend
//   - error: if a uniform buffer could not be created
func NewWGPURendererBackendFromDevice(device *wgpu.Device, queue *wgpu.Queue, framesInFlight int) (WGPURendererBackend, error) {
	if device == nil || queue == nil {
		return nil, errors.New("renderer: wgpu backend requires a device and a queue")
	}
	return newWGPURendererBackend(device, queue, framesInFlight)
}

func newWGPURendererBackend(device *wgpu.Device, queue *wgpu.Queue, framesInFlight int) (*wgpuRendererBackendImpl, error) {
	n := max(framesInFlight, 1)
	b := &wgpuRendererBackendImpl{
		mu:              &sync.Mutex{},
		device:          device,
		queue:           queue,
		cameraBuffers:   make([]*wgpu.Buffer, 0, n),
		lightBuffers:    make([]*wgpu.Buffer, 0, n),
		materialBuffers: make([][]*wgpu.Buffer, n),
		vertexLayout:    model.VertexBufferLayout(),
		meshes:          make(map[model.Model]*gpuMesh),
		textures:        make(map[*texture.Texture]*gpuTexture),
	}
	for slot := 0; slot < n; slot++ {
		cam, err := b.createUniformBuffer("Camera Uniform", camera.GPUCameraUniformSize)
		if err != nil {
			b.releaseBuffers()
			return nil, errors.Wrapf(err, "renderer: camera uniform for slot %d", slot)
		}
		b.cameraBuffers = append(b.cameraBuffers, cam)

		lights, err := b.createUniformBuffer("Light Uniform", light.GPULightUniformSize)
		if err != nil {
			b.releaseBuffers()
			return nil, errors.Wrapf(err, "renderer: light uniform for slot %d", slot)
		}
		b.lightBuffers = append(b.lightBuffers, lights)
	}
	return b, nil
}

func (b *wgpuRendererBackendImpl) createUniformBuffer(label string, size int) (*wgpu.Buffer, error) {
	return b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             uint64(size),
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
}

func (b *wgpuRendererBackendImpl) Type() RendererBackendType {
	return BackendTypeWGPU
}

func (b *wgpuRendererBackendImpl) FramesInFlight() int {
	return len(b.cameraBuffers)
}

func (b *wgpuRendererBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuRendererBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

func (b *wgpuRendererBackendImpl) CameraBuffer(slot int) *wgpu.Buffer {
	if slot < 0 || slot >= len(b.cameraBuffers) {
		return nil
	}
	return b.cameraBuffers[slot]
}

func (b *wgpuRendererBackendImpl) LightBuffer(slot int) *wgpu.Buffer {
	if slot < 0 || slot >= len(b.lightBuffers) {
		return nil
	}
	return b.lightBuffers[slot]
}

func (b *wgpuRendererBackendImpl) VertexBufferLayout() wgpu.VertexBufferLayout {
	return b.vertexLayout
}

func (b *wgpuRendererBackendImpl) MeshBuffers(m model.Model) (*wgpu.Buffer, *wgpu.Buffer, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	mesh, ok := b.meshes[m]
	if !ok {
		return nil, nil, 0
	}
	return mesh.vertexBuffer, mesh.indexBuffer, mesh.indexCount
}

func (b *wgpuRendererBackendImpl) MaterialBuffers(slot int) []*wgpu.Buffer {
	b.mu.Lock()
	defer b.mu.Unlock()
	if slot < 0 || slot >= len(b.materialBuffers) {
		return nil
	}
	return append([]*wgpu.Buffer(nil), b.materialBuffers[slot]...)
}

func (b *wgpuRendererBackendImpl) TextureView(t *texture.Texture) *wgpu.TextureView {
	b.mu.Lock()
	defer b.mu.Unlock()
	if tex, ok := b.textures[t]; ok {
		return tex.view
	}
	return nil
}

func (b *wgpuRendererBackendImpl) OutputView() *wgpu.TextureView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.outputView
}

func (b *wgpuRendererBackendImpl) WriteFrameUniforms(slot int, cameraData, lightData []byte) error {
	if slot < 0 || slot >= len(b.cameraBuffers) {
		return errors.Newf("renderer: frame slot %d out of range [0, %d)", slot, len(b.cameraBuffers))
	}
	if len(cameraData) > camera.GPUCameraUniformSize || len(lightData) > light.GPULightUniformSize {
		return errors.Wrapf(ErrSizeMismatch, "uniform data of %d and %d bytes", len(cameraData), len(lightData))
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queue.WriteBuffer(b.cameraBuffers[slot], 0, cameraData)
	b.queue.WriteBuffer(b.lightBuffers[slot], 0, lightData)
	return nil
}

func (b *wgpuRendererBackendImpl) UploadObjects(slot int, objects []scene.ObjectSnapshot) error {
	if slot < 0 || slot >= len(b.materialBuffers) {
		return errors.Newf("renderer: frame slot %d out of range [0, %d)", slot, len(b.materialBuffers))
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, obj := range objects {
		if err := b.uploadMeshLocked(obj.Model); err != nil {
			return errors.Wrapf(err, "renderer: object %d", obj.ID)
		}
	}

	mats := drawnMaterials(objects)
	buffers := b.materialBuffers[slot]
	for len(buffers) < len(mats) {
		buf, err := b.createUniformBuffer("Material Uniform", material.GPUMaterialSize)
		if err != nil {
			b.materialBuffers[slot] = buffers
			return errors.Wrapf(err, "renderer: material uniform %d for slot %d", len(buffers), slot)
		}
		buffers = append(buffers, buf)
	}
	b.materialBuffers[slot] = buffers

	for i, mat := range mats {
		g := mat.GPU()
		b.queue.WriteBuffer(buffers[i], 0, g.Marshal())
		for _, tex := range mat.BoundTextures() {
			if err := b.uploadTextureLocked(tex); err != nil {
				return errors.Wrapf(err, "renderer: material %q", mat.Name())
			}
		}
	}
	return nil
}

// uploadMeshLocked creates and fills the vertex and index buffers of m once.
func (b *wgpuRendererBackendImpl) uploadMeshLocked(m model.Model) error {
	if _, ok := b.meshes[m]; ok {
		return nil
	}
	vertexData, indexData := m.VertexData(), m.IndexData()
	stride := int(b.vertexLayout.ArrayStride)
	if len(vertexData) == 0 || len(vertexData)%stride != 0 {
		return errors.Wrapf(ErrSizeMismatch, "vertex data of %d bytes for stride %d", len(vertexData), stride)
	}

	mesh := &gpuMesh{indexCount: m.IndexCount()}
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            m.Name() + " Vertex Buffer",
		Size:             uint64(len(vertexData)),
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return err
	}
	b.queue.WriteBuffer(buf, 0, vertexData)
	mesh.vertexBuffer = buf

	if len(indexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            m.Name() + " Index Buffer",
			Size:             uint64(len(indexData)),
			Usage:            wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			mesh.vertexBuffer.Release()
			return err
		}
		b.queue.WriteBuffer(buf, 0, indexData)
		mesh.indexBuffer = buf
	}

	b.meshes[m] = mesh
	return nil
}

// uploadTextureLocked creates an RGBA32Float texture for t once and copies its texels.
func (b *wgpuRendererBackendImpl) uploadTextureLocked(t *texture.Texture) error {
	if _, ok := b.textures[t]; ok {
		return nil
	}
	size := wgpu.Extent3D{
		Width:              uint32(t.Width()),
		Height:             uint32(t.Height()),
		DepthOrArrayLayers: 1,
	}
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         t.Name() + " Texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA32Float,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return errors.Wrap(err, "create material texture")
	}
	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		t.Bytes(),
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(t.Width() * 16),
			RowsPerImage: uint32(t.Height()),
		},
		&size,
	)
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return errors.Wrap(err, "create material texture view")
	}
	b.textures[t] = &gpuTexture{texture: tex, view: view}
	return nil
}

func (b *wgpuRendererBackendImpl) Present(slot int, out *gbuffer.Radiance) error {
	if slot < 0 || slot >= len(b.cameraBuffers) {
		return errors.Newf("renderer: frame slot %d out of range [0, %d)", slot, len(b.cameraBuffers))
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureOutputLocked(out.Width(), out.Height()); err != nil {
		return err
	}
	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  b.output,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		out.Bytes(),
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(out.Width() * 16),
			RowsPerImage: uint32(out.Height()),
		},
		&wgpu.Extent3D{
			Width:              uint32(out.Width()),
			Height:             uint32(out.Height()),
			DepthOrArrayLayers: 1,
		},
	)
	return nil
}

// ensureOutputLocked recreates the output texture when the frame size changes.
func (b *wgpuRendererBackendImpl) ensureOutputLocked(width, height int) error {
	if b.output != nil && b.outputWidth == width && b.outputHeight == height {
		return nil
	}
	b.releaseOutputLocked()

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Radiance Output",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA32Float,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst | wgpu.TextureUsageCopySrc,
	})
	if err != nil {
		return errors.Wrap(err, "renderer: create radiance texture")
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return errors.Wrap(err, "renderer: create radiance texture view")
	}
	b.output, b.outputView = tex, view
	b.outputWidth, b.outputHeight = width, height
	return nil
}

func (b *wgpuRendererBackendImpl) releaseOutputLocked() {
	if b.outputView != nil {
		b.outputView.Release()
		b.outputView = nil
	}
	if b.output != nil {
		b.output.Release()
		b.output = nil
	}
}

func (b *wgpuRendererBackendImpl) releaseBuffers() {
	for _, buf := range b.cameraBuffers {
		buf.Release()
	}
	for _, buf := range b.lightBuffers {
		buf.Release()
	}
	for _, slot := range b.materialBuffers {
		for _, buf := range slot {
			buf.Release()
		}
	}
	for m, mesh := range b.meshes {
		mesh.vertexBuffer.Release()
		if mesh.indexBuffer != nil {
			mesh.indexBuffer.Release()
		}
		delete(b.meshes, m)
	}
	for t, tex := range b.textures {
		tex.view.Release()
		tex.texture.Release()
		delete(b.textures, t)
	}
	b.cameraBuffers = b.cameraBuffers[:0]
	b.lightBuffers = b.lightBuffers[:0]
	clear(b.materialBuffers)
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releaseOutputLocked()
	b.releaseBuffers()
	if !b.ownsDevice {
		return
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
