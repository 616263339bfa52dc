package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/model"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// defaultMaterial is used for mesh material indices that have no material assigned.
var defaultMaterial = material.NewMaterial(material.WithName("default"))

type gameObject struct {
	mu        *sync.RWMutex
	id        uint64
	enabled   atomic.Bool
	mdl       model.Model
	materials []material.Material

	position      mgl32.Vec3
	rotation      mgl32.Vec3
	scale         mgl32.Vec3
	rotationSpeed mgl32.Vec3
}

// GameObject defines the interface for a renderable scene entity: a Model, the materials its
// meshes index into, and a transform.
type GameObject interface {
	// ID returns the object's identifier, assigned by the Scene on insertion.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Enabled returns whether this object is enabled for rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Model returns the Model associated with this object, or nil if not set.
	//
	// Returns:
	//   - model.Model: the associated model or nil
	Model() model.Model

	// Material returns the material for a mesh's MaterialIndex. Indices without an assigned
	// material resolve to a shared default (white, rough, dielectric).
	//
	// Parameters:
	//   - index: the mesh material index
	//
	// Returns:
	//   - material.Material: the material to shade the mesh with
	Material(index int) material.Material

	// Materials returns the assigned materials in index order.
	Materials() []material.Material

	// Position returns the world-space translation.
	Position() mgl32.Vec3

	// Rotation returns the Euler rotation in radians.
	Rotation() mgl32.Vec3

	// Scale returns the per-axis scale.
	Scale() mgl32.Vec3

	// RotationSpeed returns the Euler rotation applied per second by Advance.
	RotationSpeed() mgl32.Vec3

	// Transform returns the model-to-world matrix built from position, rotation and scale.
	//
	// Returns:
	//   - mgl32.Mat4: the model matrix
	Transform() mgl32.Mat4

	// WorldBounds returns the axis-aligned bounds of the model under the current transform.
	//
	// Returns:
	//   - mgl32.Vec3: minimum corner
	//   - mgl32.Vec3: maximum corner
	//   - bool: false if the object has no model
	WorldBounds() (mgl32.Vec3, mgl32.Vec3, bool)

	// Advance applies RotationSpeed for the elapsed time.
	//
	// Parameters:
	//   - seconds: elapsed time in seconds
	Advance(seconds float32)

	// SetID sets the object's identifier.
	SetID(id uint64)

	// SetEnabled sets whether the object is enabled for rendering.
	SetEnabled(enabled bool)

	// SetModel assigns a Model to this object.
	SetModel(m model.Model)

	// SetMaterials replaces the material list.
	SetMaterials(mats ...material.Material)

	// SetPosition sets the world-space translation.
	SetPosition(x, y, z float32)

	// SetRotation sets the Euler rotation in radians.
	SetRotation(rx, ry, rz float32)

	// SetScale sets the per-axis scale.
	SetScale(sx, sy, sz float32)

	// SetRotationSpeed sets the Euler rotation applied per second by Advance.
	SetRotationSpeed(rx, ry, rz float32)
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new enabled GameObject at the origin with unit scale.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the new object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	g := &gameObject{
		mu:    &sync.RWMutex{},
		scale: mgl32.Vec3{1, 1, 1},
	}
	g.enabled.Store(true)
	for _, opt := range options {
		opt(g)
	}
	return g
}

func (g *gameObject) ID() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.id
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Model() model.Model {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.mdl
}

func (g *gameObject) Material(index int) material.Material {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if index < 0 || index >= len(g.materials) || g.materials[index] == nil {
		return defaultMaterial
	}
	return g.materials[index]
}

func (g *gameObject) Materials() []material.Material {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]material.Material(nil), g.materials...)
}

func (g *gameObject) Position() mgl32.Vec3 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.position
}

func (g *gameObject) Rotation() mgl32.Vec3 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.rotation
}

func (g *gameObject) Scale() mgl32.Vec3 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.scale
}

func (g *gameObject) RotationSpeed() mgl32.Vec3 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.rotationSpeed
}

func (g *gameObject) Transform() mgl32.Mat4 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return common.BuildModelMatrix(g.position, g.rotation, g.scale)
}

func (g *gameObject) WorldBounds() (mgl32.Vec3, mgl32.Vec3, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.mdl == nil {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	lo, hi := g.mdl.Bounds()
	lo, hi = common.TransformAABB(common.BuildModelMatrix(g.position, g.rotation, g.scale), lo, hi)
	return lo, hi, true
}

func (g *gameObject) Advance(seconds float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotation = g.rotation.Add(g.rotationSpeed.Mul(seconds))
}

func (g *gameObject) SetID(id uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.id = id
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetModel(m model.Model) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mdl = m
}

func (g *gameObject) SetMaterials(mats ...material.Material) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.materials = mats
}

func (g *gameObject) SetPosition(x, y, z float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.position = mgl32.Vec3{x, y, z}
}

func (g *gameObject) SetRotation(rx, ry, rz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotation = mgl32.Vec3{rx, ry, rz}
}

func (g *gameObject) SetScale(sx, sy, sz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scale = mgl32.Vec3{sx, sy, sz}
}

func (g *gameObject) SetRotationSpeed(rx, ry, rz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotationSpeed = mgl32.Vec3{rx, ry, rz}
}
