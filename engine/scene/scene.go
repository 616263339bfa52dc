package scene

import (
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/camera"
	"github.com/Carmen-Shannon/oxy-deferred/engine/game_object"
	"github.com/Carmen-Shannon/oxy-deferred/engine/light"
	"github.com/Carmen-Shannon/oxy-deferred/engine/model"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// ObjectSnapshot is the per-frame copy of one renderable object.
type ObjectSnapshot struct {
	ID        uint64
	Model     model.Model
	Materials []material.Material // resolved per mesh, parallel to Model.Meshes()
	Transform mgl32.Mat4
	BoundsMin mgl32.Vec3
	BoundsMax mgl32.Vec3
}

// Snapshot is everything a frame needs from the scene, copied so the scene may be mutated
// while the frame renders.
type Snapshot struct {
	View              mgl32.Mat4
	Projection        mgl32.Mat4
	InverseProjection mgl32.Mat4
	ViewProjection    mgl32.Mat4
	Frustum           common.Frustum
	CameraPosition    mgl32.Vec3
	Lights            light.LightSnapshot
	Objects           []ObjectSnapshot
}

type scene struct {
	mu       *sync.RWMutex
	name     string
	cam      camera.Camera
	lights   light.Registry
	registry map[uint64]game_object.GameObject
	nextID   uint64
}

// Scene manages a camera, a light registry and a registry of GameObjects.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// SetCamera replaces the scene's camera.
	//
	// Parameters:
	//   - cam: the new camera (must not be nil)
	SetCamera(cam camera.Camera)

	// Lights returns the scene's light registry.
	Lights() light.Registry

	// Count returns the number of GameObjects in the scene.
	Count() int

	// Add adds a GameObject to the scene. Objects without an ID are assigned the next one.
	//
	// Parameters:
	//   - obj: the GameObject to add
	//
	// Returns:
	//   - uint64: the object's ID
	Add(obj game_object.GameObject) uint64

	// Get retrieves a GameObject by its ID, or nil if not found.
	Get(id uint64) game_object.GameObject

	// Remove removes a GameObject by ID.
	//
	// Returns:
	//   - bool: true if an object was removed
	Remove(id uint64) bool

	// Objects returns every GameObject ordered by ID.
	Objects() []game_object.GameObject

	// Clear removes all objects from the scene. Lights are kept.
	Clear()

	// Advance steps per-object animation by the elapsed time.
	//
	// Parameters:
	//   - seconds: elapsed time in seconds
	Advance(seconds float32)

	// Snapshot updates the camera from its controller and copies the frame state: matrices,
	// frustum, enabled lights and enabled objects that carry a Model.
	//
	// Returns:
	//   - Snapshot: the frame state
	//   - error: if the camera rejects its current settings
	Snapshot() (Snapshot, error)
}

var _ Scene = &scene{}

// NewScene creates a new Scene with the given camera. NewScene panics if cam is nil.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	s := &scene{
		mu:       &sync.RWMutex{},
		name:     name,
		cam:      cam,
		registry: make(map[uint64]game_object.GameObject),
		nextID:   1,
	}
	for _, option := range options {
		option(s)
	}
	if s.lights == nil {
		s.lights = light.NewRegistry(mgl32.Vec3{})
	}
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	if cam == nil {
		panic("scene: SetCamera requires a non-nil Camera")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
}

func (s *scene) Lights() light.Registry {
	return s.lights
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) Add(obj game_object.GameObject) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(obj)
}

// addLocked registers obj. Caller must hold the write lock.
func (s *scene) addLocked(obj game_object.GameObject) uint64 {
	id := obj.ID()
	if id == 0 {
		id = s.nextID
		obj.SetID(id)
	}
	if id >= s.nextID {
		s.nextID = id + 1
	}
	s.registry[id] = obj
	return id
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Remove(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.registry[id]; !ok {
		return false
	}
	delete(s.registry, id)
	return true
}

func (s *scene) Objects() []game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked()
}

func (s *scene) sortedLocked() []game_object.GameObject {
	out := make([]game_object.GameObject, 0, len(s.registry))
	for _, obj := range s.registry {
		out = append(out, obj)
	}
	slices.SortFunc(out, func(a, b game_object.GameObject) int {
		switch {
		case a.ID() < b.ID():
			return -1
		case a.ID() > b.ID():
			return 1
		}
		return 0
	})
	return out
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.registry)
}

func (s *scene) Advance(seconds float32) {
	for _, obj := range s.Objects() {
		obj.Advance(seconds)
	}
}

func (s *scene) Snapshot() (Snapshot, error) {
	s.mu.RLock()
	cam := s.cam
	objects := s.sortedLocked()
	s.mu.RUnlock()

	m, err := cam.UpdateMatrices()
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		View:              m.View,
		Projection:        m.Projection,
		InverseProjection: m.InverseProjection,
		ViewProjection:    m.ViewProjection,
		CameraPosition:    m.Position,
		Lights:            s.lights.Snapshot(),
		Objects:           make([]ObjectSnapshot, 0, len(objects)),
	}
	snap.Frustum = common.ExtractFrustum(snap.ViewProjection)

	for _, obj := range objects {
		mdl := obj.Model()
		if !obj.Enabled() || mdl == nil {
			continue
		}
		lo, hi, _ := obj.WorldBounds()
		meshes := mdl.Meshes()
		mats := make([]material.Material, len(meshes))
		for i, m := range meshes {
			mats[i] = obj.Material(m.MaterialIndex)
		}
		snap.Objects = append(snap.Objects, ObjectSnapshot{
			ID:        obj.ID(),
			Model:     mdl,
			Materials: mats,
			Transform: obj.Transform(),
			BoundsMin: lo,
			BoundsMax: hi,
		})
	}
	return snap, nil
}
