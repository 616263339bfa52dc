package light

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// MaxLights is the number of light slots in the packed uniform. It is a compile-time
// constant so the uniform array and the lighting loop share one fixed bound.
const MaxLights = 10

// ErrTooManyLights is returned when a registry assignment would hold more than MaxLights lights.
var ErrTooManyLights = errors.New("light: too many lights")

// LightID is an opaque handle for a light held by a Registry.
type LightID string

// LightValue is a plain copy of a light's state taken at snapshot time.
type LightValue struct {
	Type   LightType
	Vector mgl32.Vec4 // position (w=1) or direction (w=0) in world space
	Color  mgl32.Vec3
}

// LightSnapshot is the read-only per-frame view of a registry. It owns its slice, so
// the registry may be mutated while a frame built from the snapshot is in flight.
type LightSnapshot struct {
	Ambient mgl32.Vec3
	Lights  []LightValue
}

type registryEntry struct {
	id    LightID
	light Light
}

// registryImpl is the implementation of the Registry interface.
type registryImpl struct {
	mu      *sync.RWMutex
	ambient mgl32.Vec3
	entries []registryEntry
}

// Registry is the ordered, bounded collection of scene lights plus the ambient term.
//
// Capacity is enforced when lights are assigned: an assignment that would exceed MaxLights
// fails with ErrTooManyLights and leaves the registry unchanged. Order of insertion is the
// order lights are packed in.
type Registry interface {
	// Add appends a light to the registry.
	//
	// Parameters:
	//   - l: the light to add (must not be nil)
	//
	// Returns:
	//   - LightID: the handle for later removal
	//   - error: ErrTooManyLights if the registry is full
	Add(l Light) (LightID, error)

	// Remove deletes the light with the given handle, preserving the order of the rest.
	//
	// Parameters:
	//   - id: the handle returned by Add or Replace
	//
	// Returns:
	//   - bool: true if a light was removed
	Remove(id LightID) bool

	// Replace swaps the full light list in one step. Either every light is accepted or the
	// registry is left untouched.
	//
	// Parameters:
	//   - lights: the new ordered light list
	//
	// Returns:
	//   - []LightID: handles in the same order as lights
	//   - error: ErrTooManyLights if len(lights) > MaxLights
	Replace(lights []Light) ([]LightID, error)

	// Get returns the light with the given handle.
	//
	// Parameters:
	//   - id: the light handle
	//
	// Returns:
	//   - Light: the light, or nil
	//   - bool: true if found
	Get(id LightID) (Light, bool)

	// Len returns the number of lights held, enabled or not.
	Len() int

	// Ambient returns the ambient color.
	Ambient() mgl32.Vec3

	// SetAmbient sets the ambient color added to every shaded pixel.
	//
	// Parameters:
	//   - r, g, b: linear ambient color
	SetAmbient(r, g, b float32)

	// Snapshot copies the ambient color and every enabled light, in order.
	//
	// Returns:
	//   - LightSnapshot: a value copy safe to hand to a frame in flight
	Snapshot() LightSnapshot
}

var _ Registry = &registryImpl{}

// NewRegistry creates an empty Registry with the given ambient color.
//
// Parameters:
//   - ambient: the initial ambient color
//
// Returns:
//   - Registry: a new registry
func NewRegistry(ambient mgl32.Vec3) Registry {
	return &registryImpl{
		mu:      &sync.RWMutex{},
		ambient: ambient,
		entries: make([]registryEntry, 0, MaxLights),
	}
}

func (r *registryImpl) Add(l Light) (LightID, error) {
	if l == nil {
		return "", errors.New("light: cannot add a nil light")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) >= MaxLights {
		return "", errors.Wrapf(ErrTooManyLights, "registry already holds %d lights", len(r.entries))
	}
	id := LightID(uuid.NewString())
	r.entries = append(r.entries, registryEntry{id: id, light: l})
	return id, nil
}

func (r *registryImpl) Remove(id LightID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (r *registryImpl) Replace(lights []Light) ([]LightID, error) {
	if len(lights) > MaxLights {
		return nil, errors.Wrapf(ErrTooManyLights, "%d lights supplied, limit is %d", len(lights), MaxLights)
	}
	entries := make([]registryEntry, 0, MaxLights)
	ids := make([]LightID, len(lights))
	for i, l := range lights {
		if l == nil {
			return nil, errors.Newf("light: light %d is nil", i)
		}
		ids[i] = LightID(uuid.NewString())
		entries = append(entries, registryEntry{id: ids[i], light: l})
	}

	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()
	return ids, nil
}

func (r *registryImpl) Get(id LightID) (Light, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.id == id {
			return e.light, true
		}
	}
	return nil, false
}

func (r *registryImpl) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *registryImpl) Ambient() mgl32.Vec3 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ambient
}

func (r *registryImpl) SetAmbient(red, green, blue float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ambient = mgl32.Vec3{red, green, blue}
}

func (r *registryImpl) Snapshot() LightSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap := LightSnapshot{
		Ambient: r.ambient,
		Lights:  make([]LightValue, 0, len(r.entries)),
	}
	for _, e := range r.entries {
		if !e.light.Enabled() {
			continue
		}
		snap.Lights = append(snap.Lights, LightValue{
			Type:   e.light.Type(),
			Vector: e.light.Vector(),
			Color:  e.light.Color(),
		})
	}
	return snap
}
