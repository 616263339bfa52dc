package scene

import (
	"github.com/Carmen-Shannon/oxy-deferred/engine/game_object"
	"github.com/Carmen-Shannon/oxy-deferred/engine/light"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithObjects adds initial objects to the scene.
// Objects without IDs will be assigned new IDs.
//
// Parameters:
//   - objects: the objects to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithObjects(objects ...game_object.GameObject) SceneBuilderOption {
	return func(s *scene) {
		for _, obj := range objects {
			s.addLocked(obj)
		}
	}
}

// WithLightRegistry sets the light registry the scene packs each frame. A scene without
// this option starts with an empty registry and black ambient.
//
// Parameters:
//   - r: the registry to use
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLightRegistry(r light.Registry) SceneBuilderOption {
	return func(s *scene) {
		s.lights = r
	}
}
