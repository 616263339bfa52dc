package game_object

import (
	"github.com/Carmen-Shannon/oxy-deferred/engine/model"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject via NewGameObject.
type GameObjectBuilderOption func(*gameObject)

// WithEnabled is an option builder that sets whether the GameObject is rendered.
//
// Parameters:
//   - enabled: true to render the object
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the enabled option
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.enabled.Store(enabled)
	}
}

// WithModel is an option builder that sets the Model of the GameObject.
//
// Parameters:
//   - m: the model to render
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the model option
func WithModel(m model.Model) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.mdl = m
	}
}

// WithMaterials is an option builder that sets the materials indexed by the model's meshes.
//
// Parameters:
//   - mats: materials in MaterialIndex order
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the materials option
func WithMaterials(mats ...material.Material) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.materials = mats
	}
}

// WithPosition is an option builder that sets the world-space translation.
//
// Parameters:
//   - x, y, z: position components
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the position option
func WithPosition(x, y, z float32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.position = mgl32.Vec3{x, y, z}
	}
}

// WithScale is an option builder that sets the per-axis scale.
//
// Parameters:
//   - sx, sy, sz: scale components
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the scale option
func WithScale(sx, sy, sz float32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.scale = mgl32.Vec3{sx, sy, sz}
	}
}

// WithRotation is an option builder that sets the Euler rotation in radians.
//
// Parameters:
//   - rx, ry, rz: rotation angles
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the rotation option
func WithRotation(rx, ry, rz float32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.rotation = mgl32.Vec3{rx, ry, rz}
	}
}

// WithRotationSpeed is an option builder that sets the rotation applied per second.
//
// Parameters:
//   - rx, ry, rz: radians per second around each axis
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the rotation speed option
func WithRotationSpeed(rx, ry, rz float32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.rotationSpeed = mgl32.Vec3{rx, ry, rz}
	}
}
