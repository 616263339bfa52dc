package model

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithMesh is an option builder that appends a mesh to the Model.
// Meshes are packed into the shared buffers in the order they are supplied.
//
// Parameters:
//   - data: the mesh attribute arrays
//
// Returns:
//   - ModelBuilderOption: a function that queues the mesh on a model
func WithMesh(data MeshData) ModelBuilderOption {
	return func(m *model) {
		m.pending = append(m.pending, data)
	}
}

// WithMeshes is an option builder that appends several meshes to the Model.
//
// Parameters:
//   - data: the meshes to append, in order
//
// Returns:
//   - ModelBuilderOption: a function that queues the meshes on a model
func WithMeshes(data ...MeshData) ModelBuilderOption {
	return func(m *model) {
		m.pending = append(m.pending, data...)
	}
}
