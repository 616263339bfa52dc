package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrSingularProjection is returned when the perspective settings produce a projection
	// matrix that cannot be inverted. The camera keeps its previous matrices.
	ErrSingularProjection = errors.New("camera: projection matrix is not invertible")

	// ErrDegenerateView is returned when the camera position coincides with its target or the
	// view direction is parallel to the up vector.
	ErrDegenerateView = errors.New("camera: view matrix is degenerate")
)

// Matrices is one consistent set of camera matrices and the eye position they were built from.
type Matrices struct {
	View              mgl32.Mat4
	Projection        mgl32.Mat4
	ViewProjection    mgl32.Mat4
	InverseProjection mgl32.Mat4
	Position          mgl32.Vec3
}

type cameraImpl struct {
	mu *sync.Mutex

	eye mgl32.Vec3

	up mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix              mgl32.Mat4
	projectionMatrix        mgl32.Mat4
	viewProjectionMatrix    mgl32.Mat4
	inverseProjectionMatrix mgl32.Mat4

	controller CameraController
}

// Camera defines the interface for the camera system.
// The camera holds perspective settings and computes view/projection matrices from its
// CameraController. Every recomputation validates the result: a projection that cannot be
// inverted or a degenerate view is rejected and the previous matrices stay in effect.
type Camera interface {
	// Up returns the camera's up vector.
	Up() mgl32.Vec3

	// Fov returns the vertical field of view in radians.
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// Position returns the controller's world-space position.
	Position() mgl32.Vec3

	// ViewMatrix returns the current view matrix.
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the current zero-to-one depth projection matrix.
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns projection * view.
	ViewProjectionMatrix() mgl32.Mat4

	// InverseProjectionMatrix returns the inverse of the current projection matrix. The
	// lighting pass uses it to reconstruct view-space positions from depth.
	InverseProjectionMatrix() mgl32.Mat4

	// Matrices returns the view, projection, view-projection and inverse projection matrices
	// together with the eye position, all from the same update.
	Matrices() Matrices

	// UpdateMatrices recomputes the matrices from the controller and returns them as one set.
	// No other update can interleave between the recompute and the read.
	//
	// Returns:
	//   - Matrices: the committed matrices
	//   - error: as Update; the previous matrices are returned unchanged on error
	UpdateMatrices() (Matrices, error)

	// Frustum returns the world-space view frustum of the current view-projection matrix.
	Frustum() common.Frustum

	// Controller returns the attached CameraController.
	Controller() CameraController

	// Update re-reads position/target from the controller and recomputes matrices.
	// Should be called once per frame before the scene is snapshotted.
	//
	// Returns:
	//   - error: ErrSingularProjection or ErrDegenerateView; matrices are unchanged on error
	Update() error

	// SetPerspective replaces all perspective settings at once and recomputes matrices.
	//
	// Parameters:
	//   - fov: vertical field of view in radians
	//   - aspect: width / height
	//   - near, far: clip plane distances
	//
	// Returns:
	//   - error: ErrSingularProjection if the settings cannot be inverted; settings are unchanged on error
	SetPerspective(fov, aspect, near, far float32) error

	// SetAspect sets the aspect ratio and recomputes matrices.
	//
	// Parameters:
	//   - aspect: width / height
	//
	// Returns:
	//   - error: ErrSingularProjection if the aspect is unusable
	SetAspect(aspect float32) error

	// SetUp sets the camera's up vector and recomputes matrices.
	//
	// Parameters:
	//   - up: world-space up direction
	//
	// Returns:
	//   - error: ErrDegenerateView if the view becomes degenerate
	SetUp(up mgl32.Vec3) error

	// SetController attaches a CameraController and recomputes matrices.
	//
	// Parameters:
	//   - ctrl: the controller to attach (must not be nil)
	//
	// Returns:
	//   - error: as Update
	SetController(ctrl CameraController) error
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with default perspective settings and an orbit controller.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
//   - error: if the configured settings produce a singular projection or degenerate view
func NewCamera(options ...CameraBuilderOption) (Camera, error) {
	c := &cameraImpl{
		mu:                      &sync.Mutex{},
		up:                      mgl32.Vec3{0, 1, 0},
		fov:                     45.0 * (math.Pi / 180.0),
		aspect:                  1.0,
		near:                    0.1,
		far:                     100.0,
		viewMatrix:              mgl32.Ident4(),
		projectionMatrix:        mgl32.Ident4(),
		viewProjectionMatrix:    mgl32.Ident4(),
		inverseProjectionMatrix: mgl32.Ident4(),
	}
	for _, option := range options {
		option(c)
	}
	if c.controller == nil {
		c.controller = NewCameraController()
	}
	if err := c.updateMatrices(c.fov, c.aspect, c.near, c.far, c.up); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	ctrl := c.controller
	c.mu.Unlock()
	return ctrl.Position()
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) InverseProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inverseProjectionMatrix
}

func (c *cameraImpl) Matrices() Matrices {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.matricesLocked()
}

func (c *cameraImpl) UpdateMatrices() (Matrices, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.updateMatrices(c.fov, c.aspect, c.near, c.far, c.up)
	return c.matricesLocked(), err
}

func (c *cameraImpl) matricesLocked() Matrices {
	return Matrices{
		View:              c.viewMatrix,
		Projection:        c.projectionMatrix,
		ViewProjection:    c.viewProjectionMatrix,
		InverseProjection: c.inverseProjectionMatrix,
		Position:          c.eye,
	}
}

func (c *cameraImpl) Frustum() common.Frustum {
	return common.ExtractFrustum(c.ViewProjectionMatrix())
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) Update() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updateMatrices(c.fov, c.aspect, c.near, c.far, c.up)
}

func (c *cameraImpl) SetPerspective(fov, aspect, near, far float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updateMatrices(fov, aspect, near, far, c.up)
}

func (c *cameraImpl) SetAspect(aspect float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updateMatrices(c.fov, aspect, c.near, c.far, c.up)
}

func (c *cameraImpl) SetUp(up mgl32.Vec3) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updateMatrices(c.fov, c.aspect, c.near, c.far, up)
}

func (c *cameraImpl) SetController(ctrl CameraController) error {
	if ctrl == nil {
		return errors.New("camera: controller must not be nil")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.controller
	c.controller = ctrl
	if err := c.updateMatrices(c.fov, c.aspect, c.near, c.far, c.up); err != nil {
		c.controller = prev
		return err
	}
	return nil
}

// updateMatrices validates and commits new settings together with the view, projection,
// view-projection and inverse projection matrices. Nothing is committed on error.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices(fov, aspect, near, far float32, up mgl32.Vec3) error {
	proj := common.PerspectiveZO(fov, aspect, near, far)
	if !common.Invertible(proj) {
		return errors.Wrapf(ErrSingularProjection, "fov=%g aspect=%g near=%g far=%g", fov, aspect, near, far)
	}

	eye, target := c.controller.Position(), c.controller.Target()
	forward := target.Sub(eye)
	if forward.Len() < 1e-8 || forward.Normalize().Cross(up).Len() < 1e-6 {
		return errors.Wrapf(ErrDegenerateView, "eye=%v target=%v up=%v", eye, target, up)
	}
	view := mgl32.LookAtV(eye, target, up)

	c.fov, c.aspect, c.near, c.far, c.up = fov, aspect, near, far, up
	c.eye = eye
	c.viewMatrix = view
	c.projectionMatrix = proj
	c.viewProjectionMatrix = proj.Mul4(view)
	c.inverseProjectionMatrix = proj.Inv()
	return nil
}
