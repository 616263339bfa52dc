package config

import (
	"bytes"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/camera"
	"github.com/Carmen-Shannon/oxy-deferred/engine/light"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/shading"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig marks every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Defaults applied to fields left empty.
const (
	DefaultWidth     = 640
	DefaultHeight    = 480
	DefaultFov       = 60
	DefaultNear      = 0.1
	DefaultFar       = 100
	DefaultRadius    = 10
	DefaultElevation = 30
	DefaultTickRate  = 60
)

// CameraConfig describes the orbit camera. Angles are in degrees.
type CameraConfig struct {
	Fov        float32    `yaml:"fov"`
	Near       float32    `yaml:"near"`
	Far        float32    `yaml:"far"`
	Radius     float32    `yaml:"radius"`
	Azimuth    float32    `yaml:"azimuth"`
	Elevation  float32    `yaml:"elevation"`
	Target     [3]float32 `yaml:"target"`
	OrbitSpeed float32    `yaml:"orbit_speed"` // degrees per second
	ZoomSpeed  float32    `yaml:"zoom_speed"`  // world units per second toward the target
	PanSpeed   [2]float32 `yaml:"pan_speed"`   // right and up, world units per second

	RadiusBounds    [2]float32 `yaml:"radius_bounds"`    // min, max; zero keeps the controller defaults
	ElevationBounds [2]float32 `yaml:"elevation_bounds"` // min, max in degrees; zero keeps the defaults
}

// LightConfig describes one light.
type LightConfig struct {
	Kind      string      `yaml:"kind"` // "point" or "directional"
	Position  [3]float32  `yaml:"position"`
	Direction [3]float32  `yaml:"direction"`
	Color     *[3]float32 `yaml:"color"` // defaults to white; an explicit black is kept
	Enabled   *bool       `yaml:"enabled"`
}

// Config is the renderer and lighting configuration of a headless engine.
type Config struct {
	Width            int           `yaml:"width"`
	Height           int           `yaml:"height"`
	Workers          int           `yaml:"workers"`
	FramesInFlight   int           `yaml:"frames_in_flight"`
	Backend          string        `yaml:"backend"` // "memory" or "wgpu"
	AmbientOcclusion *float32      `yaml:"ambient_occlusion"`
	DistanceScale    *float32      `yaml:"distance_scale"`
	ClearColor       [4]float32    `yaml:"clear_color"`
	Ambient          [3]float32    `yaml:"ambient"`
	TickRate         float64       `yaml:"tick_rate"`
	Debug            bool          `yaml:"debug"`
	ProfileInterval  time.Duration `yaml:"profile_interval"`
	Camera           CameraConfig  `yaml:"camera"`
	Lights           []LightConfig `yaml:"lights"`
}

// Default returns a configuration with every default applied and no lights.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads and parses a YAML configuration file.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - *Config: the validated configuration with defaults applied
//   - error: if the file cannot be read, parsed or validated
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: read %s", path)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config: %s", path)
	}
	return c, nil
}

// Parse decodes a YAML configuration, applies defaults and validates it.
// Unknown keys are rejected.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - *Config: the validated configuration
//   - error: a decode error, or an error matching ErrInvalidConfig
func Parse(data []byte) (*Config, error) {
	c := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "config: decode")
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	c.Width = common.Coalesce(c.Width, DefaultWidth)
	c.Height = common.Coalesce(c.Height, DefaultHeight)
	c.FramesInFlight = common.Coalesce(c.FramesInFlight, renderer.DefaultFramesInFlight)
	c.Backend = common.Coalesce(strings.ToLower(c.Backend), renderer.BackendTypeMemory.String())
	c.ClearColor = common.Coalesce(c.ClearColor, [4]float32{0, 0, 0, 1})
	c.TickRate = common.Coalesce(c.TickRate, DefaultTickRate)
	c.ProfileInterval = common.Coalesce(c.ProfileInterval, time.Second)
	c.AmbientOcclusion = common.ValueOr(c.AmbientOcclusion, shading.DefaultAmbientOcclusion)
	c.DistanceScale = common.ValueOr(c.DistanceScale, shading.DefaultDistanceScale)

	c.Camera.Fov = common.Coalesce(c.Camera.Fov, DefaultFov)
	c.Camera.Near = common.Coalesce(c.Camera.Near, DefaultNear)
	c.Camera.Far = common.Coalesce(c.Camera.Far, DefaultFar)
	c.Camera.Radius = common.Coalesce(c.Camera.Radius, DefaultRadius)
	c.Camera.Elevation = common.Coalesce(c.Camera.Elevation, DefaultElevation)

	for i := range c.Lights {
		l := &c.Lights[i]
		l.Kind = strings.ToLower(l.Kind)
		l.Color = common.ValueOr(l.Color, [3]float32{1, 1, 1})
	}
}

// Validate checks the configuration. Every returned error matches ErrInvalidConfig; a light
// list over capacity also matches light.ErrTooManyLights.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "size %dx%d must be positive", c.Width, c.Height)
	}
	if c.Workers < 0 || c.FramesInFlight < 0 {
		return errors.Wrapf(ErrInvalidConfig, "workers %d and frames_in_flight %d must not be negative", c.Workers, c.FramesInFlight)
	}
	if _, err := c.BackendType(); err != nil {
		return err
	}
	if ao := *c.AmbientOcclusion; ao < 0 || ao > 1 {
		return errors.Wrapf(ErrInvalidConfig, "ambient_occlusion %g outside [0, 1]", ao)
	}
	if *c.DistanceScale <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "distance_scale %g must be positive", *c.DistanceScale)
	}
	if c.TickRate < 0 {
		return errors.Wrapf(ErrInvalidConfig, "tick_rate %g must not be negative", c.TickRate)
	}
	if c.Camera.Near <= 0 || c.Camera.Near >= c.Camera.Far {
		return errors.Wrapf(ErrInvalidConfig, "camera near %g must be positive and less than far %g", c.Camera.Near, c.Camera.Far)
	}
	if b := c.Camera.RadiusBounds; b != ([2]float32{}) && (b[0] <= 0 || b[0] > b[1]) {
		return errors.Wrapf(ErrInvalidConfig, "camera radius_bounds %v must be positive and ordered", b)
	}
	if b := c.Camera.ElevationBounds; b != ([2]float32{}) && (b[0] > b[1] || b[0] <= -90 || b[1] >= 90) {
		return errors.Wrapf(ErrInvalidConfig, "camera elevation_bounds %v must be ordered and inside (-90, 90)", b)
	}
	if c.Camera.Fov <= 0 || c.Camera.Fov >= 180 {
		return errors.Wrapf(ErrInvalidConfig, "camera fov %g must be in (0, 180)", c.Camera.Fov)
	}
	if len(c.Lights) > light.MaxLights {
		err := errors.Wrapf(light.ErrTooManyLights, "config lists %d lights, limit is %d", len(c.Lights), light.MaxLights)
		return errors.Mark(err, ErrInvalidConfig)
	}
	for i, l := range c.Lights {
		switch l.Kind {
		case light.LightTypePoint.String():
		case light.LightTypeDirectional.String():
			if l.Direction == ([3]float32{}) {
				return errors.Wrapf(ErrInvalidConfig, "light %d: directional light needs a direction", i)
			}
		default:
			return errors.Wrapf(ErrInvalidConfig, "light %d: unknown kind %q", i, l.Kind)
		}
	}
	return nil
}

// BackendType resolves the configured backend name.
func (c *Config) BackendType() (renderer.RendererBackendType, error) {
	switch c.Backend {
	case renderer.BackendTypeMemory.String():
		return renderer.BackendTypeMemory, nil
	case renderer.BackendTypeWGPU.String():
		return renderer.BackendTypeWGPU, nil
	}
	return 0, errors.Wrapf(ErrInvalidConfig, "unknown backend %q", c.Backend)
}

// BuildLights creates the configured lights in order.
//
// Returns:
//   - []light.Light: one light per entry
func (c *Config) BuildLights() []light.Light {
	out := make([]light.Light, 0, len(c.Lights))
	for _, l := range c.Lights {
		color := common.ValueOr(l.Color, [3]float32{1, 1, 1})
		opts := []light.LightBuilderOption{light.WithColor(color[0], color[1], color[2])}
		if l.Enabled != nil {
			opts = append(opts, light.WithEnabled(*l.Enabled))
		}
		if l.Kind == light.LightTypeDirectional.String() {
			opts = append(opts, light.WithDirection(l.Direction[0], l.Direction[1], l.Direction[2]))
			out = append(out, light.NewLight(light.LightTypeDirectional, opts...))
			continue
		}
		opts = append(opts, light.WithPosition(l.Position[0], l.Position[1], l.Position[2]))
		out = append(out, light.NewLight(light.LightTypePoint, opts...))
	}
	return out
}

// BuildRegistry creates a light registry holding the configured ambient color and lights.
//
// Returns:
//   - light.Registry: the populated registry
//   - error: ErrTooManyLights if the list is over capacity
func (c *Config) BuildRegistry() (light.Registry, error) {
	r := light.NewRegistry(mgl32.Vec3(c.Ambient))
	if _, err := r.Replace(c.BuildLights()); err != nil {
		return nil, err
	}
	return r, nil
}

// BuildCamera creates the orbit camera described by the configuration.
//
// Returns:
//   - camera.Camera: the camera
//   - error: if the projection is rejected
func (c *Config) BuildCamera() (camera.Camera, error) {
	opts := []camera.CameraControllerOption{
		camera.WithRadius(c.Camera.Radius),
		camera.WithAzimuth(mgl32.DegToRad(c.Camera.Azimuth)),
		camera.WithElevation(mgl32.DegToRad(c.Camera.Elevation)),
		camera.WithTarget(mgl32.Vec3(c.Camera.Target)),
	}
	if b := c.Camera.RadiusBounds; b != ([2]float32{}) {
		opts = append(opts, camera.WithRadiusBounds(b[0], b[1]))
	}
	if b := c.Camera.ElevationBounds; b != ([2]float32{}) {
		opts = append(opts, camera.WithElevationBounds(mgl32.DegToRad(b[0]), mgl32.DegToRad(b[1])))
	}
	ctrl := camera.NewCameraController(opts...)
	return camera.NewCamera(
		camera.WithFov(mgl32.DegToRad(c.Camera.Fov)),
		camera.WithAspect(float32(c.Width)/float32(c.Height)),
		camera.WithClipPlanes(c.Camera.Near, c.Camera.Far),
		camera.WithController(ctrl),
	)
}

// RendererOptions translates the configuration into renderer options.
//
// Parameters:
//   - logger: the renderer logger
//
// Returns:
//   - []renderer.RendererBuilderOption: options for renderer.NewRenderer
func (c *Config) RendererOptions(logger *zap.Logger) []renderer.RendererBuilderOption {
	backend, _ := c.BackendType()
	return []renderer.RendererBuilderOption{
		renderer.WithLogger(logger),
		renderer.WithWorkers(c.Workers),
		renderer.WithFramesInFlight(c.FramesInFlight),
		renderer.WithAmbientOcclusion(*c.AmbientOcclusion),
		renderer.WithDistanceScale(*c.DistanceScale),
		renderer.WithClearColor(mgl32.Vec4(c.ClearColor)),
		renderer.WithBackendType(backend),
	}
}
