package renderer

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gbuffer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/light"
	"github.com/Carmen-Shannon/oxy-deferred/engine/shading"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrSizeMismatch is returned when a pass is handed attachments of different sizes.
var ErrSizeMismatch = errors.New("renderer: attachment size mismatch")

// LightingPass resolves a G-buffer into radiance. Rows are split into bands that run on a
// shared worker pool; each band only writes its own rows of the output.
type LightingPass struct {
	pool          worker.DynamicWorkerPool
	bands         int
	distanceScale float32
	clearColor    mgl32.Vec4
}

// NewLightingPass creates a LightingPass.
//
// Parameters:
//   - pool: the worker pool bands are submitted to
//   - bands: number of row bands per frame (at least 1)
//   - distanceScale: point light distance scale
//   - clearColor: radiance written to pixels no geometry covered
//
// Returns:
//   - *LightingPass: the pass
func NewLightingPass(pool worker.DynamicWorkerPool, bands int, distanceScale float32, clearColor mgl32.Vec4) *LightingPass {
	return &LightingPass{
		pool:          pool,
		bands:         max(bands, 1),
		distanceScale: distanceScale,
		clearColor:    clearColor,
	}
}

// Execute shades every covered pixel of gb into out. Uncovered pixels and pixels whose
// position cannot be reconstructed receive the clear color.
//
// Parameters:
//   - gb: the G-buffer written by the geometry pass
//   - out: the radiance target, same size as gb
//   - u: the packed light uniform for this frame
//   - invProj: the inverse projection used to rebuild view-space positions
//
// Returns:
//   - int: the number of pixels shaded
//   - error: ErrSizeMismatch if gb and out differ in size
func (p *LightingPass) Execute(gb *gbuffer.GBuffer, out *gbuffer.Radiance, u *light.GPULightUniform, invProj mgl32.Mat4) (int, error) {
	width, height := gb.Width(), gb.Height()
	if out.Width() != width || out.Height() != height {
		return 0, errors.Wrapf(ErrSizeMismatch, "gbuffer %dx%d, radiance %dx%d", width, height, out.Width(), out.Height())
	}

	bands := min(p.bands, height)
	rowsPerBand := (height + bands - 1) / bands

	// pool.Wait() blocks until workers idle out, so a WaitGroup is the per-frame barrier.
	var wg sync.WaitGroup
	var shaded atomic.Int64
	for band := 0; band < bands; band++ {
		y0 := band * rowsPerBand
		y1 := min(y0+rowsPerBand, height)
		if y0 >= y1 {
			break
		}
		wg.Add(1)
		p.pool.SubmitTask(worker.Task{
			ID: band,
			Do: func() (any, error) {
				defer wg.Done()
				shaded.Add(int64(p.shadeRows(gb, out, u, invProj, y0, y1)))
				return nil, nil
			},
		})
	}
	wg.Wait()
	return int(shaded.Load()), nil
}

func (p *LightingPass) shadeRows(gb *gbuffer.GBuffer, out *gbuffer.Radiance, u *light.GPULightUniform, invProj mgl32.Mat4, y0, y1 int) int {
	width, height := gb.Width(), gb.Height()
	shaded := 0
	for y := y0; y < y1; y++ {
		for x := 0; x < width; x++ {
			if !gb.Covered(x, y) {
				out.Set(x, y, p.clearColor)
				continue
			}
			sample := gb.Read(x, y)
			pos, ok := shading.ReconstructViewPosition(sample.Depth, shading.PixelNDC(x, y, width, height), invProj)
			if !ok {
				out.Set(x, y, p.clearColor)
				continue
			}
			c := shading.Shade(shading.Surface{
				Position:         pos,
				Normal:           sample.Normal,
				Albedo:           sample.Albedo,
				Metallic:         sample.Metallic,
				Roughness:        sample.Roughness,
				AmbientOcclusion: sample.AmbientOcclusion,
			}, u, p.distanceScale)
			out.Set(x, y, c.Vec4(1))
			shaded++
		}
	}
	return shaded
}
