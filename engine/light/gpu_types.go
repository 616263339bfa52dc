package light

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
)

// GPULightSlot is one entry of the light array in GPULightUniform.
// Size: 32 bytes (two vec4<f32>).
type GPULightSlot struct {
	Position [4]float32 // offset  0: view-space position (w=1) or direction (w=0)
	Color    [4]float32 // offset 16: linear RGB color, w unused
}

// GPULightUniform is the GPU-aligned per-frame light uniform consumed by the lighting pass.
// Every field starts on a 16-byte boundary (std140).
// Size: 352 bytes.
//
// Layout:
//
//	vec4<f32>  ambient_color            (16 bytes, offset   0)
//	u32        count                    ( 4 bytes, offset  16)
//	u32 x 3    _pad                     (12 bytes, offset  20)
//	Light[10]  lights                   (320 bytes, offset 32)
type GPULightUniform struct {
	AmbientColor [4]float32
	Count        uint32
	_pad         [3]uint32
	Lights       [MaxLights]GPULightSlot
}

// GPULightUniformSize is the byte size of a marshaled GPULightUniform.
const GPULightUniformSize = 352

// Size returns the size of the GPULightUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (352)
func (u *GPULightUniform) Size() int {
	return int(unsafe.Sizeof(*u))
}

// Active returns the slots gated by Count.
func (u *GPULightUniform) Active() []GPULightSlot {
	return u.Lights[:min(int(u.Count), MaxLights)]
}

// Marshal serializes the GPULightUniform into a little-endian byte buffer suitable for
// GPU upload. Slots past Count are written as they are held; Count gates iteration.
//
// Returns:
//   - []byte: 352-byte buffer ready for GPU upload
func (u *GPULightUniform) Marshal() []byte {
	buf := make([]byte, GPULightUniformSize)
	putVec4(buf[0:16], u.AmbientColor)
	binary.LittleEndian.PutUint32(buf[16:20], u.Count)
	off := 32
	for i := range u.Lights {
		putVec4(buf[off:off+16], u.Lights[i].Position)
		putVec4(buf[off+16:off+32], u.Lights[i].Color)
		off += 32
	}
	return buf
}

// Unmarshal decodes a buffer produced by Marshal.
//
// Parameters:
//   - buf: at least 352 bytes
//
// Returns:
//   - error: if buf is too short or the count exceeds MaxLights
func (u *GPULightUniform) Unmarshal(buf []byte) error {
	if len(buf) < GPULightUniformSize {
		return errors.Newf("light: uniform buffer is %d bytes, need %d", len(buf), GPULightUniformSize)
	}
	count := binary.LittleEndian.Uint32(buf[16:20])
	if count > MaxLights {
		return errors.Wrapf(ErrTooManyLights, "uniform count field is %d", count)
	}
	u.AmbientColor = getVec4(buf[0:16])
	u.Count = count
	off := 32
	for i := range u.Lights {
		u.Lights[i].Position = getVec4(buf[off : off+16])
		u.Lights[i].Color = getVec4(buf[off+16 : off+32])
		off += 32
	}
	return nil
}

// PackLightUniform builds the per-frame uniform from a snapshot. Every light vector goes
// through the same view multiply; the w tag is restored afterwards so directional lights
// come out rotated only and point lights fully transformed.
//
// Parameters:
//   - snap: the light snapshot for this frame
//   - view: the camera view matrix
//
// Returns:
//   - GPULightUniform: the packed uniform
//   - error: ErrTooManyLights if the snapshot holds more than MaxLights lights
func PackLightUniform(snap LightSnapshot, view mgl32.Mat4) (GPULightUniform, error) {
	var u GPULightUniform
	if len(snap.Lights) > MaxLights {
		return u, errors.Wrapf(ErrTooManyLights, "snapshot holds %d lights", len(snap.Lights))
	}
	u.AmbientColor = [4]float32{snap.Ambient[0], snap.Ambient[1], snap.Ambient[2], 1}
	u.Count = uint32(len(snap.Lights))
	for i, l := range snap.Lights {
		u.Lights[i] = GPULightSlot{
			Position: common.TransformPreserveW(view, l.Vector),
			Color:    [4]float32{l.Color[0], l.Color[1], l.Color[2], 0},
		}
	}
	return u, nil
}

func putVec4(dst []byte, v [4]float32) {
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v[i]))
	}
}

func getVec4(src []byte) [4]float32 {
	var v [4]float32
	for i := 0; i < 4; i++ {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
	return v
}
