package anim

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/anim_inspector/3rdparty/half"
)

// streamWriter produces streams in the layout the decoder reads, so tests can
// check decode against known keys.
type streamWriter struct {
	buf []byte
}

func (w *streamWriter) pos() int     { return len(w.buf) }
func (w *streamWriter) u8(v uint8)   { w.buf = append(w.buf, v) }
func (w *streamWriter) u16(v uint16) { w.buf = append(w.buf, byte(v), byte(v>>8)) }
func (w *streamWriter) u32(v uint32) {
	w.buf = append(w.buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}
func (w *streamWriter) f32(f float32) { w.u32(math.Float32bits(f)) }
func (w *streamWriter) pad(n int) {
	for i := 0; i < n; i++ {
		w.u8(0)
	}
}
func (w *streamWriter) align4() {
	for len(w.buf)%4 != 0 {
		w.u8(0)
	}
}

type encStream struct {
	format    CompressionFormat
	mask      uint8
	rotation  bool
	quats     []mgl32.Quat
	vecs      []mgl32.Vec3
	times     []float32
	numFrames int
}

func (e *encStream) numKeys() int {
	if e.rotation {
		return len(e.quats)
	}
	return len(e.vecs)
}

func (e *encStream) comps(i int) [3]float32 {
	if e.rotation {
		return [3]float32(e.quats[i].V)
	}
	return [3]float32(e.vecs[i])
}

func (e *encStream) interval() interval {
	iv := interval{valid: true}
	for c := 0; c < 3; c++ {
		lo, hi := float32(math.MaxFloat32), float32(-math.MaxFloat32)
		for i := 0; i < e.numKeys(); i++ {
			v := e.comps(i)[c]
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		iv.min[c] = lo
		iv.rng[c] = hi - lo
	}
	return iv
}

func quantize(v float32, bits uint, min, rng float32) uint32 {
	if rng == 0 {
		return 0
	}
	maxRaw := float64(uint32(1)<<bits - 1)
	return uint32(math.Round(float64((v-min)/rng) * maxRaw))
}

func quantizeFixed32(v float32, bits uint) uint32 {
	h := float64(uint32(1)<<(bits-1) - 1)
	return uint32(math.Round(float64(v)*h + h))
}

// writeStream returns the offset the stream starts at.
func (w *streamWriter) writeStream(e encStream, perTrack bool) int {
	start := w.pos()
	n := e.numKeys()
	format, mask := e.format, uint8(COMP_ALL)
	if perTrack {
		hm := e.mask
		if e.times != nil {
			hm |= COMP_TIME
		}
		w.u32(trackHeader{Format: e.format, Mask: hm, NumKeys: n}.Pack())
		mask = e.mask & COMP_ALL
		if mask == 0 {
			mask = COMP_ALL
			if isComponentWise(format) {
				format = FORMAT_FLOAT96_NOW
			}
		}
	}
	if format == FORMAT_IDENTITY {
		return start
	}
	if n == 1 {
		format = FORMAT_FLOAT96_NOW
	}

	iv := e.interval()
	if format == FORMAT_INTERVAL_FIXED32_NOW {
		if perTrack {
			for c := 0; c < 3; c++ {
				if mask&(1<<c) != 0 {
					w.f32(iv.min[c])
					w.f32(iv.rng[c])
				}
			}
		} else {
			for c := 0; c < 3; c++ {
				w.f32(iv.min[c])
			}
			for c := 0; c < 3; c++ {
				w.f32(iv.rng[c])
			}
		}
	}

	for i := 0; i < n; i++ {
		w.writeKey(format, mask, &e, i, &iv)
	}
	w.align4()

	if e.times != nil && n > 1 {
		for _, t := range e.times {
			if e.numFrames < 256 {
				w.u8(uint8(t))
			} else {
				w.u16(uint16(t))
			}
		}
		w.align4()
	}
	return start
}

func (w *streamWriter) writeKey(format CompressionFormat, mask uint8, e *encStream, i int, iv *interval) {
	c := e.comps(i)
	switch format {
	case FORMAT_NONE:
		w.f32(c[0])
		w.f32(c[1])
		w.f32(c[2])
		if e.rotation {
			w.f32(e.quats[i].W)
		}
	case FORMAT_FLOAT96_NOW:
		for j := 0; j < 3; j++ {
			if mask&(1<<j) != 0 {
				w.f32(c[j])
			}
		}
	case FORMAT_FIXED48_NOW:
		scale := float32(1)
		if !e.rotation {
			scale = fixed48VecScale
		}
		for j := 0; j < 3; j++ {
			if mask&(1<<j) != 0 {
				w.u16(uint16(math.Round(float64(c[j]/scale*fixed48Half + fixed48Half))))
			}
		}
	case FORMAT_FLOAT48_NOW:
		for j := 0; j < 3; j++ {
			if mask&(1<<j) != 0 {
				var b [2]byte
				half.NewFloat16(c[j]).PutBytes(b[:])
				w.u8(b[0])
				w.u8(b[1])
			}
		}
	case FORMAT_INTERVAL_FIXED32_NOW:
		var raw [3]uint32
		bits := [3]uint{fixed32XYBits, fixed32XYBits, fixed32ZBits}
		for j := 0; j < 3; j++ {
			if mask&(1<<j) != 0 {
				raw[j] = quantize(c[j], bits[j], iv.min[j], iv.rng[j])
			}
		}
		w.u32(raw[0]<<21 | raw[1]<<10 | raw[2])
	case FORMAT_FIXED32_NOW:
		x := quantizeFixed32(c[0], fixed32XYBits)
		y := quantizeFixed32(c[1], fixed32XYBits)
		z := quantizeFixed32(c[2], fixed32ZBits)
		w.u32(x<<21 | y<<10 | z)
	}
}

func testQuats() []mgl32.Quat {
	axes := []mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 1, 0}, {0.3, -0.5, 0.8}}
	qs := make([]mgl32.Quat, len(axes))
	for i, a := range axes {
		qs[i] = mgl32.QuatRotate(0.3+float32(i)*0.35, a.Normalize())
	}
	return qs
}

func testVecs() []mgl32.Vec3 {
	return []mgl32.Vec3{{0, 0, 0}, {10, -5, 2.5}, {-40, 20, 33}, {7.25, 49, -49}, {1, 2, 3}}
}

func quatNear(a, b mgl32.Quat, eps float32) bool {
	return mgl32.Abs(a.W-b.W) <= eps && vecNear(a.V, b.V, eps)
}

func vecNear(a, b mgl32.Vec3, eps float32) bool {
	for i := 0; i < 3; i++ {
		if mgl32.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}
