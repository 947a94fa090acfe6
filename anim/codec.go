package anim

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/anim_inspector/3rdparty/half"
	"github.com/mogaika/anim_inspector/utils"
)

// components selected by a stream mask
const (
	COMP_X    = 1
	COMP_Y    = 2
	COMP_Z    = 4
	COMP_ALL  = COMP_X | COMP_Y | COMP_Z
	COMP_TIME = 8
)

// interval holds the (min, range) pairs preceding IntervalFixed32NoW keys.
type interval struct {
	min   [3]float32
	rng   [3]float32
	valid bool
}

func readInterval(bs *utils.BufStack, mask uint8) interval {
	iv := interval{valid: true}
	for c := 0; c < 3; c++ {
		if mask&(1<<c) != 0 {
			iv.min[c] = bs.ReadLF()
			iv.rng[c] = bs.ReadLF()
		}
	}
	return iv
}

func readIntervalHeader(bs *utils.BufStack) interval {
	iv := interval{valid: true}
	for c := 0; c < 3; c++ {
		iv.min[c] = bs.ReadLF()
	}
	for c := 0; c < 3; c++ {
		iv.rng[c] = bs.ReadLF()
	}
	return iv
}

func unpack111110(v uint32) (x, y, z uint32) {
	return v >> 21, (v >> 10) & 0x7ff, v & 0x3ff
}

func readHalf(bs *utils.BufStack) float32 {
	b := bs.Read(2)
	if b == nil {
		return 0
	}
	return half.FromBytes(b).Float32()
}

func fixed48(raw uint16) float32 {
	return float32(int32(raw)-fixed48Half) / fixed48Half
}

func fixed32(raw uint32, bits uint) float32 {
	h := float32(uint32(1)<<(bits-1) - 1)
	return (float32(raw) - h) / h
}

func intervalComp(raw uint32, bits uint, min, rng float32) float32 {
	return min + float32(raw)/float32(uint32(1)<<bits-1)*rng
}

// readComponents decodes the masked xyz components of one key. Components not
// present in mask are zero.
func readComponents(bs *utils.BufStack, format CompressionFormat, mask uint8, iv *interval) (c [3]float32, err error) {
	switch format {
	case FORMAT_FLOAT96_NOW:
		for i := 0; i < 3; i++ {
			if mask&(1<<i) != 0 {
				c[i] = bs.ReadLF()
			}
		}
	case FORMAT_FIXED48_NOW:
		for i := 0; i < 3; i++ {
			if mask&(1<<i) != 0 {
				c[i] = fixed48(bs.ReadLU16())
			}
		}
	case FORMAT_FLOAT48_NOW:
		for i := 0; i < 3; i++ {
			if mask&(1<<i) != 0 {
				c[i] = readHalf(bs)
			}
		}
	case FORMAT_INTERVAL_FIXED32_NOW:
		if iv == nil || !iv.valid {
			return c, errors.Errorf("Interval key without interval header")
		}
		x, y, z := unpack111110(bs.ReadLU32())
		raws := [3]uint32{x, y, z}
		bits := [3]uint{fixed32XYBits, fixed32XYBits, fixed32ZBits}
		for i := 0; i < 3; i++ {
			if mask&(1<<i) != 0 {
				c[i] = intervalComp(raws[i], bits[i], iv.min[i], iv.rng[i])
			}
		}
	case FORMAT_FIXED32_NOW:
		x, y, z := unpack111110(bs.ReadLU32())
		c[0] = fixed32(x, fixed32XYBits)
		c[1] = fixed32(y, fixed32XYBits)
		c[2] = fixed32(z, fixed32ZBits)
	default:
		return c, errors.Wrapf(ErrUnknownFormat, "code %d", uint8(format))
	}
	return c, nil
}

func readQuatKey(bs *utils.BufStack, format CompressionFormat, mask uint8, iv *interval) (mgl32.Quat, error) {
	switch format {
	case FORMAT_NONE:
		x, y, z, w := bs.ReadLF(), bs.ReadLF(), bs.ReadLF(), bs.ReadLF()
		return mgl32.Quat{W: w, V: mgl32.Vec3{x, y, z}}, nil
	case FORMAT_IDENTITY:
		return mgl32.QuatIdent(), nil
	}
	c, err := readComponents(bs, format, mask, iv)
	if err != nil {
		return mgl32.QuatIdent(), err
	}
	return utils.QuatFromXYZ(c[0], c[1], c[2]), nil
}

func readVecKey(bs *utils.BufStack, format CompressionFormat, mask uint8, iv *interval) (mgl32.Vec3, error) {
	switch format {
	case FORMAT_NONE:
		return mgl32.Vec3{bs.ReadLF(), bs.ReadLF(), bs.ReadLF()}, nil
	case FORMAT_IDENTITY:
		return mgl32.Vec3{}, nil
	case FORMAT_FIXED32_NOW:
		return mgl32.Vec3{}, errors.Wrapf(ErrUnsupportedFormat, "%v translation", format)
	}
	c, err := readComponents(bs, format, mask, iv)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	v := mgl32.Vec3(c)
	if format == FORMAT_FIXED48_NOW {
		v = v.Mul(fixed48VecScale)
	}
	return v, nil
}

// readKeyTimes reads the frame index array that follows the keys of a
// variable rate stream.
func readKeyTimes(bs *utils.BufStack, numKeys, numFrames int) []float32 {
	times := make([]float32, numKeys)
	for i := range times {
		if numFrames < 256 {
			times[i] = float32(bs.ReadByte())
		} else {
			times[i] = float32(bs.ReadLU16())
		}
	}
	bs.Align(4)
	return times
}

// streamKeys is one decoded translation or rotation stream.
type streamKeys struct {
	quats []mgl32.Quat
	vecs  []mgl32.Vec3
	times []float32
	end   int
}

type streamParams struct {
	format    CompressionFormat
	mask      uint8
	numKeys   int
	withTimes bool
	numFrames int
	rotation  bool
	// per track streams store (min, range) only for masked components
	perTrack bool
}

func decodeStream(bs *utils.BufStack, p streamParams) (*streamKeys, error) {
	if !p.format.Valid() {
		return nil, errors.Wrapf(ErrUnknownFormat, "code %d", uint8(p.format))
	}
	sk := &streamKeys{}

	if p.format == FORMAT_IDENTITY {
		if p.rotation {
			sk.quats = []mgl32.Quat{mgl32.QuatIdent()}
		} else {
			sk.vecs = []mgl32.Vec3{{}}
		}
		sk.end = bs.AbsoluteOffset() + bs.Pos()
		return sk, nil
	}
	if p.numKeys <= 0 {
		sk.end = bs.AbsoluteOffset() + bs.Pos()
		return sk, nil
	}
	if !p.rotation && p.format == FORMAT_FIXED32_NOW && p.numKeys > 1 {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%v translation", p.format)
	}

	format, mask := p.format, p.mask
	if p.numKeys == 1 {
		format = FORMAT_FLOAT96_NOW
		if !p.perTrack {
			mask = COMP_ALL
		}
	}

	var iv interval
	if format == FORMAT_INTERVAL_FIXED32_NOW {
		if p.perTrack {
			iv = readInterval(bs, mask)
		} else {
			iv = readIntervalHeader(bs)
		}
	}

	if p.rotation {
		sk.quats = make([]mgl32.Quat, p.numKeys)
		for i := range sk.quats {
			q, err := readQuatKey(bs, format, mask, &iv)
			if err != nil {
				return nil, errors.Wrapf(err, "rotation key %d", i)
			}
			sk.quats[i] = q
		}
	} else {
		sk.vecs = make([]mgl32.Vec3, p.numKeys)
		for i := range sk.vecs {
			v, err := readVecKey(bs, format, mask, &iv)
			if err != nil {
				return nil, errors.Wrapf(err, "translation key %d", i)
			}
			sk.vecs[i] = v
		}
	}
	bs.Align(4)

	if p.withTimes && p.numKeys > 1 {
		sk.times = readKeyTimes(bs, p.numKeys, p.numFrames)
	}
	if err := bs.Err(); err != nil {
		return nil, err
	}
	sk.end = bs.AbsoluteOffset() + bs.Pos()
	return sk, nil
}
