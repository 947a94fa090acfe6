package anim

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/anim_inspector/utils"
)

func TestRotationRoundTrip(t *testing.T) {
	// wEps bounds the rebuilt W, which picks up the error of all three
	// stored components
	for _, tc := range []struct {
		format CompressionFormat
		eps    float32
		wEps   float32
	}{
		{FORMAT_NONE, 1e-6, 1e-6},
		{FORMAT_FLOAT96_NOW, 1e-5, 1e-5},
		{FORMAT_FIXED48_NOW, 1.0 / fixed48Half, 1e-4},
		{FORMAT_INTERVAL_FIXED32_NOW, 5e-3, 5e-3},
		{FORMAT_FIXED32_NOW, 5e-3, 5e-3},
		{FORMAT_FLOAT48_NOW, 2e-3, 2e-3},
	} {
		t.Run(tc.format.String(), func(t *testing.T) {
			keys := testQuats()
			var w streamWriter
			w.writeStream(encStream{format: tc.format, rotation: true, quats: keys}, false)

			sk, err := decodeStream(utils.NewBufStack("test", w.buf), streamParams{
				format: tc.format, mask: COMP_ALL, numKeys: len(keys), rotation: true,
			})
			if err != nil {
				t.Fatal(err)
			}
			if len(sk.quats) != len(keys) {
				t.Fatalf("got %d keys, want %d", len(sk.quats), len(keys))
			}
			for i := range keys {
				if !vecNear(sk.quats[i].V, keys[i].V, tc.eps) || mgl32.Abs(sk.quats[i].W-keys[i].W) > tc.wEps {
					t.Errorf("key %d: got %v, want %v", i, sk.quats[i], keys[i])
				}
			}
			if sk.end != len(w.buf) {
				t.Errorf("stream ended at %d, written %d", sk.end, len(w.buf))
			}
		})
	}
}

func TestTranslationRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		format CompressionFormat
		eps    float32
	}{
		{FORMAT_NONE, 1e-6},
		{FORMAT_FLOAT96_NOW, 1e-6},
		{FORMAT_FIXED48_NOW, 128.0 / fixed48Half},
		{FORMAT_INTERVAL_FIXED32_NOW, 0.05},
		{FORMAT_FLOAT48_NOW, 0.05},
	} {
		t.Run(tc.format.String(), func(t *testing.T) {
			keys := testVecs()
			var w streamWriter
			w.writeStream(encStream{format: tc.format, vecs: keys}, false)

			sk, err := decodeStream(utils.NewBufStack("test", w.buf), streamParams{
				format: tc.format, mask: COMP_ALL, numKeys: len(keys),
			})
			if err != nil {
				t.Fatal(err)
			}
			for i := range keys {
				if !vecNear(sk.vecs[i], keys[i], tc.eps) {
					t.Errorf("key %d: got %v, want %v", i, sk.vecs[i], keys[i])
				}
			}
		})
	}
}

func TestSingleKeyIsUncompressed(t *testing.T) {
	q := testQuats()[2]
	var w streamWriter
	w.writeStream(encStream{format: FORMAT_FIXED48_NOW, rotation: true, quats: []mgl32.Quat{q}}, false)
	if len(w.buf) != 12 {
		t.Fatalf("single key took %d bytes", len(w.buf))
	}

	sk, err := decodeStream(utils.NewBufStack("test", w.buf), streamParams{
		format: FORMAT_FIXED48_NOW, mask: COMP_ALL, numKeys: 1, rotation: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !quatNear(sk.quats[0], q, 1e-6) {
		t.Errorf("got %v, want %v", sk.quats[0], q)
	}
}

func TestIdentityStream(t *testing.T) {
	sk, err := decodeStream(utils.NewBufStack("test", nil), streamParams{
		format: FORMAT_IDENTITY, numKeys: 7, rotation: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(sk.quats) != 1 || sk.quats[0] != mgl32.QuatIdent() {
		t.Errorf("got %v", sk.quats)
	}

	sk, err = decodeStream(utils.NewBufStack("test", nil), streamParams{format: FORMAT_IDENTITY, numKeys: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(sk.vecs) != 1 || sk.vecs[0] != (mgl32.Vec3{}) {
		t.Errorf("got %v", sk.vecs)
	}
}

func TestStreamErrors(t *testing.T) {
	buf := make([]byte, 64)

	_, err := decodeStream(utils.NewBufStack("test", buf), streamParams{format: 9, numKeys: 2, rotation: true})
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("unknown format: %v", err)
	}

	_, err = decodeStream(utils.NewBufStack("test", buf), streamParams{format: FORMAT_FIXED32_NOW, numKeys: 2})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("fixed32 translation: %v", err)
	}

	_, err = decodeStream(utils.NewBufStack("test", buf[:8]), streamParams{
		format: FORMAT_FLOAT96_NOW, mask: COMP_ALL, numKeys: 3, rotation: true,
	})
	if !errors.Is(err, utils.ErrOutOfBounds) {
		t.Errorf("truncated: %v", err)
	}
}

func TestKeyTimesWidth(t *testing.T) {
	for _, numFrames := range []int{100, 300} {
		keys := testVecs()[:3]
		times := []float32{0, 40, 99}
		var w streamWriter
		w.writeStream(encStream{format: FORMAT_FLOAT96_NOW, vecs: keys, times: times, numFrames: numFrames}, false)

		sk, err := decodeStream(utils.NewBufStack("test", w.buf), streamParams{
			format: FORMAT_FLOAT96_NOW, mask: COMP_ALL, numKeys: 3, withTimes: true, numFrames: numFrames,
		})
		if err != nil {
			t.Fatal(err)
		}
		for i := range times {
			if sk.times[i] != times[i] {
				t.Errorf("frames %d time %d: got %v, want %v", numFrames, i, sk.times[i], times[i])
			}
		}
		if sk.end != len(w.buf) || sk.end%4 != 0 {
			t.Errorf("frames %d: end %d, written %d", numFrames, sk.end, len(w.buf))
		}
	}
}

func TestPerTrackMask(t *testing.T) {
	keys := []mgl32.Vec3{{1, 2, 3}, {4, 5, 6}, {-7, 8, -9}}
	for _, format := range []CompressionFormat{
		FORMAT_FLOAT96_NOW, FORMAT_FIXED48_NOW, FORMAT_FLOAT48_NOW, FORMAT_INTERVAL_FIXED32_NOW,
	} {
		t.Run(format.String(), func(t *testing.T) {
			var w streamWriter
			w.writeStream(encStream{
				format: format, mask: COMP_X | COMP_Z, vecs: keys, times: []float32{0, 3, 8}, numFrames: 10,
			}, true)

			sk, h, err := decodePerTrackStream(utils.NewBufStack("test", w.buf), false, 10)
			if err != nil {
				t.Fatal(err)
			}
			if h.Format != format || h.NumKeys != 3 || !h.HasTimes() {
				t.Errorf("header %+v", h)
			}
			for i, k := range keys {
				want := mgl32.Vec3{k[0], 0, k[2]}
				if !vecNear(sk.vecs[i], want, 0.02) {
					t.Errorf("key %d: got %v, want %v", i, sk.vecs[i], want)
				}
			}
			if sk.times[2] != 8 {
				t.Errorf("times %v", sk.times)
			}
		})
	}
}

func TestPerTrackZeroMaskIsFloat(t *testing.T) {
	keys := testQuats()[:2]
	var w streamWriter
	w.writeStream(encStream{format: FORMAT_FIXED48_NOW, rotation: true, quats: keys}, true)
	if len(w.buf) != 4+2*12 {
		t.Fatalf("wrote %d bytes", len(w.buf))
	}

	sk, _, err := decodePerTrackStream(utils.NewBufStack("test", w.buf), true, 10)
	if err != nil {
		t.Fatal(err)
	}
	for i := range keys {
		if !quatNear(sk.quats[i], keys[i], 1e-5) {
			t.Errorf("key %d: got %v, want %v", i, sk.quats[i], keys[i])
		}
	}
}

// Only component-wise formats switch to floats on a zero mask; packed and
// uncompressed keys keep their layout.
func TestPerTrackZeroMaskKeepsPacked(t *testing.T) {
	for _, tc := range []struct {
		format CompressionFormat
		size   int
		eps    float32
	}{
		{FORMAT_FIXED32_NOW, 4, 5e-3},
		{FORMAT_NONE, 16, 1e-6},
	} {
		t.Run(tc.format.String(), func(t *testing.T) {
			keys := testQuats()[:2]
			var w streamWriter
			w.writeStream(encStream{format: tc.format, rotation: true, quats: keys}, true)
			if len(w.buf) != 4+2*tc.size {
				t.Fatalf("wrote %d bytes", len(w.buf))
			}

			sk, h, err := decodePerTrackStream(utils.NewBufStack("test", w.buf), true, 10)
			if err != nil {
				t.Fatal(err)
			}
			if h.Format != tc.format || h.Mask&COMP_ALL != 0 {
				t.Errorf("header %+v", h)
			}
			for i := range keys {
				if !quatNear(sk.quats[i], keys[i], tc.eps) {
					t.Errorf("key %d: got %v, want %v", i, sk.quats[i], keys[i])
				}
			}
		})
	}
}

func TestTrackHeaderPack(t *testing.T) {
	h := parseTrackHeader(0x3b00002a)
	if h.Format != FORMAT_INTERVAL_FIXED32_NOW || h.Mask != 0xb || h.NumKeys != 42 {
		t.Errorf("parsed %+v", h)
	}
	if h.Pack() != 0x3b00002a {
		t.Errorf("packed 0x%x", h.Pack())
	}
}
