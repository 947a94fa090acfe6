package anim

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/anim_inspector/config"
	"github.com/mogaika/anim_inspector/utils"
)

func testSet() *AnimSet {
	s := NewAnimSet("test", []string{"Root", "Spine", "Head"})
	s.RefPose = []BonePose{
		{Pos: mgl32.Vec3{0, 0, 1}, Quat: mgl32.QuatIdent()},
		{Pos: mgl32.Vec3{0, 0, 2}, Quat: mgl32.QuatIdent()},
		{Pos: mgl32.Vec3{0, 0, 3}, Quat: testQuats()[4]},
	}
	return s
}

func testLogger() (*utils.Logger, *logtest.Hook) {
	l, hook := logtest.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	return utils.NewLogger(l), hook
}

func warnings(hook *logtest.Hook) int {
	n := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			n++
		}
	}
	return n
}

// writeSequence lays out two tracks in the sequence wide shape, with padding
// bytes inserted after the first stream.
func writeSequence(padding int) *SequenceDesc {
	var w streamWriter
	quats, vecs := testQuats(), testVecs()
	times := []float32{0, 4, 9}

	t0 := w.writeStream(encStream{format: FORMAT_FLOAT96_NOW, vecs: vecs[:3], times: times, numFrames: 10}, false)
	w.pad(padding)
	r0 := w.writeStream(encStream{format: FORMAT_FIXED48_NOW, rotation: true, quats: quats[:3], times: times, numFrames: 10}, false)
	r1 := w.writeStream(encStream{format: FORMAT_FIXED48_NOW, rotation: true, quats: quats[3:4], numFrames: 10}, false)

	return &SequenceDesc{
		Name:        "walk",
		NumFrames:   10,
		Rate:        30,
		KeyEncoding: KEY_VARIABLE_LERP,
		TransFormat: FORMAT_FLOAT96_NOW,
		RotFormat:   FORMAT_FIXED48_NOW,
		Offsets: []int32{
			int32(t0), 3, int32(r0), 3,
			OFFSET_NONE, 0, int32(r1), 1,
		},
		Stream: w.buf,
	}
}

func TestDecodeSequence(t *testing.T) {
	l, hook := testLogger()
	set := testSet()
	d := NewDecoder(config.GAME_UE3, l)

	seq, err := d.DecodeSequence(writeSequence(0), set)
	require.NoError(t, err)
	require.Len(t, seq.Tracks, 3)
	assert.Equal(t, 0, d.Holes())
	assert.Equal(t, 0, warnings(hook))

	root := seq.Tracks[0]
	assert.Equal(t, testVecs()[:3], root.KeyPos)
	assert.Equal(t, []float32{0, 4, 9}, root.KeyPosTime)
	require.Len(t, root.KeyQuat, 3)
	for i, q := range testQuats()[:3] {
		assert.True(t, quatNear(root.KeyQuat[i], q, 1e-4), "rot key %d", i)
	}

	spine := seq.Tracks[1]
	assert.Equal(t, []mgl32.Vec3{{0, 0, 2}}, spine.KeyPos, "missing stream takes the reference pose")
	require.Len(t, spine.KeyQuat, 1)
	assert.True(t, quatNear(spine.KeyQuat[0], testQuats()[3], 1e-5))

	head := seq.Tracks[2]
	assert.Equal(t, []mgl32.Vec3{{0, 0, 3}}, head.KeyPos, "track outside the offset table")
	assert.Equal(t, []mgl32.Quat{testQuats()[4]}, head.KeyQuat)
}

func TestDecodeSequenceHole(t *testing.T) {
	for _, tc := range []struct {
		game     config.Game
		warnings int
	}{
		{config.GAME_UE3, 1},
		{config.GAME_UE3_PADDED, 0},
	} {
		l, hook := testLogger()
		d := NewDecoder(tc.game, l)

		seq, err := d.DecodeSequence(writeSequence(8), testSet())
		require.NoError(t, err)
		assert.Equal(t, 1, d.Holes(), tc.game.String())
		assert.Equal(t, tc.warnings, warnings(hook), tc.game.String())
		assert.True(t, quatNear(seq.Tracks[0].KeyQuat[1], testQuats()[1], 1e-4), "decoding continues from the declared offset")
	}
}

func TestDecodeSequenceNoRefPose(t *testing.T) {
	set := NewAnimSet("bare", []string{"Root", "Spine", "Head"})
	seq, err := NewDecoder(config.GAME_UE3, nil).DecodeSequence(writeSequence(0), set)
	require.NoError(t, err)
	assert.Empty(t, seq.Tracks[1].KeyPos)
	assert.Empty(t, seq.Tracks[2].KeyQuat)

	bind := BonePose{Pos: mgl32.Vec3{5, 5, 5}, Quat: mgl32.QuatIdent()}
	assert.Equal(t, bind, seq.Tracks[2].Sample(3, 10, true, bind))
}

func TestDecodeSequencePerTrack(t *testing.T) {
	var w streamWriter
	vecs := []mgl32.Vec3{{1, 0, 3}, {2, 0, 4}}
	t0 := w.writeStream(encStream{format: FORMAT_FIXED48_NOW, mask: COMP_X | COMP_Z, vecs: vecs, times: []float32{0, 5}, numFrames: 6}, true)
	r0 := w.writeStream(encStream{format: FORMAT_IDENTITY, mask: COMP_ALL, rotation: true}, true)
	t1 := w.writeStream(encStream{format: FORMAT_FLOAT96_NOW, mask: COMP_Y, vecs: []mgl32.Vec3{{0, 7, 0}}}, true)

	desc := &SequenceDesc{
		Name:        "idle",
		NumFrames:   6,
		Rate:        15,
		KeyEncoding: KEY_PER_TRACK,
		Offsets:     []int32{int32(t0), int32(r0), int32(t1), OFFSET_NONE},
		Stream:      w.buf,
	}
	seq, err := NewDecoder(config.GAME_UE3, nil).DecodeSequence(desc, NewAnimSet("s", []string{"a", "b"}))
	require.NoError(t, err)

	require.Len(t, seq.Tracks[0].KeyPos, 2)
	for i := range vecs {
		assert.True(t, vecNear(seq.Tracks[0].KeyPos[i], vecs[i], 0.01))
	}
	assert.Equal(t, []float32{0, 5}, seq.Tracks[0].KeyPosTime)
	assert.Equal(t, []mgl32.Quat{mgl32.QuatIdent()}, seq.Tracks[0].KeyQuat)
	assert.Equal(t, []mgl32.Vec3{{0, 7, 0}}, seq.Tracks[1].KeyPos)
	assert.Empty(t, seq.Tracks[1].KeyQuat)
}

func TestDecodeSequenceFatal(t *testing.T) {
	set := testSet()
	d := NewDecoder(config.GAME_UE3, nil)

	desc := writeSequence(0)
	desc.RotFormat = 11
	_, err := d.DecodeSequence(desc, set)
	assert.True(t, errors.Is(err, ErrUnknownFormat), "%v", err)

	desc = writeSequence(0)
	desc.Offsets = desc.Offsets[:5]
	_, err = d.DecodeSequence(desc, set)
	assert.True(t, errors.Is(err, ErrBadOffsetTable), "%v", err)

	var w streamWriter
	w.u32(trackHeader{Format: 0xe, Mask: COMP_ALL, NumKeys: 2}.Pack())
	w.pad(32)
	_, err = d.DecodeSequence(&SequenceDesc{
		Name: "broken", NumFrames: 4, Rate: 30, KeyEncoding: KEY_PER_TRACK,
		Offsets: []int32{0, OFFSET_NONE}, Stream: w.buf,
	}, set)
	var de *DecodeError
	require.True(t, errors.As(err, &de), "%v", err)
	assert.Equal(t, "broken", de.Sequence)
	assert.Equal(t, 0, de.Bone)
	assert.Equal(t, 0, de.Offset)
	assert.True(t, errors.Is(err, ErrUnknownFormat))

	desc = writeSequence(0)
	desc.TransFormat = FORMAT_FIXED32_NOW
	_, err = d.DecodeSequence(desc, set)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat), "%v", err)
}

func TestDecodeSequenceNegatedRotation(t *testing.T) {
	desc := writeSequence(0)
	seq, err := NewDecoder(config.GAME_UE3_NEGQUAT, nil).DecodeSequence(desc, testSet())
	require.NoError(t, err)

	want := testQuats()[3]
	want.V = want.V.Mul(-1)
	assert.True(t, quatNear(seq.Tracks[1].KeyQuat[0], want, 1e-5))
}

func TestDecodeRaw(t *testing.T) {
	desc := &SequenceDesc{
		Name:      "raw",
		NumFrames: 31,
		Rate:      30,
		Raw: []RawTrack{{
			PosKeys: testVecs()[:3],
			RotKeys: testQuats()[:3],
			KeyTime: []float32{0, 0.5, 1},
		}},
	}
	seq, err := NewDecoder(config.GAME_UE2, nil).DecodeSequence(desc, testSet())
	require.NoError(t, err)

	assert.Equal(t, []float32{0, 15, 30}, seq.Tracks[0].KeyPosTime)
	assert.Equal(t, []float32{0, 15, 30}, seq.Tracks[0].KeyQuatTime)
	assert.Equal(t, []mgl32.Vec3{{0, 0, 2}}, seq.Tracks[1].KeyPos)

	desc.Raw[0].KeyTime = desc.Raw[0].KeyTime[:2]
	_, err = NewDecoder(config.GAME_UE2, nil).DecodeSequence(desc, testSet())
	assert.True(t, errors.Is(err, ErrBadKeyTimes), "%v", err)
}

func TestDecodeSequences(t *testing.T) {
	set := testSet()
	bad := writeSequence(0)
	bad.Name = "bad"
	bad.RotFormat = 12

	errs := set.DecodeSequences(NewDecoder(config.GAME_UE3, nil), []*SequenceDesc{writeSequence(0), bad})
	require.Len(t, errs, 1)
	assert.Equal(t, []string{"walk"}, set.SequenceNames())
	assert.Equal(t, 0, set.FindSequence("WALK"))
	assert.Equal(t, -1, set.FindSequence("bad"))
}
