package pack

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/anim_inspector/anim"
	"github.com/mogaika/anim_inspector/config"
	"github.com/mogaika/anim_inspector/skelmesh"
)

func floatStream(fs ...float32) string {
	var buf []byte
	for _, f := range fs {
		b := math.Float32bits(f)
		buf = append(buf, byte(b), byte(b>>8), byte(b>>16), byte(b>>24))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

func skeletalYAML() string {
	rawName := base64.StdEncoding.EncodeToString([]byte("Bip01 \xc4\x00junk"))
	return fmt.Sprintf(`
name: soldier
skeleton:
  bones:
    - name: Root
    - raw_name: %s
      parent: 0
      pos: [0, 0, 1]
      quat: [0, 0, 0, 1]
lods:
  - vertices:
      - pos: [0, 0, 0]
        bones: [0]
        weights: [1]
      - pos: [0, 0, 1]
        bones: [0, 1]
        weights: [0.5, 0.5]
      - pos: [0, 1, 1]
        bones: [1]
        weights: [1]
    indices: [0, 1, 2]
anim_set:
  name: soldier_anims
  bones: [root, "Bip01 Ä"]
  sequences:
    - name: step
      frames: 1
      rate: 30
      key_encoding: constant
      trans_format: float96
      rot_format: identity
      offsets: [0, 1, 0, 1]
      stream: %s
    - name: sway
      frames: 3
      rate: 30
      raw:
        - pos: [[0, 0, 0], [1, 0, 0], [2, 0, 0]]
          rot: [[0, 0, 0, 1]]
          times: [0, 0.03333, 0.06667]
    - name: broken
      frames: 2
      rate: 30
      trans_format: float96
      rot_format: 13
      offsets: [0, 1, 0, 1]
      stream: %s
`, rawName, floatStream(1, 2, 3), floatStream(1, 2, 3))
}

func TestLoadSkeletalAsset(t *testing.T) {
	cfg := config.Default()
	a, err := CallHandler("soldier.yaml", strings.NewReader(skeletalYAML()), cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, "soldier", a.Name)
	assert.Equal(t, skelmesh.MESH_SKELETAL, a.Kind)
	assert.Equal(t, config.GAME_UE3, a.Game)
	require.Len(t, a.Skeleton.Bones, 2)
	assert.Equal(t, "Bip01 Ä", a.Skeleton.Bones[1].Name)
	assert.Equal(t, -1, a.Skeleton.Bones[0].Parent)
	assert.Equal(t, mgl32.QuatIdent(), a.Skeleton.Bones[0].Quat)
	require.Len(t, a.Lods, 1)
	assert.Equal(t, 2, a.Lods[0].Vertices[1].Influences())
	require.Len(t, a.Sequences, 3)
	assert.Equal(t, anim.FORMAT_IDENTITY, a.Sequences[0].RotFormat)
	assert.Equal(t, anim.CompressionFormat(13), a.Sequences[2].RotFormat)

	inst, errs, err := a.NewInstance(cfg, nil)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	var de *anim.DecodeError
	require.True(t, errors.As(errs[0], &de))
	assert.Equal(t, "broken", de.Sequence)

	sm := inst.(*skelmesh.SkelMeshInstance)
	assert.Equal(t, []string{"step", "sway"}, sm.AnimNames())
	assert.Equal(t, 1, sm.Bones()[1].Track)

	sm.PlayAnim("step", 1, 0, 0)
	sm.UpdateAnimation(0)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, sm.Bones()[0].Pos)

	seq := a.AnimSet.Sequence(a.AnimSet.FindSequence("sway"))
	require.NotNil(t, seq)
	assert.InDeltaSlice(t, []float32{0, 1, 2}, seq.Tracks[0].KeyPosTime, 1e-3)
	assert.Empty(t, seq.Tracks[1].KeyPos)

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, a))
	out := buf.String()
	assert.Contains(t, out, "name: soldier\n")
	assert.Contains(t, out, "- name: sway")
	assert.Contains(t, out, "bind_tracks: 1")
	assert.Contains(t, out, "# 1 parent 0 hash 0x")

	buf.Reset()
	require.NoError(t, DumpSequence(&buf, a, "STEP"))
	assert.Contains(t, buf.String(), `track 0 "root"`)
	assert.Error(t, DumpSequence(&buf, a, "broken"))
}

func TestLoadVertexAsset(t *testing.T) {
	a, err := CallHandler("flag.yml", strings.NewReader(`
lods:
  - vertices:
      - pos: [0, 0, 0]
vertex_anim:
  frames: [[[0, 0, 0]], [[0, 1, 0]]]
  clips:
    - name: wave
      first: 0
      frames: 2
      rate: 10
`), config.Default(), nil)
	require.NoError(t, err)
	assert.Equal(t, "flag", a.Name)
	assert.Equal(t, skelmesh.MESH_VERTEX, a.Kind)

	inst, errs, err := a.NewInstance(config.Default(), nil)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, skelmesh.MESH_VERTEX, inst.Kind())
}

func TestLoadStaticJSON(t *testing.T) {
	a, err := CallHandler("rock.json", strings.NewReader(`{"name": "rock", "lods": [{"vertices": [{"pos": [1, 2, 3]}], "indices": [0]}]}`), config.Default(), nil)
	require.NoError(t, err)
	assert.Equal(t, skelmesh.MESH_STATIC, a.Kind)

	inst, _, err := a.NewInstance(config.Default(), nil)
	require.NoError(t, err)
	out, err := inst.Skin(0)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, out[0].Pos)
}

func TestLoadErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
	}{
		{"unknown kind", "kind: hologram\n"},
		{"skeletal without skeleton", "kind: skeletal\n"},
		{"bad parent", "skeleton:\n  bones:\n    - name: a\n    - name: b\n      parent: 1\n"},
		{"bad index", "lods:\n  - vertices: [{pos: [0, 0, 0]}]\n    indices: [0, 1]\n"},
		{"too many influences", "lods:\n  - vertices: [{bones: [0, 0, 0, 0, 0], weights: [1, 1, 1, 1, 1]}]\n"},
		{"unknown format name", "anim_set:\n  sequences:\n    - name: x\n      rot_format: float128\n"},
		{"unknown key encoding", "anim_set:\n  sequences:\n    - name: x\n      key_encoding: sometimes\n"},
		{"bad stream", "anim_set:\n  sequences:\n    - name: x\n      stream: '!!!'\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CallHandler("x.yaml", strings.NewReader(tc.src), config.Default(), nil)
			assert.Error(t, err)
		})
	}

	_, err := CallHandler("x.wad", strings.NewReader(""), config.Default(), nil)
	assert.Error(t, err)
}
