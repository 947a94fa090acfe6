package skeleton

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/anim_inspector/anim"
)

const TRACK_NONE = -1

// RuntimeBone is the per instance state derived for one bone.
type RuntimeBone struct {
	RefCoords    Coords
	RefCoordsInv Coords
	SubtreeSize  int
	Track        int
	Scale        float32

	// bone space pose produced by the last update
	Pos  mgl32.Vec3
	Quat mgl32.Quat

	Coords    Coords
	Transform Coords

	TweenPos  mgl32.Vec3
	TweenQuat mgl32.Quat

	// lowest channel stage that owns this bone entirely
	FirstChannel int
}

// NewRuntimeBones validates sk and builds its runtime table in bind pose.
// Tracks stay unmapped until MapTracks is called.
func NewRuntimeBones(sk *Skeleton) ([]RuntimeBone, error) {
	if err := sk.Validate(); err != nil {
		return nil, err
	}

	ref := sk.BindPoseCoords()
	sizes := sk.SubtreeSizes()
	bones := make([]RuntimeBone, len(sk.Bones))
	for i := range bones {
		b := &bones[i]
		b.RefCoords = ref[i]
		b.RefCoordsInv = ref[i].Inverse()
		b.SubtreeSize = sizes[i]
		b.Track = TRACK_NONE
		b.Scale = 1
		b.Pos = sk.Bones[i].Pos
		b.Quat = sk.Bones[i].Quat
		b.Coords = ref[i]
		b.Transform = IdentityCoords()
		b.TweenPos = b.Pos
		b.TweenQuat = b.Quat
	}
	return bones, nil
}

// MapTracks links every bone to the track of set animating a bone of the same
// name, ignoring case. Bones without a track keep their bind pose.
func MapTracks(sk *Skeleton, set *anim.AnimSet, bones []RuntimeBone) error {
	if len(bones) != len(sk.Bones) {
		return &BindError{Skeleton: sk.Name, AnimSet: set.Name, Bone: -1,
			Err: errors.Errorf("runtime table has %d bones, skeleton %d", len(bones), len(sk.Bones))}
	}
	for _, seq := range set.Sequences {
		if len(seq.Tracks) != set.NumTracks() {
			return &BindError{Skeleton: sk.Name, AnimSet: set.Name, Sequence: seq.Name, Bone: -1,
				Err: errors.Wrapf(ErrBoneCountMismatch, "%d tracks, set has %d bones", len(seq.Tracks), set.NumTracks())}
		}
	}
	for i := range bones {
		bones[i].Track = set.TrackIndex(sk.Bones[i].Name)
	}
	return nil
}

func UnmapTracks(bones []RuntimeBone) {
	for i := range bones {
		bones[i].Track = TRACK_NONE
	}
}
