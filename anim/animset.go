package anim

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/anim_inspector/utils"
)

type BonePose struct {
	Pos  mgl32.Vec3
	Quat mgl32.Quat
}

// AnimSet bundles sequences that share one ordered track list. Track i of
// every sequence animates the bone named TrackBoneNames[i].
type AnimSet struct {
	Name           string
	TrackBoneNames []string
	Sequences      []*AnimSequence

	AnimRotationOnly              bool
	UseTranslationBoneNames       []string
	ForceMeshTranslationBoneNames []string

	// Optional. Streams missing from a sequence take their single key from here.
	RefPose []BonePose

	animateTranslation   []bool
	forceMeshTranslation []bool
	nameIndex            map[uint32][]int
}

func NewAnimSet(name string, boneNames []string) *AnimSet {
	s := &AnimSet{
		Name:           name,
		TrackBoneNames: boneNames,
	}
	s.derive()
	return s
}

// SetTranslationPolicy decides per track whether translation comes from the
// animation or from the mesh bind pose.
func (s *AnimSet) SetTranslationPolicy(rotationOnly bool, useTranslation, forceMeshTranslation []string) {
	s.AnimRotationOnly = rotationOnly
	s.UseTranslationBoneNames = useTranslation
	s.ForceMeshTranslationBoneNames = forceMeshTranslation
	s.derive()
}

func containsFold(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

func (s *AnimSet) derive() {
	s.animateTranslation = make([]bool, len(s.TrackBoneNames))
	s.forceMeshTranslation = make([]bool, len(s.TrackBoneNames))
	s.nameIndex = make(map[uint32][]int, len(s.TrackBoneNames))

	for i, name := range s.TrackBoneNames {
		h := utils.BoneNameHash(name)
		s.nameIndex[h] = append(s.nameIndex[h], i)

		s.animateTranslation[i] = !s.AnimRotationOnly || containsFold(s.UseTranslationBoneNames, name)
		if containsFold(s.ForceMeshTranslationBoneNames, name) {
			s.forceMeshTranslation[i] = true
			s.animateTranslation[i] = false
		}
	}
}

func (s *AnimSet) NumTracks() int {
	return len(s.TrackBoneNames)
}

// TrackIndex finds the track animating boneName, ignoring case. Returns -1
// when the set has no such track.
func (s *AnimSet) TrackIndex(boneName string) int {
	for _, i := range s.nameIndex[utils.BoneNameHash(boneName)] {
		if strings.EqualFold(s.TrackBoneNames[i], boneName) {
			return i
		}
	}
	return -1
}

func (s *AnimSet) AnimateTranslation(track int) bool {
	return track >= 0 && track < len(s.animateTranslation) && s.animateTranslation[track]
}

func (s *AnimSet) ForceMeshTranslation(track int) bool {
	return track >= 0 && track < len(s.forceMeshTranslation) && s.forceMeshTranslation[track]
}

func (s *AnimSet) refKey(track int) (BonePose, bool) {
	if track >= 0 && track < len(s.RefPose) {
		return s.RefPose[track], true
	}
	return BonePose{}, false
}

// FindSequence returns the index of the sequence called name, or -1.
func (s *AnimSet) FindSequence(name string) int {
	for i, seq := range s.Sequences {
		if strings.EqualFold(seq.Name, name) {
			return i
		}
	}
	return -1
}

func (s *AnimSet) Sequence(i int) *AnimSequence {
	if i < 0 || i >= len(s.Sequences) {
		return nil
	}
	return s.Sequences[i]
}

func (s *AnimSet) SequenceNames() []string {
	names := make([]string, len(s.Sequences))
	for i, seq := range s.Sequences {
		names[i] = seq.Name
	}
	return names
}

// DecodeSequences decodes every description and appends the result. Failed
// sequences are skipped; their errors are returned in description order.
func (s *AnimSet) DecodeSequences(d *Decoder, descs []*SequenceDesc) []error {
	var errs []error
	for _, desc := range descs {
		seq, err := d.DecodeSequence(desc, s)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s.Sequences = append(s.Sequences, seq)
	}
	return errs
}
