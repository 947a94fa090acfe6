package skeleton

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/anim_inspector/utils"
)

const BONE_PARENT_NONE = -1

var (
	ErrNoBones           = errors.New("skeleton has no bones")
	ErrBadParent         = errors.New("bone parent out of order")
	ErrBoneCountMismatch = errors.New("track count does not match anim set")
)

// Bone is a joint in bind pose, relative to its parent.
type Bone struct {
	Name   string
	Parent int
	Pos    mgl32.Vec3
	Quat   mgl32.Quat
}

// Skeleton bones are sorted so that every parent precedes its children.
type Skeleton struct {
	Name  string
	Bones []Bone
	// Base places the root bone in model space.
	Base Coords
}

func New(name string, bones []Bone) *Skeleton {
	return &Skeleton{Name: name, Bones: bones, Base: IdentityCoords()}
}

type BindError struct {
	Skeleton string
	AnimSet  string
	Sequence string
	Bone     int
	Err      error
}

func (e *BindError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "skeleton %q", e.Skeleton)
	if e.AnimSet != "" {
		fmt.Fprintf(&sb, " anim set %q", e.AnimSet)
	}
	if e.Sequence != "" {
		fmt.Fprintf(&sb, " sequence %q", e.Sequence)
	}
	if e.Bone >= 0 {
		fmt.Fprintf(&sb, " bone %d", e.Bone)
	}
	return sb.String() + ": " + e.Err.Error()
}

func (e *BindError) Unwrap() error { return e.Err }
func (e *BindError) Cause() error  { return e.Err }

// Validate checks the parent-before-child ordering.
func (s *Skeleton) Validate() error {
	if len(s.Bones) == 0 {
		return &BindError{Skeleton: s.Name, Bone: -1, Err: ErrNoBones}
	}
	if p := s.Bones[0].Parent; p != BONE_PARENT_NONE {
		return &BindError{Skeleton: s.Name, Bone: 0, Err: errors.Wrapf(ErrBadParent, "root has parent %d", p)}
	}
	for i := 1; i < len(s.Bones); i++ {
		if p := s.Bones[i].Parent; p < 0 || p >= i {
			return &BindError{Skeleton: s.Name, Bone: i,
				Err: errors.Wrapf(ErrBadParent, "%q has parent %d", s.Bones[i].Name, p)}
		}
	}
	return nil
}

// SubtreeSizes returns, per bone, the number of descendants. Descendants of
// bone i occupy indices i+1 .. i+size.
func (s *Skeleton) SubtreeSizes() []int {
	sizes := make([]int, len(s.Bones))
	for i := len(s.Bones) - 1; i > 0; i-- {
		sizes[s.Bones[i].Parent] += sizes[i] + 1
	}
	return sizes
}

func (s *Skeleton) FindBone(name string) int {
	h := utils.BoneNameHash(name)
	for i := range s.Bones {
		if utils.BoneNameHash(s.Bones[i].Name) == h && strings.EqualFold(s.Bones[i].Name, name) {
			return i
		}
	}
	return -1
}

// LocalQuat is the bone space orientation of bone i in the frame convention
// used for composition: the root orientation is conjugated.
func LocalQuat(i int, q mgl32.Quat) mgl32.Quat {
	if i == 0 {
		return utils.Conjugate(q)
	}
	return q
}

// LocalCoords builds the bone space frame of bone i from a pose.
func LocalCoords(i int, pos mgl32.Vec3, q mgl32.Quat) Coords {
	return CoordsFromPose(pos, LocalQuat(i, q))
}

// BindPoseCoords walks the hierarchy once and returns model space bind frames.
func (s *Skeleton) BindPoseCoords() []Coords {
	coords := make([]Coords, len(s.Bones))
	for i := range s.Bones {
		b := &s.Bones[i]
		local := LocalCoords(i, b.Pos, b.Quat)
		if i == 0 {
			coords[i] = s.Base.Concat(local)
		} else {
			coords[i] = coords[b.Parent].Concat(local)
		}
	}
	return coords
}
