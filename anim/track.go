package anim

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// AnimTrack is the motion curve of one bone inside one sequence.
// Times are expressed in frames. A nil time slice means the keys are
// evenly spaced across the clip.
type AnimTrack struct {
	KeyQuat     []mgl32.Quat
	KeyPos      []mgl32.Vec3
	KeyQuatTime []float32
	KeyPosTime  []float32
}

func (t *AnimTrack) HasKeys() bool {
	return len(t.KeyQuat) != 0 || len(t.KeyPos) != 0
}

// Validate checks that key counts agree with explicit time arrays.
func (t *AnimTrack) Validate() error {
	if t.KeyQuatTime != nil && len(t.KeyQuat) > 1 && len(t.KeyQuatTime) != len(t.KeyQuat) {
		return errors.Errorf("%d rotation keys with %d times", len(t.KeyQuat), len(t.KeyQuatTime))
	}
	if t.KeyPosTime != nil && len(t.KeyPos) > 1 && len(t.KeyPosTime) != len(t.KeyPos) {
		return errors.Errorf("%d position keys with %d times", len(t.KeyPos), len(t.KeyPosTime))
	}
	return nil
}

// AnimSequence is a named clip. Rate is in frames per second.
type AnimSequence struct {
	Name      string
	NumFrames int
	Rate      float32
	Tracks    []AnimTrack
}

func (s *AnimSequence) Duration() float32 {
	if s.Rate <= 0 {
		return 0
	}
	return float32(s.NumFrames) / s.Rate
}
