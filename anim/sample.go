package anim

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/anim_inspector/utils"
)

func (t *AnimTrack) SamplePos(frame float32, numFrames int, loop bool, bind mgl32.Vec3) mgl32.Vec3 {
	switch len(t.KeyPos) {
	case 0:
		return bind
	case 1:
		return t.KeyPos[0]
	}
	x, y, frac := FindTimeKey(t.KeyPosTime, len(t.KeyPos), frame, numFrames, loop)
	if frac == 0 {
		return t.KeyPos[x]
	}
	return utils.LerpVec3(t.KeyPos[x], t.KeyPos[y], frac)
}

func (t *AnimTrack) SampleQuat(frame float32, numFrames int, loop bool, bind mgl32.Quat) mgl32.Quat {
	switch len(t.KeyQuat) {
	case 0:
		return bind
	case 1:
		return t.KeyQuat[0]
	}
	x, y, frac := FindTimeKey(t.KeyQuatTime, len(t.KeyQuat), frame, numFrames, loop)
	if frac == 0 {
		return t.KeyQuat[x]
	}
	return utils.SlerpQuat(t.KeyQuat[x], t.KeyQuat[y], frac)
}

// Sample evaluates both streams at frame. Streams without keys yield the bind
// pose values.
func (t *AnimTrack) Sample(frame float32, numFrames int, loop bool, bind BonePose) BonePose {
	return BonePose{
		Pos:  t.SamplePos(frame, numFrames, loop, bind.Pos),
		Quat: t.SampleQuat(frame, numFrames, loop, bind.Quat),
	}
}
