package skelmesh

import (
	"math"

	"github.com/mogaika/anim_inspector/anim"
	"github.com/mogaika/anim_inspector/skeleton"
	"github.com/mogaika/anim_inspector/utils"
)

func clampFrame(frame float32, numFrames int) float32 {
	if frame < 0 {
		return 0
	}
	if last := float32(numFrames - 1); frame > last {
		if last < 0 {
			return 0
		}
		return last
	}
	return frame
}

func wrapFrame(frame float32, numFrames int) float32 {
	n := float32(numFrames)
	frame = float32(math.Mod(float64(frame), float64(n)))
	if frame < 0 {
		frame += n
	}
	if frame >= n {
		frame = 0
	}
	return frame
}

// channelRate is the frames per second a channel advances, blending the
// native rates of both clips when a secondary is active.
func channelRate(chn *Channel, seq1, seq2 *anim.AnimSequence) float32 {
	rate := chn.Rate * seq1.Rate
	if seq2 != nil && chn.SecondaryBlend > 0 && seq2.NumFrames > 0 {
		rate2 := chn.Rate * seq2.Rate * float32(seq1.NumFrames) / float32(seq2.NumFrames)
		rate = utils.Lerp(rate, rate2, chn.SecondaryBlend)
	}
	return rate
}

// UpdateAnimation advances every channel by dt seconds and recomposes the pose.
func (inst *SkelMeshInstance) UpdateAnimation(dt float32) {
	for i := 0; i <= inst.maxAnimChannel; i++ {
		inst.advanceChannel(&inst.channels[i], dt)
	}
	inst.UpdateSkeleton()
}

func (inst *SkelMeshInstance) advanceChannel(chn *Channel, dt float32) {
	seq1 := inst.sequence(chn.Anim1)
	if seq1 == nil {
		return
	}

	if chn.TweenTime > 0 {
		chn.TweenTime -= dt
		if chn.TweenTime > 0 {
			chn.TweenStep = 1 - chn.TweenTime/chn.TweenDuration
			return
		}
		dt = -chn.TweenTime
		chn.TweenTime = 0
		chn.TweenStep = 1
	}

	if seq1.NumFrames <= 0 {
		chn.Time = 0
		return
	}

	advance := dt * channelRate(chn, seq1, inst.sequence(chn.Anim2))
	if chn.Reverse {
		advance = -advance
	}
	chn.Time += advance
	if chn.Looped {
		chn.Time = wrapFrame(chn.Time, seq1.NumFrames)
	} else {
		chn.Time = clampFrame(chn.Time, seq1.NumFrames)
	}
}

func (inst *SkelMeshInstance) bindPose(i int) anim.BonePose {
	b := &inst.mesh.Skeleton.Bones[i]
	return anim.BonePose{Pos: b.Pos, Quat: b.Quat}
}

// assignFirstChannels records per bone the highest stage that replaces the
// bone's pose completely. Lower stages skip such bones.
func (inst *SkelMeshInstance) assignFirstChannels() {
	for i := range inst.bones {
		inst.bones[i].FirstChannel = 0
	}
	for stage := 1; stage <= inst.maxAnimChannel; stage++ {
		chn := &inst.channels[stage]
		if chn.Anim1 == ANIM_NONE || chn.BlendAlpha < 1 {
			continue
		}
		first, last := inst.channelBones(chn)
		for i := first; i <= last; i++ {
			inst.bones[i].FirstChannel = stage
		}
	}
}

// UpdateSkeleton blends the channels at their current times into bone space
// poses and composes model space frames. Channels are applied from stage 0
// up, later stages overriding or blending over earlier ones.
func (inst *SkelMeshInstance) UpdateSkeleton() {
	if inst.mesh == nil {
		return
	}
	inst.assignFirstChannels()

	for stage := 0; stage <= inst.maxAnimChannel; stage++ {
		chn := &inst.channels[stage]
		if stage > 0 && (chn.Anim1 == ANIM_NONE || chn.BlendAlpha <= 0) {
			continue
		}

		alpha := chn.BlendAlpha
		first, last := inst.channelBones(chn)
		if stage == 0 {
			alpha = 1
			first, last = 0, len(inst.bones)-1
		}

		seq1 := inst.sequence(chn.Anim1)
		if seq1 != nil && seq1.NumFrames <= 0 {
			seq1 = nil
		}
		var seq2 *anim.AnimSequence
		var frame2 float32
		if seq1 != nil && chn.SecondaryBlend > 0 {
			if seq2 = inst.sequence(chn.Anim2); seq2 != nil && seq2.NumFrames > 0 {
				frame2 = chn.Time * float32(seq2.NumFrames) / float32(seq1.NumFrames)
			} else {
				seq2 = nil
			}
		}

		for i := first; i <= last; i++ {
			b := &inst.bones[i]
			if b.FirstChannel > stage {
				// whole subtree belongs to a later stage
				i += b.SubtreeSize
				continue
			}

			bind := inst.bindPose(i)
			pose := bind
			if seq1 != nil && b.Track != skeleton.TRACK_NONE {
				pose = seq1.Tracks[b.Track].Sample(chn.Time, seq1.NumFrames, chn.Looped, bind)
				if seq2 != nil {
					p2 := seq2.Tracks[b.Track].Sample(frame2, seq2.NumFrames, chn.Looped, bind)
					pose.Pos = utils.LerpVec3(pose.Pos, p2.Pos, chn.SecondaryBlend)
					pose.Quat = utils.SlerpQuat(pose.Quat, p2.Quat, chn.SecondaryBlend)
				}
				if i > 0 && !inst.animSet.AnimateTranslation(b.Track) {
					pose.Pos = bind.Pos
				}
			}

			if chn.TweenTime > 0 {
				pose.Pos = utils.LerpVec3(b.TweenPos, pose.Pos, chn.TweenStep)
				pose.Quat = utils.SlerpQuat(b.TweenQuat, pose.Quat, chn.TweenStep)
			}

			if alpha >= 1 {
				b.Pos, b.Quat = pose.Pos, pose.Quat
			} else {
				b.Pos = utils.LerpVec3(b.Pos, pose.Pos, alpha)
				b.Quat = utils.SlerpQuat(b.Quat, pose.Quat, alpha)
			}
		}
	}

	ComposePose(inst.mesh.Skeleton, inst.bones)
}
