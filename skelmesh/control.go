package skelmesh

import (
	"fmt"

	"github.com/mogaika/anim_inspector/anim"
)

// channel panics on an index outside the fixed channel array; that is a
// caller bug, not an asset problem.
func (inst *SkelMeshInstance) channel(i int) *Channel {
	if i < 0 || i >= MAX_ANIM_CHANNELS {
		panic(fmt.Sprintf("animation channel %d out of range [0,%d)", i, MAX_ANIM_CHANNELS))
	}
	return &inst.channels[i]
}

func (inst *SkelMeshInstance) Channel(i int) Channel {
	return *inst.channel(i)
}

func (inst *SkelMeshInstance) findAnim(name string) int {
	if inst.animSet == nil || name == "" {
		return ANIM_NONE
	}
	return inst.animSet.FindSequence(name)
}

func (inst *SkelMeshInstance) sequence(i int) *anim.AnimSequence {
	if inst.animSet == nil {
		return nil
	}
	return inst.animSet.Sequence(i)
}

func (inst *SkelMeshInstance) PlayAnim(name string, rate, tweenTime float32, channel int) {
	inst.playAnim(name, rate, tweenTime, channel, false)
}

func (inst *SkelMeshInstance) LoopAnim(name string, rate, tweenTime float32, channel int) {
	inst.playAnim(name, rate, tweenTime, channel, true)
}

func (inst *SkelMeshInstance) playAnim(name string, rate, tweenTime float32, channel int, looped bool) {
	chn := inst.channel(channel)
	if channel > inst.maxAnimChannel {
		inst.maxAnimChannel = channel
	}

	newAnim := inst.findAnim(name)
	if newAnim == ANIM_NONE {
		if name != "" {
			inst.l.Warnf("Unknown animation %q on channel %d, showing bind pose", name, channel)
		}
		inst.resetChannel(chn)
		return
	}

	if newAnim == chn.Anim1 && looped && chn.Looped {
		// already looping this clip
		chn.Rate = rate
		return
	}

	if tweenTime > 0 {
		inst.snapshotTween(chn)
	}

	chn.Anim1 = newAnim
	chn.Anim2 = ANIM_NONE
	chn.SecondaryBlend = 0
	chn.Rate = rate
	chn.Looped = looped
	chn.Time = 0
	if chn.Reverse {
		if seq := inst.sequence(newAnim); seq != nil && seq.NumFrames > 0 {
			chn.Time = float32(seq.NumFrames - 1)
		}
	}
	chn.TweenTime = tweenTime
	chn.TweenDuration = tweenTime
	chn.TweenStep = 0
}

// snapshotTween stores the bone space pose currently shown for the channel's
// bones as the start of the tween.
func (inst *SkelMeshInstance) snapshotTween(chn *Channel) {
	first, last := inst.channelBones(chn)
	for i := first; i <= last; i++ {
		b := &inst.bones[i]
		b.TweenPos = b.Pos
		b.TweenQuat = b.Quat
	}
}

func (inst *SkelMeshInstance) channelBones(chn *Channel) (first, last int) {
	if len(inst.bones) == 0 {
		return 0, -1
	}
	root := chn.RootBone
	if root < 0 || root >= len(inst.bones) {
		root = 0
	}
	return root, root + inst.bones[root].SubtreeSize
}

func (inst *SkelMeshInstance) resetChannel(chn *Channel) {
	root, alpha := chn.RootBone, chn.BlendAlpha
	*chn = idleChannel()
	chn.RootBone, chn.BlendAlpha = root, alpha
}

func (inst *SkelMeshInstance) StopLooping(channel int) {
	inst.channel(channel).Looped = false
}

// FreezeAnimAt holds the channel on an explicit frame.
func (inst *SkelMeshInstance) FreezeAnimAt(frame float32, channel int) {
	chn := inst.channel(channel)
	chn.Time = frame
	chn.Rate = 0
	chn.Looped = false
	if seq := inst.sequence(chn.Anim1); seq != nil {
		chn.Time = clampFrame(frame, seq.NumFrames)
	}
}

func (inst *SkelMeshInstance) SetReverse(channel int, reverse bool) {
	inst.channel(channel).Reverse = reverse
}

// SetBlendParams restricts a channel to the subtree under boneName and sets
// its blend weight over lower channels. Channel 0 always spans the whole
// skeleton with full weight.
func (inst *SkelMeshInstance) SetBlendParams(channel int, blendAlpha float32, boneName string) {
	chn := inst.channel(channel)
	if channel > inst.maxAnimChannel {
		inst.maxAnimChannel = channel
	}
	if channel == 0 {
		blendAlpha = 1
	}
	chn.BlendAlpha = blendAlpha

	chn.RootBone = 0
	if boneName != "" && inst.mesh != nil && channel != 0 {
		if b := inst.mesh.Skeleton.FindBone(boneName); b >= 0 {
			chn.RootBone = b
		} else {
			inst.l.Warnf("Unknown blend root bone %q on channel %d", boneName, channel)
		}
	}
}

func (inst *SkelMeshInstance) SetBlendAlpha(channel int, blendAlpha float32) {
	if channel == 0 {
		blendAlpha = 1
	}
	inst.channel(channel).BlendAlpha = blendAlpha
}

// SetSecondaryAnim sets the clip the primary is blended toward. An empty or
// unknown name clears it.
func (inst *SkelMeshInstance) SetSecondaryAnim(channel int, name string) {
	chn := inst.channel(channel)
	chn.Anim2 = inst.findAnim(name)
	if chn.Anim2 == ANIM_NONE {
		if name != "" {
			inst.l.Warnf("Unknown secondary animation %q on channel %d", name, channel)
		}
		chn.SecondaryBlend = 0
	}
}

func (inst *SkelMeshInstance) SetSecondaryBlend(channel int, blend float32) {
	if blend < 0 {
		blend = 0
	} else if blend > 1 {
		blend = 1
	}
	inst.channel(channel).SecondaryBlend = blend
}

// ClearSkelAnims returns every channel to idle.
func (inst *SkelMeshInstance) ClearSkelAnims() {
	for i := range inst.channels {
		inst.channels[i] = idleChannel()
	}
	inst.maxAnimChannel = 0
}

func (inst *SkelMeshInstance) SetBoneScale(boneName string, scale float32) bool {
	if inst.mesh == nil {
		return false
	}
	b := inst.mesh.Skeleton.FindBone(boneName)
	if b < 0 {
		return false
	}
	inst.bones[b].Scale = scale
	return true
}

func (inst *SkelMeshInstance) AnimNames() []string {
	if inst.animSet == nil {
		return nil
	}
	return inst.animSet.SequenceNames()
}

func (inst *SkelMeshInstance) HasAnim(name string) bool {
	return inst.findAnim(name) != ANIM_NONE
}

// AnimParams reports the clip shown on a channel.
func (inst *SkelMeshInstance) AnimParams(channel int) (name string, frame float32, numFrames int, rate float32) {
	chn := inst.channel(channel)
	seq := inst.sequence(chn.Anim1)
	if seq == nil {
		return "", 0, 0, 0
	}
	return seq.Name, chn.Time, seq.NumFrames, chn.Rate * seq.Rate
}

func (inst *SkelMeshInstance) ChannelInfos() []ChannelInfo {
	infos := make([]ChannelInfo, 0, inst.maxAnimChannel+1)
	for i := 0; i <= inst.maxAnimChannel; i++ {
		chn := &inst.channels[i]
		info := ChannelInfo{
			Index:     i,
			State:     chn.State().String(),
			Frame:     chn.Time,
			Looped:    chn.Looped,
			Alpha:     chn.BlendAlpha,
			TweenStep: chn.TweenStep,
		}
		if i == 0 {
			info.Alpha = 1
		}
		info.Anim, _, info.NumFrames, info.Rate = inst.AnimParams(i)
		if seq := inst.sequence(chn.Anim2); seq != nil {
			info.Secondary = seq.Name
		}
		infos = append(infos, info)
	}
	return infos
}
