package skelmesh

import "fmt"

const MAX_ANIM_CHANNELS = 32

const ANIM_NONE = -1

type ChannelState int

const (
	STATE_IDLE ChannelState = iota
	STATE_PLAYING
	STATE_PLAYING_BLENDED
	STATE_TWEENING
)

func (s ChannelState) String() string {
	switch s {
	case STATE_IDLE:
		return "idle"
	case STATE_PLAYING:
		return "playing"
	case STATE_PLAYING_BLENDED:
		return "blended"
	case STATE_TWEENING:
		return "tweening"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Channel is one independently clocked animation slot. Time is in frames of
// the primary sequence.
type Channel struct {
	Anim1 int
	Anim2 int

	Time    float32
	Rate    float32
	Looped  bool
	Reverse bool

	RootBone       int
	BlendAlpha     float32
	SecondaryBlend float32

	// seconds left; the channel clock is held while tweening
	TweenTime     float32
	TweenDuration float32
	TweenStep     float32
}

func idleChannel() Channel {
	return Channel{
		Anim1:      ANIM_NONE,
		Anim2:      ANIM_NONE,
		Rate:       1,
		BlendAlpha: 1,
	}
}

func (c Channel) State() ChannelState {
	switch {
	case c.Anim1 == ANIM_NONE:
		return STATE_IDLE
	case c.TweenTime > 0:
		return STATE_TWEENING
	case c.Anim2 != ANIM_NONE && c.SecondaryBlend > 0:
		return STATE_PLAYING_BLENDED
	}
	return STATE_PLAYING
}

// ChannelInfo is the read only view of a channel for displays.
type ChannelInfo struct {
	Index     int     `json:"index" yaml:"index"`
	State     string  `json:"state" yaml:"state"`
	Anim      string  `json:"anim" yaml:"anim"`
	Secondary string  `json:"secondary,omitempty" yaml:"secondary,omitempty"`
	Frame     float32 `json:"frame" yaml:"frame"`
	NumFrames int     `json:"num_frames" yaml:"num_frames"`
	Rate      float32 `json:"rate" yaml:"rate"`
	Looped    bool    `json:"looped" yaml:"looped"`
	Alpha     float32 `json:"alpha" yaml:"alpha"`
	TweenStep float32 `json:"tween_step" yaml:"tween_step"`
}
