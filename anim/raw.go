package anim

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// RawTrack is an uncompressed keyframe array. KeyTime is in seconds and may be
// empty for evenly spaced keys.
type RawTrack struct {
	PosKeys []mgl32.Vec3
	RotKeys []mgl32.Quat
	KeyTime []float32
}

func (d *Decoder) decodeRaw(desc *SequenceDesc, set *AnimSet, seq *AnimSequence) error {
	for bone := range seq.Tracks {
		track := &seq.Tracks[bone]
		if bone >= len(desc.Raw) {
			d.fillRef(set, bone, track, true, true)
			continue
		}
		raw := &desc.Raw[bone]

		var times []float32
		if len(raw.KeyTime) != 0 {
			times = make([]float32, len(raw.KeyTime))
			for i, t := range raw.KeyTime {
				times[i] = t * desc.Rate
			}
		}

		track.KeyPos = append([]mgl32.Vec3(nil), raw.PosKeys...)
		track.KeyQuat = d.fixQuats(append([]mgl32.Quat(nil), raw.RotKeys...))
		if len(track.KeyPos) > 1 {
			track.KeyPosTime = times
		}
		if len(track.KeyQuat) > 1 {
			track.KeyQuatTime = times
		}
		if len(track.KeyPos) == 0 {
			d.fillRef(set, bone, track, true, false)
		}
		if len(track.KeyQuat) == 0 {
			d.fillRef(set, bone, track, false, true)
		}

		if err := track.Validate(); err != nil {
			return decodeError(desc.Name, bone, -1, errors.Wrap(ErrBadKeyTimes, err.Error()))
		}
	}
	return nil
}
