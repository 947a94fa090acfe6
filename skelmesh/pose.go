package skelmesh

import (
	"github.com/mogaika/anim_inspector/skeleton"
)

// ComposePose turns the bone space poses of bones into model space frames
// and skin transforms. Parents precede children, so one forward pass is
// enough.
func ComposePose(sk *skeleton.Skeleton, bones []skeleton.RuntimeBone) {
	for i := range bones {
		b := &bones[i]
		local := skeleton.LocalCoords(i, b.Pos, b.Quat)
		if i == 0 {
			b.Coords = sk.Base.Concat(local)
		} else {
			b.Coords = bones[sk.Bones[i].Parent].Coords.Concat(local)
		}
		if b.Scale != 1 {
			b.Coords = b.Coords.ScaleAxes(b.Scale)
		}
		b.Transform = b.Coords.Concat(b.RefCoordsInv)
	}
}
