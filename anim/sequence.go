package anim

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/anim_inspector/config"
	"github.com/mogaika/anim_inspector/utils"
)

// SequenceDesc is what a package loader hands over for one clip.
//
// Offsets holds 4 values per track (transOffset, transKeys, rotOffset,
// rotKeys) for sequence wide formats and 2 values per track (transOffset,
// rotOffset) in per track mode. When both Stream and Offsets are empty the
// clip is read from Raw instead.
type SequenceDesc struct {
	Name        string
	NumFrames   int
	Rate        float32
	KeyEncoding KeyEncoding
	TransFormat CompressionFormat
	RotFormat   CompressionFormat
	Offsets     []int32
	Stream      []byte
	Raw         []RawTrack
}

func (desc *SequenceDesc) offsetStride() int {
	if desc.KeyEncoding == KEY_PER_TRACK {
		return 2
	}
	return 4
}

type Decoder struct {
	game   config.Game
	quirks config.Quirks
	l      *utils.Logger

	holes int
}

func NewDecoder(game config.Game, l *utils.Logger) *Decoder {
	return &Decoder{
		game:   game,
		quirks: game.Quirks(),
		l:      l.With("game", game.String()),
	}
}

// Holes reports how many streams so far did not end at the next declared
// offset.
func (d *Decoder) Holes() int {
	return d.holes
}

func (d *Decoder) DecodeSequence(desc *SequenceDesc, set *AnimSet) (*AnimSequence, error) {
	l := d.l.With("sequence", desc.Name)
	numTracks := set.NumTracks()

	seq := &AnimSequence{
		Name:      desc.Name,
		NumFrames: desc.NumFrames,
		Rate:      desc.Rate,
		Tracks:    make([]AnimTrack, numTracks),
	}
	if desc.NumFrames <= 0 {
		l.Warnf("Zero length sequence, will play as bind pose")
	}

	if len(desc.Stream) == 0 && len(desc.Offsets) == 0 {
		if err := d.decodeRaw(desc, set, seq); err != nil {
			return nil, err
		}
		return seq, nil
	}

	stride := desc.offsetStride()
	if len(desc.Offsets)%stride != 0 {
		return nil, decodeError(desc.Name, -1, -1,
			errors.Wrapf(ErrBadOffsetTable, "%d offsets with %d per track", len(desc.Offsets), stride))
	}
	if desc.KeyEncoding != KEY_PER_TRACK {
		if !desc.TransFormat.Valid() {
			return nil, decodeError(desc.Name, -1, -1, errors.Wrapf(ErrUnknownFormat, "translation code %d", desc.TransFormat))
		}
		if !desc.RotFormat.Valid() {
			return nil, decodeError(desc.Name, -1, -1, errors.Wrapf(ErrUnknownFormat, "rotation code %d", desc.RotFormat))
		}
	}

	tableTracks := len(desc.Offsets) / stride
	if tableTracks > numTracks {
		l.Warnf("Offset table has %d tracks, set has %d; extra ignored", tableTracks, numTracks)
		tableTracks = numTracks
	}

	root := utils.NewBufStack("sequence", desc.Stream).SetName(desc.Name)
	known := d.declaredOffsets(desc)

	for bone := 0; bone < numTracks; bone++ {
		track := &seq.Tracks[bone]
		if bone >= tableTracks {
			d.fillRef(set, bone, track, true, true)
			continue
		}

		var transOff, rotOff int
		var transKeys, rotKeys int
		if stride == 4 {
			o := desc.Offsets[bone*4:]
			transOff, transKeys, rotOff, rotKeys = int(o[0]), int(o[1]), int(o[2]), int(o[3])
		} else {
			o := desc.Offsets[bone*2:]
			transOff, rotOff = int(o[0]), int(o[1])
		}

		if transOff == OFFSET_NONE {
			d.fillRef(set, bone, track, true, false)
		} else {
			sk, err := d.decodeAt(root, desc, transOff, transKeys, false)
			if err != nil {
				return nil, decodeError(desc.Name, bone, transOff, err)
			}
			d.checkEnd(l, known, bone, transOff, sk.end)
			track.KeyPos, track.KeyPosTime = sk.vecs, sk.times
		}

		if rotOff == OFFSET_NONE {
			d.fillRef(set, bone, track, false, true)
		} else {
			sk, err := d.decodeAt(root, desc, rotOff, rotKeys, true)
			if err != nil {
				return nil, decodeError(desc.Name, bone, rotOff, err)
			}
			d.checkEnd(l, known, bone, rotOff, sk.end)
			track.KeyQuat, track.KeyQuatTime = d.fixQuats(sk.quats), sk.times
		}

		if err := track.Validate(); err != nil {
			return nil, decodeError(desc.Name, bone, -1, errors.Wrap(ErrBadKeyTimes, err.Error()))
		}
		l.Printf("bone %d: %d pos keys, %d rot keys", bone, len(track.KeyPos), len(track.KeyQuat))
	}

	return seq, nil
}

func (d *Decoder) decodeAt(root *utils.BufStack, desc *SequenceDesc, offset, numKeys int, rotation bool) (*streamKeys, error) {
	kind := "trans"
	if rotation {
		kind = "rot"
	}
	bs := root.SubBuf(kind, offset)
	if err := bs.Err(); err != nil {
		return nil, err
	}

	if desc.KeyEncoding == KEY_PER_TRACK {
		sk, _, err := decodePerTrackStream(bs, rotation, desc.NumFrames)
		return sk, err
	}

	format := desc.TransFormat
	if rotation {
		format = desc.RotFormat
	}
	return decodeStream(bs, streamParams{
		format:    format,
		mask:      COMP_ALL,
		numKeys:   numKeys,
		withTimes: desc.KeyEncoding == KEY_VARIABLE_LERP,
		numFrames: desc.NumFrames,
		rotation:  rotation,
	})
}

// declaredOffsets lists every stream start in ascending order, used to find
// where the previous stream was expected to end.
func (d *Decoder) declaredOffsets(desc *SequenceDesc) []int {
	stride := desc.offsetStride()
	var offs []int
	for i := 0; i+stride <= len(desc.Offsets); i += stride {
		offs = append(offs, int(desc.Offsets[i]))
		if stride == 4 {
			offs = append(offs, int(desc.Offsets[i+2]))
		} else {
			offs = append(offs, int(desc.Offsets[i+1]))
		}
	}
	sort.Ints(offs)
	uniq := make([]int, 0, len(offs))
	for i, o := range offs {
		if o == OFFSET_NONE || (i > 0 && offs[i-1] == o) {
			continue
		}
		uniq = append(uniq, o)
	}
	return uniq
}

func (d *Decoder) checkEnd(l *utils.Logger, known []int, bone, start, end int) {
	i := sort.SearchInts(known, start+1)
	if i >= len(known) {
		return
	}
	next := known[i]
	if next == end {
		return
	}
	d.holes++
	if !d.quirks.HolesExpected {
		l.Warnf("Bone %d stream at 0x%x ended at 0x%x, next stream declared at 0x%x", bone, start, end, next)
	}
}

func (d *Decoder) fillRef(set *AnimSet, bone int, track *AnimTrack, pos, rot bool) {
	ref, ok := set.refKey(bone)
	if !ok {
		return
	}
	if pos {
		track.KeyPos = []mgl32.Vec3{ref.Pos}
		track.KeyPosTime = nil
	}
	if rot {
		track.KeyQuat = []mgl32.Quat{ref.Quat}
		track.KeyQuatTime = nil
	}
}

func (d *Decoder) fixQuats(qs []mgl32.Quat) []mgl32.Quat {
	if d.quirks.NegatedRotation {
		for i := range qs {
			qs[i].V = qs[i].V.Mul(-1)
		}
	}
	return qs
}
