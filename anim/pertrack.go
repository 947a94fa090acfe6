package anim

import (
	"github.com/mogaika/anim_inspector/utils"
)

// trackHeader is the packed u32 that opens every stream in per track mode:
// format in bits 28-31, component mask in 24-27, key count in 0-23.
type trackHeader struct {
	Format  CompressionFormat
	Mask    uint8
	NumKeys int
}

func parseTrackHeader(h uint32) trackHeader {
	return trackHeader{
		Format:  CompressionFormat(h >> 28),
		Mask:    uint8((h >> 24) & 0xf),
		NumKeys: int(h & 0xffffff),
	}
}

func (h trackHeader) Pack() uint32 {
	return uint32(h.Format)<<28 | uint32(h.Mask&0xf)<<24 | uint32(h.NumKeys)&0xffffff
}

func (h trackHeader) HasTimes() bool {
	return h.Mask&COMP_TIME != 0
}

func isComponentWise(f CompressionFormat) bool {
	switch f {
	case FORMAT_FLOAT96_NOW, FORMAT_FIXED48_NOW, FORMAT_FLOAT48_NOW, FORMAT_INTERVAL_FIXED32_NOW:
		return true
	}
	return false
}

func decodePerTrackStream(bs *utils.BufStack, rotation bool, numFrames int) (*streamKeys, trackHeader, error) {
	h := parseTrackHeader(bs.ReadLU32())
	if err := bs.Err(); err != nil {
		return nil, h, err
	}

	format := h.Format
	mask := h.Mask & COMP_ALL
	if mask == 0 {
		mask = COMP_ALL
		if isComponentWise(format) {
			format = FORMAT_FLOAT96_NOW
		}
	}

	sk, err := decodeStream(bs, streamParams{
		format:    format,
		mask:      mask,
		numKeys:   h.NumKeys,
		withTimes: h.HasTimes(),
		numFrames: numFrames,
		rotation:  rotation,
		perTrack:  true,
	})
	return sk, h, err
}
