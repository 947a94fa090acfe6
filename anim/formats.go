package anim

import "fmt"

type CompressionFormat uint8

const (
	FORMAT_NONE                 CompressionFormat = 0
	FORMAT_FLOAT96_NOW          CompressionFormat = 1
	FORMAT_FIXED48_NOW          CompressionFormat = 2
	FORMAT_INTERVAL_FIXED32_NOW CompressionFormat = 3
	FORMAT_FIXED32_NOW          CompressionFormat = 4
	FORMAT_IDENTITY             CompressionFormat = 5
	FORMAT_FLOAT48_NOW          CompressionFormat = 6
)

const formatCount = 7

var formatNames = [formatCount]string{
	"none", "float96", "fixed48", "intervalfixed32", "fixed32", "identity", "float48",
}

func (f CompressionFormat) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("format(%d)", uint8(f))
}

func (f CompressionFormat) Valid() bool {
	return int(f) < formatCount
}

func ParseCompressionFormat(s string) (CompressionFormat, error) {
	for i, n := range formatNames {
		if n == s {
			return CompressionFormat(i), nil
		}
	}
	return 0, fmt.Errorf("unknown compression format %q", s)
}

type KeyEncoding uint8

const (
	// keys evenly spaced across the clip
	KEY_CONSTANT_LERP KeyEncoding = iota
	// explicit time array follows each stream with more than one key
	KEY_VARIABLE_LERP
	// every stream carries its own packed header
	KEY_PER_TRACK
)

func (k KeyEncoding) String() string {
	switch k {
	case KEY_CONSTANT_LERP:
		return "constant"
	case KEY_VARIABLE_LERP:
		return "variable"
	case KEY_PER_TRACK:
		return "pertrack"
	}
	return fmt.Sprintf("keyencoding(%d)", uint8(k))
}

func ParseKeyEncoding(s string) (KeyEncoding, error) {
	for _, k := range []KeyEncoding{KEY_CONSTANT_LERP, KEY_VARIABLE_LERP, KEY_PER_TRACK} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown key encoding %q", s)
}

// OFFSET_NONE marks a stream absent from the offset table.
const OFFSET_NONE = -1

const (
	fixed48Half     = 32767
	fixed48VecScale = 128.0

	fixed32XYBits = 11
	fixed32ZBits  = 10
)
