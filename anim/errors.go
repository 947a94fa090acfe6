package anim

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrUnknownFormat     = errors.New("unknown compression format")
	ErrUnsupportedFormat = errors.New("compression format not supported for this stream")
	ErrBadOffsetTable    = errors.New("malformed offset table")
	ErrBadKeyTimes       = errors.New("key times do not match key count")
)

// DecodeError is returned for assets that cannot be decoded at all. Bone and
// Offset are -1 when they do not apply.
type DecodeError struct {
	Sequence string
	Bone     int
	Offset   int
	Err      error
}

func (e *DecodeError) Error() string {
	s := fmt.Sprintf("sequence %q", e.Sequence)
	if e.Bone >= 0 {
		s += fmt.Sprintf(" bone %d", e.Bone)
	}
	if e.Offset >= 0 {
		s += fmt.Sprintf(" offset 0x%x", e.Offset)
	}
	return s + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }
func (e *DecodeError) Cause() error  { return e.Err }

func decodeError(seq string, bone, offset int, err error) *DecodeError {
	return &DecodeError{Sequence: seq, Bone: bone, Offset: offset, Err: err}
}
