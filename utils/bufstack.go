package utils

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/pkg/errors"
)

var ErrOutOfBounds = errors.New("read out of buffer bounds")

// BufStack is a little-endian cursor over a byte buffer. Reads past the end
// do not panic: they record a sticky error and return zero values, so a
// decoder can check Err() once per stream and report where it stopped.
type BufStack struct {
	parent         *BufStack
	buf            []byte
	relativeOffset int
	pos            int
	kind           string
	name           string
	err            error
}

func NewBufStack(kind string, b []byte) *BufStack {
	return &BufStack{
		buf:  b,
		kind: kind,
	}
}

// SubBuf returns a cursor positioned at offset inside bs. The sub buffer
// shares bytes with its parent.
func (bs *BufStack) SubBuf(kind string, offset int) *BufStack {
	child := &BufStack{
		parent:         bs,
		relativeOffset: offset,
		kind:           kind,
	}
	if offset < 0 || offset > len(bs.buf) {
		child.err = errors.Wrapf(ErrOutOfBounds, "sub buffer at 0x%x of %v", offset, bs)
		return child
	}
	child.buf = bs.buf[offset:]
	return child
}

func (bs *BufStack) SetName(name string) *BufStack {
	bs.name = name
	return bs
}

func (bs *BufStack) Name() string { return bs.name }
func (bs *BufStack) Kind() string { return bs.kind }
func (bs *BufStack) Size() int { return len(bs.buf) }
func (bs *BufStack) Err() error { return bs.err }

func (bs *BufStack) AbsoluteOffset() int {
	if bs.parent == nil {
		return bs.relativeOffset
	}
	return bs.parent.AbsoluteOffset() + bs.relativeOffset
}

func (bs *BufStack) String() string {
	return fmt.Sprintf("buf<%v>(%v)[o:0x%x,s:0x%x,p:0x%x]",
		bs.kind, bs.name, bs.relativeOffset, len(bs.buf), bs.pos)
}

func (bs *BufStack) StringChain() string {
	s := bs.String()
	if bs.parent != nil {
		s += fmt.Sprintf("::%s", bs.parent.StringChain())
	}
	return s
}

func (bs *BufStack) Raw() []byte {
	return bs.buf
}

func (bs *BufStack) Pos() int {
	return bs.pos
}

func (bs *BufStack) Read(amount int) []byte {
	if bs.err != nil {
		return nil
	}
	if amount < 0 || bs.pos+amount > len(bs.buf) {
		bs.err = errors.Wrapf(ErrOutOfBounds, "reading %d bytes at 0x%x of %v", amount, bs.pos, bs.StringChain())
		return nil
	}
	oldPos := bs.pos
	bs.pos += amount
	return bs.buf[oldPos:bs.pos]
}

func (bs *BufStack) Skip(amount int) {
	bs.Read(amount)
}

// Align moves the cursor forward to the next multiple of n relative to the
// start of the root buffer.
func (bs *BufStack) Align(n int) {
	abs := bs.AbsoluteOffset() + bs.pos
	if rem := abs % n; rem != 0 {
		bs.pos += n - rem
		if bs.pos > len(bs.buf) {
			bs.pos = len(bs.buf)
		}
	}
}

func (bs *BufStack) ReadLU32() uint32 {
	b := bs.Read(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (bs *BufStack) ReadLU16() uint16 {
	b := bs.Read(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (bs *BufStack) ReadByte() byte {
	b := bs.Read(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (bs *BufStack) ReadLF() float32 {
	return math.Float32frombits(bs.ReadLU32())
}

func (bs *BufStack) LU32(off int) uint32 {
	if off < 0 || off+4 > len(bs.buf) {
		bs.err = errors.Wrapf(ErrOutOfBounds, "u32 at 0x%x of %v", off, bs.StringChain())
		return 0
	}
	return binary.LittleEndian.Uint32(bs.buf[off:])
}
