package utils

import (
	"testing"

	"github.com/pkg/errors"
)

func TestBufStackReads(t *testing.T) {
	bs := NewBufStack("test", []byte{
		0x01, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x80, 0x3f,
		0x34, 0x12, 0xaa,
	})

	if v := bs.ReadLU32(); v != 1 {
		t.Errorf("ReadLU32()=%d; expected 1", v)
	}
	if v := bs.ReadLF(); v != 1.0 {
		t.Errorf("ReadLF()=%f; expected 1.0", v)
	}
	if v := bs.ReadLU16(); v != 0x1234 {
		t.Errorf("ReadLU16()=0x%x; expected 0x1234", v)
	}
	if v := bs.ReadByte(); v != 0xaa {
		t.Errorf("ReadByte()=0x%x; expected 0xaa", v)
	}
	if bs.Err() != nil {
		t.Fatalf("unexpected error %v", bs.Err())
	}

	if v := bs.ReadLU32(); v != 0 {
		t.Errorf("ReadLU32() past end =%d; expected 0", v)
	}
	if errors.Cause(bs.Err()) != ErrOutOfBounds {
		t.Errorf("Err()=%v; expected out of bounds", bs.Err())
	}
}

func TestBufStackAlign(t *testing.T) {
	root := NewBufStack("root", make([]byte, 32))
	sub := root.SubBuf("sub", 6)

	sub.Skip(1)
	sub.Align(4)
	// absolute 7 -> 8
	if sub.Pos() != 2 {
		t.Errorf("Pos() after align=%d; expected 2", sub.Pos())
	}
	sub.Align(4)
	if sub.Pos() != 2 {
		t.Errorf("Align on aligned position moved to %d", sub.Pos())
	}

	bad := root.SubBuf("bad", 64)
	if bad.Err() == nil {
		t.Errorf("expected error for sub buffer out of bounds")
	}
}
