package addr

import (
	"github.com/mit-pdos/go-fs5600/common"
)

// Addr identifies a byte inside a file.
//
// Slot is the index of the direct pointer holding the byte, and Off is the
// byte's position within that block.
type Addr struct {
	Slot uint64
	Off  uint64 // offset in bytes
}

func (a Addr) Flatid() uint64 {
	return a.Slot*common.BlockSize + a.Off
}

func MkAddr(slot uint64, off uint64) Addr {
	return Addr{Slot: slot, Off: off}
}

// MkByteAddr locates file offset n.
func MkByteAddr(n uint64) Addr {
	return MkAddr(n/common.BlockSize, n%common.BlockSize)
}

// Extent is the part of one block covered by a byte range.
type Extent struct {
	Slot  uint64
	Start uint64 // first byte within the block
	End   uint64 // one past the last byte within the block
	Pos   uint64 // position of Start relative to the start of the range
}

func (e Extent) Len() uint64 {
	return e.End - e.Start
}

// Span splits the byte range [off, off+n) into per-slot extents, in slot
// order. The first extent may start mid-block and the last may end
// mid-block; interior extents cover whole blocks. An empty range has no
// extents.
func Span(off uint64, n uint64) []Extent {
	if n == 0 {
		return nil
	}
	first := MkByteAddr(off)
	last := MkByteAddr(off + n - 1)
	exts := make([]Extent, 0, last.Slot-first.Slot+1)
	var pos uint64
	for slot := first.Slot; slot <= last.Slot; slot++ {
		start := uint64(0)
		if slot == first.Slot {
			start = first.Off
		}
		end := common.BlockSize
		if slot == last.Slot {
			end = last.Off + 1
		}
		exts = append(exts, Extent{Slot: slot, Start: start, End: end, Pos: pos})
		pos += end - start
	}
	return exts
}
