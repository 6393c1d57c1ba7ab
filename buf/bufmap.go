package buf

import (
	"github.com/mit-pdos/go-fs5600/common"
)

//
// A map from block numbers to bufs, remembering the order in which bufs
// were first dirtied.
//

type BufMap struct {
	bufs  map[common.Bnum]*Buf
	order []common.Bnum
}

func MkBufMap() *BufMap {
	a := &BufMap{
		bufs:  make(map[common.Bnum]*Buf),
		order: make([]common.Bnum, 0),
	}
	return a
}

func (bmap *BufMap) Insert(buf *Buf) {
	bmap.bufs[buf.Blkno] = buf
	if buf.dirty {
		bmap.SetDirty(buf)
	}
}

func (bmap *BufMap) Lookup(blkno common.Bnum) *Buf {
	return bmap.bufs[blkno]
}

func (bmap *BufMap) Del(blkno common.Bnum) {
	delete(bmap.bufs, blkno)
	for i, bn := range bmap.order {
		if bn == blkno {
			bmap.order = append(bmap.order[:i], bmap.order[i+1:]...)
			break
		}
	}
}

// SetDirty marks buf dirty, queueing it behind the bufs dirtied before it.
func (bmap *BufMap) SetDirty(buf *Buf) {
	for _, bn := range bmap.order {
		if bn == buf.Blkno {
			buf.SetDirty()
			return
		}
	}
	buf.SetDirty()
	bmap.order = append(bmap.order, buf.Blkno)
}

func (bmap *BufMap) Ndirty() uint64 {
	return uint64(len(bmap.order))
}

// DirtyBufs returns the dirty bufs in the order they were first dirtied.
func (bmap *BufMap) DirtyBufs() []*Buf {
	bufs := make([]*Buf, 0, len(bmap.order))
	for _, bn := range bmap.order {
		bufs = append(bufs, bmap.bufs[bn])
	}
	return bufs
}
