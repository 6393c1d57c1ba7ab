package buftxn

import (
	"github.com/mit-pdos/go-fs5600/alloc"
	"github.com/mit-pdos/go-fs5600/buf"
	"github.com/mit-pdos/go-fs5600/common"
	"github.com/mit-pdos/go-fs5600/disk"
	"github.com/mit-pdos/go-fs5600/util"
)

//
// Write set of one file system operation. The operation reads and stages
// blocks through the BufTxn; Commit writes the staged blocks in the order
// they were first dirtied. Blocks allocated through the BufTxn are given
// back by Release unless Commit succeeded, so a failed operation does not
// leak blocks. Frees go to the allocator immediately.
//
// There is no log: a Commit interrupted by a device failure leaves the
// blocks written so far in place.
//

type BufTxn struct {
	d         disk.Disk
	alloc     *alloc.Alloc
	bufs      *buf.BufMap // map of bufs read/written by this transaction
	allocated []common.Bnum
	committed bool
}

func Begin(d disk.Disk, a *alloc.Alloc) *BufTxn {
	trans := &BufTxn{
		d:     d,
		alloc: a,
		bufs:  buf.MkBufMap(),
	}
	util.DPrintf(3, "Begin\n")
	return trans
}

// ReadBuf returns the staged copy of blkno, loading it on first use.
func (buftxn *BufTxn) ReadBuf(blkno common.Bnum) (*buf.Buf, error) {
	b := buftxn.bufs.Lookup(blkno)
	if b == nil {
		var err error
		b, err = buf.MkBufLoad(buftxn.d, blkno)
		if err != nil {
			return nil, err
		}
		buftxn.bufs.Insert(b)
	}
	return b, nil
}

// OverWrite stages data as the new contents of blkno without reading it.
func (buftxn *BufTxn) OverWrite(blkno common.Bnum, data disk.Block) {
	if uint64(len(data)) != common.BlockSize {
		panic("overwrite")
	}
	b := buftxn.bufs.Lookup(blkno)
	if b == nil {
		b = buf.MkBuf(blkno, data)
		buftxn.bufs.Insert(b)
	} else {
		b.Data = data
	}
	buftxn.bufs.SetDirty(b)
}

// SetDirty stages a buf obtained from ReadBuf after modifying it in place.
func (buftxn *BufTxn) SetDirty(b *buf.Buf) {
	buftxn.bufs.SetDirty(b)
}

func (buftxn *BufTxn) NDirty() uint64 {
	return buftxn.bufs.Ndirty()
}

// AllocBlock allocates a block owned by this transaction until Commit.
func (buftxn *BufTxn) AllocBlock() (common.Bnum, error) {
	bn, err := buftxn.alloc.AllocNum()
	if err != nil {
		return common.NULLBNUM, err
	}
	buftxn.allocated = append(buftxn.allocated, bn)
	return bn, nil
}

// FreeBlock frees bn and drops any staged copy of it.
func (buftxn *BufTxn) FreeBlock(bn common.Bnum) error {
	if err := buftxn.alloc.FreeNum(bn); err != nil {
		return err
	}
	buftxn.bufs.Del(bn)
	for i, a := range buftxn.allocated {
		if a == bn {
			buftxn.allocated = append(buftxn.allocated[:i], buftxn.allocated[i+1:]...)
			break
		}
	}
	return nil
}

// Commit writes the dirty bufs of this transaction
func (buftxn *BufTxn) Commit() error {
	util.DPrintf(3, "Commit: %d dirty\n", buftxn.bufs.Ndirty())
	for _, b := range buftxn.bufs.DirtyBufs() {
		if err := b.WriteDirect(buftxn.d); err != nil {
			return err
		}
	}
	buftxn.committed = true
	return nil
}

// Release gives back the blocks allocated by an uncommitted transaction.
// It is a no-op after a successful Commit.
func (buftxn *BufTxn) Release() {
	if buftxn.committed {
		return
	}
	for _, bn := range buftxn.allocated {
		if err := buftxn.alloc.FreeNum(bn); err != nil {
			util.Log.WithError(err).WithField("bnum", bn).Error("release allocation")
		}
	}
	buftxn.allocated = nil
	util.DPrintf(3, "Release\n")
}
