package alloc

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/mit-pdos/go-fs5600/common"
	"github.com/mit-pdos/go-fs5600/disk"
	"github.com/mit-pdos/go-fs5600/util"
)

// Bitmap is the contents of the bitmap block. Bit i (byte i/8, bit i%8) is
// set when block i is in use.
type Bitmap []byte

func MkBitmap() Bitmap {
	return make(Bitmap, common.BlockSize)
}

func (bm Bitmap) Test(i uint64) bool {
	return bm[i/8]&(1<<(i%8)) != 0
}

func (bm Bitmap) Set(i uint64) {
	bm[i/8] = bm[i/8] | (1 << (i % 8))
}

func (bm Bitmap) Clear(i uint64) {
	bm[i/8] = bm[i/8] & ^(1 << (i % 8))
}

// Alloc hands out block numbers from a cached copy of the bitmap block.
// Every change is written through to the device before it is reported.
type Alloc struct {
	lock   *sync.Mutex // protects bitmap
	d      disk.Disk
	size   uint64 // blocks on the device; bits at or past size are never used
	bitmap Bitmap
}

// MkAlloc loads the bitmap of a device with size blocks.
func MkAlloc(d disk.Disk, size uint64) (*Alloc, error) {
	if size > common.NBITBLOCK {
		return nil, errors.Wrapf(common.ErrInval,
			"%d blocks exceed bitmap capacity %d", size, common.NBITBLOCK)
	}
	blk, err := d.Read(uint64(common.BITMAPBNUM))
	if err != nil {
		return nil, common.IOErr(err, "read bitmap")
	}
	a := &Alloc{
		lock:   new(sync.Mutex),
		d:      d,
		size:   size,
		bitmap: Bitmap(blk),
	}
	return a, nil
}

func (a *Alloc) flush() error {
	blk := util.CloneByteSlice(a.bitmap)
	if err := a.d.Write(uint64(common.BITMAPBNUM), blk); err != nil {
		return common.IOErr(err, "write bitmap")
	}
	return nil
}

// Flush writes the cached bitmap to the device.
func (a *Alloc) Flush() error {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.flush()
}

// AllocNum marks the lowest free block in use and returns it. The reserved
// blocks are never returned.
func (a *Alloc) AllocNum() (common.Bnum, error) {
	a.lock.Lock()
	defer a.lock.Unlock()
	for n := uint64(common.NRESERVED); n < a.size; n++ {
		if a.bitmap.Test(n) {
			continue
		}
		a.bitmap.Set(n)
		if err := a.flush(); err != nil {
			a.bitmap.Clear(n)
			return common.NULLBNUM, err
		}
		util.DPrintf(5, "AllocNum: %d\n", n)
		return common.Bnum(n), nil
	}
	return common.NULLBNUM, errors.Wrap(common.ErrNoSpace, "no free blocks")
}

// FreeNum marks bn free. Freeing a block that is already free, or a
// reserved one, is not refused.
func (a *Alloc) FreeNum(bn common.Bnum) error {
	n := uint64(bn)
	if n >= common.NBITBLOCK {
		return errors.Wrapf(common.ErrInval, "free of block %d outside bitmap", bn)
	}
	a.lock.Lock()
	defer a.lock.Unlock()
	was := a.bitmap.Test(n)
	if !was || bn < common.NRESERVED {
		util.Log.WithField("bnum", bn).WithField("allocated", was).Warn("suspicious free")
	}
	a.bitmap.Clear(n)
	if err := a.flush(); err != nil {
		if was {
			a.bitmap.Set(n)
		}
		return err
	}
	util.DPrintf(5, "FreeNum: %d\n", n)
	return nil
}

func (a *Alloc) IsAllocated(bn common.Bnum) bool {
	n := uint64(bn)
	if n >= common.NBITBLOCK {
		return false
	}
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.bitmap.Test(n)
}

// NumUsed counts the blocks in use on the device.
func (a *Alloc) NumUsed() uint64 {
	a.lock.Lock()
	defer a.lock.Unlock()
	var n uint64
	for i := uint64(0); i < a.size; i++ {
		if a.bitmap.Test(i) {
			n++
		}
	}
	return n
}

func (a *Alloc) NumFree() uint64 {
	return a.size - a.NumUsed()
}
