// buf holds copies of disk blocks read or written by an operation
package buf

import (
	"github.com/mit-pdos/go-fs5600/common"
	"github.com/mit-pdos/go-fs5600/disk"
	"github.com/mit-pdos/go-fs5600/util"
)

// A Buf is an in-memory copy of one disk block
type Buf struct {
	Blkno common.Bnum
	Data  disk.Block
	dirty bool // has this block been written to?
}

func MkBuf(blkno common.Bnum, data disk.Block) *Buf {
	b := &Buf{
		Blkno: blkno,
		Data:  data,
		dirty: false,
	}
	return b
}

// MkBufLoad reads block blkno into a new buf
func MkBufLoad(d disk.Disk, blkno common.Bnum) (*Buf, error) {
	blk, err := d.Read(uint64(blkno))
	if err != nil {
		return nil, common.IOErr(err, "read block %d", blkno)
	}
	return MkBuf(blkno, blk), nil
}

func (buf *Buf) IsDirty() bool {
	return buf.dirty
}

func (buf *Buf) SetDirty() {
	buf.dirty = true
}

func (buf *Buf) WriteDirect(d disk.Disk) error {
	util.DPrintf(10, "WriteDirect: %d\n", buf.Blkno)
	if err := d.Write(uint64(buf.Blkno), buf.Data); err != nil {
		return common.IOErr(err, "write block %d", buf.Blkno)
	}
	buf.dirty = false
	return nil
}
