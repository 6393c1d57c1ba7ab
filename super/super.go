package super

import (
	"github.com/pkg/errors"
	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-fs5600/alloc"
	"github.com/mit-pdos/go-fs5600/common"
	"github.com/mit-pdos/go-fs5600/dir"
	"github.com/mit-pdos/go-fs5600/disk"
	"github.com/mit-pdos/go-fs5600/inode"
	"github.com/mit-pdos/go-fs5600/util"
)

// ErrBadMagic is returned when block 0 does not hold a superblock.
var ErrBadMagic = errors.New("bad superblock magic")

// MINSIZE is the smallest usable device: the reserved blocks plus the
// root directory's entry block.
const MINSIZE uint64 = uint64(common.NRESERVED) + 1

type FsSuper struct {
	Magic uint32
	Size  uint64 // device size in blocks
}

func (sb *FsSuper) MaxBnum() common.Bnum {
	return common.Bnum(sb.Size)
}

func (sb *FsSuper) Encode() disk.Block {
	enc := marshal.NewEnc(common.BlockSize)
	enc.PutInt32(sb.Magic)
	enc.PutInt32(uint32(sb.Size))
	return enc.Finish()
}

func Decode(blk disk.Block) *FsSuper {
	dec := marshal.NewDec(blk)
	sb := &FsSuper{}
	sb.Magic = dec.GetInt32()
	sb.Size = uint64(dec.GetInt32())
	return sb
}

func checkSize(size uint64, devsize uint64) error {
	if size < MINSIZE {
		return errors.Wrapf(common.ErrInval, "%d blocks is too small", size)
	}
	if size > common.NBITBLOCK {
		return errors.Wrapf(common.ErrInval,
			"%d blocks exceed bitmap capacity %d", size, common.NBITBLOCK)
	}
	if size > devsize {
		return errors.Wrapf(common.ErrInval,
			"%d blocks exceed device size %d", size, devsize)
	}
	return nil
}

// Load reads and validates the superblock of d.
func Load(d disk.Disk) (*FsSuper, error) {
	devsize, err := d.Size()
	if err != nil {
		return nil, common.IOErr(err, "device size")
	}
	blk, err := d.Read(uint64(common.SUPERBNUM))
	if err != nil {
		return nil, common.IOErr(err, "read superblock")
	}
	sb := Decode(blk)
	if sb.Magic != common.MAGIC {
		return nil, errors.Wrapf(ErrBadMagic, "found %#x", sb.Magic)
	}
	if err := checkSize(sb.Size, devsize); err != nil {
		return nil, err
	}
	util.DPrintf(1, "Load: superblock size %d\n", sb.Size)
	return sb, nil
}

// Format writes an empty file system of size blocks to d: the superblock,
// a bitmap marking the reserved blocks and the root's entry block, the
// root directory inode (mode 0755) and its empty entry block. A size of 0
// uses the whole device, up to the bitmap capacity.
func Format(d disk.Disk, size uint64, uid uint32, gid uint32, now uint32) (*FsSuper, error) {
	devsize, err := d.Size()
	if err != nil {
		return nil, common.IOErr(err, "device size")
	}
	if size == 0 {
		size = util.Min(devsize, common.NBITBLOCK)
	}
	if err := checkSize(size, devsize); err != nil {
		return nil, err
	}
	sb := &FsSuper{Magic: common.MAGIC, Size: size}

	rootData := common.NRESERVED
	bm := alloc.MkBitmap()
	bm.Set(uint64(common.SUPERBNUM))
	bm.Set(uint64(common.BITMAPBNUM))
	bm.Set(uint64(common.ROOTINUM))
	bm.Set(uint64(rootData))

	root := inode.MkInode(common.ROOTINUM, common.S_IFDIR|0755, uid, gid, now)
	root.Ptrs.Set(0, rootData)

	writes := []struct {
		bn  common.Bnum
		blk disk.Block
	}{
		{common.SUPERBNUM, sb.Encode()},
		{common.BITMAPBNUM, disk.Block(bm)},
		{common.Bnum(common.ROOTINUM), root.Encode()},
		{rootData, (&dir.Table{}).Encode()},
	}
	for _, w := range writes {
		if err := d.Write(uint64(w.bn), w.blk); err != nil {
			return nil, common.IOErr(err, "format block %d", w.bn)
		}
	}
	if err := d.Barrier(); err != nil {
		return nil, common.IOErr(err, "format barrier")
	}
	util.Log.WithField("blocks", size).Info("formatted file system")
	return sb, nil
}
