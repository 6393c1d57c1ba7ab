// Package inode holds the on-disk inode record and its translation to a
// generic attribute record.
//
// An inode fills a whole block and its inode number is that block's
// number. Layout (little-endian):
//
//	uid uint16 | gid uint16 | mode uint32 | ctime uint32 | mtime uint32 |
//	size int32 | ptrs [NDIRECT]uint32
package inode

import (
	"fmt"

	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-fs5600/common"
	"github.com/mit-pdos/go-fs5600/disk"
	"github.com/mit-pdos/go-fs5600/util"
)

// Ptrs are the direct block pointer slots. A slot holding NULLBNUM is
// unset; block 0 is the superblock and never holds file data.
type Ptrs [common.NDIRECT]common.Bnum

// Get returns the block in slot, if the slot is set.
func (p *Ptrs) Get(slot uint64) (common.Bnum, bool) {
	if slot >= common.NDIRECT {
		return common.NULLBNUM, false
	}
	bn := p[slot]
	return bn, bn != common.NULLBNUM
}

func (p *Ptrs) Set(slot uint64, bn common.Bnum) {
	p[slot] = bn
}

func (p *Ptrs) Clear(slot uint64) {
	p[slot] = common.NULLBNUM
}

type Inode struct {
	Inum common.Inum // not stored; the block holding the inode

	Uid   uint16
	Gid   uint16
	Mode  uint32
	Ctime uint32
	Mtime uint32
	Size  uint32
	Ptrs  Ptrs
}

func (ip *Inode) String() string {
	return fmt.Sprintf("# %d mode %o size %d uid %d gid %d ptr0 %d",
		ip.Inum, ip.Mode, ip.Size, ip.Uid, ip.Gid, ip.Ptrs[0])
}

// MkInode returns a fresh inode with no data blocks.
func MkInode(inum common.Inum, mode uint32, uid uint32, gid uint32, now uint32) *Inode {
	return &Inode{
		Inum:  inum,
		Uid:   uint16(uid),
		Gid:   uint16(gid),
		Mode:  mode,
		Ctime: now,
		Mtime: now,
		Size:  0,
	}
}

func (ip *Inode) IsDir() bool {
	return common.IsDir(ip.Mode)
}

// NSlots is the number of leading pointer slots the inode's data may use.
// Every object owns its first block even when empty.
func (ip *Inode) NSlots() uint64 {
	n := util.RoundUp(uint64(ip.Size), common.BlockSize)
	return util.Min(util.Max(n, 1), common.NDIRECT)
}

func (ip *Inode) Encode() disk.Block {
	enc := marshal.NewEnc(common.INODESZ)
	enc.PutInt32(uint32(ip.Uid) | uint32(ip.Gid)<<16)
	enc.PutInt32(ip.Mode)
	enc.PutInt32(ip.Ctime)
	enc.PutInt32(ip.Mtime)
	enc.PutInt32(ip.Size)
	for _, bn := range ip.Ptrs {
		enc.PutInt32(bn)
	}
	return enc.Finish()
}

func Decode(blk disk.Block, inum common.Inum) *Inode {
	ip := &Inode{Inum: inum}
	dec := marshal.NewDec(blk)
	ids := dec.GetInt32()
	ip.Uid = uint16(ids)
	ip.Gid = uint16(ids >> 16)
	ip.Mode = dec.GetInt32()
	ip.Ctime = dec.GetInt32()
	ip.Mtime = dec.GetInt32()
	ip.Size = dec.GetInt32()
	for i := range ip.Ptrs {
		ip.Ptrs[i] = dec.GetInt32()
	}
	return ip
}
