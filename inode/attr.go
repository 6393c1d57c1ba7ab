package inode

import (
	"time"

	"github.com/mit-pdos/go-fs5600/common"
	"github.com/mit-pdos/go-fs5600/util"
)

// Attr is the generic attribute record handed to the host.
type Attr struct {
	Ino    uint64
	Mode   uint32
	Nlink  uint32
	Uid    uint32
	Gid    uint32
	Size   uint64
	Blocks uint64
	Atime  time.Time
	Mtime  time.Time
	Ctime  time.Time
}

func (a Attr) IsDir() bool {
	return common.IsDir(a.Mode)
}

// Stat translates the inode. Links are unsupported, so Nlink is always 1,
// and there is no access time on disk, so Atime mirrors Mtime.
func (ip *Inode) Stat() Attr {
	mtime := time.Unix(int64(ip.Mtime), 0)
	return Attr{
		Ino:    uint64(ip.Inum),
		Mode:   ip.Mode,
		Nlink:  1,
		Uid:    uint32(ip.Uid),
		Gid:    uint32(ip.Gid),
		Size:   uint64(ip.Size),
		Blocks: util.RoundUp(uint64(ip.Size), common.BlockSize),
		Atime:  mtime,
		Mtime:  mtime,
		Ctime:  time.Unix(int64(ip.Ctime), 0),
	}
}
