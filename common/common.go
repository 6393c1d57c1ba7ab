package common

import (
	"github.com/tchajed/goose/machine/disk"
	"golang.org/x/sys/unix"
)

const (
	BlockSize uint64 = disk.BlockSize
	NBITBLOCK uint64 = BlockSize * 8 // blocks tracked by the one bitmap block

	MAGIC uint32 = 0x30303635 // "5600"

	INODESZ  uint64 = BlockSize // an inode occupies a whole block
	INODEHDR uint64 = 20        // uid/gid, mode, ctime, mtime, size
	NDIRECT  uint64 = (INODESZ - INODEHDR) / 4
	MAXFILE  uint64 = NDIRECT * BlockSize

	DIRENTSZ   uint64 = 32
	NDIRENT    uint64 = BlockSize / DIRENTSZ
	NAMELEN    uint64 = DIRENTSZ - 4 // including the trailing NUL
	MAXNAMELEN uint64 = NAMELEN - 1

	DEFAULTDEPTH uint64 = 10
)

type Inum uint32
type Bnum = uint32

const (
	SUPERBNUM  Bnum = 0
	BITMAPBNUM Bnum = 1
	ROOTINUM   Inum = 2
	NRESERVED  Bnum = 3 // blocks 0-2 are never handed out
	NULLBNUM   Bnum = 0
)

// Mode bits, as stored in the inode's mode field.
const (
	S_IFMT  uint32 = unix.S_IFMT
	S_IFDIR uint32 = unix.S_IFDIR
	S_IFREG uint32 = unix.S_IFREG
)

func IsDir(mode uint32) bool {
	return mode&S_IFMT == S_IFDIR
}
