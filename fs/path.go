package fs

import (
	"github.com/pkg/errors"

	"github.com/mit-pdos/go-fs5600/common"
	"github.com/mit-pdos/go-fs5600/dir"
	"github.com/mit-pdos/go-fs5600/inode"
	"github.com/mit-pdos/go-fs5600/util"
)

func (fs *FsSession) readInode(inum common.Inum) (*inode.Inode, error) {
	if inum < common.ROOTINUM || uint64(inum) >= fs.super.Size {
		return nil, errors.Wrapf(common.ErrIO, "bad inode number %d", inum)
	}
	blk, err := fs.d.Read(uint64(inum))
	if err != nil {
		return nil, common.IOErr(err, "read inode %d", inum)
	}
	return inode.Decode(blk, inum), nil
}

// dirBlock is the entry block of directory ip.
func (fs *FsSession) dirBlock(ip *inode.Inode) (common.Bnum, error) {
	bn, ok := ip.Ptrs.Get(0)
	if !ok || uint64(bn) >= fs.super.Size {
		return common.NULLBNUM, errors.Wrapf(common.ErrIO,
			"directory %d has bad entry block %d", ip.Inum, bn)
	}
	return bn, nil
}

func (fs *FsSession) readTable(ip *inode.Inode) (*dir.Table, error) {
	bn, err := fs.dirBlock(ip)
	if err != nil {
		return nil, err
	}
	blk, err := fs.d.Read(uint64(bn))
	if err != nil {
		return nil, common.IOErr(err, "read directory %d", ip.Inum)
	}
	return dir.Decode(blk), nil
}

// ownedBlock reports whether bn can be a data block of a file: inside the
// device, past the reserved blocks, and marked in use.
func (fs *FsSession) ownedBlock(bn common.Bnum) bool {
	return bn >= common.NRESERVED && uint64(bn) < fs.super.Size &&
		fs.alloc.IsAllocated(bn)
}

// namei walks comps from the root and returns the inode they name.
func (fs *FsSession) namei(comps []string) (common.Inum, error) {
	if uint64(len(comps)) > fs.opts.MaxDepth {
		return 0, errors.Wrapf(common.ErrInval, "%d components exceed depth %d",
			len(comps), fs.opts.MaxDepth)
	}
	inum := common.ROOTINUM
	if len(comps) == 0 {
		return inum, nil
	}
	ip, err := fs.readInode(inum)
	if err != nil {
		return 0, err
	}
	for i, c := range comps {
		if !ip.IsDir() {
			return 0, errors.Wrapf(common.ErrNotDir, "%s", dir.JoinPath(comps[:i]))
		}
		tbl, err := fs.readTable(ip)
		if err != nil {
			return 0, err
		}
		slot, ok := tbl.Lookup(c)
		if !ok {
			return 0, errors.Wrapf(common.ErrNoEntry, "%s", dir.JoinPath(comps[:i+1]))
		}
		inum = tbl.Ents[slot].Inum
		if i < len(comps)-1 {
			ip, err = fs.readInode(inum)
			if err != nil {
				return 0, err
			}
		}
	}
	util.DPrintf(10, "namei %v -> %d\n", comps, inum)
	return inum, nil
}

// resolve maps path to an inode number.
func (fs *FsSession) resolve(path string) (common.Inum, error) {
	return fs.namei(dir.SplitPath(path))
}

func (fs *FsSession) getInode(path string) (*inode.Inode, error) {
	inum, err := fs.resolve(path)
	if err != nil {
		return nil, err
	}
	return fs.readInode(inum)
}

// getDir resolves comps to an inode that must be a directory.
func (fs *FsSession) getDir(comps []string) (*inode.Inode, error) {
	inum, err := fs.namei(comps)
	if err != nil {
		return nil, err
	}
	ip, err := fs.readInode(inum)
	if err != nil {
		return nil, err
	}
	if !ip.IsDir() {
		return nil, errors.Wrapf(common.ErrNotDir, "%s", dir.JoinPath(comps))
	}
	return ip, nil
}
