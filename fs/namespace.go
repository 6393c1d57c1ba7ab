package fs

import (
	"github.com/pkg/errors"

	"github.com/mit-pdos/go-fs5600/buftxn"
	"github.com/mit-pdos/go-fs5600/common"
	"github.com/mit-pdos/go-fs5600/dir"
	"github.com/mit-pdos/go-fs5600/disk"
	"github.com/mit-pdos/go-fs5600/inode"
	"github.com/mit-pdos/go-fs5600/util"
)

// Create makes an empty regular file at path with permission bits mode.
func (fs *FsSession) Create(c Caller, path string, mode uint32) error {
	return fs.mkobj(c, path, common.S_IFREG|(mode&^common.S_IFMT))
}

// Mkdir makes an empty directory at path with permission bits mode.
func (fs *FsSession) Mkdir(c Caller, path string, mode uint32) error {
	return fs.mkobj(c, path, common.S_IFDIR|(mode&^common.S_IFMT))
}

func (fs *FsSession) mkobj(c Caller, path string, mode uint32) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	util.DPrintf(1, "mkobj %s %o\n", path, mode)

	pcomps, name := dir.SplitParent(path)
	pip, err := fs.getDir(pcomps)
	if err != nil {
		return err
	}
	_, err = fs.resolve(path)
	if err == nil {
		return errors.Wrapf(common.ErrExist, "%s", path)
	}
	if !errors.Is(err, common.ErrNoEntry) {
		return err
	}
	if err := dir.CheckName(name); err != nil {
		return err
	}

	tx := buftxn.Begin(fs.d, fs.alloc)
	defer tx.Release()

	pbn, err := fs.dirBlock(pip)
	if err != nil {
		return err
	}
	pb, err := tx.ReadBuf(pbn)
	if err != nil {
		return err
	}
	tbl := dir.Decode(pb.Data)
	slot, ok := tbl.FreeSlot()
	if !ok {
		return errors.Wrapf(common.ErrNoSpace, "directory %s is full", dir.JoinPath(pcomps))
	}
	inum, err := tx.AllocBlock()
	if err != nil {
		return err
	}
	dbn, err := tx.AllocBlock()
	if err != nil {
		return err
	}

	now := fs.now()
	ip := inode.MkInode(common.Inum(inum), mode, c.Uid, c.Gid, now)
	ip.Ptrs.Set(0, dbn)
	tbl.Set(slot, name, ip.Inum)
	pip.Ctime = now
	pip.Mtime = now
	pip.Size += uint32(common.DIRENTSZ)

	tx.OverWrite(common.Bnum(pip.Inum), pip.Encode())
	tx.OverWrite(pbn, tbl.Encode())
	tx.OverWrite(inum, ip.Encode())
	tx.OverWrite(dbn, make(disk.Block, common.BlockSize))
	if err := tx.Commit(); err != nil {
		return err
	}
	return fs.alloc.Flush()
}

// Unlink removes the regular file at path.
func (fs *FsSession) Unlink(path string) error {
	return fs.remove(path, false)
}

// Rmdir removes the empty directory at path.
func (fs *FsSession) Rmdir(path string) error {
	return fs.remove(path, true)
}

func (fs *FsSession) remove(path string, isDir bool) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	util.DPrintf(1, "remove %s dir %v\n", path, isDir)

	pcomps, name := dir.SplitParent(path)
	if name == "" {
		return errors.Wrap(common.ErrInval, "cannot remove the root")
	}
	pip, err := fs.getDir(pcomps)
	if err != nil {
		return err
	}
	ip, err := fs.getInode(path)
	if err != nil {
		return err
	}
	if isDir {
		if !ip.IsDir() {
			return errors.Wrapf(common.ErrNotDir, "rmdir %s", path)
		}
		if ip.Size != 0 {
			return errors.Wrapf(common.ErrNotEmpty, "rmdir %s", path)
		}
	} else if ip.IsDir() {
		return errors.Wrapf(common.ErrIsDir, "unlink %s", path)
	}

	tx := buftxn.Begin(fs.d, fs.alloc)
	defer tx.Release()

	pbn, err := fs.dirBlock(pip)
	if err != nil {
		return err
	}
	pb, err := tx.ReadBuf(pbn)
	if err != nil {
		return err
	}
	tbl := dir.Decode(pb.Data)
	slot, ok := tbl.Lookup(name)
	if !ok {
		return errors.Wrapf(common.ErrNoEntry, "%s", path)
	}

	for i := uint64(0); i < ip.NSlots(); i++ {
		if bn, ok := ip.Ptrs.Get(i); ok {
			if err := tx.FreeBlock(bn); err != nil {
				return err
			}
		}
	}
	if err := tx.FreeBlock(common.Bnum(ip.Inum)); err != nil {
		return err
	}
	if recorded := tbl.Remove(slot); recorded != ip.Inum {
		util.Log.WithField("path", path).WithField("entry", recorded).
			WithField("inum", ip.Inum).Warn("entry disagrees with resolved inode")
		if err := tx.FreeBlock(common.Bnum(recorded)); err != nil {
			return err
		}
	}
	pip.Mtime = fs.now()
	if pip.Size >= uint32(common.DIRENTSZ) {
		pip.Size -= uint32(common.DIRENTSZ)
	}

	tx.OverWrite(common.Bnum(pip.Inum), pip.Encode())
	tx.OverWrite(pbn, tbl.Encode())
	return tx.Commit()
}

// Rename changes the name of src to that of dst. Both must be in the same
// directory.
func (fs *FsSession) Rename(src string, dst string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	util.DPrintf(1, "Rename %s -> %s\n", src, dst)

	if _, err := fs.resolve(src); err != nil {
		return err
	}
	spcomps, sname := dir.SplitParent(src)
	dpcomps, dname := dir.SplitParent(dst)
	pip, err := fs.getDir(dpcomps)
	if err != nil {
		return err
	}
	if src == dst {
		return errors.Wrapf(common.ErrExist, "rename %s to itself", src)
	}
	if dir.JoinPath(spcomps) != dir.JoinPath(dpcomps) {
		return errors.Wrapf(common.ErrInval, "rename %s to %s: different directories", src, dst)
	}
	if sname == "" || dname == "" {
		return errors.Wrap(common.ErrInval, "cannot rename the root")
	}
	if err := dir.CheckName(dname); err != nil {
		return err
	}

	tx := buftxn.Begin(fs.d, fs.alloc)
	defer tx.Release()

	pbn, err := fs.dirBlock(pip)
	if err != nil {
		return err
	}
	pb, err := tx.ReadBuf(pbn)
	if err != nil {
		return err
	}
	tbl := dir.Decode(pb.Data)
	slot, ok := tbl.Lookup(sname)
	if !ok {
		return errors.Wrapf(common.ErrNoEntry, "%s", src)
	}
	if fs.opts.CheckRenameCollision {
		if other, ok := tbl.Lookup(dname); ok && other != slot {
			return errors.Wrapf(common.ErrExist, "%s", dst)
		}
	}
	tbl.Rename(slot, dname)
	tx.OverWrite(pbn, tbl.Encode())
	return tx.Commit()
}

// Truncate discards the contents of path. Only truncation to length 0 is
// supported; the file keeps its first data block.
func (fs *FsSession) Truncate(path string, length uint64) error {
	if length > 0 {
		return errors.Wrapf(common.ErrInval, "truncate %s to %d", path, length)
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	ip, err := fs.getInode(path)
	if err != nil {
		return err
	}
	if ip.IsDir() {
		return errors.Wrapf(common.ErrIsDir, "truncate %s", path)
	}

	tx := buftxn.Begin(fs.d, fs.alloc)
	defer tx.Release()
	for i := uint64(1); i < ip.NSlots(); i++ {
		bn, ok := ip.Ptrs.Get(i)
		if !ok {
			continue
		}
		if fs.ownedBlock(bn) {
			if err := tx.FreeBlock(bn); err != nil {
				return err
			}
		}
		ip.Ptrs.Clear(i)
	}
	ip.Size = 0
	tx.OverWrite(common.Bnum(ip.Inum), ip.Encode())
	return tx.Commit()
}
