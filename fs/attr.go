package fs

import (
	"time"

	"github.com/mit-pdos/go-fs5600/buftxn"
	"github.com/mit-pdos/go-fs5600/common"
	"github.com/mit-pdos/go-fs5600/inode"
	"github.com/mit-pdos/go-fs5600/util"
)

func (fs *FsSession) Getattr(path string) (inode.Attr, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	ip, err := fs.getInode(path)
	if err != nil {
		return inode.Attr{}, err
	}
	return ip.Stat(), nil
}

// Chmod replaces the permission bits of path, keeping its type.
func (fs *FsSession) Chmod(path string, mode uint32) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	ip, err := fs.getInode(path)
	if err != nil {
		return err
	}
	ip.Mode = (ip.Mode & common.S_IFMT) | (mode&^common.S_IFMT)
	util.DPrintf(1, "Chmod %s -> %o\n", path, ip.Mode)

	tx := buftxn.Begin(fs.d, fs.alloc)
	defer tx.Release()
	tx.OverWrite(common.Bnum(ip.Inum), ip.Encode())
	return tx.Commit()
}

// Utime sets the modification time of path to mtime, or to the current
// time if mtime is nil. The new time reaches the disk only with
// Options.PersistUtime.
func (fs *FsSession) Utime(path string, mtime *time.Time) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	ip, err := fs.getInode(path)
	if err != nil {
		return err
	}
	if mtime != nil {
		ip.Mtime = uint32(mtime.Unix())
	} else {
		ip.Mtime = fs.now()
	}
	if !fs.opts.PersistUtime {
		util.DPrintf(1, "Utime %s: not persisted\n", path)
		return nil
	}
	tx := buftxn.Begin(fs.d, fs.alloc)
	defer tx.Release()
	tx.OverWrite(common.Bnum(ip.Inum), ip.Encode())
	return tx.Commit()
}
