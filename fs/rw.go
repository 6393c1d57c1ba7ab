package fs

import (
	"github.com/pkg/errors"

	"github.com/mit-pdos/go-fs5600/addr"
	"github.com/mit-pdos/go-fs5600/buf"
	"github.com/mit-pdos/go-fs5600/buftxn"
	"github.com/mit-pdos/go-fs5600/common"
	"github.com/mit-pdos/go-fs5600/disk"
	"github.com/mit-pdos/go-fs5600/util"
)

// Read copies up to len(p) bytes of path starting at off into p and
// returns the number copied. Reading at or past the end yields 0.
func (fs *FsSession) Read(path string, p []byte, off uint64) (int, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	ip, err := fs.getInode(path)
	if err != nil {
		return 0, err
	}
	if ip.IsDir() {
		return 0, errors.Wrapf(common.ErrIsDir, "read %s", path)
	}
	size := uint64(ip.Size)
	if off >= size {
		return 0, nil
	}
	n := util.Min(uint64(len(p)), size-off)
	blk := make(disk.Block, common.BlockSize)
	for _, ext := range addr.Span(off, n) {
		dst := p[ext.Pos : ext.Pos+ext.Len()]
		bn, ok := ip.Ptrs.Get(ext.Slot)
		if !ok {
			for i := range dst {
				dst[i] = 0
			}
			continue
		}
		if err := fs.d.ReadTo(uint64(bn), blk); err != nil {
			return 0, common.IOErr(err, "read %s block %d", path, bn)
		}
		copy(dst, blk[ext.Start:ext.End])
	}
	util.DPrintf(5, "Read %s off %d -> %d\n", path, off, n)
	return int(n), nil
}

// Write stores data in path at off, growing the file as needed, and
// returns len(data). The offset may not leave a hole past the end of the
// file.
func (fs *FsSession) Write(path string, data []byte, off uint64) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	ip, err := fs.getInode(path)
	if err != nil {
		return 0, err
	}
	if ip.IsDir() {
		return 0, errors.Wrapf(common.ErrIsDir, "write %s", path)
	}
	n := uint64(len(data))
	if off > uint64(ip.Size) {
		return 0, errors.Wrapf(common.ErrInval, "write %s at %d past size %d",
			path, off, ip.Size)
	}
	if util.SumOverflows(off, n) || off+n > common.MAXFILE {
		return 0, errors.Wrapf(common.ErrNoSpace, "write %s: %d bytes at %d exceed max file size",
			path, n, off)
	}

	tx := buftxn.Begin(fs.d, fs.alloc)
	defer tx.Release()
	for _, ext := range addr.Span(off, n) {
		var b *buf.Buf
		bn, ok := ip.Ptrs.Get(ext.Slot)
		if ok && fs.ownedBlock(bn) {
			b, err = tx.ReadBuf(bn)
			if err != nil {
				return 0, err
			}
		} else {
			bn, err = tx.AllocBlock()
			if err != nil {
				return 0, errors.WithMessagef(err, "write %s", path)
			}
			b = buf.MkBuf(bn, make(disk.Block, common.BlockSize))
			ip.Ptrs.Set(ext.Slot, bn)
		}
		copy(b.Data[ext.Start:ext.End], data[ext.Pos:ext.Pos+ext.Len()])
		tx.OverWrite(bn, b.Data)
	}
	if off+n > uint64(ip.Size) {
		ip.Size = uint32(off + n)
	}
	ip.Mtime = fs.now()
	tx.OverWrite(common.Bnum(ip.Inum), ip.Encode())
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	util.DPrintf(5, "Write %s off %d len %d -> size %d\n", path, off, n, ip.Size)
	return len(data), nil
}
