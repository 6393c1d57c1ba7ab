package disk

import (
	"sync"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/mit-pdos/go-fs5600/util"
)

var _ Disk = (*fileDisk)(nil)

// ErrLocked is returned when another process already has the image open.
var ErrLocked = errors.New("disk image is in use")

type fileDisk struct {
	fd        int
	numBlocks uint64
	lock      *flock.Flock
}

// NewFileDisk opens (creating if needed) a disk image backed by a regular
// file or block device. A numBlocks of zero keeps the size of an existing
// image; otherwise a regular file is resized to numBlocks blocks.
//
// The image is locked exclusively until Close, so only one session can
// mount it at a time.
func NewFileDisk(path string, numBlocks uint64) (Disk, error) {
	lock := flock.NewFlock(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, errors.Wrapf(err, "lock %s", path)
	}
	if !ok {
		return nil, errors.Wrap(ErrLocked, path)
	}
	d, err := openFileDisk(path, numBlocks)
	if err != nil {
		lock.Unlock()
		return nil, err
	}
	d.lock = lock
	util.DPrintf(1, "NewFileDisk: %s %d blocks\n", path, d.numBlocks)
	return d, nil
}

func openFileDisk(path string, numBlocks uint64) (*fileDisk, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT, 0666)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	var stat unix.Stat_t
	err = unix.Fstat(fd, &stat)
	if err != nil {
		unix.Close(fd)
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	regular := stat.Mode&unix.S_IFMT == unix.S_IFREG
	if numBlocks == 0 {
		if !regular {
			unix.Close(fd)
			return nil, errors.Errorf("%s: block count required for non-regular files", path)
		}
		numBlocks = uint64(stat.Size) / BlockSize
	} else if regular && uint64(stat.Size) != numBlocks*BlockSize {
		err = unix.Ftruncate(fd, int64(numBlocks*BlockSize))
		if err != nil {
			unix.Close(fd)
			return nil, errors.Wrapf(err, "resize %s", path)
		}
	}
	return &fileDisk{fd: fd, numBlocks: numBlocks}, nil
}

func (d *fileDisk) ReadTo(a uint64, buf Block) error {
	if err := checkAccess(a, d.numBlocks, buf); err != nil {
		return err
	}
	n, err := unix.Pread(d.fd, buf, int64(a*BlockSize))
	if err != nil {
		return errors.Wrapf(err, "pread block %d", a)
	}
	if uint64(n) != BlockSize {
		return errors.Errorf("short read at block %d: %d bytes", a, n)
	}
	return nil
}

func (d *fileDisk) Read(a uint64) (Block, error) {
	buf := make([]byte, BlockSize)
	err := d.ReadTo(a, buf)
	return buf, err
}

func (d *fileDisk) Write(a uint64, v Block) error {
	if err := checkAccess(a, d.numBlocks, v); err != nil {
		return err
	}
	n, err := unix.Pwrite(d.fd, v, int64(a*BlockSize))
	if err != nil {
		return errors.Wrapf(err, "pwrite block %d", a)
	}
	if uint64(n) != BlockSize {
		return errors.Errorf("short write at block %d: %d bytes", a, n)
	}
	return nil
}

func (d *fileDisk) Size() (uint64, error) {
	return d.numBlocks, nil
}

func (d *fileDisk) Barrier() error {
	// NOTE: on macOS, this flushes to the drive but doesn't actually issue a
	// disk barrier; see https://golang.org/src/internal/poll/fd_fsync_darwin.go
	// for more details. The correct replacement is to issue a fcntl syscall with
	// cmd F_FULLFSYNC.
	err := unix.Fsync(d.fd)
	if err != nil {
		return errors.Wrap(err, "fsync")
	}
	return nil
}

func (d *fileDisk) Close() error {
	err := unix.Close(d.fd)
	if d.lock != nil {
		if uerr := d.lock.Unlock(); uerr != nil && err == nil {
			err = uerr
		}
	}
	return err
}

/////////////////////////

var _ Disk = (*memDisk)(nil)

type memDisk struct {
	l      *sync.RWMutex
	blocks [][BlockSize]byte
}

func NewMemDisk(numBlocks uint64) Disk {
	blocks := make([][BlockSize]byte, numBlocks)
	return &memDisk{l: new(sync.RWMutex), blocks: blocks}
}

func (d *memDisk) ReadTo(a uint64, buf Block) error {
	d.l.RLock()
	defer d.l.RUnlock()
	if err := checkAccess(a, uint64(len(d.blocks)), buf); err != nil {
		return err
	}
	copy(buf, d.blocks[a][:])
	return nil
}

func (d *memDisk) Read(a uint64) (Block, error) {
	buf := make(Block, BlockSize)
	err := d.ReadTo(a, buf)
	return buf, err
}

func (d *memDisk) Write(a uint64, v Block) error {
	d.l.Lock()
	defer d.l.Unlock()
	if err := checkAccess(a, uint64(len(d.blocks)), v); err != nil {
		return err
	}
	copy(d.blocks[a][:], v)
	return nil
}

func (d *memDisk) Size() (uint64, error) {
	// this never changes so we assume it's safe to run lock-free
	return uint64(len(d.blocks)), nil
}

func (d *memDisk) Barrier() error { return nil }

func (d *memDisk) Close() error { return nil }
