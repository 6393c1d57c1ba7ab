// Package fs is the file system engine: a session over one mounted device
// exposing path-based operations to a host.
package fs

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/mit-pdos/go-fs5600/alloc"
	"github.com/mit-pdos/go-fs5600/common"
	"github.com/mit-pdos/go-fs5600/disk"
	"github.com/mit-pdos/go-fs5600/super"
	"github.com/mit-pdos/go-fs5600/util"
)

type Options struct {
	// MaxDepth bounds the number of components in a path.
	MaxDepth uint64
	// Clock supplies timestamps; it defaults to time.Now.
	Clock func() time.Time
	// PersistUtime makes Utime write the new mtime to disk. When false the
	// new time is computed and dropped.
	PersistUtime bool
	// CheckRenameCollision makes Rename refuse a destination name that is
	// already in use. When false the directory may end up with two entries
	// of the same name.
	CheckRenameCollision bool
}

func DefaultOptions() Options {
	return Options{
		MaxDepth: common.DEFAULTDEPTH,
		Clock:    time.Now,
	}
}

// Caller identifies who is creating an object.
type Caller struct {
	Uid uint32
	Gid uint32
}

// Statfs describes the file system as a whole.
type Statfs struct {
	Bsize   uint64
	Blocks  uint64
	Bfree   uint64
	Bavail  uint64
	Namemax uint64
}

type FsSession struct {
	mu    *sync.RWMutex // read-only operations share it, mutators hold it exclusively
	d     disk.Disk
	super *super.FsSuper
	alloc *alloc.Alloc
	opts  Options
}

// Mount validates the superblock of d and loads its bitmap. The session
// takes ownership of d.
func Mount(d disk.Disk, opts Options) (*FsSession, error) {
	if opts.MaxDepth == 0 {
		opts.MaxDepth = common.DEFAULTDEPTH
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	sb, err := super.Load(d)
	if err != nil {
		return nil, errors.WithMessage(err, "mount")
	}
	a, err := alloc.MkAlloc(d, sb.Size)
	if err != nil {
		return nil, errors.WithMessage(err, "mount")
	}
	fs := &FsSession{
		mu:    new(sync.RWMutex),
		d:     d,
		super: sb,
		alloc: a,
		opts:  opts,
	}
	util.Log.WithField("blocks", sb.Size).WithField("used", a.NumUsed()).Info("mounted")
	return fs, nil
}

// Close flushes the device and releases it.
func (fs *FsSession) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.d.Barrier(); err != nil {
		fs.d.Close()
		return common.IOErr(err, "barrier")
	}
	return fs.d.Close()
}

func (fs *FsSession) now() uint32 {
	return uint32(fs.opts.Clock().Unix())
}

func (fs *FsSession) Statfs() Statfs {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	free := fs.alloc.NumFree()
	return Statfs{
		Bsize:   common.BlockSize,
		Blocks:  fs.super.Size,
		Bfree:   free,
		Bavail:  free,
		Namemax: common.MAXNAMELEN,
	}
}

// Errno returns the errno err carries, for hosts that speak errno.
func Errno(err error) unix.Errno {
	return common.Errno(err)
}
