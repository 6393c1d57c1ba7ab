package fs

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/mit-pdos/go-fs5600/common"
)

func (s *FsSuite) TestCreateErrors() {
	s.create("/f")
	s.errno(unix.EEXIST, s.fs.Create(alice, "/f", 0644))
	s.errno(unix.EEXIST, s.fs.Mkdir(alice, "/f", 0755))
	s.errno(unix.EEXIST, s.fs.Mkdir(alice, "/", 0755))
	s.errno(unix.ENOENT, s.fs.Create(alice, "/nope/g", 0644))
	s.errno(unix.ENOTDIR, s.fs.Create(alice, "/f/g", 0644))
	s.errno(unix.EINVAL, s.fs.Create(alice, "/"+strings.Repeat("n", 28), 0644))
	s.NoError(s.fs.Create(alice, "/"+strings.Repeat("n", 27), 0644))
}

func (s *FsSuite) TestDirectoryFull() {
	s.mkdir("/d")
	for i := uint64(0); i < common.NDIRENT; i++ {
		s.create(fmt.Sprintf("/d/f%d", i))
	}
	attr, err := s.fs.Getattr("/d")
	s.Require().NoError(err)
	s.Equal(common.NDIRENT*common.DIRENTSZ, attr.Size)

	used := s.used()
	s.errno(unix.ENOSPC, s.fs.Create(alice, "/d/extra", 0644))
	s.Equal(used, s.used(), "no blocks leaked")

	s.Require().NoError(s.fs.Unlink("/d/f5"))
	s.create("/d/extra")
	it, err := s.fs.Readdir("/d")
	s.Require().NoError(err)
	s.Equal(int(common.NDIRENT), it.Len())
}

func (s *FsSuite) TestCreateOutOfBlocks() {
	// leave exactly one free block: not enough for an inode and its data
	free := s.fs.Statfs().Bfree
	s.create("/big")
	s.write("/big", make([]byte, (free-2)*common.BlockSize), 0)
	s.Equal(uint64(1), s.fs.Statfs().Bfree)

	s.errno(unix.ENOSPC, s.fs.Create(alice, "/g", 0644))
	s.Equal(uint64(1), s.fs.Statfs().Bfree, "inode block released")
	s.Equal([]string{"big"}, s.names("/"))
}

func (s *FsSuite) TestUnlink() {
	s.create("/f")
	s.write("/f", make([]byte, 3*4096), 0)
	s.Equal(uint64(8), s.used())
	s.tick()
	s.Require().NoError(s.fs.Unlink("/f"))
	s.Equal(uint64(4), s.used(), "inode and data blocks freed")

	_, err := s.fs.Getattr("/f")
	s.errno(unix.ENOENT, err)
	root, err := s.fs.Getattr("/")
	s.Require().NoError(err)
	s.Equal(uint64(0), root.Size)
	s.True(root.Mtime.Equal(s.clock))
}

func (s *FsSuite) TestUnlinkErrors() {
	s.mkdir("/d")
	s.errno(unix.EISDIR, s.fs.Unlink("/d"))
	s.errno(unix.ENOENT, s.fs.Unlink("/nope"))
	s.errno(unix.EINVAL, s.fs.Unlink("/"))
}

func (s *FsSuite) TestRmdir() {
	s.mkdir("/d")
	s.create("/d/f")
	s.errno(unix.ENOTEMPTY, s.fs.Rmdir("/d"))

	s.Require().NoError(s.fs.Unlink("/d/f"))
	attr, err := s.fs.Getattr("/d")
	s.Require().NoError(err)
	ip, err := s.fs.readInode(common.Inum(attr.Ino))
	s.Require().NoError(err)
	ebn, _ := ip.Ptrs.Get(0)

	s.Require().NoError(s.fs.Rmdir("/d"))
	s.False(s.fs.alloc.IsAllocated(ebn), "entry block freed")
	s.False(s.fs.alloc.IsAllocated(common.Bnum(attr.Ino)), "inode block freed")
	s.Equal(uint64(4), s.used())
	s.Empty(s.names("/"))
}

func (s *FsSuite) TestRmdirErrors() {
	s.create("/f")
	s.errno(unix.ENOTDIR, s.fs.Rmdir("/f"))
	s.errno(unix.ENOENT, s.fs.Rmdir("/nope"))
	s.errno(unix.EINVAL, s.fs.Rmdir("/"))
	s.errno(unix.ENOTDIR, s.fs.Rmdir("/f/x"))
}

func (s *FsSuite) TestRename() {
	s.mkdir("/d")
	s.create("/d/a")
	s.write("/d/a", []byte("contents"), 0)
	before, err := s.fs.Getattr("/d/a")
	s.Require().NoError(err)

	s.Require().NoError(s.fs.Rename("/d/a", "/d/b"))
	_, err = s.fs.Getattr("/d/a")
	s.errno(unix.ENOENT, err)
	after, err := s.fs.Getattr("/d/b")
	s.Require().NoError(err)
	s.Equal(before, after, "same inode, untouched")
	s.Equal([]byte("contents"), s.readAll("/d/b"))
}

func (s *FsSuite) TestRenameErrors() {
	s.mkdir("/d")
	s.create("/d/a")
	s.create("/f")
	s.errno(unix.ENOENT, s.fs.Rename("/d/nope", "/d/b"))
	s.errno(unix.ENOENT, s.fs.Rename("/d/a", "/e/b"), "destination parent missing")
	s.errno(unix.ENOTDIR, s.fs.Rename("/d/a", "/f/b"))
	s.errno(unix.EEXIST, s.fs.Rename("/d/a", "/d/a"))
	s.errno(unix.EINVAL, s.fs.Rename("/d/a", "/b"), "parents differ")
	s.errno(unix.EINVAL, s.fs.Rename("/d/a", "/d/"+strings.Repeat("n", 28)))
	s.errno(unix.EINVAL, s.fs.Rename("/", "/x"))
}

func (s *FsSuite) TestRenameOntoExistingName() {
	s.create("/a")
	s.create("/b")
	s.Require().NoError(s.fs.Rename("/a", "/b"))
	s.Equal([]string{"b", "b"}, s.names("/"), "duplicate names are not refused")
}

func (s *FsSuite) TestRenameCollisionCheck() {
	s.Require().NoError(s.fs.Close())
	s.opts.CheckRenameCollision = true
	s.mount()
	s.create("/a")
	s.create("/b")
	s.errno(unix.EEXIST, s.fs.Rename("/a", "/b"))
	s.NoError(s.fs.Rename("/a", "/c"))
	s.Equal([]string{"c", "b"}, s.names("/"))
}

func (s *FsSuite) TestTruncate() {
	s.create("/f")
	s.write("/f", make([]byte, 3*4096), 0)
	ip, err := s.fs.readInode(4)
	s.Require().NoError(err)
	b0, _ := ip.Ptrs.Get(0)
	b1, _ := ip.Ptrs.Get(1)
	b2, _ := ip.Ptrs.Get(2)

	s.tick()
	s.Require().NoError(s.fs.Truncate("/f", 0))
	s.True(s.fs.alloc.IsAllocated(b0), "first block retained")
	s.False(s.fs.alloc.IsAllocated(b1))
	s.False(s.fs.alloc.IsAllocated(b2))

	ip, err = s.fs.readInode(4)
	s.Require().NoError(err)
	_, ok := ip.Ptrs.Get(1)
	s.False(ok)
	bn, ok := ip.Ptrs.Get(0)
	s.True(ok)
	s.Equal(b0, bn)

	p := make([]byte, 10)
	n, err := s.fs.Read("/f", p, 0)
	s.NoError(err)
	s.Equal(0, n)

	attr, err := s.fs.Getattr("/f")
	s.Require().NoError(err)
	s.Equal(uint64(0), attr.Size)
	s.False(attr.Mtime.Equal(s.clock), "truncate leaves mtime alone")

	s.write("/f", []byte("again"), 0)
	s.Equal([]byte("again"), s.readAll("/f"))
}

func (s *FsSuite) TestTruncateErrors() {
	s.create("/f")
	s.mkdir("/d")
	s.errno(unix.EINVAL, s.fs.Truncate("/f", 1))
	s.errno(unix.EINVAL, s.fs.Truncate("/nope", 1), "length is checked first")
	s.errno(unix.EISDIR, s.fs.Truncate("/d", 0))
	s.errno(unix.ENOENT, s.fs.Truncate("/nope", 0))
}

func (s *FsSuite) TestChmod() {
	s.mkdir("/d")
	s.Require().NoError(s.fs.Chmod("/d", common.S_IFREG|0700))
	attr, err := s.fs.Getattr("/d")
	s.Require().NoError(err)
	s.Equal(common.S_IFDIR|0700, attr.Mode, "type bits kept")
	s.errno(unix.ENOENT, s.fs.Chmod("/nope", 0644))
}

func (s *FsSuite) TestUtimeNotPersisted() {
	s.create("/f")
	before, err := s.fs.Getattr("/f")
	s.Require().NoError(err)
	t := time.Unix(123456, 0)
	s.Require().NoError(s.fs.Utime("/f", &t))
	s.Require().NoError(s.fs.Utime("/f", nil))
	after, err := s.fs.Getattr("/f")
	s.Require().NoError(err)
	s.Equal(before.Mtime, after.Mtime)
	s.errno(unix.ENOENT, s.fs.Utime("/nope", nil))
}

func (s *FsSuite) TestUtimePersisted() {
	s.Require().NoError(s.fs.Close())
	s.opts.PersistUtime = true
	s.mount()
	s.create("/f")

	t := time.Unix(123456, 0)
	s.Require().NoError(s.fs.Utime("/f", &t))
	attr, err := s.fs.Getattr("/f")
	s.Require().NoError(err)
	s.True(attr.Mtime.Equal(t))

	s.tick()
	s.Require().NoError(s.fs.Utime("/f", nil))
	attr, err = s.fs.Getattr("/f")
	s.Require().NoError(err)
	s.True(attr.Mtime.Equal(s.clock))
}
