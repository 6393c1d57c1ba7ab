package fs

import (
	"golang.org/x/sys/unix"

	"github.com/mit-pdos/go-fs5600/common"
)

func (s *FsSuite) TestReadFailures() {
	s.create("/f")
	s.write("/f", []byte("data"), 0)

	s.d.FailRead(uint64(common.ROOTINUM))
	_, err := s.fs.Getattr("/f")
	s.errno(unix.EIO, err)
	s.d.Reset()

	s.d.FailRead(5)
	_, err = s.fs.Read("/f", make([]byte, 4), 0)
	s.errno(unix.EIO, err, "data block")
	s.d.Reset()

	s.d.FailRead(4)
	it, err := s.fs.Readdir("/")
	s.Require().NoError(err)
	s.False(it.Next())
	s.errno(unix.EIO, it.Err())
	s.d.Reset()
	it.Reset()
	s.True(it.Next())
	s.Equal("f", it.Entry().Name)
}

func (s *FsSuite) TestCreateWriteFailureReleases() {
	// the new file's data block is the last block staged
	s.d.FailWrite(5)
	err := s.fs.Create(alice, "/a", 0644)
	s.errno(unix.EIO, err)
	s.Equal(uint64(4), s.used(), "inode and data block released")
}

func (s *FsSuite) TestCreateBitmapFailure() {
	s.d.FailWrite(uint64(common.BITMAPBNUM))
	s.errno(unix.EIO, s.fs.Create(alice, "/a", 0644))
	s.d.Reset()
	s.Equal(uint64(4), s.used())
	s.Empty(s.names("/"), "nothing staged was written")
}

func (s *FsSuite) TestWriteCommitFailureReleases() {
	s.create("/f")
	used := s.used()
	s.d.FailWrite(4)
	_, err := s.fs.Write("/f", make([]byte, 3*4096), 0)
	s.errno(unix.EIO, err)
	s.Equal(used, s.used(), "new data blocks released")
	s.d.Reset()

	attr, err := s.fs.Getattr("/f")
	s.Require().NoError(err)
	s.Equal(uint64(0), attr.Size, "inode never written")
}

func (s *FsSuite) TestWriteAfterDeviceStops() {
	s.create("/f")
	used := s.used()
	s.d.FailWritesAfter(0)
	_, err := s.fs.Write("/f", make([]byte, 2*4096), 0)
	s.errno(unix.EIO, err)
	s.d.Reset()
	s.Equal(used, s.used())
}

func (s *FsSuite) TestUnlinkFailure() {
	s.create("/f")
	s.d.FailWrite(uint64(common.BITMAPBNUM))
	s.errno(unix.EIO, s.fs.Unlink("/f"))
	s.d.Reset()
	_, err := s.fs.Getattr("/f")
	s.NoError(err, "entry still present")
}

func (s *FsSuite) TestChmodFailure() {
	s.create("/f")
	s.d.FailWrite(4)
	s.errno(unix.EIO, s.fs.Chmod("/f", 0600))
	s.d.Reset()
	attr, err := s.fs.Getattr("/f")
	s.Require().NoError(err)
	s.Equal(common.S_IFREG|0644, attr.Mode)
}
