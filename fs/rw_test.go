package fs

import (
	"bytes"

	"golang.org/x/sys/unix"

	"github.com/mit-pdos/go-fs5600/common"
)

func pattern(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i%251)
	}
	return b
}

func (s *FsSuite) TestWriteReadRoundTrip() {
	sizes := []int{0, 1, 27, 4095, 4096, 4097, 3*4096 + 7}
	for i, sz := range sizes {
		path := "/f" + string(rune('a'+i))
		s.create(path)
		data := pattern(sz, byte(i))
		s.write(path, data, 0)
		s.Equal(data, s.readAll(path), "size %d", sz)

		attr, err := s.fs.Getattr(path)
		s.Require().NoError(err)
		s.Equal(uint64(sz), attr.Size)
	}
}

func (s *FsSuite) TestReadClamps() {
	s.create("/f")
	s.write("/f", []byte("hello world"), 0)

	p := make([]byte, 100)
	n, err := s.fs.Read("/f", p, 6)
	s.Require().NoError(err)
	s.Equal(5, n)
	s.Equal("world", string(p[:n]))

	n, err = s.fs.Read("/f", p, 11)
	s.NoError(err)
	s.Equal(0, n, "at end of file")
	n, err = s.fs.Read("/f", p, 1000)
	s.NoError(err)
	s.Equal(0, n, "past end of file")

	n, err = s.fs.Read("/f", p[:3], 0)
	s.NoError(err)
	s.Equal("hel", string(p[:n]))
}

func (s *FsSuite) TestOverwriteAndAppend() {
	s.create("/f")
	s.write("/f", bytes.Repeat([]byte("a"), 5000), 0)
	s.write("/f", []byte("bbbb"), 4094)
	s.write("/f", []byte("cc"), 5000)

	got := s.readAll("/f")
	s.Len(got, 5002)
	s.Equal("aabbbbaa", string(got[4092:4100]))
	s.Equal("cc", string(got[5000:]))
	s.Equal(uint64(7), s.used(), "inode plus two data blocks")
}

func (s *FsSuite) TestWriteUpdatesMtime() {
	s.create("/f")
	s.tick()
	n, err := s.fs.Write("/f", nil, 0)
	s.NoError(err)
	s.Equal(0, n)
	attr, err := s.fs.Getattr("/f")
	s.Require().NoError(err)
	s.True(attr.Mtime.Equal(s.clock), "empty write still updates mtime")
	s.Equal(uint64(0), attr.Size)
}

func (s *FsSuite) TestWritePastEnd() {
	s.create("/f")
	s.write("/f", []byte("abc"), 0)
	before, err := s.fs.Getattr("/f")
	s.Require().NoError(err)
	used := s.used()

	s.tick()
	_, err = s.fs.Write("/f", []byte("x"), 4)
	s.errno(unix.EINVAL, err)

	after, err := s.fs.Getattr("/f")
	s.Require().NoError(err)
	s.Equal(before, after, "file unmodified")
	s.Equal(used, s.used())
	s.Equal([]byte("abc"), s.readAll("/f"))
}

func (s *FsSuite) TestWriteExceedsMaxFile() {
	s.create("/f")
	before, err := s.fs.Getattr("/f")
	s.Require().NoError(err)

	_, err = s.fs.Write("/f", make([]byte, common.MAXFILE+1), 0)
	s.errno(unix.ENOSPC, err)
	_, err = s.fs.Write("/f", []byte{1}, ^uint64(0))
	s.errno(unix.EINVAL, err, "offset past size is checked first")

	after, err := s.fs.Getattr("/f")
	s.Require().NoError(err)
	s.Equal(before, after, "inode unmodified")
}

func (s *FsSuite) TestWriteOutOfBlocksReleases() {
	s.create("/f")
	s.write("/f", []byte("keep"), 0)
	used := s.used()

	// more blocks than the device has left
	_, err := s.fs.Write("/f", make([]byte, testBlocks*common.BlockSize), 0)
	s.errno(unix.ENOSPC, err)
	s.Equal(used, s.used(), "allocations given back")
	s.Equal([]byte("keep"), s.readAll("/f"))
}

func (s *FsSuite) TestWriteReadDirectory() {
	s.mkdir("/d")
	_, err := s.fs.Write("/d", []byte("x"), 0)
	s.errno(unix.EISDIR, err)
	_, err = s.fs.Read("/d", make([]byte, 1), 0)
	s.errno(unix.EISDIR, err)
	_, err = s.fs.Read("/nope", make([]byte, 1), 0)
	s.errno(unix.ENOENT, err)
	_, err = s.fs.Write("/nope", []byte("x"), 0)
	s.errno(unix.ENOENT, err)
}

// Writing into the second block while the file is 10 bytes long would
// leave a hole, which is refused.
func (s *FsSuite) TestSecondBlockWriteNeedsNoHole() {
	s.create("/f")
	s.write("/f", []byte("0123456789"), 0)
	_, err := s.fs.Write("/f", []byte("abcde"), 4096)
	s.errno(unix.EINVAL, err)
	s.Equal([]byte("0123456789"), s.readAll("/f"))
}

func (s *FsSuite) TestSecondBlockWriteAfterZeroFill() {
	s.create("/f")
	s.write("/f", []byte("0123456789"), 0)
	s.write("/f", make([]byte, 4096-10), 10)
	s.write("/f", []byte("abcde"), 4096)

	p := make([]byte, 4101)
	n, err := s.fs.Read("/f", p, 0)
	s.Require().NoError(err)
	s.Equal(4101, n)
	want := append([]byte("0123456789"), make([]byte, 4086)...)
	want = append(want, []byte("abcde")...)
	s.Equal(want, p)
}
