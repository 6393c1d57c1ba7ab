package super

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/go-fs5600/alloc"
	"github.com/mit-pdos/go-fs5600/common"
	"github.com/mit-pdos/go-fs5600/dir"
	"github.com/mit-pdos/go-fs5600/disk"
	"github.com/mit-pdos/go-fs5600/inode"
)

func TestSuperLayout(t *testing.T) {
	assert := assert.New(t)
	sb := &FsSuper{Magic: common.MAGIC, Size: 100}
	blk := sb.Encode()
	assert.Equal([]byte("5600"), blk[:4], "magic spells 5600 on disk")
	assert.Equal([]byte{100, 0, 0, 0}, blk[4:8])
	assert.Equal(sb, Decode(blk))
}

func TestFormatLoad(t *testing.T) {
	assert := assert.New(t)
	d := disk.NewMemDisk(64)
	sb, err := Format(d, 0, 1, 2, 1000)
	require.NoError(t, err)
	assert.Equal(uint64(64), sb.Size)

	sb2, err := Load(d)
	require.NoError(t, err)
	assert.Equal(sb, sb2)

	a, err := alloc.MkAlloc(d, sb.Size)
	require.NoError(t, err)
	assert.Equal(uint64(4), a.NumUsed())

	blk, err := d.Read(uint64(common.ROOTINUM))
	require.NoError(t, err)
	root := inode.Decode(blk, common.ROOTINUM)
	assert.True(root.IsDir())
	assert.Equal(uint32(0755), root.Mode&^common.S_IFMT)
	assert.Equal(uint16(1), root.Uid)
	assert.Equal(uint32(0), root.Size)
	bn, ok := root.Ptrs.Get(0)
	assert.True(ok)

	blk, err = d.Read(uint64(bn))
	require.NoError(t, err)
	assert.Empty(dir.Decode(blk).Valid())
}

func TestFormatSizes(t *testing.T) {
	d := disk.NewMemDisk(16)
	_, err := Format(d, 32, 0, 0, 0)
	assert.True(t, errors.Is(err, common.ErrInval), "larger than the device")
	_, err = Format(d, 2, 0, 0, 0)
	assert.True(t, errors.Is(err, common.ErrInval), "too small")
	sb, err := Format(d, 10, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), sb.Size)
}

func TestLoadRejects(t *testing.T) {
	d := disk.NewMemDisk(16)
	_, err := Load(d)
	assert.True(t, errors.Is(err, ErrBadMagic))

	sb := &FsSuper{Magic: common.MAGIC, Size: 17}
	require.NoError(t, d.Write(0, sb.Encode()))
	_, err = Load(d)
	assert.True(t, errors.Is(err, common.ErrInval))

	fd := disk.NewFaultDisk(d)
	fd.FailRead(0)
	_, err = Load(fd)
	assert.True(t, errors.Is(err, common.ErrIO))
}
