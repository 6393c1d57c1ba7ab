package disk

import (
	"github.com/pkg/errors"

	"github.com/mit-pdos/go-fs5600/common"
)

// Block is a 4096-byte buffer
type Block = []byte

const BlockSize uint64 = common.BlockSize

// ErrOutOfBounds is returned for accesses at or past Size().
var ErrOutOfBounds = errors.New("block address out of bounds")

// ErrBadSize is returned when a buffer is not exactly one block.
var ErrBadSize = errors.New("buffer is not block-sized")

// Disk provides access to a logical block-based disk.
//
// Every method reports device failures as an error; there are no partial
// block transfers.
type Disk interface {
	// Read reads a disk block by address
	//
	// Expects a < Size().
	Read(a uint64) (Block, error)

	// ReadTo reads the disk block at a and stores the result in b
	//
	// Expects a < Size().
	ReadTo(a uint64, b Block) error

	// Write updates a disk block by address
	//
	// Expects a < Size().
	Write(a uint64, v Block) error

	// Size reports how big the disk is, in blocks
	Size() (uint64, error)

	// Barrier ensures data is persisted.
	//
	// When it returns, all outstanding writes are guaranteed to be durably on
	// disk
	Barrier() error

	// Close releases any resources used by the disk and makes it unusable.
	Close() error
}

func checkAccess(a uint64, n uint64, b Block) error {
	if uint64(len(b)) != BlockSize {
		return errors.Wrapf(ErrBadSize, "%d bytes", len(b))
	}
	if a >= n {
		return errors.Wrapf(ErrOutOfBounds, "block %d of %d", a, n)
	}
	return nil
}
