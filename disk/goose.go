package disk

import (
	"fmt"

	"github.com/pkg/errors"
	gdisk "github.com/tchajed/goose/machine/disk"
)

var _ Disk = (*gooseDisk)(nil)

// gooseDisk adapts a goose disk, which panics on failure, to Disk.
type gooseDisk struct {
	d gdisk.Disk
}

// FromGoose wraps a goose disk (for example gdisk.NewMemDisk) so that
// goose-style panics surface as errors.
func FromGoose(d gdisk.Disk) Disk {
	return &gooseDisk{d: d}
}

func recoverErr(err *error, what string, a uint64) {
	if r := recover(); r != nil {
		*err = errors.Errorf("%s block %d: %v", what, a, fmt.Sprint(r))
	}
}

func (g *gooseDisk) ReadTo(a uint64, b Block) (err error) {
	if err := checkAccess(a, g.d.Size(), b); err != nil {
		return err
	}
	defer recoverErr(&err, "read", a)
	copy(b, g.d.Read(a))
	return nil
}

func (g *gooseDisk) Read(a uint64) (Block, error) {
	buf := make(Block, BlockSize)
	err := g.ReadTo(a, buf)
	return buf, err
}

func (g *gooseDisk) Write(a uint64, v Block) (err error) {
	if err := checkAccess(a, g.d.Size(), v); err != nil {
		return err
	}
	defer recoverErr(&err, "write", a)
	g.d.Write(a, v)
	return nil
}

func (g *gooseDisk) Size() (uint64, error) {
	return g.d.Size(), nil
}

func (g *gooseDisk) Barrier() (err error) {
	defer recoverErr(&err, "barrier", 0)
	g.d.Barrier()
	return nil
}

func (g *gooseDisk) Close() (err error) {
	defer recoverErr(&err, "close", 0)
	g.d.Close()
	return nil
}
