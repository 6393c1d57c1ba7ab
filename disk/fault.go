package disk

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrInjected is the error returned by a FaultDisk for a failed access.
var ErrInjected = errors.New("injected I/O failure")

// FaultDisk wraps a Disk and fails selected accesses. It is meant for
// exercising I/O error paths.
type FaultDisk struct {
	Disk

	mu         *sync.Mutex
	readFail   map[uint64]bool
	writeFail  map[uint64]bool
	writesLeft int64 // -1: unlimited
	writes     uint64
}

func NewFaultDisk(d Disk) *FaultDisk {
	return &FaultDisk{
		Disk:       d,
		mu:         new(sync.Mutex),
		readFail:   make(map[uint64]bool),
		writeFail:  make(map[uint64]bool),
		writesLeft: -1,
	}
}

// FailRead makes reads of block a fail until Reset.
func (d *FaultDisk) FailRead(a uint64) {
	d.mu.Lock()
	d.readFail[a] = true
	d.mu.Unlock()
}

// FailWrite makes writes of block a fail until Reset.
func (d *FaultDisk) FailWrite(a uint64) {
	d.mu.Lock()
	d.writeFail[a] = true
	d.mu.Unlock()
}

// FailWritesAfter lets n more writes through and fails every later one.
func (d *FaultDisk) FailWritesAfter(n uint64) {
	d.mu.Lock()
	d.writesLeft = int64(n)
	d.mu.Unlock()
}

// Reset clears all injected failures.
func (d *FaultDisk) Reset() {
	d.mu.Lock()
	d.readFail = make(map[uint64]bool)
	d.writeFail = make(map[uint64]bool)
	d.writesLeft = -1
	d.mu.Unlock()
}

// Writes reports how many writes reached the underlying disk.
func (d *FaultDisk) Writes() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writes
}

func (d *FaultDisk) ReadTo(a uint64, b Block) error {
	d.mu.Lock()
	fail := d.readFail[a]
	d.mu.Unlock()
	if fail {
		return errors.Wrapf(ErrInjected, "read block %d", a)
	}
	return d.Disk.ReadTo(a, b)
}

func (d *FaultDisk) Read(a uint64) (Block, error) {
	buf := make(Block, BlockSize)
	err := d.ReadTo(a, buf)
	return buf, err
}

func (d *FaultDisk) Write(a uint64, v Block) error {
	d.mu.Lock()
	fail := d.writeFail[a]
	if d.writesLeft == 0 {
		fail = true
	} else if !fail && d.writesLeft > 0 {
		d.writesLeft--
	}
	if !fail {
		d.writes++
	}
	d.mu.Unlock()
	if fail {
		return errors.Wrapf(ErrInjected, "write block %d", a)
	}
	return d.Disk.Write(a, v)
}
