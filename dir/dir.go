// Package dir implements the directory entry block and path splitting.
//
// A directory owns exactly one entry block: NDIRENT 32-byte entries, each
// a little-endian word (valid in bit 0, inode number in bits 1-31)
// followed by a NUL-terminated name.
package dir

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-fs5600/common"
	"github.com/mit-pdos/go-fs5600/disk"
)

type Dirent struct {
	Valid bool
	Inum  common.Inum
	Name  string
}

func (de Dirent) encode() []byte {
	word := uint32(de.Inum) << 1
	if de.Valid {
		word |= 1
	}
	enc := marshal.NewEnc(common.DIRENTSZ)
	enc.PutInt32(word)
	b := enc.Finish()
	copy(b[4:4+common.MAXNAMELEN], de.Name)
	return b
}

func decodeDirent(b []byte) Dirent {
	dec := marshal.NewDec(b[:4])
	word := dec.GetInt32()
	name := b[4:common.DIRENTSZ]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return Dirent{
		Valid: word&1 == 1,
		Inum:  common.Inum(word >> 1),
		Name:  string(name),
	}
}

// Table is the in-memory form of a directory's entry block.
type Table struct {
	Ents [common.NDIRENT]Dirent
}

func Decode(blk disk.Block) *Table {
	t := &Table{}
	for i := range t.Ents {
		off := uint64(i) * common.DIRENTSZ
		t.Ents[i] = decodeDirent(blk[off : off+common.DIRENTSZ])
	}
	return t
}

func (t *Table) Encode() disk.Block {
	blk := make(disk.Block, common.BlockSize)
	for i, de := range t.Ents {
		off := uint64(i) * common.DIRENTSZ
		copy(blk[off:off+common.DIRENTSZ], de.encode())
	}
	return blk
}

// Lookup finds the valid entry called name.
func (t *Table) Lookup(name string) (uint64, bool) {
	for i, de := range t.Ents {
		if de.Valid && de.Name == name {
			return uint64(i), true
		}
	}
	return 0, false
}

// FreeSlot returns the first entry not in use.
func (t *Table) FreeSlot() (uint64, bool) {
	for i, de := range t.Ents {
		if !de.Valid {
			return uint64(i), true
		}
	}
	return 0, false
}

func (t *Table) Set(slot uint64, name string, inum common.Inum) {
	t.Ents[slot] = Dirent{Valid: true, Inum: inum, Name: name}
}

// Remove marks slot invalid and returns the inode it recorded. The stale
// name and inode number stay behind in the block.
func (t *Table) Remove(slot uint64) common.Inum {
	t.Ents[slot].Valid = false
	return t.Ents[slot].Inum
}

func (t *Table) Rename(slot uint64, name string) {
	t.Ents[slot].Name = name
}

// Valid returns the entries in use, in slot order.
func (t *Table) Valid() []Dirent {
	var ents []Dirent
	for _, de := range t.Ents {
		if de.Valid {
			ents = append(ents, de)
		}
	}
	return ents
}

func (t *Table) NValid() uint64 {
	return uint64(len(t.Valid()))
}

// CheckName rejects names that do not fit in an entry.
func CheckName(name string) error {
	if name == "" {
		return errors.Wrap(common.ErrInval, "empty name")
	}
	if uint64(len(name)) > common.MAXNAMELEN {
		return errors.Wrapf(common.ErrInval, "name %q longer than %d bytes",
			name, common.MAXNAMELEN)
	}
	if strings.IndexByte(name, 0) >= 0 {
		return errors.Wrapf(common.ErrInval, "name %q contains NUL", name)
	}
	return nil
}

// SplitPath breaks a path into its components, skipping empty ones, so
// "", "/" and "//" all name the root.
func SplitPath(path string) []string {
	var comps []string
	for _, c := range strings.Split(path, "/") {
		if c != "" {
			comps = append(comps, c)
		}
	}
	return comps
}

// SplitParent returns the components of path's parent and path's final
// component. The root has no final component and yields "".
func SplitParent(path string) ([]string, string) {
	comps := SplitPath(path)
	if len(comps) == 0 {
		return nil, ""
	}
	return comps[:len(comps)-1], comps[len(comps)-1]
}

// JoinPath is the canonical absolute form of comps.
func JoinPath(comps []string) string {
	return "/" + strings.Join(comps, "/")
}
