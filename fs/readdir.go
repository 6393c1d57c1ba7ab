package fs

import (
	"github.com/mit-pdos/go-fs5600/dir"
	"github.com/mit-pdos/go-fs5600/inode"
)

// DirEntry is one step of a directory enumeration.
type DirEntry struct {
	Name string
	Attr inode.Attr
}

// DirIter enumerates the valid entries of a directory in slot order. The
// entry list is captured by Readdir; each entry's attributes are loaded
// when the iterator reaches it.
//
//	it, err := fs.Readdir("/")
//	for it.Next() {
//		e := it.Entry()
//	}
//	err = it.Err()
type DirIter struct {
	fs    *FsSession
	ents  []dir.Dirent
	next  int
	entry DirEntry
	err   error
}

// Readdir starts an enumeration of the directory at path.
func (fs *FsSession) Readdir(path string) (*DirIter, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	ip, err := fs.getDir(dir.SplitPath(path))
	if err != nil {
		return nil, err
	}
	tbl, err := fs.readTable(ip)
	if err != nil {
		return nil, err
	}
	return &DirIter{fs: fs, ents: tbl.Valid()}, nil
}

// Next advances to the next entry. It returns false at the end or after
// an error.
func (it *DirIter) Next() bool {
	if it.err != nil || it.next >= len(it.ents) {
		return false
	}
	de := it.ents[it.next]
	it.fs.mu.RLock()
	ip, err := it.fs.readInode(de.Inum)
	it.fs.mu.RUnlock()
	if err != nil {
		it.err = err
		return false
	}
	it.next++
	it.entry = DirEntry{Name: de.Name, Attr: ip.Stat()}
	return true
}

func (it *DirIter) Entry() DirEntry {
	return it.entry
}

func (it *DirIter) Err() error {
	return it.err
}

// Reset restarts the enumeration from the first entry.
func (it *DirIter) Reset() {
	it.next = 0
	it.err = nil
	it.entry = DirEntry{}
}

// Len is the number of entries the enumeration yields.
func (it *DirIter) Len() int {
	return len(it.ents)
}
