package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"

	"github.com/mit-pdos/go-fs5600/common"
	"github.com/mit-pdos/go-fs5600/config"
	"github.com/mit-pdos/go-fs5600/fs"
	"github.com/mit-pdos/go-fs5600/inode"
)

func modeString(mode uint32) string {
	m := os.FileMode(mode & 0777)
	if common.IsDir(mode) {
		m |= os.ModeDir
	}
	return m.String()
}

func printAttr(name string, a inode.Attr) {
	printf("%s %4d %4d %8d %s %s\n", modeString(a.Mode), a.Uid, a.Gid, a.Size,
		a.Mtime.UTC().Format("2006-01-02 15:04:05"), name)
}

// Stat implements subcommands.Command for the "stat" command.
type Stat struct{}

// Name implements subcommands.Command.Name.
func (*Stat) Name() string {
	return "stat"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Stat) Synopsis() string {
	return "print the attributes of a file or directory"
}

// Usage implements subcommands.Command.Usage.
func (*Stat) Usage() string {
	return "stat <path>\n"
}

// SetFlags implements subcommands.Command.SetFlags.
func (*Stat) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (*Stat) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return withFs(f, 1, args, func(fsys *fs.FsSession, _ *config.Config, argv []string) error {
		a, err := fsys.Getattr(argv[0])
		if err != nil {
			return err
		}
		printf("ino %d mode %o nlink %d uid %d gid %d size %d blocks %d\n",
			a.Ino, a.Mode, a.Nlink, a.Uid, a.Gid, a.Size, a.Blocks)
		printf("mtime %s ctime %s\n", a.Mtime.UTC().Format("2006-01-02 15:04:05"),
			a.Ctime.UTC().Format("2006-01-02 15:04:05"))
		return nil
	})
}

// Ls implements subcommands.Command for the "ls" command.
type Ls struct{}

// Name implements subcommands.Command.Name.
func (*Ls) Name() string {
	return "ls"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Ls) Synopsis() string {
	return "list a directory"
}

// Usage implements subcommands.Command.Usage.
func (*Ls) Usage() string {
	return "ls <path>\n"
}

// SetFlags implements subcommands.Command.SetFlags.
func (*Ls) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (*Ls) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return withFs(f, 1, args, func(fsys *fs.FsSession, _ *config.Config, argv []string) error {
		it, err := fsys.Readdir(argv[0])
		if err != nil {
			return err
		}
		for it.Next() {
			e := it.Entry()
			printAttr(e.Name, e.Attr)
		}
		return it.Err()
	})
}

// Cat implements subcommands.Command for the "cat" command.
type Cat struct{}

// Name implements subcommands.Command.Name.
func (*Cat) Name() string {
	return "cat"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Cat) Synopsis() string {
	return "copy a file to standard output"
}

// Usage implements subcommands.Command.Usage.
func (*Cat) Usage() string {
	return "cat <path>\n"
}

// SetFlags implements subcommands.Command.SetFlags.
func (*Cat) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (*Cat) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return withFs(f, 1, args, func(fsys *fs.FsSession, _ *config.Config, argv []string) error {
		p := make([]byte, common.BlockSize)
		var off uint64
		for {
			n, err := fsys.Read(argv[0], p, off)
			if err != nil {
				return err
			}
			if n == 0 {
				return nil
			}
			if _, err := stdout.Write(p[:n]); err != nil {
				return err
			}
			off += uint64(n)
		}
	})
}
