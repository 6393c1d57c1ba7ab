package main

import (
	"context"
	"flag"
	"io/ioutil"
	"os"
	"strconv"

	"github.com/djherbis/times"
	"github.com/google/subcommands"
	"github.com/pkg/errors"

	"github.com/mit-pdos/go-fs5600/common"
	"github.com/mit-pdos/go-fs5600/config"
	"github.com/mit-pdos/go-fs5600/fs"
	"github.com/mit-pdos/go-fs5600/util"
)

// Put implements subcommands.Command for the "put" command.
type Put struct{}

// Name implements subcommands.Command.Name.
func (*Put) Name() string {
	return "put"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Put) Synopsis() string {
	return "copy a host file into the image"
}

// Usage implements subcommands.Command.Usage.
func (*Put) Usage() string {
	return "put <host file> <path>\n"
}

// SetFlags implements subcommands.Command.SetFlags.
func (*Put) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute. The copy keeps the host
// file's permission bits and modification time.
func (*Put) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return withFs(f, 2, args, func(fsys *fs.FsSession, conf *config.Config, argv []string) error {
		src, dst := argv[0], argv[1]
		fi, err := os.Stat(src)
		if err != nil {
			return err
		}
		ts, err := times.Stat(src)
		if err != nil {
			return err
		}
		data, err := ioutil.ReadFile(src)
		if err != nil {
			return err
		}

		err = fsys.Create(conf.Caller(), dst, uint32(fi.Mode().Perm()))
		if errors.Is(err, common.ErrExist) {
			err = fsys.Truncate(dst, 0)
		}
		if err != nil {
			return err
		}
		for off := uint64(0); off < uint64(len(data)); off += common.BlockSize {
			end := util.Min(off+common.BlockSize, uint64(len(data)))
			if _, err := fsys.Write(dst, data[off:end], off); err != nil {
				return err
			}
		}
		mtime := ts.ModTime()
		return fsys.Utime(dst, &mtime)
	})
}

// Mkdir implements subcommands.Command for the "mkdir" command.
type Mkdir struct {
	mode uint
}

// Name implements subcommands.Command.Name.
func (*Mkdir) Name() string {
	return "mkdir"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Mkdir) Synopsis() string {
	return "create a directory"
}

// Usage implements subcommands.Command.Usage.
func (*Mkdir) Usage() string {
	return "mkdir [-mode perm] <path>\n"
}

// SetFlags implements subcommands.Command.SetFlags.
func (m *Mkdir) SetFlags(f *flag.FlagSet) {
	f.UintVar(&m.mode, "mode", 0755, "permission bits of the new directory.")
}

// Execute implements subcommands.Command.Execute.
func (m *Mkdir) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return withFs(f, 1, args, func(fsys *fs.FsSession, conf *config.Config, argv []string) error {
		return fsys.Mkdir(conf.Caller(), argv[0], uint32(m.mode))
	})
}

// Rm implements subcommands.Command for the "rm" command.
type Rm struct{}

// Name implements subcommands.Command.Name.
func (*Rm) Name() string {
	return "rm"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Rm) Synopsis() string {
	return "remove a file"
}

// Usage implements subcommands.Command.Usage.
func (*Rm) Usage() string {
	return "rm <path>\n"
}

// SetFlags implements subcommands.Command.SetFlags.
func (*Rm) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (*Rm) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return withFs(f, 1, args, func(fsys *fs.FsSession, _ *config.Config, argv []string) error {
		return fsys.Unlink(argv[0])
	})
}

// Rmdir implements subcommands.Command for the "rmdir" command.
type Rmdir struct{}

// Name implements subcommands.Command.Name.
func (*Rmdir) Name() string {
	return "rmdir"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Rmdir) Synopsis() string {
	return "remove an empty directory"
}

// Usage implements subcommands.Command.Usage.
func (*Rmdir) Usage() string {
	return "rmdir <path>\n"
}

// SetFlags implements subcommands.Command.SetFlags.
func (*Rmdir) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (*Rmdir) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return withFs(f, 1, args, func(fsys *fs.FsSession, _ *config.Config, argv []string) error {
		return fsys.Rmdir(argv[0])
	})
}

// Mv implements subcommands.Command for the "mv" command.
type Mv struct{}

// Name implements subcommands.Command.Name.
func (*Mv) Name() string {
	return "mv"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Mv) Synopsis() string {
	return "rename an entry within its directory"
}

// Usage implements subcommands.Command.Usage.
func (*Mv) Usage() string {
	return "mv <src> <dst>\n"
}

// SetFlags implements subcommands.Command.SetFlags.
func (*Mv) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (*Mv) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return withFs(f, 2, args, func(fsys *fs.FsSession, _ *config.Config, argv []string) error {
		return fsys.Rename(argv[0], argv[1])
	})
}

// Chmod implements subcommands.Command for the "chmod" command.
type Chmod struct{}

// Name implements subcommands.Command.Name.
func (*Chmod) Name() string {
	return "chmod"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Chmod) Synopsis() string {
	return "change permission bits"
}

// Usage implements subcommands.Command.Usage.
func (*Chmod) Usage() string {
	return "chmod <octal mode> <path>\n"
}

// SetFlags implements subcommands.Command.SetFlags.
func (*Chmod) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (*Chmod) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return withFs(f, 2, args, func(fsys *fs.FsSession, _ *config.Config, argv []string) error {
		mode, err := strconv.ParseUint(argv[0], 8, 32)
		if err != nil {
			return errors.Wrapf(common.ErrInval, "mode %q", argv[0])
		}
		return fsys.Chmod(argv[1], uint32(mode))
	})
}

// Touch implements subcommands.Command for the "touch" command.
type Touch struct{}

// Name implements subcommands.Command.Name.
func (*Touch) Name() string {
	return "touch"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Touch) Synopsis() string {
	return "create a file or update its modification time"
}

// Usage implements subcommands.Command.Usage.
func (*Touch) Usage() string {
	return "touch <path>\n"
}

// SetFlags implements subcommands.Command.SetFlags.
func (*Touch) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (*Touch) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return withFs(f, 1, args, func(fsys *fs.FsSession, conf *config.Config, argv []string) error {
		err := fsys.Utime(argv[0], nil)
		if errors.Is(err, common.ErrNoEntry) {
			return fsys.Create(conf.Caller(), argv[0], 0644)
		}
		return err
	})
}

// Truncate implements subcommands.Command for the "truncate" command.
type Truncate struct {
	size uint64
}

// Name implements subcommands.Command.Name.
func (*Truncate) Name() string {
	return "truncate"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Truncate) Synopsis() string {
	return "discard the contents of a file"
}

// Usage implements subcommands.Command.Usage.
func (*Truncate) Usage() string {
	return "truncate [-size 0] <path>\n"
}

// SetFlags implements subcommands.Command.SetFlags.
func (t *Truncate) SetFlags(f *flag.FlagSet) {
	f.Uint64Var(&t.size, "size", 0, "new length; only 0 is supported.")
}

// Execute implements subcommands.Command.Execute.
func (t *Truncate) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return withFs(f, 1, args, func(fsys *fs.FsSession, _ *config.Config, argv []string) error {
		return fsys.Truncate(argv[0], t.size)
	})
}
