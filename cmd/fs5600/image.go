package main

import (
	"context"
	"flag"
	"time"

	"github.com/google/subcommands"

	"github.com/mit-pdos/go-fs5600/config"
	"github.com/mit-pdos/go-fs5600/disk"
	"github.com/mit-pdos/go-fs5600/fs"
	"github.com/mit-pdos/go-fs5600/super"
)

// Mkfs implements subcommands.Command for the "mkfs" command.
type Mkfs struct {
	blocks uint64
}

// Name implements subcommands.Command.Name.
func (*Mkfs) Name() string {
	return "mkfs"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Mkfs) Synopsis() string {
	return "create an empty file system image"
}

// Usage implements subcommands.Command.Usage.
func (*Mkfs) Usage() string {
	return "mkfs [-blocks n]\n"
}

// SetFlags implements subcommands.Command.SetFlags.
func (m *Mkfs) SetFlags(f *flag.FlagSet) {
	f.Uint64Var(&m.blocks, "blocks", 0, "image size in blocks; overrides the configuration.")
}

// Execute implements subcommands.Command.Execute.
func (m *Mkfs) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	conf := args[0].(*config.Config)
	blocks := conf.Blocks
	if m.blocks != 0 {
		blocks = m.blocks
	}
	d, err := disk.NewFileDisk(conf.Image, blocks)
	if err != nil {
		return fail(err)
	}
	_, err = super.Format(d, blocks, conf.Uid, conf.Gid, uint32(time.Now().Unix()))
	if cerr := d.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

// StatfsCmd implements subcommands.Command for the "statfs" command.
type StatfsCmd struct{}

// Name implements subcommands.Command.Name.
func (*StatfsCmd) Name() string {
	return "statfs"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*StatfsCmd) Synopsis() string {
	return "print block usage of the image"
}

// Usage implements subcommands.Command.Usage.
func (*StatfsCmd) Usage() string {
	return "statfs\n"
}

// SetFlags implements subcommands.Command.SetFlags.
func (*StatfsCmd) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (*StatfsCmd) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return withFs(f, 0, args, func(fsys *fs.FsSession, _ *config.Config, _ []string) error {
		st := fsys.Statfs()
		printf("bsize %d blocks %d free %d avail %d namemax %d\n",
			st.Bsize, st.Blocks, st.Bfree, st.Bavail, st.Namemax)
		return nil
	})
}
