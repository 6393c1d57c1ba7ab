package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/mit-pdos/go-fs5600/config"
	"github.com/mit-pdos/go-fs5600/disk"
	"github.com/mit-pdos/go-fs5600/fs"
	"github.com/mit-pdos/go-fs5600/util"
)

// stdout receives command output.
var stdout io.Writer = os.Stdout

func mountImage(conf *config.Config) (*fs.FsSession, error) {
	d, err := disk.NewFileDisk(conf.Image, 0)
	if err != nil {
		return nil, err
	}
	fsys, err := fs.Mount(d, conf.Options())
	if err != nil {
		d.Close()
		return nil, err
	}
	return fsys, nil
}

func fail(err error) subcommands.ExitStatus {
	util.Log.WithField("errno", fs.Errno(err).Error()).Error(err)
	return subcommands.ExitFailure
}

// withFs checks that f has nargs arguments, mounts the configured image,
// runs op and unmounts.
func withFs(f *flag.FlagSet, nargs int, args []interface{},
	op func(fsys *fs.FsSession, conf *config.Config, argv []string) error) subcommands.ExitStatus {
	if f.NArg() != nargs {
		f.Usage()
		return subcommands.ExitUsageError
	}
	conf := args[0].(*config.Config)
	fsys, err := mountImage(conf)
	if err != nil {
		return fail(err)
	}
	err = op(fsys, conf, f.Args())
	if cerr := fsys.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

func printf(format string, a ...interface{}) {
	fmt.Fprintf(stdout, format, a...)
}
