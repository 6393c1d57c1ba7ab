// Package config loads the settings shared by the command-line tools.
package config

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mit-pdos/go-fs5600/common"
	"github.com/mit-pdos/go-fs5600/fs"
)

// Config is read from a TOML file; flags given on the command line take
// precedence over it.
type Config struct {
	// Image is the path of the disk image.
	Image string `toml:"image"`
	// Blocks is the size of a new image in blocks; 0 keeps the current size.
	Blocks uint64 `toml:"blocks"`
	// Uid and Gid own the objects created by the tools.
	Uid uint32 `toml:"uid"`
	Gid uint32 `toml:"gid"`

	MaxDepth             uint64 `toml:"max_depth"`
	PersistUtime         bool   `toml:"persist_utime"`
	CheckRenameCollision bool   `toml:"check_rename_collision"`

	// Debug is the trace level handed to util.DPrintf.
	Debug    uint64 `toml:"debug"`
	LogLevel string `toml:"log_level"`
}

func Default() *Config {
	return &Config{
		Image:    "disk.img",
		Blocks:   1024,
		MaxDepth: common.DEFAULTDEPTH,
		LogLevel: "warning",
	}
}

// Load reads path on top of the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return nil, errors.Errorf("config %s: unknown key %q", path, undec[0].String())
	}
	if err := c.Validate(); err != nil {
		return nil, errors.WithMessagef(err, "config %s", path)
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.Image == "" {
		return errors.New("no image")
	}
	if c.Blocks > common.NBITBLOCK {
		return errors.Errorf("%d blocks exceed the maximum %d", c.Blocks, common.NBITBLOCK)
	}
	if c.MaxDepth == 0 {
		return errors.New("max_depth must be positive")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level is the configured logrus level, or Warn if it does not parse.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.WarnLevel
	}
	return lvl
}

func (c *Config) Options() fs.Options {
	opts := fs.DefaultOptions()
	opts.MaxDepth = c.MaxDepth
	opts.PersistUtime = c.PersistUtime
	opts.CheckRenameCollision = c.CheckRenameCollision
	return opts
}

func (c *Config) Caller() fs.Caller {
	return fs.Caller{Uid: c.Uid, Gid: c.Gid}
}
