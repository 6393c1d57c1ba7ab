// Binary fs5600 manipulates fs5600 disk images from the command line.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"

	"github.com/mit-pdos/go-fs5600/config"
	"github.com/mit-pdos/go-fs5600/util"
)

var (
	configPath = flag.String("config", "", "TOML configuration file.")
	imagePath  = flag.String("image", "", "disk image; overrides the configuration.")
	debugLevel = flag.Int("debug", -1, "trace level; overrides the configuration.")
	logLevel   = flag.String("log-level", "", "logrus level; overrides the configuration.")
)

func commands() []subcommands.Command {
	return []subcommands.Command{
		new(Mkfs),
		new(StatfsCmd),
		new(Stat),
		new(Ls),
		new(Cat),
		new(Put),
		new(Mkdir),
		new(Rm),
		new(Rmdir),
		new(Mv),
		new(Chmod),
		new(Touch),
		new(Truncate),
	}
}

// loadConfig builds the configuration from the file named by -config and
// the flags that override it.
func loadConfig() (*config.Config, error) {
	conf := config.Default()
	if *configPath != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			return nil, err
		}
		conf = c
	}
	if *imagePath != "" {
		conf.Image = *imagePath
	}
	if *debugLevel >= 0 {
		conf.Debug = uint64(*debugLevel)
	}
	if *logLevel != "" {
		conf.LogLevel = *logLevel
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	for _, c := range commands() {
		subcommands.Register(c, "")
	}
	flag.Parse()

	conf, err := loadConfig()
	if err != nil {
		util.Log.Fatalf("configuration: %v", err)
	}
	util.Log.SetLevel(conf.Level())
	util.SetDebug(conf.Debug)

	os.Exit(int(subcommands.Execute(context.Background(), conf)))
}
