package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/openlms/genmsg"
)

const defaultConfigPath = "conf/locale/config.yaml"

// generateConfig holds flags for the generate command.
type generateConfig struct {
	configPath string
	strict     bool
	ltr        bool
	rtl        bool
	verbosity  int
}

func usageGenerate(fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(os.Stderr, `usage: genmsg generate [options]

Generate merges the partial catalogs configured under generate_merge into one
target catalog per locale, normalizes the merged metadata, and finally runs
the compile tool once across the whole message tree.

Missing source files are skipped silently unless -strict is set. Dummy
locales are always merged best-effort.

Flags:
`)
		fs.PrintDefaults()
	}
}

func parseGenerateFlags(args []string) (*generateConfig, error) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var cfg generateConfig
	fs.Usage = usageGenerate(fs)
	fs.StringVar(&cfg.configPath, "config", defaultConfigPath, "Path to the locale configuration file.")
	fs.BoolVar(&cfg.strict, "strict", false, "Complain about missing source files.")
	fs.BoolVar(&cfg.ltr, "ltr", false, "Only generate for left-to-right languages.")
	fs.BoolVar(&cfg.rtl, "rtl", false, "Only generate for right-to-left languages.")
	fs.IntVar(&cfg.verbosity, "v", 0, "Verbosity level passed to the compile tool.")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.ltr && cfg.rtl {
		return nil, fmt.Errorf("generate: -ltr and -rtl are mutually exclusive")
	}
	return &cfg, nil
}

func runGenerate(cfg *generateConfig) error {
	log := newLogger(cfg.verbosity)

	configuration, err := genmsg.LoadConfig(cfg.configPath)
	if err != nil {
		return err
	}

	opts := genmsg.RunOptions{
		Strict:    cfg.strict,
		Verbosity: cfg.verbosity,
	}
	switch {
	case cfg.ltr:
		opts.Direction = genmsg.DirectionLTR
	case cfg.rtl:
		opts.Direction = genmsg.DirectionRTL
	}

	return genmsg.NewGenerator(configuration, nil, log).Run(opts)
}

func newLogger(verbosity int) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if verbosity > 0 {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}
