package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/openlms/genmsg"
)

// cleanConfig holds flags for the clean command.
type cleanConfig struct {
	paths []string
}

func usageClean(fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(os.Stderr, `usage: genmsg clean <file.po> [file.po ...]

Clean rewrites the given catalogs in place: line numbers are stripped from
source references, flags ending in -format are removed, and the header's
fuzzy marker is cleared. Useful when catalogs come back from translators or
other platforms with noisy metadata.
`)
		fs.PrintDefaults()
	}
}

func parseCleanFlags(args []string) (*cleanConfig, error) {
	fs := flag.NewFlagSet("clean", flag.ExitOnError)
	fs.Usage = usageClean(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg := &cleanConfig{paths: fs.Args()}
	if len(cfg.paths) == 0 {
		return nil, fmt.Errorf("clean: at least one .po file is required")
	}
	return cfg, nil
}

func runClean(cfg *cleanConfig) error {
	for _, path := range cfg.paths {
		if err := genmsg.CleanCatalog(path); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "genmsg: cleaned %s\n", path)
	}
	return nil
}
