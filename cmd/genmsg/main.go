package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	sub := os.Args[1]
	args := os.Args[2:]
	var err error
	switch sub {
	case "generate":
		cfg, e := parseGenerateFlags(args)
		if e != nil {
			err = e
			break
		}
		err = runGenerate(cfg)
	case "clean":
		cfg, e := parseCleanFlags(args)
		if e != nil {
			err = e
			break
		}
		err = runClean(cfg)
	case "validate":
		cfg, e := parseValidateFlags(args)
		if e != nil {
			err = e
			break
		}
		err = runValidate(cfg)
	case "help", "-h", "--help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "genmsg: unknown subcommand %q\n", sub)
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "genmsg: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `genmsg - merge and compile per-locale message catalogs

usage: genmsg <command> [options]

commands:
  generate   Merge configured partial catalogs per locale, then compile the tree.
  clean      Normalize .po files in place (strip line numbers and -format flags).
  validate   Check that every configured merge source exists, without merging.

Use 'genmsg generate -h', 'genmsg clean -h' or 'genmsg validate -h' for
command-specific flags.
`)
}
