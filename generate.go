// Package genmsg merges partial translation catalogs into consolidated
// per-locale message files and compiles them into the binary form the web
// application loads at serving time. It drives two external gettext tools:
// a catalog merger (msgcat) run per locale and merge group, and a compiler
// (django-admin compilemessages) run once across the whole message tree.
package genmsg

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/openlms/genmsg/internal/execute"
)

// mergedFilename is the fixed temporary name the merge tool writes into a
// locale directory before the result is cleaned and renamed into place.
const mergedFilename = "merged.po"

// Direction selects which translated locales a run processes.
type Direction int

const (
	DirectionAll Direction = iota
	DirectionLTR
	DirectionRTL
)

// RunOptions controls one top-level generation run.
type RunOptions struct {
	// Strict makes missing merge sources fatal for translated locales.
	// Dummy locales are always merged best-effort regardless.
	Strict bool
	// Direction restricts the run to the LTR or RTL subset of the
	// translated locales.
	Direction Direction
	// Verbosity is forwarded to the compile tool; when zero the compile
	// tool's diagnostic stream is discarded.
	Verbosity int
}

// Generator merges and compiles message catalogs for the configured locales.
type Generator struct {
	cfg    *Config
	runner execute.Runner
	log    *logrus.Logger
}

// NewGenerator returns a Generator using the given runner for external tool
// invocations. A nil runner runs tools for real; a nil logger uses the
// standard one.
func NewGenerator(cfg *Config, runner execute.Runner, log *logrus.Logger) *Generator {
	if runner == nil {
		runner = execute.ExecRunner{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Generator{cfg: cfg, runner: runner, log: log}
}

// Merge combines the sources in the locale's message directory into the
// target catalog. The merge tool writes a temporary merged.po in that
// directory, which is cleaned and renamed onto the target. The target may
// itself appear in sources: the merge tool reads every source before the
// rename overwrites anything.
//
// When a source is missing and failIfMissing is false the merge is silently
// skipped. A temporary merged.po left behind by a failed run is not removed
// here; the next successful merge overwrites it.
func (g *Generator) Merge(locale, target string, sources []string, failIfMissing bool) error {
	g.log.Infof("Merging %s for locale %s", target, locale)
	dir := g.cfg.GetMessagesDir(locale)

	if err := ValidateFiles(dir, sources); err != nil {
		var missing *MissingFileError
		if errors.As(err, &missing) && !failIfMissing {
			g.log.Debugf("Skipping %s for locale %s: %v", target, locale, err)
			return nil
		}
		return err
	}

	name, extraArgs := splitCommand(g.cfg.MergeCommand)
	args := append(extraArgs, "-o", mergedFilename)
	args = append(args, sources...)
	if _, err := g.runner.Run(execute.Command{Path: name, Args: args, Dir: dir}); err != nil {
		return fmt.Errorf("merge %s for locale %s: %w", target, locale, err)
	}

	merged := filepath.Join(dir, mergedFilename)
	if err := CleanCatalog(merged); err != nil {
		return fmt.Errorf("clean merged catalog for locale %s: %w", locale, err)
	}

	if err := os.Rename(merged, filepath.Join(dir, target)); err != nil {
		return fmt.Errorf("rename merged catalog to %s: %w", target, err)
	}
	return nil
}

// MergeFiles merges every configured merge group for one locale, in
// configuration order. The first failing group aborts the rest.
func (g *Generator) MergeFiles(locale string, failIfMissing bool) error {
	for _, group := range g.cfg.GenerateMerge {
		if err := g.Merge(locale, group.Target, group.Sources, failIfMissing); err != nil {
			return err
		}
	}
	return nil
}

// Run merges the selected translated locales, then every dummy locale
// best-effort, then compiles the whole message tree once. Any fatal merge
// failure aborts the run before compilation, so the compiler never sees a
// partially merged tree.
func (g *Generator) Run(opts RunOptions) error {
	var locales []string
	switch opts.Direction {
	case DirectionLTR:
		locales = g.cfg.LTRLangs()
	case DirectionRTL:
		locales = g.cfg.RTLLangs
	default:
		locales = g.cfg.Locales
	}

	for _, locale := range locales {
		if err := g.MergeFiles(locale, opts.Strict); err != nil {
			return err
		}
	}
	// Dummy text is placeholder content; a missing file is never an error.
	for _, locale := range g.cfg.DummyLocales {
		if err := g.MergeFiles(locale, false); err != nil {
			return err
		}
	}

	return g.compile(opts.Verbosity)
}

func (g *Generator) compile(verbosity int) error {
	name, args := splitCommand(g.cfg.CompileCommand)
	args = append(args, fmt.Sprintf("-v%d", verbosity))

	var stderr io.Writer
	if verbosity > 0 {
		stderr = os.Stderr
	}
	g.log.Infof("Compiling message catalogs under %s", g.cfg.BaseDir)
	if _, err := g.runner.Run(execute.Command{Path: name, Args: args, Dir: g.cfg.BaseDir, Stderr: stderr}); err != nil {
		return fmt.Errorf("compile messages: %w", err)
	}
	return nil
}

// splitCommand splits a configured tool string into program name and leading
// arguments.
func splitCommand(command string) (string, []string) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return command, nil
	}
	return fields[0], fields[1:]
}
