package genmsg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v2"
)

const (
	defaultMergeCommand   = "msgcat"
	defaultCompileCommand = "django-admin compilemessages"
)

// MergeGroup maps one target catalog filename to the ordered source catalogs
// combined to produce it. Order matters: it is the precedence order handed to
// the merge tool.
type MergeGroup struct {
	Target  string
	Sources []string
}

// Config is the generation configuration, loaded once at startup and passed
// into every component that needs locale directories or merge mappings.
type Config struct {
	// BaseDir is the directory containing the configuration file. Locale
	// message directories live beneath it, and the compile tool runs from it.
	BaseDir string

	Locales      []string // translated locales, processed per the strict flag
	DummyLocales []string // placeholder locales, always merged best-effort
	RTLLangs     []string // right-to-left subset of Locales
	SourceLocale string

	// GenerateMerge lists merge groups in configuration order.
	GenerateMerge []MergeGroup

	// MergeCommand and CompileCommand are the external tools, given as a
	// program name optionally followed by arguments.
	MergeCommand   string
	CompileCommand string
}

type rawConfig struct {
	Locales        []string      `yaml:"locales"`
	DummyLocales   []string      `yaml:"dummy_locales"`
	RTLLangs       []string      `yaml:"rtl_langs"`
	SourceLocale   string        `yaml:"source_locale"`
	GenerateMerge  yaml.MapSlice `yaml:"generate_merge"`
	MergeCommand   string        `yaml:"merge_command"`
	CompileCommand string        `yaml:"compile_command"`
}

// LoadConfig reads a config.yaml. The directory holding the file becomes the
// base directory for all locale paths.
func LoadConfig(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var raw rawConfig
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg := &Config{
		BaseDir:        filepath.Dir(path),
		Locales:        raw.Locales,
		DummyLocales:   raw.DummyLocales,
		RTLLangs:       raw.RTLLangs,
		SourceLocale:   raw.SourceLocale,
		MergeCommand:   raw.MergeCommand,
		CompileCommand: raw.CompileCommand,
	}
	if cfg.SourceLocale == "" {
		cfg.SourceLocale = "en"
	}
	if cfg.MergeCommand == "" {
		cfg.MergeCommand = defaultMergeCommand
	}
	if cfg.CompileCommand == "" {
		cfg.CompileCommand = defaultCompileCommand
	}

	cfg.GenerateMerge, err = mergeGroups(raw.GenerateMerge)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if len(cfg.GenerateMerge) == 0 {
		return nil, fmt.Errorf("config %s: generate_merge must list at least one merge group", path)
	}

	// Translated and RTL locales must be real language tags. Dummy locales
	// are placeholders (test languages, invented tags) and are not checked.
	if err := validateLocaleTags("translated", cfg.Locales); err != nil {
		return nil, err
	}
	if err := validateLocaleTags("rtl", cfg.RTLLangs); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mergeGroups converts the raw generate_merge mapping, keeping the order the
// configuration lists the targets in. Sources may be a single filename or a
// list.
func mergeGroups(mapping yaml.MapSlice) ([]MergeGroup, error) {
	groups := make([]MergeGroup, 0, len(mapping))
	for _, item := range mapping {
		target, ok := item.Key.(string)
		if !ok {
			return nil, fmt.Errorf("generate_merge target must be a filename, got %v", item.Key)
		}
		sources, err := sourceList(item.Value)
		if err != nil {
			return nil, fmt.Errorf("generate_merge %s: %w", target, err)
		}
		groups = append(groups, MergeGroup{Target: target, Sources: sources})
	}
	return groups, nil
}

func sourceList(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case string:
		return []string{v}, nil
	case []interface{}:
		if len(v) == 0 {
			return nil, fmt.Errorf("needs at least one source file")
		}
		sources := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("source must be a filename, got %v", item)
			}
			sources = append(sources, s)
		}
		return sources, nil
	default:
		return nil, fmt.Errorf("sources must be a filename or a list of filenames")
	}
}

func validateLocaleTags(kind string, locales []string) error {
	for _, locale := range locales {
		tag := strings.ReplaceAll(locale, "_", "-")
		if _, err := language.Parse(tag); err != nil {
			return fmt.Errorf("invalid %s locale %q: %w", kind, locale, err)
		}
	}
	return nil
}

// GetMessagesDir returns the message directory for one locale.
func (c *Config) GetMessagesDir(locale string) string {
	return filepath.Join(c.BaseDir, locale, "LC_MESSAGES")
}

// LTRLangs returns the translated locales that are not configured as
// right-to-left, in configuration order.
func (c *Config) LTRLangs() []string {
	rtl := make(map[string]struct{}, len(c.RTLLangs))
	for _, locale := range c.RTLLangs {
		rtl[locale] = struct{}{}
	}
	var out []string
	for _, locale := range c.Locales {
		if _, found := rtl[locale]; !found {
			out = append(out, locale)
		}
	}
	return out
}
