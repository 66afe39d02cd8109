package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lintconf/internal/cache"
	"lintconf/internal/diagfmt"
	"lintconf/internal/driver"
	"lintconf/internal/loader"
	"lintconf/internal/preset"
	"lintconf/internal/project"
)

// settings is the effective tool configuration: flags the user set win over
// lintconf.toml, which wins over flag defaults.
type settings struct {
	format           string
	color            bool
	quiet            bool
	timings          bool
	withNotes        bool
	fullPath         bool
	maxDiagnostics   int
	warningsAsErrors bool
	jobs             int
	presetDirs       []string
	withBuiltins     bool
	cacheEnabled     bool
	cacheDir         string
	ui               uiMode
	manifest         *project.Manifest
}

func applyColor(cmd *cobra.Command) error {
	useColor, err := colorEnabled(cmd)
	if err != nil {
		return err
	}
	color.NoColor = !useColor
	return nil
}

func colorEnabled(cmd *cobra.Command) (bool, error) {
	value, err := cmd.Flags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch strings.ToLower(value) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		return isTerminal(cmd.OutOrStdout()), nil
	}
	return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
}

// loadSettings reads flags and the manifest governing target.
func loadSettings(cmd *cobra.Command, target string) (*settings, error) {
	flags := cmd.Flags()
	s := &settings{}
	var err error

	if s.format, err = flags.GetString("format"); err != nil {
		return nil, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch s.format {
	case "pretty", "json", "sarif", "short":
	default:
		return nil, fmt.Errorf("unknown format: %s", s.format)
	}
	if s.color, err = colorEnabled(cmd); err != nil {
		return nil, err
	}
	if s.quiet, err = flags.GetBool("quiet"); err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if s.timings, err = flags.GetBool("timings"); err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if s.withNotes, err = flags.GetBool("with-notes"); err != nil {
		return nil, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if s.fullPath, err = flags.GetBool("fullpath"); err != nil {
		return nil, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	noBuiltins, err := flags.GetBool("no-builtins")
	if err != nil {
		return nil, fmt.Errorf("failed to get no-builtins flag: %w", err)
	}
	s.withBuiltins = !noBuiltins
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return nil, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if s.ui, err = readUIMode(uiValue); err != nil {
		return nil, err
	}

	start := target
	if start == "" {
		start = "."
	}
	if info, statErr := os.Stat(start); statErr == nil && !info.IsDir() {
		start = filepath.Dir(start)
	}
	manifest, _, err := project.LoadManifest(start)
	if err != nil {
		return nil, err
	}
	s.manifest = manifest
	defined := func(key string) bool { return manifest != nil && manifest.Defined[key] }

	s.maxDiagnostics, err = flags.GetInt("max-diagnostics")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if !flags.Changed("max-diagnostics") && defined("resolve.max-diagnostics") {
		s.maxDiagnostics = manifest.Config.Resolve.MaxDiagnostics
	}
	if s.maxDiagnostics < 0 {
		return nil, fmt.Errorf("--max-diagnostics must be >= 0")
	}

	s.warningsAsErrors, err = flags.GetBool("warnings-as-errors")
	if err != nil {
		return nil, fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if !flags.Changed("warnings-as-errors") && defined("resolve.warnings-as-errors") {
		s.warningsAsErrors = manifest.Config.Resolve.WarningsAsErrors
	}

	s.jobs, err = flags.GetInt("jobs")
	if err != nil {
		return nil, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if !flags.Changed("jobs") && defined("resolve.jobs") {
		s.jobs = manifest.Config.Resolve.Jobs
	}

	s.cacheEnabled, err = flags.GetBool("cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache flag: %w", err)
	}
	if !flags.Changed("cache") && defined("cache.enabled") {
		s.cacheEnabled = manifest.Config.Cache.Enabled
	}
	s.cacheDir, err = flags.GetString("cache-dir")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache-dir flag: %w", err)
	}
	if s.cacheDir == "" {
		s.cacheDir = manifest.CacheDir()
	}

	dirs, err := manifest.PresetDirs()
	if err != nil {
		return nil, err
	}
	extra, err := flags.GetStringSlice("preset-dir")
	if err != nil {
		return nil, fmt.Errorf("failed to get preset-dir flag: %w", err)
	}
	s.presetDirs = append(dirs, extra...)

	return s, nil
}

// registry loads the preset registry the settings describe.
func (s *settings) registry() (*preset.Snapshot, error) {
	return loader.LoadRegistry(s.presetDirs, s.withBuiltins)
}

func (s *settings) openCache() (*cache.DiskCache, error) {
	dir := s.cacheDir
	if dir == "" {
		var err error
		dir, err = cache.DefaultDir("lintconf")
		if err != nil {
			return nil, err
		}
	}
	return cache.Open(dir)
}

// store publishes a freshly loaded registry into a new store; watch mode
// reloads into the same store.
func (s *settings) store() (*preset.Store, error) {
	st := preset.NewStore(nil)
	if _, err := loader.Reload(st, s.presetDirs, s.withBuiltins); err != nil {
		return nil, err
	}
	return st, nil
}

// newDriver builds a driver over a freshly loaded registry.
func (s *settings) newDriver(sink driver.ProgressSink) (*driver.Driver, error) {
	st, err := s.store()
	if err != nil {
		return nil, err
	}
	return s.newDriverFor(st, sink)
}

func (s *settings) newDriverFor(st *preset.Store, sink driver.ProgressSink) (*driver.Driver, error) {
	opts := driver.Options{
		MaxDiagnostics: s.maxDiagnostics,
		Jobs:           s.jobs,
		Timings:        s.timings,
		Sink:           sink,
	}
	if s.cacheEnabled {
		dc, err := s.openCache()
		if err != nil {
			return nil, err
		}
		opts.Cache = dc
	}
	return driver.New(st, opts), nil
}

func (s *settings) pathMode() diagfmt.PathMode {
	if s.fullPath {
		return diagfmt.PathModeAbsolute
	}
	return diagfmt.PathModeAuto
}

func (s *settings) baseDir() string {
	if s.manifest != nil {
		return s.manifest.Root
	}
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}
