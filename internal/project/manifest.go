package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest is the decoded lintconf.toml of a project.
type Manifest struct {
	Path   string
	Root   string
	Config Config
	// Defined records which optional keys were present, so CLI flags can
	// tell "unset" apart from a zero value.
	Defined map[string]bool
}

type Config struct {
	Presets PresetsConfig `toml:"presets"`
	Resolve ResolveConfig `toml:"resolve"`
	Cache   CacheConfig   `toml:"cache"`
}

type PresetsConfig struct {
	Dirs []string `toml:"dirs"`
}

type ResolveConfig struct {
	MaxDiagnostics   int  `toml:"max-diagnostics"`
	WarningsAsErrors bool `toml:"warnings-as-errors"`
	Jobs             int  `toml:"jobs"`
}

type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// ErrInvalidPresetDir reports a [presets].dirs entry that cannot be used.
var ErrInvalidPresetDir = errors.New("invalid [presets].dirs entry")

// LoadManifest finds and decodes lintconf.toml starting at startDir.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := DecodeManifest(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// DecodeManifest parses one lintconf.toml file.
func DecodeManifest(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("resolve", "max-diagnostics") && cfg.Resolve.MaxDiagnostics < 0 {
		return nil, fmt.Errorf("%s: [resolve].max-diagnostics must be >= 0", path)
	}
	if meta.IsDefined("resolve", "jobs") && cfg.Resolve.Jobs < 0 {
		return nil, fmt.Errorf("%s: [resolve].jobs must be >= 0", path)
	}
	defined := make(map[string]bool)
	for _, key := range [][]string{
		{"presets", "dirs"},
		{"resolve", "max-diagnostics"},
		{"resolve", "warnings-as-errors"},
		{"resolve", "jobs"},
		{"cache", "enabled"},
		{"cache", "dir"},
	} {
		if meta.IsDefined(key...) {
			defined[strings.Join(key, ".")] = true
		}
	}
	return &Manifest{
		Path:    path,
		Root:    filepath.Dir(path),
		Config:  cfg,
		Defined: defined,
	}, nil
}

// PresetDirs resolves [presets].dirs relative to the project root. Entries
// must stay inside the root and name existing directories.
func (m *Manifest) PresetDirs() ([]string, error) {
	if m == nil {
		return nil, nil
	}
	out := make([]string, 0, len(m.Config.Presets.Dirs))
	for _, raw := range m.Config.Presets.Dirs {
		dir := strings.TrimSpace(raw)
		if dir == "" {
			return nil, fmt.Errorf("%s: %w: empty path", m.Path, ErrInvalidPresetDir)
		}
		if filepath.IsAbs(dir) {
			return nil, fmt.Errorf("%s: %w %q: must be relative", m.Path, ErrInvalidPresetDir, raw)
		}
		full := filepath.Join(m.Root, filepath.Clean(filepath.FromSlash(dir)))
		if !pathWithin(m.Root, full) {
			return nil, fmt.Errorf("%s: %w %q: escapes project root", m.Path, ErrInvalidPresetDir, raw)
		}
		info, err := os.Stat(full)
		if err != nil {
			return nil, fmt.Errorf("%s: %w %q: %w", m.Path, ErrInvalidPresetDir, raw, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s: %w %q: not a directory", m.Path, ErrInvalidPresetDir, raw)
		}
		out = append(out, full)
	}
	return out, nil
}

// CacheDir returns the configured cache directory, relative paths resolved
// against the project root. Empty means the default location.
func (m *Manifest) CacheDir() string {
	if m == nil {
		return ""
	}
	dir := strings.TrimSpace(m.Config.Cache.Dir)
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(m.Root, filepath.FromSlash(dir))
}

func pathWithin(root, path string) bool {
	if root == "" || path == "" {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return !strings.HasPrefix(rel, "..") && rel != ".."
}
