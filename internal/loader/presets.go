package loader

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"lintconf/internal/preset"
)

// BuiltinPrefix namespaces presets shipped with the binary.
const BuiltinPrefix = "lintconf:"

//go:embed builtin/*.yaml
var builtinFS embed.FS

// AddBuiltins registers the embedded presets (lintconf:recommended,
// lintconf:all-off).
func AddBuiltins(b *preset.Builder) error {
	entries, err := fs.ReadDir(builtinFS, "builtin")
	if err != nil {
		return fmt.Errorf("failed to read builtin presets: %w", err)
	}
	for _, e := range entries {
		file := path.Join("builtin", e.Name())
		data, err := builtinFS.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read builtin preset %s: %w", e.Name(), err)
		}
		format, err := FormatOf(file)
		if err != nil {
			return err
		}
		name := BuiltinPrefix + strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
		decls, err := Decode(data, format, name)
		if err != nil {
			return err
		}
		if err := b.Add(name, "builtin", decls...); err != nil {
			return err
		}
	}
	return nil
}

// PresetName maps a file inside a preset directory to its preset name:
// "base.yaml" is "base", "react/strict.json" is "plugin:react/strict".
// Deeper nesting is not a preset.
func PresetName(rel string) (string, bool) {
	rel = filepath.ToSlash(rel)
	stem := strings.TrimSuffix(path.Base(rel), path.Ext(rel))
	if stem == "" || strings.HasPrefix(stem, ".") {
		return "", false
	}
	switch dir := path.Dir(rel); {
	case dir == ".":
		return stem, true
	case !strings.Contains(dir, "/"):
		return "plugin:" + dir + "/" + stem, true
	}
	return "", false
}

// LoadPresetDir adds every preset file under dir to b. Files with unknown
// extensions are skipped; a decode failure aborts with the file named.
func LoadPresetDir(b *preset.Builder, dir string) error {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if _, err := FormatOf(p); err != nil {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan preset directory %s: %w", dir, err)
	}
	sort.Strings(files)

	for _, file := range files {
		rel, err := filepath.Rel(dir, file)
		if err != nil {
			return fmt.Errorf("failed to resolve preset path %s: %w", file, err)
		}
		name, ok := PresetName(rel)
		if !ok {
			continue
		}
		decls, err := readFile(file)
		if err != nil {
			return err
		}
		if err := b.Add(name, file, decls...); err != nil {
			return err
		}
	}
	return nil
}

// LoadRegistry builds a snapshot from the builtins (when withBuiltins is
// set) and every directory in dirs, in order. A preset name defined twice is
// an error.
func LoadRegistry(dirs []string, withBuiltins bool) (*preset.Snapshot, error) {
	b := preset.NewBuilder()
	if withBuiltins {
		if err := AddBuiltins(b); err != nil {
			return nil, err
		}
	}
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to stat preset directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("preset path %s is not a directory", dir)
		}
		if err := LoadPresetDir(b, dir); err != nil {
			return nil, err
		}
	}
	return b.Snapshot(), nil
}

// IsDecodeError reports whether err came from malformed content rather than
// from the filesystem.
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrDecode)
}
