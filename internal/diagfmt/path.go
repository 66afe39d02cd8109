package diagfmt

import (
	"path/filepath"
	"strings"
)

// isFileLayer reports whether a layer identity names a file on disk.
func isFileLayer(layer string) bool {
	if layer == "" || strings.HasPrefix(layer, "preset:") || strings.HasPrefix(layer, "<") {
		return false
	}
	return true
}

// FormatLayer renders a layer identity according to mode. Multi-document
// suffixes ("file.yaml#1") survive the rewrite.
func FormatLayer(layer string, mode PathMode, baseDir string) string {
	if !isFileLayer(layer) {
		return layer
	}
	path, suffix := layer, ""
	if i := strings.LastIndexByte(layer, '#'); i > 0 {
		path, suffix = layer[:i], layer[i:]
	}

	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	case PathModeBasename:
		path = filepath.Base(path)
	case PathModeRelative, PathModeAuto:
		path = relativeTo(path, baseDir, mode == PathModeRelative)
	}
	return filepath.ToSlash(path) + suffix
}

func relativeTo(path, baseDir string, force bool) string {
	if baseDir == "" {
		return path
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil {
		return path
	}
	if !force && strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

func location(layer, field string, mode PathMode, baseDir string) string {
	layer = FormatLayer(layer, mode, baseDir)
	switch {
	case field == "":
		return layer
	case layer == "":
		return field
	}
	return layer + ":" + field
}
