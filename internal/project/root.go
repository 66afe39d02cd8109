package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestName is the tool manifest looked up from the working directory.
const ManifestName = "lintconf.toml"

// DeclarationNames lists the config file names recognized in a directory, in
// lookup order.
var DeclarationNames = []string{
	".lintconfrc.json",
	".lintconfrc.yaml",
	".lintconfrc.yml",
	".lintconfrc.toml",
}

// FindManifest walks up from startDir to locate lintconf.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	return walkUp(startDir, []string{ManifestName})
}

// FindDeclaration walks up from startDir to the nearest directory holding a
// .lintconfrc file.
func FindDeclaration(startDir string) (path string, ok bool, err error) {
	return walkUp(startDir, DeclarationNames)
}

// DeclarationIn returns the declaration file in dir itself, without walking up.
func DeclarationIn(dir string) (path string, ok bool, err error) {
	for _, name := range DeclarationNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
	}
	return "", false, nil
}

func walkUp(startDir string, names []string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}
