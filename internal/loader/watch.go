package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"lintconf/internal/preset"
	"lintconf/internal/project"
)

// DefaultWatchInterval is how often Watch polls when no interval is given.
const DefaultWatchInterval = 500 * time.Millisecond

// Stamp digests the name, size and modification time of every declaration
// or preset file under paths. A path may be a file or a directory; missing
// paths stamp as absent, so creating one later is a change.
func Stamp(paths []string) (project.Digest, error) {
	var lines []string
	for _, root := range paths {
		info, err := os.Stat(root)
		if errors.Is(err, os.ErrNotExist) {
			lines = append(lines, root+"\x00absent")
			continue
		}
		if err != nil {
			return project.Digest{}, fmt.Errorf("failed to stat %s: %w", root, err)
		}
		if !info.IsDir() {
			lines = append(lines, stampLine(root, info))
			continue
		}
		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != root && (strings.HasPrefix(d.Name(), ".") || d.Name() == "node_modules" || d.Name() == "vendor") {
					return filepath.SkipDir
				}
				return nil
			}
			if _, err := FormatOf(p); err != nil {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			lines = append(lines, stampLine(p, info))
			return nil
		})
		if err != nil {
			return project.Digest{}, fmt.Errorf("failed to scan %s: %w", root, err)
		}
	}
	sort.Strings(lines)
	return project.Sum([]byte(strings.Join(lines, "\n"))), nil
}

func stampLine(path string, info fs.FileInfo) string {
	return fmt.Sprintf("%s\x00%d\x00%d", path, info.Size(), info.ModTime().UnixNano())
}

// Watch polls paths every interval and calls onChange whenever their stamp
// differs from the previous poll. It returns ctx.Err() once ctx is done, or
// the first error from Stamp or onChange.
func Watch(ctx context.Context, paths []string, interval time.Duration, onChange func() error) error {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	last, err := Stamp(paths)
	if err != nil {
		return err
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		next, err := Stamp(paths)
		if err != nil {
			return err
		}
		if next == last {
			continue
		}
		last = next
		if err := onChange(); err != nil {
			return err
		}
	}
}

// Reload rebuilds the registry and publishes it to st. On failure the
// current snapshot stays in place.
func Reload(st *preset.Store, dirs []string, withBuiltins bool) (*preset.Snapshot, error) {
	snap, err := LoadRegistry(dirs, withBuiltins)
	if err != nil {
		return nil, err
	}
	st.Publish(snap)
	return snap, nil
}
