package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"lintconf/internal/config"
	"lintconf/internal/diag"
	"lintconf/internal/merge"
	"lintconf/internal/project"
	"lintconf/internal/resolve"
)

// Bump when Payload or anything it embeds changes shape.
const schemaVersion uint16 = 1

// DiskCache stores resolution results on disk, keyed by Key. Safe for
// concurrent use within one process; writes are atomic renames so readers
// in other processes never see partial files.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// Payload is one cached resolution. Fatal resolutions are never cached.
type Payload struct {
	Schema      uint16
	Config      *config.Effective
	Diagnostics []diag.Diagnostic
	Layers      []string
	Excluded    []string
	Origins     merge.Origins
}

// DefaultDir returns $XDG_CACHE_HOME/<app> or ~/.cache/<app>.
func DefaultDir(app string) (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to locate home directory: %w", err)
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, app), nil
}

// Open prepares a cache rooted at dir, creating it if needed.
func Open(dir string) (*DiskCache, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("empty cache directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key project.Digest) string {
	return filepath.Join(c.dir, "results", key.String()+".mp")
}

// Key derives the cache key of resolving decl against a registry snapshot
// with the given fingerprint.
func Key(decl config.Declaration, registry project.Digest) project.Digest {
	// %#v sorts map keys and keeps value types apart.
	content := project.Sum(fmt.Appendf(nil, "v%d\x00%s\x00%#v", schemaVersion, decl.Identity, decl.Fields))
	return project.Combine(content, registry)
}

// Put stores the result under key.
func (c *DiskCache) Put(key project.Digest, res resolve.Result) error {
	if c == nil {
		return nil
	}
	payload := Payload{
		Schema:      schemaVersion,
		Config:      res.Config,
		Diagnostics: res.Diagnostics,
		Layers:      res.Layers,
		Excluded:    res.Excluded,
		Origins:     res.Origins,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := os.Rename(f.Name(), p); err != nil {
		return fmt.Errorf("failed to commit cache entry: %w", err)
	}
	committed = true
	return nil
}

// Get loads the result stored under key. Entries written by another schema
// version count as misses.
func (c *DiskCache) Get(key project.Digest) (resolve.Result, bool, error) {
	if c == nil {
		return resolve.Result{}, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return resolve.Result{}, false, nil
		}
		return resolve.Result{}, false, fmt.Errorf("failed to open cache entry: %w", err)
	}
	defer f.Close()

	var payload Payload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return resolve.Result{}, false, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	if payload.Schema != schemaVersion {
		return resolve.Result{}, false, nil
	}
	return resolve.Result{
		Config:      payload.Config,
		Diagnostics: payload.Diagnostics,
		Layers:      payload.Layers,
		Excluded:    payload.Excluded,
		Origins:     payload.Origins,
	}, true, nil
}

// DropAll removes every cached entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405.000000000")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to drop cache: %w", err)
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("failed to recreate cache directory: %w", err)
	}
	return os.RemoveAll(old)
}
