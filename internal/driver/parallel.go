package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"lintconf/internal/project"
	"lintconf/internal/resolve"
	"lintconf/internal/trace"
)

// skipDirs are never searched for declaration files.
var skipDirs = map[string]struct{}{
	"node_modules": {},
	"vendor":       {},
}

// ListDeclarations returns every declaration file under dir in sorted order.
// At most one file per directory is picked, by project.DeclarationNames
// priority.
func ListDeclarations(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != dir {
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
		}
		decl, ok, err := project.DeclarationIn(path)
		if err != nil {
			return err
		}
		if ok {
			files = append(files, decl)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ResolveDir resolves every declaration file under dir in parallel. All
// files see the same registry snapshot. Results come back in ListDeclarations
// order regardless of completion order.
func (d *Driver) ResolveDir(ctx context.Context, dir string) ([]FileResult, error) {
	ctx, span := trace.BeginCtx(ctx, trace.ScopePass, "resolve-dir")
	defer span.End("")

	files, err := ListDeclarations(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}
	for _, f := range files {
		emit(d.opts.Sink, Event{File: f, Stage: StageLoad, Status: StatusQueued})
	}

	snap := d.store.Snapshot()
	engine := resolve.New(snap)

	jobs := d.opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Each goroutine writes only its own index.
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := d.resolveFile(gctx, engine, snap, path)
			if err != nil {
				return err
			}
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	span.WithExtra("files", strconv.Itoa(len(files)))
	return results, nil
}
