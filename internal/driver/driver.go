package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lintconf/internal/cache"
	"lintconf/internal/config"
	"lintconf/internal/diag"
	"lintconf/internal/loader"
	"lintconf/internal/observ"
	"lintconf/internal/preset"
	"lintconf/internal/resolve"
	"lintconf/internal/trace"
)

// Options configure a Driver.
type Options struct {
	// MaxDiagnostics caps the diagnostics kept per file (0 = unlimited).
	MaxDiagnostics int
	// Jobs bounds ResolveDir parallelism (0 = GOMAXPROCS).
	Jobs int
	// Cache, when set, is consulted before resolving and filled after.
	Cache *cache.DiskCache
	// Timings appends an OBS6001 info diagnostic with phase timings.
	Timings bool
	Sink    ProgressSink
}

// Driver resolves declaration files against the registry published in a
// preset.Store.
type Driver struct {
	store *preset.Store
	opts  Options
}

func New(store *preset.Store, opts Options) *Driver {
	if store == nil {
		store = preset.NewStore(nil)
	}
	return &Driver{store: store, opts: opts}
}

// FileResult is the outcome for one declaration file. Bag holds everything
// to show the user, including load failures and fatal diagnostics.
type FileResult struct {
	Path   string
	Result resolve.Result
	Bag    *diag.Bag
	Cached bool
	Fatal  bool
	Timing *observ.Report
}

// Failed reports whether no configuration was produced.
func (r *FileResult) Failed() bool {
	return r == nil || r.Result.Config == nil
}

// ResolveFile loads and resolves one declaration file. Load, decode and
// resolution problems end up in the result's Bag; the error is reserved for
// cancellation.
func (d *Driver) ResolveFile(ctx context.Context, path string) (*FileResult, error) {
	snap := d.store.Snapshot()
	return d.resolveFile(ctx, resolve.New(snap), snap, path)
}

// ResolveDeclaration resolves an already-decoded declaration.
func (d *Driver) ResolveDeclaration(ctx context.Context, decl config.Declaration) (*FileResult, error) {
	snap := d.store.Snapshot()
	out := &FileResult{Path: decl.Identity, Bag: diag.NewBag(d.opts.MaxDiagnostics)}
	timer := observ.NewTimer()
	if err := d.resolveDecl(ctx, resolve.New(snap), snap, decl, out, timer); err != nil {
		return nil, err
	}
	d.finish(out, timer)
	return out, nil
}

func (d *Driver) resolveFile(ctx context.Context, engine *resolve.Engine, snap *preset.Snapshot, path string) (*FileResult, error) {
	ctx, span := trace.BeginCtx(trace.WithFile(ctx, path), trace.ScopeLayer, "file")
	defer span.End("")

	out := &FileResult{Path: path, Bag: diag.NewBag(d.opts.MaxDiagnostics)}
	timer := observ.NewTimer()

	started := time.Now()
	emit(d.opts.Sink, Event{File: path, Stage: StageLoad, Status: StatusWorking})
	loadIdx := timer.Begin("load")
	decl, err := loader.LoadFile(path)
	timer.End(loadIdx, "")
	if err != nil {
		out.Bag.Add(LoadDiagnostic(path, err))
		emit(d.opts.Sink, Event{File: path, Stage: StageLoad, Status: StatusError, Err: err, Elapsed: time.Since(started)})
		d.finish(out, timer)
		return out, nil
	}

	if err := d.resolveDecl(ctx, engine, snap, decl, out, timer); err != nil {
		emit(d.opts.Sink, Event{File: path, Stage: StageResolve, Status: StatusError, Err: err, Elapsed: time.Since(started)})
		return nil, err
	}

	status := StatusDone
	switch {
	case out.Cached:
		status = StatusCached
	case out.Failed():
		status = StatusError
	}
	emit(d.opts.Sink, Event{File: path, Stage: StageResolve, Status: status, Elapsed: time.Since(started)})
	d.finish(out, timer)
	return out, nil
}

// Override resolves the declaration at path with the declaration at
// overridePath layered on top. Results are never cached.
func (d *Driver) Override(ctx context.Context, path, overridePath string) (*FileResult, error) {
	ctx, span := trace.BeginCtx(trace.WithFile(ctx, path), trace.ScopeLayer, "override:"+overridePath)
	defer span.End("")

	out := &FileResult{Path: path, Bag: diag.NewBag(d.opts.MaxDiagnostics)}
	timer := observ.NewTimer()
	defer d.finish(out, timer)

	loadIdx := timer.Begin("load")
	base, err := loader.LoadFile(path)
	if err != nil {
		timer.End(loadIdx, "")
		out.Bag.Add(LoadDiagnostic(path, err))
		return out, nil
	}
	top, err := loader.LoadFile(overridePath)
	timer.End(loadIdx, "")
	if err != nil {
		out.Bag.Add(LoadDiagnostic(overridePath, err))
		return out, nil
	}

	idx := timer.Begin("resolve")
	res, err := resolve.New(d.store.Snapshot()).Override(observ.WithTimer(ctx, timer), base, overridePath, top)
	timer.End(idx, "override")
	if err != nil {
		fatal, ok := resolve.AsDiagnostic(err)
		if !ok {
			return nil, err
		}
		out.Fatal = true
		out.Bag.Add(fatal)
		return out, nil
	}
	out.Result = res
	d.collect(out)
	return out, nil
}

// LoadDiagnostic turns a loader failure for path into an IO5002 diagnostic
// for malformed content or IO5001 for everything else.
func LoadDiagnostic(path string, err error) diag.Diagnostic {
	code := diag.IOLoadFileError
	if loader.IsDecodeError(err) {
		code = diag.IODecodeError
	}
	return diag.NewError(code, path, "", err.Error())
}

func (d *Driver) resolveDecl(ctx context.Context, engine *resolve.Engine, snap *preset.Snapshot, decl config.Declaration, out *FileResult, timer *observ.Timer) error {
	key := cache.Key(decl, snap.Fingerprint())
	if d.opts.Cache != nil {
		idx := timer.Begin("cache")
		res, ok, err := d.opts.Cache.Get(key)
		timer.End(idx, hitNote(ok))
		if err != nil {
			trace.PointCtx(ctx, trace.ScopeLayer, "cache:get", err.Error())
		}
		if ok {
			out.Result = res
			out.Cached = true
			d.collect(out)
			return nil
		}
	}

	idx := timer.Begin("resolve")
	res, err := engine.Resolve(observ.WithTimer(ctx, timer), decl)
	timer.End(idx, fmt.Sprintf("%d layers", len(res.Layers)))
	if err != nil {
		fatal, ok := resolve.AsDiagnostic(err)
		if !ok {
			return err
		}
		out.Fatal = true
		out.Bag.Add(fatal)
		return nil
	}
	out.Result = res
	d.collect(out)

	if d.opts.Cache != nil {
		if err := d.opts.Cache.Put(key, res); err != nil {
			trace.PointCtx(ctx, trace.ScopeLayer, "cache:put", err.Error())
		}
	}
	return nil
}

// collect copies the resolution diagnostics into the bag. A preset reached
// through several extends paths is validated each time, so repeats are
// shown once.
func (d *Driver) collect(out *FileResult) {
	r := diag.NewDedupReporter(diag.BagReporter{Bag: out.Bag})
	for _, item := range out.Result.Diagnostics {
		r.Report(item.Code, item.Severity, item.Layer, item.Field, item.Message, item.Notes)
	}
}

func (d *Driver) finish(out *FileResult, timer *observ.Timer) {
	report := timer.Report()
	out.Timing = &report
	if !d.opts.Timings {
		return
	}
	entry, err := timingDiagnostic(out, report)
	if err != nil {
		return
	}
	out.Bag.Attach(entry)
}

func hitNote(ok bool) string {
	if ok {
		return "hit"
	}
	return "miss"
}

// IsCanceled reports whether err is a context cancellation or deadline.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
