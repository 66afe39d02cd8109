package driver

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"lintconf/internal/cache"
	"lintconf/internal/config"
	"lintconf/internal/diag"
	"lintconf/internal/preset"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func baseStore(t *testing.T) *preset.Store {
	t.Helper()
	b := preset.NewBuilder()
	err := b.Add("base", "test", config.Declaration{Fields: map[string]any{
		"rules": map[string]any{"no-undef": "error", "semi": "warn"},
	}})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	return preset.NewStore(b.Snapshot())
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(evt Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
}

func (s *recordingSink) statuses(file string) []Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Status
	for _, evt := range s.events {
		if evt.File == file {
			out = append(out, evt.Status)
		}
	}
	return out
}

func TestResolveFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".lintconfrc.json")
	writeFile(t, path, `{"extends": "base", "rules": {"semi": "off"}}`)

	sink := &recordingSink{}
	d := New(baseStore(t), Options{Sink: sink})
	res, err := d.ResolveFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ResolveFile: %v", err)
	}
	if res.Failed() {
		t.Fatalf("resolution failed:\n%s", diag.FormatShortDiagnostics(res.Bag.Items(), true))
	}
	if got := res.Result.Config.EnabledRules(); !cmp.Equal(got, []string{"no-undef"}) {
		t.Fatalf("enabled rules = %v", got)
	}
	want := []Status{StatusWorking, StatusDone}
	if diff := cmp.Diff(want, sink.statuses(path)); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
	if res.Timing == nil || len(res.Timing.Phases) == 0 {
		t.Fatalf("expected timing phases")
	}
}

func TestResolveFileLoadErrors(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken", ".lintconfrc.json")
	writeFile(t, broken, `{"rules": `)

	tests := []struct {
		name string
		path string
		code diag.Code
	}{
		{"missing", filepath.Join(dir, "missing", ".lintconfrc.json"), diag.IOLoadFileError},
		{"decode", broken, diag.IODecodeError},
	}
	d := New(nil, Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := d.ResolveFile(context.Background(), tt.path)
			if err != nil {
				t.Fatalf("ResolveFile: %v", err)
			}
			if !res.Failed() {
				t.Fatalf("expected failure")
			}
			items := res.Bag.Items()
			if len(items) != 1 || items[0].Code != tt.code {
				t.Fatalf("diagnostics = %s", diag.FormatShortDiagnostics(items, true))
			}
		})
	}
}

func TestResolveFileFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".lintconfrc.json")
	writeFile(t, path, `{"extends": "nope"}`)

	res, err := New(nil, Options{}).ResolveFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ResolveFile: %v", err)
	}
	if !res.Fatal || res.Bag.Items()[0].Severity != diag.SevFatal {
		t.Fatalf("expected fatal diagnostic, got %s", diag.FormatShortDiagnostics(res.Bag.Items(), true))
	}
	if got := res.Bag.Items()[0].Code; got != diag.PrsUnknownPreset {
		t.Fatalf("code = %v", got)
	}
}

func TestResolveFileTimings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".lintconfrc.yaml")
	writeFile(t, path, "extends: base\nrules:\n  semi: error\nfoo: 1\n")

	res, err := New(baseStore(t), Options{Timings: true, MaxDiagnostics: 1}).ResolveFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ResolveFile: %v", err)
	}
	items := res.Bag.Items()
	if len(items) != 2 || items[0].Code != diag.CfgUnknownField {
		t.Fatalf("diagnostics = %s", diag.FormatShortDiagnostics(items, true))
	}
	timing := items[1]
	if timing.Code != diag.ObsTimings || timing.Severity != diag.SevInfo {
		t.Fatalf("timing diagnostic = %+v", timing)
	}
	if !strings.Contains(timing.Message, "2 layers") || !strings.Contains(timing.Message, "slowest ") {
		t.Fatalf("timing message = %q", timing.Message)
	}

	var payload timingPayload
	if err := json.Unmarshal([]byte(timing.Notes[0].Msg), &payload); err != nil {
		t.Fatalf("timing note: %v", err)
	}
	var validated []string
	for _, p := range payload.Phases {
		if p.Name == "validate" {
			if p.Depth == 0 {
				t.Fatalf("validate phase not nested under resolve: %+v", p)
			}
			validated = append(validated, p.Layer)
		}
	}
	if diff := cmp.Diff([]string{path, "preset:base#0"}, validated); diff != "" {
		t.Fatalf("validated layers (-want +got):\n%s", diff)
	}
	if payload.Layers != 2 || payload.Cached {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestResolveFileCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".lintconfrc.json")
	writeFile(t, path, `{"extends": "base"}`)

	dc, err := cache.Open(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	sink := &recordingSink{}
	d := New(baseStore(t), Options{Cache: dc, Sink: sink})

	first, err := d.ResolveFile(context.Background(), path)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if first.Cached {
		t.Fatalf("first resolution should miss the cache")
	}
	second, err := d.ResolveFile(context.Background(), path)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if !second.Cached {
		t.Fatalf("second resolution should hit the cache")
	}
	a, err := first.Result.Config.Canonical()
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	b, err := second.Result.Config.Canonical()
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	if diff := cmp.Diff(string(a), string(b)); diff != "" {
		t.Fatalf("cached config mismatch (-first +second):\n%s", diff)
	}
	got := sink.statuses(path)
	if got[len(got)-1] != StatusCached {
		t.Fatalf("last status = %v", got[len(got)-1])
	}
}

func TestListDeclarations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".lintconfrc.json"), `{}`)
	writeFile(t, filepath.Join(dir, "b", ".lintconfrc.yaml"), "{}\n")
	writeFile(t, filepath.Join(dir, "a", ".lintconfrc.toml"), "")
	writeFile(t, filepath.Join(dir, "a", ".lintconfrc.yml"), "{}\n")
	writeFile(t, filepath.Join(dir, "node_modules", "x", ".lintconfrc.json"), `{}`)
	writeFile(t, filepath.Join(dir, ".git", ".lintconfrc.json"), `{}`)

	got, err := ListDeclarations(dir)
	if err != nil {
		t.Fatalf("ListDeclarations: %v", err)
	}
	want := []string{
		filepath.Join(dir, ".lintconfrc.json"),
		filepath.Join(dir, "a", ".lintconfrc.yml"),
		filepath.Join(dir, "b", ".lintconfrc.yaml"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("declarations mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveDir(t *testing.T) {
	dir := t.TempDir()
	names := []string{"p1", "p2", "p3", "p4", "p5"}
	for _, n := range names {
		writeFile(t, filepath.Join(dir, n, ".lintconfrc.json"), `{"extends": "base", "rules": {"`+n+`": "error"}}`)
	}
	writeFile(t, filepath.Join(dir, "p3", "sub", ".lintconfrc.json"), `{"rules": {"semi": "bogus"}}`)

	d := New(baseStore(t), Options{Jobs: 2})
	results, err := d.ResolveDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("ResolveDir: %v", err)
	}
	if len(results) != 6 {
		t.Fatalf("got %d results", len(results))
	}
	failed := 0
	for i, res := range results {
		if i > 0 && results[i-1].Path >= res.Path {
			t.Fatalf("results not sorted: %s before %s", results[i-1].Path, res.Path)
		}
		if res.Failed() {
			failed++
			if !strings.HasSuffix(filepath.Dir(res.Path), "sub") {
				t.Fatalf("unexpected failure for %s", res.Path)
			}
			continue
		}
		want := filepath.Base(filepath.Dir(res.Path))
		if _, ok := res.Result.Config.Rules[want]; !ok {
			t.Fatalf("%s: missing rule %q", res.Path, want)
		}
	}
	if failed != 1 {
		t.Fatalf("failed = %d, want 1", failed)
	}
}

func TestResolveDirCanceled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".lintconfrc.json"), `{}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(nil, Options{}).ResolveDir(ctx, dir)
	if !errors.Is(err, context.Canceled) || !IsCanceled(err) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestResolveDirPinsSnapshot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a", ".lintconfrc.json"), `{"extends": "base"}`)
	writeFile(t, filepath.Join(dir, "b", ".lintconfrc.json"), `{"extends": "base"}`)

	store := baseStore(t)
	var once sync.Once
	sink := SinkFunc(func(evt Event) {
		if evt.Status == StatusWorking {
			once.Do(func() { store.Publish(preset.Empty()) })
		}
	})
	results, err := New(store, Options{Jobs: 1, Sink: sink}).ResolveDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("ResolveDir: %v", err)
	}
	for _, res := range results {
		if res.Failed() {
			t.Fatalf("%s failed after reload:\n%s", res.Path, diag.FormatShortDiagnostics(res.Bag.Items(), true))
		}
	}
}

func TestOverride(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, ".lintconfrc.json")
	writeFile(t, base, `{"extends": "base", "env": {"node": true}}`)
	over := filepath.Join(dir, "deploy.yaml")
	writeFile(t, over, "rules:\n  no-undef: \"off\"\nenv:\n  node: false\n")

	res, err := New(baseStore(t), Options{}).Override(context.Background(), base, over)
	if err != nil {
		t.Fatalf("Override: %v", err)
	}
	if res.Failed() {
		t.Fatalf("override failed:\n%s", diag.FormatShortDiagnostics(res.Bag.Items(), true))
	}
	if got := res.Result.Config.EnabledRules(); !cmp.Equal(got, []string{"semi"}) {
		t.Fatalf("enabled rules = %v", got)
	}
	if got := res.Result.Origins.Rules["no-undef"]; got != over {
		t.Fatalf("no-undef origin = %q, want %q", got, over)
	}
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.MrgEnvDowngrade {
		t.Fatalf("diagnostics = %s", diag.FormatShortDiagnostics(items, true))
	}
}

func TestOverrideMissingFile(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, ".lintconfrc.json")
	writeFile(t, base, `{}`)
	missing := filepath.Join(dir, "missing.json")

	res, err := New(nil, Options{}).Override(context.Background(), base, missing)
	if err != nil {
		t.Fatalf("Override: %v", err)
	}
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.IOLoadFileError || items[0].Layer != missing {
		t.Fatalf("diagnostics = %s", diag.FormatShortDiagnostics(items, true))
	}
}

func TestResolveFileReportsDiamondPresetOnce(t *testing.T) {
	b := preset.NewBuilder()
	_ = b.Add("base", "test", config.Declaration{Fields: map[string]any{"stray": true}})
	_ = b.Add("a", "test", config.Declaration{Fields: map[string]any{"extends": "base"}})
	_ = b.Add("b", "test", config.Declaration{Fields: map[string]any{"extends": "base"}})

	dir := t.TempDir()
	path := filepath.Join(dir, ".lintconfrc.json")
	writeFile(t, path, `{"extends": ["a", "b"]}`)

	res, err := New(preset.NewStore(b.Snapshot()), Options{}).ResolveFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ResolveFile: %v", err)
	}
	if n := len(res.Result.Diagnostics); n != 2 {
		t.Fatalf("resolution diagnostics = %d, want one per expansion of base", n)
	}
	got := diag.FormatShortDiagnostics(res.Bag.Items(), false)
	want := `warning CFG1001 preset:base#0:stray unknown field "stray" is preserved but not interpreted`
	if got != want {
		t.Fatalf("bag = %q, want %q", got, want)
	}
}
