package cache

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"lintconf/internal/config"
	"lintconf/internal/diag"
	"lintconf/internal/preset"
	"lintconf/internal/project"
	"lintconf/internal/resolve"
)

func resolved(t *testing.T) (config.Declaration, resolve.Result) {
	t.Helper()
	b := preset.NewBuilder()
	if err := b.Add("base", "test", config.Declaration{Fields: map[string]any{
		"rules": map[string]any{"max-len": []any{"warn", map[string]any{"code": 100.0}}},
		"env":   map[string]any{"browser": true},
	}}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	decl := config.Declaration{Identity: "local", Fields: map[string]any{
		"extends":       "base",
		"env":           map[string]any{"browser": false},
		"globals":       map[string]any{"$": "readonly"},
		"parserOptions": map[string]any{"sourceType": "module"},
	}}
	res, err := resolve.New(b.Snapshot()).Resolve(context.Background(), decl)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return decl, res
}

func TestPutGetRoundTrip(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	decl, res := resolved(t)
	key := Key(decl, project.Sum([]byte("registry")))

	if _, ok, err := c.Get(key); ok || err != nil {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}
	if err := c.Put(key, res); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := c.Get(key)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}

	want, _ := res.Config.Canonical()
	have, err := got.Config.Canonical()
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	if !bytes.Equal(want, have) {
		t.Fatalf("config changed in cache:\nwant %s\ngot  %s", want, have)
	}
	if diff := cmp.Diff(diag.FormatShortDiagnostics(res.Diagnostics, true), diag.FormatShortDiagnostics(got.Diagnostics, true)); diff != "" {
		t.Fatalf("diagnostics changed in cache (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(res.Layers, got.Layers); diff != "" {
		t.Fatalf("layers changed in cache (-want +got):\n%s", diff)
	}
	if got.Origins.Rules["max-len"] != "preset:base#0" {
		t.Fatalf("origins = %+v", got.Origins)
	}
}

func TestKeyDependsOnInputs(t *testing.T) {
	decl := config.Declaration{Identity: "a", Fields: map[string]any{"rules": map[string]any{"x": 1}}}
	reg := project.Sum([]byte("r1"))
	base := Key(decl, reg)

	if Key(decl, reg) != base {
		t.Fatalf("key must be deterministic")
	}
	if Key(decl, project.Sum([]byte("r2"))) == base {
		t.Fatalf("key must depend on the registry")
	}
	other := config.Declaration{Identity: "a", Fields: map[string]any{"rules": map[string]any{"x": "1"}}}
	if Key(other, reg) == base {
		t.Fatalf("key must depend on value types")
	}
	renamed := config.Declaration{Identity: "b", Fields: decl.Fields}
	if Key(renamed, reg) == base {
		t.Fatalf("key must depend on identity")
	}
}

func TestDropAll(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	decl, res := resolved(t)
	key := Key(decl, project.Digest{})
	if err := c.Put(key, res); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if _, ok, err := c.Get(key); ok || err != nil {
		t.Fatalf("after drop: ok=%v err=%v", ok, err)
	}
	if err := c.Put(key, res); err != nil {
		t.Fatalf("Put after drop: %v", err)
	}
}

func TestNilCacheIsNoop(t *testing.T) {
	var c *DiskCache
	if err := c.Put(project.Digest{}, resolve.Result{}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok, err := c.Get(project.Digest{}); ok || err != nil {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
}
