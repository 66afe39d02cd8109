package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"lintconf/internal/config"
	"lintconf/internal/diag"
	"lintconf/internal/preset"
	"lintconf/internal/schema"
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

func TestNumericSeveritiesFromEveryDecoder(t *testing.T) {
	inputs := []struct {
		name   string
		format Format
		data   string
	}{
		{"json", FormatJSON, `{"rules": {"a": 0, "b": 1, "c": [2, {"max": 3}]}}`},
		{"yaml", FormatYAML, "rules:\n  a: 0\n  b: 1\n  c: [2, {max: 3}]\n"},
		{"toml", FormatTOML, "[rules]\na = 0\nb = 1\nc = [2, {max = 3}]\n"},
	}
	want := map[string]config.Severity{"a": config.SeverityOff, "b": config.SeverityWarn, "c": config.SeverityError}
	for _, in := range inputs {
		t.Run(in.name, func(t *testing.T) {
			decls, err := Decode([]byte(in.data), in.format, "local")
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			layer, diags := schema.Validate(decls[0])
			if len(diags) != 0 {
				t.Fatalf("unexpected diagnostics:\n%s", diag.FormatShortDiagnostics(diags, false))
			}
			got := make(map[string]config.Severity, len(layer.Rules))
			for name, r := range layer.Rules {
				got[name] = r.Severity
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("severities mismatch (-want +got):\n%s", diff)
			}
			if len(layer.Rules["c"].Options) != 1 {
				t.Fatalf("options of c = %v", layer.Rules["c"].Options)
			}
			if _, ok := layer.Rules["c"].Options[0].(map[string]any); !ok {
				t.Fatalf("options not normalized: %T", layer.Rules["c"].Options[0])
			}
		})
	}
}

func TestDecodeYAMLMultiDocument(t *testing.T) {
	data := "rules:\n  a: error\n---\nenv:\n  node: true\n"
	decls, err := Decode([]byte(data), FormatYAML, "base.yaml")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decls) != 2 {
		t.Fatalf("want 2 documents, got %d", len(decls))
	}
	if decls[0].Identity != "base.yaml#0" || decls[1].Identity != "base.yaml#1" {
		t.Fatalf("identities = %q, %q", decls[0].Identity, decls[1].Identity)
	}
	if diff := cmp.Diff(map[string]any{"env": map[string]any{"node": true}}, decls[1].Fields); diff != "" {
		t.Fatalf("second document mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
	}{
		{"json syntax", FormatJSON, `{"rules": `},
		{"json array", FormatJSON, `["a"]`},
		{"json trailing", FormatJSON, `{} {}`},
		{"yaml scalar", FormatYAML, "just text\n"},
		{"toml syntax", FormatTOML, "rules = [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data), tt.format, "f")
			if !IsDecodeError(err) {
				t.Fatalf("err = %v, want decode error", err)
			}
		})
	}
}

func TestDecodeEmptyInput(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML, FormatTOML} {
		decls, err := Decode(nil, f, "empty")
		if err != nil {
			t.Fatalf("%s: %v", f, err)
		}
		if len(decls) != 1 || len(decls[0].Fields) != 0 || decls[0].Identity != "empty" {
			t.Fatalf("%s: decls = %+v", f, decls)
		}
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".lintconfrc.yaml")
	writeFile(t, path, "extends: base\nrules:\n  semi: warn\n")
	decl, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if decl.Identity != path || decl.Fields["extends"] != "base" {
		t.Fatalf("decl = %+v", decl)
	}

	multi := filepath.Join(dir, "multi.yaml")
	writeFile(t, multi, "a: 1\n---\nb: 2\n")
	if _, err := LoadFile(multi); !errors.Is(err, ErrMultipleDocuments) {
		t.Fatalf("err = %v, want ErrMultipleDocuments", err)
	}

	if _, err := LoadFile(filepath.Join(dir, "config.ini")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	if err == nil || IsDecodeError(err) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want not-exist I/O error", err)
	}
}

func TestPresetName(t *testing.T) {
	tests := []struct {
		rel  string
		want string
		ok   bool
	}{
		{"base.yaml", "base", true},
		{"react/strict.json", "plugin:react/strict", true},
		{"a/b/deep.toml", "", false},
		{".hidden.json", "", false},
	}
	for _, tt := range tests {
		got, ok := PresetName(tt.rel)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("PresetName(%q) = %q, %v; want %q, %v", tt.rel, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLoadRegistry(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "base.json"), `{"rules": {"no-undef": "error"}}`)
	writeFile(t, filepath.Join(dir, "layered.yaml"), "extends: base\n---\nenv: {node: true}\n")
	writeFile(t, filepath.Join(dir, "react", "strict.toml"), "[rules]\n\"react/jsx-key\" = \"error\"\n")
	writeFile(t, filepath.Join(dir, "README.md"), "not a preset")
	writeFile(t, filepath.Join(dir, ".git", "config.json"), "{}")

	snap, err := LoadRegistry([]string{dir}, true)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	want := []string{"base", "layered", "lintconf:all-off", "lintconf:recommended", "plugin:react/strict"}
	if diff := cmp.Diff(want, snap.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	decls, _ := snap.Lookup("layered")
	if len(decls) != 2 || decls[1].Identity != "preset:layered#1" {
		t.Fatalf("layered = %+v", decls)
	}
	if got := snap.Source("base"); got != filepath.Join(dir, "base.json") {
		t.Fatalf("source = %q", got)
	}
	if diags := snap.Check(); len(diags) != 0 {
		t.Fatalf("unexpected check diagnostics:\n%s", diag.FormatShortDiagnostics(diags, false))
	}
}

func TestLoadRegistryDuplicateAcrossDirs(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	writeFile(t, filepath.Join(a, "base.json"), "{}")
	writeFile(t, filepath.Join(b, "base.yaml"), "")
	if _, err := LoadRegistry([]string{a, b}, false); !errors.Is(err, preset.ErrDuplicatePreset) {
		t.Fatalf("err = %v, want ErrDuplicatePreset", err)
	}
}

func TestBuiltinsAreValid(t *testing.T) {
	b := preset.NewBuilder()
	if err := AddBuiltins(b); err != nil {
		t.Fatalf("AddBuiltins: %v", err)
	}
	snap := b.Snapshot()
	if diags := snap.Check(); len(diags) != 0 {
		t.Fatalf("builtin presets have problems:\n%s", diag.FormatShortDiagnostics(diags, false))
	}
	decls, ok := snap.Lookup("lintconf:recommended")
	if !ok || len(decls) != 2 {
		t.Fatalf("recommended = %v, %v", len(decls), ok)
	}
}

func TestReloadPublishes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "base.json"), "{}")
	st := preset.NewStore(nil)
	if _, err := Reload(st, []string{dir}, false); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if _, ok := st.Lookup("base"); !ok {
		t.Fatalf("reloaded preset not visible")
	}

	writeFile(t, filepath.Join(dir, "broken.json"), "{")
	if _, err := Reload(st, []string{dir}, false); err == nil {
		t.Fatalf("expected reload failure")
	}
	if _, ok := st.Lookup("base"); !ok {
		t.Fatalf("failed reload must keep the previous snapshot")
	}
}
