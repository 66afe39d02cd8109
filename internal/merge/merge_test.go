package merge

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"lintconf/internal/config"
	"lintconf/internal/diag"
)

func rules(kv map[string]config.Severity) map[string]config.RuleSetting {
	out := make(map[string]config.RuleSetting, len(kv))
	for k, v := range kv {
		out[k] = config.RuleSetting{Severity: v}
	}
	return out
}

func TestMergeEmpty(t *testing.T) {
	eff, diags := Merge(nil)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if diff := cmp.Diff(config.NewEffective(), eff); diff != "" {
		t.Fatalf("effective mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeRulesLastWriterWins(t *testing.T) {
	base := config.NewLayer("preset:base#0")
	base.Rules = map[string]config.RuleSetting{
		"no-unused-vars": {Severity: config.SeverityError, Options: []any{map[string]any{"vars": "all"}}},
		"no-undef":       {Severity: config.SeverityError},
	}
	mid := config.NewLayer("preset:mid#0")
	mid.Rules = rules(map[string]config.Severity{"eqeqeq": config.SeverityWarn})
	local := config.NewLayer("local")
	local.Rules = rules(map[string]config.Severity{"no-unused-vars": config.SeverityOff})

	eff, origins, diags := MergeExplained([]config.Layer{base, mid, local})
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	want := map[string]config.RuleSetting{
		"no-unused-vars": {Severity: config.SeverityOff},
		"no-undef":       {Severity: config.SeverityError},
		"eqeqeq":         {Severity: config.SeverityWarn},
	}
	if diff := cmp.Diff(want, eff.Rules); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}
	wantOrigins := map[string]string{
		"no-unused-vars": "local",
		"no-undef":       "preset:base#0",
		"eqeqeq":         "preset:mid#0",
	}
	if diff := cmp.Diff(wantOrigins, origins.Rules); diff != "" {
		t.Fatalf("origins mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeRuleOptionsAreNotCombined(t *testing.T) {
	low := config.NewLayer("low")
	low.Rules = map[string]config.RuleSetting{
		"max-len": {Severity: config.SeverityError, Options: []any{map[string]any{"code": 80, "tabWidth": 4}}},
	}
	high := config.NewLayer("high")
	high.Rules = map[string]config.RuleSetting{
		"max-len": {Severity: config.SeverityWarn, Options: []any{map[string]any{"code": 120}}},
	}
	eff, _ := Merge([]config.Layer{low, high})
	want := config.RuleSetting{Severity: config.SeverityWarn, Options: []any{map[string]any{"code": 120}}}
	if diff := cmp.Diff(want, eff.Rules["max-len"]); diff != "" {
		t.Fatalf("rule mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeDoesNotAliasLayers(t *testing.T) {
	l := config.NewLayer("local")
	l.Rules = map[string]config.RuleSetting{
		"r": {Severity: config.SeverityError, Options: []any{map[string]any{"k": "v"}}},
	}
	l.Settings = map[string]any{"react": map[string]any{"version": "18"}}
	eff, _ := Merge([]config.Layer{l})

	eff.Rules["r"].Options[0].(map[string]any)["k"] = "mutated"
	eff.Settings["react"].(map[string]any)["version"] = "mutated"

	if got := l.Rules["r"].Options[0].(map[string]any)["k"]; got != "v" {
		t.Fatalf("layer rule options were aliased: %v", got)
	}
	if got := l.Settings["react"].(map[string]any)["version"]; got != "18" {
		t.Fatalf("layer settings were aliased: %v", got)
	}
}

func TestMergeEnvMonotonic(t *testing.T) {
	preset := config.NewLayer("preset:base#0")
	preset.Env = map[string]bool{"browser": true, "node": false}
	local := config.NewLayer("local")
	local.Env = map[string]bool{"browser": false, "es2021": true}

	eff, diags := Merge([]config.Layer{preset, local})
	want := map[string]bool{"browser": true, "node": false, "es2021": true}
	if diff := cmp.Diff(want, eff.Env); diff != "" {
		t.Fatalf("env mismatch (-want +got):\n%s", diff)
	}
	wantDiags := "warning MRG3001 local:env.browser environment \"browser\" was enabled by a lower-priority layer and cannot be disabled; keeping it enabled\n" +
		"note MRG3001 preset:base#0:env.browser enabled here"
	if got := diag.FormatShortDiagnostics(diags, true); got != wantDiags {
		t.Fatalf("diagnostics mismatch:\nwant:\n%s\ngot:\n%s", wantDiags, got)
	}
}

func TestMergeEnvUpgradeIsSilent(t *testing.T) {
	preset := config.NewLayer("preset:base#0")
	preset.Env = map[string]bool{"browser": false}
	local := config.NewLayer("local")
	local.Env = map[string]bool{"browser": true}

	eff, diags := Merge([]config.Layer{preset, local})
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics:\n%s", diag.FormatShortDiagnostics(diags, true))
	}
	if !eff.Env["browser"] {
		t.Fatalf("browser should be enabled")
	}
}

func TestMergeEnvFalseRepeatedStaysFalse(t *testing.T) {
	a := config.NewLayer("a")
	a.Env = map[string]bool{"jest": false}
	b := config.NewLayer("b")
	b.Env = map[string]bool{"jest": false}
	eff, diags := Merge([]config.Layer{a, b})
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	v, ok := eff.Env["jest"]
	if !ok || v {
		t.Fatalf("jest = %v (present %v), want false and present", v, ok)
	}
}

func TestMergeParserOptions(t *testing.T) {
	v2018 := config.EcmaVersion(2018)
	v2022 := config.EcmaVersion(2022)
	module := config.SourceModule

	a := config.NewLayer("a")
	a.ParserOptions = config.ParserOptions{
		EcmaVersion: &v2018,
		SourceType:  &module,
		Features:    map[config.Feature]bool{config.FeatureJSX: true, config.FeatureGlobalReturn: true},
	}
	b := config.NewLayer("b")
	b.ParserOptions = config.ParserOptions{
		EcmaVersion: &v2022,
		Features:    map[config.Feature]bool{config.FeatureGlobalReturn: false},
	}

	eff, origins, _ := MergeExplained([]config.Layer{a, b})
	want := config.ResolvedParserOptions{
		EcmaVersion: 2022,
		SourceType:  config.SourceModule,
		Features:    config.FeatureFlags{JSX: true},
	}
	if diff := cmp.Diff(want, eff.ParserOptions); diff != "" {
		t.Fatalf("parser options mismatch (-want +got):\n%s", diff)
	}
	if origins.EcmaVersion != "b" || origins.SourceType != "a" {
		t.Fatalf("origins = %+v", origins)
	}
	if origins.Features[config.FeatureJSX] != "a" || origins.Features[config.FeatureGlobalReturn] != "b" {
		t.Fatalf("feature origins = %v", origins.Features)
	}
}

func TestMergeParserDefaults(t *testing.T) {
	eff, _ := Merge([]config.Layer{config.NewLayer("only")})
	if diff := cmp.Diff(config.DefaultParserOptions(), eff.ParserOptions); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeGlobalsPluginsSettings(t *testing.T) {
	a := config.NewLayer("a")
	a.Globals = map[string]config.GlobalAccess{"window": config.GlobalReadonly, "jQuery": config.GlobalWritable}
	a.Plugins = []string{"react", "import"}
	a.Settings = map[string]any{"react": map[string]any{"version": "17"}, "shared": 1}
	a.Unknown = map[string]any{"root": true}

	b := config.NewLayer("b")
	b.Globals = map[string]config.GlobalAccess{"jQuery": config.GlobalOff}
	b.Plugins = []string{"jsx-a11y", "react"}
	b.Settings = map[string]any{"react": map[string]any{"version": "18"}}
	b.Unknown = map[string]any{"root": false}

	eff, _ := Merge([]config.Layer{a, b})

	if diff := cmp.Diff(map[string]config.GlobalAccess{"window": config.GlobalReadonly, "jQuery": config.GlobalOff}, eff.Globals); diff != "" {
		t.Fatalf("globals mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"react", "import", "jsx-a11y"}, eff.Plugins); diff != "" {
		t.Fatalf("plugins mismatch (-want +got):\n%s", diff)
	}
	wantSettings := map[string]any{"react": map[string]any{"version": "18"}, "shared": 1}
	if diff := cmp.Diff(wantSettings, eff.Settings); diff != "" {
		t.Fatalf("settings mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"root": false}, eff.Unknown); diff != "" {
		t.Fatalf("unknown mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeDeterministic(t *testing.T) {
	build := func() []config.Layer {
		a := config.NewLayer("a")
		a.Rules = rules(map[string]config.Severity{"z": config.SeverityWarn, "a": config.SeverityError, "m": config.SeverityOff})
		a.Env = map[string]bool{"browser": true, "node": true, "jest": true}
		a.Globals = map[string]config.GlobalAccess{"g1": config.GlobalReadonly, "g2": config.GlobalWritable}
		b := config.NewLayer("b")
		b.Rules = rules(map[string]config.Severity{"m": config.SeverityError})
		b.Env = map[string]bool{"node": false, "jest": false, "browser": false}
		return []config.Layer{a, b}
	}

	first, diags1 := Merge(build())
	for i := 0; i < 20; i++ {
		again, diags2 := Merge(build())
		b1, err := first.Canonical()
		if err != nil {
			t.Fatalf("canonical: %v", err)
		}
		b2, err := again.Canonical()
		if err != nil {
			t.Fatalf("canonical: %v", err)
		}
		if !bytes.Equal(b1, b2) {
			t.Fatalf("canonical output differs:\n%s\n%s", b1, b2)
		}
		if diff := cmp.Diff(diags1, diags2); diff != "" {
			t.Fatalf("diagnostics differ (-first +again):\n%s", diff)
		}
	}
	if len(diags1) != 3 {
		t.Fatalf("want 3 downgrade warnings, got %d", len(diags1))
	}
	for i, field := range []string{"env.browser", "env.jest", "env.node"} {
		if diags1[i].Field != field {
			t.Fatalf("diagnostic %d field = %q, want %q", i, diags1[i].Field, field)
		}
	}
}
