package diagfmt

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"lintconf/internal/diag"
)

func sample() []diag.Diagnostic {
	return []diag.Diagnostic{
		diag.NewError(diag.CfgInvalidSeverity, "/home/user/project/app/.lintconfrc.json", "rules.semi",
			`invalid severity "loud" for rule "semi"`),
		diag.New(diag.SevWarning, diag.MrgEnvDowngrade, "/home/user/project/.lintconfrc.yaml", "env.node",
			`environment "node" was enabled by a lower-priority layer and cannot be disabled; keeping it enabled`).
			WithNote("preset:base#0", "env.node", "enabled here"),
		diag.NewFatal(diag.PrsUnknownPreset, "/home/user/project/.lintconfrc.yaml", "extends", `unknown preset "x"`),
	}
}

func TestFormatLayer(t *testing.T) {
	base := filepath.FromSlash("/home/user/project")
	tests := []struct {
		name  string
		layer string
		mode  PathMode
		want  string
	}{
		{"absolute", "/home/user/project/src/.lintconfrc.json", PathModeAbsolute, "/home/user/project/src/.lintconfrc.json"},
		{"relative", "/home/user/project/src/.lintconfrc.json", PathModeRelative, "src/.lintconfrc.json"},
		{"relative outside", "/etc/.lintconfrc.json", PathModeRelative, "../../../etc/.lintconfrc.json"},
		{"auto outside", "/etc/.lintconfrc.json", PathModeAuto, "/etc/.lintconfrc.json"},
		{"basename", "/home/user/project/src/.lintconfrc.json", PathModeBasename, ".lintconfrc.json"},
		{"document suffix", "/home/user/project/multi.yaml#1", PathModeRelative, "multi.yaml#1"},
		{"preset untouched", "preset:base#0", PathModeBasename, "preset:base#0"},
		{"synthetic untouched", "<override>", PathModeAbsolute, "<override>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatLayer(tt.layer, tt.mode, base); got != tt.want {
				t.Fatalf("FormatLayer(%q) = %q, want %q", tt.layer, got, tt.want)
			}
		})
	}
}

func TestPretty(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sample(), PrettyOpts{PathMode: PathModeRelative, BaseDir: "/home/user/project", ShowNotes: true})
	want := `ERROR CFG2001: invalid severity "loud" for rule "semi"
  --> app/.lintconfrc.json:rules.semi

WARNING MRG3001: environment "node" was enabled by a lower-priority layer and cannot be disabled; keeping it enabled
  --> .lintconfrc.yaml:env.node
  = note: preset:base#0:env.node: enabled here

FATAL PRS4002: unknown preset "x"
  --> .lintconfrc.yaml:extends
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("pretty output mismatch (-want +got):\n%s", diff)
	}
}

func TestPrettyHidesNotesAndTruncates(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sample()[1:2], PrettyOpts{Width: 20})
	out := buf.String()
	if strings.Contains(out, "note") {
		t.Fatalf("notes should be hidden:\n%s", out)
	}
	if !strings.Contains(out, "environment \"node...") {
		t.Fatalf("message not truncated:\n%s", out)
	}
}

func TestPrettyColor(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sample()[:1], PrettyOpts{Color: true})
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected ANSI escapes, got %q", buf.String())
	}
}

func TestSummary(t *testing.T) {
	if got := Summary(sample()); got != "2 errors, 1 warning" {
		t.Fatalf("Summary = %q", got)
	}
	if got := Summary(nil); got != "0 errors, 0 warnings" {
		t.Fatalf("Summary(nil) = %q", got)
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sample(), JSONOpts{PathMode: PathModeBasename, Max: 2}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := DiagnosticsOutput{
		Count: 2,
		Diagnostics: []DiagnosticJSON{
			{
				Severity: "error", Code: "CFG2001", Kind: "InvalidSeverity",
				Message:  `invalid severity "loud" for rule "semi"`,
				Location: LocationJSON{Layer: ".lintconfrc.json", Field: "rules.semi"},
			},
			{
				Severity: "warning", Code: "MRG3001", Kind: "EnvDowngrade",
				Message:  `environment "node" was enabled by a lower-priority layer and cannot be disabled; keeping it enabled`,
				Location: LocationJSON{Layer: ".lintconfrc.yaml", Field: "env.node"},
			},
		},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("json mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONTimingNotesAlwaysIncluded(t *testing.T) {
	d := diag.New(diag.SevInfo, diag.ObsTimings, "a.json", "", "timings").WithNote("a.json", "", `{"kind":"resolve"}`)
	out := BuildDiagnosticsOutput([]diag.Diagnostic{d}, JSONOpts{})
	if len(out.Diagnostics[0].Notes) != 1 {
		t.Fatalf("timing note dropped: %+v", out.Diagnostics[0])
	}
}

func TestSarif(t *testing.T) {
	var buf bytes.Buffer
	meta := SarifRunMeta{ToolName: "lintconf", ToolVersion: "1.2.3", InvocationArgs: []string{"check", "."}}
	if err := Sarif(&buf, sample(), meta); err != nil {
		t.Fatalf("Sarif: %v", err)
	}
	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("unexpected log header: %+v", log)
	}
	run := log.Runs[0]
	var ids []string
	for _, r := range run.Tool.Driver.Rules {
		ids = append(ids, r.ID)
	}
	if diff := cmp.Diff([]string{"CFG2001", "MRG3001", "PRS4002"}, ids); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}
	var levels []string
	for _, r := range run.Results {
		levels = append(levels, r.Level)
		if run.Tool.Driver.Rules[r.RuleIndex].ID != r.RuleID {
			t.Fatalf("rule index %d does not match %s", r.RuleIndex, r.RuleID)
		}
	}
	if diff := cmp.Diff([]string{"error", "warning", "error"}, levels); diff != "" {
		t.Fatalf("levels mismatch (-want +got):\n%s", diff)
	}
	warn := run.Results[1]
	if len(warn.RelatedLocations) != 1 || warn.RelatedLocations[0].PhysicalLocation != nil {
		t.Fatalf("preset note should be logical only: %+v", warn.RelatedLocations)
	}
	if got := warn.Locations[0].LogicalLocations[0].FullyQualifiedName; got != "/home/user/project/.lintconfrc.yaml:env.node" {
		t.Fatalf("fqn = %q", got)
	}
	if run.Invocations[0].ExecutionSuccessful {
		t.Fatalf("run with errors reported as successful")
	}
}
