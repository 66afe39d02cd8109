package main

import (
	"encoding/json"
	"fmt"
	"io"

	"lintconf/internal/diag"
	"lintconf/internal/diagfmt"
	"lintconf/internal/driver"
	"lintconf/internal/version"
)

func (s *settings) sarifMeta(args []string) diagfmt.SarifRunMeta {
	return diagfmt.SarifRunMeta{
		ToolName:       "lintconf",
		ToolVersion:    version.Version,
		InvocationArgs: args,
		PathMode:       s.pathMode(),
		BaseDir:        s.baseDir(),
	}
}

// writeDiagnostics renders items in the configured format.
func (s *settings) writeDiagnostics(w io.Writer, items []diag.Diagnostic, args []string) error {
	switch s.format {
	case "pretty":
		if len(items) > 0 {
			diagfmt.Pretty(w, items, diagfmt.PrettyOpts{
				Color:     s.color,
				PathMode:  s.pathMode(),
				BaseDir:   s.baseDir(),
				ShowNotes: s.withNotes,
			})
		}
	case "short":
		if output := diag.FormatShortDiagnostics(items, s.withNotes); output != "" {
			fmt.Fprintln(w, output)
		}
	case "json":
		return diagfmt.JSON(w, items, diagfmt.JSONOpts{
			PathMode:     s.pathMode(),
			BaseDir:      s.baseDir(),
			IncludeNotes: s.withNotes,
		})
	case "sarif":
		return diagfmt.Sarif(w, items, s.sarifMeta(args))
	default:
		return fmt.Errorf("unknown format: %s", s.format)
	}
	return nil
}

// writeFileResults renders diagnostics for several files. Pretty output
// gets a header per file with diagnostics; JSON is keyed by path; SARIF and
// short output are flattened.
func (s *settings) writeFileResults(w io.Writer, results []driver.FileResult, args []string) error {
	switch s.format {
	case "pretty":
		first := true
		for i := range results {
			r := &results[i]
			items := r.Bag.Items()
			if len(items) == 0 {
				continue
			}
			if !first {
				fmt.Fprintln(w)
			}
			first = false
			header := diagfmt.FormatLayer(r.Path, s.pathMode(), s.baseDir())
			if !r.Failed() {
				header = fmt.Sprintf("%s (%d rules enabled)", header, len(r.Result.Config.EnabledRules()))
			}
			fmt.Fprintf(w, "== %s ==\n", header)
			if err := s.writeDiagnostics(w, items, args); err != nil {
				return err
			}
		}
		return nil
	case "json":
		output := make(map[string]diagfmt.DiagnosticsOutput, len(results))
		opts := diagfmt.JSONOpts{PathMode: s.pathMode(), BaseDir: s.baseDir(), IncludeNotes: s.withNotes}
		for _, r := range results {
			output[diagfmt.FormatLayer(r.Path, s.pathMode(), s.baseDir())] = diagfmt.BuildDiagnosticsOutput(r.Bag.Items(), opts)
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(output); err != nil {
			return fmt.Errorf("failed to encode diagnostics output: %w", err)
		}
		return nil
	}
	return s.writeDiagnostics(w, allItems(results), args)
}

func allItems(results []driver.FileResult) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, r := range results {
		out = append(out, r.Bag.Items()...)
	}
	return out
}

// failed decides the exit status for a set of diagnostics.
func (s *settings) failed(items []diag.Diagnostic) bool {
	if diag.HasErrors(items) {
		return true
	}
	if !s.warningsAsErrors {
		return false
	}
	for _, d := range items {
		if d.Severity == diag.SevWarning {
			return true
		}
	}
	return false
}
