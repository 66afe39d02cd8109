package diagfmt

import (
	"encoding/json"
	"io"

	"lintconf/internal/diag"
)

// LocationJSON identifies a field inside a layer.
type LocationJSON struct {
	Layer string `json:"layer,omitempty"`
	Field string `json:"field,omitempty"`
}

type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Kind     string       `json:"kind"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// DiagnosticsOutput is the root of the JSON output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

// BuildDiagnosticsOutput builds the JSON structure without serializing it.
func BuildDiagnosticsOutput(items []diag.Diagnostic, opts JSONOpts) DiagnosticsOutput {
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}
	diagnostics := make([]DiagnosticJSON, 0, maxItems)

	for _, d := range items[:maxItems] {
		out := DiagnosticJSON{
			Severity: d.Severity.Label(),
			Code:     d.Code.ID(),
			Kind:     d.Code.Kind(),
			Message:  d.Message,
			Location: LocationJSON{
				Layer: FormatLayer(d.Layer, opts.PathMode, opts.BaseDir),
				Field: d.Field,
			},
		}
		// timing payloads live in the note
		includeNotes := opts.IncludeNotes || d.Code == diag.ObsTimings
		if includeNotes && len(d.Notes) > 0 {
			out.Notes = make([]NoteJSON, len(d.Notes))
			for j, n := range d.Notes {
				out.Notes[j] = NoteJSON{
					Message: n.Msg,
					Location: LocationJSON{
						Layer: FormatLayer(n.Layer, opts.PathMode, opts.BaseDir),
						Field: n.Field,
					},
				}
			}
		}
		diagnostics = append(diagnostics, out)
	}

	return DiagnosticsOutput{
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
	}
}

// JSON writes diagnostics as indented JSON.
func JSON(w io.Writer, items []diag.Diagnostic, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(items, opts))
}
