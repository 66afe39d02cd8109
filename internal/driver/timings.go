package driver

import (
	"encoding/json"
	"fmt"
	"strings"

	"lintconf/internal/diag"
	"lintconf/internal/observ"
)

// timingPayload is the JSON note of an OBS6001 diagnostic.
type timingPayload struct {
	Path    string               `json:"path"`
	Cached  bool                 `json:"cached"`
	Layers  int                  `json:"layers"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// timingDiagnostic summarizes how long resolving out took: total time, the
// slowest layer to validate and whether the cache answered. The full phase
// list, per layer, travels as a JSON note.
func timingDiagnostic(out *FileResult, report observ.Report) (diag.Diagnostic, error) {
	payload := timingPayload{
		Path:    out.Path,
		Cached:  out.Cached,
		Layers:  len(out.Result.Layers),
		TotalMS: report.TotalMS,
		Phases:  report.Phases,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return diag.Diagnostic{}, fmt.Errorf("failed to encode timings: %w", err)
	}

	parts := []string{fmt.Sprintf("resolved in %.2f ms", report.TotalMS)}
	switch {
	case out.Cached:
		parts = append(parts, "from cache")
	case payload.Layers > 0:
		parts = append(parts, fmt.Sprintf("%d layers", payload.Layers))
	}
	if slow, ok := report.Slowest(); ok {
		parts = append(parts, fmt.Sprintf("slowest %s %.2f ms", slow.Layer, slow.DurationMS))
	}
	return diag.New(diag.SevInfo, diag.ObsTimings, out.Path, "", strings.Join(parts, ", ")).
		WithNote(out.Path, "", string(data)), nil
}
