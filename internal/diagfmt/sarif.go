package diagfmt

import (
	"encoding/json"
	"io"
	"sort"

	"lintconf/internal/diag"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID           string          `json:"ruleId"`
	RuleIndex        int             `json:"ruleIndex"`
	Level            string          `json:"level"`
	Message          sarifMessage    `json:"message"`
	Locations        []sarifLocation `json:"locations,omitempty"`
	RelatedLocations []sarifLocation `json:"relatedLocations,omitempty"`
}

type sarifLocation struct {
	ID               *int                   `json:"id,omitempty"`
	PhysicalLocation *sarifPhysicalLocation `json:"physicalLocation,omitempty"`
	LogicalLocations []sarifLogicalLocation `json:"logicalLocations,omitempty"`
	Message          *sarifMessage          `json:"message,omitempty"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifLogicalLocation struct {
	Name               string `json:"name,omitempty"`
	FullyQualifiedName string `json:"fullyQualifiedName"`
	Kind               string `json:"kind,omitempty"`
}

func sarifLevel(s diag.Severity) string {
	switch s {
	case diag.SevFatal, diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	}
	return "note"
}

// sarifLoc maps a layer/field pair onto SARIF locations. File layers get a
// physical location, presets only a logical one.
func sarifLoc(layer, field string, meta SarifRunMeta) sarifLocation {
	var loc sarifLocation
	if layer == "" && field == "" {
		return loc
	}
	if isFileLayer(layer) {
		loc.PhysicalLocation = &sarifPhysicalLocation{
			ArtifactLocation: sarifArtifactLocation{URI: FormatLayer(layer, meta.PathMode, meta.BaseDir)},
		}
	}
	logical := sarifLogicalLocation{FullyQualifiedName: layer, Kind: "module"}
	if field != "" {
		logical.Name = field
		logical.FullyQualifiedName = layer + ":" + field
		logical.Kind = "member"
	}
	loc.LogicalLocations = []sarifLogicalLocation{logical}
	return loc
}

// buildSarif builds a single-run SARIF 2.1.0 log.
func buildSarif(items []diag.Diagnostic, meta SarifRunMeta) sarifLog {
	codes := make(map[diag.Code]struct{})
	for _, d := range items {
		codes[d.Code] = struct{}{}
	}
	sorted := make([]diag.Code, 0, len(codes))
	for c := range codes {
		sorted = append(sorted, c)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	rules := make([]sarifRule, len(sorted))
	ruleIndex := make(map[diag.Code]int, len(sorted))
	for i, c := range sorted {
		ruleIndex[c] = i
		rules[i] = sarifRule{
			ID:               c.ID(),
			Name:             c.Kind(),
			ShortDescription: sarifMessage{Text: c.Title()},
		}
	}

	results := make([]sarifResult, 0, len(items))
	for _, d := range items {
		res := sarifResult{
			RuleID:    d.Code.ID(),
			RuleIndex: ruleIndex[d.Code],
			Level:     sarifLevel(d.Severity),
			Message:   sarifMessage{Text: d.Message},
		}
		if d.Layer != "" || d.Field != "" {
			res.Locations = []sarifLocation{sarifLoc(d.Layer, d.Field, meta)}
		}
		for i, n := range d.Notes {
			rel := sarifLoc(n.Layer, n.Field, meta)
			id := i
			rel.ID = &id
			rel.Message = &sarifMessage{Text: n.Msg}
			res.RelatedLocations = append(res.RelatedLocations, rel)
		}
		results = append(results, res)
	}

	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:           meta.ToolName,
			Version:        meta.ToolVersion,
			InformationURI: meta.InformationURI,
			Rules:          rules,
		}},
		Results: results,
	}
	if len(meta.InvocationArgs) > 0 {
		run.Invocations = []sarifInvocation{{
			Arguments:           meta.InvocationArgs,
			ExecutionSuccessful: !diag.HasErrors(items),
		}}
	}
	return sarifLog{Version: sarifVersion, Schema: sarifSchema, Runs: []sarifRun{run}}
}

// Sarif writes diagnostics as a SARIF 2.1.0 log.
func Sarif(w io.Writer, items []diag.Diagnostic, meta SarifRunMeta) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildSarif(items, meta))
}
