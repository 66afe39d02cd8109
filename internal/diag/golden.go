package diag

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FormatShortDiagnostics renders diagnostics one per line, in the order given:
//
//	<severity> <CODE> <layer>:<field> <message>
//
// Notes follow their diagnostic as "note" lines when includeNotes is set.
// The output is stable and used both by `--format short` and golden tests.
func FormatShortDiagnostics(diags []Diagnostic, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	var b strings.Builder
	first := true
	line := func(sev, code, loc, msg string) {
		if !first {
			b.WriteByte('\n')
		}
		first = false
		fmt.Fprintf(&b, "%s %s %s %s", sev, code, loc, msg)
	}
	for _, d := range diags {
		line(d.Severity.Label(), d.Code.ID(), normalizeLocation(d.Location()), sanitizeMessage(d.Message))
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			loc := Diagnostic{Layer: n.Layer, Field: n.Field}.Location()
			line("note", d.Code.ID(), normalizeLocation(loc), sanitizeMessage(n.Msg))
		}
	}
	return b.String()
}

func normalizeLocation(loc string) string {
	if loc == "" {
		return "-"
	}
	p := filepath.ToSlash(loc)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
