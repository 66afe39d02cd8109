// Package diag defines the diagnostic model shared by the validator, the
// merger and the resolution engine.
//
// # Purpose
//
//   - Provide deterministic, serialisable records describing problems found in
//     configuration layers.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting.
//
// # Scope
//
// Package diag performs no formatting beyond the stable short form, no IO and
// no CLI integration. Rendering lives in internal/diagfmt.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning, Error or Fatal (severity.go). Warnings never
//     block resolution, errors suppress the effective configuration, fatal
//     diagnostics abort expansion.
//   - Code – numeric identifier (codes.go) with a stable ID ("CFG2001"), a
//     title and a symbolic Kind ("InvalidSeverity").
//   - Layer – identity of the offending layer.
//   - Field – dotted path inside the layer ("rules.no-undef").
//   - Message – short, actionable text.
//   - Notes – optional pointers to other layers ("first enabled here").
//
// # Emitting diagnostics
//
// Producers use a Reporter. ReportError/ReportWarning return a builder that
// accepts notes before Emit. BagReporter collects into a Bag, which supports
// sorting, deduplication and filtering; SliceReporter appends to a slice.
//
// Keep the data model deterministic: the same input must always yield the
// same diagnostics in the same order.
package diag
