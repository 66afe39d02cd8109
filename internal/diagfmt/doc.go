// Package diagfmt renders diagnostics for humans (pretty, with optional
// color), for tools (JSON) and for code-scanning uploads (SARIF 2.1.0).
// The terse one-line form lives in diag.FormatShortDiagnostics.
package diagfmt
