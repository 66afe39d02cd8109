package diagfmt

// PathMode specifies how file-backed layer identities are displayed.
// Preset identities ("preset:<name>#<i>") are never rewritten.
type PathMode uint8

const (
	// PathModeAuto prints paths relative to BaseDir when they live under it.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	PathMode  PathMode
	BaseDir   string
	Width     int // max message width in cells, 0 = unlimited
	ShowNotes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode     PathMode
	BaseDir      string
	Max          int // output truncation, not Bag
	IncludeNotes bool
}

// SarifRunMeta provides metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InformationURI string
	InvocationArgs []string
	PathMode       PathMode
	BaseDir        string
}
