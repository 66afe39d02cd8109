package resolve

import (
	"lintconf/internal/config"
	"lintconf/internal/diag"
	"lintconf/internal/merge"
)

type State uint8

const (
	StateFailed State = iota
	StateResolved
)

func (s State) String() string {
	if s == StateResolved {
		return "resolved"
	}
	return "failed"
}

// Result is the outcome of a non-fatal resolution. Config is nil when any
// error diagnostic was reported.
type Result struct {
	Config      *config.Effective
	Diagnostics []diag.Diagnostic
	// Layers lists the identities of the expanded layers, lowest priority
	// first, including ones excluded from the merge.
	Layers []string
	// Excluded lists layers left out of the merge because they failed
	// validation.
	Excluded []string
	Origins  merge.Origins
}

func (r Result) State() State {
	if r.Config != nil {
		return StateResolved
	}
	return StateFailed
}

// HasErrors reports whether any error diagnostic was recorded.
func (r Result) HasErrors() bool {
	return diag.HasErrors(r.Diagnostics)
}

// HasWarnings reports whether any warning diagnostic was recorded.
func (r Result) HasWarnings() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == diag.SevWarning {
			return true
		}
	}
	return false
}
