package resolve

import (
	"errors"

	"lintconf/internal/diag"
)

var (
	ErrCyclicPreset  = errors.New("cyclic preset reference")
	ErrUnknownPreset = errors.New("unknown preset")
)

// FatalError aborts a resolution. It wraps ErrCyclicPreset or
// ErrUnknownPreset and carries the fatal diagnostic.
type FatalError struct {
	Diagnostic diag.Diagnostic
	err        error
}

func (e *FatalError) Error() string {
	return e.Diagnostic.Message
}

func (e *FatalError) Unwrap() error {
	return e.err
}

// AsDiagnostic extracts the fatal diagnostic from err, if err carries one.
func AsDiagnostic(err error) (diag.Diagnostic, bool) {
	var fe *FatalError
	if errors.As(err, &fe) {
		return fe.Diagnostic, true
	}
	return diag.Diagnostic{}, false
}
