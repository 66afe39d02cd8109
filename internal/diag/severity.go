package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is for informational diagnostics.
	SevInfo Severity = iota
	// SevWarning is recorded but never blocks resolution.
	SevWarning
	// SevError suppresses the effective configuration; resolution keeps
	// going to collect the remaining diagnostics.
	SevError
	// SevFatal aborts resolution immediately.
	SevFatal
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	case SevFatal:
		return "FATAL"
	}
	return "UNKNOWN"
}

// Label returns the lower-case form used by short and SARIF output.
func (s Severity) Label() string {
	switch s {
	case SevFatal:
		return "fatal"
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}
