package config

// RuleSetting is the atomic per-rule value: a severity and optional
// rule-specific options, which are never merged across layers.
type RuleSetting struct {
	Severity Severity `json:"severity" msgpack:"severity"`
	Options  []any    `json:"options,omitempty" msgpack:"options,omitempty"`
}

func (r RuleSetting) Enabled() bool {
	return r.Severity != SeverityOff
}

func (r RuleSetting) Clone() RuleSetting {
	return RuleSetting{Severity: r.Severity, Options: CloneSlice(r.Options)}
}

