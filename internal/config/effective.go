package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Effective is the merged result of one resolution call. It is created once
// and must be treated as immutable by every consumer; Clone gives a private
// copy to anyone that needs to derive a new value.
type Effective struct {
	Rules         map[string]RuleSetting  `json:"rules" msgpack:"rules"`
	Env           map[string]bool         `json:"env" msgpack:"env"`
	ParserOptions ResolvedParserOptions   `json:"parserOptions" msgpack:"parserOptions"`
	Globals       map[string]GlobalAccess `json:"globals,omitempty" msgpack:"globals,omitempty"`
	Plugins       []string                `json:"plugins,omitempty" msgpack:"plugins,omitempty"`
	Settings      map[string]any          `json:"settings,omitempty" msgpack:"settings,omitempty"`
	Unknown       map[string]any          `json:"extensions,omitempty" msgpack:"extensions,omitempty"`
}

// NewEffective returns an empty configuration carrying the parser defaults.
func NewEffective() *Effective {
	return &Effective{
		Rules:         map[string]RuleSetting{},
		Env:           map[string]bool{},
		ParserOptions: DefaultParserOptions(),
	}
}

// RuleNames returns all rule names in sorted order.
func (e *Effective) RuleNames() []string {
	if e == nil {
		return nil
	}
	names := make([]string, 0, len(e.Rules))
	for name := range e.Rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EnabledRules returns the sorted names of rules whose severity is not off.
func (e *Effective) EnabledRules() []string {
	var out []string
	for _, name := range e.RuleNames() {
		if e.Rules[name].Enabled() {
			out = append(out, name)
		}
	}
	return out
}

// Clone creates a deep copy.
func (e *Effective) Clone() *Effective {
	if e == nil {
		return nil
	}
	out := &Effective{
		Rules:         make(map[string]RuleSetting, len(e.Rules)),
		Env:           make(map[string]bool, len(e.Env)),
		ParserOptions: e.ParserOptions,
		Settings:      CloneMap(e.Settings),
		Unknown:       CloneMap(e.Unknown),
	}
	for k, v := range e.Rules {
		out.Rules[k] = v.Clone()
	}
	for k, v := range e.Env {
		out.Env[k] = v
	}
	if e.Globals != nil {
		out.Globals = make(map[string]GlobalAccess, len(e.Globals))
		for k, v := range e.Globals {
			out.Globals[k] = v
		}
	}
	if e.Plugins != nil {
		out.Plugins = append([]string(nil), e.Plugins...)
	}
	return out
}

// Canonical returns the stable JSON encoding: map keys sorted, no
// insignificant whitespace. Equal configurations encode to equal bytes.
func (e *Effective) Canonical() ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("nil effective configuration")
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return nil, fmt.Errorf("encode effective configuration: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
