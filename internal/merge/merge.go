package merge

import (
	"fmt"
	"sort"

	"lintconf/internal/config"
	"lintconf/internal/diag"
)

// Origins records which layer supplied each winning value.
type Origins struct {
	Rules       map[string]string
	Env         map[string]string
	EcmaVersion string
	SourceType  string
	Features    map[config.Feature]string
}

// Merge folds layers into an effective configuration.
func Merge(layers []config.Layer) (*config.Effective, []diag.Diagnostic) {
	eff, _, diags := MergeExplained(layers)
	return eff, diags
}

// MergeExplained is Merge that also reports, for every winning value, the
// identity of the layer it came from.
func MergeExplained(layers []config.Layer) (*config.Effective, Origins, []diag.Diagnostic) {
	var diags []diag.Diagnostic
	m := &merger{
		eff:      config.NewEffective(),
		reporter: diag.SliceReporter{Items: &diags},
		origins: Origins{
			Rules:    map[string]string{},
			Env:      map[string]string{},
			Features: map[config.Feature]string{},
		},
		pluginSeen: map[string]struct{}{},
	}
	for i := range layers {
		m.apply(&layers[i])
	}
	return m.eff, m.origins, diags
}

type merger struct {
	eff        *config.Effective
	reporter   diag.Reporter
	origins    Origins
	pluginSeen map[string]struct{}
}

func (m *merger) apply(l *config.Layer) {
	for name, setting := range l.Rules {
		m.eff.Rules[name] = setting.Clone()
		m.origins.Rules[name] = l.Identity
	}
	m.applyEnv(l)
	m.applyParserOptions(l)

	for name, access := range l.Globals {
		if m.eff.Globals == nil {
			m.eff.Globals = make(map[string]config.GlobalAccess)
		}
		m.eff.Globals[name] = access
	}
	for _, p := range l.Plugins {
		if _, ok := m.pluginSeen[p]; ok {
			continue
		}
		m.pluginSeen[p] = struct{}{}
		m.eff.Plugins = append(m.eff.Plugins, p)
	}
	for k, v := range l.Settings {
		if m.eff.Settings == nil {
			m.eff.Settings = make(map[string]any)
		}
		m.eff.Settings[k] = config.CloneValue(v)
	}
	for k, v := range l.Unknown {
		if m.eff.Unknown == nil {
			m.eff.Unknown = make(map[string]any)
		}
		m.eff.Unknown[k] = config.CloneValue(v)
	}
}

// applyEnv ORs the layer's flags in. Keys are visited in sorted order so
// downgrade warnings come out in a stable order.
func (m *merger) applyEnv(l *config.Layer) {
	names := make([]string, 0, len(l.Env))
	for name := range l.Env {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		enabled := l.Env[name]
		prev, seen := m.eff.Env[name]
		switch {
		case !seen:
			m.eff.Env[name] = enabled
			m.origins.Env[name] = l.Identity
		case prev && !enabled:
			diag.ReportWarning(m.reporter, diag.MrgEnvDowngrade, l.Identity, config.FieldEnv+"."+name,
				fmt.Sprintf("environment %q was enabled by a lower-priority layer and cannot be disabled; keeping it enabled", name)).
				WithNote(m.origins.Env[name], config.FieldEnv+"."+name, "enabled here").
				Emit()
		case !prev && enabled:
			m.eff.Env[name] = true
			m.origins.Env[name] = l.Identity
		}
	}
}

func (m *merger) applyParserOptions(l *config.Layer) {
	po := l.ParserOptions
	if po.EcmaVersion != nil {
		m.eff.ParserOptions.EcmaVersion = *po.EcmaVersion
		m.origins.EcmaVersion = l.Identity
	}
	if po.SourceType != nil {
		m.eff.ParserOptions.SourceType = *po.SourceType
		m.origins.SourceType = l.Identity
	}
	for feature, v := range po.Features {
		m.eff.ParserOptions.Features.Set(feature, v)
		m.origins.Features[feature] = l.Identity
	}
}
