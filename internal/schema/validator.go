package schema

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"lintconf/internal/config"
	"lintconf/internal/diag"
)

// Validate checks one raw declaration against the recognized option set and
// returns the sanitized layer together with every diagnostic found. It never
// stops at the first problem and has no side effects.
//
// Unknown top-level fields are warnings and are preserved in Layer.Unknown.
// Invalid severities, source types, ecmaVersion values and wrongly typed
// containers are errors; the offending entry is left out of the layer.
func Validate(decl config.Declaration) (config.Layer, []diag.Diagnostic) {
	var diags []diag.Diagnostic
	v := &validator{
		id:       decl.Identity,
		reporter: diag.SliceReporter{Items: &diags},
	}
	layer := config.NewLayer(decl.Identity)

	for _, field := range config.KnownFields {
		raw, ok := decl.Fields[field]
		if !ok {
			continue
		}
		switch field {
		case config.FieldExtends:
			layer.Extends = v.extends(raw)
		case config.FieldRules:
			layer.Rules = v.rules(raw)
		case config.FieldEnv:
			layer.Env = v.env(raw)
		case config.FieldParserOptions:
			layer.ParserOptions = v.parserOptions(raw, &layer)
		case config.FieldGlobals:
			layer.Globals = v.globals(raw)
		case config.FieldPlugins:
			layer.Plugins = v.plugins(raw)
		case config.FieldSettings:
			if m, ok := v.object(config.FieldSettings, raw); ok {
				layer.Settings = config.CloneMap(m)
			}
		}
	}

	for _, key := range sortedKeys(decl.Fields) {
		if config.IsKnownField(key) {
			continue
		}
		diag.ReportWarning(v.reporter, diag.CfgUnknownField, v.id, key,
			fmt.Sprintf("unknown field %q is preserved but not interpreted", key)).Emit()
		if layer.Unknown == nil {
			layer.Unknown = make(map[string]any)
		}
		layer.Unknown[key] = config.CloneValue(decl.Fields[key])
	}

	return layer, diags
}

type validator struct {
	id       string
	reporter diag.Reporter
}

func (v *validator) errorf(code diag.Code, field, format string, args ...any) {
	diag.ReportError(v.reporter, code, v.id, field, fmt.Sprintf(format, args...)).Emit()
}

func (v *validator) warnf(code diag.Code, field, format string, args ...any) {
	diag.ReportWarning(v.reporter, code, v.id, field, fmt.Sprintf(format, args...)).Emit()
}

// name normalizes an identifier to NFC and reports empty ones.
func (v *validator) name(field, raw string) (string, bool) {
	n := norm.NFC.String(strings.TrimSpace(raw))
	if n == "" {
		v.errorf(diag.CfgEmptyName, field, "name must not be empty")
		return "", false
	}
	return n, true
}

func (v *validator) object(field string, raw any) (map[string]any, bool) {
	m, ok := asMap(raw)
	if !ok {
		v.errorf(diag.CfgInvalidType, field, "%s must be a mapping, got %s", field, typeName(raw))
	}
	return m, ok
}

func (v *validator) extends(raw any) []string {
	if s, ok := raw.(string); ok {
		if name, ok := v.name(config.FieldExtends, s); ok {
			return []string{name}
		}
		return nil
	}
	list, ok := asList(raw)
	if !ok {
		v.errorf(diag.CfgInvalidType, config.FieldExtends, "extends must be a string or a list of strings, got %s", typeName(raw))
		return nil
	}
	out := make([]string, 0, len(list))
	for i, item := range list {
		field := fmt.Sprintf("%s[%d]", config.FieldExtends, i)
		s, ok := item.(string)
		if !ok {
			v.errorf(diag.CfgInvalidType, field, "preset reference must be a string, got %s", typeName(item))
			continue
		}
		if name, ok := v.name(field, s); ok {
			out = append(out, name)
		}
	}
	return out
}

func (v *validator) rules(raw any) map[string]config.RuleSetting {
	m, ok := v.object(config.FieldRules, raw)
	if !ok {
		return nil
	}
	out := make(map[string]config.RuleSetting, len(m))
	for _, key := range sortedKeys(m) {
		field := config.FieldRules + "." + key
		name, ok := v.name(field, key)
		if !ok {
			continue
		}
		if setting, ok := v.ruleSetting(field, m[key]); ok {
			out[name] = setting
		}
	}
	return out
}

func (v *validator) ruleSetting(field string, raw any) (config.RuleSetting, bool) {
	if _, isMap := asMap(raw); isMap {
		v.errorf(diag.CfgInvalidRuleSetting, field, "rule setting must be a severity or [severity, ...options]")
		return config.RuleSetting{}, false
	}
	if list, isList := asList(raw); isList {
		if len(list) == 0 {
			v.errorf(diag.CfgInvalidRuleSetting, field, "rule setting array must start with a severity")
			return config.RuleSetting{}, false
		}
		sev, ok := config.ParseSeverity(list[0])
		if !ok {
			v.errorf(diag.CfgInvalidSeverity, field, "invalid severity %s (expected off|warn|error or 0|1|2)", describe(list[0]))
			return config.RuleSetting{}, false
		}
		setting := config.RuleSetting{Severity: sev}
		if len(list) > 1 {
			setting.Options = config.CloneSlice(list[1:])
		}
		return setting, true
	}
	sev, ok := config.ParseSeverity(raw)
	if !ok {
		v.errorf(diag.CfgInvalidSeverity, field, "invalid severity %s (expected off|warn|error or 0|1|2)", describe(raw))
		return config.RuleSetting{}, false
	}
	return config.RuleSetting{Severity: sev}, true
}

func (v *validator) env(raw any) map[string]bool {
	m, ok := v.object(config.FieldEnv, raw)
	if !ok {
		return nil
	}
	out := make(map[string]bool, len(m))
	for _, key := range sortedKeys(m) {
		field := config.FieldEnv + "." + key
		name, ok := v.name(field, key)
		if !ok {
			continue
		}
		b, ok := m[key].(bool)
		if !ok {
			v.errorf(diag.CfgInvalidType, field, "environment flag must be a boolean, got %s", typeName(m[key]))
			continue
		}
		out[name] = b
	}
	return out
}

const (
	optEcmaVersion  = "ecmaVersion"
	optSourceType   = "sourceType"
	optEcmaFeatures = "ecmaFeatures"
)

func (v *validator) parserOptions(raw any, layer *config.Layer) config.ParserOptions {
	var out config.ParserOptions
	m, ok := v.object(config.FieldParserOptions, raw)
	if !ok {
		return out
	}
	for _, key := range sortedKeys(m) {
		field := config.FieldParserOptions + "." + key
		val := m[key]
		switch key {
		case optEcmaVersion:
			ver, ok := config.ParseEcmaVersion(val)
			if !ok {
				v.errorf(diag.CfgInvalidEcmaVersion, field, "invalid ecmaVersion %s (expected 3, 5, 6-17, 2015-%d or \"latest\")", describe(val), config.LatestEcmaVersion)
				continue
			}
			out.EcmaVersion = &ver
		case optSourceType:
			s, _ := val.(string)
			st, ok := config.ParseSourceType(s)
			if !ok {
				v.errorf(diag.CfgInvalidSourceType, field, "invalid sourceType %s (expected script|module)", describe(val))
				continue
			}
			out.SourceType = &st
		case optEcmaFeatures:
			out.Features = v.features(field, val)
		default:
			v.warnf(diag.CfgUnknownParserOption, field, "unknown parser option %q is preserved but not interpreted", key)
			if layer.Unknown == nil {
				layer.Unknown = make(map[string]any)
			}
			layer.Unknown[field] = config.CloneValue(val)
		}
	}
	return out
}

func (v *validator) features(field string, raw any) map[config.Feature]bool {
	m, ok := v.object(field, raw)
	if !ok {
		return nil
	}
	out := make(map[config.Feature]bool, len(m))
	for _, key := range sortedKeys(m) {
		kf := field + "." + key
		if !config.IsKnownFeature(key) {
			v.warnf(diag.CfgUnknownFeature, kf, "unknown feature %q is ignored", key)
			continue
		}
		b, ok := m[key].(bool)
		if !ok {
			v.errorf(diag.CfgInvalidType, kf, "feature flag must be a boolean, got %s", typeName(m[key]))
			continue
		}
		out[config.Feature(key)] = b
	}
	return out
}

func (v *validator) globals(raw any) map[string]config.GlobalAccess {
	m, ok := v.object(config.FieldGlobals, raw)
	if !ok {
		return nil
	}
	out := make(map[string]config.GlobalAccess, len(m))
	for _, key := range sortedKeys(m) {
		field := config.FieldGlobals + "." + key
		name, ok := v.name(field, key)
		if !ok {
			continue
		}
		access, ok := config.ParseGlobalAccess(m[key])
		if !ok {
			v.errorf(diag.CfgInvalidGlobal, field, "invalid global access %s (expected readonly|writable|off)", describe(m[key]))
			continue
		}
		out[name] = access
	}
	return out
}

func (v *validator) plugins(raw any) []string {
	list, ok := asList(raw)
	if !ok {
		v.errorf(diag.CfgInvalidType, config.FieldPlugins, "plugins must be a list of strings, got %s", typeName(raw))
		return nil
	}
	out := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for i, item := range list {
		field := fmt.Sprintf("%s[%d]", config.FieldPlugins, i)
		s, ok := item.(string)
		if !ok {
			v.errorf(diag.CfgInvalidType, field, "plugin name must be a string, got %s", typeName(item))
			continue
		}
		name, ok := v.name(field, s)
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
