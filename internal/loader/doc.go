// Package loader decodes declaration files and preset packs from disk into
// raw declarations. JSON, YAML (several documents per preset file) and TOML
// are supported; decoded values are normalized so the validator only sees
// map[string]any, []any and scalars.
package loader
