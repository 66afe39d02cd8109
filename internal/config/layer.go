package config

// Declaration is an undecoded configuration record as produced by a loader.
// Identity names the layer in diagnostics: a file path for local
// declarations, "preset:<name>#<index>" for preset layers.
type Declaration struct {
	Identity string
	Fields   map[string]any
}

// Top-level fields recognized by the validator, in validation order.
const (
	FieldExtends       = "extends"
	FieldRules         = "rules"
	FieldEnv           = "env"
	FieldParserOptions = "parserOptions"
	FieldGlobals       = "globals"
	FieldPlugins       = "plugins"
	FieldSettings      = "settings"
)

// KnownFields lists recognized top-level fields in validation order.
var KnownFields = []string{
	FieldExtends,
	FieldRules,
	FieldEnv,
	FieldParserOptions,
	FieldGlobals,
	FieldPlugins,
	FieldSettings,
}

func IsKnownField(name string) bool {
	for _, f := range KnownFields {
		if f == name {
			return true
		}
	}
	return false
}

// Layer is one sanitized declaration, ready for merging.
type Layer struct {
	Identity      string
	Extends       []string
	Rules         map[string]RuleSetting
	Env           map[string]bool
	ParserOptions ParserOptions
	Globals       map[string]GlobalAccess
	Plugins       []string
	Settings      map[string]any
	// Unknown keeps unrecognized fields so newer declarations survive a
	// round trip through an older resolver.
	Unknown map[string]any
}

// NewLayer returns an empty layer with the given identity.
func NewLayer(identity string) Layer {
	return Layer{Identity: identity}
}
