package config

import (
	"fmt"
	"math"
	"strings"

	"fortio.org/safecast"
)

// EcmaVersion is always stored as a year (2015+) or one of the legacy
// editions 3 and 5.
type EcmaVersion uint16

const (
	DefaultEcmaVersion EcmaVersion = 5
	LatestEcmaVersion  EcmaVersion = 2026
	firstYearEdition   EcmaVersion = 2015
)

// ParseEcmaVersion accepts 3, 5, 6..17 (edition numbers, normalized to
// years), 2015..2026 and the string "latest".
func ParseEcmaVersion(v any) (EcmaVersion, bool) {
	var n int64
	switch x := v.(type) {
	case string:
		if strings.TrimSpace(x) == "latest" {
			return LatestEcmaVersion, true
		}
		return 0, false
	case int:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint64:
		c, err := safecast.Conv[int64](x)
		if err != nil {
			return 0, false
		}
		n = c
	case float64:
		if math.IsNaN(x) {
			return 0, false
		}
		c, err := safecast.Convert[int64](x)
		if err != nil {
			return 0, false
		}
		n = c
	default:
		return 0, false
	}
	switch {
	case n == 3 || n == 5:
		return EcmaVersion(n), true
	case n >= 6 && n <= int64(LatestEcmaVersion-firstYearEdition)+6:
		return EcmaVersion(n-6) + firstYearEdition, true
	case n >= int64(firstYearEdition) && n <= int64(LatestEcmaVersion):
		return EcmaVersion(n), true
	}
	return 0, false
}

// SourceType is the closed {script, module} enumeration.
type SourceType uint8

const (
	SourceScript SourceType = iota
	SourceModule
)

func (s SourceType) String() string {
	switch s {
	case SourceScript:
		return "script"
	case SourceModule:
		return "module"
	}
	return fmt.Sprintf("sourceType(%d)", uint8(s))
}

func ParseSourceType(s string) (SourceType, bool) {
	switch s {
	case "script":
		return SourceScript, true
	case "module":
		return SourceModule, true
	}
	return 0, false
}

func (s SourceType) MarshalText() ([]byte, error) {
	if s > SourceModule {
		return nil, fmt.Errorf("invalid sourceType %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *SourceType) UnmarshalText(text []byte) error {
	v, ok := ParseSourceType(string(text))
	if !ok {
		return fmt.Errorf("invalid sourceType %q", string(text))
	}
	*s = v
	return nil
}

// Feature names a recognized ecmaFeatures key.
type Feature string

const (
	FeatureGlobalReturn  Feature = "globalReturn"
	FeatureImpliedStrict Feature = "impliedStrict"
	FeatureJSX           Feature = "jsx"
)

// KnownFeatures lists every recognized feature in sorted order.
var KnownFeatures = []Feature{FeatureGlobalReturn, FeatureImpliedStrict, FeatureJSX}

func IsKnownFeature(name string) bool {
	for _, f := range KnownFeatures {
		if string(f) == name {
			return true
		}
	}
	return false
}

// FeatureFlags is the fully-populated feature record. The zero value holds
// the defaults (every feature disabled).
type FeatureFlags struct {
	GlobalReturn  bool `json:"globalReturn" msgpack:"globalReturn"`
	ImpliedStrict bool `json:"impliedStrict" msgpack:"impliedStrict"`
	JSX           bool `json:"jsx" msgpack:"jsx"`
}

func (f *FeatureFlags) Set(name Feature, v bool) {
	switch name {
	case FeatureGlobalReturn:
		f.GlobalReturn = v
	case FeatureImpliedStrict:
		f.ImpliedStrict = v
	case FeatureJSX:
		f.JSX = v
	}
}

func (f FeatureFlags) Get(name Feature) bool {
	switch name {
	case FeatureGlobalReturn:
		return f.GlobalReturn
	case FeatureImpliedStrict:
		return f.ImpliedStrict
	case FeatureJSX:
		return f.JSX
	}
	return false
}

// ParserOptions is a layer's contribution: nil / absent means "not set here".
type ParserOptions struct {
	EcmaVersion *EcmaVersion
	SourceType  *SourceType
	Features    map[Feature]bool
}

// ResolvedParserOptions has every field concrete.
type ResolvedParserOptions struct {
	EcmaVersion EcmaVersion  `json:"ecmaVersion" msgpack:"ecmaVersion"`
	SourceType  SourceType   `json:"sourceType" msgpack:"sourceType"`
	Features    FeatureFlags `json:"ecmaFeatures" msgpack:"ecmaFeatures"`
}

// DefaultParserOptions returns the values used when no layer sets a field.
func DefaultParserOptions() ResolvedParserOptions {
	return ResolvedParserOptions{
		EcmaVersion: DefaultEcmaVersion,
		SourceType:  SourceScript,
	}
}
