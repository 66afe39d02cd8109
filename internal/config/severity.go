package config

import (
	"fmt"
	"math"

	"fortio.org/safecast"
)

// Severity is the closed rule severity enumeration.
type Severity uint8

const (
	SeverityOff Severity = iota
	SeverityWarn
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityOff:
		return "off"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	}
	return fmt.Sprintf("severity(%d)", uint8(s))
}

func (s Severity) MarshalText() ([]byte, error) {
	if s > SeverityError {
		return nil, fmt.Errorf("invalid severity %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	v, ok := ParseSeverity(string(text))
	if !ok {
		return fmt.Errorf("invalid severity %q", string(text))
	}
	*s = v
	return nil
}

// ParseSeverity accepts "off"/"warn"/"error" and the numeric aliases 0/1/2 in
// any integer or integral float representation the decoders produce.
func ParseSeverity(v any) (Severity, bool) {
	switch x := v.(type) {
	case string:
		switch x {
		case "off":
			return SeverityOff, true
		case "warn":
			return SeverityWarn, true
		case "error":
			return SeverityError, true
		}
		return 0, false
	case Severity:
		return x, x <= SeverityError
	case int:
		return severityFromInt(x)
	case int8:
		return severityFromInt(x)
	case int16:
		return severityFromInt(x)
	case int32:
		return severityFromInt(x)
	case int64:
		return severityFromInt(x)
	case uint:
		return severityFromInt(x)
	case uint8:
		return severityFromInt(x)
	case uint16:
		return severityFromInt(x)
	case uint32:
		return severityFromInt(x)
	case uint64:
		return severityFromInt(x)
	case float32:
		return severityFromFloat(float64(x))
	case float64:
		return severityFromFloat(x)
	}
	return 0, false
}

func severityFromInt[T safecast.Integer](v T) (Severity, bool) {
	u, err := safecast.Conv[uint8](v)
	if err != nil || u > uint8(SeverityError) {
		return 0, false
	}
	return Severity(u), true
}

func severityFromFloat(f float64) (Severity, bool) {
	if math.IsNaN(f) {
		return 0, false
	}
	u, err := safecast.Convert[uint8](f)
	if err != nil || u > uint8(SeverityError) {
		return 0, false
	}
	return Severity(u), true
}
