package config

import "fmt"

// GlobalAccess is how a declared global variable may be used.
type GlobalAccess uint8

const (
	GlobalOff GlobalAccess = iota
	GlobalReadonly
	GlobalWritable
)

func (g GlobalAccess) String() string {
	switch g {
	case GlobalOff:
		return "off"
	case GlobalReadonly:
		return "readonly"
	case GlobalWritable:
		return "writable"
	}
	return fmt.Sprintf("global(%d)", uint8(g))
}

// ParseGlobalAccess accepts the canonical names, their legacy spellings and
// the boolean shorthand (false = readonly, true = writable).
func ParseGlobalAccess(v any) (GlobalAccess, bool) {
	switch x := v.(type) {
	case bool:
		if x {
			return GlobalWritable, true
		}
		return GlobalReadonly, true
	case string:
		switch x {
		case "off":
			return GlobalOff, true
		case "readonly", "readable", "false":
			return GlobalReadonly, true
		case "writable", "writeable", "true":
			return GlobalWritable, true
		}
	}
	return 0, false
}

func (g GlobalAccess) MarshalText() ([]byte, error) {
	if g > GlobalWritable {
		return nil, fmt.Errorf("invalid global access %d", uint8(g))
	}
	return []byte(g.String()), nil
}

func (g *GlobalAccess) UnmarshalText(text []byte) error {
	v, ok := ParseGlobalAccess(string(text))
	if !ok {
		return fmt.Errorf("invalid global access %q", string(text))
	}
	*g = v
	return nil
}
