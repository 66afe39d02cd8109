package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // one CLI command or driver call
	ScopePass                    // expand, validate, merge, load
	ScopeLayer                   // one layer or one file
	ScopeField                   // individual fields, debug only
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopePass:
		return "pass"
	case ScopeLayer:
		return "layer"
	case ScopeField:
		return "field"
	default:
		return "unknown"
	}
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time
	Seq      uint64 // global sequence number, assigned on emit
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for root spans
	GID      uint64
	Name     string // "merge", "layer:preset:base#0"
	Detail   string
	File     string // declaration file being resolved, if any
	Preset   string // preset chain being expanded, "base -> react"
	Extra    map[string]string
}
