package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the most recent events in memory so that a crash or a
// stuck resolution can be explained after the fact.
type RingTracer struct {
	mu    sync.RWMutex
	buf   []Event
	next  int // slot the next event goes to
	count int // stored events, at most len(buf)
	level Level
}

func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{buf: make([]Event, capacity), level: level}
}

// Emit stores ev when its scope passes the level. Heartbeats are always kept.
func (t *RingTracer) Emit(ev *Event) {
	if ev == nil {
		return
	}
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	stored := *ev
	if stored.Seq == 0 {
		stored.Seq = NextSeq()
	}

	t.mu.Lock()
	t.buf[t.next] = stored
	t.next = (t.next + 1) % len(t.buf)
	if t.count < len(t.buf) {
		t.count++
	}
	t.mu.Unlock()
}

// Snapshot returns the stored events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	return t.collect(func(*Event) bool { return true })
}

// Last returns the newest event that names a declaration file; a panic dump
// uses it to point at the file being resolved.
func (t *RingTracer) Last() (Event, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := 1; i <= t.count; i++ {
		ev := t.buf[(t.next-i+len(t.buf))%len(t.buf)]
		if ev.File != "" {
			return ev, true
		}
	}
	return Event{}, false
}

func (t *RingTracer) collect(keep func(*Event) bool) []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Event, 0, t.count)
	start := (t.next - t.count + len(t.buf)) % len(t.buf)
	for i := 0; i < t.count; i++ {
		ev := &t.buf[(start+i)%len(t.buf)]
		if keep(ev) {
			out = append(out, *ev)
		}
	}
	return out
}

// Dump writes every stored event to w.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	return writeEvents(w, t.Snapshot(), format)
}

// DumpFile writes the stored events recorded while resolving file.
func (t *RingTracer) DumpFile(w io.Writer, format Format, file string) error {
	return writeEvents(w, t.collect(func(ev *Event) bool { return ev.File == file }), format)
}

func writeEvents(w io.Writer, events []Event, format Format) error {
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
